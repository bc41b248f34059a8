package models

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a catalog listing. Prices are whole hryvnias per the
// two sellable pack sizes; single-unit accessories reuse the 300g column.
type Product struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Category    string    `gorm:"column:category;not null"`
	Name        string    `gorm:"column:name;not null"`
	Origin      *string   `gorm:"column:origin"`
	Profile     *string   `gorm:"column:profile"`
	Description *string   `gorm:"column:description"`
	Price300g   int       `gorm:"column:price_300g;not null"`
	Price1kg    int       `gorm:"column:price_1kg;not null;default:0"`
	IsActive    bool      `gorm:"column:is_active;not null;default:true"`
	SortOrder   int       `gorm:"column:sort_order;not null;default:0"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
