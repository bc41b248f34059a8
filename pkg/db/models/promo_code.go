package models

import (
	"time"

	"github.com/google/uuid"
)

// PromoCode represents a staff-issued discount code. A nil UsageLimit means
// unlimited redemptions; UsedCount only advances when an order is placed.
type PromoCode struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code           string     `gorm:"column:code;not null;uniqueIndex"`
	Percent        int        `gorm:"column:percent;not null"`
	Active         bool       `gorm:"column:active;not null;default:true"`
	ValidFrom      *time.Time `gorm:"column:valid_from"`
	ValidUntil     *time.Time `gorm:"column:valid_until"`
	UsageLimit     *int       `gorm:"column:usage_limit"`
	UsedCount      int        `gorm:"column:used_count;not null;default:0"`
	MinOrderAmount int        `gorm:"column:min_order_amount;not null;default:0"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
