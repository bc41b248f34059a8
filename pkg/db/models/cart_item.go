package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/monkeysroasters/roastery-backend/pkg/enums"
)

// CartItem represents one product/format line in a user's cart. Adding the
// same product in the same format merges into the existing row.
type CartItem struct {
	ID        uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    int64               `gorm:"column:user_id;not null;uniqueIndex:idx_cart_user_product_format"`
	ProductID uuid.UUID           `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_cart_user_product_format"`
	Format    enums.ProductFormat `gorm:"column:format;type:product_format;not null;uniqueIndex:idx_cart_user_product_format"`
	Quantity  int                 `gorm:"column:quantity;not null;default:1"`
	Product   *Product            `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
