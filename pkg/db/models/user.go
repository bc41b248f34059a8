package models

import (
	"time"

	"github.com/monkeysroasters/roastery-backend/pkg/enums"
)

// User represents a shopper keyed by their Telegram account ID.
type User struct {
	ID               int64   `gorm:"column:id;primaryKey;autoIncrement:false"`
	Username         *string `gorm:"column:username"`
	FirstName        string  `gorm:"column:first_name;not null;default:''"`
	Phone            *string `gorm:"column:phone"`
	LoyaltyLevel     int     `gorm:"column:loyalty_level;not null;default:1"`
	TotalPurchasedKg float64 `gorm:"column:total_purchased_kg;not null;default:0"`
	TotalOrders      int     `gorm:"column:total_orders;not null;default:0"`

	ReferralCode    string `gorm:"column:referral_code;not null;uniqueIndex"`
	ReferredByID    *int64 `gorm:"column:referred_by_id"`
	ReferralBalance int    `gorm:"column:referral_balance;not null;default:0"`

	// Saved delivery details, reused to prefill the next checkout.
	DeliveryMethod    *enums.DeliveryMethod `gorm:"column:delivery_method;type:delivery_method"`
	DeliveryCity      *string               `gorm:"column:delivery_city"`
	DeliveryAddress   *string               `gorm:"column:delivery_address"`
	DeliveryRecipient *string               `gorm:"column:delivery_recipient"`

	LastOrderAt    *time.Time `gorm:"column:last_order_at"`
	LastRemindedAt *time.Time `gorm:"column:last_reminded_at"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
