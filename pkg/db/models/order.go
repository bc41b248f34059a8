package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/monkeysroasters/roastery-backend/pkg/enums"
	"github.com/monkeysroasters/roastery-backend/pkg/types"
)

// Order represents a placed order. Line items are snapshotted as jsonb so the
// order stays stable when catalog prices change afterwards.
type Order struct {
	ID     uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Number string    `gorm:"column:number;not null;uniqueIndex"`
	UserID int64     `gorm:"column:user_id;not null;index"`

	Items    types.OrderItems `gorm:"column:items;type:jsonb;serializer:json;not null"`
	WeightKg float64          `gorm:"column:weight_kg;not null;default:0"`

	Subtotal        int     `gorm:"column:subtotal;not null"`
	DiscountVolume  int     `gorm:"column:discount_volume;not null;default:0"`
	DiscountLoyalty int     `gorm:"column:discount_loyalty;not null;default:0"`
	DiscountPromo   int     `gorm:"column:discount_promo;not null;default:0"`
	PromoCode       *string `gorm:"column:promo_code"`
	DeliveryCost    int     `gorm:"column:delivery_cost;not null;default:0"`
	Total           int     `gorm:"column:total;not null"`

	DeliveryMethod    enums.DeliveryMethod `gorm:"column:delivery_method;type:delivery_method;not null;default:'nova_poshta'"`
	DeliveryCity      string               `gorm:"column:delivery_city;not null;default:''"`
	DeliveryAddress   string               `gorm:"column:delivery_address;not null;default:''"`
	DeliveryRecipient string               `gorm:"column:delivery_recipient;not null;default:''"`
	DeliveryPhone     string               `gorm:"column:delivery_phone;not null;default:''"`
	Grind             enums.GrindOption    `gorm:"column:grind;type:grind_option;not null;default:'beans'"`
	Comment           *string              `gorm:"column:comment"`

	Status         enums.OrderStatus `gorm:"column:status;type:order_status;not null;default:'pending'"`
	TrackingNumber *string           `gorm:"column:tracking_number"`

	PaidAt      *time.Time `gorm:"column:paid_at"`
	ShippedAt   *time.Time `gorm:"column:shipped_at"`
	DeliveredAt *time.Time `gorm:"column:delivered_at"`
	CancelledAt *time.Time `gorm:"column:cancelled_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
