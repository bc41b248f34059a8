package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/monkeysroasters/roastery-backend/pkg/enums"
)

// VolumeDiscountRule represents a cart-wide volume discount threshold. Pack
// rules compare against the 300g pack count, weight rules against total kg.
type VolumeDiscountRule struct {
	ID        uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Kind      enums.VolumeRuleKind `gorm:"column:kind;type:volume_rule_kind;not null"`
	Threshold float64              `gorm:"column:threshold;not null"`
	Percent   int                  `gorm:"column:percent;not null"`
	IsActive  bool                 `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
