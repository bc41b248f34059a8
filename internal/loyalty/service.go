package loyalty

import (
	"context"

	"gorm.io/gorm"

	"github.com/monkeysroasters/roastery-backend/pkg/config"
	"github.com/monkeysroasters/roastery-backend/pkg/db/models"
	pkgerrors "github.com/monkeysroasters/roastery-backend/pkg/errors"
)

// LevelInfo describes one loyalty tier.
type LevelInfo struct {
	Level           int     `json:"level"`
	Name            string  `json:"name"`
	DiscountPercent int     `json:"discount_percent"`
	ThresholdKg     float64 `json:"threshold_kg"`
}

// Progress reports how far a user is from the next tier.
type Progress struct {
	CurrentLevel    int     `json:"current_level"`
	NextLevel       *int    `json:"next_level,omitempty"`
	CurrentKg       float64 `json:"current_kg"`
	NeededKg        float64 `json:"needed_kg"`
	ProgressPercent int     `json:"progress_percent"`
}

const maxLevel = 4

var levels = map[int]LevelInfo{
	1: {Level: 1, Name: "Новачок", DiscountPercent: 0, ThresholdKg: 0},
	2: {Level: 2, Name: "Любитель кави", DiscountPercent: 5, ThresholdKg: 5},
	3: {Level: 3, Name: "Кавовий експерт", DiscountPercent: 10, ThresholdKg: 15},
	4: {Level: 4, Name: "Монкі-майстер", DiscountPercent: 15, ThresholdKg: 50},
}

// Service tracks purchase volume and loyalty tiers.
type Service struct {
	shop config.ShopConfig
}

// NewService builds a loyalty service.
func NewService(shop config.ShopConfig) *Service {
	return &Service{shop: shop}
}

// LevelInfoFor returns the tier descriptor, defaulting to level 1 for
// out-of-range values.
func LevelInfoFor(level int) LevelInfo {
	if info, ok := levels[level]; ok {
		return info
	}
	return levels[1]
}

// CalculateLevel maps cumulative purchased kilograms to a tier.
func CalculateLevel(totalPurchasedKg float64) int {
	switch {
	case totalPurchasedKg >= 50:
		return 4
	case totalPurchasedKg >= 15:
		return 3
	case totalPurchasedKg >= 5:
		return 2
	default:
		return 1
	}
}

// DiscountPercentFor returns the checkout discount for a user's tier. Tier
// discounts are currently disabled by policy; the lookup stays wired so the
// flag can bring them back without code changes.
func (s *Service) DiscountPercentFor(user *models.User) int {
	if user == nil || !s.shop.LoyaltyDiscountsEnabled {
		return 0
	}
	return LevelInfoFor(user.LoyaltyLevel).DiscountPercent
}

// ApplyPurchase records purchased kilograms inside the given transaction and
// recalculates the tier. Returns whether the user leveled up and the new level.
func (s *Service) ApplyPurchase(ctx context.Context, tx *gorm.DB, user *models.User, purchasedKg float64) (bool, int, error) {
	if user == nil {
		return false, 0, pkgerrors.New(pkgerrors.CodeValidation, "user required")
	}
	if tx == nil {
		return false, 0, pkgerrors.New(pkgerrors.CodeDependency, "transaction required")
	}

	oldLevel := user.LoyaltyLevel
	newTotal := user.TotalPurchasedKg + purchasedKg
	newLevel := CalculateLevel(newTotal)

	err := tx.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{
			"total_purchased_kg": newTotal,
			"loyalty_level":      newLevel,
		}).Error
	if err != nil {
		return false, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update loyalty totals")
	}

	user.TotalPurchasedKg = newTotal
	user.LoyaltyLevel = newLevel
	return newLevel > oldLevel, newLevel, nil
}

// ProgressFor computes progress toward the next tier.
func (s *Service) ProgressFor(user *models.User) Progress {
	current := user.LoyaltyLevel
	if current < 1 {
		current = 1
	}
	currentKg := user.TotalPurchasedKg

	if current >= maxLevel {
		return Progress{
			CurrentLevel:    current,
			CurrentKg:       currentKg,
			NeededKg:        0,
			ProgressPercent: 100,
		}
	}

	next := current + 1
	nextThreshold := levels[next].ThresholdKg
	currentThreshold := levels[current].ThresholdKg

	needed := nextThreshold - currentKg
	totalRange := nextThreshold - currentThreshold

	percent := 0
	if totalRange > 0 {
		percent = int((currentKg - currentThreshold) / totalRange * 100)
	}
	if percent > 100 {
		percent = 100
	}

	return Progress{
		CurrentLevel:    current,
		NextLevel:       &next,
		CurrentKg:       currentKg,
		NeededKg:        needed,
		ProgressPercent: percent,
	}
}

// Levels returns all tier descriptors in order.
func Levels() []LevelInfo {
	out := make([]LevelInfo, 0, maxLevel)
	for i := 1; i <= maxLevel; i++ {
		out = append(out, levels[i])
	}
	return out
}
