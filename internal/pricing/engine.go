package pricing

import (
	"sort"
	"time"

	"github.com/monkeysroasters/roastery-backend/pkg/db/models"
	"github.com/monkeysroasters/roastery-backend/pkg/enums"
)

// Legacy volume thresholds, used when no rules exist in the database. The
// seeded rules mirror these values.
var legacyPackTiers = map[int]int{
	7: 25,
}

const (
	legacyWeightThresholdKg = 2.0
	legacyWeightPercent     = 25
)

// Line pairs a cart row with its product for pricing.
type Line struct {
	Product  models.Product
	Format   enums.ProductFormat
	Quantity int
}

// Metrics aggregates a cart for discount resolution.
type Metrics struct {
	Packs300 int
	WeightKg float64
	Subtotal int
}

// Breakdown is the complete discount calculation result.
type Breakdown struct {
	VolumePercent  int `json:"volume_percent"`
	LoyaltyPercent int `json:"loyalty_percent"`
	PromoPercent   int `json:"promo_percent"`
	TotalPercent   int `json:"total_percent"`

	Subtotal      int `json:"subtotal"`
	VolumeAmount  int `json:"volume_amount"`
	LoyaltyAmount int `json:"loyalty_amount"`
	PromoAmount   int `json:"promo_amount"`
	TotalDiscount int `json:"total_discount"`
	FinalTotal    int `json:"final_total"`

	Packs300          int     `json:"packs_300g"`
	WeightKg          float64 `json:"weight_kg"`
	NextPackTier      *int    `json:"next_pack_tier,omitempty"`
	WeightTierReached bool    `json:"weight_tier_reached"`
}

// ComputeMetrics walks the cart lines and aggregates pack count, weight, and
// subtotal. Single-unit items carry their price in the 300g column and add no
// weight. Unknown formats price at zero rather than failing the quote.
func ComputeMetrics(lines []Line) Metrics {
	var m Metrics
	for _, line := range lines {
		var price int
		switch line.Format {
		case enums.ProductFormatPack300:
			m.Packs300 += line.Quantity
			m.WeightKg += 0.3 * float64(line.Quantity)
			price = line.Product.Price300g
		case enums.ProductFormatUnit:
			price = line.Product.Price300g
		case enums.ProductFormatBag1Kg:
			m.WeightKg += 1.0 * float64(line.Quantity)
			price = line.Product.Price1kg
		default:
			price = 0
		}
		m.Subtotal += price * line.Quantity
	}
	return m
}

// ResolveVolumePercent returns the best matching volume discount. With rules
// present it takes the max over active matching rules; without rules it falls
// back to the legacy built-in tiers.
func ResolveVolumePercent(m Metrics, rules []models.VolumeDiscountRule) int {
	best := 0

	if len(rules) > 0 {
		for _, rule := range rules {
			if !rule.IsActive {
				continue
			}
			switch rule.Kind {
			case enums.VolumeRuleKindPacks:
				if float64(m.Packs300) >= rule.Threshold && rule.Percent > best {
					best = rule.Percent
				}
			case enums.VolumeRuleKindWeight:
				if m.WeightKg >= rule.Threshold && rule.Percent > best {
					best = rule.Percent
				}
			}
		}
		return best
	}

	for threshold, percent := range legacyPackTiers {
		if m.Packs300 >= threshold && percent > best {
			best = percent
		}
	}
	if m.WeightKg >= legacyWeightThresholdKg && legacyWeightPercent > best {
		best = legacyWeightPercent
	}
	return best
}

// PromoUsable reports whether the promo code can currently be applied. It
// checks the active flag, the validity window, and the usage limit. Usage is
// only consumed when an order is actually placed.
func PromoUsable(promo *models.PromoCode, now time.Time) bool {
	if promo == nil || !promo.Active {
		return false
	}
	if promo.ValidFrom != nil && now.Before(*promo.ValidFrom) {
		return false
	}
	if promo.ValidUntil != nil && now.After(*promo.ValidUntil) {
		return false
	}
	if promo.UsageLimit != nil && promo.UsedCount >= *promo.UsageLimit {
		return false
	}
	return true
}

// Compose builds the full discount breakdown for a cart. Volume and loyalty
// percentages stack; a usable promo replaces the stack only when it beats it.
// The two paths never combine.
func Compose(lines []Line, loyaltyPercent int, promo *models.PromoCode, rules []models.VolumeDiscountRule, now time.Time) Breakdown {
	m := ComputeMetrics(lines)

	volumePercent := ResolveVolumePercent(m, rules)
	stacked := volumePercent + loyaltyPercent

	promoPercent := 0
	usePromo := false
	if PromoUsable(promo, now) {
		promoPercent = promo.Percent
		if promoPercent > stacked {
			usePromo = true
		}
	}

	finalVolume, finalLoyalty, finalPromo := volumePercent, loyaltyPercent, 0
	totalPercent := stacked
	if usePromo {
		finalVolume, finalLoyalty, finalPromo = 0, 0, promoPercent
		totalPercent = promoPercent
	}

	volumeAmount := m.Subtotal * finalVolume / 100
	loyaltyAmount := m.Subtotal * finalLoyalty / 100
	promoAmount := m.Subtotal * finalPromo / 100
	totalDiscount := volumeAmount + loyaltyAmount + promoAmount

	return Breakdown{
		VolumePercent:     finalVolume,
		LoyaltyPercent:    finalLoyalty,
		PromoPercent:      finalPromo,
		TotalPercent:      totalPercent,
		Subtotal:          m.Subtotal,
		VolumeAmount:      volumeAmount,
		LoyaltyAmount:     loyaltyAmount,
		PromoAmount:       promoAmount,
		TotalDiscount:     totalDiscount,
		FinalTotal:        m.Subtotal - totalDiscount,
		Packs300:          m.Packs300,
		WeightKg:          m.WeightKg,
		NextPackTier:      nextPackTier(m.Packs300),
		WeightTierReached: m.WeightKg >= legacyWeightThresholdKg,
	}
}

func nextPackTier(packs int) *int {
	thresholds := make([]int, 0, len(legacyPackTiers))
	for t := range legacyPackTiers {
		thresholds = append(thresholds, t)
	}
	sort.Ints(thresholds)
	for _, t := range thresholds {
		if packs < t {
			tier := t
			return &tier
		}
	}
	return nil
}
