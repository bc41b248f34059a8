package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monkeysroasters/roastery-backend/pkg/db/models"
	"github.com/monkeysroasters/roastery-backend/pkg/enums"
)

func coffeeProduct(price300, price1kg int) models.Product {
	return models.Product{Name: "Kenya Kiambu AA", Price300g: price300, Price1kg: price1kg}
}

func intPtr(v int) *int { return &v }

func timePtr(t time.Time) *time.Time { return &t }

func TestComputeMetricsFormats(t *testing.T) {
	lines := []Line{
		{Product: coffeeProduct(140, 400), Format: enums.ProductFormatPack300, Quantity: 2},
		{Product: coffeeProduct(140, 400), Format: enums.ProductFormatBag1Kg, Quantity: 1},
		{Product: coffeeProduct(250, 0), Format: enums.ProductFormatUnit, Quantity: 3},
	}

	m := ComputeMetrics(lines)

	assert.Equal(t, 2, m.Packs300)
	assert.InDelta(t, 1.6, m.WeightKg, 1e-9)
	// 2*140 + 1*400 + 3*250: unit items price from the 300g column
	assert.Equal(t, 1430, m.Subtotal)
}

func TestComputeMetricsUnknownFormatPricesZero(t *testing.T) {
	lines := []Line{
		{Product: coffeeProduct(140, 400), Format: enums.ProductFormat("500g"), Quantity: 2},
	}

	m := ComputeMetrics(lines)

	assert.Equal(t, 0, m.Subtotal)
	assert.Equal(t, 0.0, m.WeightKg)
	assert.Equal(t, 0, m.Packs300)
}

func TestResolveVolumePercentTakesMaxNotSum(t *testing.T) {
	rules := []models.VolumeDiscountRule{
		{Kind: enums.VolumeRuleKindPacks, Threshold: 5, Percent: 10, IsActive: true},
		{Kind: enums.VolumeRuleKindPacks, Threshold: 7, Percent: 25, IsActive: true},
		{Kind: enums.VolumeRuleKindWeight, Threshold: 2.0, Percent: 15, IsActive: true},
	}

	m := Metrics{Packs300: 8, WeightKg: 2.4}
	assert.Equal(t, 25, ResolveVolumePercent(m, rules))
}

func TestResolveVolumePercentThresholdInclusive(t *testing.T) {
	rules := []models.VolumeDiscountRule{
		{Kind: enums.VolumeRuleKindPacks, Threshold: 7, Percent: 25, IsActive: true},
	}

	assert.Equal(t, 25, ResolveVolumePercent(Metrics{Packs300: 7}, rules))
	assert.Equal(t, 0, ResolveVolumePercent(Metrics{Packs300: 6}, rules))
}

func TestResolveVolumePercentSkipsInactiveRules(t *testing.T) {
	rules := []models.VolumeDiscountRule{
		{Kind: enums.VolumeRuleKindPacks, Threshold: 3, Percent: 30, IsActive: false},
		{Kind: enums.VolumeRuleKindPacks, Threshold: 3, Percent: 10, IsActive: true},
	}

	assert.Equal(t, 10, ResolveVolumePercent(Metrics{Packs300: 4}, rules))
}

func TestResolveVolumePercentLegacyFallback(t *testing.T) {
	assert.Equal(t, 25, ResolveVolumePercent(Metrics{Packs300: 7}, nil))
	assert.Equal(t, 25, ResolveVolumePercent(Metrics{WeightKg: 2.0}, nil))
	assert.Equal(t, 0, ResolveVolumePercent(Metrics{Packs300: 6, WeightKg: 1.9}, nil))
}

func TestPromoUsable(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

	promo := &models.PromoCode{Code: "MONKEY10", Percent: 10, Active: true}
	assert.True(t, PromoUsable(promo, now))

	assert.False(t, PromoUsable(nil, now))
	assert.False(t, PromoUsable(&models.PromoCode{Percent: 10, Active: false}, now))
	assert.False(t, PromoUsable(&models.PromoCode{
		Active:    true,
		ValidFrom: timePtr(now.Add(time.Hour)),
	}, now))
	assert.False(t, PromoUsable(&models.PromoCode{
		Active:     true,
		ValidUntil: timePtr(now.Add(-time.Hour)),
	}, now))
	assert.False(t, PromoUsable(&models.PromoCode{
		Active:     true,
		UsageLimit: intPtr(5),
		UsedCount:  5,
	}, now))

	// limit not yet reached
	assert.True(t, PromoUsable(&models.PromoCode{
		Active:     true,
		UsageLimit: intPtr(5),
		UsedCount:  4,
	}, now))
}

func TestComposeSevenPacksGetsQuarterOff(t *testing.T) {
	lines := []Line{
		{Product: coffeeProduct(140, 400), Format: enums.ProductFormatPack300, Quantity: 7},
	}

	b := Compose(lines, 0, nil, nil, time.Now())

	require.Equal(t, 980, b.Subtotal)
	assert.Equal(t, 25, b.VolumePercent)
	assert.Equal(t, 245, b.VolumeAmount)
	assert.Equal(t, 245, b.TotalDiscount)
	assert.Equal(t, 735, b.FinalTotal)
	assert.True(t, b.WeightTierReached)
	assert.Nil(t, b.NextPackTier)
}

func TestComposePromoReplacesStackOnlyWhenBetter(t *testing.T) {
	now := time.Now()
	lines := []Line{
		{Product: coffeeProduct(140, 400), Format: enums.ProductFormatPack300, Quantity: 7},
	}

	weak := &models.PromoCode{Code: "WELCOME10", Percent: 10, Active: true}
	b := Compose(lines, 0, weak, nil, now)
	assert.Equal(t, 25, b.VolumePercent)
	assert.Equal(t, 0, b.PromoPercent)
	assert.Equal(t, 735, b.FinalTotal)

	strong := &models.PromoCode{Code: "BLACKFRIDAY", Percent: 30, Active: true}
	b = Compose(lines, 0, strong, nil, now)
	assert.Equal(t, 0, b.VolumePercent)
	assert.Equal(t, 30, b.PromoPercent)
	assert.Equal(t, 294, b.PromoAmount)
	assert.Equal(t, 686, b.FinalTotal)
}

func TestComposePromoNeverCombinesWithStack(t *testing.T) {
	now := time.Now()
	lines := []Line{
		{Product: coffeeProduct(140, 400), Format: enums.ProductFormatPack300, Quantity: 7},
	}

	promo := &models.PromoCode{Code: "BIG40", Percent: 40, Active: true}
	b := Compose(lines, 5, promo, nil, now)

	assert.Equal(t, 40, b.TotalPercent)
	assert.Equal(t, 0, b.VolumeAmount)
	assert.Equal(t, 0, b.LoyaltyAmount)
	assert.Equal(t, b.PromoAmount, b.TotalDiscount)
}

func TestComposeStacksVolumeAndLoyalty(t *testing.T) {
	lines := []Line{
		{Product: coffeeProduct(100, 300), Format: enums.ProductFormatPack300, Quantity: 7},
	}

	b := Compose(lines, 5, nil, nil, time.Now())

	assert.Equal(t, 30, b.TotalPercent)
	assert.Equal(t, 175, b.VolumeAmount)
	assert.Equal(t, 35, b.LoyaltyAmount)
	assert.Equal(t, 490, b.FinalTotal)
}

func TestComposeDiscountAmountsFloor(t *testing.T) {
	// 3 packs at 33: subtotal 99, 25% would be 24.75, floors to 24
	lines := []Line{
		{Product: coffeeProduct(33, 99), Format: enums.ProductFormatPack300, Quantity: 3},
	}
	rules := []models.VolumeDiscountRule{
		{Kind: enums.VolumeRuleKindPacks, Threshold: 3, Percent: 25, IsActive: true},
	}

	b := Compose(lines, 0, nil, rules, time.Now())

	assert.Equal(t, 99, b.Subtotal)
	assert.Equal(t, 24, b.VolumeAmount)
	assert.Equal(t, 75, b.FinalTotal)
}

func TestComposeEmptyCartIsZeroed(t *testing.T) {
	b := Compose(nil, 0, nil, nil, time.Now())

	assert.Equal(t, 0, b.Subtotal)
	assert.Equal(t, 0, b.TotalDiscount)
	assert.Equal(t, 0, b.FinalTotal)
	require.NotNil(t, b.NextPackTier)
	assert.Equal(t, 7, *b.NextPackTier)
}

func TestComposeProgressFields(t *testing.T) {
	lines := []Line{
		{Product: coffeeProduct(140, 400), Format: enums.ProductFormatPack300, Quantity: 4},
	}

	b := Compose(lines, 0, nil, nil, time.Now())

	require.NotNil(t, b.NextPackTier)
	assert.Equal(t, 7, *b.NextPackTier)
	assert.False(t, b.WeightTierReached)
	assert.InDelta(t, 1.2, b.WeightKg, 1e-9)
}
