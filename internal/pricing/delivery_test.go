package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/monkeysroasters/roastery-backend/pkg/enums"
)

func TestDeliveryRatesFlatCosts(t *testing.T) {
	rates := DefaultDeliveryRates()

	assert.Equal(t, 65, rates.Cost(enums.DeliveryMethodNovaPoshta, 1000))
	assert.Equal(t, 50, rates.Cost(enums.DeliveryMethodUkrposhta, 1000))
	assert.Equal(t, 100, rates.Cost(enums.DeliveryMethodCourier, 1000))
	assert.Equal(t, 65, rates.Cost(enums.DeliveryMethod("mystery"), 1000))
}

func TestDeliveryRatesFreeAtThreshold(t *testing.T) {
	rates := DefaultDeliveryRates()

	assert.Equal(t, 0, rates.Cost(enums.DeliveryMethodCourier, 1500))
	assert.Equal(t, 100, rates.Cost(enums.DeliveryMethodCourier, 1499))
}

func TestDeliveryRatesAmountToFree(t *testing.T) {
	rates := DefaultDeliveryRates()

	assert.Equal(t, 500, rates.AmountToFree(1000))
	assert.Equal(t, 0, rates.AmountToFree(1500))
	assert.Equal(t, 0, rates.AmountToFree(2000))
}
