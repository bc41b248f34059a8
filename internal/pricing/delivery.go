package pricing

import (
	"github.com/monkeysroasters/roastery-backend/pkg/config"
	"github.com/monkeysroasters/roastery-backend/pkg/enums"
)

// DeliveryRates holds the flat delivery costs and the free delivery
// threshold, normally sourced from shop config.
type DeliveryRates struct {
	FreeThreshold int
	NovaPoshta    int
	Ukrposhta     int
	Courier       int
}

// DefaultDeliveryRates returns the shop's standard rate card.
func DefaultDeliveryRates() DeliveryRates {
	return DeliveryRates{FreeThreshold: 1500, NovaPoshta: 65, Ukrposhta: 50, Courier: 100}
}

// DeliveryRatesFromConfig builds the rate card from shop config.
func DeliveryRatesFromConfig(shop config.ShopConfig) DeliveryRates {
	return DeliveryRates{
		FreeThreshold: shop.FreeDeliveryThreshold,
		NovaPoshta:    shop.DeliveryCostNovaPoshta,
		Ukrposhta:     shop.DeliveryCostUkrposhta,
		Courier:       shop.DeliveryCostCourier,
	}
}

// Cost returns the flat rate for the method, waived once the discounted
// order total reaches the free delivery threshold. Unknown methods charge
// the Nova Poshta rate.
func (r DeliveryRates) Cost(method enums.DeliveryMethod, finalTotal int) int {
	if finalTotal >= r.FreeThreshold {
		return 0
	}
	switch method {
	case enums.DeliveryMethodUkrposhta:
		return r.Ukrposhta
	case enums.DeliveryMethodCourier:
		return r.Courier
	default:
		return r.NovaPoshta
	}
}

// AmountToFree reports how much more the discounted total needs to grow
// before delivery becomes free. Zero once the threshold is reached.
func (r DeliveryRates) AmountToFree(finalTotal int) int {
	if finalTotal >= r.FreeThreshold {
		return 0
	}
	return r.FreeThreshold - finalTotal
}
