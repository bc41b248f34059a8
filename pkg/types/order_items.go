package types

import (
	"github.com/google/uuid"

	"github.com/monkeysroasters/roastery-backend/pkg/enums"
)

// OrderItem is one immutable line of an order snapshot. Prices are captured
// at assembly time; later catalog edits never touch persisted orders.
type OrderItem struct {
	ProductID uuid.UUID           `json:"product_id"`
	Name      string              `json:"name"`
	Format    enums.ProductFormat `json:"format"`
	Quantity  int                 `json:"quantity"`
	UnitPrice int                 `json:"unit_price"`
	LineTotal int                 `json:"line_total"`
}

// OrderItems is the jsonb-serialized snapshot column on orders.
type OrderItems []OrderItem

// WeightKg returns the coffee weight of the snapshot, used for loyalty
// accrual when the order is paid.
func (items OrderItems) WeightKg() float64 {
	var total float64
	for _, item := range items {
		total += item.Format.WeightKg() * float64(item.Quantity)
	}
	return total
}
