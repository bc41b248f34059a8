package orders

import "github.com/monkeysroasters/roastery-backend/pkg/enums"

// allowedTransitions encodes the forward-only order lifecycle. Cancellation
// is reachable until the parcel is delivered.
var allowedTransitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPending: {enums.OrderStatusPaid, enums.OrderStatusCancelled},
	enums.OrderStatusPaid:    {enums.OrderStatusShipped, enums.OrderStatusCancelled},
	enums.OrderStatusShipped: {enums.OrderStatusDelivered, enums.OrderStatusCancelled},
}

// CanTransition reports whether an order may move from one status to
// another. Delivered and cancelled are terminal.
func CanTransition(from, to enums.OrderStatus) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
