package controllers

import (
	"net/http"

	"github.com/monkeysroasters/roastery-backend/api/responses"
	"github.com/monkeysroasters/roastery-backend/api/validators"
	"github.com/monkeysroasters/roastery-backend/internal/orders"
	"github.com/monkeysroasters/roastery-backend/pkg/logger"
)

// AdminGetOrder looks an order up by id without ownership checks.
func AdminGetOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := pathUUID(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetByID(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

type updateStatusRequest struct {
	Status         string  `json:"status" validate:"required,oneof=pending paid shipped delivered cancelled"`
	TrackingNumber *string `json:"tracking_number,omitempty" validate:"omitempty,max=64"`
}

// AdminUpdateOrderStatus drives the order lifecycle. Moving to paid runs the
// payment side effects; moving to shipped requires a tracking number.
func AdminUpdateOrderStatus(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := pathUUID(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.UpdateStatus(r.Context(), orderID, orders.StatusUpdateInput{
			Status:         payload.Status,
			TrackingNumber: payload.TrackingNumber,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderResponse(order))
	}
}
