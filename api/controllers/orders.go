package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/monkeysroasters/roastery-backend/api/middleware"
	"github.com/monkeysroasters/roastery-backend/api/responses"
	"github.com/monkeysroasters/roastery-backend/api/validators"
	"github.com/monkeysroasters/roastery-backend/internal/checkout"
	"github.com/monkeysroasters/roastery-backend/internal/orders"
	pkgerrors "github.com/monkeysroasters/roastery-backend/pkg/errors"
	"github.com/monkeysroasters/roastery-backend/pkg/logger"
)

const maxOrderHistory = 50

// ListOrders returns the caller's order history, newest first. Cancelled
// orders are not shown.
func ListOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())

		limit, err := validators.ParseQueryInt(r, "limit", 10, 1, maxOrderHistory)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListUserOrders(r.Context(), userID, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderResponses(list))
	}
}

func GetOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())

		number := strings.TrimSpace(chi.URLParam(r, "number"))
		if number == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "order number is required"))
			return
		}

		order, err := svc.GetByNumber(r.Context(), userID, number)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

type checkoutRequest struct {
	DeliveryMethod string  `json:"delivery_method" validate:"omitempty,oneof=nova_poshta ukrposhta courier"`
	City           string  `json:"city" validate:"required,max=128"`
	Address        string  `json:"address" validate:"required,max=256"`
	Recipient      string  `json:"recipient" validate:"required,max=128"`
	Phone          string  `json:"phone" validate:"required,max=32"`
	Grind          string  `json:"grind" validate:"omitempty,oneof=beans espresso filter turka"`
	Comment        *string `json:"comment,omitempty" validate:"omitempty,max=512"`
	PromoCode      string  `json:"promo_code" validate:"omitempty,max=64"`
}

type checkoutResponse struct {
	Order      orderResponse `json:"order"`
	PaymentURL string        `json:"payment_url,omitempty"`
}

// Checkout turns the cart into an order and opens a hosted payment link.
func Checkout(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Checkout(r.Context(), userID, orders.CreateOrderInput{
			DeliveryMethod: payload.DeliveryMethod,
			City:           payload.City,
			Address:        payload.Address,
			Recipient:      payload.Recipient,
			Phone:          payload.Phone,
			Grind:          payload.Grind,
			Comment:        payload.Comment,
			PromoCode:      payload.PromoCode,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, checkoutResponse{
			Order:      newOrderResponse(result.Order),
			PaymentURL: result.PaymentURL,
		})
	}
}
