package controllers

import (
	"net/http"

	"github.com/monkeysroasters/roastery-backend/api/middleware"
	"github.com/monkeysroasters/roastery-backend/api/responses"
	"github.com/monkeysroasters/roastery-backend/api/validators"
	"github.com/monkeysroasters/roastery-backend/internal/cart"
	"github.com/monkeysroasters/roastery-backend/internal/promos"
	"github.com/monkeysroasters/roastery-backend/pkg/logger"
)

type validatePromoRequest struct {
	Code string `json:"code" validate:"required,max=64"`
}

// ValidatePromo checks a promo code against the caller's current cart and
// returns the discount it would grant.
func ValidatePromo(promoSvc promos.Service, cartSvc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())

		var payload validatePromoRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := cartSvc.GetCart(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := promoSvc.ValidateForCart(r.Context(), payload.Code, dto.Subtotal)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
