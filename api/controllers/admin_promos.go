package controllers

import (
	"net/http"
	"time"

	"github.com/monkeysroasters/roastery-backend/api/responses"
	"github.com/monkeysroasters/roastery-backend/api/validators"
	"github.com/monkeysroasters/roastery-backend/internal/promos"
	"github.com/monkeysroasters/roastery-backend/pkg/logger"
)

func AdminListPromos(svc promos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.ListPromos(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newPromoResponses(list))
	}
}

type createPromoRequest struct {
	Code           string     `json:"code" validate:"required,max=64"`
	Percent        int        `json:"percent" validate:"required,min=1,max=100"`
	Active         *bool      `json:"active,omitempty"`
	ValidFrom      *time.Time `json:"valid_from,omitempty"`
	ValidUntil     *time.Time `json:"valid_until,omitempty"`
	UsageLimit     *int       `json:"usage_limit,omitempty" validate:"omitempty,min=1"`
	MinOrderAmount int        `json:"min_order_amount" validate:"omitempty,min=0"`
}

func AdminCreatePromo(svc promos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createPromoRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		active := true
		if payload.Active != nil {
			active = *payload.Active
		}

		promo, err := svc.CreatePromo(r.Context(), promos.PromoInput{
			Code:           payload.Code,
			Percent:        payload.Percent,
			Active:         active,
			ValidFrom:      payload.ValidFrom,
			ValidUntil:     payload.ValidUntil,
			UsageLimit:     payload.UsageLimit,
			MinOrderAmount: payload.MinOrderAmount,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newPromoResponse(promo))
	}
}

type updatePromoRequest struct {
	Percent        *int       `json:"percent,omitempty" validate:"omitempty,min=1,max=100"`
	Active         *bool      `json:"active,omitempty"`
	ValidFrom      *time.Time `json:"valid_from,omitempty"`
	ValidUntil     *time.Time `json:"valid_until,omitempty"`
	UsageLimit     *int       `json:"usage_limit,omitempty" validate:"omitempty,min=1"`
	MinOrderAmount *int       `json:"min_order_amount,omitempty" validate:"omitempty,min=0"`
}

func AdminUpdatePromo(svc promos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		promoID, err := pathUUID(r, "promoID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updatePromoRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.UpdatePromo(r.Context(), promoID, promos.PromoUpdateInput{
			Percent:        payload.Percent,
			Active:         payload.Active,
			ValidFrom:      payload.ValidFrom,
			ValidUntil:     payload.ValidUntil,
			UsageLimit:     payload.UsageLimit,
			MinOrderAmount: payload.MinOrderAmount,
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "updated"})
	}
}

func AdminDeletePromo(svc promos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		promoID, err := pathUUID(r, "promoID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeletePromo(r.Context(), promoID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
