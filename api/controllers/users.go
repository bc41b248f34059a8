package controllers

import (
	"net/http"

	"github.com/monkeysroasters/roastery-backend/api/middleware"
	"github.com/monkeysroasters/roastery-backend/api/responses"
	"github.com/monkeysroasters/roastery-backend/api/validators"
	"github.com/monkeysroasters/roastery-backend/internal/loyalty"
	"github.com/monkeysroasters/roastery-backend/internal/users"
	"github.com/monkeysroasters/roastery-backend/pkg/logger"
)

type registerRequest struct {
	Username   *string `json:"username,omitempty" validate:"omitempty,max=64"`
	FirstName  string  `json:"first_name" validate:"omitempty,max=128"`
	ReferredBy string  `json:"referred_by" validate:"omitempty,max=16"`
}

// RegisterUser creates or refreshes the caller's account. The bot gateway
// calls this on /start, passing along any referral code from the deep link.
func RegisterUser(svc users.Service, loyaltySvc *loyalty.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())

		var payload registerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.Ensure(r.Context(), users.EnsureInput{
			UserID:     userID,
			Username:   payload.Username,
			FirstName:  payload.FirstName,
			ReferredBy: payload.ReferredBy,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newProfileResponse(user, loyaltySvc.ProgressFor(user)))
	}
}

// GetProfile returns the caller's account, loyalty standing, and referral
// state in one payload.
func GetProfile(svc users.Service, loyaltySvc *loyalty.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())

		user, err := svc.Get(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newProfileResponse(user, loyaltySvc.ProgressFor(user)))
	}
}

// GetLoyalty returns the tier ladder plus the caller's progress on it.
func GetLoyalty(svc users.Service, loyaltySvc *loyalty.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())

		user, err := svc.Get(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"levels":   loyalty.Levels(),
			"current":  loyalty.LevelInfoFor(user.LoyaltyLevel),
			"progress": loyaltySvc.ProgressFor(user),
			"total_kg": user.TotalPurchasedKg,
		})
	}
}
