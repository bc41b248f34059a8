package controllers

import (
	"net/http"

	"github.com/monkeysroasters/roastery-backend/api/responses"
	"github.com/monkeysroasters/roastery-backend/api/validators"
	"github.com/monkeysroasters/roastery-backend/internal/discounts"
	"github.com/monkeysroasters/roastery-backend/pkg/logger"
)

func AdminListVolumeRules(svc discounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rules, err := svc.ListRules(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newVolumeRuleResponses(rules))
	}
}

type createRuleRequest struct {
	Kind      string  `json:"kind" validate:"required,oneof=packs weight"`
	Threshold float64 `json:"threshold" validate:"required,gt=0"`
	Percent   int     `json:"percent" validate:"required,min=1,max=100"`
	IsActive  *bool   `json:"is_active,omitempty"`
}

func AdminCreateVolumeRule(svc discounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createRuleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		active := true
		if payload.IsActive != nil {
			active = *payload.IsActive
		}

		rule, err := svc.CreateRule(r.Context(), discounts.RuleInput{
			Kind:      payload.Kind,
			Threshold: payload.Threshold,
			Percent:   payload.Percent,
			IsActive:  active,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newVolumeRuleResponse(rule))
	}
}

type updateRuleRequest struct {
	Threshold *float64 `json:"threshold,omitempty" validate:"omitempty,gt=0"`
	Percent   *int     `json:"percent,omitempty" validate:"omitempty,min=1,max=100"`
	IsActive  *bool    `json:"is_active,omitempty"`
}

func AdminUpdateVolumeRule(svc discounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ruleID, err := pathUUID(r, "ruleID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateRuleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rule, err := svc.UpdateRule(r.Context(), ruleID, discounts.RuleUpdateInput{
			Threshold: payload.Threshold,
			Percent:   payload.Percent,
			IsActive:  payload.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newVolumeRuleResponse(rule))
	}
}

func AdminDeleteVolumeRule(svc discounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ruleID, err := pathUUID(r, "ruleID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteRule(r.Context(), ruleID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
