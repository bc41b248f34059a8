package promos

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/monkeysroasters/roastery-backend/internal/pricing"
	"github.com/monkeysroasters/roastery-backend/pkg/db/models"
	pkgerrors "github.com/monkeysroasters/roastery-backend/pkg/errors"
	"github.com/monkeysroasters/roastery-backend/pkg/logger"
	"github.com/monkeysroasters/roastery-backend/pkg/metrics"
)

// Validation outcomes reported to metrics.
const (
	outcomeValid    = "valid"
	outcomeNotFound = "not_found"
	outcomeUnusable = "unusable"
	outcomeMinOrder = "min_order"
)

// ValidationResult describes a promo accepted against the current cart.
type ValidationResult struct {
	Code    string `json:"code"`
	Percent int    `json:"percent"`
}

// Service exposes promo validation and staff promo management.
type Service interface {
	ValidateForCart(ctx context.Context, code string, subtotal int) (*ValidationResult, error)
	FindUsable(ctx context.Context, code string, now time.Time) (*models.PromoCode, error)
	ListPromos(ctx context.Context) ([]models.PromoCode, error)
	CreatePromo(ctx context.Context, input PromoInput) (*models.PromoCode, error)
	UpdatePromo(ctx context.Context, promoID uuid.UUID, input PromoUpdateInput) error
	DeletePromo(ctx context.Context, promoID uuid.UUID) error
}

// PromoInput holds the validated payload to create a promo code.
type PromoInput struct {
	Code           string
	Percent        int
	Active         bool
	ValidFrom      *time.Time
	ValidUntil     *time.Time
	UsageLimit     *int
	MinOrderAmount int
}

// PromoUpdateInput holds optional mutation values for a promo code.
type PromoUpdateInput struct {
	Percent        *int
	Active         *bool
	ValidFrom      *time.Time
	ValidUntil     *time.Time
	UsageLimit     *int
	MinOrderAmount *int
}

type service struct {
	repo    Repository
	metrics *metrics.OrderMetrics
	logg    *logger.Logger
	now     func() time.Time
}

// NewService constructs the promo service.
func NewService(repo Repository, orderMetrics *metrics.OrderMetrics, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("promos repository required")
	}
	return &service{repo: repo, metrics: orderMetrics, logg: logg, now: time.Now}, nil
}

// ValidateForCart checks a code against the validity window, usage cap, and
// the cart's current subtotal. It never consumes the code; consumption
// happens once, when the order is placed.
func (s *service) ValidateForCart(ctx context.Context, code string, subtotal int) (*ValidationResult, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "promo code required")
	}

	promo, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.metrics.IncPromoCheck(outcomeNotFound)
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "promo code not found").
				WithDetails(map[string]string{"reason": outcomeNotFound})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load promo code")
	}

	now := s.now()
	if !pricing.PromoUsable(promo, now) {
		s.metrics.IncPromoCheck(outcomeUnusable)
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "promo code is not usable").
			WithDetails(map[string]string{"reason": unusableReason(promo, now)})
	}

	if promo.MinOrderAmount > 0 && subtotal < promo.MinOrderAmount {
		s.metrics.IncPromoCheck(outcomeMinOrder)
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order subtotal below promo minimum").
			WithDetails(map[string]any{
				"reason":           outcomeMinOrder,
				"min_order_amount": promo.MinOrderAmount,
			})
	}

	s.metrics.IncPromoCheck(outcomeValid)
	return &ValidationResult{Code: promo.Code, Percent: promo.Percent}, nil
}

// FindUsable loads a promo that passes the usability checks, for checkout
// composition. Subtotal minimums are the caller's concern.
func (s *service) FindUsable(ctx context.Context, code string, now time.Time) (*models.PromoCode, error) {
	promo, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "promo code not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load promo code")
	}
	if !pricing.PromoUsable(promo, now) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "promo code is not usable")
	}
	return promo, nil
}

func (s *service) ListPromos(ctx context.Context) ([]models.PromoCode, error) {
	promos, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list promo codes")
	}
	return promos, nil
}

func (s *service) CreatePromo(ctx context.Context, input PromoInput) (*models.PromoCode, error) {
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "promo code required")
	}
	if input.Percent <= 0 || input.Percent > 100 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "percent must be between 1 and 100")
	}
	if input.UsageLimit != nil && *input.UsageLimit <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "usage limit must be positive")
	}
	if input.MinOrderAmount < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "min order amount cannot be negative")
	}

	promo, err := s.repo.Create(ctx, &models.PromoCode{
		Code:           code,
		Percent:        input.Percent,
		Active:         input.Active,
		ValidFrom:      input.ValidFrom,
		ValidUntil:     input.ValidUntil,
		UsageLimit:     input.UsageLimit,
		MinOrderAmount: input.MinOrderAmount,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create promo code")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "promo_code", promo.Code), "promo code created")
	}
	return promo, nil
}

func (s *service) UpdatePromo(ctx context.Context, promoID uuid.UUID, input PromoUpdateInput) error {
	updates := map[string]any{}
	if input.Percent != nil {
		if *input.Percent <= 0 || *input.Percent > 100 {
			return pkgerrors.New(pkgerrors.CodeValidation, "percent must be between 1 and 100")
		}
		updates["percent"] = *input.Percent
	}
	if input.Active != nil {
		updates["active"] = *input.Active
	}
	if input.ValidFrom != nil {
		updates["valid_from"] = *input.ValidFrom
	}
	if input.ValidUntil != nil {
		updates["valid_until"] = *input.ValidUntil
	}
	if input.UsageLimit != nil {
		updates["usage_limit"] = *input.UsageLimit
	}
	if input.MinOrderAmount != nil {
		updates["min_order_amount"] = *input.MinOrderAmount
	}
	if len(updates) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	if err := s.repo.Update(ctx, promoID, updates); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "promo code not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update promo code")
	}
	return nil
}

func (s *service) DeletePromo(ctx context.Context, promoID uuid.UUID) error {
	if err := s.repo.Delete(ctx, promoID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "promo code not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete promo code")
	}
	return nil
}

func unusableReason(promo *models.PromoCode, now time.Time) string {
	switch {
	case !promo.Active:
		return "inactive"
	case promo.ValidFrom != nil && now.Before(*promo.ValidFrom):
		return "not_started"
	case promo.ValidUntil != nil && now.After(*promo.ValidUntil):
		return "expired"
	case promo.UsageLimit != nil && promo.UsedCount >= *promo.UsageLimit:
		return "exhausted"
	default:
		return outcomeUnusable
	}
}
