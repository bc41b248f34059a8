package discounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/monkeysroasters/roastery-backend/pkg/db/models"
	"github.com/monkeysroasters/roastery-backend/pkg/enums"
	pkgerrors "github.com/monkeysroasters/roastery-backend/pkg/errors"
	"github.com/monkeysroasters/roastery-backend/pkg/logger"
)

// Service manages the admin-editable volume discount rules.
type Service interface {
	ActiveRules(ctx context.Context) ([]models.VolumeDiscountRule, error)
	ListRules(ctx context.Context) ([]models.VolumeDiscountRule, error)
	CreateRule(ctx context.Context, input RuleInput) (*models.VolumeDiscountRule, error)
	UpdateRule(ctx context.Context, ruleID uuid.UUID, input RuleUpdateInput) (*models.VolumeDiscountRule, error)
	DeleteRule(ctx context.Context, ruleID uuid.UUID) error
}

// RuleInput holds the validated payload to create a rule.
type RuleInput struct {
	Kind      string
	Threshold float64
	Percent   int
	IsActive  bool
}

// RuleUpdateInput holds optional mutation values for a rule.
type RuleUpdateInput struct {
	Threshold *float64
	Percent   *int
	IsActive  *bool
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService constructs the volume rule service.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("discounts repository required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) ActiveRules(ctx context.Context) ([]models.VolumeDiscountRule, error) {
	rules, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list active volume rules")
	}
	return rules, nil
}

func (s *service) ListRules(ctx context.Context) ([]models.VolumeDiscountRule, error) {
	rules, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list volume rules")
	}
	return rules, nil
}

func (s *service) CreateRule(ctx context.Context, input RuleInput) (*models.VolumeDiscountRule, error) {
	kind, err := enums.ParseVolumeRuleKind(input.Kind)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown rule kind")
	}
	if err := validateRuleValues(input.Threshold, input.Percent); err != nil {
		return nil, err
	}

	rule, err := s.repo.Create(ctx, &models.VolumeDiscountRule{
		Kind:      kind,
		Threshold: input.Threshold,
		Percent:   input.Percent,
		IsActive:  input.IsActive,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create volume rule")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "rule_id", rule.ID.String()), "volume rule created")
	}
	return rule, nil
}

func (s *service) UpdateRule(ctx context.Context, ruleID uuid.UUID, input RuleUpdateInput) (*models.VolumeDiscountRule, error) {
	updates := map[string]any{}
	if input.Threshold != nil {
		if *input.Threshold <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "threshold must be positive")
		}
		updates["threshold"] = *input.Threshold
	}
	if input.Percent != nil {
		if *input.Percent < 0 || *input.Percent > 100 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "percent must be between 0 and 100")
		}
		updates["percent"] = *input.Percent
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	if err := s.repo.Update(ctx, ruleID, updates); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "volume rule not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update volume rule")
	}

	rule, err := s.repo.FindByID(ctx, ruleID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload volume rule")
	}
	return rule, nil
}

func (s *service) DeleteRule(ctx context.Context, ruleID uuid.UUID) error {
	if err := s.repo.Delete(ctx, ruleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "volume rule not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete volume rule")
	}
	return nil
}

func validateRuleValues(threshold float64, percent int) error {
	if threshold <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "threshold must be positive")
	}
	if percent < 0 || percent > 100 {
		return pkgerrors.New(pkgerrors.CodeValidation, "percent must be between 0 and 100")
	}
	return nil
}
