package discounts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/monkeysroasters/roastery-backend/pkg/db/models"
)

// Repository defines persistence operations for volume discount rules.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, rule *models.VolumeDiscountRule) (*models.VolumeDiscountRule, error)
	Update(ctx context.Context, ruleID uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, ruleID uuid.UUID) error
	FindByID(ctx context.Context, ruleID uuid.UUID) (*models.VolumeDiscountRule, error)
	List(ctx context.Context) ([]models.VolumeDiscountRule, error)
	ListActive(ctx context.Context) ([]models.VolumeDiscountRule, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, rule *models.VolumeDiscountRule) (*models.VolumeDiscountRule, error) {
	if err := r.db.WithContext(ctx).Create(rule).Error; err != nil {
		return nil, err
	}
	return rule, nil
}

func (r *repository) Update(ctx context.Context, ruleID uuid.UUID, updates map[string]any) error {
	result := r.db.WithContext(ctx).
		Model(&models.VolumeDiscountRule{}).
		Where("id = ?", ruleID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, ruleID uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.VolumeDiscountRule{}, "id = ?", ruleID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) FindByID(ctx context.Context, ruleID uuid.UUID) (*models.VolumeDiscountRule, error) {
	var rule models.VolumeDiscountRule
	if err := r.db.WithContext(ctx).First(&rule, "id = ?", ruleID).Error; err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *repository) List(ctx context.Context) ([]models.VolumeDiscountRule, error) {
	var rules []models.VolumeDiscountRule
	err := r.db.WithContext(ctx).
		Order("kind ASC, threshold ASC").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

// ListActive returns rules eligible for discount evaluation.
func (r *repository) ListActive(ctx context.Context) ([]models.VolumeDiscountRule, error) {
	var rules []models.VolumeDiscountRule
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("kind ASC, threshold ASC").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}
