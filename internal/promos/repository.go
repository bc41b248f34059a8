package promos

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/monkeysroasters/roastery-backend/pkg/db/models"
)

// Repository defines persistence operations for promo codes.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, promo *models.PromoCode) (*models.PromoCode, error)
	Update(ctx context.Context, promoID uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, promoID uuid.UUID) error
	FindByCode(ctx context.Context, code string) (*models.PromoCode, error)
	List(ctx context.Context) ([]models.PromoCode, error)
	Consume(ctx context.Context, promoID uuid.UUID) (bool, error)
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

func (r *repository) Create(ctx context.Context, promo *models.PromoCode) (*models.PromoCode, error) {
	if err := r.db.WithContext(ctx).Create(promo).Error; err != nil {
		return nil, err
	}
	return promo, nil
}

func (r *repository) Update(ctx context.Context, promoID uuid.UUID, updates map[string]any) error {
	result := r.db.WithContext(ctx).
		Model(&models.PromoCode{}).
		Where("id = ?", promoID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, promoID uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.PromoCode{}, "id = ?", promoID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindByCode looks up a promo by its canonical upper-cased code.
func (r *repository) FindByCode(ctx context.Context, code string) (*models.PromoCode, error) {
	var promo models.PromoCode
	err := r.db.WithContext(ctx).
		First(&promo, "code = ?", strings.ToUpper(strings.TrimSpace(code))).Error
	if err != nil {
		return nil, err
	}
	return &promo, nil
}

func (r *repository) List(ctx context.Context) ([]models.PromoCode, error) {
	var promos []models.PromoCode
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&promos).Error; err != nil {
		return nil, err
	}
	return promos, nil
}

// Consume advances the usage counter if the cap still allows it. The guard
// and increment run as one statement so concurrent checkouts cannot push a
// capped code past its limit. Returns false when the cap was already reached.
func (r *repository) Consume(ctx context.Context, promoID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.PromoCode{}).
		Where("id = ? AND (usage_limit IS NULL OR used_count < usage_limit)", promoID).
		Update("used_count", gorm.Expr("used_count + 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
