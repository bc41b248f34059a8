package promos

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/monkeysroasters/roastery-backend/pkg/db/models"
	pkgerrors "github.com/monkeysroasters/roastery-backend/pkg/errors"
)

type stubPromosRepo struct {
	byCode map[string]*models.PromoCode
}

func newStubPromosRepo() *stubPromosRepo {
	return &stubPromosRepo{byCode: make(map[string]*models.PromoCode)}
}

func (s *stubPromosRepo) add(promo *models.PromoCode) {
	if promo.ID == uuid.Nil {
		promo.ID = uuid.New()
	}
	s.byCode[promo.Code] = promo
}

func (s *stubPromosRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubPromosRepo) Create(ctx context.Context, promo *models.PromoCode) (*models.PromoCode, error) {
	s.add(promo)
	return promo, nil
}

func (s *stubPromosRepo) Update(ctx context.Context, promoID uuid.UUID, updates map[string]any) error {
	for _, promo := range s.byCode {
		if promo.ID == promoID {
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (s *stubPromosRepo) Delete(ctx context.Context, promoID uuid.UUID) error {
	for code, promo := range s.byCode {
		if promo.ID == promoID {
			delete(s.byCode, code)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (s *stubPromosRepo) FindByCode(ctx context.Context, code string) (*models.PromoCode, error) {
	promo, ok := s.byCode[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return promo, nil
}

func (s *stubPromosRepo) List(ctx context.Context) ([]models.PromoCode, error) {
	var out []models.PromoCode
	for _, promo := range s.byCode {
		out = append(out, *promo)
	}
	return out, nil
}

func (s *stubPromosRepo) Consume(ctx context.Context, promoID uuid.UUID) (bool, error) {
	for _, promo := range s.byCode {
		if promo.ID != promoID {
			continue
		}
		if promo.UsageLimit != nil && promo.UsedCount >= *promo.UsageLimit {
			return false, nil
		}
		promo.UsedCount++
		return true, nil
	}
	return false, nil
}

func newPromoService(t *testing.T, repo Repository) Service {
	t.Helper()

	svc, err := NewService(repo, nil, nil)
	require.NoError(t, err)
	return svc
}

func validationReason(t *testing.T, err error) string {
	t.Helper()

	domainErr := pkgerrors.As(err)
	require.NotNil(t, domainErr)
	require.Equal(t, pkgerrors.CodeValidation, domainErr.Code())
	details, ok := domainErr.Details().(map[string]string)
	if ok {
		return details["reason"]
	}
	anyDetails, ok := domainErr.Details().(map[string]any)
	require.True(t, ok)
	reason, _ := anyDetails["reason"].(string)
	return reason
}

func TestValidateForCartAcceptsUsablePromo(t *testing.T) {
	repo := newStubPromosRepo()
	repo.add(&models.PromoCode{Code: "WELCOME10", Percent: 10, Active: true})
	svc := newPromoService(t, repo)

	result, err := svc.ValidateForCart(context.Background(), "welcome10", 500)
	require.NoError(t, err)
	assert.Equal(t, "WELCOME10", result.Code)
	assert.Equal(t, 10, result.Percent)
}

func TestValidateForCartRejectsUnknownCode(t *testing.T) {
	svc := newPromoService(t, newStubPromosRepo())

	_, err := svc.ValidateForCart(context.Background(), "NOPE", 500)
	assert.Equal(t, "not_found", validationReason(t, err))
}

func TestValidateForCartRejectsInactiveAndExpired(t *testing.T) {
	repo := newStubPromosRepo()
	repo.add(&models.PromoCode{Code: "OLD", Percent: 10, Active: false})
	past := time.Now().Add(-time.Hour)
	repo.add(&models.PromoCode{Code: "GONE", Percent: 10, Active: true, ValidUntil: &past})
	svc := newPromoService(t, repo)

	_, err := svc.ValidateForCart(context.Background(), "OLD", 500)
	assert.Equal(t, "inactive", validationReason(t, err))

	_, err = svc.ValidateForCart(context.Background(), "GONE", 500)
	assert.Equal(t, "expired", validationReason(t, err))
}

func TestValidateForCartRejectsExhaustedCode(t *testing.T) {
	repo := newStubPromosRepo()
	limit := 5
	repo.add(&models.PromoCode{Code: "CAPPED", Percent: 10, Active: true, UsageLimit: &limit, UsedCount: 5})
	svc := newPromoService(t, repo)

	_, err := svc.ValidateForCart(context.Background(), "CAPPED", 500)
	assert.Equal(t, "exhausted", validationReason(t, err))
}

func TestValidateForCartEnforcesMinOrderAmount(t *testing.T) {
	repo := newStubPromosRepo()
	repo.add(&models.PromoCode{Code: "BIG20", Percent: 20, Active: true, MinOrderAmount: 1000})
	svc := newPromoService(t, repo)

	_, err := svc.ValidateForCart(context.Background(), "BIG20", 999)
	assert.Equal(t, "min_order", validationReason(t, err))

	result, err := svc.ValidateForCart(context.Background(), "BIG20", 1000)
	require.NoError(t, err)
	assert.Equal(t, 20, result.Percent)
}

func TestCreatePromoValidation(t *testing.T) {
	svc := newPromoService(t, newStubPromosRepo())
	ctx := context.Background()

	_, err := svc.CreatePromo(ctx, PromoInput{Code: "", Percent: 10})
	require.NotNil(t, pkgerrors.As(err))

	_, err = svc.CreatePromo(ctx, PromoInput{Code: "ZERO", Percent: 0})
	require.NotNil(t, pkgerrors.As(err))

	promo, err := svc.CreatePromo(ctx, PromoInput{Code: " welcome10 ", Percent: 10, Active: true})
	require.NoError(t, err)
	assert.Equal(t, "WELCOME10", promo.Code)
}
