package users

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/monkeysroasters/roastery-backend/pkg/db/models"
	pkgerrors "github.com/monkeysroasters/roastery-backend/pkg/errors"
)

type stubUsersRepo struct {
	users      map[int64]*models.User
	byReferral map[string]*models.User
	created    []*models.User
}

func newStubUsersRepo() *stubUsersRepo {
	return &stubUsersRepo{
		users:      make(map[int64]*models.User),
		byReferral: make(map[string]*models.User),
	}
}

func (s *stubUsersRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubUsersRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	s.users[user.ID] = user
	s.byReferral[user.ReferralCode] = user
	s.created = append(s.created, user)
	return user, nil
}

func (s *stubUsersRepo) FindByID(ctx context.Context, userID int64) (*models.User, error) {
	user, ok := s.users[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (s *stubUsersRepo) FindByReferralCode(ctx context.Context, code string) (*models.User, error) {
	user, ok := s.byReferral[code]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (s *stubUsersRepo) Update(ctx context.Context, userID int64, updates map[string]any) error {
	if _, ok := s.users[userID]; !ok {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *stubUsersRepo) FindDueForReplenishment(ctx context.Context, cutoff time.Time) ([]models.User, error) {
	return nil, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

func TestEnsureCreatesNewUserWithReferralCode(t *testing.T) {
	repo := newStubUsersRepo()
	svc, err := NewService(repo, stubTxRunner{}, nil)
	require.NoError(t, err)

	user, err := svc.Ensure(context.Background(), EnsureInput{UserID: 42, FirstName: "Olena"})
	require.NoError(t, err)
	assert.Equal(t, int64(42), user.ID)
	assert.Len(t, user.ReferralCode, referralCodeLength)
	assert.Equal(t, 1, user.LoyaltyLevel)
	assert.Len(t, repo.created, 1)
}

func TestEnsureReturnsExistingUser(t *testing.T) {
	repo := newStubUsersRepo()
	existing := &models.User{ID: 42, ReferralCode: "EXISTING"}
	repo.users[42] = existing

	svc, err := NewService(repo, stubTxRunner{}, nil)
	require.NoError(t, err)

	user, err := svc.Ensure(context.Background(), EnsureInput{UserID: 42, ReferredBy: "SOMECODE"})
	require.NoError(t, err)
	assert.Same(t, existing, user)
	assert.Empty(t, repo.created, "existing user must not be recreated")
}

func TestEnsureLinksReferrer(t *testing.T) {
	repo := newStubUsersRepo()
	referrer := &models.User{ID: 7, ReferralCode: "FRIEND01"}
	repo.users[7] = referrer
	repo.byReferral["FRIEND01"] = referrer

	svc, err := NewService(repo, stubTxRunner{}, nil)
	require.NoError(t, err)

	// codes are matched case-insensitively
	user, err := svc.Ensure(context.Background(), EnsureInput{UserID: 42, ReferredBy: "friend01"})
	require.NoError(t, err)
	require.NotNil(t, user.ReferredByID)
	assert.Equal(t, int64(7), *user.ReferredByID)
}

func TestEnsureIgnoresUnknownReferralCode(t *testing.T) {
	repo := newStubUsersRepo()
	svc, err := NewService(repo, stubTxRunner{}, nil)
	require.NoError(t, err)

	user, err := svc.Ensure(context.Background(), EnsureInput{UserID: 42, ReferredBy: "NOSUCH99"})
	require.NoError(t, err)
	assert.Nil(t, user.ReferredByID)
}

func TestEnsureRejectsZeroUserID(t *testing.T) {
	repo := newStubUsersRepo()
	svc, err := NewService(repo, stubTxRunner{}, nil)
	require.NoError(t, err)

	_, err = svc.Ensure(context.Background(), EnsureInput{})
	domainErr := pkgerrors.As(err)
	require.NotNil(t, domainErr)
	assert.Equal(t, pkgerrors.CodeValidation, domainErr.Code())
}

func TestGetNotFound(t *testing.T) {
	repo := newStubUsersRepo()
	svc, err := NewService(repo, stubTxRunner{}, nil)
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), 999)
	domainErr := pkgerrors.As(err)
	require.NotNil(t, domainErr)
	assert.Equal(t, pkgerrors.CodeNotFound, domainErr.Code())
}

func TestSaveDeliveryDetails(t *testing.T) {
	repo := newStubUsersRepo()
	repo.users[42] = &models.User{ID: 42}

	svc, err := NewService(repo, stubTxRunner{}, nil)
	require.NoError(t, err)

	method := "courier"
	err = svc.SaveDeliveryDetails(context.Background(), 42, DeliveryDetails{
		Method:    &method,
		City:      "Kyiv",
		Address:   "Khreshchatyk 1",
		Recipient: "Olena P",
		Phone:     "+380501234567",
	})
	assert.NoError(t, err)
}
