package users

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"gorm.io/gorm"

	dbpkg "github.com/monkeysroasters/roastery-backend/pkg/db"
	"github.com/monkeysroasters/roastery-backend/pkg/db/models"
	pkgerrors "github.com/monkeysroasters/roastery-backend/pkg/errors"
	"github.com/monkeysroasters/roastery-backend/pkg/logger"
)

const (
	referralCodeLength   = 8
	referralCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	referralCodeRetries  = 5
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// EnsureInput carries the identity fields sent with each request.
type EnsureInput struct {
	UserID     int64
	Username   *string
	FirstName  string
	ReferredBy string
}

// Service manages user identity, saved delivery details, and referral links.
type Service interface {
	Ensure(ctx context.Context, input EnsureInput) (*models.User, error)
	Get(ctx context.Context, userID int64) (*models.User, error)
	SaveDeliveryDetails(ctx context.Context, userID int64, details DeliveryDetails) error
}

// DeliveryDetails are remembered between checkouts to prefill the next one.
type DeliveryDetails struct {
	Method    *string
	City      string
	Address   string
	Recipient string
	Phone     string
}

type service struct {
	repo Repository
	tx   txRunner
	logg *logger.Logger
}

// NewService builds the user service.
func NewService(repo Repository, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx, logg: logg}, nil
}

// Ensure loads the user, creating the row on first contact. A referral code
// passed on first contact links the new user to the referrer; it is ignored
// for existing users.
func (s *service) Ensure(ctx context.Context, input EnsureInput) (*models.User, error) {
	if input.UserID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	existing, err := s.repo.FindByID(ctx, input.UserID)
	if err == nil {
		return existing, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	var created *models.User
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		var referredBy *int64
		if code := strings.ToUpper(strings.TrimSpace(input.ReferredBy)); code != "" {
			referrer, ferr := repo.FindByReferralCode(ctx, code)
			if ferr == nil && referrer.ID != input.UserID {
				referredBy = &referrer.ID
			}
		}

		user := &models.User{
			ID:           input.UserID,
			Username:     input.Username,
			FirstName:    input.FirstName,
			LoyaltyLevel: 1,
			ReferredByID: referredBy,
		}

		for attempt := 0; attempt < referralCodeRetries; attempt++ {
			user.ReferralCode = generateReferralCode()
			_, cerr := repo.Create(ctx, user)
			if cerr == nil {
				created = user
				return nil
			}
			if !dbpkg.IsUniqueViolation(cerr, "idx_users_referral_code") {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, cerr, "create user")
			}
		}
		return pkgerrors.New(pkgerrors.CodeDependency, "could not allocate referral code")
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithUserID(ctx, created.ID), "user registered")
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}

func (s *service) SaveDeliveryDetails(ctx context.Context, userID int64, details DeliveryDetails) error {
	updates := map[string]any{
		"delivery_city":      details.City,
		"delivery_address":   details.Address,
		"delivery_recipient": details.Recipient,
		"phone":              details.Phone,
	}
	if details.Method != nil {
		updates["delivery_method"] = *details.Method
	}
	if err := s.repo.Update(ctx, userID, updates); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save delivery details")
	}
	return nil
}

func generateReferralCode() string {
	max := big.NewInt(int64(len(referralCodeAlphabet)))
	code := make([]byte, referralCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand failing is unrecoverable for code generation
			panic(err)
		}
		code[i] = referralCodeAlphabet[n.Int64()]
	}
	return string(code)
}
