package users

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/monkeysroasters/roastery-backend/pkg/db/models"
)

// Repository defines persistence operations for user rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByID(ctx context.Context, userID int64) (*models.User, error)
	FindByReferralCode(ctx context.Context, code string) (*models.User, error)
	Update(ctx context.Context, userID int64, updates map[string]any) error
	FindDueForReplenishment(ctx context.Context, cutoff time.Time) ([]models.User, error)
}
