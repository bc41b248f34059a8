package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/monkeysroasters/roastery-backend/internal/users"
	"github.com/monkeysroasters/roastery-backend/pkg/db/models"
	"github.com/monkeysroasters/roastery-backend/pkg/enums"
	"github.com/monkeysroasters/roastery-backend/pkg/logger"
	"github.com/monkeysroasters/roastery-backend/pkg/outbox"
)

const defaultReplenishmentAfterDays = 18

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// ReplenishmentDueEvent nudges a user whose coffee is likely running out.
type ReplenishmentDueEvent struct {
	UserID        int64     `json:"user_id"`
	LastOrderAt   time.Time `json:"last_order_at"`
	DaysSinceLast int       `json:"days_since_last"`
}

// ReplenishmentJob emits reminder events for users whose last paid order is
// older than the configured window. A user is reminded once per order; the
// guard resets when they order again.
type ReplenishmentJob struct {
	users     users.Repository
	tx        txRunner
	outbox    outboxEmitter
	afterDays int
	logg      *logger.Logger
	now       func() time.Time
}

// NewReplenishmentJob builds the reminder job.
func NewReplenishmentJob(usersRepo users.Repository, tx txRunner, outboxSvc outboxEmitter, afterDays int, logg *logger.Logger) (*ReplenishmentJob, error) {
	if usersRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if afterDays <= 0 {
		afterDays = defaultReplenishmentAfterDays
	}
	return &ReplenishmentJob{
		users:     usersRepo,
		tx:        tx,
		outbox:    outboxSvc,
		afterDays: afterDays,
		logg:      logg,
		now:       time.Now,
	}, nil
}

// Name identifies the job in logs and metrics.
func (j *ReplenishmentJob) Name() string { return "replenishment_reminder" }

// Run finds due users and emits one reminder event per user. Failures on
// individual users do not stop the sweep.
func (j *ReplenishmentJob) Run(ctx context.Context) error {
	now := j.now()
	cutoff := now.AddDate(0, 0, -j.afterDays)

	due, err := j.users.FindDueForReplenishment(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("find due users: %w", err)
	}
	if len(due) == 0 {
		return nil
	}

	var errs error
	reminded := 0
	for i := range due {
		user := &due[i]
		if err := j.remind(ctx, user, now); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("user %d: %w", user.ID, err))
			continue
		}
		reminded++
	}

	if j.logg != nil {
		j.logg.Info(j.logg.WithField(ctx, "reminded", reminded), "replenishment sweep complete")
	}
	return errs
}

func (j *ReplenishmentJob) remind(ctx context.Context, user *models.User, now time.Time) error {
	return j.tx.WithTx(ctx, func(tx *gorm.DB) error {
		event := ReplenishmentDueEvent{UserID: user.ID}
		if user.LastOrderAt != nil {
			event.LastOrderAt = *user.LastOrderAt
			event.DaysSinceLast = int(now.Sub(*user.LastOrderAt).Hours() / 24)
		}
		if err := j.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventReplenishmentDue,
			AggregateType: enums.AggregateUser,
			AggregateID:   fmt.Sprintf("%d", user.ID),
			UserID:        &user.ID,
			Data:          event,
		}); err != nil {
			return err
		}
		return j.users.WithTx(tx).Update(ctx, user.ID, map[string]any{
			"last_reminded_at": now,
		})
	})
}
