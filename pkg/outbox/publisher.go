package outbox

import (
	"context"
	"errors"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"

	"github.com/monkeysroasters/roastery-backend/pkg/config"
	"github.com/monkeysroasters/roastery-backend/pkg/db/models"
	"github.com/monkeysroasters/roastery-backend/pkg/enums"
	"github.com/monkeysroasters/roastery-backend/pkg/logger"
)

// Publisher drains unpublished outbox rows to Pub/Sub. Order aggregates go to
// the orders topic, everything else to the notifications topic.
type Publisher struct {
	repo          *Repository
	orders        *pubsub.Publisher
	notifications *pubsub.Publisher
	cfg           config.OutboxConfig
	logg          *logger.Logger
}

func NewPublisher(repo *Repository, orders, notifications *pubsub.Publisher, cfg config.OutboxConfig, logg *logger.Logger) (*Publisher, error) {
	if repo == nil {
		return nil, errors.New("outbox repository is required")
	}
	if orders == nil || notifications == nil {
		return nil, errors.New("pubsub publishers are required")
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 500 * time.Millisecond
	}
	return &Publisher{
		repo:          repo,
		orders:        orders,
		notifications: notifications,
		cfg:           cfg,
		logg:          logg,
	}, nil
}

// Run polls for unpublished events until the context is cancelled.
func (p *Publisher) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := p.PublishBatch(ctx); err != nil {
				if p.logg != nil {
					p.logg.Error(ctx, "outbox publish batch failed", err)
				}
			}
		}
	}
}

// PublishBatch pushes one batch of unpublished events and returns how many
// were delivered. Per-event failures are recorded on the row and do not stop
// the rest of the batch.
func (p *Publisher) PublishBatch(ctx context.Context) (int, error) {
	rows, err := p.repo.FetchUnpublished(p.cfg.BatchSize, p.cfg.MaxAttempts)
	if err != nil {
		return 0, err
	}

	published := 0
	for _, row := range rows {
		if err := p.publishOne(ctx, row); err != nil {
			if markErr := p.repo.MarkFailed(row.ID, err); markErr != nil && p.logg != nil {
				p.logg.Error(ctx, "marking outbox event failed", markErr)
			}
			continue
		}
		if err := p.repo.MarkPublished(row.ID); err != nil {
			return published, err
		}
		published++
	}
	return published, nil
}

func (p *Publisher) publishOne(ctx context.Context, row models.OutboxEvent) error {
	publisher := p.notifications
	if row.AggregateType == enums.AggregateOrder {
		publisher = p.orders
	}

	result := publisher.Publish(ctx, &pubsub.Message{
		Data: row.Payload,
		Attributes: map[string]string{
			"event_type":     string(row.EventType),
			"aggregate_type": string(row.AggregateType),
			"aggregate_id":   row.AggregateID,
		},
	})
	_, err := result.Get(ctx)
	return err
}
