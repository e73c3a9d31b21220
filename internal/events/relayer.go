package events

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/studybuddy/studybuddy-server/internal/config"
	"github.com/studybuddy/studybuddy-server/internal/db/controller/outbox"
	"github.com/studybuddy/studybuddy-server/internal/db/models"
)

// Sender delivers one membership event to its destination.
type Sender func(ctx context.Context, event *models.MembershipEvent) error

// Relayer drains pending outbox rows and hands them to a Sender.
// Delivery failures are retried on the next drain until the event is parked.
type Relayer struct {
	db        *gorm.DB
	sender    Sender
	interval  time.Duration
	batchSize int
	maxRetry  int
}

// NewRelayer creates a relayer from the events config.
func NewRelayer(db *gorm.DB, cfg config.Events, sender Sender) *Relayer {
	return &Relayer{
		db:        db,
		sender:    sender,
		interval:  cfg.Interval,
		batchSize: cfg.BatchSize,
		maxRetry:  cfg.MaxRetry,
	}
}

// Run drains the outbox on every tick until the context is canceled.
func (r *Relayer) Run(ctx context.Context) {
	t := time.NewTicker(r.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.DrainOnce(ctx)
		}
	}
}

// DrainOnce relays a single batch of pending events.
func (r *Relayer) DrainOnce(ctx context.Context) {
	pending, err := outbox.ListPending(r.db, r.batchSize)
	if err != nil {
		log.Error().Err(err).Msg("failed to list pending membership events")

		return
	}

	for i := range pending {
		event := pending[i]

		if err = r.sender(ctx, &event); err != nil {
			log.Warn().Err(err).Uint64("event", event.ID).Str("type", event.EventType).
				Msg("failed to deliver membership event")

			if err = outbox.MarkFailed(r.db, event.ID, r.maxRetry); err != nil {
				log.Error().Err(err).Uint64("event", event.ID).Msg("failed to mark membership event failed")
			}

			continue
		}

		if err = outbox.MarkSent(r.db, event.ID); err != nil {
			log.Error().Err(err).Uint64("event", event.ID).Msg("failed to mark membership event sent")
		}
	}
}

// LogSender is the fallback sender used when kafka is disabled in dev mode.
func LogSender(_ context.Context, event *models.MembershipEvent) error {
	log.Info().Str("type", event.EventType).Uint64("group", event.StudyGroupID).
		Uint64("user", event.UserID).Msg("membership event")

	return nil
}
