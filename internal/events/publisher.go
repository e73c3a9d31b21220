// Package events delivers membership events from the database outbox to kafka.
package events

import (
	"context"
	"strconv"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"

	"github.com/studybuddy/studybuddy-server/internal/config"
	"github.com/studybuddy/studybuddy-server/internal/db/models"
)

// Publisher writes membership events to a kafka topic.
// Events of one study group share a message key, so they stay ordered
// within their partition.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher creates a kafka backed publisher from the events config.
func NewPublisher(cfg config.Events) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Async:        false,
		},
	}
}

// Send publishes a single membership event.
func (p *Publisher) Send(ctx context.Context, event *models.MembershipEvent) error {
	msg := kafka.Message{
		Key:   []byte(strconv.FormatUint(event.StudyGroupID, 10)),
		Value: []byte(event.Payload),
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return errors.Wrap(err, "failed to publish membership event")
	}

	return nil
}

// Close flushes and closes the underlying kafka writer.
func (p *Publisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}

	return p.writer.Close() //nolint:wrapcheck
}
