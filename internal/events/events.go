// Quotebook - Weekly Reading Reports and Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quotebook

// Package events hands finished reports to delivery collaborators over Watermill.
//
// The default transport is the in-process gochannel Pub/Sub. Publishing goes
// through a circuit breaker so a stuck subscriber cannot stall the batch.
package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/quotebook/internal/logging"
	"github.com/tomtom215/quotebook/internal/metrics"
	"github.com/tomtom215/quotebook/internal/models"
	"github.com/tomtom215/quotebook/internal/resilience"
)

// TopicReportGenerated carries ReportGenerated events.
const TopicReportGenerated = "reports.weekly.generated"

// ErrPublisherClosed is returned by Publish after Close.
var ErrPublisherClosed = errors.New("events: publisher closed")

// ReportGenerated announces a stored weekly report.
type ReportGenerated struct {
	ReportID    string    `json:"report_id"`
	UserID      string    `json:"user_id"`
	ISOWeek     int       `json:"iso_week"`
	ISOYear     int       `json:"iso_year"`
	GeneratedAt time.Time `json:"generated_at"`
}

// NewGoChannel creates the in-process Pub/Sub used when no broker is configured.
func NewGoChannel(bufferSize int64) *gochannel.GoChannel {
	return gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: bufferSize},
		watermill.NewSlogLogger(logging.NewSlogLogger()),
	)
}

// Publisher publishes report events with circuit breaker protection.
type Publisher struct {
	publisher message.Publisher
	breaker   *resilience.Breaker[struct{}]

	mu     sync.RWMutex
	closed bool
}

// NewPublisher wraps a Watermill publisher.
func NewPublisher(pub message.Publisher, cfg resilience.BreakerConfig) (*Publisher, error) {
	if pub == nil {
		return nil, errors.New("events: publisher is required")
	}
	return &Publisher{
		publisher: pub,
		breaker:   resilience.NewBreaker[struct{}]("events", cfg),
	}, nil
}

// PublishReportGenerated announces r on TopicReportGenerated.
func (p *Publisher) PublishReportGenerated(ctx context.Context, r *models.WeeklyReport) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}

	payload, err := json.Marshal(ReportGenerated{
		ReportID:    r.ID,
		UserID:      r.UserID,
		ISOWeek:     r.WeekNumber,
		ISOYear:     r.Year,
		GeneratedAt: r.GeneratedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal report event: %w", err)
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	msg.SetContext(ctx)
	msg.Metadata.Set("user_id", r.UserID)
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		middleware.SetCorrelationID(id, msg)
	}

	_, err = p.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, p.publisher.Publish(TopicReportGenerated, msg)
	})
	metrics.RecordEventPublish(TopicReportGenerated, err)
	if err != nil {
		return fmt.Errorf("publish %s: %w", TopicReportGenerated, err)
	}

	logging.Ctx(ctx).Debug().Str("topic", TopicReportGenerated).Str("message_id", msg.UUID).
		Str("report_id", r.ID).Msg("Report event published")
	return nil
}

// Close closes the underlying publisher. It is safe to call more than once.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.publisher.Close()
}

// Handler processes one ReportGenerated event. Failures are logged; retrying
// delivery is the handler's concern.
type Handler func(ctx context.Context, event ReportGenerated) error

// LogDelivery records that a report is ready for the delivery collaborator.
func LogDelivery(ctx context.Context, event ReportGenerated) error {
	logging.Ctx(ctx).Info().
		Str("report_id", event.ReportID).
		Int("iso_week", event.ISOWeek).
		Int("iso_year", event.ISOYear).
		Time("generated_at", event.GeneratedAt).
		Msg("Weekly report ready for delivery")
	return nil
}

// Consume subscribes to TopicReportGenerated and calls h for every event until
// ctx is cancelled. Undecodable messages are acked and dropped.
func Consume(ctx context.Context, sub message.Subscriber, h Handler) error {
	messages, err := sub.Subscribe(ctx, TopicReportGenerated)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", TopicReportGenerated, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			handleMessage(ctx, msg, h)
		}
	}
}

func handleMessage(ctx context.Context, msg *message.Message, h Handler) {
	msgCtx := ctx
	if id := middleware.MessageCorrelationID(msg); id != "" {
		msgCtx = logging.ContextWithCorrelationID(ctx, id)
	}
	log := logging.Ctx(msgCtx)

	var event ReportGenerated
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		log.Error().Err(err).Str("message_id", msg.UUID).Msg("Dropping undecodable report event")
		msg.Ack()
		return
	}

	// gochannel redelivers a nacked message immediately, so failures are acked too.
	if err := h(logging.ContextWithUserID(msgCtx, event.UserID), event); err != nil {
		log.Warn().Err(err).Str("report_id", event.ReportID).Msg("Report event handler failed")
	}
	msg.Ack()
}
