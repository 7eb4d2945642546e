// Quotebook - Weekly Reading Reports and Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quotebook

package services

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/quotebook/internal/events"
)

// EventConsumerService subscribes a handler to generated-report events.
type EventConsumerService struct {
	name       string
	subscriber message.Subscriber
	handler    events.Handler
}

// NewEventConsumerService creates a consumer named name.
func NewEventConsumerService(name string, subscriber message.Subscriber, handler events.Handler) *EventConsumerService {
	return &EventConsumerService{name: name, subscriber: subscriber, handler: handler}
}

// Serve implements suture.Service.
func (s *EventConsumerService) Serve(ctx context.Context) error {
	return events.Consume(ctx, s.subscriber, s.handler)
}

func (s *EventConsumerService) String() string {
	return s.name
}
