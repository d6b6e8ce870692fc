// Package service implements the booking admission, cancellation and
// availability use cases on top of the store, policy and lock packages.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"reservio/internal/journal"
	"reservio/internal/lock"
	"reservio/internal/models"
	"reservio/internal/store"
)

// IDGenerator produces opaque unique ids. Injected so tests can use
// deterministic sequences.
type IDGenerator func() string

// UUIDGenerator is the production id generator.
func UUIDGenerator() string {
	return uuid.NewString()
}

// Service orchestrates the reservation engine use cases. Construct it with
// New; all collaborators are injected, nothing is global.
type Service struct {
	resources store.ResourceStore
	bookings  store.BookingStore
	locks     lock.Coordinator
	journal   journal.Recorder
	newID     IDGenerator
	logger    *zerolog.Logger
}

// Option customizes a Service.
type Option func(*Service)

// WithIDGenerator overrides the id generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Service) { s.newID = g }
}

// WithJournal attaches an admission journal. Journal failures are logged,
// never propagated: the booking outcome is already durable by the time the
// journal is written.
func WithJournal(j journal.Recorder) Option {
	return func(s *Service) { s.journal = j }
}

// New builds a Service.
func New(resources store.ResourceStore, bookings store.BookingStore, locks lock.Coordinator, logger *zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		resources: resources,
		bookings:  bookings,
		locks:     locks,
		newID:     UUIDGenerator,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// loadOwnedResource loads the resource and checks project ownership. Config
// and capacity are re-read from the store on every call; nothing is cached
// across requests.
func (s *Service) loadOwnedResource(ctx context.Context, resourceID, projectID string) (*models.Resource, error) {
	res, err := s.resources.FindResourceByID(ctx, resourceID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, models.ErrResourceNotFound(resourceID)
		}
		return nil, err
	}
	if res.ProjectID != projectID {
		return nil, models.ErrResourceDoesNotBelongToProject(resourceID, projectID)
	}
	return res, nil
}

func (s *Service) record(ctx context.Context, e journal.Entry) {
	if s.journal == nil {
		return
	}
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	if err := s.journal.Record(ctx, e); err != nil {
		s.logger.Warn().Err(err).Str("action", e.Action).Msg("journal write failed")
	}
}
