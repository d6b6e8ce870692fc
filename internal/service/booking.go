package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"reservio/internal/interval"
	"reservio/internal/journal"
	"reservio/internal/metrics"
	"reservio/internal/models"
	"reservio/internal/policy"
	"reservio/internal/recurrence"
	"reservio/internal/store"
)

// BookingRequest is the input for single booking admission.
type BookingRequest struct {
	ProjectID        string
	ResourceID       string
	Start            time.Time
	End              time.Time
	Quantity         int
	CapacityOverride *int
	Metadata         map[string]string
}

// GroupItem is one entry of a group booking request.
type GroupItem struct {
	ResourceID       string
	Start            time.Time
	End              time.Time
	Quantity         int
	CapacityOverride *int
	Metadata         map[string]string
}

// RecurringRequest is the input for recurring booking admission: one base
// interval plus a recurrence rule, expanded and admitted atomically.
type RecurringRequest struct {
	ProjectID        string
	ResourceID       string
	Start            time.Time
	End              time.Time
	Quantity         int
	CapacityOverride *int
	Metadata         map[string]string
	Rule             recurrence.Rule
}

func lockKey(resourceID string) string {
	return "resource:" + resourceID
}

// CreateBooking admits a single booking. It holds the resource's exclusive
// lock for the whole read-check-write sequence so concurrent requests can
// never oversubscribe the capacity. Validation failures are rejected before
// the lock is taken.
func (s *Service) CreateBooking(ctx context.Context, req BookingRequest) (string, error) {
	if req.Quantity < 1 {
		return "", s.reject(ctx, "create", req.ProjectID, req.ResourceID, models.ErrInvalidQuantity(req.Quantity))
	}
	ivl, err := interval.New(req.Start, req.End)
	if err != nil {
		return "", s.reject(ctx, "create", req.ProjectID, req.ResourceID, models.ErrInvalidTimeRange(err.Error()))
	}

	txID := s.newID()
	lockStart := time.Now()
	if err := s.locks.Acquire(ctx, txID, lockKey(req.ResourceID)); err != nil {
		return "", fmt.Errorf("acquire resource lock: %w", err)
	}
	metrics.ObserveLockWait(time.Since(lockStart))
	defer func() {
		if err := s.locks.ReleaseAll(ctx, txID); err != nil {
			s.logger.Error().Err(err).Str("tx_id", txID).Msg("lock release failed")
		}
	}()

	booking, err := s.admit(ctx, req.ProjectID, GroupItem{
		ResourceID:       req.ResourceID,
		Start:            req.Start,
		End:              req.End,
		Quantity:         req.Quantity,
		CapacityOverride: req.CapacityOverride,
		Metadata:         req.Metadata,
	}, ivl, nil)
	if err != nil {
		return "", s.reject(ctx, "create", req.ProjectID, req.ResourceID, err)
	}

	if err := s.bookings.SaveBooking(ctx, booking); err != nil {
		return "", fmt.Errorf("save booking: %w", err)
	}

	metrics.IncBookingCreated("single")
	s.logger.Info().
		Str("booking_id", booking.ID).
		Str("resource_id", booking.ResourceID).
		Str("project_id", booking.ProjectID).
		Int("quantity", booking.Quantity).
		Msg("booking created")
	s.record(ctx, journal.Entry{
		ProjectID:  req.ProjectID,
		ResourceID: req.ResourceID,
		BookingID:  booking.ID,
		Action:     journal.ActionCreate,
		Outcome:    journal.OutcomeAccepted,
	})
	return booking.ID, nil
}

// CreateGroupBooking admits a batch of bookings atomically: either every
// item is persisted or none is. Items are validated in list order; each
// item's capacity check counts both stored bookings and the items accepted
// earlier in the same batch, so two items sharing a resource and window sum
// their quantities against shared capacity. This path takes no per-resource
// lock and relies on the store's atomic batch write.
func (s *Service) CreateGroupBooking(ctx context.Context, projectID string, items []GroupItem) ([]string, error) {
	if len(items) == 0 {
		return nil, &models.Error{Kind: models.KindInvalidQuantity, Detail: "group booking requires at least one item"}
	}

	pending := make([]*models.Booking, 0, len(items))
	for i, item := range items {
		if item.Quantity < 1 {
			return nil, s.reject(ctx, "create_group", projectID, item.ResourceID, models.ErrInvalidQuantity(item.Quantity))
		}
		ivl, err := interval.New(item.Start, item.End)
		if err != nil {
			return nil, s.reject(ctx, "create_group", projectID, item.ResourceID, models.ErrInvalidTimeRange(
				fmt.Sprintf("item %d: %s", i, err)))
		}

		booking, err := s.admit(ctx, projectID, item, ivl, pending)
		if err != nil {
			return nil, s.reject(ctx, "create_group", projectID, item.ResourceID, err)
		}
		pending = append(pending, booking)
	}

	if err := s.bookings.SaveBookings(ctx, pending); err != nil {
		return nil, fmt.Errorf("save bookings: %w", err)
	}

	ids := make([]string, len(pending))
	for i, b := range pending {
		ids[i] = b.ID
		metrics.IncBookingCreated("group")
	}
	s.logger.Info().
		Str("project_id", projectID).
		Int("count", len(ids)).
		Msg("group booking created")
	s.record(ctx, journal.Entry{
		ProjectID: projectID,
		Action:    journal.ActionCreateGroup,
		Outcome:   journal.OutcomeAccepted,
		Detail:    fmt.Sprintf("%d bookings", len(ids)),
	})
	return ids, nil
}

// CreateRecurringBooking expands the rule into occurrences and admits them
// as one atomic group: if any occurrence's slot is unavailable, none of the
// series is created.
func (s *Service) CreateRecurringBooking(ctx context.Context, req RecurringRequest) ([]string, error) {
	if req.Quantity < 1 {
		return nil, s.reject(ctx, "create_recurring", req.ProjectID, req.ResourceID, models.ErrInvalidQuantity(req.Quantity))
	}
	base, err := interval.New(req.Start, req.End)
	if err != nil {
		return nil, s.reject(ctx, "create_recurring", req.ProjectID, req.ResourceID, models.ErrInvalidTimeRange(err.Error()))
	}

	occurrences, err := recurrence.Expand(base, req.Rule)
	if err != nil {
		if errors.Is(err, recurrence.ErrInvalidRule) {
			return nil, s.reject(ctx, "create_recurring", req.ProjectID, req.ResourceID, models.ErrInvalidRecurrence(err.Error()))
		}
		return nil, err
	}

	metadata := make(map[string]string, len(req.Metadata)+3)
	for k, v := range req.Metadata {
		metadata[k] = v
	}
	metadata["recurrence_frequency"] = string(req.Rule.Frequency)
	metadata["recurrence_interval"] = strconv.Itoa(max(req.Rule.Interval, 1))
	metadata["recurrence_group_size"] = strconv.Itoa(len(occurrences))

	items := make([]GroupItem, len(occurrences))
	for i, occ := range occurrences {
		items[i] = GroupItem{
			ResourceID:       req.ResourceID,
			Start:            occ.Start,
			End:              occ.End,
			Quantity:         req.Quantity,
			CapacityOverride: req.CapacityOverride,
			Metadata:         metadata,
		}
	}

	ids, err := s.CreateGroupBooking(ctx, req.ProjectID, items)
	if err != nil {
		return nil, err
	}
	metrics.IncBookingCreated("recurring")
	return ids, nil
}

// CancelBooking flips an active booking to cancelled. Cancelled is terminal:
// cancelling twice is an error, not a no-op.
func (s *Service) CancelBooking(ctx context.Context, projectID, bookingID string) error {
	b, err := s.bookings.FindBookingByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.ErrBookingNotFound(bookingID)
		}
		return err
	}
	if b.ProjectID != projectID {
		return models.ErrBookingDoesNotBelongToProject(bookingID, projectID)
	}
	if b.Status == models.StatusCancelled {
		return models.ErrBookingAlreadyCancelled(bookingID)
	}

	if err := s.bookings.UpdateBookingStatus(ctx, bookingID, models.StatusCancelled); err != nil {
		return fmt.Errorf("cancel booking: %w", err)
	}

	metrics.IncBookingCancelled()
	s.logger.Info().
		Str("booking_id", bookingID).
		Str("project_id", projectID).
		Msg("booking cancelled")
	s.record(ctx, journal.Entry{
		ProjectID:  projectID,
		ResourceID: b.ResourceID,
		BookingID:  bookingID,
		Action:     journal.ActionCancel,
		Outcome:    journal.OutcomeAccepted,
	})
	return nil
}

// admit runs the validation pipeline for one booking item: ownership,
// business hours, effective capacity and the overlap/capacity check against
// stored bookings plus the pending set. On success the built booking is
// returned unsaved.
func (s *Service) admit(ctx context.Context, projectID string, item GroupItem, ivl interval.Interval, pending []*models.Booking) (*models.Booking, error) {
	res, err := s.loadOwnedResource(ctx, item.ResourceID, projectID)
	if err != nil {
		return nil, err
	}

	if err := policy.AssertBookingConfig(res, ivl); err != nil {
		return nil, err
	}

	capacity := models.EffectiveCapacity(item.CapacityOverride, res.DefaultCapacity)

	overlapping, err := s.bookings.FindOverlapping(ctx, projectID, item.ResourceID, ivl)
	if err != nil {
		return nil, fmt.Errorf("find overlapping bookings: %w", err)
	}
	for _, p := range pending {
		if p.ResourceID == item.ResourceID && p.TimeRange.Overlaps(ivl) {
			overlapping = append(overlapping, *p)
		}
	}

	if err := policy.AssertCapacity(res.ID, overlapping, item.Quantity, capacity); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &models.Booking{
		ID:         s.newID(),
		ProjectID:  projectID,
		ResourceID: item.ResourceID,
		TimeRange:  ivl,
		Quantity:   item.Quantity,
		Status:     models.StatusActive,
		Metadata:   item.Metadata,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// reject ties rejection bookkeeping together: metrics, journal and a debug
// log line. The original error passes through untouched.
func (s *Service) reject(ctx context.Context, action, projectID, resourceID string, err error) error {
	if kind := models.KindOf(err); kind != "" {
		metrics.IncBookingRejected(string(kind))
		s.record(ctx, journal.Entry{
			ProjectID:  projectID,
			ResourceID: resourceID,
			Action:     action,
			Outcome:    journal.OutcomeRejected,
			Detail:     string(kind),
		})
		s.logger.Debug().
			Str("project_id", projectID).
			Str("resource_id", resourceID).
			Str("kind", string(kind)).
			Msg("admission rejected")
	}
	return err
}
