package models

import (
	"errors"
	"fmt"
)

// Kind identifies a domain failure. The set is closed; callers switch on it
// instead of comparing error strings. Transport adapters map kinds to status
// codes.
type Kind string

const (
	KindCapacityExceeded               Kind = "CapacityExceeded"
	KindResourceNotFound               Kind = "ResourceNotFound"
	KindResourceDoesNotBelongToProject Kind = "ResourceDoesNotBelongToProject"
	KindBookingNotFound                Kind = "BookingNotFound"
	KindBookingDoesNotBelongToProject  Kind = "BookingDoesNotBelongToProject"
	KindBookingAlreadyCancelled        Kind = "BookingAlreadyCancelled"
	KindInvalidTimeRange               Kind = "InvalidTimeRange"
	KindInvalidQuantity                Kind = "InvalidQuantity"
	KindDayNotAllowed                  Kind = "DayNotAllowed"
	KindStartTimeOutsideConfig         Kind = "StartTimeOutsideConfig"
	KindEndTimeOutsideConfig           Kind = "EndTimeOutsideConfig"
	KindInvalidRecurrence              Kind = "InvalidRecurrence"
)

// Error is a domain failure with its kind and the fields relevant to it.
// Fields not meaningful for a given kind stay zero.
type Error struct {
	Kind       Kind
	ResourceID string
	BookingID  string
	ProjectID  string
	Requested  int
	Used       int
	Capacity   int
	Detail     string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	}
	return string(e.Kind)
}

// KindOf extracts the domain kind from err, or "" if err is not a domain
// error.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsKind reports whether err is a domain error of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// ErrCapacityExceeded builds the capacity rejection with the numbers that
// drove it.
func ErrCapacityExceeded(resourceID string, requested, used, capacity int) *Error {
	return &Error{
		Kind:       KindCapacityExceeded,
		ResourceID: resourceID,
		Requested:  requested,
		Used:       used,
		Capacity:   capacity,
		Detail:     fmt.Sprintf("requested %d with %d already reserved exceeds capacity %d", requested, used, capacity),
	}
}

func ErrResourceNotFound(resourceID string) *Error {
	return &Error{Kind: KindResourceNotFound, ResourceID: resourceID, Detail: "resource " + resourceID}
}

func ErrResourceDoesNotBelongToProject(resourceID, projectID string) *Error {
	return &Error{Kind: KindResourceDoesNotBelongToProject, ResourceID: resourceID, ProjectID: projectID}
}

func ErrBookingNotFound(bookingID string) *Error {
	return &Error{Kind: KindBookingNotFound, BookingID: bookingID, Detail: "booking " + bookingID}
}

func ErrBookingDoesNotBelongToProject(bookingID, projectID string) *Error {
	return &Error{Kind: KindBookingDoesNotBelongToProject, BookingID: bookingID, ProjectID: projectID}
}

func ErrBookingAlreadyCancelled(bookingID string) *Error {
	return &Error{Kind: KindBookingAlreadyCancelled, BookingID: bookingID}
}

func ErrInvalidTimeRange(detail string) *Error {
	return &Error{Kind: KindInvalidTimeRange, Detail: detail}
}

func ErrInvalidQuantity(requested int) *Error {
	return &Error{Kind: KindInvalidQuantity, Requested: requested, Detail: fmt.Sprintf("quantity must be at least 1, got %d", requested)}
}

func ErrDayNotAllowed(resourceID string, detail string) *Error {
	return &Error{Kind: KindDayNotAllowed, ResourceID: resourceID, Detail: detail}
}

func ErrStartTimeOutsideConfig(resourceID string, detail string) *Error {
	return &Error{Kind: KindStartTimeOutsideConfig, ResourceID: resourceID, Detail: detail}
}

func ErrEndTimeOutsideConfig(resourceID string, detail string) *Error {
	return &Error{Kind: KindEndTimeOutsideConfig, ResourceID: resourceID, Detail: detail}
}

func ErrInvalidRecurrence(detail string) *Error {
	return &Error{Kind: KindInvalidRecurrence, Detail: detail}
}
