package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"reservio/internal/journal"
	"reservio/internal/metrics"
	"reservio/internal/recurrence"
	"reservio/internal/service"
)

type bookingItemRequest struct {
	ResourceID       string            `json:"resource_id"`
	Start            time.Time         `json:"start"`
	End              time.Time         `json:"end"`
	Quantity         int               `json:"quantity"`
	CapacityOverride *int              `json:"capacity_override,omitempty"`
	Metadata         map[string]string `json:"metadata,omitempty"`
}

type recurringBookingRequest struct {
	bookingItemRequest
	Rule recurrence.Rule `json:"rule"`
}

func decodeBody(r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

// handleCreateBooking admits one booking.
// POST /api/v1/bookings
func (s *Server) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("create_booking")

	var req bookingItemRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	id, err := s.service.CreateBooking(r.Context(), service.BookingRequest{
		ProjectID:        projectID(r),
		ResourceID:       req.ResourceID,
		Start:            req.Start,
		End:              req.End,
		Quantity:         req.Quantity,
		CapacityOverride: req.CapacityOverride,
		Metadata:         req.Metadata,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// handleCreateGroupBooking admits a batch atomically.
// POST /api/v1/bookings/group
func (s *Server) handleCreateGroupBooking(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("create_group_booking")

	var req struct {
		Items []bookingItemRequest `json:"items"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	items := make([]service.GroupItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = service.GroupItem{
			ResourceID:       item.ResourceID,
			Start:            item.Start,
			End:              item.End,
			Quantity:         item.Quantity,
			CapacityOverride: item.CapacityOverride,
			Metadata:         item.Metadata,
		}
	}

	ids, err := s.service.CreateGroupBooking(r.Context(), projectID(r), items)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string][]string{"ids": ids})
}

// handleCreateRecurringBooking expands and admits a series atomically.
// POST /api/v1/bookings/recurring
func (s *Server) handleCreateRecurringBooking(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("create_recurring_booking")

	var req recurringBookingRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ids, err := s.service.CreateRecurringBooking(r.Context(), service.RecurringRequest{
		ProjectID:        projectID(r),
		ResourceID:       req.ResourceID,
		Start:            req.Start,
		End:              req.End,
		Quantity:         req.Quantity,
		CapacityOverride: req.CapacityOverride,
		Metadata:         req.Metadata,
		Rule:             req.Rule,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string][]string{"ids": ids})
}

// handleCancelBooking cancels one booking.
// POST /api/v1/bookings/{id}/cancel
func (s *Server) handleCancelBooking(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("cancel_booking")

	if err := s.service.CancelBooking(r.Context(), projectID(r), chi.URLParam(r, "id")); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

// handleAvailability enumerates open slots.
// GET /api/v1/resources/{id}/availability?start=...&end=...&slot_minutes=...
func (s *Server) handleAvailability(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("availability")

	start, err := parseTimeParam(r, "start")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	end, err := parseTimeParam(r, "end")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	slotMinutes := 0
	if raw := r.URL.Query().Get("slot_minutes"); raw != "" {
		slotMinutes, err = strconv.Atoi(raw)
		if err != nil || slotMinutes < 1 {
			writeError(w, http.StatusBadRequest, "slot_minutes must be a positive integer")
			return
		}
	}

	slots, err := s.service.GetAvailability(r.Context(), service.AvailabilityRequest{
		ProjectID:           projectID(r),
		ResourceID:          chi.URLParam(r, "id"),
		Start:               start,
		End:                 end,
		SlotDurationMinutes: slotMinutes,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if slots == nil {
		slots = []service.Slot{}
	}
	writeJSON(w, http.StatusOK, map[string][]service.Slot{"slots": slots})
}

// handleJournalExport streams the project's journal as an xlsx workbook.
// GET /api/v1/journal/export?from=...&to=...
func (s *Server) handleJournalExport(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("journal_export")

	if s.journal == nil {
		writeError(w, http.StatusNotFound, "journal disabled")
		return
	}

	from, err := parseTimeParam(r, "from")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	to, err := parseTimeParam(r, "to")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := s.journal.ListEntries(r.Context(), projectID(r), from, to)
	if err != nil {
		s.logger.Error().Err(err).Msg("journal query failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="journal.xlsx"`)
	if err := journal.WriteWorkbook(entries, w); err != nil {
		s.logger.Error().Err(err).Msg("journal export failed")
	}
}

func parseTimeParam(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%s is required (RFC3339)", name)
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s; expected RFC3339", name)
	}
	return t, nil
}
