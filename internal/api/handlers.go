package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hackgods/appointment-scheduler-demo/internal/booking"
	redisclient "github.com/hackgods/appointment-scheduler-demo/internal/redis"
)

// maxSlotRange bounds how many days a single slots request may span.
const maxSlotRange = 31 * 24 * time.Hour

func listSlotsHandler(svc BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		eventTypeID, startStr, endStr := q.Get("eventTypeId"), q.Get("start"), q.Get("end")
		timeZone := q.Get("timeZone")
		if timeZone == "" {
			timeZone = "UTC"
		}

		if eventTypeID == "" || startStr == "" || endStr == "" {
			writeError(w, http.StatusBadRequest, "missing_parameters", "missing required parameters: eventTypeId, start, end")
			return
		}
		if _, err := strconv.Atoi(eventTypeID); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_event_type_id", "eventTypeId must be an integer")
			return
		}

		start, err := parseInstant(startStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_start", err.Error())
			return
		}
		end, err := parseInstant(endStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_end", err.Error())
			return
		}

		if end.Sub(start) > maxSlotRange {
			writeError(w, http.StatusBadRequest, "invalid_range", fmt.Sprintf("range between start and end must not exceed %d days", maxSlotRange/(24*time.Hour)))
			return
		}

		free, err := svc.AvailableSlots(r.Context(), start, end, timeZone)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, SlotsResponse{Status: statusSuccess, Data: free})
	}
}

func createBookingHandler(svc BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateBookingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		if req.EventTypeID == 0 || req.Start == "" || req.Attendee == nil {
			writeError(w, http.StatusBadRequest, "missing_fields", "missing required fields: eventTypeId, start, attendee")
			return
		}

		start, err := time.Parse(time.RFC3339, req.Start)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_start", "start must be an RFC 3339 timestamp")
			return
		}

		b, err := svc.CreateBooking(r.Context(), booking.CreateBookingInput{
			EventTypeID: req.EventTypeID,
			Start:       start,
			Duration:    req.Duration,
			Attendee: booking.Attendee{
				Name:     req.Attendee.Name,
				Email:    req.Attendee.Email,
				TimeZone: req.Attendee.TimeZone,
			},
		})
		if err != nil {
			handleCreateError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, BookingResponse{Status: statusSuccess, Data: *b})
	}
}

func getBookingHandler(svc BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := chi.URLParam(r, "uid")

		b, err := svc.GetBooking(r.Context(), uid)
		if err != nil {
			if errors.Is(err, booking.ErrBookingNotFound) {
				writeError(w, http.StatusNotFound, "booking_not_found", "booking not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, BookingResponse{Status: statusSuccess, Data: *b})
	}
}

func listBookingsHandler(svc BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		take, err := intParam(q.Get("take"), booking.DefaultPageSize)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_take", "take must be an integer")
			return
		}
		skip, err := intParam(q.Get("skip"), 0)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_skip", "skip must be an integer")
			return
		}

		params := booking.ListParams{Take: take, Skip: skip}
		if v := q.Get("afterStart"); v != "" {
			t, err := parseInstant(v)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_after_start", err.Error())
				return
			}
			params.AfterStart = &t
		}
		if v := q.Get("beforeEnd"); v != "" {
			t, err := parseInstant(v)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_before_end", err.Error())
				return
			}
			params.BeforeEnd = &t
		}

		page, err := svc.ListBookings(r.Context(), params)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, BookingListResponse{
			Status:     statusSuccess,
			Data:       page.Bookings,
			Pagination: page.Pagination,
		})
	}
}

func clearBookingsHandler(svc BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.ClearBookings(r.Context()); err != nil {
			if errors.Is(err, redisclient.ErrLockNotAcquired) {
				writeError(w, http.StatusConflict, "store_busy", "bookings are being updated, please retry shortly")
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleCreateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, booking.ErrBadRequest):
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, booking.ErrOutOfHours):
		writeError(w, http.StatusBadRequest, "out_of_hours", err.Error())
	case errors.Is(err, booking.ErrSlotTaken):
		writeError(w, http.StatusConflict, "slot_taken", err.Error())
	case errors.Is(err, redisclient.ErrLockNotAcquired):
		writeError(w, http.StatusConflict, "store_busy", "bookings are being updated, please retry shortly")
	case errors.Is(err, booking.ErrStorage):
		writeError(w, http.StatusInternalServerError, "storage_error", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

// parseInstant accepts RFC 3339 timestamps and bare dates, which are read
// as UTC midnight.
func parseInstant(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.DateOnly, v); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%q is neither a date nor an RFC 3339 timestamp", v)
}

func intParam(v string, def int) (int, error) {
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}
