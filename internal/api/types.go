package api

import (
	"github.com/hackgods/appointment-scheduler-demo/internal/booking"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

type AttendeeRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	TimeZone string `json:"timeZone"`
}

type CreateBookingRequest struct {
	EventTypeID int              `json:"eventTypeId"`
	Start       string           `json:"start"`
	Duration    int              `json:"duration"`
	Attendee    *AttendeeRequest `json:"attendee"`
}

type SlotsResponse struct {
	Status string         `json:"status"`
	Data   []booking.Slot `json:"data"`
}

type BookingResponse struct {
	Status string          `json:"status"`
	Data   booking.Booking `json:"data"`
}

type BookingListResponse struct {
	Status     string             `json:"status"`
	Data       []booking.Booking  `json:"data"`
	Pagination booking.Pagination `json:"pagination"`
}

type ErrorResponse struct {
	Status  string `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
