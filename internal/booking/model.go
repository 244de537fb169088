package booking

import (
	"time"
)

type BookingStatus string

const (
	StatusAccepted  BookingStatus = "accepted"
	StatusPending   BookingStatus = "pending"
	StatusCancelled BookingStatus = "cancelled"
)

// Allowed booking lengths in minutes.
const (
	Duration30 = 30
	Duration60 = 60
)

type Attendee struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required"`
	TimeZone string `json:"timeZone" validate:"required"`
}

type Booking struct {
	ID        int64         `json:"id"`
	UID       string        `json:"uid"`
	Title     string        `json:"title"`
	Start     time.Time     `json:"start"`
	End       time.Time     `json:"end"`
	Duration  int           `json:"duration"`
	Status    BookingStatus `json:"status"`
	Attendees []Attendee    `json:"attendees"`
}

// Slot is a free half-hour start, regenerated on every query.
type Slot struct {
	Time time.Time `json:"time"`
}

type CreateBookingInput struct {
	EventTypeID int       `json:"eventTypeId" validate:"required"`
	Start       time.Time `json:"start"`
	Duration    int       `json:"duration"`
	Attendee    Attendee  `json:"attendee"`
}

type ListParams struct {
	Take       int
	Skip       int
	AfterStart *time.Time
	BeforeEnd  *time.Time
}

type Pagination struct {
	TotalItems      int  `json:"totalItems"`
	RemainingItems  int  `json:"remainingItems"`
	ReturnedItems   int  `json:"returnedItems"`
	ItemsPerPage    int  `json:"itemsPerPage"`
	CurrentPage     int  `json:"currentPage"`
	TotalPages      int  `json:"totalPages"`
	HasNextPage     bool `json:"hasNextPage"`
	HasPreviousPage bool `json:"hasPreviousPage"`
}

type Page struct {
	Bookings   []Booking
	Pagination Pagination
}

func titleFor(name string) string {
	return "Meeting with " + name
}
