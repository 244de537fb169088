package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hackgods/appointment-scheduler-demo/internal/booking"
)

type BookingService interface {
	AvailableSlots(ctx context.Context, start, end time.Time, timeZone string) ([]booking.Slot, error)
	CreateBooking(ctx context.Context, in booking.CreateBookingInput) (*booking.Booking, error)
	GetBooking(ctx context.Context, uid string) (*booking.Booking, error)
	ListBookings(ctx context.Context, p booking.ListParams) (booking.Page, error)
	ClearBookings(ctx context.Context) error
}

type RouterConfig struct {
	Service          BookingService
	Dependencies     []Dependency
	SimulatedLatency time.Duration
	Env              string
	Version          string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)

	health := NewHealthHandler(cfg.Dependencies, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	r.Group(func(r chi.Router) {
		r.Use(LatencyMiddleware(cfg.SimulatedLatency))

		r.Get("/slots", listSlotsHandler(cfg.Service))

		r.Post("/bookings", createBookingHandler(cfg.Service))
		r.Delete("/bookings", clearBookingsHandler(cfg.Service))
		r.Get("/bookings/list", listBookingsHandler(cfg.Service))
		r.Get("/bookings/{uid}", getBookingHandler(cfg.Service))
	})

	return r
}
