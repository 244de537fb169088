package booking

import (
	"context"
	"errors"
)

var (
	ErrBookingNotFound = errors.New("booking not found")
	ErrStorage         = errors.New("booking storage failure")
)

// Store persists the booking collection keyed by UID.
//
// Load never fails: unreadable storage is logged and reported as empty. It
// serves reads only. Writers hold the store lock and use LoadForUpdate, which
// reports read failures as ErrStorage so that Save never replaces data it
// could not see.
// Save overwrites the whole collection and does return write errors.
type Store interface {
	Load(ctx context.Context) map[string]Booking
	LoadForUpdate(ctx context.Context) (map[string]Booking, error)
	Save(ctx context.Context, bookings map[string]Booking) error
	Get(ctx context.Context, uid string) (*Booking, error)
	Clear(ctx context.Context) error
	Ping(ctx context.Context) error
}
