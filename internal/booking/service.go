package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/hackgods/appointment-scheduler-demo/internal/config"
	redisclient "github.com/hackgods/appointment-scheduler-demo/internal/redis"
	"github.com/hackgods/appointment-scheduler-demo/internal/slots"
	"github.com/hackgods/appointment-scheduler-demo/internal/timezone"
)

const (
	EventBookingCreated  = "BOOKING_CREATED"
	EventBookingsCleared = "BOOKINGS_CLEARED"
	EventBookingsSeeded  = "BOOKINGS_SEEDED"
)

// storeLockName guards every load-mutate-save cycle on the store.
const storeLockName = "bookings"

const maxBookingID = 100000

var (
	ErrBadRequest = errors.New("invalid booking request")
	ErrOutOfHours = errors.New("booking is outside business hours")
	ErrSlotTaken  = errors.New("slot is already booked")
)

type Service struct {
	store     Store
	locker    redisclient.Locker
	offsets   timezone.OffsetProvider
	generator *slots.Generator
	cfg       config.Config
	validate  *validator.Validate

	now    func() time.Time
	nextID func() int64
}

func NewService(store Store, locker redisclient.Locker, offsets timezone.OffsetProvider, cfg config.Config) *Service {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	return &Service{
		store:   store,
		locker:  locker,
		offsets: offsets,
		generator: slots.NewGenerator(offsets, cfg.HostTimezone, slots.BusinessHours{
			Start: cfg.BusinessHoursStart,
			End:   cfg.BusinessHoursEnd,
		}),
		cfg:      cfg,
		validate: v,
		now:      time.Now,
		nextID: func() int64 {
			return rand.Int64N(maxBookingID)
		},
	}
}

// Generator exposes the slot generator the service resolves availability with.
func (s *Service) Generator() *slots.Generator {
	return s.generator
}

// CreateBooking validates the request and stores a new accepted booking.
// Checks run in order: required fields, business hours, then conflicts
// against existing bookings with the exact same start.
func (s *Service) CreateBooking(ctx context.Context, in CreateBookingInput) (*Booking, error) {
	if err := s.validateInput(&in); err != nil {
		return nil, err
	}

	start := in.Start.UTC()
	if !timezone.IsKnown(s.offsets, in.Attendee.TimeZone) {
		log.Printf("unknown attendee timezone zone=%q fallback_offset=%d", in.Attendee.TimeZone, timezone.DefaultOffsetHours)
	}
	hour := timezone.LocalHour(s.offsets, in.Attendee.TimeZone, start)
	if hour < s.cfg.BusinessHoursStart || hour >= s.cfg.BusinessHoursEnd {
		return nil, fmt.Errorf("%w: %02d:00 in %s is outside %02d:00-%02d:00",
			ErrOutOfHours, hour, in.Attendee.TimeZone, s.cfg.BusinessHoursStart, s.cfg.BusinessHoursEnd)
	}

	var created *Booking

	err := s.locker.WithLock(ctx, storeLockName, func(lockCtx context.Context) error {
		bookings, err := s.store.LoadForUpdate(lockCtx)
		if err != nil {
			return err
		}

		// Same-instant rule: only an identical start conflicts.
		for _, existing := range bookings {
			if existing.Start.Equal(start) {
				return fmt.Errorf("%w: %s", ErrSlotTaken, start.Format(time.RFC3339))
			}
		}

		b := Booking{
			Title:     titleFor(in.Attendee.Name),
			Start:     start,
			End:       start.Add(time.Duration(in.Duration) * time.Minute),
			Duration:  in.Duration,
			Status:    StatusAccepted,
			Attendees: []Attendee{in.Attendee},
		}
		for {
			b.ID = s.nextID()
			b.UID = fmt.Sprintf("booking_%d_%d", s.now().UnixMilli(), b.ID)
			if _, taken := bookings[b.UID]; !taken {
				break
			}
		}

		bookings[b.UID] = b
		if err := s.store.Save(lockCtx, bookings); err != nil {
			return fmt.Errorf("save booking: %w", err)
		}

		created = &b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logEvent(EventBookingCreated, map[string]any{
		"uid":      created.UID,
		"start":    created.Start,
		"end":      created.End,
		"duration": created.Duration,
		"attendee": created.Attendees[0].Email,
		"timezone": created.Attendees[0].TimeZone,
	})

	return created, nil
}

func (s *Service) validateInput(in *CreateBookingInput) error {
	if err := s.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: %s is required", ErrBadRequest, fieldPath(verrs[0]))
		}
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	if in.Start.IsZero() {
		return fmt.Errorf("%w: start is required", ErrBadRequest)
	}

	switch in.Duration {
	case 0:
		in.Duration = Duration30
	case Duration30, Duration60:
	default:
		return fmt.Errorf("%w: duration must be %d or %d minutes", ErrBadRequest, Duration30, Duration60)
	}
	return nil
}

// fieldPath turns "CreateBookingInput.attendee.name" into "attendee.name".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

// GetBooking returns a stored booking by UID.
func (s *Service) GetBooking(ctx context.Context, uid string) (*Booking, error) {
	b, err := s.store.Get(ctx, uid)
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return b, nil
}

// ClearBookings empties the store.
func (s *Service) ClearBookings(ctx context.Context) error {
	err := s.locker.WithLock(ctx, storeLockName, func(lockCtx context.Context) error {
		return s.store.Clear(lockCtx)
	})
	if err != nil {
		return fmt.Errorf("clear bookings: %w", err)
	}

	s.logEvent(EventBookingsCleared, map[string]any{})
	return nil
}

func (s *Service) logEvent(eventType string, payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("failed to marshal event payload for %s: %v", eventType, err)
		data = nil
	}
	log.Printf("event=%s payload=%s", eventType, data)
}
