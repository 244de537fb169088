package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hackgods/appointment-scheduler-demo/internal/slots"
)

const (
	demoSeed         = 42
	demoDays         = 7
	demoAttendeeZone = "America/Los_Angeles"
)

var demoNames = []string{
	"Alice Johnson", "Bob Smith", "Carol Williams", "David Brown",
	"Emma Davis", "Frank Miller", "Grace Wilson", "Henry Moore",
	"Ivy Taylor", "Jack Anderson", "Kate Thomas", "Leo Jackson",
	"Maria Garcia", "Nathan Lee", "Olivia Martinez", "Peter Wong",
}

// EnsureSeeded fills an empty store with reproducible demo bookings for the
// seven days starting at today. It does nothing when bookings already exist
// and returns how many bookings were written.
func (s *Service) EnsureSeeded(ctx context.Context, today time.Time) (int, error) {
	var seeded int

	err := s.locker.WithLock(ctx, storeLockName, func(lockCtx context.Context) error {
		existing, err := s.store.LoadForUpdate(lockCtx)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return nil
		}

		demo := s.demoBookings(slots.DayStart(today))
		if err := s.store.Save(lockCtx, demo); err != nil {
			return fmt.Errorf("save demo bookings: %w", err)
		}
		seeded = len(demo)
		return nil
	})
	if err != nil {
		return 0, err
	}

	if seeded > 0 {
		s.logEvent(EventBookingsSeeded, map[string]any{
			"count": seeded,
			"from":  slots.DayStart(today),
			"days":  demoDays,
		})
	}
	return seeded, nil
}

// demoBookings books a subset of each day's generated slots. Even day offsets
// get 2-4 bookings, odd ones 6-8.
func (s *Service) demoBookings(today time.Time) map[string]Booking {
	random := slots.NewLCG(demoSeed)
	out := make(map[string]Booking)

	for dayOffset := 0; dayOffset < demoDays; dayOffset++ {
		daySlots := s.generator.Pick(today.AddDate(0, 0, dayOffset))

		numToBook := random.Intn(3) + 2
		if dayOffset%2 == 1 {
			numToBook = random.Intn(3) + 6
		}

		used := make(map[int]bool)
		for i := 0; i < numToBook && len(used) < len(daySlots); i++ {
			idx := random.Intn(len(daySlots))
			for used[idx] {
				idx = random.Intn(len(daySlots))
			}
			used[idx] = true

			start := daySlots[idx]
			id := int64(random.Intn(maxBookingID))
			name := demoNames[random.Intn(len(demoNames))]
			duration := Duration30
			if random.Float64() > 0.7 {
				duration = Duration60
			}

			uid := fmt.Sprintf("demo_%d_%d_%d", dayOffset, i, id)
			out[uid] = Booking{
				ID:       id,
				UID:      uid,
				Title:    titleFor(name),
				Start:    start,
				End:      start.Add(time.Duration(duration) * time.Minute),
				Duration: duration,
				Status:   StatusAccepted,
				Attendees: []Attendee{{
					Name:     name,
					Email:    demoEmail(name),
					TimeZone: demoAttendeeZone,
				}},
			}
		}
	}
	return out
}

func demoEmail(name string) string {
	return strings.Replace(strings.ToLower(name), " ", ".", 1) + "@example.com"
}
