package booking

import (
	"context"
	"log"
	"time"

	"github.com/hackgods/appointment-scheduler-demo/internal/slots"
)

// AvailableSlots returns the free slots whose start lies in [start, end),
// in chronological order. A generated slot is taken when a stored booking
// starts at exactly the same instant.
func (s *Service) AvailableSlots(ctx context.Context, start, end time.Time, timeZone string) ([]Slot, error) {
	start, end = start.UTC(), end.UTC()
	if !end.After(start) {
		return []Slot{}, nil
	}

	booked := make(map[int64]struct{})
	for _, b := range s.store.Load(ctx) {
		booked[b.Start.UnixNano()] = struct{}{}
	}

	free := make([]Slot, 0)
	for day := slots.DayStart(start); day.Before(end); day = day.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, t := range s.generator.Generate(day) {
			if t.Before(start) || !t.Before(end) {
				continue
			}
			if _, taken := booked[t.UnixNano()]; taken {
				continue
			}
			free = append(free, Slot{Time: t})
		}
	}

	log.Printf("resolved slots start=%s end=%s timezone=%s free=%d booked=%d",
		start.Format(time.RFC3339), end.Format(time.RFC3339), timeZone, len(free), len(booked))
	return free, nil
}
