package slots

import (
	"sort"
	"time"

	"github.com/hackgods/appointment-scheduler-demo/internal/timezone"
)

// Interval is the spacing between candidate slot starts.
const Interval = 30 * time.Minute

const (
	minSlotsPerDay  = 6
	slotCountSpread = 7
)

// BusinessHours is the host's local working window, [Start, End) in hours.
type BusinessHours struct {
	Start int
	End   int
}

// Generator derives a reproducible subset of half-hour slots for a day.
type Generator struct {
	Offsets       timezone.OffsetProvider
	HostTimezone  string
	BusinessHours BusinessHours
}

func NewGenerator(offsets timezone.OffsetProvider, hostTimezone string, hours BusinessHours) *Generator {
	return &Generator{
		Offsets:       offsets,
		HostTimezone:  hostTimezone,
		BusinessHours: hours,
	}
}

// Generate returns the day's slot starts in UTC, sorted chronologically.
// The same day always yields the same slots in the same order.
func (g *Generator) Generate(day time.Time) []time.Time {
	picked := g.Pick(day)
	sort.Slice(picked, func(i, j int) bool { return picked[i].Before(picked[j]) })
	return picked
}

// Pick returns the day's selected slots in shuffled order.
func (g *Generator) Pick(day time.Time) []time.Time {
	day = DayStart(day)
	candidates := g.Candidates(day)
	if len(candidates) == 0 {
		return nil
	}

	rng := NewLCG(DateSeed(day.Format(time.DateOnly)))
	n := rng.Intn(slotCountSpread) + minSlotsPerDay

	keys := make([]float64, len(candidates))
	for i := range keys {
		keys[i] = rng.Float64()
	}
	order := make([]int, len(candidates))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return keys[order[a]] < keys[order[b]] })

	if n > len(order) {
		n = len(order)
	}
	picked := make([]time.Time, n)
	for i := 0; i < n; i++ {
		picked[i] = candidates[order[i]]
	}
	return picked
}

// Candidates enumerates every half-hour boundary of the business window for
// the day, expressed in UTC. Hours may spill into neighbouring UTC days.
func (g *Generator) Candidates(day time.Time) []time.Time {
	day = DayStart(day)
	offset := g.Offsets.OffsetHours(g.HostTimezone, day)
	startHour := g.BusinessHours.Start - offset
	endHour := g.BusinessHours.End - offset
	if endHour <= startHour {
		return nil
	}

	out := make([]time.Time, 0, (endHour-startHour)*int(time.Hour/Interval))
	for hour := startHour; hour < endHour; hour++ {
		for m := time.Duration(0); m < time.Hour; m += Interval {
			out = append(out, day.Add(time.Duration(hour)*time.Hour+m))
		}
	}
	return out
}

// DayStart truncates t to UTC midnight.
func DayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
