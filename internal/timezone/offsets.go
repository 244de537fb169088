package timezone

import (
	"sync"
	"time"
	_ "time/tzdata"
)

// DefaultOffsetHours is used for zones missing from the fixed table.
const DefaultOffsetHours = -8

// OffsetProvider resolves a zone name to a whole-hour UTC offset.
type OffsetProvider interface {
	OffsetHours(zone string, at time.Time) int
}

// LocationResolver is implemented by providers backed by real locations.
// LocalHour prefers it so that zones off the whole hour stay exact.
type LocationResolver interface {
	Location(zone string) (*time.Location, bool)
}

// ZoneChecker reports whether a provider resolves a zone without falling
// back to DefaultOffsetHours.
type ZoneChecker interface {
	Known(zone string) bool
}

// FixedOffsets is a static zone table without DST.
type FixedOffsets map[string]int

// DefaultTable returns the zones the scheduler knows about out of the box.
func DefaultTable() FixedOffsets {
	return FixedOffsets{
		"America/Los_Angeles": -8,
		"America/Denver":      -7,
		"America/Chicago":     -6,
		"America/New_York":    -5,
		"UTC":                 0,
		"Europe/London":       0,
		"Europe/Paris":        1,
		"Asia/Tokyo":          9,
	}
}

func (f FixedOffsets) OffsetHours(zone string, _ time.Time) int {
	if off, ok := f[zone]; ok {
		return off
	}
	return DefaultOffsetHours
}

// Known reports whether the zone is present in the table.
func (f FixedOffsets) Known(zone string) bool {
	_, ok := f[zone]
	return ok
}

// LocationOffsets looks zones up in the Go time zone database and falls back
// to a fixed table when a zone cannot be loaded.
type LocationOffsets struct {
	Fallback OffsetProvider

	mu    sync.Mutex
	cache map[string]*time.Location
}

func NewLocationOffsets(fallback OffsetProvider) *LocationOffsets {
	if fallback == nil {
		fallback = DefaultTable()
	}
	return &LocationOffsets{
		Fallback: fallback,
		cache:    make(map[string]*time.Location),
	}
}

// OffsetHours truncates offsets like +05:30 to whole hours. Use LocalHour for
// business-hours checks.
func (l *LocationOffsets) OffsetHours(zone string, at time.Time) int {
	loc, ok := l.Location(zone)
	if !ok {
		return l.Fallback.OffsetHours(zone, at)
	}
	_, secs := at.In(loc).Zone()
	return secs / 3600
}

func (l *LocationOffsets) Known(zone string) bool {
	if _, ok := l.Location(zone); ok {
		return true
	}
	return IsKnown(l.Fallback, zone)
}

func (l *LocationOffsets) Location(zone string) (*time.Location, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if loc, ok := l.cache[zone]; ok {
		return loc, loc != nil
	}
	loc, err := time.LoadLocation(zone)
	if err != nil || zone == "" {
		l.cache[zone] = nil
		return nil, false
	}
	l.cache[zone] = loc
	return loc, true
}

// IsKnown reports whether p resolves zone itself. Providers that cannot tell
// are trusted.
func IsKnown(p OffsetProvider, zone string) bool {
	if c, ok := p.(ZoneChecker); ok {
		return c.Known(zone)
	}
	return true
}

// LocalHour returns the hour of day of t in the given zone, in [0, 24).
func LocalHour(p OffsetProvider, zone string, t time.Time) int {
	if r, ok := p.(LocationResolver); ok {
		if loc, ok := r.Location(zone); ok {
			return t.In(loc).Hour()
		}
	}

	h := (t.UTC().Hour() + p.OffsetHours(zone, t)) % 24
	if h < 0 {
		h += 24
	}
	return h
}
