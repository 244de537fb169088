package booking

import (
	"context"
	"time"
)

// DefaultPageSize is used when callers do not ask for a page size.
const DefaultPageSize = 5

// ListBookings returns one offset page of bookings ordered by start, with
// optional [AfterStart, BeforeEnd) filtering on the start instant.
// Take <= 0 or Skip < 0 yields an empty page rather than an error.
func (s *Service) ListBookings(ctx context.Context, p ListParams) (Page, error) {
	all := filterByStart(sortedByStart(s.store.Load(ctx)), p.AfterStart, p.BeforeEnd)

	if p.Take <= 0 || p.Skip < 0 {
		take := p.Take
		if take < 0 {
			take = 0
		}
		return Page{
			Bookings:   []Booking{},
			Pagination: Pagination{TotalItems: len(all), ItemsPerPage: take},
		}, nil
	}

	lo := min(p.Skip, len(all))
	hi := min(p.Skip+p.Take, len(all))
	page := append([]Booking{}, all[lo:hi]...)

	return Page{
		Bookings:   page,
		Pagination: Paginate(len(all), p.Take, p.Skip, len(page)),
	}, nil
}

// Paginate derives page metadata from the totals. take must be positive.
func Paginate(totalItems, take, skip, returned int) Pagination {
	return Pagination{
		TotalItems:      totalItems,
		RemainingItems:  max(0, totalItems-skip-returned),
		ReturnedItems:   returned,
		ItemsPerPage:    take,
		CurrentPage:     skip/take + 1,
		TotalPages:      (totalItems + take - 1) / take,
		HasNextPage:     skip+returned < totalItems,
		HasPreviousPage: skip > 0,
	}
}

func filterByStart(list []Booking, afterStart, beforeEnd *time.Time) []Booking {
	if afterStart == nil && beforeEnd == nil {
		return list
	}
	out := list[:0]
	for _, b := range list {
		if afterStart != nil && b.Start.Before(*afterStart) {
			continue
		}
		if beforeEnd != nil && !b.Start.Before(*beforeEnd) {
			continue
		}
		out = append(out, b)
	}
	return out
}
