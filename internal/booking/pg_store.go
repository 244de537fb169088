package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const bookingsSchema = `
CREATE TABLE IF NOT EXISTS bookings (
	uid        TEXT PRIMARY KEY,
	id         BIGINT NOT NULL,
	title      TEXT NOT NULL,
	start_time TIMESTAMPTZ NOT NULL,
	end_time   TIMESTAMPTZ NOT NULL,
	duration   INT NOT NULL,
	status     TEXT NOT NULL,
	attendees  JSONB NOT NULL DEFAULT '[]'
)`

var bookingColumns = []string{"uid", "id", "title", "start_time", "end_time", "duration", "status", "attendees"}

// PgStore keeps the booking collection in a Postgres table.
type PgStore struct {
	pool *pgxpool.Pool
	psql squirrel.StatementBuilderType
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{
		pool: pool,
		psql: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// EnsureSchema creates the bookings table if it does not exist yet.
func (s *PgStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, bookingsSchema); err != nil {
		return fmt.Errorf("create bookings table: %w", err)
	}
	return nil
}

// Helpers

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	var attendees []byte

	err := row.Scan(
		&b.UID,
		&b.ID,
		&b.Title,
		&b.Start,
		&b.End,
		&b.Duration,
		&b.Status,
		&attendees,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal(attendees, &b.Attendees); err != nil {
		return nil, fmt.Errorf("decode attendees for %s: %w", b.UID, err)
	}
	b.Start = b.Start.UTC()
	b.End = b.End.UTC()
	return &b, nil
}

// Interface methods

func (s *PgStore) Load(ctx context.Context) map[string]Booking {
	bookings, err := s.loadAll(ctx)
	if err != nil {
		log.Printf("load bookings from postgres: %v", err)
		return make(map[string]Booking)
	}
	return bookings
}

func (s *PgStore) LoadForUpdate(ctx context.Context) (map[string]Booking, error) {
	bookings, err := s.loadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load bookings: %v", ErrStorage, err)
	}
	return bookings, nil
}

func (s *PgStore) loadAll(ctx context.Context) (map[string]Booking, error) {
	query, args, err := s.psql.Select(bookingColumns...).
		From("bookings").
		OrderBy("start_time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build load query: %w", err)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]Booking)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		result[b.UID] = *b
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// Save replaces the table contents with the snapshot in one transaction.
func (s *PgStore) Save(ctx context.Context, bookings map[string]Booking) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", ErrStorage, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM bookings"); err != nil {
		return fmt.Errorf("%w: truncate bookings: %v", ErrStorage, err)
	}

	batch := &pgx.Batch{}
	for _, b := range bookings {
		attendees, err := json.Marshal(b.Attendees)
		if err != nil {
			return fmt.Errorf("%w: encode attendees for %s: %v", ErrStorage, b.UID, err)
		}

		query, args, err := s.psql.Insert("bookings").
			Columns(bookingColumns...).
			Values(b.UID, b.ID, b.Title, b.Start, b.End, b.Duration, string(b.Status), attendees).
			ToSql()
		if err != nil {
			return fmt.Errorf("%w: build insert: %v", ErrStorage, err)
		}
		batch.Queue(query, args...)
	}

	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("%w: insert bookings: %v", ErrStorage, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit: %v", ErrStorage, err)
	}

	log.Printf("saved bookings count=%d backend=postgres", len(bookings))
	return nil
}

func (s *PgStore) Get(ctx context.Context, uid string) (*Booking, error) {
	query, args, err := s.psql.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"uid": uid}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get query: %w", err)
	}

	b, err := scanBooking(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: get booking: %v", ErrStorage, err)
	}
	return b, nil
}

func (s *PgStore) Clear(ctx context.Context) error {
	query, args, err := s.psql.Delete("bookings").ToSql()
	if err != nil {
		return fmt.Errorf("build clear query: %w", err)
	}
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: clear bookings: %v", ErrStorage, err)
	}
	return nil
}

func (s *PgStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
