package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
)

// FileStore keeps bookings as a single JSON array on disk.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load(ctx context.Context) map[string]Booking {
	bookings, err := s.read()
	if err != nil {
		log.Printf("load bookings path=%s: %v", s.path, err)
		return make(map[string]Booking)
	}
	return bookings
}

func (s *FileStore) LoadForUpdate(ctx context.Context) (map[string]Booking, error) {
	bookings, err := s.read()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return bookings, nil
}

func (s *FileStore) read() (map[string]Booking, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return make(map[string]Booking), nil
		}
		return nil, fmt.Errorf("read bookings file: %w", err)
	}

	var list []Booking
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("decode bookings file: %w", err)
	}

	bookings := make(map[string]Booking, len(list))
	for _, b := range list {
		bookings[b.UID] = b
	}
	return bookings, nil
}

// Save rewrites the whole file. The new content is written to a temp file in
// the same directory and renamed over the old one.
func (s *FileStore) Save(ctx context.Context, bookings map[string]Booking) error {
	if err := s.ensureDir(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(sortedByStart(bookings), "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode bookings: %v", ErrStorage, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %v", ErrStorage, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: write bookings: %v", ErrStorage, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close temp file: %v", ErrStorage, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("%w: replace bookings file: %v", ErrStorage, err)
	}

	log.Printf("saved bookings count=%d path=%s", len(bookings), s.path)
	return nil
}

func (s *FileStore) Get(ctx context.Context, uid string) (*Booking, error) {
	b, ok := s.Load(ctx)[uid]
	if !ok {
		return nil, ErrBookingNotFound
	}
	return &b, nil
}

func (s *FileStore) Clear(ctx context.Context) error {
	return s.Save(ctx, map[string]Booking{})
}

// Ping checks that the data directory exists or can be created.
func (s *FileStore) Ping(ctx context.Context) error {
	return s.ensureDir()
}

func (s *FileStore) ensureDir() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("%w: create data dir: %v", ErrStorage, err)
	}
	return nil
}

func sortedByStart(bookings map[string]Booking) []Booking {
	list := make([]Booking, 0, len(bookings))
	for _, b := range bookings {
		list = append(list, b)
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].Start.Equal(list[j].Start) {
			return list[i].Start.Before(list[j].Start)
		}
		return list[i].UID < list[j].UID
	})
	return list
}
