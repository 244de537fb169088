package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/appointment-scheduler-demo/internal/booking"
	"github.com/hackgods/appointment-scheduler-demo/internal/config"
)

func TestNewContainerFileBackend(t *testing.T) {
	cfg := config.Config{
		StoreBackend:       config.StoreFile,
		BookingsFile:       filepath.Join(t.TempDir(), "bookings.json"),
		HostTimezone:       "America/Chicago",
		BusinessHoursStart: 9,
		BusinessHoursEnd:   17,
		TimezoneSource:     config.TimezoneIANA,
	}

	c, err := NewContainer(context.Background(), cfg)
	require.NoError(t, err)
	defer c.Close()

	assert.IsType(t, &booking.FileStore{}, c.Store)
	require.Len(t, c.Dependencies, 1)
	assert.Equal(t, "store", c.Dependencies[0].Name)
	assert.True(t, c.Dependencies[0].Critical)
	assert.NoError(t, c.Dependencies[0].Check(context.Background()))

	n, err := c.Service.EnsureSeeded(context.Background(), mustDay(t))
	require.NoError(t, err)
	assert.Positive(t, n)
}

func mustDay(t *testing.T) (day time.Time) {
	t.Helper()
	day, err := time.Parse(time.DateOnly, "2025-01-28")
	require.NoError(t, err)
	return day
}
