package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/appointment-scheduler-demo/internal/booking"
	"github.com/hackgods/appointment-scheduler-demo/internal/config"
	redisclient "github.com/hackgods/appointment-scheduler-demo/internal/redis"
	"github.com/hackgods/appointment-scheduler-demo/internal/timezone"
)

func newTestServer(t *testing.T, deps ...Dependency) (*httptest.Server, *booking.FileStore) {
	t.Helper()

	store := booking.NewFileStore(filepath.Join(t.TempDir(), "bookings.json"))
	svc := booking.NewService(store, redisclient.NewLocalLocker(), timezone.DefaultTable(), config.Config{
		HostTimezone:       "America/Chicago",
		BusinessHoursStart: 9,
		BusinessHoursEnd:   17,
	})

	srv := httptest.NewServer(NewRouter(RouterConfig{
		Service:      svc,
		Dependencies: deps,
		Env:          "test",
		Version:      "v-test",
	}))
	t.Cleanup(srv.Close)
	return srv, store
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()

	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func postBooking(t *testing.T, srv *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(srv.URL+"/bookings", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	return resp
}

const validBooking = `{
	"eventTypeId": 123,
	"start": "2025-01-28T15:00:00Z",
	"duration": 30,
	"attendee": {"name": "Ada Lovelace", "email": "ada@example.com", "timeZone": "America/Chicago"}
}`

func TestListSlots(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/slots?eventTypeId=123&start=2025-01-28&end=2025-01-29&timeZone=America/Chicago")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[map[string]any](t, resp)
	assert.Equal(t, "success", body["status"])
	data, ok := body["data"].([]any)
	require.True(t, ok)
	require.Len(t, data, 12)
	assert.Equal(t, "2025-01-28T15:00:00Z", data[0].(map[string]any)["time"])
}

func TestListSlotsMissingParams(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, q := range []string{
		"",
		"?eventTypeId=123&start=2025-01-28",
		"?start=2025-01-28&end=2025-01-29",
		"?eventTypeId=abc&start=2025-01-28&end=2025-01-29",
		"?eventTypeId=123&start=tomorrow&end=2025-01-29",
	} {
		resp, err := http.Get(srv.URL + "/slots" + q)
		require.NoError(t, err)
		body := decode[ErrorResponse](t, resp)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, q)
		assert.Equal(t, "error", body.Status)
		assert.NotEmpty(t, body.Message)
	}
}

func TestListSlotsRangeTooLong(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, q := range []string{
		"?eventTypeId=123&start=0001-01-01&end=9999-12-31",
		"?eventTypeId=123&start=2025-01-01&end=2025-02-02",
	} {
		resp, err := http.Get(srv.URL + "/slots" + q)
		require.NoError(t, err)
		body := decode[ErrorResponse](t, resp)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, q)
		assert.Equal(t, "invalid_range", body.Error, q)
	}

	resp, err := http.Get(srv.URL + "/slots?eventTypeId=123&start=2025-01-01&end=2025-02-01")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCreateAndGetBooking(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postBooking(t, srv, validBooking)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[BookingResponse](t, resp)

	assert.Equal(t, "success", created.Status)
	assert.Equal(t, "Meeting with Ada Lovelace", created.Data.Title)
	assert.Equal(t, booking.StatusAccepted, created.Data.Status)
	assert.True(t, strings.HasPrefix(created.Data.UID, "booking_"))

	resp, err := http.Get(srv.URL + "/bookings/" + created.Data.UID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[BookingResponse](t, resp)
	assert.Equal(t, created.Data.UID, got.Data.UID)
	assert.True(t, got.Data.Start.Equal(created.Data.Start))

	// the booked slot disappears from availability
	resp, err = http.Get(srv.URL + "/slots?eventTypeId=123&start=2025-01-28&end=2025-01-29")
	require.NoError(t, err)
	slots := decode[SlotsResponse](t, resp)
	assert.Len(t, slots.Data, 11)
	for _, s := range slots.Data {
		assert.False(t, s.Time.Equal(created.Data.Start))
	}
}

func TestCreateBookingErrors(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postBooking(t, srv, validBooking)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"malformed json", `{"eventTypeId":`, http.StatusBadRequest, "invalid_request_body"},
		{"missing attendee", `{"eventTypeId":123,"start":"2025-01-28T16:00:00Z"}`, http.StatusBadRequest, "missing_fields"},
		{"bad start", `{"eventTypeId":123,"start":"28/01/2025","attendee":{"name":"A","email":"a@b.c","timeZone":"UTC"}}`, http.StatusBadRequest, "invalid_start"},
		{"incomplete attendee", `{"eventTypeId":123,"start":"2025-01-28T16:00:00Z","attendee":{"name":"A"}}`, http.StatusBadRequest, "bad_request"},
		{"out of hours", `{"eventTypeId":123,"start":"2025-01-28T14:00:00Z","attendee":{"name":"A","email":"a@b.c","timeZone":"America/Chicago"}}`, http.StatusBadRequest, "out_of_hours"},
		{"slot taken", validBooking, http.StatusConflict, "slot_taken"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postBooking(t, srv, tt.body)
			body := decode[ErrorResponse](t, resp)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantCode, body.Error)
			assert.Equal(t, "error", body.Status)
		})
	}
}

func TestGetBookingNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/bookings/booking_1_1")
	require.NoError(t, err)
	body := decode[ErrorResponse](t, resp)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "booking_not_found", body.Error)
}

func TestListBookings(t *testing.T) {
	srv, _ := newTestServer(t)

	starts := []string{
		"2025-01-28T15:00:00Z", "2025-01-28T15:30:00Z", "2025-01-28T16:00:00Z", "2025-01-28T16:30:00Z",
		"2025-01-28T17:00:00Z", "2025-01-28T17:30:00Z", "2025-01-28T18:00:00Z",
	}
	for _, s := range starts {
		resp := postBooking(t, srv, `{"eventTypeId":123,"start":"`+s+`","attendee":{"name":"A","email":"a@b.c","timeZone":"America/Chicago"}}`)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	resp, err := http.Get(srv.URL + "/bookings/list?take=5&skip=0")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := decode[BookingListResponse](t, resp)

	assert.Len(t, page.Data, 5)
	assert.True(t, page.Pagination.HasNextPage)
	assert.Equal(t, 2, page.Pagination.TotalPages)
	assert.Equal(t, 7, page.Pagination.TotalItems)

	resp, err = http.Get(srv.URL + "/bookings/list?afterStart=2025-01-28T16:00:00Z&beforeEnd=2025-01-28T17:00:00Z")
	require.NoError(t, err)
	page = decode[BookingListResponse](t, resp)
	assert.Len(t, page.Data, 2)
	assert.Equal(t, 5, page.Pagination.ItemsPerPage)

	resp, err = http.Get(srv.URL + "/bookings/list?take=5&skip=50")
	require.NoError(t, err)
	page = decode[BookingListResponse](t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotNil(t, page.Data)
	assert.Empty(t, page.Data)

	resp, err = http.Get(srv.URL + "/bookings/list?take=five")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestClearBookings(t *testing.T) {
	srv, store := newTestServer(t)

	resp := postBooking(t, srv, validBooking)
	resp.Body.Close()
	require.Len(t, store.Load(context.Background()), 1)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/bookings", nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Empty(t, store.Load(context.Background()))
}

func TestHealth(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("down") }

	tests := []struct {
		name       string
		deps       []Dependency
		wantStatus int
		want       string
	}{
		{"all up", []Dependency{{Name: "store", Critical: true, Check: ok}, {Name: "redis", Check: ok}}, http.StatusOK, "ok"},
		{"optional down", []Dependency{{Name: "store", Critical: true, Check: ok}, {Name: "redis", Check: down}}, http.StatusOK, "degraded"},
		{"store down", []Dependency{{Name: "store", Critical: true, Check: down}}, http.StatusServiceUnavailable, "error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t, tt.deps...)

			resp, err := http.Get(srv.URL + "/health/ready")
			require.NoError(t, err)
			body := decode[ReadinessResponse](t, resp)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.want, body.Status)
			assert.Len(t, body.Dependencies, len(tt.deps))
		})
	}

	srv, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/health/live")
	require.NoError(t, err)
	live := decode[LivenessResponse](t, resp)
	assert.Equal(t, "ok", live.Status)
	assert.Equal(t, "v-test", live.Version)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}
