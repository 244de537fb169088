package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/hackgods/appointment-scheduler-demo/internal/config"
)

type SimConfig struct {
	APIBaseURL  string
	Duration    time.Duration
	Workers     int
	Days        int
	BookRatio   float64
	ReadRatio   float64
	EventTypeID int
	TimeZones   []string
}

// BookingPool remembers the UIDs created during the run for read traffic.
type BookingPool struct {
	mu   sync.RWMutex
	uids []string
}

func (p *BookingPool) Add(uid string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.uids = append(p.uids, uid)
}

func (p *BookingPool) Random(rng *rand.Rand) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if len(p.uids) == 0 {
		return "", false
	}
	return p.uids[rng.Intn(len(p.uids))], true
}

type Metrics struct {
	Slots    OperationMetrics
	Booking  OperationMetrics
	ReadByID OperationMetrics
	List     OperationMetrics
}

type Simulator struct {
	config  SimConfig
	runID   string
	client  *http.Client
	pool    BookingPool
	metrics Metrics
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("simulator starting")

	cfg := loadConfig()
	if err := validateConfig(cfg); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	sim := &Simulator{
		config: cfg,
		runID:  uuid.NewString(),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	log.Printf("config: run_id=%s duration=%s workers=%d days=%d book=%.2f read=%.2f",
		sim.runID, cfg.Duration, cfg.Workers, cfg.Days, cfg.BookRatio, cfg.ReadRatio)

	if err := sim.Run(); err != nil {
		log.Fatalf("simulation failed: %v", err)
	}

	sim.PrintReport()
}

func loadConfig() SimConfig {
	baseCfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load base config: %v", err)
	}

	cfg := SimConfig{
		APIBaseURL:  getEnv("SIM_API_BASE_URL", "http://localhost:"+baseCfg.HTTPPort),
		Duration:    getDuration("SIM_DURATION", 30*time.Second),
		Workers:     getInt("SIM_WORKERS", 10),
		Days:        getInt("SIM_DAYS", 7),
		BookRatio:   getFloat("SIM_BOOK_RATIO", 0.6),
		ReadRatio:   getFloat("SIM_READ_RATIO", 0.4),
		EventTypeID: baseCfg.EventTypeID,
		TimeZones:   strings.Split(getEnv("SIM_TIMEZONES", baseCfg.HostTimezone+",America/New_York,UTC"), ","),
	}

	total := cfg.BookRatio + cfg.ReadRatio
	if total > 0 {
		cfg.BookRatio /= total
		cfg.ReadRatio /= total
	}

	return cfg
}

func validateConfig(cfg SimConfig) error {
	if cfg.Workers <= 0 {
		return fmt.Errorf("SIM_WORKERS must be > 0")
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("SIM_DURATION must be > 0")
	}
	if cfg.Days <= 0 {
		return fmt.Errorf("SIM_DAYS must be > 0")
	}
	if _, err := url.Parse(cfg.APIBaseURL); err != nil {
		return fmt.Errorf("SIM_API_BASE_URL: %w", err)
	}
	return nil
}

func (s *Simulator) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Duration)
	defer cancel()

	log.Printf("starting simulation for %s with %d workers", s.config.Duration, s.config.Workers)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < s.config.Workers; i++ {
		workerID := i
		g.Go(func() error {
			s.worker(gctx, workerID)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	log.Println("simulation complete")
	return nil
}

func (s *Simulator) worker(ctx context.Context, workerID int) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(workerID)))
	faker := gofakeit.New(uint64(time.Now().UnixNano()) + uint64(workerID))

	for ctx.Err() == nil {
		if rng.Float64() < s.config.BookRatio {
			s.doBooking(ctx, rng, faker)
			continue
		}
		if rng.Intn(2) == 0 {
			s.doReadByID(ctx, rng)
		} else {
			s.doList(ctx, rng)
		}
	}
}

// doBooking lists one random day's slots and tries to book one of them.
func (s *Simulator) doBooking(ctx context.Context, rng *rand.Rand, faker *gofakeit.Faker) {
	day := time.Now().UTC().Truncate(24*time.Hour).AddDate(0, 0, rng.Intn(s.config.Days))
	zone := s.config.TimeZones[rng.Intn(len(s.config.TimeZones))]

	q := url.Values{}
	q.Set("eventTypeId", strconv.Itoa(s.config.EventTypeID))
	q.Set("start", day.Format(time.DateOnly))
	q.Set("end", day.AddDate(0, 0, 1).Format(time.DateOnly))
	q.Set("timeZone", zone)

	var slots struct {
		Data []struct {
			Time time.Time `json:"time"`
		} `json:"data"`
	}
	status, latency, err := s.do(ctx, http.MethodGet, "/slots?"+q.Encode(), nil, &slots)
	s.metrics.Slots.Record(latency, classify(status, err, http.StatusOK))
	if err != nil || status != http.StatusOK || len(slots.Data) == 0 {
		return
	}

	person := faker.Person()
	req := map[string]any{
		"eventTypeId": s.config.EventTypeID,
		"start":       slots.Data[rng.Intn(len(slots.Data))].Time.Format(time.RFC3339),
		"duration":    []int{30, 60}[rng.Intn(2)],
		"attendee": map[string]string{
			"name":     person.FirstName + " " + person.LastName,
			"email":    faker.Email(),
			"timeZone": zone,
		},
	}

	var created struct {
		Data struct {
			UID string `json:"uid"`
		} `json:"data"`
	}
	status, latency, err = s.do(ctx, http.MethodPost, "/bookings", req, &created)
	s.metrics.Booking.Record(latency, classify(status, err, http.StatusCreated))
	if status == http.StatusCreated && created.Data.UID != "" {
		s.pool.Add(created.Data.UID)
	}
}

func (s *Simulator) doReadByID(ctx context.Context, rng *rand.Rand) {
	uid, ok := s.pool.Random(rng)
	if !ok {
		return
	}

	status, latency, err := s.do(ctx, http.MethodGet, "/bookings/"+url.PathEscape(uid), nil, nil)
	s.metrics.ReadByID.Record(latency, classify(status, err, http.StatusOK))
}

func (s *Simulator) doList(ctx context.Context, rng *rand.Rand) {
	path := fmt.Sprintf("/bookings/list?take=5&skip=%d", rng.Intn(6)*5)

	status, latency, err := s.do(ctx, http.MethodGet, path, nil, nil)
	s.metrics.List.Record(latency, classify(status, err, http.StatusOK))
}

func (s *Simulator) do(ctx context.Context, method, path string, body, out any) (int, time.Duration, error) {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, 0, err
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.config.APIBaseURL+path, reader)
	if err != nil {
		return 0, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", s.runID+"-"+uuid.NewString()[:8])

	start := time.Now()
	resp, err := s.client.Do(req)
	latency := time.Since(start)
	if err != nil {
		return 0, latency, err
	}
	defer resp.Body.Close()

	if out != nil {
		_ = json.NewDecoder(resp.Body).Decode(out)
	}
	return resp.StatusCode, latency, nil
}

func classify(status int, err error, want int) Outcome {
	switch {
	case err != nil:
		return OutcomeError
	case status == want:
		return OutcomeSuccess
	case status == http.StatusConflict:
		return OutcomeConflict
	case status >= 400 && status < 500:
		return OutcomeRejected
	default:
		return OutcomeError
	}
}

func (s *Simulator) PrintReport() {
	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("SIMULATION REPORT")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Run: %s\n", s.runID)
	fmt.Printf("Duration: %s\n", s.config.Duration)
	fmt.Printf("Workers: %d\n", s.config.Workers)
	fmt.Println()

	printOperationReport("List slots", &s.metrics.Slots)
	printOperationReport("Create booking", &s.metrics.Booking)
	printOperationReport("Get booking", &s.metrics.ReadByID)
	printOperationReport("List bookings", &s.metrics.List)
}

// Helper functions

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
