package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/hackgods/appointment-scheduler-demo/internal/api"
	"github.com/hackgods/appointment-scheduler-demo/internal/app"
	"github.com/hackgods/appointment-scheduler-demo/internal/config"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("api-server starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	log.Printf("running in env=%s http_port=%s store=%s host_tz=%s business_hours=%d-%d",
		cfg.Env, cfg.HTTPPort, cfg.StoreBackend, cfg.HostTimezone, cfg.BusinessHoursStart, cfg.BusinessHoursEnd)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	container, err := app.NewContainer(rootCtx, cfg)
	if err != nil {
		log.Fatalf("startup error: %v", err)
	}
	defer container.Close()

	if cfg.SeedDemo {
		n, err := container.Service.EnsureSeeded(rootCtx, time.Now())
		if err != nil {
			log.Fatalf("seed demo bookings: %v", err)
		}
		if n > 0 {
			log.Printf("initialized %d demo bookings across 7 days", n)
		} else {
			log.Println("existing bookings found, skipping demo seed")
		}
	}

	router := api.NewRouter(api.RouterConfig{
		Service:          container.Service,
		Dependencies:     container.Dependencies,
		SimulatedLatency: cfg.SimulatedLatency,
		Env:              cfg.Env,
		Version:          cfg.Version,
	})

	server := &http.Server{
		Addr:              net.JoinHostPort("", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()

	<-rootCtx.Done()
	log.Println("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("server forced to shutdown: %v", err)
	}
}
