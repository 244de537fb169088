package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/hackgods/appointment-scheduler-demo/internal/app"
	"github.com/hackgods/appointment-scheduler-demo/internal/config"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	reset := flag.Bool("reset", false, "clear all bookings before seeding")
	clearOnly := flag.Bool("clear", false, "clear all bookings and exit")
	from := flag.String("from", "", "first seeded day as YYYY-MM-DD (default today, UTC)")
	flag.Parse()

	log.Println("seed starting")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	today := time.Now().UTC()
	if *from != "" {
		today, err = time.Parse(time.DateOnly, *from)
		if err != nil {
			log.Fatalf("invalid -from %q: %v", *from, err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	container, err := app.NewContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("startup error: %v", err)
	}
	defer container.Close()

	if *reset || *clearOnly {
		if err := container.Service.ClearBookings(ctx); err != nil {
			log.Fatalf("clear bookings: %v", err)
		}
		log.Println("bookings cleared")
		if *clearOnly {
			return
		}
	}

	n, err := container.Service.EnsureSeeded(ctx, today)
	if err != nil {
		log.Fatalf("seed bookings: %v", err)
	}
	if n == 0 {
		log.Println("store already has bookings, nothing seeded (use -reset to start over)")
		return
	}

	log.Printf("seed complete: %d bookings from %s", n, today.Format(time.DateOnly))
}
