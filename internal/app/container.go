package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hackgods/appointment-scheduler-demo/internal/api"
	"github.com/hackgods/appointment-scheduler-demo/internal/booking"
	"github.com/hackgods/appointment-scheduler-demo/internal/config"
	"github.com/hackgods/appointment-scheduler-demo/internal/db"
	redisclient "github.com/hackgods/appointment-scheduler-demo/internal/redis"
	"github.com/hackgods/appointment-scheduler-demo/internal/timezone"
)

// Container holds the wired components shared by the binaries.
type Container struct {
	Service      *booking.Service
	Store        booking.Store
	Dependencies []api.Dependency

	closers []func()
}

// NewContainer picks the store backend, the lock implementation and the
// timezone source from cfg and builds the booking service on top of them.
func NewContainer(ctx context.Context, cfg config.Config) (*Container, error) {
	c := &Container{}

	store, err := c.openStore(ctx, cfg)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Store = store
	c.Dependencies = append(c.Dependencies, api.Dependency{Name: "store", Critical: true, Check: store.Ping})

	var locker redisclient.Locker = redisclient.NewLocalLocker()
	if cfg.RedisAddr != "" {
		rdb, err := redisclient.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("redis connection: %w", err)
		}
		c.closers = append(c.closers, func() {
			if err := rdb.Close(); err != nil {
				log.Printf("error closing redis: %v", err)
			}
		})
		locker = redisclient.NewRedisSlotLocker(rdb, cfg.LockTTL, cfg.LockWait)
		c.Dependencies = append(c.Dependencies, api.Dependency{Name: "redis", Check: redisclient.PingFunc(rdb)})
		log.Printf("connected to Redis addr=%s", cfg.RedisAddr)
	}

	var offsets timezone.OffsetProvider = timezone.DefaultTable()
	if cfg.TimezoneSource == config.TimezoneIANA {
		offsets = timezone.NewLocationOffsets(timezone.DefaultTable())
	}

	c.Service = booking.NewService(store, locker, offsets, cfg)
	return c, nil
}

func (c *Container) openStore(ctx context.Context, cfg config.Config) (booking.Store, error) {
	if cfg.StoreBackend != config.StorePostgres {
		log.Printf("using file store path=%s", cfg.BookingsFile)
		return booking.NewFileStore(cfg.BookingsFile), nil
	}

	pgCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("postgres connection: %w", err)
	}
	c.closers = append(c.closers, pool.Close)

	store := booking.NewPgStore(pool)
	if err := store.EnsureSchema(pgCtx); err != nil {
		return nil, err
	}
	log.Println("using postgres store")
	return store, nil
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}
