package main

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/warp/campsite-engine/campground"
	"github.com/warp/campsite-engine/config"
	"github.com/warp/campsite-engine/events"
	"github.com/warp/campsite-engine/lock"
	"github.com/warp/campsite-engine/payment"
	"github.com/warp/campsite-engine/store/postgres"
	"github.com/warp/campsite-engine/store/sqlite"
)

// storeFlags are shared by every command that opens the store.
type storeFlags struct {
	driver string
	dbPath string
}

func (f *storeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.driver, "db-driver", "", "storage driver: sqlite or postgres (overrides DB_DRIVER)")
	cmd.Flags().StringVar(&f.dbPath, "db", "", "SQLite database path, \":memory:\" for in-memory (overrides DB_PATH)")
}

// loadConfig reads the environment and applies flag overrides.
func (f *storeFlags) loadConfig() (config.Config, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return cfg, err
	}
	if f.driver != "" {
		cfg.DBDriver = f.driver
	}
	if f.dbPath != "" {
		cfg.DBPath = f.dbPath
	}
	return cfg, cfg.Validate()
}

// app is everything the engine was built from, with one close for all.
type app struct {
	engine  *campground.Engine
	store   campground.Store
	closers []func() error
}

func (rt *app) Close() error {
	var first error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// build opens the store and the optional integrations named by cfg.
func build(ctx context.Context, cfg config.Config, log *logrus.Logger) (*app, error) {
	rt := &app{}
	fail := func(err error) (*app, error) {
		rt.Close()
		return nil, err
	}

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return fail(err)
	}
	rt.store = store
	rt.closers = append(rt.closers, closeStore)

	opts := []campground.Option{campground.WithLogger(log)}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		rt.closers = append(rt.closers, rdb.Close)
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fail(fmt.Errorf("redis ping: %w", err))
		}
		opts = append(opts, campground.WithLocker(lock.NewRedis(rdb, 10*time.Second, "campground", log)))
		log.WithField("addr", cfg.RedisAddr).Info("using redis site locks")
	}

	if cfg.KafkaBrokers != "" {
		k := events.NewKafka(events.SplitBrokers(cfg.KafkaBrokers), cfg.KafkaTopic)
		rt.closers = append(rt.closers, k.Close)
		opts = append(opts, campground.WithPublisher(k))
		log.WithField("topic", cfg.KafkaTopic).Info("publishing events to kafka")
	} else {
		opts = append(opts, campground.WithPublisher(events.NewLog(log)))
	}

	if cfg.StripeKey != "" {
		opts = append(opts, campground.WithPaymentSettler(payment.NewStripe(cfg.StripeKey, log), cfg.Currency))
		log.WithField("currency", cfg.Currency).Info("stripe settlement enabled")
	}

	rt.engine = campground.NewEngine(store, opts...)
	return rt, nil
}

func openStore(ctx context.Context, cfg config.Config) (campground.Store, func() error, error) {
	switch cfg.DBDriver {
	case "postgres":
		s, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize postgres: %w", err)
		}
		return s, func() error { s.Close(); return nil }, nil
	default:
		s, err := sqlite.New(cfg.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return s, s.Close, nil
	}
}
