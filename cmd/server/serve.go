package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/warp/campsite-engine/api"
	"github.com/warp/campsite-engine/logging"
	"github.com/warp/campsite-engine/tracing"
)

func newServeCmd() *cobra.Command {
	var (
		flags storeFlags
		port  string
		seed  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the pending-hold expiry scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.loadConfig()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			log, logCloser, err := logging.New(cfg.LogLevel, cfg.LogFile)
			if err != nil {
				return err
			}
			defer logCloser.Close()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			shutdownTracing, err := tracing.Setup(ctx, tracing.Config{
				Enabled:      cfg.OTelEnabled,
				ServiceName:  "campground",
				OTLPEndpoint: cfg.OTLPEndpoint,
				SampleRatio:  1,
			})
			if err != nil {
				log.WithError(err).Error("otel setup failed")
			} else {
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = shutdownTracing(shutdownCtx)
				}()
			}

			rt, err := build(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer rt.Close()

			if seed {
				seeded, err := api.SeedDefaultSites(ctx, rt.store, time.Now())
				if err != nil {
					return err
				}
				if seeded {
					log.Info("seeded default campground")
				}
			}

			scheduler := api.NewPendingExpiryScheduler(rt.engine, cfg.PendingTTL, log)
			scheduler.CheckInterval = cfg.SweepInterval
			scheduler.Start()
			defer scheduler.Stop()

			handler := api.NewHandler(rt.engine, log)
			router := api.NewRouter(handler, cfg.AllowedOrigins)

			server := &http.Server{
				Addr:              ":" + cfg.Port,
				Handler:           otelhttp.NewHandler(router, "campground"),
				ReadHeaderTimeout: 5 * time.Second,
				ReadTimeout:       15 * time.Second,
				WriteTimeout:      15 * time.Second,
				IdleTimeout:       60 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				log.WithFields(logrus.Fields{
					"addr":      server.Addr,
					"db_driver": cfg.DBDriver,
				}).Info("http server starting")
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return err
				}
			case <-ctx.Done():
			}

			log.Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				log.WithError(err).Error("server forced to shutdown")
				return err
			}
			log.Info("server stopped")
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&port, "port", "", "HTTP server port (overrides PORT)")
	cmd.Flags().BoolVar(&seed, "seed", true, "save the default campground when the store has no sites")
	return cmd
}
