/*
main.go - Application entry point

PURPOSE:
  The campground command. Wires configuration, storage, locking, events
  and payments into one campground.Engine and exposes it as an HTTP server
  or as one-shot CLI queries.

COMMANDS:
  serve          HTTP API + pending-hold expiry scheduler
  availability   Resolve one stay against the configured store, print JSON
  version        Print build info

CONFIGURATION:
  Environment first (see config.FromEnv), then command-line flags.
  ENV_FILE (default .env) fills keys the environment leaves unset.
    PORT / --port                  HTTP port (default 8080)
    DB_DRIVER / --db-driver        sqlite | postgres
    DB_PATH / --db                 SQLite path, ":memory:" for in-memory
    DATABASE_URL                   Postgres connection string
    REDIS_ADDR                     Distributed site locks (in-process when empty)
    KAFKA_BROKERS, KAFKA_TOPIC     Domain events (logged when empty)
    STRIPE_SECRET_KEY, CURRENCY    Booking settlement (disabled when empty)
    PENDING_TTL, SWEEP_INTERVAL    Pending-hold expiry (only with Stripe)
    LOG_LEVEL, LOG_FILE            Logging
    OTEL_ENABLED, OTEL_EXPORTER_OTLP_ENDPOINT

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the expiry scheduler
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Flush traces, close the event writer, the store and the log file

EXAMPLES:
  campground serve --db="./data/campground.db"
  campground serve --db=":memory:" --seed
  campground availability --check-in 2025-07-04 --check-out 2025-07-06 --guests 2

SEE ALSO:
  - api/server.go: Router configuration
  - config/config.go: Environment keys
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	CommitSHA = "none"
	BuildDate = "unknown"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "campground",
		Short:         "Campground availability and conflict resolution engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newAvailabilityCmd())
	root.AddCommand(newVersionCmd())

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version info",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "campground %s (commit=%s, built=%s)\n", Version, CommitSHA, BuildDate)
		},
	}
}
