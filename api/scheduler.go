/*
scheduler.go - Pending-hold expiry scheduler

PURPOSE:
  Periodically cancels pending reservations that were never paid, so an
  abandoned booking does not hold a site forever.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - A reservation expires when it has no payment reference and has been
    pending for more than TTL since it last entered pending
  - Without a payment settler nothing can pay for a hold, so the scheduler
    is disabled by default and the engine never expires anything
  - Expiry goes through Engine.ExpirePending, which publishes the status
    change like any other write

CONFIGURATION:
  - CheckInterval: How often to check (SWEEP_INTERVAL, default 1 minute)
  - TTL:           How long a pending hold lives (PENDING_TTL, default 30 minutes)
  - Enabled:       Whether scheduler is active (default: engine takes payments)

USAGE:
  scheduler := NewPendingExpiryScheduler(engine, ttl, log)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - campground/engine.go: ExpirePending
*/
package api

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/warp/campsite-engine/campground"
)

// PendingExpiryScheduler cancels stale pending reservations.
type PendingExpiryScheduler struct {
	Engine        *campground.Engine
	TTL           time.Duration
	CheckInterval time.Duration
	Enabled       bool

	log    logrus.FieldLogger
	now    func() time.Time
	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewPendingExpiryScheduler creates a new scheduler.
func NewPendingExpiryScheduler(engine *campground.Engine, ttl time.Duration, log logrus.FieldLogger) *PendingExpiryScheduler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &PendingExpiryScheduler{
		Engine:        engine,
		TTL:           ttl,
		CheckInterval: time.Minute,
		Enabled:       engine != nil && engine.TakesPayments(),
		log:           log.WithField("component", "pending-expiry"),
		now:           time.Now,
	}
}

// Start begins the scheduler.
func (s *PendingExpiryScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.Enabled {
		s.log.Info("scheduler disabled, not starting")
		return
	}
	if s.ticker != nil {
		return
	}

	s.ticker = time.NewTicker(s.CheckInterval)
	s.stop = make(chan struct{})
	s.wg.Add(1)

	go s.run()

	s.log.WithFields(logrus.Fields{
		"interval": s.CheckInterval.String(),
		"ttl":      s.TTL.String(),
	}).Info("scheduler started")
}

// Stop stops the scheduler and waits for an in-flight sweep.
func (s *PendingExpiryScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker != nil {
		s.ticker.Stop()
		close(s.stop)
		s.wg.Wait()
		s.ticker = nil
		s.log.Info("scheduler stopped")
	}
}

func (s *PendingExpiryScheduler) run() {
	defer s.wg.Done()

	// Run immediately on start
	s.RunNow(context.Background())

	for {
		select {
		case <-s.ticker.C:
			s.RunNow(context.Background())
		case <-s.stop:
			return
		}
	}
}

// RunNow performs one sweep and returns the reservations it cancelled.
func (s *PendingExpiryScheduler) RunNow(ctx context.Context) []campground.Commitment {
	cutoff := s.now().Add(-s.TTL)
	expired, err := s.Engine.ExpirePending(ctx, cutoff)
	if err != nil {
		s.log.WithError(err).Error("pending expiry sweep failed")
	}
	for _, c := range expired {
		s.log.WithFields(logrus.Fields{
			"commitment_id": c.ID,
			"site_id":       c.ResourceID,
			"created_at":    c.CreatedAt.Format(time.RFC3339),
		}).Info("pending reservation expired")
	}
	return expired
}
