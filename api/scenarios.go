/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:
  Provides pre-built datasets that reproduce the situations the calendar
  and the booking form have to handle. Every scenario starts from the
  default campground (factory.DefaultSites).

AVAILABLE SCENARIOS:
  summer-weekend:  S1 booked July 1-4, back-to-back and overlapping requests
  winter-closure:  Global "Winter closure" blackout Dec 20-27 plus a cabin repair
  full-party:      Families that no site can hold
  inactive-site:   S2 deactivated, a reservation on S1 to drag onto it

HOW SCENARIOS WORK:
  1. Reset the store (clear all data)
  2. Save the default sites
  3. Write reservations and blackouts directly to the store

  All three steps run in one transaction when the store supports it.

USAGE VIA API:
  POST /api/scenarios/load
  {"scenario_id": "summer-weekend"}

NOTE:
  Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - factory/sites.go: Default site catalog
*/
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/campsite-engine/campground"
	"github.com/warp/campsite-engine/factory"
	"github.com/warp/campsite-engine/generic"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "summer-weekend",
		Name:        "Summer Weekend",
		Description: "S1 is confirmed July 1-4; try July 4-6 (back-to-back) and July 3-5 (overlap)",
	},
	{
		ID:          "winter-closure",
		Name:        "Winter Closure",
		Description: "Global blackout Dec 20-27 and a site-specific cabin repair",
	},
	{
		ID:          "full-party",
		Name:        "Full Party",
		Description: "No site holds more than 7 guests; a party of 8 gets a capacity message",
	},
	{
		ID:          "inactive-site",
		Name:        "Inactive Site",
		Description: "S2 is deactivated; dragging the S1 reservation onto it is rejected",
	},
}

type scenarioLoader func(ctx context.Context, store campground.Store, now time.Time) error

var scenarioLoaders = map[string]scenarioLoader{
	"summer-weekend": loadSummerWeekendScenario,
	"winter-closure": loadWinterClosureScenario,
	"full-party":     loadFullPartyScenario,
	"inactive-site":  loadInactiveSiteScenario,
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario replaces all data with a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := LoadScenario(r.Context(), h.Engine.Store(), req.ScenarioID, h.now()); err != nil {
		if generic.KindOf(err) == generic.KindNotFound {
			writeError(w, http.StatusBadRequest, "Unknown scenario", err)
			return
		}
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	h.mu.Lock()
	h.currentScenario = req.ScenarioID
	h.mu.Unlock()
	h.log.WithField("scenario", req.ScenarioID).Info("scenario loaded")

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// ResetDatabase clears all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Engine.Store().Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}

	h.mu.Lock()
	h.currentScenario = ""
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// LoadScenario resets store and loads the named scenario in one transaction.
func LoadScenario(ctx context.Context, store campground.Store, id string, now time.Time) error {
	load, ok := scenarioLoaders[id]
	if !ok {
		return fmt.Errorf("%w: scenario %q", generic.ErrNotFound, id)
	}
	return campground.WithinTx(ctx, store, func(tx campground.Store) error {
		if err := tx.Reset(ctx); err != nil {
			return fmt.Errorf("reset: %w", err)
		}
		return load(ctx, tx, now.UTC())
	})
}

// SeedDefaultSites saves the default campground when the store has no sites.
// It reports whether anything was written.
func SeedDefaultSites(ctx context.Context, store campground.Store, now time.Time) (bool, error) {
	existing, err := store.ListSites(ctx)
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		return false, nil
	}
	err = campground.WithinTx(ctx, store, func(tx campground.Store) error {
		return saveDefaultSites(ctx, tx, now.UTC(), nil)
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func loadSummerWeekendScenario(ctx context.Context, store campground.Store, now time.Time) error {
	if err := saveDefaultSites(ctx, store, now, nil); err != nil {
		return err
	}
	return createCommitments(ctx, store, now,
		scenarioCommitment("R-1001", "S1", "2025-07-01", "2025-07-04", campground.StatusConfirmed, "Alice", "Walker", 2, 0, "Motorhome", 32),
		scenarioCommitment("R-1002", "S2", "2025-07-03", "2025-07-06", campground.StatusPending, "Ben", "Ortiz", 2, 2, "Pull Trailer", 24),
		scenarioCommitment("R-1003", "S3", "2025-06-28", "2025-07-01", campground.StatusCheckedOut, "Chen", "Li", 1, 0, "Van", 20),
		scenarioCommitment("R-1004", "S1", "2025-07-04", "2025-07-06", campground.StatusCancelled, "Dana", "Fox", 3, 0, "5th Wheel", 36),
		scenarioCommitment("R-1005", "S5", "2025-07-02", "2025-07-05", campground.StatusCheckedIn, "Eli", "Moss", 2, 1, "Tent", 0),
	)
}

func loadWinterClosureScenario(ctx context.Context, store campground.Store, now time.Time) error {
	if err := saveDefaultSites(ctx, store, now, nil); err != nil {
		return err
	}
	if err := createCommitments(ctx, store, now,
		scenarioCommitment("R-2001", "C1", "2025-12-12", "2025-12-15", campground.StatusConfirmed, "Frida", "Gomez", 4, 2, "", 0),
	); err != nil {
		return err
	}
	return saveBlocks(ctx, store, now,
		campground.Block{ID: "B-2001", Start: generic.MustParseDate("2025-12-20"), End: generic.MustParseDate("2025-12-27"), Reason: "Winter closure"},
		campground.Block{ID: "B-2002", ResourceID: "C2", Start: generic.MustParseDate("2025-12-01"), End: generic.MustParseDate("2025-12-05"), Reason: "Roof repair"},
	)
}

func loadFullPartyScenario(ctx context.Context, store campground.Store, now time.Time) error {
	if err := saveDefaultSites(ctx, store, now, nil); err != nil {
		return err
	}
	return createCommitments(ctx, store, now,
		scenarioCommitment("R-3001", "C2", "2025-08-08", "2025-08-10", campground.StatusConfirmed, "Grace", "Hall", 2, 5, "", 0),
	)
}

func loadInactiveSiteScenario(ctx context.Context, store campground.Store, now time.Time) error {
	if err := saveDefaultSites(ctx, store, now, map[generic.ResourceID]bool{"S2": true}); err != nil {
		return err
	}
	return createCommitments(ctx, store, now,
		scenarioCommitment("R-4001", "S1", "2025-07-10", "2025-07-13", campground.StatusConfirmed, "Hugo", "Ibarra", 2, 0, "Motorhome", 30),
	)
}

// =============================================================================
// HELPERS
// =============================================================================

func saveDefaultSites(ctx context.Context, store campground.Store, now time.Time, inactive map[generic.ResourceID]bool) error {
	for _, site := range factory.DefaultSites() {
		site.CreatedAt, site.UpdatedAt = now, now
		if inactive[site.ID] {
			site.IsActive = false
		}
		if err := store.SaveSite(ctx, site); err != nil {
			return fmt.Errorf("save site %s: %w", site.ID, err)
		}
	}
	return nil
}

func scenarioCommitment(id string, site generic.ResourceID, checkIn, checkOut string, status campground.CommitmentStatus, first, last string, adults, children int, unit string, vehicleLength int) campground.Commitment {
	c := campground.Commitment{
		ID:          id,
		ResourceID:  site,
		CheckIn:     generic.MustParseDate(checkIn),
		CheckOut:    generic.MustParseDate(checkOut),
		Status:      status,
		Adults:      adults,
		Children:    children,
		CampingUnit: unit,
		Guest: campground.Guest{
			FirstName:     first,
			LastName:      last,
			Email:         fmt.Sprintf("%s.%s@example.com", first, last),
			ContactMethod: campground.ContactEmail,
		},
		PaymentRef: "demo-" + id,
	}
	if vehicleLength > 0 {
		c.VehicleLength = &vehicleLength
	}
	return c
}

func createCommitments(ctx context.Context, store campground.Store, now time.Time, cs ...campground.Commitment) error {
	sites, err := store.ListSites(ctx)
	if err != nil {
		return err
	}
	rates := make(map[generic.ResourceID]decimal.Decimal, len(sites))
	for _, s := range sites {
		rates[s.ID] = s.NightlyRate
	}

	for _, c := range cs {
		c.Total = rates[c.ResourceID].Mul(decimal.NewFromInt(int64(c.Range().Nights())))
		c.CreatedAt, c.UpdatedAt = now, now
		if c.Status == campground.StatusPending {
			c.PendingSince = now
		}
		if err := store.CreateCommitment(ctx, c); err != nil {
			return fmt.Errorf("create reservation %s: %w", c.ID, err)
		}
	}
	return nil
}

func saveBlocks(ctx context.Context, store campground.Store, now time.Time, bs ...campground.Block) error {
	for _, b := range bs {
		b.CreatedAt, b.UpdatedAt = now, now
		if err := store.SaveBlock(ctx, b); err != nil {
			return fmt.Errorf("save blackout %s: %w", b.ID, err)
		}
	}
	return nil
}
