package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/campsite-engine/campground"
	"github.com/warp/campsite-engine/campground/store"
	"github.com/warp/campsite-engine/generic"
)

func TestScenarios_ListAndCurrent(t *testing.T) {
	_, router := setupTestHandler(t)

	list := decode[[]ScenarioDTO](t, do(t, router, http.MethodGet, "/api/scenarios", ""))
	require.Len(t, list, 4)
	assert.Equal(t, "summer-weekend", list[0].ID)

	rec := do(t, router, http.MethodGet, "/api/scenarios/current", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null", string(bytes.TrimSpace(rec.Body.Bytes())))

	loadScenario(t, router, "full-party")
	current := decode[ScenarioDTO](t, do(t, router, http.MethodGet, "/api/scenarios/current", ""))
	assert.Equal(t, "full-party", current.ID)
}

func TestScenarios_Unknown(t *testing.T) {
	_, router := setupTestHandler(t)

	rec := do(t, router, http.MethodPost, "/api/scenarios/load", `{"scenario_id":"mud-season"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Unknown scenario", decode[ErrorResponse](t, rec).Error)
}

func TestScenarios_LoadReplacesData(t *testing.T) {
	_, router := setupTestHandler(t)

	// GIVEN: The summer data is loaded
	loadScenario(t, router, "summer-weekend")

	// WHEN: The winter scenario is loaded on top
	loadScenario(t, router, "winter-closure")

	// THEN: Only the winter reservation is left
	list := decode[[]CommitmentDTO](t, do(t, router, http.MethodGet, "/api/commitments?include_archived=true", ""))
	require.Len(t, list, 1)
	assert.Equal(t, "R-2001", list[0].ID)
	assert.Equal(t, "285", list[0].Total.String(), "three nights on C1")
}

func TestScenarios_Reset(t *testing.T) {
	_, router := setupTestHandler(t)
	loadScenario(t, router, "summer-weekend")

	rec := do(t, router, http.MethodPost, "/api/scenarios/reset", "")
	require.Equal(t, http.StatusOK, rec.Code)

	sites := decode[[]SiteDTO](t, do(t, router, http.MethodGet, "/api/sites", ""))
	assert.Empty(t, sites)
	assert.Equal(t, "null", string(bytes.TrimSpace(do(t, router, http.MethodGet, "/api/scenarios/current", "").Body.Bytes())))
}

func TestLoadScenario_UnknownIsNotFound(t *testing.T) {
	err := LoadScenario(context.Background(), store.NewMemory(), "mud-season", time.Now())
	assert.True(t, errors.Is(err, generic.ErrNotFound))
}

func TestSeedDefaultSites(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	seeded, err := SeedDefaultSites(ctx, mem, now)
	require.NoError(t, err)
	assert.True(t, seeded)

	seeded, err = SeedDefaultSites(ctx, mem, now)
	require.NoError(t, err)
	assert.False(t, seeded, "an existing catalog is left alone")

	sites, err := mem.ListSites(ctx)
	require.NoError(t, err)
	assert.Len(t, sites, 8)
	assert.Equal(t, now, sites[0].CreatedAt)
}

func TestScenarios_EveryLoaderRuns(t *testing.T) {
	ctx := context.Background()
	for _, s := range scenarios {
		t.Run(s.ID, func(t *testing.T) {
			mem := store.NewMemory()
			require.NoError(t, LoadScenario(ctx, mem, s.ID, time.Now()))

			snap, err := campground.LoadSnapshot(ctx, mem)
			require.NoError(t, err)
			assert.Len(t, snap.Sites, 8)
			assert.NotEmpty(t, snap.Commitments)
		})
	}
}
