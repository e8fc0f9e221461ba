package generic_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/campsite-engine/generic"
)

func d(s string) generic.Date { return generic.MustParseDate(s) }

func rng(start, end string) generic.DateRange { return generic.NewDateRange(d(start), d(end)) }

// =============================================================================
// OVERLAP
// =============================================================================

func TestOverlaps_Symmetric(t *testing.T) {
	cases := []struct {
		name string
		a, b generic.DateRange
		want bool
	}{
		{"disjoint", rng("2025-07-01", "2025-07-04"), rng("2025-07-10", "2025-07-12"), false},
		{"partial", rng("2025-07-01", "2025-07-04"), rng("2025-07-03", "2025-07-05"), true},
		{"contained", rng("2025-07-01", "2025-07-10"), rng("2025-07-03", "2025-07-05"), true},
		{"back to back", rng("2025-07-01", "2025-07-04"), rng("2025-07-04", "2025-07-06"), false},
		{"identical", rng("2025-07-01", "2025-07-04"), rng("2025-07-01", "2025-07-04"), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.a.Overlaps(tc.b))
			assert.Equal(t, tc.want, tc.b.Overlaps(tc.a), "overlap must be symmetric")
		})
	}
}

func TestOverlaps_BackToBackNeverOverlaps(t *testing.T) {
	// GIVEN: A stay checking out on the 4th
	// WHEN: The next stay checks in on the 4th
	// THEN: They share no night
	assert.False(t, generic.Overlaps(d("2025-07-01"), d("2025-07-04"), d("2025-07-04"), d("2025-07-06")))
	assert.False(t, generic.Overlaps(d("2025-07-04"), d("2025-07-06"), d("2025-07-01"), d("2025-07-04")))
}

func TestOverlaps_MonthAndLeapBoundaries(t *testing.T) {
	assert.True(t, rng("2024-02-28", "2024-03-01").Overlaps(rng("2024-02-29", "2024-03-02")))
	assert.False(t, rng("2024-02-28", "2024-02-29").Overlaps(rng("2024-02-29", "2024-03-02")))
	assert.True(t, rng("2025-12-30", "2026-01-02").Overlaps(rng("2026-01-01", "2026-01-03")))
}

// =============================================================================
// RANGE CONVERSIONS
// =============================================================================

func TestToExclusiveEnd(t *testing.T) {
	assert.Equal(t, "2025-12-28", generic.ToExclusiveEnd(d("2025-12-27")).String())
	assert.Equal(t, "2025-03-01", generic.ToExclusiveEnd(d("2025-02-28")).String())
	assert.Equal(t, "2024-02-29", generic.ToExclusiveEnd(d("2024-02-28")).String())
}

func TestShiftPreservingDuration(t *testing.T) {
	// GIVEN: A three-night stay
	// WHEN: It is dragged to start across a month boundary
	// THEN: It still lasts three nights
	end := generic.ShiftPreservingDuration(d("2025-07-01"), d("2025-07-04"), d("2025-07-30"))
	assert.Equal(t, "2025-08-02", end.String())

	moved := rng("2025-07-01", "2025-07-04").ShiftTo(d("2025-07-30"))
	assert.Equal(t, 3, moved.Nights())
}

func TestDateRange_Nights(t *testing.T) {
	assert.Equal(t, 3, rng("2025-07-01", "2025-07-04").Nights())
	assert.Equal(t, 0, rng("2025-07-04", "2025-07-04").Nights())
	assert.Equal(t, 0, rng("2025-07-04", "2025-07-01").Nights())
	assert.Equal(t, 2, rng("2025-03-08", "2025-03-10").Nights(), "DST change does not shorten a stay")
}

func TestDateRange_Contains(t *testing.T) {
	r := rng("2025-07-01", "2025-07-04")
	assert.True(t, r.Contains(d("2025-07-01")))
	assert.True(t, r.Contains(d("2025-07-03")))
	assert.False(t, r.Contains(d("2025-07-04")), "checkout day is not a night of the stay")
}

func TestPeriod_ExclusiveRoundTrip(t *testing.T) {
	p := generic.Period{Start: d("2025-12-20"), End: d("2025-12-27")}
	r := p.Exclusive()

	assert.Equal(t, "2025-12-28", r.End.String())
	assert.Equal(t, 8, p.Len())
	assert.Equal(t, p, generic.PeriodOf(r))
}

func TestPeriod_SingleDay(t *testing.T) {
	p := generic.Period{Start: d("2025-07-04"), End: d("2025-07-04")}
	assert.True(t, p.Valid())
	assert.Equal(t, 1, p.Exclusive().Nights())
	assert.False(t, generic.Period{Start: d("2025-07-04"), End: d("2025-07-03")}.Valid())
}

// =============================================================================
// PARSING
// =============================================================================

func TestParseDate(t *testing.T) {
	got, err := generic.ParseDate("2025-07-04")
	require.NoError(t, err)
	assert.Equal(t, generic.NewDate(2025, time.July, 4), got)

	_, err = generic.ParseDate("07/04/2025")
	assert.Error(t, err)
}

func TestDateOf_DropsTimeOfDay(t *testing.T) {
	loc := time.FixedZone("PDT", -7*3600)
	got := generic.DateOf(time.Date(2025, time.July, 4, 23, 30, 0, 0, loc))
	assert.Equal(t, "2025-07-04", got.String())
}

func TestDate_JSON(t *testing.T) {
	var payload struct {
		CheckIn generic.Date `json:"check_in"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"check_in":"2025-07-04"}`), &payload))
	assert.Equal(t, "2025-07-04", payload.CheckIn.String())

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"check_in":"2025-07-04"}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"check_in":"July 4"}`), &payload))
}
