package campground_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/campsite-engine/campground"
	"github.com/warp/campsite-engine/generic"
)

func TestResolve_BackToBackIsAvailable(t *testing.T) {
	// GIVEN: S1 is booked 07-01 to 07-04
	snap := summerSnapshot()

	// WHEN: Asking for S1 from the checkout day
	res := campground.Resolve(campground.AvailabilityQuery{
		CheckIn:   d("2025-07-04"),
		CheckOut:  d("2025-07-06"),
		PartySize: 2,
		SiteID:    "S1",
	}, snap)

	// THEN: S1 is offered
	assert.True(t, res.Available)
	assert.Equal(t, generic.ResourceID("S1"), res.RecommendedSiteID)
	assert.Equal(t, generic.KindNone, res.Kind)
	assert.Equal(t, 2, res.Nights)
}

func TestResolve_OverlapOnRequestedSite(t *testing.T) {
	snap := summerSnapshot()

	res := campground.Resolve(campground.AvailabilityQuery{
		CheckIn:   d("2025-07-03"),
		CheckOut:  d("2025-07-05"),
		PartySize: 2,
		SiteID:    "S1",
	}, snap)

	assert.False(t, res.Available)
	assert.Equal(t, generic.KindConflict, res.Kind)
	assert.Equal(t, "Site S1 is not available for the selected dates", res.Message)
	assert.Empty(t, res.RecommendedSiteID)
	assert.Equal(t, []string{"R-1"}, itemIDs(res.Conflicts))
}

func TestResolve_SkipsBookedSite(t *testing.T) {
	// GIVEN: S1 taken, S2 free
	snap := summerSnapshot()

	// WHEN: Asking without a site
	res := campground.Resolve(campground.AvailabilityQuery{
		CheckIn:   d("2025-07-02"),
		CheckOut:  d("2025-07-03"),
		PartySize: 4,
	}, snap)

	// THEN: The next site by sort order is recommended
	require.True(t, res.Available)
	assert.Equal(t, generic.ResourceID("S2"), res.RecommendedSiteID)
	assert.Len(t, res.EligibleSites, 2)
	recommended, ok := res.Recommended()
	require.True(t, ok)
	assert.Equal(t, "S2", recommended.Code)
}

func TestResolve_WinterClosure(t *testing.T) {
	// GIVEN: A global closure 12-20 through 12-27
	snap := summerSnapshot()
	snap.Blocks = []campground.Block{blackout("B-1", "", "2025-12-20", "2025-12-27", "Winter closure")}

	// WHEN: Asking for a stay inside it
	res := campground.Resolve(campground.AvailabilityQuery{
		CheckIn:   d("2025-12-22"),
		CheckOut:  d("2025-12-24"),
		PartySize: 2,
	}, snap)

	// THEN: Nothing is free and the reason is shown once
	assert.False(t, res.Available)
	assert.Equal(t, generic.KindConflict, res.Kind)
	assert.Equal(t, "No sites are available for the selected dates (Winter closure)", res.Message)
	assert.Equal(t, []string{"B-1"}, itemIDs(res.Conflicts), "conflicts are deduplicated")
}

func TestResolve_ClosureEndIsInclusive(t *testing.T) {
	snap := summerSnapshot()
	snap.Blocks = []campground.Block{blackout("B-1", "", "2025-12-20", "2025-12-27", "Winter closure")}

	blocked := campground.Resolve(campground.AvailabilityQuery{CheckIn: d("2025-12-27"), CheckOut: d("2025-12-28"), PartySize: 1}, snap)
	open := campground.Resolve(campground.AvailabilityQuery{CheckIn: d("2025-12-28"), CheckOut: d("2025-12-30"), PartySize: 1}, snap)

	assert.False(t, blocked.Available)
	assert.True(t, open.Available)
}

func TestResolve_PartyTooLarge(t *testing.T) {
	res := campground.Resolve(campground.AvailabilityQuery{
		CheckIn:   d("2025-08-01"),
		CheckOut:  d("2025-08-03"),
		PartySize: 8,
	}, summerSnapshot())

	assert.False(t, res.Available)
	assert.Equal(t, generic.KindCapacityExceeded, res.Kind)
	assert.Equal(t, "No site can accommodate a party of 8", res.Message)
}

func TestResolve_VehicleTooLong(t *testing.T) {
	res := campground.Resolve(campground.AvailabilityQuery{
		CheckIn:       d("2025-08-01"),
		CheckOut:      d("2025-08-03"),
		PartySize:     2,
		VehicleLength: intPtr(45),
		SiteType:      campground.SiteRV,
	}, summerSnapshot())

	assert.Equal(t, generic.KindCapacityExceeded, res.Kind)
	assert.Equal(t, "No rv site can accommodate a party of 2 with a 45 ft vehicle", res.Message)
}

func TestResolve_CapacityTakesPrecedenceOverDates(t *testing.T) {
	// GIVEN: C2 is the only site for 7 and it is booked
	snap := summerSnapshot()
	snap.Commitments = append(snap.Commitments, stay("R-2", "C2", "2025-08-08", "2025-08-10", campground.StatusConfirmed))

	// WHEN: A party of 7 asks for those dates, and a party of 8 too
	seven := campground.Resolve(campground.AvailabilityQuery{CheckIn: d("2025-08-08"), CheckOut: d("2025-08-10"), PartySize: 7}, snap)
	eight := campground.Resolve(campground.AvailabilityQuery{CheckIn: d("2025-08-08"), CheckOut: d("2025-08-10"), PartySize: 8}, snap)

	// THEN: The first is a date problem, the second a capacity problem
	assert.Equal(t, generic.KindConflict, seven.Kind)
	assert.Equal(t, generic.KindCapacityExceeded, eight.Kind)
}

func TestResolve_InvalidRange(t *testing.T) {
	for _, q := range []campground.AvailabilityQuery{
		{CheckIn: d("2025-07-04"), CheckOut: d("2025-07-04"), PartySize: 2},
		{CheckIn: d("2025-07-04"), CheckOut: d("2025-07-01"), PartySize: 2},
	} {
		res := campground.Resolve(q, summerSnapshot())
		assert.False(t, res.Available)
		assert.Equal(t, generic.KindInvalidRange, res.Kind)
		assert.Equal(t, "Check-out date must be after check-in date", res.Message)
	}
}

func TestResolve_RequestedSiteMissingOrInactive(t *testing.T) {
	snap := summerSnapshot()
	snap.Sites[1].IsActive = false

	missing := campground.Resolve(campground.AvailabilityQuery{CheckIn: d("2025-07-10"), CheckOut: d("2025-07-12"), PartySize: 2, SiteID: "S9"}, snap)
	inactive := campground.Resolve(campground.AvailabilityQuery{CheckIn: d("2025-07-10"), CheckOut: d("2025-07-12"), PartySize: 2, SiteID: "S2"}, snap)

	assert.Equal(t, generic.KindSiteNotFound, missing.Kind)
	assert.Equal(t, "Site S9 does not exist", missing.Message)
	assert.Equal(t, generic.KindSiteInactive, inactive.Kind)
	assert.Equal(t, "Site S2 is not currently available for booking", inactive.Message)
}

func TestResolve_InactiveSiteNeverRecommended(t *testing.T) {
	snap := summerSnapshot()
	snap.Sites[1].IsActive = false

	res := campground.Resolve(campground.AvailabilityQuery{CheckIn: d("2025-07-02"), CheckOut: d("2025-07-03"), PartySize: 2}, snap)

	require.True(t, res.Available)
	assert.Equal(t, generic.ResourceID("C2"), res.RecommendedSiteID)
}

func TestResolve_TypeFilter(t *testing.T) {
	res := campground.Resolve(campground.AvailabilityQuery{
		CheckIn:   d("2025-07-10"),
		CheckOut:  d("2025-07-12"),
		PartySize: 2,
		SiteType:  campground.SiteCabin,
	}, summerSnapshot())

	require.True(t, res.Available)
	assert.Equal(t, generic.ResourceID("C2"), res.RecommendedSiteID)
	assert.Len(t, res.EligibleSites, 1)
}

func TestResolve_DeterministicRecommendation(t *testing.T) {
	// GIVEN: The same sites listed in a different order, with a sort tie
	snap := summerSnapshot()
	tied := rvSite("S0", 6, 40, 2)
	shuffled := campground.Snapshot{
		Sites:       []campground.Site{snap.Sites[2], snap.Sites[1], tied, snap.Sites[0]},
		Commitments: snap.Commitments,
	}
	q := campground.AvailabilityQuery{CheckIn: d("2025-07-10"), CheckOut: d("2025-07-12"), PartySize: 2}

	// WHEN: Resolving repeatedly
	first := campground.Resolve(q, shuffled)
	second := campground.Resolve(q, shuffled)

	// THEN: Lowest sort order wins, ties broken by id, and results repeat
	assert.Equal(t, generic.ResourceID("S1"), first.RecommendedSiteID)
	ids := make([]generic.ResourceID, 0, len(first.EligibleSites))
	for _, s := range first.EligibleSites {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []generic.ResourceID{"S1", "S0", "S2", "C2"}, ids)
	assert.Equal(t, first, second)
}
