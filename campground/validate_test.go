package campground_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/warp/campsite-engine/campground"
	"github.com/warp/campsite-engine/generic"
)

func TestValidateMove(t *testing.T) {
	snap := summerSnapshot()
	snap.Sites[1].IsActive = false
	snap.Commitments = append(snap.Commitments, stay("R-2", "C2", "2025-07-10", "2025-07-12", campground.StatusPending))
	snap.Blocks = []campground.Block{blackout("B-1", "C2", "2025-07-20", "2025-07-22", "Septic service")}
	moving := campground.ReservationItem(snap.Commitments[1])

	cases := []struct {
		name    string
		target  generic.ResourceID
		start   string
		end     string
		kind    generic.Kind
		message string
	}{
		{"unassigned is always valid", generic.Unassigned, "2025-07-01", "2025-07-01", generic.KindNone, ""},
		{"missing site", "S9", "2025-07-10", "2025-07-12", generic.KindSiteNotFound, "Site not found"},
		{"inactive site", "S2", "2025-07-10", "2025-07-12", generic.KindSiteInactive, "Site S2 is inactive"},
		{"zero nights", "C2", "2025-07-10", "2025-07-10", generic.KindInvalidRange, "Minimum 1 night required"},
		{"overlaps a reservation", "S1", "2025-07-02", "2025-07-05", generic.KindConflict, "Conflicts with reservation for Alice Walker (2025-07-01 to 2025-07-04)"},
		{"overlaps a blackout", "C2", "2025-07-21", "2025-07-23", generic.KindConflict, "Septic service"},
		{"back to back", "S1", "2025-07-04", "2025-07-06", generic.KindNone, ""},
		{"resize over its own dates", "C2", "2025-07-09", "2025-07-13", generic.KindNone, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := campground.ValidateMove(moving, tc.target, d(tc.start), d(tc.end), snap)
			assert.Equal(t, tc.kind == generic.KindNone, v.Valid)
			assert.Equal(t, tc.kind, v.Kind)
			assert.Equal(t, tc.message, v.Error)
		})
	}
}

func TestValidateMove_ConflictsCarryTheItems(t *testing.T) {
	snap := summerSnapshot()
	moving := campground.ReservationItem(stay("R-9", "S2", "2025-07-02", "2025-07-03", campground.StatusConfirmed))

	v := campground.ValidateMove(moving, "S1", d("2025-07-02"), d("2025-07-03"), snap)

	assert.False(t, v.Valid)
	assert.Equal(t, []string{"R-1"}, itemIDs(v.Conflicts))
	assert.Equal(t, campground.ItemReservation, v.Conflicts[0].Kind)
}

func TestValidateMove_BlockWithoutReason(t *testing.T) {
	snap := summerSnapshot()
	snap.Blocks = []campground.Block{blackout("B-1", "S2", "2025-07-01", "2025-07-01", "")}
	moving := campground.ReservationItem(stay("R-9", "", "2025-07-01", "2025-07-02", campground.StatusPending))

	v := campground.ValidateMove(moving, "S2", d("2025-07-01"), d("2025-07-02"), snap)

	assert.Equal(t, generic.KindConflict, v.Kind)
	assert.Equal(t, "Unavailable", v.Error)
}

func TestValidateMove_BlockDoesNotConflictWithItself(t *testing.T) {
	// GIVEN: A blackout on S2 being widened by a day
	b := blackout("B-1", "S2", "2025-07-10", "2025-07-12", "Regrading")
	snap := summerSnapshot()
	snap.Blocks = []campground.Block{b}

	// WHEN: Validating its new range on the same site
	r := generic.Period{Start: d("2025-07-10"), End: d("2025-07-13")}.Exclusive()
	v := campground.ValidateMove(campground.BlackoutItem(b), "S2", r.Start, r.End, snap)

	// THEN: It does not collide with its old self
	assert.True(t, v.Valid)
}

func TestValidateBlock(t *testing.T) {
	snap := summerSnapshot()
	snap.Commitments = append(snap.Commitments, stay("R-2", "S2", "2025-07-02", "2025-07-05", campground.StatusConfirmed))

	t.Run("site blackout over one stay", func(t *testing.T) {
		v := campground.ValidateBlock(blackout("B-1", "S1", "2025-07-03", "2025-07-03", "Tree removal"), snap)
		assert.Equal(t, generic.KindConflict, v.Kind)
		assert.Equal(t, "Blackout overlaps 1 existing reservation: Alice Walker on S1, 2025-07-01 to 2025-07-04", v.Error)
	})

	t.Run("global blackout over two stays", func(t *testing.T) {
		v := campground.ValidateBlock(blackout("B-1", "", "2025-07-03", "2025-07-03", "Storm"), snap)
		assert.Equal(t, generic.KindConflict, v.Kind)
		assert.Contains(t, v.Error, "Blackout overlaps 2 existing reservations: ")
		assert.Equal(t, []string{"R-1", "R-2"}, itemIDs(v.Conflicts))
	})

	t.Run("starting on checkout day", func(t *testing.T) {
		v := campground.ValidateBlock(blackout("B-1", "S1", "2025-07-04", "2025-07-05", ""), snap)
		assert.True(t, v.Valid)
	})

	t.Run("blackouts may stack", func(t *testing.T) {
		stacked := snap
		stacked.Blocks = []campground.Block{blackout("B-0", "C2", "2025-07-01", "2025-07-31", "Renovation")}
		v := campground.ValidateBlock(blackout("B-1", "C2", "2025-07-10", "2025-07-12", "Inspection"), stacked)
		assert.True(t, v.Valid)
	})

	t.Run("end before start", func(t *testing.T) {
		v := campground.ValidateBlock(blackout("B-1", "S1", "2025-07-10", "2025-07-09", ""), snap)
		assert.Equal(t, generic.KindInvalidRange, v.Kind)
	})

	t.Run("unknown site", func(t *testing.T) {
		v := campground.ValidateBlock(blackout("B-1", "S9", "2025-07-10", "2025-07-11", ""), snap)
		assert.Equal(t, generic.KindSiteNotFound, v.Kind)
	})
}
