/*
conflict.go - Conflict Finder

PURPOSE:
  Scans the existing reservations and blackouts on one site and returns the
  ones overlapping a candidate range. Availability, move validation and
  blackout creation all use these functions.

RULES:
  - Only occupying, non-archived commitments conflict
  - Global blocks apply to every site
  - Block ends are inclusive and are converted before comparison
  - The unassigned resource never conflicts with anything

All functions are total: empty input yields an empty (nil) result.
*/
package campground

import "github.com/warp/campsite-engine/generic"

// FindCommitmentConflicts returns the commitments on resourceID that overlap
// [start, end), skipping excludeID. Input order is preserved.
func FindCommitmentConflicts(excludeID string, resourceID generic.ResourceID, start, end generic.Date, commitments []Commitment) []Commitment {
	if resourceID.IsUnassigned() {
		return nil
	}
	var conflicts []Commitment
	for _, c := range commitments {
		if c.ID == excludeID && excludeID != "" {
			continue
		}
		if c.ResourceID != resourceID || !c.Occupies() {
			continue
		}
		if generic.Overlaps(start, end, c.CheckIn, c.CheckOut) {
			conflicts = append(conflicts, c)
		}
	}
	return conflicts
}

// FindBlockConflicts returns the blocks applying to resourceID that overlap
// [start, end), skipping excludeID.
func FindBlockConflicts(excludeID string, resourceID generic.ResourceID, start, end generic.Date, blocks []Block) []Block {
	if resourceID.IsUnassigned() {
		return nil
	}
	var conflicts []Block
	for _, b := range blocks {
		if b.ID == excludeID && excludeID != "" {
			continue
		}
		if !b.AppliesTo(resourceID) {
			continue
		}
		if generic.Overlaps(start, end, b.Start, generic.ToExclusiveEnd(b.End)) {
			conflicts = append(conflicts, b)
		}
	}
	return conflicts
}

// FindBlockCollisions returns the commitments a block would leave in place:
// occupying commitments on the block's site (any site for a global block)
// overlapping the block's range.
func FindBlockCollisions(block Block, commitments []Commitment) []Commitment {
	r := block.Range()
	var collisions []Commitment
	for _, c := range commitments {
		if !c.Occupies() || !block.AppliesTo(c.ResourceID) {
			continue
		}
		if r.Overlaps(c.Range()) {
			collisions = append(collisions, c)
		}
	}
	return collisions
}

// appendUnique appends items not already present by id.
func appendUnique(dst []CalendarItem, items ...CalendarItem) []CalendarItem {
	for _, item := range items {
		seen := false
		for _, existing := range dst {
			if existing.Kind == item.Kind && existing.ID() == item.ID() {
				seen = true
				break
			}
		}
		if !seen {
			dst = append(dst, item)
		}
	}
	return dst
}

func reservationItems(cs []Commitment) []CalendarItem {
	items := make([]CalendarItem, 0, len(cs))
	for _, c := range cs {
		items = append(items, ReservationItem(c))
	}
	return items
}

func blackoutItems(bs []Block) []CalendarItem {
	items := make([]CalendarItem, 0, len(bs))
	for _, b := range bs {
		items = append(items, BlackoutItem(b))
	}
	return items
}
