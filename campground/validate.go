/*
validate.go - Move/Resize Validator

PURPOSE:
  One verdict for an edit to a reservation or blackout, shared by the
  calendar's optimistic check and the authoritative write path. Given the
  same snapshot both must agree, so the logic lives only here.

RULES (first failure wins):
  1. Target "unassigned" is always valid
  2. Target site must exist and be active
  3. At least one night
  4. No overlapping reservation (other than the item itself)
  5. No overlapping blackout (other than the item itself)
*/
package campground

import (
	"fmt"

	"github.com/warp/campsite-engine/generic"
)

// ValidationResult is the verdict for a proposed edit. Kind is empty when Valid.
type ValidationResult struct {
	Valid     bool
	Error     string
	Kind      generic.Kind
	Conflicts []CalendarItem
}

func valid() ValidationResult { return ValidationResult{Valid: true} }

func invalid(kind generic.Kind, msg string, conflicts ...CalendarItem) ValidationResult {
	return ValidationResult{Kind: kind, Error: msg, Conflicts: conflicts}
}

// ValidateMove checks whether item may occupy target for [start, end).
func ValidateMove(item CalendarItem, target generic.ResourceID, start, end generic.Date, snap Snapshot) ValidationResult {
	if target.IsUnassigned() {
		return valid()
	}

	site, ok := snap.Site(target)
	if !ok {
		return invalid(generic.KindSiteNotFound, "Site not found")
	}
	if !site.IsActive {
		return invalid(generic.KindSiteInactive, fmt.Sprintf("Site %s is inactive", site.Label()))
	}

	if !end.After(start) {
		return invalid(generic.KindInvalidRange, "Minimum 1 night required")
	}

	id := item.ID()
	if cs := FindCommitmentConflicts(id, target, start, end, snap.Commitments); len(cs) > 0 {
		return invalid(generic.KindConflict, reservationConflictMessage(cs[0]), reservationItems(cs)...)
	}

	// A reservation never shares an id with a block, so excluding id only
	// matters when item is itself a block.
	if bs := FindBlockConflicts(id, target, start, end, snap.Blocks); len(bs) > 0 {
		return invalid(generic.KindConflict, bs[0].ReasonOrDefault(), blackoutItems(bs)...)
	}

	return valid()
}

// ValidateBlock checks a blackout placement against the reservations it would
// cover. Blackouts may overlap other blackouts.
func ValidateBlock(block Block, snap Snapshot) ValidationResult {
	if !block.Period().Valid() {
		return invalid(generic.KindInvalidRange, "End date must be on or after start date")
	}
	if !block.IsGlobal() {
		if _, ok := snap.Site(block.ResourceID); !ok {
			return invalid(generic.KindSiteNotFound, "Site not found")
		}
	}
	collisions := FindBlockCollisions(block, snap.Commitments)
	if len(collisions) == 0 {
		return valid()
	}
	msg := fmt.Sprintf("Blackout overlaps %d existing reservation", len(collisions))
	if len(collisions) > 1 {
		msg += "s"
	}
	msg += ": " + describeCommitment(collisions[0], snap)
	return invalid(generic.KindConflict, msg, reservationItems(collisions)...)
}

func reservationConflictMessage(c Commitment) string {
	name := c.Guest.FullName()
	if name == "" {
		return fmt.Sprintf("Conflicts with an existing reservation (%s to %s)", c.CheckIn, c.CheckOut)
	}
	return fmt.Sprintf("Conflicts with reservation for %s (%s to %s)", name, c.CheckIn, c.CheckOut)
}

func describeCommitment(c Commitment, snap Snapshot) string {
	label := string(c.ResourceID)
	if site, ok := snap.Site(c.ResourceID); ok {
		label = site.Label()
	}
	name := c.Guest.FullName()
	if name == "" {
		name = c.ID
	}
	return fmt.Sprintf("%s on %s, %s to %s", name, label, c.CheckIn, c.CheckOut)
}
