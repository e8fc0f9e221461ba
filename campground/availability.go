/*
availability.go - Availability Resolver

PURPOSE:
  Answers "which sites can take this party for these dates, and which one
  should we offer?". Called at quote time and again right before a booking
  is written, so it must stay free of side effects.

ALGORITHM:
  1. CheckOut must be after CheckIn            -> InvalidRange
  2. Keep active sites passing the Capacity Filter (and type filter)
  3. Narrow to the requested site, if any
  4. Drop candidates with a conflicting commitment or block
  5. Sort survivors by SortOrder, then ID
  6. Recommend the first survivor

  When nothing survives, the message tells apart "nobody fits this party"
  (step 2) from "nothing is free on those dates" (step 4).
*/
package campground

import (
	"fmt"
	"strings"

	"github.com/warp/campsite-engine/generic"
)

// AvailabilityQuery is a request for a stay.
type AvailabilityQuery struct {
	CheckIn       generic.Date
	CheckOut      generic.Date
	PartySize     int
	VehicleLength *int
	SiteID        generic.ResourceID // optional: only consider this site
	SiteType      SiteType           // optional category filter
}

// AvailabilityResult is the resolver's verdict. Kind is empty when Available.
type AvailabilityResult struct {
	Available         bool
	EligibleSites     []Site
	RecommendedSiteID generic.ResourceID // empty when nothing is available
	Message           string
	Kind              generic.Kind
	Nights            int
	Conflicts         []CalendarItem // what blocked the candidates, deduplicated
}

// Recommended returns the recommended site, if any.
func (r AvailabilityResult) Recommended() (Site, bool) {
	if len(r.EligibleSites) == 0 {
		return Site{}, false
	}
	return r.EligibleSites[0], true
}

// Resolve runs the availability algorithm over a snapshot.
func Resolve(q AvailabilityQuery, snap Snapshot) AvailabilityResult {
	stay := generic.NewDateRange(q.CheckIn, q.CheckOut)
	if !stay.Valid() {
		return AvailabilityResult{
			Kind:    generic.KindInvalidRange,
			Message: "Check-out date must be after check-in date",
		}
	}

	// Step 2: capacity
	var fit []Site
	for _, site := range snap.Sites {
		if matchesType(site, q.SiteType) && IsEligible(site, q.PartySize, q.VehicleLength) {
			fit = append(fit, site)
		}
	}

	// Step 3: requested site
	requested := !q.SiteID.IsUnassigned()
	if requested {
		if res, failed := checkRequestedSite(q, snap); failed {
			res.Nights = stay.Nights()
			return res
		}
		var narrowed []Site
		for _, site := range fit {
			if site.ID == q.SiteID {
				narrowed = append(narrowed, site)
			}
		}
		fit = narrowed
	}

	if len(fit) == 0 {
		return AvailabilityResult{
			Kind:    generic.KindCapacityExceeded,
			Message: capacityMessage(q, snap),
			Nights:  stay.Nights(),
		}
	}

	// Step 4: conflicts
	var (
		free      []Site
		conflicts []CalendarItem
		reasons   []string
	)
	for _, site := range fit {
		cs := FindCommitmentConflicts("", site.ID, q.CheckIn, q.CheckOut, snap.Commitments)
		bs := FindBlockConflicts("", site.ID, q.CheckIn, q.CheckOut, snap.Blocks)
		if len(cs) == 0 && len(bs) == 0 {
			free = append(free, site)
			continue
		}
		conflicts = appendUnique(conflicts, reservationItems(cs)...)
		conflicts = appendUnique(conflicts, blackoutItems(bs)...)
		for _, b := range bs {
			reasons = appendReason(reasons, b.ReasonOrDefault())
		}
	}

	if len(free) == 0 {
		return AvailabilityResult{
			Kind:      generic.KindConflict,
			Message:   datesMessage(q, snap, requested, reasons),
			Nights:    stay.Nights(),
			Conflicts: conflicts,
		}
	}

	// Steps 5-6
	SortSites(free)
	return AvailabilityResult{
		Available:         true,
		EligibleSites:     free,
		RecommendedSiteID: free[0].ID,
		Nights:            stay.Nights(),
	}
}

// checkRequestedSite reports a missing or inactive requested site.
func checkRequestedSite(q AvailabilityQuery, snap Snapshot) (AvailabilityResult, bool) {
	site, ok := snap.Site(q.SiteID)
	if !ok {
		return AvailabilityResult{
			Kind:    generic.KindSiteNotFound,
			Message: fmt.Sprintf("Site %s does not exist", q.SiteID),
		}, true
	}
	if !site.IsActive {
		return AvailabilityResult{
			Kind:    generic.KindSiteInactive,
			Message: fmt.Sprintf("Site %s is not currently available for booking", site.Label()),
		}, true
	}
	return AvailabilityResult{}, false
}

func capacityMessage(q AvailabilityQuery, snap Snapshot) string {
	party := fmt.Sprintf("a party of %d", q.PartySize)
	if q.VehicleLength != nil {
		party += fmt.Sprintf(" with a %d ft vehicle", *q.VehicleLength)
	}
	if !q.SiteID.IsUnassigned() {
		site, _ := snap.Site(q.SiteID)
		if q.SiteType != "" && site.Type != q.SiteType {
			return fmt.Sprintf("Site %s is not a %s site", site.Label(), q.SiteType)
		}
		return fmt.Sprintf("Site %s cannot accommodate %s", site.Label(), party)
	}
	if q.SiteType != "" {
		return fmt.Sprintf("No %s site can accommodate %s", q.SiteType, party)
	}
	return fmt.Sprintf("No site can accommodate %s", party)
}

func datesMessage(q AvailabilityQuery, snap Snapshot, requested bool, reasons []string) string {
	msg := "No sites are available for the selected dates"
	if requested {
		site, _ := snap.Site(q.SiteID)
		msg = fmt.Sprintf("Site %s is not available for the selected dates", site.Label())
	}
	if len(reasons) > 0 {
		msg += " (" + strings.Join(reasons, ", ") + ")"
	}
	return msg
}

func appendReason(reasons []string, reason string) []string {
	for _, r := range reasons {
		if r == reason {
			return reasons
		}
	}
	return append(reasons, reason)
}
