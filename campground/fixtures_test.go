package campground_test

import (
	"github.com/shopspring/decimal"

	"github.com/warp/campsite-engine/campground"
	"github.com/warp/campsite-engine/generic"
)

func d(s string) generic.Date { return generic.MustParseDate(s) }

func intPtr(v int) *int { return &v }

func site(id string, t campground.SiteType, maxGuests, sortOrder int) campground.Site {
	return campground.Site{
		ID:          generic.ResourceID(id),
		Code:        id,
		Name:        "Site " + id,
		Type:        t,
		MaxGuests:   maxGuests,
		IsActive:    true,
		SortOrder:   sortOrder,
		NightlyRate: decimal.NewFromInt(50),
	}
}

func rvSite(id string, maxGuests, maxLength, sortOrder int) campground.Site {
	s := site(id, campground.SiteRV, maxGuests, sortOrder)
	s.MaxVehicleLength = intPtr(maxLength)
	return s
}

func stay(id, siteID, checkIn, checkOut string, status campground.CommitmentStatus) campground.Commitment {
	return campground.Commitment{
		ID:         id,
		ResourceID: generic.ResourceID(siteID),
		CheckIn:    d(checkIn),
		CheckOut:   d(checkOut),
		Status:     status,
		Adults:     2,
		Guest:      campground.Guest{FirstName: "Alice", LastName: "Walker"},
	}
}

func blackout(id, siteID, start, end, reason string) campground.Block {
	return campground.Block{
		ID:         id,
		ResourceID: generic.ResourceID(siteID),
		Start:      d(start),
		End:        d(end),
		Reason:     reason,
	}
}

// summerSnapshot is three sites with one confirmed stay on S1.
func summerSnapshot() campground.Snapshot {
	return campground.Snapshot{
		Sites: []campground.Site{
			rvSite("S1", 6, 40, 1),
			rvSite("S2", 6, 40, 2),
			site("C2", campground.SiteCabin, 7, 3),
		},
		Commitments: []campground.Commitment{
			stay("R-1", "S1", "2025-07-01", "2025-07-04", campground.StatusConfirmed),
		},
	}
}

func itemIDs(items []campground.CalendarItem) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID())
	}
	return ids
}
