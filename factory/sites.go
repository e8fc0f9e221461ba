/*
Package factory provides JSON to Go site catalog conversion.

PURPOSE:
  Converts JSON site definitions into campground.Site values, so a
  campground's layout can be seeded or edited without code changes.

JSON SCHEMA:
  [
    {
      "id": "S1",
      "code": "S1",
      "name": "Riverside RV 1",
      "type": "rv",
      "max_guests": 6,
      "max_vehicle_length": 40,
      "nightly_rate": "48.00",
      "sort_order": 1
    }
  ]

DEFAULTS:
  - id defaults to code
  - is_active defaults to true
  - max_vehicle_length omitted means no limit

USAGE:
  sites, err := factory.ParseSites(factory.DefaultCampgroundJSON())
  for _, s := range sites {
      store.SaveSite(ctx, s)
  }

SEE ALSO:
  - campground/types.go: Site definition and type registry
  - api/scenarios.go: demo datasets built on the default catalog
*/
package factory

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/warp/campsite-engine/campground"
	"github.com/warp/campsite-engine/generic"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// SiteJSON is the JSON representation of a site.
type SiteJSON struct {
	ID               string          `json:"id,omitempty"`
	Code             string          `json:"code"`
	Name             string          `json:"name"`
	Type             string          `json:"type"` // tent, rv, cabin
	MaxGuests        int             `json:"max_guests"`
	MaxVehicleLength *int            `json:"max_vehicle_length,omitempty"`
	IsActive         *bool           `json:"is_active,omitempty"`
	SortOrder        int             `json:"sort_order"`
	NightlyRate      decimal.Decimal `json:"nightly_rate"`
	Notes            string          `json:"notes,omitempty"`
}

// ParseSites parses a JSON array of sites. Codes must be unique.
func ParseSites(jsonStr string) ([]campground.Site, error) {
	var defs []SiteJSON
	if err := json.Unmarshal([]byte(jsonStr), &defs); err != nil {
		return nil, fmt.Errorf("invalid site JSON: %w", err)
	}

	seen := make(map[generic.ResourceID]bool, len(defs))
	sites := make([]campground.Site, 0, len(defs))
	for i, def := range defs {
		site, err := FromJSON(def)
		if err != nil {
			return nil, fmt.Errorf("site %d: %w", i, err)
		}
		if seen[site.ID] {
			return nil, fmt.Errorf("site %d: duplicate id %q", i, site.ID)
		}
		seen[site.ID] = true
		sites = append(sites, site)
	}
	return sites, nil
}

// FromJSON converts one definition, applying defaults.
func FromJSON(sj SiteJSON) (campground.Site, error) {
	id := strings.TrimSpace(sj.ID)
	if id == "" {
		id = strings.TrimSpace(sj.Code)
	}
	if id == "" {
		return campground.Site{}, fmt.Errorf("site requires an id or code")
	}
	if generic.ResourceID(id).IsUnassigned() {
		return campground.Site{}, fmt.Errorf("%q is reserved", id)
	}

	siteType, err := campground.ParseSiteType(sj.Type)
	if err != nil {
		return campground.Site{}, err
	}
	if sj.MaxGuests < 1 {
		return campground.Site{}, fmt.Errorf("max_guests must be at least 1")
	}
	if sj.MaxVehicleLength != nil && *sj.MaxVehicleLength < 1 {
		return campground.Site{}, fmt.Errorf("max_vehicle_length must be positive")
	}
	if sj.NightlyRate.IsNegative() {
		return campground.Site{}, fmt.Errorf("nightly_rate cannot be negative")
	}

	active := true
	if sj.IsActive != nil {
		active = *sj.IsActive
	}

	return campground.Site{
		ID:               generic.ResourceID(id),
		Code:             sj.Code,
		Name:             sj.Name,
		Type:             siteType,
		MaxGuests:        sj.MaxGuests,
		MaxVehicleLength: sj.MaxVehicleLength,
		IsActive:         active,
		SortOrder:        sj.SortOrder,
		NightlyRate:      sj.NightlyRate,
		Notes:            sj.Notes,
	}, nil
}

// ToJSON converts a site back to its JSON form.
func ToJSON(site campground.Site) SiteJSON {
	active := site.IsActive
	return SiteJSON{
		ID:               string(site.ID),
		Code:             site.Code,
		Name:             site.Name,
		Type:             string(site.Type),
		MaxGuests:        site.MaxGuests,
		MaxVehicleLength: site.MaxVehicleLength,
		IsActive:         &active,
		SortOrder:        site.SortOrder,
		NightlyRate:      site.NightlyRate,
		Notes:            site.Notes,
	}
}

// =============================================================================
// PRESETS
// =============================================================================

// DefaultCampgroundJSON is a small campground: four RV pads, two tent pads
// and two cabins. No site takes more than 7 guests.
func DefaultCampgroundJSON() string {
	return `[
  {"code": "S1", "name": "Riverside RV 1", "type": "rv", "max_guests": 6, "max_vehicle_length": 40, "nightly_rate": "48.00", "sort_order": 1},
  {"code": "S2", "name": "Riverside RV 2", "type": "rv", "max_guests": 6, "max_vehicle_length": 40, "nightly_rate": "48.00", "sort_order": 2},
  {"code": "S3", "name": "Meadow RV 3", "type": "rv", "max_guests": 6, "max_vehicle_length": 35, "nightly_rate": "45.00", "sort_order": 3},
  {"code": "S4", "name": "Meadow RV 4", "type": "rv", "max_guests": 4, "max_vehicle_length": 25, "nightly_rate": "42.00", "sort_order": 4, "notes": "Short pad, no slide-outs on the left"},
  {"code": "S5", "name": "Pine Tent 5", "type": "tent", "max_guests": 4, "nightly_rate": "30.00", "sort_order": 5},
  {"code": "S6", "name": "Pine Tent 6", "type": "tent", "max_guests": 4, "nightly_rate": "30.00", "sort_order": 6},
  {"code": "C1", "name": "Lakeview Cabin", "type": "cabin", "max_guests": 6, "nightly_rate": "95.00", "sort_order": 7},
  {"code": "C2", "name": "Family Cabin", "type": "cabin", "max_guests": 7, "nightly_rate": "110.00", "sort_order": 8}
]`
}

// DefaultSites parses DefaultCampgroundJSON.
func DefaultSites() []campground.Site {
	sites, err := ParseSites(DefaultCampgroundJSON())
	if err != nil {
		panic(err)
	}
	return sites
}
