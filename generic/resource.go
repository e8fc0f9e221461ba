/*
resource.go - Resource identifiers and resource-type registration

PURPOSE:
  A resource is anything that can be exclusively occupied on a timeline.
  The engine only needs its identifier; domain packages register the
  categories they support so that storage and JSON decoding can turn
  strings back into typed values.

USAGE:
  // In campground/types.go
  func init() {
      generic.RegisterResourceType(SiteTent)
  }

  // In factory
  t := generic.LookupResourceType("rv")  // returns campground.SiteRV
*/
package generic

import (
	"sort"
	"strings"
	"sync"
)

// =============================================================================
// RESOURCE ID
// =============================================================================

// ResourceID identifies an exclusive resource. The empty value means
// "no resource": an unassigned commitment, or a block that applies to every
// resource.
type ResourceID string

// Unassigned is the sentinel target used by calendar surfaces for the
// "unassigned" row.
const Unassigned ResourceID = "unassigned"

// IsUnassigned is true for the empty id and the Unassigned sentinel.
func (id ResourceID) IsUnassigned() bool {
	return id == "" || strings.EqualFold(string(id), string(Unassigned))
}

// Normalize maps the Unassigned sentinel to the empty id used in storage.
func (id ResourceID) Normalize() ResourceID {
	if id.IsUnassigned() {
		return ""
	}
	return id
}

// =============================================================================
// RESOURCE TYPE REGISTRY
// =============================================================================

// ResourceType identifies a category of resource. Domain packages define
// their own concrete types.
type ResourceType interface {
	// TypeID returns the unique identifier for this category.
	TypeID() string

	// Domain returns which domain registered it.
	Domain() string
}

var (
	typeRegistry = make(map[string]ResourceType)
	registryMu   sync.RWMutex
)

// RegisterResourceType adds a category to the global registry.
// Call this from domain package init() functions.
func RegisterResourceType(t ResourceType) {
	registryMu.Lock()
	defer registryMu.Unlock()
	typeRegistry[strings.ToLower(t.TypeID())] = t
}

// LookupResourceType finds a registered category by id, case-insensitively.
// Returns nil if not found.
func LookupResourceType(id string) ResourceType {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return typeRegistry[strings.ToLower(strings.TrimSpace(id))]
}

// ListResourceTypes returns registered categories for a domain, sorted by id.
func ListResourceTypes(domain string) []ResourceType {
	registryMu.RLock()
	defer registryMu.RUnlock()
	var result []ResourceType
	for _, t := range typeRegistry {
		if t.Domain() == domain {
			result = append(result, t)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].TypeID() < result[j].TypeID() })
	return result
}
