/*
Package campground implements the availability and conflict resolution
engine for a campground: which site can take a party for a date range, and
whether an edit to a reservation or blackout is safe.

KEY CONCEPTS:
  - Site:        a single exclusive bookable resource (tent pad, RV pad, cabin)
  - Commitment:  a reservation occupying one site for [CheckIn, CheckOut)
  - Block:       an administrator blackout, site-specific or global
  - CalendarItem: tagged variant over Commitment and Block

READ SIDE vs WRITE SIDE:
  capacity.go, conflict.go, availability.go and validate.go are pure
  functions over a Snapshot. They never return errors for business outcomes;
  "nothing is free" is a result, not a failure.

  engine.go is the only code that writes. It serializes per site through a
  Locker, re-validates against a fresh Snapshot, and relies on the Store's
  own overlap enforcement as the final guarantee.

SEE ALSO:
  - generic/time.go: interval math
  - generic/errors.go: error kinds
*/
package campground

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/campsite-engine/generic"
)

// Domain is the registry name for campground resource types.
const Domain = "campground"

// =============================================================================
// SITE
// =============================================================================

// SiteType is the category of a site.
type SiteType string

const (
	SiteTent  SiteType = "tent"
	SiteRV    SiteType = "rv"
	SiteCabin SiteType = "cabin"
)

func (t SiteType) TypeID() string { return string(t) }
func (t SiteType) Domain() string { return Domain }

// Label is the display name of the category.
func (t SiteType) Label() string {
	switch t {
	case SiteRV:
		return "RV"
	case SiteTent:
		return "Tent"
	case SiteCabin:
		return "Cabin"
	}
	return string(t)
}

func init() {
	generic.RegisterResourceType(SiteTent)
	generic.RegisterResourceType(SiteRV)
	generic.RegisterResourceType(SiteCabin)
}

// SiteTypes lists the registered site categories, sorted by id.
func SiteTypes() []SiteType {
	var types []SiteType
	for _, t := range generic.ListResourceTypes(Domain) {
		if st, ok := t.(SiteType); ok {
			types = append(types, st)
		}
	}
	return types
}

// ParseSiteType resolves a category name through the resource-type registry.
func ParseSiteType(s string) (SiteType, error) {
	t, ok := generic.LookupResourceType(s).(SiteType)
	if !ok {
		return "", fmt.Errorf("%w: unknown site type %q", generic.ErrInvalid, s)
	}
	return t, nil
}

// Site is a bookable physical resource.
// Sites are never deleted, only deactivated.
type Site struct {
	ID               generic.ResourceID
	Code             string // short label shown on the calendar, e.g. "S1"
	Name             string
	Type             SiteType
	MaxGuests        int
	MaxVehicleLength *int // feet; nil means no recorded limit
	IsActive         bool
	SortOrder        int
	NightlyRate      decimal.Decimal
	Notes            string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Label is the human-facing name used in messages.
func (s Site) Label() string {
	if s.Code != "" {
		return s.Code
	}
	if s.Name != "" {
		return s.Name
	}
	return string(s.ID)
}

// QuoteNights is the nightly rate times the night count.
func (s Site) QuoteNights(nights int) decimal.Decimal {
	return s.NightlyRate.Mul(decimal.NewFromInt(int64(nights)))
}

// SortSites orders by sort priority, then id.
func SortSites(sites []Site) {
	sort.SliceStable(sites, func(i, j int) bool {
		if sites[i].SortOrder != sites[j].SortOrder {
			return sites[i].SortOrder < sites[j].SortOrder
		}
		return sites[i].ID < sites[j].ID
	})
}

// =============================================================================
// COMMITMENT STATUS
// =============================================================================

type CommitmentStatus string

const (
	StatusPending    CommitmentStatus = "pending"
	StatusConfirmed  CommitmentStatus = "confirmed"
	StatusCheckedIn  CommitmentStatus = "checked_in"
	StatusCheckedOut CommitmentStatus = "checked_out"
	StatusCancelled  CommitmentStatus = "cancelled"
	StatusNoShow     CommitmentStatus = "no_show"
)

// Occupying statuses hold the site. Only these take part in conflict checks.
func (s CommitmentStatus) Occupying() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCheckedIn:
		return true
	default:
		return false
	}
}

func (s CommitmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCheckedIn, StatusCheckedOut, StatusCancelled, StatusNoShow:
		return true
	default:
		return false
	}
}

var transitions = map[CommitmentStatus][]CommitmentStatus{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusCheckedIn, StatusCancelled, StatusNoShow, StatusPending},
	StatusCheckedIn:  {StatusCheckedOut},
	StatusCancelled:  {StatusPending, StatusConfirmed},
	StatusNoShow:     {StatusConfirmed},
	StatusCheckedOut: nil,
}

// CanTransition reports whether from -> to is an allowed status change.
func CanTransition(from, to CommitmentStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// =============================================================================
// COMMITMENT - A reservation
// =============================================================================

// ContactMethod is how the guest prefers to be reached.
type ContactMethod string

const (
	ContactEmail  ContactMethod = "Email"
	ContactPhone  ContactMethod = "Phone"
	ContactEither ContactMethod = "Either"
)

func (m ContactMethod) Valid() bool {
	switch m {
	case "", ContactEmail, ContactPhone, ContactEither:
		return true
	}
	return false
}

// Guest is the contact on a reservation.
type Guest struct {
	FirstName     string
	LastName      string
	Email         string
	Phone         string
	Address1      string
	City          string
	PostalCode    string
	ContactMethod ContactMethod
}

func (g Guest) FullName() string {
	switch {
	case g.FirstName == "":
		return g.LastName
	case g.LastName == "":
		return g.FirstName
	default:
		return g.FirstName + " " + g.LastName
	}
}

// Commitment occupies one site for [CheckIn, CheckOut).
// An empty ResourceID means the reservation is not yet assigned to a site.
type Commitment struct {
	ID            string
	ResourceID    generic.ResourceID
	CheckIn       generic.Date
	CheckOut      generic.Date
	Status        CommitmentStatus
	Adults        int
	Children      int
	VehicleLength *int
	VehicleYear   *int
	CampingUnit   string
	Guest         Guest
	Total         decimal.Decimal
	PaymentRef    string
	Archived      bool
	// PendingSince is when the reservation last entered pending; zero
	// otherwise. Expiry measures its TTL from here.
	PendingSince time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (c Commitment) PartySize() int { return c.Adults + c.Children }

func (c Commitment) Range() generic.DateRange {
	return generic.DateRange{Start: c.CheckIn, End: c.CheckOut}
}

// StalePending reports whether an unpaid pending reservation has been
// pending since before cutoff.
func (c Commitment) StalePending(cutoff time.Time) bool {
	if c.Status != StatusPending || c.PaymentRef != "" || c.Archived {
		return false
	}
	since := c.PendingSince
	if since.IsZero() {
		since = c.CreatedAt
	}
	return since.Before(cutoff)
}

// Occupies reports whether the commitment currently holds its site.
func (c Commitment) Occupies() bool {
	return !c.Archived && !c.ResourceID.IsUnassigned() && c.Status.Occupying()
}

// =============================================================================
// BLOCK - A blackout range
// =============================================================================

// Block makes a site (or every site, when ResourceID is empty) unbookable
// from Start through End inclusive.
type Block struct {
	ID         string
	ResourceID generic.ResourceID
	Start      generic.Date
	End        generic.Date
	Reason     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (b Block) IsGlobal() bool { return b.ResourceID.IsUnassigned() }

func (b Block) Period() generic.Period { return generic.Period{Start: b.Start, End: b.End} }

// Range is the block converted to half-open form.
func (b Block) Range() generic.DateRange { return b.Period().Exclusive() }

// AppliesTo reports whether the block constrains the given site.
func (b Block) AppliesTo(site generic.ResourceID) bool {
	return b.IsGlobal() || b.ResourceID == site
}

// ReasonOrDefault is the label shown when the block causes a conflict.
func (b Block) ReasonOrDefault() string {
	if b.Reason == "" {
		return "Unavailable"
	}
	return b.Reason
}

// =============================================================================
// CALENDAR ITEM - Reservation or blackout
// =============================================================================

type ItemKind string

const (
	ItemReservation ItemKind = "reservation"
	ItemBlackout    ItemKind = "blackout"
)

// CalendarItem is either a reservation or a blackout. Exactly one of
// Commitment and Block is set, matching Kind.
type CalendarItem struct {
	Kind       ItemKind
	Commitment *Commitment
	Block      *Block
}

func ReservationItem(c Commitment) CalendarItem {
	return CalendarItem{Kind: ItemReservation, Commitment: &c}
}

func BlackoutItem(b Block) CalendarItem {
	return CalendarItem{Kind: ItemBlackout, Block: &b}
}

func (i CalendarItem) ID() string {
	switch i.Kind {
	case ItemReservation:
		return i.Commitment.ID
	case ItemBlackout:
		return i.Block.ID
	default:
		return ""
	}
}

func (i CalendarItem) ResourceID() generic.ResourceID {
	switch i.Kind {
	case ItemReservation:
		return i.Commitment.ResourceID
	case ItemBlackout:
		return i.Block.ResourceID
	default:
		return ""
	}
}

// Range is the half-open range the item occupies.
func (i CalendarItem) Range() generic.DateRange {
	switch i.Kind {
	case ItemReservation:
		return i.Commitment.Range()
	case ItemBlackout:
		return i.Block.Range()
	default:
		return generic.DateRange{}
	}
}

// Label is the guest name for reservations and the reason for blackouts.
func (i CalendarItem) Label() string {
	switch i.Kind {
	case ItemReservation:
		return i.Commitment.Guest.FullName()
	case ItemBlackout:
		return i.Block.ReasonOrDefault()
	default:
		return ""
	}
}

// =============================================================================
// SNAPSHOT - Tenant-scoped input to every read-side function
// =============================================================================

type Snapshot struct {
	Sites       []Site
	Commitments []Commitment
	Blocks      []Block
}

func (s Snapshot) Site(id generic.ResourceID) (Site, bool) {
	for _, site := range s.Sites {
		if site.ID == id {
			return site, true
		}
	}
	return Site{}, false
}

func (s Snapshot) Commitment(id string) (Commitment, bool) {
	for _, c := range s.Commitments {
		if c.ID == id {
			return c, true
		}
	}
	return Commitment{}, false
}

func (s Snapshot) Block(id string) (Block, bool) {
	for _, b := range s.Blocks {
		if b.ID == id {
			return b, true
		}
	}
	return Block{}, false
}
