/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the campground model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Sites:        SiteDTO, SaveSiteRequest, SiteTypeDTO
  Availability: AvailabilityParams, AvailabilityResponse, SiteQuoteDTO
  Bookings:     CreateBookingRequest, BookingResponse
  Reservations: CommitmentDTO, AssignRequest, MoveRequest, ValidateMoveRequest,
                StatusRequest, ValidationResponse
  Blackouts:    BlockDTO, BlockRequest
  Calendar:     CalendarItemDTO
  Scenarios:    ScenarioDTO, LoadScenarioRequest

VALIDATION:
  Request types carry go-playground/validator tags. Dates travel as
  YYYY-MM-DD strings and are parsed after the struct passes validation.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/campsite-engine/campground"
	"github.com/warp/campsite-engine/factory"
	"github.com/warp/campsite-engine/generic"
)

// =============================================================================
// SITES
// =============================================================================

// SiteDTO is a site as returned to clients.
type SiteDTO struct {
	factory.SiteJSON
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// SaveSiteRequest creates or updates a site. ID defaults to Code.
type SaveSiteRequest struct {
	ID               string           `json:"id"`
	Code             string           `json:"code" validate:"required,max=16"`
	Name             string           `json:"name" validate:"required,max=100"`
	Type             string           `json:"type" validate:"required,oneof=tent rv cabin"`
	MaxGuests        int              `json:"max_guests" validate:"required,min=1,max=50"`
	MaxVehicleLength *int             `json:"max_vehicle_length" validate:"omitempty,min=1"`
	IsActive         *bool            `json:"is_active"`
	SortOrder        int              `json:"sort_order" validate:"min=0"`
	NightlyRate      *decimal.Decimal `json:"nightly_rate"`
	Notes            string           `json:"notes" validate:"max=500"`
}

type SiteTypeDTO struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// =============================================================================
// AVAILABILITY
// =============================================================================

// AvailabilityParams are the query parameters of GET /api/availability.
type AvailabilityParams struct {
	CheckIn       string `validate:"required,datetime=2006-01-02"`
	CheckOut      string `validate:"required,datetime=2006-01-02"`
	Guests        int    `validate:"min=1"`
	VehicleLength *int   `validate:"omitempty,min=1"`
	SiteID        string
	Type          string `validate:"omitempty,oneof=tent rv cabin"`
}

// SiteQuoteDTO is an eligible site with its estimated total for the stay.
type SiteQuoteDTO struct {
	Site           SiteDTO         `json:"site"`
	EstimatedTotal decimal.Decimal `json:"estimated_total"`
}

type AvailabilityResponse struct {
	Available         bool              `json:"available"`
	Nights            int               `json:"nights"`
	EligibleSites     []SiteQuoteDTO    `json:"eligible_sites"`
	RecommendedSiteID string            `json:"recommended_site_id,omitempty"`
	Message           string            `json:"message,omitempty"`
	Kind              string            `json:"kind,omitempty"`
	Conflicts         []CalendarItemDTO `json:"conflicts,omitempty"`
}

// =============================================================================
// BOOKINGS
// =============================================================================

type GuestDTO struct {
	FirstName     string `json:"first_name" validate:"required,max=100"`
	LastName      string `json:"last_name" validate:"required,max=100"`
	Email         string `json:"email" validate:"required,email"`
	Phone         string `json:"phone" validate:"max=40"`
	Address1      string `json:"address1,omitempty" validate:"max=200"`
	City          string `json:"city,omitempty" validate:"max=100"`
	PostalCode    string `json:"postal_code,omitempty" validate:"max=20"`
	ContactMethod string `json:"contact_method,omitempty" validate:"omitempty,oneof=Email Phone Either"`
}

// CreateBookingRequest is a public booking submission.
type CreateBookingRequest struct {
	CheckIn       string           `json:"check_in" validate:"required,datetime=2006-01-02"`
	CheckOut      string           `json:"check_out" validate:"required,datetime=2006-01-02"`
	Adults        int              `json:"adults" validate:"required,min=1"`
	Children      int              `json:"children" validate:"min=0"`
	VehicleLength *int             `json:"vehicle_length" validate:"omitempty,min=1"`
	VehicleYear   *int             `json:"vehicle_year" validate:"omitempty,min=1900,max=2100"`
	CampingUnit   string           `json:"camping_unit" validate:"omitempty,oneof=Tent 'Pull Trailer' '5th Wheel' Motorhome Van"`
	SiteID        string           `json:"site_id"`
	SiteType      string           `json:"site_type" validate:"omitempty,oneof=tent rv cabin"`
	Guest         GuestDTO         `json:"guest"`
	Total         *decimal.Decimal `json:"total"`
	PaymentMethod string           `json:"payment_method"`
}

type BookingResponse struct {
	Reservation      CommitmentDTO `json:"reservation"`
	Site             SiteDTO       `json:"site"`
	PaymentReference string        `json:"payment_reference,omitempty"`
	PaymentStatus    string        `json:"payment_status,omitempty"`
	PaymentError     string        `json:"payment_error,omitempty"`
}

// =============================================================================
// RESERVATIONS
// =============================================================================

// CommitmentDTO is a reservation as returned to clients.
type CommitmentDTO struct {
	ID            string          `json:"id"`
	SiteID        string          `json:"site_id"`
	CheckIn       string          `json:"check_in"`
	CheckOut      string          `json:"check_out"`
	Nights        int             `json:"nights"`
	Status        string          `json:"status"`
	Adults        int             `json:"adults"`
	Children      int             `json:"children"`
	PartySize     int             `json:"party_size"`
	VehicleLength *int            `json:"vehicle_length,omitempty"`
	VehicleYear   *int            `json:"vehicle_year,omitempty"`
	CampingUnit   string          `json:"camping_unit,omitempty"`
	Guest         GuestDTO        `json:"guest"`
	Total         decimal.Decimal `json:"total"`
	PaymentRef    string          `json:"payment_ref,omitempty"`
	Archived      bool            `json:"archived"`
	CreatedAt     string          `json:"created_at"`
	UpdatedAt     string          `json:"updated_at"`
}

// AssignRequest puts a reservation on a site. "unassigned" takes it off.
type AssignRequest struct {
	SiteID string `json:"site_id" validate:"required"`
}

// MoveRequest changes site and/or dates. Omitted fields keep their value.
type MoveRequest struct {
	SiteID   *string `json:"site_id" validate:"omitempty,min=1"`
	CheckIn  *string `json:"check_in" validate:"omitempty,datetime=2006-01-02"`
	CheckOut *string `json:"check_out" validate:"omitempty,datetime=2006-01-02"`
}

// ValidateMoveRequest asks for a verdict without writing.
type ValidateMoveRequest struct {
	SiteID   string `json:"site_id" validate:"required"`
	CheckIn  string `json:"check_in" validate:"required,datetime=2006-01-02"`
	CheckOut string `json:"check_out" validate:"required,datetime=2006-01-02"`
}

type StatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed checked_in checked_out cancelled no_show"`
}

type ValidationResponse struct {
	Valid     bool              `json:"valid"`
	Error     string            `json:"error,omitempty"`
	Kind      string            `json:"kind,omitempty"`
	Conflicts []CalendarItemDTO `json:"conflicts,omitempty"`
}

// =============================================================================
// BLACKOUTS
// =============================================================================

// BlockDTO is a blackout. EndDate is inclusive; an empty SiteID means every site.
type BlockDTO struct {
	ID        string `json:"id"`
	SiteID    string `json:"site_id,omitempty"`
	Global    bool   `json:"global"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Days      int    `json:"days"`
	Reason    string `json:"reason"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type BlockRequest struct {
	SiteID    string `json:"site_id"`
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
	Reason    string `json:"reason" validate:"max=200"`
}

// =============================================================================
// CALENDAR
// =============================================================================

// CalendarItemDTO is a tagged reservation-or-blackout. Start/End are the
// half-open range the item occupies on the timeline; LastDay is its final
// occupied day, for grids that draw inclusive bars.
type CalendarItemDTO struct {
	Kind        string         `json:"kind"`
	ID          string         `json:"id"`
	SiteID      string         `json:"site_id,omitempty"`
	Start       string         `json:"start"`
	End         string         `json:"end"`
	LastDay     string         `json:"last_day"`
	Label       string         `json:"label"`
	Reservation *CommitmentDTO `json:"reservation,omitempty"`
	Blackout    *BlockDTO      `json:"blackout,omitempty"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id" validate:"required"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error     string            `json:"error"`
	Kind      string            `json:"kind,omitempty"`
	Details   string            `json:"details,omitempty"`
	Conflicts []CalendarItemDTO `json:"conflicts,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toSiteDTO(s campground.Site) SiteDTO {
	return SiteDTO{
		SiteJSON:  factory.ToJSON(s),
		CreatedAt: formatTimestamp(s.CreatedAt),
		UpdatedAt: formatTimestamp(s.UpdatedAt),
	}
}

func toSiteDTOs(sites []campground.Site) []SiteDTO {
	dtos := make([]SiteDTO, 0, len(sites))
	for _, s := range sites {
		dtos = append(dtos, toSiteDTO(s))
	}
	return dtos
}

func toCommitmentDTO(c campground.Commitment) CommitmentDTO {
	return CommitmentDTO{
		ID:            c.ID,
		SiteID:        string(c.ResourceID.Normalize()),
		CheckIn:       c.CheckIn.String(),
		CheckOut:      c.CheckOut.String(),
		Nights:        c.Range().Nights(),
		Status:        string(c.Status),
		Adults:        c.Adults,
		Children:      c.Children,
		PartySize:     c.PartySize(),
		VehicleLength: c.VehicleLength,
		VehicleYear:   c.VehicleYear,
		CampingUnit:   c.CampingUnit,
		Guest:         toGuestDTO(c.Guest),
		Total:      c.Total,
		PaymentRef: c.PaymentRef,
		Archived:   c.Archived,
		CreatedAt:  formatTimestamp(c.CreatedAt),
		UpdatedAt:  formatTimestamp(c.UpdatedAt),
	}
}

func toGuestDTO(g campground.Guest) GuestDTO {
	return GuestDTO{
		FirstName:     g.FirstName,
		LastName:      g.LastName,
		Email:         g.Email,
		Phone:         g.Phone,
		Address1:      g.Address1,
		City:          g.City,
		PostalCode:    g.PostalCode,
		ContactMethod: string(g.ContactMethod),
	}
}

func (g GuestDTO) toGuest() campground.Guest {
	return campground.Guest{
		FirstName:     g.FirstName,
		LastName:      g.LastName,
		Email:         g.Email,
		Phone:         g.Phone,
		Address1:      g.Address1,
		City:          g.City,
		PostalCode:    g.PostalCode,
		ContactMethod: campground.ContactMethod(g.ContactMethod),
	}
}

func toCommitmentDTOs(cs []campground.Commitment) []CommitmentDTO {
	dtos := make([]CommitmentDTO, 0, len(cs))
	for _, c := range cs {
		dtos = append(dtos, toCommitmentDTO(c))
	}
	return dtos
}

func toBlockDTO(b campground.Block) BlockDTO {
	return BlockDTO{
		ID:        b.ID,
		SiteID:    string(b.ResourceID),
		Global:    b.IsGlobal(),
		StartDate: b.Start.String(),
		EndDate:   b.End.String(),
		Days:      b.Period().Len(),
		Reason:    b.ReasonOrDefault(),
		CreatedAt: formatTimestamp(b.CreatedAt),
		UpdatedAt: formatTimestamp(b.UpdatedAt),
	}
}

func toBlockDTOs(bs []campground.Block) []BlockDTO {
	dtos := make([]BlockDTO, 0, len(bs))
	for _, b := range bs {
		dtos = append(dtos, toBlockDTO(b))
	}
	return dtos
}

func toCalendarItemDTO(item campground.CalendarItem) CalendarItemDTO {
	r := item.Range()
	dto := CalendarItemDTO{
		Kind:    string(item.Kind),
		ID:      item.ID(),
		SiteID:  string(item.ResourceID()),
		Start:   r.Start.String(),
		End:     r.End.String(),
		LastDay: generic.PeriodOf(r).End.String(),
		Label:   item.Label(),
	}
	switch item.Kind {
	case campground.ItemReservation:
		c := toCommitmentDTO(*item.Commitment)
		dto.Reservation = &c
	case campground.ItemBlackout:
		b := toBlockDTO(*item.Block)
		dto.Blackout = &b
	}
	return dto
}

func toCalendarItemDTOs(items []campground.CalendarItem) []CalendarItemDTO {
	if len(items) == 0 {
		return nil
	}
	dtos := make([]CalendarItemDTO, 0, len(items))
	for _, item := range items {
		dtos = append(dtos, toCalendarItemDTO(item))
	}
	return dtos
}

// NewAvailabilityResponse renders a resolver verdict with per-site quotes.
func NewAvailabilityResponse(res campground.AvailabilityResult) AvailabilityResponse {
	quotes := make([]SiteQuoteDTO, 0, len(res.EligibleSites))
	for _, s := range res.EligibleSites {
		quotes = append(quotes, SiteQuoteDTO{
			Site:           toSiteDTO(s),
			EstimatedTotal: s.QuoteNights(res.Nights),
		})
	}
	return AvailabilityResponse{
		Available:         res.Available,
		Nights:            res.Nights,
		EligibleSites:     quotes,
		RecommendedSiteID: string(res.RecommendedSiteID),
		Message:           res.Message,
		Kind:              string(res.Kind),
		Conflicts:         toCalendarItemDTOs(res.Conflicts),
	}
}

func toValidationResponse(v campground.ValidationResult) ValidationResponse {
	return ValidationResponse{
		Valid:     v.Valid,
		Error:     v.Error,
		Kind:      string(v.Kind),
		Conflicts: toCalendarItemDTOs(v.Conflicts),
	}
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
