/*
handlers.go - HTTP API handlers for the campground engine

PURPOSE:
  Exposes the availability resolver, the move validator and the write path
  via REST API. Handles HTTP request/response, JSON serialization, and
  delegates to campground.Engine.

ENDPOINTS:
  Sites:
    GET    /api/sites                      List sites
    POST   /api/sites                      Create or update a site
    POST   /api/sites/{id}/deactivate      Take a site out of availability

  Availability & bookings:
    GET    /api/availability               checkIn, checkOut, guests, vehicleLength, siteId, type
    POST   /api/bookings                   Public booking submission

  Reservations:
    GET    /api/commitments                status, from, to, include_archived
    GET    /api/commitments/{id}
    POST   /api/commitments/{id}/assign    {site_id}
    POST   /api/commitments/{id}/move      {site_id, check_in, check_out}
    POST   /api/commitments/{id}/validate  Verdict only, nothing is written
    POST   /api/commitments/{id}/status    {status}
    POST   /api/commitments/{id}/archive

  Blackouts:
    GET    /api/blocks
    POST   /api/blocks
    POST   /api/blocks/{id}/move
    DELETE /api/blocks/{id}

  Calendar:
    GET    /api/calendar                   from, to (inclusive)

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input (go-playground/validator)
  3. Call the engine
  4. Serialize response
  5. Map errors to status codes

ERROR HANDLING:
  Engine errors carry a generic.Kind:
  - 400: invalid input, InvalidRange, CapacityExceeded, SiteInactive
  - 404: NotFound, SiteNotFound
  - 409: Conflict (the conflicting items are in the body)
  - 500: Internal errors

  "Nothing available" and "move not allowed" from the read endpoints are
  200 responses carrying the verdict, not errors.

SECURITY NOTE:
  No authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/warp/campsite-engine/campground"
	"github.com/warp/campsite-engine/factory"
	"github.com/warp/campsite-engine/generic"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Engine *campground.Engine

	log      logrus.FieldLogger
	validate *validator.Validate
	now      func() time.Time

	// Track currently loaded scenario
	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a new handler around the engine.
func NewHandler(engine *campground.Engine, log logrus.FieldLogger) *Handler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handler{
		Engine:   engine,
		log:      log,
		validate: newValidator(),
		now:      time.Now,
	}
}

// newValidator reports fields by their json names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Health reports whether the store is reachable.
// GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	type pinger interface {
		Ping(ctx context.Context) error
	}
	if p, ok := h.Engine.Store().(pinger); ok {
		if err := p.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "Store unavailable", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// SITE HANDLERS
// =============================================================================

// ListSites returns every site, active or not, in display order.
func (h *Handler) ListSites(w http.ResponseWriter, r *http.Request) {
	sites, err := h.Engine.Store().ListSites(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sites", err)
		return
	}
	campground.SortSites(sites)
	writeJSON(w, http.StatusOK, toSiteDTOs(sites))
}

// SaveSite creates a site or replaces an existing one with the same id.
// POST /api/sites
func (h *Handler) SaveSite(w http.ResponseWriter, r *http.Request) {
	var req SaveSiteRequest
	if !h.decode(w, r, &req) {
		return
	}

	def := factory.SiteJSON{
		ID:               req.ID,
		Code:             req.Code,
		Name:             req.Name,
		Type:             req.Type,
		MaxGuests:        req.MaxGuests,
		MaxVehicleLength: req.MaxVehicleLength,
		IsActive:         req.IsActive,
		SortOrder:        req.SortOrder,
		Notes:            req.Notes,
	}
	if req.NightlyRate != nil {
		def.NightlyRate = *req.NightlyRate
	}
	site, err := factory.FromJSON(def)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid site", err)
		return
	}

	saved, err := h.Engine.SaveSite(r.Context(), site)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSiteDTO(*saved))
}

// DeactivateSite soft-deactivates a site. Existing reservations are kept.
// POST /api/sites/{id}/deactivate
func (h *Handler) DeactivateSite(w http.ResponseWriter, r *http.Request) {
	id := generic.ResourceID(chi.URLParam(r, "id"))
	site, err := h.Engine.DeactivateSite(r.Context(), id)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSiteDTO(*site))
}

// ListSiteTypes lists the site categories a site or search may use.
// GET /api/site-types
func (h *Handler) ListSiteTypes(w http.ResponseWriter, r *http.Request) {
	types := campground.SiteTypes()
	dtos := make([]SiteTypeDTO, 0, len(types))
	for _, t := range types {
		dtos = append(dtos, SiteTypeDTO{ID: t.TypeID(), Label: t.Label()})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// AVAILABILITY & BOOKING HANDLERS
// =============================================================================

// GetAvailability resolves a stay. An unavailable stay is still a 200.
// GET /api/availability?checkIn=2025-07-04&checkOut=2025-07-06&guests=2
func (h *Handler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	params, err := parseAvailabilityParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid query parameters", err)
		return
	}
	if err := h.validate.Struct(params); err != nil {
		writeValidationError(w, err)
		return
	}

	q := campground.AvailabilityQuery{
		CheckIn:       generic.MustParseDate(params.CheckIn),
		CheckOut:      generic.MustParseDate(params.CheckOut),
		PartySize:     params.Guests,
		VehicleLength: params.VehicleLength,
		SiteID:        generic.ResourceID(params.SiteID),
		SiteType:      campground.SiteType(params.Type),
	}
	res, err := h.Engine.Availability(r.Context(), q)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, NewAvailabilityResponse(res))
}

func parseAvailabilityParams(r *http.Request) (AvailabilityParams, error) {
	query := r.URL.Query()
	params := AvailabilityParams{
		CheckIn:  query.Get("checkIn"),
		CheckOut: query.Get("checkOut"),
		SiteID:   query.Get("siteId"),
		Type:     query.Get("type"),
		Guests:   1,
	}
	if raw := query.Get("guests"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return params, fmt.Errorf("guests must be a number")
		}
		params.Guests = n
	}
	if raw := query.Get("vehicleLength"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return params, fmt.Errorf("vehicleLength must be a number of feet")
		}
		params.VehicleLength = &n
	}
	return params, nil
}

// CreateBooking submits a booking on the first site that accepts it.
// POST /api/bookings
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Total != nil && req.Total.LessThan(decimal.Zero) {
		writeError(w, http.StatusBadRequest, "Total cannot be negative", nil)
		return
	}

	result, err := h.Engine.Book(r.Context(), campground.BookingRequest{
		CheckIn:       generic.MustParseDate(req.CheckIn),
		CheckOut:      generic.MustParseDate(req.CheckOut),
		Adults:        req.Adults,
		Children:      req.Children,
		VehicleLength: req.VehicleLength,
		VehicleYear:   req.VehicleYear,
		CampingUnit:   req.CampingUnit,
		SiteID:        generic.ResourceID(req.SiteID),
		SiteType:      campground.SiteType(req.SiteType),
		Guest:         req.Guest.toGuest(),
		Total:         req.Total,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	resp := BookingResponse{
		Reservation:  toCommitmentDTO(result.Commitment),
		Site:         toSiteDTO(result.Site),
		PaymentError: result.PaymentError,
	}
	if result.Payment != nil {
		resp.PaymentReference = result.Payment.Reference
		resp.PaymentStatus = result.Payment.Status
	}
	writeJSON(w, http.StatusCreated, resp)
}

// =============================================================================
// RESERVATION HANDLERS
// =============================================================================

// ListCommitments lists reservations.
// GET /api/commitments?status=pending,confirmed&from=2025-07-01&to=2025-07-31
func (h *Handler) ListCommitments(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	var filter campground.CommitmentFilter

	if raw := query.Get("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			status := campground.CommitmentStatus(strings.TrimSpace(s))
			if !status.Valid() {
				writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown status %q", s), nil)
				return
			}
			filter.Statuses = append(filter.Statuses, status)
		}
	}
	if query.Get("from") != "" || query.Get("to") != "" {
		window, err := parseWindow(query.Get("from"), query.Get("to"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date window", err)
			return
		}
		filter.Window = &window
	}
	if raw := query.Get("include_archived"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "include_archived must be true or false", err)
			return
		}
		filter.IncludeArchived = b
	}

	commitments, err := h.Engine.Store().ListCommitments(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list reservations", err)
		return
	}
	writeJSON(w, http.StatusOK, toCommitmentDTOs(commitments))
}

// GetCommitment returns one reservation, archived or not.
func (h *Handler) GetCommitment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	c, err := h.Engine.Store().GetCommitment(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get reservation", err)
		return
	}
	if c == nil {
		writeError(w, http.StatusNotFound, "Reservation not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toCommitmentDTO(*c))
}

// AssignCommitment puts a reservation on a site, keeping its dates.
// POST /api/commitments/{id}/assign
func (h *Handler) AssignCommitment(w http.ResponseWriter, r *http.Request) {
	var req AssignRequest
	if !h.decode(w, r, &req) {
		return
	}
	c, err := h.Engine.Assign(r.Context(), chi.URLParam(r, "id"), generic.ResourceID(req.SiteID))
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCommitmentDTO(*c))
}

// MoveCommitment changes site and/or dates.
// POST /api/commitments/{id}/move
func (h *Handler) MoveCommitment(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if !h.decode(w, r, &req) {
		return
	}

	move := campground.MoveRequest{CommitmentID: chi.URLParam(r, "id")}
	if req.SiteID != nil {
		site := generic.ResourceID(*req.SiteID)
		move.SiteID = &site
	}
	if req.CheckIn != nil {
		d := generic.MustParseDate(*req.CheckIn)
		move.CheckIn = &d
	}
	if req.CheckOut != nil {
		d := generic.MustParseDate(*req.CheckOut)
		move.CheckOut = &d
	}

	c, err := h.Engine.Move(r.Context(), move)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCommitmentDTO(*c))
}

// ValidateCommitmentMove returns the verdict the calendar shows while
// dragging. Nothing is written.
// POST /api/commitments/{id}/validate
func (h *Handler) ValidateCommitmentMove(w http.ResponseWriter, r *http.Request) {
	var req ValidateMoveRequest
	if !h.decode(w, r, &req) {
		return
	}
	v, err := h.Engine.ValidateCommitmentMove(r.Context(),
		chi.URLParam(r, "id"),
		generic.ResourceID(req.SiteID),
		generic.MustParseDate(req.CheckIn),
		generic.MustParseDate(req.CheckOut),
	)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toValidationResponse(v))
}

// UpdateCommitmentStatus applies a lifecycle transition.
// POST /api/commitments/{id}/status
func (h *Handler) UpdateCommitmentStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusRequest
	if !h.decode(w, r, &req) {
		return
	}
	c, err := h.Engine.UpdateStatus(r.Context(), chi.URLParam(r, "id"), campground.CommitmentStatus(req.Status))
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCommitmentDTO(*c))
}

// ArchiveCommitment soft-deletes a reservation.
// POST /api/commitments/{id}/archive
func (h *Handler) ArchiveCommitment(w http.ResponseWriter, r *http.Request) {
	c, err := h.Engine.Archive(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCommitmentDTO(*c))
}

// =============================================================================
// BLACKOUT HANDLERS
// =============================================================================

func (h *Handler) ListBlocks(w http.ResponseWriter, r *http.Request) {
	blocks, err := h.Engine.Store().ListBlocks(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list blackouts", err)
		return
	}
	writeJSON(w, http.StatusOK, toBlockDTOs(blocks))
}

// CreateBlock places a blackout. An empty site_id blocks every site.
// POST /api/blocks
func (h *Handler) CreateBlock(w http.ResponseWriter, r *http.Request) {
	var req BlockRequest
	if !h.decode(w, r, &req) {
		return
	}
	b, err := h.Engine.CreateBlock(r.Context(), toEngineBlockRequest(req))
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBlockDTO(*b))
}

// MoveBlock moves or resizes a blackout.
// POST /api/blocks/{id}/move
func (h *Handler) MoveBlock(w http.ResponseWriter, r *http.Request) {
	var req BlockRequest
	if !h.decode(w, r, &req) {
		return
	}
	b, err := h.Engine.MoveBlock(r.Context(), chi.URLParam(r, "id"), toEngineBlockRequest(req))
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBlockDTO(*b))
}

// DeleteBlock removes a blackout.
// DELETE /api/blocks/{id}
func (h *Handler) DeleteBlock(w http.ResponseWriter, r *http.Request) {
	if err := h.Engine.DeleteBlock(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}

func toEngineBlockRequest(req BlockRequest) campground.BlockRequest {
	return campground.BlockRequest{
		SiteID: generic.ResourceID(req.SiteID),
		Start:  generic.MustParseDate(req.StartDate),
		End:    generic.MustParseDate(req.EndDate),
		Reason: strings.TrimSpace(req.Reason),
	}
}

// =============================================================================
// CALENDAR
// =============================================================================

// GetCalendar lists reservations and blackouts for the admin timeline.
// Defaults to two weeks starting today.
// GET /api/calendar?from=2025-07-01&to=2025-07-14
func (h *Handler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	from, to := r.URL.Query().Get("from"), r.URL.Query().Get("to")
	if from == "" {
		from = generic.DateOf(h.now()).String()
	}
	if to == "" {
		start, err := generic.ParseDate(from)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid from date (use YYYY-MM-DD)", err)
			return
		}
		to = start.AddDays(13).String()
	}
	window, err := parseWindow(from, to)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date window", err)
		return
	}

	items, err := h.Engine.Calendar(r.Context(), window)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	dtos := toCalendarItemDTOs(items)
	if dtos == nil {
		dtos = []CalendarItemDTO{}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// parseWindow turns an inclusive from/to pair into a half-open range.
// A missing bound is open-ended by a year.
func parseWindow(from, to string) (generic.DateRange, error) {
	var start, last generic.Date
	var err error
	if from != "" {
		if start, err = generic.ParseDate(from); err != nil {
			return generic.DateRange{}, err
		}
	}
	if to != "" {
		if last, err = generic.ParseDate(to); err != nil {
			return generic.DateRange{}, err
		}
	}
	switch {
	case from == "":
		start = last.AddDays(-365)
	case to == "":
		last = start.AddDays(365)
	}
	p := generic.Period{Start: start, End: last}
	if !p.Valid() {
		return generic.DateRange{}, fmt.Errorf("to must be on or after from")
	}
	return p.Exclusive(), nil
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// decode reads and validates a JSON body. It writes the 400 itself and
// reports false when the request is unusable.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeValidationError(w, err)
		return false
	}
	return true
}

func writeValidationError(w http.ResponseWriter, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		writeError(w, http.StatusBadRequest, "Invalid request", err)
		return
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "datetime":
			msgs = append(msgs, fe.Field()+" must be a date (YYYY-MM-DD)")
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param()))
		case "min", "max":
			msgs = append(msgs, fmt.Sprintf("%s must be %s %s", fe.Field(), map[string]string{"min": "at least", "max": "at most"}[fe.Tag()], fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag()))
		}
	}
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Error:   "Validation failed",
		Kind:    string(generic.KindInvalid),
		Details: strings.Join(msgs, "; "),
	})
}

// writeEngineError maps an engine error onto a status code.
func (h *Handler) writeEngineError(w http.ResponseWriter, err error) {
	kind := generic.KindOf(err)
	var me *campground.MutationError
	if errors.As(err, &me) {
		kind = me.Kind
	}

	status := statusForKind(kind)
	resp := ErrorResponse{
		Error:     err.Error(),
		Kind:      string(kind),
		Conflicts: toCalendarItemDTOs(campground.ConflictsOf(err)),
	}
	switch {
	case status == http.StatusInternalServerError:
		h.log.WithError(err).Error("request failed")
		if me != nil && me.Err != nil {
			resp.Details = me.Err.Error()
		}
	case generic.IsClientError(err):
		h.log.WithError(err).WithField("kind", kind).Debug("request rejected")
	}
	writeJSON(w, status, resp)
}

func statusForKind(kind generic.Kind) int {
	switch kind {
	case generic.KindInvalid, generic.KindInvalidRange, generic.KindCapacityExceeded, generic.KindSiteInactive:
		return http.StatusBadRequest
	case generic.KindNotFound, generic.KindSiteNotFound:
		return http.StatusNotFound
	case generic.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
