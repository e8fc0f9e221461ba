/*
engine.go - Assignment Mutator and the rest of the write path

PURPOSE:
  Every write goes through Engine. Each operation:
    1. takes the per-site lock(s) for the site it will occupy
    2. loads a fresh Snapshot (earlier verdicts are never trusted)
    3. runs the same validator the calendar uses
    4. writes, treating a store overlap rejection as an ordinary Conflict
    5. publishes a domain event (best effort)

LOCK ORDER:
  A write that rewrites an existing reservation first takes that
  reservation's own lock, then its site lock(s). Site keys are sorted
  before acquisition, so a global blackout locking every site cannot
  deadlock against a booking locking one. Every read-modify-write of a
  reservation re-reads the row after its lock is held.

FAILURES:
  All errors are *MutationError. Business outcomes carry their Kind and
  the conflicting items; storage failures are logged and come back as
  KindInternal wrapping the cause.
*/
package campground

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/warp/campsite-engine/generic"
	"github.com/warp/campsite-engine/lock"
)

const tracerName = "github.com/warp/campsite-engine/campground"

// Engine performs validated writes against a Store.
type Engine struct {
	store    Store
	locker   Locker
	events   Publisher
	payments PaymentSettler
	currency string
	log      logrus.FieldLogger
	tracer   trace.Tracer
	now      func() time.Time
	newID    func() string
}

type Option func(*Engine)

func WithLocker(l Locker) Option               { return func(e *Engine) { e.locker = l } }
func WithPublisher(p Publisher) Option         { return func(e *Engine) { e.events = p } }
func WithLogger(l logrus.FieldLogger) Option   { return func(e *Engine) { e.log = l } }
func WithTracer(t trace.Tracer) Option         { return func(e *Engine) { e.tracer = t } }
func WithClock(now func() time.Time) Option    { return func(e *Engine) { e.now = now } }
func WithIDGenerator(gen func() string) Option { return func(e *Engine) { e.newID = gen } }

// WithPaymentSettler enables settlement of booking totals in currency.
func WithPaymentSettler(s PaymentSettler, currency string) Option {
	return func(e *Engine) {
		e.payments = s
		if currency != "" {
			e.currency = currency
		}
	}
}

// NewEngine defaults to an in-process locker, no events and no payments.
func NewEngine(store Store, opts ...Option) *Engine {
	e := &Engine{
		store:    store,
		locker:   lock.NewLocal(),
		currency: "usd",
		log:      logrus.StandardLogger(),
		tracer:   otel.Tracer(tracerName),
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// TakesPayments reports whether a payment settler is configured.
func (e *Engine) TakesPayments() bool { return e.payments != nil }

// Store exposes the underlying store for read-only listing.
func (e *Engine) Store() Store { return e.store }

// =============================================================================
// READS
// =============================================================================

// Snapshot loads the current sites, commitments and blocks.
func (e *Engine) Snapshot(ctx context.Context) (Snapshot, error) {
	snap, err := LoadSnapshot(ctx, e.store)
	if err != nil {
		e.log.WithError(err).Error("failed to load snapshot")
		return Snapshot{}, internal("failed to load campground data", err)
	}
	return snap, nil
}

// Availability resolves a query against the latest snapshot.
func (e *Engine) Availability(ctx context.Context, q AvailabilityQuery) (AvailabilityResult, error) {
	snap, err := e.Snapshot(ctx)
	if err != nil {
		return AvailabilityResult{}, err
	}
	return Resolve(q, snap), nil
}

// ValidateCommitmentMove returns the verdict for moving a reservation
// without writing anything.
func (e *Engine) ValidateCommitmentMove(ctx context.Context, id string, target generic.ResourceID, start, end generic.Date) (ValidationResult, error) {
	snap, err := e.Snapshot(ctx)
	if err != nil {
		return ValidationResult{}, err
	}
	c, ok := snap.Commitment(id)
	if !ok {
		return ValidationResult{}, notFound("Reservation", id)
	}
	return ValidateMove(ReservationItem(c), target, start, end, snap), nil
}

// Calendar lists reservations and blackouts overlapping window, ordered by
// start date.
func (e *Engine) Calendar(ctx context.Context, window generic.DateRange) ([]CalendarItem, error) {
	if !window.Valid() {
		return nil, &MutationError{Kind: generic.KindInvalidRange, Message: "Calendar window must cover at least one day"}
	}
	commitments, err := e.store.ListCommitments(ctx, CommitmentFilter{Window: &window})
	if err != nil {
		return nil, internal("failed to list reservations", err)
	}
	blocks, err := e.store.ListBlocks(ctx)
	if err != nil {
		return nil, internal("failed to list blackouts", err)
	}

	items := reservationItems(commitments)
	for _, b := range blocks {
		if window.Overlaps(b.Range()) {
			items = append(items, BlackoutItem(b))
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		ri, rj := items[i].Range(), items[j].Range()
		if !ri.Start.Equal(rj.Start) {
			return ri.Start.Before(rj.Start)
		}
		if items[i].Kind != items[j].Kind {
			return items[i].Kind == ItemBlackout
		}
		return items[i].ID() < items[j].ID()
	})
	return items, nil
}

// =============================================================================
// SITES
// =============================================================================

// SaveSite creates or updates a site.
func (e *Engine) SaveSite(ctx context.Context, site Site) (*Site, error) {
	if site.MaxGuests < 1 {
		return nil, invalidRequest("Max guests must be at least 1")
	}
	if _, err := ParseSiteType(string(site.Type)); err != nil {
		return nil, invalidRequest(fmt.Sprintf("Unknown site type %q", site.Type))
	}
	if site.ID.IsUnassigned() {
		site.ID = generic.ResourceID(e.newID())
	}
	now := e.now().UTC()
	existing, err := e.store.GetSite(ctx, site.ID)
	if err != nil {
		return nil, internal("failed to load site", err)
	}
	site.CreatedAt = now
	if existing != nil {
		site.CreatedAt = existing.CreatedAt
	}
	site.UpdatedAt = now
	if err := e.store.SaveSite(ctx, site); err != nil {
		e.log.WithError(err).WithField("site_id", site.ID).Error("failed to save site")
		return nil, internal("failed to save site", err)
	}
	return &site, nil
}

// DeactivateSite takes a site out of availability. Existing reservations stay.
func (e *Engine) DeactivateSite(ctx context.Context, id generic.ResourceID) (*Site, error) {
	site, err := e.store.GetSite(ctx, id)
	if err != nil {
		return nil, internal("failed to load site", err)
	}
	if site == nil {
		return nil, &MutationError{Kind: generic.KindSiteNotFound, Message: "Site not found"}
	}
	site.IsActive = false
	site.UpdatedAt = e.now().UTC()
	if err := e.store.SaveSite(ctx, *site); err != nil {
		return nil, internal("failed to save site", err)
	}
	e.log.WithField("site_id", id).Info("site deactivated")
	return site, nil
}

// =============================================================================
// ASSIGN / MOVE
// =============================================================================

// Assign puts a reservation on target, keeping its dates. Target may be
// generic.Unassigned.
func (e *Engine) Assign(ctx context.Context, commitmentID string, target generic.ResourceID) (_ *Commitment, err error) {
	ctx, span := e.tracer.Start(ctx, "Engine.Assign", trace.WithAttributes(
		attribute.String("commitment.id", commitmentID),
		attribute.String("site.id", string(target)),
	))
	defer func() { endSpan(span, err) }()

	return e.relocate(ctx, commitmentID, target, nil, nil, EventCommitmentAssigned)
}

// MoveRequest changes a reservation's site and/or dates. Nil fields keep the
// current value; a new CheckIn without CheckOut keeps the night count.
type MoveRequest struct {
	CommitmentID string
	SiteID       *generic.ResourceID
	CheckIn      *generic.Date
	CheckOut     *generic.Date
}

func (e *Engine) Move(ctx context.Context, req MoveRequest) (_ *Commitment, err error) {
	ctx, span := e.tracer.Start(ctx, "Engine.Move", trace.WithAttributes(
		attribute.String("commitment.id", req.CommitmentID),
	))
	defer func() { endSpan(span, err) }()

	var target generic.ResourceID
	if req.SiteID != nil {
		target = *req.SiteID
	} else {
		current, err := e.loadCommitment(ctx, req.CommitmentID)
		if err != nil {
			return nil, err
		}
		target = current.ResourceID
	}
	return e.relocate(ctx, req.CommitmentID, target, req.CheckIn, req.CheckOut, EventCommitmentMoved)
}

func (e *Engine) relocate(ctx context.Context, id string, target generic.ResourceID, checkIn, checkOut *generic.Date, event EventType) (*Commitment, error) {
	unlockRow, err := e.lockCommitment(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlockRow()
	unlock, err := e.lockSites(ctx, target)
	if err != nil {
		return nil, err
	}
	defer unlock()

	current, err := e.loadCommitment(ctx, id)
	if err != nil {
		return nil, err
	}
	snap, err := e.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	r := current.Range()
	if checkIn != nil {
		r = r.ShiftTo(*checkIn)
	}
	if checkOut != nil {
		r.End = *checkOut
	}
	start, end := r.Start, r.End

	if v := ValidateMove(ReservationItem(*current), target, start, end, snap); !v.Valid {
		return nil, fromValidation(v)
	}
	if !end.After(start) {
		return nil, &MutationError{Kind: generic.KindInvalidRange, Message: "Minimum 1 night required"}
	}

	updated := *current
	updated.ResourceID = target.Normalize()
	updated.CheckIn, updated.CheckOut = start, end
	updated.UpdatedAt = e.now().UTC()
	if err := e.store.UpdateCommitment(ctx, updated); err != nil {
		return nil, e.writeError(ctx, err, updated)
	}

	e.log.WithFields(logrus.Fields{
		"commitment_id": id,
		"from_site":     current.ResourceID,
		"to_site":       updated.ResourceID,
		"check_in":      updated.CheckIn.String(),
		"check_out":     updated.CheckOut.String(),
	}).Info("reservation moved")
	e.publish(ctx, event, commitmentEvent(updated, current))
	return &updated, nil
}

// =============================================================================
// STATUS
// =============================================================================

// UpdateStatus applies a lifecycle transition. Returning a reservation to an
// occupying status re-checks its site for conflicts.
func (e *Engine) UpdateStatus(ctx context.Context, id string, status CommitmentStatus) (_ *Commitment, err error) {
	ctx, span := e.tracer.Start(ctx, "Engine.UpdateStatus", trace.WithAttributes(
		attribute.String("commitment.id", id),
		attribute.String("status", string(status)),
	))
	defer func() { endSpan(span, err) }()

	if !status.Valid() {
		return nil, invalidRequest(fmt.Sprintf("Unknown status %q", status))
	}
	unlockRow, err := e.lockCommitment(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlockRow()

	current, err := e.loadCommitment(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == status {
		return current, nil
	}
	if !CanTransition(current.Status, status) {
		return nil, invalidRequest(fmt.Sprintf("Cannot change status from %s to %s", current.Status, status))
	}

	if status.Occupying() && !current.Status.Occupying() && !current.ResourceID.IsUnassigned() {
		unlock, err := e.lockSites(ctx, current.ResourceID)
		if err != nil {
			return nil, err
		}
		defer unlock()

		snap, err := e.Snapshot(ctx)
		if err != nil {
			return nil, err
		}
		if v := ValidateMove(ReservationItem(*current), current.ResourceID, current.CheckIn, current.CheckOut, snap); !v.Valid {
			return nil, fromValidation(v)
		}
	}

	now := e.now().UTC()
	updated := *current
	updated.Status = status
	updated.PendingSince = time.Time{}
	if status == StatusPending {
		updated.PendingSince = now
	}
	updated.UpdatedAt = now
	if err := e.store.UpdateCommitment(ctx, updated); err != nil {
		return nil, e.writeError(ctx, err, updated)
	}

	e.log.WithFields(logrus.Fields{
		"commitment_id": id,
		"from":          current.Status,
		"to":            status,
	}).Info("reservation status changed")
	e.publish(ctx, EventCommitmentStatusChanged, commitmentEvent(updated, current))
	return &updated, nil
}

// Cancel is the guest-initiated cancellation.
func (e *Engine) Cancel(ctx context.Context, id string) (*Commitment, error) {
	return e.UpdateStatus(ctx, id, StatusCancelled)
}

// Archive soft-deletes a reservation. Archived reservations never conflict.
func (e *Engine) Archive(ctx context.Context, id string) (*Commitment, error) {
	unlockRow, err := e.lockCommitment(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlockRow()

	current, err := e.store.GetCommitment(ctx, id)
	if err != nil {
		return nil, internal("failed to load reservation", err)
	}
	if current == nil {
		return nil, notFound("Reservation", id)
	}
	if current.Archived {
		return current, nil
	}
	updated := *current
	updated.Archived = true
	updated.UpdatedAt = e.now().UTC()
	if err := e.store.UpdateCommitment(ctx, updated); err != nil {
		return nil, e.writeError(ctx, err, updated)
	}
	e.publish(ctx, EventCommitmentArchived, commitmentEvent(updated, current))
	return &updated, nil
}

// ExpirePending cancels unpaid reservations that have been pending since
// before cutoff and returns the ones it cancelled. Without a payment settler
// nothing can ever pay for a pending reservation, so nothing expires.
func (e *Engine) ExpirePending(ctx context.Context, cutoff time.Time) ([]Commitment, error) {
	if e.payments == nil {
		return nil, nil
	}
	pending, err := e.store.ListCommitments(ctx, CommitmentFilter{Statuses: []CommitmentStatus{StatusPending}})
	if err != nil {
		return nil, internal("failed to list pending reservations", err)
	}

	var (
		expired []Commitment
		errs    []error
	)
	for _, c := range pending {
		if !c.StalePending(cutoff) {
			continue
		}
		updated, err := e.expireOne(ctx, c.ID, cutoff)
		if err != nil {
			e.log.WithError(err).WithField("commitment_id", c.ID).Error("failed to expire pending reservation")
			errs = append(errs, err)
			continue
		}
		if updated != nil {
			expired = append(expired, *updated)
		}
	}
	return expired, errors.Join(errs...)
}

// expireOne re-checks a listed reservation under its lock; it returns nil,
// nil when the row changed since it was listed.
func (e *Engine) expireOne(ctx context.Context, id string, cutoff time.Time) (*Commitment, error) {
	unlock, err := e.lockCommitment(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	current, err := e.store.GetCommitment(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil || !current.StalePending(cutoff) {
		return nil, nil
	}
	updated := *current
	updated.Status = StatusCancelled
	updated.PendingSince = time.Time{}
	updated.UpdatedAt = e.now().UTC()
	if err := e.store.UpdateCommitment(ctx, updated); err != nil {
		return nil, err
	}
	e.publish(ctx, EventCommitmentStatusChanged, commitmentEvent(updated, current))
	return &updated, nil
}

// =============================================================================
// BOOKING
// =============================================================================

// BookingRequest is a guest submission.
type BookingRequest struct {
	CheckIn       generic.Date
	CheckOut      generic.Date
	Adults        int
	Children      int
	VehicleLength *int
	VehicleYear   *int
	CampingUnit   string
	SiteID        generic.ResourceID // optional
	SiteType      SiteType           // optional
	Guest         Guest
	Total         *decimal.Decimal // opaque total; nil means nightly rate x nights
	PaymentMethod string
}

func (r BookingRequest) Query() AvailabilityQuery {
	return AvailabilityQuery{
		CheckIn:       r.CheckIn,
		CheckOut:      r.CheckOut,
		PartySize:     r.Adults + r.Children,
		VehicleLength: r.VehicleLength,
		SiteID:        r.SiteID,
		SiteType:      r.SiteType,
	}
}

// BookingResult is a written reservation. PaymentError is set when
// settlement failed and the reservation was left pending.
type BookingResult struct {
	Commitment   Commitment
	Site         Site
	Payment      *SettlementResult
	PaymentError string
}

// Book resolves availability, then walks the eligible sites in order,
// re-resolving each under its lock until one accepts the reservation.
func (e *Engine) Book(ctx context.Context, req BookingRequest) (_ *BookingResult, err error) {
	ctx, span := e.tracer.Start(ctx, "Engine.Book", trace.WithAttributes(
		attribute.String("check_in", req.CheckIn.String()),
		attribute.String("check_out", req.CheckOut.String()),
		attribute.Int("party_size", req.Adults+req.Children),
	))
	defer func() { endSpan(span, err) }()

	if req.Adults < 1 {
		return nil, invalidRequest("At least one adult is required")
	}
	if req.Children < 0 {
		return nil, invalidRequest("Children cannot be negative")
	}

	snap, err := e.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	quote := Resolve(req.Query(), snap)
	if !quote.Available {
		return nil, fromAvailability(quote)
	}

	recommended, _ := quote.Recommended()
	for _, site := range quote.EligibleSites {
		c, err := e.tryBook(ctx, req, site)
		if err != nil {
			return nil, err
		}
		if c == nil {
			continue
		}
		result := &BookingResult{Commitment: *c, Site: site}
		span.SetAttributes(attribute.String("site.id", string(site.ID)))
		e.log.WithFields(logrus.Fields{
			"commitment_id":    c.ID,
			"site_id":          site.ID,
			"recommended_site": recommended.ID,
			"check_in":         c.CheckIn.String(),
			"check_out":        c.CheckOut.String(),
		}).Info("reservation created")
		e.publish(ctx, EventCommitmentCreated, commitmentEvent(*c, nil))
		e.settle(ctx, result, req.PaymentMethod)
		return result, nil
	}

	return nil, &MutationError{
		Kind:    generic.KindConflict,
		Message: "No sites are available for the selected dates",
	}
}

// tryBook returns nil, nil when the site was taken since the quote.
func (e *Engine) tryBook(ctx context.Context, req BookingRequest, site Site) (*Commitment, error) {
	unlock, err := e.lockSites(ctx, site.ID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	snap, err := e.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	q := req.Query()
	q.SiteID = site.ID
	check := Resolve(q, snap)
	if !check.Available {
		e.log.WithField("site_id", site.ID).Debug("site taken between quote and commit")
		return nil, nil
	}

	total := site.QuoteNights(check.Nights)
	if req.Total != nil {
		total = *req.Total
	}
	now := e.now().UTC()
	c := Commitment{
		ID:            e.newID(),
		ResourceID:    site.ID,
		CheckIn:       req.CheckIn,
		CheckOut:      req.CheckOut,
		Status:        StatusPending,
		Adults:        req.Adults,
		Children:      req.Children,
		VehicleLength: req.VehicleLength,
		VehicleYear:   req.VehicleYear,
		CampingUnit:   req.CampingUnit,
		Guest:         req.Guest,
		Total:         total,
		PendingSince:  now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := e.store.CreateCommitment(ctx, c); err != nil {
		if generic.IsConflict(err) {
			e.log.WithError(err).WithField("site_id", site.ID).Warn("store rejected overlapping reservation")
			return nil, nil
		}
		e.log.WithError(err).WithField("site_id", site.ID).Error("failed to create reservation")
		return nil, internal("failed to create reservation", err)
	}
	return &c, nil
}

func (e *Engine) settle(ctx context.Context, result *BookingResult, paymentMethod string) {
	c := result.Commitment
	if e.payments == nil || !c.Total.IsPositive() {
		return
	}
	res, err := e.payments.Settle(ctx, SettlementRequest{
		CommitmentID:  c.ID,
		Amount:        c.Total,
		Currency:      e.currency,
		Description:   fmt.Sprintf("Site %s, %s to %s", result.Site.Label(), c.CheckIn, c.CheckOut),
		PaymentMethod: paymentMethod,
		Email:         c.Guest.Email,
	})
	if err != nil {
		e.log.WithError(err).WithField("commitment_id", c.ID).Warn("payment failed, reservation left pending")
		result.PaymentError = "Payment could not be completed; the reservation is pending"
		return
	}
	result.Payment = &res

	confirmed, before, err := e.recordPayment(ctx, c.ID, res.Reference)
	if err != nil {
		e.log.WithError(err).WithField("commitment_id", c.ID).Error("payment settled but confirmation failed")
		result.PaymentError = "Payment was received but the reservation could not be confirmed"
		return
	}
	result.Commitment = *confirmed
	if before.Status != confirmed.Status {
		e.publish(ctx, EventCommitmentStatusChanged, commitmentEvent(*confirmed, before))
	}
}

// recordPayment stores the payment reference on the latest version of the
// reservation. Only a reservation that is still pending becomes confirmed;
// site, dates and any status an admin set meanwhile are kept.
func (e *Engine) recordPayment(ctx context.Context, id, ref string) (*Commitment, *Commitment, error) {
	unlock, err := e.lockCommitment(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	defer unlock()

	current, err := e.store.GetCommitment(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if current == nil {
		return nil, nil, fmt.Errorf("reservation %s disappeared during payment", id)
	}
	updated := *current
	updated.PaymentRef = ref
	if updated.Status == StatusPending {
		updated.Status = StatusConfirmed
		updated.PendingSince = time.Time{}
	}
	updated.UpdatedAt = e.now().UTC()
	if err := e.store.UpdateCommitment(ctx, updated); err != nil {
		return nil, nil, err
	}
	return &updated, current, nil
}

// =============================================================================
// BLACKOUTS
// =============================================================================

// BlockRequest places a blackout. An empty SiteID means every site.
type BlockRequest struct {
	SiteID generic.ResourceID
	Start  generic.Date
	End    generic.Date // inclusive
	Reason string
}

// CreateBlock rejects a blackout that would cover an existing reservation.
func (e *Engine) CreateBlock(ctx context.Context, req BlockRequest) (_ *Block, err error) {
	ctx, span := e.tracer.Start(ctx, "Engine.CreateBlock", trace.WithAttributes(
		attribute.String("site.id", string(req.SiteID)),
	))
	defer func() { endSpan(span, err) }()

	now := e.now().UTC()
	b := Block{
		ID:         e.newID(),
		ResourceID: req.SiteID.Normalize(),
		Start:      req.Start,
		End:        req.End,
		Reason:     req.Reason,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if !b.Period().Valid() {
		return nil, &MutationError{Kind: generic.KindInvalidRange, Message: "End date must be on or after start date"}
	}

	unlock, err := e.lockBlockScope(ctx, b)
	if err != nil {
		return nil, err
	}
	defer unlock()

	snap, err := e.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if v := ValidateBlock(b, snap); !v.Valid {
		return nil, fromValidation(v)
	}
	if err := e.store.SaveBlock(ctx, b); err != nil {
		e.log.WithError(err).Error("failed to save blackout")
		return nil, internal("failed to save blackout", err)
	}

	e.log.WithFields(logrus.Fields{
		"block_id": b.ID,
		"site_id":  b.ResourceID,
		"period":   b.Period().String(),
	}).Info("blackout created")
	e.publish(ctx, EventBlockCreated, blockEvent(b))
	return &b, nil
}

// MoveBlock moves or resizes a blackout. A placement is accepted exactly when
// CreateBlock would accept it.
func (e *Engine) MoveBlock(ctx context.Context, id string, req BlockRequest) (_ *Block, err error) {
	ctx, span := e.tracer.Start(ctx, "Engine.MoveBlock", trace.WithAttributes(
		attribute.String("block.id", id),
		attribute.String("site.id", string(req.SiteID)),
	))
	defer func() { endSpan(span, err) }()

	existing, err := e.store.GetBlock(ctx, id)
	if err != nil {
		return nil, internal("failed to load blackout", err)
	}
	if existing == nil {
		return nil, notFound("Blackout", id)
	}

	moved := *existing
	moved.ResourceID = req.SiteID.Normalize()
	moved.Start, moved.End = req.Start, req.End
	if req.Reason != "" {
		moved.Reason = req.Reason
	}
	moved.UpdatedAt = e.now().UTC()
	if !moved.Period().Valid() {
		return nil, &MutationError{Kind: generic.KindInvalidRange, Message: "End date must be on or after start date"}
	}

	unlock, err := e.lockBlockScope(ctx, moved)
	if err != nil {
		return nil, err
	}
	defer unlock()

	snap, err := e.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if v := ValidateBlock(moved, snap); !v.Valid {
		return nil, fromValidation(v)
	}
	if err := e.store.SaveBlock(ctx, moved); err != nil {
		e.log.WithError(err).WithField("block_id", id).Error("failed to save blackout")
		return nil, internal("failed to save blackout", err)
	}
	e.publish(ctx, EventBlockMoved, blockEvent(moved))
	return &moved, nil
}

func (e *Engine) DeleteBlock(ctx context.Context, id string) error {
	existing, err := e.store.GetBlock(ctx, id)
	if err != nil {
		return internal("failed to load blackout", err)
	}
	if existing == nil {
		return notFound("Blackout", id)
	}
	if err := e.store.DeleteBlock(ctx, id); err != nil {
		return internal("failed to delete blackout", err)
	}
	e.publish(ctx, EventBlockDeleted, blockEvent(*existing))
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func (e *Engine) loadCommitment(ctx context.Context, id string) (*Commitment, error) {
	c, err := e.store.GetCommitment(ctx, id)
	if err != nil {
		e.log.WithError(err).WithField("commitment_id", id).Error("failed to load reservation")
		return nil, internal("failed to load reservation", err)
	}
	if c == nil {
		return nil, notFound("Reservation", id)
	}
	if c.Archived {
		return nil, invalidRequest("Reservation " + id + " is archived")
	}
	return c, nil
}

// lockSites acquires the site locks in sorted order. Unassigned ids are skipped.
func (e *Engine) lockSites(ctx context.Context, ids ...generic.ResourceID) (func(), error) {
	seen := make(map[string]bool, len(ids))
	var keys []string
	for _, id := range ids {
		if id.IsUnassigned() {
			continue
		}
		key := siteLockKey(id)
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	var unlocks []func()
	release := func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}
	for _, key := range keys {
		unlock, err := e.locker.Lock(ctx, key)
		if err != nil {
			release()
			e.log.WithError(err).WithField("key", key).Warn("failed to acquire site lock")
			return nil, internal("failed to acquire site lock", err)
		}
		unlocks = append(unlocks, unlock)
	}
	return release, nil
}

// lockCommitment serializes rewrites of one reservation.
func (e *Engine) lockCommitment(ctx context.Context, id string) (func(), error) {
	unlock, err := e.locker.Lock(ctx, commitmentLockKey(id))
	if err != nil {
		e.log.WithError(err).WithField("commitment_id", id).Warn("failed to acquire reservation lock")
		return nil, internal("failed to acquire reservation lock", err)
	}
	return unlock, nil
}

// lockBlockScope locks the block's site, or every site for a global block.
func (e *Engine) lockBlockScope(ctx context.Context, b Block) (func(), error) {
	if !b.IsGlobal() {
		return e.lockSites(ctx, b.ResourceID)
	}
	sites, err := e.store.ListSites(ctx)
	if err != nil {
		return nil, internal("failed to list sites", err)
	}
	ids := make([]generic.ResourceID, 0, len(sites))
	for _, s := range sites {
		ids = append(ids, s.ID)
	}
	return e.lockSites(ctx, ids...)
}

// writeError turns a failed commitment write into a MutationError. Store
// overlap rejections become Conflicts naming whoever won the race.
func (e *Engine) writeError(ctx context.Context, err error, c Commitment) error {
	if !generic.IsConflict(err) {
		e.log.WithError(err).WithField("commitment_id", c.ID).Error("failed to write reservation")
		return internal("failed to save reservation", err)
	}

	me := &MutationError{
		Kind:    generic.KindConflict,
		Message: "The site is no longer available for these dates",
		Err:     err,
	}
	if snap, loadErr := LoadSnapshot(ctx, e.store); loadErr == nil {
		cs := FindCommitmentConflicts(c.ID, c.ResourceID, c.CheckIn, c.CheckOut, snap.Commitments)
		if len(cs) > 0 {
			me.Message = reservationConflictMessage(cs[0])
			me.Conflicts = reservationItems(cs)
		}
	}
	return me
}

func (e *Engine) publish(ctx context.Context, t EventType, payload eventPayload) {
	if e.events == nil {
		return
	}
	event := Event{
		ID:         e.newID(),
		Type:       t,
		Key:        payload.key(),
		OccurredAt: e.now().UTC(),
		Payload:    payload,
	}
	if err := e.events.Publish(ctx, event); err != nil {
		e.log.WithError(err).WithField("event_type", t).Warn("failed to publish event")
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
