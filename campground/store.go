/*
store.go - Collaborator interfaces for the write path

KEY INTERFACES:
  Store:          sites, commitments and blocks persistence
  Locker:         per-site mutual exclusion
  Publisher:      best-effort domain events
  PaymentSettler: settles an opaque booking total

OVERLAP CONTRACT:
  CreateCommitment and UpdateCommitment must reject a write that would leave
  two occupying, non-archived commitments on the same site with overlapping
  ranges, returning *generic.OverlapError. The engine checks first; this is
  the guarantee that holds when two writers race past the check.

MISSING ROWS:
  Get* methods return (nil, nil) when the row does not exist.

IMPLEMENTATIONS:
  - campground/store: in-memory
  - store/sqlite: triggers
  - store/postgres: EXCLUDE constraint
*/
package campground

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/campsite-engine/generic"
)

// =============================================================================
// STORE
// =============================================================================

type Store interface {
	SaveSite(ctx context.Context, site Site) error
	GetSite(ctx context.Context, id generic.ResourceID) (*Site, error)
	ListSites(ctx context.Context) ([]Site, error)

	CreateCommitment(ctx context.Context, c Commitment) error
	UpdateCommitment(ctx context.Context, c Commitment) error
	GetCommitment(ctx context.Context, id string) (*Commitment, error)
	ListCommitments(ctx context.Context, filter CommitmentFilter) ([]Commitment, error)

	SaveBlock(ctx context.Context, b Block) error
	GetBlock(ctx context.Context, id string) (*Block, error)
	DeleteBlock(ctx context.Context, id string) error
	ListBlocks(ctx context.Context) ([]Block, error)

	// Reset clears all data (for demo scenarios and tests).
	Reset(ctx context.Context) error
}

// TxStore is a Store that can run several writes atomically.
type TxStore interface {
	Store

	// WithTx executes fn within a transaction.
	// If fn returns error, the transaction is rolled back.
	WithTx(ctx context.Context, fn func(Store) error) error
}

// WithinTx runs fn in a transaction when the store supports one, and
// directly otherwise.
func WithinTx(ctx context.Context, store Store, fn func(Store) error) error {
	if tx, ok := store.(TxStore); ok {
		return tx.WithTx(ctx, fn)
	}
	return fn(store)
}

// CommitmentFilter narrows ListCommitments. The zero value lists every
// non-archived commitment.
type CommitmentFilter struct {
	Window          *generic.DateRange // overlapping this range
	Statuses        []CommitmentStatus // any of these; empty means all
	IncludeArchived bool
}

// Match applies the filter to one commitment.
func (f CommitmentFilter) Match(c Commitment) bool {
	if c.Archived && !f.IncludeArchived {
		return false
	}
	if f.Window != nil && !f.Window.Overlaps(c.Range()) {
		return false
	}
	if len(f.Statuses) == 0 {
		return true
	}
	for _, s := range f.Statuses {
		if c.Status == s {
			return true
		}
	}
	return false
}

// LoadSnapshot reads everything the read-side functions need.
func LoadSnapshot(ctx context.Context, store Store) (Snapshot, error) {
	sites, err := store.ListSites(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	commitments, err := store.ListCommitments(ctx, CommitmentFilter{})
	if err != nil {
		return Snapshot{}, err
	}
	blocks, err := store.ListBlocks(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Sites: sites, Commitments: commitments, Blocks: blocks}, nil
}

// =============================================================================
// LOCKER
// =============================================================================

// Locker serializes writers per key. The returned func releases the lock.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

func siteLockKey(id generic.ResourceID) string { return "campground:site:" + string(id) }

// commitmentLockKey guards read-modify-write of one reservation. It is always
// taken before any site key.
func commitmentLockKey(id string) string { return "campground:commitment:" + id }

// =============================================================================
// EVENTS
// =============================================================================

type EventType string

const (
	EventCommitmentCreated       EventType = "commitment.created"
	EventCommitmentAssigned      EventType = "commitment.assigned"
	EventCommitmentMoved         EventType = "commitment.moved"
	EventCommitmentStatusChanged EventType = "commitment.status_changed"
	EventCommitmentArchived      EventType = "commitment.archived"
	EventBlockCreated            EventType = "block.created"
	EventBlockMoved              EventType = "block.moved"
	EventBlockDeleted            EventType = "block.deleted"
)

// Event is published after a successful write.
type Event struct {
	ID         string
	Type       EventType
	Key        string // partition key: the site id, or the entity id when unassigned
	OccurredAt time.Time
	Payload    any
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// =============================================================================
// PAYMENTS
// =============================================================================

type SettlementRequest struct {
	CommitmentID  string
	Amount        decimal.Decimal
	Currency      string
	Description   string
	PaymentMethod string
	Email         string
}

type SettlementResult struct {
	Reference string
	Status    string
}

// PaymentSettler settles an already-priced total. Pricing is the caller's.
type PaymentSettler interface {
	Settle(ctx context.Context, req SettlementRequest) (SettlementResult, error)
}
