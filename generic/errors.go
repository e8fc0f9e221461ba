/*
errors.go - Error kinds shared by the engine and its storage adapters

PURPOSE:
  One taxonomy for every caller. Read-side components report a Kind inside
  their result values; write-side operations return errors that unwrap to
  the matching sentinel so callers can branch with errors.Is.

ERROR KINDS:
  InvalidRange      end not after start, or below the minimum stay
  SiteNotFound      referenced site does not exist
  SiteInactive      referenced site is deactivated
  CapacityExceeded  no site fits the party (distinct from Conflict)
  Conflict          overlapping commitment or block
  NotFound          referenced commitment/block does not exist
  Invalid           request is malformed for the current state

STORAGE:
  Stores translate their own uniqueness violations (trigger abort, exclusion
  constraint, in-memory check) into *OverlapError. The write path treats it
  exactly like a Conflict found during validation.

SEE ALSO:
  - campground/errors.go: MutationError carrying conflicting calendar items
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// KINDS
// =============================================================================

type Kind string

const (
	KindNone             Kind = ""
	KindInvalidRange     Kind = "invalid_range"
	KindSiteNotFound     Kind = "site_not_found"
	KindSiteInactive     Kind = "site_inactive"
	KindCapacityExceeded Kind = "capacity_exceeded"
	KindConflict         Kind = "conflict"
	KindNotFound         Kind = "not_found"
	KindInvalid          Kind = "invalid"
	KindInternal         Kind = "internal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	ErrInvalidRange     = errors.New("invalid date range")
	ErrSiteNotFound     = errors.New("site not found")
	ErrSiteInactive     = errors.New("site inactive")
	ErrCapacityExceeded = errors.New("capacity exceeded")
	ErrConflict         = errors.New("conflict")
	ErrNotFound         = errors.New("not found")
	ErrInvalid          = errors.New("invalid request")
)

// Sentinel returns the sentinel error for a kind, nil for KindNone and
// unknown kinds.
func (k Kind) Sentinel() error {
	switch k {
	case KindInvalidRange:
		return ErrInvalidRange
	case KindSiteNotFound:
		return ErrSiteNotFound
	case KindSiteInactive:
		return ErrSiteInactive
	case KindCapacityExceeded:
		return ErrCapacityExceeded
	case KindConflict:
		return ErrConflict
	case KindNotFound:
		return ErrNotFound
	case KindInvalid:
		return ErrInvalid
	default:
		return nil
	}
}

// KindOf classifies err. Unclassified errors are KindInternal.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrInvalidRange):
		return KindInvalidRange
	case errors.Is(err, ErrSiteNotFound):
		return KindSiteNotFound
	case errors.Is(err, ErrSiteInactive):
		return KindSiteInactive
	case errors.Is(err, ErrCapacityExceeded):
		return KindCapacityExceeded
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalid):
		return KindInvalid
	default:
		return KindInternal
	}
}

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// OverlapError is returned by stores when a write would give a resource two
// overlapping occupying commitments.
type OverlapError struct {
	ResourceID ResourceID
	Range      DateRange
	ExistingID string // empty when the store cannot tell which row collided
}

func (e *OverlapError) Error() string {
	if e.ExistingID == "" {
		return fmt.Sprintf("resource %s already occupied during %s", e.ResourceID, e.Range)
	}
	return fmt.Sprintf("resource %s already occupied during %s (by %s)", e.ResourceID, e.Range, e.ExistingID)
}

func (e *OverlapError) Unwrap() error { return ErrConflict }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to the request rather than
// the system.
func IsClientError(err error) bool {
	switch KindOf(err) {
	case KindInvalidRange, KindSiteInactive, KindCapacityExceeded, KindInvalid:
		return true
	default:
		return false
	}
}

// IsNotFound returns true if the error indicates a missing site, commitment or block.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrSiteNotFound)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
