package campground

import (
	"errors"

	"github.com/warp/campsite-engine/generic"
)

// MutationError is returned by every failed write. It unwraps to the
// sentinel for its Kind, so errors.Is(err, generic.ErrConflict) works, and
// carries the items that caused a conflict for display.
type MutationError struct {
	Kind      generic.Kind
	Message   string
	Conflicts []CalendarItem
	Err       error // underlying cause, if any
}

func (e *MutationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *MutationError) Unwrap() []error {
	var errs []error
	if s := e.Kind.Sentinel(); s != nil {
		errs = append(errs, s)
	}
	// Inactive sites and short stays are reported to writers as Invalid too.
	if e.Kind == generic.KindSiteInactive || e.Kind == generic.KindInvalidRange {
		errs = append(errs, generic.ErrInvalid)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func fromValidation(v ValidationResult) *MutationError {
	return &MutationError{Kind: v.Kind, Message: v.Error, Conflicts: v.Conflicts}
}

func fromAvailability(r AvailabilityResult) *MutationError {
	return &MutationError{Kind: r.Kind, Message: r.Message, Conflicts: r.Conflicts}
}

func notFound(what, id string) *MutationError {
	return &MutationError{Kind: generic.KindNotFound, Message: what + " " + id + " not found"}
}

func invalidRequest(msg string) *MutationError {
	return &MutationError{Kind: generic.KindInvalid, Message: msg}
}

func internal(msg string, err error) *MutationError {
	return &MutationError{Kind: generic.KindInternal, Message: msg, Err: err}
}

// ConflictsOf extracts the conflicting items from a write error.
func ConflictsOf(err error) []CalendarItem {
	var me *MutationError
	if errors.As(err, &me) {
		return me.Conflicts
	}
	return nil
}
