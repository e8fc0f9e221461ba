/*
Package generic provides the resource-agnostic timeline primitives.

PURPOSE:
  Every question the availability engine answers ("is this site free?",
  "can this booking move?", "what does this blackout collide with?") reduces
  to comparing date ranges on a per-resource timeline. This package owns
  that arithmetic and knows nothing about campsites, guests or payments.

KEY CONCEPTS IN THIS FILE (time.go):
  - Date: a calendar day (UTC midnight, no time-of-day)
  - DateRange: a half-open range [Start, End) of nights
  - Overlaps / ToExclusiveEnd / ShiftPreservingDuration

HALF-OPEN RANGES:
  A stay from July 1 to July 4 occupies the nights of the 1st, 2nd and 3rd.
  The 4th is checkout day and can be somebody else's check-in day:

    [Jul 1, Jul 4)  and  [Jul 4, Jul 6)   -> no overlap (back-to-back)
    [Jul 1, Jul 4)  and  [Jul 3, Jul 5)   -> overlap on the night of Jul 3

SEE ALSO:
  - period.go: inclusive ranges (blackouts) and their conversion
  - errors.go: error kinds shared by the engine
*/
package generic

import (
	"fmt"
	"time"
)

// DateLayout is the wire and storage format for dates.
const DateLayout = "2006-01-02"

// =============================================================================
// DATE - A calendar day
// =============================================================================

// Date is a calendar day normalized to UTC midnight.
type Date struct {
	Time time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day, in t's own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD): %w", s, err)
	}
	return DateOf(t), nil
}

// MustParseDate is ParseDate for fixtures and tests.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Comparison
func (d Date) Before(other Date) bool        { return d.normalize().Before(other.normalize()) }
func (d Date) Equal(other Date) bool         { return d.normalize().Equal(other.normalize()) }
func (d Date) After(other Date) bool         { return d.normalize().After(other.normalize()) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.After(other) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.Before(other) }
func (d Date) IsZero() bool                  { return d.Time.IsZero() }

func (d Date) normalize() time.Time {
	return time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// AddDays uses calendar arithmetic, so month ends and Feb 29 are handled by time.AddDate.
func (d Date) AddDays(n int) Date { return Date{Time: d.normalize().AddDate(0, 0, n)} }

func (d Date) String() string { return d.normalize().Format(DateLayout) }

// MarshalText encodes as YYYY-MM-DD, so JSON carries plain date strings.
func (d Date) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DaysBetween returns the number of calendar days from `from` to `to`.
// Negative when to is before from.
func DaysBetween(from, to Date) int {
	hours := to.normalize().Sub(from.normalize()).Hours()
	if hours < 0 {
		return -int(-hours/24 + 0.5)
	}
	return int(hours/24 + 0.5)
}

// =============================================================================
// INTERVAL MATH
// =============================================================================

// Overlaps reports whether [startA, endA) and [startB, endB) share at least one night.
// Equal adjacent boundaries do not overlap.
func Overlaps(startA, endA, startB, endB Date) bool {
	return startA.Before(endB) && endA.After(startB)
}

// ToExclusiveEnd converts an inclusive last day into the exclusive boundary
// used by half-open ranges.
func ToExclusiveEnd(inclusiveEnd Date) Date {
	return inclusiveEnd.AddDays(1)
}

// ShiftPreservingDuration returns the end date that keeps the night count of
// [oldStart, oldEnd) when the range is moved to begin at newStart.
func ShiftPreservingDuration(oldStart, oldEnd, newStart Date) Date {
	return newStart.AddDays(DaysBetween(oldStart, oldEnd))
}

// =============================================================================
// DATE RANGE - Half-open [Start, End)
// =============================================================================

type DateRange struct {
	Start Date
	End   Date
}

func NewDateRange(start, end Date) DateRange { return DateRange{Start: start, End: end} }

// Valid is true for ranges of at least one night.
func (r DateRange) Valid() bool { return r.End.After(r.Start) }

// Nights is the number of nights covered, zero for invalid ranges.
func (r DateRange) Nights() int {
	if !r.Valid() {
		return 0
	}
	return DaysBetween(r.Start, r.End)
}

func (r DateRange) Overlaps(other DateRange) bool {
	return Overlaps(r.Start, r.End, other.Start, other.End)
}

// Contains reports whether the night starting on d is inside the range.
func (r DateRange) Contains(d Date) bool {
	return d.AfterOrEqual(r.Start) && d.Before(r.End)
}

// ShiftTo moves the range to start on newStart, keeping its length.
func (r DateRange) ShiftTo(newStart Date) DateRange {
	return DateRange{Start: newStart, End: ShiftPreservingDuration(r.Start, r.End, newStart)}
}

// LastNight is the inclusive form of the range's end.
func (r DateRange) LastNight() Date { return r.End.AddDays(-1) }

func (r DateRange) String() string {
	return "[" + r.Start.String() + ", " + r.End.String() + ")"
}
