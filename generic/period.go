package generic

// =============================================================================
// PERIOD - Inclusive [Start, End] day range
// =============================================================================

// Period is an inclusive range of days. Administrators think about blackouts
// this way ("closed Dec 20 through Dec 27"), so blocks are stored as Periods
// and converted with Exclusive before any comparison with a stay.
type Period struct {
	Start Date
	End   Date
}

// Valid is true when the period covers at least one day.
func (p Period) Valid() bool { return !p.End.Before(p.Start) }

// Contains returns true if d is within [Start, End].
func (p Period) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// Exclusive returns the half-open range covering the same days.
func (p Period) Exclusive() DateRange {
	return DateRange{Start: p.Start, End: ToExclusiveEnd(p.End)}
}

// Len is the number of days covered, zero for invalid periods.
func (p Period) Len() int {
	if !p.Valid() {
		return 0
	}
	return DaysBetween(p.Start, p.End) + 1
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// PeriodOf is the inverse of Exclusive for valid ranges.
func PeriodOf(r DateRange) Period {
	return Period{Start: r.Start, End: r.LastNight()}
}
