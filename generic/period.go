package generic

// =============================================================================
// DATE RANGE - Inclusive span of calendar days
// =============================================================================

// DateRange is the closed interval [Start, End].
type DateRange struct {
	Start Date
	End   Date
}

func NewDateRange(start, end Date) DateRange { return DateRange{Start: start, End: end} }

// Validate fails with InvalidRangeError when Start is after End.
func (r DateRange) Validate() error {
	if r.Start.After(r.End) {
		return &InvalidRangeError{Start: r.Start, End: r.End}
	}
	return nil
}

// Contains returns true if d is within [Start, End].
func (r DateRange) Contains(d Date) bool {
	return d.AfterOrEqual(r.Start) && d.BeforeOrEqual(r.End)
}

// Days returns every calendar day in the range; empty for an inverted range.
func (r DateRange) Days() []Date {
	var days []Date
	for current := r.Start; current.BeforeOrEqual(r.End); current = current.AddDays(1) {
		days = append(days, current)
	}
	return days
}

// Len is the number of calendar days covered.
func (r DateRange) Len() int {
	if r.Start.After(r.End) {
		return 0
	}
	return DaysBetween(r.Start, r.End) + 1
}

func (r DateRange) String() string {
	return "[" + r.Start.String() + ", " + r.End.String() + "]"
}
