package attendance

import "time"

// =============================================================================
// PERIOD - The time boundary for summaries and balances
// =============================================================================

// Period is an inclusive day range [Start, End]. Balances are always
// computed for a period, never at a bare point in time.
type Period struct {
	Start TimePoint
	End   TimePoint
}

// MonthPeriod returns the period covering one calendar month.
func MonthPeriod(year int, month time.Month) Period {
	return Period{Start: StartOfMonth(year, month), End: EndOfMonth(year, month)}
}

// Contains returns true if the day is within the period [Start, End].
func (p Period) Contains(t TimePoint) bool {
	return t.AfterOrEqual(p.Start) && t.BeforeOrEqual(p.End)
}

// Days returns all days in the period as a slice of TimePoints.
func (p Period) Days() []TimePoint {
	var days []TimePoint
	current := p.Start
	for current.BeforeOrEqual(p.End) {
		days = append(days, current)
		current = current.AddDays(1)
	}
	return days
}

// Months returns the first day of every calendar month the period touches,
// in order. The dashboard renders one card per element.
func (p Period) Months() []TimePoint {
	var months []TimePoint
	current := StartOfMonth(p.Start.Year(), p.Start.Month())
	for current.BeforeOrEqual(p.End) {
		months = append(months, current)
		current = current.AddMonths(1)
	}
	return months
}

// ClampEnd returns the period with End capped at the given day. Used to
// exclude future days from balance computation.
func (p Period) ClampEnd(t TimePoint) Period {
	return Period{Start: p.Start, End: p.End.Min(t)}
}

// Valid reports whether Start does not come after End.
func (p Period) Valid() bool {
	return !p.Start.IsZero() && !p.End.IsZero() && p.Start.BeforeOrEqual(p.End)
}

// String returns a string representation of the period.
func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// Label returns the human reporting-period label used by the dashboard,
// e.g. "Jan 01, 2025 to Dec 31, 2025".
func (p Period) Label() string {
	return p.Start.Format("Jan 02, 2006") + " to " + p.End.Format("Jan 02, 2006")
}
