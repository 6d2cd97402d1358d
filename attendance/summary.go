/*
summary.go - Read-side aggregation over the day ledger

PURPOSE:
  Computes the numbers the dashboard and the API show: one summary per
  calendar month and an overall balance for the reporting period.

KEY INSIGHT:
  Balance is computed for a PERIOD and only over days that have already
  happened. Future days contribute nothing - a month that has not started
  renders as a placeholder, and the days of the current month after today
  appear in the calendar but stay out of every total.

MISSING ROWS:
  Days without a ledger entry still count: a missing working day demands
  the full daily requirement and recorded zero, a missing non-working day
  demands nothing. This keeps the balance honest when the agent was off
  for a day, whether or not the period was ever materialized.

CORRECTIONS:
  Recorded minutes flow through the correction overlay: a corrected day
  contributes its corrected minutes and is flagged, the raw heartbeat
  count stays on the entry.

SEE ALSO:
  - engine.go: The write side producing the entries read here
  - format.go: Rendering of the minute totals
*/
package attendance

import (
	"context"
	"fmt"
	"time"
)

// =============================================================================
// AGGREGATOR - Computes summaries and balances from the store
// =============================================================================

// Aggregator computes read-side summaries. It never writes.
type Aggregator struct {
	store Store
	clock func() time.Time
}

func NewAggregator(store Store) *Aggregator {
	return &Aggregator{store: store, clock: time.Now}
}

func (a *Aggregator) today() TimePoint {
	return DateOf(a.clock())
}

// DaySummary is one calendar cell.
type DaySummary struct {
	Date        TimePoint
	Category    Category
	Description string
	Recorded    int
	Required    int
	Balance     int
	IsToday     bool
	IsFuture    bool
	Corrected   bool
}

// MonthlySummary is one month card: totals over the month's non-future
// days plus a cell per day.
type MonthlySummary struct {
	Month      TimePoint // first day of the month
	Label      string    // e.g. "June 2024"
	Recorded   int
	Required   int
	Balance    int
	IsComplete bool
	IsFuture   bool
	Days       []DaySummary
}

// PeriodBalance is the overall recorded-versus-required standing for a
// reporting period, future days excluded.
type PeriodBalance struct {
	Period   Period
	Recorded int
	Required int
	Balance  int
}

// MonthlySummary computes the summary for one calendar month. A month
// that has not started yet returns a placeholder with IsFuture set and
// no day cells.
func (a *Aggregator) MonthlySummary(ctx context.Context, year int, month time.Month, settings Settings) (*MonthlySummary, error) {
	today := a.today()
	first := StartOfMonth(year, month)

	summary := &MonthlySummary{
		Month: first,
		Label: first.Format("January 2006"),
	}

	if first.After(StartOfMonth(today.Year(), today.Month())) {
		summary.IsFuture = true
		return summary, nil
	}

	period := MonthPeriod(year, month)
	entries, corrections, err := a.load(ctx, period)
	if err != nil {
		return nil, err
	}

	daily := settings.DailyRequiredMinutes()
	for _, date := range period.Days() {
		entry, hasEntry := entries[date]
		correction, corrected := corrections[date]

		day := DaySummary{
			Date:      date,
			IsToday:   date.Equal(today),
			IsFuture:  date.After(today),
			Corrected: corrected,
		}

		if hasEntry {
			day.Category = entry.Category
			day.Description = entry.Description
		} else {
			day.Category = Classify(date, settings.WorkingDays, nil)
		}

		// Days after today show their category but stay out of the totals.
		if day.IsFuture {
			summary.Days = append(summary.Days, day)
			continue
		}

		if hasEntry {
			day.Required = entry.TimeRequired
		} else if day.Category == CategoryWorkday {
			day.Required = daily
		}
		var entryPtr *Entry
		if hasEntry {
			entryPtr = &entry
		}
		var correctionPtr *Correction
		if corrected {
			correctionPtr = &correction
		}
		day.Recorded = EffectiveMinutes(entryPtr, correctionPtr)
		day.Balance = day.Recorded - day.Required

		summary.Recorded += day.Recorded
		summary.Required += day.Required
		summary.Days = append(summary.Days, day)
	}

	summary.Balance = summary.Recorded - summary.Required
	// Complete means every day of the month has passed; the totals are final.
	summary.IsComplete = EndOfMonth(year, month).Before(today)
	return summary, nil
}

// MonthlySummaries computes one summary per month the period touches.
func (a *Aggregator) MonthlySummaries(ctx context.Context, period Period, settings Settings) ([]MonthlySummary, error) {
	if !period.Valid() {
		return nil, &RangeError{Start: period.Start, End: period.End}
	}

	var summaries []MonthlySummary
	for _, month := range period.Months() {
		summary, err := a.MonthlySummary(ctx, month.Year(), month.Month(), settings)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, *summary)
	}
	return summaries, nil
}

// PeriodBalance sums recorded and required minutes over [period.Start,
// period.End], skipping days after today. Missing working days count
// their full requirement; missing non-working days count nothing.
func (a *Aggregator) PeriodBalance(ctx context.Context, period Period, settings Settings) (*PeriodBalance, error) {
	if !period.Valid() {
		return nil, &RangeError{Start: period.Start, End: period.End}
	}

	today := a.today()
	entries, corrections, err := a.load(ctx, period)
	if err != nil {
		return nil, err
	}

	balance := &PeriodBalance{Period: period}
	daily := settings.DailyRequiredMinutes()
	for _, date := range period.Days() {
		if date.After(today) {
			continue
		}

		entry, hasEntry := entries[date]
		correction, corrected := corrections[date]

		if hasEntry {
			balance.Required += entry.TimeRequired
		} else if Classify(date, settings.WorkingDays, nil) == CategoryWorkday {
			balance.Required += daily
		}

		var entryPtr *Entry
		if hasEntry {
			entryPtr = &entry
		}
		var correctionPtr *Correction
		if corrected {
			correctionPtr = &correction
		}
		balance.Recorded += EffectiveMinutes(entryPtr, correctionPtr)
	}

	balance.Balance = balance.Recorded - balance.Required
	return balance, nil
}

func (a *Aggregator) load(ctx context.Context, period Period) (map[TimePoint]Entry, map[TimePoint]Correction, error) {
	entryRows, err := a.store.GetEntries(ctx, period)
	if err != nil {
		return nil, nil, fmt.Errorf("load entries %s: %w", period, err)
	}
	entries := make(map[TimePoint]Entry, len(entryRows))
	for _, entry := range entryRows {
		entries[entry.Date] = entry
	}

	correctionRows, err := a.store.GetCorrections(ctx, &period)
	if err != nil {
		return nil, nil, fmt.Errorf("load corrections %s: %w", period, err)
	}
	corrections := make(map[TimePoint]Correction, len(correctionRows))
	for _, correction := range correctionRows {
		corrections[correction.Date] = correction
	}

	return entries, corrections, nil
}
