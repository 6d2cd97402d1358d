/*
Package attendance provides the core time-attendance engine.

PURPOSE:
  This package contains the domain types and algorithms for heartbeat-based
  presence tracking. A lightweight agent reports one heartbeat per minute;
  the engine turns those into day-keyed ledger entries, classifies each day
  (workday, weekend, leave, holiday), and computes required-vs-recorded
  balances over arbitrary reporting periods.

KEY CONCEPTS IN THIS FILE (types.go):
  - Category: Closed enumeration of day types, carrying precedence
  - Settings: The single reporting configuration (device, period, hours)
  - Entry: One ledger row per calendar day (recorded vs required minutes)
  - Correction: Manual minute override layered on top of the raw ledger

DESIGN PRINCIPLES:
  1. Day-keyed: One Entry per date; heartbeats only ever increment it
  2. Precision: decimal.Decimal for working hours (7.5h stays exact)
  3. Precedence: Category upgrades are explicit, never accidental
  4. Two writers: Required minutes are written only by settings apply
     and holiday apply; nothing else touches that column

USAGE:
  engine := attendance.NewEngine(store)
  entry, err := engine.RecordHeartbeat(ctx, "LAPTOP-01")

SEE ALSO:
  - calendar.go: Day classification and required-minute table
  - engine.go: Accrual engine (heartbeats, settings, holidays)
  - summary.go: Monthly summaries and period balances
*/
package attendance

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CATEGORY - Closed enumeration of day types
// =============================================================================

// Category classifies a ledger day. The numeric values are the stored wire
// format and must not change.
type Category int

const (
	CategoryWorkday   Category = 0
	CategoryWeekend   Category = 1
	CategoryHalfLeave Category = 10
	CategoryFullLeave Category = 11
	CategoryHoliday   Category = 90
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryWorkday, CategoryWeekend, CategoryHalfLeave, CategoryFullLeave, CategoryHoliday:
		return true
	}
	return false
}

// Precedence orders categories for upgrades. A day's category is only
// replaced by one of strictly higher precedence; lower or equal is a no-op.
//
//	holiday > full-day leave > half-day leave > workday > weekend
//
// Note this is NOT the numeric order of the wire values: weekend stores as 1
// but ranks below workday (0).
func (c Category) Precedence() int {
	switch c {
	case CategoryHoliday:
		return 4
	case CategoryFullLeave:
		return 3
	case CategoryHalfLeave:
		return 2
	case CategoryWorkday:
		return 1
	case CategoryWeekend:
		return 0
	default:
		return -1
	}
}

// IsLeave reports whether c is one of the leave types (not a holiday).
func (c Category) IsLeave() bool {
	return c == CategoryHalfLeave || c == CategoryFullLeave
}

// IsTimeOff reports whether c is a holiday or leave day. These are the
// categories listed on the settings page and deletable via the holiday API.
func (c Category) IsTimeOff() bool {
	return c == CategoryHoliday || c == CategoryFullLeave || c == CategoryHalfLeave
}

func (c Category) String() string {
	switch c {
	case CategoryWorkday:
		return "workday"
	case CategoryWeekend:
		return "weekend"
	case CategoryHalfLeave:
		return "leave_half"
	case CategoryFullLeave:
		return "leave_full"
	case CategoryHoliday:
		return "holiday"
	default:
		return "unknown"
	}
}

// =============================================================================
// SETTINGS - The single reporting configuration
// =============================================================================

// Settings holds the reporting configuration. There is exactly one settings
// row per installation; every value is always populated (defaults are
// created on first write).
type Settings struct {
	DeviceID          string
	WorkingDays       WorkingDays
	DailyWorkingHours decimal.Decimal
	StartDate         TimePoint
	EndDate           TimePoint
	UpdatedAt         time.Time
}

// DailyRequiredMinutes converts the configured working hours to whole
// minutes, truncating (7.75h -> 465m, 7.5h -> 450m).
func (s Settings) DailyRequiredMinutes() int {
	return int(s.DailyWorkingHours.Mul(decimal.NewFromInt(60)).IntPart())
}

// Period returns the reporting period [StartDate, EndDate].
func (s Settings) Period() Period {
	return Period{Start: s.StartDate, End: s.EndDate}
}

// DefaultSettings returns the configuration created when none exists:
// device "DEFAULT", Monday-Friday, 8 hours, first of the current month
// through the end of the current year.
func DefaultSettings(now time.Time) Settings {
	return Settings{
		DeviceID:          "DEFAULT",
		WorkingDays:       DefaultWorkingDays(),
		DailyWorkingHours: decimal.NewFromInt(8),
		StartDate:         StartOfMonth(now.Year(), now.Month()),
		EndDate:           EndOfYear(now.Year()),
		UpdatedAt:         now.UTC(),
	}
}

// =============================================================================
// ENTRY - One ledger row per calendar day
// =============================================================================

// Entry is a day ledger row. TimeRecorded only ever grows through heartbeats
// or is overridden via a Correction; TimeRequired is a materialized value
// recomputed by settings apply and holiday apply.
type Entry struct {
	Date         TimePoint
	DeviceID     string
	Category     Category
	TimeRecorded int // minutes
	TimeRequired int // minutes
	Description  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Balance returns recorded minus required minutes for this day.
func (e Entry) Balance() int {
	return e.TimeRecorded - e.TimeRequired
}

// =============================================================================
// CORRECTION - Manual minute override
// =============================================================================

// Correction overrides the recorded minutes of one day for balance
// purposes. The raw heartbeat count on the Entry is never destroyed;
// removing the correction restores it.
type Correction struct {
	ID               string
	Date             TimePoint
	CorrectedMinutes int
	Reason           string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// EffectiveMinutes returns the minutes to use for balance computation:
// the correction's value when one exists, otherwise the entry's recorded
// minutes. Either argument may be nil.
func EffectiveMinutes(entry *Entry, correction *Correction) int {
	if correction != nil {
		return correction.CorrectedMinutes
	}
	if entry != nil {
		return entry.TimeRecorded
	}
	return 0
}
