/*
engine.go - Accrual engine for the day ledger

PURPOSE:
  The Engine owns every write to the attendance ledger. Heartbeats
  increment the day's recorded minutes, settings changes recompute the
  materialized required minutes, and holiday edits reclassify days under
  the category precedence rules.

CRITICAL INVARIANTS:
  1. DAY-KEYED: One entry per date, only ever upserted
  2. TWO WRITERS: Required minutes are written by ApplySettings /
     MaterializePeriod and the holiday operations, nothing else
  3. RECORDED SURVIVES: No operation but a heartbeat changes recorded
     minutes; corrections overlay them without destroying the raw count
  4. PRECEDENCE: A day's category is only upgraded, never silently
     downgraded (explicit DeleteHoliday is the one downgrade path)

WRITE PATH SELF-HEAL:
  Holiday operations create default settings when none exist yet, so a
  fresh install can take holiday edits before the settings form was ever
  saved. Read paths never create anything.

SEE ALSO:
  - calendar.go: Classification and required-minute table
  - summary.go: Read-side aggregation over entries written here
  - store.go: Persistence interface
*/
package attendance

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
)

// =============================================================================
// ENGINE
// =============================================================================

// Engine performs all ledger mutations against a Store.
type Engine struct {
	store Store
	clock func() time.Time
}

// NewEngine creates an engine. When the store also implements TxStore,
// period materialization runs its bulk writes in one transaction.
func NewEngine(store Store) *Engine {
	return &Engine{store: store, clock: time.Now}
}

func (e *Engine) today() TimePoint {
	return DateOf(e.clock())
}

// =============================================================================
// HEARTBEAT
// =============================================================================

// RecordHeartbeat adds one minute of presence to today's entry, creating
// the row lazily with category workday. The day a heartbeat lands on is
// the server's local date. Heartbeats never reclassify an existing day:
// a minute recorded on a holiday stays on the holiday row.
func (e *Engine) RecordHeartbeat(ctx context.Context, deviceID string) (*Entry, error) {
	today := e.today()

	// Heartbeats work without configured settings; assume the default
	// requirement rather than creating a settings row from a device ping.
	dailyRequired := 8 * 60
	if settings, err := e.store.GetSettings(ctx); err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	} else if settings != nil {
		dailyRequired = settings.DailyRequiredMinutes()
	}

	entry, err := e.store.GetEntry(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("load entry %s: %w", today, err)
	}

	if entry == nil {
		entry = &Entry{
			Date:         today,
			DeviceID:     deviceID,
			Category:     CategoryWorkday,
			TimeRecorded: 1,
			TimeRequired: RequiredMinutes(CategoryWorkday, dailyRequired),
		}
	} else {
		entry.TimeRecorded++
	}

	if err := e.store.UpsertEntry(ctx, *entry); err != nil {
		return nil, fmt.Errorf("save entry %s: %w", today, err)
	}
	return entry, nil
}

// =============================================================================
// SETTINGS
// =============================================================================

// EnsureSettings returns the settings row, creating the defaults when none
// exists yet.
func (e *Engine) EnsureSettings(ctx context.Context) (*Settings, error) {
	settings, err := e.store.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if settings != nil {
		return settings, nil
	}

	defaults := DefaultSettings(e.clock())
	if err := e.store.SaveSettings(ctx, defaults); err != nil {
		return nil, fmt.Errorf("create default settings: %w", err)
	}
	log.Printf("[Engine] Created default settings (device=%s, period=%s)", defaults.DeviceID, defaults.Period())
	return &defaults, nil
}

// ApplySettings validates and saves the configuration, then recomputes the
// required minutes of every entry for the configured device from each
// row's existing category. Recorded minutes and categories are never
// touched, so applying the same settings twice is a no-op.
func (e *Engine) ApplySettings(ctx context.Context, s Settings) (*Settings, error) {
	if !s.DailyWorkingHours.IsPositive() {
		return nil, fmt.Errorf("daily working hours %s: %w", s.DailyWorkingHours, ErrInvalidRequirement)
	}
	if s.StartDate.IsZero() || s.EndDate.IsZero() {
		return nil, &ValidationError{Field: "period", Message: "start and end dates are required"}
	}
	if s.EndDate.Before(s.StartDate) {
		return nil, &RangeError{Start: s.StartDate, End: s.EndDate}
	}
	if s.DeviceID == "" {
		s.DeviceID = "DEFAULT"
	}
	s.WorkingDays = s.WorkingDays.Normalize()
	s.UpdatedAt = e.clock().UTC()

	if err := e.store.SaveSettings(ctx, s); err != nil {
		return nil, fmt.Errorf("save settings: %w", err)
	}

	// Recompute the materialized requirement from each row's category.
	entries, err := e.store.GetEntriesByDevice(ctx, s.DeviceID)
	if err != nil {
		return nil, fmt.Errorf("load entries: %w", err)
	}
	daily := s.DailyRequiredMinutes()
	for _, entry := range entries {
		required := RequiredMinutes(entry.Category, daily)
		if entry.TimeRequired == required {
			continue
		}
		entry.TimeRequired = required
		if err := e.store.UpsertEntry(ctx, entry); err != nil {
			return nil, fmt.Errorf("recompute entry %s: %w", entry.Date, err)
		}
	}

	return &s, nil
}

// MaterializePeriod writes a ledger row for every day of the settings
// period. Existing rows keep their category and recorded minutes and get
// the requirement recomputed; missing dates are created from the
// classifier. Orphaned rows from a renamed device are purged first.
//
// The whole range is written in one transaction when the store supports
// it; if that fails, rows are retried one at a time and failures are
// logged and skipped.
func (e *Engine) MaterializePeriod(ctx context.Context, s Settings) error {
	period := s.Period()
	if !period.Valid() {
		return &RangeError{Start: period.Start, End: period.End}
	}

	if err := e.purgeOrphans(ctx, s.DeviceID); err != nil {
		return err
	}

	existing, err := e.store.GetEntries(ctx, period)
	if err != nil {
		return fmt.Errorf("load entries: %w", err)
	}
	existingByDate := make(map[TimePoint]Entry, len(existing))
	for _, entry := range existing {
		existingByDate[entry.Date] = entry
	}

	timeOff, err := e.store.GetTimeOffEntries(ctx, &period)
	if err != nil {
		return fmt.Errorf("load holidays: %w", err)
	}
	overrides := make(map[TimePoint]Entry, len(timeOff))
	for _, entry := range timeOff {
		overrides[entry.Date] = entry
	}

	daily := s.DailyRequiredMinutes()
	var rows []Entry
	for _, date := range period.Days() {
		if entry, ok := existingByDate[date]; ok {
			// Keep category and recorded minutes; refresh device and requirement.
			entry.DeviceID = s.DeviceID
			entry.TimeRequired = RequiredMinutes(entry.Category, daily)
			rows = append(rows, entry)
			continue
		}

		var override *Category
		description := ""
		if holiday, ok := overrides[date]; ok {
			override = &holiday.Category
			description = holiday.Description
		}
		category := Classify(date, s.WorkingDays, override)
		rows = append(rows, Entry{
			Date:         date,
			DeviceID:     s.DeviceID,
			Category:     category,
			TimeRequired: RequiredMinutes(category, daily),
			Description:  description,
		})
	}

	if tx, ok := e.store.(TxStore); ok {
		err := tx.WithTx(ctx, func(store Store) error {
			for _, row := range rows {
				if err := store.UpsertEntry(ctx, row); err != nil {
					return err
				}
			}
			return nil
		})
		if err == nil {
			return nil
		}
		log.Printf("[Engine] Bulk materialization failed, retrying row by row: %v", err)
	}

	for _, row := range rows {
		if err := e.store.UpsertEntry(ctx, row); err != nil {
			log.Printf("[Engine] Failed to materialize %s: %v", row.Date, err)
		}
	}
	return nil
}

func (e *Engine) purgeOrphans(ctx context.Context, deviceID string) error {
	purged, err := e.store.PurgeOrphanEntries(ctx, deviceID)
	if err != nil {
		return fmt.Errorf("purge orphan entries: %w", err)
	}
	if purged > 0 {
		log.Printf("[Engine] Purged %d orphaned entries (device != %s)", purged, deviceID)
	}
	return nil
}

// EnsureRequiredPopulated backfills the required-minute column for rows
// written before it existed. Returns how many rows were healed. A missing
// settings row means there is nothing to compute against.
func (e *Engine) EnsureRequiredPopulated(ctx context.Context) (int, error) {
	settings, err := e.store.GetSettings(ctx)
	if err != nil {
		return 0, fmt.Errorf("load settings: %w", err)
	}
	if settings == nil {
		return 0, nil
	}

	entries, err := e.store.GetEntriesMissingRequired(ctx)
	if err != nil {
		return 0, fmt.Errorf("load entries: %w", err)
	}

	daily := settings.DailyRequiredMinutes()
	for _, entry := range entries {
		entry.TimeRequired = RequiredMinutes(entry.Category, daily)
		if err := e.store.UpsertEntry(ctx, entry); err != nil {
			return 0, fmt.Errorf("heal entry %s: %w", entry.Date, err)
		}
	}
	return len(entries), nil
}

// =============================================================================
// HOLIDAYS AND LEAVE
// =============================================================================

// HolidayRangeResult reports what a holiday/leave application did.
type HolidayRangeResult struct {
	Start       TimePoint
	End         TimePoint
	Category    Category
	Description string
	TotalDays   int
	AddedDays   int
	SkippedDays int
	Dates       []TimePoint
}

// ApplyHolidayRange marks every day in [start, end] as the given holiday
// or leave category, under the precedence rules:
//
//   - leave types skip weekends and days already marked as holidays
//   - an existing day is upgraded only when the new category has strictly
//     higher precedence; equal or lower is counted as skipped
//   - recorded minutes always survive reclassification
//
// When no description is supplied, leave days get an automatic one.
// Settings are created with defaults when missing.
func (e *Engine) ApplyHolidayRange(ctx context.Context, start, end TimePoint, category Category, description string) (*HolidayRangeResult, error) {
	if !category.IsTimeOff() {
		return nil, &CategoryError{Value: int(category)}
	}
	if end.Before(start) {
		return nil, &RangeError{Start: start, End: end}
	}

	settings, err := e.EnsureSettings(ctx)
	if err != nil {
		return nil, err
	}
	if err := e.purgeOrphans(ctx, settings.DeviceID); err != nil {
		return nil, err
	}

	finalDescription := description
	if strings.TrimSpace(finalDescription) == "" {
		switch category {
		case CategoryFullLeave:
			finalDescription = "Leave (full day)"
		case CategoryHalfLeave:
			finalDescription = "Leave (half day)"
		}
	}

	daily := settings.DailyRequiredMinutes()
	result := &HolidayRangeResult{
		Start:       start,
		End:         end,
		Category:    category,
		Description: description,
		TotalDays:   DaysBetween(start, end) + 1,
	}

	for date := start; date.BeforeOrEqual(end); date = date.AddDays(1) {
		existing, err := e.store.GetEntry(ctx, date)
		if err != nil {
			return nil, fmt.Errorf("load entry %s: %w", date, err)
		}

		if category.IsLeave() {
			isWeekend := !settings.WorkingDays.Contains(date.Weekday())
			isHoliday := existing != nil && existing.Category == CategoryHoliday
			if isWeekend || isHoliday {
				continue
			}
		}

		if existing == nil {
			entry := Entry{
				Date:         date,
				DeviceID:     settings.DeviceID,
				Category:     category,
				TimeRequired: RequiredMinutes(category, daily),
				Description:  finalDescription,
			}
			if err := e.store.UpsertEntry(ctx, entry); err != nil {
				return nil, fmt.Errorf("save entry %s: %w", date, err)
			}
			result.AddedDays++
			result.Dates = append(result.Dates, date)
			continue
		}

		if category.Precedence() > existing.Category.Precedence() {
			existing.Category = category
			existing.Description = finalDescription
			existing.DeviceID = settings.DeviceID
			existing.TimeRequired = RequiredMinutes(category, daily)
			if err := e.store.UpsertEntry(ctx, *existing); err != nil {
				return nil, fmt.Errorf("save entry %s: %w", date, err)
			}
			result.AddedDays++
			result.Dates = append(result.Dates, date)
		}
	}

	result.SkippedDays = result.TotalDays - result.AddedDays
	return result, nil
}

// AddHoliday marks a single day as a holiday. It is the one-day form of
// ApplyHolidayRange and follows the same precedence rules.
func (e *Engine) AddHoliday(ctx context.Context, date TimePoint, description string) error {
	_, err := e.ApplyHolidayRange(ctx, date, date, CategoryHoliday, description)
	return err
}

// DeleteHoliday reverts the holiday or leave on a date back to what the
// working-day test says it should be: a workday (description cleared) or
// a weekend (description "Weekend"). Recorded minutes survive; the
// requirement is recomputed. Returns ErrHolidayNotFound when the date
// carries no holiday or leave.
func (e *Engine) DeleteHoliday(ctx context.Context, date TimePoint) (*Entry, error) {
	entry, err := e.store.GetEntry(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("load entry %s: %w", date, err)
	}
	if entry == nil || !entry.Category.IsTimeOff() {
		return nil, fmt.Errorf("%s: %w", date, ErrHolidayNotFound)
	}

	settings, err := e.store.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if settings == nil {
		return nil, ErrSettingsNotFound
	}

	if settings.WorkingDays.Contains(date.Weekday()) {
		entry.Category = CategoryWorkday
		entry.Description = ""
	} else {
		entry.Category = CategoryWeekend
		entry.Description = "Weekend"
	}
	entry.TimeRequired = RequiredMinutes(entry.Category, settings.DailyRequiredMinutes())

	if err := e.store.UpsertEntry(ctx, *entry); err != nil {
		return nil, fmt.Errorf("save entry %s: %w", date, err)
	}
	return entry, nil
}

// ListHolidays returns all holiday and leave entries, ordered by date.
func (e *Engine) ListHolidays(ctx context.Context) ([]Entry, error) {
	return e.store.GetTimeOffEntries(ctx, nil)
}

// =============================================================================
// CORRECTIONS
// =============================================================================

// ApplyCorrection upserts the minute override for a date. The raw
// recorded minutes on the ledger entry are left untouched.
func (e *Engine) ApplyCorrection(ctx context.Context, date TimePoint, minutes int, reason string) (*Correction, error) {
	if minutes < 0 {
		return nil, fmt.Errorf("corrected minutes %d: %w", minutes, ErrInvalidRequirement)
	}

	correction := Correction{
		Date:             date,
		CorrectedMinutes: minutes,
		Reason:           reason,
	}
	if err := e.store.UpsertCorrection(ctx, correction); err != nil {
		return nil, fmt.Errorf("save correction %s: %w", date, err)
	}

	saved, err := e.store.GetCorrection(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("load correction %s: %w", date, err)
	}
	return saved, nil
}

// DeleteCorrection removes the override for a date, restoring the raw
// recorded minutes for balance purposes.
func (e *Engine) DeleteCorrection(ctx context.Context, date TimePoint) error {
	correction, err := e.store.GetCorrection(ctx, date)
	if err != nil {
		return fmt.Errorf("load correction %s: %w", date, err)
	}
	if correction == nil {
		return fmt.Errorf("%s: %w", date, ErrCorrectionNotFound)
	}
	if err := e.store.DeleteCorrection(ctx, date); err != nil {
		return fmt.Errorf("delete correction %s: %w", date, err)
	}
	return nil
}

// ListCorrections returns all corrections, ordered by date.
func (e *Engine) ListCorrections(ctx context.Context) ([]Correction, error) {
	return e.store.GetCorrections(ctx, nil)
}
