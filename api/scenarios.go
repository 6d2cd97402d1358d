/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	data for testing and demos. Each scenario configures settings,
	materializes the reporting period, and seeds ledger entries,
	holidays, and corrections that demonstrate specific features.

AVAILABLE SCENARIOS:

	fresh-start:   Default settings only, empty ledger
	typical-month: A month of realistic workdays with a holiday, a
	               half-day leave, weekend overtime, and one correction
	catch-up:      Consistently under-recorded days (negative balance)

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Apply settings and materialize the reporting period
 3. Mark holidays and leave days
 4. Seed recorded minutes into past days
 5. Optionally add corrections

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "typical-month"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Create loader function: loadXxxScenario(ctx)
 3. Add case to LoadScenario handler

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: ResetDatabase handler
  - attendance/engine.go: The operations the loaders drive
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/farajallah/heartbeat/attendance"
)

// resetter is implemented by stores that can wipe all data (sqlite and
// memory both do). Keeping it out of the Store contract stops production
// code paths from ever seeing a Reset.
type resetter interface {
	Reset(ctx context.Context) error
}

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "fresh-start",
		Name:        "Fresh Start",
		Description: "Default settings, empty ledger",
	},
	{
		ID:          "typical-month",
		Name:        "Typical Month",
		Description: "Realistic workdays with a holiday, half-day leave, and a correction",
	},
	{
		ID:          "catch-up",
		Name:        "Catch-Up",
		Description: "Under-recorded days showing a negative balance",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	if h.currentScenario == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}

	for _, s := range scenarios {
		if s.ID == h.currentScenario {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}

	// Scenario ID exists but not in list (shouldn't happen)
	writeJSON(w, http.StatusOK, ScenarioDTO{
		ID:          h.currentScenario,
		Name:        h.currentScenario,
		Description: "Currently loaded scenario",
	})
}

// LoadScenario loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ScenarioID string `json:"scenario_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()

	res, ok := h.Store.(resetter)
	if !ok {
		writeError(w, http.StatusInternalServerError, "Store does not support reset", nil)
		return
	}
	if err := res.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = "" // Clear current scenario on reset

	var err error
	switch req.ScenarioID {
	case "fresh-start":
		err = h.loadFreshStartScenario(ctx)
	case "typical-month":
		err = h.loadTypicalMonthScenario(ctx)
	case "catch-up":
		err = h.loadCatchUpScenario(ctx)
	default:
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	h.currentScenario = req.ScenarioID

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadFreshStartScenario(ctx context.Context) error {
	_, err := h.Engine.EnsureSettings(ctx)
	return err
}

func (h *Handler) loadTypicalMonthScenario(ctx context.Context) error {
	settings, err := h.seedDemoSettings(ctx)
	if err != nil {
		return err
	}
	start := settings.StartDate
	daily := settings.DailyRequiredMinutes()

	// A public holiday early in the period and a half-day leave a week
	// into it. Both land in the previous month, so they are always in
	// the past.
	holiday := nextWeekday(start.AddDays(3), time.Friday)
	if _, err := h.Engine.ApplyHolidayRange(ctx, holiday, holiday, attendance.CategoryHoliday, "Public holiday"); err != nil {
		return err
	}
	halfDay := nextWeekday(start.AddDays(10), time.Wednesday)
	if _, err := h.Engine.ApplyHolidayRange(ctx, halfDay, halfDay, attendance.CategoryHalfLeave, "Dentist appointment"); err != nil {
		return err
	}

	// Fill past days with plausible numbers: workdays hover around the
	// requirement, the half-day slightly over its reduced requirement.
	today := attendance.Today()
	for date := start; date.Before(today); date = date.AddDays(1) {
		entry, err := h.Store.GetEntry(ctx, date)
		if err != nil {
			return err
		}
		if entry == nil {
			continue
		}
		switch entry.Category {
		case attendance.CategoryWorkday:
			entry.TimeRecorded = daily - 17 + (date.Day()%3)*21
		case attendance.CategoryHalfLeave:
			entry.TimeRecorded = entry.TimeRequired + 12
		default:
			continue
		}
		if err := h.Store.UpsertEntry(ctx, *entry); err != nil {
			return err
		}
	}

	// A Saturday of overtime.
	if err := h.setRecorded(ctx, nextWeekday(start, time.Saturday), 45); err != nil {
		return err
	}

	// One day the agent was off entirely, healed with a correction.
	missed := nextWeekday(start.AddDays(7), time.Tuesday)
	if err := h.setRecorded(ctx, missed, 0); err != nil {
		return err
	}
	_, err = h.Engine.ApplyCorrection(ctx, missed, daily, "Agent was off, worked on site")
	return err
}

func (h *Handler) loadCatchUpScenario(ctx context.Context) error {
	settings, err := h.seedDemoSettings(ctx)
	if err != nil {
		return err
	}
	daily := settings.DailyRequiredMinutes()

	today := attendance.Today()
	for date := settings.StartDate; date.Before(today); date = date.AddDays(1) {
		entry, err := h.Store.GetEntry(ctx, date)
		if err != nil {
			return err
		}
		if entry == nil || entry.Category != attendance.CategoryWorkday {
			continue
		}
		entry.TimeRecorded = (daily*2)/3 + (date.Day()%4)*9
		if err := h.Store.UpsertEntry(ctx, *entry); err != nil {
			return err
		}
	}

	// One fully missed day deepens the deficit.
	return h.setRecorded(ctx, nextWeekday(settings.StartDate.AddDays(7), time.Thursday), 0)
}

// =============================================================================
// SEEDING HELPERS
// =============================================================================

// seedDemoSettings configures a reporting period from the first of the
// previous month through the end of the year and materializes it.
func (h *Handler) seedDemoSettings(ctx context.Context) (*attendance.Settings, error) {
	today := attendance.Today()
	start := attendance.StartOfMonth(today.Year(), today.Month()).AddMonths(-1)

	settings, err := h.Engine.ApplySettings(ctx, attendance.Settings{
		DeviceID:          "DEMO-LAPTOP",
		WorkingDays:       attendance.DefaultWorkingDays(),
		DailyWorkingHours: decimal.NewFromInt(8),
		StartDate:         start,
		EndDate:           attendance.EndOfYear(today.Year()),
	})
	if err != nil {
		return nil, err
	}
	if err := h.Engine.MaterializePeriod(ctx, *settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// setRecorded overwrites the recorded minutes of an already materialized
// day.
func (h *Handler) setRecorded(ctx context.Context, date attendance.TimePoint, minutes int) error {
	entry, err := h.Store.GetEntry(ctx, date)
	if err != nil {
		return err
	}
	if entry == nil {
		return fmt.Errorf("no ledger row for %s", date)
	}
	entry.TimeRecorded = minutes
	return h.Store.UpsertEntry(ctx, *entry)
}

func nextWeekday(from attendance.TimePoint, wd time.Weekday) attendance.TimePoint {
	date := from
	for date.Weekday() != wd {
		date = date.AddDays(1)
	}
	return date
}
