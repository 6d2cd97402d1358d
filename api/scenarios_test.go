/*
scenarios_test.go - Demo scenario loader tests

Drives the scenario loaders directly and through the API, verifying
each seeds the ledger shape it promises.

Note: newTestHandler, doJSON, and decodeBody are defined in
handlers_test.go.
*/
package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/farajallah/heartbeat/attendance"
)

// =============================================================================
// LOADER TESTS
// =============================================================================

func TestScenario_FreshStartSeedsDefaultsOnly(t *testing.T) {
	// GIVEN: A fresh database
	// WHEN: Loading the fresh-start scenario
	// THEN: Default settings exist and the ledger stays empty

	h := newTestHandler(t)
	ctx := context.Background()

	if err := h.loadFreshStartScenario(ctx); err != nil {
		t.Fatalf("Failed to load scenario: %v", err)
	}

	settings, err := h.Store.GetSettings(ctx)
	if err != nil || settings == nil {
		t.Fatalf("Expected default settings, got %v (%v)", settings, err)
	}
	if settings.DeviceID != "DEFAULT" {
		t.Errorf("Expected the DEFAULT device, got %q", settings.DeviceID)
	}

	entries, err := h.Store.GetEntries(ctx, settings.Period())
	if err != nil {
		t.Fatalf("Failed to load entries: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected an empty ledger, got %d rows", len(entries))
	}
}

func TestScenario_TypicalMonthSeedsRichLedger(t *testing.T) {
	// GIVEN: A fresh database
	// WHEN: Loading the typical-month scenario
	// THEN: Demo settings, time off, recorded minutes, and a correction
	//       are all in place

	h := newTestHandler(t)
	ctx := context.Background()

	if err := h.loadTypicalMonthScenario(ctx); err != nil {
		t.Fatalf("Failed to load scenario: %v", err)
	}

	settings, err := h.Store.GetSettings(ctx)
	if err != nil || settings == nil {
		t.Fatalf("Expected demo settings, got %v (%v)", settings, err)
	}
	if settings.DeviceID != "DEMO-LAPTOP" {
		t.Errorf("Expected the demo device, got %q", settings.DeviceID)
	}

	timeOff, err := h.Store.GetTimeOffEntries(ctx, nil)
	if err != nil {
		t.Fatalf("Failed to load time off: %v", err)
	}
	var sawHoliday, sawHalfLeave bool
	for _, e := range timeOff {
		switch e.Category {
		case attendance.CategoryHoliday:
			sawHoliday = true
		case attendance.CategoryHalfLeave:
			sawHalfLeave = true
		}
	}
	if !sawHoliday || !sawHalfLeave {
		t.Errorf("Expected a holiday and a half-day leave, got %+v", timeOff)
	}

	corrections, err := h.Store.GetCorrections(ctx, nil)
	if err != nil {
		t.Fatalf("Failed to load corrections: %v", err)
	}
	if len(corrections) != 1 {
		t.Fatalf("Expected one correction, got %d", len(corrections))
	}

	entries, err := h.Store.GetEntries(ctx, settings.Period())
	if err != nil {
		t.Fatalf("Failed to load entries: %v", err)
	}
	var recorded int
	for _, e := range entries {
		recorded += e.TimeRecorded
	}
	if recorded == 0 {
		t.Error("Expected seeded working time in the ledger")
	}
}

func TestScenario_CatchUpShowsDeficit(t *testing.T) {
	// GIVEN: A fresh database
	// WHEN: Loading the catch-up scenario
	// THEN: The reporting period balance is negative

	h := newTestHandler(t)
	ctx := context.Background()

	if err := h.loadCatchUpScenario(ctx); err != nil {
		t.Fatalf("Failed to load scenario: %v", err)
	}

	settings, err := h.Store.GetSettings(ctx)
	if err != nil || settings == nil {
		t.Fatalf("Expected demo settings, got %v (%v)", settings, err)
	}

	balance, err := h.Aggregator.PeriodBalance(ctx, settings.Period(), *settings)
	if err != nil {
		t.Fatalf("Failed to compute balance: %v", err)
	}
	if balance.Balance >= 0 {
		t.Errorf("Expected a deficit, got %d", balance.Balance)
	}
}

// =============================================================================
// SCENARIO ENDPOINT TESTS
// =============================================================================

func TestScenarioEndpoints_ListLoadAndCurrent(t *testing.T) {
	// GIVEN: A running server
	// WHEN: Listing scenarios, loading one, and asking for the current one
	// THEN: Each endpoint honors the wire contract

	h := newTestHandler(t)

	rec := doJSON(t, h, http.MethodGet, "/api/scenarios", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var list []ScenarioDTO
	decodeBody(t, rec, &list)
	if len(list) != 3 {
		t.Fatalf("Expected 3 scenarios, got %d", len(list))
	}

	rec = doJSON(t, h, http.MethodGet, "/api/scenarios/current", nil)
	var current *ScenarioDTO
	decodeBody(t, rec, &current)
	if current != nil {
		t.Errorf("Expected no current scenario, got %+v", current)
	}

	rec = doJSON(t, h, http.MethodPost, "/api/scenarios/load", map[string]string{
		"scenario_id": "typical-month",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var loaded map[string]string
	decodeBody(t, rec, &loaded)
	if loaded["status"] != "loaded" || loaded["scenario"] != "typical-month" {
		t.Errorf("Unexpected load response: %v", loaded)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/scenarios/current", nil)
	current = nil
	decodeBody(t, rec, &current)
	if current == nil || current.ID != "typical-month" {
		t.Errorf("Expected typical-month as current, got %+v", current)
	}
}

func TestScenarioEndpoints_UnknownScenario(t *testing.T) {
	// GIVEN: A scenario ID that does not exist
	// WHEN: Loading it
	// THEN: 400 with the canonical message

	h := newTestHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/api/scenarios/load", map[string]string{
		"scenario_id": "time-travel",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
	var body ErrorResponse
	decodeBody(t, rec, &body)
	if body.Error != "Unknown scenario" {
		t.Errorf("Expected Unknown scenario, got %q", body.Error)
	}
}

func TestResetEndpoint_ClearsEverything(t *testing.T) {
	// GIVEN: A loaded demo scenario
	// WHEN: Resetting the database
	// THEN: Settings, ledger, and the current-scenario marker are gone

	h := newTestHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/api/scenarios/load", map[string]string{
		"scenario_id": "typical-month",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("Failed to load scenario: %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPost, "/api/reset", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var status map[string]string
	decodeBody(t, rec, &status)
	if status["status"] != "ok" {
		t.Errorf("Unexpected reset response: %v", status)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/settings", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected settings to be gone, got %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/scenarios/current", nil)
	var current *ScenarioDTO
	decodeBody(t, rec, &current)
	if current != nil {
		t.Errorf("Expected no current scenario, got %+v", current)
	}
}

func TestScenario_AllScenariosLoadWithoutError(t *testing.T) {
	// GIVEN: Every registered scenario
	// WHEN: Loading each into a fresh database
	// THEN: All of them seed without error

	for _, scenario := range scenarios {
		t.Run(scenario.ID, func(t *testing.T) {
			h := newTestHandler(t)

			rec := doJSON(t, h, http.MethodPost, "/api/scenarios/load", map[string]string{
				"scenario_id": scenario.ID,
			})
			if rec.Code != http.StatusOK {
				t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}
