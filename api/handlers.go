/*
handlers.go - HTTP API handlers for the heartbeat attendance tracker

PURPOSE:
  Exposes the attendance engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Heartbeat:
    POST   /api/heartbeat              Record one minute of presence

  Settings:
    GET    /api/settings               Current configuration (404 when unset)
    POST   /api/settings               Update configuration, recompute required

  Holidays:
    GET    /api/holidays               List holiday/leave days
    POST   /api/holidays               Add a single holiday
    POST   /api/holidays/range         Mark a holiday/leave range
    DELETE /api/holidays/{date}        Revert a day to workday/weekend

  Corrections:
    GET    /api/corrections            List minute overrides
    POST   /api/corrections            Create/replace an override
    DELETE /api/corrections/{date}     Remove an override

  Summaries:
    GET    /api/summary                Monthly summary (year, month params)
    GET    /api/balance                Period balance (start, end params)
    GET    /api/export.xlsx            Monthly workbook download

  Scenarios (dev/demo):
    GET    /api/scenarios              List demo scenarios
    GET    /api/scenarios/current      Currently loaded scenario
    POST   /api/scenarios/load         Reset database + seed a scenario
    POST   /api/reset                  Clear all data

  Health:
    GET    /health                     Liveness probe (unauthenticated)

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Engine: Ledger mutations (heartbeats, settings, holidays, corrections)
  - Aggregator: Read-side summaries
  - Store: Direct reads where no domain logic applies

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Call domain logic (engine, aggregator)
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 401: Missing or wrong bearer token
  - 404: Resource not found
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - pages.go: Server-rendered dashboard and settings pages
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/farajallah/heartbeat/attendance"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Config holds the runtime options of the HTTP layer.
type Config struct {
	// BearerToken protects every /api route. Agents and API clients send
	// it as "Authorization: Bearer <token>".
	BearerToken string

	// CORSOrigins lists the origins allowed to call the API from a
	// browser context.
	CORSOrigins []string
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Engine     *attendance.Engine
	Aggregator *attendance.Aggregator
	Store      attendance.Store

	cfg Config

	// Track currently loaded demo scenario
	currentScenario string
}

// NewHandler creates a new handler on top of the given store.
func NewHandler(store attendance.TxStore, cfg Config) *Handler {
	return &Handler{
		Engine:     attendance.NewEngine(store),
		Aggregator: attendance.NewAggregator(store),
		Store:      store,
		cfg:        cfg,
	}
}

// =============================================================================
// HEALTH
// =============================================================================

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "heartbeat-tracker",
	})
}

// =============================================================================
// HEARTBEAT
// =============================================================================

// RecordHeartbeat handles POST /api/heartbeat.
func (h *Handler) RecordHeartbeat(w http.ResponseWriter, r *http.Request) {
	var req HeartbeatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if strings.TrimSpace(req.DeviceID) == "" {
		writeError(w, http.StatusBadRequest, "device_id is required", nil)
		return
	}

	if _, err := h.Engine.RecordHeartbeat(r.Context(), req.DeviceID); err != nil {
		writeError(w, errorStatus(err), "Failed to record heartbeat", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Heartbeat recorded",
		"action":  "time_recorded",
	})
}

// =============================================================================
// SETTINGS
// =============================================================================

// GetSettings handles GET /api/settings.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Store.GetSettings(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load settings", err)
		return
	}
	if settings == nil {
		writeError(w, http.StatusNotFound, "Settings not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toSettingsDTO(*settings))
}

// UpdateSettings handles POST /api/settings. Missing request fields keep
// their current value; when no settings exist yet the defaults are the
// base.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()
	current, err := h.Engine.EnsureSettings(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load settings", err)
		return
	}

	next := *current
	if req.StartDate != nil {
		d, err := attendance.ParseDate(*req.StartDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid start_date", err)
			return
		}
		next.StartDate = d
	}
	if req.EndDate != nil {
		d, err := attendance.ParseDate(*req.EndDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid end_date", err)
			return
		}
		next.EndDate = d
	}
	if req.WorkingDays != nil {
		next.WorkingDays = attendance.WorkingDays(req.WorkingDays)
	}
	if req.DailyWorkingHours != nil {
		next.DailyWorkingHours = decimal.NewFromFloat(*req.DailyWorkingHours)
	}

	saved, err := h.Engine.ApplySettings(ctx, next)
	if err != nil {
		writeError(w, errorStatus(err), "Failed to update settings", err)
		return
	}

	writeJSON(w, http.StatusOK, toSettingsDTO(*saved))
}

// =============================================================================
// HOLIDAYS AND LEAVE
// =============================================================================

// ListHolidays handles GET /api/holidays.
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Engine.ListHolidays(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load holidays", err)
		return
	}
	writeJSON(w, http.StatusOK, toHolidayDTOs(entries))
}

// AddHoliday handles POST /api/holidays.
func (h *Handler) AddHoliday(w http.ResponseWriter, r *http.Request) {
	var req HolidayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	date, err := attendance.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format", err)
		return
	}

	if err := h.Engine.AddHoliday(r.Context(), date, req.Description); err != nil {
		writeError(w, errorStatus(err), "Failed to add holiday", err)
		return
	}

	writeJSON(w, http.StatusOK, HolidayDTO{
		Date:        date.String(),
		Description: req.Description,
		Category:    int(attendance.CategoryHoliday),
	})
}

// ApplyHolidayRange handles POST /api/holidays/range.
func (h *Handler) ApplyHolidayRange(w http.ResponseWriter, r *http.Request) {
	var req HolidayRangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	start, err := attendance.ParseDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date", err)
		return
	}
	end, err := attendance.ParseDate(req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_date", err)
		return
	}

	result, err := h.Engine.ApplyHolidayRange(r.Context(), start, end,
		attendance.Category(req.Category), req.Description)
	if err != nil {
		writeError(w, errorStatus(err), "Failed to apply holiday range", err)
		return
	}

	writeJSON(w, http.StatusOK, toHolidayRangeDTO(*result))
}

// DeleteHoliday handles DELETE /api/holidays/{date}.
func (h *Handler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	date, err := attendance.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format", err)
		return
	}

	if _, err := h.Engine.DeleteHoliday(r.Context(), date); err != nil {
		if attendance.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Holiday not found", nil)
			return
		}
		writeError(w, errorStatus(err), "Failed to delete holiday", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Holiday deleted",
	})
}

// =============================================================================
// CORRECTIONS
// =============================================================================

// ListCorrections handles GET /api/corrections.
func (h *Handler) ListCorrections(w http.ResponseWriter, r *http.Request) {
	corrections, err := h.Engine.ListCorrections(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load corrections", err)
		return
	}
	writeJSON(w, http.StatusOK, toCorrectionDTOs(corrections))
}

// ApplyCorrection handles POST /api/corrections.
func (h *Handler) ApplyCorrection(w http.ResponseWriter, r *http.Request) {
	var req CorrectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	date, err := attendance.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format", err)
		return
	}

	correction, err := h.Engine.ApplyCorrection(r.Context(), date, req.CorrectedMinutes, req.Reason)
	if err != nil {
		writeError(w, errorStatus(err), "Failed to apply correction", err)
		return
	}

	writeJSON(w, http.StatusOK, toCorrectionDTO(*correction))
}

// DeleteCorrection handles DELETE /api/corrections/{date}.
func (h *Handler) DeleteCorrection(w http.ResponseWriter, r *http.Request) {
	date, err := attendance.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format", err)
		return
	}

	if err := h.Engine.DeleteCorrection(r.Context(), date); err != nil {
		if attendance.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Correction not found", nil)
			return
		}
		writeError(w, errorStatus(err), "Failed to delete correction", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Correction deleted",
	})
}

// =============================================================================
// SUMMARIES
// =============================================================================

// GetMonthlySummary handles GET /api/summary?year=YYYY&month=MM. Both
// parameters default to the current month.
func (h *Handler) GetMonthlySummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	settings, err := h.Store.GetSettings(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load settings", err)
		return
	}
	if settings == nil {
		writeError(w, http.StatusNotFound, "Settings not found", nil)
		return
	}

	now := time.Now()
	year := now.Year()
	month := int(now.Month())
	if v := r.URL.Query().Get("year"); v != "" {
		year, err = strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid year", err)
			return
		}
	}
	if v := r.URL.Query().Get("month"); v != "" {
		month, err = strconv.Atoi(v)
		if err != nil || month < 1 || month > 12 {
			writeError(w, http.StatusBadRequest, "Invalid month", err)
			return
		}
	}

	summary, err := h.Aggregator.MonthlySummary(ctx, year, time.Month(month), *settings)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute summary", err)
		return
	}

	writeJSON(w, http.StatusOK, toMonthlySummaryDTO(*summary, settings.DailyRequiredMinutes()))
}

// GetPeriodBalance handles GET /api/balance?start=...&end=... with the
// reporting period as the default range. Future days never count.
func (h *Handler) GetPeriodBalance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	settings, err := h.Store.GetSettings(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load settings", err)
		return
	}
	if settings == nil {
		writeError(w, http.StatusNotFound, "Settings not found", nil)
		return
	}

	period := settings.Period()
	if v := r.URL.Query().Get("start"); v != "" {
		period.Start, err = attendance.ParseDate(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid start date", err)
			return
		}
	}
	if v := r.URL.Query().Get("end"); v != "" {
		period.End, err = attendance.ParseDate(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid end date", err)
			return
		}
	}
	if !period.Valid() {
		writeError(w, http.StatusBadRequest, "Invalid date range", nil)
		return
	}

	balance, err := h.Aggregator.PeriodBalance(ctx, period, *settings)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute balance", err)
		return
	}

	writeJSON(w, http.StatusOK, toPeriodBalanceDTO(*balance, settings.DailyRequiredMinutes()))
}

// =============================================================================
// DATABASE RESET (dev/demo)
// =============================================================================

// ResetDatabase clears all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	res, ok := h.Store.(resetter)
	if !ok {
		writeError(w, http.StatusInternalServerError, "Store does not support reset", nil)
		return
	}
	if err := res.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}

	h.currentScenario = ""

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

func errorStatus(err error) int {
	switch {
	case attendance.IsNotFound(err):
		return http.StatusNotFound
	case attendance.IsClientError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
