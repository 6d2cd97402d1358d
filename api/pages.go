/*
pages.go - Server-rendered dashboard and settings pages

PURPOSE:
  Renders the two HTML pages (dashboard, settings) and handles their
  form submissions. Pages are classic server-side HTML: no frontend
  build step, templates embedded in the binary.

PAGES:
  GET  /dashboard                    Period stats + one card per month
  GET  /settings                     Configuration, holidays, corrections

FORMS (all redirect 303 back to /settings):
  POST /settings                     Save configuration, re-materialize period
  POST /holidays                     Mark a holiday/leave range
  POST /holidays/{date}/delete       Revert a day
  POST /corrections                  Override recorded minutes for a day
  POST /corrections/{date}/delete    Remove an override

FORM ERROR CONTRACT:
  Browser forms never see an error page: malformed input is dropped and
  the redirect happens anyway. The API endpoints are the strict surface;
  the forms are the forgiving one.

TEMPLATES:
  html/template parsed from an embedded FS. View models are fully
  pre-formatted strings so the templates stay logic-free.

SEE ALSO:
  - templates/dashboard.html, templates/settings.html
  - handlers.go: JSON equivalents of these flows
*/
package api

import (
	"embed"
	"html/template"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/farajallah/heartbeat/attendance"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// =============================================================================
// VIEW MODELS
// =============================================================================

type dashboardView struct {
	PeriodLabel  string
	Balance      string
	BalanceClass string
	Recorded     string
	Required     string
	Months       []monthView
}

type monthView struct {
	Label        string
	Recorded     string
	Required     string
	Balance      string
	BalanceClass string
	IsComplete   bool
	IsFuture     bool
	Days         []dayView
}

type dayView struct {
	Day       int
	Date      string
	Title     string
	Class     string
	Recorded  string
	Required  string
	Balance   string
	IsToday   bool
	IsFuture  bool
	Corrected bool
}

type weekdayBox struct {
	Name    string
	Field   string
	Checked bool
}

type settingsView struct {
	StartDate         string
	EndDate           string
	DailyWorkingHours string
	Weekdays          []weekdayBox
	Holidays          []holidayRow
	Corrections       []correctionRow
	Today             string
}

type holidayRow struct {
	Date        string
	Description string
	TypeLabel   string
}

type correctionRow struct {
	Date    string
	Minutes string
	Reason  string
}

// =============================================================================
// PAGES
// =============================================================================

// DashboardPage handles GET /dashboard.
func (h *Handler) DashboardPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	settings, err := h.Engine.EnsureSettings(ctx)
	if err != nil {
		http.Error(w, "failed to load settings", http.StatusInternalServerError)
		return
	}

	period := settings.Period()
	daily := settings.DailyRequiredMinutes()

	summaries, err := h.Aggregator.MonthlySummaries(ctx, period, *settings)
	if err != nil {
		http.Error(w, "failed to compute summaries", http.StatusInternalServerError)
		return
	}
	balance, err := h.Aggregator.PeriodBalance(ctx, period, *settings)
	if err != nil {
		http.Error(w, "failed to compute balance", http.StatusInternalServerError)
		return
	}

	view := dashboardView{
		PeriodLabel:  period.Label(),
		Balance:      attendance.FormatBalance(balance.Balance, daily),
		BalanceClass: balanceClass(balance.Balance),
		Recorded:     attendance.FormatBalance(balance.Recorded, daily),
		Required:     attendance.FormatBalance(balance.Required, daily),
	}
	for _, m := range summaries {
		view.Months = append(view.Months, toMonthView(m, daily))
	}

	renderPage(w, "dashboard.html", view)
}

// SettingsPage handles GET /settings.
func (h *Handler) SettingsPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	settings, err := h.Engine.EnsureSettings(ctx)
	if err != nil {
		http.Error(w, "failed to load settings", http.StatusInternalServerError)
		return
	}
	holidays, err := h.Engine.ListHolidays(ctx)
	if err != nil {
		http.Error(w, "failed to load holidays", http.StatusInternalServerError)
		return
	}
	corrections, err := h.Engine.ListCorrections(ctx)
	if err != nil {
		http.Error(w, "failed to load corrections", http.StatusInternalServerError)
		return
	}

	view := settingsView{
		StartDate:         settings.StartDate.String(),
		EndDate:           settings.EndDate.String(),
		DailyWorkingHours: settings.DailyWorkingHours.String(),
		Weekdays:          weekdayBoxes(settings.WorkingDays),
		Today:             attendance.Today().String(),
	}
	for _, e := range holidays {
		view.Holidays = append(view.Holidays, holidayRow{
			Date:        e.Date.String(),
			Description: e.Description,
			TypeLabel:   categoryLabel(e.Category),
		})
	}
	for _, c := range corrections {
		view.Corrections = append(view.Corrections, correctionRow{
			Date:    c.Date.String(),
			Minutes: attendance.FormatMinutes(c.CorrectedMinutes),
			Reason:  c.Reason,
		})
	}

	renderPage(w, "settings.html", view)
}

// =============================================================================
// FORMS
// =============================================================================

// formWeekdays maps checkbox fields to weekday indexes in the display
// order of the settings page (week rendered Saturday first).
var formWeekdays = []struct {
	Field string
	Name  string
	Index int
}{
	{"saturday", "Saturday", 5},
	{"sunday", "Sunday", 6},
	{"monday", "Monday", 0},
	{"tuesday", "Tuesday", 1},
	{"wednesday", "Wednesday", 2},
	{"thursday", "Thursday", 3},
	{"friday", "Friday", 4},
}

// SettingsForm handles POST /settings: save the configuration and
// re-materialize the ledger over the new period.
func (h *Handler) SettingsForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	current, err := h.Engine.EnsureSettings(ctx)
	if err != nil {
		http.Error(w, "failed to load settings", http.StatusInternalServerError)
		return
	}

	next := *current
	if v := r.PostFormValue("start_date"); v != "" {
		if d, err := attendance.ParseDate(v); err == nil {
			next.StartDate = d
		}
	}
	if v := r.PostFormValue("end_date"); v != "" {
		if d, err := attendance.ParseDate(v); err == nil {
			next.EndDate = d
		}
	}
	if hours, err := decimal.NewFromString(r.PostFormValue("daily_working_hours")); err == nil && hours.IsPositive() {
		next.DailyWorkingHours = hours
	} else {
		next.DailyWorkingHours = decimal.NewFromInt(8)
	}

	var days attendance.WorkingDays
	for _, wd := range formWeekdays {
		if r.PostFormValue(wd.Field) != "" {
			days = append(days, wd.Index)
		}
	}
	next.WorkingDays = days

	saved, err := h.Engine.ApplySettings(ctx, next)
	if err != nil {
		log.Printf("[API] Settings form rejected: %v", err)
	} else if err := h.Engine.MaterializePeriod(ctx, *saved); err != nil {
		log.Printf("[API] Period materialization failed: %v", err)
	}

	http.Redirect(w, r, "/settings", http.StatusSeeOther)
}

// HolidayForm handles POST /holidays: mark a holiday or leave range.
func (h *Handler) HolidayForm(w http.ResponseWriter, r *http.Request) {
	redirect := func() { http.Redirect(w, r, "/settings", http.StatusSeeOther) }

	category, err := strconv.Atoi(r.PostFormValue("type"))
	if err != nil {
		redirect()
		return
	}
	start, err := attendance.ParseDate(r.PostFormValue("start_date"))
	if err != nil {
		redirect()
		return
	}
	end, err := attendance.ParseDate(r.PostFormValue("end_date"))
	if err != nil {
		redirect()
		return
	}
	description := r.PostFormValue("description")

	// Holidays need a name; leave types get an automatic one.
	if attendance.Category(category) == attendance.CategoryHoliday && description == "" {
		redirect()
		return
	}

	if _, err := h.Engine.ApplyHolidayRange(r.Context(), start, end, attendance.Category(category), description); err != nil {
		log.Printf("[API] Holiday form rejected: %v", err)
	}
	redirect()
}

// HolidayDeleteForm handles POST /holidays/{date}/delete.
func (h *Handler) HolidayDeleteForm(w http.ResponseWriter, r *http.Request) {
	if date, err := attendance.ParseDate(chi.URLParam(r, "date")); err == nil {
		if _, err := h.Engine.DeleteHoliday(r.Context(), date); err != nil {
			log.Printf("[API] Holiday delete rejected: %v", err)
		}
	}
	http.Redirect(w, r, "/settings", http.StatusSeeOther)
}

// CorrectionForm handles POST /corrections.
func (h *Handler) CorrectionForm(w http.ResponseWriter, r *http.Request) {
	redirect := func() { http.Redirect(w, r, "/settings", http.StatusSeeOther) }

	date, err := attendance.ParseDate(r.PostFormValue("date"))
	if err != nil {
		redirect()
		return
	}
	minutes, err := strconv.Atoi(r.PostFormValue("corrected_minutes"))
	if err != nil {
		redirect()
		return
	}

	if _, err := h.Engine.ApplyCorrection(r.Context(), date, minutes, r.PostFormValue("reason")); err != nil {
		log.Printf("[API] Correction form rejected: %v", err)
	}
	redirect()
}

// CorrectionDeleteForm handles POST /corrections/{date}/delete.
func (h *Handler) CorrectionDeleteForm(w http.ResponseWriter, r *http.Request) {
	if date, err := attendance.ParseDate(chi.URLParam(r, "date")); err == nil {
		if err := h.Engine.DeleteCorrection(r.Context(), date); err != nil {
			log.Printf("[API] Correction delete rejected: %v", err)
		}
	}
	http.Redirect(w, r, "/settings", http.StatusSeeOther)
}

// =============================================================================
// HELPERS
// =============================================================================

func renderPage(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplates.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("[API] Failed to render %s: %v", name, err)
	}
}

func toMonthView(m attendance.MonthlySummary, daily int) monthView {
	view := monthView{
		Label:        m.Label,
		Recorded:     attendance.FormatBalance(m.Recorded, daily),
		Required:     attendance.FormatBalance(m.Required, daily),
		Balance:      attendance.FormatBalance(m.Balance, daily),
		BalanceClass: balanceClass(m.Balance),
		IsComplete:   m.IsComplete,
		IsFuture:     m.IsFuture,
	}
	for _, d := range m.Days {
		view.Days = append(view.Days, dayView{
			Day:       d.Date.Day(),
			Date:      d.Date.String(),
			Title:     d.Description,
			Class:     cellClass(d),
			Recorded:  attendance.FormatMinutes(d.Recorded),
			Required:  attendance.FormatMinutes(d.Required),
			Balance:   attendance.FormatMinutes(d.Balance),
			IsToday:   d.IsToday,
			IsFuture:  d.IsFuture,
			Corrected: d.Corrected,
		})
	}
	return view
}

func balanceClass(balance int) string {
	if balance >= 0 {
		return "text-green-600"
	}
	return "text-orange-500"
}

func cellClass(d attendance.DaySummary) string {
	var class string
	switch {
	case d.Category == attendance.CategoryHoliday:
		class = "cell-holiday"
	case d.Category.IsLeave():
		class = "cell-leave"
	case d.Category == attendance.CategoryWeekend:
		class = "cell-weekend"
	case d.IsFuture:
		class = "cell-plain"
	case d.Balance >= 0:
		class = "cell-ahead"
	default:
		class = "cell-behind"
	}
	if d.IsFuture {
		class += " cell-future"
	}
	return class
}

func weekdayBoxes(days attendance.WorkingDays) []weekdayBox {
	boxes := make([]weekdayBox, len(formWeekdays))
	for i, wd := range formWeekdays {
		boxes[i] = weekdayBox{
			Name:    wd.Name,
			Field:   wd.Field,
			Checked: days.ContainsIndex(wd.Index),
		}
	}
	return boxes
}

func categoryLabel(c attendance.Category) string {
	switch c {
	case attendance.CategoryHoliday:
		return "Holiday"
	case attendance.CategoryFullLeave:
		return "Leave (full day)"
	case attendance.CategoryHalfLeave:
		return "Leave (half day)"
	case attendance.CategoryWeekend:
		return "Weekend"
	default:
		return "Workday"
	}
}
