/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Heartbeat:
    HeartbeatRequest

  Settings:
    SettingsDTO, SettingsRequest

  Holidays:
    HolidayDTO, HolidayRequest, HolidayRangeRequest, HolidayRangeDTO

  Corrections:
    CorrectionDTO, CorrectionRequest

  Summaries:
    DaySummaryDTO, MonthlySummaryDTO, PeriodBalanceDTO

  Scenarios:
    ScenarioDTO

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - attendance/summary.go: Domain types behind the summary DTOs
*/
package api

import (
	"time"

	"github.com/farajallah/heartbeat/attendance"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// HeartbeatRequest is one minute-of-presence ping from an agent. The
// timestamp is accepted for wire compatibility but ignored; the server's
// local date decides which day the minute lands on.
type HeartbeatRequest struct {
	DeviceID  string     `json:"device_id"`
	Timezone  string     `json:"timezone,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// SettingsDTO represents the reporting configuration in API responses.
type SettingsDTO struct {
	StartDate            string  `json:"start_date"`
	EndDate              string  `json:"end_date"`
	WorkingDays          []int   `json:"working_days"`
	DailyWorkingHours    float64 `json:"daily_working_hours"`
	DailyRequiredMinutes int     `json:"daily_required_minutes"`
}

// SettingsRequest updates the configuration. Nil fields keep their
// current (or default) value.
type SettingsRequest struct {
	StartDate         *string  `json:"start_date,omitempty"`
	EndDate           *string  `json:"end_date,omitempty"`
	WorkingDays       []int    `json:"working_days,omitempty"`
	DailyWorkingHours *float64 `json:"daily_working_hours,omitempty"`
}

// HolidayDTO represents one holiday or leave day.
type HolidayDTO struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	Category    int    `json:"category,omitempty"`
}

// HolidayRequest adds a single holiday.
type HolidayRequest struct {
	Date        string `json:"date"`
	Description string `json:"description"`
}

// HolidayRangeRequest marks a date range as holiday or leave.
type HolidayRangeRequest struct {
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Category    int    `json:"category"`
	Description string `json:"description,omitempty"`
}

// HolidayRangeDTO reports what a range application did.
type HolidayRangeDTO struct {
	StartDate   string   `json:"start_date"`
	EndDate     string   `json:"end_date"`
	Category    int      `json:"category"`
	Description string   `json:"description,omitempty"`
	TotalDays   int      `json:"total_days"`
	AddedDays   int      `json:"added_days"`
	SkippedDays int      `json:"skipped_days"`
	Dates       []string `json:"dates"`
}

// CorrectionDTO represents a minute override for one day.
type CorrectionDTO struct {
	ID               string `json:"id"`
	Date             string `json:"date"`
	CorrectedMinutes int    `json:"corrected_minutes"`
	Reason           string `json:"reason,omitempty"`
}

// CorrectionRequest creates or replaces the override for a date.
type CorrectionRequest struct {
	Date             string `json:"date"`
	CorrectedMinutes int    `json:"corrected_minutes"`
	Reason           string `json:"reason,omitempty"`
}

// DaySummaryDTO is one calendar cell of a monthly summary.
type DaySummaryDTO struct {
	Date              string `json:"date"`
	Category          int    `json:"category"`
	CategoryName      string `json:"category_name"`
	Recorded          int    `json:"recorded"`
	Required          int    `json:"required"`
	Balance           int    `json:"balance"`
	RecordedFormatted string `json:"recorded_formatted"`
	BalanceFormatted  string `json:"balance_formatted"`
	IsToday           bool   `json:"is_today,omitempty"`
	IsFuture          bool   `json:"is_future,omitempty"`
	Corrected         bool   `json:"corrected,omitempty"`
}

// MonthlySummaryDTO is the JSON twin of a dashboard month card.
type MonthlySummaryDTO struct {
	Month             string          `json:"month"`
	Label             string          `json:"label"`
	Recorded          int             `json:"recorded"`
	Required          int             `json:"required"`
	Balance           int             `json:"balance"`
	RecordedFormatted string          `json:"recorded_formatted"`
	RequiredFormatted string          `json:"required_formatted"`
	BalanceFormatted  string          `json:"balance_formatted"`
	IsComplete        bool            `json:"is_complete"`
	IsFuture          bool            `json:"is_future,omitempty"`
	Days              []DaySummaryDTO `json:"days"`
}

// PeriodBalanceDTO is the overall standing of a reporting period.
type PeriodBalanceDTO struct {
	StartDate         string `json:"start_date"`
	EndDate           string `json:"end_date"`
	Recorded          int    `json:"recorded"`
	Required          int    `json:"required"`
	Balance           int    `json:"balance"`
	BalanceFormatted  string `json:"balance_formatted"`
	RecordedFormatted string `json:"recorded_formatted"`
	RequiredFormatted string `json:"required_formatted"`
}

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toSettingsDTO(s attendance.Settings) SettingsDTO {
	hours, _ := s.DailyWorkingHours.Float64()
	days := []int(s.WorkingDays)
	if days == nil {
		days = []int{}
	}
	return SettingsDTO{
		StartDate:            s.StartDate.String(),
		EndDate:              s.EndDate.String(),
		WorkingDays:          days,
		DailyWorkingHours:    hours,
		DailyRequiredMinutes: s.DailyRequiredMinutes(),
	}
}

func toHolidayDTO(e attendance.Entry) HolidayDTO {
	return HolidayDTO{
		Date:        e.Date.String(),
		Description: e.Description,
		Category:    int(e.Category),
	}
}

func toHolidayDTOs(entries []attendance.Entry) []HolidayDTO {
	dtos := make([]HolidayDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toHolidayDTO(e)
	}
	return dtos
}

func toHolidayRangeDTO(r attendance.HolidayRangeResult) HolidayRangeDTO {
	dates := make([]string, len(r.Dates))
	for i, d := range r.Dates {
		dates[i] = d.String()
	}
	return HolidayRangeDTO{
		StartDate:   r.Start.String(),
		EndDate:     r.End.String(),
		Category:    int(r.Category),
		Description: r.Description,
		TotalDays:   r.TotalDays,
		AddedDays:   r.AddedDays,
		SkippedDays: r.SkippedDays,
		Dates:       dates,
	}
}

func toCorrectionDTO(c attendance.Correction) CorrectionDTO {
	return CorrectionDTO{
		ID:               c.ID,
		Date:             c.Date.String(),
		CorrectedMinutes: c.CorrectedMinutes,
		Reason:           c.Reason,
	}
}

func toCorrectionDTOs(corrections []attendance.Correction) []CorrectionDTO {
	dtos := make([]CorrectionDTO, len(corrections))
	for i, c := range corrections {
		dtos[i] = toCorrectionDTO(c)
	}
	return dtos
}

func toDaySummaryDTO(d attendance.DaySummary, dailyRequired int) DaySummaryDTO {
	return DaySummaryDTO{
		Date:              d.Date.String(),
		Category:          int(d.Category),
		CategoryName:      d.Category.String(),
		Recorded:          d.Recorded,
		Required:          d.Required,
		Balance:           d.Balance,
		RecordedFormatted: attendance.FormatMinutes(d.Recorded),
		BalanceFormatted:  attendance.FormatBalance(d.Balance, dailyRequired),
		IsToday:           d.IsToday,
		IsFuture:          d.IsFuture,
		Corrected:         d.Corrected,
	}
}

func toMonthlySummaryDTO(m attendance.MonthlySummary, dailyRequired int) MonthlySummaryDTO {
	days := make([]DaySummaryDTO, len(m.Days))
	for i, d := range m.Days {
		days[i] = toDaySummaryDTO(d, dailyRequired)
	}
	return MonthlySummaryDTO{
		Month:             m.Month.String(),
		Label:             m.Label,
		Recorded:          m.Recorded,
		Required:          m.Required,
		Balance:           m.Balance,
		RecordedFormatted: attendance.FormatBalance(m.Recorded, dailyRequired),
		RequiredFormatted: attendance.FormatBalance(m.Required, dailyRequired),
		BalanceFormatted:  attendance.FormatBalance(m.Balance, dailyRequired),
		IsComplete:        m.IsComplete,
		IsFuture:          m.IsFuture,
		Days:              days,
	}
}

func toPeriodBalanceDTO(b attendance.PeriodBalance, dailyRequired int) PeriodBalanceDTO {
	return PeriodBalanceDTO{
		StartDate:         b.Period.Start.String(),
		EndDate:           b.Period.End.String(),
		Recorded:          b.Recorded,
		Required:          b.Required,
		Balance:           b.Balance,
		BalanceFormatted:  attendance.FormatBalance(b.Balance, dailyRequired),
		RecordedFormatted: attendance.FormatBalance(b.Recorded, dailyRequired),
		RequiredFormatted: attendance.FormatBalance(b.Required, dailyRequired),
	}
}
