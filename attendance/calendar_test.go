package attendance_test

import (
	"testing"
	"time"

	"github.com/farajallah/heartbeat/attendance"
)

// =============================================================================
// DAY CLASSIFICATION TESTS
// =============================================================================

func TestClassify_WorkdayAndWeekendFromWorkingDaySet(t *testing.T) {
	// GIVEN: A Monday-Friday working week
	// WHEN: Classifying a Monday and a Saturday without overrides
	// THEN: Monday is a workday, Saturday a weekend

	working := attendance.DefaultWorkingDays()
	monday := attendance.NewTimePoint(2024, time.June, 3)
	saturday := attendance.NewTimePoint(2024, time.June, 8)

	if got := attendance.Classify(monday, working, nil); got != attendance.CategoryWorkday {
		t.Errorf("Expected workday, got %s", got)
	}
	if got := attendance.Classify(saturday, working, nil); got != attendance.CategoryWeekend {
		t.Errorf("Expected weekend, got %s", got)
	}
}

func TestClassify_OverrideBeatsWeekdayRule(t *testing.T) {
	// GIVEN: A Monday with an explicit holiday override
	// WHEN: Classifying it
	// THEN: The override wins over the working-day set

	working := attendance.DefaultWorkingDays()
	monday := attendance.NewTimePoint(2024, time.June, 3)
	override := attendance.CategoryHoliday

	if got := attendance.Classify(monday, working, &override); got != attendance.CategoryHoliday {
		t.Errorf("Expected holiday, got %s", got)
	}
}

func TestClassify_CustomWorkingWeek(t *testing.T) {
	// GIVEN: A weekend-shift schedule (Saturday and Sunday working)
	// WHEN: Classifying a Saturday and a Monday
	// THEN: Saturday is the workday and Monday the weekend

	working := attendance.WorkingDays{5, 6}
	saturday := attendance.NewTimePoint(2024, time.June, 8)
	monday := attendance.NewTimePoint(2024, time.June, 3)

	if got := attendance.Classify(saturday, working, nil); got != attendance.CategoryWorkday {
		t.Errorf("Expected workday, got %s", got)
	}
	if got := attendance.Classify(monday, working, nil); got != attendance.CategoryWeekend {
		t.Errorf("Expected weekend, got %s", got)
	}
}

// =============================================================================
// REQUIRED MINUTES TESTS
// =============================================================================

func TestRequiredMinutes_PerCategory(t *testing.T) {
	// GIVEN: An 8h daily requirement
	// WHEN: Asking each category for its required minutes
	// THEN: Workdays demand the full day, half-day leave half, the rest zero

	if got := attendance.RequiredMinutes(attendance.CategoryWorkday, 480); got != 480 {
		t.Errorf("Expected workday 480, got %d", got)
	}
	if got := attendance.RequiredMinutes(attendance.CategoryWeekend, 480); got != 0 {
		t.Errorf("Expected weekend 0, got %d", got)
	}
	if got := attendance.RequiredMinutes(attendance.CategoryHalfLeave, 480); got != 240 {
		t.Errorf("Expected half-day leave 240, got %d", got)
	}
	if got := attendance.RequiredMinutes(attendance.CategoryFullLeave, 480); got != 0 {
		t.Errorf("Expected full-day leave 0, got %d", got)
	}
	if got := attendance.RequiredMinutes(attendance.CategoryHoliday, 480); got != 0 {
		t.Errorf("Expected holiday 0, got %d", got)
	}
}

func TestRequiredMinutes_HalfDayTruncatesOddRequirement(t *testing.T) {
	// GIVEN: A 7.75h day (465 minutes)
	// WHEN: Computing the half-day requirement
	// THEN: Integer division truncates to 232

	if got := attendance.RequiredMinutes(attendance.CategoryHalfLeave, 465); got != 232 {
		t.Errorf("Expected 232, got %d", got)
	}
}

// =============================================================================
// CATEGORY ENUMERATION TESTS
// =============================================================================

func TestCategory_PrecedenceOrdersUpgrades(t *testing.T) {
	// GIVEN: The five categories
	// WHEN: Comparing precedence
	// THEN: holiday > full leave > half leave > workday > weekend,
	//       which is not the numeric order of the stored values

	ordered := []attendance.Category{
		attendance.CategoryWeekend,
		attendance.CategoryWorkday,
		attendance.CategoryHalfLeave,
		attendance.CategoryFullLeave,
		attendance.CategoryHoliday,
	}
	for i := 1; i < len(ordered); i++ {
		lo, hi := ordered[i-1], ordered[i]
		if lo.Precedence() >= hi.Precedence() {
			t.Errorf("Expected %s to rank below %s", lo, hi)
		}
	}

	if attendance.CategoryWeekend.Precedence() >= attendance.CategoryWorkday.Precedence() {
		t.Error("Expected weekend (stored 1) to rank below workday (stored 0)")
	}
	if attendance.Category(42).Precedence() != -1 {
		t.Error("Expected unknown category precedence -1")
	}
}

func TestCategory_ValidAndGroups(t *testing.T) {
	// GIVEN: Known and unknown category values
	// WHEN: Checking validity and grouping predicates
	// THEN: Only the five known values are valid; leave and time-off
	//       groupings match the settings page semantics

	if !attendance.CategoryHoliday.Valid() {
		t.Error("Expected holiday to be valid")
	}
	if attendance.Category(7).Valid() {
		t.Error("Expected 7 to be invalid")
	}

	if !attendance.CategoryHalfLeave.IsLeave() || !attendance.CategoryFullLeave.IsLeave() {
		t.Error("Expected both leave types to report IsLeave")
	}
	if attendance.CategoryHoliday.IsLeave() {
		t.Error("Expected holiday not to be leave")
	}

	if !attendance.CategoryHoliday.IsTimeOff() || !attendance.CategoryHalfLeave.IsTimeOff() {
		t.Error("Expected holiday and leave to be time off")
	}
	if attendance.CategoryWorkday.IsTimeOff() || attendance.CategoryWeekend.IsTimeOff() {
		t.Error("Expected workday and weekend not to be time off")
	}
}

func TestCategory_StringNames(t *testing.T) {
	// GIVEN: Each category value
	// WHEN: Rendering its name
	// THEN: The stable snake_case names come back

	if got := attendance.CategoryHalfLeave.String(); got != "leave_half" {
		t.Errorf("Expected leave_half, got %s", got)
	}
	if got := attendance.CategoryHoliday.String(); got != "holiday" {
		t.Errorf("Expected holiday, got %s", got)
	}
	if got := attendance.Category(42).String(); got != "unknown" {
		t.Errorf("Expected unknown, got %s", got)
	}
}

// =============================================================================
// ENTRY AND CORRECTION HELPERS
// =============================================================================

func TestEntry_BalanceIsRecordedMinusRequired(t *testing.T) {
	// GIVEN: A day with 3 recorded minutes against an 8h requirement
	// WHEN: Computing the day balance
	// THEN: The deficit is -477 minutes

	entry := attendance.Entry{TimeRecorded: 3, TimeRequired: 480}
	if got := entry.Balance(); got != -477 {
		t.Errorf("Expected -477, got %d", got)
	}
}

func TestEffectiveMinutes_CorrectionWins(t *testing.T) {
	// GIVEN: An entry with raw heartbeats and a manual correction
	// WHEN: Computing effective minutes
	// THEN: The correction value is used; without one the entry's count;
	//       with neither, zero

	entry := &attendance.Entry{TimeRecorded: 3}
	correction := &attendance.Correction{CorrectedMinutes: 480}

	if got := attendance.EffectiveMinutes(entry, correction); got != 480 {
		t.Errorf("Expected 480, got %d", got)
	}
	if got := attendance.EffectiveMinutes(entry, nil); got != 3 {
		t.Errorf("Expected 3, got %d", got)
	}
	if got := attendance.EffectiveMinutes(nil, nil); got != 0 {
		t.Errorf("Expected 0, got %d", got)
	}
}
