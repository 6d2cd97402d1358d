package attendance_test

import (
	"testing"
	"time"

	"github.com/farajallah/heartbeat/attendance"
)

// =============================================================================
// WORKING DAYS PARSING TESTS
// =============================================================================

func TestParseWorkingDays_CanonicalJSONArray(t *testing.T) {
	// GIVEN: The canonical stored format
	// WHEN: Parsing it
	// THEN: The weekday-index set comes back normalized

	days, err := attendance.ParseWorkingDays("[0,1,2,3,4]")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if days.String() != "[0,1,2,3,4]" {
		t.Errorf("Expected [0,1,2,3,4], got %s", days)
	}
}

func TestParseWorkingDays_LegacyCommaNames(t *testing.T) {
	// GIVEN: The legacy comma-separated name format
	// WHEN: Parsing it
	// THEN: Names map onto Monday=0 indexes

	days, err := attendance.ParseWorkingDays("Mon,Tue,Wed,Thu,Fri")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if days.String() != "[0,1,2,3,4]" {
		t.Errorf("Expected [0,1,2,3,4], got %s", days)
	}

	weekend, err := attendance.ParseWorkingDays("Sat,Sun")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if weekend.String() != "[5,6]" {
		t.Errorf("Expected [5,6], got %s", weekend)
	}
}

func TestParseWorkingDays_UnknownLegacyTokensDropped(t *testing.T) {
	// GIVEN: A legacy string with an unrecognized token
	// WHEN: Parsing it
	// THEN: The bad token is dropped, valid ones survive

	days, err := attendance.ParseWorkingDays("Mon,Funday, Tue ")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if days.String() != "[0,1]" {
		t.Errorf("Expected [0,1], got %s", days)
	}
}

func TestParseWorkingDays_MalformedJSONErrors(t *testing.T) {
	// GIVEN: A bracketed string that is not a valid JSON int array
	// WHEN: Parsing it
	// THEN: An error is returned rather than a silent empty set

	if _, err := attendance.ParseWorkingDays("[a,b]"); err == nil {
		t.Error("Expected error for malformed JSON array")
	}
}

func TestParseWorkingDays_EmptyStringIsEmptySet(t *testing.T) {
	// GIVEN: An empty stored value
	// WHEN: Parsing it
	// THEN: An empty set and no error

	days, err := attendance.ParseWorkingDays("")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(days) != 0 {
		t.Errorf("Expected empty set, got %s", days)
	}
}

// =============================================================================
// NORMALIZATION AND MEMBERSHIP TESTS
// =============================================================================

func TestNormalize_SortsDedupesAndClamps(t *testing.T) {
	// GIVEN: An unsorted set with duplicates and out-of-range indexes
	// WHEN: Normalizing it
	// THEN: Sorted, deduplicated, in-range indexes remain

	got := attendance.WorkingDays{4, 0, 4, 9, -1, 2}.Normalize()
	if got.String() != "[0,2,4]" {
		t.Errorf("Expected [0,2,4], got %s", got)
	}
}

func TestContains_MapsGoWeekdays(t *testing.T) {
	// GIVEN: The default Monday-Friday set
	// WHEN: Checking membership with Go weekdays
	// THEN: Monday through Friday are in, Saturday and Sunday out

	days := attendance.DefaultWorkingDays()
	if !days.Contains(time.Monday) {
		t.Error("Expected Monday to be a working day")
	}
	if !days.Contains(time.Friday) {
		t.Error("Expected Friday to be a working day")
	}
	if days.Contains(time.Saturday) {
		t.Error("Expected Saturday to be off")
	}
	if days.Contains(time.Sunday) {
		t.Error("Expected Sunday to be off")
	}
}

func TestContainsIndex_UsesMondayZeroIndexing(t *testing.T) {
	// GIVEN: A weekend-only set in stored indexing
	// WHEN: Checking raw indexes
	// THEN: 5 and 6 are in, 0 is out

	days := attendance.WorkingDays{5, 6}
	if !days.ContainsIndex(5) || !days.ContainsIndex(6) {
		t.Error("Expected indexes 5 and 6 to be working days")
	}
	if days.ContainsIndex(0) {
		t.Error("Expected index 0 to be off")
	}
}

// =============================================================================
// WEEKDAY CONVERSION TESTS
// =============================================================================

func TestWeekdayIndex_ShiftsSundayToEnd(t *testing.T) {
	// GIVEN: Go weekdays, which start the week on Sunday
	// WHEN: Converting to stored indexing
	// THEN: Monday becomes 0 and Sunday becomes 6

	if got := attendance.WeekdayIndex(time.Monday); got != 0 {
		t.Errorf("Expected Monday index 0, got %d", got)
	}
	if got := attendance.WeekdayIndex(time.Saturday); got != 5 {
		t.Errorf("Expected Saturday index 5, got %d", got)
	}
	if got := attendance.WeekdayIndex(time.Sunday); got != 6 {
		t.Errorf("Expected Sunday index 6, got %d", got)
	}
}

func TestWeekdayName_CoversRangeAndRejectsOutOfRange(t *testing.T) {
	// GIVEN: Stored weekday indexes
	// WHEN: Asking for display names
	// THEN: In-range indexes name the day, out-of-range yields empty

	if got := attendance.WeekdayName(0); got != "Monday" {
		t.Errorf("Expected Monday, got %q", got)
	}
	if got := attendance.WeekdayName(6); got != "Sunday" {
		t.Errorf("Expected Sunday, got %q", got)
	}
	if got := attendance.WeekdayName(7); got != "" {
		t.Errorf("Expected empty name, got %q", got)
	}
}
