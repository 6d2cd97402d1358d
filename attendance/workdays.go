package attendance

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// =============================================================================
// WORKING DAYS - Canonical weekday-index set
// =============================================================================

// WorkingDays is the set of weekdays that count as working days, as a
// sorted slice of weekday indexes. Indexing is Monday=0 .. Sunday=6, which
// is the stored and wire format. Parsing happens once at the configuration
// boundary; everything past the store sees a normalized set.
type WorkingDays []int

// DefaultWorkingDays returns Monday through Friday.
func DefaultWorkingDays() WorkingDays {
	return WorkingDays{0, 1, 2, 3, 4}
}

// legacy comma format tokens, e.g. "Mon,Tue,Wed,Thu,Fri"
var legacyDayIndex = map[string]int{
	"Mon": 0, "Tue": 1, "Wed": 2, "Thu": 3, "Fri": 4, "Sat": 5, "Sun": 6,
}

var weekdayNames = [7]string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// ParseWorkingDays parses either the canonical JSON array format
// ("[0,1,2,3,4]") or the legacy comma-separated name format
// ("Mon,Tue,Wed,Thu,Fri"). Unknown legacy tokens are dropped; a malformed
// JSON array is an error.
func ParseWorkingDays(s string) (WorkingDays, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return WorkingDays{}, nil
	}

	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		var days []int
		if err := json.Unmarshal([]byte(s), &days); err != nil {
			return nil, fmt.Errorf("invalid working days %q: %w", s, err)
		}
		return WorkingDays(days).Normalize(), nil
	}

	var days WorkingDays
	for _, token := range strings.Split(s, ",") {
		if idx, ok := legacyDayIndex[strings.TrimSpace(token)]; ok {
			days = append(days, idx)
		}
	}
	return days.Normalize(), nil
}

// Normalize sorts, deduplicates, and drops out-of-range indexes.
func (w WorkingDays) Normalize() WorkingDays {
	seen := make(map[int]bool, len(w))
	out := make(WorkingDays, 0, len(w))
	for _, d := range w {
		if d < 0 || d > 6 || seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	sort.Ints(out)
	return out
}

// ContainsIndex reports whether the Monday=0 weekday index is a working day.
func (w WorkingDays) ContainsIndex(idx int) bool {
	for _, d := range w {
		if d == idx {
			return true
		}
	}
	return false
}

// Contains reports whether the Go weekday is a working day.
func (w WorkingDays) Contains(wd time.Weekday) bool {
	return w.ContainsIndex(WeekdayIndex(wd))
}

// String returns the canonical stored format, a JSON array of indexes.
func (w WorkingDays) String() string {
	b, err := json.Marshal([]int(w.Normalize()))
	if err != nil {
		return "[]"
	}
	return string(b)
}

// WeekdayIndex converts a Go weekday (Sunday=0) to the stored Monday=0
// indexing.
func WeekdayIndex(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

// WeekdayName returns the English name for a Monday=0 weekday index.
func WeekdayName(idx int) string {
	if idx < 0 || idx > 6 {
		return ""
	}
	return weekdayNames[idx]
}
