package attendance

// =============================================================================
// CALENDAR CLASSIFIER - Day type and required-minute table
// =============================================================================

// Classify returns the category for a date. An explicit override (an
// already-recorded holiday or leave on that date) wins; otherwise days
// outside the working-day set are weekends and the rest are workdays.
func Classify(date TimePoint, working WorkingDays, override *Category) Category {
	if override != nil {
		return *override
	}
	if !working.Contains(date.Weekday()) {
		return CategoryWeekend
	}
	return CategoryWorkday
}

// RequiredMinutes returns the minutes a day of the given category demands,
// given the daily requirement:
//
//	workday         full requirement
//	weekend         0
//	half-day leave  half the requirement (integer division)
//	full-day leave  0
//	holiday         0
//	unknown         full requirement (treated as a workday)
func RequiredMinutes(category Category, dailyRequired int) int {
	switch category {
	case CategoryWorkday:
		return dailyRequired
	case CategoryWeekend:
		return 0
	case CategoryHalfLeave:
		return dailyRequired / 2
	case CategoryFullLeave:
		return 0
	case CategoryHoliday:
		return 0
	default:
		return dailyRequired
	}
}
