package attendance

import "fmt"

// =============================================================================
// DISPLAY FORMATTING - Minutes to human-readable strings
// =============================================================================

// FormatMinutes renders minutes as (-)HH:MM, zero-padded. Hours are not
// capped at 24.
func FormatMinutes(minutes int) string {
	sign := ""
	if minutes < 0 {
		sign = "-"
		minutes = -minutes
	}
	return fmt.Sprintf("%s%02d:%02d", sign, minutes/60, minutes%60)
}

// FormatBalance renders minutes as days, hours and minutes, where one day
// equals the daily requirement ("1d 02:30", "-07:57", "45m"). A zero value
// renders neutrally ("00m"), never signed. Degrades to "0d 00:00" when no
// daily requirement is configured.
func FormatBalance(minutes, dailyRequired int) string {
	if dailyRequired <= 0 {
		return "0d 00:00"
	}

	sign := ""
	if minutes < 0 {
		sign = "-"
		minutes = -minutes
	}

	days := minutes / dailyRequired
	remaining := minutes % dailyRequired
	hours := remaining / 60
	mins := remaining % 60

	switch {
	case days > 0 && (hours > 0 || mins > 0):
		return fmt.Sprintf("%s%dd %02d:%02d", sign, days, hours, mins)
	case days > 0:
		return fmt.Sprintf("%s%dd", sign, days)
	case hours > 0:
		return fmt.Sprintf("%s%02d:%02d", sign, hours, mins)
	default:
		return fmt.Sprintf("%s%02dm", sign, mins)
	}
}
