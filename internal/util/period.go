package util

import "time"

// DateOnly truncates t to midnight UTC.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// CalculateActualDate returns the date for a target day in a given month,
// handling months with fewer days (e.g., day 31 in February returns Feb 28/29)
func CalculateActualDate(year int, month time.Month, targetDay int) time.Time {
	// Get last day of month by going to day 0 of next month
	lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()

	actualDay := targetDay
	if actualDay > lastDay {
		actualDay = lastDay
	}

	return time.Date(year, month, actualDay, 0, 0, 0, 0, time.UTC)
}

// AddCalendarMonth returns the same day one month later, clamped to the last
// day of shorter months (Jan 31 -> Feb 28/29).
func AddCalendarMonth(t time.Time) time.Time {
	year, month, day := t.Date()
	return CalculateActualDate(year, month+1, day)
}

// PeriodEndFor returns the last day of a one-calendar-month billing window
// starting at start.
func PeriodEndFor(start time.Time) time.Time {
	return AddCalendarMonth(start).AddDate(0, 0, -1)
}

// MonthKey formats t as YYYY-MM for trend grouping.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}
