package utils

import "time"

// DayKeyFormat is the calendar-date key for day buckets, e.g. "Mon Jan 02 2006".
// Keys use local time so a "day" matches the operator's wall clock.
const DayKeyFormat = "Mon Jan 02 2006"

// FormatDayKey formats a time as a day key
func FormatDayKey(t time.Time) string {
	return t.Local().Format(DayKeyFormat)
}

// GetCurrentDayKey returns today's day key
func GetCurrentDayKey() string {
	return FormatDayKey(time.Now())
}

// GetDayKeysForRange generates day keys for the trailing N days ending at
// ref, oldest first. ref's own day is the last element.
func GetDayKeysForRange(ref time.Time, days int) []string {
	dayKeys := make([]string, 0, days)
	for i := days - 1; i >= 0; i-- {
		dayKeys = append(dayKeys, FormatDayKey(ref.AddDate(0, 0, -i)))
	}
	return dayKeys
}
