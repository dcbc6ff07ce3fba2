package util

import "time"

// TrailingWindow returns [now-window, now] in UTC.
func TrailingWindow(now time.Time, window time.Duration) (time.Time, time.Time) {
	now = now.UTC()
	return now.Add(-window), now
}

// DaysCovering returns the number of whole days needed to cover hours. Never below 1.
func DaysCovering(hours int) int {
	if hours <= 0 {
		return 1
	}
	return (hours + 23) / 24
}

// TruncateHour rounds t down to the hour in UTC.
func TruncateHour(t time.Time) time.Time {
	return t.UTC().Truncate(time.Hour)
}
