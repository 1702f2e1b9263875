package services

import (
	"time"

	"github.com/terraincognita07/autobuyer/internal/schedule"
)

func DateAtLocation(value time.Time, location *time.Location) time.Time {
	if location == nil {
		location = time.UTC
	}
	localized := value.In(location)
	year, month, day := localized.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, location)
}

// LocalNow is value seen from location. Schedules compare calendar dates, so
// "today" is whatever date it is in the configured time zone.
func LocalNow(value time.Time, location *time.Location) time.Time {
	if location == nil {
		return value.UTC()
	}
	return value.In(location)
}

// ParseTargetDate reads an optional YYYY-MM-DD date and defaults to the day
// after now.
func ParseTargetDate(raw string, now time.Time) (time.Time, error) {
	if raw == "" {
		return schedule.ReminderTarget(now), nil
	}
	return schedule.ParseDate(raw)
}
