package schedule

import "time"

const dateLayout = "2006-01-02"

// DateOf drops the time-of-day of value as seen in its own location and returns
// that calendar date at midnight UTC. Callers convert "now" into the reference
// time zone before calling.
func DateOf(value time.Time) time.Time {
	year, month, day := value.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func FormatDate(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return DateOf(value).Format(dateLayout)
}

func SameDate(a, b time.Time) bool {
	return DateOf(a).Equal(DateOf(b))
}

// DaysInMonth reports the number of days of month in year, leap years included.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func LastDayOf(value time.Time) time.Time {
	year, month, _ := value.Date()
	return time.Date(year, month, DaysInMonth(year, month), 0, 0, 0, 0, time.UTC)
}

// AddMonths moves value by months calendar months. The day of month is kept
// when the target month has it and clamped to the target month's last day
// otherwise, so Jan 31 + 1 month is Feb 28/29 and never Mar 2/3.
func AddMonths(value time.Time, months int) time.Time {
	year, month, day := value.Date()
	total := int(month) - 1 + months
	targetYear := year + floorDiv(total, 12)
	targetMonth := time.Month(floorMod(total, 12) + 1)
	if last := DaysInMonth(targetYear, targetMonth); day > last {
		day = last
	}
	return time.Date(targetYear, targetMonth, day, 0, 0, 0, 0, time.UTC)
}

// AddIncrement applies increment times times to value in a single calendar
// step. For month and year units this can differ from times successive
// additions once a step clamps the day of month.
func AddIncrement(value time.Time, increment Increment, times int) time.Time {
	increment = increment.normalized()
	steps := increment.Count * times
	switch increment.Unit {
	case UnitWeek:
		return DateOf(value).AddDate(0, 0, 7*steps)
	case UnitMonth:
		return AddMonths(DateOf(value), steps)
	case UnitYear:
		return AddMonths(DateOf(value), 12*steps)
	default:
		return DateOf(value).AddDate(0, 0, steps)
	}
}

func daysBetween(from, to time.Time) int {
	return int(DateOf(to).Sub(DateOf(from)).Hours() / 24)
}

func monthsBetween(from, to time.Time) int {
	fromYear, fromMonth, _ := from.Date()
	toYear, toMonth, _ := to.Date()
	return (toYear-fromYear)*12 + int(toMonth) - int(fromMonth)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	return a - floorDiv(a, b)*b
}
