package schedule

import (
	"fmt"
	"time"
)

// LastDayOfMonth pins a MonthDay constraint to the final day of each month.
const LastDayOfMonth = -1

type ConstraintKind uint8

const (
	ConstraintNone ConstraintKind = iota
	ConstraintWeekday
	ConstraintMonthDay
)

func (kind ConstraintKind) String() string {
	switch kind {
	case ConstraintNone:
		return "none"
	case ConstraintWeekday:
		return "weekday"
	case ConstraintMonthDay:
		return "month_day"
	default:
		return "unknown"
	}
}

// DayConstraint optionally pins a computed date to a weekday or a day of the
// month. Weekdays are indexed Monday=0 through Sunday=6.
type DayConstraint struct {
	Kind  ConstraintKind
	Value int
}

func NoConstraint() DayConstraint {
	return DayConstraint{Kind: ConstraintNone}
}

func OnWeekday(index int) DayConstraint {
	return DayConstraint{Kind: ConstraintWeekday, Value: index}
}

func OnMonthDay(day int) DayConstraint {
	return DayConstraint{Kind: ConstraintMonthDay, Value: day}
}

func (constraint DayConstraint) Validate() error {
	switch constraint.Kind {
	case ConstraintNone:
		return nil
	case ConstraintWeekday:
		if constraint.Value < 0 || constraint.Value > 6 {
			return &FieldError{Field: "day_constraint_value", Value: fmt.Sprint(constraint.Value), Err: ErrInvalidWeekday}
		}
		return nil
	case ConstraintMonthDay:
		if constraint.Value != LastDayOfMonth && (constraint.Value < 1 || constraint.Value > 31) {
			return &FieldError{Field: "day_constraint_value", Value: fmt.Sprint(constraint.Value), Err: ErrInvalidMonthDay}
		}
		return nil
	default:
		return &FieldError{Field: "day_constraint_kind", Value: constraint.Kind.String(), Err: ErrUnknownConstraintKind}
	}
}

func (constraint DayConstraint) String() string {
	switch constraint.Kind {
	case ConstraintWeekday:
		return "on " + WeekdayFromIndex(constraint.Value).String()
	case ConstraintMonthDay:
		if constraint.Value == LastDayOfMonth {
			return "on the last day of the month"
		}
		return fmt.Sprintf("on day %d of the month", constraint.Value)
	default:
		return "none"
	}
}

// WeekdayIndex converts a time.Weekday (Sunday=0) to the Monday=0 convention.
func WeekdayIndex(day time.Weekday) int {
	return (int(day) + 6) % 7
}

func WeekdayFromIndex(index int) time.Weekday {
	return time.Weekday((index + 1) % 7)
}

// apply coerces raw, which is already strictly after today, onto the
// constraint. An invalid constraint leaves raw untouched.
func (constraint DayConstraint) apply(raw time.Time, increment Increment, today time.Time) time.Time {
	if constraint.Validate() != nil {
		return raw
	}

	switch constraint.Kind {
	case ConstraintWeekday:
		shift := (constraint.Value - WeekdayIndex(raw.Weekday()) + 7) % 7
		candidate := raw.AddDate(0, 0, shift)
		if !candidate.After(today) {
			candidate = candidate.AddDate(0, 0, 7)
		}
		return candidate
	case ConstraintMonthDay:
		year, month, _ := raw.Date()
		period := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
		candidate := pinMonthDay(period, constraint.Value)
		for !candidate.After(today) {
			period = AddMonths(period, increment.months())
			candidate = pinMonthDay(period, constraint.Value)
		}
		return candidate
	default:
		return raw
	}
}

func pinMonthDay(period time.Time, day int) time.Time {
	year, month, _ := period.Date()
	last := DaysInMonth(year, month)
	if day == LastDayOfMonth || day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
