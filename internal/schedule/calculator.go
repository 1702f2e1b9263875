package schedule

import "time"

// Plan bundles everything needed to compute a subscription's next due date.
type Plan struct {
	Start      time.Time
	Frequency  Frequency
	Constraint DayConstraint
}

func (plan Plan) NextDue(now time.Time) time.Time {
	return NextDue(plan.Start, plan.Frequency, plan.Constraint, now)
}

// NextDue returns the next date a subscription is due.
//
// A start date after now is returned unchanged. Otherwise the frequency's
// increment is added to start until the result is strictly after now, and the
// day constraint is applied to that date. The result is then always strictly
// after now. Only calendar dates are compared; all results are midnight UTC.
//
// NextDue never fails: a frequency that does not validate advances by one day
// and an invalid constraint is ignored. Callers that need to reject bad input
// validate it first (see ParsePlan).
func NextDue(start time.Time, frequency Frequency, constraint DayConstraint, now time.Time) time.Time {
	startDate := DateOf(start)
	today := DateOf(now)
	if startDate.After(today) {
		return startDate
	}

	increment := frequency.Increment()
	raw := advancePast(startDate, increment, today)
	return constraint.apply(raw, increment, today)
}

// advancePast adds increment to start repeatedly until the result lands
// strictly after today. Each step starts from the previous, already clamped
// date, so Jan 31 monthly runs Feb 29, Mar 29, Apr 29. start must not be
// after today.
func advancePast(start time.Time, increment Increment, today time.Time) time.Time {
	increment = increment.normalized()

	switch increment.Unit {
	case UnitDay, UnitWeek:
		span := increment.Count
		if increment.Unit == UnitWeek {
			span *= 7
		}
		return AddIncrement(start, increment, daysBetween(start, today)/span+1)
	}

	candidate := start
	for !candidate.After(today) {
		steps := 1
		// Days up to 28 never clamp, so k single steps equal one step of k.
		if candidate.Day() <= 28 {
			steps = max(monthsBetween(candidate, today)/increment.months(), 1)
		}
		candidate = AddIncrement(candidate, increment, steps)
	}
	return candidate
}
