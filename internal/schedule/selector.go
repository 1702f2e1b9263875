package schedule

import (
	"fmt"
	"time"
)

// Source is a record the due-set selector can evaluate.
type Source interface {
	ScheduleActive() bool
	SchedulePlan() (Plan, error)
}

// RecordError is a record that could not be evaluated, by input position.
type RecordError struct {
	Index int
	Err   error
}

func (err RecordError) Error() string {
	return fmt.Sprintf("record %d: %v", err.Index, err.Err)
}

func (err RecordError) Unwrap() error {
	return err.Err
}

type Selection[T Source] struct {
	Due      []T
	Skipped  []RecordError
	Inactive int
}

// ReminderTarget is the date the daily reminder job checks: tomorrow.
func ReminderTarget(now time.Time) time.Time {
	return DateOf(now).AddDate(0, 0, 1)
}

// SelectDue keeps the active items whose next due date, computed against now,
// equals target. now stays the actual current time even when target lies in
// the future. Due preserves input order. Records whose plan cannot be built
// are reported in Skipped and never abort the batch.
func SelectDue[T Source](items []T, target time.Time, now time.Time) Selection[T] {
	selection := Selection[T]{Due: make([]T, 0)}
	targetDate := DateOf(target)

	for index, item := range items {
		if !item.ScheduleActive() {
			selection.Inactive++
			continue
		}

		due, err := evaluate(item, now)
		if err != nil {
			selection.Skipped = append(selection.Skipped, RecordError{Index: index, Err: err})
			continue
		}
		if due.Equal(targetDate) {
			selection.Due = append(selection.Due, item)
		}
	}

	return selection
}

func evaluate(item Source, now time.Time) (due time.Time, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("%w: %v", ErrRecordPanic, recovered)
		}
	}()

	plan, err := item.SchedulePlan()
	if err != nil {
		return time.Time{}, err
	}
	return plan.NextDue(now), nil
}
