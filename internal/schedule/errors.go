package schedule

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidStartDate      = errors.New("invalid start date")
	ErrUnknownFrequencyKind  = errors.New("unknown frequency kind")
	ErrUnknownPreset         = errors.New("unknown frequency preset")
	ErrUnknownUnit           = errors.New("unknown interval unit")
	ErrInvalidInterval       = errors.New("interval must be a positive integer")
	ErrUnknownConstraintKind = errors.New("unknown day constraint kind")
	ErrInvalidWeekday        = errors.New("weekday must be between 0 (monday) and 6 (sunday)")
	ErrInvalidMonthDay       = errors.New("month day must be between 1 and 31, or -1 for the last day")
	ErrRecordPanic           = errors.New("schedule evaluation panicked")
)

// FieldError names the stored or submitted field a schedule error came from.
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (err *FieldError) Error() string {
	return fmt.Sprintf("%s %q: %v", err.Field, err.Value, err.Err)
}

func (err *FieldError) Unwrap() error {
	return err.Err
}
