package schedule

import "fmt"

type Unit string

const (
	UnitDay   Unit = "day"
	UnitWeek  Unit = "week"
	UnitMonth Unit = "month"
	UnitYear  Unit = "year"
)

func (unit Unit) Valid() bool {
	switch unit {
	case UnitDay, UnitWeek, UnitMonth, UnitYear:
		return true
	default:
		return false
	}
}

// MonthBased reports whether the unit is measured in calendar months.
func (unit Unit) MonthBased() bool {
	return unit == UnitMonth || unit == UnitYear
}

// Increment is a single calendar step of exactly one kind.
type Increment struct {
	Unit  Unit
	Count int
}

var dailyIncrement = Increment{Unit: UnitDay, Count: 1}

func (increment Increment) normalized() Increment {
	if !increment.Unit.Valid() || increment.Count < 1 {
		return dailyIncrement
	}
	return increment
}

func (increment Increment) String() string {
	increment = increment.normalized()
	if increment.Count == 1 {
		return fmt.Sprintf("1 %s", increment.Unit)
	}
	return fmt.Sprintf("%d %ss", increment.Count, increment.Unit)
}

// months returns the span of a month-based increment in months, or one month
// for day and week increments.
func (increment Increment) months() int {
	increment = increment.normalized()
	switch increment.Unit {
	case UnitMonth:
		return increment.Count
	case UnitYear:
		return 12 * increment.Count
	default:
		return 1
	}
}

type Preset string

const (
	PresetDaily      Preset = "daily"
	PresetWeekly     Preset = "weekly"
	PresetBiweekly   Preset = "biweekly"
	PresetMonthly    Preset = "monthly"
	PresetBimonthly  Preset = "bimonthly"
	PresetQuarterly  Preset = "quarterly"
	PresetSemiannual Preset = "semiannual"
	PresetAnnual     Preset = "annual"
)

var presetOrder = []Preset{
	PresetDaily,
	PresetWeekly,
	PresetBiweekly,
	PresetMonthly,
	PresetBimonthly,
	PresetQuarterly,
	PresetSemiannual,
	PresetAnnual,
}

var presetIncrements = map[Preset]Increment{
	PresetDaily:      {Unit: UnitDay, Count: 1},
	PresetWeekly:     {Unit: UnitWeek, Count: 1},
	PresetBiweekly:   {Unit: UnitWeek, Count: 2},
	PresetMonthly:    {Unit: UnitMonth, Count: 1},
	PresetBimonthly:  {Unit: UnitMonth, Count: 2},
	PresetQuarterly:  {Unit: UnitMonth, Count: 3},
	PresetSemiannual: {Unit: UnitMonth, Count: 6},
	PresetAnnual:     {Unit: UnitYear, Count: 1},
}

// Presets lists the named cadences from shortest to longest.
func Presets() []Preset {
	result := make([]Preset, len(presetOrder))
	copy(result, presetOrder)
	return result
}

func (preset Preset) Increment() (Increment, bool) {
	increment, ok := presetIncrements[preset]
	return increment, ok
}

type FrequencyKind uint8

const (
	FrequencyPreset FrequencyKind = iota + 1
	FrequencyCustom
)

func (kind FrequencyKind) String() string {
	switch kind {
	case FrequencyPreset:
		return "preset"
	case FrequencyCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// Frequency describes how often a purchase recurs. Exactly one variant is
// populated: a named preset, or a custom count of a unit.
type Frequency struct {
	Kind   FrequencyKind
	Preset Preset
	Value  int
	Unit   Unit
}

func PresetFrequency(preset Preset) Frequency {
	return Frequency{Kind: FrequencyPreset, Preset: preset}
}

func CustomFrequency(value int, unit Unit) Frequency {
	return Frequency{Kind: FrequencyCustom, Value: value, Unit: unit}
}

func (frequency Frequency) Validate() error {
	switch frequency.Kind {
	case FrequencyPreset:
		if _, ok := frequency.Preset.Increment(); !ok {
			return &FieldError{Field: "frequency_preset", Value: string(frequency.Preset), Err: ErrUnknownPreset}
		}
		return nil
	case FrequencyCustom:
		if frequency.Value < 1 {
			return &FieldError{Field: "frequency_value", Value: fmt.Sprint(frequency.Value), Err: ErrInvalidInterval}
		}
		if !frequency.Unit.Valid() {
			return &FieldError{Field: "frequency_unit", Value: string(frequency.Unit), Err: ErrUnknownUnit}
		}
		return nil
	default:
		return &FieldError{Field: "frequency_kind", Value: frequency.Kind.String(), Err: ErrUnknownFrequencyKind}
	}
}

// Increment resolves the frequency into one calendar step. Anything that does
// not validate resolves to one day.
func (frequency Frequency) Increment() Increment {
	switch frequency.Kind {
	case FrequencyPreset:
		if increment, ok := frequency.Preset.Increment(); ok {
			return increment
		}
	case FrequencyCustom:
		return Increment{Unit: frequency.Unit, Count: frequency.Value}.normalized()
	}
	return dailyIncrement
}

func (frequency Frequency) String() string {
	if frequency.Kind == FrequencyPreset {
		return string(frequency.Preset)
	}
	return "every " + frequency.Increment().String()
}
