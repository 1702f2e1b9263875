package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var unitAliases = map[string]Unit{
	"d": UnitDay, "day": UnitDay, "days": UnitDay, "daily": UnitDay,
	"tag": UnitDay, "tage": UnitDay, "tagen": UnitDay,
	"w": UnitWeek, "wk": UnitWeek, "week": UnitWeek, "weeks": UnitWeek, "weekly": UnitWeek,
	"woche": UnitWeek, "wochen": UnitWeek,
	"m": UnitMonth, "mo": UnitMonth, "month": UnitMonth, "months": UnitMonth, "monthly": UnitMonth,
	"monat": UnitMonth, "monate": UnitMonth, "monaten": UnitMonth,
	"y": UnitYear, "yr": UnitYear, "year": UnitYear, "years": UnitYear, "yearly": UnitYear,
	"jahr": UnitYear, "jahre": UnitYear, "jahren": UnitYear,
}

var presetAliases = map[string]Preset{
	"daily": PresetDaily, "täglich": PresetDaily, "taeglich": PresetDaily,
	"weekly": PresetWeekly, "wöchentlich": PresetWeekly, "woechentlich": PresetWeekly,
	"biweekly": PresetBiweekly, "fortnightly": PresetBiweekly,
	"zweiwöchentlich": PresetBiweekly, "zweiwoechentlich": PresetBiweekly,
	"monthly": PresetMonthly, "monatlich": PresetMonthly,
	"bimonthly": PresetBimonthly, "zweimonatlich": PresetBimonthly,
	"quarterly": PresetQuarterly, "vierteljährlich": PresetQuarterly,
	"vierteljaehrlich": PresetQuarterly, "quartalsweise": PresetQuarterly,
	"semiannual": PresetSemiannual, "semi-annual": PresetSemiannual, "semiannually": PresetSemiannual,
	"halbjährlich": PresetSemiannual, "halbjaehrlich": PresetSemiannual,
	"annual": PresetAnnual, "annually": PresetAnnual, "yearly": PresetAnnual,
	"jährlich": PresetAnnual, "jaehrlich": PresetAnnual,
}

var weekdayAliases = map[string]int{
	"monday": 0, "mon": 0, "montag": 0, "mo": 0,
	"tuesday": 1, "tue": 1, "dienstag": 1, "di": 1,
	"wednesday": 2, "wed": 2, "mittwoch": 2, "mi": 2,
	"thursday": 3, "thu": 3, "donnerstag": 3, "do": 3,
	"friday": 4, "fri": 4, "freitag": 4, "fr": 4,
	"saturday": 5, "sat": 5, "samstag": 5, "sa": 5,
	"sunday": 6, "sun": 6, "sonntag": 6, "so": 6,
}

var dateLayouts = []string{
	dateLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05Z07:00",
}

func normalizeToken(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func ParseUnit(raw string) (Unit, error) {
	if unit, ok := unitAliases[normalizeToken(raw)]; ok {
		return unit, nil
	}
	return "", &FieldError{Field: "frequency_unit", Value: raw, Err: ErrUnknownUnit}
}

func ParsePreset(raw string) (Preset, error) {
	if preset, ok := presetAliases[normalizeToken(raw)]; ok {
		return preset, nil
	}
	return "", &FieldError{Field: "frequency_preset", Value: raw, Err: ErrUnknownPreset}
}

// ParseWeekday accepts an English or German day name or a Monday=0 index.
func ParseWeekday(raw string) (int, error) {
	token := normalizeToken(raw)
	if index, ok := weekdayAliases[token]; ok {
		return index, nil
	}
	if index, err := strconv.Atoi(token); err == nil && index >= 0 && index <= 6 {
		return index, nil
	}
	return 0, &FieldError{Field: "day_constraint_value", Value: raw, Err: ErrInvalidWeekday}
}

// ParseDate accepts a plain calendar date or an ISO timestamp and keeps only
// its calendar date.
func ParseDate(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value != "" {
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, value); err == nil {
				return DateOf(parsed), nil
			}
		}
	}
	return time.Time{}, &FieldError{Field: "start_date", Value: raw, Err: ErrInvalidStartDate}
}

func ParseFrequency(kind string, preset string, value int, unit string) (Frequency, error) {
	switch normalizeToken(kind) {
	case "":
		if strings.TrimSpace(preset) != "" {
			return ParseFrequency("preset", preset, value, unit)
		}
		return ParseFrequency("custom", preset, value, unit)
	case "preset":
		parsed, err := ParsePreset(preset)
		if err != nil {
			return Frequency{}, err
		}
		return PresetFrequency(parsed), nil
	case "custom":
		parsedUnit, err := ParseUnit(unit)
		if err != nil {
			return Frequency{}, err
		}
		frequency := CustomFrequency(value, parsedUnit)
		if err := frequency.Validate(); err != nil {
			return Frequency{}, err
		}
		return frequency, nil
	default:
		return Frequency{}, &FieldError{Field: "frequency_kind", Value: kind, Err: ErrUnknownFrequencyKind}
	}
}

func ParseConstraintKind(raw string) (ConstraintKind, error) {
	switch normalizeToken(raw) {
	case "", "none":
		return ConstraintNone, nil
	case "weekday", "wochentag":
		return ConstraintWeekday, nil
	case "month_day", "monthday", "day_of_month", "monatstag":
		return ConstraintMonthDay, nil
	default:
		return ConstraintNone, &FieldError{Field: "day_constraint_kind", Value: raw, Err: ErrUnknownConstraintKind}
	}
}

func ParseDayConstraint(kind string, value int) (DayConstraint, error) {
	parsedKind, err := ParseConstraintKind(kind)
	if err != nil {
		return NoConstraint(), err
	}
	constraint := DayConstraint{Kind: parsedKind, Value: value}
	if parsedKind == ConstraintNone {
		constraint.Value = 0
	}
	if err := constraint.Validate(); err != nil {
		return NoConstraint(), err
	}
	return constraint, nil
}

// RawPlan holds schedule fields as they are stored or submitted, before
// normalization.
type RawPlan struct {
	StartDate       string
	FrequencyKind   string
	FrequencyPreset string
	FrequencyValue  int
	FrequencyUnit   string
	ConstraintKind  string
	ConstraintValue int
}

// ParsePlan normalizes raw into a Plan and rejects anything malformed. All
// field errors are joined into the returned error.
func ParsePlan(raw RawPlan) (Plan, error) {
	var errs []error

	start, err := ParseDate(raw.StartDate)
	if err != nil {
		errs = append(errs, err)
	}
	frequency, err := ParseFrequency(raw.FrequencyKind, raw.FrequencyPreset, raw.FrequencyValue, raw.FrequencyUnit)
	if err != nil {
		errs = append(errs, err)
	}
	constraint, err := ParseDayConstraint(raw.ConstraintKind, raw.ConstraintValue)
	if err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return Plan{}, errors.Join(errs...)
	}
	return Plan{Start: start, Frequency: frequency, Constraint: constraint}, nil
}

// ParsePlanLenient never fails. A bad start date becomes now, an unknown preset
// becomes daily, an unknown custom unit becomes days, a non-positive interval
// becomes daily and a bad constraint becomes none. Every recovery is returned
// so callers can log it.
func ParsePlanLenient(raw RawPlan, now time.Time) (Plan, []error) {
	var recovered []error
	plan := Plan{Constraint: NoConstraint()}

	start, err := ParseDate(raw.StartDate)
	if err != nil {
		recovered = append(recovered, err)
		start = DateOf(now)
	}
	plan.Start = start

	frequency, err := ParseFrequency(raw.FrequencyKind, raw.FrequencyPreset, raw.FrequencyValue, raw.FrequencyUnit)
	if err != nil {
		recovered = append(recovered, err)
		frequency = PresetFrequency(PresetDaily)
		if errors.Is(err, ErrUnknownUnit) && raw.FrequencyValue >= 1 {
			frequency = CustomFrequency(raw.FrequencyValue, UnitDay)
		}
	}
	plan.Frequency = frequency

	constraint, err := ParseDayConstraint(raw.ConstraintKind, raw.ConstraintValue)
	if err != nil {
		recovered = append(recovered, err)
	} else {
		plan.Constraint = constraint
	}

	return plan, recovered
}

func (raw RawPlan) String() string {
	return fmt.Sprintf("start=%s frequency=%s/%s/%d/%s constraint=%s/%d",
		raw.StartDate, raw.FrequencyKind, raw.FrequencyPreset, raw.FrequencyValue, raw.FrequencyUnit,
		raw.ConstraintKind, raw.ConstraintValue)
}
