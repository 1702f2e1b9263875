package schedule

import (
	"errors"
	"testing"
	"time"
)

type stubSource struct {
	name   string
	active bool
	plan   Plan
	err    error
	panics bool
}

func (stub stubSource) ScheduleActive() bool {
	return stub.active
}

func (stub stubSource) SchedulePlan() (Plan, error) {
	if stub.panics {
		panic("corrupt record")
	}
	return stub.plan, stub.err
}

func weeklyFrom(start time.Time) Plan {
	return Plan{Start: start, Frequency: PresetFrequency(PresetWeekly)}
}

func TestSelectDueKeepsOnlyActiveMatches(t *testing.T) {
	now := date(2024, time.June, 10)
	target := ReminderTarget(now)

	items := []stubSource{
		{name: "due", active: true, plan: weeklyFrom(date(2024, time.June, 4))},
		{name: "inactive due", active: false, plan: weeklyFrom(date(2024, time.June, 4))},
		{name: "not due", active: true, plan: weeklyFrom(date(2024, time.June, 5))},
		{name: "due later in list", active: true, plan: Plan{Start: date(2024, time.June, 9), Frequency: CustomFrequency(2, UnitDay)}},
		{name: "future start due", active: true, plan: weeklyFrom(date(2024, time.June, 11))},
	}

	selection := SelectDue(items, target, now)

	want := []string{"due", "due later in list", "future start due"}
	if len(selection.Due) != len(want) {
		t.Fatalf("SelectDue() returned %d items, want %d: %#v", len(selection.Due), len(want), selection.Due)
	}
	for index, name := range want {
		if selection.Due[index].name != name {
			t.Fatalf("Due[%d] = %q, want %q", index, selection.Due[index].name, name)
		}
	}
	if selection.Inactive != 1 {
		t.Fatalf("Inactive = %d, want 1", selection.Inactive)
	}
	if len(selection.Skipped) != 0 {
		t.Fatalf("unexpected skipped records: %v", selection.Skipped)
	}
}

func TestSelectDueSkipsMalformedRecords(t *testing.T) {
	now := date(2024, time.June, 10)
	target := date(2024, time.June, 11)

	_, parseErr := ParsePlan(RawPlan{StartDate: "31/05/2024", FrequencyPreset: "weekly"})
	items := []stubSource{
		{name: "first", active: true, plan: weeklyFrom(date(2024, time.June, 4))},
		{name: "malformed", active: true, err: parseErr},
		{name: "second", active: true, plan: Plan{Start: date(2024, time.May, 11), Frequency: PresetFrequency(PresetMonthly)}},
		{name: "corrupt", active: true, panics: true},
	}

	selection := SelectDue(items, target, now)

	if len(selection.Due) != 2 || selection.Due[0].name != "first" || selection.Due[1].name != "second" {
		t.Fatalf("SelectDue() = %#v, want first and second", selection.Due)
	}
	if len(selection.Skipped) != 2 {
		t.Fatalf("Skipped = %v, want 2 records", selection.Skipped)
	}
	if selection.Skipped[0].Index != 1 || !errors.Is(selection.Skipped[0], ErrInvalidStartDate) {
		t.Fatalf("Skipped[0] = %v, want index 1 with ErrInvalidStartDate", selection.Skipped[0])
	}
	if selection.Skipped[1].Index != 3 || !errors.Is(selection.Skipped[1], ErrRecordPanic) {
		t.Fatalf("Skipped[1] = %v, want index 3 with ErrRecordPanic", selection.Skipped[1])
	}
}

func TestSelectDueAdvancesAgainstNowNotTarget(t *testing.T) {
	now := date(2024, time.June, 10)
	target := date(2024, time.June, 17)

	items := []stubSource{{name: "weekly", active: true, plan: weeklyFrom(date(2024, time.June, 3))}}

	selection := SelectDue(items, target, now)
	if len(selection.Due) != 1 {
		t.Fatalf("expected the occurrence after now (2024-06-17) to match target, got %#v", selection.Due)
	}
}

func TestSelectDueEmptyInput(t *testing.T) {
	selection := SelectDue([]stubSource{}, date(2024, time.June, 11), date(2024, time.June, 10))
	if selection.Due == nil || len(selection.Due) != 0 {
		t.Fatalf("expected empty non-nil due set, got %#v", selection.Due)
	}
}

func TestReminderTargetIsTomorrow(t *testing.T) {
	now := time.Date(2024, time.December, 31, 22, 0, 0, 0, time.UTC)
	if got := ReminderTarget(now); !got.Equal(date(2025, time.January, 1)) {
		t.Fatalf("ReminderTarget() = %s, want 2025-01-01", FormatDate(got))
	}
}
