package models

import (
	"errors"
	"testing"
	"time"

	"github.com/terraincognita07/autobuyer/internal/schedule"
)

func TestSubscriptionApplyPlanStoresNormalizedFields(t *testing.T) {
	plan := schedule.Plan{
		Start:      time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC),
		Frequency:  schedule.CustomFrequency(3, schedule.UnitWeek),
		Constraint: schedule.OnWeekday(4),
	}

	var subscription Subscription
	subscription.ApplyPlan(plan)

	if subscription.StartDate != "2024-03-05" {
		t.Fatalf("unexpected start date %q", subscription.StartDate)
	}
	if subscription.FrequencyKind != FrequencyKindCustom || subscription.FrequencyValue != 3 || subscription.FrequencyUnit != "week" {
		t.Fatalf("unexpected frequency fields %+v", subscription)
	}
	if subscription.DayConstraintKind != ConstraintKindWeekday || subscription.DayConstraintValue != 4 {
		t.Fatalf("unexpected constraint fields %+v", subscription)
	}

	parsed, err := subscription.SchedulePlan()
	if err != nil {
		t.Fatalf("parse stored plan: %v", err)
	}
	if !parsed.Start.Equal(plan.Start) || parsed.Frequency != plan.Frequency || parsed.Constraint != plan.Constraint {
		t.Fatalf("expected %+v, got %+v", plan, parsed)
	}
}

func TestSubscriptionApplyPresetClearsCustomFields(t *testing.T) {
	subscription := Subscription{FrequencyKind: FrequencyKindCustom, FrequencyValue: 9, FrequencyUnit: "day"}
	subscription.ApplyPlan(schedule.Plan{
		Start:      time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		Frequency:  schedule.PresetFrequency(schedule.PresetQuarterly),
		Constraint: schedule.NoConstraint(),
	})

	if subscription.FrequencyKind != FrequencyKindPreset || subscription.FrequencyPreset != "quarterly" {
		t.Fatalf("unexpected preset fields %+v", subscription)
	}
	if subscription.FrequencyValue != 0 || subscription.FrequencyUnit != "" {
		t.Fatalf("expected custom fields cleared, got %+v", subscription)
	}
	if subscription.DayConstraintKind != ConstraintKindNone {
		t.Fatalf("unexpected constraint kind %q", subscription.DayConstraintKind)
	}
}

func TestSubscriptionSchedulePlanRejectsMalformedRow(t *testing.T) {
	subscription := Subscription{StartDate: "yesterday", FrequencyKind: "preset", FrequencyPreset: "sometimes", DayConstraintKind: "none", IsActive: true}

	_, err := subscription.SchedulePlan()
	if !errors.Is(err, schedule.ErrInvalidStartDate) {
		t.Fatalf("expected invalid start date, got %v", err)
	}
	if !errors.Is(err, schedule.ErrUnknownPreset) {
		t.Fatalf("expected unknown preset, got %v", err)
	}
	if !subscription.ScheduleActive() {
		t.Fatal("expected active subscription")
	}
}
