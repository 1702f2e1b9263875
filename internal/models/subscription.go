package models

import (
	"time"

	"github.com/terraincognita07/autobuyer/internal/schedule"
)

const (
	FrequencyKindPreset = "preset"
	FrequencyKindCustom = "custom"

	ConstraintKindNone     = "none"
	ConstraintKindWeekday  = "weekday"
	ConstraintKindMonthDay = "month_day"
)

// Subscription keeps its schedule fields in stored form. NextDueDate is a
// cache recomputed from them and never edited directly.
type Subscription struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	UserID             uint       `gorm:"not null;index" json:"user_id"`
	ProductID          uint       `gorm:"not null;index" json:"product_id"`
	StartDate          string     `gorm:"not null" json:"start_date"`
	FrequencyKind      string     `gorm:"not null" json:"frequency_kind"`
	FrequencyPreset    string     `json:"frequency_preset,omitempty"`
	FrequencyValue     int        `gorm:"not null" json:"frequency_value,omitempty"`
	FrequencyUnit      string     `json:"frequency_unit,omitempty"`
	DayConstraintKind  string     `gorm:"not null" json:"day_constraint_kind"`
	DayConstraintValue int        `gorm:"not null" json:"day_constraint_value"`
	IsActive           bool       `gorm:"not null" json:"is_active"`
	NextDueDate        *time.Time `gorm:"type:date" json:"next_due_date,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`

	User    User    `gorm:"foreignKey:UserID" json:"-"`
	Product Product `gorm:"foreignKey:ProductID" json:"product"`
}

func (subscription Subscription) RawPlan() schedule.RawPlan {
	return schedule.RawPlan{
		StartDate:       subscription.StartDate,
		FrequencyKind:   subscription.FrequencyKind,
		FrequencyPreset: subscription.FrequencyPreset,
		FrequencyValue:  subscription.FrequencyValue,
		FrequencyUnit:   subscription.FrequencyUnit,
		ConstraintKind:  subscription.DayConstraintKind,
		ConstraintValue: subscription.DayConstraintValue,
	}
}

func (subscription Subscription) ScheduleActive() bool {
	return subscription.IsActive
}

func (subscription Subscription) SchedulePlan() (schedule.Plan, error) {
	return schedule.ParsePlan(subscription.RawPlan())
}

// ApplyPlan stores plan in normalized form.
func (subscription *Subscription) ApplyPlan(plan schedule.Plan) {
	subscription.StartDate = schedule.FormatDate(plan.Start)

	switch plan.Frequency.Kind {
	case schedule.FrequencyCustom:
		subscription.FrequencyKind = FrequencyKindCustom
		subscription.FrequencyPreset = ""
		subscription.FrequencyValue = plan.Frequency.Value
		subscription.FrequencyUnit = string(plan.Frequency.Unit)
	default:
		subscription.FrequencyKind = FrequencyKindPreset
		subscription.FrequencyPreset = string(plan.Frequency.Preset)
		subscription.FrequencyValue = 0
		subscription.FrequencyUnit = ""
	}

	subscription.DayConstraintKind = plan.Constraint.Kind.String()
	subscription.DayConstraintValue = plan.Constraint.Value
}

func (subscription Subscription) NextDueEquals(value time.Time) bool {
	if subscription.NextDueDate == nil {
		return false
	}
	return schedule.SameDate(*subscription.NextDueDate, value)
}
