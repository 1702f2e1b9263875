package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/autobuyer/internal/schedule"
)

type frequencyOption struct {
	Preset    schedule.Preset `json:"preset"`
	Increment string          `json:"increment"`
}

func (handler *Handler) Frequencies(c *fiber.Ctx) error {
	presets := schedule.Presets()
	options := make([]frequencyOption, 0, len(presets))
	for _, preset := range presets {
		increment, _ := preset.Increment()
		options = append(options, frequencyOption{Preset: preset, Increment: increment.String()})
	}
	return c.JSON(fiber.Map{
		"presets": options,
		"units":   []schedule.Unit{schedule.UnitDay, schedule.UnitWeek, schedule.UnitMonth, schedule.UnitYear},
		"day_constraints": []string{
			schedule.ConstraintNone.String(),
			schedule.ConstraintWeekday.String(),
			schedule.ConstraintMonthDay.String(),
		},
	})
}

// RunReminders runs the reminder job now and returns its report.
func (handler *Handler) RunReminders(c *fiber.Ctx) error {
	if handler.reminders == nil {
		return apiError(c, fiber.StatusServiceUnavailable, "reminders disabled")
	}

	now := handler.localNow()
	report, err := handler.reminders.Run(c.UserContext(), schedule.ReminderTarget(now), now)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"report":  report,
		"skipped": len(report.Skipped),
	})
}
