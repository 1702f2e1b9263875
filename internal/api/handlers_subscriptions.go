package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/autobuyer/internal/schedule"
	"github.com/terraincognita07/autobuyer/internal/services"
)

type schedulePayload struct {
	StartDate          string `json:"start_date" validate:"required,max=32"`
	FrequencyKind      string `json:"frequency_kind" validate:"omitempty,max=16"`
	FrequencyPreset    string `json:"frequency_preset" validate:"omitempty,max=32"`
	FrequencyValue     int    `json:"frequency_value" validate:"gte=0,lte=1000"`
	FrequencyUnit      string `json:"frequency_unit" validate:"omitempty,max=16"`
	DayConstraintKind  string `json:"day_constraint_kind" validate:"omitempty,max=16"`
	DayConstraintValue int    `json:"day_constraint_value" validate:"gte=-1,lte=31"`
}

func (payload schedulePayload) rawPlan() schedule.RawPlan {
	return schedule.RawPlan{
		StartDate:       payload.StartDate,
		FrequencyKind:   payload.FrequencyKind,
		FrequencyPreset: payload.FrequencyPreset,
		FrequencyValue:  payload.FrequencyValue,
		FrequencyUnit:   payload.FrequencyUnit,
		ConstraintKind:  payload.DayConstraintKind,
		ConstraintValue: payload.DayConstraintValue,
	}
}

type subscriptionPayload struct {
	ProductID uint `json:"product_id" validate:"required"`
	schedulePayload
}

type dueSkip struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

func (handler *Handler) ListSubscriptions(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	views, err := handler.subscriptions.ListForUser(user.ID, handler.localNow())
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(views)
}

func (handler *Handler) CreateSubscription(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	payload := subscriptionPayload{}
	if ok, err := handler.bindJSON(c, &payload); !ok {
		return err
	}

	subscription, err := handler.subscriptions.Create(user.ID, services.SubscriptionInput{
		ProductID: payload.ProductID,
		Plan:      payload.rawPlan(),
	}, handler.localNow())
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(subscription)
}

func (handler *Handler) UpdateSubscription(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	subscriptionID, ok := parseIDParam(c)
	if !ok {
		return apiError(c, fiber.StatusBadRequest, "invalid id")
	}
	payload := schedulePayload{}
	if ok, err := handler.bindJSON(c, &payload); !ok {
		return err
	}

	subscription, err := handler.subscriptions.Update(user.ID, subscriptionID, payload.rawPlan(), handler.localNow())
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(subscription)
}

func (handler *Handler) ActivateSubscription(c *fiber.Ctx) error {
	return handler.setSubscriptionActive(c, true)
}

func (handler *Handler) DeactivateSubscription(c *fiber.Ctx) error {
	return handler.setSubscriptionActive(c, false)
}

func (handler *Handler) setSubscriptionActive(c *fiber.Ctx, active bool) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	subscriptionID, ok := parseIDParam(c)
	if !ok {
		return apiError(c, fiber.StatusBadRequest, "invalid id")
	}

	subscription, err := handler.subscriptions.SetActive(user.ID, subscriptionID, active, handler.localNow())
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(subscription)
}

func (handler *Handler) DeleteSubscription(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	subscriptionID, ok := parseIDParam(c)
	if !ok {
		return apiError(c, fiber.StatusBadRequest, "invalid id")
	}

	if err := handler.subscriptions.Delete(user.ID, subscriptionID); err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DueSubscriptions previews which of the user's subscriptions fall due on
// ?date=YYYY-MM-DD, tomorrow when omitted.
func (handler *Handler) DueSubscriptions(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	now := handler.localNow()
	target, err := services.ParseTargetDate(c.Query("date"), now)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid date")
	}

	selection, err := handler.subscriptions.DuePreview(user.ID, target, now)
	if err != nil {
		return handler.respondServiceError(c, err)
	}

	skipped := make([]dueSkip, 0, len(selection.Skipped))
	for _, recordErr := range selection.Skipped {
		skipped = append(skipped, dueSkip{Index: recordErr.Index, Error: recordErr.Err.Error()})
	}
	return c.JSON(fiber.Map{
		"target":  schedule.FormatDate(target),
		"due":     selection.Due,
		"skipped": skipped,
	})
}
