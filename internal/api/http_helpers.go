package api

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/autobuyer/internal/services"
	"go.uber.org/zap"
)

func apiError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// bindJSON decodes the request body into payload and runs struct validation.
// It writes the 400/422 response itself and reports whether the caller may
// continue.
func (handler *Handler) bindJSON(c *fiber.Ctx, payload any) (bool, error) {
	if err := c.BodyParser(payload); err != nil {
		return false, apiError(c, fiber.StatusBadRequest, "invalid input")
	}
	if err := handler.validate.Struct(payload); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			fields := make([]string, 0, len(validationErrors))
			for _, fieldErr := range validationErrors {
				fields = append(fields, fieldErr.Field()+":"+fieldErr.Tag())
			}
			return false, c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error":  "validation failed",
				"fields": fields,
			})
		}
		return false, apiError(c, fiber.StatusBadRequest, "invalid input")
	}
	return true, nil
}

func parseIDParam(c *fiber.Ctx) (uint, bool) {
	raw := strings.TrimSpace(c.Params("id"))
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || value == 0 {
		return 0, false
	}
	return uint(value), true
}

// respondServiceError maps service sentinels to HTTP statuses. Anything
// unknown is logged and reported as a 500.
func (handler *Handler) respondServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrAuthCredentialsInvalid),
		errors.Is(err, services.ErrAuthUserNotFound):
		return apiError(c, fiber.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, services.ErrAuthRegistrationInvalid),
		errors.Is(err, services.ErrAuthPasswordChangeInvalid):
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	case errors.Is(err, services.ErrWeakPassword):
		return apiError(c, fiber.StatusBadRequest, "weak password")
	case errors.Is(err, services.ErrAuthPasswordMismatch):
		return apiError(c, fiber.StatusBadRequest, "password mismatch")
	case errors.Is(err, services.ErrAuthInvalidCurrentPassword):
		return apiError(c, fiber.StatusUnauthorized, "invalid current password")
	case errors.Is(err, services.ErrAuthNewPasswordMustDiffer):
		return apiError(c, fiber.StatusBadRequest, "new password must differ")
	case errors.Is(err, services.ErrAuthUserExists):
		return apiError(c, fiber.StatusConflict, "user already exists")
	case errors.Is(err, services.ErrProductNotFound),
		errors.Is(err, services.ErrSubscriptionProductNotFound):
		return apiError(c, fiber.StatusNotFound, "product not found")
	case errors.Is(err, services.ErrSubscriptionNotFound):
		return apiError(c, fiber.StatusNotFound, "subscription not found")
	case errors.Is(err, services.ErrProductInvalidURL):
		return apiError(c, fiber.StatusBadRequest, "invalid product url")
	case errors.Is(err, services.ErrProductInvalidName):
		return apiError(c, fiber.StatusBadRequest, "invalid product name")
	case errors.Is(err, services.ErrSubscriptionInvalidSchedule):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":  "invalid schedule",
			"detail": err.Error(),
		})
	default:
		handler.logger.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return apiError(c, fiber.StatusInternalServerError, "internal error")
	}
}
