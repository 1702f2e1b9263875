package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/autobuyer/internal/services"
)

type registerPayload struct {
	Username string `json:"username" validate:"required,min=3,max=32"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type loginPayload struct {
	Login      string `json:"login" validate:"required,max=254"`
	Password   string `json:"password" validate:"required,max=72"`
	RememberMe bool   `json:"remember_me"`
}

type changePasswordPayload struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

func (handler *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (handler *Handler) Register(c *fiber.Ctx) error {
	payload := registerPayload{}
	if ok, err := handler.bindJSON(c, &payload); !ok {
		return err
	}

	user, err := handler.auth.Register(services.RegistrationInput{
		Username: payload.Username,
		Email:    payload.Email,
		Password: payload.Password,
	}, handler.now())
	if err != nil {
		return handler.respondServiceError(c, err)
	}

	token, err := handler.setAuthCookie(c, &user, false)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to create session")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": user, "token": token})
}

func (handler *Handler) Login(c *fiber.Ctx) error {
	payload := loginPayload{}
	if ok, err := handler.bindJSON(c, &payload); !ok {
		return err
	}

	limiterKey := loginLimiterKey(c, payload.Login)
	if handler.loginLimiter.tooMany(limiterKey, loginAttemptLimit) {
		return apiError(c, fiber.StatusTooManyRequests, "too many attempts")
	}

	user, err := handler.auth.Authenticate(payload.Login, payload.Password)
	if err != nil {
		handler.loginLimiter.addFailure(limiterKey)
		return handler.respondServiceError(c, err)
	}
	handler.loginLimiter.reset(limiterKey)

	token, err := handler.setAuthCookie(c, &user, payload.RememberMe)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to create session")
	}
	return c.JSON(fiber.Map{
		"user":                 user,
		"token":                token,
		"must_change_password": user.MustChangePassword,
	})
}

func (handler *Handler) Logout(c *fiber.Ctx) error {
	handler.clearAuthCookie(c)
	return c.JSON(fiber.Map{"ok": true})
}

func (handler *Handler) CurrentUser(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	return c.JSON(user)
}

func (handler *Handler) ChangePassword(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	payload := changePasswordPayload{}
	if ok, err := handler.bindJSON(c, &payload); !ok {
		return err
	}

	if err := handler.auth.ChangePassword(user.ID, payload.CurrentPassword, payload.NewPassword, payload.ConfirmPassword); err != nil {
		return handler.respondServiceError(c, err)
	}

	user.MustChangePassword = false
	if _, err := handler.setAuthCookie(c, user, false); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to create session")
	}
	return c.JSON(fiber.Map{"ok": true})
}
