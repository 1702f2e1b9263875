package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/autobuyer/internal/services"
)

type productPayload struct {
	URL      string `json:"url" validate:"required,url,max=2048"`
	Name     string `json:"name" validate:"omitempty,max=200"`
	ImageURL string `json:"image_url" validate:"omitempty,url,max=2048"`
	Price    string `json:"price" validate:"omitempty,max=32"`
}

func (handler *Handler) ListProducts(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	products, err := handler.products.List(user.ID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(products)
}

func (handler *Handler) AddProduct(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	payload := productPayload{}
	if ok, err := handler.bindJSON(c, &payload); !ok {
		return err
	}

	product, err := handler.products.Add(user.ID, services.ProductInput{
		URL:      payload.URL,
		Name:     payload.Name,
		ImageURL: payload.ImageURL,
		Price:    payload.Price,
	}, handler.now())
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

func (handler *Handler) ActivateProduct(c *fiber.Ctx) error {
	return handler.setProductActive(c, true)
}

func (handler *Handler) DeactivateProduct(c *fiber.Ctx) error {
	return handler.setProductActive(c, false)
}

func (handler *Handler) setProductActive(c *fiber.Ctx, active bool) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	productID, ok := parseIDParam(c)
	if !ok {
		return apiError(c, fiber.StatusBadRequest, "invalid id")
	}

	product, err := handler.products.SetActive(user.ID, productID, active)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(product)
}

func (handler *Handler) DeleteProduct(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	productID, ok := parseIDParam(c)
	if !ok {
		return apiError(c, fiber.StatusBadRequest, "invalid id")
	}

	if err := handler.products.Delete(user.ID, productID); err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
