package message

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/mznsh11/Blex/internal/model"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		var req SendRequest
		if err := c.BodyParser(&req); err != nil || req.To == "" || req.Content == "" {
			return fiber.NewError(fiber.StatusBadRequest, "to and content required")
		}
		actor := c.Locals("username").(string)
		sent, err := svc.SendMessage(c.Context(), actor, req)
		if err != nil {
			return messageError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(sent)
	})

	r.Get("/inbox", authMiddleware, func(c *fiber.Ctx) error {
		actor := c.Locals("username").(string)
		messages, err := svc.Inbox(actor)
		if err != nil {
			return messageError(err)
		}
		return c.JSON(messages)
	})

	r.Get("/sent", authMiddleware, func(c *fiber.Ctx) error {
		actor := c.Locals("username").(string)
		messages, err := svc.Sent(actor)
		if err != nil {
			return messageError(err)
		}
		return c.JSON(messages)
	})
}

func messageError(err error) error {
	if errors.Is(err, model.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, err.Error())
}
