package social

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/mznsh11/Blex/internal/model"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/follow", authMiddleware, func(c *fiber.Ctx) error {
		var req FollowRequest
		if err := c.BodyParser(&req); err != nil || req.Username == "" {
			return fiber.NewError(fiber.StatusBadRequest, "username required")
		}
		actor := c.Locals("username").(string)
		if err := svc.Follow(c.Context(), actor, req.Username); err != nil {
			return socialError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "following"})
	})

	r.Post("/unfollow", authMiddleware, func(c *fiber.Ctx) error {
		var req FollowRequest
		if err := c.BodyParser(&req); err != nil || req.Username == "" {
			return fiber.NewError(fiber.StatusBadRequest, "username required")
		}
		actor := c.Locals("username").(string)
		if err := svc.Unfollow(c.Context(), actor, req.Username); err != nil {
			return socialError(c, err)
		}
		return c.JSON(fiber.Map{"status": "unfollowed"})
	})

	r.Post("/posts/:id/like", authMiddleware, func(c *fiber.Ctx) error {
		postID, err := strconv.Atoi(c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid post id")
		}
		actor := c.Locals("username").(string)
		if err := svc.LikePost(c.Context(), actor, postID); err != nil {
			return socialError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "liked"})
	})

	r.Post("/posts/:id/comments", authMiddleware, func(c *fiber.Ctx) error {
		postID, err := strconv.Atoi(c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid post id")
		}
		var req CommentRequest
		if err := c.BodyParser(&req); err != nil || req.Content == "" {
			return fiber.NewError(fiber.StatusBadRequest, "content required")
		}
		actor := c.Locals("username").(string)
		if err := svc.CommentOnPost(c.Context(), actor, postID, req.Content); err != nil {
			return socialError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "commented"})
	})

	r.Get("/users/search", authMiddleware, func(c *fiber.Ctx) error {
		actor := c.Locals("username").(string)
		return c.JSON(svc.SearchUsers(actor, c.Query("q")))
	})

	r.Get("/users/:identifier", authMiddleware, func(c *fiber.Ctx) error {
		rel, err := svc.Relations(c.Params("identifier"))
		if err != nil {
			return socialError(c, err)
		}
		return c.JSON(rel)
	})
}

// Duplicate edges and repeat likes are no-op conditions, reported in the
// body rather than as failures.
func socialError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, model.ErrAlreadyFollowing),
		errors.Is(err, model.ErrNotFollowing),
		errors.Is(err, model.ErrAlreadyLiked):
		return c.JSON(fiber.Map{"status": err.Error()})
	case errors.Is(err, model.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
