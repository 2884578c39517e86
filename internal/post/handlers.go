package post

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/mznsh11/Blex/internal/model"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		var req CreatePostRequest
		if err := c.BodyParser(&req); err != nil || req.Caption == "" {
			return fiber.NewError(fiber.StatusBadRequest, "caption required")
		}
		actor := c.Locals("username").(string)
		created, err := svc.CreatePost(c.Context(), actor, req)
		if err != nil {
			return postError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(created)
	})

	r.Post("/listings", authMiddleware, func(c *fiber.Ctx) error {
		var req CreateListingRequest
		if err := c.BodyParser(&req); err != nil || req.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name required")
		}
		actor := c.Locals("username").(string)
		created, err := svc.CreateListing(c.Context(), actor, req)
		if err != nil {
			return postError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(created)
	})

	r.Post("/jobs", authMiddleware, func(c *fiber.Ctx) error {
		var req CreateJobRequest
		if err := c.BodyParser(&req); err != nil || req.Title == "" {
			return fiber.NewError(fiber.StatusBadRequest, "title required")
		}
		actor := c.Locals("username").(string)
		created, err := svc.CreateJobPosting(c.Context(), actor, req)
		if err != nil {
			return postError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(created)
	})

	r.Delete("/:id", authMiddleware, func(c *fiber.Ctx) error {
		postID, err := strconv.Atoi(c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid post id")
		}
		actor := c.Locals("username").(string)
		if err := svc.DeletePost(c.Context(), actor, postID); err != nil {
			return postError(err)
		}
		return c.JSON(fiber.Map{"status": "deleted"})
	})

	r.Get("/listings/search", func(c *fiber.Ctx) error {
		return c.JSON(svc.SearchListings(c.Query("q")))
	})

	r.Get("/jobs/search", func(c *fiber.Ctx) error {
		return c.JSON(svc.SearchJobs(c.Query("q")))
	})

	r.Get("/user/:identifier", func(c *fiber.Ctx) error {
		posts, err := svc.UserPosts(c.Params("identifier"))
		if err != nil {
			return postError(err)
		}
		return c.JSON(posts)
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		postID, err := strconv.Atoi(c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid post id")
		}
		found, err := svc.GetPost(postID)
		if err != nil {
			return postError(err)
		}
		return c.JSON(found)
	})
}

func postError(err error) error {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrProfessionalOnly):
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
