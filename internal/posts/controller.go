package posts

import (
	"context"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/nevisai/platform/internal/auth"
	"github.com/nevisai/platform/internal/models"
)

// Store is what the handlers need from the repo.
type Store interface {
	ListByUser(ctx context.Context, userID string, opts ListOptions) ([]models.GeneratedPost, error)
	Get(ctx context.Context, id string) (*models.GeneratedPost, error)
	Delete(ctx context.Context, id, userID string) error
}

// Remover deletes uploaded media belonging to a post.
type Remover interface {
	Delete(ctx context.Context, paths ...string) error
	ObjectPath(publicURL string) (string, bool)
}

type Controller struct {
	store   Store
	uploads Remover
}

func MountController(router fiber.Router, store Store, uploads Remover) {
	ctl := &Controller{store: store, uploads: uploads}
	router.Get("/posts", ctl.List)
	router.Get("/posts/:id", ctl.Get)
	router.Delete("/posts/:id", ctl.Delete)
}

func (ctl *Controller) List(c *fiber.Ctx) error {
	userID, err := auth.UserID(c, c.Query("user_id"))
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	opts := ListOptions{
		BrandID: c.Query("brand_id"),
		Kind:    c.Query("kind"),
		Limit:   c.QueryInt("limit", 20),
		Offset:  c.QueryInt("offset", 0),
	}
	if opts.Limit < 1 || opts.Limit > 100 {
		opts.Limit = 20
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}

	list, err := ctl.store.ListByUser(c.UserContext(), userID, opts)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"posts": list, "count": len(list)})
}

func (ctl *Controller) Get(c *fiber.Ctx) error {
	userID, err := auth.UserID(c, c.Query("user_id"))
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	post, err := ctl.store.Get(c.UserContext(), c.Params("id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "post not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if post.UserID != userID {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "post not found"})
	}
	return c.JSON(post)
}

func (ctl *Controller) Delete(c *fiber.Ctx) error {
	userID, err := auth.UserID(c, c.Query("user_id"))
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	id := c.Params("id")
	post, err := ctl.store.Get(c.UserContext(), id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "post not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	if err := ctl.store.Delete(c.UserContext(), id, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "post not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	if ctl.uploads != nil && post.ImageURL != nil {
		if path, ok := ctl.uploads.ObjectPath(*post.ImageURL); ok {
			if err := ctl.uploads.Delete(c.UserContext(), path); err != nil {
				log.Printf("Delete media for post %s: %v", id, err)
			}
		}
	}

	log.Printf("Deleted post %s for user %s", id, userID)
	return c.JSON(fiber.Map{"deleted": id})
}
