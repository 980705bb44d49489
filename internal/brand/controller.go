package brand

import (
	"context"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nevisai/platform/internal/auth"
	"github.com/nevisai/platform/internal/models"
)

// Store is what the handlers need from the repo.
type Store interface {
	Create(ctx context.Context, profile *models.BrandProfile) error
	ListByUser(ctx context.Context, userID string) ([]models.BrandProfile, error)
	Get(ctx context.Context, id, userID string) (*models.BrandProfile, error)
	Update(ctx context.Context, profile *models.BrandProfile) error
	Delete(ctx context.Context, id, userID string) error
}

type Controller struct {
	store Store
}

func MountController(router fiber.Router, store Store) {
	ctl := &Controller{store: store}
	router.Post("/brands", ctl.Create)
	router.Get("/brands", ctl.List)
	router.Get("/brands/:id", ctl.Get)
	router.Put("/brands/:id", ctl.Update)
	router.Delete("/brands/:id", ctl.Delete)
}

func (ctl *Controller) Create(c *fiber.Ctx) error {
	var body BrandBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := body.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	userID, err := auth.UserID(c, body.UserID)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	profile := profileFromBody(body)
	profile.ID = uuid.NewString()
	profile.UserID = userID

	if err := ctl.store.Create(c.UserContext(), profile); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	log.Printf("Created brand profile %s (%s) for user %s", profile.ID, profile.BusinessName, userID)
	return c.Status(fiber.StatusCreated).JSON(profile)
}

func (ctl *Controller) List(c *fiber.Ctx) error {
	userID, err := auth.UserID(c, c.Query("user_id"))
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	list, err := ctl.store.ListByUser(c.UserContext(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"brands": list, "count": len(list)})
}

func (ctl *Controller) Get(c *fiber.Ctx) error {
	userID, err := auth.UserID(c, c.Query("user_id"))
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	profile, err := ctl.store.Get(c.UserContext(), c.Params("id"), userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "brand not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(profile)
}

func (ctl *Controller) Update(c *fiber.Ctx) error {
	var body BrandBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := body.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	userID, err := auth.UserID(c, body.UserID)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	existing, err := ctl.store.Get(c.UserContext(), c.Params("id"), userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "brand not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	updated := profileFromBody(body)
	updated.ID = existing.ID
	updated.UserID = existing.UserID
	updated.CreatedAt = existing.CreatedAt

	if err := ctl.store.Update(c.UserContext(), updated); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(updated)
}

func (ctl *Controller) Delete(c *fiber.Ctx) error {
	userID, err := auth.UserID(c, c.Query("user_id"))
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	id := c.Params("id")
	if err := ctl.store.Delete(c.UserContext(), id, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "brand not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	log.Printf("Deleted brand profile %s for user %s", id, userID)
	return c.JSON(fiber.Map{"deleted": id})
}

func profileFromBody(body BrandBody) *models.BrandProfile {
	return &models.BrandProfile{
		BusinessName:     body.BusinessName,
		BusinessType:     body.BusinessType,
		Industry:         body.Industry,
		Location:         body.Location,
		WebsiteURL:       body.WebsiteURL,
		Description:      body.Description,
		Services:         body.Services,
		TargetAudience:   body.TargetAudience,
		ValueProposition: body.ValueProposition,
		CallsToAction:    body.CallsToAction,
		ContactEmail:     body.ContactEmail,
		ContactPhone:     body.ContactPhone,
		SocialLinks:      body.SocialLinks,
		BrandColors:      body.BrandColors,
	}
}
