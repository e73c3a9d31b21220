// Package group exposes the study group lifecycle over the JSON API.
package group

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/studybuddy/studybuddy-server/internal/config"
	controller "github.com/studybuddy/studybuddy-server/internal/db/controller/group"
	"github.com/studybuddy/studybuddy-server/internal/web/handler"
	"github.com/studybuddy/studybuddy-server/internal/web/middleware/identity"
)

const (
	// Path is the base path of the study group routes.
	Path = "/api/v1/groups"
)

// Service is the study group handler service.
type Service struct {
	handler.Service
	cfg       *config.Config
	db        *gorm.DB
	validator *validator.Validate
}

// Handler is the study group handler.
var Handler = Service{}

type groupRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Subject     string `json:"subject" validate:"required"`
	MaxMembers  int    `json:"maxMembers" validate:"omitempty,min=2,max=50"`
	IsPublic    bool   `json:"isPublic"`
}

// Init initializes the study group handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New("app or db is nil")
	}

	s.db = db
	s.cfg = cfg
	s.validator = validator.New()

	// register routes
	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RootPath, s.ListPublic)
		router.Post(handler.RootPath, s.Create)
		router.Get("/mine", s.ListMine)
		router.Get("/:id", s.Get)
		router.Put("/:id", s.Update)
		router.Delete("/:id", s.Delete)
	})

	return nil
}

// Create handles the creation of a new study group.
func (s *Service) Create(c *fiber.Ctx) error {
	var req groupRequest
	if err := c.BodyParser(&req); err != nil {
		return handler.FailWithStatus(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := s.validator.Struct(req); err != nil {
		return handler.FailWithStatus(c, fiber.StatusBadRequest, handler.ValidationMessage(err))
	}

	grp, err := controller.Create(s.db, controller.Params{
		Name:        req.Name,
		Description: req.Description,
		Subject:     req.Subject,
		MaxMembers:  req.MaxMembers,
		IsPublic:    req.IsPublic,
	}, identity.UserID(c))
	if err != nil {
		log.Debug().Err(err).Msg("failed to create study group")
		return handler.Fail(c, err)
	}

	return handler.Created(c, grp)
}

// ListPublic handles listing all public study groups.
func (s *Service) ListPublic(c *fiber.Ctx) error {
	groups, err := controller.ListPublic(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to list public study groups")
		return handler.Fail(c, err)
	}

	return handler.OK(c, groups)
}

// ListMine handles listing the groups the calling user belongs to.
func (s *Service) ListMine(c *fiber.Ctx) error {
	groups, err := controller.ListForUser(s.db, identity.UserID(c))
	if err != nil {
		log.Error().Err(err).Msg("failed to list study groups for user")
		return handler.Fail(c, err)
	}

	return handler.OK(c, groups)
}

// Get handles reading one study group with members and messages.
func (s *Service) Get(c *fiber.Ctx) error {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		return handler.FailWithStatus(c, fiber.StatusBadRequest, err.Error())
	}

	grp, err := controller.GetDetails(s.db, id)
	if err != nil {
		return handler.Fail(c, err)
	}

	return handler.OK(c, grp)
}

// Update handles changing a study group's settings.
func (s *Service) Update(c *fiber.Ctx) error {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		return handler.FailWithStatus(c, fiber.StatusBadRequest, err.Error())
	}

	var req groupRequest
	if err = c.BodyParser(&req); err != nil {
		return handler.FailWithStatus(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err = s.validator.Struct(req); err != nil {
		return handler.FailWithStatus(c, fiber.StatusBadRequest, handler.ValidationMessage(err))
	}

	grp, err := controller.Update(s.db, id, identity.UserID(c), controller.Params{
		Name:        req.Name,
		Description: req.Description,
		Subject:     req.Subject,
		MaxMembers:  req.MaxMembers,
		IsPublic:    req.IsPublic,
	})
	if err != nil {
		log.Debug().Err(err).Uint64("group", id).Msg("failed to update study group")
		return handler.Fail(c, err)
	}

	return handler.OK(c, grp)
}

// Delete handles deleting a study group with its members and messages.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		return handler.FailWithStatus(c, fiber.StatusBadRequest, err.Error())
	}

	if err = controller.Delete(s.db, id, identity.UserID(c)); err != nil {
		log.Debug().Err(err).Uint64("group", id).Msg("failed to delete study group")
		return handler.Fail(c, err)
	}

	return handler.OK(c, nil)
}
