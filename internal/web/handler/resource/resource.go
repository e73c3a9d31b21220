// Package resource exposes study resource metadata over the JSON API.
package resource

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/studybuddy/studybuddy-server/internal/config"
	controller "github.com/studybuddy/studybuddy-server/internal/db/controller/resource"
	"github.com/studybuddy/studybuddy-server/internal/web/handler"
	"github.com/studybuddy/studybuddy-server/internal/web/middleware/identity"
)

const (
	// Path is the base path of the study resource routes.
	Path = "/api/v1/resources"
)

// Service is the study resource handler service.
type Service struct {
	handler.Service
	cfg       *config.Config
	db        *gorm.DB
	validator *validator.Validate
}

// Handler is the study resource handler.
var Handler = Service{}

type createRequest struct {
	Title        string `json:"title" validate:"required"`
	Description  string `json:"description"`
	Subject      string `json:"subject" validate:"required"`
	ResourceType string `json:"resourceType" validate:"required"`
	FileName     string `json:"fileName"`
	ContentType  string `json:"contentType"`
	FileSize     int64  `json:"fileSize" validate:"min=0"`
	StorageKey   string `json:"storageKey"`
}

type updateRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Subject     string `json:"subject" validate:"required"`
}

// Init initializes the study resource handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New("app or db is nil")
	}

	s.db = db
	s.cfg = cfg
	s.validator = validator.New()

	// register routes
	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RootPath, s.List)
		router.Post(handler.RootPath, s.Create)
		router.Get("/search", s.Search)
		router.Get("/:id", s.Get)
		router.Put("/:id", s.Update)
		router.Delete("/:id", s.Delete)
	})

	return nil
}

// Create handles registering new study resource metadata.
func (s *Service) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return handler.FailWithStatus(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := s.validator.Struct(req); err != nil {
		return handler.FailWithStatus(c, fiber.StatusBadRequest, handler.ValidationMessage(err))
	}

	res, err := controller.Create(s.db, identity.UserID(c), controller.Params{
		Title:        req.Title,
		Description:  req.Description,
		Subject:      req.Subject,
		ResourceType: req.ResourceType,
		FileName:     req.FileName,
		ContentType:  req.ContentType,
		FileSize:     req.FileSize,
		StorageKey:   req.StorageKey,
	})
	if err != nil {
		log.Debug().Err(err).Msg("failed to create study resource")
		return handler.Fail(c, err)
	}

	return handler.Created(c, res)
}

// List handles listing the calling user's study resources.
func (s *Service) List(c *fiber.Ctx) error {
	resources, err := controller.ListForUser(s.db, identity.UserID(c))
	if err != nil {
		log.Error().Err(err).Msg("failed to list study resources")
		return handler.Fail(c, err)
	}

	return handler.OK(c, resources)
}

// Search handles searching the calling user's resources by subject.
func (s *Service) Search(c *fiber.Ctx) error {
	subject := c.Query("subject")
	if subject == "" {
		return handler.FailWithStatus(c, fiber.StatusBadRequest, "missing subject query parameter")
	}

	resources, err := controller.SearchBySubject(s.db, identity.UserID(c), subject)
	if err != nil {
		log.Error().Err(err).Msg("failed to search study resources")
		return handler.Fail(c, err)
	}

	return handler.OK(c, resources)
}

// Get handles reading one study resource.
func (s *Service) Get(c *fiber.Ctx) error {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		return handler.FailWithStatus(c, fiber.StatusBadRequest, err.Error())
	}

	res, err := controller.GetByID(s.db, id, identity.UserID(c))
	if err != nil {
		return handler.Fail(c, err)
	}

	return handler.OK(c, res)
}

// Update handles changing a study resource's metadata.
func (s *Service) Update(c *fiber.Ctx) error {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		return handler.FailWithStatus(c, fiber.StatusBadRequest, err.Error())
	}

	var req updateRequest
	if err = c.BodyParser(&req); err != nil {
		return handler.FailWithStatus(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err = s.validator.Struct(req); err != nil {
		return handler.FailWithStatus(c, fiber.StatusBadRequest, handler.ValidationMessage(err))
	}

	res, err := controller.Update(s.db, id, identity.UserID(c), req.Title, req.Description, req.Subject)
	if err != nil {
		log.Debug().Err(err).Uint64("resource", id).Msg("failed to update study resource")
		return handler.Fail(c, err)
	}

	return handler.OK(c, res)
}

// Delete handles removing a study resource's metadata.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		return handler.FailWithStatus(c, fiber.StatusBadRequest, err.Error())
	}

	if err = controller.Delete(s.db, id, identity.UserID(c)); err != nil {
		log.Debug().Err(err).Uint64("resource", id).Msg("failed to delete study resource")
		return handler.Fail(c, err)
	}

	return handler.OK(c, nil)
}
