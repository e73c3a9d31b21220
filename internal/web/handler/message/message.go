// Package message exposes the group chat over the JSON API.
package message

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/studybuddy/studybuddy-server/internal/config"
	"github.com/studybuddy/studybuddy-server/internal/db/controller/membership"
	controller "github.com/studybuddy/studybuddy-server/internal/db/controller/message"
	"github.com/studybuddy/studybuddy-server/internal/web/handler"
	"github.com/studybuddy/studybuddy-server/internal/web/middleware/identity"
)

const (
	// Path is the base path of the group message routes.
	Path = "/api/v1/groups/:id/messages"
)

// Service is the group message handler service.
type Service struct {
	handler.Service
	cfg       *config.Config
	db        *gorm.DB
	validator *validator.Validate
}

// Handler is the group message handler.
var Handler = Service{}

type sendRequest struct {
	Text string `json:"text" validate:"required"`
}

// Init initializes the group message handler.
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
		router.Post(handler.RootPath, s.Send)
	})

	return nil
}

// Send handles appending a chat message to a study group.
func (s *Service) Send(c *fiber.Ctx) error {
	groupID, err := handler.ParamID(c, "id")
	if err != nil {
		return handler.FailWithStatus(c, fiber.StatusBadRequest, err.Error())
	}

	var req sendRequest
	if err = c.BodyParser(&req); err != nil {
		return handler.FailWithStatus(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err = s.validator.Struct(req); err != nil {
		return handler.FailWithStatus(c, fiber.StatusBadRequest, handler.ValidationMessage(err))
	}

	msg, err := controller.Send(s.db, groupID, identity.UserID(c), req.Text)
	if err != nil {
		log.Debug().Err(err).Uint64("group", groupID).Msg("message rejected")
		return handler.Fail(c, err)
	}

	return handler.Created(c, msg)
}

// List handles reading the chat log of a study group.
// Only members may read the log.
func (s *Service) List(c *fiber.Ctx) error {
	groupID, err := handler.ParamID(c, "id")
	if err != nil {
		return handler.FailWithStatus(c, fiber.StatusBadRequest, err.Error())
	}

	isMember, err := membership.IsMember(s.db, groupID, identity.UserID(c))
	if err != nil {
		log.Error().Err(err).Uint64("group", groupID).Msg("failed to check membership")
		return handler.Fail(c, err)
	}

	if !isMember {
		return handler.Fail(c, controller.ErrNotMember)
	}

	messages, err := controller.List(s.db, groupID)
	if err != nil {
		log.Error().Err(err).Uint64("group", groupID).Msg("failed to list group messages")
		return handler.Fail(c, err)
	}

	return handler.OK(c, messages)
}
