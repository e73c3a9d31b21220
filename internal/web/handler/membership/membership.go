// Package membership exposes joining and leaving study groups over the JSON API.
package membership

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/studybuddy/studybuddy-server/internal/config"
	controller "github.com/studybuddy/studybuddy-server/internal/db/controller/membership"
	"github.com/studybuddy/studybuddy-server/internal/web/handler"
	"github.com/studybuddy/studybuddy-server/internal/web/middleware/identity"
)

const (
	// Path is the base path of the membership routes.
	Path = "/api/v1/groups/:id"
)

// Service is the membership handler service.
type Service struct {
	handler.Service
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the membership handler.
var Handler = Service{}

// Init initializes the membership handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New("app or db is nil")
	}

	s.db = db
	s.cfg = cfg

	// register routes
	app.Route(Path, func(router fiber.Router) {
		router.Post("/join", s.Join)
		router.Post("/leave", s.Leave)
		router.Get("/members", s.Members)
	})

	return nil
}

// Join handles a user joining a study group.
func (s *Service) Join(c *fiber.Ctx) error {
	groupID, err := handler.ParamID(c, "id")
	if err != nil {
		return handler.FailWithStatus(c, fiber.StatusBadRequest, err.Error())
	}

	member, err := controller.Join(s.db, groupID, identity.UserID(c))
	if err != nil {
		log.Debug().Err(err).Uint64("group", groupID).Msg("join rejected")
		return handler.Fail(c, err)
	}

	return handler.Created(c, member)
}

// Leave handles a user leaving a study group.
func (s *Service) Leave(c *fiber.Ctx) error {
	groupID, err := handler.ParamID(c, "id")
	if err != nil {
		return handler.FailWithStatus(c, fiber.StatusBadRequest, err.Error())
	}

	if err = controller.Leave(s.db, groupID, identity.UserID(c)); err != nil {
		log.Debug().Err(err).Uint64("group", groupID).Msg("leave rejected")
		return handler.Fail(c, err)
	}

	return handler.OK(c, nil)
}

// Members handles listing the members of a study group.
func (s *Service) Members(c *fiber.Ctx) error {
	groupID, err := handler.ParamID(c, "id")
	if err != nil {
		return handler.FailWithStatus(c, fiber.StatusBadRequest, err.Error())
	}

	members, err := controller.ListByGroup(s.db, groupID)
	if err != nil {
		log.Error().Err(err).Uint64("group", groupID).Msg("failed to list group members")
		return handler.Fail(c, err)
	}

	return handler.OK(c, members)
}
