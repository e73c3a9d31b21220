// Package stats exposes the dashboard counters over the JSON API.
package stats

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/studybuddy/studybuddy-server/internal/config"
	controller "github.com/studybuddy/studybuddy-server/internal/db/controller/stats"
	"github.com/studybuddy/studybuddy-server/internal/web/handler"
	"github.com/studybuddy/studybuddy-server/internal/web/middleware/identity"
)

const (
	// Path is the base path of the stats routes.
	Path = "/api/v1/stats"
)

// Service is the stats handler service.
type Service struct {
	handler.Service
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the stats handler.
var Handler = Service{}

// Init initializes the stats handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New("app or db is nil")
	}

	s.db = db
	s.cfg = cfg

	app.Get(Path, s.Get)

	return nil
}

// Get handles reading the dashboard counters for the calling user.
func (s *Service) Get(c *fiber.Ctx) error {
	return handler.OK(c, controller.ForUser(s.db, identity.UserID(c)))
}
