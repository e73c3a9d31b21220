// Package daemon wires config, database, event relay and web service together.
package daemon

import (
	"context"
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/studybuddy/studybuddy-server/internal/config"
	"github.com/studybuddy/studybuddy-server/internal/db/dsn"
	"github.com/studybuddy/studybuddy-server/internal/db/models"
	"github.com/studybuddy/studybuddy-server/internal/events"
	"github.com/studybuddy/studybuddy-server/internal/web"
)

// Daemon represents the main application daemon.
type Daemon struct {
	cfg         *config.Config
	webService  *web.Service
	relayer     *events.Relayer
	stopRelayer context.CancelFunc
}

// Start starts the Daemon's event relayer and web service.
func (d *Daemon) Start() error {
	if d.relayer != nil {
		var ctx context.Context
		ctx, d.stopRelayer = context.WithCancel(context.Background())

		go d.relayer.Run(ctx)
	}

	return d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port))
}

// WaitShutdown blocks until the web service finished its graceful shutdown,
// then stops the event relayer.
func (d *Daemon) WaitShutdown() {
	d.webService.WaitShutdown()

	if d.stopRelayer != nil {
		d.stopRelayer()
	}
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) *Daemon {
	if cfg == nil {
		log.Fatal().Msg("config is nil")
		return nil
	}

	db, err := openDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
		return nil
	}

	if err = db.AutoMigrate(
		&models.User{},
		&models.StudyGroup{},
		&models.StudyGroupMember{},
		&models.GroupMessage{},
		&models.StudyResource{},
		&models.MembershipEvent{},
	); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
		return nil
	}

	seed(cfg, db)

	daemon := &Daemon{
		cfg:        cfg,
		webService: web.New(cfg, db),
	}

	if cfg.Events.Enabled {
		publisher := events.NewPublisher(cfg.Events)
		daemon.relayer = events.NewRelayer(db, cfg.Events, publisher.Send)
	} else if cfg.DevMode {
		// dev mode without a broker still shows the event stream in the log
		daemon.relayer = events.NewRelayer(db, cfg.Events, events.LogSender)
	}

	return daemon
}

// openDB opens the configured gorm engine.
// TranslateError keeps duplicate-key detection driver independent.
func openDB(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{TranslateError: true}

	switch cfg.DB.GormEngine {
	case "mysql":
		return gorm.Open(gormmysql.Open(dsn.MySQL(cfg)), gormCfg) //nolint:wrapcheck
	case "postgres":
		return gorm.Open(gormpostgres.Open(dsn.Postgres(cfg)), gormCfg) //nolint:wrapcheck
	case "sqlite":
		return gorm.Open(sqlite.Open(cfg.DB.SQLitePath), gormCfg) //nolint:wrapcheck
	default:
		return nil, fmt.Errorf("unsupported gorm engine %q", cfg.DB.GormEngine)
	}
}
