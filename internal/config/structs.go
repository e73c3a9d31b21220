package config

import (
	"time"

	"github.com/studybuddy/studybuddy-server/internal/logger"
)

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Webserver Webserver
	Events    Events
	Seed      Seed
}

// Webserver implement webserver settings.
type Webserver struct {
	CleanPath      bool   // use clean path middleware to allow multi slash requests
	DisableRecover bool   // disable recover middleware
	Domain         string // domain name for the webserver
	Port           int    // listening port for the webserver
	ShutDownTime   int    // wait time in seconds before shutdown
	URL            string // base url for the webserver
}

// Events implement the membership event relay settings.
// When disabled, outbox rows are still written but never drained.
type Events struct {
	Enabled   bool
	Brokers   []string      // kafka broker addresses
	Topic     string        // topic membership events are published to
	Interval  time.Duration // pause between outbox drains
	BatchSize int           // max events handed to kafka per drain
	MaxRetry  int           // delivery failures before an event is parked
}

// Seed implement initial data settings for an empty database.
type Seed struct {
	AdminEmail    string
	AdminPassword string
}
