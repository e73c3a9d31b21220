package daemon

import (
	"gorm.io/gorm"

	"github.com/studybuddy/studybuddy-server/internal/config"
	"github.com/studybuddy/studybuddy-server/internal/db/models"
)

func seed(cfg *config.Config, db *gorm.DB) {
	// Seed initial data if user table is empty

	var count int64
	db.Model(&models.User{}).Count(&count)
	if count == 0 {
		email := cfg.Seed.AdminEmail
		if email == "" {
			email = "admin@studybuddy.local"
		}

		password := cfg.Seed.AdminPassword
		if password == "" {
			password = "changeme"
		}

		db.Create(
			&models.User{
				Name:     "admin",
				Email:    email,
				Password: models.HashPassword(password),
				Active:   true,
			},
		)
	}
}
