package models

import (
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog/log"
)

// User represents a registered account in the system.
// The core never owns users; it only references them from memberships,
// messages and resources. Credential verification is performed by the
// identity collaborator, not here.
type User struct {
	// ID is the unique identifier for the user.
	ID uint64 `gorm:"primaryKey"`
	// Name is the user's display name.
	Name string `gorm:"size:100;not null"`
	// Email is the unique email address used as the login identity.
	Email string `gorm:"uniqueIndex;size:100;not null"`
	// Password is the Argon2id hashed credential (owned by the identity collaborator).
	Password string `gorm:"size:255;not null"`
	// StudyInterests is an optional free-form description of subjects the user cares about.
	StudyInterests string `gorm:"size:500"`
	// Active indicates whether the account may be used.
	Active bool `gorm:"default:true"`
	// CreatedAt is the timestamp when the user was created (managed by GORM).
	CreatedAt time.Time
	// LastLoginAt is the timestamp of the most recent login (nil if never logged in).
	LastLoginAt *time.Time
}

// TableName specifies the database table name for the User model.
func (User) TableName() string {
	return "users"
}

// HashPassword hashes a plaintext password using the Argon2id algorithm.
// Used by seeding and by the identity collaborator when storing credentials.
func HashPassword(password string) string {
	hashedPassword, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		log.Fatal().Msgf("failed to hash password: %v", err)
	}

	return hashedPassword
}
