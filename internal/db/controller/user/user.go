// Package user provides the minimal user operations the core needs: creation
// for seeding and registration, lookups for display, and deactivation.
// Credential verification and login belong to the identity collaborator.
package user

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/studybuddy/studybuddy-server/internal/db/models"
)

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrUserNotFound is returned when the user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrNameRequired is returned when the display name is blank.
	ErrNameRequired = errors.New("user name is required")
	// ErrEmailRequired is returned when the email is blank.
	ErrEmailRequired = errors.New("user email is required")
	// ErrEmailTaken is returned when the email is already registered.
	ErrEmailTaken = errors.New("email is already registered")
)

// Create inserts a new user. The password must already be hashed by the
// identity collaborator (or models.HashPassword for seeding).
func Create(db *gorm.DB, name, email, hashedPassword, studyInterests string) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if name == "" {
		return nil, ErrNameRequired
	}
	if email == "" {
		return nil, ErrEmailRequired
	}

	usr := &models.User{
		Name:           name,
		Email:          email,
		Password:       hashedPassword,
		StudyInterests: studyInterests,
		Active:         true,
	}

	if err := db.Create(usr).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	return usr, nil
}

// GetByID retrieves a user by ID.
func GetByID(db *gorm.DB, id uint64) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var usr models.User
	result := db.First(&usr, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}

	return &usr, nil
}

// GetByEmail retrieves a user by email (case insensitive).
func GetByEmail(db *gorm.DB, email string) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var usr models.User
	result := db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&usr)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}

	return &usr, nil
}

// Deactivate marks a user account as inactive.
func Deactivate(db *gorm.DB, id uint64) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Model(&models.User{}).Where("id = ?", id).Update("active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}
