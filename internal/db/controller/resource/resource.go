// Package resource implements CRUD over study-resource metadata. Binary
// content lives with the external storage collaborator; only descriptive
// metadata and the storage key are persisted here. All operations are scoped
// to the owning user.
package resource

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/studybuddy/studybuddy-server/internal/db/models"
	"github.com/studybuddy/studybuddy-server/internal/uniuri"
)

// storageKeyLen is the random part length of generated storage keys.
const storageKeyLen = 32

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrResourceNotFound is returned when the resource does not exist or
	// belongs to another user.
	ErrResourceNotFound = errors.New("study resource not found")
	// ErrTitleRequired is returned when the title is blank.
	ErrTitleRequired = errors.New("resource title is required")
	// ErrTitleTooLong is returned when the title exceeds the allowed length.
	ErrTitleTooLong = fmt.Errorf("resource title exceeds %d characters", models.ResourceTitleMaxLen)
	// ErrSubjectRequired is returned when the subject is blank.
	ErrSubjectRequired = errors.New("resource subject is required")
	// ErrSubjectTooLong is returned when the subject exceeds the allowed length.
	ErrSubjectTooLong = fmt.Errorf("resource subject exceeds %d characters", models.GroupSubjectMaxLen)
	// ErrTypeRequired is returned when the resource type is blank.
	ErrTypeRequired = errors.New("resource type is required")
	// ErrDescriptionTooLong is returned when the description exceeds the allowed length.
	ErrDescriptionTooLong = fmt.Errorf(
		"resource description exceeds %d characters", models.ResourceDescriptionMaxLen)
)

// Params carries the caller-supplied fields for Create.
type Params struct {
	Title        string
	Description  string
	Subject      string
	ResourceType string
	FileName     string
	ContentType  string
	FileSize     int64
	StorageKey   string
}

func (p *Params) validate() error {
	if err := validateMeta(&p.Title, &p.Description, &p.Subject); err != nil {
		return err
	}

	p.ResourceType = strings.TrimSpace(p.ResourceType)
	if p.ResourceType == "" {
		return ErrTypeRequired
	}

	return nil
}

func validateMeta(title, description, subject *string) error {
	*title = strings.TrimSpace(*title)
	*subject = strings.TrimSpace(*subject)
	*description = strings.TrimSpace(*description)

	switch {
	case *title == "":
		return ErrTitleRequired
	case len(*title) > models.ResourceTitleMaxLen:
		return ErrTitleTooLong
	case len(*description) > models.ResourceDescriptionMaxLen:
		return ErrDescriptionTooLong
	case *subject == "":
		return ErrSubjectRequired
	case len(*subject) > models.GroupSubjectMaxLen:
		return ErrSubjectTooLong
	}

	return nil
}

// Create inserts a new resource metadata row for the owning user.
func Create(db *gorm.DB, userID uint64, params Params) (*models.StudyResource, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if err := params.validate(); err != nil {
		return nil, err
	}

	// the upload flow may not have reserved a key with the storage
	// collaborator yet; reserve one here
	if params.StorageKey == "" {
		params.StorageKey = "resources/" + uniuri.NewLen(storageKeyLen)
	}

	res := &models.StudyResource{
		Title:        params.Title,
		Description:  params.Description,
		Subject:      params.Subject,
		ResourceType: params.ResourceType,
		FileName:     params.FileName,
		ContentType:  params.ContentType,
		FileSize:     params.FileSize,
		StorageKey:   params.StorageKey,
		UserID:       userID,
	}

	if err := db.Create(res).Error; err != nil {
		return nil, err
	}

	return res, nil
}

// GetByID retrieves a resource owned by the given user.
func GetByID(db *gorm.DB, id, userID uint64) (*models.StudyResource, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var res models.StudyResource
	result := db.Where("id = ? AND user_id = ?", id, userID).First(&res)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrResourceNotFound
		}
		return nil, result.Error
	}

	return &res, nil
}

// ListForUser returns the user's resources, newest first.
func ListForUser(db *gorm.DB, userID uint64) ([]models.StudyResource, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var resources []models.StudyResource
	result := db.Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&resources)
	if result.Error != nil {
		return nil, result.Error
	}

	return resources, nil
}

// SearchBySubject returns the user's resources whose subject contains the
// given term, newest first.
func SearchBySubject(db *gorm.DB, userID uint64, subject string) ([]models.StudyResource, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var resources []models.StudyResource
	result := db.Where("user_id = ? AND subject LIKE ?", userID, "%"+subject+"%").
		Order("created_at DESC, id DESC").
		Find(&resources)
	if result.Error != nil {
		return nil, result.Error
	}

	return resources, nil
}

// Update edits the descriptive metadata (title, description, subject) of a
// resource owned by the given user. File metadata is immutable after upload.
func Update(db *gorm.DB, id, userID uint64, title, description, subject string) (*models.StudyResource, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if err := validateMeta(&title, &description, &subject); err != nil {
		return nil, err
	}

	var res models.StudyResource

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&res).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrResourceNotFound
			}
			return err
		}

		res.Title = title
		res.Description = description
		res.Subject = subject

		return tx.Save(&res).Error
	})
	if err != nil {
		return nil, err
	}

	return &res, nil
}

// Delete removes a resource owned by the given user.
func Delete(db *gorm.DB, id, userID uint64) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.StudyResource{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrResourceNotFound
	}

	return nil
}
