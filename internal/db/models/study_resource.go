package models

import "time"

const (
	// ResourceTitleMaxLen is the maximum length of a resource title.
	ResourceTitleMaxLen = 200
	// ResourceDescriptionMaxLen is the maximum length of a resource description.
	ResourceDescriptionMaxLen = 500
)

// StudyResource represents the metadata of an uploaded study material.
// Binary content is held by the external storage collaborator; this row only
// records descriptive metadata and the storage key needed to retrieve it.
type StudyResource struct {
	// ID is the unique identifier for the resource.
	ID uint64 `gorm:"primaryKey"`
	// Title is the display title of the resource.
	Title string `gorm:"size:200;not null"`
	// Description is an optional free-form description.
	Description string `gorm:"size:500"`
	// Subject is the study subject the resource relates to.
	Subject string `gorm:"size:100;not null;index"`
	// ResourceType classifies the material (e.g. PDF, Video, Document).
	ResourceType string `gorm:"size:50;not null"`
	// FileName is the original name of the uploaded file.
	FileName string `gorm:"size:255"`
	// ContentType is the MIME type reported at upload.
	ContentType string `gorm:"size:100"`
	// FileSize is the size of the stored content in bytes.
	FileSize int64 `gorm:"not null;default:0"`
	// StorageKey locates the binary content in the external storage collaborator.
	StorageKey string `gorm:"size:255"`
	// UserID is the owning user's ID.
	UserID uint64 `gorm:"not null;index"`
	// User is the owning user (cascade on user delete).
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	// CreatedAt is the timestamp when the resource was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the resource was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the StudyResource model.
func (StudyResource) TableName() string {
	return "study_resources"
}
