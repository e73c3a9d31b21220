package models

import "time"

const (
	// GroupNameMaxLen is the maximum length of a group name.
	GroupNameMaxLen = 200
	// GroupDescriptionMaxLen is the maximum length of a group description.
	GroupDescriptionMaxLen = 1000
	// GroupSubjectMaxLen is the maximum length of a group subject.
	GroupSubjectMaxLen = 100
	// GroupMinMembers is the smallest allowed capacity for a group.
	GroupMinMembers = 2
	// GroupMaxMembers is the largest allowed capacity for a group.
	GroupMaxMembers = 50
	// GroupDefaultMaxMembers is the capacity used when none is given.
	GroupDefaultMaxMembers = 10
)

// StudyGroup represents a collaborative study group.
// A group owns its member and message rows: deleting the group removes both
// (enforced in the delete transaction and backstopped by the FK constraints).
type StudyGroup struct {
	// ID is the unique identifier for the group.
	ID uint64 `gorm:"primaryKey"`
	// Name is the display name of the group.
	Name string `gorm:"size:200;not null"`
	// Description is an optional free-form description.
	Description string `gorm:"size:1000"`
	// Subject is the study subject the group is organized around.
	Subject string `gorm:"size:100;not null"`
	// MaxMembers is the capacity of the group (bounded 2..50).
	// The membership controller guarantees the live member count never exceeds it.
	MaxMembers int `gorm:"not null;default:10"`
	// IsPublic indicates whether the group is listed for browsing.
	IsPublic bool `gorm:"not null;default:true;index"`
	// CreatedBy is the ID of the user who founded the group. That user holds
	// the Creator membership for the group's entire lifetime.
	CreatedBy uint64 `gorm:"not null;index"`
	// Creator is the founding user (loaded via foreign key; RESTRICT keeps a
	// user from being deleted while they still own groups).
	Creator User `gorm:"foreignKey:CreatedBy;constraint:OnDelete:RESTRICT"`
	// Members are the membership rows of this group (cascade on group delete).
	Members []StudyGroupMember `gorm:"foreignKey:StudyGroupID"`
	// Messages are the chat messages of this group (cascade on group delete).
	Messages []GroupMessage `gorm:"foreignKey:StudyGroupID"`
	// CreatedAt is the timestamp when the group was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the group was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the StudyGroup model.
func (StudyGroup) TableName() string {
	return "study_groups"
}
