package models

import "time"

// MemberRole is the closed set of roles a membership can hold.
// Using a dedicated type keeps illegal role values unrepresentable.
type MemberRole string

const (
	// RoleCreator marks the founding member. Exactly one per group, always the
	// user recorded in StudyGroup.CreatedBy.
	RoleCreator MemberRole = "Creator"
	// RoleAdmin grants edit (not delete) authority over group settings.
	RoleAdmin MemberRole = "Admin"
	// RoleMember is the default role assigned on join.
	RoleMember MemberRole = "Member"
)

// Valid reports whether the role is one of the defined constants.
func (r MemberRole) Valid() bool {
	switch r {
	case RoleCreator, RoleAdmin, RoleMember:
		return true
	}

	return false
}

// StudyGroupMember represents a user's membership in a study group.
// The composite unique index makes double-joining impossible at the storage
// layer even when the application-level check is raced.
type StudyGroupMember struct {
	// ID is the unique identifier for the membership row.
	ID uint64 `gorm:"primaryKey"`
	// StudyGroupID is the group this membership belongs to.
	StudyGroupID uint64 `gorm:"not null;index;uniqueIndex:uk_group_user"`
	// UserID is the member's user ID.
	UserID uint64 `gorm:"not null;index;uniqueIndex:uk_group_user"`
	// Role is the member's role within the group. Assigned at creation
	// (Creator) or join (Member) and immutable afterwards.
	Role MemberRole `gorm:"type:varchar(20);not null;default:'Member'"`
	// StudyGroup is the owning group (cascade on group delete).
	StudyGroup StudyGroup `gorm:"foreignKey:StudyGroupID;constraint:OnDelete:CASCADE"`
	// User is the member's user record (cascade on user delete).
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	// JoinedAt is the timestamp when the user joined (managed by GORM).
	JoinedAt time.Time `gorm:"autoCreateTime"`
}

// TableName specifies the database table name for the StudyGroupMember model.
func (StudyGroupMember) TableName() string {
	return "study_group_members"
}
