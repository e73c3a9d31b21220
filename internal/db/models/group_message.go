package models

import "time"

// MessageMaxLen is the maximum length of a chat message after trimming.
const MessageMaxLen = 1000

// GroupMessage represents a single chat message in a group's append-only log.
// Messages are immutable once created and are only removed when their group
// is deleted. The sender must be a member at send time but may leave later,
// so UserID can reference a past member.
type GroupMessage struct {
	// ID is the unique identifier for the message.
	ID uint64 `gorm:"primaryKey"`
	// StudyGroupID is the group whose log this message belongs to.
	StudyGroupID uint64 `gorm:"not null;index:idx_group_sent,priority:1"`
	// UserID is the sender's user ID.
	UserID uint64 `gorm:"not null;index"`
	// Text is the message body (1..1000 characters after trimming).
	Text string `gorm:"size:1000;not null"`
	// StudyGroup is the owning group (cascade on group delete).
	StudyGroup StudyGroup `gorm:"foreignKey:StudyGroupID;constraint:OnDelete:CASCADE"`
	// User is the sender's user record (cascade on user delete).
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	// SentAt is the timestamp the message was appended; the display order key.
	SentAt time.Time `gorm:"autoCreateTime;index:idx_group_sent,priority:2"`
}

// TableName specifies the database table name for the GroupMessage model.
func (GroupMessage) TableName() string {
	return "group_messages"
}
