package models

import "time"

// Event types recorded in the membership outbox.
const (
	EventGroupCreated = "group.created"
	EventGroupDeleted = "group.deleted"
	EventMemberJoined = "member.joined"
	EventMemberLeft   = "member.left"
)

// Outbox delivery states.
const (
	EventStatusPending int8 = 0
	EventStatusSent    int8 = 1
	EventStatusFailed  int8 = 2
)

// MembershipEvent is a transactional-outbox row for group lifecycle and
// membership changes. Rows are written inside the same transaction as the
// mutation they describe and drained asynchronously by the event relayer.
type MembershipEvent struct {
	ID           uint64 `gorm:"primaryKey"`
	EventType    string `gorm:"size:32;not null"`
	StudyGroupID uint64 `gorm:"not null;index"`
	UserID       uint64 `gorm:"not null"`
	// Payload is the JSON document published to the broker.
	Payload string `gorm:"type:text;not null"`
	// Status is 0=pending, 1=sent, 2=failed.
	Status int8 `gorm:"not null;default:0;index"`
	// Retry counts failed delivery attempts.
	Retry     int `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the database table name for the MembershipEvent model.
func (MembershipEvent) TableName() string {
	return "membership_events"
}
