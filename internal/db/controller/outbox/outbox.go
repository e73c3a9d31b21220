// Package outbox persists membership events as transactional-outbox rows.
// Enqueue is called with the same *gorm.DB (usually a transaction) that
// performs the mutation, so an event row exists exactly when its mutation
// committed. The event relayer drains pending rows asynchronously.
package outbox

import (
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/studybuddy/studybuddy-server/internal/db/models"
)

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrEventNotFound is returned when marking an event that does not exist.
	ErrEventNotFound = errors.New("membership event not found")
)

// payload is the JSON document published for every membership event.
type payload struct {
	EventType    string    `json:"eventType"`
	StudyGroupID uint64    `json:"studyGroupId"`
	UserID       uint64    `json:"userId"`
	OccurredAt   time.Time `json:"occurredAt"`
}

// Enqueue inserts a pending event row. Call it inside the transaction that
// performs the corresponding mutation.
func Enqueue(db *gorm.DB, eventType string, groupID, userID uint64) error {
	if db == nil {
		return ErrDBNil
	}

	body, err := json.Marshal(payload{
		EventType:    eventType,
		StudyGroupID: groupID,
		UserID:       userID,
		OccurredAt:   time.Now(),
	})
	if err != nil {
		return err
	}

	event := models.MembershipEvent{
		EventType:    eventType,
		StudyGroupID: groupID,
		UserID:       userID,
		Payload:      string(body),
		Status:       models.EventStatusPending,
	}

	return db.Create(&event).Error
}

// ListPending returns up to limit pending events, oldest first.
func ListPending(db *gorm.DB, limit int) ([]models.MembershipEvent, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var events []models.MembershipEvent
	result := db.Where("status = ?", models.EventStatusPending).
		Order("id ASC").
		Limit(limit).
		Find(&events)
	if result.Error != nil {
		return nil, result.Error
	}

	return events, nil
}

// MarkSent flags an event as delivered.
func MarkSent(db *gorm.DB, id uint64) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Model(&models.MembershipEvent{}).
		Where("id = ?", id).
		Update("status", models.EventStatusSent)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEventNotFound
	}

	return nil
}

// MarkFailed increments the retry counter for an event that could not be
// delivered. Events past maxRetry are parked in the failed state so the
// relayer stops picking them up.
func MarkFailed(db *gorm.DB, id uint64, maxRetry int) error {
	if db == nil {
		return ErrDBNil
	}

	var event models.MembershipEvent
	result := db.First(&event, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return ErrEventNotFound
		}
		return result.Error
	}

	event.Retry++
	if event.Retry >= maxRetry {
		event.Status = models.EventStatusFailed
	}

	return db.Save(&event).Error
}
