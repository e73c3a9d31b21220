// Package message implements the append-only group chat log.
package message

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/studybuddy/studybuddy-server/internal/db/controller/group"
	"github.com/studybuddy/studybuddy-server/internal/db/models"
)

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrNotMember is returned when the sender does not belong to the group.
	ErrNotMember = errors.New("user is not a member of this group")
	// ErrTextEmpty is returned when the message text is blank after trimming.
	ErrTextEmpty = errors.New("message text is required")
	// ErrTextTooLong is returned when the message text exceeds the allowed length.
	ErrTextTooLong = fmt.Errorf("message text exceeds %d characters", models.MessageMaxLen)
)

// Send appends a message to the group's log. The membership check and the
// insert share one transaction so a leave that commits in between cannot let
// a non-member message slip through. Messages are immutable once created.
func Send(db *gorm.DB, groupID, userID uint64, text string) (*models.GroupMessage, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrTextEmpty
	}
	// The bound counts characters, not bytes.
	if utf8.RuneCountInString(text) > models.MessageMaxLen {
		return nil, ErrTextTooLong
	}

	msg := &models.GroupMessage{
		StudyGroupID: groupID,
		UserID:       userID,
		Text:         text,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		var grp models.StudyGroup
		if err := tx.First(&grp, groupID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return group.ErrGroupNotFound
			}
			return err
		}

		var count int64
		if err := tx.Model(&models.StudyGroupMember{}).
			Where("study_group_id = ? AND user_id = ?", groupID, userID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotMember
		}

		return tx.Create(msg).Error
	})
	if err != nil {
		return nil, err
	}

	return msg, nil
}

// List returns the group's messages with sender records, ordered by send time
// ascending (insertion id breaks ties). The result is a finite snapshot;
// callers poll by re-invoking.
func List(db *gorm.DB, groupID uint64) ([]models.GroupMessage, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var messages []models.GroupMessage
	result := db.
		Preload("User").
		Where("study_group_id = ?", groupID).
		Order("sent_at ASC, id ASC").
		Find(&messages)
	if result.Error != nil {
		return nil, result.Error
	}

	return messages, nil
}
