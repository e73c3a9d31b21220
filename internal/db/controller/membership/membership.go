// Package membership implements joining and leaving study groups.
//
// Join is the concurrency-sensitive path of the system: the group row is
// locked for the duration of the transaction, so the capacity check, the
// member insert and the post-insert re-count serialize across concurrent
// joins on the same group. Two simultaneous joins at the last open slot
// therefore admit at most one caller; the other observes ErrGroupFull.
package membership

import (
	"errors"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/studybuddy/studybuddy-server/internal/db/controller/group"
	"github.com/studybuddy/studybuddy-server/internal/db/controller/outbox"
	"github.com/studybuddy/studybuddy-server/internal/db/dberr"
	"github.com/studybuddy/studybuddy-server/internal/db/models"
)

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrAlreadyMember is returned when the user already belongs to the group.
	ErrAlreadyMember = errors.New("user is already a member of this group")
	// ErrNotMember is returned when the user does not belong to the group.
	ErrNotMember = errors.New("user is not a member of this group")
	// ErrGroupFull is returned when the group has no open slot left.
	ErrGroupFull = errors.New("study group is full")
	// ErrCreatorNotAlone is returned when the Creator tries to leave while
	// other members remain. There is no ownership transfer; the creator must
	// remove the other members (or delete the group) first.
	ErrCreatorNotAlone = errors.New("creator cannot leave while other members remain")
)

// Join adds the user to the group with the Member role. The membership
// pre-check, the insert and the capacity re-count share one transaction; the
// composite unique index on (study_group_id, user_id) backstops the
// double-join check under races. A lost concurrency race is retried once.
func Join(db *gorm.DB, groupID, userID uint64) (*models.StudyGroupMember, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var (
		member *models.StudyGroupMember
		err    error
	)

	for attempt := 0; attempt < 2; attempt++ {
		member, err = joinOnce(db, groupID, userID)
		if err == nil || !dberr.IsConflict(err) {
			return member, err
		}

		log.Warn().
			Uint64("group", groupID).
			Uint64("user", userID).
			Msg("join lost a race, retrying once")
	}

	return nil, dberr.ErrConflict
}

func joinOnce(db *gorm.DB, groupID, userID uint64) (*models.StudyGroupMember, error) {
	member := &models.StudyGroupMember{
		StudyGroupID: groupID,
		UserID:       userID,
		Role:         models.RoleMember,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		// The row lock serializes joins per group; without it the re-count
		// below reads the transaction's snapshot and misses racing inserts.
		grp, err := group.GetForUpdate(tx, groupID)
		if err != nil {
			return err
		}

		var existing int64
		if err := tx.Model(&models.StudyGroupMember{}).
			Where("study_group_id = ? AND user_id = ?", groupID, userID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrAlreadyMember
		}

		if err := tx.Create(member).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyMember
			}
			return err
		}

		// Re-count after the insert; under the group-row lock the count is
		// authoritative, and rolling back keeps the capacity invariant.
		var count int64
		if err := tx.Model(&models.StudyGroupMember{}).
			Where("study_group_id = ?", groupID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > int64(grp.MaxMembers) {
			return ErrGroupFull
		}

		return outbox.Enqueue(tx, models.EventMemberJoined, groupID, userID)
	})
	if err != nil {
		return nil, err
	}

	return member, nil
}

// Leave removes the user's membership. A Creator may leave only as the sole
// remaining member; the group row itself is never deleted here.
func Leave(db *gorm.DB, groupID, userID uint64) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var member models.StudyGroupMember
		err := tx.Where("study_group_id = ? AND user_id = ?", groupID, userID).
			First(&member).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotMember
			}
			return err
		}

		if member.Role == models.RoleCreator {
			// Lock the group row so a join cannot commit between the co-member
			// count and the delete.
			if _, err = group.GetForUpdate(tx, groupID); err != nil {
				return err
			}

			var others int64
			if err = tx.Model(&models.StudyGroupMember{}).
				Where("study_group_id = ? AND user_id <> ?", groupID, userID).
				Count(&others).Error; err != nil {
				return err
			}
			if others > 0 {
				return ErrCreatorNotAlone
			}
		}

		if err = tx.Delete(&models.StudyGroupMember{}, member.ID).Error; err != nil {
			return err
		}

		return outbox.Enqueue(tx, models.EventMemberLeft, groupID, userID)
	})
}

// IsMember reports whether the user currently belongs to the group.
func IsMember(db *gorm.DB, groupID, userID uint64) (bool, error) {
	if db == nil {
		return false, ErrDBNil
	}

	var count int64
	err := db.Model(&models.StudyGroupMember{}).
		Where("study_group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// ListByGroup returns the member rows of a group with their user records,
// Creator first, then by join time.
func ListByGroup(db *gorm.DB, groupID uint64) ([]models.StudyGroupMember, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var members []models.StudyGroupMember
	result := db.
		Preload("User").
		Where("study_group_id = ?", groupID).
		Order("joined_at ASC, id ASC").
		Find(&members)
	if result.Error != nil {
		return nil, result.Error
	}

	return members, nil
}
