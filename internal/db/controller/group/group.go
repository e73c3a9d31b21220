// Package group implements the study-group lifecycle: creation together with
// the founding membership, permission-checked updates and cascading deletes.
package group

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/studybuddy/studybuddy-server/internal/db/controller/outbox"
	"github.com/studybuddy/studybuddy-server/internal/db/dberr"
	"github.com/studybuddy/studybuddy-server/internal/db/models"
)

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrGroupNotFound is returned when a group does not exist.
	ErrGroupNotFound = errors.New("study group not found")
	// ErrUserNotFound is returned when the acting or creating user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrPermissionDenied is returned when the acting user's role does not allow the operation.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNameRequired is returned when the group name is blank.
	ErrNameRequired = errors.New("group name is required")
	// ErrNameTooLong is returned when the group name exceeds the allowed length.
	ErrNameTooLong = fmt.Errorf("group name exceeds %d characters", models.GroupNameMaxLen)
	// ErrSubjectRequired is returned when the subject is blank.
	ErrSubjectRequired = errors.New("group subject is required")
	// ErrSubjectTooLong is returned when the subject exceeds the allowed length.
	ErrSubjectTooLong = fmt.Errorf("group subject exceeds %d characters", models.GroupSubjectMaxLen)
	// ErrDescriptionTooLong is returned when the description exceeds the allowed length.
	ErrDescriptionTooLong = fmt.Errorf("group description exceeds %d characters", models.GroupDescriptionMaxLen)
	// ErrMaxMembersOutOfRange is returned when the capacity is outside 2..50.
	ErrMaxMembersOutOfRange = fmt.Errorf(
		"max members must be between %d and %d", models.GroupMinMembers, models.GroupMaxMembers)
	// ErrMaxMembersBelowCount is returned when an update would shrink the
	// capacity below the current member count.
	ErrMaxMembersBelowCount = errors.New("max members cannot be below the current member count")
)

// Params carries the caller-supplied group fields for Create and Update.
type Params struct {
	Name        string
	Description string
	Subject     string
	MaxMembers  int
	IsPublic    bool
}

func (p *Params) validate() error {
	p.Name = strings.TrimSpace(p.Name)
	p.Subject = strings.TrimSpace(p.Subject)
	p.Description = strings.TrimSpace(p.Description)

	// Bounds count characters, not bytes.
	switch {
	case p.Name == "":
		return ErrNameRequired
	case utf8.RuneCountInString(p.Name) > models.GroupNameMaxLen:
		return ErrNameTooLong
	case p.Subject == "":
		return ErrSubjectRequired
	case utf8.RuneCountInString(p.Subject) > models.GroupSubjectMaxLen:
		return ErrSubjectTooLong
	case utf8.RuneCountInString(p.Description) > models.GroupDescriptionMaxLen:
		return ErrDescriptionTooLong
	}

	if p.MaxMembers == 0 {
		p.MaxMembers = models.GroupDefaultMaxMembers
	}

	if p.MaxMembers < models.GroupMinMembers || p.MaxMembers > models.GroupMaxMembers {
		return ErrMaxMembersOutOfRange
	}

	return nil
}

// Create inserts a new study group and its Creator membership in a single
// transaction; either both rows exist afterwards or neither does. A lost
// concurrency race is retried once before ErrConflict surfaces.
func Create(db *gorm.DB, params Params, creatorUserID uint64) (*models.StudyGroup, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if err := params.validate(); err != nil {
		return nil, err
	}

	var (
		created *models.StudyGroup
		err     error
	)

	for attempt := 0; attempt < 2; attempt++ {
		created, err = createOnce(db, params, creatorUserID)
		if err == nil || !dberr.IsConflict(err) {
			return created, err
		}

		log.Warn().Uint64("creator", creatorUserID).Msg("group create lost a race, retrying once")
	}

	return nil, dberr.ErrConflict
}

func createOnce(db *gorm.DB, params Params, creatorUserID uint64) (*models.StudyGroup, error) {
	grp := &models.StudyGroup{
		Name:        params.Name,
		Description: params.Description,
		Subject:     params.Subject,
		MaxMembers:  params.MaxMembers,
		IsPublic:    params.IsPublic,
		CreatedBy:   creatorUserID,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("id = ?", creatorUserID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrUserNotFound
		}

		if err := tx.Create(grp).Error; err != nil {
			return err
		}

		member := models.StudyGroupMember{
			StudyGroupID: grp.ID,
			UserID:       creatorUserID,
			Role:         models.RoleCreator,
		}
		if err := tx.Create(&member).Error; err != nil {
			return err
		}

		return outbox.Enqueue(tx, models.EventGroupCreated, grp.ID, creatorUserID)
	})
	if err != nil {
		return nil, err
	}

	return grp, nil
}

// GetByID retrieves a group row without related rows.
func GetByID(db *gorm.DB, id uint64) (*models.StudyGroup, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var grp models.StudyGroup
	result := db.First(&grp, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, result.Error
	}

	return &grp, nil
}

// GetForUpdate loads a group row under a FOR UPDATE row lock, serializing
// capacity-sensitive transactions on the same group. SQLite has no row locks
// and drops the clause; its single writer serializes these transactions
// anyway.
func GetForUpdate(tx *gorm.DB, id uint64) (*models.StudyGroup, error) {
	var grp models.StudyGroup
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&grp, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}

	return &grp, nil
}

// GetDetails retrieves a group with its creator, member rows (including user
// records) and the message log in display order. The result is a snapshot;
// callers re-invoke to observe later changes.
func GetDetails(db *gorm.DB, id uint64) (*models.StudyGroup, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var grp models.StudyGroup
	result := db.
		Preload("Creator").
		Preload("Members").
		Preload("Members.User").
		Preload("Messages", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("sent_at ASC, id ASC")
		}).
		Preload("Messages.User").
		First(&grp, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, result.Error
	}

	return &grp, nil
}

// ListPublic returns all public groups with creator and member rows, newest
// first.
func ListPublic(db *gorm.DB) ([]models.StudyGroup, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var groups []models.StudyGroup
	result := db.
		Preload("Creator").
		Preload("Members").
		Where("is_public = ?", true).
		Order("created_at DESC, id DESC").
		Find(&groups)
	if result.Error != nil {
		return nil, result.Error
	}

	return groups, nil
}

// ListForUser returns the groups the given user is a member of, newest first.
func ListForUser(db *gorm.DB, userID uint64) ([]models.StudyGroup, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var groups []models.StudyGroup
	result := db.
		Preload("Creator").
		Preload("Members").
		Joins("JOIN study_group_members ON study_group_members.study_group_id = study_groups.id").
		Where("study_group_members.user_id = ?", userID).
		Order("study_groups.created_at DESC, study_groups.id DESC").
		Find(&groups)
	if result.Error != nil {
		return nil, result.Error
	}

	return groups, nil
}

// Update changes group settings. Only members holding the Creator or Admin
// role may update, and the capacity can never shrink below the live member
// count. All checks and the write share one transaction; the group row is
// locked so the member count stays accurate against concurrent joins.
func Update(db *gorm.DB, groupID, actingUserID uint64, params Params) (*models.StudyGroup, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if err := params.validate(); err != nil {
		return nil, err
	}

	var grp models.StudyGroup

	err := db.Transaction(func(tx *gorm.DB) error {
		locked, err := GetForUpdate(tx, groupID)
		if err != nil {
			return err
		}
		grp = *locked

		role, err := memberRole(tx, groupID, actingUserID)
		if err != nil {
			return err
		}
		if role != models.RoleCreator && role != models.RoleAdmin {
			return ErrPermissionDenied
		}

		var memberCount int64
		if err = tx.Model(&models.StudyGroupMember{}).
			Where("study_group_id = ?", groupID).
			Count(&memberCount).Error; err != nil {
			return err
		}
		if int64(params.MaxMembers) < memberCount {
			return ErrMaxMembersBelowCount
		}

		grp.Name = params.Name
		grp.Description = params.Description
		grp.Subject = params.Subject
		grp.MaxMembers = params.MaxMembers
		grp.IsPublic = params.IsPublic

		return tx.Save(&grp).Error
	})
	if err != nil {
		return nil, err
	}

	return &grp, nil
}

// Delete removes a group together with all its member and message rows in one
// transaction. Only the Creator may delete. The explicit deletes keep the
// cascade visible in the code path; the FK constraints remain the backstop.
func Delete(db *gorm.DB, groupID, actingUserID uint64) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if _, err := GetForUpdate(tx, groupID); err != nil {
			return err
		}

		role, err := memberRole(tx, groupID, actingUserID)
		if err != nil {
			return err
		}
		if role != models.RoleCreator {
			return ErrPermissionDenied
		}

		if err = tx.Where("study_group_id = ?", groupID).
			Delete(&models.GroupMessage{}).Error; err != nil {
			return err
		}

		if err = tx.Where("study_group_id = ?", groupID).
			Delete(&models.StudyGroupMember{}).Error; err != nil {
			return err
		}

		if err = tx.Delete(&models.StudyGroup{}, groupID).Error; err != nil {
			return err
		}

		return outbox.Enqueue(tx, models.EventGroupDeleted, groupID, actingUserID)
	})
}

// memberRole loads the acting user's role in the group. A missing membership
// is a permission failure, not a not-found condition.
func memberRole(tx *gorm.DB, groupID, userID uint64) (models.MemberRole, error) {
	var member models.StudyGroupMember
	err := tx.Where("study_group_id = ? AND user_id = ?", groupID, userID).
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrPermissionDenied
		}
		return "", err
	}

	return member.Role, nil
}
