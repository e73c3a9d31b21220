// Package stats provides read-only derived counts over groups and
// memberships. Stats are advisory: a storage failure is logged and degrades
// to zero instead of failing the caller.
package stats

import (
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/studybuddy/studybuddy-server/internal/db/models"
)

// Summary is the stats tuple shown on the dashboard.
type Summary struct {
	PublicGroups  int64 `json:"publicGroups"`
	UserGroups    int64 `json:"userGroups"`
	CreatedGroups int64 `json:"createdGroups"`
}

// PublicGroupCount returns the number of public groups.
func PublicGroupCount(db *gorm.DB) int64 {
	if db == nil {
		return 0
	}

	var count int64
	err := db.Model(&models.StudyGroup{}).
		Where("is_public = ?", true).
		Count(&count).Error
	if err != nil {
		log.Error().Err(err).Msg("public group count failed")
		return 0
	}

	return count
}

// UserGroupCount returns the number of groups the user belongs to.
func UserGroupCount(db *gorm.DB, userID uint64) int64 {
	if db == nil {
		return 0
	}

	var count int64
	err := db.Model(&models.StudyGroupMember{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		log.Error().Err(err).Uint64("user", userID).Msg("user group count failed")
		return 0
	}

	return count
}

// CreatedGroupCount returns the number of groups the user founded.
func CreatedGroupCount(db *gorm.DB, userID uint64) int64 {
	if db == nil {
		return 0
	}

	var count int64
	err := db.Model(&models.StudyGroup{}).
		Where("created_by = ?", userID).
		Count(&count).Error
	if err != nil {
		log.Error().Err(err).Uint64("user", userID).Msg("created group count failed")
		return 0
	}

	return count
}

// ForUser assembles the full stats tuple for a user.
func ForUser(db *gorm.DB, userID uint64) Summary {
	return Summary{
		PublicGroups:  PublicGroupCount(db),
		UserGroups:    UserGroupCount(db, userID),
		CreatedGroups: CreatedGroupCount(db, userID),
	}
}
