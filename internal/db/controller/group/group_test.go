package group

import (
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/studybuddy/studybuddy-server/internal/db/models"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "failed to create test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.User{},
		&models.StudyGroup{},
		&models.StudyGroupMember{},
		&models.GroupMessage{},
		&models.MembershipEvent{},
	)
	require.NoError(t, err, "failed to migrate test database")

	return db
}

// seedUser inserts a user and returns its ID.
func seedUser(t *testing.T, db *gorm.DB, name string) uint64 {
	t.Helper()

	usr := models.User{Name: name, Email: name + "@example.com", Password: "x", Active: true}
	require.NoError(t, db.Create(&usr).Error, "failed to seed user")

	return usr.ID
}

func validParams() Params {
	return Params{
		Name:       "Algorithms Study Circle",
		Subject:    "Computer Science",
		MaxMembers: 5,
		IsPublic:   true,
	}
}

func TestCreate(t *testing.T) {
	db := setupTestDB(t)
	creatorID := seedUser(t, db, "alice")

	longString := func(n int) string {
		b := make([]byte, n)
		for i := range b {
			b[i] = 'a'
		}
		return string(b)
	}

	testCases := []struct {
		name          string
		dbParam       *gorm.DB
		params        Params
		creatorID     uint64
		expectedError error
	}{
		{
			name:          "nil database",
			dbParam:       nil,
			params:        validParams(),
			creatorID:     creatorID,
			expectedError: ErrDBNil,
		},
		{
			name:          "blank name",
			dbParam:       db,
			params:        Params{Subject: "Math", MaxMembers: 5},
			creatorID:     creatorID,
			expectedError: ErrNameRequired,
		},
		{
			name:          "name too long",
			dbParam:       db,
			params:        Params{Name: longString(201), Subject: "Math", MaxMembers: 5},
			creatorID:     creatorID,
			expectedError: ErrNameTooLong,
		},
		{
			name:      "multibyte name at limit",
			dbParam:   db,
			params:    Params{Name: strings.Repeat("ü", 200), Subject: "Math", MaxMembers: 5},
			creatorID: creatorID,
		},
		{
			name:          "multibyte name over limit",
			dbParam:       db,
			params:        Params{Name: strings.Repeat("ü", 201), Subject: "Math", MaxMembers: 5},
			creatorID:     creatorID,
			expectedError: ErrNameTooLong,
		},
		{
			name:          "blank subject",
			dbParam:       db,
			params:        Params{Name: "Group", MaxMembers: 5},
			creatorID:     creatorID,
			expectedError: ErrSubjectRequired,
		},
		{
			name:          "description too long",
			dbParam:       db,
			params:        Params{Name: "Group", Subject: "Math", Description: longString(1001), MaxMembers: 5},
			creatorID:     creatorID,
			expectedError: ErrDescriptionTooLong,
		},
		{
			name:          "max members too small",
			dbParam:       db,
			params:        Params{Name: "Group", Subject: "Math", MaxMembers: 1},
			creatorID:     creatorID,
			expectedError: ErrMaxMembersOutOfRange,
		},
		{
			name:          "max members too large",
			dbParam:       db,
			params:        Params{Name: "Group", Subject: "Math", MaxMembers: 51},
			creatorID:     creatorID,
			expectedError: ErrMaxMembersOutOfRange,
		},
		{
			name:          "unknown creator",
			dbParam:       db,
			params:        validParams(),
			creatorID:     999,
			expectedError: ErrUserNotFound,
		},
		{
			name:      "successful create",
			dbParam:   db,
			params:    validParams(),
			creatorID: creatorID,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			grp, err := Create(tc.dbParam, tc.params, tc.creatorID)

			if tc.expectedError != nil {
				require.Error(t, err)
				require.ErrorIs(t, err, tc.expectedError)
				assert.Nil(t, grp)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, grp)
			assert.NotZero(t, grp.ID)
			assert.Equal(t, tc.creatorID, grp.CreatedBy)

			// The creator membership must exist with the Creator role.
			var member models.StudyGroupMember
			err = db.Where("study_group_id = ? AND user_id = ?", grp.ID, tc.creatorID).
				First(&member).Error
			require.NoError(t, err)
			assert.Equal(t, models.RoleCreator, member.Role)

			// Exactly one Creator per group.
			var creators int64
			db.Model(&models.StudyGroupMember{}).
				Where("study_group_id = ? AND role = ?", grp.ID, models.RoleCreator).
				Count(&creators)
			assert.EqualValues(t, 1, creators)

			// The creation event was enqueued in the same transaction.
			var events int64
			db.Model(&models.MembershipEvent{}).
				Where("study_group_id = ? AND event_type = ?", grp.ID, models.EventGroupCreated).
				Count(&events)
			assert.EqualValues(t, 1, events)
		})
	}
}

func TestCreateDefaultsMaxMembers(t *testing.T) {
	db := setupTestDB(t)
	creatorID := seedUser(t, db, "bob")

	params := validParams()
	params.MaxMembers = 0

	grp, err := Create(db, params, creatorID)
	require.NoError(t, err)
	assert.Equal(t, models.GroupDefaultMaxMembers, grp.MaxMembers)
}

func TestUpdate(t *testing.T) {
	db := setupTestDB(t)
	creatorID := seedUser(t, db, "carol")
	adminID := seedUser(t, db, "dave")
	memberID := seedUser(t, db, "erin")
	outsiderID := seedUser(t, db, "frank")

	grp, err := Create(db, validParams(), creatorID)
	require.NoError(t, err)

	// Seed an admin and a plain member directly.
	require.NoError(t, db.Create(&models.StudyGroupMember{
		StudyGroupID: grp.ID, UserID: adminID, Role: models.RoleAdmin,
	}).Error)
	require.NoError(t, db.Create(&models.StudyGroupMember{
		StudyGroupID: grp.ID, UserID: memberID, Role: models.RoleMember,
	}).Error)

	updated := Params{Name: "Renamed", Subject: "Mathematics", MaxMembers: 10, IsPublic: false}

	testCases := []struct {
		name          string
		groupID       uint64
		actingUserID  uint64
		params        Params
		expectedError error
	}{
		{
			name:          "group not found",
			groupID:       999,
			actingUserID:  creatorID,
			params:        updated,
			expectedError: ErrGroupNotFound,
		},
		{
			name:          "non-member denied",
			groupID:       grp.ID,
			actingUserID:  outsiderID,
			params:        updated,
			expectedError: ErrPermissionDenied,
		},
		{
			name:          "plain member denied",
			groupID:       grp.ID,
			actingUserID:  memberID,
			params:        updated,
			expectedError: ErrPermissionDenied,
		},
		{
			name:         "creator may update",
			groupID:      grp.ID,
			actingUserID: creatorID,
			params:       updated,
		},
		{
			name:         "admin may update",
			groupID:      grp.ID,
			actingUserID: adminID,
			params:       Params{Name: "Renamed Again", Subject: "Mathematics", MaxMembers: 12, IsPublic: true},
		},
		{
			name:          "max members below member count",
			groupID:       grp.ID,
			actingUserID:  creatorID,
			params:        Params{Name: "Shrunk", Subject: "Mathematics", MaxMembers: 2, IsPublic: true},
			expectedError: ErrMaxMembersBelowCount,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := Update(db, tc.groupID, tc.actingUserID, tc.params)

			if tc.expectedError != nil {
				require.Error(t, err)
				require.ErrorIs(t, err, tc.expectedError)
				assert.Nil(t, result)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, result)
			assert.Equal(t, tc.params.Name, result.Name)
			assert.Equal(t, tc.params.MaxMembers, result.MaxMembers)
		})
	}

	// The rejected shrink must not have changed the row.
	fresh, err := GetByID(db, grp.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "Shrunk", fresh.Name)
	assert.Equal(t, 12, fresh.MaxMembers)
}

func TestDelete(t *testing.T) {
	db := setupTestDB(t)
	creatorID := seedUser(t, db, "grace")
	adminID := seedUser(t, db, "heidi")

	grp, err := Create(db, validParams(), creatorID)
	require.NoError(t, err)

	require.NoError(t, db.Create(&models.StudyGroupMember{
		StudyGroupID: grp.ID, UserID: adminID, Role: models.RoleAdmin,
	}).Error)
	require.NoError(t, db.Create(&models.GroupMessage{
		StudyGroupID: grp.ID, UserID: creatorID, Text: "hello",
	}).Error)
	require.NoError(t, db.Create(&models.GroupMessage{
		StudyGroupID: grp.ID, UserID: adminID, Text: "hi",
	}).Error)

	t.Run("group not found", func(t *testing.T) {
		require.ErrorIs(t, Delete(db, 999, creatorID), ErrGroupNotFound)
	})

	t.Run("admin cannot delete", func(t *testing.T) {
		require.ErrorIs(t, Delete(db, grp.ID, adminID), ErrPermissionDenied)
	})

	t.Run("creator deletes with cascade", func(t *testing.T) {
		require.NoError(t, Delete(db, grp.ID, creatorID))

		_, err := GetByID(db, grp.ID)
		require.ErrorIs(t, err, ErrGroupNotFound)

		var members, messages int64
		db.Model(&models.StudyGroupMember{}).Where("study_group_id = ?", grp.ID).Count(&members)
		db.Model(&models.GroupMessage{}).Where("study_group_id = ?", grp.ID).Count(&messages)
		assert.Zero(t, members)
		assert.Zero(t, messages)
	})
}

func TestGetForUpdate(t *testing.T) {
	db := setupTestDB(t)
	creatorID := seedUser(t, db, "mallory")

	grp, err := Create(db, validParams(), creatorID)
	require.NoError(t, err)

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		locked, err := GetForUpdate(tx, grp.ID)
		require.NoError(t, err)
		assert.Equal(t, grp.ID, locked.ID)

		_, err = GetForUpdate(tx, 999)
		assert.ErrorIs(t, err, ErrGroupNotFound)

		return nil
	}))
}

// TestGetForUpdateEmitsRowLock builds the statement against the MySQL
// dialector in dry-run mode; the in-memory SQLite tests cannot cover this
// because its dialector drops locking clauses.
func TestGetForUpdateEmitsRowLock(t *testing.T) {
	db, err := gorm.Open(gormmysql.New(gormmysql.Config{
		DSN:                       "studybuddy:studybuddy@tcp(127.0.0.1:3306)/studybuddy",
		SkipInitializeWithVersion: true,
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)

	var captured string
	err = db.Callback().Query().After("gorm:query").Register("capture_sql", func(tx *gorm.DB) {
		captured = tx.Statement.SQL.String()
	})
	require.NoError(t, err)

	_, err = GetForUpdate(db, 1)
	require.NoError(t, err)
	assert.Contains(t, captured, "FOR UPDATE")
}

func TestListPublic(t *testing.T) {
	db := setupTestDB(t)
	creatorID := seedUser(t, db, "ivan")

	public := validParams()
	_, err := Create(db, public, creatorID)
	require.NoError(t, err)

	private := validParams()
	private.Name = "Private Circle"
	private.IsPublic = false
	_, err = Create(db, private, creatorID)
	require.NoError(t, err)

	groups, err := ListPublic(db)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "Algorithms Study Circle", groups[0].Name)
	assert.Equal(t, creatorID, groups[0].Creator.ID)
	assert.Len(t, groups[0].Members, 1)
}

func TestListForUser(t *testing.T) {
	db := setupTestDB(t)
	creatorID := seedUser(t, db, "judy")
	otherID := seedUser(t, db, "ken")

	grp, err := Create(db, validParams(), creatorID)
	require.NoError(t, err)

	require.NoError(t, db.Create(&models.StudyGroupMember{
		StudyGroupID: grp.ID, UserID: otherID, Role: models.RoleMember,
	}).Error)

	second := validParams()
	second.Name = "Second Group"
	_, err = Create(db, second, creatorID)
	require.NoError(t, err)

	creatorGroups, err := ListForUser(db, creatorID)
	require.NoError(t, err)
	assert.Len(t, creatorGroups, 2)

	otherGroups, err := ListForUser(db, otherID)
	require.NoError(t, err)
	require.Len(t, otherGroups, 1)
	assert.Equal(t, grp.ID, otherGroups[0].ID)

	none, err := ListForUser(db, 999)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGetDetails(t *testing.T) {
	db := setupTestDB(t)
	creatorID := seedUser(t, db, "laura")

	grp, err := Create(db, validParams(), creatorID)
	require.NoError(t, err)

	require.NoError(t, db.Create(&models.GroupMessage{
		StudyGroupID: grp.ID, UserID: creatorID, Text: "first",
	}).Error)
	require.NoError(t, db.Create(&models.GroupMessage{
		StudyGroupID: grp.ID, UserID: creatorID, Text: "second",
	}).Error)

	details, err := GetDetails(db, grp.ID)
	require.NoError(t, err)
	assert.Equal(t, creatorID, details.Creator.ID)
	require.Len(t, details.Members, 1)
	assert.Equal(t, "laura", details.Members[0].User.Name)
	require.Len(t, details.Messages, 2)
	assert.Equal(t, "first", details.Messages[0].Text)
	assert.Equal(t, "second", details.Messages[1].Text)

	_, err = GetDetails(db, 999)
	require.ErrorIs(t, err, ErrGroupNotFound)
}
