package resource

import (
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/studybuddy/studybuddy-server/internal/db/models"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "failed to create test database")

	err = db.AutoMigrate(&models.User{}, &models.StudyResource{})
	require.NoError(t, err, "failed to migrate test database")

	return db
}

func seedUser(t *testing.T, db *gorm.DB, name string) uint64 {
	t.Helper()

	usr := models.User{Name: name, Email: name + "@example.com", Password: "x", Active: true}
	require.NoError(t, db.Create(&usr).Error, "failed to seed user")

	return usr.ID
}

func validParams() Params {
	return Params{
		Title:        "Linear Algebra Notes",
		Subject:      "Mathematics",
		ResourceType: "PDF",
		FileName:     "notes.pdf",
		ContentType:  "application/pdf",
		FileSize:     2048,
		StorageKey:   "resources/notes.pdf",
	}
}

func TestCreate(t *testing.T) {
	db := setupTestDB(t)
	userID := seedUser(t, db, "alice")

	testCases := []struct {
		name          string
		dbParam       *gorm.DB
		params        Params
		expectedError error
	}{
		{
			name:          "nil database",
			dbParam:       nil,
			params:        validParams(),
			expectedError: ErrDBNil,
		},
		{
			name:          "blank title",
			dbParam:       db,
			params:        Params{Subject: "Math", ResourceType: "PDF"},
			expectedError: ErrTitleRequired,
		},
		{
			name:          "blank subject",
			dbParam:       db,
			params:        Params{Title: "Notes", ResourceType: "PDF"},
			expectedError: ErrSubjectRequired,
		},
		{
			name:          "blank type",
			dbParam:       db,
			params:        Params{Title: "Notes", Subject: "Math"},
			expectedError: ErrTypeRequired,
		},
		{
			name:    "successful create",
			dbParam: db,
			params:  validParams(),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Create(tc.dbParam, userID, tc.params)

			if tc.expectedError != nil {
				require.Error(t, err)
				require.ErrorIs(t, err, tc.expectedError)
				assert.Nil(t, res)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, res)
			assert.NotZero(t, res.ID)
			assert.Equal(t, userID, res.UserID)
			assert.EqualValues(t, 2048, res.FileSize)
		})
	}
}

func TestCreateGeneratesStorageKey(t *testing.T) {
	db := setupTestDB(t)
	userID := seedUser(t, db, "alice")

	params := validParams()
	params.StorageKey = ""

	res, err := Create(db, userID, params)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.StorageKey, "resources/"))
	assert.Len(t, res.StorageKey, len("resources/")+storageKeyLen)
}

func TestOwnershipScoping(t *testing.T) {
	db := setupTestDB(t)
	aliceID := seedUser(t, db, "alice")
	bobID := seedUser(t, db, "bob")

	res, err := Create(db, aliceID, validParams())
	require.NoError(t, err)

	// Another user's reads, updates and deletes never see the resource.
	_, err = GetByID(db, res.ID, bobID)
	require.ErrorIs(t, err, ErrResourceNotFound)

	_, err = Update(db, res.ID, bobID, "Stolen", "", "Math")
	require.ErrorIs(t, err, ErrResourceNotFound)

	require.ErrorIs(t, Delete(db, res.ID, bobID), ErrResourceNotFound)

	// The owner still sees it untouched.
	fresh, err := GetByID(db, res.ID, aliceID)
	require.NoError(t, err)
	assert.Equal(t, "Linear Algebra Notes", fresh.Title)
}

func TestUpdate(t *testing.T) {
	db := setupTestDB(t)
	userID := seedUser(t, db, "alice")

	res, err := Create(db, userID, validParams())
	require.NoError(t, err)

	updated, err := Update(db, res.ID, userID, "Revised Notes", "now with examples", "Linear Algebra")
	require.NoError(t, err)
	assert.Equal(t, "Revised Notes", updated.Title)
	assert.Equal(t, "now with examples", updated.Description)
	assert.Equal(t, "Linear Algebra", updated.Subject)

	// File metadata is immutable through Update.
	assert.Equal(t, "notes.pdf", updated.FileName)
	assert.EqualValues(t, 2048, updated.FileSize)

	_, err = Update(db, res.ID, userID, "", "", "Math")
	require.ErrorIs(t, err, ErrTitleRequired)
}

func TestListAndSearch(t *testing.T) {
	db := setupTestDB(t)
	userID := seedUser(t, db, "alice")
	otherID := seedUser(t, db, "bob")

	first := validParams()
	_, err := Create(db, userID, first)
	require.NoError(t, err)

	second := validParams()
	second.Title = "Graph Theory Slides"
	second.Subject = "Discrete Mathematics"
	_, err = Create(db, userID, second)
	require.NoError(t, err)

	_, err = Create(db, otherID, validParams())
	require.NoError(t, err)

	mine, err := ListForUser(db, userID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	discrete, err := SearchBySubject(db, userID, "Discrete")
	require.NoError(t, err)
	require.Len(t, discrete, 1)
	assert.Equal(t, "Graph Theory Slides", discrete[0].Title)

	all, err := SearchBySubject(db, userID, "Mathematics")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestDelete(t *testing.T) {
	db := setupTestDB(t)
	userID := seedUser(t, db, "alice")

	res, err := Create(db, userID, validParams())
	require.NoError(t, err)

	require.NoError(t, Delete(db, res.ID, userID))
	require.ErrorIs(t, Delete(db, res.ID, userID), ErrResourceNotFound)

	_, err = GetByID(db, res.ID, userID)
	require.ErrorIs(t, err, ErrResourceNotFound)
}
