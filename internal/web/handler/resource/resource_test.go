package resource

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/studybuddy/studybuddy-server/internal/config"
	controller "github.com/studybuddy/studybuddy-server/internal/db/controller/resource"
	"github.com/studybuddy/studybuddy-server/internal/db/models"
	"github.com/studybuddy/studybuddy-server/internal/web/middleware/identity"
)

// setupTestApp creates a fiber app with the resource routes and an in-memory database.
func setupTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "failed to create test database")

	err = db.AutoMigrate(&models.User{}, &models.StudyResource{})
	require.NoError(t, err, "failed to migrate test database")

	app := fiber.New(fiber.Config{CaseSensitive: true, Immutable: true})
	app.Use("/api/v1", identity.Middleware)

	svc := Service{}
	require.NoError(t, svc.Init(app, &config.Config{}, db))

	return app, db
}

func seedUser(t *testing.T, db *gorm.DB, name string) uint64 {
	t.Helper()

	usr := models.User{Name: name, Email: name + "@example.com", Password: "x", Active: true}
	require.NoError(t, db.Create(&usr).Error, "failed to seed user")

	return usr.ID
}

func doJSON(t *testing.T, app *fiber.App, method, target string, userID uint64, body any) *http.Response {
	t.Helper()

	var reqBody bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&reqBody).Encode(body))
	}

	req := httptest.NewRequest(method, target, &reqBody)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	req.Header.Set(identity.HeaderUserID, strconv.FormatUint(userID, 10))

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	return resp
}

func TestCreateAndGet(t *testing.T) {
	app, db := setupTestApp(t)
	userID := seedUser(t, db, "alice")

	body := fiber.Map{
		"title":        "Linear Algebra Notes",
		"subject":      "Mathematics",
		"resourceType": "PDF",
		"fileName":     "notes.pdf",
		"contentType":  "application/pdf",
		"fileSize":     2048,
	}

	resp := doJSON(t, app, fiber.MethodPost, "/api/v1/resources", userID, body)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var env struct {
		Success bool                 `json:"success"`
		Data    models.StudyResource `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	assert.True(t, env.Success)
	assert.NotZero(t, env.Data.ID)
	assert.NotEmpty(t, env.Data.StorageKey, "a storage key is reserved on create")

	resp = doJSON(t, app, fiber.MethodGet, "/api/v1/resources/"+strconv.FormatUint(env.Data.ID, 10), userID, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestCreateValidation(t *testing.T) {
	app, db := setupTestApp(t)
	userID := seedUser(t, db, "alice")

	resp := doJSON(t, app, fiber.MethodPost, "/api/v1/resources", userID, fiber.Map{"title": "Notes"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestGetOtherUsersResource(t *testing.T) {
	app, db := setupTestApp(t)
	aliceID := seedUser(t, db, "alice")
	bobID := seedUser(t, db, "bob")

	res, err := controller.Create(db, aliceID, controller.Params{
		Title:        "Notes",
		Subject:      "Math",
		ResourceType: "PDF",
	})
	require.NoError(t, err)

	resp := doJSON(t, app, fiber.MethodGet, "/api/v1/resources/"+strconv.FormatUint(res.ID, 10), bobID, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestListAndSearch(t *testing.T) {
	app, db := setupTestApp(t)
	userID := seedUser(t, db, "alice")

	_, err := controller.Create(db, userID, controller.Params{Title: "Notes", Subject: "Mathematics", ResourceType: "PDF"})
	require.NoError(t, err)
	_, err = controller.Create(db, userID, controller.Params{Title: "Slides", Subject: "History", ResourceType: "PPT"})
	require.NoError(t, err)

	resp := doJSON(t, app, fiber.MethodGet, "/api/v1/resources", userID, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var env struct {
		Success bool                   `json:"success"`
		Data    []models.StudyResource `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	assert.Len(t, env.Data, 2)

	resp = doJSON(t, app, fiber.MethodGet, "/api/v1/resources/search?subject=Hist", userID, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	require.Len(t, env.Data, 1)
	assert.Equal(t, "Slides", env.Data[0].Title)

	// subject parameter is required
	resp = doJSON(t, app, fiber.MethodGet, "/api/v1/resources/search", userID, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestUpdateAndDelete(t *testing.T) {
	app, db := setupTestApp(t)
	userID := seedUser(t, db, "alice")

	res, err := controller.Create(db, userID, controller.Params{Title: "Notes", Subject: "Math", ResourceType: "PDF"})
	require.NoError(t, err)

	target := "/api/v1/resources/" + strconv.FormatUint(res.ID, 10)

	resp := doJSON(t, app, fiber.MethodPut, target, userID, fiber.Map{
		"title":   "Revised Notes",
		"subject": "Math",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var env struct {
		Success bool                 `json:"success"`
		Data    models.StudyResource `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	assert.Equal(t, "Revised Notes", env.Data.Title)

	resp = doJSON(t, app, fiber.MethodDelete, target, userID, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, fiber.MethodGet, target, userID, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
