package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/studybuddy/studybuddy-server/internal/db/controller/group"
	"github.com/studybuddy/studybuddy-server/internal/db/controller/membership"
	"github.com/studybuddy/studybuddy-server/internal/db/controller/message"
	"github.com/studybuddy/studybuddy-server/internal/db/controller/resource"
	"github.com/studybuddy/studybuddy-server/internal/db/controller/user"
	"github.com/studybuddy/studybuddy-server/internal/db/dberr"
)

// Response is the JSON envelope every API handler answers with.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// OK answers 200 with the given payload.
func OK(c *fiber.Ctx, data any) error {
	return c.JSON(Response{Success: true, Data: data})
}

// Created answers 201 with the given payload.
func Created(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(Response{Success: true, Data: data})
}

// Fail maps a controller error to its HTTP status and answers with the envelope.
func Fail(c *fiber.Ctx, err error) error {
	return c.Status(StatusForError(err)).JSON(Response{Success: false, Error: err.Error()})
}

// FailWithStatus answers with an explicit status and error message.
func FailWithStatus(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(Response{Success: false, Error: msg})
}

// validationErrors are rejected inputs, not server faults.
var validationErrors = []error{
	group.ErrNameRequired,
	group.ErrNameTooLong,
	group.ErrSubjectRequired,
	group.ErrSubjectTooLong,
	group.ErrDescriptionTooLong,
	group.ErrMaxMembersOutOfRange,
	group.ErrMaxMembersBelowCount,
	message.ErrTextEmpty,
	message.ErrTextTooLong,
	resource.ErrTitleRequired,
	resource.ErrTitleTooLong,
	resource.ErrSubjectRequired,
	resource.ErrSubjectTooLong,
	resource.ErrTypeRequired,
	resource.ErrDescriptionTooLong,
	user.ErrNameRequired,
	user.ErrEmailRequired,
}

// StatusForError maps controller sentinel errors to HTTP status codes.
func StatusForError(err error) int {
	for _, ve := range validationErrors {
		if errors.Is(err, ve) {
			return fiber.StatusBadRequest
		}
	}

	switch {
	case errors.Is(err, group.ErrGroupNotFound),
		errors.Is(err, group.ErrUserNotFound),
		errors.Is(err, user.ErrUserNotFound),
		errors.Is(err, resource.ErrResourceNotFound):
		return fiber.StatusNotFound

	case errors.Is(err, group.ErrPermissionDenied),
		errors.Is(err, membership.ErrNotMember),
		errors.Is(err, message.ErrNotMember):
		return fiber.StatusForbidden

	case errors.Is(err, membership.ErrAlreadyMember),
		errors.Is(err, membership.ErrGroupFull),
		errors.Is(err, membership.ErrCreatorNotAlone),
		errors.Is(err, user.ErrEmailTaken),
		dberr.IsConflict(err):
		return fiber.StatusConflict
	}

	return fiber.StatusInternalServerError
}
