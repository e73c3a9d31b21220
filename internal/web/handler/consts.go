package handler

const (
	// RootPath is the root path of a route group.
	RootPath = "/"

	// ErrNilACDFatalLogMsg is used if app or cfg or db var pointer is nil.
	ErrNilACDFatalLogMsg = "app, cfg or db is nil"

	// UserIDLocal is the fiber.Locals key carrying the authenticated user id.
	UserIDLocal = "userID"
)
