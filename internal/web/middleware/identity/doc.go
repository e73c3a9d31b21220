// Package identity provides the request identity middleware for the API.
//
// Authentication itself happens upstream: a reverse proxy or gateway
// authenticates the caller and forwards the numeric user id in the
// X-User-ID header. The middleware validates the header and stores the
// id in fiber.Locals so handlers can read it via UserID.
//
// Usage:
//
//	api := app.Group("/api/v1", identity.Middleware)
//
// Requests without a parsable, non-zero user id are answered with 401
// before any handler runs.
package identity
