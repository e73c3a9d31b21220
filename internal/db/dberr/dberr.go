// Package dberr classifies low-level storage errors shared by the controllers.
package dberr

import (
	"errors"
	"strings"
)

// ErrConflict is returned when a transaction lost a concurrency race
// (deadlock, serialization failure or a busy single-writer store) and may be
// retried.
var ErrConflict = errors.New("transaction conflict")

// conflictMarkers are driver messages that indicate a lost concurrency race
// rather than a permanent failure. Covers MySQL (1213/1205), Postgres
// serialization failures and SQLite's single-writer lock.
var conflictMarkers = []string{
	"deadlock",
	"lock wait timeout",
	"could not serialize access",
	"database is locked",
	"database table is locked",
	"sqlite_busy",
}

// IsConflict reports whether err represents a retryable transaction conflict.
func IsConflict(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrConflict) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range conflictMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}

	return false
}
