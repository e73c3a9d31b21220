package dberr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsConflict(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil error", err: nil, expected: false},
		{name: "sentinel", err: ErrConflict, expected: true},
		{name: "wrapped sentinel", err: fmt.Errorf("join: %w", ErrConflict), expected: true},
		{name: "mysql deadlock", err: errors.New("Error 1213: Deadlock found when trying to get lock"), expected: true},
		{name: "postgres serialization", err: errors.New("ERROR: could not serialize access due to concurrent update"), expected: true},
		{name: "sqlite busy", err: errors.New("database is locked (5) (SQLITE_BUSY)"), expected: true},
		{name: "unrelated error", err: errors.New("record not found"), expected: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, IsConflict(tc.err))
		})
	}
}
