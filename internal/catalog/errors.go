package catalog

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when a world, group, or photo row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateWorld is returned when a VRChat world ID is already cataloged.
	ErrDuplicateWorld = errors.New("world already cataloged")
)

// sqliteConstraintUnique is the extended result code SQLITE_CONSTRAINT_UNIQUE.
const sqliteConstraintUnique = 2067

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteConstraintUnique {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
