// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers and middleware to distinguish between different failure
// scenarios. For example, ErrForbidden indicates that the current user
// is not authorized to perform an operation on a resource owned by
// someone else, while ErrAlreadyLiked signals that the unique
// (user, post) constraint on likes rejected a duplicate row.
package repository

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when a requested row does not exist. Handlers
// should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers should translate this into an
// HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrAlreadyLiked is returned when a user tries to like a post they
// already liked. Handlers surface it as a flash message rather than a
// hard failure.
var ErrAlreadyLiked = errors.New("already liked")

// ErrUserExists is returned when an insert into users collides with the
// unique username or email key.
var ErrUserExists = errors.New("username or email already exists")

// ValidationError collects every violated input rule so that forms can
// be re-rendered with the full list at once instead of only the first
// problem.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Problems, "; ")
}

// isDuplicateKey reports whether err is a MySQL duplicate-entry error
// (code 1062). The driver formats the code into the message, so a
// substring check is sufficient and avoids a driver type assertion.
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}

// isMissingReference reports whether err is a MySQL foreign-key failure
// (code 1452), i.e. the referenced parent row no longer exists.
func isMissingReference(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1452")
}
