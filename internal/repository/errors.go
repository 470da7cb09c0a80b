package repository

import "errors"

// Common repository errors
var (
	// ErrTodoNotFound is returned when a todo does not exist or is not
	// owned by the requesting user. The two cases are deliberately not
	// distinguished so callers cannot probe other users' ids.
	ErrTodoNotFound = errors.New("todo not found")

	// ErrTagNotFound is the tag counterpart of ErrTodoNotFound
	ErrTagNotFound = errors.New("tag not found")

	// ErrUserNotFound is returned when a user row is missing
	ErrUserNotFound = errors.New("user not found")

	// ErrDuplicateTagName is returned when the owner already has a tag
	// with the requested name (unique index on user_id+name)
	ErrDuplicateTagName = errors.New("tag name already exists")

	// ErrDuplicateUsername is returned on a username collision at registration
	ErrDuplicateUsername = errors.New("username already exists")

	// ErrNoUpdateFields is returned when a partial update contains no
	// allowed fields after whitelisting
	ErrNoUpdateFields = errors.New("no valid update fields provided")
)
