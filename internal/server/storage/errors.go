package storage

import "errors"

// Common storage errors
var (
	// ErrProjectNotFound indicates that project was not found in storage
	ErrProjectNotFound = errors.New("project not found")

	// ErrTaskNotFound indicates that task was not found in storage
	ErrTaskNotFound = errors.New("task not found")

	// ErrMemberAlreadyExists indicates that user is already a member of the project
	ErrMemberAlreadyExists = errors.New("member already exists")
)
