package storage

import "errors"

// Common client storage errors
var (
	// ErrQueueEmpty indicates that the mutation queue has no entries
	ErrQueueEmpty = errors.New("mutation queue is empty")

	// ErrMutationNotFound indicates that queued mutation was not found
	ErrMutationNotFound = errors.New("queued mutation not found")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")
)
