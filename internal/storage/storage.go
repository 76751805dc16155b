package storage

import (
	"context"
	"errors"

	"github.com/mindflowai/mindflow/internal/models"
	"github.com/mindflowai/mindflow/internal/reference"
)

var (
	// ErrStorageUnavailable is returned when storage operations fail
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// Store is the local outbox of references awaiting upload.
// Entries are keyed by absolute path (models.StagingKey); staging a file
// again replaces its entry.
type Store interface {
	// Stage records refs, replacing entries for the same file
	Stage(ctx context.Context, refs []reference.Reference) error
	// List returns all staged entries ordered by absolute path
	List(ctx context.Context) ([]*models.StagedReference, error)
	// Remove drops the entries with the given absolute paths; unknown keys are ignored
	Remove(ctx context.Context, keys ...string) error
	// Clear drops every entry
	Clear(ctx context.Context) error
	// Count returns the number of staged entries
	Count(ctx context.Context) (int, error)
	// Close releases backend resources
	Close() error
}
