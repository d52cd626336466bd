package storage

import (
	"context"

	"github.com/poiesic/verity/core"
)

// RunRepository records completed training runs.
// Implementations must be thread-safe and support concurrent access.
type RunRepository interface {
	// AddRun validates and stores a training run.
	// Always assigns a new ID from the sequence, overwriting run.Id.
	// Returns the stored run.
	AddRun(ctx context.Context, run *core.TrainingRun) (*core.TrainingRun, error)

	// GetRun retrieves a single run by ID.
	// Returns ErrNotFound if the run doesn't exist.
	GetRun(ctx context.Context, id core.ID) (*core.TrainingRun, error)

	// ListRuns returns up to limit runs, most recent first.
	// Returns ErrInvalidQuery if limit is not positive.
	ListRuns(ctx context.Context, limit int) ([]*core.TrainingRun, error)

	// Close releases resources held by the repository.
	Close() error
}
