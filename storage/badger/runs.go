package badger

import (
	"bytes"
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/verity/core"
	"github.com/poiesic/verity/storage"
)

// RunRepository implements storage.RunRepository for BadgerDB.
type RunRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.RunRepository = (*RunRepository)(nil)

// NewRunRepository creates a new RunRepository.
func NewRunRepository(backend *Backend) (*RunRepository, error) {
	idSeq, err := backend.GetSequence(runIDSeq)
	if err != nil {
		return nil, err
	}

	return &RunRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *RunRepository) Close() error {
	return r.idSeq.Release()
}

// AddRun validates and stores a training run under a new sequential ID.
func (r *RunRepository) AddRun(ctx context.Context, run *core.TrainingRun) (*core.TrainingRun, error) {
	if err := core.ValidateTrainingRun(run); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		nextID, err := r.idSeq.Next()
		if err != nil {
			return err
		}
		// BadgerDB sequences can return 0 on first call, so we skip it
		if nextID == 0 {
			nextID, err = r.idSeq.Next()
			if err != nil {
				return err
			}
		}
		run.Id = core.ID(nextID)

		if err := tx.Set(makeRunKey(run.Id), storage.MarshalTrainingRun(run)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}

	r.backend.logger.Debug("recorded training run", "id", run.Id, "artifact", run.ArtifactPath)
	return run, nil
}

// GetRun retrieves a single run by ID.
func (r *RunRepository) GetRun(ctx context.Context, id core.ID) (*core.TrainingRun, error) {
	var run *core.TrainingRun
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		run, err = readRun(tx, makeRunKey(id))
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, fmt.Errorf("%w: run %d", storage.ErrNotFound, id)
	}
	return run, nil
}

// ListRuns returns up to limit runs, most recent first.
func (r *RunRepository) ListRuns(ctx context.Context, limit int) ([]*core.TrainingRun, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", storage.ErrInvalidQuery, limit)
	}

	var results []*core.TrainingRun
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true

		iter := tx.NewIterator(opts)
		defer iter.Close()

		prefix := []byte(runPrefix)
		for iter.Seek(runKeyUpperBound()); iter.Valid() && len(results) < limit; iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := iter.Item()
			if !bytes.HasPrefix(item.Key(), prefix) {
				break
			}

			var run *core.TrainingRun
			if err := item.Value(func(val []byte) error {
				var err error
				run, err = storage.UnmarshalTrainingRun(val)
				return err
			}); err != nil {
				return err
			}
			results = append(results, run)
		}
		return nil
	}, false)

	return results, err
}

// readRun returns nil, nil when key is absent.
func readRun(tx *badger.Txn, key []byte) (*core.TrainingRun, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var run *core.TrainingRun
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		run, unmarshalErr = storage.UnmarshalTrainingRun(val)
		return unmarshalErr
	})
	return run, err
}
