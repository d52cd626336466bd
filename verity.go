// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package verity wires the training pipeline to the run registry.
package verity

import (
	"log/slog"

	"github.com/poiesic/verity/storage"
	"github.com/poiesic/verity/storage/badger"
	"github.com/poiesic/verity/training"
)

// Registry is an open run registry plus the trainers that record into it.
type Registry struct {
	backend *badger.Backend
	runs    storage.RunRepository
	logger  *slog.Logger
}

// OpenRegistry opens (creating if needed) the run registry at filePath.
func OpenRegistry(filePath string) (*Registry, error) {
	backend, err := badger.OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}

	runs, err := badger.NewRunRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	return &Registry{
		backend: backend,
		runs:    runs,
		logger:  slog.Default().With("component", "registry"),
	}, nil
}

// Close releases the repository and the backend.
func (r *Registry) Close() error {
	if err := r.runs.Close(); err != nil {
		r.logger.Error("error closing run repository", "err", err)
		return err
	}
	if err := r.backend.Close(); err != nil {
		r.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// Runs returns the run repository.
func (r *Registry) Runs() storage.RunRepository {
	return r.runs
}

// NewTrainer creates a trainer that records each successful run here.
func (r *Registry) NewTrainer(cfg *training.Config, opts ...training.Option) (*training.Trainer, error) {
	opts = append(opts, training.WithRunRecorder(r.runs))
	return training.NewTrainer(cfg, opts...)
}
