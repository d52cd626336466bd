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

// Package storage provides the storage abstraction layer for verity.
//
// The training-run registry is defined here as an interface so that the
// trainer and the command line tool do not depend on a particular backend.
// The badger subpackage provides the BadgerDB implementation.
//
// # Serialization
//
// Records are encoded with mus-go primitives. Model artifacts share the
// same encoding, so the model package reuses MarshalModelArtifact and
// UnmarshalModelArtifact for the artifact body.
//
// # Usage
//
//	backend, err := badger.OpenBackend("/path/to/registry", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
//	runs, err := badger.NewRunRepository(backend)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer runs.Close()
//
// Use in tests with in-memory storage:
//
//	runs, backend, err := badger.NewMemoryRunRepository()
//
// # Context Support
//
// All repository methods accept context.Context. Long scans check for
// cancellation between records.
package storage
