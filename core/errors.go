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

package core

import "errors"

// Pipeline stage errors. Every one of them is fatal to a training run.
var (
	// ErrLoad indicates a corpus file is missing, empty or malformed.
	ErrLoad = errors.New("load error")

	// ErrSplit indicates invalid split parameters or an empty dataset.
	ErrSplit = errors.New("split error")

	// ErrEmptyVocabulary indicates no tokens survived preprocessing.
	ErrEmptyVocabulary = errors.New("empty vocabulary")

	// ErrTraining indicates a degenerate training set.
	ErrTraining = errors.New("training error")

	// ErrEvaluation indicates there was nothing to evaluate.
	ErrEvaluation = errors.New("evaluation error")

	// ErrPersistence indicates the model artifact could not be written or read.
	ErrPersistence = errors.New("persistence error")
)

// Domain validation errors
var (
	// ErrInvalidLabel indicates a Label value outside {FAKE, REAL}.
	ErrInvalidLabel = errors.New("invalid label")

	// ErrInvalidArticle indicates an Article failed validation.
	ErrInvalidArticle = errors.New("invalid article")

	// ErrInvalidTrainingRun indicates a TrainingRun failed validation.
	ErrInvalidTrainingRun = errors.New("invalid training run")
)
