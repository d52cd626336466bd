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

import "fmt"

// ValidateLabel validates that a Label has a valid value.
func ValidateLabel(label Label) error {
	if label != LabelFake && label != LabelReal {
		return fmt.Errorf("%w: value %d", ErrInvalidLabel, label)
	}
	return nil
}

// ValidateArticle validates an Article according to domain rules.
//
// Validation rules:
//   - Label must be FAKE or REAL
//
// Empty titles and bodies are allowed; missing fields load as "".
func ValidateArticle(article *Article) error {
	if article == nil {
		return fmt.Errorf("%w: article is nil", ErrInvalidArticle)
	}
	if err := ValidateLabel(article.Label); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArticle, err)
	}
	return nil
}

// ValidateTrainingRun validates a TrainingRun before it is recorded.
func ValidateTrainingRun(run *TrainingRun) error {
	if run == nil {
		return fmt.Errorf("%w: run is nil", ErrInvalidTrainingRun)
	}
	if run.ArtifactPath == "" {
		return fmt.Errorf("%w: artifact path is empty", ErrInvalidTrainingRun)
	}
	if run.FinishedAt.Before(run.StartedAt) {
		return fmt.Errorf("%w: finished before it started", ErrInvalidTrainingRun)
	}
	for _, c := range run.Classes {
		if err := ValidateLabel(c.Label); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidTrainingRun, err)
		}
	}
	return nil
}
