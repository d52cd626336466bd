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

package training

import "fmt"

// Stage is a step of the training pipeline. Stages are reached strictly in
// declaration order.
type Stage int

const (
	StageInit Stage = iota
	StageLoaded
	StageSplit
	StageFeaturesFit
	StageClassifierFit
	StageEvaluated
	StagePersisted
)

var stageNames = [...]string{
	StageInit:          "INIT",
	StageLoaded:        "LOADED",
	StageSplit:         "SPLIT",
	StageFeaturesFit:   "FEATURES_FIT",
	StageClassifierFit: "CLASSIFIER_FIT",
	StageEvaluated:     "EVALUATED",
	StagePersisted:     "PERSISTED",
}

func (s Stage) String() string {
	if s >= 0 && int(s) < len(stageNames) {
		return stageNames[s]
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// StageError reports the stage that was being attempted when the pipeline
// halted. It unwraps to the underlying error.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("training failed at %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
