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

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Label is the class assigned to an article.
// Labels order lexicographically by name: FAKE sorts before REAL.
type Label int

const (
	// LabelFake marks a fabricated article.
	LabelFake Label = iota + 1
	// LabelReal marks a factual article.
	LabelReal
)

// Labels returns every valid label in label order.
func Labels() []Label {
	return []Label{LabelFake, LabelReal}
}

func (l Label) String() string {
	switch l {
	case LabelFake:
		return "FAKE"
	case LabelReal:
		return "REAL"
	default:
		return "INVALID"
	}
}

// ParseLabel converts "FAKE" or "REAL" (any case) to a Label.
func ParseLabel(s string) (Label, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "FAKE":
		return LabelFake, nil
	case "REAL":
		return LabelReal, nil
	default:
		return 0, ErrInvalidLabel
	}
}

// Verdict is the outcome of asking a language model about an article.
// VerdictUnknown is a legitimate result when the reply names neither class.
type Verdict string

const (
	VerdictFake    Verdict = "FAKE"
	VerdictReal    Verdict = "REAL"
	VerdictUnknown Verdict = "UNKNOWN"
)

// Label maps a verdict onto a class label. ok is false for VerdictUnknown.
func (v Verdict) Label() (label Label, ok bool) {
	switch v {
	case VerdictFake:
		return LabelFake, true
	case VerdictReal:
		return LabelReal, true
	default:
		return 0, false
	}
}

// Article is a single news item. Missing title or body fields are empty strings.
type Article struct {
	Title string
	Body  string
	Label Label
}

// Content joins title and body with a single space.
func (a Article) Content() string {
	return a.Title + " " + a.Body
}

// Dataset is an ordered sequence of articles.
type Dataset []Article

// Contents returns the Content of every article, in order.
func (d Dataset) Contents() []string {
	out := make([]string, len(d))
	for i, a := range d {
		out[i] = a.Content()
	}
	return out
}

// Labels returns the label of every article, in order.
func (d Dataset) Labels() []Label {
	out := make([]Label, len(d))
	for i, a := range d {
		out[i] = a.Label
	}
	return out
}

// Split partitions a Dataset into disjoint training and test sequences.
type Split struct {
	Train Dataset
	Test  Dataset
}

// ClassMetrics holds the evaluation figures for one class (or an average row).
type ClassMetrics struct {
	Label     Label
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// ModelArtifact is the persisted form of a fitted pipeline: the frozen
// vocabulary with its IDF weights and the logistic regression parameters.
type ModelArtifact struct {
	Terms     []string  // vocabulary, index order
	IDF       []float64 // one weight per term
	Classes   []Label   // label order; Classes[1] is the positive class
	Weights   []float64 // one coefficient per term
	Intercept float64
}

// TrainingRun records the outcome of one training pipeline execution.
type TrainingRun struct {
	Id             ID
	ArtifactPath   string
	Digest         string // hex BLAKE2b-256 of the artifact payload
	StartedAt      time.Time
	FinishedAt     time.Time
	TrainSize      int
	TestSize       int
	VocabularySize int
	Accuracy       float64
	Classes        []ClassMetrics
}
