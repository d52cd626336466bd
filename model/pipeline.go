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

// Package model bundles a fitted vectorizer and classifier into a single
// pipeline and persists it as a self-verifying binary artifact.
package model

import (
	"fmt"

	"github.com/poiesic/verity/classifier"
	"github.com/poiesic/verity/core"
	"github.com/poiesic/verity/features"
)

// Pipeline is a fitted TF-IDF vectorizer paired with its classifier.
// It is immutable once built.
type Pipeline struct {
	Vectorizer *features.Vectorizer
	Classifier *classifier.LogisticRegression
}

// NewPipeline pairs a vectorizer with a classifier fitted on its output.
func NewPipeline(v *features.Vectorizer, c *classifier.LogisticRegression) (*Pipeline, error) {
	if v == nil || c == nil {
		return nil, fmt.Errorf("%w: pipeline needs a vectorizer and a classifier", core.ErrPersistence)
	}
	if len(c.Weights()) != v.Len() {
		return nil, fmt.Errorf("%w: classifier has %d coefficients for %d terms",
			core.ErrPersistence, len(c.Weights()), v.Len())
	}
	return &Pipeline{Vectorizer: v, Classifier: c}, nil
}

// Predict returns the label for a single document.
func (p *Pipeline) Predict(text string) core.Label {
	return p.Classifier.Predict(p.Vectorizer.TransformOne(text))
}

// PredictProba returns the probability that text belongs to the second
// class in label order.
func (p *Pipeline) PredictProba(text string) float64 {
	return p.Classifier.PredictProba(p.Vectorizer.TransformOne(text))
}

// PredictArticle classifies an article by its combined title and body.
func (p *Pipeline) PredictArticle(a core.Article) (core.Label, float64) {
	x := p.Vectorizer.TransformOne(a.Content())
	return p.Classifier.Predict(x), p.Classifier.PredictProba(x)
}

// Artifact flattens the pipeline into its persisted form.
func (p *Pipeline) Artifact() *core.ModelArtifact {
	return &core.ModelArtifact{
		Terms:     p.Vectorizer.Vocabulary(),
		IDF:       p.Vectorizer.IDF(),
		Classes:   p.Classifier.Classes(),
		Weights:   p.Classifier.Weights(),
		Intercept: p.Classifier.Intercept(),
	}
}

// FromArtifact rebuilds a pipeline from its persisted form.
func FromArtifact(a *core.ModelArtifact) (*Pipeline, error) {
	if a == nil {
		return nil, fmt.Errorf("%w: artifact is nil", core.ErrPersistence)
	}
	v, err := features.Restore(a.Terms, a.IDF)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrPersistence, err)
	}
	c, err := classifier.New(a.Classes, a.Weights, a.Intercept)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrPersistence, err)
	}
	return NewPipeline(v, c)
}
