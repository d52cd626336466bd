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

package features

import (
	"fmt"
	"math"
	"slices"

	"github.com/poiesic/verity/core"
)

// SparseVector is a row of the feature matrix. Indices are strictly
// increasing; Values holds the weight at each index.
type SparseVector struct {
	Indices []int
	Values  []float64
}

// Dot returns the inner product of v with a dense weight vector.
func (v SparseVector) Dot(weights []float64) float64 {
	var sum float64
	for k, idx := range v.Indices {
		sum += v.Values[k] * weights[idx]
	}
	return sum
}

// Vectorizer maps text onto TF-IDF weights over a frozen vocabulary.
// A fitted Vectorizer is never modified and is safe for concurrent use.
type Vectorizer struct {
	terms []string
	index map[string]int
	idf   []float64
}

// Fit learns the vocabulary and inverse document frequencies from texts.
// The vocabulary is sorted so that identical input always yields identical
// indices. idf(t) = ln((1+n)/(1+df(t))) + 1.
func Fit(texts []string) (*Vectorizer, error) {
	df := make(map[string]int)
	for _, text := range texts {
		seen := make(map[string]struct{})
		for _, tok := range Tokenize(text) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	if len(df) == 0 {
		return nil, fmt.Errorf("%w: no tokens remain across %d documents", core.ErrEmptyVocabulary, len(texts))
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	slices.Sort(terms)

	n := float64(len(texts))
	idf := make([]float64, len(terms))
	for i, term := range terms {
		idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}
	return newVectorizer(terms, idf), nil
}

// Restore rebuilds a Vectorizer from a persisted vocabulary and IDF weights.
func Restore(terms []string, idf []float64) (*Vectorizer, error) {
	if len(terms) == 0 {
		return nil, core.ErrEmptyVocabulary
	}
	if len(terms) != len(idf) {
		return nil, fmt.Errorf("vocabulary has %d terms but %d idf weights", len(terms), len(idf))
	}
	if !slices.IsSorted(terms) {
		return nil, fmt.Errorf("vocabulary is not sorted")
	}
	return newVectorizer(slices.Clone(terms), slices.Clone(idf)), nil
}

func newVectorizer(terms []string, idf []float64) *Vectorizer {
	index := make(map[string]int, len(terms))
	for i, term := range terms {
		index[term] = i
	}
	return &Vectorizer{terms: terms, index: index, idf: idf}
}

// Len returns the vocabulary size.
func (v *Vectorizer) Len() int {
	return len(v.terms)
}

// Vocabulary returns a copy of the terms in index order.
func (v *Vectorizer) Vocabulary() []string {
	return slices.Clone(v.terms)
}

// IDF returns a copy of the inverse document frequencies in index order.
func (v *Vectorizer) IDF() []float64 {
	return slices.Clone(v.idf)
}

// Index returns the feature index of term.
func (v *Vectorizer) Index(term string) (int, bool) {
	i, ok := v.index[term]
	return i, ok
}

// Transform maps each text to an L2-normalized TF-IDF vector. Tokens outside
// the vocabulary are ignored.
func (v *Vectorizer) Transform(texts []string) []SparseVector {
	out := make([]SparseVector, len(texts))
	for i, text := range texts {
		out[i] = v.TransformOne(text)
	}
	return out
}

// TransformOne maps a single text to its TF-IDF vector.
func (v *Vectorizer) TransformOne(text string) SparseVector {
	counts := make(map[int]int)
	for _, tok := range Tokenize(text) {
		if idx, ok := v.index[tok]; ok {
			counts[idx]++
		}
	}

	vec := SparseVector{
		Indices: make([]int, 0, len(counts)),
		Values:  make([]float64, 0, len(counts)),
	}
	for idx := range counts {
		vec.Indices = append(vec.Indices, idx)
	}
	slices.Sort(vec.Indices)

	var norm float64
	for _, idx := range vec.Indices {
		w := float64(counts[idx]) * v.idf[idx]
		vec.Values = append(vec.Values, w)
		norm += w * w
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for k := range vec.Values {
			vec.Values[k] /= norm
		}
	}
	return vec
}
