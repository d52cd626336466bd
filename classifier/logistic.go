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

package classifier

import (
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/poiesic/verity/core"
	"github.com/poiesic/verity/features"
)

const (
	// DefaultC is the inverse L2 regularization strength.
	DefaultC = 1.0

	// DefaultMaxIterations bounds the optimizer.
	DefaultMaxIterations = 100

	defaultMemory        = 10
	defaultGradTolerance = 1e-4
)

// LogisticRegression is a fitted binary linear classifier.
// Classes[1] is the positive class whose probability PredictProba returns.
type LogisticRegression struct {
	classes   [2]core.Label
	weights   []float64
	intercept float64
}

type fitConfig struct {
	c             float64
	maxIterations int
	logger        *slog.Logger
}

// Option configures Fit.
type Option func(*fitConfig)

// WithC sets the inverse regularization strength. Non-positive values are ignored.
// Default is 1.0.
func WithC(c float64) Option {
	return func(cfg *fitConfig) {
		if c > 0 {
			cfg.c = c
		}
	}
}

// WithMaxIterations bounds the number of optimizer iterations.
// Default is 100.
func WithMaxIterations(n int) Option {
	return func(cfg *fitConfig) {
		if n > 0 {
			cfg.maxIterations = n
		}
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *fitConfig) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// Fit trains a logistic regression on feature rows X with labels y over a
// feature space of dim columns. The objective is
//
//	0.5*||w||^2 + C * sum_i log(1 + exp(-s_i*(w.x_i + b)))
//
// with s_i = +1 for the positive class and -1 otherwise; the intercept b is
// not penalized. Exactly two distinct labels must be present.
func Fit(X []features.SparseVector, y []core.Label, dim int, opts ...Option) (*LogisticRegression, error) {
	cfg := fitConfig{
		c:             DefaultC,
		maxIterations: DefaultMaxIterations,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	logger := cfg.logger.With("component", "logistic-regression")

	if len(X) == 0 {
		return nil, fmt.Errorf("%w: no training rows", core.ErrTraining)
	}
	if len(X) != len(y) {
		return nil, fmt.Errorf("%w: %d rows but %d labels", core.ErrTraining, len(X), len(y))
	}
	if dim <= 0 {
		return nil, fmt.Errorf("%w: feature space is empty", core.ErrTraining)
	}

	classes := distinctLabels(y)
	if len(classes) != 2 {
		return nil, fmt.Errorf("%w: need 2 distinct labels, found %d", core.ErrTraining, len(classes))
	}

	signs := make([]float64, len(y))
	for i, label := range y {
		if label == classes[1] {
			signs[i] = 1
		} else {
			signs[i] = -1
		}
	}

	margins := make([]float64, len(X))
	f := func(theta, grad []float64) float64 {
		w, b := theta[:dim], theta[dim]
		var loss float64
		for i, row := range X {
			margins[i] = signs[i] * (row.Dot(w) + b)
			loss += logOnePlusExp(-margins[i])
		}

		var reg float64
		for j, wj := range w {
			reg += wj * wj
			grad[j] = wj
		}
		grad[dim] = 0

		for i, row := range X {
			// d/dz log(1+exp(-s z)) = -s * sigmoid(-s z)
			coef := -cfg.c * signs[i] * sigmoid(-margins[i])
			for k, idx := range row.Indices {
				grad[idx] += coef * row.Values[k]
			}
			grad[dim] += coef
		}
		return 0.5*reg + cfg.c*loss
	}

	res, err := minimizeLBFGS(f, make([]float64, dim+1), lbfgsSettings{
		maxIterations: cfg.maxIterations,
		memory:        defaultMemory,
		gradTolerance: defaultGradTolerance,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: optimizer: %w", core.ErrTraining, err)
	}
	if !res.converged {
		logger.Warn("optimizer did not converge", "iterations", res.iterations, "objective", res.value)
	} else {
		logger.Debug("optimizer converged", "iterations", res.iterations, "objective", res.value)
	}

	return &LogisticRegression{
		classes:   [2]core.Label{classes[0], classes[1]},
		weights:   res.x[:dim],
		intercept: res.x[dim],
	}, nil
}

// New builds a LogisticRegression from persisted parameters.
func New(classes []core.Label, weights []float64, intercept float64) (*LogisticRegression, error) {
	if len(classes) != 2 {
		return nil, fmt.Errorf("expected 2 classes, got %d", len(classes))
	}
	for _, c := range classes {
		if err := core.ValidateLabel(c); err != nil {
			return nil, err
		}
	}
	if classes[0] >= classes[1] {
		return nil, fmt.Errorf("classes %v are not in label order", classes)
	}
	if len(weights) == 0 {
		return nil, fmt.Errorf("no coefficients")
	}
	return &LogisticRegression{
		classes:   [2]core.Label{classes[0], classes[1]},
		weights:   slices.Clone(weights),
		intercept: intercept,
	}, nil
}

// Classes returns the two labels in label order.
func (m *LogisticRegression) Classes() []core.Label {
	return []core.Label{m.classes[0], m.classes[1]}
}

// Weights returns a copy of the feature coefficients.
func (m *LogisticRegression) Weights() []float64 {
	return slices.Clone(m.weights)
}

// Intercept returns the bias term.
func (m *LogisticRegression) Intercept() float64 {
	return m.intercept
}

// DecisionFunction returns w.x + b. Positive values favor Classes()[1].
func (m *LogisticRegression) DecisionFunction(x features.SparseVector) float64 {
	var sum float64
	for k, idx := range x.Indices {
		if idx < len(m.weights) {
			sum += x.Values[k] * m.weights[idx]
		}
	}
	return sum + m.intercept
}

// PredictProba returns the estimated probability of Classes()[1].
func (m *LogisticRegression) PredictProba(x features.SparseVector) float64 {
	return sigmoid(m.DecisionFunction(x))
}

// Predict returns the class with the higher posterior. An exact tie goes to
// the first class in label order.
func (m *LogisticRegression) Predict(x features.SparseVector) core.Label {
	if m.DecisionFunction(x) > 0 {
		return m.classes[1]
	}
	return m.classes[0]
}

// PredictAll predicts every row of X.
func (m *LogisticRegression) PredictAll(X []features.SparseVector) []core.Label {
	out := make([]core.Label, len(X))
	for i, x := range X {
		out[i] = m.Predict(x)
	}
	return out
}

func distinctLabels(y []core.Label) []core.Label {
	var out []core.Label
	for _, label := range y {
		if !slices.Contains(out, label) {
			out = append(out, label)
		}
	}
	slices.Sort(out)
	return out
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

// logOnePlusExp computes log(1+exp(z)) without overflow.
func logOnePlusExp(z float64) float64 {
	if z > 0 {
		return z + math.Log1p(math.Exp(-z))
	}
	return math.Log1p(math.Exp(z))
}
