package classifier

import (
	"testing"

	"github.com/poiesic/verity/core"
	"github.com/poiesic/verity/features"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	realTexts = []string{
		"Parliament ratified the treaty after a long session",
		"The treaty was debated in parliament on Monday",
		"Parliament members signed the trade treaty",
		"Officials said parliament will review the treaty",
	}
	fakeTexts = []string{
		"Secret miracle cure doctors do not want you to know",
		"This miracle trick is a secret they hide",
		"Shocking secret miracle revealed by insiders",
		"Miracle pill secret finally exposed",
	}
)

func fitScenario(t *testing.T) (*features.Vectorizer, *LogisticRegression) {
	t.Helper()
	texts := append(append([]string{}, realTexts...), fakeTexts...)
	labels := make([]core.Label, 0, len(texts))
	for range realTexts {
		labels = append(labels, core.LabelReal)
	}
	for range fakeTexts {
		labels = append(labels, core.LabelFake)
	}

	v, err := features.Fit(texts)
	require.NoError(t, err)
	m, err := Fit(v.Transform(texts), labels, v.Len())
	require.NoError(t, err)
	return v, m
}

func TestFit_SeparatesDistinctVocabulary(t *testing.T) {
	v, m := fitScenario(t)

	assert.Equal(t, core.LabelFake, m.Predict(v.TransformOne("secret miracle cure")))
	assert.Equal(t, core.LabelReal, m.Predict(v.TransformOne("parliament passed treaty")))

	assert.Less(t, m.PredictProba(v.TransformOne("secret miracle cure")), 0.5)
	assert.Greater(t, m.PredictProba(v.TransformOne("parliament passed treaty")), 0.5)
}

func TestFit_ClassOrdering(t *testing.T) {
	_, m := fitScenario(t)
	assert.Equal(t, []core.Label{core.LabelFake, core.LabelReal}, m.Classes())
}

func TestFit_TrainingSetAccuracy(t *testing.T) {
	v, m := fitScenario(t)
	for _, text := range realTexts {
		assert.Equal(t, core.LabelReal, m.Predict(v.TransformOne(text)), text)
	}
	for _, text := range fakeTexts {
		assert.Equal(t, core.LabelFake, m.Predict(v.TransformOne(text)), text)
	}
}

func TestPredict_OnlyFittedLabels(t *testing.T) {
	v, m := fitScenario(t)
	for _, text := range []string{"", "unseen words entirely", "secret parliament", "treaty miracle"} {
		got := m.Predict(v.TransformOne(text))
		assert.Contains(t, []core.Label{core.LabelFake, core.LabelReal}, got)
	}
}

func TestPredict_TieGoesToFirstClass(t *testing.T) {
	m, err := New([]core.Label{core.LabelFake, core.LabelReal}, []float64{1, -1}, 0)
	require.NoError(t, err)

	assert.Equal(t, core.LabelFake, m.Predict(features.SparseVector{}))
	assert.InDelta(t, 0.5, m.PredictProba(features.SparseVector{}), 1e-12)

	tied := features.SparseVector{Indices: []int{0, 1}, Values: []float64{0.5, 0.5}}
	assert.Equal(t, core.LabelFake, m.Predict(tied))
}

func TestFit_Errors(t *testing.T) {
	row := features.SparseVector{Indices: []int{0}, Values: []float64{1}}

	tests := []struct {
		name string
		X    []features.SparseVector
		y    []core.Label
		dim  int
	}{
		{name: "single label", X: []features.SparseVector{row, row}, y: []core.Label{core.LabelReal, core.LabelReal}, dim: 1},
		{name: "no rows", X: nil, y: nil, dim: 1},
		{name: "length mismatch", X: []features.SparseVector{row}, y: []core.Label{core.LabelReal, core.LabelFake}, dim: 1},
		{name: "empty feature space", X: []features.SparseVector{row, row}, y: []core.Label{core.LabelReal, core.LabelFake}, dim: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Fit(tt.X, tt.y, tt.dim)
			assert.ErrorIs(t, err, core.ErrTraining)
			assert.Nil(t, m)
		})
	}
}

func TestFit_RegularizationShrinksWeights(t *testing.T) {
	texts := append(append([]string{}, realTexts...), fakeTexts...)
	labels := []core.Label{
		core.LabelReal, core.LabelReal, core.LabelReal, core.LabelReal,
		core.LabelFake, core.LabelFake, core.LabelFake, core.LabelFake,
	}
	v, err := features.Fit(texts)
	require.NoError(t, err)
	X := v.Transform(texts)

	strong, err := Fit(X, labels, v.Len(), WithC(0.01))
	require.NoError(t, err)
	weak, err := Fit(X, labels, v.Len(), WithC(100))
	require.NoError(t, err)

	idx, ok := v.Index("treaty")
	require.True(t, ok)
	assert.Greater(t, weak.Weights()[idx], strong.Weights()[idx])
	assert.Greater(t, strong.Weights()[idx], 0.0)
}

func TestNew_Validation(t *testing.T) {
	_, err := New([]core.Label{core.LabelReal}, []float64{1}, 0)
	assert.Error(t, err)
	_, err = New([]core.Label{core.LabelReal, core.LabelFake}, []float64{1}, 0)
	assert.Error(t, err)
	_, err = New([]core.Label{core.LabelFake, core.Label(7)}, []float64{1}, 0)
	assert.Error(t, err)
	_, err = New([]core.Label{core.LabelFake, core.LabelReal}, nil, 0)
	assert.Error(t, err)
}

func TestMinimizeLBFGS_Quadratic(t *testing.T) {
	// f(x) = (x0-3)^2 + 10*(x1+1)^2
	f := func(x, grad []float64) float64 {
		grad[0] = 2 * (x[0] - 3)
		grad[1] = 20 * (x[1] + 1)
		return (x[0]-3)*(x[0]-3) + 10*(x[1]+1)*(x[1]+1)
	}
	x0 := []float64{0, 0}
	res, err := minimizeLBFGS(f, x0, lbfgsSettings{maxIterations: 100, memory: 5, gradTolerance: 1e-6})
	require.NoError(t, err)
	assert.True(t, res.converged)
	assert.Equal(t, []float64{0, 0}, x0, "start point must not be modified")
	assert.InDelta(t, 0, res.value, 1e-8)
	assert.InDelta(t, 3, res.x[0], 1e-4)
	assert.InDelta(t, -1, res.x[1], 1e-4)
}

func TestMinimizeLBFGS_IterationBudget(t *testing.T) {
	// Rosenbrock needs far more than two iterations from (-1.2, 1).
	f := func(x, grad []float64) float64 {
		a, b := 1-x[0], x[1]-x[0]*x[0]
		grad[0] = -2*a - 400*x[0]*b
		grad[1] = 200 * b
		return a*a + 100*b*b
	}
	res, err := minimizeLBFGS(f, []float64{-1.2, 1}, lbfgsSettings{maxIterations: 2, memory: 10, gradTolerance: 1e-8})
	require.NoError(t, err)
	assert.False(t, res.converged)
	assert.LessOrEqual(t, res.iterations, 2)
}
