package evaluate

import (
	"strings"
	"testing"

	"github.com/poiesic/verity/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	F = core.LabelFake
	R = core.LabelReal
)

func TestEvaluate_Metrics(t *testing.T) {
	truth := []core.Label{F, F, F, R, R}
	pred := []core.Label{F, F, R, R, F}

	r, err := Evaluate(truth, pred)
	require.NoError(t, err)

	assert.Equal(t, 5, r.Total)
	assert.InDelta(t, 0.6, r.Accuracy, 1e-12)

	fake, ok := r.Class(F)
	require.True(t, ok)
	assert.InDelta(t, 2.0/3.0, fake.Precision, 1e-12)
	assert.InDelta(t, 2.0/3.0, fake.Recall, 1e-12)
	assert.InDelta(t, 2.0/3.0, fake.F1, 1e-12)
	assert.Equal(t, 3, fake.Support)

	realRow, ok := r.Class(R)
	require.True(t, ok)
	assert.InDelta(t, 0.5, realRow.Precision, 1e-12)
	assert.InDelta(t, 0.5, realRow.Recall, 1e-12)
	assert.Equal(t, 2, realRow.Support)

	assert.InDelta(t, (2.0/3.0+0.5)/2, r.MacroAvg.F1, 1e-12)
	assert.InDelta(t, (2.0/3.0)*0.6+0.5*0.4, r.WeightedAvg.F1, 1e-12)
	assert.Equal(t, []core.Label{F, R}, []core.Label{r.Classes[0].Label, r.Classes[1].Label})
}

func TestEvaluate_ZeroDenominators(t *testing.T) {
	r, err := Evaluate([]core.Label{R, R}, []core.Label{R, R})
	require.NoError(t, err)
	require.Len(t, r.Classes, 1)
	assert.Equal(t, 1.0, r.Accuracy)

	r, err = Evaluate([]core.Label{R, R}, []core.Label{F, F})
	require.NoError(t, err)
	fake, _ := r.Class(F)
	assert.Equal(t, 0.0, fake.Precision)
	assert.Equal(t, 0.0, fake.Recall)
	assert.Equal(t, 0.0, fake.F1)
	assert.Equal(t, 0, fake.Support)
}

func TestEvaluate_Errors(t *testing.T) {
	_, err := Evaluate(nil, nil)
	assert.ErrorIs(t, err, core.ErrEvaluation)

	_, err = Evaluate([]core.Label{R}, []core.Label{R, F})
	assert.ErrorIs(t, err, core.ErrEvaluation)
}

func TestReport_String(t *testing.T) {
	r, err := Evaluate([]core.Label{F, F, R, R}, []core.Label{F, F, R, R})
	require.NoError(t, err)

	out := r.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 8)
	assert.Contains(t, lines[0], "precision")
	assert.Contains(t, lines[0], "f1-score")
	assert.Equal(t, "        FAKE       1.00      1.00      1.00         2", lines[2])
	assert.Equal(t, "        REAL       1.00      1.00      1.00         2", lines[3])
	assert.Equal(t, "    accuracy                           1.00         4", lines[5])
	assert.Equal(t, "weighted avg       1.00      1.00      1.00         4", lines[7])
}
