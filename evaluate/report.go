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

// Package evaluate scores predicted labels against ground truth.
package evaluate

import (
	"fmt"
	"slices"
	"strings"

	"github.com/poiesic/verity/core"
)

// Report holds per-class and aggregate classification metrics.
type Report struct {
	Classes     []core.ClassMetrics // one row per label, in label order
	Accuracy    float64
	Total       int
	MacroAvg    core.ClassMetrics
	WeightedAvg core.ClassMetrics
}

// Evaluate computes precision, recall, F1 and support for every label
// present in truth or predicted, plus accuracy and averages. A ratio with a
// zero denominator is reported as 0.
func Evaluate(truth, predicted []core.Label) (*Report, error) {
	if len(truth) == 0 {
		return nil, fmt.Errorf("%w: test set is empty", core.ErrEvaluation)
	}
	if len(truth) != len(predicted) {
		return nil, fmt.Errorf("%w: %d true labels but %d predictions", core.ErrEvaluation, len(truth), len(predicted))
	}

	var labels []core.Label
	for _, l := range slices.Concat(truth, predicted) {
		if !slices.Contains(labels, l) {
			labels = append(labels, l)
		}
	}
	slices.Sort(labels)

	type counts struct{ tp, fp, fn int }
	byLabel := make(map[core.Label]*counts, len(labels))
	for _, l := range labels {
		byLabel[l] = &counts{}
	}

	correct := 0
	for i := range truth {
		if truth[i] == predicted[i] {
			correct++
			byLabel[truth[i]].tp++
			continue
		}
		byLabel[predicted[i]].fp++
		byLabel[truth[i]].fn++
	}

	r := &Report{
		Total:    len(truth),
		Accuracy: float64(correct) / float64(len(truth)),
	}
	for _, l := range labels {
		c := byLabel[l]
		m := core.ClassMetrics{
			Label:     l,
			Precision: ratio(c.tp, c.tp+c.fp),
			Recall:    ratio(c.tp, c.tp+c.fn),
			Support:   c.tp + c.fn,
		}
		if m.Precision+m.Recall > 0 {
			m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
		}
		r.Classes = append(r.Classes, m)

		r.MacroAvg.Precision += m.Precision / float64(len(labels))
		r.MacroAvg.Recall += m.Recall / float64(len(labels))
		r.MacroAvg.F1 += m.F1 / float64(len(labels))

		w := float64(m.Support) / float64(r.Total)
		r.WeightedAvg.Precision += m.Precision * w
		r.WeightedAvg.Recall += m.Recall * w
		r.WeightedAvg.F1 += m.F1 * w
	}
	r.MacroAvg.Support = r.Total
	r.WeightedAvg.Support = r.Total
	return r, nil
}

// Class returns the metrics row for label.
func (r *Report) Class(label core.Label) (core.ClassMetrics, bool) {
	for _, m := range r.Classes {
		if m.Label == label {
			return m, true
		}
	}
	return core.ClassMetrics{}, false
}

// String renders the report as a fixed-width text table.
func (r *Report) String() string {
	const digits = 2
	width := len("weighted avg")
	for _, m := range r.Classes {
		width = max(width, len(m.Label.String()))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%*s  %9s %9s %9s %9s\n\n", width, "", "precision", "recall", "f1-score", "support")
	row := func(name string, m core.ClassMetrics) {
		fmt.Fprintf(&b, "%*s  %9.*f %9.*f %9.*f %9d\n", width, name,
			digits, m.Precision, digits, m.Recall, digits, m.F1, m.Support)
	}
	for _, m := range r.Classes {
		row(m.Label.String(), m)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%*s  %9s %9s %9.*f %9d\n", width, "accuracy", "", "", digits, r.Accuracy, r.Total)
	row("macro avg", r.MacroAvg)
	row("weighted avg", r.WeightedAvg)
	return b.String()
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
