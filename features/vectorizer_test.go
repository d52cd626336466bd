package features

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/poiesic/verity/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "lowercases and splits", text: "Parliament PASSED the Treaty.", want: []string{"parliament", "passed", "treaty"}},
		{name: "drops single characters", text: "a b cd x9", want: []string{"cd", "x9"}},
		{name: "removes stopwords", text: "the and of with secret", want: []string{"secret"}},
		{name: "punctuation boundaries", text: "miracle-cure!!! (secret)", want: []string{"miracle", "cure", "secret"}},
		{name: "underscore is a word rune", text: "snake_case", want: []string{"snake_case"}},
		{name: "unicode letters", text: "Señor Müller", want: []string{"señor", "müller"}},
		{name: "empty", text: "", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.text))
		})
	}
}

func TestFit_Vocabulary(t *testing.T) {
	v, err := Fit([]string{"zebra apple", "apple mango", "the and"})
	require.NoError(t, err)

	assert.Equal(t, []string{"apple", "mango", "zebra"}, v.Vocabulary())
	assert.Equal(t, 3, v.Len())

	idf := v.IDF()
	// n=3; apple df=2, mango df=1, zebra df=1
	assert.InDelta(t, math.Log(4.0/3.0)+1, idf[0], 1e-12)
	assert.InDelta(t, math.Log(4.0/2.0)+1, idf[1], 1e-12)
	assert.InDelta(t, idf[1], idf[2], 1e-12)
}

func TestFit_EmptyVocabulary(t *testing.T) {
	tests := [][]string{
		nil,
		{""},
		{"the and of", "a i"},
	}
	for _, texts := range tests {
		_, err := Fit(texts)
		assert.ErrorIs(t, err, core.ErrEmptyVocabulary)
	}
}

func TestTransform_NormalizedWeights(t *testing.T) {
	v, err := Fit([]string{"apple apple mango", "mango kiwi"})
	require.NoError(t, err)

	vecs := v.Transform([]string{"apple apple mango", "durian"})
	require.Len(t, vecs, 2)

	first := vecs[0]
	apple, _ := v.Index("apple")
	mango, _ := v.Index("mango")
	assert.Equal(t, []int{apple, mango}, first.Indices)

	var norm float64
	for _, w := range first.Values {
		norm += w * w
	}
	assert.InDelta(t, 1.0, norm, 1e-12)

	idf := v.IDF()
	ratio := first.Values[0] / first.Values[1]
	assert.InDelta(t, 2*idf[apple]/idf[mango], ratio, 1e-12)

	assert.Empty(t, vecs[1].Indices, "unknown tokens are ignored")
}

func TestTransform_FrozenVocabulary(t *testing.T) {
	v, err := Fit([]string{"parliament treaty", "secret miracle"})
	require.NoError(t, err)
	before := v.Vocabulary()

	test := []string{"brand new words parliament", "secret unseen"}
	first := v.Transform(test)
	second := v.Transform(test)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("transform is not repeatable (-first +second):\n%s", diff)
	}
	assert.Equal(t, before, v.Vocabulary())
	_, ok := v.Index("brand")
	assert.False(t, ok)
}

func TestSparseVector_Dot(t *testing.T) {
	vec := SparseVector{Indices: []int{0, 2}, Values: []float64{0.5, 2}}
	assert.InDelta(t, 0.5*4+2*-1, vec.Dot([]float64{4, 100, -1}), 1e-12)
}

func TestRestore(t *testing.T) {
	v, err := Fit([]string{"apple mango", "kiwi"})
	require.NoError(t, err)

	restored, err := Restore(v.Vocabulary(), v.IDF())
	require.NoError(t, err)
	assert.Equal(t, v.Transform([]string{"kiwi apple"}), restored.Transform([]string{"kiwi apple"}))

	_, err = Restore(nil, nil)
	assert.ErrorIs(t, err, core.ErrEmptyVocabulary)
	_, err = Restore([]string{"a"}, nil)
	assert.Error(t, err)
	_, err = Restore([]string{"b", "a"}, []float64{1, 1})
	assert.Error(t, err)
}
