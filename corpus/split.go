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

package corpus

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/poiesic/verity/core"
)

const (
	// DefaultTrainRatio is the fraction of the dataset used for training.
	DefaultTrainRatio = 0.8

	// DefaultSeed seeds the train/test permutation.
	DefaultSeed int64 = 42
)

// newRand returns a PCG generator fully determined by seed.
func newRand(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
}

// Shuffle returns a permuted copy of ds. The input is not modified.
func Shuffle(ds core.Dataset, seed int64) core.Dataset {
	out := make(core.Dataset, len(ds))
	copy(out, ds)
	newRand(seed).Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// Split partitions ds into Train and Test. trainRatio is the fraction in
// (0,1) assigned to Train; the test side receives ceil((1-trainRatio)*n)
// articles. Every article must carry a label. The same seed and dataset
// order always yield the same split.
func Split(ds core.Dataset, trainRatio float64, seed int64) (core.Split, error) {
	n := len(ds)
	if n == 0 {
		return core.Split{}, fmt.Errorf("%w: dataset is empty", core.ErrSplit)
	}
	if math.IsNaN(trainRatio) || trainRatio <= 0 || trainRatio >= 1 {
		return core.Split{}, fmt.Errorf("%w: train ratio %v outside (0,1)", core.ErrSplit, trainRatio)
	}

	for i := range ds {
		if err := core.ValidateArticle(&ds[i]); err != nil {
			return core.Split{}, fmt.Errorf("%w: row %d: %w", core.ErrSplit, i, err)
		}
	}

	// 1-0.7 is 0.30000000000000004; snap before the ceil so n=10 gives 3.
	exact := (1 - trainRatio) * float64(n)
	testSize := int(math.Ceil(math.Round(exact*1e9) / 1e9))
	trainSize := n - testSize
	if trainSize == 0 || testSize == 0 {
		return core.Split{}, fmt.Errorf("%w: %d articles cannot be split at ratio %v", core.ErrSplit, n, trainRatio)
	}

	perm := newRand(seed).Perm(n)

	split := core.Split{
		Test:  make(core.Dataset, 0, testSize),
		Train: make(core.Dataset, 0, trainSize),
	}
	for i, idx := range perm {
		if i < testSize {
			split.Test = append(split.Test, ds[idx])
		} else {
			split.Train = append(split.Train, ds[idx])
		}
	}
	return split, nil
}
