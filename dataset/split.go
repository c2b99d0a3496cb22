package dataset

import (
	"math"
	"math/rand/v2"

	hpErrors "github.com/ezoic/houseprice/pkg/errors"
)

// DefaultTestSize and DefaultSeed reproduce the usual 80/20 split with seed 42.
const (
	DefaultTestSize = 0.2
	DefaultSeed     = 42
)

// TrainTestSplit shuffles the row positions 0..n-1 with a seeded generator and returns
// the train and test positions. The test split holds ceil(testSize*n) rows. testSize
// must lie in [0, 1) and the train split may not end up empty. The same n, testSize
// and seed always produce the same split.
func TrainTestSplit(n int, testSize float64, seed uint64) (train, test []int, err error) {
	if n <= 0 {
		return nil, nil, hpErrors.ErrEmptyData
	}
	if math.IsNaN(testSize) || testSize < 0 || testSize >= 1 {
		return nil, nil, hpErrors.NewValidationError("test_size", "must be in [0, 1)", testSize)
	}

	nTest := int(math.Ceil(testSize * float64(n)))
	if n-nTest < 1 {
		return nil, nil, hpErrors.NewValidationError("test_size",
			"leaves no rows for training", testSize)
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	perm := rng.Perm(n)
	return perm[nTest:], perm[:nTest], nil
}
