package clustering

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrightnessNormalizeUnitColumnNorms(t *testing.T) {
	X := [][]float64{
		{3, 0, 1},
		{4, 0, 2},
		{0, 0, 2},
	}

	BrightnessNormalize(X)

	for j := 0; j < 3; j++ {
		var norm float64
		for i := range X {
			norm += X[i][j] * X[i][j]
		}
		if j == 1 {
			// zero-norm column stays untouched
			assert.Zero(t, norm)
			continue
		}
		assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-12)
	}
}

func TestBrightnessNormalizeEmptyMatrix(t *testing.T) {
	assert.NotPanics(t, func() { BrightnessNormalize(nil) })
}

func TestPCARotatePreservesShapeAndDistances(t *testing.T) {
	X := [][]float64{
		{1.0, 2.0, 0.5},
		{2.0, 1.5, 0.7},
		{3.0, 0.5, 0.2},
		{4.0, 2.5, 0.9},
		{5.0, 1.0, 0.4},
		{6.0, 3.0, 0.8},
	}

	rotated, err := PCARotate(X)
	require.NoError(t, err)
	require.Len(t, rotated, len(X))
	require.Len(t, rotated[0], len(X[0]))

	// a full-rank rotation around the mean keeps pairwise distances intact
	for i := range X {
		for j := i + 1; j < len(X); j++ {
			assert.InDelta(t, euclidean(X[i], X[j]), euclidean(rotated[i], rotated[j]), 1e-9)
		}
	}
}

func TestPCARotateEmptyMatrix(t *testing.T) {
	_, err := PCARotate(nil)
	assert.Error(t, err)
}

func TestSubsampleDrawsRowsWithReplacement(t *testing.T) {
	X := [][]float64{{1, 1}, {2, 2}, {3, 3}}
	rng := rand.New(rand.NewSource(42))

	samples := Subsample(X, 10, rng)
	require.Len(t, samples, 10)

	for _, sample := range samples {
		assert.Contains(t, X, sample)
	}
}

func euclidean(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
