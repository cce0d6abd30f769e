package clustering

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSilhouetteWellSeparatedClusters(t *testing.T) {
	X := [][]float64{
		{0, 0}, {0, 1}, {1, 0},
		{100, 100}, {100, 101}, {101, 100},
	}
	labels := []int{0, 0, 0, 1, 1, 1}

	score := Silhouette(X, labels)
	assert.Greater(t, score, 0.9)
	assert.LessOrEqual(t, score, 1.0)
}

func TestSilhouetteBadAssignmentIsNegative(t *testing.T) {
	// each cluster holds one point from each far-apart group
	X := [][]float64{
		{0, 0}, {0, 1},
		{100, 0}, {100, 1},
	}
	labels := []int{0, 1, 0, 1}

	assert.Negative(t, Silhouette(X, labels))
}

func TestSilhouetteSingleClusterIsZero(t *testing.T) {
	X := [][]float64{{0, 0}, {1, 1}, {2, 2}}
	labels := []int{0, 0, 0}

	assert.Zero(t, Silhouette(X, labels))
}

func TestSilhouetteSingletonClusterScoresZero(t *testing.T) {
	X := [][]float64{
		{0, 0}, {0, 1}, {0, 2},
		{50, 50},
	}
	labels := []int{0, 0, 0, 1}

	// the singleton contributes 0, the tight cluster close to 1
	score := Silhouette(X, labels)
	assert.Greater(t, score, 0.5)
	assert.Less(t, score, 1.0)
}
