package clustering

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Silhouette returns the mean silhouette coefficient over all samples. For
// each sample, a is its mean distance to the rest of its own cluster and b
// the lowest mean distance to any other cluster; the coefficient is
// (b-a)/max(a,b). Samples in singleton clusters score 0, following the usual
// convention. Returns 0 when fewer than two clusters are present.
func Silhouette(X [][]float64, labels []int) float64 {
	if len(X) == 0 {
		return 0
	}

	clusters := make(map[int][]int)
	for i, label := range labels {
		clusters[label] = append(clusters[label], i)
	}
	if len(clusters) < 2 {
		return 0
	}

	var total float64
	for i, label := range labels {
		own := clusters[label]
		if len(own) == 1 {
			continue // silhouette of a singleton is 0
		}

		var a float64
		for _, j := range own {
			if j == i {
				continue
			}
			a += floats.Distance(X[i], X[j], 2)
		}
		a /= float64(len(own) - 1)

		b := math.Inf(1)
		for other, members := range clusters {
			if other == label {
				continue
			}
			var dist float64
			for _, j := range members {
				dist += floats.Distance(X[i], X[j], 2)
			}
			dist /= float64(len(members))
			if dist < b {
				b = dist
			}
		}

		if max := math.Max(a, b); max > 0 {
			total += (b - a) / max
		}
	}

	return total / float64(len(X))
}
