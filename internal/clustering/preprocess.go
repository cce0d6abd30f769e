package clustering

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// BrightnessNormalize divides each band column by its L2 norm over all
// pixels, in place. Zero-norm columns are left untouched.
func BrightnessNormalize(X [][]float64) {
	if len(X) == 0 {
		return
	}

	norms := make([]float64, len(X[0]))
	for _, row := range X {
		for j, v := range row {
			norms[j] += v * v
		}
	}
	for j := range norms {
		norms[j] = math.Sqrt(norms[j])
	}

	for _, row := range X {
		for j := range row {
			if norms[j] > 0 {
				row[j] /= norms[j]
			}
		}
	}
}

// PCARotate projects the sample matrix onto its principal components. Every
// component is kept, so this is a rotation of the band space rather than a
// dimensionality reduction.
func PCARotate(X [][]float64) ([][]float64, error) {
	n := len(X)
	if n == 0 {
		return nil, fmt.Errorf("cannot run PCA on an empty matrix")
	}
	d := len(X[0])

	data := mat.NewDense(n, d, nil)
	for i, row := range X {
		data.SetRow(i, row)
	}

	var pc stat.PC
	if ok := pc.PrincipalComponents(data, nil); !ok {
		return nil, fmt.Errorf("principal component decomposition failed")
	}

	vectors := pc.VectorsTo(nil)
	var projected mat.Dense
	projected.Mul(data, vectors)

	rotated := make([][]float64, n)
	for i := range rotated {
		row := make([]float64, d)
		mat.Row(row, i, &projected)
		rotated[i] = row
	}
	return rotated, nil
}

// Subsample draws n pixel rows with replacement.
func Subsample(X [][]float64, n int, rng *rand.Rand) [][]float64 {
	samples := make([][]float64, n)
	for i := range samples {
		samples[i] = X[rng.Intn(len(X))]
	}
	return samples
}
