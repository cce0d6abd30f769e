package clustering

import (
	"bufio"
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/landcover-lab/sentinel-kmeans-poc/internal/raster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptClusterCountRejectsGarbage(t *testing.T) {
	var out bytes.Buffer
	in := bufio.NewReader(strings.NewReader("abc\n1\n5\n"))

	k, err := promptClusterCount(in, &out)
	require.NoError(t, err)
	assert.Equal(t, 5, k)
	assert.Contains(t, out.String(), "at least 2")
}

func TestPromptClusterCountEOF(t *testing.T) {
	var out bytes.Buffer
	in := bufio.NewReader(strings.NewReader(""))

	_, err := promptClusterCount(in, &out)
	assert.Error(t, err)
}

func TestOutputName(t *testing.T) {
	assert.Equal(t, "Sentinel_40m_kmeans_8k.tif", OutputName(40, 8, false, false))
	assert.Equal(t, "Sentinel_20m_kmeans_4k_bnorm.tif", OutputName(20, 4, true, false))
	assert.Equal(t, "Sentinel_20m_kmeans_4k_pca.tif", OutputName(20, 4, false, true))
	assert.Equal(t, "Sentinel_20m_kmeans_4k_bnorm_pca.tif", OutputName(20, 4, true, true))
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{}.withDefaults()
	assert.Equal(t, 10000, opts.NumSamples)
	assert.Equal(t, 2, opts.SweepMin)
	assert.Equal(t, 32, opts.SweepMax)
	assert.Equal(t, 2, opts.SweepStep)
	assert.NotZero(t, opts.Seed)
}

// twoFieldImage builds a raster with two clearly separated spectral groups,
// split across the left and right halves of the grid.
func twoFieldImage(rows, cols, bands int) *raster.Image {
	img := raster.NewImage(rows, cols, bands)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			i := y*cols + x
			value := 0.1
			if x >= cols/2 {
				value = 0.9
			}
			for b := 0; b < bands; b++ {
				// small deterministic jitter keeps the samples distinct
				img.Bands[b][i] = value + 0.001*float64(b) + 0.0005*float64(i%7)
			}
		}
	}
	return img
}

func TestRunLabelsEveryPixel(t *testing.T) {
	img := twoFieldImage(10, 10, 4)

	opts := Options{
		NumSamples:    60,
		Seed:          42,
		SweepMin:      2,
		SweepMax:      4,
		SweepStep:     2,
		SweepWorkers:  2,
		ScoresCSVPath: filepath.Join(t.TempDir(), "scores.csv"),
	}

	var out bytes.Buffer
	result, err := Run(img, opts, strings.NewReader("2\n"), &out)
	require.NoError(t, err)

	assert.Equal(t, 2, result.ChosenK)
	assert.Equal(t, 10, result.Rows)
	assert.Equal(t, 10, result.Cols)
	require.Len(t, result.Labels, 100)
	for _, label := range result.Labels {
		assert.GreaterOrEqual(t, label, int32(0))
		assert.Less(t, label, int32(2))
	}

	// both halves of the field must not share a class
	assert.NotEqual(t, result.Labels[0], result.Labels[9])

	require.Len(t, result.SweepScores, 2)
	assert.Equal(t, 2, result.SweepScores[0].K)
	assert.Equal(t, 4, result.SweepScores[1].K)
	assert.Contains(t, out.String(), "For n_clusters = 2")
}

func TestRunEmptyRaster(t *testing.T) {
	img := &raster.Image{}
	var out bytes.Buffer
	_, err := Run(img, Options{}, strings.NewReader("2\n"), &out)
	assert.Error(t, err)
}
