package clustering

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gammazero/workerpool"
	"github.com/gocarina/gocsv"
	"github.com/landcover-lab/sentinel-kmeans-poc/internal/raster"
	"github.com/mpraski/clusters"
	"github.com/schollz/progressbar/v3"
)

const kmeansIterations = 1000

// Options control the clustering pipeline. Zero values fall back to the
// defaults of the original study: 10000 samples and a sweep over
// k = 2, 4, ..., 32.
type Options struct {
	NumSamples     int
	BrightnessNorm bool
	PCA            bool
	Seed           int64
	SweepMin       int
	SweepMax       int
	SweepStep      int
	SweepWorkers   int
	ScoresCSVPath  string
}

func (o Options) withDefaults() Options {
	if o.NumSamples <= 0 {
		o.NumSamples = 10000
	}
	if o.SweepMin < 2 {
		o.SweepMin = 2
	}
	if o.SweepMax < o.SweepMin {
		o.SweepMax = 32
	}
	if o.SweepStep <= 0 {
		o.SweepStep = 2
	}
	if o.SweepWorkers <= 0 {
		o.SweepWorkers = 4
	}
	if o.Seed == 0 {
		o.Seed = time.Now().UnixNano()
	}
	return o
}

// SweepScore is the advisory silhouette score of one candidate cluster count.
type SweepScore struct {
	K          int     `csv:"k"`
	Silhouette float64 `csv:"silhouette"`
}

// Result is the outcome of one clustering run.
type Result struct {
	Labels      []int32
	Rows        int
	Cols        int
	ChosenK     int
	SweepScores []SweepScore
	FinalScore  float64
}

// Run is the heart of the tool. It reshapes the stacked raster into a
// pixel-by-band matrix, optionally brightness-normalizes and PCA-rotates it,
// subsamples pixels, sweeps candidate cluster counts scoring each by
// silhouette, asks the researcher for the final count, refits and predicts a
// label for every pixel of the image.
//
// The sweep is advisory only; the decision stays with the human reading the
// scores. in and out carry that conversation, so tests can script it.
func Run(img *raster.Image, opts Options, in io.Reader, out io.Writer) (*Result, error) {
	opts = opts.withDefaults()

	X := img.PixelMatrix()
	if len(X) == 0 {
		return nil, fmt.Errorf("raster has no pixels")
	}

	if opts.BrightnessNorm {
		BrightnessNormalize(X)
	}
	if opts.PCA {
		var err error
		if X, err = PCARotate(X); err != nil {
			return nil, err
		}
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	samples := Subsample(X, opts.NumSamples, rng)

	scores, err := sweep(samples, opts)
	if err != nil {
		return nil, err
	}
	for _, score := range scores {
		fmt.Fprintf(out, "For n_clusters = %d the average silhouette score is %.4f\n", score.K, score.Silhouette)
	}
	if opts.ScoresCSVPath != "" {
		if err := writeScoresCSV(opts.ScoresCSVPath, scores); err != nil {
			fmt.Fprintf(out, "Warning: failed to write sweep scores: %v\n", err)
		}
	}

	chosenK, err := promptClusterCount(bufio.NewReader(in), out)
	if err != nil {
		return nil, err
	}

	clusterer, labels, err := fitKMeans(samples, chosenK)
	if err != nil {
		return nil, err
	}
	finalScore := Silhouette(samples, labels)
	fmt.Fprintf(out, "Final fit with %d clusters, average silhouette score %.4f\n", chosenK, finalScore)

	predicted := make([]int32, len(X))
	for i, pixel := range X {
		// the clusterer numbers classes from 1; the raster is 0-based
		predicted[i] = int32(clusterer.Predict(pixel) - 1)
	}

	return &Result{
		Labels:      predicted,
		Rows:        img.Rows,
		Cols:        img.Cols,
		ChosenK:     chosenK,
		SweepScores: scores,
		FinalScore:  finalScore,
	}, nil
}

func fitKMeans(samples [][]float64, k int) (clusters.HardClusterer, []int, error) {
	clusterer, err := clusters.KMeans(kmeansIterations, k, clusters.EuclideanDistance)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create k-means clusterer: %v", err)
	}
	if err := clusterer.Learn(samples); err != nil {
		return nil, nil, fmt.Errorf("failed to fit %d clusters: %v", k, err)
	}

	labels := make([]int, len(samples))
	for i, guess := range clusterer.Guesses() {
		labels[i] = guess - 1
	}
	return clusterer, labels, nil
}

// sweep fits and scores every candidate cluster count on a bounded worker
// pool and returns the scores in ascending k order.
func sweep(samples [][]float64, opts Options) ([]SweepScore, error) {
	candidates := 0
	for k := opts.SweepMin; k <= opts.SweepMax; k += opts.SweepStep {
		candidates++
	}

	var (
		mu          sync.Mutex
		firstErr    error
		scores      = make(map[int]float64, candidates)
		progressBar = progressbar.Default(int64(candidates), "Scoring cluster counts")
	)

	wp := workerpool.New(opts.SweepWorkers)
	for k := opts.SweepMin; k <= opts.SweepMax; k += opts.SweepStep {
		k := k
		wp.Submit(func() {
			_, labels, err := fitKMeans(samples, k)
			var score float64
			if err == nil {
				score = Silhouette(samples, labels)
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			scores[k] = score
			progressBar.Add(1)
		})
	}
	wp.StopWait()

	if firstErr != nil {
		return nil, firstErr
	}

	ks := make([]int, 0, len(scores))
	for k := range scores {
		ks = append(ks, k)
	}
	sort.Ints(ks)

	sorted := make([]SweepScore, 0, len(ks))
	for _, k := range ks {
		sorted = append(sorted, SweepScore{K: k, Silhouette: scores[k]})
	}
	return sorted, nil
}

func writeScoresCSV(path string, scores []SweepScore) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return gocsv.MarshalFile(&scores, file)
}

// promptClusterCount pauses the pipeline until the researcher types a valid
// cluster count. The sweep printed above the prompt is their only guidance.
func promptClusterCount(in *bufio.Reader, out io.Writer) (int, error) {
	for {
		fmt.Fprint(out, "Please enter your selected number of clusters: ")
		line, err := in.ReadString('\n')
		text := strings.TrimSpace(line)

		if text != "" {
			k, convErr := strconv.Atoi(text)
			if convErr == nil && k >= 2 {
				return k, nil
			}
			fmt.Fprintln(out, "The cluster count must be an integer of at least 2.")
		}

		if err != nil {
			return 0, fmt.Errorf("failed to read cluster count: %v", err)
		}
	}
}

// OutputName reproduces the study's naming scheme for labeled rasters.
func OutputName(resolution, k int, bnorm, pca bool) string {
	name := fmt.Sprintf("Sentinel_%dm_kmeans_%dk", resolution, k)
	if bnorm {
		name += "_bnorm"
	}
	if pca {
		name += "_pca"
	}
	return name + ".tif"
}
