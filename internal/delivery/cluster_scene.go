package delivery

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/airbusgeo/godal"
	"github.com/landcover-lab/sentinel-kmeans-poc/internal/boundary"
	"github.com/landcover-lab/sentinel-kmeans-poc/internal/clustering"
	"github.com/landcover-lab/sentinel-kmeans-poc/internal/output"
	"github.com/landcover-lab/sentinel-kmeans-poc/internal/properties"
	"github.com/landcover-lab/sentinel-kmeans-poc/internal/raster"
	"github.com/landcover-lab/sentinel-kmeans-poc/internal/sentinel"
)

func resultDir() string {
	return properties.RootPath() + "/data/result"
}

// cropScene masks both sensor rasters to the boundary and reads them into a
// single stacked image. The cropped Sentinel-2 dataset is returned as the
// spatial reference for the labeled output.
func cropScene(paths sentinel.ScenePaths, b *boundary.Boundary, date time.Time, resolution int) (*raster.Image, *godal.Dataset, error) {
	day := date.Format("2006-01-02")
	imageDir := sentinel.ImageDir(b.Area)

	s2, err := raster.Open(paths.S2)
	if err != nil {
		return nil, nil, err
	}
	defer s2.Close()
	s1, err := raster.Open(paths.S1)
	if err != nil {
		return nil, nil, err
	}
	defer s1.Close()

	s2Crop, err := raster.CropToBoundary(s2, b, fmt.Sprintf("%s/crop_S2_%s_%dm.tif", imageDir, day, resolution))
	if err != nil {
		return nil, nil, err
	}
	s1Crop, err := raster.CropToBoundary(s1, b, fmt.Sprintf("%s/crop_S1_%s_%dm.tif", imageDir, day, resolution))
	if err != nil {
		s2Crop.Close()
		return nil, nil, err
	}
	defer s1Crop.Close()

	s2Img, err := raster.ReadBands(s2Crop)
	if err != nil {
		s2Crop.Close()
		return nil, nil, err
	}
	s1Img, err := raster.ReadBands(s1Crop)
	if err != nil {
		s2Crop.Close()
		return nil, nil, err
	}

	stacked, err := raster.Stack(s2Img, s1Img)
	if err != nil {
		s2Crop.Close()
		return nil, nil, err
	}
	return stacked, s2Crop, nil
}

// ClusterScene runs the full land-cover pipeline on a downloaded scene: crop
// both sensors to the boundary, stack their bands, cluster the pixels with
// the interactive K-means pipeline and write the labeled GeoTIFF plus a
// colored cluster map. Returns the paths of both outputs.
func ClusterScene(area string, date time.Time, resolution int, opts clustering.Options, in io.Reader, out io.Writer) (string, string, error) {
	b, err := boundary.Load(area)
	if err != nil {
		return "", "", err
	}

	paths := sentinel.ScenePathsFor(area, date, resolution)
	if !paths.Downloaded() {
		return "", "", fmt.Errorf("scene %s at %dm for area %s has not been downloaded", date.Format("2006-01-02"), resolution, area)
	}

	stacked, ref, err := cropScene(paths, b, date, resolution)
	if err != nil {
		return "", "", err
	}
	defer ref.Close()

	if err := os.MkdirAll(resultDir(), os.ModePerm); err != nil {
		return "", "", fmt.Errorf("failed to create result directory: %v", err)
	}
	opts.ScoresCSVPath = fmt.Sprintf("%s/Sentinel_%dm_silhouette_%s.csv", resultDir(), resolution, date.Format("2006-01-02"))

	result, err := clustering.Run(stacked, opts, in, out)
	if err != nil {
		return "", "", err
	}

	tifPath := fmt.Sprintf("%s/%s", resultDir(), clustering.OutputName(resolution, result.ChosenK, opts.BrightnessNorm, opts.PCA))
	if err := raster.WriteLabels(tifPath, result.Labels, ref); err != nil {
		return "", "", err
	}

	pngPath := strings.TrimSuffix(tifPath, ".tif") + ".png"
	if err := output.RenderClusterMap(result.Labels, result.Rows, result.Cols, result.ChosenK, pngPath); err != nil {
		return "", "", err
	}

	return tifPath, pngPath, nil
}

// PreviewScene renders a false-color PNG of the cropped, stacked scene. The
// default band triple is NIR/red/green (B08, B04, B03) of the optical stack.
func PreviewScene(area string, date time.Time, resolution int, bands [3]int, factor float64) (string, error) {
	b, err := boundary.Load(area)
	if err != nil {
		return "", err
	}

	paths := sentinel.ScenePathsFor(area, date, resolution)
	if !paths.Downloaded() {
		return "", fmt.Errorf("scene %s at %dm for area %s has not been downloaded", date.Format("2006-01-02"), resolution, area)
	}

	stacked, ref, err := cropScene(paths, b, date, resolution)
	if err != nil {
		return "", err
	}
	ref.Close()

	if err := os.MkdirAll(resultDir(), os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create result directory: %v", err)
	}

	pngPath := fmt.Sprintf("%s/preview_%s_%s_%dm.png", resultDir(), area, date.Format("2006-01-02"), resolution)
	if err := output.RenderRGB(stacked, bands, factor, pngPath); err != nil {
		return "", err
	}
	return pngPath, nil
}
