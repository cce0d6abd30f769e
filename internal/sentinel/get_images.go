package sentinel

import (
	"fmt"
	"os"
	"time"

	"github.com/landcover-lab/sentinel-kmeans-poc/internal/boundary"
	"github.com/landcover-lab/sentinel-kmeans-poc/internal/properties"
	"github.com/schollz/progressbar/v3"
)

// ScenePaths locates the files of one downloaded scene on disk.
type ScenePaths struct {
	S2        string
	S1        string
	TrueColor string
}

func ImageDir(area string) string {
	return fmt.Sprintf("%s/data/images/%s", properties.RootPath(), area)
}

// ScenePathsFor returns the canonical file names for a scene, whether or not
// it has been downloaded yet.
func ScenePathsFor(area string, date time.Time, resolution int) ScenePaths {
	day := date.Format("2006-01-02")
	dir := ImageDir(area)
	return ScenePaths{
		S2:        fmt.Sprintf("%s/S2_%s_%dm.tif", dir, day, resolution),
		S1:        fmt.Sprintf("%s/S1_%s_%dm.tif", dir, day, resolution),
		TrueColor: fmt.Sprintf("%s/TC_%s_%dm.png", dir, day, resolution),
	}
}

// Downloaded reports whether both band rasters of the scene exist on disk.
func (p ScenePaths) Downloaded() bool {
	if _, err := os.Stat(p.S2); err != nil {
		return false
	}
	if _, err := os.Stat(p.S1); err != nil {
		return false
	}
	return true
}

// DownloadScene fetches the Sentinel-2 bands, Sentinel-1 bands and a
// true-color preview for the boundary on the given date, writing GeoTIFFs
// under data/images/<area>/. Files already on disk are kept.
func DownloadScene(b *boundary.Boundary, date time.Time, resolution int) (ScenePaths, error) {
	paths := ScenePathsFor(b.Area, date, resolution)

	if err := os.MkdirAll(ImageDir(b.Area), os.ModePerm); err != nil {
		return paths, fmt.Errorf("failed to create images directory: %v", err)
	}

	geometryJSON, err := b.GeometryJSON()
	if err != nil {
		return paths, err
	}
	bound := b.Bound()

	progressBar := progressbar.Default(3, "Downloading scene")

	type fetch struct {
		path    string
		request func() ([]byte, error)
	}
	fetches := []fetch{
		{paths.S2, func() ([]byte, error) {
			return RequestS2Bands(geometryJSON, bound, date, float64(resolution))
		}},
		{paths.S1, func() ([]byte, error) {
			return RequestS1Bands(geometryJSON, bound, date, float64(resolution), 5)
		}},
		{paths.TrueColor, func() ([]byte, error) {
			return RequestTrueColor(geometryJSON, bound, date, float64(resolution))
		}},
	}

	for _, f := range fetches {
		if _, err := os.Stat(f.path); err == nil {
			progressBar.Add(1)
			continue
		}
		content, err := f.request()
		if err != nil {
			return paths, err
		}
		if err := os.WriteFile(f.path, content, 0644); err != nil {
			return paths, fmt.Errorf("failed to write %s: %v", f.path, err)
		}
		progressBar.Add(1)
	}

	return paths, nil
}

// ListDownloadedScenes scans the area's image folder and returns the scene
// paths keyed by acquisition date.
func ListDownloadedScenes(area string, resolution int) (map[time.Time]ScenePaths, error) {
	dir := ImageDir(area)
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read images folder: %w", err)
	}

	scenes := make(map[time.Time]ScenePaths)
	for _, file := range files {
		var day string
		var res int
		if n, _ := fmt.Sscanf(file.Name(), "S2_%10s_%dm.tif", &day, &res); n != 2 || res != resolution {
			continue
		}
		date, err := time.Parse("2006-01-02", day)
		if err != nil {
			continue
		}
		paths := ScenePathsFor(area, date, resolution)
		if paths.Downloaded() {
			scenes[date] = paths
		}
	}
	return scenes, nil
}
