package delivery

import (
	"time"

	"github.com/landcover-lab/sentinel-kmeans-poc/internal/boundary"
	"github.com/landcover-lab/sentinel-kmeans-poc/internal/sentinel"
)

// DownloadScene fetches the Sentinel-2 and Sentinel-1 rasters plus a
// true-color preview for the study area on the given date.
func DownloadScene(area string, date time.Time, resolution int) (sentinel.ScenePaths, error) {
	b, err := boundary.Load(area)
	if err != nil {
		return sentinel.ScenePaths{}, err
	}
	return sentinel.DownloadScene(b, date, resolution)
}

// ListSceneDates returns the acquisition days with acceptable cloud cover in
// the given range, for the researcher to choose a scene date from.
func ListSceneDates(area string, from, to time.Time, maxCloudCover float64) ([]sentinel.SceneDate, error) {
	b, err := boundary.Load(area)
	if err != nil {
		return nil, err
	}
	return sentinel.SearchSceneDates(b.Bound(), from, to, maxCloudCover)
}
