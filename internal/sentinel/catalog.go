package sentinel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/landcover-lab/sentinel-kmeans-poc/internal/cache"
	"github.com/landcover-lab/sentinel-kmeans-poc/internal/properties"
	"github.com/landcover-lab/sentinel-kmeans-poc/internal/utils"
	"github.com/paulmach/orb"
)

// SceneDate is one Sentinel-2 acquisition day inside the searched time range.
type SceneDate struct {
	Date       time.Time `json:"date"`
	CloudCover float64   `json:"cloud_cover"`
}

type catalogResponse struct {
	Features []struct {
		ID         string `json:"id"`
		Properties struct {
			Datetime   string  `json:"datetime"`
			CloudCover float64 `json:"eo:cloud_cover"`
		} `json:"properties"`
	} `json:"features"`
}

// SearchSceneDates queries the Sentinel Hub catalog for Sentinel-2 L2A
// acquisitions intersecting the bounding box, keeping days at or below the
// given cloud cover percentage. Responses are cached on disk so repeated
// browsing of the same range does not hit the API again.
func SearchSceneDates(bound orb.Bound, from, to time.Time, maxCloudCover float64) ([]SceneDate, error) {
	catalogCache := cache.NewFileCache[[]SceneDate]("catalog")
	cacheKey := catalogCache.GenerateKey(
		bound.Min[0], bound.Min[1], bound.Max[0], bound.Max[1],
		from.Format("2006-01-02"), to.Format("2006-01-02"), maxCloudCover,
	)
	if dates, ok := catalogCache.Get(cacheKey); ok {
		return dates, nil
	}

	requestPayload := map[string]interface{}{
		"collections": []string{"sentinel-2-l2a"},
		"bbox":        []float64{bound.Min[0], bound.Min[1], bound.Max[0], bound.Max[1]},
		"datetime":    fmt.Sprintf("%s/%s", from.Format(time.RFC3339), to.Format(time.RFC3339)),
		"limit":       100,
		"fields": map[string]interface{}{
			"include": []string{"id", "properties.datetime", "properties.eo:cloud_cover"},
			"exclude": []string{"geometry"},
		},
	}
	requestBody, err := json.Marshal(requestPayload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal catalog payload: %v", err)
	}

	httpClient, err := newAPIClient(context.Background())
	if err != nil {
		return nil, err
	}

	response, err := httpClient.Post(properties.CatalogAPIURL(), "application/json", bytes.NewBuffer(requestBody))
	if err != nil {
		return nil, fmt.Errorf("catalog search failed: %v", err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog response: %v", err)
	}
	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog search returned status %d: %s", response.StatusCode, string(body))
	}

	var parsed catalogResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse catalog response: %v", err)
	}

	// Collapse acquisitions to one entry per day, keeping the clearest one.
	byDay := make(map[time.Time]float64)
	for _, feature := range parsed.Features {
		acquired, err := time.Parse(time.RFC3339, feature.Properties.Datetime)
		if err != nil {
			continue
		}
		if feature.Properties.CloudCover > maxCloudCover {
			continue
		}
		day := acquired.UTC().Truncate(24 * time.Hour)
		if existing, ok := byDay[day]; !ok || feature.Properties.CloudCover < existing {
			byDay[day] = feature.Properties.CloudCover
		}
	}

	var dates []SceneDate
	for _, day := range utils.GetSortedKeys(byDay, true) {
		dates = append(dates, SceneDate{Date: day, CloudCover: byDay[day]})
	}

	if err := catalogCache.Set(cacheKey, dates); err != nil {
		fmt.Printf("Warning: failed to cache catalog response: %v\n", err)
	}
	return dates, nil
}
