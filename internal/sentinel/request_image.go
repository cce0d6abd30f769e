package sentinel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/landcover-lab/sentinel-kmeans-poc/internal/properties"
	"github.com/paulmach/orb"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	// The Process API rejects outputs larger than 2500 pixels per axis.
	maxAxisPixels  = 2500
	requestRetries = 10
)

var retryDelay = 5 * time.Second

// S2Bands are the Sentinel-2 L2A bands stacked into the clustering matrix,
// in request order.
var S2Bands = []string{"B02", "B03", "B04", "B05", "B06", "B08", "B11", "B12"}

// S1Bands are the Sentinel-1 IW GRD polarizations appended after the optical
// bands.
var S1Bands = []string{"VV", "VH"}

func calculatePixels(distance float64, resolution float64) int {
	pixels := distance * (111_000.0 / resolution)
	if pixels < 1 {
		return 1
	}
	return int(pixels)
}

// sceneDimensions derives the request width and height from the boundary
// bounds at the given resolution in meters, clamped to the service limit.
func sceneDimensions(bound orb.Bound, resolution float64) (int, int) {
	widthPixels := calculatePixels(bound.Max[0]-bound.Min[0], resolution)
	heightPixels := calculatePixels(bound.Max[1]-bound.Min[1], resolution)
	if widthPixels > maxAxisPixels {
		widthPixels = maxAxisPixels
	}
	if heightPixels > maxAxisPixels {
		heightPixels = maxAxisPixels
	}
	return widthPixels, heightPixels
}

func bandsEvalscript(bands []string, sampleType string) string {
	quoted := make([]string, len(bands))
	samples := make([]string, len(bands))
	for i, band := range bands {
		quoted[i] = fmt.Sprintf("%q", band)
		samples[i] = "sample." + band
	}

	return fmt.Sprintf(`
    //VERSION=3
    function setup() {
      return {
        input: [%s],
        output: {
          id: "default",
          bands: %d,
          sampleType: SampleType.%s,
        },
      }
    }

    function evaluatePixel(sample) {
      return [%s];
    }
  `, strings.Join(quoted, ", "), len(bands), sampleType, strings.Join(samples, ", "))
}

func trueColorEvalscript() string {
	return `
    //VERSION=3
    function setup() {
      return {
        input: ["B02", "B03", "B04"],
        output: { id: "default", bands: 3, sampleType: SampleType.AUTO },
      }
    }

    function evaluatePixel(sample) {
      return [2.5 * sample.B04, 2.5 * sample.B03, 2.5 * sample.B02];
    }
  `
}

type processRequest struct {
	geometryJSON string
	collection   string
	evalscript   string
	format       string
	width        int
	height       int
	from         time.Time
	to           time.Time
}

func buildProcessPayload(req processRequest) (map[string]interface{}, error) {
	var geojsonMap map[string]interface{}
	if err := json.Unmarshal([]byte(req.geometryJSON), &geojsonMap); err != nil {
		return nil, fmt.Errorf("failed to parse boundary GeoJSON: %w", err)
	}

	return map[string]interface{}{
		"input": map[string]interface{}{
			"bounds": map[string]interface{}{
				"geometry": geojsonMap,
			},
			"data": []map[string]interface{}{
				{
					"dataFilter": map[string]interface{}{
						"timeRange": map[string]string{
							"from": req.from.Format(time.RFC3339),
							"to":   req.to.Format(time.RFC3339),
						},
					},
					"type": req.collection,
				},
			},
		},
		"output": map[string]interface{}{
			"width":  req.width,
			"height": req.height,
			"responses": []map[string]interface{}{
				{
					"identifier": "default",
					"format": map[string]string{
						"type": req.format,
					},
				},
			},
		},
		"evalscript": req.evalscript,
		"mosaicking": "mostRecent",
	}, nil
}

func newAPIClient(ctx context.Context) (*http.Client, error) {
	clientID := properties.CopernicusClientID()
	clientSecret := properties.CopernicusClientSecret()
	tokenURL := properties.CopernicusTokenURL()

	if clientID == "" || clientSecret == "" || tokenURL == "" {
		return nil, fmt.Errorf("missing required environment variables: COPERNICUS_CLIENT_ID, COPERNICUS_CLIENT_SECRET, or COPERNICUS_TOKEN_URL")
	}

	config := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
	}
	return config.Client(ctx), nil
}

func requestImage(req processRequest) ([]byte, error) {
	payload, err := buildProcessPayload(req)
	if err != nil {
		return nil, err
	}
	requestBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %v", err)
	}

	httpClient, err := newAPIClient(context.Background())
	if err != nil {
		return nil, err
	}

	url := properties.ProcessAPIURL()

	var response *http.Response
	var lastFailure string
	for attempt := 1; attempt <= requestRetries; attempt++ {
		response, err = httpClient.Post(url, "application/json", bytes.NewBuffer(requestBody))
		if err == nil && response.StatusCode == http.StatusOK {
			break
		}

		if response != nil {
			body, _ := io.ReadAll(response.Body)
			bodyStr := string(body)
			response.Body.Close()
			lastFailure = fmt.Sprintf("status %d: %s", response.StatusCode, bodyStr)
			response = nil
			if strings.Contains(bodyStr, "403") {
				return nil, fmt.Errorf("unauthorized access, check your client ID and secret")
			}
			fmt.Printf("Attempt %d failed: %s\n", attempt, bodyStr)
		} else {
			lastFailure = err.Error()
			fmt.Printf("Attempt %d failed: %v\n", attempt, err)
		}

		time.Sleep(retryDelay)
	}

	if response == nil {
		return nil, fmt.Errorf("failed to request image after %d attempts: %s", requestRetries, lastFailure)
	}
	defer response.Body.Close()

	responseContent, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %v", err)
	}
	return responseContent, nil
}

func dayRange(day time.Time) (time.Time, time.Time) {
	start := day.Truncate(24 * time.Hour)
	return start, start.Add(time.Hour*23 + time.Minute*59 + time.Second*59)
}

// RequestS2Bands fetches the raw Sentinel-2 L2A bands for the boundary on the
// given day as a FLOAT32 GeoTIFF.
func RequestS2Bands(geometryJSON string, bound orb.Bound, day time.Time, resolution float64) ([]byte, error) {
	width, height := sceneDimensions(bound, resolution)
	from, to := dayRange(day)
	return requestImage(processRequest{
		geometryJSON: geometryJSON,
		collection:   "sentinel-2-l2a",
		evalscript:   bandsEvalscript(S2Bands, "FLOAT32"),
		format:       "image/tiff",
		width:        width,
		height:       height,
		from:         from,
		to:           to,
	})
}

// RequestS1Bands fetches the Sentinel-1 IW VV/VH backscatter for the boundary
// over the given day as a FLOAT32 GeoTIFF. Radar acquisitions rarely fall on
// the optical date, so the filter window is widened by windowDays on each side.
func RequestS1Bands(geometryJSON string, bound orb.Bound, day time.Time, resolution float64, windowDays int) ([]byte, error) {
	width, height := sceneDimensions(bound, resolution)
	from, to := dayRange(day)
	from = from.AddDate(0, 0, -windowDays)
	to = to.AddDate(0, 0, windowDays)
	return requestImage(processRequest{
		geometryJSON: geometryJSON,
		collection:   "sentinel-1-grd",
		evalscript:   bandsEvalscript(S1Bands, "FLOAT32"),
		format:       "image/tiff",
		width:        width,
		height:       height,
		from:         from,
		to:           to,
	})
}

// RequestTrueColor fetches an 8-bit RGB rendering of the scene for visual
// date selection.
func RequestTrueColor(geometryJSON string, bound orb.Bound, day time.Time, resolution float64) ([]byte, error) {
	width, height := sceneDimensions(bound, resolution)
	from, to := dayRange(day)
	return requestImage(processRequest{
		geometryJSON: geometryJSON,
		collection:   "sentinel-2-l2a",
		evalscript:   trueColorEvalscript(),
		format:       "image/png",
		width:        width,
		height:       height,
		from:         from,
		to:           to,
	})
}
