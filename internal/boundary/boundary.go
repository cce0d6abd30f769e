package boundary

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/landcover-lab/sentinel-kmeans-poc/internal/properties"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// Boundary is a study-area polygon loaded from data/boundaries/<area>.geojson.
type Boundary struct {
	Area    string
	Feature *geojson.Feature
}

func geojsonPath(area string) string {
	return fmt.Sprintf("%s/data/boundaries/%s.geojson", properties.RootPath(), area)
}

// Load reads the boundary file for the given area and returns the feature
// whose "area_id" property matches it, falling back to the first polygon
// feature when no ids are present.
func Load(area string) (*Boundary, error) {
	data, err := os.ReadFile(geojsonPath(area))
	if err != nil {
		return nil, fmt.Errorf("failed to read boundary file for area %s: %w", area, err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse boundary GeoJSON for area %s: %w", area, err)
	}

	var fallback *geojson.Feature
	for _, feature := range fc.Features {
		switch feature.Geometry.(type) {
		case orb.Polygon, orb.MultiPolygon:
		default:
			continue
		}
		if fallback == nil {
			fallback = feature
		}
		if id, ok := feature.Properties["area_id"].(string); ok && id == area {
			return &Boundary{Area: area, Feature: feature}, nil
		}
	}

	if fallback == nil {
		return nil, fmt.Errorf("no polygon feature found for area %s", area)
	}
	return &Boundary{Area: area, Feature: fallback}, nil
}

// Bound returns the WGS84 bounding box of the boundary polygon.
func (b *Boundary) Bound() orb.Bound {
	return b.Feature.Geometry.Bound()
}

// Centroid returns the area-weighted centroid as (latitude, longitude).
func (b *Boundary) Centroid() (float64, float64, error) {
	centroid, area := planar.CentroidArea(b.Feature.Geometry)
	if area <= 0 {
		return 0, 0, fmt.Errorf("degenerate boundary geometry for area %s", b.Area)
	}
	return centroid.Y(), centroid.X(), nil
}

// GeometryJSON returns the bare geometry as a GeoJSON string, which is what
// the Process API expects in its bounds object.
func (b *Boundary) GeometryJSON() (string, error) {
	data, err := geojson.NewGeometry(b.Feature.Geometry).MarshalJSON()
	if err != nil {
		return "", fmt.Errorf("failed to marshal boundary geometry: %w", err)
	}
	return string(data), nil
}

// ListAreas returns the area names with a boundary file on disk.
func ListAreas() ([]string, error) {
	dir := fmt.Sprintf("%s/data/boundaries", properties.RootPath())
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read boundaries folder: %w", err)
	}

	var areas []string
	for _, file := range files {
		if strings.HasSuffix(file.Name(), ".geojson") {
			areas = append(areas, strings.TrimSuffix(filepath.Base(file.Name()), ".geojson"))
		}
	}
	return areas, nil
}
