package boundary

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBoundary = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"area_id": "cauquenes"},
      "geometry": {
        "type": "Polygon",
        "coordinates": [[
          [-72.802, -36.320],
          [-72.030, -36.320],
          [-72.030, -35.653],
          [-72.802, -35.653],
          [-72.802, -36.320]
        ]]
      }
    }
  ]
}`

func writeBoundaryFile(t *testing.T, area, content string) {
	t.Helper()
	root := t.TempDir()
	t.Setenv("ROOT_PATH", root)
	dir := filepath.Join(root, "data", "boundaries")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, area+".geojson"), []byte(content), 0644))
}

func TestLoadMatchesAreaID(t *testing.T) {
	writeBoundaryFile(t, "cauquenes", testBoundary)

	b, err := Load("cauquenes")
	require.NoError(t, err)
	assert.Equal(t, "cauquenes", b.Area)

	bound := b.Bound()
	assert.InDelta(t, -72.802, bound.Min[0], 1e-9)
	assert.InDelta(t, -35.653, bound.Max[1], 1e-9)
}

func TestLoadMissingArea(t *testing.T) {
	t.Setenv("ROOT_PATH", t.TempDir())
	_, err := Load("nowhere")
	assert.Error(t, err)
}

func TestLoadRejectsNonPolygonOnlyFiles(t *testing.T) {
	writeBoundaryFile(t, "points", `{
	  "type": "FeatureCollection",
	  "features": [
	    {"type": "Feature", "properties": {}, "geometry": {"type": "Point", "coordinates": [0, 0]}}
	  ]
	}`)

	_, err := Load("points")
	assert.ErrorContains(t, err, "no polygon feature")
}

func TestCentroid(t *testing.T) {
	writeBoundaryFile(t, "cauquenes", testBoundary)

	b, err := Load("cauquenes")
	require.NoError(t, err)

	lat, lon, err := b.Centroid()
	require.NoError(t, err)
	assert.InDelta(t, -35.9865, lat, 1e-3)
	assert.InDelta(t, -72.416, lon, 1e-3)
}

func TestGeometryJSON(t *testing.T) {
	writeBoundaryFile(t, "cauquenes", testBoundary)

	b, err := Load("cauquenes")
	require.NoError(t, err)

	gjson, err := b.GeometryJSON()
	require.NoError(t, err)
	assert.Contains(t, gjson, `"Polygon"`)
	assert.Contains(t, gjson, "-72.802")
}

func TestListAreas(t *testing.T) {
	writeBoundaryFile(t, "cauquenes", testBoundary)

	areas, err := ListAreas()
	require.NoError(t, err)
	assert.Equal(t, []string{"cauquenes"}, areas)
}
