package sentinel

import (
	"os"
	"testing"
	"time"

	"github.com/landcover-lab/sentinel-kmeans-poc/internal/boundary"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBoundary(area string) *boundary.Boundary {
	return &boundary.Boundary{
		Area: area,
		Feature: geojson.NewFeature(orb.Polygon{{
			{-72.802, -36.320}, {-72.030, -36.320}, {-72.030, -35.653}, {-72.802, -35.653}, {-72.802, -36.320},
		}}),
	}
}

func TestDownloadSceneSkipsExistingFiles(t *testing.T) {
	t.Setenv("ROOT_PATH", t.TempDir())
	// no Copernicus credentials are set, so any request attempt would error out

	date := time.Date(2017, 12, 10, 0, 0, 0, 0, time.UTC)
	paths := ScenePathsFor("cauquenes", date, 20)
	require.NoError(t, os.MkdirAll(ImageDir("cauquenes"), 0755))
	for _, path := range []string{paths.S2, paths.S1, paths.TrueColor} {
		require.NoError(t, os.WriteFile(path, []byte("existing"), 0644))
	}

	got, err := DownloadScene(testBoundary("cauquenes"), date, 20)
	require.NoError(t, err)
	assert.Equal(t, paths, got)

	for _, path := range []string{paths.S2, paths.S1, paths.TrueColor} {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "existing", string(data))
	}
}

func TestListDownloadedScenes(t *testing.T) {
	t.Setenv("ROOT_PATH", t.TempDir())

	date := time.Date(2017, 12, 10, 0, 0, 0, 0, time.UTC)
	paths := ScenePathsFor("cauquenes", date, 20)
	require.NoError(t, os.MkdirAll(ImageDir("cauquenes"), 0755))
	require.NoError(t, os.WriteFile(paths.S2, []byte("s2"), 0644))

	// an incomplete scene (missing S1) is not listed
	scenes, err := ListDownloadedScenes("cauquenes", 20)
	require.NoError(t, err)
	assert.Empty(t, scenes)

	require.NoError(t, os.WriteFile(paths.S1, []byte("s1"), 0644))
	scenes, err = ListDownloadedScenes("cauquenes", 20)
	require.NoError(t, err)
	require.Len(t, scenes, 1)
	assert.Equal(t, paths, scenes[date])

	// other resolutions do not leak in
	scenes, err = ListDownloadedScenes("cauquenes", 40)
	require.NoError(t, err)
	assert.Empty(t, scenes)
}
