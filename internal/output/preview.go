package output

import (
	"fmt"
	"math"

	"github.com/fogleman/gg"
	"github.com/landcover-lab/sentinel-kmeans-poc/internal/properties"
	"github.com/landcover-lab/sentinel-kmeans-poc/internal/raster"
)

// RenderRGB draws three bands of a stacked raster as an RGB preview PNG.
// Band values are multiplied by factor and clipped to 1 before being mapped
// to 8-bit channels, mirroring the study's plot_image helper.
func RenderRGB(img *raster.Image, bands [3]int, factor float64, outPath string) error {
	for _, b := range bands {
		if b < 0 || b >= len(img.Bands) {
			return fmt.Errorf("band index %d out of range, raster has %d bands", b, len(img.Bands))
		}
	}
	if factor <= 0 {
		factor = 1
	}

	dc := gg.NewContext(img.Cols, img.Rows)
	for y := 0; y < img.Rows; y++ {
		for x := 0; x < img.Cols; x++ {
			i := y*img.Cols + x
			r := math.Min(img.Bands[bands[0]][i]*factor, 1)
			g := math.Min(img.Bands[bands[1]][i]*factor, 1)
			b := math.Min(img.Bands[bands[2]][i]*factor, 1)
			dc.SetRGB(r, g, b)
			dc.SetPixel(x, y)
		}
	}

	if err := dc.SavePNG(outPath); err != nil {
		return fmt.Errorf("failed to save RGB preview: %v", err)
	}
	return nil
}

// RenderClusterMap paints each labeled pixel with its class color and appends
// a legend strip whose swatch widths are proportional to class frequency.
func RenderClusterMap(labels []int32, rows, cols, k int, outPath string) error {
	if len(labels) != rows*cols {
		return fmt.Errorf("label count %d does not match image size %dx%d", len(labels), rows, cols)
	}

	const legendHeight = 20
	palette := properties.ClusterPalette

	counts := make([]int, k)
	dc := gg.NewContext(cols, rows+legendHeight)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			label := int(labels[y*cols+x])
			if label < 0 || label >= k {
				dc.SetRGB(0, 0, 0)
				dc.SetPixel(x, y)
				continue
			}
			counts[label]++
			c := palette[label%len(palette)]
			dc.SetRGB255(int(c.R), int(c.G), int(c.B))
			dc.SetPixel(x, y)
		}
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	if total == 0 {
		total = 1
	}

	xOffset := 0.0
	for label, n := range counts {
		width := float64(cols) * float64(n) / float64(total)
		c := palette[label%len(palette)]
		dc.SetRGB255(int(c.R), int(c.G), int(c.B))
		dc.DrawRectangle(xOffset, float64(rows), width, legendHeight)
		dc.Fill()
		xOffset += width
	}

	if err := dc.SavePNG(outPath); err != nil {
		return fmt.Errorf("failed to save cluster map: %v", err)
	}
	return nil
}
