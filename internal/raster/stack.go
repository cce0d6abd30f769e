package raster

import "fmt"

// Image holds a raster in band-major layout: Bands[b][y*Cols+x].
type Image struct {
	Rows  int
	Cols  int
	Bands [][]float64
}

// NewImage allocates an empty image with the given shape.
func NewImage(rows, cols, bands int) *Image {
	img := &Image{Rows: rows, Cols: cols, Bands: make([][]float64, bands)}
	for b := range img.Bands {
		img.Bands[b] = make([]float64, rows*cols)
	}
	return img
}

// Stack concatenates the bands of two images covering the same cropped grid.
// The optical image comes first, mirroring the order the clustering matrix is
// built in.
func Stack(a, b *Image) (*Image, error) {
	if a.Rows != b.Rows || a.Cols != b.Cols {
		return nil, fmt.Errorf("cannot stack rasters of different shape: %dx%d vs %dx%d",
			a.Rows, a.Cols, b.Rows, b.Cols)
	}

	stacked := &Image{Rows: a.Rows, Cols: a.Cols}
	stacked.Bands = append(stacked.Bands, a.Bands...)
	stacked.Bands = append(stacked.Bands, b.Bands...)
	return stacked, nil
}

// PixelMatrix transposes the image to pixel-major layout, one row per pixel
// and one column per band. Row i corresponds to pixel (i/Cols, i%Cols).
func (img *Image) PixelMatrix() [][]float64 {
	numPixels := img.Rows * img.Cols
	matrix := make([][]float64, numPixels)
	for i := 0; i < numPixels; i++ {
		row := make([]float64, len(img.Bands))
		for b := range img.Bands {
			row[b] = img.Bands[b][i]
		}
		matrix[i] = row
	}
	return matrix
}
