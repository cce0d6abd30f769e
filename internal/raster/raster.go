package raster

import (
	"fmt"
	"os"

	"github.com/airbusgeo/godal"
	"github.com/landcover-lab/sentinel-kmeans-poc/internal/boundary"
)

// Open opens a GeoTIFF, downgrading GDAL warnings to non-errors.
func Open(path string) (*godal.Dataset, error) {
	ds, err := godal.Open(path, godal.ErrLogger(func(ec godal.ErrorCategory, code int, msg string) error {
		if ec == godal.CE_Warning {
			return nil
		}
		return fmt.Errorf("gdal error %d: %s", code, msg)
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return ds, nil
}

// CropToBoundary masks the raster to the boundary polygon and crops the
// extent to it, writing the result to dstPath. The cropped dataset keeps the
// source projection with an updated geotransform and dimensions.
func CropToBoundary(src *godal.Dataset, b *boundary.Boundary, dstPath string) (*godal.Dataset, error) {
	geometryJSON, err := b.GeometryJSON()
	if err != nil {
		return nil, err
	}

	// gdalwarp takes the cutline as a datasource, so stage the polygon in a
	// temporary GeoJSON file.
	cutlineFile, err := os.CreateTemp("", "cutline-*.geojson")
	if err != nil {
		return nil, fmt.Errorf("failed to create cutline file: %v", err)
	}
	defer os.Remove(cutlineFile.Name())
	if _, err := cutlineFile.WriteString(geometryJSON); err != nil {
		cutlineFile.Close()
		return nil, fmt.Errorf("failed to write cutline file: %v", err)
	}
	cutlineFile.Close()

	switches := []string{
		"-of", "GTiff",
		"-cutline", cutlineFile.Name(),
		"-crop_to_cutline",
		"-dstnodata", "0",
	}
	cropped, err := godal.Warp(dstPath, []*godal.Dataset{src}, switches)
	if err != nil {
		return nil, fmt.Errorf("failed to crop raster to boundary: %w", err)
	}
	return cropped, nil
}

// ReadBands reads every band of the dataset row by row into an Image.
func ReadBands(ds *godal.Dataset) (*Image, error) {
	width := ds.Structure().SizeX
	height := ds.Structure().SizeY
	bands := ds.Bands()

	img := NewImage(height, width, len(bands))
	for b, band := range bands {
		for y := 0; y < height; y++ {
			if err := band.Read(0, y, img.Bands[b][y*width:(y+1)*width], width, 1); err != nil {
				return nil, fmt.Errorf("failed to read band %d: %w", b+1, err)
			}
		}
	}
	return img, nil
}

// WriteLabels writes a single-band Int32 GeoTIFF of cluster labels, copying
// geotransform and projection from the cropped reference dataset.
func WriteLabels(path string, labels []int32, ref *godal.Dataset) error {
	width := ref.Structure().SizeX
	height := ref.Structure().SizeY
	if len(labels) != width*height {
		return fmt.Errorf("label count %d does not match raster size %dx%d", len(labels), width, height)
	}

	ds, err := godal.Create(godal.GTiff, path, 1, godal.Int32, width, height)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	geoTransform, err := ref.GeoTransform()
	if err != nil {
		ds.Close()
		return fmt.Errorf("failed to get reference geotransform: %w", err)
	}
	if err := ds.SetGeoTransform(geoTransform); err != nil {
		ds.Close()
		return fmt.Errorf("failed to set geotransform: %w", err)
	}

	srcSR := ref.SpatialRef()
	defer srcSR.Close()
	if err := ds.SetSpatialRef(srcSR); err != nil {
		ds.Close()
		return fmt.Errorf("failed to set spatial ref: %w", err)
	}

	band := ds.Bands()[0]
	if err := band.Write(0, 0, labels, width, height); err != nil {
		ds.Close()
		return fmt.Errorf("failed to write labels: %w", err)
	}

	return ds.Close()
}
