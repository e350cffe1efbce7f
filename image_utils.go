package vd2yolo

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// ImageOptions controls how images are written to the output directories.
//
// The zero value (apart from JPEGQuality) copies images unchanged.
type ImageOptions struct {
	LongerSide         int    // The target length for the longer side (zero keeps aspect ratio).
	ShorterSide        int    // The target length for the shorter side (zero keeps aspect ratio).
	DownsamplingFilter string // One of nearest, box, linear, gaussian, lanczos.
	UpsamplingFilter   string // One of nearest, box, linear, gaussian, lanczos.
	JPEGQuality        int    // The JPEG quality for resized images, [1, 100].
}

// DefaultImageOptions returns options that copy images unchanged.
func DefaultImageOptions() ImageOptions {
	return ImageOptions{
		DownsamplingFilter: "box",
		UpsamplingFilter:   "linear",
		JPEGQuality:        90,
	}
}

// resize reports whether the images are resized rather than copied.
func (o ImageOptions) resize() bool {
	return o.LongerSide > 0 || o.ShorterSide > 0
}

// filters selects the resampling algorithms for downsampling and upsampling.
func (o ImageOptions) filters() (downsample, upsample imaging.ResampleFilter, err error) {
	if downsample, err = resampleFilter(o.DownsamplingFilter, imaging.Box); err != nil {
		return
	}
	upsample, err = resampleFilter(o.UpsamplingFilter, imaging.Linear)
	return
}

// resampleFilter maps a filter name to the imaging filter. An empty name selects def.
func resampleFilter(name string, def imaging.ResampleFilter) (imaging.ResampleFilter, error) {
	switch name {
	case "":
		return def, nil
	case "nearest":
		return imaging.NearestNeighbor, nil
	case "box":
		return imaging.Box, nil
	case "linear":
		return imaging.Linear, nil
	case "gaussian":
		return imaging.Gaussian, nil
	case "lanczos":
		return imaging.Lanczos, nil
	}
	return imaging.ResampleFilter{}, fmt.Errorf("unknown resampling filter %q", name)
}

// resizeImage resamples the image to match the longer and shorter sides (one may be 0).
//
// Returns the resized image along with the width and height scale factors.
func resizeImage(img image.Image, longerSide, shorterSide int,
		downsamplingFilter, upsamplingFilter imaging.ResampleFilter) (
		resized image.Image, scaleWidth, scaleHeight float64, err error) {

	imgBounds := img.Bounds()
	imgWidth := imgBounds.Dx()
	imgHeight := imgBounds.Dy()
	if imgWidth == 0 || imgHeight == 0 {
		return nil, 0, 0, fmt.Errorf("cannot resize an empty image")
	}

	imgLonger := imgWidth
	imgShorter := imgHeight
	isLandscape := true
	if imgHeight > imgWidth {
		imgLonger = imgHeight
		imgShorter = imgWidth
		isLandscape = false
	}

	// Calculate the target dimensions.
	if longerSide <= 0 {
		longerSide = int(math.Round(float64(shorterSide) * (float64(imgLonger) / float64(imgShorter))))
	} else if shorterSide <= 0 {
		shorterSide = int(math.Round(float64(longerSide) * (float64(imgShorter) / float64(imgLonger))))
	}

	// Select the filter based on the direction of the rescaling operation.
	var filter imaging.ResampleFilter
	if longerSide*shorterSide < imgWidth*imgHeight {
		filter = downsamplingFilter
	} else {
		filter = upsamplingFilter
	}

	if isLandscape {
		resized = imaging.Resize(img, longerSide, shorterSide, filter)
		scaleWidth = float64(longerSide) / float64(imgLonger)
		scaleHeight = float64(shorterSide) / float64(imgShorter)
	} else { // Portrait.
		resized = imaging.Resize(img, shorterSide, longerSide, filter)
		scaleWidth = float64(shorterSide) / float64(imgShorter)
		scaleHeight = float64(longerSide) / float64(imgLonger)
	}

	return resized, scaleWidth, scaleHeight, nil
}

// decodeImageConfig opens the file at path and returns the results of image.DecodeConfig.
func decodeImageConfig(path string) (config image.Config, format string, err error) {
	file, err := os.Open(path)
	if err != nil {
		return image.Config{}, "", err
	}
	defer file.Close()

	return image.DecodeConfig(file)
}

// loadImage reads and decodes the image at path and returns the results of image.Decode.
func loadImage(path string) (img image.Image, format string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	return image.Decode(f)
}

// Saves the image to path, encoding it as PNG or JPG, depending on the file extension of path.
func saveImage(path string, img image.Image, jpegQuality int) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer closeWithErrCheck(f, &err)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		err = png.Encode(f, img)
	default:
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: jpegQuality})
	}
	return err
}

// copyFile copies the file at src to dst unchanged, replacing dst if it exists.
func copyFile(src, dst string) (err error) {
	if filepath.Clean(src) == filepath.Clean(dst) {
		return fmt.Errorf("cannot copy %q onto itself", src)
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer closeWithErrCheck(out, &err)

	_, err = io.Copy(out, in)
	return err
}
