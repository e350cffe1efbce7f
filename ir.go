package vd2yolo

// The intermediate annotation metadata representation.

import (
	"fmt"
	"image"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// Keys for known annotation attributes.
const (
	Confidence     = "Confidence"     // Type float64. The VisDrone score field.
	SourceCategory = "SourceCategory" // The category id in the source format. Type int.
	Truncation     = "Truncation"     // Type int.
	Occlusion      = "Occlusion"      // Type int.
)

// unmappedClassID is the ClassID of annotations that have not been mapped to a destination class.
const unmappedClassID = -1

// Annotation is the intermediate representation of an object label.
type Annotation struct {
	Attributes map[string]interface{} // Additional attributes of this annotation.
	ClassID    int                    // The destination class id, or -1 if not mapped yet.
	Coords     [4]float64             // Absolute x, y of the top-left corner, width and height.
	Label      string                 // The source category name.
}

// Width is the object width from a.Coords.
func (a Annotation) Width() float64 {
	return a.Coords[2]
}

// Height is the object height from a.Coords.
func (a Annotation) Height() float64 {
	return a.Coords[3]
}

// AnnotatedFile is the intermediate representation of file metadata.
type AnnotatedFile struct {
	Annotations []Annotation // The annotations.
	FilePath    string       // The annotated image file.
	Width       int          // The image width in pixels.
	Height      int          // The image height in pixels.
}

// scaleCoords scales all Annotations.Coords by the given scale factors.
func (f *AnnotatedFile) scaleCoords(width, height float64) {
	for i := range f.Annotations {
		for j := 0; j < 4; j++ {
			if j&1 == 0 {
				f.Annotations[i].Coords[j] *= width
			} else {
				f.Annotations[i].Coords[j] *= height
			}
		}
	}
}

// AnnotatedFiles is the annotation metadata for a list of files.
type AnnotatedFiles []AnnotatedFile

// NumAnnotations returns the total number of annotations across all files.
func (data AnnotatedFiles) NumAnnotations() int {
	n := 0
	for _, f := range data {
		n += len(f.Annotations)
	}
	return n
}

// MapCategories sets the ClassID of every annotation from its SourceCategory attribute, using the
// given category map. Annotations without a mapping are removed; the order of the remaining
// annotations is preserved.
//
// Returns the number of removed annotations.
func (data AnnotatedFiles) MapCategories(categories CategoryMap) int {
	removed := 0
	for i := range data {
		f := &data[i]
		kept := f.Annotations[:0]
		for _, a := range f.Annotations {
			category, ok := a.Attributes[SourceCategory].(int)
			if !ok {
				removed++
				continue
			}
			classID, ok := categories[category]
			if !ok {
				removed++
				continue
			}
			a.ClassID = classID
			kept = append(kept, a)
		}
		f.Annotations = kept
	}

	return removed
}

// ProcessImages writes all referenced images to imageOutDir and updates the file paths.
//
// With opts.LongerSide and opts.ShorterSide both zero the images are copied unchanged. Otherwise
// they are resized and written as JPEG, and the annotation coordinates and image sizes are scaled
// accordingly.
func (data AnnotatedFiles) ProcessImages(imageOutDir string, opts ImageOptions) error {
	downsample, upsample, err := opts.filters()
	if err != nil {
		return err
	}

	for i := range data {
		if err := processImage(&data[i], imageOutDir, opts, downsample, upsample); err != nil {
			return err
		}
	}

	return nil
}

// processImage writes the image described by data to imageOutDir, resizing it if requested.
func processImage(data *AnnotatedFile, imageOutDir string, opts ImageOptions,
		downsample, upsample imaging.ResampleFilter) error {

	inName := filepath.Base(data.FilePath)

	if !opts.resize() {
		outPath := filepath.Join(imageOutDir, inName)
		if err := copyFile(data.FilePath, outPath); err != nil {
			return fmt.Errorf("failed to copy image %q: %v", data.FilePath, err)
		}
		data.FilePath = outPath
		return nil
	}

	img, _, err := loadImage(data.FilePath)
	if err != nil {
		return fmt.Errorf("failed to load image %q: %v", data.FilePath, err)
	}

	var resized image.Image
	var scaleWidth, scaleHeight float64
	resized, scaleWidth, scaleHeight, err =
			resizeImage(img, opts.LongerSide, opts.ShorterSide, downsample, upsample)
	if err != nil {
		return err
	}

	// Resized images are always JPEG encoded.
	_, baseNoExt, _, err := splitPath(data.FilePath)
	if err != nil {
		return err
	}
	outPath := filepath.Join(imageOutDir, baseNoExt+".jpg")
	if err := saveImage(outPath, resized, opts.JPEGQuality); err != nil {
		return fmt.Errorf("failed to save image %q: %v", outPath, err)
	}

	bounds := resized.Bounds()
	data.FilePath = outPath
	data.Width = bounds.Dx()
	data.Height = bounds.Dy()
	data.scaleCoords(scaleWidth, scaleHeight)

	return nil
}
