package vd2yolo

// YOLO specific functionality.

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// YOLOAnnotation is a single annotation within a YOLO label file. The geometry is normalised by
// the image width and height.
type YOLOAnnotation struct {
	ClassID int
	XCenter float64
	YCenter float64
	Width   float64
	Height  float64
}

// String formats the annotation as a YOLO label line.
func (a YOLOAnnotation) String() string {
	return fmt.Sprintf("%d %.6f %.6f %.6f %.6f", a.ClassID, a.XCenter, a.YCenter, a.Width, a.Height)
}

// YOLOAnnotatedFile defines the YOLO annotation structure for a single file.
type YOLOAnnotatedFile struct {
	Annotations []YOLOAnnotation
	FilePath    string
}

// Lines returns the label lines for the file, one per annotation.
func (f YOLOAnnotatedFile) Lines() []string {
	lines := make([]string, len(f.Annotations))
	for i, a := range f.Annotations {
		lines[i] = a.String()
	}
	return lines
}

// ConvertLines converts VisDrone annotation lines for an image of the given size to YOLO label
// lines. Short or unparsable lines, unmapped categories and boxes without a positive width and
// height produce no output.
func ConvertLines(width, height int, categories CategoryMap, lines []string) []string {
	data := AnnotatedFiles{{
		Annotations: visDroneToIR(lines, "input"),
		Width:       width,
		Height:      height,
	}}
	data.MapCategories(categories)

	return ToYOLO(data)[0].Lines()
}

// normalize converts an annotation with absolute coordinates to a YOLO annotation for an image of
// size imgWidth x imgHeight. Returns false unless the normalised width and height are positive,
// which also rejects NaN.
func normalize(a Annotation, imgWidth, imgHeight float64) (YOLOAnnotation, bool) {
	width := a.Width()
	height := a.Height()
	y := YOLOAnnotation{
		ClassID: a.ClassID,
		XCenter: (a.Coords[0] + width/2) / imgWidth,
		YCenter: (a.Coords[1] + height/2) / imgHeight,
		Width:   width / imgWidth,
		Height:  height / imgHeight,
	}
	if !(y.Width > 0 && y.Height > 0) {
		return YOLOAnnotation{}, false
	}
	return y, true
}

// ToYOLO converts the intermediate representation to YOLO format. Annotations must have been
// mapped to class ids; unmapped annotations and degenerate boxes are dropped.
func ToYOLO(data []AnnotatedFile) []YOLOAnnotatedFile {
	yoloData := make([]YOLOAnnotatedFile, 0, len(data))
	for _, fileData := range data {
		yoloFileData := YOLOAnnotatedFile{
			Annotations: make([]YOLOAnnotation, 0, len(fileData.Annotations)),
			FilePath:    fileData.FilePath,
		}
		for _, a := range fileData.Annotations {
			if a.ClassID == unmappedClassID {
				continue
			}
			if y, ok := normalize(a, float64(fileData.Width), float64(fileData.Height)); ok {
				yoloFileData.Annotations = append(yoloFileData.Annotations, y)
			}
		}
		yoloData = append(yoloData, yoloFileData)
	}

	return yoloData
}

// WriteYOLO writes data to dirPath, one label file per element, named after the image file with a
// .txt extension. Files without annotations are written empty.
func WriteYOLO(dirPath string, data []YOLOAnnotatedFile) error {
	dirInfo, err := os.Stat(dirPath)
	if err != nil || !dirInfo.IsDir() {
		return fmt.Errorf("cannot access directory %q: %v", dirPath, err)
	}

	for _, fileData := range data {
		// Use the image file name with .txt extension as label file name.
		_, baseNoExt, _, err := splitPath(fileData.FilePath)
		if err != nil {
			return err
		}
		filePath := filepath.Join(dirPath, baseNoExt+".txt")
		if err := writeLabelFile(filePath, fileData.Lines()); err != nil {
			return fmt.Errorf("cannot write file %q: %v", filePath, err)
		}
	}

	return nil
}

// writeLabelFile writes the newline-joined lines to path, without a trailing newline.
func writeLabelFile(path string, lines []string) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer closeWithErrCheck(file, &err)

	_, err = file.WriteString(strings.Join(lines, "\n"))
	return err
}
