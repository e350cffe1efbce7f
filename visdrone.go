package vd2yolo

// VisDrone specific functionality.

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// visDroneNumFields is the number of comma-separated fields in a VisDrone annotation line:
// xmin,ymin,width,height,score,category,truncation,occlusion.
const visDroneNumFields = 8

// errShortRecord is returned for lines with fewer than visDroneNumFields fields.
var errShortRecord = errors.New("insufficient fields")

// VisDroneAnnotation is a single annotation within a VisDrone file.
type VisDroneAnnotation struct {
	Coords     [4]float64 // xmin, ymin, width, height in pixels.
	Score      float64
	Category   int
	Truncation int
	Occlusion  int
}

// FromVisDrone reads the JPEG images in imageDir, in lexical order, and the VisDrone annotations
// with the same base name from annotationDir.
//
// An image without an annotation file is kept with no annotations. Errors reading an image header
// or an existing annotation file are returned.
func FromVisDrone(annotationDir, imageDir string) (AnnotatedFiles, error) {
	imageFiles, err := filesByExtInDir(imageDir, ".jpg")
	if err != nil {
		return nil, err
	}

	data := make(AnnotatedFiles, 0, len(imageFiles))
	for _, imagePath := range imageFiles {
		fileData, err := parseVisDroneFile(annotationDir, imagePath)
		if err != nil {
			return nil, err
		}
		data = append(data, fileData)
	}

	return data, nil
}

// parseVisDroneFile reads the size of the image at imagePath and the annotations for it from
// annotationDir.
func parseVisDroneFile(annotationDir, imagePath string) (AnnotatedFile, error) {
	img, _, err := decodeImageConfig(imagePath)
	if err != nil {
		return AnnotatedFile{}, fmt.Errorf("failed to decode the image metadata of %q: %v",
			imagePath, err)
	}

	_, baseNoExt, _, err := splitPath(imagePath)
	if err != nil {
		return AnnotatedFile{}, err
	}
	annotationPath := filepath.Join(annotationDir, baseNoExt+".txt")

	var lines []string
	if _, err := os.Stat(annotationPath); err == nil {
		if lines, err = readLines(annotationPath); err != nil {
			return AnnotatedFile{}, err
		}
	} else if !os.IsNotExist(err) {
		return AnnotatedFile{}, fmt.Errorf("cannot access %q: %v", annotationPath, err)
	}

	return AnnotatedFile{
		Annotations: visDroneToIR(lines, annotationPath),
		FilePath:    imagePath,
		Width:       img.Width,
		Height:      img.Height,
	}, nil
}

// visDroneToIR converts annotation lines to the intermediate representation. Short lines are
// skipped silently, lines with unparsable values are skipped with a log message naming source.
func visDroneToIR(lines []string, source string) []Annotation {
	annotations := make([]Annotation, 0, len(lines))
	for _, line := range lines {
		a, err := parseVisDroneAnnotation(line)
		if err == errShortRecord {
			continue
		} else if err != nil {
			log.Printf("Error while parsing, skipping a line of %q: %v", source, err)
			continue
		}

		annotations = append(annotations, Annotation{
			Attributes: map[string]interface{}{
				Confidence:     a.Score,
				SourceCategory: a.Category,
				Truncation:     a.Truncation,
				Occlusion:      a.Occlusion,
			},
			ClassID: unmappedClassID,
			Coords:  a.Coords,
			Label:   visDroneCategoryName(a.Category),
		})
	}

	return annotations
}

// parseVisDroneAnnotation parses the line of values for a single annotation.
//
// Only the box and the category are required to be valid; score, truncation and occlusion are
// left at zero when they do not parse.
func parseVisDroneAnnotation(line string) (VisDroneAnnotation, error) {
	a := VisDroneAnnotation{}

	tokens := strings.Split(strings.TrimSpace(line), ",")
	if len(tokens) < visDroneNumFields {
		return a, errShortRecord
	}
	for i := range tokens {
		tokens[i] = strings.TrimSpace(tokens[i])
	}

	var err error
	for i := 0; i < 4 && err == nil; i++ {
		a.Coords[i], err = strconv.ParseFloat(tokens[i], 64)
	}
	if err != nil {
		return a, fmt.Errorf("unexpected values in %q: %v", line, err)
	}

	if a.Category, err = strconv.Atoi(tokens[5]); err != nil {
		return a, fmt.Errorf("unexpected category in %q: %v", line, err)
	}

	// Optional values.
	a.Score, _ = strconv.ParseFloat(tokens[4], 64)
	a.Truncation, _ = strconv.Atoi(tokens[6])
	a.Occlusion, _ = strconv.Atoi(tokens[7])

	return a, nil
}
