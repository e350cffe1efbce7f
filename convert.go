package vd2yolo

// Dataset conversion driver.

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// Split describes the source and destination directories of one dataset split.
type Split struct {
	Name          string // The split name, e.g. "train".
	ImageDir      string // The source images (*.jpg).
	AnnotationDir string // The source VisDrone annotations (<image base name>.txt).
	ImageOutDir   string // The destination for the images.
	LabelOutDir   string // The destination for the YOLO label files.
}

// ConvertSplit converts one split: every JPEG image in split.ImageDir is copied (or resized) to
// split.ImageOutDir and a YOLO label file with the same base name is written to
// split.LabelOutDir. The output directories are created if necessary.
//
// The first I/O error aborts the conversion. Returns the converted data, with file paths pointing
// to the output images.
func ConvertSplit(split Split, categories CategoryMap, opts ImageOptions) (AnnotatedFiles, error) {
	for _, dir := range []string{split.ImageOutDir, split.LabelOutDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("cannot create directory %q: %v", dir, err)
		}
	}

	data, err := FromVisDrone(split.AnnotationDir, split.ImageDir)
	if err != nil {
		return nil, err
	}
	log.Printf("Converting %s: %d images from %s", split.Name, len(data), split.ImageDir)

	numParsed := data.NumAnnotations()
	numUnmapped := data.MapCategories(categories)

	if err := data.ProcessImages(split.ImageOutDir, opts); err != nil {
		return nil, err
	}

	yoloData := ToYOLO(data)
	if err := WriteYOLO(split.LabelOutDir, yoloData); err != nil {
		return nil, err
	}

	numWritten := 0
	for _, f := range yoloData {
		numWritten += len(f.Annotations)
	}
	log.Printf("Wrote %d labels for %d files to %s (%d parsed, %d unmapped, %d degenerate)",
		numWritten, len(yoloData), split.LabelOutDir, numParsed, numUnmapped,
		numParsed-numUnmapped-numWritten)

	return data, nil
}

// Config configures a conversion of a VisDrone dataset into a YOLO dataset with a train and a val
// split.
type Config struct {
	TrainImageDir      string
	TrainAnnotationDir string
	ValImageDir        string
	ValAnnotationDir   string
	OutDir             string // The root of the YOLO dataset.

	Categories CategoryMap
	ClassNames []string // Indexed by class id.
	Images     ImageOptions
	TFRecord   bool // Also export each split as a TFRecord file.
}

// DefaultConfig returns the configuration for converting srcDir, with images/ and annotations/
// subdirectories, into outDir. Both splits read the same source directories.
func DefaultConfig(srcDir, outDir string) Config {
	return Config{
		TrainImageDir:      filepath.Join(srcDir, "images"),
		TrainAnnotationDir: filepath.Join(srcDir, "annotations"),
		ValImageDir:        filepath.Join(srcDir, "images"),
		ValAnnotationDir:   filepath.Join(srcDir, "annotations"),
		OutDir:             outDir,
		Categories:         DefaultCategoryMap(),
		ClassNames:         DefaultClassNames(),
		Images:             DefaultImageOptions(),
	}
}

// The image directories of the splits relative to the dataset root.
const (
	trainImages = "images/train"
	valImages   = "images/val"
)

// splits returns the train and val splits for the configuration.
func (c Config) splits(root string) []Split {
	return []Split{
		{
			Name:          "train",
			ImageDir:      c.TrainImageDir,
			AnnotationDir: c.TrainAnnotationDir,
			ImageOutDir:   filepath.Join(root, filepath.FromSlash(trainImages)),
			LabelOutDir:   filepath.Join(root, "labels", "train"),
		},
		{
			Name:          "val",
			ImageDir:      c.ValImageDir,
			AnnotationDir: c.ValAnnotationDir,
			ImageOutDir:   filepath.Join(root, filepath.FromSlash(valImages)),
			LabelOutDir:   filepath.Join(root, "labels", "val"),
		},
	}
}

// Convert converts the train and val splits and, once both succeeded, writes the dataset
// manifest. Returns the absolute path of the dataset root.
func Convert(cfg Config) (string, error) {
	if err := cfg.Categories.Validate(len(cfg.ClassNames)); err != nil {
		return "", err
	}
	root, err := filepath.Abs(cfg.OutDir)
	if err != nil {
		return "", err
	}
	log.Printf("Category mappings: %v", cfg.Categories)

	var tfRecordDir string
	if cfg.TFRecord {
		tfRecordDir = filepath.Join(root, "tfrecords")
		if err := os.MkdirAll(tfRecordDir, 0755); err != nil {
			return "", fmt.Errorf("cannot create directory %q: %v", tfRecordDir, err)
		}
	}

	for _, split := range cfg.splits(root) {
		data, err := ConvertSplit(split, cfg.Categories, cfg.Images)
		if err != nil {
			return "", fmt.Errorf("split %s: %v", split.Name, err)
		}

		if cfg.TFRecord {
			path := filepath.Join(tfRecordDir, split.Name+".tfrecord")
			if err := WriteTFRecord(path, data, cfg.ClassNames); err != nil {
				return "", err
			}
			log.Printf("Wrote %d examples to %s", len(data), path)
		}
	}

	if cfg.TFRecord {
		if err := WriteTFRecordLabelMap(filepath.Join(tfRecordDir, "label_map.pbtxt"),
			cfg.ClassNames); err != nil {
			return "", err
		}
	}

	manifest := NewManifest(root, trainImages, valImages, cfg.ClassNames)
	if err := WriteManifest(filepath.Join(root, ManifestFileName), manifest); err != nil {
		return "", err
	}

	return root, nil
}
