// Converts VisDrone detection annotations into a YOLO dataset with train and val splits.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/sensorable/vd2yolo"
)

var (
	cfg vd2yolo.Config // The conversion configuration assembled from the flags.
)

func init() {
	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Usage of %s:\n", filepath.Base(os.Args[0]))
		_, _ = fmt.Fprintln(os.Stderr, "  Reads <src>/images/*.jpg and <src>/annotations/*.txt and writes"+
				" <dst>/{images,labels}/{train,val} and <dst>/data.yaml")
		_, _ = fmt.Fprintln(os.Stderr)
		flag.PrintDefaults()
	}

	printUsageAndExit := func(msg ...interface{}) {
		log.Print(msg...)
		flag.Usage()
		os.Exit(1)
	}

	// Path arguments.
	srcDirPath := flag.String("src", filepath.Join("data", "visdrone"),
		"The `path` to the VisDrone dataset with images/ and annotations/ directories")
	dstDirPath := flag.String("dst", filepath.Join("data", "visdrone_yolo"),
		"The `path` to the YOLO dataset output directory")
	trainImages := flag.String("train-images", "",
		"The train image `dir` (default <src>/images)")
	trainAnnotations := flag.String("train-annotations", "",
		"The train annotation `dir` (default <src>/annotations)")
	valImages := flag.String("val-images", "",
		"The val image `dir` (default <src>/images)")
	valAnnotations := flag.String("val-annotations", "",
		"The val annotation `dir` (default <src>/annotations)")

	// Category arguments.
	categoryMappings := flag.String("map", vd2yolo.DefaultCategoryMap().String(),
		"Comma-separated list of VisDrone category to YOLO class id mappings (`src=dst[,...]`);"+
				" unmapped categories are dropped")
	classNames := flag.String("names", strings.Join(vd2yolo.DefaultClassNames(), ","),
		"Comma-separated list of class `names`, indexed by class id")

	// Image processing arguments.
	images := vd2yolo.DefaultImageOptions()
	flag.IntVar(&images.LongerSide, "resize-longer", images.LongerSide,
		"The target `length` for the longer side of the image (zero to keep aspect ratio;"+
				" images are copied unchanged when both resize flags are zero)")
	flag.IntVar(&images.ShorterSide, "resize-shorter", images.ShorterSide,
		"The target `length` for the shorter side of the image (zero to keep aspect ratio)")
	flag.StringVar(&images.DownsamplingFilter, "downsample-filter", images.DownsamplingFilter,
		"The filter to use when downsampling an image {nearest, box, linear, gaussian, lanczos}")
	flag.StringVar(&images.UpsamplingFilter, "upsample-filter", images.UpsamplingFilter,
		"The filter to use when upsampling an image {nearest, box, linear, gaussian, lanczos}")
	flag.IntVar(&images.JPEGQuality, "jpeg-quality", images.JPEGQuality,
		"The quality to use when encoding resized JPEGs [1, 100]")

	tfRecord := flag.Bool("tfrecord", false,
		"Also write each split as a TFRecord file with a label map to <dst>/tfrecords")

	// Parse and validate flags.
	flag.Parse()

	if *srcDirPath == "" || *dstDirPath == "" {
		printUsageAndExit("Missing source or destination path argument")
	}
	cfg = vd2yolo.DefaultConfig(filepath.Clean(*srcDirPath), filepath.Clean(*dstDirPath))

	for _, v := range []struct {
		flag string
		dst  *string
	}{
		{*trainImages, &cfg.TrainImageDir},
		{*trainAnnotations, &cfg.TrainAnnotationDir},
		{*valImages, &cfg.ValImageDir},
		{*valAnnotations, &cfg.ValAnnotationDir},
	} {
		if v.flag != "" {
			*v.dst = filepath.Clean(v.flag)
		}
	}
	if cfg.OutDir == filepath.Clean(*srcDirPath) {
		printUsageAndExit("The source and destination paths cannot be identical")
	}

	categories, err := vd2yolo.ParseCategoryMap(strings.Split(*categoryMappings, ","))
	if err != nil {
		printUsageAndExit("Invalid value in -map: ", err)
	}
	cfg.Categories = categories
	cfg.ClassNames = strings.Split(*classNames, ",")
	if err := cfg.Categories.Validate(len(cfg.ClassNames)); err != nil {
		printUsageAndExit("Invalid -map or -names: ", err)
	}

	if images.LongerSide < 0 || images.ShorterSide < 0 {
		printUsageAndExit("Invalid resize length")
	}
	if images.JPEGQuality < 1 || images.JPEGQuality > 100 {
		images.JPEGQuality = 92
		log.Print("Invalid JPEG quality, setting it to ", images.JPEGQuality)
	}
	cfg.Images = images
	cfg.TFRecord = *tfRecord
}

func main() {
	root, err := vd2yolo.Convert(cfg)
	if err != nil {
		log.Fatal("Conversion failed: ", err)
	}

	log.Print("Conversion done. YOLO dataset at: ", root)
}
