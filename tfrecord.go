package vd2yolo

// TFRecord object detection export of a converted split.

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/golang/protobuf/proto"
	"github.com/ryszard/tfutils/go/example"
	"github.com/ryszard/tfutils/go/tfrecord"
	"github.com/ryszard/tfutils/proto/tensorflow/core/example" // package tensorflow
)

// TFFeatureMap maps feature names to their values. Values must be convertible to
// tensorflow.Feature.
type TFFeatureMap map[string]interface{}

// toTFRecord converts the intermediate representation for a single file to a TFRecord feature
// map. Boxes are normalised and filtered like the YOLO output; label ids are class id + 1, as id 0
// is reserved for the background in the TensorFlow object detection API.
func toTFRecord(fileData AnnotatedFile, classNames []string) (TFFeatureMap, error) {
	imgData, err := readFile(fileData.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read the image: %v", err)
	}

	f := make(TFFeatureMap, 12)
	f["image/height"] = fileData.Height
	f["image/width"] = fileData.Width
	f["image/filename"] = fileData.FilePath
	f["image/source_id"] = fileData.FilePath
	f["image/encoded"] = imgData
	f["image/format"] = "jpeg"

	yolo := ToYOLO([]AnnotatedFile{fileData})[0]
	numLabels := len(yolo.Annotations)
	xmins := make([]float32, numLabels)
	ymins := make([]float32, numLabels)
	xmaxs := make([]float32, numLabels)
	ymaxs := make([]float32, numLabels)
	classes := make([]string, numLabels)
	classIDs := make([]int64, numLabels)
	for i, a := range yolo.Annotations {
		xmins[i] = float32(a.XCenter - a.Width/2)
		ymins[i] = float32(a.YCenter - a.Height/2)
		xmaxs[i] = float32(a.XCenter + a.Width/2)
		ymaxs[i] = float32(a.YCenter + a.Height/2)
		if a.ClassID < len(classNames) {
			classes[i] = classNames[a.ClassID]
		} else {
			classes[i] = strconv.Itoa(a.ClassID)
		}
		classIDs[i] = int64(a.ClassID + 1)
	}
	f["image/object/bbox/xmin"] = xmins
	f["image/object/bbox/ymin"] = ymins
	f["image/object/bbox/xmax"] = xmaxs
	f["image/object/bbox/ymax"] = ymaxs
	f["image/object/class/text"] = classes
	f["image/object/class/label"] = classIDs

	return f, nil
}

// WriteTFRecord converts, serialises and writes the annotation data to a TFRecord file at
// recordFilePath, one tensorflow.Example per image.
func WriteTFRecord(recordFilePath string, data []AnnotatedFile, classNames []string) (err error) {
	defer func() {
		if e := recover(); e != nil {
			err = fmt.Errorf("conversion to TensorFlow Example failed: %v", e)
		}
	}()

	file, err := os.Create(recordFilePath)
	if err != nil {
		return fmt.Errorf("failed to create %q: %v", recordFilePath, err)
	}
	defer closeWithErrCheck(file, &err)

	for _, fileData := range data {
		features, err := toTFRecord(fileData, classNames)
		if err != nil {
			return fmt.Errorf("failed to convert %q: %v", fileData.FilePath, err)
		}
		if err := writeTFRecordExample(file, example.New(features)); err != nil {
			return fmt.Errorf("failed to write example for %q: %v", fileData.FilePath, err)
		}
	}

	return nil
}

// writeTFRecordExample serialises the example and writes it as a TFRecord to w.
func writeTFRecordExample(w io.Writer, e *tensorflow.Example) error {
	enc, err := proto.Marshal(e)
	if err != nil {
		return err
	}

	return tfrecord.Write(w, enc)
}

// WriteTFRecordLabelMap writes the class names in the prototxt StringIntLabelMap format to path.
// Ids start at 1, matching the labels written by WriteTFRecord.
func WriteTFRecordLabelMap(path string, classNames []string) error {
	var b strings.Builder
	for i, name := range classNames {
		fmt.Fprintf(&b, "item {\n  name: %q\n  id: %d\n}\n", name, i+1)
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to write the label map %q: %v", path, err)
	}
	return nil
}
