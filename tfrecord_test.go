package vd2yolo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToTFRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.jpg")
	writeTestJPEG(t, path, 100, 50)

	fileData := AnnotatedFile{
		Annotations: []Annotation{
			{ClassID: 2, Coords: [4]float64{10, 5, 20, 20}},
			{ClassID: 0, Coords: [4]float64{10, 5, 0, 20}}, // Degenerate.
			{ClassID: 7, Coords: [4]float64{0, 0, 50, 50}},
		},
		FilePath: path,
		Width:    100,
		Height:   50,
	}
	f, err := toTFRecord(fileData, DefaultClassNames())
	require.NoError(t, err)

	assert.Equal(t, 50, f["image/height"])
	assert.Equal(t, 100, f["image/width"])
	assert.Equal(t, "jpeg", f["image/format"])
	assert.NotEmpty(t, f["image/encoded"])

	xmins := f["image/object/bbox/xmin"].([]float32)
	ymaxs := f["image/object/bbox/ymax"].([]float32)
	require.Len(t, xmins, 2)
	assert.InDelta(t, 0.1, xmins[0], 1e-6)
	assert.InDelta(t, 0.5, ymaxs[0], 1e-6)
	assert.InDelta(t, 1.0, ymaxs[1], 1e-6)
	assert.Equal(t, []string{"car", "7"}, f["image/object/class/text"])
	assert.Equal(t, []int64{3, 8}, f["image/object/class/label"])
}

func TestWriteTFRecord(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.jpg")
	writeTestJPEG(t, path, 64, 32)

	data := []AnnotatedFile{
		{
			Annotations: []Annotation{{ClassID: 1, Coords: [4]float64{1, 1, 8, 8}}},
			FilePath:    path,
			Width:       64,
			Height:      32,
		},
		{FilePath: path, Width: 64, Height: 32},
	}
	recordPath := filepath.Join(dir, "train.tfrecord")
	require.NoError(t, WriteTFRecord(recordPath, data, DefaultClassNames()))

	info, err := os.Stat(recordPath)
	require.NoError(t, err)
	assert.True(t, info.Size() > 0)

	missing := []AnnotatedFile{{FilePath: filepath.Join(dir, "missing.jpg")}}
	assert.Error(t, WriteTFRecord(filepath.Join(dir, "val.tfrecord"), missing, nil))
}

func TestWriteTFRecordLabelMap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "label_map.pbtxt")
	require.NoError(t, WriteTFRecordLabelMap(path, []string{"person", "car"}))

	enc, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "item {\n  name: \"person\"\n  id: 1\n}\nitem {\n  name: \"car\"\n  id: 2\n}\n",
		string(enc))
}
