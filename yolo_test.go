package vd2yolo

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertLines(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  []string
	}{
		{
			name:  "car",
			lines: []string{"100,200,50,80,1,4,0,0"},
			want:  []string{"2 0.065104 0.222222 0.026042 0.074074"},
		},
		{
			name:  "unmapped tricycle",
			lines: []string{"10,10,5,5,1,7,0,0"},
		},
		{
			name:  "unmapped awning-tricycle",
			lines: []string{"10,10,5,5,1,8,0,0"},
		},
		{
			name:  "too few fields",
			lines: []string{"10,10,5,5,1"},
		},
		{
			name:  "zero width",
			lines: []string{"10,10,0,5,1,4,0,0"},
		},
		{
			name:  "negative height",
			lines: []string{"10,10,5,-5,1,4,0,0"},
		},
		{
			name:  "NaN width",
			lines: []string{"100,200,NaN,80,1,4,0,0"},
		},
		{
			name:  "NaN height",
			lines: []string{"100,200,50,nan,1,4,0,0"},
		},
		{
			name:  "empty line",
			lines: []string{""},
		},
		{
			name: "filtered lines do not stop processing",
			lines: []string{
				"10,10,5,5,1",
				"0,0,192,108,1,1,0,0",
				"x,10,5,5,1,4,0,0",
				"10,10,5,5,1,11,0,0",
				"960,540,96,54,0,9,1,2",
			},
			want: []string{
				"0 0.050000 0.050000 0.100000 0.100000",
				"4 0.525000 0.525000 0.050000 0.050000",
			},
		},
		{
			name:  "surrounding whitespace and extra fields",
			lines: []string{" 100, 200, 50, 80, 1, 5, 0, 0, 3 \r"},
			want:  []string{"2 0.065104 0.222222 0.026042 0.074074"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ConvertLines(1920, 1080, DefaultCategoryMap(), tt.lines)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ConvertLines() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConvertLines_RoundTrip(t *testing.T) {
	const width, height = 1360, 765

	boxes := [][4]float64{
		{0, 0, 1, 1},
		{100, 200, 50, 80},
		{1359, 764, 1, 1},
		{12.5, 7.25, 33.75, 19.5},
		{0, 0, width, height},
		{600, 300, 3, 250},
	}

	for _, box := range boxes {
		line := fmt.Sprintf("%v,%v,%v,%v,1,4,0,0", box[0], box[1], box[2], box[3])
		got := ConvertLines(width, height, DefaultCategoryMap(), []string{line})
		require.Len(t, got, 1, line)

		fields := strings.Fields(got[0])
		require.Len(t, fields, 5)
		assert.Equal(t, "2", fields[0])

		var v [4]float64
		for i := range v {
			var err error
			v[i], err = strconv.ParseFloat(fields[i+1], 64)
			require.NoError(t, err)
			assert.True(t, v[i] >= 0 && v[i] <= 1, "value %v of %q not normalised", v[i], got[0])
		}

		bw := v[2] * width
		bh := v[3] * height
		xmin := v[0]*width - bw/2
		ymin := v[1]*height - bh/2
		assert.InDelta(t, box[0], xmin, 1e-4*width, line)
		assert.InDelta(t, box[1], ymin, 1e-4*height, line)
		assert.InDelta(t, box[2], bw, 1e-4*width, line)
		assert.InDelta(t, box[3], bh, 1e-4*height, line)
	}
}

func TestConvertLines_LargeCoordinates(t *testing.T) {
	got := ConvertLines(1920, 1080, DefaultCategoryMap(), []string{"1e16,200,1,80,1,4,0,0"})
	require.Len(t, got, 1)

	fields := strings.Fields(got[0])
	require.Len(t, fields, 5)
	assert.Equal(t, "0.000521", fields[3])
	assert.Equal(t, "0.074074", fields[4])
}

func TestConvertLines_CustomMap(t *testing.T) {
	categories := CategoryMap{VisDroneTricycle: 0}

	got := ConvertLines(100, 100, categories, []string{
		"10,10,20,20,1,7,0,0",
		"10,10,20,20,1,4,0,0",
	})
	assert.Equal(t, []string{"0 0.200000 0.200000 0.200000 0.200000"}, got)
}

func TestToYOLO_SkipsUnmapped(t *testing.T) {
	data := []AnnotatedFile{{
		Annotations: []Annotation{
			{ClassID: unmappedClassID, Coords: [4]float64{0, 0, 10, 10}},
			{ClassID: 3, Coords: [4]float64{0, 0, 10, 20}},
		},
		FilePath: "/images/a.jpg",
		Width:    100,
		Height:   200,
	}}

	got := ToYOLO(data)
	require.Len(t, got, 1)
	assert.Equal(t, "/images/a.jpg", got[0].FilePath)
	assert.Equal(t, []YOLOAnnotation{{ClassID: 3, XCenter: 0.05, YCenter: 0.05, Width: 0.1,
		Height: 0.1}}, got[0].Annotations)
}

func TestWriteYOLO(t *testing.T) {
	dir := t.TempDir()
	data := []YOLOAnnotatedFile{
		{
			Annotations: []YOLOAnnotation{
				{ClassID: 0, XCenter: 0.5, YCenter: 0.5, Width: 0.25, Height: 0.125},
				{ClassID: 5, XCenter: 0.1, YCenter: 0.2, Width: 0.0000004, Height: 0.3},
			},
			FilePath: "/images/0000001_00000_d_0000001.jpg",
		},
		{FilePath: "/images/empty.jpg"},
	}

	require.NoError(t, WriteYOLO(dir, data))

	enc, err := os.ReadFile(filepath.Join(dir, "0000001_00000_d_0000001.txt"))
	require.NoError(t, err)
	assert.Equal(t, "0 0.500000 0.500000 0.250000 0.125000\n5 0.100000 0.200000 0.000000 0.300000",
		string(enc))

	enc, err = os.ReadFile(filepath.Join(dir, "empty.txt"))
	require.NoError(t, err)
	assert.Empty(t, enc)
}

func TestWriteYOLO_MissingDir(t *testing.T) {
	err := WriteYOLO(filepath.Join(t.TempDir(), "missing"), []YOLOAnnotatedFile{{FilePath: "a.jpg"}})
	assert.Error(t, err)
}
