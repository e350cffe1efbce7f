package vd2yolo

// Dataset manifest (data.yaml) functionality.

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ManifestFileName is the name of the manifest in the dataset root.
const ManifestFileName = "data.yaml"

// Manifest describes a YOLO dataset: its root, the image directories of the splits relative to the
// root and the class names by class id.
type Manifest struct {
	Path  string         `yaml:"path"`
	Train string         `yaml:"train"`
	Val   string         `yaml:"val"`
	Names map[int]string `yaml:"names"`
}

// NewManifest creates a manifest with classNames indexed by class id.
func NewManifest(root, train, val string, classNames []string) Manifest {
	names := make(map[int]string, len(classNames))
	for i, name := range classNames {
		names[i] = name
	}
	return Manifest{Path: root, Train: train, Val: val, Names: names}
}

// WriteManifest writes the manifest as YAML to path.
func WriteManifest(path string, m Manifest) error {
	enc, err := yaml.Marshal(m)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, enc, 0644); err != nil {
		return fmt.Errorf("cannot write file %q: %v", path, err)
	}
	return nil
}

// LoadManifest reads a manifest written by WriteManifest.
func LoadManifest(path string) (Manifest, error) {
	enc, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, err
	}

	var m Manifest
	if err := yaml.Unmarshal(enc, &m); err != nil {
		return Manifest{}, fmt.Errorf("failed to parse manifest %q: %v", path, err)
	}
	return m, nil
}
