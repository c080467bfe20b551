package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MetadataFilename is the fixture metadata file written alongside a CAT's
// content when it is admitted into the content-addressed store.
const MetadataFilename = "cat.yaml"

// Metadata is the cat.yaml record of one fixture. Field order here is the
// serialization order.
type Metadata struct {
	UUID     string   `yaml:"uuid"`
	Hash     string   `yaml:"hash"`
	Language string   `yaml:"language"`
	Sets     []string `yaml:"sets"`
	Source   string   `yaml:"source"`
}

// LoadMetadata reads and parses a cat.yaml file.
func LoadMetadata(path string) (*Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read metadata: %w", err)
	}
	var m Metadata
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("catalog: parse metadata %s: %w", path, err)
	}
	return &m, nil
}

// WriteMetadata serializes m to path.
func WriteMetadata(path string, m *Metadata) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("catalog: marshal metadata: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("catalog: write metadata: %w", err)
	}
	return nil
}
