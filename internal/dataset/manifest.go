package dataset

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest records a reproducible train/validation split.
type Manifest struct {
	Root            string         `yaml:"root"`
	Seed            int64          `yaml:"seed"`
	ValidationSplit float64        `yaml:"validationSplit"`
	Classes         []string       `yaml:"classes"`
	Counts          map[string]int `yaml:"counts"`
	Train           []Sample       `yaml:"train"`
	Validation      []Sample       `yaml:"validation"`
}

func NewManifest(all, train, validation *Dataset, fraction float64, seed int64) *Manifest {
	return &Manifest{
		Root:            all.Root,
		Seed:            seed,
		ValidationSplit: fraction,
		Classes:         all.Classes,
		Counts:          all.Counts(),
		Train:           train.Samples,
		Validation:      validation.Samples,
	}
}

func (m *Manifest) Save(path string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	return &m, nil
}
