package model

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/Brownie44l1/dermascan-api/internal/imaging"
	"github.com/Brownie44l1/dermascan-api/internal/lesion"
)

const (
	DefaultInputName  = "input"
	DefaultOutputName = "output"
	DefaultImageSize  = 180
)

// Metadata describes the exported network: tensor names and shapes, the
// class order, and how images must be prepared for it.
type Metadata struct {
	InputName    string   `json:"input_name,omitempty"`
	OutputName   string   `json:"output_name,omitempty"`
	InputShape   []int64  `json:"input_shape"`
	OutputShape  []int64  `json:"output_shape"`
	Classes      []string `json:"classes"`
	ImageSize    int      `json:"image_size,omitempty"`
	ImageHeight  int      `json:"image_height,omitempty"`
	ImageWidth   int      `json:"image_width,omitempty"`
	Layout       string   `json:"layout,omitempty"`
	PixelScale   float32  `json:"pixel_scale,omitempty"`
	ApplySoftmax bool     `json:"apply_softmax,omitempty"`
}

// Prediction is the result of one forward pass.
type Prediction struct {
	Index         int
	Class         string
	Probabilities []float32
}

// Confidence is the probability of the predicted class.
func (p *Prediction) Confidence() float32 {
	if p.Index < 0 || p.Index >= len(p.Probabilities) {
		return 0
	}
	return p.Probabilities[p.Index]
}

// DefaultMetadata describes a network with the standard class list and an
// NHWC input of height x width.
func DefaultMetadata(height, width int) Metadata {
	classes := lesion.Classes()
	return Metadata{
		InputName:   DefaultInputName,
		OutputName:  DefaultOutputName,
		InputShape:  []int64{1, int64(height), int64(width), 3},
		OutputShape: []int64{1, int64(len(classes))},
		Classes:     classes,
		ImageHeight: height,
		ImageWidth:  width,
		Layout:      string(imaging.LayoutNHWC),
		PixelScale:  1.0 / 255.0,
	}
}

func LoadMetadata(path string) (Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to read metadata: %w", err)
	}

	var metadata Metadata
	if err := json.Unmarshal(data, &metadata); err != nil {
		return Metadata{}, fmt.Errorf("failed to parse metadata: %w", err)
	}
	if err := metadata.Normalize(); err != nil {
		return Metadata{}, fmt.Errorf("invalid metadata %s: %w", path, err)
	}
	return metadata, nil
}

// Save writes the metadata as indented JSON.
func (m Metadata) Save(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// Normalize fills defaults and checks that shapes, classes and image size agree.
func (m *Metadata) Normalize() error {
	if m.InputName == "" {
		m.InputName = DefaultInputName
	}
	if m.OutputName == "" {
		m.OutputName = DefaultOutputName
	}
	if len(m.Classes) == 0 {
		m.Classes = lesion.Classes()
	}
	if m.PixelScale == 0 {
		m.PixelScale = 1.0 / 255.0
	}

	m.Layout = strings.ToUpper(m.Layout)
	switch imaging.Layout(m.Layout) {
	case "":
		m.Layout = string(imaging.LayoutNHWC)
	case imaging.LayoutNHWC, imaging.LayoutNCHW:
	default:
		return fmt.Errorf("unsupported layout %q", m.Layout)
	}

	if len(m.InputShape) != 4 {
		return fmt.Errorf("input_shape must have 4 dimensions, got %v", m.InputShape)
	}
	for _, d := range m.InputShape {
		if d <= 0 {
			return fmt.Errorf("input_shape must be static and positive, got %v", m.InputShape)
		}
	}
	if m.InputShape[0] != 1 {
		return fmt.Errorf("batch dimension must be 1, got %d", m.InputShape[0])
	}

	h, w, c := m.shapeDims()
	if c != 3 {
		return fmt.Errorf("input must have 3 channels for layout %s, got shape %v", m.Layout, m.InputShape)
	}
	if m.ImageHeight == 0 {
		m.ImageHeight = m.ImageSize
	}
	if m.ImageWidth == 0 {
		m.ImageWidth = m.ImageSize
	}
	if m.ImageHeight == 0 {
		m.ImageHeight = h
	}
	if m.ImageWidth == 0 {
		m.ImageWidth = w
	}
	if m.ImageHeight != h || m.ImageWidth != w {
		return fmt.Errorf("image size %dx%d does not match input_shape %v", m.ImageWidth, m.ImageHeight, m.InputShape)
	}

	if len(m.OutputShape) == 0 {
		m.OutputShape = []int64{1, int64(len(m.Classes))}
	}
	if last := m.OutputShape[len(m.OutputShape)-1]; last != int64(len(m.Classes)) {
		return fmt.Errorf("output_shape %v does not match %d classes", m.OutputShape, len(m.Classes))
	}
	return nil
}

func (m *Metadata) shapeDims() (h, w, c int) {
	if imaging.Layout(m.Layout) == imaging.LayoutNCHW {
		return int(m.InputShape[2]), int(m.InputShape[3]), int(m.InputShape[1])
	}
	return int(m.InputShape[1]), int(m.InputShape[2]), int(m.InputShape[3])
}

// InputSize is the number of values the input tensor holds.
func (m *Metadata) InputSize() int {
	size := 1
	for _, d := range m.InputShape {
		size *= int(d)
	}
	return size
}

// Preprocessor returns the image preparation matching this network.
func (m *Metadata) Preprocessor(filter string) (*imaging.Preprocessor, error) {
	interp, err := imaging.ParseFilter(filter)
	if err != nil {
		return nil, err
	}
	return &imaging.Preprocessor{
		Width:      m.ImageWidth,
		Height:     m.ImageHeight,
		Layout:     imaging.Layout(m.Layout),
		PixelScale: m.PixelScale,
		Filter:     interp,
	}, nil
}
