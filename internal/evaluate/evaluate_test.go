package evaluate

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/nfnt/resize"

	"github.com/Brownie44l1/dermascan-api/internal/dataset"
	"github.com/Brownie44l1/dermascan-api/internal/imaging"
	"github.com/Brownie44l1/dermascan-api/internal/model/modeltest"
)

var classes = []string{"Benign", "Malignant"}

// label is encoded in the first input value so the fake classifier can be
// right or wrong on purpose.
func samples(labels ...string) []dataset.Sample {
	out := make([]dataset.Sample, len(labels))
	for i, l := range labels {
		out[i] = dataset.Sample{Path: l, Label: l}
	}
	return out
}

func loader(path string) ([]float32, error) {
	if strings.EqualFold(path, "malignant") {
		return []float32{1}, nil
	}
	return []float32{0}, nil
}

func TestRunPerfectClassifier(t *testing.T) {
	clf := &modeltest.Classifier{
		Classes: classes,
		Score: func(in []float32) []float32 {
			if in[0] == 1 {
				return []float32{0.1, 0.9}
			}
			return []float32{0.8, 0.2}
		},
	}

	var progressed int32
	r, err := Run(context.Background(), samples("benign", "Malignant", "benign", "malignant"), classes, clf, loader,
		Options{Workers: 2, Progress: func(done, total int) { atomic.AddInt32(&progressed, 1) }})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if r.Total != 4 || r.Correct != 4 || r.Accuracy != 1 {
		t.Errorf("unexpected totals %+v", r)
	}
	wantLoss := (-math.Log(0.9)*2 - math.Log(0.8)*2) / 4
	if math.Abs(r.Loss-wantLoss) > 1e-6 {
		t.Errorf("loss = %v, want %v", r.Loss, wantLoss)
	}
	if r.Confusion[0][0] != 2 || r.Confusion[1][1] != 2 || r.Confusion[0][1] != 0 {
		t.Errorf("unexpected confusion %v", r.Confusion)
	}
	if r.PerClass[1].Precision != 1 || r.PerClass[1].Recall != 1 || r.PerClass[1].Support != 2 {
		t.Errorf("unexpected metrics %+v", r.PerClass[1])
	}
	if clf.Calls() != 4 {
		t.Errorf("expected 4 classifications, got %d", clf.Calls())
	}
	if atomic.LoadInt32(&progressed) != 4 {
		t.Errorf("expected 4 progress callbacks, got %d", progressed)
	}
}

func TestRunConstantClassifier(t *testing.T) {
	clf := modeltest.Fixed(classes, 0, 1)

	r, err := Run(context.Background(), samples("benign", "malignant", "malignant", "benign"), classes, clf, loader, Options{})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if r.Accuracy != 0.5 {
		t.Errorf("expected accuracy 0.5, got %v", r.Accuracy)
	}
	if r.Confusion[1][0] != 2 {
		t.Errorf("expected malignant samples predicted benign, got %v", r.Confusion)
	}
	// probability 0 on the true class is clamped
	wantLoss := -math.Log(epsilon) / 2
	if math.Abs(r.Loss-wantLoss) > 1e-3 {
		t.Errorf("loss = %v, want about %v", r.Loss, wantLoss)
	}
	if r.PerClass[1].Recall != 0 || r.PerClass[1].Precision != 0 || r.PerClass[1].F1 != 0 {
		t.Errorf("unexpected malignant metrics %+v", r.PerClass[1])
	}
	if r.PerClass[0].Precision != 0.5 || r.PerClass[0].Recall != 1 {
		t.Errorf("unexpected benign metrics %+v", r.PerClass[0])
	}
}

func TestRunErrors(t *testing.T) {
	clf := modeltest.Fixed(classes, 0, 1)

	if _, err := Run(context.Background(), nil, classes, clf, loader, Options{}); err == nil {
		t.Error("expected error for empty sample set")
	}
	if _, err := Run(context.Background(), samples("benign", "eczema"), classes, clf, loader, Options{}); err == nil {
		t.Error("expected error for unknown class")
	}

	failing := func(string) ([]float32, error) { return nil, errors.New("unreadable") }
	if _, err := Run(context.Background(), samples("benign", "malignant"), classes, clf, failing, Options{Workers: 1}); err == nil {
		t.Error("expected loader error to stop the run")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Run(ctx, samples("benign", "malignant", "benign"), classes, clf, loader, Options{Workers: 1}); err == nil {
		t.Error("expected cancelled context to stop the run")
	}
}

func TestImageLoader(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	img.Set(0, 0, color.Black)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	path := filepath.Join(t.TempDir(), "x.png")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	load := ImageLoader(&imaging.Preprocessor{Width: 5, Height: 5, Layout: imaging.LayoutNHWC, Filter: resize.NearestNeighbor})
	data, err := load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if len(data) != 75 {
		t.Errorf("expected 75 values, got %d", len(data))
	}

	if _, err := load(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("expected error for missing file")
	}
}
