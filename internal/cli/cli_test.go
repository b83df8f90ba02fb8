package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Brownie44l1/dermascan-api/internal/dataset"
	"github.com/Brownie44l1/dermascan-api/internal/model"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewLesionCtlCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func makeDataset(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for class, n := range map[string]int{"Melanoma": 6, "Dermatofibroma": 4} {
		dir := filepath.Join(root, class)
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		for i := 0; i < n; i++ {
			if err := os.WriteFile(filepath.Join(dir, fmt.Sprintf("%d.jpg", i)), []byte("x"), 0644); err != nil {
				t.Fatalf("write: %v", err)
			}
		}
	}
	return root
}

func TestDatasetCommand(t *testing.T) {
	root := makeDataset(t)
	manifest := filepath.Join(t.TempDir(), "split.yaml")

	out, err := execute(t, "dataset", root, "--validation-split", "0.2", "--seed", "123", "--manifest", manifest)
	if err != nil {
		t.Fatalf("dataset command failed: %v\n%s", err, out)
	}
	for _, want := range []string{
		"Found 10 files belonging to 2 classes.",
		"Using 8 files for training.",
		"Using 2 files for validation.",
		"Melanoma",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	m, err := dataset.LoadManifest(manifest)
	if err != nil {
		t.Fatalf("LoadManifest error: %v", err)
	}
	if len(m.Train) != 8 || len(m.Validation) != 2 || m.Seed != 123 {
		t.Errorf("unexpected manifest %+v", m)
	}
}

func TestDatasetCommandValidation(t *testing.T) {
	if _, err := execute(t, "dataset"); err == nil {
		t.Error("expected error without a directory")
	}
	if _, err := execute(t, "dataset", t.TempDir(), "--validation-split", "1.5"); err == nil {
		t.Error("expected error for invalid validation split")
	}
}

func TestMetadataInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models", "model_metadata.json")

	out, err := execute(t, "metadata", "init", "--out", path, "--height", "224", "--width", "224", "--layout", "nchw")
	if err != nil {
		t.Fatalf("metadata init failed: %v\n%s", err, out)
	}

	m, err := model.LoadMetadata(path)
	if err != nil {
		t.Fatalf("LoadMetadata error: %v", err)
	}
	if m.Layout != "NCHW" || m.InputShape[1] != 3 || m.ImageHeight != 224 || len(m.Classes) != 8 {
		t.Errorf("unexpected metadata %+v", m)
	}

	before, _ := os.ReadFile(path)
	out, err = execute(t, "metadata", "init", "--out", path, "--height", "64", "--width", "64")
	if err != nil {
		t.Fatalf("second metadata init failed: %v", err)
	}
	after, _ := os.ReadFile(path)
	if !bytes.Equal(before, after) {
		t.Error("existing metadata must not be replaced without --override")
	}
	if !strings.Contains(out, "--override") {
		t.Errorf("expected override hint, got %q", out)
	}
}

func TestMetadataInitRejectsLayout(t *testing.T) {
	if _, err := execute(t, "metadata", "init", "--out", filepath.Join(t.TempDir(), "m.json"), "--layout", "HWC"); err == nil {
		t.Fatal("expected error for unsupported layout")
	}
}

func TestEvaluateRequiresModel(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	content := fmt.Sprintf("model:\n  path: %s\n  metadataPath: %s\n",
		filepath.Join(t.TempDir(), "missing.onnx"), filepath.Join(t.TempDir(), "missing.json"))
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := execute(t, "--config", cfgPath, "evaluate", makeDataset(t)); err == nil {
		t.Fatal("expected error when the model is missing")
	}
	if _, err := execute(t, "evaluate"); err == nil {
		t.Fatal("expected error without a test directory")
	}
}

func TestPredictRequiresImage(t *testing.T) {
	if _, err := execute(t, "predict"); err == nil {
		t.Fatal("expected error without an image")
	}
	if _, err := execute(t, "predict", filepath.Join(t.TempDir(), "missing.jpg")); err == nil {
		t.Fatal("expected error for a missing image file")
	}
}
