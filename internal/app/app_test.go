package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/sirupsen/logrus"

	"github.com/Brownie44l1/dermascan-api/internal/cache"
	"github.com/Brownie44l1/dermascan-api/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	dir := t.TempDir()
	cfg.Model.Path = filepath.Join(dir, "missing.onnx")
	cfg.Model.MetadataPath = filepath.Join(dir, "missing.json")
	cfg.History.ConnectionString = ":memory:"
	return cfg
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})
	return log
}

func TestBuildWithoutModel(t *testing.T) {
	cfg := testConfig(t)
	cfg.History.Enabled = true

	a, err := Build(context.Background(), cfg, quietLogger(), false)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	defer a.Close()

	if a.Service.ModelLoaded() {
		t.Error("expected model to be reported as not loaded")
	}
	if a.History == nil || a.Service.History() == nil {
		t.Error("expected history store to be wired")
	}
	if _, ok := a.Cache.(cache.Noop); !ok {
		t.Errorf("expected noop cache, got %T", a.Cache)
	}
}

func TestBuildRequireModel(t *testing.T) {
	if _, err := Build(context.Background(), testConfig(t), quietLogger(), true); err == nil {
		t.Fatal("expected error when the model is required and missing")
	}
}

func TestBuildWithRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()

	cfg := testConfig(t)
	cfg.Cache.Enabled = true
	cfg.Cache.Addr = mr.Addr()

	a, err := Build(context.Background(), cfg, quietLogger(), false)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	defer a.Close()
	if _, ok := a.Cache.(cache.Noop); ok {
		t.Error("expected redis cache")
	}
}

func TestBuildBadRedis(t *testing.T) {
	cfg := testConfig(t)
	cfg.Cache.Enabled = true
	cfg.Cache.Addr = "127.0.0.1:1"

	if _, err := Build(context.Background(), cfg, quietLogger(), false); err == nil {
		t.Fatal("expected error for unreachable redis")
	}
}

func TestModelFingerprint(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		return path
	}
	modelA := write("a.onnx", "weights-a")
	modelB := write("b.onnx", "weights-b")
	meta := write("meta.json", `{"input_name":"input"}`)

	first, err := modelFingerprint(modelA, meta)
	if err != nil {
		t.Fatalf("modelFingerprint error: %v", err)
	}
	again, _ := modelFingerprint(modelA, meta)
	if first != again {
		t.Errorf("fingerprint not stable: %s vs %s", first, again)
	}
	swapped, _ := modelFingerprint(modelB, meta)
	if swapped == first {
		t.Error("expected a different fingerprint after swapping the model")
	}

	if _, err := modelFingerprint(filepath.Join(dir, "missing.onnx")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestCachePrefix(t *testing.T) {
	if got := cachePrefix("", "abc"); got != cache.DefaultPrefix+"abc:" {
		t.Errorf("cachePrefix default = %q", got)
	}
	if got := cachePrefix("custom:", "abc"); got != "custom:abc:" {
		t.Errorf("cachePrefix custom = %q", got)
	}
}
