package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Config{Level: "debug", Format: "json", Out: &buf})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if log.Level != logrus.DebugLevel {
		t.Errorf("expected debug level, got %s", log.Level)
	}

	log.WithField("diagnosis", "Melanoma").Info("prediction made")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected json output, got %q: %v", buf.String(), err)
	}
	if entry["diagnosis"] != "Melanoma" || entry["msg"] != "prediction made" {
		t.Errorf("unexpected entry %v", entry)
	}
}

func TestNewDefaults(t *testing.T) {
	log, err := New(Config{})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if log.Level != logrus.InfoLevel {
		t.Errorf("expected info level, got %s", log.Level)
	}
}

func TestNewInvalid(t *testing.T) {
	if _, err := New(Config{Level: "loud"}); err == nil {
		t.Error("expected error for invalid level")
	}
	if _, err := New(Config{Format: "xml"}); err == nil {
		t.Error("expected error for invalid format")
	}
}
