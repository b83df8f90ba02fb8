package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestWrapKeepsExistingKind(t *testing.T) {
	inner := New(KindInput, "imaging.decode", "bad image")
	wrapped := Wrap(KindInference, "diagnose", "prediction failed", fmt.Errorf("outer: %w", inner))

	if got := KindOf(wrapped); got != KindInput {
		t.Fatalf("expected kind %q, got %q", KindInput, got)
	}
}

func TestWrapNil(t *testing.T) {
	if err := Wrap(KindStorage, "op", "msg", nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"input", New(KindInput, "op", "bad"), http.StatusBadRequest},
		{"not found", New(KindNotFound, "op", "missing"), http.StatusNotFound},
		{"model", ErrModelNotLoaded, http.StatusInternalServerError},
		{"untagged", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.want {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMessage(t *testing.T) {
	err := Wrap(KindInput, "imaging.base64", "invalid base64 image data", errors.New("illegal byte"))
	if got := Message(err); got != "invalid base64 image data: illegal byte" {
		t.Errorf("unexpected message %q", got)
	}
	if got := Message(ErrModelNotLoaded); got != "Model not loaded" {
		t.Errorf("unexpected message %q", got)
	}
}
