package services_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/zachdrouin/ComicAlive/internal/services"
)

func TestWrapTagsMarker(t *testing.T) {
	base := errors.New("ffmpeg exited 1")
	err := services.Wrap(services.ErrEncoding, "assemble", "concat", "final concat failed", base)
	if !errors.Is(err, services.ErrEncoding) {
		t.Fatalf("expected ErrEncoding marker, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped cause to survive, got %v", err)
	}
	if !strings.Contains(err.Error(), "assemble: concat: final concat failed") {
		t.Fatalf("unexpected detail: %v", err)
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "narrate", "", "", nil)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected default marker, got %v", err)
	}
}

func TestWrapEmptyDetail(t *testing.T) {
	err := services.Wrap(services.ErrValidation, "", "", "", nil)
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected placeholder detail, got %v", err)
	}
}

func TestIsFatal(t *testing.T) {
	cases := []struct {
		name  string
		err   error
		fatal bool
	}{
		{"nil", nil, false},
		{"synthesis is recoverable", services.Wrap(services.ErrSynthesis, "narrate", "tts", "", nil), false},
		{"encoding is fatal", services.Wrap(services.ErrEncoding, "assemble", "mux", "", nil), true},
		{"state is fatal", services.ErrPipelineState, true},
		{"empty input is fatal", services.ErrEmptyInput, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := services.IsFatal(tc.err); got != tc.fatal {
				t.Fatalf("IsFatal(%v) = %v, want %v", tc.err, got, tc.fatal)
			}
		})
	}
}
