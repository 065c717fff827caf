package services_test

import (
	"errors"
	"strings"
	"testing"

	"dashrip/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "extract", "decode", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"extract", "decode", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapNilMarkerDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "parse", "albums", "no marker", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
}

func TestUserMessage(t *testing.T) {
	validation := services.Wrap(services.ErrValidation, "rip", "preflight", "game directory missing MuseDash.exe", nil)
	if msg := services.UserMessage(validation); !strings.Contains(msg, "MuseDash.exe") {
		t.Fatalf("expected validation detail to surface, got %q", msg)
	}

	tool := services.Wrap(services.ErrExternalTool, "extract", "decode", "vgmstream exited 1", errors.New("exit status 1"))
	if msg := services.UserMessage(tool); strings.Contains(msg, "vgmstream") {
		t.Fatalf("expected generic message for tool failure, got %q", msg)
	}

	if msg := services.UserMessage(nil); msg != "" {
		t.Fatalf("expected empty message for nil error, got %q", msg)
	}
}
