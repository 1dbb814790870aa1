package trace

import (
	"bytes"
	"image"
	"os"
	"path/filepath"
	"testing"
)

func TestRecorderWritesAVI(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.avi")
	rec, err := NewRecorder(path, 32, 16, 24)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := rec.AddFrame(image.NewRGBA(image.Rect(0, 0, 32, 16))); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if err := rec.AddFrame(image.NewRGBA(image.Rect(0, 0, 8, 8))); err == nil {
		t.Fatal("expected a mismatched frame size to be rejected")
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Frames() != 3 {
		t.Fatalf("expected 3 frames, got %d", rec.Frames())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("RIFF")) || !bytes.Contains(data[:16], []byte("AVI ")) {
		t.Fatalf("expected a RIFF AVI header, got %q", data[:16])
	}
}
