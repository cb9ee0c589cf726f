package capture

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("png.Encode failed: %v", err)
	}
	return buf.Bytes()
}

func TestValidateAcceptsRealPNG(t *testing.T) {
	if err := Validate(encodePNG(t, 4, 3)); err != nil {
		t.Fatalf("Validate failed on a real PNG: %v", err)
	}
}

func TestValidateRejectsEmptyData(t *testing.T) {
	if err := Validate(nil); !errors.Is(err, ErrNothingToCapture) {
		t.Fatalf("Validate(nil) = %v, want ErrNothingToCapture", err)
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	if err := Validate([]byte("definitely not a png")); !errors.Is(err, ErrNothingToCapture) {
		t.Fatalf("Validate(garbage) = %v, want ErrNothingToCapture", err)
	}
}
