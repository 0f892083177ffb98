package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func TestDecodeDownsamplesDeepImages(t *testing.T) {
	src := image.NewRGBA64(image.Rect(0, 0, 4, 4))
	src.SetRGBA64(1, 2, color.RGBA64{R: 0xabcd, G: 0x1234, B: 0xffff, A: 0xffff})

	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}

	img, err := Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if _, deep := img.(*image.RGBA64); deep {
		t.Fatal("16-bit image not downsampled")
	}

	r, g, b, _ := img.At(1, 2).RGBA()
	if uint8(r>>8) != 0xab || uint8(g>>8) != 0x12 || uint8(b>>8) != 0xff {
		t.Errorf("high bytes = %02x %02x %02x, want ab 12 ff", r>>8, g>>8, b>>8)
	}
}

func TestDecodeKeepsEightBitImages(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))

	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}

	img, err := Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if isDeep(img) {
		t.Error("8-bit image reported as deep")
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode([]byte("not an image"))
	if err == nil {
		t.Fatal("expected error for non-image data")
	}
	var derr *DecodeError
	if !errors.As(err, &derr) {
		t.Errorf("error type = %T, want *DecodeError", err)
	}
}
