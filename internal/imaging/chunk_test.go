package imaging

import (
	"errors"
	"image"
	"strings"
	"testing"
)

func TestSplitBands(t *testing.T) {
	tests := []struct {
		name    string
		height  int
		heights []int
		offsets []int
	}{
		{"short image single band", 500, []int{500}, []int{0}},
		{"exactly one band", 3000, []int{3000}, []int{0}},
		{"two even bands", 6000, []int{3000, 3000}, []int{0, 3000}},
		{"short remainder", 6500, []int{3000, 3000, 500}, []int{0, 3000, 6000}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := image.NewRGBA(image.Rect(0, 0, 800, tt.height))
			bands := SplitBands(img)

			if len(bands) != len(tt.heights) {
				t.Fatalf("got %d bands, want %d", len(bands), len(tt.heights))
			}
			for i, b := range bands {
				if b.Height() != tt.heights[i] {
					t.Errorf("band %d height = %d, want %d", i, b.Height(), tt.heights[i])
				}
				if b.OffsetY != tt.offsets[i] {
					t.Errorf("band %d offset = %d, want %d", i, b.OffsetY, tt.offsets[i])
				}
				if b.Width() != 800 {
					t.Errorf("band %d width = %d, want 800", i, b.Width())
				}
			}
		})
	}
}

func TestSplitBandsPreservesPixels(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 6200))
	// Mark one pixel in what will become the third band.
	img.Pix[img.PixOffset(3, 6100)] = 0xff

	bands := SplitBands(img)
	if len(bands) != 3 {
		t.Fatalf("got %d bands, want 3", len(bands))
	}

	last := bands[2]
	r, _, _, _ := last.Image.At(3, 6100).RGBA()
	if r == 0 {
		t.Error("marked pixel lost during split")
	}
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestEncodePNGFailureIsNotADecodeError(t *testing.T) {
	err := encodePNG(failingWriter{}, image.NewRGBA(image.Rect(0, 0, 4, 4)))
	if err == nil {
		t.Fatal("expected error from failing writer")
	}

	var derr *DecodeError
	if errors.As(err, &derr) {
		t.Errorf("encode failure reported as *DecodeError: %v", err)
	}
	if !strings.Contains(err.Error(), "encode band") {
		t.Errorf("error = %q, want encode context", err)
	}
}

func TestEncodePNGRoundTrip(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 32, 16))
	data, err := EncodePNG(img)
	if err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}

	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.Bounds().Dx() != 32 || decoded.Bounds().Dy() != 16 {
		t.Errorf("round-trip bounds = %v", decoded.Bounds())
	}
}
