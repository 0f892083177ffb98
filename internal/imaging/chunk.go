package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
)

// MaxBandHeight bounds the height of a single band sent to the detection
// service, capping per-call cost on very tall strip images.
const MaxBandHeight = 3000

// Band is one horizontal slice of a page image.
type Band struct {
	Image image.Image
	// OffsetY is the band's vertical pixel offset within the full image.
	OffsetY int
}

// Width returns the band width in pixels.
func (b Band) Width() int { return b.Image.Bounds().Dx() }

// Height returns the band height in pixels.
func (b Band) Height() int { return b.Image.Bounds().Dy() }

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

// SplitBands slices img into horizontal bands of at most MaxBandHeight
// pixels. The final band may be shorter; a zero-height remainder produces no
// band.
func SplitBands(img image.Image) []Band {
	bounds := img.Bounds()
	fullH := bounds.Dy()

	var bands []Band
	for y := 0; y < fullH; y += MaxBandHeight {
		h := min(MaxBandHeight, fullH-y)
		if h == 0 {
			break
		}
		r := image.Rect(bounds.Min.X, bounds.Min.Y+y, bounds.Max.X, bounds.Min.Y+y+h)
		bands = append(bands, Band{Image: crop(img, r), OffsetY: y})
	}
	return bands
}

// crop extracts r from img, sharing pixels when the source supports
// sub-imaging and copying otherwise.
func crop(img image.Image, r image.Rectangle) image.Image {
	if s, ok := img.(subImager); ok {
		return s.SubImage(r)
	}
	dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Bounds(), img, r.Min, draw.Src)
	return dst
}

// EncodePNG serializes a band image for submission to the detector.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodePNG(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode band: %w", err)
	}
	return nil
}
