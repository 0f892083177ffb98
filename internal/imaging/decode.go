package imaging

import (
	"bytes"
	"image"
	"image/color"

	// Registered decoders for format sniffing.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Decode sniffs the image format and decodes it. High-bit-depth images
// (16 bits per channel, as produced by archival PNG/TIFF scans) come back
// from the generic decoders as 64-bit pixel buffers that the downstream
// band encoder handles poorly, so they are routed through a dedicated
// downsampling path that keeps the high byte of each channel.
func Decode(data []byte) (image.Image, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Format: format, Err: err}
	}
	if isDeep(img) {
		img = downsampleDeep(img)
	}
	return img, nil
}

// isDeep reports whether the decoded image uses 16-bit channels.
func isDeep(img image.Image) bool {
	switch img.ColorModel() {
	case color.RGBA64Model, color.NRGBA64Model, color.Gray16Model:
		return true
	}
	return false
}

// downsampleDeep converts a 16-bit-per-channel image to 8-bit RGBA by taking
// the high byte of each channel.
func downsampleDeep(src image.Image) image.Image {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, a := src.At(x, y).RGBA()
			i := dst.PixOffset(x-b.Min.X, y-b.Min.Y)
			dst.Pix[i+0] = uint8(r >> 8)
			dst.Pix[i+1] = uint8(g >> 8)
			dst.Pix[i+2] = uint8(bl >> 8)
			dst.Pix[i+3] = uint8(a >> 8)
		}
	}
	return dst
}
