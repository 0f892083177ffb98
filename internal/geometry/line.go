// Package geometry converts detector line geometry into axis-aligned
// band-pixel boxes and classifies line orientation.
package geometry

import (
	"math"

	"github.com/mizutori/pagelens/internal/ocr"
)

// Line is detector geometry for a single text line, normalized to the image
// it was detected in: center and size are fractions in [0,1], rotation is
// radians about the center.
type Line struct {
	CenterX  float64
	CenterY  float64
	Width    float64
	Height   float64
	Rotation float64
}

// rotationThreshold is the minimum |rotation| at which the reported angle,
// rather than the aspect ratio, decides orientation.
const rotationThreshold = 0.1

// verticalAngleTolerance is how close |rotation| must be to 90 degrees for a
// rotated line to count as vertical.
const verticalAngleTolerance = 0.5

// PixelBox computes the tight axis-aligned box of the line in band-pixel
// space. The detector may report rotated geometry; an unrotated box around
// the reported width/height would be too loose (or mis-tight) for rotated
// lines, so the four corners are rotated about the center and the min/max
// extents taken.
func (l Line) PixelBox(bandW, bandH int) ocr.BoundingBox {
	w := float64(bandW)
	h := float64(bandH)

	cx := l.CenterX * w
	cy := l.CenterY * h
	halfW := l.Width * w / 2
	halfH := l.Height * h / 2

	sin, cos := math.Sincos(l.Rotation)

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range [4][2]float64{
		{-halfW, -halfH},
		{halfW, -halfH},
		{halfW, halfH},
		{-halfW, halfH},
	} {
		x := cx + c[0]*cos - c[1]*sin
		y := cy + c[0]*sin + c[1]*cos
		minX = math.Min(minX, x)
		minY = math.Min(minY, y)
		maxX = math.Max(maxX, x)
		maxY = math.Max(maxY, y)
	}

	return ocr.BoundingBox{
		X:        minX,
		Y:        minY,
		Width:    maxX - minX,
		Height:   maxY - minY,
		Rotation: l.Rotation,
	}
}

// Vertical classifies the line's reading orientation. Significantly rotated
// lines are vertical iff the rotation is close to plus or minus 90 degrees;
// otherwise the pixel aspect ratio decides, with ties counting as vertical.
func (l Line) Vertical(bandW, bandH int) bool {
	if math.Abs(l.Rotation) > rotationThreshold {
		return math.Abs(math.Abs(l.Rotation)-math.Pi/2) < verticalAngleTolerance
	}
	return l.Width*float64(bandW) <= l.Height*float64(bandH)
}

// Orientation returns the ocr orientation string for the line.
func (l Line) Orientation(bandW, bandH int) string {
	if l.Vertical(bandW, bandH) {
		return ocr.OrientationVertical
	}
	return ocr.OrientationHorizontal
}
