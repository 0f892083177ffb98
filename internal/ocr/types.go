// Package ocr defines the result model shared by the pipeline, cache, and
// HTTP surface. Results are immutable once emitted by the merge engine.
package ocr

// Orientation values for ForcedOrientation.
const (
	OrientationVertical   = "vertical"
	OrientationHorizontal = "horizontal"
)

// BoundingBox is an axis-aligned box. Depending on the stage it is expressed
// in band pixels (pre-stitch) or as fractions of the full image (post-stitch,
// all values in [0,1]). Rotation is radians and carried through unchanged.
type BoundingBox struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rotation float64 `json:"rotation,omitempty"`
}

// Right returns the right edge of the box.
func (b BoundingBox) Right() float64 { return b.X + b.Width }

// Bottom returns the bottom edge of the box.
func (b BoundingBox) Bottom() float64 { return b.Y + b.Height }

// CenterX returns the horizontal center of the box.
func (b BoundingBox) CenterX() float64 { return b.X + b.Width/2 }

// CenterY returns the vertical center of the box.
func (b BoundingBox) CenterY() float64 { return b.Y + b.Height/2 }

// Result is one detected (or merged) text region.
type Result struct {
	Text             string      `json:"text"`
	TightBoundingBox BoundingBox `json:"tightBoundingBox"`

	// IsMerged is set by the merge engine when the region was assembled
	// from multiple raw detections.
	IsMerged bool `json:"isMerged,omitempty"`

	// ForcedOrientation is "vertical" or "horizontal"; for merged groups it
	// is the majority vote across members.
	ForcedOrientation string `json:"forcedOrientation,omitempty"`
}
