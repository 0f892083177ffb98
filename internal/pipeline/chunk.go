package pipeline

import (
	"github.com/mizutori/pagelens/internal/merge"
	"github.com/mizutori/pagelens/internal/ocr"
)

// RawChunk is one decoded band's pre-merge lines together with the geometry
// needed to finish processing it: the band's pixel dimensions, its vertical
// offset within the full image, and the full image's pixel dimensions. It is
// a replayable fixture; merging and stitching run on it without any network
// access.
type RawChunk struct {
	// Lines are normalized detections with band-pixel boxes.
	Lines []ocr.Result `json:"lines"`

	Width   int `json:"width"`
	Height  int `json:"height"`
	OffsetY int `json:"offsetY"`

	ImageWidth  int `json:"imageWidth"`
	ImageHeight int `json:"imageHeight"`
}

// MergeAndStitch merges the chunk's lines and maps the results into
// whole-image normalized coordinates. Lines are clustered only within the
// band; stitched y-ranges from successive bands never merge across the band
// boundary.
func (c RawChunk) MergeAndStitch(cfg merge.Config) []ocr.Result {
	merged := merge.Merge(c.Lines, c.Width, c.Height, cfg)

	fullW := float64(c.ImageWidth)
	fullH := float64(c.ImageHeight)

	out := make([]ocr.Result, 0, len(merged))
	for _, res := range merged {
		b := res.TightBoundingBox
		res.TightBoundingBox = ocr.BoundingBox{
			X:        b.X / fullW,
			Y:        (b.Y + float64(c.OffsetY)) / fullH,
			Width:    b.Width / fullW,
			Height:   b.Height / fullH,
			Rotation: b.Rotation,
		}
		out = append(out, res)
	}
	return out
}
