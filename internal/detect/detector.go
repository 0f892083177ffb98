// Package detect is the boundary to the external text-line detection
// service. The detector is consumed as a black box: it receives an image and
// a language hint and returns paragraphs of lines with normalized, possibly
// rotated geometry.
package detect

import (
	"context"
	"fmt"
)

// Geometry is a detected line's position, normalized to the submitted image:
// center and size are fractions in [0,1], rotation is radians.
type Geometry struct {
	CenterX  float64 `json:"centerX"`
	CenterY  float64 `json:"centerY"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rotation float64 `json:"rotation"`
}

// Line is a single detected text line. Geometry is nil when the service
// could not localize the line; such lines are dropped by the pipeline.
type Line struct {
	Text     string    `json:"text"`
	Geometry *Geometry `json:"geometry,omitempty"`
}

// Paragraph groups lines the detector considers one block.
type Paragraph struct {
	Lines []Line `json:"lines"`
}

// Detector extracts text lines with geometry from an image.
type Detector interface {
	// Name returns the detector identifier.
	Name() string

	// Detect runs line detection on the image. lang is a language hint
	// (e.g. "ja"); implementations may ignore it.
	Detect(ctx context.Context, image []byte, lang string) ([]Paragraph, error)
}

// OracleError reports a failure of the external detection service.
type OracleError struct {
	Detector string
	Err      error
}

func (e *OracleError) Error() string {
	return fmt.Sprintf("detector %s: %v", e.Detector, e.Err)
}

func (e *OracleError) Unwrap() error { return e.Err }
