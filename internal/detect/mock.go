package detect

import (
	"context"
	"sync/atomic"
	"time"
)

const MockDetectorName = "mock"

// MockDetector is a Detector for testing. It replays canned paragraphs
// without any network access.
type MockDetector struct {
	// Configurable behavior
	Paragraphs []Paragraph
	Err        error
	Latency    time.Duration
	// FailFirst makes the first N calls fail with Err before succeeding.
	FailFirst int

	// State
	callCount atomic.Int64
}

// NewMockDetector creates a mock detector returning the given paragraphs.
func NewMockDetector(paragraphs []Paragraph) *MockDetector {
	return &MockDetector{Paragraphs: paragraphs}
}

// Name returns the detector identifier.
func (d *MockDetector) Name() string { return MockDetectorName }

// Calls returns how many times Detect has been invoked.
func (d *MockDetector) Calls() int { return int(d.callCount.Load()) }

// Detect returns the canned paragraphs, honoring Latency, Err, and
// FailFirst.
func (d *MockDetector) Detect(ctx context.Context, image []byte, lang string) ([]Paragraph, error) {
	count := d.callCount.Add(1)

	if d.Latency > 0 {
		select {
		case <-time.After(d.Latency):
		case <-ctx.Done():
			return nil, &OracleError{Detector: d.Name(), Err: ctx.Err()}
		}
	}

	if d.Err != nil && (d.FailFirst == 0 || count <= int64(d.FailFirst)) {
		return nil, &OracleError{Detector: d.Name(), Err: d.Err}
	}
	return d.Paragraphs, nil
}
