// Package pipeline runs the page OCR pipeline: fetch, decode, band
// splitting, line detection, geometry normalization, merging, and
// coordinate stitching back into whole-image normalized space.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/mizutori/pagelens/internal/detect"
	"github.com/mizutori/pagelens/internal/geometry"
	"github.com/mizutori/pagelens/internal/imaging"
	"github.com/mizutori/pagelens/internal/merge"
	"github.com/mizutori/pagelens/internal/ocr"
)

const (
	// DefaultMaxAttempts is the per-page retry budget.
	DefaultMaxAttempts = 3

	// DefaultRetryDelay is the base delay; backoff doubles it per attempt,
	// yielding 1s then 2s waits for the default budget.
	DefaultRetryDelay = time.Second

	// DefaultLanguage is the detector language hint.
	DefaultLanguage = "ja"
)

// Config holds pipeline settings.
type Config struct {
	// Language is the detector language hint.
	Language string
	// MaxAttempts is the retry budget for a whole page pipeline run.
	MaxAttempts uint
	// RetryDelay is the base backoff delay between attempts.
	RetryDelay time.Duration
	// Logger for attempt failures.
	Logger *slog.Logger
}

// MergeConfigFunc returns the current merge calibration; configuration
// hot-reload swaps it between pages, never mid-page.
type MergeConfigFunc func() merge.Config

// Processor runs the whole-page pipeline.
type Processor struct {
	fetcher  *imaging.Fetcher
	detector detect.Detector
	mergeCfg MergeConfigFunc
	cfg      Config
	logger   *slog.Logger
}

// New creates a Processor. mergeCfg may be nil, in which case the merge
// defaults are used.
func New(fetcher *imaging.Fetcher, detector detect.Detector, mergeCfg MergeConfigFunc, cfg Config) *Processor {
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if mergeCfg == nil {
		mergeCfg = func() merge.Config { return merge.DefaultConfig() }
	}
	return &Processor{
		fetcher:  fetcher,
		detector: detector,
		mergeCfg: mergeCfg,
		cfg:      cfg,
		logger:   cfg.Logger,
	}
}

// Backend returns the name of the detection backend in use.
func (p *Processor) Backend() string {
	return p.detector.Name()
}

// Process fetches and OCRs one page, retrying the whole pipeline up to the
// configured budget before surfacing the final error. Results are in
// whole-image normalized coordinates.
func (p *Processor) Process(ctx context.Context, url, user, pass string) ([]ocr.Result, error) {
	var results []ocr.Result
	err := retry.Do(
		func() error {
			var err error
			results, err = p.processOnce(ctx, url, user, pass)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(p.cfg.MaxAttempts),
		retry.Delay(p.cfg.RetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			p.logger.Warn("page pipeline attempt failed",
				"url", url,
				"attempt", n+1,
				"error", err,
			)
		}),
	)
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (p *Processor) processOnce(ctx context.Context, url, user, pass string) ([]ocr.Result, error) {
	raw, err := p.fetcher.Fetch(ctx, url, user, pass)
	if err != nil {
		return nil, err
	}

	img, err := imaging.Decode(raw)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	fullW, fullH := bounds.Dx(), bounds.Dy()

	var final []ocr.Result
	for _, band := range imaging.SplitBands(img) {
		chunk, err := p.detectBand(ctx, band, fullW, fullH)
		if err != nil {
			return nil, err
		}
		final = append(final, chunk.MergeAndStitch(p.mergeCfg())...)
	}
	return final, nil
}

// detectBand runs detection on one band and normalizes the detector's
// geometry into band-pixel boxes.
func (p *Processor) detectBand(ctx context.Context, band imaging.Band, fullW, fullH int) (RawChunk, error) {
	encoded, err := imaging.EncodePNG(band.Image)
	if err != nil {
		return RawChunk{}, err
	}

	paragraphs, err := p.detector.Detect(ctx, encoded, p.cfg.Language)
	if err != nil {
		return RawChunk{}, err
	}

	chunk := RawChunk{
		Width:       band.Width(),
		Height:      band.Height(),
		OffsetY:     band.OffsetY,
		ImageWidth:  fullW,
		ImageHeight: fullH,
	}

	for _, para := range paragraphs {
		for _, line := range para.Lines {
			if line.Geometry == nil {
				continue
			}
			text := ocr.CleanLineText(line.Text)
			if text == "" {
				continue
			}
			g := geometry.Line{
				CenterX:  line.Geometry.CenterX,
				CenterY:  line.Geometry.CenterY,
				Width:    line.Geometry.Width,
				Height:   line.Geometry.Height,
				Rotation: line.Geometry.Rotation,
			}
			chunk.Lines = append(chunk.Lines, ocr.Result{
				Text:              text,
				TightBoundingBox:  g.PixelBox(chunk.Width, chunk.Height),
				ForcedOrientation: g.Orientation(chunk.Width, chunk.Height),
			})
		}
	}
	return chunk, nil
}
