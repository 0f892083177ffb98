package merge

// Config holds the calibration constants for the merge engine. All distance
// and size thresholds are expressed relative to the sub-band's robust median
// font size, so the engine self-calibrates to pages with wildly different
// glyph sizes and mixed vertical/horizontal layouts.
type Config struct {
	// Enabled disables merging entirely when false; raw lines pass through.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// DistK scales the robust median into the maximum reading-axis gap
	// between mergeable lines.
	DistK float64 `mapstructure:"dist_k" yaml:"dist_k"`

	// FontRatio is the maximum font-size ratio between mergeable lines.
	FontRatio float64 `mapstructure:"font_ratio" yaml:"font_ratio"`

	// MixedFontRatio replaces FontRatio when exactly one of the pair is a
	// primary line; size-mismatched pairs get the stricter bound.
	MixedFontRatio float64 `mapstructure:"mixed_font_ratio" yaml:"mixed_font_ratio"`

	// OverlapMin is the minimum cross-axis overlap ratio (overlap length
	// over the smaller cross-axis extent).
	OverlapMin float64 `mapstructure:"overlap_min" yaml:"overlap_min"`

	// MixedOverlapMin replaces OverlapMin when exactly one of the pair is
	// primary.
	MixedOverlapMin float64 `mapstructure:"mixed_overlap_min" yaml:"mixed_overlap_min"`

	// MinLineRatio is the fraction of the robust median a line's font size
	// must reach to count as primary.
	MinLineRatio float64 `mapstructure:"min_line_ratio" yaml:"min_line_ratio"`

	// AddSpaceOnMerge joins merged text with a literal space instead of a
	// zero-width space.
	AddSpaceOnMerge bool `mapstructure:"add_space_on_merge" yaml:"add_space_on_merge"`
}

// DefaultConfig returns the calibrated defaults.
func DefaultConfig() Config {
	return Config{
		Enabled:         true,
		DistK:           1.2,
		FontRatio:       1.3,
		MixedFontRatio:  1.1,
		OverlapMin:      0.1,
		MixedOverlapMin: 0.5,
		MinLineRatio:    0.5,
		AddSpaceOnMerge: false,
	}
}
