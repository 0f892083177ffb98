// Package merge reassembles fragmented line detections into the logical
// lines and balloons a reader perceives. The external detector frequently
// splits one visual line into several fragments; this engine joins them back
// together using geometry alone.
package merge

import (
	"math"
	"sort"

	"github.com/mizutori/pagelens/internal/ocr"
)

const (
	// normWidth is the width of the normalized space all boxes are rescaled
	// into before thresholds apply, making them resolution-independent.
	normWidth = 1000.0

	// subBandLimit caps the normalized height of a clustering sub-band.
	subBandLimit = 3000.0

	// defaultFontSize stands in for the robust median when a sub-band has
	// no lines of an orientation.
	defaultFontSize = 20.0

	// zeroWidthSpace joins merged fragments without introducing a visible
	// gap in CJK text.
	zeroWidthSpace = "​"

	// centerEpsilon is the tolerance when comparing member centers during
	// reading-order sorting.
	centerEpsilon = 0.001
)

// processedLine carries a line's geometry rescaled into the normalized
// space.
type processedLine struct {
	index    int // position in the input slice
	vertical bool
	fontSize float64 // cross-axis extent
	box      ocr.BoundingBox
}

// Merge clusters same-orientation fragments within one band into logical
// lines. Boxes are in band-pixel space; bandW/bandH are the band's pixel
// dimensions. Singletons pass through unaltered, so merging is idempotent.
func Merge(lines []ocr.Result, bandW, bandH int, cfg Config) []ocr.Result {
	if !cfg.Enabled || len(lines) < 2 {
		return lines
	}

	groups := group(lines, bandW, bandH, cfg)

	final := make([]ocr.Result, 0, len(groups))
	for _, idxs := range groups {
		if len(idxs) == 1 {
			final = append(final, lines[idxs[0]])
			continue
		}
		final = append(final, mergeGroup(lines, idxs, cfg))
	}
	return final
}

// group rescales lines into the normalized space, partitions very tall bands
// into sub-bands, and unions mergeable pairs within each sub-band. It
// returns groups as index lists into lines.
func group(lines []ocr.Result, bandW, bandH int, cfg Config) [][]int {
	scale := normWidth / float64(bandW)
	normHeight := float64(bandH) * scale

	processed := make([]processedLine, len(lines))
	for i, l := range lines {
		b := l.TightBoundingBox
		box := ocr.BoundingBox{
			X:      b.X * scale,
			Y:      b.Y * scale,
			Width:  b.Width * scale,
			Height: b.Height * scale,
		}
		vertical := box.Width <= box.Height
		fontSize := box.Height
		if vertical {
			fontSize = box.Width
		}
		processed[i] = processedLine{index: i, vertical: vertical, fontSize: fontSize, box: box}
	}

	sort.SliceStable(processed, func(i, j int) bool {
		return processed[i].box.Y < processed[j].box.Y
	})

	var groups [][]int
	for start := 0; start < len(processed); {
		end := len(processed) - 1
		if normHeight > subBandLimit {
			// Sub-band spans from this line's top to the furthest line
			// whose bottom stays within the limit.
			top := processed[start].box.Y
			end = start
			for i := start + 1; i < len(processed); i++ {
				if processed[i].box.Bottom()-top > subBandLimit {
					break
				}
				end = i
			}
		}

		groups = append(groups, clusterSubBand(processed[start:end+1], cfg)...)
		start = end + 1
	}
	return groups
}

// clusterSubBand unions mergeable pairs within one sub-band and returns the
// connected components as index lists into the original input.
func clusterSubBand(sub []processedLine, cfg Config) [][]int {
	var hExtents, vExtents []float64
	for _, l := range sub {
		if l.vertical {
			vExtents = append(vExtents, l.box.Width)
		} else {
			hExtents = append(hExtents, l.box.Height)
		}
	}
	robH := robustMedian(hExtents)
	robW := robustMedian(vExtents)

	uf := newUnionFind(len(sub))
	for i := 0; i < len(sub); i++ {
		for j := i + 1; j < len(sub); j++ {
			if mergeable(&sub[i], &sub[j], robH, robW, cfg) {
				uf.union(i, j)
			}
		}
	}

	// Emit components ordered by their first member.
	members := make(map[int][]int)
	var roots []int
	for i := range sub {
		r := uf.find(i)
		if _, seen := members[r]; !seen {
			roots = append(roots, r)
		}
		members[r] = append(members[r], sub[i].index)
	}

	groups := make([][]int, 0, len(roots))
	for _, r := range roots {
		groups = append(groups, members[r])
	}
	return groups
}

// mergeable applies the calibrated pair rules: same orientation, bounded
// font-size ratio, bounded reading-axis gap, and sufficient cross-axis
// overlap. When exactly one of the pair is primary the stricter ratio and
// overlap bounds apply.
func mergeable(a, b *processedLine, robH, robW float64, cfg Config) bool {
	if a.vertical != b.vertical {
		return false
	}

	rob := robH
	if a.vertical {
		rob = robW
	}
	aPrimary := a.fontSize >= rob*cfg.MinLineRatio
	bPrimary := b.fontSize >= rob*cfg.MinLineRatio
	mixed := aPrimary != bPrimary

	ratioLimit := cfg.FontRatio
	if mixed {
		ratioLimit = cfg.MixedFontRatio
	}
	if math.Max(a.fontSize/b.fontSize, b.fontSize/a.fontSize) > ratioLimit {
		return false
	}

	var gap, overlap float64
	if a.vertical {
		// Vertical text reads across columns: the reading-axis gap is
		// horizontal, the cross-axis overlap vertical.
		gap = math.Max(0, math.Max(a.box.X, b.box.X)-math.Min(a.box.Right(), b.box.Right()))
		overlap = math.Max(0, math.Min(a.box.Bottom(), b.box.Bottom())-math.Max(a.box.Y, b.box.Y))
	} else {
		gap = math.Max(0, math.Max(a.box.Y, b.box.Y)-math.Min(a.box.Bottom(), b.box.Bottom()))
		overlap = math.Max(0, math.Min(a.box.Right(), b.box.Right())-math.Max(a.box.X, b.box.X))
	}

	if gap > rob*cfg.DistK {
		return false
	}

	minCross := math.Min(crossExtent(a), crossExtent(b))
	if minCross > 0 {
		if overlap/minCross < cfg.OverlapMin {
			return false
		}
		if mixed && overlap/minCross < cfg.MixedOverlapMin {
			return false
		}
	}
	return true
}

// crossExtent is the line's extent along the cross axis (height for
// vertical text, width for horizontal).
func crossExtent(l *processedLine) float64 {
	if l.vertical {
		return l.box.Height
	}
	return l.box.Width
}

// robustMedian returns the median of extents, or defaultFontSize when the
// orientation is absent from the sub-band.
func robustMedian(extents []float64) float64 {
	m := median(extents)
	if m > 0 {
		return m
	}
	return defaultFontSize
}

func median(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	s := make([]float64, len(data))
	copy(s, data)
	sort.Float64s(s)
	mid := len(s) / 2
	if len(s)%2 == 0 {
		return (s[mid-1] + s[mid]) / 2
	}
	return s[mid]
}

// mergeGroup combines one multi-member group into a single result: majority
// orientation, reading-order sort, joined text, and the min/max union box.
func mergeGroup(lines []ocr.Result, idxs []int, cfg Config) ocr.Result {
	vertCount := 0
	for _, ix := range idxs {
		b := lines[ix].TightBoundingBox
		if b.Height > b.Width {
			vertCount++
		}
	}
	vertical := vertCount > len(idxs)/2

	sorted := make([]int, len(idxs))
	copy(sorted, idxs)
	sort.SliceStable(sorted, func(i, j int) bool {
		ba := lines[sorted[i]].TightBoundingBox
		bb := lines[sorted[j]].TightBoundingBox
		if vertical {
			// Columns read right to left; within a column, top to bottom.
			if math.Abs(ba.CenterX()-bb.CenterX()) > centerEpsilon {
				return ba.CenterX() > bb.CenterX()
			}
			return ba.CenterY() < bb.CenterY()
		}
		// Rows read top to bottom; within a row, left to right.
		if math.Abs(ba.CenterY()-bb.CenterY()) > centerEpsilon {
			return ba.CenterY() < bb.CenterY()
		}
		return ba.CenterX() < bb.CenterX()
	})

	joiner := zeroWidthSpace
	if cfg.AddSpaceOnMerge {
		joiner = " "
	}

	text := ""
	minX, minY := math.Inf(1), math.Inf(1)
	maxR, maxB := math.Inf(-1), math.Inf(-1)
	for n, ix := range sorted {
		if n > 0 {
			text += joiner
		}
		text += lines[ix].Text

		b := lines[ix].TightBoundingBox
		minX = math.Min(minX, b.X)
		minY = math.Min(minY, b.Y)
		maxR = math.Max(maxR, b.Right())
		maxB = math.Max(maxB, b.Bottom())
	}

	orientation := ocr.OrientationHorizontal
	if vertical {
		orientation = ocr.OrientationVertical
	}

	return ocr.Result{
		Text:              text,
		IsMerged:          true,
		ForcedOrientation: orientation,
		TightBoundingBox: ocr.BoundingBox{
			X:      minX,
			Y:      minY,
			Width:  maxR - minX,
			Height: maxB - minY,
		},
	}
}
