package detect

import (
	"image"
	"sort"

	"github.com/zachdrouin/ComicAlive/internal/imaging"
)

const (
	// Panel aspect ratio bounds; anything outside is a detection artifact.
	minPanelAspect = 0.1
	maxPanelAspect = 10.0
	// edgeMarginRatio scales min(W, H) into the corner exclusion margin.
	edgeMarginRatio = 0.01
	// overlapThreshold is the fraction of the smaller rectangle's area the
	// intersection must exceed before two candidates merge.
	overlapThreshold = 0.3

	morphKernel      = 3
	dilateIterations = 2
	erodeIterations  = 1
)

// Options tunes the panel detector.
type Options struct {
	// MinAreaRatio and MaxAreaRatio bound panel area relative to page area.
	MinAreaRatio float64
	MaxAreaRatio float64
	// Threshold is the inverted-binarization luminance cutoff.
	Threshold uint8
}

// DefaultOptions returns the detector tuning used when callers pass zero
// values.
func DefaultOptions() Options {
	return Options{MinAreaRatio: 0.01, MaxAreaRatio: 0.9, Threshold: 220}
}

// Detector finds panel rectangles on a page image.
type Detector struct {
	opts Options
}

// NewDetector constructs a panel detector. Zero option fields fall back to
// defaults.
func NewDetector(opts Options) *Detector {
	def := DefaultOptions()
	if opts.MinAreaRatio <= 0 {
		opts.MinAreaRatio = def.MinAreaRatio
	}
	if opts.MaxAreaRatio <= 0 {
		opts.MaxAreaRatio = def.MaxAreaRatio
	}
	if opts.Threshold == 0 {
		opts.Threshold = def.Threshold
	}
	return &Detector{opts: opts}
}

// Detect returns the panel rectangles of a page in reading order. An image
// with no detectable panels yields an empty slice, not an error; the caller
// decides whether to fall back to the whole page as one panel.
func (d *Detector) Detect(img image.Image) []imaging.Rect {
	bounds := img.Bounds()
	pageW, pageH := bounds.Dx(), bounds.Dy()
	pageArea := pageW * pageH
	if pageArea == 0 {
		return nil
	}

	gray := imaging.Grayscale(img)
	mask := imaging.Threshold(gray, d.opts.Threshold, true)
	mask = imaging.Dilate(mask, morphKernel, dilateIterations)
	mask = imaging.Erode(mask, morphKernel, erodeIterations)

	contours := imaging.FindContours(mask)

	minArea := d.opts.MinAreaRatio * float64(pageArea)
	maxArea := d.opts.MaxAreaRatio * float64(pageArea)
	edgeMargin := int(edgeMarginRatio * float64(min(pageW, pageH)))

	candidates := make([]imaging.Rect, 0, len(contours))
	for _, c := range contours {
		area := float64(c.Area)
		if area < minArea || area > maxArea {
			continue
		}
		box := c.Bounds
		aspect := box.AspectRatio()
		if aspect < minPanelAspect || aspect > maxPanelAspect {
			continue
		}
		// A rectangle pinned into the top-left corner is a partial panel
		// left over from a bleeding border.
		if box.X < edgeMargin && box.Y < edgeMargin {
			continue
		}
		candidates = append(candidates, box)
	}

	merged := MergeOverlapping(candidates, overlapThreshold)
	SortReadingOrder(merged)
	return merged
}

// SortReadingOrder orders rectangles top-to-bottom, then left-to-right. This
// ordering is the single source of truth for playback sequence downstream.
func SortReadingOrder(rects []imaging.Rect) {
	sort.SliceStable(rects, func(i, j int) bool {
		if rects[i].Y != rects[j].Y {
			return rects[i].Y < rects[j].Y
		}
		return rects[i].X < rects[j].X
	})
}
