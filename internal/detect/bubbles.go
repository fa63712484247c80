package detect

import (
	"context"
	"image"
	"strings"

	"github.com/zachdrouin/ComicAlive/internal/imaging"
)

const (
	minBubbleAspect = 0.3
	maxBubbleAspect = 3.0

	adaptiveBlock    = 11
	adaptiveC        = 2.0
	bubbleDilateIter = 2
)

// TextExtractor is the OCR collaborator contract. Implementations return an
// empty string on no-text or failure; they do not propagate OCR errors to
// the detection layer.
type TextExtractor interface {
	ExtractText(ctx context.Context, img image.Image) (string, error)
}

// TextRegion is a speech bubble that yielded non-empty text.
type TextRegion struct {
	Box  imaging.Rect
	Text string
}

// BubbleOptions tunes the speech-bubble finder.
type BubbleOptions struct {
	// MinArea drops contours below this pixel count.
	MinArea int
	// MinSolidity is the minimum contourArea/convexHullArea; bubbles are
	// convex, irregular ink blots are not.
	MinSolidity float64
}

// DefaultBubbleOptions returns the bubble finder tuning used when callers
// pass zero values.
func DefaultBubbleOptions() BubbleOptions {
	return BubbleOptions{MinArea: 100, MinSolidity: 0.7}
}

// BubbleFinder finds speech-bubble rectangles inside a panel image.
type BubbleFinder struct {
	opts BubbleOptions
}

// NewBubbleFinder constructs a bubble finder. Zero option fields fall back to
// defaults.
func NewBubbleFinder(opts BubbleOptions) *BubbleFinder {
	def := DefaultBubbleOptions()
	if opts.MinArea <= 0 {
		opts.MinArea = def.MinArea
	}
	if opts.MinSolidity <= 0 {
		opts.MinSolidity = def.MinSolidity
	}
	return &BubbleFinder{opts: opts}
}

// Detect returns candidate bubble rectangles in reading order. Boxes are
// relative to the panel image's origin.
func (f *BubbleFinder) Detect(panel image.Image) []imaging.Rect {
	gray := imaging.Grayscale(panel)
	mask := imaging.AdaptiveThreshold(gray, adaptiveBlock, adaptiveC, true)
	mask = imaging.Dilate(mask, morphKernel, bubbleDilateIter)

	var bubbles []imaging.Rect
	for _, c := range imaging.FindContours(mask) {
		if c.Area < f.opts.MinArea {
			continue
		}
		aspect := c.Bounds.AspectRatio()
		if aspect < minBubbleAspect || aspect > maxBubbleAspect {
			continue
		}
		if c.Solidity() <= f.opts.MinSolidity {
			continue
		}
		bubbles = append(bubbles, c.Bounds)
	}
	SortReadingOrder(bubbles)
	return bubbles
}

// FindText detects bubbles and extracts their text through the OCR
// collaborator. Bubbles whose text comes back empty or whitespace-only are
// dropped from the returned set.
func (f *BubbleFinder) FindText(ctx context.Context, panel image.Image, ocr TextExtractor) []TextRegion {
	var regions []TextRegion
	for _, box := range f.Detect(panel) {
		crop := imaging.Crop(panel, box)
		text, err := ocr.ExtractText(ctx, crop)
		if err != nil {
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		regions = append(regions, TextRegion{Box: box, Text: text})
	}
	return regions
}
