// Package detect locates panels and speech bubbles on comic pages.
//
// The panel detector binarizes the page with an inverted luminance threshold,
// closes stroke gaps with dilate/erode, extracts external contours, filters
// candidates by area, aspect ratio, and edge proximity, merges overlapping
// rectangles, and returns the survivors in reading order (top-to-bottom, then
// left-to-right). The bubble finder runs the same contour pipeline with
// adaptive thresholding and an added convexity (solidity) filter tuned for
// speech-bubble shapes, delegating text extraction to an OCR collaborator.
//
// Both detectors are pure functions of an image and their options; they hold
// no mutable state and are safe for concurrent use.
package detect
