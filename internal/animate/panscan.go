package animate

import (
	"image"
	"math"
	"time"

	"github.com/zachdrouin/ComicAlive/internal/imaging"
)

const (
	// Fraction of the tightest fit used for the pan/scan end zoom, leaving
	// breathing room around the target region.
	panScanFit = 0.8
	// Zoom reached at the end of a drift pan over a page with no target.
	driftMaxZoom = 1.5
)

// PanScan renders a clip that glides from the whole image into the target
// region, easing both the zoom and the camera center. A nil or empty target
// falls back to a random drift pan across the page.
func (s *Synthesizer) PanScan(img image.Image, target *imaging.Rect, duration time.Duration, dir string) ([]string, error) {
	src := imaging.ToRGBA(img)
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	n := s.FrameCount(duration)

	if target == nil || target.Empty() {
		return s.driftPan(src, n, dir)
	}

	startZoom := 1.0
	endZoom := panScanFit * math.Min(float64(w)/float64(target.W), float64(h)/float64(target.H))
	if endZoom < 1.0 {
		endZoom = 1.0
	}
	startCX, startCY := float64(w)/2, float64(h)/2
	endCX := float64(target.X) + float64(target.W)/2
	endCY := float64(target.Y) + float64(target.H)/2

	frames := make([]*image.RGBA, 0, n)
	for i := 0; i < n; i++ {
		f := easeInOutQuad(progress(i, n))
		zoom := startZoom + (endZoom-startZoom)*f
		cx := startCX + (endCX-startCX)*f
		cy := startCY + (endCY-startCY)*f
		frames = append(frames, cropView(src, cx, cy, zoom))
	}
	return s.writeFrames(dir, frames)
}

// driftPan pans from the image center toward a random point while zooming
// from 1.0 to driftMaxZoom.
func (s *Synthesizer) driftPan(src *image.RGBA, n int, dir string) ([]string, error) {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()

	endCW := float64(w) / driftMaxZoom
	endCH := float64(h) / driftMaxZoom
	endCX := endCW/2 + s.rng.Float64()*(float64(w)-endCW)
	endCY := endCH/2 + s.rng.Float64()*(float64(h)-endCH)
	startCX, startCY := float64(w)/2, float64(h)/2

	frames := make([]*image.RGBA, 0, n)
	for i := 0; i < n; i++ {
		f := easeInOutQuad(progress(i, n))
		zoom := 1.0 + (driftMaxZoom-1.0)*f
		cx := startCX + (endCX-startCX)*f
		cy := startCY + (endCY-startCY)*f
		frames = append(frames, cropView(src, cx, cy, zoom))
	}
	return s.writeFrames(dir, frames)
}

// cropView crops the window of size (w/zoom, h/zoom) centered as close to
// (cx, cy) as the image allows, then scales it back to the source resolution.
func cropView(src *image.RGBA, cx, cy, zoom float64) *image.RGBA {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	cw := int(math.Round(float64(w) / zoom))
	ch := int(math.Round(float64(h) / zoom))
	if cw < 1 {
		cw = 1
	}
	if ch < 1 {
		ch = 1
	}

	x := clamp(int(math.Round(cx-float64(cw)/2)), 0, w-cw)
	y := clamp(int(math.Round(cy-float64(ch)/2)), 0, h-ch)

	crop := imaging.Crop(src, imaging.Rect{X: x, Y: y, W: cw, H: ch})
	if cw == w && ch == h {
		return crop
	}
	return imaging.Resize(crop, w, h)
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
