package animate

import (
	"image"
	"image/color"
	"time"

	"github.com/zachdrouin/ComicAlive/internal/imaging"
)

const kenBurnsMaxZoom = 1.3

// KenBurns renders a slow zoom clip. Direction (in or out) and the pan
// offset are drawn from the synthesizer's random source; the scale and
// offset interpolate linearly across the clip. Areas the scaled image no
// longer covers are filled black.
func (s *Synthesizer) KenBurns(img image.Image, duration time.Duration, dir string) ([]string, error) {
	src := imaging.ToRGBA(img)
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	n := s.FrameCount(duration)

	startScale, endScale := 1.0, kenBurnsMaxZoom
	if s.rng.Intn(2) == 1 {
		startScale, endScale = endScale, startScale
	}

	// Pan offset at full zoom stays within the extra image the zoom buys,
	// so the camera never leaves the picture while zoomed in.
	maxOX := (kenBurnsMaxZoom - 1) * float64(w) / 2
	maxOY := (kenBurnsMaxZoom - 1) * float64(h) / 2
	panDX := (s.rng.Float64()*2 - 1) * maxOX
	panDY := (s.rng.Float64()*2 - 1) * maxOY

	frames := make([]*image.RGBA, 0, n)
	for i := 0; i < n; i++ {
		t := progress(i, n)
		scale := startScale + (endScale-startScale)*t
		// Offset scales with the zoom excess: zero at scale 1.0, full pan
		// at maximum zoom.
		k := (scale - 1.0) / (kenBurnsMaxZoom - 1.0)
		frames = append(frames, imaging.AffineScale(src, scale, panDX*k, panDY*k, color.Black))
	}
	return s.writeFrames(dir, frames)
}
