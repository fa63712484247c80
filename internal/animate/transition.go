package animate

import (
	"image"
	"image/draw"
	"math"
	"time"

	"github.com/zachdrouin/ComicAlive/internal/imaging"
)

// Transition renders a clip bridging two panels. The second image is resized
// to the first image's dimensions before blending. Unknown kinds render as a
// fade.
func (s *Synthesizer) Transition(a, b image.Image, kind TransitionKind, duration time.Duration, dir string) ([]string, error) {
	from := imaging.ToRGBA(a)
	w, h := from.Bounds().Dx(), from.Bounds().Dy()
	to := imaging.Resize(b, w, h)
	n := s.FrameCount(duration)

	frames := make([]*image.RGBA, 0, n)
	for i := 0; i < n; i++ {
		t := progress(i, n)
		switch kind {
		case TransitionSlide:
			frames = append(frames, slideFrame(from, to, t))
		case TransitionZoom:
			frames = append(frames, zoomFrame(from, to, t))
		default:
			frames = append(frames, imaging.Blend(from, to, t))
		}
	}
	return s.writeFrames(dir, frames)
}

// slideFrame slides the incoming image in from the right edge.
func slideFrame(from, to *image.RGBA, t float64) *image.RGBA {
	w, h := from.Bounds().Dx(), from.Bounds().Dy()
	offset := int(math.Round(float64(w) * t))
	if offset <= 0 {
		return imaging.Clone(from)
	}
	if offset >= w {
		return imaging.Clone(to)
	}
	frame := imaging.Clone(from)
	draw.Draw(frame, image.Rect(w-offset, 0, w, h), to, image.Point{}, draw.Src)
	return frame
}

// zoomFrame grows the incoming image from the center over the outgoing one.
func zoomFrame(from, to *image.RGBA, t float64) *image.RGBA {
	w, h := from.Bounds().Dx(), from.Bounds().Dy()
	sw := int(math.Round(float64(w) * t))
	sh := int(math.Round(float64(h) * t))
	if sw < 1 || sh < 1 {
		return imaging.Clone(from)
	}
	if sw >= w && sh >= h {
		return imaging.Clone(to)
	}
	scaled := imaging.Resize(to, sw, sh)
	frame := imaging.Clone(from)
	x0 := (w - sw) / 2
	y0 := (h - sh) / 2
	draw.Draw(frame, image.Rect(x0, y0, x0+sw, y0+sh), scaled, image.Point{}, draw.Src)
	return frame
}
