package animate

import (
	"fmt"
	"image"
	"math"
	"math/rand"
	"path/filepath"
	"time"

	"github.com/zachdrouin/ComicAlive/internal/imaging"
	"github.com/zachdrouin/ComicAlive/internal/services"
)

// Style selects the motion effect applied to a panel.
type Style string

const (
	StylePanScan  Style = "pan_scan"
	StyleKenBurns Style = "ken_burns"
	StyleMixed    Style = "mixed"
)

// TransitionKind selects the blend between consecutive panels.
type TransitionKind string

const (
	TransitionFade  TransitionKind = "fade"
	TransitionSlide TransitionKind = "slide"
	TransitionZoom  TransitionKind = "zoom"
)

// Synthesizer renders motion clips at a fixed frame rate. All randomness
// flows through a single seeded source, so a synthesizer with a known seed
// produces identical clips on every run.
type Synthesizer struct {
	fps int
	rng *rand.Rand
}

// NewSynthesizer constructs a synthesizer for the given frame rate. A
// non-positive fps falls back to 24.
func NewSynthesizer(fps int, seed int64) *Synthesizer {
	if fps <= 0 {
		fps = 24
	}
	return &Synthesizer{fps: fps, rng: rand.New(rand.NewSource(seed))}
}

// FPS reports the synthesizer's frame rate.
func (s *Synthesizer) FPS() int { return s.fps }

// FrameCount returns the number of frames rendered for a duration at the
// synthesizer's frame rate. Never less than one.
func (s *Synthesizer) FrameCount(duration time.Duration) int {
	n := int(math.Round(duration.Seconds() * float64(s.fps)))
	if n < 1 {
		return 1
	}
	return n
}

// PickStyle resolves the mixed style to a concrete effect with a coin flip.
// Concrete styles pass through unchanged.
func (s *Synthesizer) PickStyle(style Style) Style {
	if style != StyleMixed {
		return style
	}
	if s.rng.Intn(2) == 0 {
		return StylePanScan
	}
	return StyleKenBurns
}

// Still writes a single frame of the image unchanged. Used when an effect
// fails and the panel must still occupy its slot in the sequence.
func (s *Synthesizer) Still(img image.Image, dir string) ([]string, error) {
	return s.writeFrames(dir, []*image.RGBA{imaging.ToRGBA(img)})
}

// writeFrames saves frames as frame_0000.jpg, frame_0001.jpg, ... under dir
// and returns the paths in render order.
func (s *Synthesizer) writeFrames(dir string, frames []*image.RGBA) ([]string, error) {
	paths := make([]string, 0, len(frames))
	for i, frame := range frames {
		path := filepath.Join(dir, fmt.Sprintf("frame_%04d.jpg", i))
		if err := imaging.Save(path, frame); err != nil {
			return nil, services.Wrap(services.ErrSynthesis, "animate", "write frames", fmt.Sprintf("frame %d", i), err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
