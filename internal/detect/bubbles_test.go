package detect_test

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/zachdrouin/ComicAlive/internal/detect"
	"github.com/zachdrouin/ComicAlive/internal/imaging"
)

func newPanel(w, h int) *image.RGBA {
	panel := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(panel, panel.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return panel
}

func drawEllipse(img *image.RGBA, cx, cy, rx, ry int) {
	ink := color.RGBA{R: 20, G: 20, B: 20, A: 255}
	for y := cy - ry; y <= cy+ry; y++ {
		for x := cx - rx; x <= cx+rx; x++ {
			dx := float64(x-cx) / float64(rx)
			dy := float64(y-cy) / float64(ry)
			if dx*dx+dy*dy <= 1.0 {
				img.SetRGBA(x, y, ink)
			}
		}
	}
}

func drawRect(img *image.RGBA, r imaging.Rect) {
	ink := image.NewUniform(color.RGBA{R: 20, G: 20, B: 20, A: 255})
	draw.Draw(img, r.ToImage(), ink, image.Point{}, draw.Src)
}

func TestBubbleFinderAcceptsConvexShape(t *testing.T) {
	panel := newPanel(200, 150)
	drawEllipse(panel, 100, 70, 40, 30)

	bubbles := detect.NewBubbleFinder(detect.BubbleOptions{}).Detect(panel)
	if len(bubbles) != 1 {
		t.Fatalf("expected 1 bubble, got %d: %+v", len(bubbles), bubbles)
	}
	b := bubbles[0]
	if b.X > 65 || b.X < 50 || b.Y > 45 || b.Y < 30 {
		t.Fatalf("bubble box out of place: %+v", b)
	}
}

func TestBubbleFinderRejectsConcaveShape(t *testing.T) {
	panel := newPanel(200, 200)
	// An L-shaped blot: hull covers the missing quadrant, solidity drops
	// below the bubble cutoff.
	drawRect(panel, imaging.Rect{X: 40, Y: 40, W: 20, H: 100})
	drawRect(panel, imaging.Rect{X: 40, Y: 120, W: 100, H: 20})

	bubbles := detect.NewBubbleFinder(detect.BubbleOptions{}).Detect(panel)
	if len(bubbles) != 0 {
		t.Fatalf("expected concave blot rejected, got %+v", bubbles)
	}
}

func TestBubbleFinderRejectsExtremeAspect(t *testing.T) {
	panel := newPanel(300, 100)
	drawRect(panel, imaging.Rect{X: 20, Y: 40, W: 200, H: 20}) // aspect 10

	bubbles := detect.NewBubbleFinder(detect.BubbleOptions{}).Detect(panel)
	if len(bubbles) != 0 {
		t.Fatalf("expected wide bar rejected by aspect filter, got %+v", bubbles)
	}
}

type fakeOCR struct {
	texts []string
	calls int
}

func (f *fakeOCR) ExtractText(_ context.Context, _ image.Image) (string, error) {
	if f.calls >= len(f.texts) {
		return "", nil
	}
	text := f.texts[f.calls]
	f.calls++
	return text, nil
}

func TestFindTextDropsEmptyResults(t *testing.T) {
	panel := newPanel(400, 150)
	drawEllipse(panel, 90, 70, 40, 30)
	drawEllipse(panel, 280, 70, 40, 30)

	ocr := &fakeOCR{texts: []string{"I'm late!", "   \n"}}
	regions := detect.NewBubbleFinder(detect.BubbleOptions{}).FindText(context.Background(), panel, ocr)
	if ocr.calls != 2 {
		t.Fatalf("expected OCR invoked per bubble, got %d calls", ocr.calls)
	}
	if len(regions) != 1 {
		t.Fatalf("expected whitespace-only bubble dropped, got %d regions", len(regions))
	}
	if regions[0].Text != "I'm late!" {
		t.Fatalf("unexpected text: %q", regions[0].Text)
	}
}
