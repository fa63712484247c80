package testsupport

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/zachdrouin/ComicAlive/internal/imaging"
)

// NewPage builds a white page with dark filled rectangles where panels
// should be detected.
func NewPage(w, h int, panels ...imaging.Rect) *image.RGBA {
	page := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(page, page.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	ink := image.NewUniform(color.RGBA{R: 30, G: 30, B: 30, A: 255})
	for _, p := range panels {
		draw.Draw(page, p.ToImage(), ink, image.Point{}, draw.Src)
	}
	return page
}

// WritePage saves a synthetic page image to path.
func WritePage(t testing.TB, path string, w, h int, panels ...imaging.Rect) {
	t.Helper()
	if err := imaging.Save(path, NewPage(w, h, panels...)); err != nil {
		t.Fatalf("write page image %s: %v", path, err)
	}
}
