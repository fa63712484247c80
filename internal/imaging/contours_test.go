package imaging_test

import (
	"image"
	"image/color"
	"testing"

	"github.com/zachdrouin/ComicAlive/internal/imaging"
)

func fillRect(mask *image.Gray, r imaging.Rect) {
	for y := r.Y; y < r.Y+r.H; y++ {
		for x := r.X; x < r.X+r.W; x++ {
			mask.SetGray(x, y, color.Gray{Y: 255})
		}
	}
}

func TestFindContoursSeparateComponents(t *testing.T) {
	mask := image.NewGray(image.Rect(0, 0, 100, 100))
	a := imaging.Rect{X: 5, Y: 5, W: 20, H: 10}
	b := imaging.Rect{X: 50, Y: 60, W: 10, H: 20}
	fillRect(mask, a)
	fillRect(mask, b)

	contours := imaging.FindContours(mask)
	if len(contours) != 2 {
		t.Fatalf("expected 2 contours, got %d", len(contours))
	}

	boxes := map[imaging.Rect]int{}
	for _, c := range contours {
		boxes[c.Bounds] = c.Area
	}
	if boxes[a] != a.Area() {
		t.Fatalf("component a: area %d, want %d", boxes[a], a.Area())
	}
	if boxes[b] != b.Area() {
		t.Fatalf("component b: area %d, want %d", boxes[b], b.Area())
	}
}

func TestFindContoursEmptyMask(t *testing.T) {
	mask := image.NewGray(image.Rect(0, 0, 20, 20))
	if got := imaging.FindContours(mask); len(got) != 0 {
		t.Fatalf("expected no contours, got %d", len(got))
	}
}

func TestSolidityConvexVsConcave(t *testing.T) {
	// Solid rectangle: near-perfect solidity.
	mask := image.NewGray(image.Rect(0, 0, 60, 60))
	fillRect(mask, imaging.Rect{X: 10, Y: 10, W: 30, H: 20})
	contours := imaging.FindContours(mask)
	if len(contours) != 1 {
		t.Fatalf("expected 1 contour, got %d", len(contours))
	}
	if s := contours[0].Solidity(); s < 0.9 || s > 1.0 {
		t.Fatalf("rectangle solidity = %f, want near 1.0", s)
	}

	// L-shape: the hull covers the missing quadrant, so solidity drops.
	mask = image.NewGray(image.Rect(0, 0, 80, 80))
	fillRect(mask, imaging.Rect{X: 10, Y: 10, W: 10, H: 50})
	fillRect(mask, imaging.Rect{X: 10, Y: 50, W: 50, H: 10})
	contours = imaging.FindContours(mask)
	if len(contours) != 1 {
		t.Fatalf("expected 1 contour for L-shape, got %d", len(contours))
	}
	if s := contours[0].Solidity(); s > 0.7 {
		t.Fatalf("L-shape solidity = %f, want below 0.7", s)
	}
}

func TestFindContoursOutlinedShapeCountsInterior(t *testing.T) {
	// A 2px rectangular outline: the enclosed interior counts toward the
	// area, as with external-contour extraction.
	mask := image.NewGray(image.Rect(0, 0, 60, 60))
	outer := imaging.Rect{X: 10, Y: 10, W: 40, H: 30}
	fillRect(mask, outer)
	for y := 12; y < 38; y++ {
		for x := 12; x < 48; x++ {
			mask.SetGray(x, y, color.Gray{Y: 0})
		}
	}

	contours := imaging.FindContours(mask)
	if len(contours) != 1 {
		t.Fatalf("expected 1 contour, got %d", len(contours))
	}
	if contours[0].Bounds != outer {
		t.Fatalf("bounds = %+v, want %+v", contours[0].Bounds, outer)
	}
	if contours[0].Area != outer.Area() {
		t.Fatalf("area = %d, want enclosed %d", contours[0].Area, outer.Area())
	}
	if s := contours[0].Solidity(); s < 0.9 {
		t.Fatalf("outlined rectangle solidity = %f, want near 1.0", s)
	}
}

func TestFindContoursFoldsNestedShapeIntoOuter(t *testing.T) {
	// A blob inside an outline's interior is not reported separately.
	mask := image.NewGray(image.Rect(0, 0, 60, 60))
	fillRect(mask, imaging.Rect{X: 10, Y: 10, W: 40, H: 40})
	for y := 12; y < 48; y++ {
		for x := 12; x < 48; x++ {
			mask.SetGray(x, y, color.Gray{Y: 0})
		}
	}
	fillRect(mask, imaging.Rect{X: 25, Y: 25, W: 8, H: 8})

	contours := imaging.FindContours(mask)
	if len(contours) != 1 {
		t.Fatalf("expected nested blob folded into outer region, got %d contours", len(contours))
	}
}

func TestThresholdInverted(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 4, 1))
	gray.SetGray(0, 0, color.Gray{Y: 10})  // ink
	gray.SetGray(1, 0, color.Gray{Y: 250}) // paper
	gray.SetGray(2, 0, color.Gray{Y: 220}) // exactly at cutoff
	gray.SetGray(3, 0, color.Gray{Y: 221}) // just above

	mask := imaging.Threshold(gray, 220, true)
	if mask.GrayAt(0, 0).Y != 255 {
		t.Fatal("ink pixel should be foreground")
	}
	if mask.GrayAt(1, 0).Y != 0 {
		t.Fatal("paper pixel should be background")
	}
	if mask.GrayAt(2, 0).Y != 255 {
		t.Fatal("pixel at cutoff should be foreground when inverted")
	}
	if mask.GrayAt(3, 0).Y != 0 {
		t.Fatal("pixel above cutoff should be background when inverted")
	}
}

func TestDilateErodeBridgesGap(t *testing.T) {
	mask := image.NewGray(image.Rect(0, 0, 30, 10))
	// Two strokes one pixel apart.
	fillRect(mask, imaging.Rect{X: 5, Y: 4, W: 5, H: 2})
	fillRect(mask, imaging.Rect{X: 11, Y: 4, W: 5, H: 2})

	if got := len(imaging.FindContours(mask)); got != 2 {
		t.Fatalf("expected 2 components before closing, got %d", got)
	}

	closed := imaging.Erode(imaging.Dilate(mask, 3, 2), 3, 1)
	if got := len(imaging.FindContours(closed)); got != 1 {
		t.Fatalf("expected 1 component after dilate+erode, got %d", got)
	}
}
