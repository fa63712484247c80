package imaging

import "image"

// Rect is an axis-aligned rectangle in x, y, width, height form. Detection
// and animation code works in this representation; convert to
// image.Rectangle only at raster boundaries.
type Rect struct {
	X, Y, W, H int
}

// Area returns the rectangle's area in pixels.
func (r Rect) Area() int {
	if r.W <= 0 || r.H <= 0 {
		return 0
	}
	return r.W * r.H
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Intersect returns the overlapping region of r and o, which may be empty.
func (r Rect) Intersect(o Rect) Rect {
	x1 := max(r.X, o.X)
	y1 := max(r.Y, o.Y)
	x2 := min(r.X+r.W, o.X+o.W)
	y2 := min(r.Y+r.H, o.Y+o.H)
	if x2 <= x1 || y2 <= y1 {
		return Rect{}
	}
	return Rect{X: x1, Y: y1, W: x2 - x1, H: y2 - y1}
}

// Union returns the smallest rectangle covering both r and o.
func (r Rect) Union(o Rect) Rect {
	if r.Empty() {
		return o
	}
	if o.Empty() {
		return r
	}
	x1 := min(r.X, o.X)
	y1 := min(r.Y, o.Y)
	x2 := max(r.X+r.W, o.X+o.W)
	y2 := max(r.Y+r.H, o.Y+o.H)
	return Rect{X: x1, Y: y1, W: x2 - x1, H: y2 - y1}
}

// Within reports whether r lies fully inside o.
func (r Rect) Within(o Rect) bool {
	return r.X >= o.X && r.Y >= o.Y &&
		r.X+r.W <= o.X+o.W && r.Y+r.H <= o.Y+o.H
}

// AspectRatio returns width/height, or 0 for a degenerate rectangle.
func (r Rect) AspectRatio() float64 {
	if r.H <= 0 {
		return 0
	}
	return float64(r.W) / float64(r.H)
}

// ToImage converts to the stdlib rectangle representation.
func (r Rect) ToImage() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H)
}

// FromImage converts a stdlib rectangle into x/y/w/h form.
func FromImage(r image.Rectangle) Rect {
	r = r.Canon()
	return Rect{X: r.Min.X, Y: r.Min.Y, W: r.Dx(), H: r.Dy()}
}
