package imaging

import (
	"image"
	"math"
	"sort"
)

// Contour is one external connected foreground region of a binary mask.
type Contour struct {
	// Area counts the pixels enclosed by the region's outer boundary.
	// Interior holes (the white inside of an outlined panel or speech
	// bubble) count toward the area, matching external-contour semantics.
	Area int
	// Bounds is the region's bounding rectangle.
	Bounds Rect

	border []image.Point
}

// FindContours extracts external foreground regions from a binary mask.
// Background pockets that cannot reach the image border are treated as the
// interior of their enclosing region, so an outlined shape reports the full
// enclosed area and shapes nested inside another shape's interior are folded
// into the outer region rather than reported separately.
func FindContours(mask *image.Gray) []Contour {
	bounds := mask.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return nil
	}

	filled := fillHoles(mask, w, h)

	visited := make([]bool, w*h)
	var contours []Contour
	stack := make([]image.Point, 0, 256)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			if visited[idx] || !filled[idx] {
				continue
			}

			minX, minY, maxX, maxY := x, y, x, y
			area := 0
			var border []image.Point

			stack = stack[:0]
			stack = append(stack, image.Pt(x, y))
			visited[idx] = true

			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				area++
				if p.X < minX {
					minX = p.X
				}
				if p.X > maxX {
					maxX = p.X
				}
				if p.Y < minY {
					minY = p.Y
				}
				if p.Y > maxY {
					maxY = p.Y
				}

				onBorder := false
				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						if dx == 0 && dy == 0 {
							continue
						}
						nx, ny := p.X+dx, p.Y+dy
						if nx < 0 || ny < 0 || nx >= w || ny >= h {
							onBorder = true
							continue
						}
						nidx := ny*w + nx
						if !filled[nidx] {
							onBorder = true
							continue
						}
						if !visited[nidx] {
							visited[nidx] = true
							stack = append(stack, image.Pt(nx, ny))
						}
					}
				}
				if onBorder {
					border = append(border, p)
				}
			}

			contours = append(contours, Contour{
				Area:   area,
				Bounds: Rect{X: minX, Y: minY, W: maxX - minX + 1, H: maxY - minY + 1},
				border: border,
			})
		}
	}
	return contours
}

// fillHoles returns the foreground mask with enclosed background pockets
// turned into foreground. Background connectivity to the image border is
// 4-connected.
func fillHoles(mask *image.Gray, w, h int) []bool {
	outside := make([]bool, w*h)
	queue := make([]image.Point, 0, 2*(w+h))

	enqueue := func(x, y int) {
		idx := y*w + x
		if !outside[idx] && mask.GrayAt(x, y).Y == background {
			outside[idx] = true
			queue = append(queue, image.Pt(x, y))
		}
	}
	for x := 0; x < w; x++ {
		enqueue(x, 0)
		enqueue(x, h-1)
	}
	for y := 0; y < h; y++ {
		enqueue(0, y)
		enqueue(w-1, y)
	}

	for len(queue) > 0 {
		p := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		for _, d := range [...]image.Point{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}} {
			nx, ny := p.X+d.X, p.Y+d.Y
			if nx < 0 || ny < 0 || nx >= w || ny >= h {
				continue
			}
			enqueue(nx, ny)
		}
	}

	filled := make([]bool, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			filled[idx] = mask.GrayAt(x, y).Y != background || !outside[idx]
		}
	}
	return filled
}

// Solidity returns the ratio of the contour's area to its convex hull area.
// Convex shapes approach 1.0; irregular ink blots fall well below.
func (c Contour) Solidity() float64 {
	hullArea := c.hullArea()
	if hullArea <= 0 {
		return 0
	}
	s := float64(c.Area) / hullArea
	// Pixel counting can slightly exceed the polygon hull area for small
	// components; clamp so callers can compare against [0, 1] thresholds.
	return math.Min(s, 1.0)
}

func (c Contour) hullArea() float64 {
	hull := convexHull(c.border)
	if len(hull) < 3 {
		return float64(c.Area)
	}
	// Shoelace formula.
	var acc float64
	for i := range hull {
		j := (i + 1) % len(hull)
		acc += float64(hull[i].X)*float64(hull[j].Y) - float64(hull[j].X)*float64(hull[i].Y)
	}
	return math.Abs(acc) / 2
}

// convexHull computes the hull of a point set with Andrew's monotone chain.
func convexHull(points []image.Point) []image.Point {
	if len(points) < 3 {
		return points
	}
	pts := make([]image.Point, len(points))
	copy(pts, points)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}
		return pts[i].Y < pts[j].Y
	})

	var lower, upper []image.Point
	for _, p := range pts {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}
	for i := len(pts) - 1; i >= 0; i-- {
		p := pts[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}
	return append(lower[:len(lower)-1], upper[:len(upper)-1]...)
}

func cross(o, a, b image.Point) int {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}
