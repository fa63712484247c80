package imaging

import (
	"image"
	"image/color"
)

func grayColor(v uint8) color.Gray { return color.Gray{Y: v} }

// Dilate grows foreground regions by a square kernel of the given size,
// applied iterations times. Bridges small gaps between strokes.
func Dilate(mask *image.Gray, kernel, iterations int) *image.Gray {
	return morph(mask, kernel, iterations, true)
}

// Erode shrinks foreground regions by a square kernel of the given size,
// applied iterations times. Removes speckle left by dilation.
func Erode(mask *image.Gray, kernel, iterations int) *image.Gray {
	return morph(mask, kernel, iterations, false)
}

func morph(mask *image.Gray, kernel, iterations int, dilate bool) *image.Gray {
	if kernel < 1 {
		kernel = 1
	}
	half := kernel / 2
	bounds := mask.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	cur := image.NewGray(image.Rect(0, 0, w, h))
	copy(cur.Pix, mask.Pix)

	for it := 0; it < iterations; it++ {
		next := image.NewGray(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				if dilate {
					if anyForeground(cur, x, y, half, w, h) {
						next.SetGray(x, y, grayColor(foreground))
					}
				} else {
					if allForeground(cur, x, y, half, w, h) {
						next.SetGray(x, y, grayColor(foreground))
					}
				}
			}
		}
		cur = next
	}
	return cur
}

func anyForeground(mask *image.Gray, x, y, half, w, h int) bool {
	for dy := -half; dy <= half; dy++ {
		for dx := -half; dx <= half; dx++ {
			sx, sy := x+dx, y+dy
			if sx < 0 || sy < 0 || sx >= w || sy >= h {
				continue
			}
			if mask.GrayAt(sx, sy).Y != background {
				return true
			}
		}
	}
	return false
}

func allForeground(mask *image.Gray, x, y, half, w, h int) bool {
	for dy := -half; dy <= half; dy++ {
		for dx := -half; dx <= half; dx++ {
			sx, sy := x+dx, y+dy
			if sx < 0 || sy < 0 || sx >= w || sy >= h {
				// Pixels beyond the border count as background, so
				// erosion trims foreground touching the edge.
				return false
			}
			if mask.GrayAt(sx, sy).Y == background {
				return false
			}
		}
	}
	return true
}
