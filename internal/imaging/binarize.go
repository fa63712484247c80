package imaging

import (
	"image"
	"math"
)

const (
	foreground = 255
	background = 0
)

// Threshold produces a binary mask from a grayscale image using a fixed
// luminance cutoff. With inverted set, pixels at or below the cutoff become
// foreground, which turns dark ink into the detected signal.
func Threshold(gray *image.Gray, cutoff uint8, inverted bool) *image.Gray {
	bounds := gray.Bounds()
	out := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			v := gray.GrayAt(x, y).Y
			on := v > cutoff
			if inverted {
				on = !on
			}
			if on {
				out.SetGray(x-bounds.Min.X, y-bounds.Min.Y, grayColor(foreground))
			}
		}
	}
	return out
}

// AdaptiveThreshold produces a binary mask by comparing each pixel against a
// Gaussian-weighted mean of its block×block neighborhood minus c. block must
// be odd. With inverted set, pixels below the local mean become foreground.
func AdaptiveThreshold(gray *image.Gray, block int, c float64, inverted bool) *image.Gray {
	if block < 3 {
		block = 3
	}
	if block%2 == 0 {
		block++
	}

	bounds := gray.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	src := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			src[y*w+x] = float64(gray.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y)
		}
	}

	kernel := gaussianKernel(block)
	blurred := convolveSeparable(src, w, h, kernel)

	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			on := src[y*w+x] > blurred[y*w+x]-c
			if inverted {
				on = !on
			}
			if on {
				out.SetGray(x, y, grayColor(foreground))
			}
		}
	}
	return out
}

// gaussianKernel builds a normalized 1D kernel of the given odd size, using
// the same sigma heuristic OpenCV applies when sigma is left unset.
func gaussianKernel(size int) []float64 {
	sigma := 0.3*(float64(size-1)*0.5-1) + 0.8
	kernel := make([]float64, size)
	half := size / 2
	var sum float64
	for i := range kernel {
		d := float64(i - half)
		kernel[i] = math.Exp(-d * d / (2 * sigma * sigma))
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// convolveSeparable applies a 1D kernel horizontally then vertically with
// edge clamping.
func convolveSeparable(src []float64, w, h int, kernel []float64) []float64 {
	half := len(kernel) / 2
	tmp := make([]float64, len(src))
	out := make([]float64, len(src))

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var acc float64
			for k, weight := range kernel {
				sx := clampInt(x+k-half, 0, w-1)
				acc += src[y*w+sx] * weight
			}
			tmp[y*w+x] = acc
		}
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var acc float64
			for k, weight := range kernel {
				sy := clampInt(y+k-half, 0, h-1)
				acc += tmp[sy*w+x] * weight
			}
			out[y*w+x] = acc
		}
	}
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
