package imaging

import (
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Resize scales src to w×h using Catmull-Rom interpolation.
func Resize(src image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Over, nil)
	return dst
}

// Crop copies the region r of src into a new image with origin (0,0). The
// region is clamped to src's bounds.
func Crop(src image.Image, r Rect) *image.RGBA {
	clamped := FromImage(r.ToImage().Intersect(src.Bounds()))
	dst := image.NewRGBA(image.Rect(0, 0, clamped.W, clamped.H))
	xdraw.Draw(dst, dst.Bounds(), src, clamped.ToImage().Min, xdraw.Src)
	return dst
}

// AffineScale renders src scaled by the given factor about its center, then
// shifted left/up by (dx, dy), onto a canvas of src's size filled with bg.
// Rotation is fixed at zero.
func AffineScale(src image.Image, scale, dx, dy float64, bg color.Color) *image.RGBA {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	dst := Fill(w, h, bg)

	cx, cy := float64(w)/2, float64(h)/2
	// Scale about the image center, then translate by the pan offset.
	m := f64.Aff3{
		scale, 0, cx - scale*cx - dx,
		0, scale, cy - scale*cy - dy,
	}
	xdraw.CatmullRom.Transform(dst, m, src, bounds, xdraw.Over, nil)
	return dst
}

// Blend computes the per-pixel weighted blend (1-t)*a + t*b. Both images must
// share dimensions; the caller resizes beforehand.
func Blend(a, b *image.RGBA, t float64) *image.RGBA {
	if t <= 0 {
		return Clone(a)
	}
	if t >= 1 {
		return Clone(b)
	}
	bounds := a.Bounds()
	dst := image.NewRGBA(bounds)
	wa, wb := 1-t, t
	for i := 0; i < len(a.Pix); i++ {
		dst.Pix[i] = uint8(wa*float64(a.Pix[i]) + wb*float64(b.Pix[i]) + 0.5)
	}
	return dst
}
