package animate

// easeInOutQuad maps linear progress to accelerate-then-decelerate motion.
// f(0)=0, f(0.5)=0.5, f(1)=1, monotonically increasing on [0, 1].
func easeInOutQuad(t float64) float64 {
	if t < 0.5 {
		return 2 * t * t
	}
	u := -2*t + 2
	return 1 - u*u/2
}

// progress returns the linear parameter for frame i of n, 0 for a
// single-frame clip.
func progress(i, n int) float64 {
	if n <= 1 {
		return 0
	}
	return float64(i) / float64(n-1)
}
