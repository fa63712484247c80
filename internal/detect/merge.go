package detect

import (
	"sort"

	"github.com/zachdrouin/ComicAlive/internal/imaging"
)

// MergeOverlapping absorbs rectangles that significantly overlap into their
// combined bounding rectangle. Seeds are processed largest-area-first; each
// seed repeatedly absorbs any unconsumed rectangle whose intersection with
// the seed exceeds threshold times the smaller rectangle's area, growing the
// seed to the union, until no absorption occurs.
//
// Results are deterministic for a fixed input set. A three-way overlap can
// produce a different final box depending on pairwise absorption order; that
// is an accepted approximation of the merge, not a correctness bug.
func MergeOverlapping(rects []imaging.Rect, threshold float64) []imaging.Rect {
	if len(rects) == 0 {
		return nil
	}

	ordered := make([]imaging.Rect, len(rects))
	copy(ordered, rects)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Area() > ordered[j].Area()
	})

	used := make([]bool, len(ordered))
	merged := make([]imaging.Rect, 0, len(ordered))

	for i := range ordered {
		if used[i] {
			continue
		}
		seed := ordered[i]
		used[i] = true

		absorbed := true
		for absorbed {
			absorbed = false
			for j := range ordered {
				if used[j] {
					continue
				}
				other := ordered[j]
				overlap := seed.Intersect(other).Area()
				smaller := min(seed.Area(), other.Area())
				if float64(overlap) > threshold*float64(smaller) {
					seed = seed.Union(other)
					used[j] = true
					absorbed = true
				}
			}
		}
		merged = append(merged, seed)
	}
	return merged
}
