package validate

import (
	"github.com/stridelands/engine/internal/geo"
)

// DefaultSeamExemptSegments is how many segments at each end of the path are
// exempt from pairwise intersection checks. A path that closes into a loop
// necessarily brings its first and last segments close together; without the
// exemption the closure seam produces false positives. The width is a
// heuristic carried over from field tuning: very short loops that double
// back tightly right at closure can slip through as false negatives.
const DefaultSeamExemptSegments = 2

// SelfIntersects reports whether any two non-adjacent segments of the path
// cross, using the CCW orientation test on a snapshot of the path. Segment
// pairs that both fall within the first or last seamExempt segments are
// skipped. Paths with fewer than 4 points trivially do not self-intersect.
func SelfIntersects(path geo.Path, seamExempt int) bool {
	n := len(path)
	if n < 4 {
		return false
	}
	segments := n - 1

	for i := 0; i < segments-2; i++ {
		for j := i + 2; j < segments; j++ {
			if exemptPair(i, j, segments, seamExempt) {
				continue
			}
			if geo.SegmentsIntersect(path[i], path[i+1], path[j], path[j+1]) {
				return true
			}
		}
	}
	return false
}

// exemptPair reports whether one segment lies in the head window and the
// other in the tail window, i.e. the pair straddles the closure seam.
func exemptPair(i, j, segments, seamExempt int) bool {
	if seamExempt <= 0 {
		return false
	}
	head := func(s int) bool { return s < seamExempt }
	tail := func(s int) bool { return s >= segments-seamExempt }
	return (head(i) && tail(j)) || (head(j) && tail(i))
}
