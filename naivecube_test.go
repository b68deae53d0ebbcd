// MIT License

package nanocube

// naiveCube is the flat list-of-points oracle against which Cube's
// results are checked (spec.md §8, grounded on original_source's
// naivecube.rs): a bare slice of (address, summary) pairs whose
// RangeQuery folds combine over every point inside every per-dimension
// half-open bound. It never shares structure and never reclaims memory;
// it exists purely to be obviously correct.
type naiveCube[S any] struct {
	identity S
	combine  Combine[S]
	points   []naivePoint[S]
}

type naivePoint[S any] struct {
	address []int
	summary S
}

func newNaiveCube[S any](identity S, combine Combine[S]) *naiveCube[S] {
	return &naiveCube[S]{identity: identity, combine: combine}
}

func (n *naiveCube[S]) Add(summary S, address []int) {
	addr := append([]int(nil), address...)
	n.points = append(n.points, naivePoint[S]{address: addr, summary: summary})
}

func (n *naiveCube[S]) RangeQuery(bounds [][2]int) S {
	result := n.identity
	for _, p := range n.points {
		if pointInBounds(p.address, bounds) {
			result = n.combine(result, p.summary)
		}
	}
	return result
}

func pointInBounds(address []int, bounds [][2]int) bool {
	for d, a := range address {
		if a < bounds[d][0] || a >= bounds[d][1] {
			return false
		}
	}
	return true
}
