// MIT License

package nanocube

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// poolCounts is a structural snapshot used only to compare gross pool
// occupancy before and after an operation that should not change what is
// reachable (e.g. Compact), via go-cmp rather than a field-by-field
// require chain.
type poolCounts struct {
	NodesPerDim []int
	Summaries   int
}

func snapshotCounts[S any](c *Cube[S]) poolCounts {
	nodes := make([]int, c.Dims())
	for d := 0; d < c.Dims(); d++ {
		n := 0
		c.AllNodes(d, func(int, node) { n++ })
		nodes[d] = n
	}
	summaries := 0
	c.AllSummaries(func(int, S) { summaries++ })
	return poolCounts{NodesPerDim: nodes, Summaries: summaries}
}

func randomAddress(rng *rand.Rand, widths []int) []int {
	addr := make([]int, len(widths))
	for d, w := range widths {
		addr[d] = rng.Intn(1 << uint(w))
	}
	return addr
}

func randomBounds(rng *rand.Rand, widths []int) [][2]int {
	bounds := make([][2]int, len(widths))
	for d, w := range widths {
		limit := 1 << uint(w)
		lo := rng.Intn(limit + 1)
		hi := lo + rng.Intn(limit+1-lo)
		bounds[d] = [2]int{lo, hi}
	}
	return bounds
}

// TestPropertyP1Equivalence checks cube.RangeQuery against the flat-list
// oracle over a randomized dataset and randomized queries.
func TestPropertyP1Equivalence(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	widths := []int{4, 3, 2}

	cube := New(widths, 0, IntSum)
	naive := newNaiveCube(0, IntSum)

	for i := 0; i < 200; i++ {
		addr := randomAddress(rng, widths)
		cube.Add(1, addr)
		naive.Add(1, addr)
	}

	for i := 0; i < 30; i++ {
		q := randomBounds(rng, widths)
		require.Equal(t, naive.RangeQuery(q), cube.RangeQuery(q), "query %d: %v", i, q)
	}
}

// TestScenarioE is the spec's scenario E: 100 points, widths (24,2,2), 5
// random ranges, P1 must hold on every query.
func TestScenarioE(t *testing.T) {
	rng := rand.New(rand.NewSource(24))
	widths := []int{24, 2, 2}

	cube := New(widths, 0, IntSum)
	naive := newNaiveCube(0, IntSum)

	for i := 0; i < 100; i++ {
		addr := randomAddress(rng, widths)
		cube.Add(1, addr)
		naive.Add(1, addr)
	}

	for i := 0; i < 5; i++ {
		q := randomBounds(rng, widths)
		require.Equal(t, naive.RangeQuery(q), cube.RangeQuery(q), "query %d: %v", i, q)
	}
}

// TestPropertyP2Associativity checks that folding several cubes built from
// a partition of the dataset via MergeCube matches a single cube built
// from the whole dataset.
func TestPropertyP2Associativity(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	widths := []int{5, 4}

	whole := New(widths, 0, IntSum)
	var parts []*Cube[int]
	for i := 0; i < 3; i++ {
		parts = append(parts, New(widths, 0, IntSum))
	}

	for i := 0; i < 150; i++ {
		addr := randomAddress(rng, widths)
		whole.Add(1, addr)
		parts[i%len(parts)].Add(1, addr)
	}

	folded := parts[0]
	for _, p := range parts[1:] {
		folded.MergeCube(p)
	}

	for i := 0; i < 20; i++ {
		q := randomBounds(rng, widths)
		require.Equal(t, whole.RangeQuery(q), folded.RangeQuery(q), "query %d: %v", i, q)
	}
}

// TestScenarioF is the spec's scenario F: partition a 100-point dataset on
// widths (3,) into three cubes, fold via MergeCube, compare to a single
// cube on 5 random ranges.
func TestScenarioF(t *testing.T) {
	rng := rand.New(rand.NewSource(37))
	widths := []int{3}

	whole := New(widths, 0, IntSum)
	parts := []*Cube[int]{New(widths, 0, IntSum), New(widths, 0, IntSum), New(widths, 0, IntSum)}

	for i := 0; i < 100; i++ {
		addr := randomAddress(rng, widths)
		whole.Add(1, addr)
		parts[i%len(parts)].Add(1, addr)
	}

	folded := parts[0]
	folded.MergeCube(parts[1])
	folded.MergeCube(parts[2])

	for i := 0; i < 5; i++ {
		q := randomBounds(rng, widths)
		require.Equal(t, whole.RangeQuery(q), folded.RangeQuery(q), "query %d: %v", i, q)
	}
}

// TestPropertyP3Identity checks that an empty cube returns the monoid
// identity for any query, including the full range and a degenerate
// zero-width query.
func TestPropertyP3Identity(t *testing.T) {
	c := New([]int{4, 4}, 0, IntSum)
	require.Equal(t, 0, c.RangeQuery([][2]int{{0, 16}, {0, 16}}))
	require.Equal(t, 0, c.RangeQuery([][2]int{{2, 2}, {0, 16}}))
}

// TestPropertyP4RefcountAccounting checks that after a flush every
// reachable slot has a positive refcount and every unreachable slot has a
// zero refcount.
func TestPropertyP4RefcountAccounting(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	widths := []int{4, 3}
	c := New(widths, 0, IntSum, ReleaseThreshold(8))

	for i := 0; i < 80; i++ {
		c.Add(1, randomAddress(rng, widths))
	}
	c.FlushReleaseList()

	require.Zero(t, c.PendingReleases())

	reachable := map[[2]int]bool{}
	var walk func(dim, idx int)
	walk = func(dim, idx int) {
		if idx == noIndex || reachable[[2]int{dim, idx}] {
			return
		}
		reachable[[2]int{dim, idx}] = true
		if dim == len(c.dims) {
			return
		}
		n := *c.dims[dim].arena.At(idx)
		walk(dim, n.left)
		walk(dim, n.right)
		walk(dim+1, n.next)
	}
	walk(0, c.baseRoot)

	for d := 0; d < c.Dims(); d++ {
		arena := c.dims[d].arena
		for i := 0; i < arena.Len(); i++ {
			isReachable := reachable[[2]int{d, i}]
			rc := arena.Refcount(i)
			if isReachable {
				require.Positive(t, rc, "dim %d idx %d should be reachable with positive refcount", d, i)
			} else {
				require.Zero(t, rc, "dim %d idx %d should be unreachable with zero refcount", d, i)
			}
		}
	}
	for i := 0; i < c.summaries.Len(); i++ {
		isReachable := reachable[[2]int{c.Dims(), i}]
		rc := c.summaries.Refcount(i)
		if isReachable {
			require.Positive(t, rc)
		} else {
			require.Zero(t, rc)
		}
	}
}

// TestPropertyP5IdempotentFlush checks that a second flush immediately
// after a flush frees nothing more.
func TestPropertyP5IdempotentFlush(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	widths := []int{3, 3}
	c := New(widths, 0, IntSum)
	for i := 0; i < 40; i++ {
		c.Add(1, randomAddress(rng, widths))
	}
	c.FlushReleaseList()
	before := snapshotCounts(c)
	c.FlushReleaseList()
	after := snapshotCounts(c)
	require.Empty(t, cmp.Diff(before, after))
}

// TestPropertyP6CompactionRoundTrip checks that Compact leaves query
// results unchanged and preserves pool occupancy (only indices move).
func TestPropertyP6CompactionRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	widths := []int{4, 4}
	c := New(widths, 0, IntSum)
	for i := 0; i < 60; i++ {
		c.Add(1, randomAddress(rng, widths))
	}
	// force some holes: each further insert into a populated cube retires
	// the spine nodes it rebuilt (and, at an address already present, the
	// old summary slot).
	for i := 0; i < 20; i++ {
		c.Add(1, randomAddress(rng, widths))
	}
	c.FlushReleaseList()

	queries := make([][][2]int, 10)
	want := make([]int, len(queries))
	for i := range queries {
		queries[i] = randomBounds(rng, widths)
		want[i] = c.RangeQuery(queries[i])
	}

	before := snapshotCounts(c)
	c.Compact()
	after := snapshotCounts(c)
	require.Empty(t, cmp.Diff(before, after))

	for i, q := range queries {
		require.Equal(t, want[i], c.RangeQuery(q), "query %d after compaction", i)
	}
}

// TestPropertyP7Commutativity checks that inserting the same multiset of
// points in two different orders yields cubes with identical query
// results.
func TestPropertyP7Commutativity(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	widths := []int{4, 4, 3}

	var addrs [][]int
	for i := 0; i < 120; i++ {
		addrs = append(addrs, randomAddress(rng, widths))
	}

	c1 := New(widths, 0, IntSum)
	for _, a := range addrs {
		c1.Add(1, a)
	}

	shuffled := append([][]int(nil), addrs...)
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	c2 := New(widths, 0, IntSum)
	for _, a := range shuffled {
		c2.Add(1, a)
	}

	for i := 0; i < 25; i++ {
		q := randomBounds(rng, widths)
		require.Equal(t, c1.RangeQuery(q), c2.RangeQuery(q), "query %d: %v", i, q)
	}
}
