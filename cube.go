// MIT License

package nanocube

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
)

// releaseEntry is a pending deferred decrement: dim is a dimension index in
// [0, len(dims)), or len(dims) to mean "the summary arena".
type releaseEntry struct {
	idx, dim int
}

// Cube is the DAG-of-arenas core: an ordered list of DimensionLevels, a
// summary arena, a root node pointer into dimension 0, and a pending
// release-list used to batch deferred decrements.
type Cube[S any] struct {
	id        uuid.UUID
	dims      []DimensionLevel
	summaries *RefCountedArena[S]
	baseRoot  int
	identity  S
	combine   Combine[S]
	threshold int
	logger    *logrus.Logger
	releaseQ  []releaseEntry
}

// New returns an empty Cube over the given per-dimension bit widths, with
// the supplied monoid (identity value and combining function). widths must
// be non-empty and every width must be at least 1; violating either is a
// programmer error (spec.md §7) and panics rather than returning an error.
func New[S any](widths []int, identity S, combine Combine[S], opts ...func(*configs)) *Cube[S] {
	if len(widths) == 0 {
		panicf("nanocube: widths must be non-empty")
	}
	for i, w := range widths {
		if w < 1 {
			panicf("nanocube: dimension %d has non-positive width %d", i, w)
		}
	}
	if combine == nil {
		panicf("nanocube: combine function must not be nil")
	}
	cfg := makeconfigs()
	for _, f := range opts {
		f(cfg)
	}
	dims := make([]DimensionLevel, len(widths))
	for i, w := range widths {
		dims[i] = newDimensionLevel(w)
	}
	c := &Cube[S]{
		id:        uuid.New(),
		dims:      dims,
		summaries: NewRefCountedArena[S](),
		baseRoot:  noIndex,
		identity:  identity,
		combine:   combine,
		threshold: cfg.releaseThreshold,
		logger:    cfg.logger,
	}
	c.logger.WithFields(logrus.Fields{"cube": c.id, "dims": len(dims)}).Debug("nanocube: cube created")
	return c
}

// Dims returns the number of dimensions in this cube.
func (c *Cube[S]) Dims() int { return len(c.dims) }

// Width returns the bit width of dimension d.
func (c *Cube[S]) Width(d int) int { return c.dims[d].width }

// ID returns the cube's diagnostic identifier (used to tell cubes apart in
// log output; it has no bearing on the data model).
func (c *Cube[S]) ID() uuid.UUID { return c.id }

// ---- deferred release -------------------------------------------------

// enqueueRelease queues (idx, dim) for a deferred decrement and runs an
// implicit flush once the queue reaches the configured threshold. dim ==
// len(c.dims) means idx is a summary-arena index.
func (c *Cube[S]) enqueueRelease(idx, dim int) {
	if idx == noIndex {
		return
	}
	c.releaseQ = append(c.releaseQ, releaseEntry{idx: idx, dim: dim})
	if len(c.releaseQ) >= c.threshold {
		c.FlushReleaseList()
	}
}

// pushRelease queues (idx, dim) without checking the threshold; used while
// FlushReleaseList is itself draining the queue, so that a long cascade
// cannot re-enter itself.
func (c *Cube[S]) pushRelease(idx, dim int) {
	if idx == noIndex {
		return
	}
	c.releaseQ = append(c.releaseQ, releaseEntry{idx: idx, dim: dim})
}

// FlushReleaseList drains the pending release-list: for each entry it
// decrements the target arena's refcount; if the count reaches zero, it
// enqueues the freed node's left, right (same dimension) and next
// (dimension+1, or the summary arena at the last dimension), then blanks
// the freed node's pointers so a later Compact sees a clean slate. It is
// idempotent when the queue is already empty.
func (c *Cube[S]) FlushReleaseList() {
	for len(c.releaseQ) > 0 {
		n := len(c.releaseQ) - 1
		entry := c.releaseQ[n]
		c.releaseQ = c.releaseQ[:n]
		if entry.dim == len(c.dims) {
			c.summaries.ReleaseRef(entry.idx)
			continue
		}
		arena := c.dims[entry.dim].arena
		if arena.ReleaseRef(entry.idx) != 0 {
			continue
		}
		freed := *arena.At(entry.idx)
		c.pushRelease(freed.left, entry.dim)
		c.pushRelease(freed.right, entry.dim)
		c.pushRelease(freed.next, entry.dim+1)
		*arena.At(entry.idx) = emptyNode()
	}
}

// PendingReleases returns the number of entries currently queued, for
// diagnostics.
func (c *Cube[S]) PendingReleases() int { return len(c.releaseQ) }

// ---- diagnostics --------------------------------------------------

// Stats renders a one-row-per-dimension (plus the summary pool) occupancy
// report: slot count (free slots included, under the "live" header),
// free-list length, and current refcount of the
// base root (dimension 0 only). Callers should FlushReleaseList first, or
// the free-list counts may be conservative.
func (c *Cube[S]) Stats(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.Header("pool", "live", "free", "root refcount")
	for d := range c.dims {
		rootRef := ""
		if d == 0 && c.baseRoot != noIndex {
			rootRef = fmt.Sprintf("%d", c.dims[0].arena.Refcount(c.baseRoot))
		}
		_ = table.Append(
			fmt.Sprintf("dim %d", d),
			fmt.Sprintf("%d", c.dims[d].arena.Len()),
			fmt.Sprintf("%d", len(c.dims[d].arena.freeList)),
			rootRef,
		)
	}
	_ = table.Append("summaries", fmt.Sprintf("%d", c.summaries.Len()), fmt.Sprintf("%d", len(c.summaries.freeList)), "")
	_ = table.Render()
}

// AllNodes calls f once per live (refcount > 0) node slot in dimension d,
// for diagnostic iteration (spec.md §6, "diagnostic iteration of pools").
func (c *Cube[S]) AllNodes(d int, f func(idx int, n node)) {
	arena := c.dims[d].arena
	for i := 0; i < arena.Len(); i++ {
		if arena.refcounts[i] > 0 {
			f(i, *arena.At(i))
		}
	}
}

// AllSummaries calls f once per live (refcount > 0) summary slot.
func (c *Cube[S]) AllSummaries(f func(idx int, s S)) {
	for i := 0; i < c.summaries.Len(); i++ {
		if c.summaries.refcounts[i] > 0 {
			f(i, *c.summaries.At(i))
		}
	}
}

// PrintDot renders the cube's DAG in the DOT graph-description language
// (spec.md §6): one subgraph per dimension, nodes labeled
// "(index, next_index, refcount)", left edges labeled "0" and right
// edges labeled "1". Call FlushReleaseList first; PrintDot does not flush
// on its own, since rendering is a read-only diagnostic.
func (c *Cube[S]) PrintDot(w io.Writer) error {
	var b strings.Builder
	b.WriteString("digraph nanocube {\n")
	for d := range c.dims {
		fmt.Fprintf(&b, "  subgraph cluster_dim%d {\n", d)
		fmt.Fprintf(&b, "    label = \"dim %d\";\n", d)
		c.AllNodes(d, func(idx int, n node) {
			fmt.Fprintf(&b, "    d%d_%d [label=\"(%d, %d, %d)\"];\n", d, idx, idx, n.next, c.dims[d].arena.Refcount(idx))
			if n.left != noIndex {
				fmt.Fprintf(&b, "    d%d_%d -> d%d_%d [label=\"0\"];\n", d, idx, d, n.left)
			}
			if n.right != noIndex {
				fmt.Fprintf(&b, "    d%d_%d -> d%d_%d [label=\"1\"];\n", d, idx, d, n.right)
			}
		})
		b.WriteString("  }\n")
	}
	if c.baseRoot != noIndex {
		fmt.Fprintf(&b, "  root -> d0_%d;\n", c.baseRoot)
	}
	b.WriteString("}\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// ---- compaction -----------------------------------------------------

// Compact removes every free-list hole from every arena (node pools and
// the summary pool), rewriting all internal pointers (same-dimension
// left/right, cross-dimension/summary next, and the base root) through
// each arena's returned permutation. It must be called with an empty
// release-list (call FlushReleaseList first); a pending release makes
// refcounts conservative and Compact would pack around slots that are
// about to become free anyway.
func (c *Cube[S]) Compact() {
	if len(c.releaseQ) != 0 {
		panicf("nanocube: compact called with a non-empty release list; flush first")
	}

	perms := make([]map[int]int, len(c.dims))
	for d := len(c.dims) - 1; d >= 0; d-- {
		perms[d] = c.dims[d].arena.Compact()
	}
	summaryPerm := c.summaries.Compact()

	remap := func(perm map[int]int, idx int) int {
		if idx == noIndex {
			return noIndex
		}
		if nv, ok := perm[idx]; ok {
			return nv
		}
		return idx
	}

	for d := range c.dims {
		nextPerm := summaryPerm
		if d+1 < len(c.dims) {
			nextPerm = perms[d+1]
		}
		arena := c.dims[d].arena
		for i := 0; i < arena.Len(); i++ {
			n := arena.At(i)
			n.left = remap(perms[d], n.left)
			n.right = remap(perms[d], n.right)
			n.next = remap(nextPerm, n.next)
		}
	}

	c.baseRoot = remap(perms[0], c.baseRoot)
}
