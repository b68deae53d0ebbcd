// MIT License

package nanocube

// merge recursively combines two sub-DAGs rooted at n1 and n2, both
// belonging to dim (a dimension index, or len(c.dims) for the summary
// level), into a new sub-DAG whose structure shares whatever n1 and n2
// already share. A NULL input short-circuits to the other input with no
// allocation: the caller is responsible for refing the result if it is
// about to store it as a persistent pointer (root or node field), exactly
// as for any freshly built node.
func (c *Cube[S]) merge(n1, n2, dim int) int {
	if n1 == noIndex {
		return n2
	}
	if n2 == noIndex {
		return n1
	}
	if dim == len(c.dims) {
		s1 := *c.summaries.At(n1)
		s2 := *c.summaries.At(n2)
		return c.summaries.Insert(c.combine(s1, s2))
	}
	arena := c.dims[dim].arena
	node1 := *arena.At(n1)
	node2 := *arena.At(n2)

	// Both n1 and n2 sit at the same recursion depth (merge always pairs
	// left-with-left and right-with-right from a shared top), so if one is
	// a leaf the other is too. A leaf's next is a primary value, not one
	// derived from children, so it has to be merged directly here: by the
	// time computeNext could see it, both "children" are noIndex and the
	// formula would silently collapse to noIndex instead of combining the
	// two leaves' summaries.
	if node1.isLeaf() && node2.isLeaf() {
		next := c.merge(node1.next, node2.next, dim+1)
		return c.makeNode(noIndex, noIndex, next, dim)
	}

	left := c.merge(node1.left, node2.left, dim)
	right := c.merge(node1.right, node2.right, dim)
	next := c.computeNext(left, right, dim)
	return c.makeNode(left, right, next, dim)
}

// MergeCube folds other's contents into c in place: every point recorded
// in other becomes, as if by Add, also recorded in c. Both cubes must
// share identical dimension widths; other is left unmodified (borrowed,
// not consumed).
func (c *Cube[S]) MergeCube(other *Cube[S]) {
	if len(c.dims) != len(other.dims) {
		panicf("nanocube: merge_cube between cubes of different dimensionality (%d vs %d)", len(c.dims), len(other.dims))
	}
	for d := range c.dims {
		if c.dims[d].width != other.dims[d].width {
			panicf("nanocube: merge_cube between cubes of different widths at dimension %d (%d vs %d)", d, c.dims[d].width, other.dims[d].width)
		}
	}

	offsets := make([]int, len(c.dims))
	for d := range c.dims {
		offsets[d] = c.dims[d].arena.Len()
	}
	summaryOffset := c.summaries.Len()

	shift := func(x, off int) int {
		if x == noIndex {
			return noIndex
		}
		return x + off
	}

	for d := range c.dims {
		nextOffset := summaryOffset
		if d+1 < len(c.dims) {
			nextOffset = offsets[d+1]
		}
		selfOffset := offsets[d]
		c.dims[d].arena.Extend(other.dims[d].arena, func(n node) node {
			return node{
				left:  shift(n.left, selfOffset),
				right: shift(n.right, selfOffset),
				next:  shift(n.next, nextOffset),
			}
		})
	}
	c.summaries.Extend(other.summaries, func(s S) S { return s })

	otherRoot := other.baseRoot
	if otherRoot != noIndex {
		otherRoot += offsets[0]
	}
	oldRoot := c.baseRoot
	merged := c.merge(oldRoot, otherRoot, 0)
	if merged != noIndex {
		c.dims[0].arena.MakeRef(merged)
	}
	if oldRoot != noIndex {
		c.enqueueRelease(oldRoot, 0)
	}
	if otherRoot != noIndex {
		// other's own clone of its root carries the +1 it held as other's
		// pinned root; that pin has no meaning in c's graph once merge has
		// run (c's new root is either a brand new node or otherRoot itself,
		// already repinned above), so it must be explicitly given back.
		c.enqueueRelease(otherRoot, 0)
	}
	c.baseRoot = merged

	c.logger.WithField("cube", c.id).WithField("otherCube", other.id).Debug("nanocube: merge_cube complete")
}
