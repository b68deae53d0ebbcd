// MIT License

package nanocube

// refAt increments the refcount of idx in the arena addressed by dim: a
// dimension's node arena for dim in [0, len(dims)), or the summary arena
// for dim == len(dims). It is a no-op on noIndex, since a nullable edge
// carries no reference to account for.
func (c *Cube[S]) refAt(idx, dim int) {
	if idx == noIndex {
		return
	}
	if dim == len(c.dims) {
		c.summaries.MakeRef(idx)
		return
	}
	c.dims[dim].arena.MakeRef(idx)
}

// nextOf reads idx's own next field: idx must be a real node in
// dims[dim].arena (possibly a leaf, whose next still holds the
// dimension's transition value). noIndex passes through unchanged.
func (c *Cube[S]) nextOf(idx, dim int) int {
	if idx == noIndex {
		return noIndex
	}
	return c.dims[dim].arena.At(idx).next
}

// computeNext derives the ".next" pointer for a non-leaf node built (or
// rebuilt) with the given left/right children at dim: borrow a child's
// own next when only one side is present, merge the two children's next
// pointers when both are present. This is what insert's ascent (§4.4)
// always uses, and what the merge engine (§4.5) uses for every node
// except a pair of leaves -- a leaf's next is a primary value, not one
// derived from children, so merge handles that case itself instead of
// going through this formula (see merge.go).
func (c *Cube[S]) computeNext(left, right, dim int) int {
	ln := c.nextOf(left, dim)
	rn := c.nextOf(right, dim)
	return c.merge(ln, rn, dim+1)
}

// makeNode inserts a new node into dims[dim]'s arena and refs its three
// outgoing pointers, which is what every newly constructed node must do
// per §4.4/§4.5 ("a new node is inserted into the arena; its three
// outgoing pointers are reffed"). The returned index itself starts at
// refcount zero: pinning it is the caller's job, exactly like Insert.
func (c *Cube[S]) makeNode(left, right, next, dim int) int {
	idx := c.dims[dim].arena.Insert(node{left: left, right: right, next: next})
	c.refAt(left, dim)
	c.refAt(right, dim)
	c.refAt(next, dim+1)
	return idx
}
