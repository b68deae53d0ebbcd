// MIT License

package nanocube

// Add records one (summary, address) point in the cube. Address must have
// exactly Dims() entries, and address[d] must be less than 2^Width(d).
// Afterwards every RangeQuery whose bounds contain address returns its old
// result combined with summary; every other query is unchanged.
func (c *Cube[S]) Add(summary S, address []int) {
	c.validateAddress(address)
	c.insertPoint(summary, address)
}

// AddMany is semantically equivalent to calling Add for each (summaries[i],
// addresses[i]) pair in order.
func (c *Cube[S]) AddMany(summaries []S, addresses [][]int) {
	if len(summaries) != len(addresses) {
		panicf("nanocube: add_many summaries/addresses length mismatch (%d vs %d)", len(summaries), len(addresses))
	}
	for i := range summaries {
		c.Add(summaries[i], addresses[i])
	}
}

func (c *Cube[S]) validateAddress(address []int) {
	if len(address) != len(c.dims) {
		panicf("nanocube: address has %d dimensions, want %d", len(address), len(c.dims))
	}
	for d, a := range address {
		if a < 0 || a >= (1<<uint(c.dims[d].width)) {
			panicf("nanocube: address[%d]=%d out of range for width %d", d, a, c.dims[d].width)
		}
	}
}

// insertPoint builds the new spine sharing as much as possible with the
// existing one, pins the new root, and queues the old root (and the
// now-spent top of the fresh singleton chain, when distinct) for deferred
// release. See DESIGN NOTES (c) in spec.md: the fresh chain's top node
// must be refed and then released, so that only the merged chain survives
// once the release list is flushed.
func (c *Cube[S]) insertPoint(summary S, address []int) {
	existing := c.baseRoot
	merged, fresh := c.insertBit(existing, 0, c.dims[0].width-1, address, summary)

	c.dims[0].arena.MakeRef(merged)
	if fresh != merged {
		c.dims[0].arena.MakeRef(fresh)
		c.enqueueRelease(fresh, 0)
	}
	if existing != noIndex {
		c.enqueueRelease(existing, 0)
	}
	c.baseRoot = merged
}

// insertBit is the combined descend/ascend recursion of §4.4, collapsed
// into one function since Go's call stack already plays the role of the
// spine stack described there. existing is the dims[dim] node already at
// this split position, or noIndex. It returns the new node at this same
// position in both the merged tree (old data plus the new point) and the
// fresh tree (the new point alone).
//
// bit counts down from a dimension's top bit to 0, each value a real
// split node; bit == -1 is the dimension's leaf level (a real node with
// no children, holding only the transition into the next dimension or,
// at the last dimension, the summary level) and is delegated to
// insertLeaf.
func (c *Cube[S]) insertBit(existing, dim, bit int, address []int, summary S) (merged, fresh int) {
	if bit == -1 {
		return c.insertLeaf(existing, dim, address, summary)
	}

	goRight := getBit(address[dim], bit)

	if existing == noIndex {
		child, _ := c.insertBit(noIndex, dim, bit-1, address, summary)
		left, right := noIndex, noIndex
		if goRight {
			right = child
		} else {
			left = child
		}
		next := c.computeNext(left, right, dim)
		idx := c.makeNode(left, right, next, dim)
		return idx, idx
	}

	existingNode := *c.dims[dim].arena.At(existing)
	childExisting := existingNode.left
	if goRight {
		childExisting = existingNode.right
	}
	childM, childF := c.insertBit(childExisting, dim, bit-1, address, summary)

	mLeft, mRight := existingNode.left, existingNode.right
	if goRight {
		mRight = childM
	} else {
		mLeft = childM
	}
	mNext := c.computeNext(mLeft, mRight, dim)
	merged = c.makeNode(mLeft, mRight, mNext, dim)

	fLeft, fRight := noIndex, noIndex
	if goRight {
		fRight = childF
	} else {
		fLeft = childF
	}
	fNext := c.computeNext(fLeft, fRight, dim)
	fresh = c.makeNode(fLeft, fRight, fNext, dim)

	return merged, fresh
}

// insertLeaf builds the finest-grained node of dimension dim: a leaf
// (left = right = noIndex) whose next descends into dimension dim+1, or,
// when dim is the last dimension, into the summary arena. existing is the
// leaf already occupying this address, or noIndex.
func (c *Cube[S]) insertLeaf(existing, dim int, address []int, summary S) (merged, fresh int) {
	transitionExisting := noIndex
	if existing != noIndex {
		transitionExisting = c.dims[dim].arena.At(existing).next
	}

	var tMerged, tFresh int
	if dim+1 == len(c.dims) {
		tMerged, tFresh = c.insertSummaryPair(transitionExisting, summary)
	} else {
		tMerged, tFresh = c.insertBit(transitionExisting, dim+1, c.dims[dim+1].width-1, address, summary)
	}

	fresh = c.makeNode(noIndex, noIndex, tFresh, dim)
	if existing == noIndex {
		return fresh, fresh
	}
	merged = c.makeNode(noIndex, noIndex, tMerged, dim)
	return merged, fresh
}

// insertSummaryPair is the base case once every dimension's bits have
// been consumed: existing (a summary index, or noIndex) is combined with
// a brand new summary slot holding summary alone.
func (c *Cube[S]) insertSummaryPair(existing int, summary S) (merged, fresh int) {
	fresh = c.summaries.Insert(summary)
	if existing == noIndex {
		return fresh, fresh
	}
	existingSummary := *c.summaries.At(existing)
	merged = c.summaries.Insert(c.combine(summary, existingSummary))
	return merged, fresh
}
