// MIT License

package nanocube

import "sort"

// noIndex is the nullable-index sentinel used throughout the package in
// place of a pointer: any node or summary index field holding noIndex means
// "no such edge", matching the source's Option<usize>/None.
const noIndex int = -1

// RefCountedArena is a pool of values of type T with a per-slot reference
// count and a free-list for reuse. Insert returns a slot index that stays
// stable until that slot's refcount drops to zero and the slot is reused by
// a later Insert.
//
// All of a RefCountedArena's invariants are the caller's to maintain: the
// arena itself never looks inside T to find and decrement pointers a
// released value might have held (see Cube.FlushReleaseList for that
// cascade).
type RefCountedArena[T any] struct {
	values    []T
	refcounts []int32
	freeList  []int
}

// NewRefCountedArena returns an empty arena.
func NewRefCountedArena[T any]() *RefCountedArena[T] {
	return &RefCountedArena[T]{}
}

// Len returns the number of slots, including slots whose refcount has
// fallen to zero and that sit on the free-list until reused by Insert or
// removed by Compact.
func (a *RefCountedArena[T]) Len() int {
	return len(a.values)
}

func (a *RefCountedArena[T]) checkBounds(idx int) {
	if idx < 0 || idx >= len(a.values) {
		panicf("nanocube: arena index %d out of bounds (len %d)", idx, len(a.values))
	}
}

// At returns a pointer to the value at idx, for reading or in-place
// mutation. It panics if idx is out of bounds.
func (a *RefCountedArena[T]) At(idx int) *T {
	a.checkBounds(idx)
	return &a.values[idx]
}

// Refcount returns the current reference count of idx.
func (a *RefCountedArena[T]) Refcount(idx int) int32 {
	a.checkBounds(idx)
	return a.refcounts[idx]
}

// Insert stores v in a free slot if one is available, else appends a new
// slot, and returns its index. A reused slot's refcount must already be
// zero -- the arena asserts this rather than resetting it, since a stray
// positive refcount on a "free" slot is an invariant breach elsewhere.
func (a *RefCountedArena[T]) Insert(v T) int {
	if n := len(a.freeList); n > 0 {
		idx := a.freeList[n-1]
		a.freeList = a.freeList[:n-1]
		if a.refcounts[idx] != 0 {
			panicf("nanocube: free-list slot %d has nonzero refcount %d", idx, a.refcounts[idx])
		}
		a.values[idx] = v
		return idx
	}
	a.values = append(a.values, v)
	a.refcounts = append(a.refcounts, 0)
	return len(a.values) - 1
}

// MakeRef increments idx's reference count and returns the new count.
func (a *RefCountedArena[T]) MakeRef(idx int) int32 {
	a.checkBounds(idx)
	a.refcounts[idx]++
	return a.refcounts[idx]
}

// ReleaseRef decrements idx's reference count and returns the new count.
// When the count reaches zero the slot is pushed onto the free-list. It
// panics if the count was already zero (a double-free).
func (a *RefCountedArena[T]) ReleaseRef(idx int) int32 {
	a.checkBounds(idx)
	if a.refcounts[idx] <= 0 {
		panicf("nanocube: release_ref on zero-refcount slot %d", idx)
	}
	a.refcounts[idx]--
	if a.refcounts[idx] == 0 {
		a.freeList = append(a.freeList, idx)
	}
	return a.refcounts[idx]
}

func sortedNoDuplicates(v []int) bool {
	for i := 0; i+1 < len(v); i++ {
		if v[i] >= v[i+1] {
			return false
		}
	}
	return true
}

// Compact stably removes free-list holes by swapping live slots from the
// tail of the arena into the leading holes and popping the tail, returning
// a map from each moved slot's old index to its new index. Indices that did
// not move are absent from the map. Callers that keep external pointers
// into this arena (another arena's "next" field, a Cube's base root, ...)
// must rewrite them through the returned map; Compact itself cannot do this
// since it has no notion of "pointer fields" within T.
//
// This is a direct transcription of the reference ref_counted_vec's
// compact: sort the free-list, then repeatedly patch the lowest unpatched
// hole with the value currently at the back of the live range.
func (a *RefCountedArena[T]) Compact() map[int]int {
	result := make(map[int]int)
	if len(a.freeList) == 0 {
		return result
	}
	free := append([]int(nil), a.freeList...)
	sort.Ints(free)
	if !sortedNoDuplicates(free) {
		panicf("nanocube: arena free-list has duplicates after sort")
	}
	valuesI := len(a.values) - 1
	holesB, holesE := 0, len(free)
	for holesB != holesE {
		if a.refcounts[valuesI] == 0 {
			if valuesI != free[holesE-1] {
				panicf("nanocube: compact expected free slot at %d", valuesI)
			}
			holesE--
			a.values = a.values[:valuesI]
			a.refcounts = a.refcounts[:valuesI]
			if valuesI == 0 {
				break
			}
			valuesI--
			continue
		}
		hole := free[holesB]
		if a.refcounts[hole] != 0 {
			panicf("nanocube: compact expected hole %d to be free", hole)
		}
		if hole >= valuesI {
			panicf("nanocube: compact hole %d not below live index %d", hole, valuesI)
		}
		a.values[hole] = a.values[valuesI]
		a.refcounts[hole] = a.refcounts[valuesI]
		result[valuesI] = hole
		a.values = a.values[:valuesI]
		a.refcounts = a.refcounts[:valuesI]
		holesB++
		if valuesI == 0 {
			break
		}
		valuesI--
	}
	a.freeList = a.freeList[:0]
	return result
}

// Extend appends a clone of other's values (each passed through f, which
// typically rewrites any index fields T carries to account for this
// arena's current length), refcounts, and an offset-adjusted copy of
// other's free-list. It is used by Cube.MergeCube to fold one cube's
// arenas into another's.
func (a *RefCountedArena[T]) Extend(other *RefCountedArena[T], f func(T) T) {
	offset := len(a.values)
	for i, v := range other.values {
		a.values = append(a.values, f(v))
		a.refcounts = append(a.refcounts, other.refcounts[i])
	}
	for _, idx := range other.freeList {
		a.freeList = append(a.freeList, idx+offset)
	}
}
