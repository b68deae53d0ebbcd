// MIT License

/*
Package nanocube implements an in-memory nanocube: a compressed,
shared-structure data cube that supports incremental insertion of
multi-dimensional points carrying a monoid-valued summary, and answers
axis-aligned orthogonal range aggregation queries.

Basics

A cube is built over a fixed list of dimension widths, each a number of bits.
An address is a point: one coordinate per dimension, each coordinate bound by
its dimension's width. Every inserted point carries a summary value drawn
from a commutative monoid (an associative, commutative combining function
plus an identity value) supplied once, at construction time, via New.

Dimensions are chained: a node's third pointer ("next") either refines into
the following dimension or, at the last dimension, lands in the summary
pool. This lets a single insert or query traverse a prefix of dimensions,
sharing as much of the existing structure as possible.

Structural sharing and reference counting

All nodes and summaries live in reference-counted arenas (see
RefCountedArena). Insert never mutates existing nodes; it builds a new spine
that shares untouched sub-DAGs with the old one. Each rebuilt node's next
pointer is recomputed by merging its children's next pointers (see
computeNext, in refs.go), so an insert re-merges the aggregates along its
path; it does not take a shortcut that combines an existing aggregate with
the freshly built singleton alone.

Released references are not reclaimed immediately; they are queued and
drained in batches by FlushReleaseList, whether implicitly (after a
configurable threshold) or explicitly, to avoid thrashing the free list
during a single insert's many ref/release pairs.

Use of build tags

Compiling with the build tag `debug` sets the package-wide logger to trace
level, so the debug-level messages a cube emits through that logger (cube
creation, merge completion) are shown; it does not change any algorithm.

Concurrency

A Cube is not safe for concurrent mutation. Read-only range queries over a
quiescent cube (no concurrent Add, AddMany, MergeCube, FlushReleaseList, or
Compact) are safe to share across goroutines.
*/
package nanocube
