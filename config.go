// MIT License

package nanocube

import "github.com/sirupsen/logrus"

// _DEFAULTRELEASETHRESHOLD is the number of pending entries in the
// release-list that triggers an implicit FlushReleaseList during Add,
// AddMany, or MergeCube.
const _DEFAULTRELEASETHRESHOLD int = 256

// configs stores the values of the different construction-time parameters
// of a Cube.
type configs struct {
	releaseThreshold int
	logger           *logrus.Logger
}

func makeconfigs() *configs {
	return &configs{
		releaseThreshold: _DEFAULTRELEASETHRESHOLD,
		logger:           log,
	}
}

// ReleaseThreshold is a configuration option (function). Used as a parameter
// in New, it sets the number of pending (idx, dim) entries the release-list
// accumulates before FlushReleaseList runs implicitly. Batching these
// decrements avoids thrashing a hot arena's free list during a single
// insert's many ref/release pairs (see DESIGN NOTES in spec.md, "Deferred
// reclamation"). The default is 256; values below 1 are ignored.
func ReleaseThreshold(n int) func(*configs) {
	return func(c *configs) {
		if n >= 1 {
			c.releaseThreshold = n
		}
	}
}

// WithLogger is a configuration option (function). Used as a parameter in
// New, it sets the logger this cube uses for its debug-level messages.
// Programmer errors are always reported through the package-wide logger
// set by SetLogger. A nil logger is ignored.
func WithLogger(l *logrus.Logger) func(*configs) {
	return func(c *configs) {
		if l != nil {
			c.logger = l
		}
	}
}
