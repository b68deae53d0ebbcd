// MIT License

package nanocube

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Every error condition in this package is a programmer error: an invariant
// breach or a precondition violation (out-of-range index, releasing a
// zero-refcount slot, a compaction inconsistency, an empty widths list, a
// malformed address or query bounds, a
// merge_cube between cubes of different widths). None of them is
// transient or retryable -- the core has no I/O -- so we signal them
// loudly, with a logged, stack-carrying error, and then panic rather than
// returning a value the caller might ignore.

var log = logrus.New()

// SetLogger replaces the package-wide logger used to report programmer
// errors before panicking. It exists for callers that want these traps
// folded into their own structured-logging pipeline.
func SetLogger(l *logrus.Logger) {
	if l != nil {
		log = l
	}
}

func panicf(format string, args ...interface{}) {
	err := errors.Errorf(format, args...)
	log.WithField("component", "nanocube").Error(err)
	panic(err)
}
