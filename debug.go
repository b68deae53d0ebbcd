// MIT License

//go:build debug

package nanocube

import "github.com/sirupsen/logrus"

const _DEBUG bool = true

func init() {
	log.SetLevel(logrus.TraceLevel)
}

// traceArena logs arena occupancy for dimension d, or the summary pool
// when d == len(c.dims). Only compiled into builds tagged "debug"; nothing
// in the package calls it, so FlushReleaseList and Compact log no occupancy
// in either build.
func (c *Cube[S]) traceArena(d int) {
	if d == len(c.dims) {
		c.logger.WithFields(logrus.Fields{
			"pool": "summaries",
			"live": c.summaries.Len(),
			"free": len(c.summaries.freeList),
		}).Trace("nanocube: arena occupancy")
		return
	}
	c.logger.WithFields(logrus.Fields{
		"pool": d,
		"live": c.dims[d].arena.Len(),
		"free": len(c.dims[d].arena.freeList),
	}).Trace("nanocube: arena occupancy")
}
