// Package kernels implements the device-side index-slicing routines used by
// the sampling pipeline. Kernels are submitted onto a device stream and run
// asynchronously; within a single kernel, elements are processed with
// arbitrary parallelism over a worker grid.
package kernels

import (
	"golang.org/x/sync/errgroup"

	"github.com/graftml/graft/envconfig"
)

// grid runs fn over [0, n) split into contiguous per-worker chunks. Chunks
// share nothing; fn must only write indices inside its own range.
func grid(n int, fn func(lo, hi int) error) error {
	if n <= 0 {
		return nil
	}

	workers := envconfig.Threads()
	if workers > n {
		workers = n
	}
	chunk := (n + workers - 1) / workers

	var g errgroup.Group
	for lo := 0; lo < n; lo += chunk {
		lo := lo
		hi := min(lo+chunk, n)
		g.Go(func() error {
			return fn(lo, hi)
		})
	}

	return g.Wait()
}
