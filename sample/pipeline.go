package sample

import (
	"context"
	"fmt"

	"github.com/graftml/graft/device"
	"github.com/graftml/graft/graph"
)

// Pipeline iterates an item set of seed nodes in minibatches and samples the
// in-neighborhood subgraph of each batch in turn.
type Pipeline struct {
	Device    *device.Device
	Graph     *graph.FusedCSC
	BatchSize int
}

// Each calls fn once per minibatch, in item order. It stops on the first
// error, and checks ctx between batches; enqueued device work is never
// cancelled mid-flight, matching the stream's fire-and-forget contract.
func (p *Pipeline) Each(ctx context.Context, seeds []int64, fn func(*Subgraph) error) error {
	// no batch size means one batch over everything
	batch := p.BatchSize
	if batch <= 0 {
		batch = len(seeds)
	}
	if batch == 0 {
		return nil
	}

	for lo := 0; lo < len(seeds); lo += batch {
		if err := ctx.Err(); err != nil {
			return err
		}

		hi := min(lo+batch, len(seeds))
		sg, err := InSubgraph(p.Device, p.Graph, seeds[lo:hi])
		if err != nil {
			return fmt.Errorf("sample: batch [%d, %d): %w", lo, hi, err)
		}

		if err := fn(sg); err != nil {
			return err
		}
	}

	return nil
}
