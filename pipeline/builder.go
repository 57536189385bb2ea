// Package pipeline implements the data-parallel build and lookup orchestration
// (spec §4.6, §4.7) on top of package rainbow, using errgroup as the
// work-stealing pool spec §5 describes.
package pipeline

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/sm3rainbow/sm3rainbow/internal/logging"
	"github.com/sm3rainbow/sm3rainbow/internal/progress"
	"github.com/sm3rainbow/sm3rainbow/rainbow"
)

// BuildParams are the inputs to Build (spec §4.6).
type BuildParams struct {
	KeySpace   *rainbow.KeySpace
	NumChain   uint64
	ChainLen   uint64
	TableIndex uint64
	Rho        uint64
}

// Build runs the fixed-point chain build (spec §4.5 "Finalisation", §4.6
// steps 3-4): an initial batch of NumChain chains from deterministic heads,
// then sort/dedup/refill from random heads until the target count is
// reached. Progress is reported once per chain built, across every round.
func Build(ctx context.Context, p BuildParams, sink progress.Sink, rng *rand.Rand) (*rainbow.Table, error) {
	if sink == nil {
		sink = progress.Noop{}
	}

	logging.Infof("build: table %d, n=%d, l=%d, N=%d", p.TableIndex, p.NumChain, p.ChainLen, p.KeySpace.N)

	heads := make([]uint64, p.NumChain)
	for i := uint64(0); i < p.NumChain; i++ {
		heads[i] = p.TableIndex*p.NumChain + i
	}

	chains, err := buildChains(ctx, p, heads, sink)
	if err != nil {
		return nil, err
	}

	table := &rainbow.Table{
		KeySpace:   p.KeySpace,
		ChainLen:   p.ChainLen,
		Rho:        p.Rho,
		TableIndex: p.TableIndex,
		Chains:     chains,
	}
	table.Sort()
	table.Dedup()

	for uint64(len(table.Chains)) < p.NumChain {
		missing := p.NumChain - uint64(len(table.Chains))
		logging.Debugf("build: refilling %d chains", missing)

		refillHeads := make([]uint64, missing)
		for i := range refillHeads {
			refillHeads[i] = uint64(rng.Int63n(int64(p.KeySpace.N)))
		}

		more, err := buildChains(ctx, p, refillHeads, sink)
		if err != nil {
			return nil, err
		}
		table.Chains = append(table.Chains, more...)
		table.Sort()
		table.Dedup()
	}

	logging.Infof("build: table %d complete, %d chains", p.TableIndex, len(table.Chains))
	sink.Done()
	return table, nil
}

// buildChains builds one chain per head, in parallel, capped at GOMAXPROCS
// concurrent goroutines (spec §4.12).
func buildChains(ctx context.Context, p BuildParams, heads []uint64, sink progress.Sink) ([]rainbow.Chain, error) {
	chains := make([]rainbow.Chain, len(heads))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, head := range heads {
		i, head := i, head
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			scratch := rainbow.NewScratch(p.KeySpace)
			chains[i] = rainbow.Build(p.KeySpace, head, p.ChainLen, p.Rho, scratch)
			sink.Inc(1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("pipeline: build: %w", err)
	}
	return chains, nil
}
