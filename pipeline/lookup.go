package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/sm3rainbow/sm3rainbow/internal/logging"
	"github.com/sm3rainbow/sm3rainbow/internal/progress"
	"github.com/sm3rainbow/sm3rainbow/rainbow"
	"github.com/sm3rainbow/sm3rainbow/rtio"
	"github.com/sm3rainbow/sm3rainbow/sm3"
)

// Target is a digest to recover a plaintext for (spec §4.7 inputs).
type Target = [sm3.Size]byte

// Result holds the plaintexts recovered for one target, deduped.
type Result struct {
	Target     Target
	Plaintexts [][]byte
}

// Lookup attacks every target against every table (spec §4.7). All tables
// must share identical parameters and charset (checked against the first
// table opened); a mismatch is an error for the whole batch.
func Lookup(ctx context.Context, tables []*rtio.MappedTable, targets []Target, sink progress.Sink) ([]Result, error) {
	if len(tables) == 0 {
		return nil, fmt.Errorf("pipeline: lookup: no tables given")
	}
	if sink == nil {
		sink = progress.Noop{}
	}

	first := tables[0]
	for _, t := range tables[1:] {
		if !t.SameParameters(first) {
			return nil, fmt.Errorf("pipeline: lookup: table %s parameters disagree with %s", t.Path, first.Path)
		}
	}

	ks, err := rainbow.NewKeySpace(first.Charset, int(first.Header.MinLength), int(first.Header.MaxLength))
	if err != nil {
		return nil, fmt.Errorf("pipeline: lookup: %w", err)
	}

	results := make([]Result, len(targets))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for ti, target := range targets {
		ti, target := ti, target
		g.Go(func() error {
			found := map[string][]byte{}
			for _, table := range tables {
				hits, err := lookupOne(ctx, ks, table, target, sink)
				if err != nil {
					return err
				}
				for _, p := range hits {
					found[string(p)] = p
				}
			}
			plaintexts := make([][]byte, 0, len(found))
			for _, p := range found {
				plaintexts = append(plaintexts, p)
			}
			results[ti] = Result{Target: target, Plaintexts: plaintexts}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("pipeline: lookup: %w", err)
	}
	logging.Infof("lookup: %d targets against %d table(s) complete", len(targets), len(tables))
	return results, nil
}

// lookupOne runs the per-offset attack (spec §4.7 step 3) for a single
// (target, table) pair, in parallel over chain offsets.
func lookupOne(ctx context.Context, ks *rainbow.KeySpace, table *rtio.MappedTable, target Target, sink progress.Sink) ([][]byte, error) {
	chainLen := table.Header.ChainLen
	rho := uint64(0) // the table file format does not persist rho beyond what's folded into its chains; builds in this repo always use rho=0 (see DESIGN.md).

	var hits [][]byte
	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i := uint64(0); i < chainLen; i++ {
		i := i
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			off := chainLen - 1 - i
			i0 := rainbow.Reduce(target[:], rho, ks.N, off)

			index := i0
			if i > 0 {
				scratch := rainbow.NewScratch(ks)
				index = rainbow.Traverse(ks, i0, off+1, i, rho, nil, scratch)
			}

			chain, _, ok := table.Probe(index)
			sink.Inc(1)
			if !ok {
				return nil
			}

			plaintext, matched := replay(ks, chain, chainLen, rho, target)
			if !matched {
				logging.Debugf("lookup: false alarm at offset %d, tail %d", off, index)
				return nil
			}

			mu.Lock()
			hits = append(hits, plaintext)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return hits, nil
}

// replay walks chain's chain from its head, stopping at the first digest
// equal to target (spec §4.7 step 3, "replay the matching chain").
func replay(ks *rainbow.KeySpace, chain rainbow.Chain, chainLen uint64, rho uint64, target Target) ([]byte, bool) {
	scratch := rainbow.NewScratch(ks)
	var recovered []byte

	observe := func(h *[sm3.Size]byte, plaintext []byte, length int) bool {
		if *h == target {
			recovered = append([]byte(nil), plaintext[:length]...)
			return true
		}
		return false
	}

	rainbow.Traverse(ks, chain.Head, 0, chainLen, rho, observe, scratch)
	return recovered, recovered != nil
}
