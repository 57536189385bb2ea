// Command sm3rainbow hashes strings with SM3 and builds and attacks SM3
// rainbow tables.
package main

import (
	"bufio"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/alecthomas/kong"

	"github.com/sm3rainbow/sm3rainbow/internal/logging"
	"github.com/sm3rainbow/sm3rainbow/internal/progress"
	"github.com/sm3rainbow/sm3rainbow/pipeline"
	"github.com/sm3rainbow/sm3rainbow/rainbow"
	"github.com/sm3rainbow/sm3rainbow/rtio"
	"github.com/sm3rainbow/sm3rainbow/sm3"
)

const (
	defaultCharset    = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	defaultMinLength  = 5
	defaultMaxLength  = 6
	defaultNumChain   = 10000
	defaultChainLen   = 10000
	defaultTableIndex = 0
)

type hashCmd struct {
	Impl   string   `enum:"native,reference" default:"native" help:"Which SM3 implementation to use."`
	Inputs []string `arg:"" optional:"" help:"Strings to hash. Reads lines from stdin when omitted."`
}

func (c *hashCmd) Run() error {
	sum := sm3.Sum
	if c.Impl == "reference" {
		sum = sm3.ReferenceSum
	}

	if len(c.Inputs) > 0 {
		for _, s := range c.Inputs {
			h := sum([]byte(s))
			fmt.Println(hex.EncodeToString(h[:]))
		}
		return nil
	}

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		h := sum(scanner.Bytes())
		fmt.Println(hex.EncodeToString(h[:]))
	}
	return scanner.Err()
}

type generateCmd struct {
	Charset    string `default:"${defaultCharset}" help:"Charset to draw plaintexts from."`
	MinLength  int    `default:"${defaultMinLength}" help:"Minimum plaintext length."`
	MaxLength  int    `default:"${defaultMaxLength}" help:"Maximum plaintext length."`
	NumChain   uint64 `default:"${defaultNumChain}" help:"Number of chains in the table."`
	ChainLen   uint64 `default:"${defaultChainLen}" help:"Chain length."`
	TableIndex uint64 `default:"${defaultTableIndex}" help:"Table index (selects the deterministic head offset and default filename)."`
	Output     string `help:"Output path. Defaults to a name derived from the table parameters."`
	Force      bool   `help:"Overwrite the output file if it already exists."`
}

func (c *generateCmd) Run() error {
	ks, err := rainbow.NewKeySpace([]byte(c.Charset), c.MinLength, c.MaxLength)
	if err != nil {
		return exitError{code: 1, err: err}
	}

	output := c.Output
	if output == "" {
		output = fmt.Sprintf("sm3_m%d_M%d_l%d_c%d_i%04d.dat",
			c.MinLength, c.MaxLength, c.ChainLen, c.NumChain, c.TableIndex)
	}

	// Resolve/reject the output path before doing any chain-build work
	// (spec §4.6 step 2 precedes step 3): a pre-existing file without
	// --force must fail fast rather than after a full parallel build.
	if err := rtio.CheckOutputPath(output, c.Force); err != nil {
		return exitError{code: 1, err: err}
	}

	bar := progress.NewBar(os.Stderr, "generate", c.NumChain, 200*time.Millisecond)

	params := pipeline.BuildParams{
		KeySpace:   ks,
		NumChain:   c.NumChain,
		ChainLen:   c.ChainLen,
		TableIndex: c.TableIndex,
	}
	table, err := pipeline.Build(context.Background(), params, bar, rand.New(rand.NewSource(time.Now().UnixNano())))
	if err != nil {
		return exitError{code: 2, err: err}
	}

	if err := rtio.CreateTable(output, c.Force, table); err != nil {
		if errors.Is(err, rtio.ErrOutputExists) {
			return exitError{code: 1, err: err}
		}
		return exitError{code: 2, err: err}
	}

	logging.Infof("generate: wrote %s", output)
	return nil
}

type lookupCmd struct {
	Hash  []string `help:"Target digest, hex-encoded. Repeatable." required:""`
	Table []string `help:"Table file path. Repeatable." required:""`
}

func (c *lookupCmd) Run() error {
	var tables []*rtio.MappedTable
	for _, path := range c.Table {
		mt, err := rtio.Open(path)
		if err != nil {
			return exitError{code: 1, err: err}
		}
		defer mt.Close()
		tables = append(tables, mt)
	}

	targets := make([]pipeline.Target, len(c.Hash))
	for i, h := range c.Hash {
		raw, err := hex.DecodeString(h)
		if err != nil || len(raw) != sm3.Size {
			return exitError{code: 1, err: fmt.Errorf("lookup: invalid target digest %q", h)}
		}
		copy(targets[i][:], raw)
	}

	bar := progress.NewBar(os.Stderr, "lookup", uint64(len(targets))*uint64(tables[0].Header.ChainLen), 200*time.Millisecond)
	results, err := pipeline.Lookup(context.Background(), tables, targets, bar)
	if err != nil {
		return exitError{code: 1, err: err}
	}

	for i, r := range results {
		if len(r.Plaintexts) == 0 {
			fmt.Printf("%s: not found\n", c.Hash[i])
			continue
		}
		for _, p := range r.Plaintexts {
			fmt.Printf("%s: %s\n", c.Hash[i], p)
		}
	}
	return nil
}

type exitError struct {
	code int
	err  error
}

func (e exitError) Error() string { return e.err.Error() }
func (e exitError) Unwrap() error { return e.err }

var cli struct {
	Hash     hashCmd     `cmd:"" help:"Hash strings with SM3."`
	Generate generateCmd `cmd:"" help:"Build a rainbow table."`
	Lookup   lookupCmd   `cmd:"" help:"Attack digests against one or more rainbow tables."`
}

func main() {
	ctx := kong.Parse(&cli, kong.Vars{
		"defaultCharset":    defaultCharset,
		"defaultMinLength":  fmt.Sprint(defaultMinLength),
		"defaultMaxLength":  fmt.Sprint(defaultMaxLength),
		"defaultNumChain":   fmt.Sprint(defaultNumChain),
		"defaultChainLen":   fmt.Sprint(defaultChainLen),
		"defaultTableIndex": fmt.Sprint(defaultTableIndex),
	})
	err := ctx.Run()
	if err == nil {
		return
	}

	fmt.Fprintln(os.Stderr, "Error:", err)
	var ee exitError
	if errors.As(err, &ee) {
		os.Exit(ee.code)
	}
	os.Exit(1)
}
