// Package sm3rainbow is an umbrella package for the sm3rainbow module: an
// SM3 digest implementation (package sm3), the rainbow-table key space,
// reduction, chain and table algebra (package rainbow), the on-disk table
// format and memory-mapped reader (package rtio), the parallel build/lookup
// orchestration (package pipeline), and the sm3rainbow command line tool
// (cmd/sm3rainbow). It declares no symbols of its own.
package sm3rainbow
