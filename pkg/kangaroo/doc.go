// Package kangaroo solves the secp256k1 discrete logarithm problem for
// private keys known to lie in a bounded interval [A, B], using Pollard's
// parallelized kangaroo (lambda) algorithm with tame and wild herds and
// distinguished-point collision detection.
//
// # Quick Start
//
//	import "github.com/mahdiidarabi/kangaroo/pkg/kangaroo"
//
//	target, err := kangaroo.ParsePublicKey("03...")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	solver, err := kangaroo.NewSolver(rangeStart, rangeEnd, []kangaroo.Point{target})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := solver.Run(runtime.NumCPU(), nil); err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, sol := range solver.Solutions() {
//	    var k [32]byte
//	    sol.PrivateKey.PutBytes(&k)
//	    fmt.Printf("found: %x\n", k)
//	}
//
// # How it works
//
// Each worker owns a herd of 128 kangaroos, half tame and half wild. A tame
// kangaroo walks from a known scalar offset of the range start; a wild one
// walks from the unknown target key. Both follow the same pseudo-random jump
// function keyed on the current x coordinate, so once a tame and a wild walk
// meet they stay merged, and the private key falls out of the difference of
// their accumulated distances. Only distinguished points, whose x coordinate
// has a prescribed number of leading zero bits, are reported to the central
// hash table, keeping its size and lock traffic small.
//
// # Customization
//
// The distinguished-point size is computed from the range width and the
// walker count; override it when comparing against other tools:
//
//	solver, _ := kangaroo.NewSolver(rangeStart, rangeEnd, targets)
//	solver.WithDPSize(12).WithLogger(logger)
//
// # Accelerated backends
//
// An external batched walker (typically a GPU) can join the search by
// implementing the BatchWalker interface; the solver drives it alongside the
// CPU workers. The CPU core is complete without one.
package kangaroo
