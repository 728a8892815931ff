package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"

	"go.uber.org/zap"

	"github.com/mahdiidarabi/kangaroo/internal/config"
	"github.com/mahdiidarabi/kangaroo/pkg/kangaroo"
)

func main() {
	var (
		numWorkers = flag.Int("t", runtime.NumCPU(), "Number of CPU workers")
		dpSize     = flag.Int("d", -1, "Distinguished point size in bits (-1 = auto)")
		gpuIDs     = flag.String("gpu", "", "Comma-separated GPU ids (requires an accelerator backend)")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <configfile>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "The config file holds the range start and end in hex on the first two\n")
		fmt.Fprintf(os.Stderr, "lines, then one public key per line.\n\nFlags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}

	log, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	search, err := config.Parse(flag.Arg(0), log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Start: %064x\n", search.RangeStart)
	fmt.Printf("Stop : %064x\n", search.RangeEnd)
	fmt.Printf("Keys : %d\n", len(search.Keys))

	if *gpuIDs != "" {
		log.Warn("no accelerator backend is compiled in, ignoring -gpu", zap.String("gpu", *gpuIDs))
	}

	solver, err := kangaroo.NewSolver(search.RangeStart, search.RangeEnd, search.Keys)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	solver.WithLogger(log).WithDPSize(*dpSize)

	fmt.Printf("Number of CPU workers: %d\n", *numWorkers)

	if err := solver.Run(*numWorkers, nil); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
