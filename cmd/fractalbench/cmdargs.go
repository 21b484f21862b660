package main

import (
	"flag"
	"io"
	"runtime"
	"time"
)

type cmdArgs struct {
	fs        *flag.FlagSet
	Workloads string
	Sizes     string
	Align     uint
	Iter      uint
	Rounds    uint
	Workers   uint
	Seed      int64
	Pages     uint
	NoVerify  bool
	Timeout   time.Duration
	Verbose   bool
}

func newCmdArgs(output io.Writer) (ca *cmdArgs) {
	ca = &cmdArgs{
		fs: flag.NewFlagSet("fractalbench", flag.ContinueOnError),
	}
	ca.fs.SetOutput(output)
	ca.fs.StringVar(&ca.Workloads, "w", "single,bulk,mixed", "Comma separated list of workloads")
	ca.fs.StringVar(&ca.Sizes, "s", "8,16,32,64,128,256", "Comma separated list of request sizes in bytes")
	ca.fs.UintVar(&ca.Align, "a", 8, "Alignment of every request")
	ca.fs.UintVar(&ca.Iter, "n", 1000, "Blocks per round")
	ca.fs.UintVar(&ca.Rounds, "r", 10, "Rounds per workload and size")
	ca.fs.UintVar(&ca.Workers, "c", uint(runtime.GOMAXPROCS(0)), "Number of parallel workers")
	ca.fs.Int64Var(&ca.Seed, "seed", 1, "Seed for shuffling and size selection")
	ca.fs.UintVar(&ca.Pages, "p", 0, "Maximum number of pages to acquire (0 is unlimited)")
	ca.fs.BoolVar(&ca.NoVerify, "noverify", false, "Skip overlap and checksum verification")
	ca.fs.DurationVar(&ca.Timeout, "t", 0, "Abort the run after this long (0 is no limit)")
	ca.fs.BoolVar(&ca.Verbose, "v", false, "Log at debug level")
	return
}

func (ca *cmdArgs) Parse(arguments []string) (err error) {
	err = ca.fs.Parse(arguments)
	return
}
