package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/hexaflex/arena/war"
)

// Config defines program configuration.
type Config struct {
	Dir         string        // Directory holding the warrior binaries.
	Wars        int           // Wars per team combination.
	Teams       int           // Teams per war.
	Seed        int64         // Base seed; zero picks one from the clock.
	Rounds      int           // Round cap per war.
	Parallel    int           // Wars run concurrently.
	View        bool          // Show the arena in the terminal?
	Delay       time.Duration // Pause between rounds while viewing.
	Watch       bool          // Rerun when the warrior directory changes?
	SnapshotDir string        // Where final memory snapshots are written, if set.
	Verbose     bool          // Log warrior lifecycle events?
	PrintTrace  bool          // Log every executed instruction?
}

// parseArgs parses command line arguments as applicable.
//
// If an error occurred, this exits the program with an appropriate message.
// When version information is requested, it is printed to stdout and the program ends cleanly.
func parseArgs() *Config {
	var c Config
	c.Wars = 1
	c.Teams = 2
	c.Rounds = war.MaxRounds
	c.Parallel = runtime.NumCPU()
	c.Delay = 10 * time.Millisecond

	flag.Usage = func() {
		fmt.Printf("%s [options] <warrior directory>\n", os.Args[0])
		flag.PrintDefaults()
	}

	flag.IntVar(&c.Wars, "wars", c.Wars, "Number of wars per team combination.")
	flag.IntVar(&c.Teams, "teams", c.Teams, "Number of teams loaded into each war.")
	flag.Int64Var(&c.Seed, "seed", c.Seed, "Random seed. Zero picks one from the clock.")
	flag.IntVar(&c.Rounds, "rounds", c.Rounds, "Round cap per war.")
	flag.IntVar(&c.Parallel, "parallel", c.Parallel, "Number of wars run concurrently.")
	flag.BoolVar(&c.View, "view", c.View, "Show the arena in the terminal. Implies -parallel 1.")
	flag.DurationVar(&c.Delay, "delay", c.Delay, "Pause between rounds while viewing.")
	flag.BoolVar(&c.Watch, "watch", c.Watch, "Rerun the tournament whenever the warrior directory changes.")
	flag.StringVar(&c.SnapshotDir, "snapshot", c.SnapshotDir, "Write the final memory of every war to this directory.")
	flag.BoolVar(&c.Verbose, "verbose", c.Verbose, "Log warrior lifecycle events.")
	flag.BoolVar(&c.PrintTrace, "trace", c.PrintTrace, "Log every executed instruction. Very slow.")

	version := flag.Bool("version", false, "Display version information.")
	flag.Parse()

	if *version {
		fmt.Println(Version())
		os.Exit(0)
	}

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(1)
	}

	c.Dir = flag.Arg(0)

	if c.Seed == 0 {
		c.Seed = time.Now().UnixNano()
	}

	if c.View && c.Watch {
		fmt.Fprintln(os.Stderr, "-view and -watch can not be combined")
		os.Exit(1)
	}

	if c.View {
		c.Parallel = 1
	}

	return &c
}
