// Command replay re-simulates a recorded match and checks every tick
// against the logged checksum.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"mechmania/server/internal/replay"
	"mechmania/server/internal/sim"
)

const (
	exitError      = 1
	exitDivergence = 2
)

func main() {
	var (
		inPath string
		quiet  bool
	)
	flag.StringVar(&inPath, "in", "", "replay log to verify")
	flag.BoolVar(&quiet, "quiet", false, "only print the final summary")
	flag.Parse()

	if inPath == "" {
		fmt.Fprintln(os.Stderr, "--in is required")
		os.Exit(exitError)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	out := io.Writer(os.Stdout)
	if quiet {
		out = io.Discard
	}
	summary, err := run(ctx, inPath, out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		if errors.Is(err, replay.ErrDivergence) {
			os.Exit(exitDivergence)
		}
		os.Exit(exitError)
	}
	fmt.Fprintf(os.Stdout, "replayed %d ticks, checksum %s, finished=%t\n", summary.Ticks, summary.Checksum, summary.Finished)
}

func run(ctx context.Context, path string, out io.Writer) (replay.Summary, error) {
	reader, err := replay.Open(path)
	if err != nil {
		return replay.Summary{}, err
	}
	defer reader.Close()

	header := reader.Header()
	fmt.Fprintf(out, "map %s, players %v, codec %s\n", header.Map.Name, header.Players, reader.Codec())
	return replay.Replay(ctx, reader, sim.Deps{}, func(rec replay.Record, result sim.TickResult) error {
		printTick(out, rec, result)
		return nil
	})
}

func printTick(out io.Writer, rec replay.Record, result sim.TickResult) {
	rejected := 0
	for _, r := range rec.Results {
		if !r.Accepted {
			rejected++
		}
	}
	fmt.Fprintf(out, "tick %d: %d commands (%d rejected)\n", result.Tick, len(rec.Commands), rejected)
	for _, s := range result.Summaries {
		fmt.Fprintf(out, "  %s health=%d resources=%d arrivals=%d attacks=%d kills=%d\n",
			s.Player, s.Health, s.Resources, len(s.Summary.Damages), len(s.Summary.Attacks), len(s.Summary.Deaths))
	}
}
