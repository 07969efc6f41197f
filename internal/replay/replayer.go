package replay

import (
	"context"
	"errors"
	"fmt"
	"io"

	"mechmania/server/internal/sim"
)

// ErrDivergence reports that re-simulating a log produced a different state
// than the one recorded.
var ErrDivergence = errors.New("replay: divergence")

// Summary describes a completed replay.
type Summary struct {
	Ticks    uint64
	Checksum string
	Finished bool
}

// NewEngine builds the engine a header describes, players joined in the
// recorded order.
func NewEngine(header Header, deps sim.Deps) (*sim.Engine, error) {
	engine, err := sim.NewEngine(header.Map, deps)
	if err != nil {
		return nil, fmt.Errorf("replay: build engine: %w", err)
	}
	for _, id := range header.Players {
		if err := engine.AddPlayer(id); err != nil {
			return nil, fmt.Errorf("replay: add player %s: %w", id, err)
		}
	}
	return engine, nil
}

// Replay re-simulates every record of r against a fresh engine. visit, when
// set, sees each record alongside the replayed tick before the checksum is
// compared.
func Replay(ctx context.Context, r *Reader, deps sim.Deps, visit func(Record, sim.TickResult) error) (Summary, error) {
	engine, err := NewEngine(r.Header(), deps)
	if err != nil {
		return Summary{}, err
	}
	var summary Summary
	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return summary, err
		}
		engine.Apply(rec.Commands)
		result, err := engine.Step(ctx)
		if err != nil {
			return summary, fmt.Errorf("replay: tick %d: %w", rec.Tick, err)
		}
		if visit != nil {
			if err := visit(rec, result); err != nil {
				return summary, err
			}
		}
		if result.Tick != rec.Tick {
			return summary, fmt.Errorf("%w: expected tick %d, replayed %d", ErrDivergence, rec.Tick, result.Tick)
		}
		if result.Checksum != rec.Checksum {
			return summary, fmt.Errorf("%w: tick %d: recorded %s, replayed %s", ErrDivergence, rec.Tick, rec.Checksum, result.Checksum)
		}
		summary.Ticks = result.Tick
		summary.Checksum = result.Checksum
	}
	summary.Finished = engine.Finished()
	return summary, nil
}
