package sim

import (
	"context"
	"sync"
	"time"

	"mechmania/server/internal/game"
	"mechmania/server/internal/telemetry"
	"mechmania/server/logging"
	"mechmania/server/logging/simulation"
)

// LoopConfig tunes the command buffer and tick loop orchestration.
type LoopConfig struct {
	TickRate        int
	CommandCapacity int
	PerActorLimit   int
	WarningStep     int
}

// LoopHooks are optional callbacks invoked from the loop goroutine.
type LoopHooks struct {
	AfterStep      func(LoopStepResult)
	OnCommandDrop  func(reason string, cmd Command)
	OnQueueWarning func(length int)
}

// LoopStepResult is everything one loop iteration produced.
type LoopStepResult struct {
	TickResult
	Commands []Command
	Results  []Result
	Duration time.Duration
	Budget   time.Duration
}

// Loop coordinates command ingestion and the fixed-timestep simulation runner.
type Loop struct {
	engine  *Engine
	buffer  *CommandBuffer
	hooks   LoopHooks
	config  LoopConfig
	logger  telemetry.Logger
	metrics telemetry.Metrics
	pub     logging.Publisher
	clock   logging.Clock

	dropMu     sync.Mutex
	dropCounts map[game.PlayerID]uint64
}

// NewLoop wraps engine with a ring-buffer queue and ticker.
func NewLoop(engine *Engine, cfg LoopConfig, hooks LoopHooks) *Loop {
	if engine == nil {
		return nil
	}
	if cfg.TickRate <= 0 {
		cfg.TickRate = 2
	}
	if cfg.CommandCapacity <= 0 {
		cfg.CommandCapacity = 256
	}
	deps := engine.Deps()
	return &Loop{
		engine:     engine,
		buffer:     NewCommandBuffer(cfg.CommandCapacity, cfg.PerActorLimit, deps.Metrics),
		hooks:      hooks,
		config:     cfg,
		logger:     deps.Logger,
		metrics:    deps.Metrics,
		pub:        deps.Publisher,
		clock:      deps.Clock,
		dropCounts: make(map[game.PlayerID]uint64),
	}
}

func (l *Loop) Engine() *Engine {
	if l == nil {
		return nil
	}
	return l.engine
}

// Snapshot delegates to the underlying engine.
func (l *Loop) Snapshot() Snapshot {
	if l == nil {
		return Snapshot{}
	}
	return l.engine.Snapshot()
}

// Pending reports the number of staged commands.
func (l *Loop) Pending() int {
	if l == nil {
		return 0
	}
	return l.buffer.Len()
}

// Enqueue stages a command for the next tick, enforcing the per-actor limit
// and buffer capacity.
func (l *Loop) Enqueue(cmd Command) (bool, string) {
	if l == nil {
		return false, CommandRejectQueueFull
	}
	reason, length := l.buffer.Push(cmd)
	if reason != "" {
		l.reportDrop(reason, cmd, l.incrementDrop(cmd.ActorID))
		return false, reason
	}
	if step := l.config.WarningStep; step > 0 && length%step == 0 {
		l.warnQueue(length)
	}
	return true, ""
}

// Advance drains the staged commands, applies them and steps the engine
// once.
func (l *Loop) Advance(ctx context.Context) (LoopStepResult, error) {
	if l == nil {
		return LoopStepResult{}, nil
	}
	start := l.clock.Now()
	commands := l.buffer.Drain()
	results := l.engine.Apply(commands)
	tick, err := l.engine.Step(ctx)
	if err != nil {
		return LoopStepResult{}, err
	}
	result := LoopStepResult{
		TickResult: tick,
		Commands:   commands,
		Results:    results,
		Duration:   l.clock.Now().Sub(start),
		Budget:     time.Second / time.Duration(l.config.TickRate),
	}
	l.report(ctx, result)
	return result, nil
}

// Run drives the fixed-timestep loop until ctx ends, the match is decided,
// or a tick fails.
func (l *Loop) Run(ctx context.Context) error {
	if l == nil {
		return nil
	}
	ticker := time.NewTicker(time.Second / time.Duration(l.config.TickRate))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			result, err := l.Advance(ctx)
			if err != nil {
				return err
			}
			if l.hooks.AfterStep != nil {
				l.hooks.AfterStep(result)
			}
			if l.engine.Finished() {
				return nil
			}
		}
	}
}

func (l *Loop) report(ctx context.Context, result LoopStepResult) {
	rejected, attacks, deaths, arrivals := 0, 0, 0, 0
	for _, r := range result.Results {
		if !r.Accepted {
			rejected++
		}
	}
	for _, s := range result.Summaries {
		attacks += len(s.Summary.Attacks)
		deaths += len(s.Summary.Deaths)
		arrivals += len(s.Summary.Damages)
	}
	simulation.TickResolved(ctx, l.pub, result.Tick, simulation.TickResolvedPayload{
		Commands: len(result.Commands),
		Rejected: rejected,
		Attacks:  attacks,
		Deaths:   deaths,
		Arrivals: arrivals,
		Checksum: result.Checksum,
	})
	if result.Budget > 0 && result.Duration > result.Budget {
		simulation.TickBudgetOverrun(ctx, l.pub, result.Tick, simulation.TickBudgetOverrunPayload{
			DurationMillis: result.Duration.Milliseconds(),
			BudgetMillis:   result.Budget.Milliseconds(),
			Ratio:          float64(result.Duration) / float64(result.Budget),
		})
	}
}

func (l *Loop) incrementDrop(actorID game.PlayerID) uint64 {
	if actorID == "" {
		return 0
	}
	l.dropMu.Lock()
	defer l.dropMu.Unlock()
	count := l.dropCounts[actorID] + 1
	l.dropCounts[actorID] = count
	return count
}

func (l *Loop) warnQueue(length int) {
	if l.hooks.OnQueueWarning != nil {
		l.hooks.OnQueueWarning(length)
	}
}

func (l *Loop) reportDrop(reason string, cmd Command, count uint64) {
	if l.hooks.OnCommandDrop != nil {
		l.hooks.OnCommandDrop(reason, cmd)
	}
	// Log on powers of two.
	if count > 0 && count&(count-1) == 0 && l.logger != nil {
		l.logger.Printf(
			"[backpressure] dropping command actor=%s type=%s reason=%s count=%d limit=%d",
			cmd.ActorID,
			cmd.Type,
			reason,
			count,
			l.config.PerActorLimit,
		)
	}
}
