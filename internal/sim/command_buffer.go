package sim

import (
	"sync"

	"mechmania/server/internal/game"
	"mechmania/server/internal/telemetry"
)

const (
	// CommandRejectQueueLimit means the actor already has PerActorLimit
	// commands staged for the coming tick.
	CommandRejectQueueLimit = "queue_limit"
	// CommandRejectQueueFull means the shared ring has no free slot.
	CommandRejectQueueFull = "queue_full"
)

const (
	commandBufferOccupancyMetricKey = "sim_command_buffer_occupancy"
	commandBufferOverflowMetricKey  = "sim_command_buffer_overflow_total"
	commandBufferThrottledMetricKey = "sim_command_buffer_throttled_total"
)

// CommandBuffer stages the commands of one tick in a fixed-size ring and
// caps how many of them a single player may stage. It is safe for concurrent
// producers and a single consumer.
type CommandBuffer struct {
	mu       sync.Mutex
	data     []Command
	head     int
	count    int
	perActor int
	staged   map[game.PlayerID]int
	metrics  telemetry.Metrics
}

// NewCommandBuffer constructs a ring of capacity slots. perActor <= 0
// disables the per-player cap.
func NewCommandBuffer(capacity, perActor int, metrics telemetry.Metrics) *CommandBuffer {
	return &CommandBuffer{
		data:     make([]Command, max(capacity, 1)),
		perActor: perActor,
		staged:   make(map[game.PlayerID]int),
		metrics:  metrics,
	}
}

// Push stages cmd. On success it returns an empty reason and the number of
// staged commands; otherwise it returns CommandRejectQueueLimit or
// CommandRejectQueueFull and leaves the buffer unchanged.
func (b *CommandBuffer) Push(cmd Command) (string, int) {
	if b == nil {
		return CommandRejectQueueFull, 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.perActor > 0 && cmd.ActorID != "" && b.staged[cmd.ActorID] >= b.perActor {
		telemetry.Inc(b.metrics, commandBufferThrottledMetricKey)
		return CommandRejectQueueLimit, b.count
	}
	if b.count == len(b.data) {
		telemetry.Inc(b.metrics, commandBufferOverflowMetricKey)
		return CommandRejectQueueFull, b.count
	}
	b.data[(b.head+b.count)%len(b.data)] = cmd
	b.count++
	if cmd.ActorID != "" {
		b.staged[cmd.ActorID]++
	}
	telemetry.Store(b.metrics, commandBufferOccupancyMetricKey, uint64(b.count))
	return "", b.count
}

// Drain returns all staged commands in arrival order, empties the ring and
// resets every player's allowance.
func (b *CommandBuffer) Drain() []Command {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.count == 0 {
		return nil
	}
	commands := make([]Command, b.count)
	for i := range commands {
		slot := (b.head + i) % len(b.data)
		commands[i] = b.data[slot]
		b.data[slot] = Command{}
	}
	b.head = (b.head + b.count) % len(b.data)
	b.count = 0
	clear(b.staged)
	telemetry.Store(b.metrics, commandBufferOccupancyMetricKey, 0)
	return commands
}

// Len reports the number of staged commands.
func (b *CommandBuffer) Len() int {
	if b == nil {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// Staged reports how many commands actor has staged for the coming tick.
func (b *CommandBuffer) Staged(actor game.PlayerID) int {
	if b == nil {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.staged[actor]
}
