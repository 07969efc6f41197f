package sim

import (
	"testing"

	"mechmania/server/internal/game"
	"mechmania/server/internal/telemetry"
	"mechmania/server/logging"
)

func TestCommandBufferWraparound(t *testing.T) {
	buffer := NewCommandBuffer(3, 0, nil)
	cmds := []Command{
		IncreaseUpgrade("a"),
		IncreaseUpgrade("b"),
		IncreaseUpgrade("c"),
	}
	for i, cmd := range cmds {
		if reason, length := buffer.Push(cmd); reason != "" || length != i+1 {
			t.Fatalf("expected push %d to succeed, got reason=%q length=%d", i, reason, length)
		}
	}
	if reason, _ := buffer.Push(IncreaseUpgrade("overflow")); reason != CommandRejectQueueFull {
		t.Fatalf("expected queue_full when buffer full, got %q", reason)
	}
	drained := buffer.Drain()
	if len(drained) != len(cmds) {
		t.Fatalf("expected %d commands, got %d", len(cmds), len(drained))
	}
	for i, cmd := range drained {
		if cmd.ActorID != cmds[i].ActorID {
			t.Fatalf("expected drain order %v, got %v", cmds[i].ActorID, cmd.ActorID)
		}
	}
	// The next pushes start mid-ring and wrap past the end.
	for _, actor := range []game.PlayerID{"d", "e"} {
		if reason, _ := buffer.Push(IncreaseUpgrade(actor)); reason != "" {
			t.Fatalf("expected push to succeed after drain for %s, got %q", actor, reason)
		}
	}
	wrapped := buffer.Drain()
	if len(wrapped) != 2 || wrapped[0].ActorID != "d" || wrapped[1].ActorID != "e" {
		t.Fatalf("unexpected order after wraparound: %+v", wrapped)
	}
	if buffer.Drain() != nil {
		t.Fatalf("expected empty drain to return nil")
	}
}

func TestCommandBufferPerActorLimit(t *testing.T) {
	buffer := NewCommandBuffer(8, 2, nil)
	for i := 0; i < 2; i++ {
		if reason, _ := buffer.Push(IncreaseUpgrade("a")); reason != "" {
			t.Fatalf("push %d for a rejected: %q", i, reason)
		}
	}
	if reason, length := buffer.Push(IncreaseUpgrade("a")); reason != CommandRejectQueueLimit || length != 2 {
		t.Fatalf("expected queue_limit with 2 staged, got reason=%q length=%d", reason, length)
	}
	if reason, _ := buffer.Push(IncreaseUpgrade("b")); reason != "" {
		t.Fatalf("limit should be per actor, got %q", reason)
	}
	if got := buffer.Staged("a"); got != 2 {
		t.Fatalf("expected 2 staged for a, got %d", got)
	}

	if drained := buffer.Drain(); len(drained) != 3 {
		t.Fatalf("expected 3 drained commands, got %d", len(drained))
	}
	if got := buffer.Staged("a"); got != 0 {
		t.Fatalf("expected allowance reset after drain, got %d", got)
	}
	if reason, _ := buffer.Push(IncreaseUpgrade("a")); reason != "" {
		t.Fatalf("expected push after drain to succeed, got %q", reason)
	}
}

func TestCommandBufferFullDoesNotSpendAllowance(t *testing.T) {
	buffer := NewCommandBuffer(1, 2, nil)
	buffer.Push(IncreaseUpgrade("a"))
	if reason, _ := buffer.Push(IncreaseUpgrade("b")); reason != CommandRejectQueueFull {
		t.Fatalf("expected queue_full, got %q", reason)
	}
	if got := buffer.Staged("b"); got != 0 {
		t.Fatalf("rejected push counted against b: %d", got)
	}
}

func TestCommandBufferMetrics(t *testing.T) {
	metrics := logging.NewMetrics()
	buffer := NewCommandBuffer(2, 1, telemetry.WrapMetrics(metrics))
	if reason, _ := buffer.Push(IncreaseUpgrade("one")); reason != "" {
		t.Fatalf("expected initial push to succeed, got %q", reason)
	}
	if reason, _ := buffer.Push(IncreaseUpgrade("one")); reason != CommandRejectQueueLimit {
		t.Fatalf("expected queue_limit, got %q", reason)
	}
	buffer.Push(IncreaseUpgrade("two"))
	if reason, _ := buffer.Push(IncreaseUpgrade("three")); reason != CommandRejectQueueFull {
		t.Fatalf("expected queue_full, got %q", reason)
	}
	if got := metrics.Value(commandBufferOccupancyMetricKey); got != 2 {
		t.Fatalf("expected occupancy 2, got %d", got)
	}
	if got := metrics.Value(commandBufferOverflowMetricKey); got != 1 {
		t.Fatalf("expected one overflow, got %d", got)
	}
	if got := metrics.Value(commandBufferThrottledMetricKey); got != 1 {
		t.Fatalf("expected one throttled push, got %d", got)
	}
	buffer.Drain()
	if got := metrics.Value(commandBufferOccupancyMetricKey); got != 0 {
		t.Fatalf("expected occupancy reset, got %d", got)
	}
}
