package sinks

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"mechmania/server/logging"
)

func sampleEvent() logging.Event {
	return logging.Event{
		Type:     "combat.unit_killed",
		Tick:     7,
		Time:     time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Actor:    logging.PlayerRef("player-1"),
		Targets:  []logging.EntityRef{logging.PlayerRef("player-2")},
		Severity: logging.SeverityWarn,
		Category: logging.CategoryCombat,
		Payload:  map[string]int{"bounty": 5},
	}
}

func TestJSONWritesOneLinePerEvent(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSON(&buf, 0)
	if err := sink.Write(sampleEvent()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := sink.Write(sampleEvent()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := sink.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded["severity"] != "warn" || decoded["type"] != "combat.unit_killed" {
		t.Fatalf("unexpected record %v", decoded)
	}
}

func TestConsoleFormatsActorAndTargets(t *testing.T) {
	var buf bytes.Buffer
	sink := NewConsole(&buf)
	if err := sink.Write(sampleEvent()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	line := buf.String()
	for _, want := range []string{"[combat.unit_killed]", "tick=7", "actor=player:player-1", "targets=player:player-2", `payload={"bounty":5}`} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %q", want, line)
		}
	}
}

func TestZapMapsSeverityAndFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	sink, err := NewZap(zap.New(core))
	if err != nil {
		t.Fatalf("NewZap: %v", err)
	}
	if err := sink.Write(sampleEvent()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.Level != zapcore.WarnLevel || entry.Message != "combat.unit_killed" {
		t.Fatalf("unexpected entry %+v", entry.Entry)
	}
	fields := entry.ContextMap()
	if fields["tick"] != uint64(7) || fields["actor"] != "player:player-1" {
		t.Fatalf("unexpected fields %v", fields)
	}
}

func TestMemoryResetAndFilter(t *testing.T) {
	mem := NewMemory()
	mem.Publish(context.Background(), sampleEvent())
	mem.Publish(context.Background(), logging.Event{Type: "other"})
	if got := len(mem.OfType("other")); got != 1 {
		t.Fatalf("expected one filtered event, got %d", got)
	}
	mem.Reset()
	if len(mem.Events()) != 0 {
		t.Fatalf("expected reset to clear events")
	}
}
