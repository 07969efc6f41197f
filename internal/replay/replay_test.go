package replay

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"mechmania/server/internal/game"
	"mechmania/server/internal/sim"
)

func testMap() game.MapDescription {
	return game.MapDescription{
		Name: "lane",
		Side: 5,
		Base: []game.Coord{{Row: 2, Col: 2}},
		Path: []game.Coord{{Row: 0, Col: 2}, {Row: 1, Col: 2}},
	}
}

// recordMatch plays a short scripted match through a loop and writes it.
func recordMatch(t *testing.T, w func(Header) (*Writer, error)) []string {
	t.Helper()
	engine, err := sim.NewEngine(testMap(), sim.Deps{})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	for _, id := range []game.PlayerID{"a", "b"} {
		if err := engine.AddPlayer(id); err != nil {
			t.Fatalf("AddPlayer: %v", err)
		}
	}
	writer, err := w(NewHeader(engine))
	if err != nil {
		t.Fatalf("writer: %v", err)
	}
	loop := sim.NewLoop(engine, sim.LoopConfig{}, sim.LoopHooks{})
	script := map[int][]sim.Command{
		0: {sim.PlaceTower("b", game.Coord{Row: 1, Col: 1}), sim.PurchaseUnit("a", 1, game.SpecArmoured)},
		1: {sim.PurchaseUnitOn("b", "a", 0, 0, 0), sim.SellTower("a", game.Coord{Row: 4, Col: 4})},
		2: {sim.SpecialiseTower("b", game.Coord{Row: 1, Col: 1}, game.SpecSniper)},
	}
	checksums := make([]string, 0, 6)
	for i := 0; i < 6; i++ {
		for _, cmd := range script[i] {
			loop.Enqueue(cmd)
		}
		step, err := loop.Advance(context.Background())
		if err != nil {
			t.Fatalf("Advance: %v", err)
		}
		if err := writer.Write(FromStep(step)); err != nil {
			t.Fatalf("Write: %v", err)
		}
		checksums = append(checksums, step.Checksum)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return checksums
}

func TestReplayRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		opts Options
	}{
		{"json", Options{Codec: CodecJSON}},
		{"json lz4", Options{Codec: CodecJSON, Compress: true}},
		{"msgpack", Options{Codec: CodecMsgpack}},
		{"msgpack lz4", Options{Codec: CodecMsgpack, Compress: true}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			checksums := recordMatch(t, func(h Header) (*Writer, error) {
				return NewWriter(&buf, tc.opts, h)
			})

			reader, err := NewReader(bytes.NewReader(buf.Bytes()))
			if err != nil {
				t.Fatalf("NewReader: %v", err)
			}
			if reader.Codec() != tc.opts.Codec {
				t.Fatalf("detected codec %s, want %s", reader.Codec(), tc.opts.Codec)
			}
			header := reader.Header()
			if len(header.Players) != 2 || header.Map.Name != "lane" || len(header.Map.Path) != 2 {
				t.Fatalf("unexpected header %+v", header)
			}

			var visited int
			summary, err := Replay(context.Background(), reader, sim.Deps{}, func(rec Record, result sim.TickResult) error {
				visited++
				if len(rec.Commands) != len(rec.Results) {
					t.Fatalf("tick %d: %d commands but %d results", rec.Tick, len(rec.Commands), len(rec.Results))
				}
				return nil
			})
			if err != nil {
				t.Fatalf("Replay: %v", err)
			}
			if visited != len(checksums) || summary.Ticks != uint64(len(checksums)) {
				t.Fatalf("replayed %d ticks, want %d", visited, len(checksums))
			}
			if summary.Checksum != checksums[len(checksums)-1] {
				t.Fatalf("final checksum %s, want %s", summary.Checksum, checksums[len(checksums)-1])
			}
		})
	}
}

func TestReplayDetectsDivergence(t *testing.T) {
	var log bytes.Buffer
	engine, err := sim.NewEngine(testMap(), sim.Deps{})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	if err := engine.AddPlayer("a"); err != nil {
		t.Fatalf("AddPlayer: %v", err)
	}
	writer, err := NewWriter(&log, Options{}, NewHeader(engine))
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	result, err := engine.Step(context.Background())
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	result.Checksum = "tampered"
	if err := writer.Write(Record{Tick: result.Tick, Checksum: result.Checksum}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	writer.Close()

	reader, err := NewReader(&log)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	if _, err := Replay(context.Background(), reader, sim.Deps{}, nil); !errors.Is(err, ErrDivergence) {
		t.Fatalf("expected divergence, got %v", err)
	}
}

func TestCreateAndOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "match.replay")
	checksums := recordMatch(t, func(h Header) (*Writer, error) {
		return Create(path, Options{Codec: CodecMsgpack, Compress: true}, h)
	})
	reader, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer reader.Close()
	summary, err := Replay(context.Background(), reader, sim.Deps{}, nil)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if summary.Checksum != checksums[len(checksums)-1] {
		t.Fatalf("unexpected final checksum %s", summary.Checksum)
	}
}

func TestParseCodec(t *testing.T) {
	if c, err := ParseCodec(""); err != nil || c != CodecJSON {
		t.Fatalf("empty codec: %v %v", c, err)
	}
	if c, err := ParseCodec("msgpack"); err != nil || c != CodecMsgpack {
		t.Fatalf("msgpack codec: %v %v", c, err)
	}
	if _, err := ParseCodec("xml"); err == nil {
		t.Fatalf("expected error for unknown codec")
	}
}

func TestNewReaderRejectsGarbage(t *testing.T) {
	if _, err := NewReader(bytes.NewReader([]byte("not a log"))); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := NewReader(bytes.NewReader(nil)); err == nil {
		t.Fatalf("expected error for empty input")
	}
}
