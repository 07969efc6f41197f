package replay

import (
	"mechmania/server/internal/game"
	"mechmania/server/internal/sim"
)

// FormatVersion is written into every header.
const FormatVersion = 1

// Header opens every replay log. It holds what a fresh engine needs to
// reproduce the match.
type Header struct {
	Version int                 `json:"version" msgpack:"version"`
	Map     game.MapDescription `json:"map" msgpack:"map"`
	Players []game.PlayerID     `json:"players" msgpack:"players"`
}

// Record is one tick: the commands applied before it, their results and
// the resulting summaries and checksum.
type Record struct {
	Tick      uint64              `json:"tick" msgpack:"tick"`
	Commands  []sim.Command       `json:"commands" msgpack:"commands"`
	Results   []sim.Result        `json:"results" msgpack:"results"`
	Summaries []sim.PlayerSummary `json:"summaries" msgpack:"summaries"`
	Checksum  string              `json:"checksum" msgpack:"checksum"`
}

// NewHeader describes the match engine is about to play.
func NewHeader(engine *sim.Engine) Header {
	return Header{
		Version: FormatVersion,
		Map:     engine.Map(),
		Players: engine.PlayerIDs(),
	}
}

// FromStep converts a loop step into a record.
func FromStep(step sim.LoopStepResult) Record {
	return Record{
		Tick:      step.Tick,
		Commands:  step.Commands,
		Results:   step.Results,
		Summaries: step.Summaries,
		Checksum:  step.Checksum,
	}
}
