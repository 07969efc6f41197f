package proto

import (
	"encoding/json"
	"fmt"

	"mechmania/server/internal/game"
	"mechmania/server/internal/sim"
)

// Version tracks the wire-protocol revision expected by clients.
const Version = 1

// Client message type identifiers.
const (
	TypeCommand = "command"
)

// Server message type identifiers.
const (
	TypeCommandAck    = "commandAck"
	TypeCommandReject = "commandReject"
	TypeTick          = "tick"
	TypeState         = "state"
)

// ClientMessage is an inbound websocket frame.
type ClientMessage struct {
	Ver     int          `json:"ver,omitempty"`
	Type    string       `json:"type"`
	Seq     uint64       `json:"seq,omitempty"`
	Command *sim.Command `json:"command,omitempty"`
}

// CommandAck confirms a command was queued for the next tick.
type CommandAck struct {
	Ver  int    `json:"ver"`
	Type string `json:"type"`
	Seq  uint64 `json:"seq"`
}

// CommandReject reports a command that never reached the queue.
type CommandReject struct {
	Ver    int    `json:"ver"`
	Type   string `json:"type"`
	Seq    uint64 `json:"seq"`
	Reason string `json:"reason"`
	Retry  bool   `json:"retry,omitempty"`
}

// Tick is broadcast to every session after each tick.
type Tick struct {
	Ver       int                 `json:"ver"`
	Type      string              `json:"type"`
	Tick      uint64              `json:"tick"`
	Summaries []sim.PlayerSummary `json:"summaries"`
	Results   []sim.Result        `json:"results,omitempty"`
	Checksum  string              `json:"checksum"`
}

// State carries a full snapshot, sent when a session opens.
type State struct {
	Ver      int          `json:"ver"`
	Type     string       `json:"type"`
	Snapshot sim.Snapshot `json:"snapshot"`
}

// ConnectResponse is the body of a successful /connect.
type ConnectResponse struct {
	ID   game.PlayerID `json:"id"`
	Auth string        `json:"auth"`
}

// CommandRequest is the body of POST /command.
type CommandRequest struct {
	ID      game.PlayerID `json:"id"`
	Auth    string        `json:"auth"`
	Command sim.Command   `json:"command"`
}

// ErrorResponse is the body of every failed HTTP request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// DecodeClientMessage parses a websocket frame.
func DecodeClientMessage(data []byte) (ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return ClientMessage{}, fmt.Errorf("decode client message: %w", err)
	}
	if msg.Ver != 0 && msg.Ver != Version {
		return ClientMessage{}, fmt.Errorf("unsupported protocol version %d", msg.Ver)
	}
	return msg, nil
}

func NewCommandAck(seq uint64) CommandAck {
	return CommandAck{Ver: Version, Type: TypeCommandAck, Seq: seq}
}

func NewCommandReject(seq uint64, reason string, retry bool) CommandReject {
	return CommandReject{Ver: Version, Type: TypeCommandReject, Seq: seq, Reason: reason, Retry: retry}
}

// NewTick renders a loop step for broadcast.
func NewTick(step sim.LoopStepResult) Tick {
	return Tick{
		Ver:       Version,
		Type:      TypeTick,
		Tick:      step.Tick,
		Summaries: step.Summaries,
		Results:   step.Results,
		Checksum:  step.Checksum,
	}
}

func NewState(snapshot sim.Snapshot) State {
	return State{Ver: Version, Type: TypeState, Snapshot: snapshot}
}
