package ws

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"mechmania/server/internal/game"
	"mechmania/server/internal/net/proto"
	"mechmania/server/internal/sim"
	"mechmania/server/internal/telemetry"
)

const (
	metricBroadcastsTotal   = "net_broadcasts_total"
	metricBroadcastBytes    = "net_broadcast_bytes_total"
	metricBroadcastFailures = "net_broadcast_failures_total"
	metricSessionsConnected = "net_sessions_connected"
)

// Hub tracks open sessions and fans tick messages out to them.
type Hub struct {
	mu       sync.Mutex
	sessions map[game.PlayerID]*session
	logger   telemetry.Logger
	metrics  telemetry.Metrics
}

func NewHub(logger telemetry.Logger, metrics telemetry.Metrics) *Hub {
	return &Hub{
		sessions: make(map[game.PlayerID]*session),
		logger:   telemetry.Prefixed(logger, "ws"),
		metrics:  metrics,
	}
}

// attach registers s, closing any older session for the same player.
func (h *Hub) attach(s *session) {
	h.mu.Lock()
	previous := h.sessions[s.player]
	h.sessions[s.player] = s
	count := len(h.sessions)
	h.mu.Unlock()
	if previous != nil {
		previous.close(websocket.ClosePolicyViolation, "replaced by a new session")
	}
	h.store(metricSessionsConnected, uint64(count))
}

// detach removes s if it is still the player's current session.
func (h *Hub) detach(s *session) {
	h.mu.Lock()
	if h.sessions[s.player] == s {
		delete(h.sessions, s.player)
	}
	count := len(h.sessions)
	h.mu.Unlock()
	h.store(metricSessionsConnected, uint64(count))
}

// Connected lists players with an open session.
func (h *Hub) Connected() []game.PlayerID {
	h.mu.Lock()
	defer h.mu.Unlock()
	ids := make([]game.PlayerID, 0, len(h.sessions))
	for id := range h.sessions {
		ids = append(ids, id)
	}
	return ids
}

// BroadcastTick sends the step to every open session. Sessions that fail to
// receive it are closed.
func (h *Hub) BroadcastTick(step sim.LoopStepResult) {
	data, err := json.Marshal(proto.NewTick(step))
	if err != nil {
		h.logger.Printf("failed to marshal tick %d: %v", step.Tick, err)
		return
	}
	h.broadcast(data)
}

func (h *Hub) broadcast(data []byte) {
	h.mu.Lock()
	targets := make([]*session, 0, len(h.sessions))
	for _, s := range h.sessions {
		targets = append(targets, s)
	}
	h.mu.Unlock()

	for _, s := range targets {
		if err := s.WriteMessage(websocket.TextMessage, data); err != nil {
			h.add(metricBroadcastFailures, 1)
			s.close(websocket.CloseGoingAway, "write failed")
			h.detach(s)
			continue
		}
		h.add(metricBroadcastBytes, uint64(len(data)))
	}
	h.add(metricBroadcastsTotal, 1)
}

func (h *Hub) add(key string, delta uint64) {
	telemetry.Add(h.metrics, key, delta)
}

func (h *Hub) store(key string, value uint64) {
	telemetry.Store(h.metrics, key, value)
}
