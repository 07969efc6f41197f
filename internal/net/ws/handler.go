package ws

import (
	"context"
	"encoding/json"
	nethttp "net/http"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"mechmania/server/internal/game"
	"mechmania/server/internal/net/intake"
	"mechmania/server/internal/net/proto"
	"mechmania/server/internal/sim"
	"mechmania/server/internal/telemetry"
	"mechmania/server/logging"
	"mechmania/server/logging/network"
)

// CommandRejectRateLimited indicates the session exceeded its command rate.
const CommandRejectRateLimited = "rate_limited"

// Authorizer checks the credentials handed out by /connect.
type Authorizer interface {
	Authorize(id game.PlayerID, token string) bool
}

// Match is the part of the running match a session talks to.
type Match interface {
	intake.Queue
	Snapshot() sim.Snapshot
}

type HandlerConfig struct {
	Logger    telemetry.Logger
	Publisher logging.Publisher
	// CommandRate is the sustained commands per second allowed per session.
	// Zero disables throttling.
	CommandRate  float64
	CommandBurst int
}

type Handler struct {
	hub       *Hub
	auth      Authorizer
	match     Match
	logger    telemetry.Logger
	publisher logging.Publisher
	upgrader  websocket.Upgrader
	rate      rate.Limit
	burst     int
}

func NewHandler(hub *Hub, auth Authorizer, match Match, cfg HandlerConfig) *Handler {
	publisher := cfg.Publisher
	if publisher == nil {
		publisher = logging.NopPublisher()
	}
	burst := cfg.CommandBurst
	if burst <= 0 {
		burst = 1
	}
	return &Handler{
		hub:       hub,
		auth:      auth,
		match:     match,
		logger:    telemetry.Prefixed(cfg.Logger, "ws"),
		publisher: publisher,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *nethttp.Request) bool {
				return true
			},
		},
		rate:  rate.Limit(cfg.CommandRate),
		burst: burst,
	}
}

// Handle upgrades an authenticated request and runs the session until the
// client goes away.
func (h *Handler) Handle(w nethttp.ResponseWriter, r *nethttp.Request) {
	query := r.URL.Query()
	playerID := game.PlayerID(query.Get("id"))
	if playerID == "" {
		nethttp.Error(w, "missing id", nethttp.StatusBadRequest)
		return
	}
	actor := logging.EntityRef{ID: string(playerID), Kind: logging.EntityKindClient}
	if h.auth == nil || !h.auth.Authorize(playerID, query.Get("auth")) {
		network.ClientRejected(r.Context(), h.publisher, actor, network.ClientPayload{Remote: r.RemoteAddr, Reason: "bad_auth"})
		nethttp.Error(w, "bad id or auth code", nethttp.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("upgrade failed for %s: %v", playerID, err)
		return
	}

	var limiter *rate.Limiter
	if h.rate > 0 {
		limiter = rate.NewLimiter(h.rate, h.burst)
	}
	s := newSession(playerID, conn, limiter)
	h.hub.attach(s)
	network.ClientConnected(r.Context(), h.publisher, actor, network.ClientPayload{Remote: r.RemoteAddr})

	reason := h.serve(s)
	s.close(websocket.CloseNormalClosure, reason)
	h.hub.detach(s)
	network.ClientDisconnected(context.Background(), h.publisher, actor, network.ClientPayload{Remote: r.RemoteAddr, Reason: reason})
}

func (h *Handler) serve(s *session) string {
	if !h.writeJSON(s, proto.NewState(h.match.Snapshot())) {
		return "write_failed"
	}
	ctx := intake.CommandContext{Queue: h.match}
	for {
		_, payload, err := s.conn.ReadMessage()
		if err != nil {
			return "read_closed"
		}
		msg, err := proto.DecodeClientMessage(payload)
		if err != nil {
			h.logger.Printf("discarding malformed message from %s: %v", s.player, err)
			continue
		}
		if s.duplicate(msg.Seq) {
			if !h.writeJSON(s, proto.NewCommandAck(msg.Seq)) {
				return "write_failed"
			}
			continue
		}
		if !s.allow() {
			if !h.writeJSON(s, proto.NewCommandReject(msg.Seq, CommandRejectRateLimited, true)) {
				return "write_failed"
			}
			continue
		}
		_, ok, reason := intake.StageClientCommand(ctx, s.player, msg)
		var reply any
		if ok {
			s.storeSeq(msg.Seq)
			reply = proto.NewCommandAck(msg.Seq)
		} else {
			retry := reason == sim.CommandRejectQueueLimit || reason == sim.CommandRejectQueueFull
			reply = proto.NewCommandReject(msg.Seq, reason, retry)
		}
		if msg.Seq == 0 {
			continue
		}
		if !h.writeJSON(s, reply) {
			return "write_failed"
		}
	}
}

func (h *Handler) writeJSON(s *session, payload any) bool {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Printf("failed to marshal response for %s: %v", s.player, err)
		return true
	}
	return s.WriteMessage(websocket.TextMessage, data) == nil
}

