package net

import (
	"encoding/json"
	nethttp "net/http"

	"mechmania/server/internal/net/intake"
	"mechmania/server/internal/net/proto"
	"mechmania/server/internal/net/ws"
	"mechmania/server/internal/sim"
	"mechmania/server/internal/telemetry"
	"mechmania/server/logging"
	"mechmania/server/logging/network"
)

type HTTPHandlerConfig struct {
	Clients   *ClientManager
	Match     ws.Match
	Sessions  *ws.Handler
	Logger    telemetry.Logger
	Publisher logging.Publisher
}

// NewHTTPHandler routes the match endpoints: /connect, /command, /state,
// /health and the /ws session upgrade.
func NewHTTPHandler(cfg HTTPHandlerConfig) nethttp.Handler {
	publisher := cfg.Publisher
	if publisher == nil {
		publisher = logging.NopPublisher()
	}
	logger := telemetry.Prefixed(cfg.Logger, "net")

	mux := nethttp.NewServeMux()

	mux.HandleFunc("/health", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/connect", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodPost {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}
		client, ok := cfg.Clients.Add()
		if !ok {
			network.ClientRejected(r.Context(), publisher, logging.EntityRef{Kind: logging.EntityKindClient}, network.ClientPayload{Remote: r.RemoteAddr, Reason: "server_full"})
			httpError(w, "server is full", nethttp.StatusForbidden)
			return
		}
		actor := logging.EntityRef{ID: string(client.ID), Kind: logging.EntityKindClient}
		network.ClientConnected(r.Context(), publisher, actor, network.ClientPayload{Remote: r.RemoteAddr})

		// Hold the response until every seat is taken.
		select {
		case <-cfg.Clients.Started():
		case <-r.Context().Done():
			logger.Printf("%s stopped waiting for the match to fill", client.ID)
			return
		}
		writeJSON(w, nethttp.StatusOK, proto.ConnectResponse{ID: client.ID, Auth: client.Token})
	})

	mux.HandleFunc("/command", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodPost {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}
		defer r.Body.Close()
		var req proto.CommandRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, "invalid payload", nethttp.StatusBadRequest)
			return
		}
		if !cfg.Clients.Authorize(req.ID, req.Auth) {
			httpError(w, "bad id or auth code", nethttp.StatusUnauthorized)
			return
		}
		msg := proto.ClientMessage{Type: proto.TypeCommand, Command: &req.Command}
		_, ok, reason := intake.StageClientCommand(intake.CommandContext{Queue: cfg.Match, HasPlayer: cfg.Clients.Has}, req.ID, msg)
		if !ok {
			status := nethttp.StatusBadRequest
			if reason == sim.CommandRejectQueueLimit || reason == sim.CommandRejectQueueFull {
				status = nethttp.StatusTooManyRequests
			}
			writeJSON(w, status, proto.ErrorResponse{Error: reason})
			return
		}
		writeJSON(w, nethttp.StatusAccepted, map[string]string{"status": "queued"})
	})

	mux.HandleFunc("/state", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodGet {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, nethttp.StatusOK, proto.NewState(cfg.Match.Snapshot()))
	})

	if cfg.Sessions != nil {
		mux.HandleFunc("/ws", cfg.Sessions.Handle)
	}

	return mux
}

func writeJSON(w nethttp.ResponseWriter, status int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		nethttp.Error(w, "failed to encode", nethttp.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func httpError(w nethttp.ResponseWriter, msg string, code int) {
	writeJSON(w, code, proto.ErrorResponse{Error: msg})
}
