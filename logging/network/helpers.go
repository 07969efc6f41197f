package network

import (
	"context"

	"mechmania/server/logging"
)

const (
	// EventClientConnected is emitted when a client is admitted.
	EventClientConnected logging.EventType = "network.client_connected"
	// EventClientRejected is emitted when a connection or frame is refused.
	EventClientRejected logging.EventType = "network.client_rejected"
	// EventClientDisconnected is emitted when a session ends.
	EventClientDisconnected logging.EventType = "network.client_disconnected"
)

// ClientPayload carries the remote address and an optional reason.
type ClientPayload struct {
	Remote string `json:"remote,omitempty"`
	Reason string `json:"reason,omitempty"`
}

func publish(ctx context.Context, pub logging.Publisher, eventType logging.EventType, severity logging.Severity, actor logging.EntityRef, payload ClientPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     eventType,
		Actor:    actor,
		Severity: severity,
		Category: logging.CategoryNetwork,
		Payload:  payload,
	})
}

// ClientConnected publishes an admitted client.
func ClientConnected(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, payload ClientPayload) {
	publish(ctx, pub, EventClientConnected, logging.SeverityInfo, actor, payload)
}

// ClientRejected publishes a refused connection or frame.
func ClientRejected(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, payload ClientPayload) {
	publish(ctx, pub, EventClientRejected, logging.SeverityWarn, actor, payload)
}

// ClientDisconnected publishes a closed session.
func ClientDisconnected(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, payload ClientPayload) {
	publish(ctx, pub, EventClientDisconnected, logging.SeverityInfo, actor, payload)
}
