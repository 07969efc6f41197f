package lifecycle

import (
	"context"

	"mechmania/server/logging"
)

const (
	// EventPlayerJoined is emitted when a player is added to the match.
	EventPlayerJoined logging.EventType = "lifecycle.player_joined"
	// EventPlayerDied is emitted on the tick a player's health runs out.
	EventPlayerDied logging.EventType = "lifecycle.player_died"
	// EventMatchStarted is emitted once the roster is full.
	EventMatchStarted logging.EventType = "lifecycle.match_started"
)

// PlayerJoinedPayload captures the board a player was given.
type PlayerJoinedPayload struct {
	Map   string `json:"map"`
	Lanes int    `json:"lanes"`
}

// PlayerDiedPayload captures the final health.
type PlayerDiedPayload struct {
	Health int `json:"health"`
}

// MatchStartedPayload captures the roster.
type MatchStartedPayload struct {
	Players []string `json:"players"`
}

// PlayerJoined publishes a player join event.
func PlayerJoined(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload PlayerJoinedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventPlayerJoined,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
	})
}

// PlayerDied publishes a player death.
func PlayerDied(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload PlayerDiedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventPlayerDied,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
	})
}

// MatchStarted publishes the start of the match.
func MatchStarted(ctx context.Context, pub logging.Publisher, payload MatchStartedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventMatchStarted,
		Actor:    logging.MatchRef(),
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
	})
}
