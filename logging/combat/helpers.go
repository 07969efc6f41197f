package combat

import (
	"context"

	"mechmania/server/logging"
)

const (
	// EventBaseBreached is emitted when units reach a player's base.
	EventBaseBreached logging.EventType = "combat.base_breached"
	// EventUnitKilled is emitted when tower fire kills a unit.
	EventUnitKilled logging.EventType = "combat.unit_killed"
)

// BaseBreachedPayload totals the damage taken from arrivals in one tick.
type BaseBreachedPayload struct {
	Units  int `json:"units"`
	Damage int `json:"damage"`
	Health int `json:"health"`
}

// UnitKilledPayload describes a kill.
type UnitKilledPayload struct {
	UnitID    uint64 `json:"unitId"`
	Lane      int    `json:"lane"`
	KillerRow int    `json:"killerRow"`
	KillerCol int    `json:"killerCol"`
	Bounty    int    `json:"bounty"`
}

// BaseBreached publishes base damage for the defending player.
func BaseBreached(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload BaseBreachedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventBaseBreached,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
		Payload:  payload,
	})
}

// UnitKilled publishes a kill on the defender's board. The unit owner is the target.
func UnitKilled(ctx context.Context, pub logging.Publisher, tick uint64, actor, owner logging.EntityRef, payload UnitKilledPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventUnitKilled,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{owner},
		Severity: logging.SeverityDebug,
		Category: logging.CategoryCombat,
		Payload:  payload,
	})
}
