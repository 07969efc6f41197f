package economy

import (
	"context"

	"mechmania/server/logging"
)

const (
	// EventTowerPurchased is emitted when a player buys and places a tower.
	EventTowerPurchased logging.EventType = "economy.tower_purchased"
	// EventTowerUpgraded is emitted when a tower gains a level.
	EventTowerUpgraded logging.EventType = "economy.tower_upgraded"
	// EventTowerSold is emitted when a tower is sold back.
	EventTowerSold logging.EventType = "economy.tower_sold"
	// EventUnitPurchased is emitted when a player sends a unit.
	EventUnitPurchased logging.EventType = "economy.unit_purchased"
	// EventUpgradeUnlocked is emitted when a player unlocks a tower tier.
	EventUpgradeUnlocked logging.EventType = "economy.upgrade_unlocked"
	// EventCommandRejected is emitted when a command fails validation.
	EventCommandRejected logging.EventType = "economy.command_rejected"
)

// TowerPayload describes a tower transaction.
type TowerPayload struct {
	Row       int `json:"row"`
	Col       int `json:"col"`
	Level     int `json:"level"`
	Amount    int `json:"amount"`
	Resources int `json:"resources"`
}

// UnitPurchasedPayload describes a sent unit.
type UnitPurchasedPayload struct {
	Level          int    `json:"level"`
	Specialisation int    `json:"specialisation"`
	Target         string `json:"target"`
	Lane           int    `json:"lane"`
	Resources      int    `json:"resources"`
}

// UpgradeUnlockedPayload describes a newly unlocked tier.
type UpgradeUnlockedPayload struct {
	AllowedUpgrade int `json:"allowedUpgrade"`
	SentUnits      int `json:"sentUnits"`
}

// CommandRejectedPayload explains a rejected command.
type CommandRejectedPayload struct {
	Command string `json:"command"`
	Reason  string `json:"reason"`
}

func publish(ctx context.Context, pub logging.Publisher, eventType logging.EventType, severity logging.Severity, tick uint64, actor logging.EntityRef, payload any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     eventType,
		Tick:     tick,
		Actor:    actor,
		Severity: severity,
		Category: logging.CategoryEconomy,
		Payload:  payload,
	})
}

// TowerPurchased publishes a tower purchase.
func TowerPurchased(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload TowerPayload) {
	publish(ctx, pub, EventTowerPurchased, logging.SeverityInfo, tick, actor, payload)
}

// TowerUpgraded publishes a tower upgrade.
func TowerUpgraded(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload TowerPayload) {
	publish(ctx, pub, EventTowerUpgraded, logging.SeverityInfo, tick, actor, payload)
}

// TowerSold publishes a tower sale.
func TowerSold(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload TowerPayload) {
	publish(ctx, pub, EventTowerSold, logging.SeverityInfo, tick, actor, payload)
}

// UnitPurchased publishes a unit purchase.
func UnitPurchased(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload UnitPurchasedPayload) {
	publish(ctx, pub, EventUnitPurchased, logging.SeverityInfo, tick, actor, payload)
}

// UpgradeUnlocked publishes a tier unlock.
func UpgradeUnlocked(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload UpgradeUnlockedPayload) {
	publish(ctx, pub, EventUpgradeUnlocked, logging.SeverityInfo, tick, actor, payload)
}

// CommandRejected publishes a warning for a command that failed validation.
func CommandRejected(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload CommandRejectedPayload) {
	publish(ctx, pub, EventCommandRejected, logging.SeverityWarn, tick, actor, payload)
}
