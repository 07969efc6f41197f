package sim

import "mechmania/server/internal/game"

// CommandType enumerates the supported player commands.
type CommandType string

const (
	CommandPurchaseUnit    CommandType = "PurchaseUnit"
	CommandPlaceTower      CommandType = "PlaceTower"
	CommandUpgradeTower    CommandType = "UpgradeTower"
	CommandSpecialiseTower CommandType = "SpecialiseTower"
	CommandSellTower       CommandType = "SellTower"
	CommandIncreaseUpgrade CommandType = "IncreaseUpgrade"
)

// PurchaseUnitCommand sends a unit to another player's board. A nil Lane
// lets the target board choose. An empty Target sends to the next player in
// join order.
type PurchaseUnitCommand struct {
	Level          int           `json:"level" msgpack:"level"`
	Specialisation int           `json:"specialisation" msgpack:"specialisation"`
	Lane           *int          `json:"lane,omitempty" msgpack:"lane,omitempty"`
	Target         game.PlayerID `json:"target,omitempty" msgpack:"target,omitempty"`
}

// TowerCommand addresses the tower cell for place, upgrade and sell.
type TowerCommand struct {
	Position game.Coord `json:"position" msgpack:"position"`
}

// SpecialiseCommand chooses a specialisation for a level 1 tower.
type SpecialiseCommand struct {
	Position game.Coord `json:"position" msgpack:"position"`
	Kind     int        `json:"kind" msgpack:"kind"`
}

// Command represents an intent captured for processing on the next tick.
// Exactly one payload matching Type is set; IncreaseUpgrade carries none.
type Command struct {
	ActorID    game.PlayerID        `json:"actorId" msgpack:"actorId"`
	Type       CommandType          `json:"type" msgpack:"type"`
	Unit       *PurchaseUnitCommand `json:"unit,omitempty" msgpack:"unit,omitempty"`
	Tower      *TowerCommand        `json:"tower,omitempty" msgpack:"tower,omitempty"`
	Specialise *SpecialiseCommand   `json:"specialise,omitempty" msgpack:"specialise,omitempty"`
}

// Result reports whether a command was applied. Reason is the snake_case
// rejection reason when it was not.
type Result struct {
	ActorID  game.PlayerID `json:"actorId" msgpack:"actorId"`
	Type     CommandType   `json:"type" msgpack:"type"`
	Accepted bool          `json:"accepted" msgpack:"accepted"`
	Reason   string        `json:"reason,omitempty" msgpack:"reason,omitempty"`
}

// PurchaseUnit builds a PurchaseUnit command.
func PurchaseUnit(actor game.PlayerID, level, spec int) Command {
	return Command{ActorID: actor, Type: CommandPurchaseUnit, Unit: &PurchaseUnitCommand{Level: level, Specialisation: spec}}
}

// PurchaseUnitOn builds a PurchaseUnit command for an explicit target and lane.
func PurchaseUnitOn(actor, target game.PlayerID, level, spec, lane int) Command {
	cmd := PurchaseUnit(actor, level, spec)
	cmd.Unit.Target = target
	cmd.Unit.Lane = &lane
	return cmd
}

// PlaceTower builds a PlaceTower command.
func PlaceTower(actor game.PlayerID, c game.Coord) Command {
	return Command{ActorID: actor, Type: CommandPlaceTower, Tower: &TowerCommand{Position: c}}
}

// UpgradeTower builds an UpgradeTower command.
func UpgradeTower(actor game.PlayerID, c game.Coord) Command {
	return Command{ActorID: actor, Type: CommandUpgradeTower, Tower: &TowerCommand{Position: c}}
}

// SellTower builds a SellTower command.
func SellTower(actor game.PlayerID, c game.Coord) Command {
	return Command{ActorID: actor, Type: CommandSellTower, Tower: &TowerCommand{Position: c}}
}

// SpecialiseTower builds a SpecialiseTower command.
func SpecialiseTower(actor game.PlayerID, c game.Coord, kind int) Command {
	return Command{ActorID: actor, Type: CommandSpecialiseTower, Specialise: &SpecialiseCommand{Position: c, Kind: kind}}
}

// IncreaseUpgrade builds an IncreaseUpgrade command.
func IncreaseUpgrade(actor game.PlayerID) Command {
	return Command{ActorID: actor, Type: CommandIncreaseUpgrade}
}
