package intake

import (
	"mechmania/server/internal/game"
	"mechmania/server/internal/net/proto"
	"mechmania/server/internal/sim"
)

const (
	// CommandRejectInvalid indicates a frame that does not carry a usable command.
	CommandRejectInvalid = "invalid_command"
	// CommandRejectUnknownActor indicates the session's player is not in the match.
	CommandRejectUnknownActor = "unknown_actor"
)

// Queue accepts commands for the next tick.
type Queue interface {
	Enqueue(sim.Command) (bool, string)
}

type CommandContext struct {
	Queue     Queue
	HasPlayer func(game.PlayerID) bool
}

// StageClientCommand checks the shape of a client command, stamps it with
// the authenticated player and queues it. Game rules are left to the engine.
func StageClientCommand(ctx CommandContext, playerID game.PlayerID, msg proto.ClientMessage) (sim.Command, bool, string) {
	var zero sim.Command
	if msg.Type != proto.TypeCommand || msg.Command == nil {
		return zero, false, CommandRejectInvalid
	}
	command := *msg.Command
	if !wellFormed(command) {
		return zero, false, CommandRejectInvalid
	}
	if ctx.HasPlayer != nil && !ctx.HasPlayer(playerID) {
		return zero, false, CommandRejectUnknownActor
	}
	command.ActorID = playerID

	if ctx.Queue == nil {
		return zero, false, sim.CommandRejectQueueFull
	}
	if ok, reason := ctx.Queue.Enqueue(command); !ok {
		return zero, false, reason
	}
	return command, true, ""
}

func wellFormed(cmd sim.Command) bool {
	switch cmd.Type {
	case sim.CommandPurchaseUnit:
		return cmd.Unit != nil
	case sim.CommandPlaceTower, sim.CommandUpgradeTower, sim.CommandSellTower:
		return cmd.Tower != nil
	case sim.CommandSpecialiseTower:
		return cmd.Specialise != nil
	case sim.CommandIncreaseUpgrade:
		return true
	}
	return false
}
