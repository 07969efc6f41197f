package sim

import "mechmania/server/internal/game"

var (
	ErrUnknownPlayer   = game.Classify(game.ErrNotFound, "unknown_player")
	ErrDuplicatePlayer = game.Classify(game.ErrPreconditionNotMet, "duplicate_player")
	ErrPlayerDead      = game.Classify(game.ErrPreconditionNotMet, "player_dead")
	ErrMatchStarted    = game.Classify(game.ErrPreconditionNotMet, "match_started")
	ErrUnknownCommand  = game.Classify(game.ErrInvalidInput, "unknown_command")
	ErrMissingPayload  = game.Classify(game.ErrInvalidInput, "missing_payload")
	// ErrCorrupted marks a match whose tick panicked. The engine refuses to
	// step again.
	ErrCorrupted = game.Classify(game.ErrPreconditionNotMet, "match_corrupted")
)
