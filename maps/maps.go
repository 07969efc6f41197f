// Package maps bundles the board layouts shipped with the server.
package maps

import (
	"bytes"
	_ "embed"

	"mechmania/server/internal/game"
)

//go:embed board1.json
var board1 []byte

// Board1 decodes the default board layout.
func Board1() (game.MapDescription, error) {
	return game.LoadMap(bytes.NewReader(board1))
}
