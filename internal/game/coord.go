package game

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Coord addresses a board cell.
type Coord struct {
	Row int
	Col int
}

// neighbourOffsets fixes the expansion order of every search on the board.
var neighbourOffsets = [4]Coord{
	{Row: 0, Col: 1},
	{Row: 0, Col: -1},
	{Row: 1, Col: 0},
	{Row: -1, Col: 0},
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

func (c Coord) add(o Coord) Coord {
	return Coord{Row: c.Row + o.Row, Col: c.Col + o.Col}
}

// Less orders coordinates by ascending row then column.
func (c Coord) Less(o Coord) bool {
	if c.Row != o.Row {
		return c.Row < o.Row
	}
	return c.Col < o.Col
}

// Compare is Less in the three-way form slices.SortFunc expects.
func (c Coord) Compare(o Coord) int {
	switch {
	case c.Less(o):
		return -1
	case o.Less(c):
		return 1
	default:
		return 0
	}
}

// Chebyshev returns the king-move distance between two cells.
func (c Coord) Chebyshev(o Coord) int {
	return max(abs(c.Row-o.Row), abs(c.Col-o.Col))
}

// MarshalJSON encodes the coordinate as a [row, col] pair.
func (c Coord) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{c.Row, c.Col})
}

// UnmarshalJSON decodes a [row, col] pair.
func (c *Coord) UnmarshalJSON(data []byte) error {
	var pair []int
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("%w: coordinate %s: %v", ErrInvalidInput, data, err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("%w: coordinate %s must have two components", ErrInvalidInput, data)
	}
	c.Row, c.Col = pair[0], pair[1]
	return nil
}

func sortCoords(coords []Coord) {
	slices.SortFunc(coords, Coord.Compare)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
