package game

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// MapDescription is the declarative board layout loaded at match setup.
// Cells listed in neither Base nor Path are buildable.
type MapDescription struct {
	Name string  `json:"name"`
	Side int     `json:"side,omitempty"`
	Base []Coord `json:"base"`
	Path []Coord `json:"path"`
}

// LoadMap decodes and validates a map description.
func LoadMap(r io.Reader) (MapDescription, error) {
	var desc MapDescription
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&desc); err != nil {
		return MapDescription{}, fmt.Errorf("%w: decode: %v", ErrInvalidMap, err)
	}
	if err := desc.Validate(); err != nil {
		return MapDescription{}, err
	}
	return desc, nil
}

// LoadMapFile reads a map description from disk.
func LoadMapFile(path string) (MapDescription, error) {
	file, err := os.Open(path)
	if err != nil {
		return MapDescription{}, fmt.Errorf("open map %s: %w", path, err)
	}
	defer file.Close()
	desc, err := LoadMap(file)
	if err != nil {
		return MapDescription{}, fmt.Errorf("load map %s: %w", path, err)
	}
	return desc, nil
}

// SideOrDefault returns the board side, defaulting to BoardSide.
func (d MapDescription) SideOrDefault() int {
	if d.Side <= 0 {
		return BoardSide
	}
	return d.Side
}

// Validate checks bounds and that no cell is both base and path.
func (d MapDescription) Validate() error {
	side := d.SideOrDefault()
	if len(d.Base) == 0 {
		return fmt.Errorf("%w: no base cells", ErrInvalidMap)
	}
	base := make(map[Coord]struct{}, len(d.Base))
	for _, c := range d.Base {
		if !inBounds(c, side) {
			return fmt.Errorf("%w: base cell %s outside board", ErrInvalidMap, c)
		}
		base[c] = struct{}{}
	}
	for _, c := range d.Path {
		if !inBounds(c, side) {
			return fmt.Errorf("%w: path cell %s outside board", ErrInvalidMap, c)
		}
		if _, ok := base[c]; ok {
			return fmt.Errorf("%w: cell %s is both base and path", ErrInvalidMap, c)
		}
	}
	return nil
}

func inBounds(c Coord, side int) bool {
	return c.Row >= 0 && c.Row < side && c.Col >= 0 && c.Col < side
}
