package game

import (
	"fmt"
	"slices"
)

// Arrival is a unit that left the terminal slot of its lane this tick.
type Arrival struct {
	UnitID uint64   `json:"unitId" msgpack:"unitId"`
	Owner  PlayerID `json:"owner" msgpack:"owner"`
	Lane   int      `json:"lane" msgpack:"lane"`
	Damage int      `json:"damage" msgpack:"damage"`
}

// Attack records one tower shot.
type Attack struct {
	Tower  Coord  `json:"tower" msgpack:"tower"`
	UnitID uint64 `json:"unitId" msgpack:"unitId"`
	Lane   int    `json:"lane" msgpack:"lane"`
	Slot   int    `json:"slot" msgpack:"slot"`
	Damage int    `json:"damage" msgpack:"damage"`
}

// Death records a unit killed by tower fire.
type Death struct {
	UnitID uint64   `json:"unitId" msgpack:"unitId"`
	Owner  PlayerID `json:"owner" msgpack:"owner"`
	Lane   int      `json:"lane" msgpack:"lane"`
	Killer Coord    `json:"killer" msgpack:"killer"`
	Bounty int      `json:"bounty" msgpack:"bounty"`
}

// Board is one player's grid: terrain, lanes computed at load time and the
// towers placed on buildable cells.
type Board struct {
	side    int
	base    []Coord
	path    []Coord
	baseSet map[Coord]struct{}
	pathSet map[Coord]struct{}

	towers  map[Coord]*Tower
	lanes   []*PathQueue
	backlog [][]*Unit

	nextUnitID uint64
}

// NewBoard builds a board from path and base cells. The board is the
// smallest square holding every listed cell.
func NewBoard(path, base []Coord) *Board {
	side := 0
	for _, cells := range [][]Coord{path, base} {
		for _, c := range cells {
			side = max(side, c.Row+1, c.Col+1)
		}
	}
	return newBoard(side, path, base)
}

// NewBoardFromMap validates desc and builds its board.
func NewBoardFromMap(desc MapDescription) (*Board, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	return newBoard(desc.SideOrDefault(), desc.Path, desc.Base), nil
}

func newBoard(side int, path, base []Coord) *Board {
	b := &Board{
		side:    side,
		baseSet: make(map[Coord]struct{}, len(base)),
		pathSet: make(map[Coord]struct{}, len(path)),
		towers:  make(map[Coord]*Tower),
	}
	for _, c := range base {
		b.baseSet[c] = struct{}{}
	}
	for _, c := range path {
		if _, isBase := b.baseSet[c]; isBase {
			continue
		}
		b.pathSet[c] = struct{}{}
	}
	b.base = orderBase(uniqueCoords(base), side)

	dist, discovered := distances(b.base, b.pathSet)
	b.path = discovered
	if len(discovered) < len(b.pathSet) {
		unreached := make([]Coord, 0, len(b.pathSet)-len(discovered))
		for c := range b.pathSet {
			if _, ok := dist[c]; !ok {
				unreached = append(unreached, c)
			}
		}
		sortCoords(unreached)
		b.path = append(b.path, unreached...)
	}

	for _, cells := range traceLanes(spawnCells(discovered, dist, side), dist, b.pathSet) {
		b.lanes = append(b.lanes, NewPathQueue(cells))
	}
	b.backlog = make([][]*Unit, len(b.lanes))
	return b
}

// Side reports the board side length.
func (b *Board) Side() int { return b.side }

// Base returns the base cells, closest to the centre first.
func (b *Board) Base() []Coord { return slices.Clone(b.base) }

// Path returns path cells ordered by distance from the base. Cells no base
// can reach come last in row/column order.
func (b *Board) Path() []Coord { return slices.Clone(b.path) }

// FindPaths returns every lane as its cells in spawn-to-base order.
func (b *Board) FindPaths() [][]Coord {
	paths := make([][]Coord, 0, len(b.lanes))
	for _, lane := range b.lanes {
		paths = append(paths, lane.Cells())
	}
	return paths
}

// Lanes returns the lane queues indexed by lane id.
func (b *Board) Lanes() []*PathQueue { return slices.Clone(b.lanes) }

// Lane returns the queue for id.
func (b *Board) Lane(id int) (*PathQueue, bool) {
	if id < 0 || id >= len(b.lanes) {
		return nil, false
	}
	return b.lanes[id], true
}

// Backlog reports how many units wait to enter lane id.
func (b *Board) Backlog(id int) int {
	if id < 0 || id >= len(b.backlog) {
		return 0
	}
	return len(b.backlog[id])
}

// ValidPosition reports whether c lies on the board.
func (b *Board) ValidPosition(c Coord) bool {
	return inBounds(c, b.side)
}

// Buildable reports whether a tower may stand on c.
func (b *Board) Buildable(c Coord) bool {
	if !b.ValidPosition(c) {
		return false
	}
	if _, ok := b.baseSet[c]; ok {
		return false
	}
	_, ok := b.pathSet[c]
	return !ok
}

// AddItem places t on c.
func (b *Board) AddItem(t *Tower, c Coord) error {
	if !b.ValidPosition(c) {
		return positionError(c)
	}
	if _, ok := b.towers[c]; ok {
		return ErrCellOccupied
	}
	if !b.Buildable(c) {
		return ErrNotBuildable
	}
	t.Position = c
	b.towers[c] = t
	return nil
}

// GetItem returns the tower on c.
func (b *Board) GetItem(c Coord) (*Tower, bool) {
	t, ok := b.towers[c]
	return t, ok
}

// RemoveItem deletes the tower on c. Removing an empty cell is an error;
// callers for whom that is expected check GetItem first.
func (b *Board) RemoveItem(c Coord) error {
	if _, ok := b.towers[c]; !ok {
		return fmt.Errorf("%w at %s", ErrNoTower, c)
	}
	delete(b.towers, c)
	return nil
}

// Towers lists placed towers in row/column order, the order they fire in.
func (b *Board) Towers() []*Tower {
	coords := make([]Coord, 0, len(b.towers))
	for c := range b.towers {
		coords = append(coords, c)
	}
	sortCoords(coords)
	towers := make([]*Tower, 0, len(coords))
	for _, c := range coords {
		towers = append(towers, b.towers[c])
	}
	return towers
}

// QueueUnit assigns u an id and lines it up to enter lane. DefaultLane picks
// the least crowded lane, lowest id first.
func (b *Board) QueueUnit(u *Unit, lane int) error {
	lane, err := b.resolveLane(lane)
	if err != nil {
		return err
	}
	b.nextUnitID++
	u.ID = b.nextUnitID
	u.Lane = lane
	b.backlog[lane] = append(b.backlog[lane], u)
	return nil
}

// resolveLane maps lane onto an existing lane id, resolving DefaultLane.
func (b *Board) resolveLane(lane int) (int, error) {
	if b == nil || len(b.lanes) == 0 {
		return 0, fmt.Errorf("%w: board has no lanes", ErrInvalidLane)
	}
	if lane == DefaultLane {
		return b.quietestLane(), nil
	}
	if lane < 0 || lane >= len(b.lanes) {
		return 0, fmt.Errorf("%w: %d", ErrInvalidLane, lane)
	}
	return lane, nil
}

func (b *Board) quietestLane() int {
	best, bestLoad := 0, -1
	for id, lane := range b.lanes {
		load := lane.Occupied() + len(b.backlog[id])
		if bestLoad < 0 || load < bestLoad {
			best, bestLoad = id, load
		}
	}
	return best
}

// MoveUnits advances every lane in id order, then lets the head of each
// backlog into a free spawn slot. Units that reached the base are returned.
func (b *Board) MoveUnits() []Arrival {
	arrivals := make([]Arrival, 0)
	for id, lane := range b.lanes {
		if u := lane.Advance(); u != nil {
			arrivals = append(arrivals, Arrival{
				UnitID: u.ID,
				Owner:  u.Owner,
				Lane:   id,
				Damage: u.FinalDamage(),
			})
		}
		if waiting := b.backlog[id]; len(waiting) > 0 && lane.Start(waiting[0]) {
			waiting[0] = nil
			b.backlog[id] = waiting[1:]
		}
	}
	return arrivals
}

// FireTowers resolves one round of fire against the current lane occupancy.
// Each ready tower shoots the in-range unit with the fewest slots left to
// the base, ties going to the lower lane id and then the lower slot.
func (b *Board) FireTowers() ([]Attack, []Death) {
	attacks := make([]Attack, 0)
	deaths := make([]Death, 0)
	for _, t := range b.Towers() {
		if !b.Buildable(t.Position) {
			panic(fmt.Sprintf("game: tower on non-buildable cell %s", t.Position))
		}
		if !t.Ready() {
			t.tick()
			continue
		}
		target, laneID, slot := b.selectTarget(t)
		if target == nil {
			continue
		}
		dealt := t.Fire(target)
		attacks = append(attacks, Attack{
			Tower:  t.Position,
			UnitID: target.ID,
			Lane:   laneID,
			Slot:   slot,
			Damage: dealt,
		})
		if target.Dead() {
			b.lanes[laneID].Remove(target)
			deaths = append(deaths, Death{
				UnitID: target.ID,
				Owner:  target.Owner,
				Lane:   laneID,
				Killer: t.Position,
				Bounty: target.Bounty(),
			})
		}
	}
	return attacks, deaths
}

func (b *Board) selectTarget(t *Tower) (*Unit, int, int) {
	var (
		target    *Unit
		laneID    = -1
		slot      = -1
		remaining = -1
	)
	for id, lane := range b.lanes {
		for i, u := range lane.Entries() {
			if u == nil || !t.InRange(lane.Cell(i)) {
				continue
			}
			left := lane.Len() - 1 - i
			if remaining < 0 || left < remaining {
				target, laneID, slot, remaining = u, id, i, left
			}
		}
	}
	return target, laneID, slot
}

func uniqueCoords(coords []Coord) []Coord {
	seen := make(map[Coord]struct{}, len(coords))
	unique := make([]Coord, 0, len(coords))
	for _, c := range coords {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		unique = append(unique, c)
	}
	return unique
}
