package game

import (
	"errors"
	"reflect"
	"testing"
)

func fixtureBoard() *Board {
	return NewBoard(
		[]Coord{{0, 1}, {1, 1}},
		[]Coord{{0, 2}, {1, 2}, {1, 3}, {0, 4}},
	)
}

func loadBoard1(t *testing.T) *Board {
	t.Helper()
	desc, err := LoadMapFile("testdata/board1.json")
	if err != nil {
		t.Fatalf("LoadMapFile returned error: %v", err)
	}
	board, err := NewBoardFromMap(desc)
	if err != nil {
		t.Fatalf("NewBoardFromMap returned error: %v", err)
	}
	return board
}

func TestNewBoardStartsEmpty(t *testing.T) {
	board := fixtureBoard()
	if got := len(board.Towers()); got != 0 {
		t.Fatalf("expected no towers, got %d", got)
	}
}

func TestLoadOrdersBaseAndPathByClosest(t *testing.T) {
	board := loadBoard1(t)

	wantBase := []Coord{{5, 5}, {5, 6}, {5, 4}, {6, 5}, {6, 6}, {6, 4}, {4, 5}, {4, 6}, {4, 4}}
	if got := board.Base(); !reflect.DeepEqual(got, wantBase) {
		t.Fatalf("base order mismatch:\n got %v\nwant %v", got, wantBase)
	}

	wantPath := []Coord{
		{5, 7}, {5, 3}, {7, 5}, {3, 5},
		{5, 8}, {5, 2}, {8, 5}, {2, 5},
		{5, 9}, {5, 1}, {9, 5}, {1, 5},
		{5, 10}, {5, 0}, {10, 5}, {0, 5},
	}
	if got := board.Path(); !reflect.DeepEqual(got, wantPath) {
		t.Fatalf("path order mismatch:\n got %v\nwant %v", got, wantPath)
	}
}

func TestFindPaths(t *testing.T) {
	board := loadBoard1(t)
	want := [][]Coord{
		{{0, 5}, {1, 5}, {2, 5}, {3, 5}},
		{{5, 0}, {5, 1}, {5, 2}, {5, 3}},
		{{5, 10}, {5, 9}, {5, 8}, {5, 7}},
		{{10, 5}, {9, 5}, {8, 5}, {7, 5}},
	}
	if got := board.FindPaths(); !reflect.DeepEqual(got, want) {
		t.Fatalf("lanes mismatch:\n got %v\nwant %v", got, want)
	}
}

func TestFindPathsPrefersSearchOrderAtFork(t *testing.T) {
	// Two equal routes lead from (0,0) to the base at (1,1);
	// going right first wins.
	board := newBoard(3, []Coord{{0, 0}, {0, 1}, {1, 0}}, []Coord{{1, 1}})
	paths := board.FindPaths()
	want := [][]Coord{{{0, 0}, {0, 1}}}
	if !reflect.DeepEqual(paths, want) {
		t.Fatalf("fork resolution mismatch: got %v want %v", paths, want)
	}
}

func TestUnreachablePathCellsTrailAndNeverFormLanes(t *testing.T) {
	board := newBoard(5, []Coord{{0, 0}, {3, 4}, {4, 4}}, []Coord{{0, 1}})
	if got := board.Path(); !reflect.DeepEqual(got, []Coord{{0, 0}, {3, 4}, {4, 4}}) {
		t.Fatalf("unexpected path order %v", got)
	}
	if got := board.FindPaths(); !reflect.DeepEqual(got, [][]Coord{{{0, 0}}}) {
		t.Fatalf("unexpected lanes %v", got)
	}
	if board.Buildable(Coord{4, 4}) {
		t.Fatalf("unreachable path cell must remain non-buildable")
	}
}

func TestNewBoardSizesToItsCells(t *testing.T) {
	if got := fixtureBoard().Side(); got != 5 {
		t.Fatalf("expected side 5, got %d", got)
	}
	if got := loadBoard1(t).Side(); got != BoardSide {
		t.Fatalf("expected board1 side %d, got %d", BoardSide, got)
	}
}

func TestValidPosition(t *testing.T) {
	board := fixtureBoard()
	cases := []struct {
		coord Coord
		want  bool
	}{
		{Coord{5, 5}, false},
		{Coord{-1, -1}, false},
		{Coord{2, -1}, false},
		{Coord{0, 0}, true},
		{Coord{4, 0}, true},
		{Coord{0, 5}, false},
	}
	for _, tc := range cases {
		if got := board.ValidPosition(tc.coord); got != tc.want {
			t.Fatalf("ValidPosition(%v) = %v, want %v", tc.coord, got, tc.want)
		}
	}
}

func TestAddGetRemoveItem(t *testing.T) {
	board := fixtureBoard()
	tower := NewTower("owner")

	if err := board.AddItem(tower, Coord{0, 0}); err != nil {
		t.Fatalf("AddItem returned error: %v", err)
	}
	got, ok := board.GetItem(Coord{0, 0})
	if !ok || got != tower {
		t.Fatalf("GetItem did not return placed tower: %v %v", got, ok)
	}
	if tower.Position != (Coord{0, 0}) {
		t.Fatalf("tower position not recorded: %v", tower.Position)
	}

	if err := board.RemoveItem(Coord{0, 0}); err != nil {
		t.Fatalf("RemoveItem returned error: %v", err)
	}
	if _, ok := board.GetItem(Coord{0, 0}); ok {
		t.Fatalf("tower still present after removal")
	}
	if err := board.RemoveItem(Coord{0, 0}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound removing empty cell, got %v", err)
	}
}

func TestAddItemRejections(t *testing.T) {
	board := fixtureBoard()
	if err := board.AddItem(NewTower("a"), Coord{0, 0}); err != nil {
		t.Fatalf("setup: %v", err)
	}
	cases := []struct {
		name  string
		coord Coord
		class error
	}{
		{"out of bounds", Coord{5, 11}, ErrInvalidInput},
		{"past the fixture edge", Coord{5, 5}, ErrInvalidInput},
		{"negative", Coord{0, -1}, ErrInvalidInput},
		{"occupied", Coord{0, 0}, ErrPreconditionNotMet},
		{"path", Coord{0, 1}, ErrPreconditionNotMet},
		{"base", Coord{0, 2}, ErrPreconditionNotMet},
	}
	for _, tc := range cases {
		err := board.AddItem(NewTower("b"), tc.coord)
		if !errors.Is(err, tc.class) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.class, err)
		}
	}
	if got := len(board.Towers()); got != 1 {
		t.Fatalf("rejected placements changed towers: %d", got)
	}
	if _, ok := board.GetItem(Coord{5, 5}); ok {
		t.Fatalf("unexpected tower at (5,5)")
	}
}

func TestGetItemOnEmptyCell(t *testing.T) {
	board := fixtureBoard()
	if tower, ok := board.GetItem(Coord{0, 1}); ok || tower != nil {
		t.Fatalf("expected empty result, got %v %v", tower, ok)
	}
}

func TestQueueUnitBacklogFeedsSpawn(t *testing.T) {
	board := loadBoard1(t)
	first := newUnit(0, 0, "attacker", 0)
	second := newUnit(0, 0, "attacker", 0)
	if err := board.QueueUnit(first, 0); err != nil {
		t.Fatalf("QueueUnit returned error: %v", err)
	}
	if err := board.QueueUnit(second, 0); err != nil {
		t.Fatalf("QueueUnit returned error: %v", err)
	}
	if first.ID == second.ID {
		t.Fatalf("expected distinct unit ids")
	}
	lane, _ := board.Lane(0)

	board.MoveUnits()
	if lane.At(0) != first || board.Backlog(0) != 1 {
		t.Fatalf("expected first unit spawned and one waiting")
	}
	board.MoveUnits()
	if lane.At(0) != second || lane.At(1) != first || board.Backlog(0) != 0 {
		t.Fatalf("expected second unit spawned behind first")
	}

	var arrivals []Arrival
	for i := 0; i < 4 && len(arrivals) == 0; i++ {
		arrivals = board.MoveUnits()
	}
	if len(arrivals) != 1 || arrivals[0].UnitID != first.ID || arrivals[0].Damage != first.FinalDamage() {
		t.Fatalf("unexpected arrivals %+v", arrivals)
	}
}

func TestQueueUnitDefaultLanePicksQuietest(t *testing.T) {
	board := loadBoard1(t)
	if err := board.QueueUnit(newUnit(0, 0, "a", 0), 0); err != nil {
		t.Fatalf("setup: %v", err)
	}
	u := newUnit(0, 0, "a", DefaultLane)
	if err := board.QueueUnit(u, DefaultLane); err != nil {
		t.Fatalf("QueueUnit returned error: %v", err)
	}
	if u.Lane != 1 {
		t.Fatalf("expected default lane 1, got %d", u.Lane)
	}
	if err := board.QueueUnit(newUnit(0, 0, "a", 9), 9); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid lane error, got %v", err)
	}
}

func TestFireTowersTargetsUnitNearestBase(t *testing.T) {
	board := loadBoard1(t)
	tower := NewTower("defender")
	if err := board.AddItem(tower, Coord{2, 4}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	lane, _ := board.Lane(0)
	rear := newUnit(2, 0, "attacker", 0)
	lead := newUnit(2, 0, "attacker", 0)
	rear.ID, lead.ID = 1, 2
	lane.slots[1] = rear
	lane.slots[3] = lead

	attacks, deaths := board.FireTowers()
	if len(attacks) != 1 || attacks[0].UnitID != lead.ID || attacks[0].Slot != 3 {
		t.Fatalf("expected shot at lead unit, got %+v", attacks)
	}
	if attacks[0].Damage != tower.Damage() || lead.Health != unitHealth[2]-tower.Damage() {
		t.Fatalf("unexpected damage %+v health=%d", attacks[0], lead.Health)
	}
	if len(deaths) != 0 {
		t.Fatalf("unexpected deaths %+v", deaths)
	}

	// Cooling down.
	if attacks, _ := board.FireTowers(); len(attacks) != 0 {
		t.Fatalf("tower fired while recharging: %+v", attacks)
	}
	attacks, deaths = board.FireTowers()
	if len(attacks) != 1 || len(deaths) != 1 || deaths[0].UnitID != lead.ID {
		t.Fatalf("expected lead unit killed, attacks=%+v deaths=%+v", attacks, deaths)
	}
	if lane.At(3) != nil {
		t.Fatalf("dead unit left on lane")
	}
	if deaths[0].Killer != tower.Position || deaths[0].Bounty != lead.Bounty() {
		t.Fatalf("unexpected death record %+v", deaths[0])
	}
}

func TestFireTowersBreaksTiesByLaneThenSlot(t *testing.T) {
	board := loadBoard1(t)
	tower := NewTower("defender")
	// (4,3) reaches the inner end of lane 0 (3,5) and lane 1 (5,3).
	if err := board.AddItem(tower, Coord{4, 3}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	lane0, _ := board.Lane(0)
	lane1, _ := board.Lane(1)
	a := newUnit(0, 0, "x", 0)
	b := newUnit(0, 0, "x", 1)
	a.ID, b.ID = 1, 2
	lane1.slots[3] = b
	lane0.slots[3] = a

	attacks, _ := board.FireTowers()
	if len(attacks) != 1 || attacks[0].UnitID != a.ID || attacks[0].Lane != 0 {
		t.Fatalf("expected lane 0 unit targeted, got %+v", attacks)
	}
}

func TestLoadMapRejectsOverlap(t *testing.T) {
	desc := MapDescription{Base: []Coord{{1, 1}}, Path: []Coord{{1, 1}}}
	if _, err := NewBoardFromMap(desc); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid map error, got %v", err)
	}
}

// fireBoard is fixtureBoard with one tower next to its single lane cell and
// a unit too tough to die parked on that cell.
func fireBoard(t *testing.T, kind int) (*Board, *Tower) {
	t.Helper()
	board := fixtureBoard()
	tower := NewTower("defender")
	if kind != 0 {
		if err := tower.Specialise(kind); err != nil {
			t.Fatalf("Specialise(%d): %v", kind, err)
		}
	}
	if err := board.AddItem(tower, Coord{1, 0}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	lane, ok := board.Lane(0)
	if !ok {
		t.Fatalf("fixture board has no lane")
	}
	tank := newUnit(0, 0, "attacker", 0)
	tank.Health = 1 << 20
	if !lane.Start(tank) {
		t.Fatalf("spawn slot taken")
	}
	return board, tower
}

func TestFireTowersCooldownPattern(t *testing.T) {
	cases := []struct {
		name string
		kind int
		want string
	}{
		{"base", 0, "x.x.x.x."},
		{"sniper", SpecSniper, "x..x..x."},
		{"rapid", SpecRapid, "xxxxxxxx"},
	}
	for _, tc := range cases {
		board, _ := fireBoard(t, tc.kind)
		got := make([]byte, 0, len(tc.want))
		for range len(tc.want) {
			attacks, deaths := board.FireTowers()
			if len(deaths) != 0 {
				t.Fatalf("%s: unexpected deaths %+v", tc.name, deaths)
			}
			if len(attacks) == 1 {
				got = append(got, 'x')
			} else {
				got = append(got, '.')
			}
		}
		if string(got) != tc.want {
			t.Fatalf("%s: firing pattern %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestIdleTowerStaysReady(t *testing.T) {
	board := fixtureBoard()
	tower := NewTower("defender")
	if err := board.AddItem(tower, Coord{1, 0}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	for i := 0; i < 3; i++ {
		if attacks, _ := board.FireTowers(); len(attacks) != 0 {
			t.Fatalf("tower fired at an empty lane: %+v", attacks)
		}
		if !tower.Ready() || tower.Recharge() != 0 {
			t.Fatalf("idle tower lost readiness: recharge=%d", tower.Recharge())
		}
	}
	lane, _ := board.Lane(0)
	lane.Start(newUnit(0, 0, "attacker", 0))
	if attacks, _ := board.FireTowers(); len(attacks) != 1 {
		t.Fatalf("ready tower did not fire on the first target: %+v", attacks)
	}
	if tower.Recharge() != tower.Cooldown() {
		t.Fatalf("expected recharge %d after firing, got %d", tower.Cooldown(), tower.Recharge())
	}
}
