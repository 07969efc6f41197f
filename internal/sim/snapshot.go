package sim

import "mechmania/server/internal/game"

// Snapshot is a read-only copy of the match state after a tick.
type Snapshot struct {
	Tick    uint64           `json:"tick" msgpack:"tick"`
	Map     string           `json:"map" msgpack:"map"`
	Players []PlayerSnapshot `json:"players" msgpack:"players"`
}

type PlayerSnapshot struct {
	ID             game.PlayerID   `json:"id" msgpack:"id"`
	Resources      int             `json:"resources" msgpack:"resources"`
	Health         int             `json:"health" msgpack:"health"`
	AllowedUpgrade int             `json:"allowedUpgrade" msgpack:"allowedUpgrade"`
	SentUnits      int             `json:"sentUnits" msgpack:"sentUnits"`
	Dead           bool            `json:"dead" msgpack:"dead"`
	Towers         []TowerSnapshot `json:"towers" msgpack:"towers"`
	Lanes          []LaneSnapshot  `json:"lanes" msgpack:"lanes"`
}

type TowerSnapshot struct {
	Position       game.Coord    `json:"position" msgpack:"position"`
	Owner          game.PlayerID `json:"owner" msgpack:"owner"`
	Level          int           `json:"level" msgpack:"level"`
	Specialisation int           `json:"specialisation" msgpack:"specialisation"`
	Specialised    bool          `json:"specialised" msgpack:"specialised"`
	Cost           int           `json:"cost" msgpack:"cost"`
	Recharge       int           `json:"recharge" msgpack:"recharge"`
}

// LaneSnapshot lists the occupied slots of one lane, spawn end first.
type LaneSnapshot struct {
	ID      int            `json:"id" msgpack:"id"`
	Length  int            `json:"length" msgpack:"length"`
	Units   []UnitSnapshot `json:"units" msgpack:"units"`
	Backlog int            `json:"backlog" msgpack:"backlog"`
}

type UnitSnapshot struct {
	Slot           int           `json:"slot" msgpack:"slot"`
	ID             uint64        `json:"id" msgpack:"id"`
	Owner          game.PlayerID `json:"owner" msgpack:"owner"`
	Level          int           `json:"level" msgpack:"level"`
	Specialisation int           `json:"specialisation" msgpack:"specialisation"`
	Health         int           `json:"health" msgpack:"health"`
}

// Snapshot copies the current state. Player order is join order.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() Snapshot {
	snapshot := Snapshot{
		Tick:    e.tick,
		Map:     e.desc.Name,
		Players: make([]PlayerSnapshot, 0, len(e.order)),
	}
	for _, id := range e.order {
		snapshot.Players = append(snapshot.Players, snapshotPlayer(e.players[id]))
	}
	return snapshot
}

func snapshotPlayer(p *game.Player) PlayerSnapshot {
	towers := p.Board.Towers()
	ps := PlayerSnapshot{
		ID:             p.Name,
		Resources:      p.Resources,
		Health:         p.Health,
		AllowedUpgrade: p.AllowedUpgrade,
		SentUnits:      p.SentUnits,
		Dead:           p.IsDead(),
		Towers:         make([]TowerSnapshot, 0, len(towers)),
	}
	for _, t := range towers {
		ps.Towers = append(ps.Towers, TowerSnapshot{
			Position:       t.Position,
			Owner:          t.Owner,
			Level:          t.Level,
			Specialisation: t.Specialisation,
			Specialised:    t.Specialised(),
			Cost:           t.Cost,
			Recharge:       t.Recharge(),
		})
	}
	lanes := p.Board.Lanes()
	ps.Lanes = make([]LaneSnapshot, 0, len(lanes))
	for id, lane := range lanes {
		ls := LaneSnapshot{
			ID:      id,
			Length:  lane.Len(),
			Units:   make([]UnitSnapshot, 0),
			Backlog: p.Board.Backlog(id),
		}
		for slot, u := range lane.Entries() {
			if u == nil {
				continue
			}
			ls.Units = append(ls.Units, UnitSnapshot{
				Slot:           slot,
				ID:             u.ID,
				Owner:          u.Owner,
				Level:          u.Level,
				Specialisation: u.Specialisation,
				Health:         u.Health,
			})
		}
		ps.Lanes = append(ps.Lanes, ls)
	}
	return ps
}
