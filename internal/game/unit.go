package game

import "fmt"

var (
	unitHealth      = [MaxUnitLevel + 1]int{10, 20, 40}
	unitFinalDamage = [MaxUnitLevel + 1]int{5, 10, 20}
	unitCost        = [MaxUnitLevel + 1]int{25, 50, 100}
)

const (
	// SpecArmoured doubles unit health.
	SpecArmoured = 1
	// SpecSwarm doubles the damage a unit deals on reaching the base.
	SpecSwarm = -1
)

// Unit is an enemy combatant walking one lane of one board.
type Unit struct {
	ID             uint64   `json:"id"`
	Level          int      `json:"level"`
	Specialisation int      `json:"specialisation"`
	Owner          PlayerID `json:"owner"`
	Lane           int      `json:"lane"`
	Health         int      `json:"health"`

	finalDamage int
	cost        int
}

func validUnitLevel(level int) bool {
	return level >= 0 && level <= MaxUnitLevel
}

func validSpecialisation(spec int) bool {
	return spec >= -1 && spec <= 1
}

// UnitCost prices a unit. Callers validate level and specialisation first.
func UnitCost(level, spec int) int {
	cost := unitCost[level]
	if spec != 0 {
		cost = cost * 3 / 2
	}
	return cost
}

func newUnit(level, spec int, owner PlayerID, lane int) *Unit {
	health := unitHealth[level]
	damage := unitFinalDamage[level]
	switch spec {
	case SpecArmoured:
		health *= 2
	case SpecSwarm:
		damage *= 2
	}
	return &Unit{
		Level:          level,
		Specialisation: spec,
		Owner:          owner,
		Lane:           lane,
		Health:         health,
		finalDamage:    damage,
		cost:           UnitCost(level, spec),
	}
}

// PurchaseUnit creates a unit paid for by p and bound to a lane of target,
// the board it will walk. DefaultLane resolves to target's least crowded
// lane. Every check runs before p is charged; nothing changes on failure.
// The caller queues the unit with target.QueueUnit(u, u.Lane).
func PurchaseUnit(level, spec int, p *Player, target *Board, lane int) (*Unit, error) {
	if !validUnitLevel(level) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLevel, level)
	}
	if !validSpecialisation(spec) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSpecialisation, spec)
	}
	lane, err := target.resolveLane(lane)
	if err != nil {
		return nil, err
	}
	cost := UnitCost(level, spec)
	if !p.PurchaseCheck(cost) {
		return nil, ErrInsufficientResources
	}
	p.Purchase(cost)
	p.SentUnits++
	return newUnit(level, spec, p.Name, lane), nil
}

// FinalDamage is the health a player loses when this unit reaches the base.
func (u *Unit) FinalDamage() int {
	return u.finalDamage
}

// Bounty is the reward credited to the board owner for killing the unit.
func (u *Unit) Bounty() int {
	return u.cost / 5
}

// Dead reports whether the unit has no health left.
func (u *Unit) Dead() bool {
	return u.Health <= 0
}

func (u *Unit) takeDamage(amount int) int {
	if amount > u.Health {
		amount = u.Health
	}
	u.Health -= amount
	return amount
}
