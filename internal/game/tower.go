package game

import "fmt"

var (
	towerDamage   = [MaxUpgrade + 1]int{0, 20, 35, 55}
	towerRange    = [MaxUpgrade + 1]int{0, 2, 2, 3}
	towerCooldown = [MaxUpgrade + 1]int{0, 1, 1, 1}
)

const (
	// SpecSniper trades fire rate for damage and reach.
	SpecSniper = 1
	// SpecRapid fires every tick at reduced damage and reach.
	SpecRapid = -1

	// specialiseLevel is the only level at which a tower may specialise.
	specialiseLevel = 1
)

// Tower is a structure on one board cell, owned by one player.
type Tower struct {
	Owner          PlayerID `json:"owner"`
	Position       Coord    `json:"position"`
	Cost           int      `json:"cost"`
	Level          int      `json:"level"`
	Specialisation int      `json:"specialisation"`

	specialised bool
	// recharge counts the ticks left before the tower may fire again.
	recharge int
}

// NewTower returns an unplaced level 1 tower.
func NewTower(owner PlayerID) *Tower {
	return &Tower{
		Owner: owner,
		Cost:  TowerBaseCost,
		Level: 1,
	}
}

// UpgradeCost prices the step from level to level+1.
func UpgradeCost(level int) int {
	return TowerBaseCost * (level + 1)
}

// UpgradeTower raises the tower one level, charging p. The tower may never
// exceed the tier p has unlocked.
func (t *Tower) UpgradeTower(p *Player) error {
	if t.Level >= MaxUpgrade {
		return ErrMaxUpgrade
	}
	cost := UpgradeCost(t.Level)
	if !p.PurchaseCheck(cost) {
		return ErrInsufficientResources
	}
	if p.AllowedUpgrade <= t.Level {
		return ErrUpgradeLocked
	}
	p.Purchase(cost)
	t.Level++
	return nil
}

// Specialise commits the tower to kind. Zero is an accepted, final choice of
// no specialisation.
func (t *Tower) Specialise(kind int) error {
	if !validSpecialisation(kind) {
		return fmt.Errorf("%w: %d", ErrInvalidSpecialisation, kind)
	}
	if t.specialised {
		return ErrAlreadySpecialised
	}
	if t.Level != specialiseLevel {
		return ErrNotSpecialisable
	}
	t.Specialisation = kind
	t.specialised = true
	return nil
}

// Specialised reports whether Specialise has succeeded on this tower.
func (t *Tower) Specialised() bool {
	return t.specialised
}

// Damage is the health removed from a unit by one shot.
func (t *Tower) Damage() int {
	damage := towerDamage[t.Level]
	switch t.Specialisation {
	case SpecSniper:
		damage *= 2
	case SpecRapid:
		damage -= damage / 4
	}
	return damage
}

// Range is the Chebyshev reach of the tower in cells.
func (t *Tower) Range() int {
	reach := towerRange[t.Level]
	switch t.Specialisation {
	case SpecSniper:
		reach++
	case SpecRapid:
		reach = max(reach-1, 1)
	}
	return reach
}

// Cooldown is the number of ticks the tower waits after firing.
func (t *Tower) Cooldown() int {
	switch t.Specialisation {
	case SpecSniper:
		return towerCooldown[t.Level] + 1
	case SpecRapid:
		return 0
	}
	return towerCooldown[t.Level]
}

// Ready reports whether the tower may fire this tick.
func (t *Tower) Ready() bool {
	return t.recharge == 0
}

// InRange reports whether the cell c is within reach.
func (t *Tower) InRange(c Coord) bool {
	return t.Position.Chebyshev(c) <= t.Range()
}

// Fire applies one shot to u and returns the health actually removed. The
// shot always hits and never drives health below zero.
func (t *Tower) Fire(u *Unit) int {
	t.recharge = t.Cooldown()
	return u.takeDamage(t.Damage())
}

func (t *Tower) tick() {
	if t.recharge > 0 {
		t.recharge--
	}
}

// Recharge is the number of ticks until the tower is ready again.
func (t *Tower) Recharge() int {
	return t.recharge
}
