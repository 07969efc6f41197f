package game

import "fmt"

// TickSummary reports everything that happened on one board during a tick.
type TickSummary struct {
	Damages []Arrival `json:"damages" msgpack:"damages"`
	Attacks []Attack  `json:"attacks,omitempty" msgpack:"attacks"`
	Deaths  []Death   `json:"deaths,omitempty" msgpack:"deaths"`
}

// Player is one contestant: their board plus the resource, health and
// upgrade-unlock state.
type Player struct {
	Name  PlayerID
	Board *Board

	Resources      int
	Health         int
	AllowedUpgrade int
	// SentUnits only ever grows.
	SentUnits int
}

// NewPlayer creates a player with the starting resources and health.
func NewPlayer(name PlayerID, board *Board) *Player {
	return &Player{
		Name:      name,
		Board:     board,
		Resources: BaseResources,
		Health:    BaseHealth,
	}
}

// IncreaseUpgrade unlocks the next tower tier once enough units were sent.
func (p *Player) IncreaseUpgrade() error {
	if p.AllowedUpgrade >= MaxUpgrade {
		return ErrMaxUpgrade
	}
	if p.SentUnits < UpgradeIncrease*(p.AllowedUpgrade+1) {
		return ErrUpgradeThreshold
	}
	p.AllowedUpgrade++
	return nil
}

// Purchase debits cost. It does not check the balance; see PurchaseCheck.
func (p *Player) Purchase(cost int) {
	p.Resources -= cost
}

// PurchaseCheck reports whether p can afford cost.
func (p *Player) PurchaseCheck(cost int) bool {
	return p.Resources >= cost
}

// Damage removes health. Health may go negative.
func (p *Player) Damage(amount int) {
	p.Health -= amount
}

// AddResources credits amount.
func (p *Player) AddResources(amount int) {
	p.Resources += amount
}

// IsDead reports whether health is exhausted.
func (p *Player) IsDead() bool {
	return p.Health <= 0
}

// PurchaseTower buys a tower and places it on c. Payment and placement
// happen together or not at all.
func (p *Player) PurchaseTower(c Coord) (*Tower, error) {
	if !p.PurchaseCheck(TowerBaseCost) {
		return nil, ErrInsufficientResources
	}
	t := NewTower(p.Name)
	if err := p.Board.AddItem(t, c); err != nil {
		return nil, err
	}
	p.Purchase(TowerBaseCost)
	return t, nil
}

// SellTower removes the tower on c and refunds part of its original cost.
// An empty cell is a no-op. The refund is returned.
func (p *Player) SellTower(c Coord) int {
	t, ok := p.Board.GetItem(c)
	if !ok {
		return 0
	}
	if err := p.Board.RemoveItem(c); err != nil {
		panic(fmt.Sprintf("game: tower vanished during sale: %v", err))
	}
	refund := t.Cost * TowerSellPercent / 100
	p.Resources += refund
	return refund
}

// RefreshTower replaces whatever stands on c with t.
func (p *Player) RefreshTower(c Coord, t *Tower) error {
	if _, ok := p.Board.GetItem(c); ok {
		if err := p.Board.RemoveItem(c); err != nil {
			return err
		}
	}
	return p.Board.AddItem(t, c)
}

// Advance plays one tick on the player's board. Movement always resolves; a
// dead player's towers do not fire. Bounties for kills are credited.
func (p *Player) Advance() TickSummary {
	summary := TickSummary{Damages: p.moveUnits()}
	if p.IsDead() {
		return summary
	}
	summary.Attacks, summary.Deaths = p.Board.FireTowers()
	for _, death := range summary.Deaths {
		p.AddResources(death.Bounty)
	}
	return summary
}

func (p *Player) moveUnits() []Arrival {
	arrivals := p.Board.MoveUnits()
	total := 0
	for _, arrival := range arrivals {
		total += arrival.Damage
	}
	p.Damage(total)
	return arrivals
}
