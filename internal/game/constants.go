package game

const (
	// BoardSide is the side length of every square board.
	BoardSide = 11

	BaseResources = 2000
	BaseHealth    = 1000

	// MaxUpgrade bounds both tower levels and the tier a player may unlock.
	MaxUpgrade = 3
	// UpgradeIncrease is the number of sent units needed per unlocked tier.
	UpgradeIncrease = 10

	TowerBaseCost = 100
	// TowerSellPercent is the share of the original cost refunded on sale.
	TowerSellPercent = 50

	// MaxUnitLevel is the highest purchasable unit level.
	MaxUnitLevel = 2

	SupplyBase       = 10
	SupplyPerUpgrade = 5

	// DefaultLane asks the engine to pick the lane for a purchased unit.
	DefaultLane = -1
)

// PlayerID identifies a player inside a match. Towers and units refer to
// their owner through it instead of holding a pointer.
type PlayerID string

// Supply reports the per-tick resource grant for a player at the given tier.
func Supply(allowedUpgrade int) int {
	return SupplyBase + SupplyPerUpgrade*allowedUpgrade
}
