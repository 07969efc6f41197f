package sim

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"mechmania/server/internal/game"
	"mechmania/server/internal/telemetry"
	"mechmania/server/logging"
	"mechmania/server/logging/combat"
	"mechmania/server/logging/economy"
	"mechmania/server/logging/lifecycle"
)

const (
	metricTicksTotal            = "sim_ticks_total"
	metricCommandsAppliedTotal  = "sim_commands_applied_total"
	metricCommandsRejectedTotal = "sim_commands_rejected_total"
)

// Deps carries shared infrastructure for the engine. Every field is
// optional.
type Deps struct {
	Logger    telemetry.Logger
	Metrics   telemetry.Metrics
	Publisher logging.Publisher
	Clock     logging.Clock
}

// PlayerSummary is one player's part of a tick.
type PlayerSummary struct {
	Player    game.PlayerID    `json:"player" msgpack:"player"`
	Health    int              `json:"health" msgpack:"health"`
	Resources int              `json:"resources" msgpack:"resources"`
	Summary   game.TickSummary `json:"summary" msgpack:"summary"`
}

// TickResult is the outcome of one Step.
type TickResult struct {
	Tick      uint64          `json:"tick" msgpack:"tick"`
	Summaries []PlayerSummary `json:"summaries" msgpack:"summaries"`
	Checksum  string          `json:"checksum" msgpack:"checksum"`
}

// Engine owns the state of one match. Commands are applied between ticks
// and Step advances every board behind a full barrier.
type Engine struct {
	mu        sync.Mutex
	deps      Deps
	logger    telemetry.Logger
	desc      game.MapDescription
	order     []game.PlayerID
	players   map[game.PlayerID]*game.Player
	tick      uint64
	corrupted error
}

// NewEngine validates desc and returns an engine with no players.
func NewEngine(desc game.MapDescription, deps Deps) (*Engine, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	if deps.Publisher == nil {
		deps.Publisher = logging.NopPublisher()
	}
	if deps.Clock == nil {
		deps.Clock = logging.SystemClock{}
	}
	desc.Base = slices.Clone(desc.Base)
	desc.Path = slices.Clone(desc.Path)
	return &Engine{
		deps:    deps,
		logger:  telemetry.Prefixed(deps.Logger, "sim"),
		desc:    desc,
		players: make(map[game.PlayerID]*game.Player),
	}, nil
}

// Deps returns the injected dependencies.
func (e *Engine) Deps() Deps {
	return e.deps
}

// Map returns the map every board was built from.
func (e *Engine) Map() game.MapDescription {
	desc := e.desc
	desc.Base = slices.Clone(e.desc.Base)
	desc.Path = slices.Clone(e.desc.Path)
	return desc
}

// AddPlayer gives id a fresh board. Players join before the first tick.
func (e *Engine) AddPlayer(id game.PlayerID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.tick > 0 {
		return ErrMatchStarted
	}
	if _, exists := e.players[id]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicatePlayer, id)
	}
	board, err := game.NewBoardFromMap(e.desc)
	if err != nil {
		return err
	}
	e.players[id] = game.NewPlayer(id, board)
	e.order = append(e.order, id)
	lifecycle.PlayerJoined(context.Background(), e.deps.Publisher, e.tick, logging.PlayerRef(string(id)), lifecycle.PlayerJoinedPayload{
		Map:   e.desc.Name,
		Lanes: len(board.Lanes()),
	})
	return nil
}

// PlayerIDs lists players in join order.
func (e *Engine) PlayerIDs() []game.PlayerID {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.order)
}

// Player returns the live state for id. Callers must not mutate it while a
// loop is running.
func (e *Engine) Player(id game.PlayerID) (*game.Player, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, ok := e.players[id]
	return p, ok
}

// Tick is the number of completed ticks.
func (e *Engine) Tick() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tick
}

// Finished reports whether the match is decided: at most one player left
// standing, or a lone player dead.
func (e *Engine) Finished() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.order) == 0 {
		return false
	}
	alive := 0
	for _, id := range e.order {
		if !e.players[id].IsDead() {
			alive++
		}
	}
	if len(e.order) == 1 {
		return alive == 0
	}
	return alive <= 1
}

// Apply runs commands in arrival order against the state before the next
// tick. Each command is accepted or rejected on its own; a rejected command
// changes nothing.
func (e *Engine) Apply(cmds []Command) []Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	results := make([]Result, 0, len(cmds))
	for _, cmd := range cmds {
		result := Result{ActorID: cmd.ActorID, Type: cmd.Type, Accepted: true}
		if err := e.apply(cmd); err != nil {
			result.Accepted = false
			result.Reason = game.Reason(err)
			e.addMetric(metricCommandsRejectedTotal)
			economy.CommandRejected(context.Background(), e.deps.Publisher, e.tick+1, logging.PlayerRef(string(cmd.ActorID)), economy.CommandRejectedPayload{
				Command: string(cmd.Type),
				Reason:  result.Reason,
			})
		} else {
			e.addMetric(metricCommandsAppliedTotal)
		}
		results = append(results, result)
	}
	return results
}

func (e *Engine) apply(cmd Command) error {
	p, ok := e.players[cmd.ActorID]
	if !ok {
		return ErrUnknownPlayer
	}
	if p.IsDead() {
		return ErrPlayerDead
	}
	ctx := context.Background()
	actor := logging.PlayerRef(string(p.Name))
	tick := e.tick + 1

	switch cmd.Type {
	case CommandPurchaseUnit:
		return e.purchaseUnit(p, cmd.Unit)
	case CommandPlaceTower:
		if cmd.Tower == nil {
			return ErrMissingPayload
		}
		t, err := p.PurchaseTower(cmd.Tower.Position)
		if err != nil {
			return err
		}
		economy.TowerPurchased(ctx, e.deps.Publisher, tick, actor, towerPayload(t, t.Cost, p))
		return nil
	case CommandUpgradeTower:
		if cmd.Tower == nil {
			return ErrMissingPayload
		}
		t, err := towerAt(p, cmd.Tower.Position)
		if err != nil {
			return err
		}
		cost := game.UpgradeCost(t.Level)
		if err := t.UpgradeTower(p); err != nil {
			return err
		}
		economy.TowerUpgraded(ctx, e.deps.Publisher, tick, actor, towerPayload(t, cost, p))
		return nil
	case CommandSpecialiseTower:
		if cmd.Specialise == nil {
			return ErrMissingPayload
		}
		t, err := towerAt(p, cmd.Specialise.Position)
		if err != nil {
			return err
		}
		return t.Specialise(cmd.Specialise.Kind)
	case CommandSellTower:
		if cmd.Tower == nil {
			return ErrMissingPayload
		}
		t, err := towerAt(p, cmd.Tower.Position)
		if err != nil {
			return err
		}
		refund := p.SellTower(cmd.Tower.Position)
		economy.TowerSold(ctx, e.deps.Publisher, tick, actor, towerPayload(t, refund, p))
		return nil
	case CommandIncreaseUpgrade:
		if err := p.IncreaseUpgrade(); err != nil {
			return err
		}
		economy.UpgradeUnlocked(ctx, e.deps.Publisher, tick, actor, economy.UpgradeUnlockedPayload{
			AllowedUpgrade: p.AllowedUpgrade,
			SentUnits:      p.SentUnits,
		})
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Type)
	}
}

func (e *Engine) purchaseUnit(p *game.Player, c *PurchaseUnitCommand) error {
	if c == nil {
		return ErrMissingPayload
	}
	target, err := e.unitTarget(p.Name, c.Target)
	if err != nil {
		return err
	}
	lane := game.DefaultLane
	if c.Lane != nil {
		lane = *c.Lane
	}
	u, err := game.PurchaseUnit(c.Level, c.Specialisation, p, target.Board, lane)
	if err != nil {
		return err
	}
	if err := target.Board.QueueUnit(u, u.Lane); err != nil {
		panic(fmt.Sprintf("sim: queue unit on resolved lane %d: %v", u.Lane, err))
	}
	economy.UnitPurchased(context.Background(), e.deps.Publisher, e.tick+1, logging.PlayerRef(string(p.Name)), economy.UnitPurchasedPayload{
		Level:          u.Level,
		Specialisation: u.Specialisation,
		Target:         string(target.Name),
		Lane:           u.Lane,
		Resources:      p.Resources,
	})
	return nil
}

// unitTarget resolves who receives a unit: the named player, otherwise the
// next player in join order, otherwise the sender.
func (e *Engine) unitTarget(sender, requested game.PlayerID) (*game.Player, error) {
	if requested != "" {
		target, ok := e.players[requested]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownPlayer, requested)
		}
		return target, nil
	}
	idx := slices.Index(e.order, sender)
	return e.players[e.order[(idx+1)%len(e.order)]], nil
}

func towerAt(p *game.Player, c game.Coord) (*game.Tower, error) {
	if !p.Board.ValidPosition(c) {
		return nil, fmt.Errorf("%w: %s", game.ErrInvalidPosition, c)
	}
	t, ok := p.Board.GetItem(c)
	if !ok {
		return nil, fmt.Errorf("%w: %s", game.ErrNoTower, c)
	}
	return t, nil
}

func towerPayload(t *game.Tower, amount int, p *game.Player) economy.TowerPayload {
	return economy.TowerPayload{
		Row:       t.Position.Row,
		Col:       t.Position.Col,
		Level:     t.Level,
		Amount:    amount,
		Resources: p.Resources,
	}
}

// Step supplies every player, then advances all boards in parallel and
// waits for all of them before returning. A panic on any board corrupts the
// match and every later Step fails with ErrCorrupted.
func (e *Engine) Step(ctx context.Context) (TickResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.corrupted != nil {
		return TickResult{}, e.corrupted
	}
	if err := ctx.Err(); err != nil {
		return TickResult{}, err
	}

	tick := e.tick + 1
	players := make([]*game.Player, len(e.order))
	wasDead := make([]bool, len(e.order))
	for i, id := range e.order {
		p := e.players[id]
		players[i] = p
		wasDead[i] = p.IsDead()
		p.AddResources(game.Supply(p.AllowedUpgrade))
	}

	summaries := make([]game.TickSummary, len(players))
	var g errgroup.Group
	for i, p := range players {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("%w: player %s tick %d: %v", ErrCorrupted, p.Name, tick, r)
				}
			}()
			summaries[i] = p.Advance()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		e.corrupted = err
		e.logger.Printf("%v", err)
		return TickResult{}, err
	}
	e.tick = tick

	result := TickResult{Tick: tick, Summaries: make([]PlayerSummary, len(players))}
	for i, p := range players {
		result.Summaries[i] = PlayerSummary{
			Player:    p.Name,
			Health:    p.Health,
			Resources: p.Resources,
			Summary:   summaries[i],
		}
		e.publishSummary(ctx, tick, p, summaries[i], wasDead[i])
	}
	checksum, err := Checksum(e.snapshotLocked())
	if err != nil {
		return TickResult{}, err
	}
	result.Checksum = checksum
	e.addMetric(metricTicksTotal)
	return result, nil
}

func (e *Engine) publishSummary(ctx context.Context, tick uint64, p *game.Player, summary game.TickSummary, wasDead bool) {
	pub := e.deps.Publisher
	actor := logging.PlayerRef(string(p.Name))
	if len(summary.Damages) > 0 {
		damage := 0
		for _, arrival := range summary.Damages {
			damage += arrival.Damage
		}
		combat.BaseBreached(ctx, pub, tick, actor, combat.BaseBreachedPayload{
			Units:  len(summary.Damages),
			Damage: damage,
			Health: p.Health,
		})
	}
	for _, death := range summary.Deaths {
		combat.UnitKilled(ctx, pub, tick, actor, logging.PlayerRef(string(death.Owner)), combat.UnitKilledPayload{
			UnitID:    death.UnitID,
			Lane:      death.Lane,
			KillerRow: death.Killer.Row,
			KillerCol: death.Killer.Col,
			Bounty:    death.Bounty,
		})
	}
	if !wasDead && p.IsDead() {
		lifecycle.PlayerDied(ctx, pub, tick, actor, lifecycle.PlayerDiedPayload{Health: p.Health})
	}
}

func (e *Engine) addMetric(key string) {
	telemetry.Inc(e.deps.Metrics, key)
}
