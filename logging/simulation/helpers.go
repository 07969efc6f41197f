package simulation

import (
	"context"

	"mechmania/server/logging"
)

const (
	// EventTickBudgetOverrun is emitted when a tick takes longer than its budget.
	EventTickBudgetOverrun logging.EventType = "simulation.tick_budget_overrun"
	// EventTickResolved is emitted after every tick with aggregate counts.
	EventTickResolved logging.EventType = "simulation.tick_resolved"
)

// TickBudgetOverrunPayload captures timing details for a tick budget breach.
type TickBudgetOverrunPayload struct {
	DurationMillis int64   `json:"durationMillis"`
	BudgetMillis   int64   `json:"budgetMillis"`
	Ratio          float64 `json:"ratio"`
}

// TickResolvedPayload summarises a tick.
type TickResolvedPayload struct {
	Commands int    `json:"commands"`
	Rejected int    `json:"rejected"`
	Attacks  int    `json:"attacks"`
	Deaths   int    `json:"deaths"`
	Arrivals int    `json:"arrivals"`
	Checksum string `json:"checksum"`
}

// TickBudgetOverrun publishes a warning when the loop exceeds the tick budget.
func TickBudgetOverrun(ctx context.Context, pub logging.Publisher, tick uint64, payload TickBudgetOverrunPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventTickBudgetOverrun,
		Tick:     tick,
		Actor:    logging.MatchRef(),
		Severity: logging.SeverityWarn,
		Category: logging.CategorySimulation,
		Payload:  payload,
	})
}

// TickResolved publishes the per-tick aggregate at debug severity.
func TickResolved(ctx context.Context, pub logging.Publisher, tick uint64, payload TickResolvedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventTickResolved,
		Tick:     tick,
		Actor:    logging.MatchRef(),
		Severity: logging.SeverityDebug,
		Category: logging.CategorySimulation,
		Payload:  payload,
	})
}
