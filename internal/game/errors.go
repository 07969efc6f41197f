package game

import (
	"errors"
	"fmt"
)

// Error classes. Every specific error below wraps exactly one of these so
// callers can branch with errors.Is without knowing the detailed reason.
var (
	ErrInvalidInput       = errors.New("invalid_input")
	ErrPreconditionNotMet = errors.New("precondition_not_met")
	ErrNotFound           = errors.New("not_found")
)

var (
	ErrInvalidPosition       = classify(ErrInvalidInput, "invalid_position")
	ErrInvalidLevel          = classify(ErrInvalidInput, "invalid_level")
	ErrInvalidSpecialisation = classify(ErrInvalidInput, "invalid_specialisation")
	ErrInvalidLane           = classify(ErrInvalidInput, "invalid_lane")
	ErrInvalidMap            = classify(ErrInvalidInput, "invalid_map")

	ErrInsufficientResources = classify(ErrPreconditionNotMet, "insufficient_resources")
	ErrCellOccupied          = classify(ErrPreconditionNotMet, "cell_occupied")
	ErrNotBuildable          = classify(ErrPreconditionNotMet, "not_buildable")
	ErrMaxUpgrade            = classify(ErrPreconditionNotMet, "max_upgrade")
	ErrUpgradeLocked         = classify(ErrPreconditionNotMet, "upgrade_locked")
	ErrUpgradeThreshold      = classify(ErrPreconditionNotMet, "upgrade_threshold")
	ErrNotSpecialisable      = classify(ErrPreconditionNotMet, "not_specialisable")
	ErrAlreadySpecialised    = classify(ErrPreconditionNotMet, "already_specialised")

	ErrNoTower = classify(ErrNotFound, "no_tower")
)

type classifiedError struct {
	class  error
	reason string
}

func classify(class error, reason string) error {
	return &classifiedError{class: class, reason: reason}
}

// Classify creates an error reported as reason that matches class with
// errors.Is. Packages built on top of game use it for their own reasons.
func Classify(class error, reason string) error {
	return classify(class, reason)
}

func (e *classifiedError) Error() string { return e.reason }

func (e *classifiedError) Unwrap() error { return e.class }

// Reason returns the snake_case reason carried by err, falling back to the
// error text for errors produced outside this package.
func Reason(err error) string {
	if err == nil {
		return ""
	}
	var classified *classifiedError
	if errors.As(err, &classified) {
		return classified.reason
	}
	return err.Error()
}

func positionError(c Coord) error {
	return fmt.Errorf("%w: %s", ErrInvalidPosition, c)
}
