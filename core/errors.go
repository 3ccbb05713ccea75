package core

import "errors"

// Sentinel errors shared across the engine. Callers should compare with
// errors.Is; exchange adapters and scorers wrap these with context via
// fmt.Errorf("...: %w", ...).
var (
	// ErrDust marks a position or a prospective order whose notional value
	// falls below the exchange's minimum order size.
	ErrDust = errors.New("position value below minimum order value")

	// ErrEnsembleDisabled is returned by the AI ensemble when
	// ai_ensemble_enabled is false. It is a structural refusal, never a
	// fallback verdict.
	ErrEnsembleDisabled = errors.New("ai ensemble disabled")

	// ErrVerdictRejected marks a HOLD/SELL verdict or a BUY below
	// ai_min_confidence.
	ErrVerdictRejected = errors.New("ai verdict rejected")

	// ErrNoCandidate is returned by the strategy evaluator when no
	// strategy fires for a symbol.
	ErrNoCandidate = errors.New("no strategy candidate")

	// ErrPositionOpen is returned when an entry is attempted for a symbol
	// that already has an open position.
	ErrPositionOpen = errors.New("position already open for symbol")

	// ErrPositionNotFound is returned when an operation references a
	// symbol with no tracked position.
	ErrPositionNotFound = errors.New("position not found")

	// ErrInvariantViolation marks a loaded record that fails Position
	// invariant validation; such records are quarantined, not repaired.
	ErrInvariantViolation = errors.New("position invariant violation")

	// ErrRetryExhausted is returned when an exchange operation exhausts
	// its retry budget.
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrVolumeMinimumNotMet is the terminal exchange business error that
	// reclassifies a position as dust instead of retrying.
	ErrVolumeMinimumNotMet = errors.New("exchange: volume minimum not met")

	// ErrConfigInvalid marks a config document that failed validation;
	// the previous snapshot is kept in force.
	ErrConfigInvalid = errors.New("invalid configuration")

	// ErrTickDeadlineExceeded marks a tick abandoned because its wall
	// clock deadline passed before work drained.
	ErrTickDeadlineExceeded = errors.New("tick deadline exceeded")
)
