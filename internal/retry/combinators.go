package retry

import (
	"errors"
	"time"

	"go.uber.org/zap"
)

const (
	invalidWaitBudgetMessageConstant       = "retry wait budget must be positive"
	invalidAttemptBudgetMessageConstant    = "retry attempt budget must be at least one"
	succeededAfterRetriesMessageConstant   = "operation succeeded after retries"
	attemptFailedMessageConstant           = "operation attempt failed"
	logFieldElapsedMillisecondsConstant    = "elapsed_ms"
	logFieldAttemptNumberConstant          = "attempt"
	logFieldMaximumAttemptCountConstant    = "max_attempts"
	minimumAttemptCountConstant            = 1
)

// Configuration errors reported before any attempt is made.
var (
	// ErrWaitBudgetInvalid reports a non-positive time budget.
	ErrWaitBudgetInvalid = errors.New(invalidWaitBudgetMessageConstant)
	// ErrAttemptBudgetInvalid reports an attempt budget below one.
	ErrAttemptBudgetInvalid = errors.New(invalidAttemptBudgetMessageConstant)
)

// attemptState enumerates the states of the time-budgeted retry machine.
type attemptState int

const (
	attemptStateAttempting attemptState = iota
	attemptStateSucceeded
	attemptStateFailedTimeout
)

// TimeBudgetPolicy configures UntilTimeout.
type TimeBudgetPolicy struct {
	// MaximumWaitDuration bounds the wall-clock window during which failed attempts are retried. Must be positive.
	MaximumWaitDuration time.Duration
	// TimeoutErrorFactory wraps the last underlying error once the budget is exhausted.
	TimeoutErrorFactory func(lastError error) error
	// Clock supplies wall-clock reads; nil selects SystemClock.
	Clock Clock
	// Logger receives the stall signal emitted when success required at least one retry; nil disables it.
	Logger *zap.Logger
}

// AttemptBudgetPolicy configures WithAttemptBudget.
type AttemptBudgetPolicy struct {
	// MaximumAttemptCount bounds the number of invocations. Must be at least one.
	MaximumAttemptCount int
	// OnFailedAttempt runs after a failed attempt when attempts remain, typically to clean up partial state.
	OnFailedAttempt func(attemptNumber int, attemptError error)
	// Logger receives a report of every failed attempt; nil disables reporting.
	Logger *zap.Logger
}

// UntilTimeout invokes operation until it succeeds or the wall-clock budget
// elapses. Attempts are retried immediately with no inter-attempt delay: the
// limiting factor is the cost of the failing operation itself, which suits
// lock contention where the lock may release at any instant. On exhaustion the
// policy's factory wraps the last underlying error.
func UntilTimeout[ResultType any](operation func() (ResultType, error), policy TimeBudgetPolicy) (ResultType, error) {
	var zeroResult ResultType
	if policy.MaximumWaitDuration <= 0 {
		return zeroResult, ErrWaitBudgetInvalid
	}

	clock := policy.Clock
	if clock == nil {
		clock = SystemClock{}
	}

	startTime := clock.Now()
	retryOccurred := false
	var lastAttemptError error

	machineState := attemptStateAttempting
	for machineState == attemptStateAttempting {
		operationResult, attemptError := operation()
		if attemptError == nil {
			machineState = attemptStateSucceeded
			if retryOccurred && policy.Logger != nil {
				elapsedDuration := clock.Now().Sub(startTime)
				policy.Logger.Warn(
					succeededAfterRetriesMessageConstant,
					zap.Int64(logFieldElapsedMillisecondsConstant, elapsedDuration.Milliseconds()),
				)
			}
			return operationResult, nil
		}

		lastAttemptError = attemptError
		retryOccurred = true
		if clock.Now().Sub(startTime) > policy.MaximumWaitDuration {
			machineState = attemptStateFailedTimeout
		}
	}

	if policy.TimeoutErrorFactory != nil {
		return zeroResult, policy.TimeoutErrorFactory(lastAttemptError)
	}
	return zeroResult, lastAttemptError
}

// WithAttemptBudget invokes operation up to the configured number of attempts.
// Every failed attempt is reported with its number; when attempts remain the
// cleanup callback runs before the next attempt. Once the budget is exhausted
// the last error is surfaced unchanged so the root cause is preserved.
func WithAttemptBudget(operation func() error, policy AttemptBudgetPolicy) error {
	if policy.MaximumAttemptCount < minimumAttemptCountConstant {
		return ErrAttemptBudgetInvalid
	}

	var lastAttemptError error
	for attemptNumber := 1; attemptNumber <= policy.MaximumAttemptCount; attemptNumber++ {
		attemptError := operation()
		if attemptError == nil {
			return nil
		}

		lastAttemptError = attemptError
		if policy.Logger != nil {
			policy.Logger.Warn(
				attemptFailedMessageConstant,
				zap.Int(logFieldAttemptNumberConstant, attemptNumber),
				zap.Int(logFieldMaximumAttemptCountConstant, policy.MaximumAttemptCount),
				zap.Error(attemptError),
			)
		}

		attemptsRemain := attemptNumber < policy.MaximumAttemptCount
		if attemptsRemain && policy.OnFailedAttempt != nil {
			policy.OnFailedAttempt(attemptNumber, attemptError)
		}
	}

	return lastAttemptError
}
