// Package breaker provides the CircuitBreakerState domain entity: one
// persisted record per service tracking the closed/open/half-open state
// machine and its failure/success bookkeeping.
package breaker

import "time"

// State is a circuit breaker's current position in the state machine.
type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half_open"
)

// CircuitBreakerState is the persisted view of one service's breaker.
type CircuitBreakerState struct {
	ServiceName      string
	State            State
	FailureCount     int
	SuccessCount     int
	LastFailureTime  *time.Time
	NextAttemptTime  *time.Time
	FailureThreshold int
	OpenStateTimeout time.Duration
	UpdatedAt        time.Time
}

// AllowRequest reports whether a request may proceed given the current
// wall-clock time, and the state it transitions to as a side effect of
// that decision (open -> half_open once next_attempt_time has passed).
func (s *CircuitBreakerState) AllowRequest(now time.Time) (allow bool, next State) {
	switch s.State {
	case StateOpen:
		if s.NextAttemptTime != nil && !now.Before(*s.NextAttemptTime) {
			return true, StateHalfOpen
		}
		return false, StateOpen
	case StateHalfOpen:
		// A half-open probe is already in flight; this method does not
		// limit admission, so callers serialize it externally and admit
		// only one probe per recovery window.
		return true, StateHalfOpen
	default:
		return true, StateClosed
	}
}

// RecordSuccess applies a success transition.
func (s *CircuitBreakerState) RecordSuccess(now time.Time) {
	s.State = StateClosed
	s.FailureCount = 0
	s.SuccessCount++
	s.UpdatedAt = now
}

// RecordFailure applies a failure transition, opening the breaker once
// consecutive failures reach the threshold.
func (s *CircuitBreakerState) RecordFailure(now time.Time) {
	s.FailureCount++
	s.LastFailureTime = &now
	if s.State == StateHalfOpen || s.FailureCount >= s.FailureThreshold {
		s.State = StateOpen
		next := now.Add(s.OpenStateTimeout)
		s.NextAttemptTime = &next
	}
	s.UpdatedAt = now
}

// NewCircuitBreakerState builds the initial closed-state record for a
// newly observed service.
func NewCircuitBreakerState(serviceName string, failureThreshold int, openStateTimeout time.Duration) *CircuitBreakerState {
	return &CircuitBreakerState{
		ServiceName:      serviceName,
		State:            StateClosed,
		FailureThreshold: failureThreshold,
		OpenStateTimeout: openStateTimeout,
		UpdatedAt:        time.Now().UTC(),
	}
}
