// Package breaker runs the per-service circuit breaker gate: closed,
// open, half-open, backed by a persisted state and a cluster-wide lock
// that admits exactly one half-open probe at a time.
package breaker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	breakerdom "github.com/iruldev/golang-api-hexagonal/internal/domain/breaker"
)

// ErrOpen is returned when the breaker rejects a request outright.
var ErrOpen = errors.New("breaker: circuit open for service")

// Store persists circuit breaker state; the Route Store owns these rows.
type Store interface {
	Get(ctx context.Context, serviceName string) (*breakerdom.CircuitBreakerState, error)
	Upsert(ctx context.Context, s *breakerdom.CircuitBreakerState) error
}

// Manager gates requests per service and records outcomes. State is kept
// in-memory for the fast path and mirrored to Store on every transition
// so the admin API can surface current failure/success counts.
type Manager struct {
	store            Store
	redis            *redis.Client
	failureThreshold int
	openTimeout      time.Duration

	mu            sync.Mutex
	cache         map[string]*breakerdom.CircuitBreakerState
	probeAdmitted map[string]bool
}

// New builds a Manager with the default failure threshold and open-state
// timeout applied to services seen for the first time.
func New(store Store, redisClient *redis.Client, failureThreshold int, openTimeout time.Duration) *Manager {
	return &Manager{
		store:            store,
		redis:            redisClient,
		failureThreshold: failureThreshold,
		openTimeout:      openTimeout,
		cache:            make(map[string]*breakerdom.CircuitBreakerState),
		probeAdmitted:    make(map[string]bool),
	}
}

func (m *Manager) stateFor(ctx context.Context, serviceName string) (*breakerdom.CircuitBreakerState, error) {
	m.mu.Lock()
	if s, ok := m.cache[serviceName]; ok {
		m.mu.Unlock()
		return s, nil
	}
	m.mu.Unlock()

	s, err := m.store.Get(ctx, serviceName)
	if err != nil {
		if errors.Is(err, breakerdom.ErrStateNotFound) {
			s = breakerdom.NewCircuitBreakerState(serviceName, m.failureThreshold, m.openTimeout)
			if upsertErr := m.store.Upsert(ctx, s); upsertErr != nil {
				return nil, fmt.Errorf("initialize circuit breaker state: %w", upsertErr)
			}
		} else {
			return nil, fmt.Errorf("load circuit breaker state: %w", err)
		}
	}

	m.mu.Lock()
	m.cache[serviceName] = s
	m.mu.Unlock()
	return s, nil
}

// Allow reports whether a request to serviceName may proceed. When the
// breaker is open but the cooldown has elapsed, or is already half-open
// from a previous request, Allow gates admission behind a single-admission
// latch so exactly one caller is ever let through before RecordSuccess or
// RecordFailure resolves the probe; every other concurrent caller in the
// same recovery window is rejected even though the local state looks
// ready to retry.
func (m *Manager) Allow(ctx context.Context, serviceName string) (bool, error) {
	s, err := m.stateFor(ctx, serviceName)
	if err != nil {
		return false, err
	}

	now := time.Now().UTC()
	allow, next := s.AllowRequest(now)
	if !allow {
		return false, nil
	}
	if next == breakerdom.StateHalfOpen {
		acquired, err := m.acquireProbeLock(ctx, serviceName)
		if err != nil || !acquired {
			return false, nil
		}
		if s.State != breakerdom.StateHalfOpen {
			m.mu.Lock()
			s.State = breakerdom.StateHalfOpen
			m.mu.Unlock()
			if err := m.store.Upsert(ctx, s); err != nil {
				return false, fmt.Errorf("persist half-open transition: %w", err)
			}
		}
	}
	return true, nil
}

// acquireProbeLock admits exactly one caller per recovery window: an
// in-memory latch gates concurrent callers within this process, and (when
// a shared cache is configured) a cluster-wide SetNX lock gates callers
// across gateway instances. The latch is held until releaseProbeLock
// clears it on RecordSuccess/RecordFailure, so every request arriving
// while a probe is still in flight is rejected, not just the first one
// after the open->half_open transition.
func (m *Manager) acquireProbeLock(ctx context.Context, serviceName string) (bool, error) {
	m.mu.Lock()
	if m.probeAdmitted[serviceName] {
		m.mu.Unlock()
		return false, nil
	}
	m.mu.Unlock()

	if m.redis != nil {
		key := fmt.Sprintf("circuit_probe_lock:%s", serviceName)
		ok, err := m.redis.SetNX(ctx, key, "1", m.openTimeout).Result()
		if err != nil {
			// fail open on cache outage rather than wedge the breaker
			// shut; the in-memory latch below still gates this process.
		} else if !ok {
			return false, nil
		}
	}

	m.mu.Lock()
	m.probeAdmitted[serviceName] = true
	m.mu.Unlock()
	return true, nil
}

// releaseProbeLock clears the single-admission latch once a probe has
// resolved (success or failure), so the next open->half_open cycle can
// admit a fresh probe.
func (m *Manager) releaseProbeLock(ctx context.Context, serviceName string) {
	m.mu.Lock()
	delete(m.probeAdmitted, serviceName)
	m.mu.Unlock()
	if m.redis != nil {
		_ = m.redis.Del(ctx, fmt.Sprintf("circuit_probe_lock:%s", serviceName)).Err()
	}
}

// RecordSuccess applies a success transition and persists it.
func (m *Manager) RecordSuccess(ctx context.Context, serviceName string) error {
	s, err := m.stateFor(ctx, serviceName)
	if err != nil {
		return err
	}
	m.mu.Lock()
	s.RecordSuccess(time.Now().UTC())
	m.mu.Unlock()
	m.releaseProbeLock(ctx, serviceName)
	return m.store.Upsert(ctx, s)
}

// RecordFailure applies a failure transition and persists it. Client
// cancellations must never reach this method — only upstream 5xx/network
// failures count, per spec.md §7's propagation policy.
func (m *Manager) RecordFailure(ctx context.Context, serviceName string) error {
	s, err := m.stateFor(ctx, serviceName)
	if err != nil {
		return err
	}
	m.mu.Lock()
	s.RecordFailure(time.Now().UTC())
	m.mu.Unlock()
	m.releaseProbeLock(ctx, serviceName)
	return m.store.Upsert(ctx, s)
}

// State returns a snapshot of the current state, used by the admin API.
func (m *Manager) State(ctx context.Context, serviceName string) (*breakerdom.CircuitBreakerState, error) {
	return m.stateFor(ctx, serviceName)
}
