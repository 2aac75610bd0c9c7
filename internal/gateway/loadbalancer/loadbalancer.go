// Package loadbalancer picks a healthy instance for a service under a
// chosen strategy: round-robin, weighted, or least-connections.
package loadbalancer

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/iruldev/golang-api-hexagonal/internal/domain/instance"
	"github.com/iruldev/golang-api-hexagonal/internal/domain/route"
)

// ErrNoInstanceAvailable is returned when a service has no eligible
// instance to pick.
var ErrNoInstanceAvailable = errors.New("loadbalancer: no healthy instance available")

// Picker selects an instance and, for least-connections, releases it once
// the request using it completes.
type Picker struct {
	mu        sync.Mutex
	counters  map[string]*uint64 // per-service round-robin cursor
	inflight  map[string]map[string]*int64 // service -> instance id -> in-flight count
}

// New builds an empty Picker.
func New() *Picker {
	return &Picker{
		counters: make(map[string]*uint64),
		inflight: make(map[string]map[string]*int64),
	}
}

// Pick chooses one healthy instance from healthy for the given strategy.
// It tolerates the healthy slice shrinking or growing between calls: all
// strategies index modulo the current length rather than caching it.
//
// The returned release func must be called once the request completes
// (success or failure) so least-connections counters stay accurate; other
// strategies return a no-op release.
func (p *Picker) Pick(serviceName string, healthy []*instance.Instance, strategy route.LoadBalanceStrategy) (*instance.Instance, func(), error) {
	if len(healthy) == 0 {
		return nil, func() {}, ErrNoInstanceAvailable
	}

	switch strategy {
	case route.StrategyWeighted:
		inst := p.pickWeighted(serviceName, healthy)
		return inst, func() {}, nil
	case route.StrategyLeastConnections:
		return p.pickLeastConnections(serviceName, healthy)
	default:
		inst := p.pickRoundRobin(serviceName, healthy)
		return inst, func() {}, nil
	}
}

func (p *Picker) counter(serviceName string) *uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.counters[serviceName]
	if !ok {
		var zero uint64
		c = &zero
		p.counters[serviceName] = c
	}
	return c
}

func (p *Picker) pickRoundRobin(serviceName string, healthy []*instance.Instance) *instance.Instance {
	c := p.counter(serviceName)
	n := atomic.AddUint64(c, 1)
	idx := int(n % uint64(len(healthy)))
	return healthy[idx]
}

func (p *Picker) pickWeighted(serviceName string, healthy []*instance.Instance) *instance.Instance {
	total := 0
	for _, inst := range healthy {
		if inst.Weight > 0 {
			total += inst.Weight
		}
	}
	if total == 0 {
		// every instance is zero-weight: fall back to round robin so a
		// misconfigured weight column never starves traffic entirely.
		return p.pickRoundRobin(serviceName, healthy)
	}
	c := p.counter(serviceName)
	n := atomic.AddUint64(c, 1)
	target := int(n % uint64(total))
	cumulative := 0
	for _, inst := range healthy {
		if inst.Weight <= 0 {
			continue
		}
		cumulative += inst.Weight
		if target < cumulative {
			return inst
		}
	}
	return healthy[len(healthy)-1]
}

func (p *Picker) instanceCounters(serviceName string) map[string]*int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	m, ok := p.inflight[serviceName]
	if !ok {
		m = make(map[string]*int64)
		p.inflight[serviceName] = m
	}
	return m
}

func (p *Picker) pickLeastConnections(serviceName string, healthy []*instance.Instance) (*instance.Instance, func(), error) {
	counters := p.instanceCounters(serviceName)

	p.mu.Lock()
	for _, inst := range healthy {
		if _, ok := counters[inst.ID]; !ok {
			var zero int64
			counters[inst.ID] = &zero
		}
	}
	p.mu.Unlock()

	var best *instance.Instance
	var bestCount int64 = -1
	for _, inst := range healthy {
		count := atomic.LoadInt64(counters[inst.ID])
		switch {
		case bestCount < 0 || count < bestCount:
			best, bestCount = inst, count
		case count == bestCount && best != nil && inst.Weight > best.Weight:
			best = inst
		}
	}
	if best == nil {
		return nil, func() {}, ErrNoInstanceAvailable
	}

	counter := counters[best.ID]
	atomic.AddInt64(counter, 1)
	release := func() {
		atomic.AddInt64(counter, -1)
	}
	return best, release, nil
}
