// Package registry tracks registered service instances and runs the
// health-check loop that keeps their state current for the load balancer.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/iruldev/golang-api-hexagonal/internal/domain/instance"
)

// Store is the persistence port the registry mutates; it is the only
// component permitted to change instance state.
type Store interface {
	Create(ctx context.Context, i *instance.Instance) error
	Get(ctx context.Context, id string) (*instance.Instance, error)
	List(ctx context.Context, limit, offset int) ([]*instance.Instance, int64, error)
	ListByService(ctx context.Context, serviceName string) ([]*instance.Instance, error)
	ListHealthy(ctx context.Context, serviceName string) ([]*instance.Instance, error)
	UpdateState(ctx context.Context, id string, state instance.State, lastHealthCheck time.Time) error
	Delete(ctx context.Context, id string) error
}

// Registry exposes registration and health-aware instance listing.
type Registry struct {
	store  Store
	http   *http.Client
	logger *slog.Logger

	unhealthyThreshold int
	checkTimeout       time.Duration
	concurrency        int

	// failures tracks consecutive failed checks per instance id, reset on
	// the first success (the hysteresis rule from spec.md §4.3).
	failures map[string]int
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger overrides the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// WithHTTPClient overrides the health-check HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Registry) { r.http = c }
}

// WithConcurrency bounds how many instances are health-checked in
// parallel by the scheduler sweep.
func WithConcurrency(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// New builds a Registry. unhealthyThreshold is the number of consecutive
// failures required before an instance is marked unhealthy; one success
// always restores it to healthy.
func New(store Store, unhealthyThreshold int, checkTimeout time.Duration, opts ...Option) *Registry {
	if unhealthyThreshold < 1 {
		unhealthyThreshold = 3
	}
	if checkTimeout <= 0 {
		checkTimeout = 2 * time.Second
	}
	r := &Registry{
		store:              store,
		http:               &http.Client{Timeout: checkTimeout},
		logger:             slog.Default(),
		unhealthyThreshold: unhealthyThreshold,
		checkTimeout:       checkTimeout,
		concurrency:        8,
		failures:           make(map[string]int),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a new instance, defaulting its state to healthy until the
// first health check runs.
func (r *Registry) Register(ctx context.Context, i *instance.Instance) error {
	if i.State == "" {
		i.State = instance.StateHealthy
	}
	return r.store.Create(ctx, i)
}

// Deregister removes an instance entirely.
func (r *Registry) Deregister(ctx context.Context, id string) error {
	delete(r.failures, id)
	return r.store.Delete(ctx, id)
}

// Drain marks an instance draining: it stops receiving new traffic but
// may continue to serve requests already in flight.
func (r *Registry) Drain(ctx context.Context, id string) error {
	return r.store.UpdateState(ctx, id, instance.StateDraining, time.Now().UTC())
}

// ListHealthy exposes the healthy instances for a service, the contract
// the load balancer depends on.
func (r *Registry) ListHealthy(ctx context.Context, serviceName string) ([]*instance.Instance, error) {
	return r.store.ListHealthy(ctx, serviceName)
}

// ServiceNames returns the distinct set of service names currently
// registered, paging through the full instance table. Intended for the
// scheduler loop to call before each CheckAll sweep so newly registered
// services are picked up without a restart.
func (r *Registry) ServiceNames(ctx context.Context) ([]string, error) {
	const pageSize = 200
	seen := make(map[string]struct{})
	var names []string

	offset := 0
	for {
		instances, total, err := r.store.List(ctx, pageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("registry: list instances: %w", err)
		}
		for _, inst := range instances {
			if _, ok := seen[inst.ServiceName]; ok {
				continue
			}
			seen[inst.ServiceName] = struct{}{}
			names = append(names, inst.ServiceName)
		}
		offset += len(instances)
		if len(instances) < pageSize || int64(offset) >= total {
			break
		}
	}
	return names, nil
}

// HealthyInstanceCount sums the healthy instances across every registered
// service, for the /health operational endpoint.
func (r *Registry) HealthyInstanceCount(ctx context.Context) (int, error) {
	names, err := r.ServiceNames(ctx)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, name := range names {
		healthy, err := r.store.ListHealthy(ctx, name)
		if err != nil {
			return 0, fmt.Errorf("registry: list healthy instances for %s: %w", name, err)
		}
		total += len(healthy)
	}
	return total, nil
}

// CheckAll sweeps every registered service once, bounded by the
// registry's configured concurrency. Intended to be called by a
// long-lived scheduler loop at the health-check interval.
func (r *Registry) CheckAll(ctx context.Context, serviceNames []string) {
	sem := make(chan struct{}, r.concurrency)
	for _, svc := range serviceNames {
		instances, err := r.store.ListByService(ctx, svc)
		if err != nil {
			r.logger.Error("health sweep: list instances failed", "service", svc, "error", err)
			continue
		}
		for _, inst := range instances {
			if inst.State == instance.StateDraining {
				continue
			}
			sem <- struct{}{}
			go func(i *instance.Instance) {
				defer func() { <-sem }()
				r.checkOne(ctx, i)
			}(inst)
		}
	}
	for i := 0; i < cap(sem); i++ {
		sem <- struct{}{}
	}
}

func (r *Registry) checkOne(ctx context.Context, inst *instance.Instance) {
	checkCtx, cancel := context.WithTimeout(ctx, r.checkTimeout)
	defer cancel()

	healthy := r.probe(checkCtx, inst)
	now := time.Now().UTC()

	if healthy {
		wasUnhealthy := r.failures[inst.ID] >= r.unhealthyThreshold
		r.failures[inst.ID] = 0
		if inst.State != instance.StateHealthy {
			if err := r.store.UpdateState(ctx, inst.ID, instance.StateHealthy, now); err != nil {
				r.logger.Error("health check: mark healthy failed", "instance", inst.InstanceID, "error", err)
				return
			}
			if wasUnhealthy {
				r.logger.Info("instance recovered", "service", inst.ServiceName, "instance", inst.InstanceID)
			}
		}
		return
	}

	r.failures[inst.ID]++
	if r.failures[inst.ID] >= r.unhealthyThreshold && inst.State != instance.StateUnhealthy {
		if err := r.store.UpdateState(ctx, inst.ID, instance.StateUnhealthy, now); err != nil {
			r.logger.Error("health check: mark unhealthy failed", "instance", inst.InstanceID, "error", err)
			return
		}
		r.logger.Warn("instance marked unhealthy", "service", inst.ServiceName, "instance", inst.InstanceID,
			"consecutive_failures", r.failures[inst.ID])
	}
}

func (r *Registry) probe(ctx context.Context, inst *instance.Instance) bool {
	url := inst.HealthCheckURL
	if url == "" {
		url = fmt.Sprintf("%s/health", inst.BaseURL())
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	resp, err := r.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
