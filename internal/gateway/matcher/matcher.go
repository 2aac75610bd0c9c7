// Package matcher selects the highest-priority active route whose method
// and path pattern match an incoming request.
package matcher

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/iruldev/golang-api-hexagonal/internal/domain/route"
)

// ErrRouteNotFound is returned when no active route matches the request.
var ErrRouteNotFound = errors.New("matcher: no active route matches method and path")

// compiledRoute is a Route plus its pre-split pattern segments, so every
// match is a per-segment comparison rather than a runtime regex build.
type compiledRoute struct {
	route    *route.Route
	segments []segment
	order    int
}

type segment struct {
	literal string
	param   string // non-empty if this segment binds a path parameter
}

func compile(r *route.Route, order int) compiledRoute {
	parts := strings.Split(strings.Trim(r.PathPattern, "/"), "/")
	segments := make([]segment, 0, len(parts))
	for _, p := range parts {
		if strings.HasPrefix(p, ":") {
			segments = append(segments, segment{param: strings.TrimPrefix(p, ":")})
		} else {
			segments = append(segments, segment{literal: p})
		}
	}
	return compiledRoute{route: r, segments: segments, order: order}
}

func (c compiledRoute) match(pathParts []string) (map[string]string, bool) {
	if len(c.segments) != len(pathParts) {
		return nil, false
	}
	var params map[string]string
	for i, seg := range c.segments {
		if seg.param != "" {
			if params == nil {
				params = make(map[string]string, 2)
			}
			params[seg.param] = pathParts[i]
			continue
		}
		if seg.literal != pathParts[i] {
			return nil, false
		}
	}
	return params, true
}

// RouteSource loads the currently active routes, ordered by descending
// priority then insertion order — the same tie-break the matcher applies.
type RouteSource interface {
	ListActive(ctx context.Context) ([]*route.Route, error)
}

// Matcher holds a lock-free, read-mostly snapshot of the active route
// index. Writers replace the whole snapshot atomically; readers never
// block.
type Matcher struct {
	source  RouteSource
	refresh time.Duration
	snap    atomic.Pointer[[]compiledRoute]

	stop chan struct{}
	done chan struct{}
}

// New builds a Matcher backed by source. Call Refresh once before serving
// traffic to populate the initial snapshot, then StartRefreshLoop to keep
// it current as a timer-based safety net alongside explicit Refresh calls
// from the admin API.
func New(source RouteSource, refreshInterval time.Duration) *Matcher {
	if refreshInterval <= 0 {
		refreshInterval = 30 * time.Second
	}
	empty := make([]compiledRoute, 0)
	m := &Matcher{source: source, refresh: refreshInterval}
	m.snap.Store(&empty)
	return m
}

// Refresh rebuilds the index from the route store and atomically swaps it
// in. Safe to call concurrently with Match.
func (m *Matcher) Refresh(ctx context.Context) error {
	routes, err := m.source.ListActive(ctx)
	if err != nil {
		return err
	}
	compiled := make([]compiledRoute, 0, len(routes))
	for i, r := range routes {
		compiled = append(compiled, compile(r, i))
	}
	m.snap.Store(&compiled)
	return nil
}

// StartRefreshLoop runs Refresh on a timer until ctx is cancelled. This is
// the safety net behind explicit change-notification refreshes triggered
// by the admin API.
func (m *Matcher) StartRefreshLoop(ctx context.Context) {
	m.stop = make(chan struct{})
	m.done = make(chan struct{})
	ticker := time.NewTicker(m.refresh)
	go func() {
		defer close(m.done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-m.stop:
				return
			case <-ticker.C:
				_ = m.Refresh(ctx)
			}
		}
	}()
}

// Stop halts the refresh loop and waits for it to exit.
func (m *Matcher) Stop() {
	if m.stop == nil {
		return
	}
	close(m.stop)
	<-m.done
}

// RouteCount reports the number of active routes in the current snapshot,
// for the /health operational endpoint.
func (m *Matcher) RouteCount() int {
	return len(*m.snap.Load())
}

// Match returns the active route of highest priority whose method and
// pattern match, plus any bound path parameters. Ties on specificity are
// broken by descending priority, then by insertion order — both already
// encoded in the snapshot's sort order, so the first structural match
// wins.
func (m *Matcher) Match(method, path string) (*route.Route, map[string]string, error) {
	snap := *m.snap.Load()
	pathParts := strings.Split(strings.Trim(path, "/"), "/")

	for _, c := range snap {
		if !c.route.MatchesMethod(method) {
			continue
		}
		if params, ok := c.match(pathParts); ok {
			return c.route, params, nil
		}
	}
	return nil, nil, ErrRouteNotFound
}
