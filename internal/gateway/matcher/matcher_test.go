package matcher

import (
	"context"
	"testing"
	"time"

	"github.com/iruldev/golang-api-hexagonal/internal/domain/route"
)

type fakeSource struct {
	routes []*route.Route
}

func (f *fakeSource) ListActive(ctx context.Context) ([]*route.Route, error) {
	return f.routes, nil
}

func TestMatcher_Match(t *testing.T) {
	// ListActive is documented to return routes pre-sorted by descending
	// priority then insertion order; the matcher trusts that ordering
	// rather than re-sorting, so the higher-priority literal route comes
	// first here.
	src := &fakeSource{routes: []*route.Route{
		{ID: "r2", ServiceName: "orders", PathPattern: "/orders/special", Method: "GET", Priority: 10},
		{ID: "r1", ServiceName: "orders", PathPattern: "/orders/:id", Method: "GET", Priority: 0},
		{ID: "r3", ServiceName: "accounts", PathPattern: "/accounts/:id", Method: route.MethodAny, Priority: 0},
	}}
	m := New(src, time.Minute)
	if err := m.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}

	t.Run("literal segment beats param segment at higher priority", func(t *testing.T) {
		matched, params, err := m.Match("GET", "/orders/special")
		if err != nil {
			t.Fatalf("Match() error: %v", err)
		}
		if matched.ID != "r2" {
			t.Fatalf("expected r2 (higher priority), got %s", matched.ID)
		}
		if len(params) != 0 {
			t.Fatalf("expected no bound params, got %v", params)
		}
	})

	t.Run("param segment binds value", func(t *testing.T) {
		matched, params, err := m.Match("GET", "/orders/42")
		if err != nil {
			t.Fatalf("Match() error: %v", err)
		}
		if matched.ID != "r1" {
			t.Fatalf("expected r1, got %s", matched.ID)
		}
		if params["id"] != "42" {
			t.Fatalf("expected id=42, got %v", params)
		}
	})

	t.Run("ANY method matches any verb", func(t *testing.T) {
		matched, _, err := m.Match("DELETE", "/accounts/7")
		if err != nil {
			t.Fatalf("Match() error: %v", err)
		}
		if matched.ID != "r3" {
			t.Fatalf("expected r3, got %s", matched.ID)
		}
	})

	t.Run("no match returns ErrRouteNotFound", func(t *testing.T) {
		_, _, err := m.Match("GET", "/unknown")
		if err != ErrRouteNotFound {
			t.Fatalf("got %v, want ErrRouteNotFound", err)
		}
	})
}

func TestMatcher_Refresh_SwapsSnapshotAtomically(t *testing.T) {
	src := &fakeSource{routes: nil}
	m := New(src, time.Minute)
	if err := m.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}
	if _, _, err := m.Match("GET", "/orders/1"); err != ErrRouteNotFound {
		t.Fatalf("expected no routes to match before update, got %v", err)
	}

	src.routes = []*route.Route{{ID: "r1", PathPattern: "/orders/:id", Method: "GET"}}
	if err := m.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}
	matched, _, err := m.Match("GET", "/orders/1")
	if err != nil {
		t.Fatalf("Match() error: %v", err)
	}
	if matched.ID != "r1" {
		t.Fatalf("expected r1 after refresh, got %s", matched.ID)
	}
}
