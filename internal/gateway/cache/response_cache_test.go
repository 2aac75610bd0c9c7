package cache

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestKey_IsDeterministicAndOrderIndependent(t *testing.T) {
	q1 := url.Values{"b": {"2"}, "a": {"1"}}
	q2 := url.Values{"a": {"1"}, "b": {"2"}}
	h := http.Header{"Accept": {"application/json"}}

	k1 := Key("route-1", "/orders", q1, h, "user-1")
	k2 := Key("route-1", "/orders", q2, h, "user-1")
	if k1 != k2 {
		t.Fatalf("expected query key order not to affect the cache key: %q != %q", k1, k2)
	}
}

func TestKey_VariesByUserScope(t *testing.T) {
	q := url.Values{}
	h := http.Header{}
	k1 := Key("route-1", "/orders", q, h, "user-1")
	k2 := Key("route-1", "/orders", q, h, "user-2")
	if k1 == k2 {
		t.Fatal("expected different user scopes to produce different cache keys")
	}
}

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client)
}

func TestCache_SetAndGet_RoundTrips(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	entry := Entry{Status: http.StatusOK, Headers: map[string]string{"Content-Type": "application/json"}, Body: []byte(`{"ok":true}`)}

	c.Set(ctx, "k1", entry, time.Minute)

	got, ok := c.Get(ctx, "k1")
	require.True(t, ok)
	require.Equal(t, entry.Status, got.Status)
	require.Equal(t, entry.Body, got.Body)
}

func TestCache_Set_SkipsNon2xx(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	c.Set(ctx, "k1", Entry{Status: http.StatusInternalServerError, Body: []byte("oops")}, time.Minute)

	_, ok := c.Get(ctx, "k1")
	require.False(t, ok, "non-2xx responses must never be cached")
}

func TestCache_Set_SkipsOversizedBody(t *testing.T) {
	c := newTestCache(t).WithMaxBodyBytes(4)
	ctx := context.Background()
	c.Set(ctx, "k1", Entry{Status: http.StatusOK, Body: []byte("too big")}, time.Minute)

	_, ok := c.Get(ctx, "k1")
	require.False(t, ok, "a body over the cap must never be cached")
}

func TestCache_Get_MissOnOutage(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	mr.Close()

	c := New(client)
	_, ok := c.Get(context.Background(), "k1")
	require.False(t, ok, "a cache outage must be treated as a miss")
}
