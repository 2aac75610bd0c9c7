// Package cache implements the optional per-route GET-response cache:
// key derivation, hit/miss lookup, and bounded storage in the shared
// cache.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Entry is a cached response.
type Entry struct {
	Status  int               `json:"status"`
	Headers map[string]string `json:"headers"`
	Body    []byte            `json:"body"`
}

// DefaultMaxBodyBytes is the default cap on response size eligible for
// caching.
const DefaultMaxBodyBytes = 512 * 1024

// VaryHeaders lists the request headers whose values participate in the
// cache key, alongside path, sorted query, and user scope.
var VaryHeaders = []string{"Accept", "Accept-Language"}

// Cache stores and retrieves response cache entries. On cache outage,
// lookups are treated as misses (fail open to the upstream) rather than
// failing the request.
type Cache struct {
	client       *redis.Client
	maxBodyBytes int
}

// New builds a Cache backed by the given Redis client.
func New(client *redis.Client) *Cache {
	return &Cache{client: client, maxBodyBytes: DefaultMaxBodyBytes}
}

// WithMaxBodyBytes overrides the size cap for cacheable responses.
func (c *Cache) WithMaxBodyBytes(n int) *Cache {
	c.maxBodyBytes = n
	return c
}

// Key computes the cache key from route id, path, sorted query, the
// varying-header subset, and a user scope token (empty for
// auth-insensitive routes).
func Key(routeID, path string, query url.Values, headers http.Header, userScope string) string {
	var b strings.Builder
	b.WriteString(routeID)
	b.WriteByte('|')
	b.WriteString(path)
	b.WriteByte('|')

	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		vals := append([]string(nil), query[k]...)
		sort.Strings(vals)
		fmt.Fprintf(&b, "%s=%s&", k, strings.Join(vals, ","))
	}
	b.WriteByte('|')

	for _, h := range VaryHeaders {
		fmt.Fprintf(&b, "%s=%s&", h, headers.Get(h))
	}
	b.WriteByte('|')
	b.WriteString(userScope)

	sum := sha256.Sum256([]byte(b.String()))
	return "response_cache:" + hex.EncodeToString(sum[:])
}

// Get returns the cached entry for key, or ok=false on miss or outage.
func (c *Cache) Get(ctx context.Context, key string) (Entry, bool) {
	raw, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return Entry{}, false
	}
	var entry Entry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return Entry{}, false
	}
	return entry, true
}

// Set stores entry under key with the given TTL, provided the body is
// within the size cap and the status is 2xx.
func (c *Cache) Set(ctx context.Context, key string, entry Entry, ttl time.Duration) {
	if entry.Status < 200 || entry.Status >= 300 {
		return
	}
	if len(entry.Body) > c.maxBodyBytes {
		return
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, key, payload, ttl).Err()
}
