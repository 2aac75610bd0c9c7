// Package proxy composes the gateway components — matcher, registry,
// rate limiter, circuit breaker, load balancer, token validator,
// permission client, response cache, and call logger — into the single
// request pipeline every proxied call runs through.
package proxy

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/iruldev/golang-api-hexagonal/internal/ctxutil"
	"github.com/iruldev/golang-api-hexagonal/internal/domain"
	calllogdom "github.com/iruldev/golang-api-hexagonal/internal/domain/calllog"
	"github.com/iruldev/golang-api-hexagonal/internal/domain/instance"
	permissiondom "github.com/iruldev/golang-api-hexagonal/internal/domain/permission"
	"github.com/iruldev/golang-api-hexagonal/internal/domain/route"
	"github.com/iruldev/golang-api-hexagonal/internal/gateway/breaker"
	"github.com/iruldev/golang-api-hexagonal/internal/gateway/calllog"
	"github.com/iruldev/golang-api-hexagonal/internal/gateway/cache"
	"github.com/iruldev/golang-api-hexagonal/internal/gateway/loadbalancer"
	"github.com/iruldev/golang-api-hexagonal/internal/gateway/matcher"
	"github.com/iruldev/golang-api-hexagonal/internal/gateway/permission"
	"github.com/iruldev/golang-api-hexagonal/internal/gateway/ratelimit"
	"github.com/iruldev/golang-api-hexagonal/internal/gateway/token"
	"github.com/iruldev/golang-api-hexagonal/internal/interface/http/response"
)

// HealthSource exposes the healthy instances for a service, satisfied by
// *registry.Registry.
type HealthSource interface {
	ListHealthy(ctx context.Context, serviceName string) ([]*instance.Instance, error)
}

// Engine is the HTTP handler that runs every proxied request through the
// full gateway pipeline.
type Engine struct {
	Matcher    *matcher.Matcher
	Registry   HealthSource
	Picker     *loadbalancer.Picker
	Limiter    *ratelimit.Limiter
	Breaker    *breaker.Manager
	Validator  *token.Validator
	Permission *permission.Client
	Cache      *cache.Cache
	CallLogger *calllog.Logger

	Upstream *http.Client
	Logger   *slog.Logger
}

// New builds an Engine from its component dependencies. Upstream defaults
// to an http.Client with no timeout of its own — per-request deadlines
// come from the matched route's UpstreamTimeoutSeconds.
func New(m *matcher.Matcher, reg HealthSource, picker *loadbalancer.Picker, limiter *ratelimit.Limiter,
	br *breaker.Manager, validator *token.Validator, perm *permission.Client, respCache *cache.Cache,
	logger *calllog.Logger, logSink *slog.Logger) *Engine {
	if logSink == nil {
		logSink = slog.Default()
	}
	return &Engine{
		Matcher: m, Registry: reg, Picker: picker, Limiter: limiter,
		Breaker: br, Validator: validator, Permission: perm, Cache: respCache,
		CallLogger: logger, Upstream: &http.Client{}, Logger: logSink,
	}
}

// ServeHTTP runs the full pipeline from spec.md §4.8: match, authenticate,
// authorize, rate limit, circuit-break, load balance, forward with retry,
// cache, and log — in that order, short-circuiting to an error response
// at the first stage that rejects the request.
func (e *Engine) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := ctxutil.RequestIDFromContext(r.Context())
	if requestID == "" {
		requestID = w.Header().Get("X-Request-ID")
	}

	cw := &countingResponseWriter{ResponseWriter: w, requestID: requestID, start: start}
	entry := &calllogdom.CallLog{
		RequestID:   requestID,
		Method:      r.Method,
		Path:        r.URL.Path,
		QueryParams: r.URL.RawQuery,
		ClientIP:    clientIP(r),
		UserAgent:   r.UserAgent(),
		StartedAt:   start,
	}

	err := e.run(cw, r, entry)

	entry.CompletedAt = time.Now()
	entry.ResponseTimeMS = entry.CompletedAt.Sub(start).Milliseconds()
	entry.ResponseSize = cw.bytes

	if err != nil {
		entry.ErrorMessage = err.Error()
		if entry.ResponseStatus == 0 {
			entry.ResponseStatus = statusFor(err)
		}
		response.HandleError(cw, err)
	}
	if entry.ResponseStatus == 0 {
		entry.ResponseStatus = cw.Status()
	}

	if e.CallLogger != nil {
		e.CallLogger.Enqueue(entry)
	}
}

func statusFor(err error) int {
	switch domain.KindOf(err) {
	case domain.KindRouteNotFound:
		return http.StatusNotFound
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindRateLimited:
		return http.StatusTooManyRequests
	case domain.KindCircuitOpen, domain.KindNoInstance:
		return http.StatusServiceUnavailable
	case domain.KindUpstreamTimeout:
		return http.StatusGatewayTimeout
	case domain.KindUpstreamError:
		return http.StatusBadGateway
	case domain.KindClientCancelled:
		return 499
	default:
		return http.StatusInternalServerError
	}
}

// run drives the pipeline proper, writing a successful upstream response
// directly to w and returning nil, or returning the GatewayError describing
// why the request was rejected.
func (e *Engine) run(w *countingResponseWriter, r *http.Request, entry *calllogdom.CallLog) error {
	ctx := r.Context()

	matched, params, err := e.Matcher.Match(r.Method, r.URL.Path)
	if err != nil {
		return domain.Wrap(domain.KindRouteNotFound, "no route matches this request", err)
	}
	entry.TargetService = matched.ServiceName

	claims, err := e.authenticate(ctx, r, matched)
	if err != nil {
		return err
	}
	if claims.UserID != "" {
		entry.UserID = claims.UserID
		ctx = ctxutil.NewClaimsContext(ctx, claims)
	}

	permResult, err := e.authorize(ctx, matched, claims)
	entry.PermissionCheckResult = permResult
	if err != nil {
		return err
	}

	if err := e.checkRateLimit(ctx, r, matched, claims); err != nil {
		return err
	}

	allowed, err := e.Breaker.Allow(ctx, matched.ServiceName)
	if err != nil {
		return domain.Wrap(domain.KindInternalError, "circuit breaker check failed", err)
	}
	if !allowed {
		return domain.NewError(domain.KindCircuitOpen, "service temporarily unavailable")
	}

	healthy, err := e.Registry.ListHealthy(ctx, matched.ServiceName)
	if err != nil {
		return domain.Wrap(domain.KindInternalError, "load balancer lookup failed", err)
	}
	inst, release, err := e.Picker.Pick(matched.ServiceName, healthy, matched.LoadBalanceStrategy)
	if err != nil {
		return domain.NewError(domain.KindNoInstance, "no healthy instance available")
	}
	defer release()

	cacheKey, cacheable := e.cacheLookup(ctx, w, r, matched, claims)
	if cacheable {
		return nil
	}

	if err := e.forward(ctx, w, r, matched, inst, params, cacheKey); err != nil {
		// A client disconnect or request cancellation is not an upstream
		// failure and must not trip the breaker (spec.md §5).
		if domain.KindOf(err) != domain.KindClientCancelled {
			_ = e.Breaker.RecordFailure(ctx, matched.ServiceName)
		}
		return err
	}
	_ = e.Breaker.RecordSuccess(ctx, matched.ServiceName)
	return nil
}

func (e *Engine) authenticate(ctx context.Context, r *http.Request, matched *route.Route) (ctxutil.Claims, error) {
	if e.Validator == nil {
		return ctxutil.Claims{}, nil
	}
	result, err := e.Validator.Validate(ctx, r.Header.Get("Authorization"), matched.RequiresAuth)
	if err != nil {
		return ctxutil.Claims{}, err
	}
	return ctxutil.Claims{UserID: result.UserID, Roles: result.Roles, Permissions: result.Permissions}, nil
}

func (e *Engine) authorize(ctx context.Context, matched *route.Route, claims ctxutil.Claims) (string, error) {
	if len(matched.RequiredPermissions) == 0 || e.Permission == nil {
		return "skipped", nil
	}
	role := ""
	if len(claims.Roles) > 0 {
		role = claims.Roles[0]
	}
	strategy := permissiondom.StrategyAny
	if matched.PermissionStrategy == route.StrategyAll {
		strategy = permissiondom.StrategyAll
	}
	ok, err := e.Permission.Check(ctx, claims.UserID, role, matched.RequiredPermissions, strategy)
	if err != nil {
		return "error", domain.Wrap(domain.KindInternalError, "permission check failed", err)
	}
	if !ok {
		return "denied", domain.NewError(domain.KindForbidden, "insufficient permissions")
	}
	return "granted", nil
}

func (e *Engine) checkRateLimit(ctx context.Context, r *http.Request, matched *route.Route, claims ctxutil.Claims) error {
	if matched.RateLimitRPM <= 0 || e.Limiter == nil {
		return nil
	}
	identifier := claims.UserID
	if identifier == "" {
		identifier = clientIP(r)
	}
	result, err := e.Limiter.Check(ctx, identifier, matched.ServiceName+":"+matched.PathPattern, matched.RateLimitRPM, time.Minute)
	if err != nil {
		return domain.Wrap(domain.KindInternalError, "rate limit check failed", err)
	}
	if !result.Allowed {
		return domain.NewError(domain.KindRateLimited,
			fmt.Sprintf("rate limit exceeded, retry after %s", result.RetryAfter.Round(time.Second)))
	}
	return nil
}

// cacheLookup serves a cached response when eligible and present, writing
// it directly to w. The returned key is reused by forward to populate the
// cache on a miss; cacheable is true only when a hit was served.
func (e *Engine) cacheLookup(ctx context.Context, w *countingResponseWriter, r *http.Request, matched *route.Route, claims ctxutil.Claims) (string, bool) {
	if !matched.CacheEnabled || e.Cache == nil || r.Method != http.MethodGet {
		return "", false
	}
	key := cache.Key(matched.ID, r.URL.Path, r.URL.Query(), r.Header, claims.UserID)
	entry, ok := e.Cache.Get(ctx, key)
	if !ok {
		return key, false
	}
	for k, v := range entry.Headers {
		w.Header().Set(k, v)
	}
	w.Header().Set("X-Cache", "hit")
	w.WriteHeader(entry.Status)
	_, _ = w.Write(entry.Body)
	return key, true
}

// streamThreshold is the payload size above which forward streams a body
// directly to its destination instead of buffering it, per spec.md §8's
// forward-preservation invariant. A request or response of unknown length
// (chunked, no Content-Length) is treated as exceeding the threshold,
// since buffering an unbounded body is the behavior the invariant rules
// out. Streamed bodies cannot be replayed, so they bypass the retry
// budget entirely — at most one upstream attempt is made.
const streamThreshold = 1 << 20 // 1 MiB

// forward builds the upstream request, runs it through the route's
// configured retry budget, and streams the result back to the client.
func (e *Engine) forward(ctx context.Context, w *countingResponseWriter, r *http.Request, matched *route.Route, inst *instance.Instance, params map[string]string, cacheKey string) error {
	timeout := time.Duration(matched.UpstreamTimeoutSeconds) * time.Second
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if r.ContentLength < 0 || r.ContentLength > streamThreshold {
		return e.forwardStreamed(ctx, reqCtx, w, r, matched, inst)
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return domain.Wrap(domain.KindInternalError, "failed to read request body", err)
	}

	var respStatus int
	var respHeader http.Header
	var respBody []byte
	var streamed bool

	idempotent := isIdempotent(r.Method)
	attempt := func(attemptCtx context.Context) error {
		upstreamReq, err := e.buildUpstreamRequest(attemptCtx, r, inst, matched, bytes.NewReader(body), int64(len(body)))
		if err != nil {
			return err
		}
		resp, err := e.Upstream.Do(upstreamReq)
		if err != nil {
			if ctx.Err() != nil {
				return domain.NewError(domain.KindClientCancelled, "request cancelled by client")
			}
			if attemptCtx.Err() != nil {
				return domain.Wrap(domain.KindUpstreamTimeout, "upstream request timed out", err)
			}
			if !idempotent {
				return domain.Wrap(domain.KindUpstreamError, "upstream request failed", err)
			}
			return retry.RetryableError(domain.Wrap(domain.KindUpstreamError, "upstream request failed", err))
		}
		defer resp.Body.Close()

		if resp.ContentLength < 0 || resp.ContentLength > streamThreshold {
			// The response itself is too large to buffer for a retry
			// decision or for caching; stream it through as-is and treat
			// it as final regardless of status.
			if werr := e.streamResponse(w, resp); werr != nil {
				return domain.Wrap(domain.KindUpstreamError, "failed to stream upstream response", werr)
			}
			streamed = true
			return nil
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return domain.Wrap(domain.KindUpstreamError, "failed to read upstream response", err)
		}

		if idempotent && resp.StatusCode >= 500 {
			return retry.RetryableError(domain.NewError(domain.KindUpstreamError,
				fmt.Sprintf("upstream returned %d", resp.StatusCode)))
		}

		respStatus, respHeader, respBody = resp.StatusCode, resp.Header, data
		return nil
	}

	backoff := retryBackoff(matched.RetryCount)
	if err := retry.Do(reqCtx, backoff, attempt); err != nil {
		if ctx.Err() != nil {
			return domain.NewError(domain.KindClientCancelled, "request cancelled by client")
		}
		if reqCtx.Err() != nil {
			return domain.NewError(domain.KindUpstreamTimeout, "upstream request timed out")
		}
		var ge *domain.GatewayError
		if errors.As(err, &ge) {
			return ge
		}
		return domain.Wrap(domain.KindUpstreamError, "upstream request failed", err)
	}

	if streamed {
		// Already streamed directly to the client inside the attempt; it
		// cannot have been cached since the body was never buffered.
		return nil
	}

	for k, vs := range respHeader {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.Header().Set("X-Cache", "miss")
	w.WriteHeader(respStatus)
	_, _ = w.Write(respBody)

	if cacheKey != "" {
		e.Cache.Set(ctx, cacheKey, cache.Entry{Status: respStatus, Headers: flattenHeader(respHeader), Body: respBody}, time.Duration(matched.CacheTTLSeconds)*time.Second)
	}
	return nil
}

// forwardStreamed handles a request whose body exceeds streamThreshold (or
// whose size is unknown): it is forwarded and its response returned
// without ever buffering the full payload, and — since a streamed body
// cannot be re-sent — with no retry and no response caching.
func (e *Engine) forwardStreamed(ctx, reqCtx context.Context, w *countingResponseWriter, r *http.Request, matched *route.Route, inst *instance.Instance) error {
	upstreamReq, err := e.buildUpstreamRequest(reqCtx, r, inst, matched, r.Body, r.ContentLength)
	if err != nil {
		return err
	}
	resp, err := e.Upstream.Do(upstreamReq)
	if err != nil {
		if ctx.Err() != nil {
			return domain.NewError(domain.KindClientCancelled, "request cancelled by client")
		}
		if reqCtx.Err() != nil {
			return domain.Wrap(domain.KindUpstreamTimeout, "upstream request timed out", err)
		}
		return domain.Wrap(domain.KindUpstreamError, "upstream request failed", err)
	}
	defer resp.Body.Close()

	if err := e.streamResponse(w, resp); err != nil {
		return domain.Wrap(domain.KindUpstreamError, "failed to stream upstream response", err)
	}
	return nil
}

// streamResponse copies resp's headers and body directly to w without
// buffering the full payload.
func (e *Engine) streamResponse(w *countingResponseWriter, resp *http.Response) error {
	for k, vs := range resp.Header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.Header().Set("X-Cache", "miss")
	w.WriteHeader(resp.StatusCode)
	_, err := io.Copy(w, resp.Body)
	return err
}

// flattenHeader collapses an http.Header's possibly-multi-valued entries
// to their first value for storage in a cache.Entry, which records one
// value per header.
func flattenHeader(h http.Header) map[string]string {
	if len(h) == 0 {
		return nil
	}
	flat := make(map[string]string, len(h))
	for k, vs := range h {
		if len(vs) > 0 {
			flat[k] = vs[0]
		}
	}
	return flat
}

func (e *Engine) buildUpstreamRequest(ctx context.Context, r *http.Request, inst *instance.Instance, matched *route.Route, body io.Reader, contentLength int64) (*http.Request, error) {
	target := inst.BaseURL() + r.URL.Path
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	u, err := url.Parse(target)
	if err != nil {
		return nil, domain.Wrap(domain.KindInternalError, "failed to build upstream URL", err)
	}
	req, err := http.NewRequestWithContext(ctx, r.Method, u.String(), body)
	if err != nil {
		return nil, domain.Wrap(domain.KindInternalError, "failed to build upstream request", err)
	}
	req.ContentLength = contentLength
	req.Header = r.Header.Clone()
	req.Header.Set("X-Forwarded-For", clientIP(r))
	req.Header.Set("X-Gateway-Service", matched.ServiceName)
	return req, nil
}

// retryBackoff builds the route's retry budget the same way the platform
// retrier does: exponential backoff from a short initial delay, jittered,
// capped, and bounded to retryCount additional attempts.
func retryBackoff(retryCount int) retry.Backoff {
	const initialDelay = 50 * time.Millisecond
	const maxDelay = 2 * time.Second
	b := retry.NewExponential(initialDelay)
	b = retry.WithJitter(initialDelay/4, b)
	b = retry.WithCappedDuration(maxDelay, b)
	var max uint64
	if retryCount > 0 {
		max = uint64(retryCount)
	}
	return retry.WithMaxRetries(max, b)
}

func isIdempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodPut, http.MethodDelete:
		return true
	default:
		return false
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
