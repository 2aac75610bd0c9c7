// Package token implements JWT decode, signature verification, expiry and
// revocation checks, and user-info resolution, with layered caching in
// the shared cache ahead of the auth store.
package token

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"

	"github.com/iruldev/golang-api-hexagonal/internal/domain"
)

// Result is a successful validation outcome.
type Result struct {
	UserID      string
	JTI         string
	Roles       []string
	Permissions []string
	Expiry      time.Time
}

// cachedResult is the JSON shape stored under auth:token:{hash}.
type cachedResult struct {
	UserID      string    `json:"user_id"`
	JTI         string    `json:"jti"`
	Roles       []string  `json:"roles"`
	Permissions []string  `json:"permissions"`
	Expiry      time.Time `json:"expiry"`
}

// UserInfoResolver resolves a user's granted permission codes from the
// auth/permission store, mirroring spec.md §4.1 step 3. Role is the value
// already decoded from the token's own `role` claim.
type UserInfoResolver interface {
	ResolveUserInfo(ctx context.Context, userID, role string) (permissions []string, err error)
}

// cachedUserInfo is the JSON shape stored under auth:user:{id}.
type cachedUserInfo struct {
	Permissions []string `json:"permissions"`
}

// Validator implements the layered token validation algorithm.
type Validator struct {
	secretKey     []byte
	issuer        string
	audience      string
	redis         *redis.Client
	resolver      UserInfoResolver
	cacheTTL      time.Duration
	userCacheTTL  time.Duration
	logger        *slog.Logger
	parserOptions []jwt.ParserOption
}

// Option configures a Validator.
type Option func(*Validator)

func WithIssuer(issuer string) Option   { return func(v *Validator) { v.issuer = issuer } }
func WithAudience(audience string) Option { return func(v *Validator) { v.audience = audience } }
func WithLogger(l *slog.Logger) Option  { return func(v *Validator) { v.logger = l } }
func WithUserInfoCacheTTL(d time.Duration) Option {
	return func(v *Validator) { v.userCacheTTL = d }
}

// New builds a Validator. cacheTTL is the configured upper bound on how
// long a validation result may be cached; the actual TTL applied is
// min(cacheTTL, remaining token lifetime).
func New(secretKey []byte, redisClient *redis.Client, resolver UserInfoResolver, cacheTTL time.Duration, opts ...Option) *Validator {
	v := &Validator{
		secretKey:    secretKey,
		redis:        redisClient,
		resolver:     resolver,
		cacheTTL:     cacheTTL,
		userCacheTTL: 5 * time.Minute,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.parserOptions = v.buildParserOptions()
	return v
}

func (v *Validator) buildParserOptions() []jwt.ParserOption {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}
	return opts
}

func tokenHash(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Validate runs the layered validation algorithm from spec.md §4.1.
// A missing token is only valid when requiresAuth is false, in which
// case it returns an anonymous Result.
func (v *Validator) Validate(ctx context.Context, bearerToken string, requiresAuth bool) (Result, error) {
	token := strings.TrimPrefix(bearerToken, "Bearer ")
	if token == "" {
		if !requiresAuth {
			return Result{}, nil
		}
		return Result{}, domain.NewError(domain.KindUnauthorized, "missing bearer token")
	}

	hash := tokenHash(token)

	if cached, ok := v.lookupCache(ctx, hash); ok {
		if time.Now().Before(cached.Expiry) {
			if revoked, err := v.isRevoked(ctx, cached.JTI); err == nil && !revoked {
				return Result{
					UserID: cached.UserID, JTI: cached.JTI,
					Roles: cached.Roles, Permissions: cached.Permissions, Expiry: cached.Expiry,
				}, nil
			}
		}
	}

	claims, err := v.decodeAndVerify(token)
	if err != nil {
		return Result{}, err
	}

	if revoked, revErr := v.isRevoked(ctx, claims.JTI); revErr == nil && revoked {
		return Result{}, domain.NewError(domain.KindUnauthorized, "token revoked")
	}

	if v.resolver != nil {
		role := ""
		if len(claims.Roles) > 0 {
			role = claims.Roles[0]
		}
		perms, err := v.resolveUserInfo(ctx, claims.UserID, role)
		if err == nil {
			claims.Permissions = perms
		} else {
			v.logger.Warn("user info resolution failed, proceeding with token-embedded claims", "user_id", claims.UserID, "error", err)
		}
	}

	v.storeCache(ctx, hash, claims)
	return claims, nil
}

func (v *Validator) decodeAndVerify(token string) (Result, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return v.secretKey, nil
	}, v.parserOptions...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Result{}, domain.NewError(domain.KindUnauthorized, "token expired")
		}
		return Result{}, domain.Wrap(domain.KindUnauthorized, "invalid token signature", err)
	}
	if !parsed.Valid {
		return Result{}, domain.NewError(domain.KindUnauthorized, "invalid token")
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Result{}, domain.NewError(domain.KindUnauthorized, "invalid token claims")
	}

	result := Result{}
	if sub, ok := mapClaims["sub"].(string); ok {
		result.UserID = sub
	}
	if jti, ok := mapClaims["jti"].(string); ok {
		result.JTI = jti
	}
	if role, ok := mapClaims["role"].(string); ok {
		result.Roles = []string{role}
	}
	if exp, ok := mapClaims["exp"].(float64); ok {
		result.Expiry = time.Unix(int64(exp), 0)
	}
	if result.Expiry.IsZero() || time.Now().After(result.Expiry) {
		return Result{}, domain.NewError(domain.KindUnauthorized, "token expired")
	}
	return result, nil
}

func (v *Validator) lookupCache(ctx context.Context, hash string) (cachedResult, bool) {
	if v.redis == nil {
		return cachedResult{}, false
	}
	raw, err := v.redis.Get(ctx, "auth:token:"+hash).Result()
	if err != nil {
		return cachedResult{}, false
	}
	var cached cachedResult
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		return cachedResult{}, false
	}
	return cached, true
}

func (v *Validator) storeCache(ctx context.Context, hash string, result Result) {
	if v.redis == nil {
		return
	}
	ttl := v.cacheTTL
	remaining := time.Until(result.Expiry)
	if remaining < ttl {
		ttl = remaining
	}
	if ttl <= 0 {
		return
	}
	payload, err := json.Marshal(cachedResult{
		UserID: result.UserID, JTI: result.JTI, Roles: result.Roles,
		Permissions: result.Permissions, Expiry: result.Expiry,
	})
	if err != nil {
		return
	}
	if err := v.redis.Set(ctx, "auth:token:"+hash, payload, ttl).Err(); err != nil {
		v.logger.Warn("failed to cache token validation result", "error", err)
	}
}

// resolveUserInfo resolves a user's granted permissions cache-first under
// auth:user:{id} (TTL = userCacheTTL), falling back to the auth/permission
// store on miss and repopulating the cache on success.
func (v *Validator) resolveUserInfo(ctx context.Context, userID, role string) ([]string, error) {
	if v.redis != nil {
		if raw, err := v.redis.Get(ctx, "auth:user:"+userID).Result(); err == nil {
			var cached cachedUserInfo
			if json.Unmarshal([]byte(raw), &cached) == nil {
				return cached.Permissions, nil
			}
		}
	}

	perms, err := v.resolver.ResolveUserInfo(ctx, userID, role)
	if err != nil {
		return nil, err
	}

	if v.redis != nil && v.userCacheTTL > 0 {
		if payload, mErr := json.Marshal(cachedUserInfo{Permissions: perms}); mErr == nil {
			if err := v.redis.Set(ctx, "auth:user:"+userID, payload, v.userCacheTTL).Err(); err != nil {
				v.logger.Warn("failed to cache user info", "error", err)
			}
		}
	}
	return perms, nil
}

// InvalidateUserInfo evicts the cached permission set for userID, for use
// on password change, role change, logout, or explicit admin invalidation.
func (v *Validator) InvalidateUserInfo(ctx context.Context, userID string) error {
	if v.redis == nil {
		return nil
	}
	if err := v.redis.Del(ctx, "auth:user:"+userID).Err(); err != nil {
		return fmt.Errorf("invalidate user info cache: %w", err)
	}
	return nil
}

func (v *Validator) isRevoked(ctx context.Context, jti string) (bool, error) {
	if v.redis == nil || jti == "" {
		return false, nil
	}
	_, err := v.redis.Get(ctx, "blacklisted_token:"+jti).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check revocation set: %w", err)
	}
	return true, nil
}

// Revoke inserts jti into the revocation set with TTL equal to the
// token's remaining lifetime. Cached validation results are left in
// place. Ordering guarantee: once this call returns, no subsequent
// Validate call for the same token can return success, because both the
// cached path and the decode path consult the revocation set.
func (v *Validator) Revoke(ctx context.Context, jti string, remainingLifetime time.Duration) error {
	if v.redis == nil {
		return nil
	}
	if remainingLifetime <= 0 {
		remainingLifetime = time.Minute
	}
	if err := v.redis.Set(ctx, "blacklisted_token:"+jti, "1", remainingLifetime).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}
