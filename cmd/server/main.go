// Package main is the entry point for the gateway service.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/iruldev/golang-api-hexagonal/internal/gateway/breaker"
	"github.com/iruldev/golang-api-hexagonal/internal/gateway/cache"
	"github.com/iruldev/golang-api-hexagonal/internal/gateway/calllog"
	"github.com/iruldev/golang-api-hexagonal/internal/gateway/loadbalancer"
	"github.com/iruldev/golang-api-hexagonal/internal/gateway/matcher"
	"github.com/iruldev/golang-api-hexagonal/internal/gateway/permission"
	"github.com/iruldev/golang-api-hexagonal/internal/gateway/proxy"
	"github.com/iruldev/golang-api-hexagonal/internal/gateway/ratelimit"
	"github.com/iruldev/golang-api-hexagonal/internal/gateway/registry"
	"github.com/iruldev/golang-api-hexagonal/internal/gateway/token"
	"github.com/iruldev/golang-api-hexagonal/internal/infra/config"
	"github.com/iruldev/golang-api-hexagonal/internal/infra/observability"
	"github.com/iruldev/golang-api-hexagonal/internal/infra/postgres"
	"github.com/iruldev/golang-api-hexagonal/internal/infra/redis"
	gatewayhttp "github.com/iruldev/golang-api-hexagonal/internal/interface/http"
	"github.com/iruldev/golang-api-hexagonal/internal/interface/http/admin"
	"github.com/iruldev/golang-api-hexagonal/internal/interface/http/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	logger := observability.NewLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracerProvider, err := observability.InitTracer(ctx, cfg)
	if err != nil {
		logger.Error("tracer initialization failed", "error", err)
	}

	metricsRegistry, httpMetrics := observability.NewMetricsRegistry()

	poolCtx, poolCancel := context.WithTimeout(ctx, 10*time.Second)
	pool, err := postgres.NewPool(poolCtx, cfg.DatabaseURL, postgres.PoolConfig{
		MaxConns:        cfg.DBPoolMaxConns,
		MinConns:        cfg.DBPoolMinConns,
		MaxConnLifetime: cfg.DBPoolMaxLifetime,
	})
	poolCancel()
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer pool.Close()
	logger.Info("database connected")

	redisClient, err := redis.NewClient(redis.Config{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		PoolSize:     cfg.RedisPoolSize,
		MinIdleConns: cfg.RedisMinIdleConns,
		DialTimeout:  cfg.RedisDialTimeout,
	})
	if err != nil {
		log.Fatalf("redis connection failed: %v", err)
	}
	defer redisClient.Close()
	logger.Info("redis connected")

	routeRepo := postgres.NewRouteRepository(pool.Pool())
	instanceRepo := postgres.NewInstanceRepository(pool.Pool())
	breakerRepo := postgres.NewCircuitBreakerRepository(pool.Pool())
	callLogRepo := postgres.NewCallLogRepository(pool.Pool())
	permissionRepo := postgres.NewPermissionRepository(pool.Pool())

	routeMatcher := matcher.New(routeRepo, 30*time.Second)
	if err := routeMatcher.Refresh(ctx); err != nil {
		logger.Warn("initial route refresh failed", "error", err)
	}
	routeMatcher.StartRefreshLoop(ctx)

	svcRegistry := registry.New(instanceRepo, cfg.UnhealthyThreshold, cfg.HealthCheckTimeout,
		registry.WithLogger(logger))

	picker := loadbalancer.New()

	limiter := ratelimit.New(redisClient.Client(), ratelimit.WithLogger(logger))

	breakerManager := breaker.New(breakerRepo, redisClient.Client(), cfg.CircuitBreakerThreshold, cfg.CircuitBreakerTimeout)

	permissionClient := permission.New(permissionRepo)

	tokenValidator := token.New([]byte(cfg.JWTSecretKey), redisClient.Client(), permissionClient, 5*time.Minute,
		token.WithIssuer(cfg.JWTIssuer), token.WithAudience(cfg.JWTAudience), token.WithLogger(logger))

	responseCache := cache.New(redisClient.Client())

	callLogger := calllog.New(callLogRepo, 1000, logger)
	go callLogger.Run(ctx)

	engine := proxy.New(routeMatcher, svcRegistry, picker, limiter, breakerManager,
		tokenValidator, permissionClient, responseCache, callLogger, logger)

	go runHealthCheckLoop(ctx, svcRegistry, cfg.HealthCheckInterval, logger)

	routeHandlers := admin.NewRouteHandlers(routeRepo, routeMatcher)
	serviceHandlers := admin.NewServiceHandlers(instanceRepo)
	permissionHandlers := admin.NewPermissionHandlers(permissionRepo)
	batchHandlers := admin.NewBatchHandlers(routeHandlers, serviceHandlers)

	var adminAuth middleware.Authenticator
	if cfg.JWTEnabled {
		jwtAuth, err := middleware.NewJWTAuthenticator([]byte(cfg.JWTSecret),
			middleware.WithIssuer(cfg.JWTIssuer), middleware.WithAudience(cfg.JWTAudience))
		if err != nil {
			log.Fatalf("admin JWT authenticator initialization failed: %v", err)
		}
		adminAuth = jwtAuth
	}

	router := gatewayhttp.NewRouter(gatewayhttp.RouterDeps{
		Config:             cfg,
		Logger:             logger,
		Authenticator:      adminAuth,
		DBChecker:          postgres.NewPoolHealthChecker(pool.Pool()),
		RedisChecker:       redisClient,
		RouteCounter:       routeMatcher,
		InstanceCounter:    svcRegistry,
		MetricsRegistry:    metricsRegistry,
		HTTPMetrics:        httpMetrics,
		ProxyHandler:       engine,
		RouteHandlers:      routeHandlers,
		ServiceHandlers:    serviceHandlers,
		PermissionHandlers: permissionHandlers,
		BatchHandlers:      batchHandlers,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadTimeout:       cfg.HTTPReadTimeout,
		ReadHeaderTimeout: cfg.HTTPReadHeaderTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		MaxHeaderBytes:    cfg.HTTPMaxHeaderBytes,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		logger.Error("http server error", "error", err)
	}

	// Cancel the root context so the health-check loop and call logger's
	// background drain exit even when shutdown was triggered by a server
	// error rather than a signal.
	stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown error", "error", err)
	}

	callLogger.Wait()

	if tracerProvider != nil {
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			logger.Error("tracer shutdown error", "error", err)
		}
	}

	logger.Info("server shutdown complete")
}

// runHealthCheckLoop sweeps every registered service at the configured
// interval, discovering newly registered services on each tick so the
// admin API never requires a restart to bring new instances under probe.
func runHealthCheckLoop(ctx context.Context, reg *registry.Registry, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			names, err := reg.ServiceNames(ctx)
			if err != nil {
				logger.Error("health sweep: list service names failed", "error", err)
				continue
			}
			reg.CheckAll(ctx, names)
		}
	}
}
