// WatchNext - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchnext

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"

	"github.com/tomtom215/watchnext/internal/api"
	"github.com/tomtom215/watchnext/internal/audit"
	"github.com/tomtom215/watchnext/internal/auth"
	"github.com/tomtom215/watchnext/internal/authz"
	"github.com/tomtom215/watchnext/internal/cache"
	"github.com/tomtom215/watchnext/internal/catalog"
	"github.com/tomtom215/watchnext/internal/config"
	"github.com/tomtom215/watchnext/internal/corpus"
	"github.com/tomtom215/watchnext/internal/events"
	"github.com/tomtom215/watchnext/internal/logging"
	"github.com/tomtom215/watchnext/internal/metrics"
	"github.com/tomtom215/watchnext/internal/recommend"
	"github.com/tomtom215/watchnext/internal/supervisor"
	"github.com/tomtom215/watchnext/internal/supervisor/services"
)

//nolint:gocyclo // sequential startup wiring
func run(cfg *config.Config) error {
	logger := logging.Logger()
	metrics.AppInfo.WithLabelValues(version, runtime.Version()).Set(1)

	logger.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Str("cache_backend", cfg.Cache.Backend).
		Bool("events_enabled", cfg.Events.Enabled).
		Str("auth_mode", cfg.Security.AuthMode).
		Msg("Starting WatchNext")

	corp, err := corpus.Load(corpusConfig(cfg), logging.WithComponent("corpus"))
	if err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}

	cat, breaker, err := buildCatalog(cfg)
	if err != nil {
		return fmt.Errorf("build catalog: %w", err)
	}

	featureCache, err := cache.New(cacheConfig(cfg), logging.WithComponent("cache"))
	if err != nil {
		return fmt.Errorf("open feature cache: %w", err)
	}
	defer func() {
		if err := featureCache.Close(); err != nil {
			logger.Error().Err(err).Msg("Error closing feature cache")
		}
	}()

	pipeline, err := recommend.NewPipeline(pipelineConfig(cfg), cat, featureCache, corp, logging.WithComponent("recommend"))
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}

	auditor := buildAuditor(cfg)
	if auditor != nil {
		defer func() { _ = auditor.Close() }()
	}

	var bus *events.Bus
	if cfg.Events.Enabled {
		bus, err = events.New(eventsConfig(cfg), logging.WithComponent("events"))
		if err != nil {
			return fmt.Errorf("build event bus: %w", err)
		}
		defer func() {
			if err := bus.Close(); err != nil {
				logger.Error().Err(err).Msg("Error closing event bus")
			}
		}()
	}

	authn, authzMw, closeAuthz, err := buildAuth(cfg)
	if err != nil {
		return fmt.Errorf("build auth: %w", err)
	}
	defer closeAuthz()
	if authzMw != nil && auditor != nil {
		authzMw.OnDenied(func(r *http.Request, _ *auth.Claims, action string) {
			auditor.LogAuthzDenied(r.Context(), audit.ActorFromContext(r.Context()), audit.SourceFromRequest(r), r.URL.Path, action)
		})
	}

	handlerOpts := []api.HandlerOption{
		api.WithVersion(version),
		api.WithLogger(logger),
	}
	if breaker != nil {
		handlerOpts = append(handlerOpts, api.WithBreaker(breaker))
	}
	if bus != nil {
		handlerOpts = append(handlerOpts, api.WithPublisher(bus))
	}
	if auditor != nil {
		handlerOpts = append(handlerOpts, api.WithAuditor(auditor))
	}

	router := api.NewRouter(api.RouterConfig{
		Handler:    api.NewHandler(pipeline, handlerOpts...),
		Middleware: api.NewChiMiddleware(middlewareConfig(cfg)),
		Authn:      authn,
		Authz:      authzMw,
		Logger:     logging.WithComponent("http"),
	})

	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:           router.Setup(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(logging.WithComponent("supervisor")), supervisor.TreeConfig{
		FailureThreshold: cfg.Supervisor.FailureThreshold,
		FailureDecay:     cfg.Supervisor.FailureDecay,
		FailureBackoff:   cfg.Supervisor.FailureBackoff,
		ShutdownTimeout:  cfg.Supervisor.ShutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	tree.AddCacheService(services.NewCacheSweeperService(featureCache, cfg.Cache.SweepInterval, logger))
	if bus != nil {
		var target events.Invalidator = pipeline
		if auditor != nil {
			target = audit.NewInvalidator(pipeline, auditor)
		}
		listener := events.NewListener(bus, target, logging.WithComponent("events"))
		tree.AddEventsService(services.NewInvalidationListenerService(listener))
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, logger))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary := corp.Summary()
	logger.Info().
		Str("addr", server.Addr).
		Int("corpus_items", summary.Items).
		Int("corpus_terms", summary.Terms).
		Msg("Supervisor tree starting")

	err = tree.Serve(ctx)
	if report, reportErr := tree.UnstoppedServiceReport(); reportErr == nil && len(report) > 0 {
		for _, svc := range report {
			logger.Warn().Str("service", svc.Name).Msg("Service did not stop within timeout")
		}
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func corpusConfig(cfg *config.Config) corpus.Config {
	return corpus.Config{
		ItemsPath:      cfg.Corpus.ItemsPath,
		VectorizerPath: cfg.Corpus.VectorizerPath,
		MatrixPath:     cfg.Corpus.MatrixPath,
		IDColumn:       cfg.Corpus.IDColumn,
		TitleColumn:    cfg.Corpus.TitleColumn,
	}
}

func cacheConfig(cfg *config.Config) cache.Config {
	return cache.Config{
		Backend:         cfg.Cache.Backend,
		CapacityPerKind: cfg.Cache.CapacityPerKind,
		TTL:             cfg.Cache.TTL,
		Path:            cfg.Cache.Path,
	}
}

func pipelineConfig(cfg *config.Config) *recommend.Config {
	return &recommend.Config{
		Workers:              cfg.Pipeline.Workers,
		CandidateWindow:      cfg.Pipeline.CandidateWindow,
		MaxResults:           cfg.Pipeline.MaxResults,
		MaxWatched:           cfg.Pipeline.MaxWatched,
		RequestTimeout:       cfg.Pipeline.RequestTimeout,
		InvalidatePerRequest: cfg.Pipeline.InvalidatePerRequest,
	}
}

func eventsConfig(cfg *config.Config) events.Config {
	ec := events.DefaultConfig()
	ec.Backend = cfg.Events.Backend
	ec.URL = cfg.Events.URL
	ec.Topic = cfg.Events.Topic
	ec.InstanceID = cfg.Events.InstanceID
	ec.MaxReconnects = cfg.Events.MaxReconnects
	if cfg.Events.ReconnectWait > 0 {
		ec.ReconnectWait = cfg.Events.ReconnectWait
	}
	return ec
}

func middlewareConfig(cfg *config.Config) *api.ChiMiddlewareConfig {
	mc := api.DefaultChiMiddlewareConfig()
	if len(cfg.Security.CORSOrigins) > 0 {
		mc.CORSAllowedOrigins = cfg.Security.CORSOrigins
	}
	mc.RateLimitRequests = cfg.Security.RateLimitReqs
	mc.RateLimitWindow = cfg.Security.RateLimitWindow
	mc.RateLimitDisabled = cfg.Security.RateLimitDisabled
	return mc
}

// buildAuditor returns nil when the audit trail is disabled.
func buildAuditor(cfg *config.Config) *audit.Logger {
	if !cfg.Audit.Enabled {
		return nil
	}
	return audit.NewLogger(audit.NewMemoryStore(cfg.Audit.Capacity), &audit.Config{
		Enabled:     true,
		BufferSize:  cfg.Audit.BufferSize,
		LogToStdout: cfg.Audit.LogToStdout,
	}, logging.WithComponent("audit"))
}

// buildCatalog returns the catalog and, when enabled, the breaker wrapping
// the TMDB client.
func buildCatalog(cfg *config.Config) (*catalog.Service, *catalog.BreakerClient, error) {
	t := cfg.TMDB
	client, err := catalog.NewClient(t.APIKey, t.BaseURL, t.Language,
		catalog.WithTimeout(t.Timeout),
		catalog.WithRateLimit(t.RateLimit, t.Burst),
		catalog.WithRetry(t.MaxRetries, t.RetryBaseDelay),
		catalog.WithLogger(logging.WithComponent("tmdb")),
	)
	if err != nil {
		return nil, nil, err
	}

	var tmdb catalog.API = client
	var breaker *catalog.BreakerClient
	if t.Breaker.Enabled {
		breaker = catalog.NewBreakerClient(client, catalog.BreakerSettings{
			MaxRequests:  t.Breaker.MaxRequests,
			Interval:     t.Breaker.Interval,
			Timeout:      t.Breaker.Timeout,
			MinRequests:  t.Breaker.MinRequests,
			FailureRatio: t.Breaker.FailureRatio,
		}, logging.WithComponent("tmdb-breaker"))
		tmdb = breaker
	}

	return catalog.NewService(tmdb, t.ImageBaseURL, logging.WithComponent("catalog")), breaker, nil
}

// buildAuth returns the maintenance route guards. In "none" mode the
// authentication middleware passes every request and authz is nil.
func buildAuth(cfg *config.Config) (*auth.Middleware, *authz.Middleware, func(), error) {
	noop := func() {}
	if cfg.Security.AuthMode != auth.AuthModeJWT {
		logging.Warn().Msg("Authentication is disabled (AUTH_MODE=none); maintenance routes are open")
		return auth.NewMiddleware(nil, cfg.Security.AuthMode, logging.WithComponent("auth")), nil, noop, nil
	}

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		return nil, nil, noop, err
	}

	enforcer, err := authz.NewEnforcer(&authz.EnforcerConfig{
		ModelPath:      cfg.Security.Casbin.ModelPath,
		PolicyPath:     cfg.Security.Casbin.PolicyPath,
		ReloadInterval: cfg.Security.Casbin.ReloadInterval,
		DefaultRole:    cfg.Security.Casbin.DefaultRole,
	})
	if err != nil {
		return nil, nil, noop, err
	}

	logging.Info().Msg("JWT authentication enabled for maintenance routes")
	return auth.NewMiddleware(jwtManager, auth.AuthModeJWT, logging.WithComponent("auth")),
		authz.NewMiddleware(enforcer, logging.WithComponent("authz")),
		enforcer.Close,
		nil
}
