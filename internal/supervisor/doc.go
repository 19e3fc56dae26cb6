// WatchNext - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchnext

/*
Package supervisor provides process supervision for the recommendation
server using suture v4.

The tree has three layers, each restarted independently:

	RootSupervisor ("watchnext")
	├── CacheSupervisor ("cache-layer")
	│   └── CacheSweeperService
	├── EventsSupervisor ("events-layer")
	│   └── InvalidationListenerService (if events.enabled)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

A listener that loses its NATS connection is restarted with backoff while
the API keeps serving. Supervisor events are logged through sutureslog.

Usage:

	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.TreeConfig{
	    ShutdownTimeout: cfg.Supervisor.ShutdownTimeout,
	})
	if err != nil {
	    return err
	}
	tree.AddCacheService(services.NewCacheSweeperService(featureCache, interval, logger))
	tree.AddAPIService(services.NewHTTPServerService(server, timeout, logger))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	err = tree.Serve(ctx)
*/
package supervisor
