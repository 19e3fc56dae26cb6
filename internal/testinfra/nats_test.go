// WatchNext - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchnext

//go:build integration

package testinfra

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestNATSContainer(t *testing.T) {
	SkipIfNoDocker(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	natsC, err := NewNATSContainer(ctx)
	if err != nil {
		t.Fatalf("Failed to start NATS: %v", err)
	}
	defer CleanupContainer(t, ctx, natsC)

	if !strings.HasPrefix(natsC.URL, "nats://") {
		t.Errorf("Expected nats:// URL, got %q", natsC.URL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, natsC.MonitoringURL+"/healthz", http.NoBody)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Health check failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200 from /healthz, got %d", resp.StatusCode)
	}

	logs, err := natsC.Logs(ctx)
	if err != nil {
		t.Fatalf("Logs failed: %v", err)
	}
	if !strings.Contains(logs, "Server is ready") {
		t.Errorf("Expected ready line in logs, got:\n%s", logs)
	}
}
