// WatchNext - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchnext

//go:build integration

package testinfra

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// DefaultNATSImage is the NATS server image used for tests.
	DefaultNATSImage = "nats:2.10-alpine"

	natsClientPort     = "4222"
	natsMonitoringPort = "8222"
)

// NATSContainer is a running NATS server.
type NATSContainer struct {
	testcontainers.Container
	// URL is the client URL, e.g. nats://localhost:32771.
	URL string
	// MonitoringURL serves /healthz and /varz.
	MonitoringURL string
}

type natsConfig struct {
	image        string
	startTimeout time.Duration
	args         []string
}

// NATSOption configures NewNATSContainer.
type NATSOption func(*natsConfig)

// WithNATSImage overrides the server image.
func WithNATSImage(image string) NATSOption {
	return func(c *natsConfig) {
		c.image = image
	}
}

// WithNATSStartTimeout bounds how long to wait for the server.
func WithNATSStartTimeout(timeout time.Duration) NATSOption {
	return func(c *natsConfig) {
		c.startTimeout = timeout
	}
}

// WithNATSArgs appends server flags, e.g. "--max_payload", "2MB".
func WithNATSArgs(args ...string) NATSOption {
	return func(c *natsConfig) {
		c.args = append(c.args, args...)
	}
}

// NewNATSContainer starts a NATS server and waits until it reports healthy.
func NewNATSContainer(ctx context.Context, opts ...NATSOption) (*NATSContainer, error) {
	cfg := &natsConfig{
		image:        DefaultNATSImage,
		startTimeout: 60 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	req := testcontainers.ContainerRequest{
		Image:        cfg.image,
		ExposedPorts: []string{natsClientPort + "/tcp", natsMonitoringPort + "/tcp"},
		Cmd:          append([]string{"-m", natsMonitoringPort}, cfg.args...),
		WaitingFor: wait.ForAll(
			wait.ForListeningPort(natsClientPort+"/tcp"),
			wait.ForHTTP("/healthz").WithPort(natsMonitoringPort+"/tcp"),
		).WithStartupTimeout(cfg.startTimeout),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("create nats container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get container host: %w", err)
	}
	clientPort, err := container.MappedPort(ctx, natsClientPort)
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get mapped client port: %w", err)
	}
	monitoringPort, err := container.MappedPort(ctx, natsMonitoringPort)
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get mapped monitoring port: %w", err)
	}

	return &NATSContainer{
		Container:     container,
		URL:           fmt.Sprintf("nats://%s:%s", host, clientPort.Port()),
		MonitoringURL: fmt.Sprintf("http://%s:%s", host, monitoringPort.Port()),
	}, nil
}

// Logs returns the server log for debugging failed tests.
func (c *NATSContainer) Logs(ctx context.Context) (string, error) {
	reader, err := c.Container.Logs(ctx)
	if err != nil {
		return "", fmt.Errorf("get logs: %w", err)
	}
	defer reader.Close()

	logs, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read logs: %w", err)
	}
	return string(logs), nil
}
