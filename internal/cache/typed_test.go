// WatchNext - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchnext

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type testRecord struct {
	Overview string  `json:"overview"`
	Rating   float64 `json:"rating"`
	OK       bool    `json:"ok"`
}

func TestGetOrComputeJSON(t *testing.T) {
	t.Parallel()

	c := NewMemory(10, 0, zerolog.Nop())
	ctx := context.Background()
	key := Key{ItemID: 3, Kind: KindDetail}
	calls := 0

	fn := func(context.Context) (testRecord, error) {
		calls++
		return testRecord{Overview: "A heist", Rating: 7.9, OK: true}, nil
	}

	first, err := GetOrComputeJSON(ctx, c, key, fn)
	if err != nil {
		t.Fatalf("GetOrComputeJSON: %v", err)
	}
	second, err := GetOrComputeJSON(ctx, c, key, fn)
	if err != nil {
		t.Fatalf("GetOrComputeJSON: %v", err)
	}

	if first != second {
		t.Errorf("Expected identical decoded values, got %+v and %+v", first, second)
	}
	if second.Rating != 7.9 || !second.OK {
		t.Errorf("Unexpected decoded record: %+v", second)
	}
	if calls != 1 {
		t.Errorf("Expected 1 compute call, got %d", calls)
	}
}

func TestGetOrComputeJSON_Error(t *testing.T) {
	t.Parallel()

	c := NewMemory(10, 0, zerolog.Nop())
	sentinel := errors.New("canceled")
	_, err := GetOrComputeJSON(context.Background(), c, Key{ItemID: 1, Kind: KindPoster}, func(context.Context) (string, error) {
		return "", sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Errorf("Expected sentinel error, got %v", err)
	}
}

func TestGetOrComputeJSON_CorruptValue(t *testing.T) {
	t.Parallel()

	c := NewMemory(10, 0, zerolog.Nop())
	key := Key{ItemID: 1, Kind: KindDetail}
	_, _ = c.GetOrCompute(context.Background(), key, func(context.Context) ([]byte, error) {
		return []byte("not json"), nil
	})

	_, err := GetOrComputeJSON(context.Background(), c, key, func(context.Context) (testRecord, error) {
		return testRecord{}, nil
	})
	if err == nil {
		t.Error("Expected decode error for corrupt cached value")
	}
}

func TestNewFactory(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     Config
		backend string
		wantErr bool
	}{
		{"default memory", Config{}, "memory", false},
		{"memory", Config{Backend: "memory", CapacityPerKind: 5}, "memory", false},
		{"badger in memory", Config{Backend: "badger", TTL: time.Hour}, "badger", false},
		{"unknown", Config{Backend: "redis"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c, err := New(tt.cfg, zerolog.Nop())
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			defer c.Close()
			if got := c.Stats().Backend; got != tt.backend {
				t.Errorf("Expected backend %s, got %s", tt.backend, got)
			}
		})
	}
}
