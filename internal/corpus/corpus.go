// WatchNext - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchnext

// Package corpus loads the static recommendation artifact: the item table,
// the fitted TF-IDF vectorizer and the item-by-term matrix.
//
// Files ending in .gz are decompressed transparently. The loaded corpus is
// never mutated.
package corpus

import (
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/watchnext/internal/metrics"
	"github.com/tomtom215/watchnext/internal/similarity"
)

// ErrShapeMismatch is returned when the artifact parts disagree on size.
var ErrShapeMismatch = errors.New("corpus shape mismatch")

// Config locates the artifact files.
type Config struct {
	ItemsPath      string
	VectorizerPath string
	MatrixPath     string
	IDColumn       string
	TitleColumn    string
}

// Corpus is the loaded artifact.
type Corpus struct {
	Items    *Table
	Engine   *similarity.Engine
	LoadedAt time.Time
}

// Summary describes a loaded corpus.
type Summary struct {
	Items    int       `json:"items"`
	Terms    int       `json:"terms"`
	NNZ      int       `json:"nnz"`
	LoadedAt time.Time `json:"loaded_at"`
}

// Summary reports corpus dimensions.
func (c *Corpus) Summary() Summary {
	return Summary{
		Items:    c.Items.Len(),
		Terms:    c.Engine.Terms(),
		NNZ:      c.Engine.NNZ(),
		LoadedAt: c.LoadedAt,
	}
}

// Load reads and validates all three artifact files.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func Load(cfg Config, logger zerolog.Logger) (*Corpus, error) {
	if cfg.IDColumn == "" {
		cfg.IDColumn = "id"
	}
	if cfg.TitleColumn == "" {
		cfg.TitleColumn = "original_title"
	}

	start := time.Now()

	var items *Table
	if err := withFile(cfg.ItemsPath, func(r io.Reader) error {
		var err error
		items, err = ReadItems(r, cfg.IDColumn, cfg.TitleColumn)
		return err
	}); err != nil {
		return nil, fmt.Errorf("load items %s: %w", cfg.ItemsPath, err)
	}

	var params similarity.VectorizerParams
	if err := withFile(cfg.VectorizerPath, func(r io.Reader) error {
		return json.NewDecoder(r).Decode(&params)
	}); err != nil {
		return nil, fmt.Errorf("load vectorizer %s: %w", cfg.VectorizerPath, err)
	}
	vectorizer, err := similarity.NewVectorizer(params)
	if err != nil {
		return nil, fmt.Errorf("load vectorizer %s: %w", cfg.VectorizerPath, err)
	}

	var csr similarity.CSR
	if err := withFile(cfg.MatrixPath, func(r io.Reader) error {
		return json.NewDecoder(r).Decode(&csr)
	}); err != nil {
		return nil, fmt.Errorf("load matrix %s: %w", cfg.MatrixPath, err)
	}

	c, err := Assemble(items, vectorizer, csr)
	if err != nil {
		return nil, err
	}

	summary := c.Summary()
	metrics.SetCorpusSize(summary.Items, summary.Terms)
	logger.Info().
		Int("items", summary.Items).
		Int("terms", summary.Terms).
		Int("nnz", summary.NNZ).
		Dur("duration", time.Since(start)).
		Msg("Corpus loaded")
	return c, nil
}

// Assemble validates the parts against each other and builds a Corpus.
func Assemble(items *Table, vectorizer *similarity.Vectorizer, csr similarity.CSR) (*Corpus, error) {
	if csr.Shape[0] != items.Len() {
		return nil, fmt.Errorf("%w: matrix has %d rows but item table has %d items",
			ErrShapeMismatch, csr.Shape[0], items.Len())
	}
	if csr.Shape[1] != vectorizer.Dimensions() {
		return nil, fmt.Errorf("%w: matrix has %d columns but vocabulary has %d terms",
			ErrShapeMismatch, csr.Shape[1], vectorizer.Dimensions())
	}
	matrix, err := similarity.NewMatrix(csr)
	if err != nil {
		return nil, err
	}
	engine, err := similarity.NewEngine(vectorizer, matrix)
	if err != nil {
		return nil, err
	}
	return &Corpus{Items: items, Engine: engine, LoadedAt: time.Now().UTC()}, nil
}

func withFile(path string, fn func(io.Reader) error) error {
	if path == "" {
		return errors.New("path not configured")
	}
	f, err := os.Open(path) //nolint:gosec // artifact paths come from operator config
	if err != nil {
		return err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("open gzip: %w", err)
		}
		defer gz.Close()
		r = gz
	}
	return fn(r)
}
