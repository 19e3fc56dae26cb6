// WatchNext - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchnext

// Package similarity scores free text against a precomputed TF-IDF corpus.
//
// The Vectorizer reproduces the transform step of a fitted scikit-learn
// TfidfVectorizer, and the Engine computes cosine similarity between the
// transformed query and every row of the item-by-term Matrix.
package similarity

import (
	"fmt"
)

// Engine pairs a fitted vectorizer with its corpus matrix.
type Engine struct {
	vectorizer *Vectorizer
	matrix     *Matrix
}

// NewEngine checks that the matrix columns line up with the vocabulary.
func NewEngine(v *Vectorizer, m *Matrix) (*Engine, error) {
	if v == nil || m == nil {
		return nil, fmt.Errorf("%w: vectorizer and matrix are required", ErrInvalidMatrix)
	}
	if m.Cols() != v.Dimensions() {
		return nil, fmt.Errorf("%w: matrix has %d columns but vocabulary has %d terms",
			ErrInvalidMatrix, m.Cols(), v.Dimensions())
	}
	return &Engine{vectorizer: v, matrix: m}, nil
}

// Score returns one similarity per corpus row. Text with no known terms
// scores 0 everywhere.
func (e *Engine) Score(text string) []float64 {
	return e.matrix.Cosine(e.vectorizer.Transform(text))
}

// Rows is the corpus size.
func (e *Engine) Rows() int { return e.matrix.Rows() }

// Terms is the vocabulary size.
func (e *Engine) Terms() int { return e.vectorizer.Dimensions() }

// NNZ is the number of stored matrix entries.
func (e *Engine) NNZ() int { return e.matrix.NNZ() }
