// WatchNext - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchnext

package similarity

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidMatrix is returned for inconsistent CSR data.
var ErrInvalidMatrix = errors.New("invalid matrix")

// CSR is the on-disk compressed sparse row layout.
type CSR struct {
	Shape   [2]int    `json:"shape"`
	Indptr  []int     `json:"indptr"`
	Indices []int     `json:"indices"`
	Data    []float64 `json:"data"`
}

// Matrix is a read-only item-by-term matrix in CSR form with cached row norms.
type Matrix struct {
	rows, cols int
	indptr     []int
	indices    []int
	data       []float64
	norms      []float64
}

// NewMatrix validates c and builds a Matrix.
func NewMatrix(c CSR) (*Matrix, error) {
	rows, cols := c.Shape[0], c.Shape[1]
	if rows < 0 || cols < 0 {
		return nil, fmt.Errorf("%w: negative shape %v", ErrInvalidMatrix, c.Shape)
	}
	if len(c.Indptr) != rows+1 {
		return nil, fmt.Errorf("%w: indptr length %d, want %d", ErrInvalidMatrix, len(c.Indptr), rows+1)
	}
	if len(c.Indices) != len(c.Data) {
		return nil, fmt.Errorf("%w: %d indices but %d values", ErrInvalidMatrix, len(c.Indices), len(c.Data))
	}
	if c.Indptr[0] != 0 || c.Indptr[rows] != len(c.Data) {
		return nil, fmt.Errorf("%w: indptr must span [0, %d]", ErrInvalidMatrix, len(c.Data))
	}

	for r := 0; r < rows; r++ {
		lo, hi := c.Indptr[r], c.Indptr[r+1]
		if hi < lo {
			return nil, fmt.Errorf("%w: indptr decreases at row %d", ErrInvalidMatrix, r)
		}
		if hi > len(c.Data) {
			return nil, fmt.Errorf("%w: indptr %d at row %d exceeds %d values", ErrInvalidMatrix, hi, r, len(c.Data))
		}
	}

	m := &Matrix{
		rows:    rows,
		cols:    cols,
		indptr:  c.Indptr,
		indices: c.Indices,
		data:    c.Data,
		norms:   make([]float64, rows),
	}
	for r := 0; r < rows; r++ {
		lo, hi := c.Indptr[r], c.Indptr[r+1]
		var sum float64
		for k := lo; k < hi; k++ {
			if col := c.Indices[k]; col < 0 || col >= cols {
				return nil, fmt.Errorf("%w: column %d out of range at row %d", ErrInvalidMatrix, col, r)
			}
			sum += c.Data[k] * c.Data[k]
		}
		m.norms[r] = math.Sqrt(sum)
	}
	return m, nil
}

// Rows is the number of items.
func (m *Matrix) Rows() int { return m.rows }

// Cols is the number of terms.
func (m *Matrix) Cols() int { return m.cols }

// NNZ is the number of stored entries.
func (m *Matrix) NNZ() int { return len(m.data) }

// Cosine returns the cosine similarity between q and every row, in row order.
// A zero query or a zero row scores 0.
func (m *Matrix) Cosine(q Vector) []float64 {
	scores := make([]float64, m.rows)
	qNorm := q.Norm()
	if qNorm == 0 {
		return scores
	}

	dense := make(map[int]float64, len(q.Indices))
	for i, idx := range q.Indices {
		dense[idx] = q.Values[i]
	}

	for r := 0; r < m.rows; r++ {
		if m.norms[r] == 0 {
			continue
		}
		var dot float64
		for k := m.indptr[r]; k < m.indptr[r+1]; k++ {
			if qv, ok := dense[m.indices[k]]; ok {
				dot += qv * m.data[k]
			}
		}
		scores[r] = dot / (qNorm * m.norms[r])
	}
	return scores
}
