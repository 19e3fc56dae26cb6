// WatchNext - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchnext

package corpus

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrMissingColumn is returned when the item table lacks a required column.
	ErrMissingColumn = errors.New("missing column")

	// ErrInvalidID is returned for ids that are not positive integers.
	ErrInvalidID = errors.New("invalid item id")

	// ErrDuplicateID is returned when an id appears on more than one row.
	ErrDuplicateID = errors.New("duplicate item id")
)

// Item is one corpus entry. Row is its index in the item-by-term matrix.
type Item struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Row   int    `json:"row"`
}

// Table is the read-only item table in matrix row order.
type Table struct {
	items []Item
	byID  map[int]int
}

// NewTable indexes items. Rows are reassigned from slice position.
func NewTable(items []Item) (*Table, error) {
	t := &Table{
		items: make([]Item, len(items)),
		byID:  make(map[int]int, len(items)),
	}
	for i, item := range items {
		if item.ID <= 0 {
			return nil, fmt.Errorf("%w: %d at row %d", ErrInvalidID, item.ID, i)
		}
		if prev, dup := t.byID[item.ID]; dup {
			return nil, fmt.Errorf("%w: %d at rows %d and %d", ErrDuplicateID, item.ID, prev, i)
		}
		item.Row = i
		t.items[i] = item
		t.byID[item.ID] = i
	}
	return t, nil
}

// Len is the number of items.
func (t *Table) Len() int { return len(t.items) }

// At returns the item on matrix row r.
func (t *Table) At(r int) Item { return t.items[r] }

// ByID looks an item up by identifier.
func (t *Table) ByID(id int) (Item, bool) {
	r, ok := t.byID[id]
	if !ok {
		return Item{}, false
	}
	return t.items[r], true
}

// ReadItems parses a CSV item table with a header row. Every data row becomes
// an item so row positions stay aligned with the matrix.
func ReadItems(r io.Reader, idColumn, titleColumn string) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read item header: %w", err)
	}
	idx := headerIndex(header)
	for _, col := range []string{idColumn, titleColumn} {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}
	idCol, titleCol := idx[idColumn], idx[titleColumn]

	var items []Item
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read item table: %w", err)
		}
		if idCol >= len(row) {
			return nil, fmt.Errorf("%w: line %d has no %s value", ErrInvalidID, line, idColumn)
		}
		id, err := parseID(row[idCol])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		var title string
		if titleCol < len(row) {
			title = row[titleCol]
		}
		items = append(items, Item{ID: id, Title: title})
	}
	return NewTable(items)
}

func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, col := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(col, "\ufeff"))] = i
	}
	return idx
}

// parseID accepts integers and integral floats such as "550.0".
func parseID(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if id, err := strconv.Atoi(raw); err == nil {
		return id, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, raw)
	}
	return int(f), nil
}
