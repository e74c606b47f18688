// Package refdata reads the static reference price dataset used as the
// fallback for game prices.
package refdata

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sync/singleflight"

	"pricesignal/internal/provider"
)

// Record is one row of the dataset.
type Record struct {
	ID        int            `json:"id"`
	Symbol    string         `json:"symbol"`
	SymbolExt string         `json:"symbolExt"`
	Name      string         `json:"name"`
	Price     provider.Price `json:"price"`
}

// Column positions used when the header does not name a column.
const (
	colID = iota
	colSymbol
	colSymbolExt
	colName
	colPrice
)

// Store looks prices up in a CSV file. The file is read on every lookup;
// concurrent lookups share one in-flight read and nothing is kept afterwards.
type Store struct {
	Path string

	sf singleflight.Group
}

func NewStore(path string) *Store { return &Store{Path: path} }

func (s *Store) Name() string { return "reference" }

// Lookup returns the fallback price for ticker, absent when no row matches.
func (s *Store) Lookup(ctx context.Context, ticker string) (provider.Price, error) {
	rec, ok, err := s.Find(ctx, ticker)
	if err != nil || !ok {
		return provider.Absent(), err
	}
	return rec.Price, nil
}

// Quote adapts the store to provider.Source. Read failures are returned as
// errors: an unreadable dataset is a fault, not a missing price.
func (s *Store) Quote(ctx context.Context, ticker string) (provider.Quote, error) {
	p, err := s.Lookup(ctx, ticker)
	if err != nil {
		return provider.Quote{}, err
	}
	return provider.Quote{Symbol: ticker, Price: p, Source: provider.SourceReference}, nil
}

// Find returns the first row whose symbol equals ticker, ignoring case.
func (s *Store) Find(ctx context.Context, ticker string) (Record, bool, error) {
	rows, err := s.rows(ctx)
	if err != nil {
		return Record{}, false, err
	}
	return findRow(rows, ticker)
}

func (s *Store) rows(ctx context.Context) (*table, error) {
	ch := s.sf.DoChan(s.Path, func() (any, error) {
		f, err := os.Open(s.Path)
		if err != nil {
			return nil, fmt.Errorf("open reference data: %w", err)
		}
		defer f.Close()
		return readTable(f)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(*table), nil
	}
}

type table struct {
	cols map[int]int // logical column -> position
	rows [][]string
}

func (t *table) field(row []string, col int) string {
	i, ok := t.cols[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(strings.ReplaceAll(row[i], `"`, ""))
}

var headerNames = map[string]int{
	"id":        colID,
	"symbol":    colSymbol,
	"symbolext": colSymbolExt,
	"name":      colName,
	"price":     colPrice,
}

// readTable parses the dataset. The first non-blank line is the header; a
// column it names moves to that position, every other column keeps the
// positional layout.
func readTable(r io.Reader) (*table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return &table{cols: defaultColumns()}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read reference header: %w", err)
	}
	t := &table{cols: defaultColumns()}
	for i, h := range header {
		key := strings.TrimPrefix(strings.TrimSpace(h), "\ufeff")
		key = strings.ToLower(strings.Trim(key, `"`))
		if col, ok := headerNames[key]; ok {
			t.cols[col] = i
		}
	}

	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read reference rows: %w", err)
		}
		t.rows = append(t.rows, row)
	}
	return t, nil
}

func defaultColumns() map[int]int {
	return map[int]int{colID: 0, colSymbol: 1, colSymbolExt: 2, colName: 3, colPrice: 4}
}

func findRow(t *table, ticker string) (Record, bool, error) {
	for _, row := range t.rows {
		if !strings.EqualFold(t.field(row, colSymbol), ticker) {
			continue
		}
		id, _ := strconv.Atoi(t.field(row, colID))
		return Record{
			ID:        id,
			Symbol:    t.field(row, colSymbol),
			SymbolExt: t.field(row, colSymbolExt),
			Name:      t.field(row, colName),
			Price:     provider.ParsePriceText(t.field(row, colPrice)),
		}, true, nil
	}
	return Record{}, false, nil
}
