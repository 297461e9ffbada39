package handler

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/JasjusSirsak/bolususu/internal/domain"
)

// ParseCSV reads a CSV document whose first record is the header. Every
// value is kept as a string; column order follows the header.
func ParseCSV(r io.Reader) ([]domain.Row, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, domain.InvalidInput("CSV file is empty")
	}
	if err != nil {
		return nil, csvError(err)
	}
	cols := make([]string, len(header))
	seen := make(map[string]struct{}, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		h = strings.TrimSpace(h)
		if h == "" {
			return nil, domain.Invalidf("column %d has an empty header", i+1)
		}
		if _, dup := seen[h]; dup {
			return nil, domain.Invalidf("duplicate column %q", h)
		}
		seen[h] = struct{}{}
		cols[i] = h
	}

	var rows []domain.Row
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, csvError(err)
		}
		var row domain.Row
		for i, c := range cols {
			row.Set(c, rec[i])
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, domain.InvalidInput("CSV file has no data rows")
	}
	return rows, nil
}

func csvError(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return domain.Invalidf("invalid CSV at line %d: %v", pe.Line, pe.Err)
	}
	return domain.Storage("failed to read CSV file", err)
}
