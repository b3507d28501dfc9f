package analyzer

import (
	"strings"
)

// SearchResult holds the rows that satisfied a search across all loaded
// tables, each tagged with its source.
type SearchResult struct {
	// Columns is the first-seen union of the loaded tables' columns, so
	// that results from differently shaped files render side by side.
	Columns []string

	// Rows holds the matching rows in load order, then file order.
	Rows []SourcedRow
}

// Search scans every loaded table for matching rows. With a non-empty
// value, a row matches when any of its cells contains value
// (case-insensitive substring). Otherwise filters apply: a row matches
// when, for every filter column its table actually has, the cell contains
// the filter value; filters on columns a table lacks are ignored for that
// table. Value and filters are alternatives; value wins when both are
// given.
//
// Returns ErrNoTables when nothing is loaded and ErrNoQuery when neither
// a value nor filters were given.
func (a *Analyzer) Search(value string, filters map[string]string) (*SearchResult, error) {
	if len(a.tables) == 0 {
		return nil, ErrNoTables
	}
	if value == "" && len(filters) == 0 {
		return nil, ErrNoQuery
	}

	res := &SearchResult{}
	seenCols := make(map[string]struct{})
	for _, t := range a.tables {
		for _, c := range t.Columns {
			if _, ok := seenCols[c]; !ok {
				seenCols[c] = struct{}{}
				res.Columns = append(res.Columns, c)
			}
		}
		for _, row := range t.Rows {
			matched := false
			if value != "" {
				for _, c := range t.Columns {
					if containsFold(row[c], value) {
						matched = true
						break
					}
				}
			} else {
				matched = true
				for col, val := range filters {
					if !t.HasColumn(col) {
						continue
					}
					if !containsFold(row[col], val) {
						matched = false
						break
					}
				}
			}
			if matched {
				res.Rows = append(res.Rows, SourcedRow{Row: row, Source: t.Source})
			}
		}
	}
	return res, nil
}

// ColumnValues collects the values of column from every loaded table that
// contains it, keyed by source and in original row order. Sources lacking
// the column are omitted.
func (a *Analyzer) ColumnValues(column string) map[string][]string {
	out := make(map[string][]string)
	for _, t := range a.tables {
		if !t.HasColumn(column) {
			continue
		}
		values := make([]string, 0, len(t.Rows))
		for _, row := range t.Rows {
			values = append(values, row[column])
		}
		out[t.Source] = values
	}
	return out
}

// containsFold reports whether s contains substr ignoring case.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
