// Package table provides the in-memory tabular data model for csvgroup.
//
// A Table is one loaded CSV file: its source name, its header columns in
// file order, and its rows. Column sets vary per input file, so a Row is a
// plain column-to-value map and the Table keeps the ordered column list
// alongside it.
package table

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// Row maps a column name to its cell value. Cells are kept as the raw
// decoded CSV strings; no type coercion happens anywhere in csvgroup.
type Row map[string]string

// Table holds one loaded CSV file. Immutable after load.
type Table struct {
	// Source is the base name of the originating file (not the full path,
	// so that exported data stays portable across machines).
	Source string

	// Columns preserves the header order as it appeared in the file.
	Columns []string

	// Rows preserves the original row order.
	Rows []Row
}

// HasColumn reports whether the table's header contains name.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// ReadFile loads a CSV file into a Table. The first record is the header;
// every following record must have the same field count (the default
// encoding/csv behavior). The Source is the file's base name.
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("missing header row")
	}

	header := records[0]
	rows := make([]Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(Row, len(header))
		for i, col := range header {
			row[col] = rec[i]
		}
		rows = append(rows, row)
	}

	return &Table{
		Source:  filepath.Base(path),
		Columns: header,
		Rows:    rows,
	}, nil
}

// WriteFile writes rows to path as CSV with the given header. Cells missing
// from a row are written as empty strings. The file is created or truncated;
// identical input produces byte-identical output.
func WriteFile(path string, columns []string, rows []Row) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if err := w.Write(columns); err != nil {
		_ = f.Close()
		return err
	}

	record := make([]string, len(columns))
	for _, row := range rows {
		for i, col := range columns {
			record[i] = row[col]
		}
		if err := w.Write(record); err != nil {
			_ = f.Close()
			return err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
