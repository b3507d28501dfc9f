package analyzer

import (
	"errors"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"github.com/hartfield/csvgroup/internal/table"
)

// SourceColumn is the trailing column added to the matched export that
// carries each row's originating file name.
const SourceColumn = "source_file"

// ExportMatched writes every matched group to a single combined CSV file
// at <outDir>/<prefix>_combined.csv and returns its path. The header is the
// union of the matched tables' columns in first-seen order, with
// SourceColumn appended last; cells a row's table never had are left empty.
// Groups appear in first-encounter key order, rows within a group in load
// order. The output directory is created if absent and an existing file is
// overwritten, so re-exporting the same grouping is byte-for-byte
// idempotent.
//
// Returns ErrNothingToExport (after a diagnostic) when the grouping has no
// matched rows; no file is written in that case.
func (a *Analyzer) ExportMatched(outDir, prefix string, g *Grouping) (string, error) {
	if len(g.Matched) == 0 {
		a.warnf("no matched data to export")
		return "", ErrNothingToExport
	}

	if err := ensureDir(outDir); err != nil {
		return "", err
	}

	columns := append(append([]string(nil), g.matchedColumns...), SourceColumn)
	rows := make([]table.Row, 0, g.MatchedRowCount())
	for _, key := range g.Keys {
		for _, sr := range g.Matched[key] {
			row := maps.Clone(sr.Row)
			row[SourceColumn] = sr.Source
			rows = append(rows, row)
		}
	}

	path := filepath.Join(outDir, prefix+"_combined.csv")
	if err := table.WriteFile(path, columns, rows); err != nil {
		return "", &ExportError{Path: path, Err: err}
	}
	return path, nil
}

// ExportUnmatched writes each unmatched table to its own CSV file in
// outDir, named <prefix>_<source-without-extension>.csv (just the source
// name when prefix is empty), with the table's original columns and rows
// verbatim. A failure writing one file is reported with a diagnostic and
// does not stop the remaining files; the returned error joins the
// individual failures. Returns the paths successfully written.
func (a *Analyzer) ExportUnmatched(outDir, prefix string, g *Grouping) ([]string, error) {
	if len(g.Unmatched) == 0 {
		return nil, nil
	}

	if err := ensureDir(outDir); err != nil {
		return nil, err
	}

	var written []string
	var errs []error
	for _, source := range g.UnmatchedOrder {
		t := g.Unmatched[source]
		name := sanitizeName(strings.TrimSuffix(source, filepath.Ext(source))) + ".csv"
		if prefix != "" {
			name = prefix + "_" + name
		}
		path := filepath.Join(outDir, name)
		if err := table.WriteFile(path, t.Columns, t.Rows); err != nil {
			werr := &ExportError{Path: path, Err: err}
			a.warnf("%v", werr)
			errs = append(errs, werr)
			continue
		}
		written = append(written, path)
	}
	return written, errors.Join(errs...)
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return &ExportError{Path: dir, Err: err}
	}
	return nil
}

// sanitizeName strips path separators and other characters that are unsafe
// in a file name derived from a source tag.
func sanitizeName(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, name)
}
