// Package analyzer implements the csvgroup pipeline: load CSV files into
// in-memory tables, partition their rows by a shared column, and export the
// matched and unmatched buckets back to CSV.
//
// All operations are synchronous and whole-file; inputs are assumed small
// enough to hold in memory. An Analyzer is not safe for concurrent use.
package analyzer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hartfield/csvgroup/internal/table"
)

const csvExt = ".csv"

// Analyzer owns the load/group/export lifecycle. Each load call replaces
// the previously held tables; loads are never merged.
type Analyzer struct {
	tables []*table.Table
	diag   io.Writer
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithDiagnostics directs the human-readable per-file diagnostics
// (skipped files, empty exports, partial write failures) to w.
// The default is os.Stderr.
func WithDiagnostics(w io.Writer) Option {
	return func(a *Analyzer) { a.diag = w }
}

// New creates an empty Analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{diag: os.Stderr}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Analyzer) warnf(format string, args ...any) {
	fmt.Fprintf(a.diag, "Warning: "+format+"\n", args...)
}

// LoadDirectory loads every *.csv file in dir (non-recursive, extension
// matched case-insensitively) and replaces the analyzer's table collection
// with the result. Files that cannot be parsed are skipped with a
// diagnostic. Returns the number of files loaded.
func (a *Analyzer) LoadDirectory(dir string) (int, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return 0, &PathError{Path: dir, Err: err}
	}
	if !info.IsDir() {
		return 0, &PathError{Path: dir, Err: fmt.Errorf("not a directory")}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, &PathError{Path: dir, Err: err}
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), csvExt) {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}

	return a.LoadFiles(paths)
}

// LoadFiles loads the given CSV files in order and replaces the analyzer's
// table collection with the result. Unreadable or malformed files are
// skipped with a diagnostic; the rest still load. Files from different
// directories may share a base name; later ones get a numbered source tag
// so that every table keeps a distinct identity. Returns the number of
// files loaded.
func (a *Analyzer) LoadFiles(paths []string) (int, error) {
	used := make(map[string]struct{}, len(paths))
	tables := make([]*table.Table, 0, len(paths))
	for _, path := range paths {
		t, err := table.ReadFile(path)
		if err != nil {
			a.warnf("skipping file: %v", &ReadError{Path: path, Err: err})
			continue
		}
		if s := uniqueSource(used, t.Source); s != t.Source {
			a.warnf("duplicate source name %q (%s); tagging as %q", t.Source, path, s)
			t.Source = s
		}
		used[t.Source] = struct{}{}
		tables = append(tables, t)
	}
	a.tables = tables
	return len(tables), nil
}

// UseTables replaces the analyzer's table collection with tables built
// elsewhere (typically in tests or by programmatic callers). Tables with
// duplicate source names are retagged the same way LoadFiles retags
// same-named files.
func (a *Analyzer) UseTables(tables []*table.Table) {
	used := make(map[string]struct{}, len(tables))
	out := make([]*table.Table, 0, len(tables))
	for _, t := range tables {
		if s := uniqueSource(used, t.Source); s != t.Source {
			a.warnf("duplicate source name %q; tagging as %q", t.Source, s)
			clone := *t
			clone.Source = s
			t = &clone
		}
		used[t.Source] = struct{}{}
		out = append(out, t)
	}
	a.tables = out
}

// uniqueSource returns name, or name with a numeric suffix spliced in
// before the extension when name is already taken.
func uniqueSource(used map[string]struct{}, name string) string {
	if _, taken := used[name]; !taken {
		return name
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, n, ext)
		if _, taken := used[candidate]; !taken {
			return candidate
		}
	}
}

// Tables returns the currently loaded tables in load order.
func (a *Analyzer) Tables() []*table.Table {
	return a.tables
}

// Columns reports the column list of every loaded table, keyed by source.
func (a *Analyzer) Columns() map[string][]string {
	out := make(map[string][]string, len(a.tables))
	for _, t := range a.tables {
		out[t.Source] = append([]string(nil), t.Columns...)
	}
	return out
}

// MissingColumns reports, per source, the columns that appear in some other
// loaded table but not in this one. Sources with no missing columns are
// omitted. The lists are sorted for stable output.
func (a *Analyzer) MissingColumns() map[string][]string {
	union := make(map[string]struct{})
	for _, t := range a.tables {
		for _, c := range t.Columns {
			union[c] = struct{}{}
		}
	}

	out := make(map[string][]string)
	for _, t := range a.tables {
		have := make(map[string]struct{}, len(t.Columns))
		for _, c := range t.Columns {
			have[c] = struct{}{}
		}
		var missing []string
		for c := range union {
			if _, ok := have[c]; !ok {
				missing = append(missing, c)
			}
		}
		if len(missing) > 0 {
			sort.Strings(missing)
			out[t.Source] = missing
		}
	}
	return out
}

// SourcedRow is one matched row together with the source file it came from.
type SourcedRow struct {
	Row    table.Row
	Source string
}

// Grouping is the result of GroupByColumn. Every loaded row lands in
// exactly one of Matched or Unmatched.
type Grouping struct {
	// Column is the grouping column.
	Column string

	// Keys holds the distinct values of Column in first-encounter order.
	Keys []string

	// Matched buckets rows by their value of Column. Within a bucket, rows
	// keep table load order and, within a table, original row order.
	Matched map[string][]SourcedRow

	// Unmatched holds the tables that lack Column, untouched, keyed by
	// source; UnmatchedOrder preserves their load order.
	Unmatched      map[string]*table.Table
	UnmatchedOrder []string

	matchedColumns []string
}

// MatchedColumns returns the union of the matched tables' columns in
// first-seen order across tables.
func (g *Grouping) MatchedColumns() []string {
	return g.matchedColumns
}

// MatchedRowCount returns the total number of rows across all groups.
func (g *Grouping) MatchedRowCount() int {
	n := 0
	for _, rows := range g.Matched {
		n += len(rows)
	}
	return n
}

// UnmatchedRowCount returns the total number of rows in unmatched tables.
func (g *Grouping) UnmatchedRowCount() int {
	n := 0
	for _, t := range g.Unmatched {
		n += len(t.Rows)
	}
	return n
}

// GroupByColumn partitions the loaded tables by column. Tables containing
// the column contribute every row to Matched, bucketed by the row's raw
// cell value (exact string equality, no trimming or case-folding); tables
// lacking it contribute all rows to Unmatched. Pure computation, no side
// effects.
func (a *Analyzer) GroupByColumn(column string) (*Grouping, error) {
	if column == "" {
		return nil, ErrEmptyColumn
	}
	if len(a.tables) == 0 {
		return nil, ErrNoTables
	}

	g := &Grouping{
		Column:    column,
		Matched:   make(map[string][]SourcedRow),
		Unmatched: make(map[string]*table.Table),
	}
	seenCols := make(map[string]struct{})

	for _, t := range a.tables {
		if !t.HasColumn(column) {
			g.UnmatchedOrder = append(g.UnmatchedOrder, t.Source)
			g.Unmatched[t.Source] = t
			continue
		}

		for _, c := range t.Columns {
			if _, ok := seenCols[c]; !ok {
				seenCols[c] = struct{}{}
				g.matchedColumns = append(g.matchedColumns, c)
			}
		}
		for _, row := range t.Rows {
			key := row[column]
			if _, ok := g.Matched[key]; !ok {
				g.Keys = append(g.Keys, key)
			}
			g.Matched[key] = append(g.Matched[key], SourcedRow{Row: row, Source: t.Source})
		}
	}

	return g, nil
}
