package analyzer

import (
	"errors"
	"fmt"
)

// Sentinel errors for precondition failures on whole operations.
var (
	// ErrNoTables is returned by GroupByColumn when nothing is loaded.
	ErrNoTables = errors.New("no tables loaded")

	// ErrEmptyColumn is returned by GroupByColumn for an empty column name.
	ErrEmptyColumn = errors.New("grouping column name is empty")

	// ErrNothingToExport is returned by ExportMatched when the grouping
	// produced no matched rows. No file is written in that case.
	ErrNothingToExport = errors.New("no matched data to export")

	// ErrNoQuery is returned by Search when neither a value nor any
	// column filters were given.
	ErrNoQuery = errors.New("no search value or column filters given")
)

// PathError reports a bad input directory.
type PathError struct {
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("path %s: %v", e.Path, e.Err)
}

func (e *PathError) Unwrap() error { return e.Err }

// ReadError reports a single input file that could not be read or parsed.
// Load operations emit these as diagnostics and keep going.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// ExportError reports a failure creating the output directory or writing
// an output file.
type ExportError struct {
	Path string
	Err  error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export %s: %v", e.Path, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }
