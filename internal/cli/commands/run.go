package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hartfield/csvgroup/internal/analyzer"
	"github.com/hartfield/csvgroup/internal/cli/config"
	"github.com/hartfield/csvgroup/internal/cli/output"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [files...]",
		Short: "Load, group, and export CSV files",
		Long: `Load CSV files, group their rows by the configured column, and export
the result.

Files given as arguments are loaded directly; with no arguments, every
*.csv file in the input directory is loaded. Files containing the grouping
column are combined into <output-dir>/<prefix>_combined.csv with a trailing
source_file column; files lacking it are written out unchanged, one file
per source. Malformed input files are skipped with a warning.

Output adapts to environment:
  - Terminal: Styled, colored output
  - Piped/Scripted: Markdown format (agent-friendly)

Use --output to override: auto, text, markdown, json`,
		Example: `  # Group every CSV in ./data by the "category" column
  csvgroup run --input-dir ./data --column category --output-dir ./out

  # Group specific files, JSON summary
  csvgroup run a.csv b.csv -c id --output json

  # Use the prefix "merged" for exported file names
  csvgroup run -c sku --prefix merged`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, args)
		},
	}

	return cmd
}

// runSummary is the JSON shape of a run report.
type runSummary struct {
	Column         string   `json:"column"`
	FilesLoaded    int      `json:"files_loaded"`
	Groups         int      `json:"groups"`
	MatchedRows    int      `json:"matched_rows"`
	UnmatchedRows  int      `json:"unmatched_rows"`
	MatchedFile    string   `json:"matched_file,omitempty"`
	UnmatchedFiles []string `json:"unmatched_files"`
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg := config.Current()
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat))

	if cfg.GroupBy == "" {
		return fmt.Errorf("a grouping column is required (use --column or set group_by in csvgroup.yaml)")
	}

	a := analyzer.New(analyzer.WithDiagnostics(cmd.ErrOrStderr()))

	var (
		loaded int
		err    error
	)
	if len(args) > 0 {
		loaded, err = a.LoadFiles(args)
	} else {
		loaded, err = a.LoadDirectory(cfg.InputDir)
	}
	if err != nil {
		return err
	}
	if loaded == 0 {
		return fmt.Errorf("no CSV files loaded")
	}

	g, err := a.GroupByColumn(cfg.GroupBy)
	if err != nil {
		return err
	}

	matchedFile, err := a.ExportMatched(cfg.OutputDir, cfg.OutputPrefix, g)
	if err != nil && !errors.Is(err, analyzer.ErrNothingToExport) {
		return err
	}

	unmatchedFiles, exportErr := a.ExportUnmatched(cfg.OutputDir, cfg.OutputPrefix, g)

	summary := runSummary{
		Column:         g.Column,
		FilesLoaded:    loaded,
		Groups:         len(g.Keys),
		MatchedRows:    g.MatchedRowCount(),
		UnmatchedRows:  g.UnmatchedRowCount(),
		MatchedFile:    matchedFile,
		UnmatchedFiles: unmatchedFiles,
	}
	if summary.UnmatchedFiles == nil {
		summary.UnmatchedFiles = []string{}
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		if err := r.JSON(summary); err != nil {
			return err
		}
	case output.ModeMarkdown:
		runMarkdown(r, g, summary)
	default:
		runText(r, g, summary)
	}

	// Partial unmatched-export failures were already reported per file;
	// still surface them in the exit status.
	return exportErr
}

// runText renders the run report in styled text format.
func runText(r *output.Renderer, g *analyzer.Grouping, s runSummary) {
	r.Header(1, fmt.Sprintf("Grouped by %q", s.Column))

	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Group", "Rows"})
	for _, key := range g.Keys {
		t.AppendRow(table.Row{key, len(g.Matched[key])})
	}
	t.Render()

	r.Success(fmt.Sprintf("%d files loaded, %d groups, %d matched rows, %d unmatched rows",
		s.FilesLoaded, s.Groups, s.MatchedRows, s.UnmatchedRows))
	if s.MatchedFile != "" {
		r.Muted("Matched export: " + s.MatchedFile)
	}
	if len(s.UnmatchedFiles) > 0 {
		r.Muted("Unmatched exports: " + strings.Join(s.UnmatchedFiles, ", "))
	}
}

// runMarkdown renders the run report in markdown format.
func runMarkdown(r *output.Renderer, g *analyzer.Grouping, s runSummary) {
	r.Println(output.FormatHeader(1, fmt.Sprintf("Grouped by %q", s.Column)))
	r.Println("")

	r.Println("| Group | Rows |")
	r.Println("| --- | --- |")
	for _, key := range g.Keys {
		r.Printf("| %s | %d |\n", key, len(g.Matched[key]))
	}
	r.Println("")

	r.Println(output.FormatKeyValue("Files Loaded", strconv.Itoa(s.FilesLoaded)))
	r.Println(output.FormatKeyValue("Groups", strconv.Itoa(s.Groups)))
	r.Println(output.FormatKeyValue("Matched Rows", strconv.Itoa(s.MatchedRows)))
	r.Println(output.FormatKeyValue("Unmatched Rows", strconv.Itoa(s.UnmatchedRows)))
	if s.MatchedFile != "" {
		r.Println(output.FormatKeyValue("Matched Export", s.MatchedFile))
	}
	if len(s.UnmatchedFiles) > 0 {
		r.Println(output.FormatKeyValue("Unmatched Exports", strings.Join(s.UnmatchedFiles, ", ")))
	}
}
