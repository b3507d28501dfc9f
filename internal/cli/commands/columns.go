package commands

import (
	"fmt"
	"strings"

	"github.com/hartfield/csvgroup/internal/analyzer"
	"github.com/hartfield/csvgroup/internal/cli/config"
	"github.com/hartfield/csvgroup/internal/cli/output"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// NewColumnsCommand creates the columns command.
func NewColumnsCommand() *cobra.Command {
	var valuesColumn string

	cmd := &cobra.Command{
		Use:   "columns [files...]",
		Short: "Show the columns of each CSV file",
		Long: `Load CSV files and report each file's columns, plus the columns it is
missing relative to the union of all loaded files. Useful for picking a
grouping column before running the pipeline. No files are written.

With --values, report the values of one column instead, per file that
has it.

Output adapts to environment:
  - Terminal: Styled, colored output
  - Piped/Scripted: Markdown format (agent-friendly)

Use --output to override: auto, text, markdown, json`,
		Example: `  # Inspect every CSV in the input directory
  csvgroup columns --input-dir ./data

  # Inspect specific files as JSON
  csvgroup columns a.csv b.csv --output json

  # List every value of the category column, per file
  csvgroup columns --values category`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runColumns(cmd, args, valuesColumn)
		},
	}

	cmd.Flags().StringVar(&valuesColumn, "values", "", "Report the values of this column instead of the column lists")

	return cmd
}

// sourceColumns is the JSON shape of one file's column report.
type sourceColumns struct {
	Source  string   `json:"source"`
	Columns []string `json:"columns"`
	Missing []string `json:"missing"`
}

func runColumns(cmd *cobra.Command, args []string, valuesColumn string) error {
	cfg := config.Current()
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat))

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

	if valuesColumn != "" {
		return runColumnValues(r, a, valuesColumn)
	}

	missing := a.MissingColumns()
	report := make([]sourceColumns, 0, loaded)
	for _, t := range a.Tables() {
		sc := sourceColumns{
			Source:  t.Source,
			Columns: t.Columns,
			Missing: missing[t.Source],
		}
		if sc.Missing == nil {
			sc.Missing = []string{}
		}
		report = append(report, sc)
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(report)
	case output.ModeMarkdown:
		columnsMarkdown(r, report)
		return nil
	default:
		columnsText(r, report)
		return nil
	}
}

// runColumnValues reports the per-source values of a single column.
func runColumnValues(r *output.Renderer, a *analyzer.Analyzer, column string) error {
	values := a.ColumnValues(column)
	if len(values) == 0 {
		return fmt.Errorf("no loaded file has a column named %q", column)
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(values)
	case output.ModeMarkdown:
		r.Println(output.FormatHeader(1, fmt.Sprintf("Values of %q", column)))
		r.Println("")
		for _, t := range a.Tables() {
			if vals, ok := values[t.Source]; ok {
				r.Println(output.FormatKeyValue(t.Source, strings.Join(vals, ", ")))
			}
		}
		return nil
	default:
		r.Header(1, fmt.Sprintf("Values of %q", column))
		tw := table.NewWriter()
		tw.SetOutputMirror(r.Writer())
		tw.SetStyle(table.StyleLight)
		tw.AppendHeader(table.Row{"Source", "Values"})
		for _, t := range a.Tables() {
			if vals, ok := values[t.Source]; ok {
				tw.AppendRow(table.Row{t.Source, strings.Join(vals, ", ")})
			}
		}
		tw.Render()
		return nil
	}
}

// columnsText renders the column report in styled text format.
func columnsText(r *output.Renderer, report []sourceColumns) {
	r.Header(1, fmt.Sprintf("Columns (%d files)", len(report)))

	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Source", "Columns", "Missing"})
	for _, sc := range report {
		t.AppendRow(table.Row{sc.Source, strings.Join(sc.Columns, ", "), strings.Join(sc.Missing, ", ")})
	}
	t.Render()
}

// columnsMarkdown renders the column report in markdown format.
func columnsMarkdown(r *output.Renderer, report []sourceColumns) {
	r.Println(output.FormatHeader(1, fmt.Sprintf("Columns (%d files)", len(report))))
	r.Println("")

	for _, sc := range report {
		r.Println(output.FormatHeader(2, sc.Source))
		r.Println(output.FormatKeyValue("Columns", strings.Join(sc.Columns, ", ")))
		if len(sc.Missing) > 0 {
			r.Println(output.FormatKeyValue("Missing", strings.Join(sc.Missing, ", ")))
		}
		r.Println("")
	}
}
