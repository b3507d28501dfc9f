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

// NewSearchCommand creates the search command.
func NewSearchCommand() *cobra.Command {
	var where []string

	cmd := &cobra.Command{
		Use:   "search [value]",
		Short: "Search for rows across all CSV files",
		Long: `Search every CSV file in the input directory for matching rows.

With a value argument, a row matches when any of its cells contains the
value (case-insensitive). With --where column=value filters, a row matches
when every filtered column its file has contains the given value. Each
matching row is reported with a trailing source_file column naming the
file it came from.

Output adapts to environment:
  - Terminal: Styled, colored output
  - Piped/Scripted: Markdown format (agent-friendly)

Use --output to override: auto, text, markdown, json`,
		Example: `  # Find every row mentioning "acme" anywhere
  csvgroup search acme --input-dir ./data

  # Find rows where the name column contains "john"
  csvgroup search --where name=john

  # Combine filters; both must hold
  csvgroup search --where name=john --where city=berlin --output json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, args, where)
		},
	}

	cmd.Flags().StringArrayVar(&where, "where", nil, "Column filter as column=value (repeatable)")

	return cmd
}

// searchRow is the JSON shape of one search hit.
type searchRow map[string]string

func runSearch(cmd *cobra.Command, args []string, where []string) error {
	cfg := config.Current()
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat))

	value := ""
	if len(args) > 0 {
		value = args[0]
	}
	filters, err := parseFilters(where)
	if err != nil {
		return err
	}
	if value == "" && len(filters) == 0 {
		return fmt.Errorf("a search value or at least one --where filter is required")
	}

	a := analyzer.New(analyzer.WithDiagnostics(cmd.ErrOrStderr()))
	loaded, err := a.LoadDirectory(cfg.InputDir)
	if err != nil {
		return err
	}
	if loaded == 0 {
		return fmt.Errorf("no CSV files loaded")
	}

	res, err := a.Search(value, filters)
	if err != nil {
		return err
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return searchJSON(r, res)
	case output.ModeMarkdown:
		searchMarkdown(r, res)
		return nil
	default:
		searchText(r, res)
		return nil
	}
}

// parseFilters splits repeated column=value flags into a filter map.
func parseFilters(where []string) (map[string]string, error) {
	if len(where) == 0 {
		return nil, nil
	}
	filters := make(map[string]string, len(where))
	for _, w := range where {
		col, val, ok := strings.Cut(w, "=")
		if !ok || col == "" {
			return nil, fmt.Errorf("invalid --where filter %q (want column=value)", w)
		}
		filters[col] = val
	}
	return filters, nil
}

// searchText renders search hits in styled text format.
func searchText(r *output.Renderer, res *analyzer.SearchResult) {
	r.Header(1, fmt.Sprintf("Matches (%d rows)", len(res.Rows)))
	if len(res.Rows) == 0 {
		r.Muted("No matching rows")
		return
	}

	header := make(table.Row, 0, len(res.Columns)+1)
	for _, c := range res.Columns {
		header = append(header, c)
	}
	header = append(header, analyzer.SourceColumn)

	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(header)
	for _, sr := range res.Rows {
		row := make(table.Row, 0, len(res.Columns)+1)
		for _, c := range res.Columns {
			row = append(row, sr.Row[c])
		}
		row = append(row, sr.Source)
		t.AppendRow(row)
	}
	t.Render()
}

// searchMarkdown renders search hits in markdown format.
func searchMarkdown(r *output.Renderer, res *analyzer.SearchResult) {
	r.Println(output.FormatHeader(1, fmt.Sprintf("Matches (%d rows)", len(res.Rows))))
	r.Println("")
	if len(res.Rows) == 0 {
		r.Println("No matching rows")
		return
	}

	cols := append(append([]string(nil), res.Columns...), analyzer.SourceColumn)
	r.Printf("| %s |\n", strings.Join(cols, " | "))
	seps := make([]string, len(cols))
	for i := range seps {
		seps[i] = "---"
	}
	r.Printf("| %s |\n", strings.Join(seps, " | "))
	for _, sr := range res.Rows {
		values := make([]string, 0, len(cols))
		for _, c := range res.Columns {
			values = append(values, sr.Row[c])
		}
		values = append(values, sr.Source)
		r.Printf("| %s |\n", strings.Join(values, " | "))
	}
}

// searchJSON renders search hits as a JSON array of row objects.
func searchJSON(r *output.Renderer, res *analyzer.SearchResult) error {
	rows := make([]searchRow, 0, len(res.Rows))
	for _, sr := range res.Rows {
		row := make(searchRow, len(sr.Row)+1)
		for c, v := range sr.Row {
			row[c] = v
		}
		row[analyzer.SourceColumn] = sr.Source
		rows = append(rows, row)
	}
	return r.JSON(rows)
}
