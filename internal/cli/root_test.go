package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/hartfield/csvgroup/internal/cli/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupInputDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.csv"),
		[]byte("id,category\n1,x\n2,y\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.csv"),
		[]byte("id,tag\n3,z\n"), 0644))
	return dir
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	config.ResetConfig()

	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd()

	assert.Equal(t, "csvgroup", cmd.Use)
	for _, flag := range []string{"config", "input-dir", "output-dir", "prefix", "column", "output", "verbose"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestRun_EndToEnd(t *testing.T) {
	in := setupInputDir(t)
	out := filepath.Join(t.TempDir(), "exports")

	stdout, _, err := execute(t,
		"run", "--input-dir", in, "--output-dir", out,
		"--column", "category", "--prefix", "grouped", "--output", "json")
	require.NoError(t, err)

	var summary struct {
		Column         string   `json:"column"`
		FilesLoaded    int      `json:"files_loaded"`
		Groups         int      `json:"groups"`
		MatchedRows    int      `json:"matched_rows"`
		UnmatchedRows  int      `json:"unmatched_rows"`
		MatchedFile    string   `json:"matched_file"`
		UnmatchedFiles []string `json:"unmatched_files"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &summary))

	assert.Equal(t, "category", summary.Column)
	assert.Equal(t, 2, summary.FilesLoaded)
	assert.Equal(t, 2, summary.Groups)
	assert.Equal(t, 2, summary.MatchedRows)
	assert.Equal(t, 1, summary.UnmatchedRows)

	combined, err := os.ReadFile(filepath.Join(out, "grouped_combined.csv"))
	require.NoError(t, err)
	assert.Equal(t, "id,category,source_file\n1,x,a.csv\n2,y,a.csv\n", string(combined))

	unmatched, err := os.ReadFile(filepath.Join(out, "grouped_b.csv"))
	require.NoError(t, err)
	assert.Equal(t, "id,tag\n3,z\n", string(unmatched))
}

func TestRun_FileArguments(t *testing.T) {
	in := setupInputDir(t)
	out := filepath.Join(t.TempDir(), "exports")

	_, _, err := execute(t,
		"run", filepath.Join(in, "a.csv"),
		"--output-dir", out, "-c", "category", "--prefix", "grouped", "-o", "json")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(out, "grouped_combined.csv"))
	assert.NoError(t, err)
}

func TestRun_RequiresColumn(t *testing.T) {
	in := setupInputDir(t)

	_, _, err := execute(t, "run", "--input-dir", in, "-o", "json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "grouping column")
}

func TestRun_MissingInputDir(t *testing.T) {
	_, _, err := execute(t,
		"run", "--input-dir", filepath.Join(t.TempDir(), "missing"),
		"-c", "category", "-o", "json")
	require.Error(t, err)
}

func TestRun_SkipsMalformedFile(t *testing.T) {
	in := setupInputDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(in, "broken.csv"),
		[]byte("id,category\n1\n"), 0644))
	out := filepath.Join(t.TempDir(), "exports")

	stdout, stderr, err := execute(t,
		"run", "--input-dir", in, "--output-dir", out,
		"-c", "category", "-o", "json")
	require.NoError(t, err, "one malformed file must not fail the run")
	assert.Contains(t, stderr, "broken.csv")

	var summary struct {
		FilesLoaded int `json:"files_loaded"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &summary))
	assert.Equal(t, 2, summary.FilesLoaded)
}

func TestColumns_EndToEnd(t *testing.T) {
	in := setupInputDir(t)

	stdout, _, err := execute(t, "columns", "--input-dir", in, "-o", "json")
	require.NoError(t, err)

	var report []struct {
		Source  string   `json:"source"`
		Columns []string `json:"columns"`
		Missing []string `json:"missing"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	require.Len(t, report, 2)

	assert.Equal(t, "a.csv", report[0].Source)
	assert.Equal(t, []string{"id", "category"}, report[0].Columns)
	assert.Equal(t, []string{"tag"}, report[0].Missing)
	assert.Equal(t, "b.csv", report[1].Source)
	assert.Equal(t, []string{"category"}, report[1].Missing)
}

func TestColumns_Markdown(t *testing.T) {
	in := setupInputDir(t)

	stdout, _, err := execute(t, "columns", "--input-dir", in, "-o", "markdown")
	require.NoError(t, err)
	assert.Contains(t, stdout, "## a.csv")
	assert.Contains(t, stdout, "**Columns:** id, category")
}

func TestColumns_Values(t *testing.T) {
	in := setupInputDir(t)

	stdout, _, err := execute(t, "columns", "--input-dir", in, "--values", "category", "-o", "json")
	require.NoError(t, err)

	var values map[string][]string
	require.NoError(t, json.Unmarshal([]byte(stdout), &values))
	assert.Equal(t, map[string][]string{"a.csv": {"x", "y"}}, values)

	_, _, err = execute(t, "columns", "--input-dir", in, "--values", "nonexistent", "-o", "json")
	require.Error(t, err)
}

func TestSearch_EndToEnd(t *testing.T) {
	in := setupInputDir(t)

	stdout, _, err := execute(t, "search", "x", "--input-dir", in, "-o", "json")
	require.NoError(t, err)

	var rows []map[string]string
	require.NoError(t, json.Unmarshal([]byte(stdout), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "1", rows[0]["id"])
	assert.Equal(t, "x", rows[0]["category"])
	assert.Equal(t, "a.csv", rows[0]["source_file"])
}

func TestSearch_Where(t *testing.T) {
	in := setupInputDir(t)

	stdout, _, err := execute(t, "search", "--where", "tag=z", "--input-dir", in, "-o", "json")
	require.NoError(t, err)

	var rows []map[string]string
	require.NoError(t, json.Unmarshal([]byte(stdout), &rows))

	// b.csv's row matches the tag filter; a.csv has no tag column, so the
	// filter is ignored there and both of its rows pass.
	require.Len(t, rows, 3)
	sources := []string{rows[0]["source_file"], rows[1]["source_file"], rows[2]["source_file"]}
	assert.Equal(t, []string{"a.csv", "a.csv", "b.csv"}, sources)
}

func TestSearch_RequiresQuery(t *testing.T) {
	in := setupInputDir(t)

	_, _, err := execute(t, "search", "--input-dir", in, "-o", "json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search value")
}

func TestVersion(t *testing.T) {
	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "csvgroup v")
}

func TestConfigFileFlow(t *testing.T) {
	in := setupInputDir(t)
	out := filepath.Join(t.TempDir(), "exports")

	cfgPath := filepath.Join(t.TempDir(), "csvgroup.yaml")
	cfgContent := "input_dir: " + in + "\noutput_dir: " + out + "\ngroup_by: category\noutput: json\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfgContent), 0644))

	_, _, err := execute(t, "run", "--config", cfgPath)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(out, "grouped_combined.csv"))
	assert.NoError(t, err)
}
