//go:build cgo

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/structmerge/internal/fileset"
)

// execute runs the CLI with args and returns the exit status and stdout.
// Flag values persist on the package-level commands, so every flag is reset
// to its default first.
func execute(t *testing.T, args ...string) (int, string) {
	t.Helper()
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			require.NoError(t, sv.Replace(nil))
		} else {
			require.NoError(t, f.Value.Set(f.DefValue))
		}
		f.Changed = false
	}
	rootCmd.PersistentFlags().VisitAll(reset)
	for _, c := range rootCmd.Commands() {
		c.Flags().VisitAll(reset)
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	t.Cleanup(func() { rootCmd.SetOut(nil) })
	return run(args), out.String()
}

func fixture(scenario, name string) string {
	return filepath.Join("..", "..", "testdata", "merge", scenario, name)
}

func TestRootCommand(t *testing.T) {
	assert.Equal(t, "structmerge", rootCmd.Use)
	names := make([]string, 0, len(rootCmd.Commands()))
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"merge", "diff", "dirs", "nway", "parse", "serve-mcp", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestVersion(t *testing.T) {
	code, out := execute(t, "version")
	assert.Equal(t, 0, code)
	assert.Equal(t, "dev\n", out)
}

func TestMerge_Clean(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "cart.go")
	code, _ := execute(t, "merge",
		"--left", fixture("go", "left.go"),
		"--base", fixture("go", "base.go"),
		"--right", fixture("go", "right.go"),
		"--format", "source", "-o", dst)
	require.Equal(t, 0, code)

	merged, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Contains(t, string(merged), "func (c *Cart) Len() int")
	assert.Contains(t, string(merged), "func NewCart() *Cart")
	assert.Contains(t, string(merged), `if item == "" {`)
	assert.NotContains(t, string(merged), "<<<<<<<")
}

func TestMerge_Conflict(t *testing.T) {
	code, out := execute(t, "merge",
		"--left", fixture("go_conflict", "left.go"),
		"--base", fixture("go_conflict", "base.go"),
		"--right", fixture("go_conflict", "right.go"),
		"--format", "source")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "<<<<<<< left")
	assert.Contains(t, out, ">>>>>>> right")
}

func TestMerge_Errors(t *testing.T) {
	code, _ := execute(t, "merge", "--left", fixture("go", "left.go"))
	assert.Equal(t, 2, code, "--right is required")

	code, _ = execute(t, "merge",
		"--left", fixture("go", "left.go"),
		"--right", fixture("go", "right.go"),
		"--lang", "cobol")
	assert.Equal(t, 2, code)

	code, _ = execute(t, "merge",
		"--left", fixture("go", "left.go"),
		"--right", fixture("go", "right.go"),
		"--likelihood", "1.5")
	assert.Equal(t, 2, code)
}

func TestDiff(t *testing.T) {
	code, out := execute(t, "diff",
		"--left", fixture("py", "base.py"),
		"--right", fixture("py", "left.py"))
	require.Equal(t, 0, code)
	assert.Contains(t, out, "base.py <-> ")
	assert.Contains(t, out, "%")
}

func TestParse_TGF(t *testing.T) {
	code, out := execute(t, "parse", fixture("go", "base.go"), "--format", "tgf")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "\n#\n")
}

func TestNWay(t *testing.T) {
	code, out := execute(t, "nway",
		fixture("go_conflict", "left.go"),
		fixture("go_conflict", "right.go"),
		"--format", "source")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "<<<<<<< v1")
	assert.Contains(t, out, "======= v2")
}

func TestDirs(t *testing.T) {
	root := t.TempDir()
	for _, side := range []string{"left", "base", "right"} {
		src, err := os.ReadFile(fixture("go", side+".go"))
		require.NoError(t, err)
		dir := filepath.Join(root, side)
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "cart.go"), src, 0o644))
	}
	out := filepath.Join(root, "out")

	code, stdout := execute(t, "dirs",
		"--left", filepath.Join(root, "left"),
		"--base", filepath.Join(root, "base"),
		"--right", filepath.Join(root, "right"),
		"--out", out, "--json")
	require.Equal(t, 0, code)

	var report fileset.Report
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	require.Len(t, report.Files, 1)
	assert.Equal(t, fileset.StatusStructured, report.Files[0].Status)

	merged, err := os.ReadFile(filepath.Join(out, "cart.go"))
	require.NoError(t, err)
	assert.Contains(t, string(merged), "func NewCart() *Cart")
}
