package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootRequiresThreeArgs(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"data", "queries.txt"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	assert.Error(t, cmd.Execute())
}

func TestRootRunsSearch(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "data")
	require.NoError(t, os.Mkdir(data, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(data, "0.txt"), []byte("Pets\nthe cat sat\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(data, "1.txt"), []byte("Wild\nfoxes run\n"), 0o644))
	queries := filepath.Join(dir, "q.txt")
	require.NoError(t, os.WriteFile(queries, []byte("cat\n*xes*\n"), 0o644))
	out := filepath.Join(dir, "out.txt")

	var stdout bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{data, queries, out, "--window-size", "1"})
	require.NoError(t, cmd.Execute())

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "Pets\nWild\n", string(got))
	assert.Contains(t, stdout.String(), "Elapsed time:")
}
