package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "expensetracker dev\n", out)
}

func TestMigrateCommand(t *testing.T) {
	db := filepath.Join(t.TempDir(), "data", "cli.db")

	out, err := execute(t, "migrate", "--status", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "no migrations applied")

	out, err = execute(t, "migrate", "--db", db, "--log-level", "error")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "schema version 2 (dirty=false)"), out)
}

func TestInvalidConfigFailsBeforeRunning(t *testing.T) {
	_, err := execute(t, "migrate", "--log-format", "xml", "--db", filepath.Join(t.TempDir(), "x.db"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown log format")
}

func TestWorkerRequiresAMQP(t *testing.T) {
	t.Setenv("AMQP_URL", "")
	_, err := execute(t, "worker", "--db", filepath.Join(t.TempDir(), "w.db"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AMQP_URL")
}
