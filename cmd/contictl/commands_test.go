package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestMigrateCommands(t *testing.T) {
	db := filepath.Join(t.TempDir(), "conti.db")

	out, err := run(t, "--db", db, "migrate", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "schema version 0")

	out, err = run(t, "--db", db, "migrate", "up")
	require.NoError(t, err)
	assert.NotContains(t, out, "schema version 0 ")
	assert.Contains(t, out, "dirty=false")

	_, err = run(t, "--db", db, "migrate", "down", "--steps", "0")
	assert.Error(t, err)
}

func TestMaintenanceAndRecompute(t *testing.T) {
	db := filepath.Join(t.TempDir(), "conti.db")

	out, err := run(t, "--db", db, "maintenance")
	require.NoError(t, err)
	assert.Contains(t, out, "maintenance complete")

	out, err = run(t, "--db", db, "recompute-balances")
	require.NoError(t, err)
	assert.Contains(t, out, "recomputed 0 cards")

	_, err = run(t, "--db", db, "recompute-balances", "--card", "missing")
	assert.Error(t, err)
}
