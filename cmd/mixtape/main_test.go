package main

import (
	"bytes"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	dsn := filepath.Join(dir, "cli.db")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_DSN", dsn)
	t.Setenv("BLOB_BACKEND", "disk")
	t.Setenv("UPLOADS_DIR", filepath.Join(dir, "uploads"))
	t.Setenv("SCRATCH_DIR", dir)
	t.Setenv("LOG_LEVEL", "error")
	return dsn
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "mixtape dev")
}

func TestMigrateCmd(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "Schema at version 1 (sqlite)")

	out, err = run(t, "migrate")
	require.NoError(t, err, "migrate is idempotent")
	assert.Contains(t, out, "version 1")
}

func TestMigrateRejectsBadConfig(t *testing.T) {
	setupEnv(t)
	t.Setenv("DB_DRIVER", "postgres")

	_, err := run(t, "migrate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_DRIVER")
}

func TestUserAddCmd(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "user", "add", "--email", "Owner@Example.com", "--name", "Owner")
	require.NoError(t, err)
	id, err := strconv.ParseInt(strings.TrimSpace(out), 10, 64)
	require.NoError(t, err, out)
	assert.Positive(t, id)

	again, err := run(t, "user", "add", "--email", "owner@example.com", "--name", "Renamed")
	require.NoError(t, err)
	assert.Equal(t, strings.TrimSpace(out), strings.TrimSpace(again), "same email keeps its id")

	list, err := run(t, "user", "list")
	require.NoError(t, err)
	assert.Contains(t, list, "owner@example.com")
	assert.Contains(t, list, "Renamed")
}

func TestUserAddRequiresEmail(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "user", "add", "--name", "Nobody")
	require.Error(t, err)
}
