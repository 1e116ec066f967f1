package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_BadConfigExitsNonZero(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{"-m", "carrier-pigeon"}, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "config:")
	assert.Contains(t, stdout.String(), "Build version")
}

func TestRun_StartupFailureExitsNonZero(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-f", filepath.Join(blocker, "cw.db")}, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "startup failed")
}
