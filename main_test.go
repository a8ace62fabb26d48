// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/chatai/internal/config"
)

func TestRun_InvalidConfigReturnsError(t *testing.T) {
	t.Setenv(config.EnvConfigHome, t.TempDir())
	t.Setenv(config.EnvBaseURL, "ftp://example.test")

	err := run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestOpenLog_LineModeWritesFile(t *testing.T) {
	prevOut, prevPrefix := log.Writer(), log.Prefix()
	t.Cleanup(func() {
		log.SetOutput(prevOut)
		log.SetPrefix(prevPrefix)
	})

	path := filepath.Join(t.TempDir(), "nested", "chatai.log")
	f, err := openLog(path, false)
	require.NoError(t, err)

	log.Printf("hello from test")
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello from test")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}
