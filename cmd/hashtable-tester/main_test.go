package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lockhash"
)

func TestLoadConfig_flags(t *testing.T) {
	cmd := newRootCommand()
	require.Nil(t, cmd.Flags().Parse([]string{"-t", "2", "-s", "100", "--kinds", "v2,striped", "--sync-reads", "--readers=3"}))

	cfg, err := loadConfig(cmd.Flags())
	require.Nil(t, err)
	assert.Equal(t, 2, cfg.Threads)
	assert.Equal(t, 100, cfg.Size)
	assert.Equal(t, []string{"v2", "striped"}, cfg.Kinds)
	assert.True(t, cfg.SyncReads)
	assert.Equal(t, 3, cfg.Readers)
	assert.Equal(t, lockhash.DefaultConfig().Capacity, cfg.Capacity)
}

func TestLoadConfig_fileThenFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tester.toml")
	require.Nil(t, os.WriteFile(path, []byte("threads = 6\nsize = 10\nhash = \"murmur3\"\n"), 0o644))

	cmd := newRootCommand()
	require.Nil(t, cmd.Flags().Parse([]string{"--config", path, "-s", "20"}))
	cfg, err := loadConfig(cmd.Flags())
	require.Nil(t, err)
	assert.Equal(t, 6, cfg.Threads)
	assert.Equal(t, 20, cfg.Size)
	assert.Equal(t, "murmur3", cfg.Hash)
}

func TestLoadConfig_invalid(t *testing.T) {
	cmd := newRootCommand()
	require.Nil(t, cmd.Flags().Parse([]string{"--kinds", "v9"}))
	_, err := loadConfig(cmd.Flags())
	assert.True(t, errors.Is(err, lockhash.ErrInvalidConfig))

	cmd = newRootCommand()
	require.Nil(t, cmd.Flags().Parse([]string{"--config", filepath.Join(t.TempDir(), "absent.toml")}))
	_, err = loadConfig(cmd.Flags())
	assert.True(t, errors.Is(err, lockhash.ErrConfigNotFound))
}

func TestRun(t *testing.T) {
	cfg := lockhash.DefaultConfig()
	cfg.Threads = 2
	cfg.Size = 200
	cfg.Seed = 5
	cfg.Kinds = []string{"base", "v1", "v2", "striped"}
	assert.Nil(t, run(context.Background(), cfg, true))
}
