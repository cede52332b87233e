package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rusenback/dockerconsole/internal/config"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestLoadConfigFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[grid]\ncount = 3\n\n[docker]\nhost = \"tcp://file:2375\"\n"), 0o644))

	cmd := testCommand(t, "--config", path, "--count", "6", "--metrics-addr", ":9187", "--no-history")
	cfg, err := loadConfig(cmd)
	require.NoError(t, err)

	assert.Equal(t, 6, cfg.Grid.Count)
	assert.Equal(t, "tcp://file:2375", cfg.Docker.Host, "unset flags keep file values")
	assert.Equal(t, ":9187", cfg.Metrics.Addr)
	assert.False(t, cfg.Storage.Enabled)
}

func TestLoadConfigRejectsInvalidFlags(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cmd := testCommand(t, "--count", "-1")
	_, err := loadConfig(cmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid settings")
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	versionCmd.Run(versionCmd, nil)
	assert.Equal(t, "dockerconsole version dev\n", out.String())
}

func TestConfigCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[docker]\nhost = \"tcp://file:2375\"\n"), 0o644))

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"config", "--config", path, "--count", "5", "--log-file", ""})
	require.NoError(t, root.Execute())

	cfg, err := config.Parse(out.String())
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Grid.Count)
	assert.Equal(t, "tcp://file:2375", cfg.Docker.Host)
	assert.Empty(t, cfg.Log.File, "an empty --log-file disables logging")
}
