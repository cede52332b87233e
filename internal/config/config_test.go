package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestDefaultLogFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	assert.Equal(t, filepath.Join(home, ".dockerconsole", "dockerconsole.log"), Default().Log.File)
	assert.Equal(t, "unix:///var/run/docker.sock", Default().Docker.Host)
	assert.Equal(t, 30*time.Second, Default().Docker.Timeout.Duration)
}

func TestEncode(t *testing.T) {
	cfg := Default()
	cfg.Grid.Count = 6
	cfg.Grid.PopIn = Duration{250 * time.Millisecond}
	cfg.Log.File = ""

	var buf bytes.Buffer
	require.NoError(t, cfg.Encode(&buf))
	assert.Contains(t, buf.String(), `pop_in = "250ms"`)

	decoded, err := Parse(buf.String())
	require.NoError(t, err)
	assert.Equal(t, cfg, decoded)
}

func TestParse(t *testing.T) {
	cfg, err := Parse(`
[docker]
host = "tcp://10.0.0.5:2376"
refresh = "5s"

[grid]
min_card_width = 24
count = 6
pop_in = "250ms"

[metrics]
addr = ":9187"

[log]
level = "debug"
`)
	require.NoError(t, err)

	assert.Equal(t, "tcp://10.0.0.5:2376", cfg.Docker.Host)
	assert.Equal(t, 5*time.Second, cfg.Docker.Refresh.Duration)
	assert.Equal(t, 30*time.Second, cfg.Docker.Timeout.Duration, "unset keys keep defaults")
	assert.Equal(t, 24, cfg.Grid.MinCardWidth)
	assert.Equal(t, 44, cfg.Grid.MaxCardWidth)
	assert.Equal(t, 6, cfg.Grid.Count)
	assert.Equal(t, 250*time.Millisecond, cfg.Grid.PopIn.Duration)
	assert.Equal(t, ":9187", cfg.Metrics.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Storage.Enabled)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"syntax", "[grid\n", "decode config"},
		{"bad_duration", "[docker]\nrefresh = \"soon\"", "decode config"},
		{"unknown_key", "[grid]\ncolumns = 3", "unknown config key"},
		{"min_width", "[grid]\nmin_card_width = 0", "min_card_width must be positive"},
		{"max_below_min", "[grid]\nmin_card_width = 40\nmax_card_width = 20", "below min_card_width"},
		{"negative_margin", "[grid]\nmargin_x = -1", "margins cannot be negative"},
		{"negative_count", "[grid]\ncount = -2", "cannot be negative"},
		{"zero_refresh", "[docker]\nrefresh = \"0s\"", "docker.refresh"},
		{"log_level", "[log]\nlevel = \"loud\"", "log.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[grid]\ncount = 3\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Grid.Count)

	_, err = Load(filepath.Join(dir, "missing.toml"))
	require.Error(t, err, "an explicit path must exist")
}

func TestLoadDefaultLocationMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
