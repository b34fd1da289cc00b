package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, logger.LevelInfo, level)
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
log_level: debug
sample_count: 50
tick_interval: 40ms
`))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 50, cfg.SampleCount)
	assert.Equal(t, 40*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, Default().AnalysisSampleRate, cfg.AnalysisSampleRate)
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseErrors(t *testing.T) {
	for name, data := range map[string]string{
		"unknown_field":  "no_such_field: 1\n",
		"bad_level":      "log_level: loud\n",
		"zero_samples":   "sample_count: 0\n",
		"negative_tick":  "tick_interval: -1s\n",
		"low_rate":       "analysis_sample_rate: 10\n",
		"zero_window":    "offset_window: 0\n",
		"negative_shift": "max_offset: -1\n",
		"not_yaml":       "[",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	cfg := Default()
	cfg.Prompt = "hello"
	cfg.MetricsListenAddr = "127.0.0.1:9090"
	data, err := cfg.Bytes()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "avcompare.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
