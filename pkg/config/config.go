// Package config describes the settings shared by the command line tools.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"
	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel string `yaml:"log_level"`

	// SampleCount is the amount of envelope points.
	SampleCount int `yaml:"sample_count"`

	// TickInterval is the period of the drift correction loop.
	TickInterval time.Duration `yaml:"tick_interval"`

	AnalysisSampleRate uint    `yaml:"analysis_sample_rate"`
	OffsetWindow       float64 `yaml:"offset_window"` // seconds
	MaxOffset          float64 `yaml:"max_offset"`    // seconds

	Prompt            string `yaml:"prompt"`
	MetricsListenAddr string `yaml:"metrics_listen_addr"`
}

func Default() Config {
	return Config{
		LogLevel:           logger.LevelInfo.String(),
		SampleCount:        200,
		TickInterval:       16 * time.Millisecond,
		AnalysisSampleRate: 16000,
		OffsetWindow:       30,
		MaxOffset:          10,
		Prompt:             "Describe the isolated audio track: what is audible and how clean the isolation is.",
	}
}

// Load reads a YAML file on top of Default. Unknown keys are an error.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("unable to read the config file '%s': %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("unable to load the config file '%s': %w", path, err)
	}
	return cfg, nil
}

func Parse(data []byte) (Config, error) {
	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("unable to parse YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (cfg Config) Validate() error {
	if _, err := cfg.Level(); err != nil {
		return err
	}
	if cfg.SampleCount < 1 {
		return fmt.Errorf("sample_count must be positive, got %d", cfg.SampleCount)
	}
	if cfg.TickInterval <= 0 {
		return fmt.Errorf("tick_interval must be positive, got %v", cfg.TickInterval)
	}
	if cfg.AnalysisSampleRate < 1000 {
		return fmt.Errorf("analysis_sample_rate must be at least 1000, got %d", cfg.AnalysisSampleRate)
	}
	if cfg.OffsetWindow <= 0 {
		return fmt.Errorf("offset_window must be positive, got %v", cfg.OffsetWindow)
	}
	if cfg.MaxOffset < 0 {
		return fmt.Errorf("max_offset cannot be negative, got %v", cfg.MaxOffset)
	}
	return nil
}

func (cfg Config) Level() (logger.Level, error) {
	var level logger.Level
	if err := level.Set(cfg.LogLevel); err != nil {
		return logger.LevelUndefined, fmt.Errorf("invalid log_level '%s': %w", cfg.LogLevel, err)
	}
	return level, nil
}

func (cfg Config) Bytes() ([]byte, error) {
	return yaml.Marshal(cfg)
}
