package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines application configuration.
type Config struct {
	DB    DBConfig    `yaml:"db"`
	Log   LogConfig   `yaml:"log"`
	Timer TimerConfig `yaml:"timer"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type TimerConfig struct {
	// TickInterval controls how often elapsed time is reported.
	TickInterval time.Duration `yaml:"tick_interval"`
	// FlushInterval bounds how often the running duration is persisted.
	FlushInterval time.Duration `yaml:"flush_interval"`
}

// UnmarshalYAML accepts duration strings like "10s" for the intervals.
// Absent keys keep the values already set, so file config layers over
// defaults.
func (t *TimerConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		TickInterval  string `yaml:"tick_interval"`
		FlushInterval string `yaml:"flush_interval"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if raw.TickInterval != "" {
		d, err := time.ParseDuration(raw.TickInterval)
		if err != nil {
			return fmt.Errorf("invalid tick_interval: %w", err)
		}
		t.TickInterval = d
	}
	if raw.FlushInterval != "" {
		d, err := time.ParseDuration(raw.FlushInterval)
		if err != nil {
			return fmt.Errorf("invalid flush_interval: %w", err)
		}
		t.FlushInterval = d
	}
	return nil
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Config{
		DB: DBConfig{
			Path: defaultDBPath(),
		},
		Log: LogConfig{
			Level: "info",
		},
		Timer: TimerConfig{
			TickInterval:  time.Second,
			FlushInterval: 5 * time.Second,
		},
	}

	if path := os.Getenv("CHRONO_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if dbPath := os.Getenv("CHRONO_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("CHRONO_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if flush := os.Getenv("CHRONO_FLUSH_INTERVAL"); flush != "" {
		seconds, err := strconv.Atoi(flush)
		if err != nil {
			return Config{}, fmt.Errorf("invalid CHRONO_FLUSH_INTERVAL: %w", err)
		}
		cfg.Timer.FlushInterval = time.Duration(seconds) * time.Second
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "chronotrack.db"
	}
	return filepath.Join(home, ".chronotrack", "chronotrack.db")
}
