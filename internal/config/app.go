package config

import (
	"strings"

	"github.com/caarlos0/env/v11"
)

// AppConfig is everything the bot binary reads from the environment.
type AppConfig struct {
	Server ServerConfig
	Bot    BotConfig
	Game   GameConfig
	Log    LogConfig
}

// LogConfig drives the global logger. LOG_FORMAT is "json" or "console".
// LOG_FILE, when set, gets a copy of every line and starts over once it
// reaches LOG_FILE_MAX_MB.
type LogConfig struct {
	Level       string `env:"LOG_LEVEL" envDefault:"info"`
	Format      string `env:"LOG_FORMAT" envDefault:"json"`
	SampleEvery uint32 `env:"LOG_SAMPLE_EVERY"`
	File        string `env:"LOG_FILE"`
	FileMaxMB   int    `env:"LOG_FILE_MAX_MB" envDefault:"50"`
}

func (c LogConfig) Console() bool {
	return strings.EqualFold(strings.TrimSpace(c.Format), "console")
}

// TestConfig points the database tests at a scratch Postgres. An empty DSN
// makes them skip.
type TestConfig struct {
	PostgresDSN   string `env:"TEST_POSTGRES_DSN"`
	MigrationsDir string `env:"TEST_MIGRATIONS_DIR"`
}

func LoadLog() (LogConfig, error) {
	var cfg LogConfig
	err := env.Parse(&cfg)
	return cfg, err
}

func LoadTest() (TestConfig, error) {
	var cfg TestConfig
	err := env.Parse(&cfg)
	return cfg, err
}

func LoadApp() (AppConfig, error) {
	var (
		cfg AppConfig
		err error
	)
	if cfg.Log, err = LoadLog(); err != nil {
		return AppConfig{}, err
	}
	if cfg.Server, err = LoadServer(); err != nil {
		return AppConfig{}, err
	}
	if cfg.Bot, err = LoadBot(); err != nil {
		return AppConfig{}, err
	}
	if cfg.Game, err = LoadGame(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}
