package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Frame sources.
const (
	FrameSourceClient = "client"
	FrameSourceServer = "server"
)

// Storage drivers. Kept in sync with the storage package.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Game      GameConfig      `yaml:"game"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	MCP       MCPConfig       `yaml:"mcp"`
}

type ServerConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	StaticDir string `yaml:"static_dir"`
}

type StorageConfig struct {
	Driver   string         `yaml:"driver"`
	Path     string         `yaml:"path"`
	Postgres PostgresConfig `yaml:"postgres"`
}

type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

type GameConfig struct {
	Slot               string        `yaml:"slot"`
	Timezone           string        `yaml:"timezone"`
	FrameSource        string        `yaml:"frame_source"`
	FrameRate          int           `yaml:"frame_rate"`
	ResetConfirmWindow time.Duration `yaml:"reset_confirm_window"`
	StreakMode         string        `yaml:"streak_mode"`
	Seed               uint64        `yaml:"seed"`
	Rules              RulesConfig   `yaml:"rules"`
}

// RulesConfig overrides individual tuning constants. Zero keeps the default,
// except LevelStep where an explicit 0 turns the level bonus off.
type RulesConfig struct {
	FatigueSoftcap float64  `yaml:"fatigue_softcap"`
	FatigueMax     float64  `yaml:"fatigue_max"`
	RecoveryFactor float64  `yaml:"recovery_factor"`
	BaseMultiplier float64  `yaml:"base_multiplier"`
	LevelStep      *float64 `yaml:"level_step"`
	StreakBonusMax int      `yaml:"streak_bonus_max"`
	TrainingLogCap int      `yaml:"training_log_cap"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type MCPConfig struct {
	Enabled bool `yaml:"enabled"`
}

// DSN returns a PostgreSQL connection string.
func (d PostgresConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// DSN returns the connection string for the configured driver.
func (s StorageConfig) DSN() string {
	switch s.Driver {
	case DriverPostgres:
		return s.Postgres.DSN()
	case DriverSQLite:
		return s.Path
	}
	return ""
}

// Location resolves the game timezone. Empty means the host's local zone.
func (g GameConfig) Location() (*time.Location, error) {
	if g.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(g.Timezone)
}

// Default returns a config that runs a local SQLite-backed server.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Host: "127.0.0.1", Port: 8080},
		Storage: StorageConfig{
			Driver: DriverSQLite,
			Path:   "data/muscle-avatar.db",
		},
		Tailscale: TailscaleConfig{Hostname: "muscle-avatar", StateDir: "tsnet-state"},
		Game: GameConfig{
			Slot:               "default",
			FrameSource:        FrameSourceClient,
			FrameRate:          60,
			ResetConfirmWindow: 3 * time.Second,
			StreakMode:         "trained_day",
		},
		Metrics: MetricsConfig{Path: "/metrics"},
	}
}

// Load reads config from a YAML file on top of Default, then applies
// environment variable overrides. Env vars use the prefix MUSCLEAVATAR_ and
// underscore-separated paths:
//
//	MUSCLEAVATAR_SERVER_HOST, MUSCLEAVATAR_SERVER_PORT, MUSCLEAVATAR_SERVER_STATIC_DIR,
//	MUSCLEAVATAR_STORAGE_DRIVER, MUSCLEAVATAR_STORAGE_PATH,
//	MUSCLEAVATAR_DB_HOST, MUSCLEAVATAR_DB_PORT, MUSCLEAVATAR_DB_NAME,
//	MUSCLEAVATAR_DB_USER, MUSCLEAVATAR_DB_PASSWORD, MUSCLEAVATAR_DB_SSLMODE,
//	MUSCLEAVATAR_AUTH_API_KEY, MUSCLEAVATAR_TAILSCALE_ENABLED,
//	MUSCLEAVATAR_GAME_SLOT, MUSCLEAVATAR_GAME_TIMEZONE,
//	MUSCLEAVATAR_GAME_FRAME_SOURCE, MUSCLEAVATAR_GAME_STREAK_MODE,
//	MUSCLEAVATAR_METRICS_ENABLED, MUSCLEAVATAR_MCP_ENABLED
//
// An empty path skips the file and uses defaults plus environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MUSCLEAVATAR_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("MUSCLEAVATAR_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("MUSCLEAVATAR_SERVER_STATIC_DIR"); v != "" {
		cfg.Server.StaticDir = v
	}
	if v := os.Getenv("MUSCLEAVATAR_STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := os.Getenv("MUSCLEAVATAR_STORAGE_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("MUSCLEAVATAR_DB_HOST"); v != "" {
		cfg.Storage.Postgres.Host = v
	}
	if v := os.Getenv("MUSCLEAVATAR_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Storage.Postgres.Port = port
		}
	}
	if v := os.Getenv("MUSCLEAVATAR_DB_NAME"); v != "" {
		cfg.Storage.Postgres.Name = v
	}
	if v := os.Getenv("MUSCLEAVATAR_DB_USER"); v != "" {
		cfg.Storage.Postgres.User = v
	}
	if v := os.Getenv("MUSCLEAVATAR_DB_PASSWORD"); v != "" {
		cfg.Storage.Postgres.Password = v
	}
	if v := os.Getenv("MUSCLEAVATAR_DB_SSLMODE"); v != "" {
		cfg.Storage.Postgres.SSLMode = v
	}
	if v := os.Getenv("MUSCLEAVATAR_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("MUSCLEAVATAR_TAILSCALE_ENABLED"); v != "" {
		cfg.Tailscale.Enabled = parseBool(v)
	}
	if v := os.Getenv("MUSCLEAVATAR_GAME_SLOT"); v != "" {
		cfg.Game.Slot = v
	}
	if v := os.Getenv("MUSCLEAVATAR_GAME_TIMEZONE"); v != "" {
		cfg.Game.Timezone = v
	}
	if v := os.Getenv("MUSCLEAVATAR_GAME_FRAME_SOURCE"); v != "" {
		cfg.Game.FrameSource = v
	}
	if v := os.Getenv("MUSCLEAVATAR_GAME_STREAK_MODE"); v != "" {
		cfg.Game.StreakMode = v
	}
	if v := os.Getenv("MUSCLEAVATAR_METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = parseBool(v)
	}
	if v := os.Getenv("MUSCLEAVATAR_MCP_ENABLED"); v != "" {
		cfg.MCP.Enabled = parseBool(v)
	}
}

func parseBool(v string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	return err == nil && b
}

func (c *Config) validate() error {
	if c.Server.Port == 0 && !c.Tailscale.Enabled {
		return fmt.Errorf("server.port is required")
	}
	switch c.Storage.Driver {
	case DriverSQLite:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for sqlite")
		}
	case DriverPostgres:
		pg := c.Storage.Postgres
		if pg.Host == "" {
			return fmt.Errorf("storage.postgres.host is required")
		}
		if pg.Port == 0 {
			return fmt.Errorf("storage.postgres.port is required")
		}
		if pg.Name == "" {
			return fmt.Errorf("storage.postgres.name is required")
		}
		if pg.User == "" {
			return fmt.Errorf("storage.postgres.user is required")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("storage.driver %q is not one of sqlite, postgres, memory", c.Storage.Driver)
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}
	if c.Game.Slot == "" {
		return fmt.Errorf("game.slot is required")
	}
	if _, err := c.Game.Location(); err != nil {
		return fmt.Errorf("game.timezone: %w", err)
	}
	switch c.Game.FrameSource {
	case FrameSourceClient, FrameSourceServer:
	default:
		return fmt.Errorf("game.frame_source %q is not one of client, server", c.Game.FrameSource)
	}
	if c.Game.FrameSource == FrameSourceServer && (c.Game.FrameRate < 1 || c.Game.FrameRate > 240) {
		return fmt.Errorf("game.frame_rate must be between 1 and 240")
	}
	switch c.Game.StreakMode {
	case "trained_day", "legacy":
	default:
		return fmt.Errorf("game.streak_mode %q is not one of trained_day, legacy", c.Game.StreakMode)
	}
	if c.Game.ResetConfirmWindow <= 0 {
		return fmt.Errorf("game.reset_confirm_window must be positive")
	}
	if ls := c.Game.Rules.LevelStep; ls != nil && *ls < 0 {
		return fmt.Errorf("game.rules.level_step must not be negative")
	}
	if c.Game.Rules.StreakBonusMax < 0 || c.Game.Rules.StreakBonusMax > 8 {
		return fmt.Errorf("game.rules.streak_bonus_max must be between 0 and 8")
	}
	return nil
}
