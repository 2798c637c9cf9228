package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	ModeDemo   = "demo"
	ModeServer = "server"

	envPrefix  = "SHEETGRAPH_"
	envFileVar = envPrefix + "CONFIG"

	defaultPort           = "8090"
	defaultDBPath         = "sheetgraph.db"
	defaultSessionTTL     = 24 * time.Hour
	defaultMaxUploadBytes = 10 << 20 // 10MB
	defaultPreviewRows    = 10
	defaultSweepInterval  = 5 * time.Minute
	defaultStatsWindow    = time.Hour
)

type Config struct {
	Port string `koanf:"port"`

	// demo keeps everything in memory behind a fixed login allowlist;
	// server persists users, sessions and uploads in SQLite.
	Mode   string `koanf:"mode"`
	DBPath string `koanf:"db_path"`

	// Sessions
	SessionSecret string        `koanf:"session_secret"`
	SessionTTL    time.Duration `koanf:"session_ttl"`
	SweepInterval time.Duration `koanf:"sweep_interval"`

	// Upload limits
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`
	PreviewRows    int   `koanf:"preview_rows"`

	StatsWindow time.Duration `koanf:"stats_window"`

	// Seeded on startup in server mode when both are set.
	AdminUsername string `koanf:"admin_username"`
	AdminPassword string `koanf:"admin_password"`
}

// Load layers built-in defaults, the optional YAML file named by
// SHEETGRAPH_CONFIG, then SHEETGRAPH_* environment variables.
func Load() (Config, error) {
	return load(os.Getenv(envFileVar))
}

func load(path string) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]interface{}{
		"port":             defaultPort,
		"mode":             ModeDemo,
		"db_path":          defaultDBPath,
		"session_ttl":      defaultSessionTTL.String(),
		"sweep_interval":   defaultSweepInterval.String(),
		"max_upload_bytes": defaultMaxUploadBytes,
		"preview_rows":     defaultPreviewRows,
		"stats_window":     defaultStatsWindow.String(),
	}, "."), nil); err != nil {
		return Config{}, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return Config{}, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unable to decode config: %w", err)
	}

	cfg.Mode = strings.ToLower(strings.TrimSpace(cfg.Mode))
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = defaultSessionTTL
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = defaultSweepInterval
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	}
	if cfg.PreviewRows <= 0 {
		cfg.PreviewRows = defaultPreviewRows
	}
	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = defaultStatsWindow
	}

	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Mode {
	case ModeDemo:
	case ModeServer:
		if c.DBPath == "" {
			return fmt.Errorf("SHEETGRAPH_DB_PATH is required in server mode")
		}
		if c.SessionSecret == "" {
			return fmt.Errorf("SHEETGRAPH_SESSION_SECRET is required in server mode")
		}
	default:
		return fmt.Errorf("unknown mode %q (want %s or %s)", c.Mode, ModeDemo, ModeServer)
	}
	if c.SessionSecret != "" && len(c.SessionSecret) < 32 {
		return fmt.Errorf("SHEETGRAPH_SESSION_SECRET must be at least 32 bytes")
	}
	if (c.AdminUsername == "") != (c.AdminPassword == "") {
		return fmt.Errorf("SHEETGRAPH_ADMIN_USERNAME and SHEETGRAPH_ADMIN_PASSWORD must be set together")
	}
	return nil
}
