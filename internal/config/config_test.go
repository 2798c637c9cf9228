package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8090" {
		t.Errorf("Port = %q, want 8090", cfg.Port)
	}
	if cfg.Mode != ModeDemo {
		t.Errorf("Mode = %q, want demo", cfg.Mode)
	}
	if cfg.MaxUploadBytes != 10<<20 {
		t.Errorf("MaxUploadBytes = %d, want %d", cfg.MaxUploadBytes, 10<<20)
	}
	if cfg.PreviewRows != 10 {
		t.Errorf("PreviewRows = %d, want 10", cfg.PreviewRows)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Errorf("SessionTTL = %v, want 24h", cfg.SessionTTL)
	}
	if cfg.SweepInterval != 5*time.Minute {
		t.Errorf("SweepInterval = %v, want 5m", cfg.SweepInterval)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SHEETGRAPH_PORT", "9000")
	t.Setenv("SHEETGRAPH_MODE", "Server")
	t.Setenv("SHEETGRAPH_SESSION_TTL", "90m")
	t.Setenv("SHEETGRAPH_PREVIEW_ROWS", "25")

	cfg, err := load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "9000" {
		t.Errorf("Port = %q, want 9000", cfg.Port)
	}
	if cfg.Mode != ModeServer {
		t.Errorf("Mode = %q, want server", cfg.Mode)
	}
	if cfg.SessionTTL != 90*time.Minute {
		t.Errorf("SessionTTL = %v, want 90m", cfg.SessionTTL)
	}
	if cfg.PreviewRows != 25 {
		t.Errorf("PreviewRows = %d, want 25", cfg.PreviewRows)
	}
}

func TestLoadNonPositiveFallsBack(t *testing.T) {
	t.Setenv("SHEETGRAPH_MAX_UPLOAD_BYTES", "0")
	t.Setenv("SHEETGRAPH_PREVIEW_ROWS", "-3")

	cfg, err := load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.MaxUploadBytes != 10<<20 {
		t.Errorf("MaxUploadBytes = %d, want default", cfg.MaxUploadBytes)
	}
	if cfg.PreviewRows != 10 {
		t.Errorf("PreviewRows = %d, want default", cfg.PreviewRows)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sheetgraph.yaml")
	body := strings.Join([]string{
		"port: \"7000\"",
		"mode: server",
		"db_path: /tmp/test.db",
		"session_secret: 0123456789abcdef0123456789abcdef",
		"stats_window: 30m",
	}, "\n")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SHEETGRAPH_PORT", "7001")

	cfg, err := load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "7001" {
		t.Errorf("env should win over file, Port = %q", cfg.Port)
	}
	if cfg.DBPath != "/tmp/test.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.StatsWindow != 30*time.Minute {
		t.Errorf("StatsWindow = %v, want 30m", cfg.StatsWindow)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	secret := strings.Repeat("s", 32)
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"demo", Config{Mode: ModeDemo}, false},
		{"server", Config{Mode: ModeServer, DBPath: "x.db", SessionSecret: secret}, false},
		{"server no secret", Config{Mode: ModeServer, DBPath: "x.db"}, true},
		{"server no db", Config{Mode: ModeServer, SessionSecret: secret}, true},
		{"short secret", Config{Mode: ModeDemo, SessionSecret: "short"}, true},
		{"unknown mode", Config{Mode: "cluster"}, true},
		{"admin half set", Config{Mode: ModeDemo, AdminUsername: "root"}, true},
		{"admin both set", Config{Mode: ModeDemo, AdminUsername: "root", AdminPassword: "pw"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
