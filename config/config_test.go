package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/farajallah/heartbeat/config"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// clearEnv neutralizes every variable Load consults, so tests see a
// clean environment regardless of the machine they run on. Empty values
// count as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"SERVER_URL", "BEARER_TOKEN", "DEVICE_ID", "TIMEZONE", "HEARTBEAT_CONFIG"} {
		t.Setenv(key, "")
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "heartbeat.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

// =============================================================================
// DEFAULTS
// =============================================================================

func TestLoad_Defaults(t *testing.T) {
	// GIVEN: No environment and no config file
	// WHEN: Loading configuration
	// THEN: Every key falls back to its documented default

	clearEnv(t)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Addr != ":8000" {
		t.Errorf("Expected :8000, got %q", cfg.Server.Addr)
	}
	if cfg.Server.DBPath != "heartbeat.db" {
		t.Errorf("Expected heartbeat.db, got %q", cfg.Server.DBPath)
	}
	if cfg.Server.BearerToken != "your-secret-token" {
		t.Errorf("Expected the default token, got %q", cfg.Server.BearerToken)
	}
	if len(cfg.Server.CORSOrigins) != 0 {
		t.Errorf("Expected no CORS origins, got %v", cfg.Server.CORSOrigins)
	}

	if cfg.Agent.ServerURL != "http://localhost:8000" {
		t.Errorf("Expected the local server URL, got %q", cfg.Agent.ServerURL)
	}
	if cfg.Agent.Timezone != "UTC" {
		t.Errorf("Expected UTC, got %q", cfg.Agent.Timezone)
	}
	if cfg.Agent.DeviceID == "" {
		t.Error("Expected a hostname-derived device ID")
	}
	if strings.Contains(cfg.Agent.DeviceID, ".") {
		t.Errorf("Expected the short hostname, got %q", cfg.Agent.DeviceID)
	}
}

// =============================================================================
// ENVIRONMENT LAYERS
// =============================================================================

func TestLoad_LegacyEnvironment(t *testing.T) {
	// GIVEN: The bare variable names existing deployments use
	// WHEN: Loading configuration
	// THEN: They apply, and BEARER_TOKEN feeds both sides

	clearEnv(t)
	t.Setenv("SERVER_URL", "http://tracker:9000")
	t.Setenv("BEARER_TOKEN", "legacy-token")
	t.Setenv("DEVICE_ID", "KIOSK-7")
	t.Setenv("TIMEZONE", "Europe/Berlin")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Agent.ServerURL != "http://tracker:9000" {
		t.Errorf("Expected the legacy server URL, got %q", cfg.Agent.ServerURL)
	}
	if cfg.Agent.BearerToken != "legacy-token" || cfg.Server.BearerToken != "legacy-token" {
		t.Errorf("Expected the token on both sides, got agent %q server %q",
			cfg.Agent.BearerToken, cfg.Server.BearerToken)
	}
	if cfg.Agent.DeviceID != "KIOSK-7" {
		t.Errorf("Expected KIOSK-7, got %q", cfg.Agent.DeviceID)
	}
	if cfg.Agent.Timezone != "Europe/Berlin" {
		t.Errorf("Expected Europe/Berlin, got %q", cfg.Agent.Timezone)
	}
}

func TestLoad_PrefixedEnvironment(t *testing.T) {
	// GIVEN: HEARTBEAT_-prefixed variables
	// WHEN: Loading configuration
	// THEN: They map onto the dotted keys

	clearEnv(t)
	t.Setenv("HEARTBEAT_SERVER_ADDR", ":9100")
	t.Setenv("HEARTBEAT_AGENT_TIMEZONE", "Asia/Tokyo")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Addr != ":9100" {
		t.Errorf("Expected :9100, got %q", cfg.Server.Addr)
	}
	if cfg.Agent.Timezone != "Asia/Tokyo" {
		t.Errorf("Expected Asia/Tokyo, got %q", cfg.Agent.Timezone)
	}
}

// =============================================================================
// CONFIG FILE
// =============================================================================

func TestLoad_ExplicitConfigFile(t *testing.T) {
	// GIVEN: A TOML file named by HEARTBEAT_CONFIG
	// WHEN: Loading configuration
	// THEN: File values apply, defaults fill the rest

	clearEnv(t)
	path := writeConfigFile(t, `
[server]
addr = ":7000"
db_path = "nightly.db"

[agent]
server_url = "http://tracker.internal:8000"
timezone = "America/Chicago"
`)
	t.Setenv("HEARTBEAT_CONFIG", path)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Addr != ":7000" || cfg.Server.DBPath != "nightly.db" {
		t.Errorf("Expected file values, got %q %q", cfg.Server.Addr, cfg.Server.DBPath)
	}
	if cfg.Agent.ServerURL != "http://tracker.internal:8000" {
		t.Errorf("Expected the file server URL, got %q", cfg.Agent.ServerURL)
	}
	if cfg.Agent.Timezone != "America/Chicago" {
		t.Errorf("Expected America/Chicago, got %q", cfg.Agent.Timezone)
	}
	if cfg.Server.BearerToken != "your-secret-token" {
		t.Errorf("Expected the default token to survive, got %q", cfg.Server.BearerToken)
	}
}

func TestLoad_EnvironmentWinsOverFile(t *testing.T) {
	// GIVEN: A file value, a prefixed variable, and a legacy variable for
	//        the same key
	// WHEN: Loading configuration
	// THEN: legacy > prefixed > file

	clearEnv(t)
	path := writeConfigFile(t, `
[agent]
timezone = "America/Chicago"
`)
	t.Setenv("HEARTBEAT_CONFIG", path)
	t.Setenv("HEARTBEAT_AGENT_TIMEZONE", "Asia/Tokyo")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Agent.Timezone != "Asia/Tokyo" {
		t.Errorf("Expected the prefixed variable to win, got %q", cfg.Agent.Timezone)
	}

	t.Setenv("TIMEZONE", "Europe/Paris")
	cfg, err = config.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Agent.Timezone != "Europe/Paris" {
		t.Errorf("Expected the legacy variable to win, got %q", cfg.Agent.Timezone)
	}
}

func TestLoad_MissingExplicitFileFails(t *testing.T) {
	// GIVEN: HEARTBEAT_CONFIG pointing at a file that does not exist
	// WHEN: Loading configuration
	// THEN: Load fails instead of silently ignoring the file

	clearEnv(t)
	t.Setenv("HEARTBEAT_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))

	if _, err := config.Load(); err == nil {
		t.Fatal("Expected an error for the missing file")
	}
}
