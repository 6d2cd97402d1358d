/*
Package config loads runtime configuration for the server and agent
binaries.

PURPOSE:
  Centralizes every tunable in one place with a clear precedence:

    command-line flag > environment > config file > default

  Backed by viper: an optional TOML file (heartbeat.toml in the working
  directory, or the path in HEARTBEAT_CONFIG), HEARTBEAT_-prefixed
  environment variables, and hard defaults for everything.

LEGACY ENVIRONMENT CONTRACT:
  Existing agent deployments configure themselves with bare variable
  names (SERVER_URL, BEARER_TOKEN, DEVICE_ID, TIMEZONE). Those still
  work and win over the file; BEARER_TOKEN feeds both the agent and the
  server-side expected token.

KEYS:
  server.addr          Listen address (default ":8000")
  server.db_path       SQLite database path (default "heartbeat.db")
  server.bearer_token  Token expected on /api routes
  server.cors_origins  Allowed browser origins (default: any)

  agent.server_url     Tracker base URL (default "http://localhost:8000")
  agent.bearer_token   Token sent with each heartbeat
  agent.device_id      Device identifier (default: short hostname)
  agent.timezone       Reported timezone (default "UTC")
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// ServerConfig configures the tracker server.
type ServerConfig struct {
	Addr        string
	DBPath      string
	BearerToken string
	CORSOrigins []string
}

// AgentConfig configures the heartbeat agent.
type AgentConfig struct {
	ServerURL   string
	BearerToken string
	DeviceID    string
	Timezone    string
}

// Config is the full runtime configuration.
type Config struct {
	Server ServerConfig
	Agent  AgentConfig
}

// Load reads configuration from file, environment and defaults.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.db_path", "heartbeat.db")
	v.SetDefault("server.bearer_token", "your-secret-token")
	v.SetDefault("server.cors_origins", []string{})

	v.SetDefault("agent.server_url", "http://localhost:8000")
	v.SetDefault("agent.bearer_token", "")
	v.SetDefault("agent.device_id", defaultDeviceID())
	v.SetDefault("agent.timezone", "UTC")

	v.SetEnvPrefix("HEARTBEAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := os.Getenv("HEARTBEAT_CONFIG"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("heartbeat")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Addr:        v.GetString("server.addr"),
			DBPath:      v.GetString("server.db_path"),
			BearerToken: v.GetString("server.bearer_token"),
			CORSOrigins: v.GetStringSlice("server.cors_origins"),
		},
		Agent: AgentConfig{
			ServerURL:   v.GetString("agent.server_url"),
			BearerToken: v.GetString("agent.bearer_token"),
			DeviceID:    v.GetString("agent.device_id"),
			Timezone:    v.GetString("agent.timezone"),
		},
	}
	applyLegacyEnv(cfg)

	return cfg, nil
}

// applyLegacyEnv layers the unprefixed variable names used by existing
// deployments on top of whatever the file and prefixed env produced.
func applyLegacyEnv(cfg *Config) {
	if v := os.Getenv("SERVER_URL"); v != "" {
		cfg.Agent.ServerURL = v
	}
	if v := os.Getenv("BEARER_TOKEN"); v != "" {
		cfg.Agent.BearerToken = v
		cfg.Server.BearerToken = v
	}
	if v := os.Getenv("DEVICE_ID"); v != "" {
		cfg.Agent.DeviceID = v
	}
	if v := os.Getenv("TIMEZONE"); v != "" {
		cfg.Agent.Timezone = v
	}
}

// defaultDeviceID is the short hostname: "LAPTOP-01.local" reports as
// "LAPTOP-01".
func defaultDeviceID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "UNKNOWN"
	}
	if i := strings.IndexByte(host, '.'); i > 0 {
		host = host[:i]
	}
	return host
}
