/*
Package configs is responsible for loading and parsing the application's configuration settings.

Values are resolved by viper from command-line flags, environment variables and built-in
defaults, in that order of precedence, and then validated field by field.
*/
package configs

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix is prepended to every environment variable read by the client.
	EnvPrefix = "HZCHAT"

	keyEnvironment       = "environment"
	keyServerURL         = "server-url"
	keyDataPath          = "data-path"
	keyLogFile           = "log-file"
	keyMaxAvatarBytes    = "max-avatar-bytes"
	keyReconnectInterval = "reconnect-interval"
	keyReadLimit         = "read-limit"
	keyEphemeral         = "ephemeral"
)

// AppConfig contains all configuration parameters required for the client to run.
type AppConfig struct {
	// General Settings
	Environment string

	// Channel Settings
	ServerURL         string
	ReconnectInterval time.Duration
	ReadLimit         int64

	// Identity Settings
	DataPath       string
	Ephemeral      bool
	MaxAvatarBytes int64

	// Logging Settings
	LogFile string
}

// IsDevelopment reports whether the client runs in the development environment.
func (c *AppConfig) IsDevelopment() bool {
	return c.Environment == "development"
}

// ProfileDir is the directory of the profile store. It is a subdirectory of DataPath
// so the store's own files never share a directory with the log file.
func (c *AppConfig) ProfileDir() string {
	return filepath.Join(c.DataPath, "profile")
}

// RegisterFlags defines the command-line flags understood by LoadConfig on fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String(keyEnvironment, "development", "running environment (development or production)")
	fs.String(keyServerURL, "ws://localhost:8080/ws", "chat server WebSocket URL")
	fs.String(keyDataPath, "", "directory holding the local profile store (default $HOME/.config/hzchat)")
	fs.String(keyLogFile, "", "log file path (default <data-path>/hzchat.log)")
	fs.Int64(keyMaxAvatarBytes, 1<<20, "maximum avatar image size in bytes")
	fs.Duration(keyReconnectInterval, 2*time.Second, "minimum delay between connection attempts")
	fs.Int64(keyReadLimit, 4<<20, "maximum inbound frame size in bytes")
	fs.Bool(keyEphemeral, false, "keep the profile in memory only")
}

// LoadConfig reads and parses the client configuration.
// flags may be nil, in which case only environment variables and defaults are used.
// It returns a pointer to the AppConfig struct and any error encountered.
func LoadConfig(flags *pflag.FlagSet) (*AppConfig, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(keyEnvironment, "development")
	v.SetDefault(keyServerURL, "ws://localhost:8080/ws")
	v.SetDefault(keyMaxAvatarBytes, 1<<20)
	v.SetDefault(keyReconnectInterval, "2s")
	v.SetDefault(keyReadLimit, 4<<20)
	v.SetDefault(keyEphemeral, false)

	// Bare names kept for deployments that already export them.
	if err := v.BindEnv(keyEnvironment, EnvPrefix+"_ENVIRONMENT", "ENVIRONMENT"); err != nil {
		return nil, fmt.Errorf("bind environment variable: %w", err)
	}
	if err := v.BindEnv(keyServerURL, EnvPrefix+"_SERVER_URL", "SERVER_URL"); err != nil {
		return nil, fmt.Errorf("bind server url variable: %w", err)
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind command-line flags: %w", err)
		}
	}

	cfg := &AppConfig{
		Environment:       strings.TrimSpace(v.GetString(keyEnvironment)),
		ServerURL:         strings.TrimSpace(v.GetString(keyServerURL)),
		ReconnectInterval: v.GetDuration(keyReconnectInterval),
		ReadLimit:         v.GetInt64(keyReadLimit),
		DataPath:          strings.TrimSpace(v.GetString(keyDataPath)),
		Ephemeral:         v.GetBool(keyEphemeral),
		MaxAvatarBytes:    v.GetInt64(keyMaxAvatarBytes),
		LogFile:           strings.TrimSpace(v.GetString(keyLogFile)),
	}

	// --- General Settings ---
	if cfg.Environment != "development" && cfg.Environment != "production" {
		return nil, fmt.Errorf("invalid environment %q: expected development or production", cfg.Environment)
	}

	// --- Channel Settings ---
	u, err := url.Parse(cfg.ServerURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server url: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, fmt.Errorf("server url %q must use the ws or wss scheme", cfg.ServerURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("server url %q has no host", cfg.ServerURL)
	}

	if cfg.ReconnectInterval < 100*time.Millisecond {
		return nil, fmt.Errorf("reconnect interval %s is below the minimum of 100ms", cfg.ReconnectInterval)
	}

	// --- Identity Settings ---
	if cfg.MaxAvatarBytes <= 0 {
		return nil, fmt.Errorf("max avatar bytes must be positive, got %d", cfg.MaxAvatarBytes)
	}

	// Avatars travel base64-encoded inside every chat message frame.
	if cfg.ReadLimit < 2*cfg.MaxAvatarBytes {
		return nil, fmt.Errorf("read limit %d must be at least twice the max avatar size (%d)", cfg.ReadLimit, cfg.MaxAvatarBytes)
	}

	if cfg.DataPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory for data path: %w", err)
		}
		cfg.DataPath = filepath.Join(home, ".config", "hzchat")
	}

	// --- Logging Settings ---
	if cfg.LogFile == "" {
		cfg.LogFile = filepath.Join(cfg.DataPath, "hzchat.log")
	}

	return cfg, nil
}
