package client

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// TOMLConfig represents the structure of the client config file
type TOMLConfig struct {
	Gateway   GatewaySection   `toml:"gateway"`
	Storage   StorageSection   `toml:"storage"`
	Logging   LoggingSection   `toml:"logging"`
	Downloads DownloadsSection `toml:"downloads"`
	Debug     DebugSection     `toml:"debug"`
}

type GatewaySection struct {
	URL         string `toml:"url"`
	DialTimeout int    `toml:"dial_timeout_seconds"`
}

type StorageSection struct {
	StatePath string `toml:"state_path"`
}

type LoggingSection struct {
	LogFile string `toml:"log_file"`
	Level   string `toml:"level"`
}

type DownloadsSection struct {
	Notify bool `toml:"notify"`
}

type DebugSection struct {
	// MetricsPort, when non-zero, serves prometheus metrics on localhost.
	MetricsPort int `toml:"metrics_port"`
}

// DefaultTOMLConfig returns the default client configuration
func DefaultTOMLConfig() TOMLConfig {
	return TOMLConfig{
		Gateway: GatewaySection{
			URL:         "ws://localhost:3001",
			DialTimeout: 5,
		},
		Storage: StorageSection{
			StatePath: "~/.teleclone/state.db",
		},
		Logging: LoggingSection{
			LogFile: "~/.teleclone/client.log",
			Level:   "info",
		},
		Downloads: DownloadsSection{
			Notify: true,
		},
		Debug: DebugSection{
			MetricsPort: 0, // disabled
		},
	}
}

// LoadConfig loads configuration from a TOML file, creates a default one when
// missing, and applies environment variable overrides.
func LoadConfig(path string) (TOMLConfig, error) {
	path, err := ExpandPath(path)
	if err != nil {
		return TOMLConfig{}, err
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		// File doesn't exist, create default config. If we can't write
		// (permissions), just run with defaults.
		config := DefaultTOMLConfig()
		_ = writeDefaultConfig(path, config)
		return applyEnvOverrides(config), nil
	}

	var config TOMLConfig
	if _, err := toml.DecodeFile(path, &config); err != nil {
		return TOMLConfig{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	return applyEnvOverrides(config), nil
}

// ExpandPath expands a leading ~/ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(homeDir, path[2:]), nil
	}
	return path, nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Environment variables follow the pattern: TELECLONE_SECTION_KEY
// Example: TELECLONE_GATEWAY_URL=wss://gw.example.com
func applyEnvOverrides(config TOMLConfig) TOMLConfig {
	if val := os.Getenv("TELECLONE_GATEWAY_URL"); val != "" {
		config.Gateway.URL = val
	}
	if val := os.Getenv("TELECLONE_GATEWAY_DIAL_TIMEOUT_SECONDS"); val != "" {
		if secs, err := strconv.Atoi(val); err == nil {
			config.Gateway.DialTimeout = secs
		}
	}
	if val := os.Getenv("TELECLONE_STORAGE_STATE_PATH"); val != "" {
		config.Storage.StatePath = val
	}
	if val := os.Getenv("TELECLONE_LOGGING_LOG_FILE"); val != "" {
		config.Logging.LogFile = val
	}
	if val := os.Getenv("TELECLONE_LOGGING_LEVEL"); val != "" {
		config.Logging.Level = val
	}
	if val := os.Getenv("TELECLONE_DOWNLOADS_NOTIFY"); val != "" {
		if notify, err := strconv.ParseBool(val); err == nil {
			config.Downloads.Notify = notify
		}
	}
	if val := os.Getenv("TELECLONE_DEBUG_METRICS_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			config.Debug.MetricsPort = port
		}
	}
	return config
}

// writeDefaultConfig writes a commented default config file
func writeDefaultConfig(path string, config TOMLConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	content := fmt.Sprintf(`# tele-clone client configuration
# Values can be overridden with TELECLONE_SECTION_KEY environment variables,
# e.g. TELECLONE_GATEWAY_URL=wss://gw.example.com

[gateway]
# Websocket URL of the backend gateway
url = %q
dial_timeout_seconds = %d

[storage]
# Local sqlite database (saved credential, last server)
state_path = %q

[logging]
log_file = %q
# debug, info, warn or error
level = %q

[downloads]
# Desktop notification when a download completes
notify = %t

[debug]
# When non-zero, serve prometheus metrics on 127.0.0.1:<port>/metrics
metrics_port = %d
`,
		config.Gateway.URL,
		config.Gateway.DialTimeout,
		config.Storage.StatePath,
		config.Logging.LogFile,
		config.Logging.Level,
		config.Downloads.Notify,
		config.Debug.MetricsPort,
	)

	return os.WriteFile(path, []byte(content), 0644)
}
