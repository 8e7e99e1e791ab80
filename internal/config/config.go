package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Transport names accepted in the config file.
const (
	TransportWebsocket = "websocket"
	TransportREST      = "rest"
)

// Config represents the editor configuration
type Config struct {
	Version    int        `toml:"version"`
	ServerURL  string     `toml:"server_url"`
	Token      string     `toml:"token"`
	EntityID   string     `toml:"entity_id"`
	Transport  string     `toml:"transport"`
	LogFile    string     `toml:"log_file"`
	UISettings UISettings `toml:"ui"`
}

// UISettings represents UI-related configuration
type UISettings struct {
	ShowQuotePreview bool `toml:"show_quote_preview"`
	HistoryLimit     int  `toml:"history_limit"`
}

// ConfigService handles configuration management
type ConfigService interface {
	Load() (*Config, error)
	Save(config *Config) error
	LoadFromPath(path string) (*Config, error)
	SaveToPath(config *Config, path string) error
}

// configService is the concrete implementation
type configService struct {
	filePath string
}

// NewConfigService creates a new config service
func NewConfigService() ConfigService {
	configDir, err := os.UserConfigDir()
	if err != nil {
		// Fallback to home directory
		configDir, err = os.UserHomeDir()
		if err != nil {
			configDir = "."
		}
		configDir = filepath.Join(configDir, ".config")
	}

	quotacardDir := filepath.Join(configDir, "quotacard")
	os.MkdirAll(quotacardDir, 0755)

	return &configService{
		filePath: filepath.Join(quotacardDir, "config.toml"),
	}
}

// Load loads the configuration from the default path, falling back to the
// default config when no file exists yet.
func (cs *configService) Load() (*Config, error) {
	if _, err := os.Stat(cs.filePath); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	return cs.LoadFromPath(cs.filePath)
}

// Save saves the configuration to the default path.
func (cs *configService) Save(config *Config) error {
	return cs.SaveToPath(config, cs.filePath)
}

// LoadFromPath loads configuration from a specific path
func (cs *configService) LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Transport != TransportWebsocket && cfg.Transport != TransportREST {
		return nil, fmt.Errorf("unknown transport %q", cfg.Transport)
	}

	return cfg, nil
}

// SaveToPath saves configuration to a specific path
func (cs *configService) SaveToPath(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:   1,
		ServerURL: "http://homeassistant.local:8123",
		Transport: TransportWebsocket,
		LogFile:   "quotacard.log",
		UISettings: UISettings{
			ShowQuotePreview: true,
			HistoryLimit:     50,
		},
	}
}
