package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Editor   EditorConfig   `mapstructure:"editor"`
	Export   ExportConfig   `mapstructure:"export"`
	Log      LogConfig      `mapstructure:"log"`
	UI       UIConfig       `mapstructure:"ui"`
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
	// History is how many past snapshots of the tree are kept.
	History int `mapstructure:"history"`
}

// EditorConfig holds editing settings.
type EditorConfig struct {
	DefaultExtension string `mapstructure:"default_extension"`
	MaxTabs          int    `mapstructure:"max_tabs"`
	Language         string `mapstructure:"language"`
	LineNumbers      bool   `mapstructure:"line_numbers"`
}

// ExportConfig holds where downloads land.
type ExportConfig struct {
	Dir string `mapstructure:"dir"`
}

// LogConfig holds diagnostic logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Path   string `mapstructure:"path"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	ShowHidden bool `mapstructure:"show_hidden"`
	// MaxUploadBytes skips larger files on upload; zero disables the check.
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes"`
}

func home() string {
	if h, err := os.UserHomeDir(); err == nil {
		return h
	}
	return os.Getenv("HOME")
}

// Path returns the config file location. CODEPAD_CONFIG overrides it.
func Path() string {
	if p := os.Getenv("CODEPAD_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(home(), ".config", "codepad", "config.toml")
}

// Load reads configuration from file and env. Env var overrides use prefix CODEPAD_.
func Load() (Config, error) {
	v := viper.New()

	dataDir := filepath.Join(home(), ".local", "share", "codepad")
	v.SetDefault("database.path", filepath.Join(dataDir, "codepad.db"))
	v.SetDefault("database.history", 20)
	v.SetDefault("editor.default_extension", ".lua")
	v.SetDefault("editor.max_tabs", 6)
	v.SetDefault("editor.language", "lua")
	v.SetDefault("editor.line_numbers", true)
	v.SetDefault("export.dir", filepath.Join(home(), "Downloads"))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.path", filepath.Join(dataDir, "codepad.log"))
	v.SetDefault("ui.show_hidden", false)
	v.SetDefault("ui.max_upload_bytes", 1<<20)

	v.SetConfigType("toml")
	v.SetConfigFile(Path())

	v.SetEnvPrefix("CODEPAD")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// a missing config file is fine
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.Editor.MaxTabs <= 0 {
		c.Editor.MaxTabs = 6
	}
	if c.Editor.DefaultExtension != "" && !strings.HasPrefix(c.Editor.DefaultExtension, ".") {
		c.Editor.DefaultExtension = "." + c.Editor.DefaultExtension
	}
	return c, nil
}

// Save writes the provided config to disk, creating the config directory if needed.
func Save(cfg Config) error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("database.history", cfg.Database.History)
	v.Set("editor.default_extension", cfg.Editor.DefaultExtension)
	v.Set("editor.max_tabs", cfg.Editor.MaxTabs)
	v.Set("editor.language", cfg.Editor.Language)
	v.Set("editor.line_numbers", cfg.Editor.LineNumbers)
	v.Set("export.dir", cfg.Export.Dir)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.format", cfg.Log.Format)
	v.Set("log.path", cfg.Log.Path)
	v.Set("ui.show_hidden", cfg.UI.ShowHidden)
	v.Set("ui.max_upload_bytes", cfg.UI.MaxUploadBytes)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
