// Package config resolves vitcat settings from defaults, an optional
// config file and VITCAT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/vitessce/vitcat/internal/paths"
)

// Config holds the settings shared by the daemon and the CLI.
type Config struct {
	SocketPath  string `mapstructure:"socket_path"`
	PIDFile     string `mapstructure:"pid_file"`
	CatalogDir  string `mapstructure:"catalog_dir"` // extra catalog files, optional
	LogLevel    string `mapstructure:"log_level"`
	Development bool   `mapstructure:"development"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		SocketPath: paths.DefaultSocketPath(),
		PIDFile:    paths.DefaultPIDPath(),
		LogLevel:   "info",
	}
}

// Load reads settings. An explicit file must exist; the default file is
// optional.
func Load(file string) (*Config, error) {
	v := viper.New()
	def := Default()
	v.SetDefault("socket_path", def.SocketPath)
	v.SetDefault("pid_file", def.PIDFile)
	v.SetDefault("catalog_dir", def.CatalogDir)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("development", def.Development)

	v.SetEnvPrefix("VITCAT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	explicit := file != ""
	if !explicit {
		file = paths.DefaultConfigPath()
	}
	v.SetConfigFile(file)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case explicit:
			return nil, fmt.Errorf("failed to read config %s: %w", file, err)
		case errors.As(err, &notFound), errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read config %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}
