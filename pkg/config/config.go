// Package config loads CLI settings from defaults, an optional config file,
// FIGMA_VARIABLES_* environment variables and command-line flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// FileName is the config file name searched for when no path is given (without extension).
	FileName = "figma-variables"
	// EnvPrefix prefixes every environment variable, e.g. FIGMA_VARIABLES_FORMAT.
	EnvPrefix = "FIGMA_VARIABLES"
)

// Config holds the settings shared by all commands.
type Config struct {
	Token       string      `mapstructure:"token"`
	FileURL     string      `mapstructure:"file_url"`
	Document    string      `mapstructure:"document"`
	Collections []string    `mapstructure:"collections"`
	Format      string      `mapstructure:"format"`
	Output      string      `mapstructure:"output"`
	Serve       ServeConfig `mapstructure:"serve"`
}

// ServeConfig configures the serve command.
type ServeConfig struct {
	Addr    string   `mapstructure:"addr"`
	Path    string   `mapstructure:"path"`
	Stdio   bool     `mapstructure:"stdio"`
	Origins []string `mapstructure:"origins"`
	Debug   bool     `mapstructure:"debug"`
}

// Default returns the configuration used when nothing else is set.
func Default() Config {
	return Config{
		Format: "text",
		Serve: ServeConfig{
			Addr: "127.0.0.1:7777",
			Path: "/ws",
		},
	}
}

// Load builds the configuration. path selects an explicit config file; when
// empty, figma-variables.{yaml,yml,json,toml} is looked up in the working
// directory and is optional. flags maps config keys to command-line flags;
// only flags the user actually set override other sources.
func Load(path string, flags map[string]*pflag.Flag) (*Config, error) {
	v := viper.New()

	defaults := Default()
	v.SetDefault("format", defaults.Format)
	v.SetDefault("serve.addr", defaults.Serve.Addr)
	v.SetDefault("serve.path", defaults.Serve.Path)
	v.SetDefault("serve.stdio", defaults.Serve.Stdio)
	v.SetDefault("serve.debug", defaults.Serve.Debug)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The token is commonly exported under the name Figma's docs use.
	if err := v.BindEnv("token", EnvPrefix+"_TOKEN", "FIGMA_TOKEN"); err != nil {
		return nil, fmt.Errorf("bind token env: %w", err)
	}
	// AutomaticEnv only applies to keys viper already knows about.
	for _, key := range []string{"file_url", "document", "collections", "output", "serve.origins"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind %s env: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName(FileName)
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	for key, flag := range flags {
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, fmt.Errorf("bind flag %s: %w", flag.Name, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}
