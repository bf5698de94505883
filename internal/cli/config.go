package cli

import (
	stderrors "errors"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/toyz/routelens/internal/errors"
	"github.com/toyz/routelens/internal/server"
	"github.com/toyz/routelens/internal/utils"
)

// Output formats
const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

var outputFormats = []string{OutputText, OutputJSON, OutputYAML}

// EnvPrefix prefixes every environment override, e.g. ROUTELENS_SERVER_ADDR
const EnvPrefix = "ROUTELENS"

// Config holds the settings shared by every command
type Config struct {
	// Output is the result format: text, json or yaml
	Output string `mapstructure:"output"`

	// Verbosity is one of silent, quiet, warn, info, verbose, debug
	Verbosity string `mapstructure:"verbosity"`

	// Extensions are the file extensions diagnose scans for
	Extensions []string `mapstructure:"extensions"`

	// Workers bounds how many files diagnose analyses at once
	Workers int `mapstructure:"workers"`

	Server ServerConfig `mapstructure:"server"`
}

// ServerConfig configures the serve command
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	Framework       string        `mapstructure:"framework"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// SetDefaults registers the default value of every key
func SetDefaults(v *viper.Viper) {
	v.SetDefault("output", OutputText)
	v.SetDefault("verbosity", "info")
	v.SetDefault("extensions", utils.DefaultExtensions)
	v.SetDefault("workers", 4)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.framework", "gin")
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
}

// NewViper creates a viper instance reading routelens.yaml from the working
// directory and ROUTELENS_* environment variables
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	v.SetConfigName("routelens")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadConfig reads the config file, if any, and decodes the merged settings.
// A missing routelens.yaml is not an error; a missing explicit config file is.
func LoadConfig(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !stderrors.As(err, &notFound) {
			return nil, errors.WrapConfigurationError(v.ConfigFileUsed(), "read", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.WrapConfigurationError("routelens", "decode", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated settings
func (c *Config) Validate() error {
	c.Output = strings.ToLower(c.Output)
	if !slices.Contains(outputFormats, c.Output) {
		return errors.InvalidOption("output", c.Output, outputFormats...)
	}

	c.Server.Framework = strings.ToLower(c.Server.Framework)
	if !slices.Contains(server.Frameworks, c.Server.Framework) {
		return errors.InvalidOption("server.framework", c.Server.Framework, server.Frameworks...)
	}

	if c.Workers < 1 {
		c.Workers = 1
	}
	return nil
}
