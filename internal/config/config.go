// Package config loads emvkeys settings from file, environment and flags.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. EMVKEYS_CATALOG_PATH.
const EnvPrefix = "EMVKEYS"

var (
	configData Config
	v          = New()
)

// Config holds all configuration settings.
type Config struct {
	// PC/SC reader selection
	Reader struct {
		Index       int
		Contactless bool
	}
	// Root-CA catalog
	Catalog struct {
		Path string
	}
	// Logging configuration
	Log struct {
		Level  string
		Format string
	}
}

// New returns a viper instance with search paths, defaults and environment
// binding set up but no file read yet.
func New() *viper.Viper {
	vp := viper.New()

	vp.SetConfigName("config")
	vp.SetConfigType("yaml")
	vp.AddConfigPath(".")
	vp.AddConfigPath("$HOME/.emvkeys")
	vp.AddConfigPath("/etc/emvkeys/")

	setDefaults(vp)

	vp.SetEnvPrefix(EnvPrefix)
	vp.AutomaticEnv()
	vp.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return vp
}

// Load reads the configuration file into vp and decodes the result.
// An explicit file must exist; otherwise a missing file means defaults.
func Load(vp *viper.Viper, file string) (*Config, error) {
	if file != "" {
		vp.SetConfigFile(file)
	}

	if err := vp.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := vp.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	return &cfg, nil
}

// Initialize loads the process configuration into the package state.
func Initialize(file string) error {
	cfg, err := Load(v, file)
	if err != nil {
		return err
	}

	configData = *cfg

	return nil
}

func setDefaults(vp *viper.Viper) {
	vp.SetDefault("reader.index", 0)
	vp.SetDefault("reader.contactless", true)

	vp.SetDefault("catalog.path", "ca_keys.yaml")

	vp.SetDefault("log.level", "info")
	vp.SetDefault("log.format", "human")
}

// Get returns the current configuration.
func Get() *Config {
	return &configData
}

// GetViper returns the viper instance, e.g. for flag binding.
func GetViper() *viper.Viper {
	return v
}
