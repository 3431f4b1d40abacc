// Package config loads planner settings from a YAML or JSON file.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pdrpinto/stastar"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to upper-cased keys for environment overrides,
// e.g. STPLAN_MAX_SPEED.
const EnvPrefix = "STPLAN"

// Settings is the flattened settings file.
type Settings struct {
	DT       float64 `mapstructure:"dt"`
	DS       float64 `mapstructure:"ds"`
	MinSpeed float64 `mapstructure:"min_speed"`
	MaxSpeed float64 `mapstructure:"max_speed"`
	MaxAccel float64 `mapstructure:"max_accel"`
	MaxSteer float64 `mapstructure:"max_steer"`
	IterMax  int     `mapstructure:"iter_max"`

	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`
	Workers  int    `mapstructure:"workers"`
}

func setDefaults(v *viper.Viper) {
	defaults := stastar.DefaultConfig()
	v.SetDefault("dt", defaults.DT)
	v.SetDefault("ds", defaults.DS)
	v.SetDefault("min_speed", defaults.MinSpeed)
	v.SetDefault("max_speed", defaults.MaxSpeed)
	v.SetDefault("max_accel", defaults.MaxAccel)
	v.SetDefault("max_steer", defaults.MaxSteer)
	v.SetDefault("iter_max", defaults.IterMax)

	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("workers", 0)
}

// Load reads the settings file at path. An empty path yields the defaults.
// Keys missing from the file keep their default values.
func Load(path string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &settings, nil
}

// Validate checks the planner parameters and the ambient settings.
func (s *Settings) Validate() error {
	if err := s.Planner().Validate(); err != nil {
		return err
	}
	if s.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", s.Workers)
	}
	switch strings.ToUpper(s.LogLevel) {
	case "", "TRACE", "DEBUG", "INFO", "WARN", "ERROR":
	default:
		return errors.New("log_level must be one of trace, debug, info, warn, error")
	}
	return nil
}

// Planner returns the search parameters.
func (s *Settings) Planner() stastar.Config {
	return stastar.Config{
		DT:       s.DT,
		DS:       s.DS,
		MinSpeed: s.MinSpeed,
		MaxSpeed: s.MaxSpeed,
		MaxAccel: s.MaxAccel,
		MaxSteer: s.MaxSteer,
		IterMax:  s.IterMax,
	}
}
