// Package config layers environment variables and an optional config file
// under command-line flags.
//
// Precedence, highest first: explicitly set flags, ADAVERC_* environment
// variables, the config file, flag defaults. Keys are flag names; in the
// environment dashes become underscores (--authority-url is
// ADAVERC_AUTHORITY_URL).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "ADAVERC"
	// EnvConfig names a config file when --config is not given.
	EnvConfig = EnvPrefix + "_CONFIG"
)

// Apply back-fills every flag in sets that was not set on the command line.
//
// configPath is an explicit config file (YAML or JSON, by extension); when
// empty, $ADAVERC_CONFIG is used, and failing that config.{yaml,json} is
// searched for in the user config directory. Only an explicitly named file
// must exist.
func Apply(configPath string, sets ...*pflag.FlagSet) error {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if configPath == "" {
		configPath = os.Getenv(EnvConfig)
	}
	configureConfigFile(v, configPath)

	for _, fs := range sets {
		if fs == nil {
			continue
		}
		if err := v.BindPFlags(fs); err != nil {
			return err
		}
	}
	if err := readConfigFile(v, configPath != ""); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	var firstErr error
	for _, fs := range sets {
		if fs == nil {
			continue
		}
		fs.VisitAll(func(f *pflag.Flag) {
			if f.Changed || !v.IsSet(f.Name) {
				return
			}
			val := fmt.Sprintf("%v", v.Get(f.Name))
			if val == "" {
				return
			}
			if err := f.Value.Set(val); err != nil && firstErr == nil {
				firstErr = fmt.Errorf("config: invalid value %q for %s: %w", val, f.Name, err)
			}
		})
	}
	return firstErr
}

func configureConfigFile(v *viper.Viper, explicitPath string) {
	if explicitPath != "" {
		v.SetConfigFile(explicitPath)
		return
	}
	v.SetConfigName("config")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "adaverc"))
	}
}

func readConfigFile(v *viper.Viper, strict bool) error {
	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if errors.As(err, &cfgErr) && !strict {
			return nil
		}
		return err
	}
	return nil
}
