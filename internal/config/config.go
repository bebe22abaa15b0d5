package config

import (
	"errors"
	"fmt"
	"gochef/pkg/utils"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. GOCHEF_STORE_PATH.
const EnvPrefix = "GOCHEF"

// ErrNoHome means neither HOME nor an explicit store path is set.
var ErrNoHome = errors.New("HOME is not set")

// Config holds the settings for a single invocation.
type Config struct {
	RecipeID  int64  `mapstructure:"recipe"`
	ServerID  int64  `mapstructure:"server"`
	StorePath string `mapstructure:"store_path"`
	UserAgent string `mapstructure:"user_agent"`
	LogLevel  string `mapstructure:"log_level"`
	Verbose   bool   `mapstructure:"verbose"`
}

// Load resolves configuration from flags, GOCHEF_* variables and an optional
// YAML file, in that order of precedence. configFile may be empty, in which
// case <home>/.gochef/config.yaml is read if it exists.
func Load(flags *pflag.FlagSet, configFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("recipe", 1)
	v.SetDefault("server", 1)
	v.SetDefault("user_agent", "GoChef")
	v.SetDefault("log_level", "warn")
	v.SetDefault("store_path", "")
	v.SetDefault("verbose", false)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("home", "HOME"); err != nil {
		return nil, err
	}

	if flags != nil {
		for _, key := range []string{"recipe", "server", "verbose"} {
			if f := flags.Lookup(key); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, err
				}
			}
		}
	}

	home := v.GetString("home")

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", configFile, err)
		}
	} else if home != "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(home, utils.DataDirName))
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.StorePath == "" {
		if home == "" {
			return nil, ErrNoHome
		}
		cfg.StorePath = utils.DefaultStorePath(home)
	}
	if cfg.Verbose {
		cfg.LogLevel = "debug"
	}

	return &cfg, nil
}
