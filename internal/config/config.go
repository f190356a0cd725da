package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config is the service configuration. Values come from (lowest to highest
// precedence) built-in defaults, an optional config.json, and PILLARLOG_*
// environment variables.
type Config struct {
	ListenAddr  string `mapstructure:"listen_addr"`
	Driver      string `mapstructure:"driver"` // memory | sqlite | postgres
	SQLitePath  string `mapstructure:"sqlite_path"`
	PostgresDSN string `mapstructure:"postgres_dsn"`
	Timezone    string `mapstructure:"timezone"`
}

// Load reads configuration. path overrides the default search location
// (~/.config/pillarlog); an absent config file is not an error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("json")

	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	configDir := filepath.Join(home, ".config", "pillarlog")

	v.SetDefault("listen_addr", ":8484")
	v.SetDefault("driver", "sqlite")
	v.SetDefault("sqlite_path", filepath.Join(configDir, "pillarlog.db"))
	v.SetDefault("postgres_dsn", "")
	v.SetDefault("timezone", "UTC")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(configDir)
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("PILLARLOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	switch cfg.Driver {
	case "memory", "sqlite", "postgres":
	default:
		return Config{}, fmt.Errorf("unknown storage driver %q (want memory, sqlite, or postgres)", cfg.Driver)
	}
	if cfg.Driver == "postgres" && cfg.PostgresDSN == "" {
		return Config{}, fmt.Errorf("postgres driver selected but postgres_dsn is empty")
	}
	return cfg, nil
}
