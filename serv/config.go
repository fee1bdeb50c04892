// Package serv is the ambient bootstrap layer: it loads configuration,
// builds the database pool, and mounts the engine's HTTP and WebSocket
// surfaces. It owns no gateway logic of its own.
package serv

import (
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/pgqlgate/pgqlgate/core"
)

// ServConfig is the on-disk/env configuration surface: core.Config plus the
// bootstrap-only fields (listen address, database DSN, log format) that the
// engine itself has no business knowing about.
type ServConfig struct {
	core.Config `mapstructure:",squash"`

	HostPort string `mapstructure:"hostPort"`
	DB       struct {
		ConnString string `mapstructure:"connString"`
	} `mapstructure:"db"`
	LogJSON bool `mapstructure:"logJson"`
}

// LoadConfig reads configName(.yml/.json/.toml) from configPath; a
// PGQLGATE_-prefixed environment variable, when set, overrides the file
// value and the default for its key. A missing file is not an error.
// Matches the teacher's viper+afero binding idiom.
func LoadConfig(fs afero.Fs, configPath, configName string) (*ServConfig, error) {
	v := viper.New()
	v.SetFs(fs)
	v.SetConfigName(configName)
	v.AddConfigPath(configPath)

	v.SetEnvPrefix("PGQLGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("hostPort", "0.0.0.0:8080")
	v.SetDefault("allowedSchema", "public")
	v.SetDefault("cache.schemaTtlMinutes", 60)
	v.SetDefault("cache.rolePrivilegesTtlMinutes", 60)
	v.SetDefault("security.roleBasedEnabled", false)
	v.SetDefault("cdc.enabled", false)
	v.SetDefault("cdc.publication", "pgqlgate")
	v.SetDefault("cdc.slot", "pgqlgate")
	v.SetDefault("db.connString", "")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("serv: read config: %w", err)
		}
	}

	var cfg ServConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("serv: unmarshal config: %w", err)
	}
	if cfg.DB.ConnString == "" {
		return nil, fmt.Errorf("serv: db.connString is required")
	}
	return &cfg, nil
}
