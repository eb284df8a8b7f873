package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig captures runtime settings for the mock server.
type ServerConfig struct {
	ListenAddr      string        `mapstructure:"listen_addr"`
	DispatchDelay   time.Duration `mapstructure:"dispatch_delay"`
	InternalTimeout time.Duration `mapstructure:"internal_timeout"`
}

// Load reads server configuration from defaults, files, and env vars.
func Load() (ServerConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.AddConfigPath("./configs")
	v.SetEnvPrefix("GSEAL")
	v.AutomaticEnv()

	v.SetDefault("listen_addr", ":8090")
	v.SetDefault("dispatch_delay", "1s")
	v.SetDefault("internal_timeout", "10s")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return ServerConfig{}, fmt.Errorf("load config: %w", err)
		}
	}

	var cfg ServerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return ServerConfig{}, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, nil
}
