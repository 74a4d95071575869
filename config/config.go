// Package config loads serving configuration from config.yaml and the
// HEARTS_* environment, in that order of increasing precedence.
package config

import (
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	AI     AIConfig     `mapstructure:"ai"`
}

type ServerConfig struct {
	Address  string        `mapstructure:"address"`
	Deadline time.Duration `mapstructure:"deadline"`
}

type AIConfig struct {
	Workers     int     `mapstructure:"workers"`
	Worlds      int     `mapstructure:"worlds"`
	Simulations int     `mapstructure:"simulations"`
	Epsilon     float64 `mapstructure:"epsilon"`
	ModelLevel  int     `mapstructure:"model_level"`
	UseThreads  bool    `mapstructure:"use_threads"`
}

// Load reads path when it exists and fills the rest from defaults and
// environment variables such as HEARTS_SERVER_ADDRESS.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.deadline", 10*time.Second)
	v.SetDefault("ai.workers", runtime.NumCPU())
	v.SetDefault("ai.worlds", 30)
	v.SetDefault("ai.simulations", 10000)
	v.SetDefault("ai.epsilon", 0.1)
	v.SetDefault("ai.model_level", 1)
	v.SetDefault("ai.use_threads", true)

	v.SetEnvPrefix("HEARTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// A missing config file is fine; a malformed one is not.
	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
