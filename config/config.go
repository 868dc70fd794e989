// Package config loads process configuration from a YAML file with
// environment overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Symbol string `mapstructure:"symbol"`

	Server struct {
		Addr                string `mapstructure:"addr"`
		ReadTimeoutSeconds  int    `mapstructure:"read_timeout_seconds"`
		WriteTimeoutSeconds int    `mapstructure:"write_timeout_seconds"`
	} `mapstructure:"server"`

	Logging struct {
		Level  string `mapstructure:"level"`
		Pretty bool   `mapstructure:"pretty"`
	} `mapstructure:"logging"`

	Redis struct {
		Enabled bool   `mapstructure:"enabled"`
		Addr    string `mapstructure:"addr"`
		Channel string `mapstructure:"channel"`
	} `mapstructure:"redis"`

	Kafka struct {
		Enabled    bool     `mapstructure:"enabled"`
		Brokers    []string `mapstructure:"brokers"`
		TradeTopic string   `mapstructure:"trade_topic"`
		DepthTopic string   `mapstructure:"depth_topic"`
		QueueSize  int      `mapstructure:"queue_size"`
	} `mapstructure:"kafka"`

	Depth struct {
		Levels   int           `mapstructure:"levels"`
		Interval time.Duration `mapstructure:"interval"`
	} `mapstructure:"depth"`
}

// Load reads the config file at path (optional; defaults apply when
// path is empty, and a path that cannot be read is an error) and
// merges MATCHBOOK_* environment variables.
func Load(path string) (Config, error) {
	v := viper.New()

	v.SetDefault("symbol", "AAPL")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout_seconds", 5)
	v.SetDefault("server.write_timeout_seconds", 10)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.pretty", false)
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.channel", "trades")
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"127.0.0.1:9092"})
	v.SetDefault("kafka.trade_topic", "trades")
	v.SetDefault("kafka.depth_topic", "depth")
	v.SetDefault("kafka.queue_size", 4096)
	v.SetDefault("depth.levels", 10)
	v.SetDefault("depth.interval", 2*time.Second)

	v.SetEnvPrefix("MATCHBOOK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}
