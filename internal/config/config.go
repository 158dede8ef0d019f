package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode       string        `mapstructure:"mode"`
	SignalURL  string        `mapstructure:"signal_url"`
	MetaURL    string        `mapstructure:"meta_url"`
	SessionID  string        `mapstructure:"session_id"`
	UserID     string        `mapstructure:"user_id"`
	UserName   string        `mapstructure:"user_name"`
	StatusAddr string        `mapstructure:"status_addr"`
	StunURLs   []string      `mapstructure:"stun_urls"`
	QueueSize  int           `mapstructure:"queue_size"`
	PingPeriod time.Duration `mapstructure:"ping_period"`
	LogLevel   string        `mapstructure:"log_level"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("signal_url", "ws://localhost:8080/api/ws/signal")
	v.SetDefault("meta_url", "http://localhost:8080/api")
	v.SetDefault("status_addr", ":8090")
	v.SetDefault("stun_urls", []string{"stun:stun.l.google.com:19302"})
	v.SetDefault("queue_size", 256)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("log_level", "info")

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("config file not found (%s), using defaults\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
