package config

import (
	"fmt"
	"net"
	"time"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Addr            string
	ShutdownTimeout time.Duration
}

func (c ServerConfig) Validate() error {
	if _, _, err := net.SplitHostPort(c.Addr); err != nil {
		return fmt.Errorf("invalid listen address %q: %w", c.Addr, err)
	}
	return nil
}

func LoadServerConfigFromCLI() ServerConfig {
	return ServerConfig{
		Addr:            viper.GetString("listen"),
		ShutdownTimeout: viper.GetDuration("shutdown-timeout"),
	}
}

type MetricsConfig struct {
	Enable bool
	Addr   string
}

func (c MetricsConfig) Validate() error {
	if !c.Enable {
		return nil
	}
	if _, _, err := net.SplitHostPort(c.Addr); err != nil {
		return fmt.Errorf("invalid metrics address %q: %w", c.Addr, err)
	}
	return nil
}

func LoadMetricsConfigFromCLI() MetricsConfig {
	return MetricsConfig{
		Enable: viper.GetBool("enable-metrics"),
		Addr:   viper.GetString("metrics-addr"),
	}
}
