package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type BatchConfig struct {
	MaxConcurrency uint
	MaxRetries     uint
	RetryDelay     time.Duration
	ShowProgress   bool
}

func (c BatchConfig) Validate() error {
	if c.MaxConcurrency == 0 {
		return fmt.Errorf("max concurrency must be at least 1")
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("retry delay must not be negative")
	}
	return nil
}

func LoadBatchConfigFromCLI() BatchConfig {
	return BatchConfig{
		MaxConcurrency: viper.GetUint("max-concurrency"),
		MaxRetries:     viper.GetUint("max-retries"),
		RetryDelay:     viper.GetDuration("retry-delay"),
		ShowProgress:   !viper.GetBool("no-progress"),
	}
}
