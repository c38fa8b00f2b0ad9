package config

import (
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/viper"
)

type PostgresConfig struct {
	ConnString string
	MaxConns   uint
	MaxAge     time.Duration
}

func (c PostgresConfig) Validate() error {
	if c.ConnString == "" {
		return fmt.Errorf("missing PostgreSQL connection string")
	}

	_, err := pgxpool.ParseConfig(c.ConnString)
	if err != nil {
		return fmt.Errorf("failed to parse PostgreSQL connection string: %w", err)
	}

	if c.MaxAge < 0 {
		return fmt.Errorf("max age must not be negative")
	}

	return nil
}

func LoadPostgresConfigFromCLI() PostgresConfig {
	return PostgresConfig{
		ConnString: viper.GetString("postgres-conn"),
		MaxConns:   viper.GetUint("max-conns"),
		MaxAge:     viper.GetDuration("max-age"),
	}
}
