// Package store persists contract metadata in PostgreSQL.
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/zircuit-multisig/safe-eth-go/internal/codec"
	"github.com/zircuit-multisig/safe-eth-go/internal/models"
	"github.com/zircuit-multisig/safe-eth-go/internal/output"
)

//go:embed migrations/*
var migrationsFS embed.FS

const (
	GetMetadataQuery = `SELECT address, name, abi, partial_match, implementation, source, updated_at
		FROM contract_metadata WHERE address = $1`

	UpsertMetadataQuery = `INSERT INTO contract_metadata (address, name, abi, partial_match, implementation, source, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (address) DO UPDATE SET
			name = EXCLUDED.name,
			abi = EXCLUDED.abi,
			partial_match = EXCLUDED.partial_match,
			implementation = EXCLUDED.implementation,
			source = EXCLUDED.source,
			updated_at = NOW()`

	CountMetadataQuery = `SELECT COUNT(*) FROM contract_metadata`
)

var _ output.OutputHandler = (*PostgresStore)(nil)

// PostgresStore reads and writes contract_metadata rows. Addresses are stored
// in checksummed form.
type PostgresStore struct {
	pool *pgxpool.Pool
	db   *sql.DB
}

// NewPostgresStore connects to PostgreSQL and brings the schema up to date.
func NewPostgresStore(connString string, maxConns uint) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PostgreSQL connection string: %w", err)
	}

	if maxConns > math.MaxInt32 {
		return nil, fmt.Errorf("max connections exceeds maximum int32 value")
	}
	if maxConns > 0 {
		config.MaxConns = int32(maxConns)
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	s := &PostgresStore{
		pool: pool,
		db:   stdlib.OpenDBFromPool(pool),
	}

	// Run migrations. This is idempotent.
	if err = s.runMigrations(); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return s, nil
}

// NewStore wraps an already migrated database.
func NewStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// DB exposes the database handle for metrics collectors.
func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

// Get returns the stored metadata for address, or nil when there is none.
func (s *PostgresStore) Get(ctx context.Context, address string) (*models.ContractMetadata, error) {
	key, err := codec.ChecksumAddress(address)
	if err != nil {
		return nil, err
	}

	var (
		metadata       models.ContractMetadata
		abi            []byte
		implementation sql.NullString
	)
	err = s.db.QueryRowContext(ctx, GetMetadataQuery, key).Scan(
		&metadata.Address,
		&metadata.Name,
		&abi,
		&metadata.PartialMatch,
		&implementation,
		&metadata.Source,
		&metadata.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get contract metadata: %w", err)
	}
	if len(abi) > 0 {
		metadata.ABI = abi
	}
	metadata.Implementation = implementation.String
	return &metadata, nil
}

// Upsert inserts metadata or replaces the existing row for its address.
func (s *PostgresStore) Upsert(ctx context.Context, metadata *models.ContractMetadata) error {
	key, err := codec.ChecksumAddress(metadata.Address)
	if err != nil {
		return err
	}

	var abi any
	if metadata.HasABI() {
		abi = string(metadata.ABI)
	}
	implementation := sql.NullString{String: metadata.Implementation, Valid: metadata.Implementation != ""}

	_, err = s.db.ExecContext(ctx, UpsertMetadataQuery,
		key,
		metadata.Name,
		abi,
		metadata.PartialMatch,
		implementation,
		metadata.Source,
	)
	if err != nil {
		return fmt.Errorf("failed to write contract metadata: %w", err)
	}
	return nil
}

// Count returns the number of stored contracts.
func (s *PostgresStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, CountMetadataQuery).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count contract metadata: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) WriteMetadata(ctx context.Context, metadata *models.ContractMetadata) error {
	return s.Upsert(ctx, metadata)
}

func (s *PostgresStore) runMigrations() error {
	slog.Info("Running PostgreSQL migrations...")

	d, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	driver, err := migratepgx.WithInstance(stdlib.OpenDBFromPool(s.pool), &migratepgx.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", d, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}
	defer m.Close()

	if err = m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

func (s *PostgresStore) Close() error {
	if s.pool == nil {
		return s.db.Close()
	}
	slog.Info("Closing PostgreSQL connection pool")
	err := s.db.Close()
	s.pool.Close()
	slog.Info("PostgreSQL connection pool closed")
	return err
}
