// Package pgservice wraps a PostgreSQL connection pool.
package pgservice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hal9000y/gmail-postgres-mcp/internal/config"
)

// ErrNoPool indicates the service was built without connection settings.
var ErrNoPool = errors.New("no database connection pool")

// QueryResult carries rows plus the field metadata of a SELECT.
type QueryResult struct {
	Rows     []map[string]any `json:"rows"`
	RowCount int64            `json:"rowCount"`
	Fields   []Field          `json:"fields"`
}

// Field describes one column of a result set.
type Field struct {
	Name       string `json:"name"`
	DataTypeID uint32 `json:"dataTypeID"`
}

// ExecResult carries the outcome of a write statement.
type ExecResult struct {
	RowsAffected int64  `json:"rowsAffected"`
	Command      string `json:"command"`
}

// Service executes SQL against a lazily connected pool. The zero pool
// (unconfigured server) is valid and reports Ready() == false.
type Service struct {
	pool *pgxpool.Pool
}

// New builds the service. Without a configured password no pool is
// created and every call returns ErrNoPool.
func New(ctx context.Context, cfg *config.Config) (*Service, error) {
	if !cfg.PostgresConfigured() {
		return &Service{}, nil
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.PostgresConnectionString())
	if err != nil {
		return nil, fmt.Errorf("pgxpool.ParseConfig failed: %w", err)
	}
	poolCfg.MaxConns = cfg.PostgresMaxConns
	poolCfg.MaxConnIdleTime = cfg.PostgresIdleTimeout
	poolCfg.ConnConfig.ConnectTimeout = cfg.PostgresConnectTimeout

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.NewWithConfig failed: %w", err)
	}

	return &Service{pool: pool}, nil
}

// Ready reports whether a pool exists. It does not probe connectivity.
func (s *Service) Ready() bool {
	return s.pool != nil
}

func (s *Service) Query(ctx context.Context, sql string, params []any) (*QueryResult, error) {
	if s.pool == nil {
		return nil, ErrNoPool
	}

	rows, err := s.pool.Query(ctx, sql, params...)
	if err != nil {
		return nil, fmt.Errorf("pool.Query failed: %w", err)
	}

	fields := make([]Field, 0, len(rows.FieldDescriptions()))
	for _, fd := range rows.FieldDescriptions() {
		fields = append(fields, Field{Name: fd.Name, DataTypeID: fd.DataTypeOID})
	}

	collected, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, fmt.Errorf("pgx.CollectRows failed: %w", err)
	}
	if collected == nil {
		collected = []map[string]any{}
	}

	return &QueryResult{
		Rows:     collected,
		RowCount: int64(len(collected)),
		Fields:   fields,
	}, nil
}

func (s *Service) Exec(ctx context.Context, sql string, params []any) (*ExecResult, error) {
	if s.pool == nil {
		return nil, ErrNoPool
	}

	tag, err := s.pool.Exec(ctx, sql, params...)
	if err != nil {
		return nil, fmt.Errorf("pool.Exec failed: %w", err)
	}

	command := ""
	if parts := strings.Fields(tag.String()); len(parts) > 0 {
		command = parts[0]
	}

	return &ExecResult{
		RowsAffected: tag.RowsAffected(),
		Command:      command,
	}, nil
}

// Ping checks connectivity, acquiring a connection if needed.
func (s *Service) Ping(ctx context.Context) error {
	if s.pool == nil {
		return ErrNoPool
	}

	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("pool.Ping failed: %w", err)
	}

	return nil
}

// Close releases the pool. Safe to call when unconfigured.
func (s *Service) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}
