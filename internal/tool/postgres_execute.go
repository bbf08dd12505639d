package tool

import (
	"context"
	"fmt"

	"github.com/hal9000y/gmail-postgres-mcp/internal/pgservice"
)

type ExecuteRequest struct {
	Query  string `json:"query" jsonschema:"the write statement to run (INSERT, UPDATE, DELETE, DDL)"`
	Params []any  `json:"params,omitempty" jsonschema:"positional parameters referenced as $1, $2, ..."`
}

type ExecuteResponse struct {
	Success  bool   `json:"success"`
	RowCount int64  `json:"rowCount"`
	Command  string `json:"command"`
}

type execStore interface {
	Exec(ctx context.Context, sql string, params []any) (*pgservice.ExecResult, error)
}

func NewExecute(store execStore) *Execute {
	return &Execute{
		store: store,
	}
}

type Execute struct {
	store execStore
}

// Execute runs a write statement. The statement kind is checked before
// anything reaches the database.
func (t *Execute) Execute(ctx context.Context, input ExecuteRequest) (*ExecuteResponse, error) {
	if input.Query == "" {
		return nil, fmt.Errorf("%w: query is required", ErrInvalidInput)
	}
	if isSelectStatement(input.Query) {
		return nil, fmt.Errorf("%w: use postgres_query for SELECT statements", ErrWrongOperation)
	}

	result, err := t.store.Exec(ctx, input.Query, input.Params)
	if err != nil {
		return nil, fmt.Errorf("store.Exec failed: %w", err)
	}

	return &ExecuteResponse{
		Success:  true,
		RowCount: result.RowsAffected,
		Command:  result.Command,
	}, nil
}
