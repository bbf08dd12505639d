package tool

import (
	"context"
	"fmt"

	"github.com/hal9000y/gmail-postgres-mcp/internal/pgservice"
)

type QueryRequest struct {
	Query  string `json:"query" jsonschema:"the SELECT statement to run"`
	Params []any  `json:"params,omitempty" jsonschema:"positional parameters referenced as $1, $2, ..."`
}

type queryStore interface {
	Query(ctx context.Context, sql string, params []any) (*pgservice.QueryResult, error)
}

func NewQuery(store queryStore) *Query {
	return &Query{
		store: store,
	}
}

type Query struct {
	store queryStore
}

// Query runs a read statement. The statement kind is checked before
// anything reaches the database.
func (t *Query) Query(ctx context.Context, input QueryRequest) (*pgservice.QueryResult, error) {
	if input.Query == "" {
		return nil, fmt.Errorf("%w: query is required", ErrInvalidInput)
	}
	if !isSelectStatement(input.Query) {
		return nil, fmt.Errorf("%w: only SELECT statements are accepted, use postgres_execute for writes", ErrWrongOperation)
	}

	result, err := t.store.Query(ctx, input.Query, input.Params)
	if err != nil {
		return nil, fmt.Errorf("store.Query failed: %w", err)
	}

	return result, nil
}
