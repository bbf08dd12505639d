package tool

import (
	"context"
	"fmt"

	"github.com/hal9000y/gmail-postgres-mcp/internal/pgservice"
)

const defaultSchema = "public"

const tablesSQL = "SELECT table_name, table_type FROM information_schema.tables " +
	"WHERE table_schema = $1 ORDER BY table_name"

type GetTablesRequest struct {
	Schema string `json:"schema,omitempty" jsonschema:"schema to list tables from (default public)"`
}

type tableStore interface {
	Query(ctx context.Context, sql string, params []any) (*pgservice.QueryResult, error)
}

func NewGetTables(store tableStore) *GetTables {
	return &GetTables{
		store: store,
	}
}

type GetTables struct {
	store tableStore
}

func (t *GetTables) GetTables(ctx context.Context, input GetTablesRequest) ([]map[string]any, error) {
	if input.Schema == "" {
		input.Schema = defaultSchema
	}

	result, err := t.store.Query(ctx, tablesSQL, []any{input.Schema})
	if err != nil {
		return nil, fmt.Errorf("store.Query failed: %w", err)
	}

	return result.Rows, nil
}
