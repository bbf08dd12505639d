package tool

import (
	"context"
	"fmt"
)

const columnsSQL = "SELECT column_name, data_type, is_nullable, column_default, " +
	"character_maximum_length, numeric_precision, numeric_scale " +
	"FROM information_schema.columns " +
	"WHERE table_schema = $1 AND table_name = $2 ORDER BY ordinal_position"

type GetTableSchemaRequest struct {
	TableName string `json:"tableName" jsonschema:"name of the table to describe"`
	Schema    string `json:"schema,omitempty" jsonschema:"schema containing the table (default public)"`
}

func NewGetTableSchema(store tableStore) *GetTableSchema {
	return &GetTableSchema{
		store: store,
	}
}

type GetTableSchema struct {
	store tableStore
}

func (t *GetTableSchema) GetTableSchema(ctx context.Context, input GetTableSchemaRequest) ([]map[string]any, error) {
	if input.TableName == "" {
		return nil, fmt.Errorf("%w: tableName is required", ErrInvalidInput)
	}
	if input.Schema == "" {
		input.Schema = defaultSchema
	}

	result, err := t.store.Query(ctx, columnsSQL, []any{input.Schema, input.TableName})
	if err != nil {
		return nil, fmt.Errorf("store.Query failed: %w", err)
	}

	return result.Rows, nil
}
