package tool

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	toolPostgresQuery          = "postgres_query"
	toolPostgresExecute        = "postgres_execute"
	toolPostgresGetTables      = "postgres_get_tables"
	toolPostgresGetTableSchema = "postgres_get_table_schema"

	postgresConnectionURI = "postgres://connection"
)

// isSelectStatement classifies a statement by its first keyword after
// trimming, case-insensitive. Writes reached through a leading CTE,
// such as WITH x AS (DELETE ...), are not detected.
func isSelectStatement(query string) bool {
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(query)), "SELECT")
}

// ConnectionStatus is the payload of the postgres://connection resource.
type ConnectionStatus struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Host     string `json:"host"`
}

type pgStore interface {
	queryStore
	execStore
	Ready() bool
	Ping(ctx context.Context) error
}

// Postgres adapts the database service to the router. Tools carry the
// "postgres_" prefix, resources the "postgres" scheme.
type Postgres struct {
	store       pgStore
	host        string
	database    string
	tools       []*mcp.Tool
	query       *Query
	execute     *Execute
	tables      *GetTables
	tableSchema *GetTableSchema
}

func NewPostgres(store pgStore, host, database string) (*Postgres, error) {
	querySchema, err := jsonschema.For[QueryRequest](nil)
	if err != nil {
		return nil, fmt.Errorf("jsonschema.For[QueryRequest] failed: %w", err)
	}
	executeSchema, err := jsonschema.For[ExecuteRequest](nil)
	if err != nil {
		return nil, fmt.Errorf("jsonschema.For[ExecuteRequest] failed: %w", err)
	}
	tablesSchema, err := jsonschema.For[GetTablesRequest](nil)
	if err != nil {
		return nil, fmt.Errorf("jsonschema.For[GetTablesRequest] failed: %w", err)
	}
	tableSchemaSchema, err := jsonschema.For[GetTableSchemaRequest](nil)
	if err != nil {
		return nil, fmt.Errorf("jsonschema.For[GetTableSchemaRequest] failed: %w", err)
	}

	return &Postgres{
		store:    store,
		host:     host,
		database: database,
		tools: []*mcp.Tool{
			{
				Name:        toolPostgresQuery,
				Description: "Run a read-only SQL query against the PostgreSQL database",
				InputSchema: querySchema,
				Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true, IdempotentHint: true},
			},
			{
				Name:        toolPostgresExecute,
				Description: "Run an INSERT, UPDATE, DELETE or DDL statement",
				InputSchema: executeSchema,
			},
			{
				Name:        toolPostgresGetTables,
				Description: "List tables of a schema with their types",
				InputSchema: tablesSchema,
				Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true, IdempotentHint: true},
			},
			{
				Name:        toolPostgresGetTableSchema,
				Description: "Describe the columns of a table",
				InputSchema: tableSchemaSchema,
				Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true, IdempotentHint: true},
			},
		},
		query:       NewQuery(store),
		execute:     NewExecute(store),
		tables:      NewGetTables(store),
		tableSchema: NewGetTableSchema(store),
	}, nil
}

func (p *Postgres) Name() string   { return "postgres" }
func (p *Postgres) Prefix() string { return "postgres_" }
func (p *Postgres) Scheme() string { return "postgres" }

func (p *Postgres) Ready() bool { return p.store.Ready() }

func (p *Postgres) Tools() []*mcp.Tool { return p.tools }

func (p *Postgres) CallTool(ctx context.Context, name string, args map[string]any) (any, error) {
	res, err := p.dispatch(ctx, name, args)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	return res, nil
}

func (p *Postgres) dispatch(ctx context.Context, name string, args map[string]any) (any, error) {
	switch name {
	case toolPostgresQuery:
		var input QueryRequest
		if err := unmarshalArgs(args, &input); err != nil {
			return nil, err
		}

		return p.query.Query(ctx, input)
	case toolPostgresExecute:
		var input ExecuteRequest
		if err := unmarshalArgs(args, &input); err != nil {
			return nil, err
		}

		return p.execute.Execute(ctx, input)
	case toolPostgresGetTables:
		var input GetTablesRequest
		if err := unmarshalArgs(args, &input); err != nil {
			return nil, err
		}

		return p.tables.GetTables(ctx, input)
	case toolPostgresGetTableSchema:
		var input GetTableSchemaRequest
		if err := unmarshalArgs(args, &input); err != nil {
			return nil, err
		}

		return p.tableSchema.GetTableSchema(ctx, input)
	default:
		return nil, ErrUnknownTool
	}
}

func (p *Postgres) Resources() []*mcp.Resource {
	return []*mcp.Resource{
		{
			URI:         postgresConnectionURI,
			Name:        "PostgreSQL Connection",
			Description: "Connection status of the configured PostgreSQL database",
			MIMEType:    "application/json",
		},
	}
}

// ReadResource serves postgres://connection. Unlike tool calls it never
// fails on a missing configuration; the status field carries the state.
func (p *Postgres) ReadResource(ctx context.Context, uri string) (any, error) {
	if uri != postgresConnectionURI {
		return nil, fmt.Errorf("%s: %w", uri, ErrUnknownResource)
	}

	status := ConnectionStatus{
		Status:   "disconnected",
		Database: p.database,
		Host:     p.host,
	}
	if p.store.Ready() {
		if err := p.store.Ping(ctx); err != nil {
			status.Status = "error"
		} else {
			status.Status = "connected"
		}
	}

	return status, nil
}
