package tool_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/api/gmail/v1"

	"github.com/hal9000y/gmail-postgres-mcp/internal/pgservice"
	"github.com/hal9000y/gmail-postgres-mcp/internal/tool"
)

type gmailSvcMock struct {
	ReadyFunc        func() bool
	ListMessagesFunc func(ctx context.Context, q string, maxResults int64, labelIDs []string) (*gmail.ListMessagesResponse, error)
	GetMessageFunc   func(ctx context.Context, msgID, format string) (*gmail.Message, error)
	SendMessageFunc  func(ctx context.Context, raw string) (*gmail.Message, error)
	ListLabelsFunc   func(ctx context.Context) (*gmail.ListLabelsResponse, error)
}

func (m *gmailSvcMock) Ready() bool {
	if m.ReadyFunc == nil {
		return true
	}
	return m.ReadyFunc()
}

func (m *gmailSvcMock) ListMessages(ctx context.Context, q string, maxResults int64, labelIDs []string) (*gmail.ListMessagesResponse, error) {
	return m.ListMessagesFunc(ctx, q, maxResults, labelIDs)
}

func (m *gmailSvcMock) GetMessage(ctx context.Context, msgID, format string) (*gmail.Message, error) {
	return m.GetMessageFunc(ctx, msgID, format)
}

func (m *gmailSvcMock) SendMessage(ctx context.Context, raw string) (*gmail.Message, error) {
	return m.SendMessageFunc(ctx, raw)
}

func (m *gmailSvcMock) ListLabels(ctx context.Context) (*gmail.ListLabelsResponse, error) {
	return m.ListLabelsFunc(ctx)
}

type pgStoreMock struct {
	ReadyFunc func() bool
	PingFunc  func(ctx context.Context) error
	QueryFunc func(ctx context.Context, sql string, params []any) (*pgservice.QueryResult, error)
	ExecFunc  func(ctx context.Context, sql string, params []any) (*pgservice.ExecResult, error)
}

func (m *pgStoreMock) Ready() bool {
	if m.ReadyFunc == nil {
		return true
	}
	return m.ReadyFunc()
}

func (m *pgStoreMock) Ping(ctx context.Context) error {
	if m.PingFunc == nil {
		return nil
	}
	return m.PingFunc(ctx)
}

func (m *pgStoreMock) Query(ctx context.Context, sql string, params []any) (*pgservice.QueryResult, error) {
	return m.QueryFunc(ctx, sql, params)
}

func (m *pgStoreMock) Exec(ctx context.Context, sql string, params []any) (*pgservice.ExecResult, error) {
	return m.ExecFunc(ctx, sql, params)
}

func newTestRouter(t *testing.T, gsvc *gmailSvcMock, store *pgStoreMock) *tool.Router {
	t.Helper()

	gmailAdapter, err := tool.NewGmail(gsvc)
	require.NoError(t, err)

	pgAdapter, err := tool.NewPostgres(store, "localhost", "postgres")
	require.NoError(t, err)

	return tool.NewRouter(gmailAdapter, pgAdapter)
}
