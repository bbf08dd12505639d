package tool_test

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/gmail/v1"

	"github.com/hal9000y/gmail-postgres-mcp/internal/tool"
)

func b64url(s string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(s))
}

func TestListEmails(t *testing.T) {
	var gotQ string
	var gotMax int64
	var gotLabels []string

	gsvc := &gmailSvcMock{
		ListMessagesFunc: func(_ context.Context, q string, maxResults int64, labelIDs []string) (*gmail.ListMessagesResponse, error) {
			gotQ, gotMax, gotLabels = q, maxResults, labelIDs
			return &gmail.ListMessagesResponse{
				Messages: []*gmail.Message{
					{Id: "m1", ThreadId: "t1"},
					{Id: "m2", ThreadId: "t2"},
				},
			}, nil
		},
	}
	router := newTestRouter(t, gsvc, &pgStoreMock{})

	res, err := router.CallTool(context.Background(), "gmail_list_emails", map[string]any{
		"query":      "is:unread",
		"maxResults": 5,
		"labelIds":   []any{"INBOX"},
	})
	require.NoError(t, err)

	assert.Equal(t, []tool.EmailSummary{
		{ID: "m1", ThreadID: "t1"},
		{ID: "m2", ThreadID: "t2"},
	}, res)
	assert.Equal(t, "is:unread", gotQ)
	assert.EqualValues(t, 5, gotMax)
	assert.Equal(t, []string{"INBOX"}, gotLabels)
}

func TestListEmailsDefaultMaxResults(t *testing.T) {
	var gotMax int64

	gsvc := &gmailSvcMock{
		ListMessagesFunc: func(_ context.Context, _ string, maxResults int64, _ []string) (*gmail.ListMessagesResponse, error) {
			gotMax = maxResults
			return &gmail.ListMessagesResponse{}, nil
		},
	}
	router := newTestRouter(t, gsvc, &pgStoreMock{})

	res, err := router.CallTool(context.Background(), "gmail_list_emails", map[string]any{})
	require.NoError(t, err)

	assert.EqualValues(t, 10, gotMax)
	assert.Equal(t, []tool.EmailSummary{}, res)
}

func TestReadEmail(t *testing.T) {
	cases := []struct {
		name     string
		args     map[string]any
		msg      *gmail.Message
		svcErr   error
		expected *tool.EmailMessage
		errIs    error
		errText  string
	}{
		{
			name: "decodes top level body",
			args: map[string]any{"messageId": "m1"},
			msg: &gmail.Message{
				Id:       "m1",
				ThreadId: "t1",
				LabelIds: []string{"INBOX"},
				Snippet:  "hi there",
				Payload: &gmail.MessagePart{
					Headers: []*gmail.MessagePartHeader{
						{Name: "Subject", Value: "Greetings"},
						{Name: "From", Value: "a@example.com"},
					},
					Body: &gmail.MessagePartBody{Data: "aGk"},
				},
			},
			expected: &tool.EmailMessage{
				ID:       "m1",
				ThreadID: "t1",
				LabelIDs: []string{"INBOX"},
				Snippet:  "hi there",
				Headers:  map[string]string{"subject": "Greetings", "from": "a@example.com"},
				Body:     "hi",
			},
		},
		{
			name: "joins multipart bodies",
			args: map[string]any{"messageId": "m2"},
			msg: &gmail.Message{
				Id:       "m2",
				ThreadId: "t2",
				Payload: &gmail.MessagePart{
					Parts: []*gmail.MessagePart{
						{Body: &gmail.MessagePartBody{Data: b64url("part one")}},
						{Body: &gmail.MessagePartBody{Data: b64url("part two")}},
					},
				},
			},
			expected: &tool.EmailMessage{
				ID:       "m2",
				ThreadID: "t2",
				Body:     "part one\n---\npart two",
			},
		},
		{
			name:  "missing messageId",
			args:  map[string]any{},
			errIs: tool.ErrInvalidInput,
		},
		{
			name:    "unsupported format",
			args:    map[string]any{"messageId": "m1", "format": "shiny"},
			errIs:   tool.ErrInvalidInput,
			errText: "shiny",
		},
		{
			name:    "backend failure is wrapped",
			args:    map[string]any{"messageId": "m1"},
			svcErr:  errors.New("token expired"),
			errText: "gmail_read_email: svc.GetMessage failed: token expired",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gsvc := &gmailSvcMock{
				GetMessageFunc: func(_ context.Context, _, _ string) (*gmail.Message, error) {
					return tc.msg, tc.svcErr
				},
			}
			router := newTestRouter(t, gsvc, &pgStoreMock{})

			res, err := router.CallTool(context.Background(), "gmail_read_email", tc.args)
			if tc.errIs != nil || tc.errText != "" {
				require.Error(t, err)
				if tc.errIs != nil {
					assert.ErrorIs(t, err, tc.errIs)
				}
				if tc.errText != "" {
					assert.Contains(t, err.Error(), tc.errText)
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expected, res)
		})
	}
}

func TestReadEmailDefaultsToFullFormat(t *testing.T) {
	var gotFormat string

	gsvc := &gmailSvcMock{
		GetMessageFunc: func(_ context.Context, _, format string) (*gmail.Message, error) {
			gotFormat = format
			return &gmail.Message{Id: "m1"}, nil
		},
	}
	router := newTestRouter(t, gsvc, &pgStoreMock{})

	_, err := router.CallTool(context.Background(), "gmail_read_email", map[string]any{"messageId": "m1"})
	require.NoError(t, err)
	assert.Equal(t, "full", gotFormat)
}

func TestSendEmail(t *testing.T) {
	cases := []struct {
		name        string
		args        map[string]any
		expectedRaw string
		errIs       error
	}{
		{
			name: "plain text",
			args: map[string]any{
				"to":      "rcpt@example.com",
				"subject": "Hello",
				"body":    "plain content",
			},
			expectedRaw: "To: rcpt@example.com\r\n" +
				"Subject: Hello\r\n" +
				"MIME-Version: 1.0\r\n" +
				"Content-Type: text/plain; charset=utf-8\r\n" +
				"\r\n" +
				"plain content",
		},
		{
			name: "html body wins over plain body",
			args: map[string]any{
				"to":       "rcpt@example.com",
				"cc":       "cc@example.com",
				"bcc":      "bcc@example.com",
				"subject":  "Hello",
				"body":     "ignored",
				"htmlBody": "<p>rich content</p>",
			},
			expectedRaw: "To: rcpt@example.com\r\n" +
				"Cc: cc@example.com\r\n" +
				"Bcc: bcc@example.com\r\n" +
				"Subject: Hello\r\n" +
				"MIME-Version: 1.0\r\n" +
				"Content-Type: text/html; charset=utf-8\r\n" +
				"\r\n" +
				"<p>rich content</p>",
		},
		{
			name:  "missing to",
			args:  map[string]any{"subject": "Hello", "body": "x"},
			errIs: tool.ErrInvalidInput,
		},
		{
			name:  "missing subject",
			args:  map[string]any{"to": "rcpt@example.com", "body": "x"},
			errIs: tool.ErrInvalidInput,
		},
		{
			name:  "missing body",
			args:  map[string]any{"to": "rcpt@example.com", "subject": "Hello"},
			errIs: tool.ErrInvalidInput,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var gotRaw string
			gsvc := &gmailSvcMock{
				SendMessageFunc: func(_ context.Context, raw string) (*gmail.Message, error) {
					gotRaw = raw
					return &gmail.Message{Id: "sent-1", ThreadId: "thread-1"}, nil
				},
			}
			router := newTestRouter(t, gsvc, &pgStoreMock{})

			res, err := router.CallTool(context.Background(), "gmail_send_email", tc.args)
			if tc.errIs != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tc.errIs)
				assert.Empty(t, gotRaw, "nothing must be sent on invalid input")
				return
			}

			require.NoError(t, err)
			assert.Equal(t, &tool.SendEmailResponse{
				Success:   true,
				MessageID: "sent-1",
				ThreadID:  "thread-1",
			}, res)

			decoded, err := base64.RawURLEncoding.DecodeString(gotRaw)
			require.NoError(t, err, "raw payload must be base64url without padding")
			assert.Equal(t, tc.expectedRaw, string(decoded))
		})
	}
}

func TestListLabels(t *testing.T) {
	labels := []*gmail.Label{
		{Id: "INBOX", Name: "INBOX", Type: "system", MessagesTotal: 42},
		{Id: "Label_7", Name: "receipts", Type: "user"},
	}
	gsvc := &gmailSvcMock{
		ListLabelsFunc: func(context.Context) (*gmail.ListLabelsResponse, error) {
			return &gmail.ListLabelsResponse{Labels: labels}, nil
		},
	}
	router := newTestRouter(t, gsvc, &pgStoreMock{})

	res, err := router.CallTool(context.Background(), "gmail_list_labels", map[string]any{})
	require.NoError(t, err)

	// Vendor label objects pass through untouched.
	assert.Equal(t, labels, res)
}

func TestGmailInboxResource(t *testing.T) {
	var gotMax int64
	var gotQ string

	gsvc := &gmailSvcMock{
		ListMessagesFunc: func(_ context.Context, q string, maxResults int64, _ []string) (*gmail.ListMessagesResponse, error) {
			gotQ, gotMax = q, maxResults
			return &gmail.ListMessagesResponse{
				Messages: []*gmail.Message{{Id: "m1", ThreadId: "t1"}},
			}, nil
		},
	}
	router := newTestRouter(t, gsvc, &pgStoreMock{})

	res, err := router.ReadResource(context.Background(), "gmail://inbox")
	require.NoError(t, err)

	assert.Equal(t, []tool.EmailSummary{{ID: "m1", ThreadID: "t1"}}, res)
	assert.EqualValues(t, 20, gotMax)
	assert.Empty(t, gotQ)
}

func TestGmailInboxResourceNotConfigured(t *testing.T) {
	router := newTestRouter(t,
		&gmailSvcMock{ReadyFunc: func() bool { return false }},
		&pgStoreMock{},
	)

	_, err := router.ReadResource(context.Background(), "gmail://inbox")
	assert.ErrorIs(t, err, tool.ErrNotConfigured)
}
