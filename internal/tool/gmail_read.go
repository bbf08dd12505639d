package tool

import (
	"context"
	"fmt"

	"google.golang.org/api/gmail/v1"

	"github.com/hal9000y/gmail-postgres-mcp/internal/format"
)

type ReadEmailRequest struct {
	MessageID string `json:"messageId" jsonschema:"the ID of the message to retrieve"`
	Format    string `json:"format,omitempty" jsonschema:"detail level: full, metadata, minimal or raw (default full)"`
}

// EmailMessage is the decoded form of one message. Headers are keyed by
// lowercased header name; Body joins all body-bearing MIME parts.
type EmailMessage struct {
	ID       string            `json:"id"`
	ThreadID string            `json:"threadId"`
	LabelIDs []string          `json:"labelIds,omitempty"`
	Snippet  string            `json:"snippet,omitempty"`
	Headers  map[string]string `json:"headers,omitempty"`
	Body     string            `json:"body,omitempty"`
}

type readEmailSvc interface {
	GetMessage(ctx context.Context, msgID, format string) (*gmail.Message, error)
}

func NewReadEmail(svc readEmailSvc) *ReadEmail {
	return &ReadEmail{
		svc: svc,
	}
}

type ReadEmail struct {
	svc readEmailSvc
}

func (t *ReadEmail) ReadEmail(ctx context.Context, input ReadEmailRequest) (*EmailMessage, error) {
	if input.MessageID == "" {
		return nil, fmt.Errorf("%w: messageId is required", ErrInvalidInput)
	}
	if input.Format == "" {
		input.Format = "full"
	}
	switch input.Format {
	case "full", "metadata", "minimal", "raw":
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", ErrInvalidInput, input.Format)
	}

	msg, err := t.svc.GetMessage(ctx, input.MessageID, input.Format)
	if err != nil {
		return nil, fmt.Errorf("svc.GetMessage failed: %w", err)
	}

	email := &EmailMessage{
		ID:       msg.Id,
		ThreadID: msg.ThreadId,
		LabelIDs: msg.LabelIds,
		Snippet:  msg.Snippet,
		Body:     format.ExtractBody(msg.Payload),
	}
	if msg.Payload != nil {
		email.Headers = format.HeaderMap(msg.Payload.Headers)
	}

	return email, nil
}
