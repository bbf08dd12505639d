package tool

import (
	"context"
	"fmt"

	"google.golang.org/api/gmail/v1"

	"github.com/hal9000y/gmail-postgres-mcp/internal/format"
)

type SendEmailRequest struct {
	To       string `json:"to" jsonschema:"recipient address"`
	Subject  string `json:"subject" jsonschema:"message subject"`
	Body     string `json:"body" jsonschema:"plain text body"`
	HTMLBody string `json:"htmlBody,omitempty" jsonschema:"HTML body, sent instead of the plain text body when set"`
	Cc       string `json:"cc,omitempty" jsonschema:"carbon copy addresses"`
	Bcc      string `json:"bcc,omitempty" jsonschema:"blind carbon copy addresses"`
}

type SendEmailResponse struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId"`
	ThreadID  string `json:"threadId,omitempty"`
}

type sendEmailSvc interface {
	SendMessage(ctx context.Context, raw string) (*gmail.Message, error)
}

func NewSendEmail(svc sendEmailSvc) *SendEmail {
	return &SendEmail{
		svc: svc,
	}
}

type SendEmail struct {
	svc sendEmailSvc
}

func (t *SendEmail) SendEmail(ctx context.Context, input SendEmailRequest) (*SendEmailResponse, error) {
	if input.To == "" {
		return nil, fmt.Errorf("%w: to is required", ErrInvalidInput)
	}
	if input.Subject == "" {
		return nil, fmt.Errorf("%w: subject is required", ErrInvalidInput)
	}
	if input.Body == "" {
		return nil, fmt.Errorf("%w: body is required", ErrInvalidInput)
	}

	raw := format.Message{
		To:       input.To,
		Cc:       input.Cc,
		Bcc:      input.Bcc,
		Subject:  input.Subject,
		Body:     input.Body,
		HTMLBody: input.HTMLBody,
	}.EncodeRaw()

	msg, err := t.svc.SendMessage(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("svc.SendMessage failed: %w", err)
	}

	return &SendEmailResponse{
		Success:   true,
		MessageID: msg.Id,
		ThreadID:  msg.ThreadId,
	}, nil
}
