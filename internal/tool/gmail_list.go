package tool

import (
	"context"
	"fmt"

	"google.golang.org/api/gmail/v1"
)

type ListEmailsRequest struct {
	Query      string   `json:"query,omitempty" jsonschema:"Gmail search query to filter messages"`
	MaxResults int64    `json:"maxResults,omitempty" jsonschema:"maximum number of messages to return (default 10)"`
	LabelIDs   []string `json:"labelIds,omitempty" jsonschema:"only return messages carrying all of these label IDs"`
}

// EmailSummary is one entry of a list result. Full content requires a
// follow-up gmail_read_email call.
type EmailSummary struct {
	ID       string `json:"id"`
	ThreadID string `json:"threadId"`
}

type listEmailsSvc interface {
	ListMessages(ctx context.Context, q string, maxResults int64, labelIDs []string) (*gmail.ListMessagesResponse, error)
}

func NewListEmails(svc listEmailsSvc) *ListEmails {
	return &ListEmails{
		svc: svc,
	}
}

type ListEmails struct {
	svc listEmailsSvc
}

func (t *ListEmails) ListEmails(ctx context.Context, input ListEmailsRequest) ([]EmailSummary, error) {
	if input.MaxResults <= 0 {
		input.MaxResults = 10
	}

	result, err := t.svc.ListMessages(ctx, input.Query, input.MaxResults, input.LabelIDs)
	if err != nil {
		return nil, fmt.Errorf("svc.ListMessages failed: %w", err)
	}

	summaries := make([]EmailSummary, 0, len(result.Messages))
	for _, m := range result.Messages {
		summaries = append(summaries, EmailSummary{
			ID:       m.Id,
			ThreadID: m.ThreadId,
		})
	}

	return summaries, nil
}
