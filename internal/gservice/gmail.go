// Package gservice wraps the Gmail API client.
package gservice

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/hal9000y/gmail-postgres-mcp/internal/auth"
)

const gmailUserID = "me"

func NewGmail(cfg *oauth2.Config, tok *auth.Token) *GMail {
	return &GMail{
		cfg: cfg,
		tok: tok,
	}
}

type GMail struct {
	cfg *oauth2.Config
	tok *auth.Token
}

// Ready reports whether OAuth credentials and a token are available.
func (m *GMail) Ready() bool {
	if m.cfg == nil || m.cfg.ClientID == "" || m.cfg.ClientSecret == "" {
		return false
	}
	_, err := m.tok.OAuthToken()

	return err == nil
}

func (m *GMail) ListMessages(ctx context.Context, q string, maxResults int64, labelIDs []string) (*gmail.ListMessagesResponse, error) {
	svc, err := m.newSvc(ctx)
	if err != nil {
		return nil, fmt.Errorf("newSvc failed: %w", err)
	}

	call := svc.Users.Messages.List(gmailUserID).
		MaxResults(maxResults).
		Context(ctx)
	if q != "" {
		call = call.Q(q)
	}
	if len(labelIDs) > 0 {
		call = call.LabelIds(labelIDs...)
	}

	result, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("messages.List failed: %w", err)
	}

	return result, nil
}

func (m *GMail) GetMessage(ctx context.Context, msgID, format string) (*gmail.Message, error) {
	svc, err := m.newSvc(ctx)
	if err != nil {
		return nil, fmt.Errorf("newSvc failed: %w", err)
	}

	call := svc.Users.Messages.Get(gmailUserID, msgID).Context(ctx)
	if format != "" {
		call = call.Format(format)
	}

	msg, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("messages.Get failed: %w", err)
	}

	return msg, nil
}

// SendMessage sends a raw RFC 2822 message encoded as base64url.
func (m *GMail) SendMessage(ctx context.Context, raw string) (*gmail.Message, error) {
	svc, err := m.newSvc(ctx)
	if err != nil {
		return nil, fmt.Errorf("newSvc failed: %w", err)
	}

	msg, err := svc.Users.Messages.Send(gmailUserID, &gmail.Message{Raw: raw}).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("messages.Send failed: %w", err)
	}

	return msg, nil
}

func (m *GMail) ListLabels(ctx context.Context) (*gmail.ListLabelsResponse, error) {
	svc, err := m.newSvc(ctx)
	if err != nil {
		return nil, fmt.Errorf("newSvc failed: %w", err)
	}

	result, err := svc.Users.Labels.List(gmailUserID).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("labels.List failed: %w", err)
	}

	return result, nil
}

func (m *GMail) newSvc(ctx context.Context) (*gmail.Service, error) {
	t, err := m.tok.OAuthToken()
	if err != nil {
		return nil, fmt.Errorf("tok.OAuthToken failed: %w", err)
	}

	clt := m.cfg.Client(ctx, t)

	svc, err := gmail.NewService(ctx, option.WithHTTPClient(clt))
	if err != nil {
		return nil, fmt.Errorf("gmail.NewService failed: %w", err)
	}

	return svc, nil
}
