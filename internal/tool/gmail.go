package tool

import (
	"context"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	toolGmailListEmails = "gmail_list_emails"
	toolGmailReadEmail  = "gmail_read_email"
	toolGmailSendEmail  = "gmail_send_email"
	toolGmailListLabels = "gmail_list_labels"

	gmailInboxURI   = "gmail://inbox"
	inboxMaxResults = 20
)

type gmailSvc interface {
	listEmailsSvc
	readEmailSvc
	sendEmailSvc
	listLabelsSvc
	Ready() bool
}

// Gmail adapts the Gmail service to the router. Tools carry the
// "gmail_" prefix, resources the "gmail" scheme.
type Gmail struct {
	svc    gmailSvc
	tools  []*mcp.Tool
	list   *ListEmails
	read   *ReadEmail
	send   *SendEmail
	labels *ListLabels
}

func NewGmail(svc gmailSvc) (*Gmail, error) {
	listSchema, err := jsonschema.For[ListEmailsRequest](nil)
	if err != nil {
		return nil, fmt.Errorf("jsonschema.For[ListEmailsRequest] failed: %w", err)
	}
	readSchema, err := jsonschema.For[ReadEmailRequest](nil)
	if err != nil {
		return nil, fmt.Errorf("jsonschema.For[ReadEmailRequest] failed: %w", err)
	}
	sendSchema, err := jsonschema.For[SendEmailRequest](nil)
	if err != nil {
		return nil, fmt.Errorf("jsonschema.For[SendEmailRequest] failed: %w", err)
	}
	labelsSchema, err := jsonschema.For[ListLabelsRequest](nil)
	if err != nil {
		return nil, fmt.Errorf("jsonschema.For[ListLabelsRequest] failed: %w", err)
	}

	return &Gmail{
		svc: svc,
		tools: []*mcp.Tool{
			{
				Name:        toolGmailListEmails,
				Description: "List emails from the Gmail mailbox, newest first",
				InputSchema: listSchema,
				Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true, IdempotentHint: true},
			},
			{
				Name:        toolGmailReadEmail,
				Description: "Read a single email including headers and decoded body",
				InputSchema: readSchema,
				Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true, IdempotentHint: true},
			},
			{
				Name:        toolGmailSendEmail,
				Description: "Send an email from the Gmail account",
				InputSchema: sendSchema,
			},
			{
				Name:        toolGmailListLabels,
				Description: "List all labels of the Gmail account",
				InputSchema: labelsSchema,
				Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true, IdempotentHint: true},
			},
		},
		list:   NewListEmails(svc),
		read:   NewReadEmail(svc),
		send:   NewSendEmail(svc),
		labels: NewListLabels(svc),
	}, nil
}

func (g *Gmail) Name() string   { return "gmail" }
func (g *Gmail) Prefix() string { return "gmail_" }
func (g *Gmail) Scheme() string { return "gmail" }

func (g *Gmail) Ready() bool { return g.svc.Ready() }

func (g *Gmail) Tools() []*mcp.Tool { return g.tools }

func (g *Gmail) CallTool(ctx context.Context, name string, args map[string]any) (any, error) {
	res, err := g.dispatch(ctx, name, args)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	return res, nil
}

func (g *Gmail) dispatch(ctx context.Context, name string, args map[string]any) (any, error) {
	switch name {
	case toolGmailListEmails:
		var input ListEmailsRequest
		if err := unmarshalArgs(args, &input); err != nil {
			return nil, err
		}

		return g.list.ListEmails(ctx, input)
	case toolGmailReadEmail:
		var input ReadEmailRequest
		if err := unmarshalArgs(args, &input); err != nil {
			return nil, err
		}

		return g.read.ReadEmail(ctx, input)
	case toolGmailSendEmail:
		var input SendEmailRequest
		if err := unmarshalArgs(args, &input); err != nil {
			return nil, err
		}

		return g.send.SendEmail(ctx, input)
	case toolGmailListLabels:
		var input ListLabelsRequest
		if err := unmarshalArgs(args, &input); err != nil {
			return nil, err
		}

		return g.labels.ListLabels(ctx, input)
	default:
		return nil, ErrUnknownTool
	}
}

func (g *Gmail) Resources() []*mcp.Resource {
	return []*mcp.Resource{
		{
			URI:         gmailInboxURI,
			Name:        "Gmail Inbox",
			Description: "Recent messages in the Gmail inbox",
			MIMEType:    "application/json",
		},
	}
}

// ReadResource serves gmail://inbox as a 20 message listing.
func (g *Gmail) ReadResource(ctx context.Context, uri string) (any, error) {
	if uri != gmailInboxURI {
		return nil, fmt.Errorf("%s: %w", uri, ErrUnknownResource)
	}
	if !g.svc.Ready() {
		return nil, fmt.Errorf("%s: %w", g.Name(), ErrNotConfigured)
	}

	summaries, err := g.list.ListEmails(ctx, ListEmailsRequest{MaxResults: inboxMaxResults})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", gmailInboxURI, err)
	}

	return summaries, nil
}
