package tool

import (
	"context"
	"fmt"

	"google.golang.org/api/gmail/v1"
)

type ListLabelsRequest struct{}

type listLabelsSvc interface {
	ListLabels(ctx context.Context) (*gmail.ListLabelsResponse, error)
}

func NewListLabels(svc listLabelsSvc) *ListLabels {
	return &ListLabels{
		svc: svc,
	}
}

type ListLabels struct {
	svc listLabelsSvc
}

// ListLabels returns the vendor label objects untouched.
func (t *ListLabels) ListLabels(ctx context.Context, _ ListLabelsRequest) ([]*gmail.Label, error) {
	result, err := t.svc.ListLabels(ctx)
	if err != nil {
		return nil, fmt.Errorf("svc.ListLabels failed: %w", err)
	}

	if result.Labels == nil {
		return []*gmail.Label{}, nil
	}

	return result.Labels, nil
}
