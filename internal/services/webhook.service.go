package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nimasrn/webhook-gateway/internal/dispatch"
	"github.com/nimasrn/webhook-gateway/internal/pipeline"
	"github.com/nimasrn/webhook-gateway/internal/resolver"
	"github.com/nimasrn/webhook-gateway/pkg/prom"
)

// WebhookService ties identity resolution to the dispatch controller: one
// call per inbound webhook, covering received → routed → {enqueued |
// processed-inline}.
type WebhookService struct {
	resolver   *resolver.Resolver
	controller *dispatch.Controller
}

func NewWebhookService(r *resolver.Resolver, c *dispatch.Controller) *WebhookService {
	return &WebhookService{resolver: r, controller: c}
}

// Accept resolves the routing triple and dispatches the raw body. The
// returned identity is echoed in the HTTP response; resolution and
// authorization errors pass through untouched so the handler can map them
// to precise status codes.
func (s *WebhookService) Accept(ctx context.Context, req resolver.Request) (*resolver.Identity, dispatch.Mode, error) {
	identity, err := s.resolver.Resolve(ctx, req)
	if err != nil {
		return nil, "", err
	}

	prom.IncWebhookReceived(identity.VendorSlug, identity.ChannelType)

	job := &pipeline.Job{
		UserID:      identity.UserID,
		ProjectID:   identity.ProjectID,
		VendorID:    identity.VendorID,
		ChannelID:   identity.ChannelID,
		VendorSlug:  identity.VendorSlug,
		ChannelType: identity.ChannelType,
		ReceivedAt:  time.Now().UTC(),
		Body:        json.RawMessage(req.Body),
	}

	mode, err := s.controller.Dispatch(ctx, job)
	if err != nil {
		return identity, mode, err
	}
	return identity, mode, nil
}
