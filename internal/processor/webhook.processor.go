package processor

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/nimasrn/webhook-gateway/internal/model"
	"github.com/nimasrn/webhook-gateway/internal/pipeline"
	"github.com/nimasrn/webhook-gateway/internal/queue"
	"github.com/nimasrn/webhook-gateway/pkg/logger"
)

// WebhookProcessor consumes webhook jobs off the queue and runs the
// parse→normalize→persist→rollup pipeline on each.
type WebhookProcessor struct {
	pipe *pipeline.Pipeline
}

func NewWebhookProcessor(pipe *pipeline.Pipeline) *WebhookProcessor {
	return &WebhookProcessor{pipe: pipe}
}

func (p *WebhookProcessor) GetType() string {
	return "webhook"
}

// Process decodes one queued job and feeds it through the pipeline.
// Returning nil acks the message; returning an error leaves it pending for
// the queue's retry/reclaim cycle (3 attempts, then DLQ).
func (p *WebhookProcessor) Process(ctx context.Context, queueMessage *queue.Message) error {
	var job pipeline.Job
	if err := json.Unmarshal(queueMessage.Data, &job); err != nil {
		// Malformed job payloads will not improve on retry.
		logger.Error("failed to unmarshal webhook job, dropping", "error", err)
		return nil
	}

	err := p.pipe.Process(ctx, &job)
	if err == nil {
		return nil
	}

	if errors.Is(err, model.ErrUnsupportedVendor) {
		// Deployment inconsistency: the vendor passed catalog routing but
		// has no parser. The retry/DLQ cycle keeps a record for inspection.
		logger.Error("no parser registered for routed vendor",
			"vendor", job.VendorSlug, "attempts", queueMessage.Attempts, "error", err)
		return err
	}

	logger.Error("webhook job failed, will retry",
		"vendor", job.VendorSlug, "attempts", queueMessage.Attempts, "error", err)
	return err
}
