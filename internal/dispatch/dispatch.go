package dispatch

import (
	"context"

	"github.com/nimasrn/webhook-gateway/internal/pipeline"
	"github.com/nimasrn/webhook-gateway/pkg/logger"
	"github.com/nimasrn/webhook-gateway/pkg/prom"
)

// Publisher is the queue-side contract. It must tolerate being absent
// entirely: lightweight deployment profiles run with no queue backend at
// all and every webhook processes inline.
type Publisher interface {
	PublishJSON(ctx context.Context, data interface{}, metadata map[string]string) (string, error)
}

// Mode records which path a request took, for the response log line.
type Mode string

const (
	ModeEnqueued Mode = "enqueued"
	ModeInline   Mode = "inline"
)

// Controller accepts a routed webhook job and either enqueues it for the
// worker pool or, when the queue is unreachable for any reason, runs the
// full pipeline synchronously before the HTTP response. Vendors see the
// same fast acknowledgment either way; they retry aggressively on slow or
// non-2xx responses.
type Controller struct {
	queue Publisher
	pipe  *pipeline.Pipeline
}

func NewController(queue Publisher, pipe *pipeline.Pipeline) *Controller {
	return &Controller{queue: queue, pipe: pipe}
}

// Dispatch moves a job from routed to enqueued or processed-inline. Every
// queue problem is treated as recoverable via inline execution; an event is
// never dropped because the queue misbehaved. Retry policy for enqueued
// jobs lives in the queue layer, not here.
func (c *Controller) Dispatch(ctx context.Context, job *pipeline.Job) (Mode, error) {
	if c.queue != nil {
		if _, err := c.queue.PublishJSON(ctx, job, map[string]string{"vendor": job.VendorSlug}); err == nil {
			return ModeEnqueued, nil
		} else {
			logger.Warn("queue enqueue failed, falling back to inline processing",
				"vendor", job.VendorSlug, "error", err)
		}
	}

	prom.IncInlineFallback()
	if err := c.pipe.Process(ctx, job); err != nil {
		return ModeInline, err
	}
	return ModeInline, nil
}
