package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nimasrn/webhook-gateway/internal/model"
	"github.com/nimasrn/webhook-gateway/internal/repository"
	"github.com/nimasrn/webhook-gateway/internal/vendors"
	"github.com/nimasrn/webhook-gateway/pkg/logger"
	"github.com/nimasrn/webhook-gateway/pkg/prom"
)

// Job is the unit of work carried from the dispatch controller to the
// pipeline, either through the queue or inline. It holds the raw vendor
// body verbatim plus the resolved tenant identity.
type Job struct {
	UserID      int64           `json:"user_id"`
	ProjectID   int64           `json:"project_id"`
	VendorID    int64           `json:"vendor_id"`
	ChannelID   int64           `json:"channel_id"`
	VendorSlug  string          `json:"vendor_slug"`
	ChannelType string          `json:"channel_type"`
	ReceivedAt  time.Time       `json:"received_at"`
	Body        json.RawMessage `json:"body"`
}

type MessageRepository interface {
	FindByIdentity(ctx context.Context, userID, vendorID, channelID, projectID int64, vendorMessageID string) (*model.Message, error)
	Create(ctx context.Context, msg *model.Message) (*model.Message, error)
}

type MessageEventRepository interface {
	Create(ctx context.Context, ev *model.MessageEvent) (*model.MessageEvent, error)
	CountByStatus(ctx context.Context, userID, vendorID, channelID, projectID int64, from, to time.Time) (map[model.CanonicalStatus]int64, error)
	ListMissingRef(ctx context.Context, afterID int64, limit int) ([]*model.MessageEvent, error)
	CountPopulatedRef(ctx context.Context) (int64, error)
	UpdateRef(ctx context.Context, id int64, ref string) error
}

type AnalyticsRepository interface {
	Upsert(ctx context.Context, a *model.AnalyticsCache) error
}

// Pipeline runs parse → normalize → persist → rollup for one webhook job.
type Pipeline struct {
	messages MessageRepository
	events   MessageEventRepository
	rollup   *RollupUpdater
}

func New(messages MessageRepository, events MessageEventRepository, analytics AnalyticsRepository) *Pipeline {
	return &Pipeline{
		messages: messages,
		events:   events,
		rollup:   NewRollupUpdater(events, analytics),
	}
}

// Process parses the raw vendor body into one or more events and persists
// each of them. Parse-level defaults never fail a job; an unsupported
// vendor or a persistence error does.
func (p *Pipeline) Process(ctx context.Context, job *Job) error {
	start := time.Now()

	events, err := vendors.ParseBody(job.VendorSlug, job.ChannelType, job.Body)
	if err != nil {
		return err
	}

	for i := range events {
		if err := p.persistEvent(ctx, job, &events[i]); err != nil {
			return fmt.Errorf("persist event %d/%d: %w", i+1, len(events), err)
		}
	}

	prom.AddWebhookProcessDuration(time.Since(start).Seconds(), job.VendorSlug)
	return nil
}

// persistEvent attaches one parsed event to its canonical Message,
// creating the Message on first sight. A Message must always exist so the
// event can be recorded; missing identity fields get placeholders rather
// than blocking.
func (p *Pipeline) persistEvent(ctx context.Context, job *Job, ev *vendors.Event) error {
	msg, err := p.findOrCreateMessage(ctx, job, ev)
	if err != nil {
		return err
	}

	timestamp := ev.Timestamp
	if timestamp.IsZero() {
		timestamp = job.ReceivedAt
		if timestamp.IsZero() {
			timestamp = time.Now().UTC()
		}
	}

	event := &model.MessageEvent{
		MessageID:      msg.ID,
		Status:         ev.Status,
		Reason:         ev.Reason,
		EventTimestamp: timestamp,
		RawPayload:     string(ev.Raw),
		VendorRefID:    refFromEvent(job, ev),
		UserID:         job.UserID,
		ProjectID:      job.ProjectID,
		VendorID:       job.VendorID,
		ChannelID:      job.ChannelID,
	}
	if _, err := p.events.Create(ctx, event); err != nil {
		return err
	}
	prom.IncEventPersisted(job.VendorSlug, string(ev.Status))

	// Rollup failures never propagate into the write path.
	if err := p.rollup.UpdateToday(ctx, job.UserID, job.VendorID, job.ChannelID, job.ProjectID); err != nil {
		logger.Error("analytics rollup update failed",
			"user_id", job.UserID, "vendor", job.VendorSlug, "error", err)
		prom.IncRollupFailure()
	}

	return nil
}

func (p *Pipeline) findOrCreateMessage(ctx context.Context, job *Job, ev *vendors.Event) (*model.Message, error) {
	vendorMessageID := ev.VendorMessageID

	if vendorMessageID != "" && vendorMessageID != vendors.Unknown {
		msg, err := p.messages.FindByIdentity(ctx, job.UserID, job.VendorID, job.ChannelID, job.ProjectID, vendorMessageID)
		if err == nil {
			return msg, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	} else {
		// The vendor omitted its message id entirely: synthesize one so a
		// Message row still exists to attach the event to.
		vendorMessageID = fmt.Sprintf("unknown-%d", time.Now().UnixNano())
	}

	recipient := ev.Recipient
	if recipient == "" {
		recipient = vendors.Unknown
	}

	return p.messages.Create(ctx, &model.Message{
		UserID:          job.UserID,
		ProjectID:       job.ProjectID,
		VendorID:        job.VendorID,
		ChannelID:       job.ChannelID,
		VendorMessageID: vendorMessageID,
		Recipient:       recipient,
		Content:         ev.Content,
	})
}

func refFromEvent(job *Job, ev *vendors.Event) string {
	var payload map[string]interface{}
	if err := json.Unmarshal(ev.Raw, &payload); err != nil {
		return ""
	}
	return vendors.ExtractRef(job.VendorSlug, job.ChannelType, payload)
}
