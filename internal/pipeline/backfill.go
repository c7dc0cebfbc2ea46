package pipeline

import (
	"context"
	"encoding/json"

	"github.com/nimasrn/webhook-gateway/internal/model"
	"github.com/nimasrn/webhook-gateway/internal/vendors"
	"github.com/nimasrn/webhook-gateway/pkg/logger"
)

type VendorCatalog interface {
	List(ctx context.Context) ([]*model.Vendor, error)
}

type ChannelCatalog interface {
	List(ctx context.Context) ([]*model.Channel, error)
}

// BackfillReport summarizes one reconciliation run. Already counts rows the
// scan saw with a populated reference id; eligible rows lacked one and held
// a raw payload; updated rows got a value written.
type BackfillReport struct {
	AlreadyPopulated int `json:"already_populated"`
	Eligible         int `json:"eligible"`
	Processed        int `json:"processed"`
	Updated          int `json:"updated"`
}

// Backfill derives vendor reference ids from historically stored raw
// payloads for events that predate the reference-id field. Idempotent: it
// only ever fills previously empty fields, so re-runs are safe.
type Backfill struct {
	events    MessageEventRepository
	vendorCat VendorCatalog
	chanCat   ChannelCatalog
	batchSize int
}

func NewBackfill(events MessageEventRepository, vendorCat VendorCatalog, chanCat ChannelCatalog, batchSize int) *Backfill {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Backfill{
		events:    events,
		vendorCat: vendorCat,
		chanCat:   chanCat,
		batchSize: batchSize,
	}
}

// Run scans eligible events in fixed-size batches until the table is
// exhausted and reports cumulative counts.
func (b *Backfill) Run(ctx context.Context) (*BackfillReport, error) {
	vendorSlugs, channelTypes, err := b.catalogs(ctx)
	if err != nil {
		return nil, err
	}

	report := &BackfillReport{}
	if populated, err := b.events.CountPopulatedRef(ctx); err == nil {
		report.AlreadyPopulated = int(populated)
	}
	afterID := int64(0)

	for {
		batch, err := b.events.ListMissingRef(ctx, afterID, b.batchSize)
		if err != nil {
			return report, err
		}
		if len(batch) == 0 {
			break
		}

		for _, ev := range batch {
			afterID = ev.ID
			report.Eligible++
			report.Processed++

			ref := extractStoredRef(vendorSlugs[ev.VendorID], channelTypes[ev.ChannelID], ev.RawPayload)
			if ref == "" {
				continue
			}
			if err := b.events.UpdateRef(ctx, ev.ID, ref); err != nil {
				logger.Error("backfill: failed to update reference id",
					"event_id", ev.ID, "error", err)
				continue
			}
			report.Updated++
		}

		if len(batch) < b.batchSize {
			break
		}
	}

	logger.Info("backfill complete",
		"eligible", report.Eligible,
		"processed", report.Processed,
		"updated", report.Updated)
	return report, nil
}

func (b *Backfill) catalogs(ctx context.Context) (map[int64]string, map[int64]string, error) {
	vendorRows, err := b.vendorCat.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	channelRows, err := b.chanCat.List(ctx)
	if err != nil {
		return nil, nil, err
	}

	vendorSlugs := make(map[int64]string, len(vendorRows))
	for _, v := range vendorRows {
		vendorSlugs[v.ID] = v.Slug
	}
	channelTypes := make(map[int64]string, len(channelRows))
	for _, c := range channelRows {
		channelTypes[c.ID] = c.Type
	}
	return vendorSlugs, channelTypes, nil
}

func extractStoredRef(slug, channel, rawPayload string) string {
	if slug == "" || rawPayload == "" {
		return ""
	}
	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(rawPayload), &payload); err != nil {
		return ""
	}
	return vendors.ExtractRef(slug, channel, payload)
}
