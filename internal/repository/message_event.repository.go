package repository

import (
	"context"
	"time"

	"github.com/nimasrn/webhook-gateway/internal/model"
	"github.com/nimasrn/webhook-gateway/pkg/pg"
)

type MessageEventRepository struct {
	*pg.DB
}

func NewMessageEventRepository(db *pg.DB) *MessageEventRepository {
	return &MessageEventRepository{db}
}

func (r *MessageEventRepository) Create(ctx context.Context, ev *model.MessageEvent) (*model.MessageEvent, error) {
	entity := toMessageEventEntity(ev)
	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}
	return toMessageEventModel(entity), nil
}

// ListByMessage returns the lifecycle timeline for one message ordered by
// vendor-reported timestamp, which is the only ordering the pipeline
// guarantees.
func (r *MessageEventRepository) ListByMessage(ctx context.Context, messageID int64) ([]*model.MessageEvent, error) {
	var entities []*MessageEventEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("message_id = ?", messageID).
		Order("event_timestamp ASC").
		Find(&entities).Error
	if err != nil {
		return nil, err
	}
	return toMessageEventModels(entities), nil
}

type statusCount struct {
	Status string `gorm:"column:status"`
	Count  int64  `gorm:"column:count"`
}

// CountByStatus groups the events created within [from, to) for one rollup
// key by canonical status. Backs the full-recompute analytics updater.
func (r *MessageEventRepository) CountByStatus(ctx context.Context, userID, vendorID, channelID, projectID int64, from, to time.Time) (map[model.CanonicalStatus]int64, error) {
	var rows []statusCount
	err := r.Read(ctx).WithContext(ctx).
		Model(&MessageEventEntity{}).
		Select("status, COUNT(*) AS count").
		Where("user_id = ? AND vendor_id = ? AND channel_id = ? AND project_id = ?",
			userID, vendorID, channelID, projectID).
		Where("created_at >= ? AND created_at < ?", from, to).
		Group("status").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[model.CanonicalStatus]int64, len(rows))
	for _, row := range rows {
		counts[model.CanonicalStatus(row.Status)] = row.Count
	}
	return counts, nil
}

// ListMissingRef returns a batch of events that hold a raw payload but no
// extracted vendor reference id, ordered by id for stable re-runs.
func (r *MessageEventRepository) ListMissingRef(ctx context.Context, afterID int64, limit int) ([]*model.MessageEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	var entities []*MessageEventEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("id > ? AND (vendor_ref_id IS NULL OR vendor_ref_id = '') AND raw_payload <> ''", afterID).
		Order("id ASC").
		Limit(limit).
		Find(&entities).Error
	if err != nil {
		return nil, err
	}
	return toMessageEventModels(entities), nil
}

// CountPopulatedRef counts events that already carry a vendor reference id.
func (r *MessageEventRepository) CountPopulatedRef(ctx context.Context) (int64, error) {
	var count int64
	err := r.Read(ctx).WithContext(ctx).
		Model(&MessageEventEntity{}).
		Where("vendor_ref_id IS NOT NULL AND vendor_ref_id <> ''").
		Count(&count).Error
	return count, err
}

// UpdateRef fills a previously empty vendor reference id. The guard keeps
// the backfill idempotent: populated rows are never overwritten.
func (r *MessageEventRepository) UpdateRef(ctx context.Context, id int64, ref string) error {
	return r.Write(ctx).WithContext(ctx).
		Model(&MessageEventEntity{}).
		Where("id = ? AND (vendor_ref_id IS NULL OR vendor_ref_id = '')", id).
		Update("vendor_ref_id", ref).Error
}
