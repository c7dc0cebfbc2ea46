package repository

import (
	"context"
	"errors"
	"time"

	"github.com/nimasrn/webhook-gateway/internal/model"
	"github.com/nimasrn/webhook-gateway/pkg/pg"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AnalyticsRepository struct {
	*pg.DB
}

func NewAnalyticsRepository(db *pg.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db}
}

// Upsert writes the rollup row for its composite key, replacing counts and
// success rate on conflict. The rollup is a full recompute of the day, so
// replace (not increment) is the correct conflict action.
func (r *AnalyticsRepository) Upsert(ctx context.Context, a *model.AnalyticsCache) error {
	entity := toAnalyticsEntity(a)
	return r.Write(ctx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "user_id"}, {Name: "vendor_id"}, {Name: "channel_id"},
				{Name: "project_id"}, {Name: "day"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"sent", "delivered", "read", "failed", "success_rate", "updated_at",
			}),
		}).
		Create(entity).Error
}

func (r *AnalyticsRepository) Find(ctx context.Context, userID, vendorID, channelID, projectID int64, day time.Time) (*model.AnalyticsCache, error) {
	var entity AnalyticsCacheEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("user_id = ? AND vendor_id = ? AND channel_id = ? AND project_id = ? AND day = ?",
			userID, vendorID, channelID, projectID, day).
		First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toAnalyticsModel(&entity), nil
}

// PruneBefore removes rollup rows older than the retention cutoff. Invoked
// by the housekeeping job; raw events stay untouched.
func (r *AnalyticsRepository) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.Write(ctx).WithContext(ctx).
		Where("day < ?", cutoff).
		Delete(&AnalyticsCacheEntity{})
	return res.RowsAffected, res.Error
}
