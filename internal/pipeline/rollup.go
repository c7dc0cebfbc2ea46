package pipeline

import (
	"context"
	"time"

	"github.com/nimasrn/webhook-gateway/internal/model"
)

// RollupUpdater recomputes the current day's analytics row after each
// persisted event. Full recompute, not increment: redundant work in
// exchange for self-healing after a missed or crashed update.
type RollupUpdater struct {
	events    MessageEventRepository
	analytics AnalyticsRepository
}

func NewRollupUpdater(events MessageEventRepository, analytics AnalyticsRepository) *RollupUpdater {
	return &RollupUpdater{events: events, analytics: analytics}
}

// dayBounds returns the UTC day window containing now.
func dayBounds(now time.Time) (time.Time, time.Time) {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.Add(24 * time.Hour)
}

func (u *RollupUpdater) UpdateToday(ctx context.Context, userID, vendorID, channelID, projectID int64) error {
	from, to := dayBounds(time.Now())

	counts, err := u.events.CountByStatus(ctx, userID, vendorID, channelID, projectID, from, to)
	if err != nil {
		return err
	}

	row := &model.AnalyticsCache{
		UserID:    userID,
		VendorID:  vendorID,
		ChannelID: channelID,
		ProjectID: projectID,
		Day:       from,
		Sent:      counts[model.StatusSent],
		Delivered: counts[model.StatusDelivered],
		Read:      counts[model.StatusRead],
		Failed:    counts[model.StatusFailed],
	}
	if total := row.Total(); total > 0 {
		row.SuccessRate = float64(row.Delivered+row.Read) / float64(total)
	}

	return u.analytics.Upsert(ctx, row)
}
