package repository

import (
	"context"
	"testing"
	"time"

	"github.com/nimasrn/webhook-gateway/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyticsRepository_Upsert(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewAnalyticsRepository(db)
	ctx := context.Background()

	day := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	row := &model.AnalyticsCache{
		UserID:      1,
		VendorID:    1,
		ChannelID:   1,
		ProjectID:   1,
		Day:         day,
		Sent:        3,
		Delivered:   5,
		Failed:      2,
		SuccessRate: 0.5,
	}
	require.NoError(t, repo.Upsert(ctx, row))

	t.Run("initial insert", func(t *testing.T) {
		found, err := repo.Find(ctx, 1, 1, 1, 1, day)
		require.NoError(t, err)
		assert.Equal(t, int64(5), found.Delivered)
		assert.Equal(t, int64(10), found.Total())
	})

	t.Run("conflict replaces counts", func(t *testing.T) {
		row.Delivered = 8
		row.Read = 1
		row.SuccessRate = 0.9
		require.NoError(t, repo.Upsert(ctx, row))

		found, err := repo.Find(ctx, 1, 1, 1, 1, day)
		require.NoError(t, err)
		assert.Equal(t, int64(8), found.Delivered)
		assert.Equal(t, int64(1), found.Read)
		assert.InDelta(t, 0.9, found.SuccessRate, 0.0001)

		var count int64
		db.Read(ctx).Model(&AnalyticsCacheEntity{}).Count(&count)
		assert.Equal(t, int64(1), count)
	})

	t.Run("missing key", func(t *testing.T) {
		_, err := repo.Find(ctx, 9, 9, 9, 9, day)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestAnalyticsRepository_PruneBefore(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewAnalyticsRepository(db)
	ctx := context.Background()

	old := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Upsert(ctx, &model.AnalyticsCache{
		UserID: 1, VendorID: 1, ChannelID: 1, ProjectID: 1, Day: old, Sent: 1,
	}))
	require.NoError(t, repo.Upsert(ctx, &model.AnalyticsCache{
		UserID: 1, VendorID: 1, ChannelID: 1, ProjectID: 1, Day: recent, Sent: 1,
	}))

	pruned, err := repo.PruneBefore(ctx, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, int64(1), pruned)

	_, err = repo.Find(ctx, 1, 1, 1, 1, old)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.Find(ctx, 1, 1, 1, 1, recent)
	assert.NoError(t, err)
}
