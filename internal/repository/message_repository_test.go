package repository

import (
	"context"
	"testing"
	"time"

	"github.com/nimasrn/webhook-gateway/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageRepository_Create(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewMessageRepository(db)
	ctx := context.Background()

	t.Run("create message successfully", func(t *testing.T) {
		msg := &model.Message{
			UserID:          1,
			ProjectID:       1,
			VendorID:        1,
			ChannelID:       1,
			VendorMessageID: "r-1001",
			Recipient:       "+1234567890",
		}

		created, err := repo.Create(ctx, msg)
		require.NoError(t, err)
		assert.NotZero(t, created.ID)
		assert.Equal(t, msg.VendorMessageID, created.VendorMessageID)
		assert.Equal(t, msg.Recipient, created.Recipient)
		assert.NotZero(t, created.CreatedAt)
	})

	t.Run("create multiple messages", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			msg := &model.Message{
				UserID:          int64(i + 1),
				ProjectID:       1,
				VendorID:        1,
				ChannelID:       1,
				VendorMessageID: "r-batch",
				Recipient:       "+1234567890",
			}
			_, err := repo.Create(ctx, msg)
			require.NoError(t, err)
		}
	})
}

func TestMessageRepository_FindByIdentity(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewMessageRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, &model.Message{
		UserID:          1,
		ProjectID:       10,
		VendorID:        2,
		ChannelID:       3,
		VendorMessageID: "r-2001",
		Recipient:       "+15550001111",
	})
	require.NoError(t, err)

	t.Run("find existing message", func(t *testing.T) {
		found, err := repo.FindByIdentity(ctx, 1, 2, 3, 10, "r-2001")
		require.NoError(t, err)
		assert.Equal(t, created.ID, found.ID)
		assert.Equal(t, "+15550001111", found.Recipient)
	})

	t.Run("different vendor is not found", func(t *testing.T) {
		_, err := repo.FindByIdentity(ctx, 1, 99, 3, 10, "r-2001")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("unknown vendor message id is not found", func(t *testing.T) {
		_, err := repo.FindByIdentity(ctx, 1, 2, 3, 10, "r-9999")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("same tuple may hold duplicates", func(t *testing.T) {
		// No unique constraint backs the identity tuple; a concurrent
		// first-seen race can insert twice and the lookup returns one row.
		_, err := repo.Create(ctx, &model.Message{
			UserID:          1,
			ProjectID:       10,
			VendorID:        2,
			ChannelID:       3,
			VendorMessageID: "r-2001",
			Recipient:       "+15550001111",
		})
		require.NoError(t, err)

		found, err := repo.FindByIdentity(ctx, 1, 2, 3, 10, "r-2001")
		require.NoError(t, err)
		assert.NotZero(t, found.ID)
	})
}

func TestMessageRepository_List(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewMessageRepository(db)
	ctx := context.Background()

	projectID := int64(100)
	for i := 0; i < 5; i++ {
		msg := &model.Message{
			UserID:          1,
			ProjectID:       projectID,
			VendorID:        1,
			ChannelID:       1,
			VendorMessageID: "r-list",
			Recipient:       "+1234567890",
		}
		_, err := repo.Create(ctx, msg)
		require.NoError(t, err)
		time.Sleep(10 * time.Millisecond)
	}

	t.Run("list all messages", func(t *testing.T) {
		filter := model.MessageFilter{
			ProjectID: &projectID,
			Limit:     10,
			Offset:    0,
		}

		messages, total, err := repo.List(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
		assert.Len(t, messages, 5)
	})

	t.Run("list with pagination", func(t *testing.T) {
		filter := model.MessageFilter{
			ProjectID: &projectID,
			Limit:     2,
			Offset:    0,
		}

		messages, total, err := repo.List(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
		assert.Len(t, messages, 2)
	})

	t.Run("list with offset", func(t *testing.T) {
		filter := model.MessageFilter{
			ProjectID: &projectID,
			Limit:     2,
			Offset:    3,
		}

		messages, total, err := repo.List(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
		assert.Len(t, messages, 2)
	})

	t.Run("list with recipient filter", func(t *testing.T) {
		recipient := "+1234567890"
		filter := model.MessageFilter{
			ProjectID: &projectID,
			Recipient: &recipient,
			Limit:     10,
			Offset:    0,
		}

		messages, total, err := repo.List(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
		assert.Len(t, messages, 5)
	})

	t.Run("list with desc order", func(t *testing.T) {
		filter := model.MessageFilter{
			ProjectID: &projectID,
			Limit:     10,
			Offset:    0,
			Desc:      true,
		}

		messages, total, err := repo.List(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
		assert.Len(t, messages, 5)
		for i := 0; i < len(messages)-1; i++ {
			assert.True(t, messages[i].CreatedAt.After(messages[i+1].CreatedAt) || messages[i].CreatedAt.Equal(messages[i+1].CreatedAt))
		}
	})

	t.Run("list with time range", func(t *testing.T) {
		now := time.Now()
		from := now.Add(-1 * time.Hour)
		to := now.Add(1 * time.Hour)

		filter := model.MessageFilter{
			ProjectID: &projectID,
			From:      &from,
			To:        &to,
			Limit:     10,
			Offset:    0,
		}

		messages, total, err := repo.List(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
		assert.Len(t, messages, 5)
	})

	t.Run("list with no results", func(t *testing.T) {
		nonExistentID := int64(999)
		filter := model.MessageFilter{
			ProjectID: &nonExistentID,
			Limit:     10,
			Offset:    0,
		}

		messages, total, err := repo.List(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(0), total)
		assert.Len(t, messages, 0)
	})

	t.Run("list with default limit", func(t *testing.T) {
		filter := model.MessageFilter{
			ProjectID: &projectID,
			Limit:     0,
			Offset:    0,
		}

		messages, total, err := repo.List(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
		assert.Len(t, messages, 5)
	})
}
