package repository

import (
	"context"
	"testing"

	"github.com/nimasrn/webhook-gateway/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindingRepository_FindByTriple(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBindingRepository(db.DB)
	ctx := context.Background()

	vendorID, channelID, projectID, bindingID := seedCatalog(t, db, "msg91", "sms")

	t.Run("find active binding", func(t *testing.T) {
		binding, err := repo.FindByTriple(ctx, projectID, vendorID, channelID)
		require.NoError(t, err)
		assert.Equal(t, bindingID, binding.ID)
		assert.Equal(t, "tok-1", binding.Token())
	})

	t.Run("missing triple", func(t *testing.T) {
		_, err := repo.FindByTriple(ctx, projectID, vendorID+99, channelID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("inactive binding behaves as missing", func(t *testing.T) {
		require.NoError(t, repo.SetActive(ctx, bindingID, false))

		_, err := repo.FindByTriple(ctx, projectID, vendorID, channelID)
		assert.ErrorIs(t, err, ErrNotFound)

		require.NoError(t, repo.SetActive(ctx, bindingID, true))
	})
}

func TestBindingRepository_Mutations(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBindingRepository(db.DB)
	ctx := context.Background()

	vendorID, channelID, projectID, bindingID := seedCatalog(t, db, "gupshup", "whatsapp")

	t.Run("update secret", func(t *testing.T) {
		require.NoError(t, repo.UpdateSecret(ctx, bindingID, "new-secret"))

		binding, err := repo.FindByTriple(ctx, projectID, vendorID, channelID)
		require.NoError(t, err)
		assert.Equal(t, "new-secret", binding.Secret)
	})

	t.Run("create second binding", func(t *testing.T) {
		created, err := repo.Create(ctx, &model.Binding{
			UserID:     2,
			ProjectID:  projectID + 1,
			VendorID:   vendorID,
			ChannelID:  channelID,
			WebhookURL: "https://gw.example.com/webhook/other?token=tok-2",
			Active:     true,
		})
		require.NoError(t, err)
		assert.NotZero(t, created.ID)
		assert.Equal(t, "tok-2", created.Token())
	})

	t.Run("delete binding", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, bindingID))

		_, err := repo.FindByTriple(ctx, projectID, vendorID, channelID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
