package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/nimasrn/webhook-gateway/internal/model"
	"github.com/nimasrn/webhook-gateway/internal/repository"
	"github.com/nimasrn/webhook-gateway/test/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type backfillEnv struct {
	events   *repository.MessageEventRepository
	vendors  *repository.VendorRepository
	channels *repository.ChannelRepository
	vendorID int64
	chanID   int64
}

func setupBackfill(t *testing.T) *backfillEnv {
	db := helpers.SetupTestDB(t)
	ctx := context.Background()

	vendors := repository.NewVendorRepository(db)
	channels := repository.NewChannelRepository(db)

	vendor, err := vendors.Create(ctx, &model.Vendor{Slug: "twilio", Name: "Twilio", Active: true})
	require.NoError(t, err)
	channel, err := channels.Create(ctx, &model.Channel{Type: "sms", Active: true})
	require.NoError(t, err)

	return &backfillEnv{
		events:   repository.NewMessageEventRepository(db),
		vendors:  vendors,
		channels: channels,
		vendorID: vendor.ID,
		chanID:   channel.ID,
	}
}

func (env *backfillEnv) addEvent(t *testing.T, raw, ref string) *model.MessageEvent {
	ev, err := env.events.Create(context.Background(), &model.MessageEvent{
		MessageID:      1,
		Status:         model.StatusDelivered,
		EventTimestamp: time.Now().UTC(),
		RawPayload:     raw,
		VendorRefID:    ref,
		UserID:         1,
		ProjectID:      1,
		VendorID:       env.vendorID,
		ChannelID:      env.chanID,
	})
	require.NoError(t, err)
	return ev
}

func TestBackfill_Run(t *testing.T) {
	env := setupBackfill(t)
	ctx := context.Background()

	env.addEvent(t, `{"MessageSid":"SM-old-1"}`, "SM-populated")
	fillable1 := env.addEvent(t, `{"MessageSid":"SM-old-2"}`, "")
	fillable2 := env.addEvent(t, `{"SmsSid":"SS-old-3"}`, "")
	unfillable := env.addEvent(t, `{"someOtherField":"x"}`, "")

	job := NewBackfill(env.events, env.vendors, env.channels, 100)
	report, err := job.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, report.AlreadyPopulated)
	assert.Equal(t, 3, report.Eligible)
	assert.Equal(t, 3, report.Processed)
	assert.Equal(t, 2, report.Updated)

	timeline, err := env.events.ListByMessage(ctx, 1)
	require.NoError(t, err)
	refs := map[int64]string{}
	for _, ev := range timeline {
		refs[ev.ID] = ev.VendorRefID
	}
	assert.Equal(t, "SM-old-2", refs[fillable1.ID])
	assert.Equal(t, "SS-old-3", refs[fillable2.ID])
	assert.Equal(t, "", refs[unfillable.ID])
}

func TestBackfill_RerunIsIdempotent(t *testing.T) {
	env := setupBackfill(t)
	ctx := context.Background()

	env.addEvent(t, `{"MessageSid":"SM-1"}`, "")
	env.addEvent(t, `{"MessageSid":"SM-2"}`, "")

	job := NewBackfill(env.events, env.vendors, env.channels, 100)

	first, err := job.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Updated)

	second, err := job.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, second.AlreadyPopulated)
	assert.Equal(t, 0, second.Eligible)
	assert.Equal(t, 0, second.Updated)
}

func TestBackfill_SmallBatches(t *testing.T) {
	env := setupBackfill(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		env.addEvent(t, `{"MessageSid":"SM-batched"}`, "")
	}

	job := NewBackfill(env.events, env.vendors, env.channels, 2)
	report, err := job.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, report.Processed)
	assert.Equal(t, 5, report.Updated)
}
