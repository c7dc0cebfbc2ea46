package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nimasrn/webhook-gateway/internal/pipeline"
	"github.com/nimasrn/webhook-gateway/internal/repository"
	"github.com/nimasrn/webhook-gateway/test/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishJSON(ctx context.Context, data interface{}, metadata map[string]string) (string, error) {
	args := m.Called(ctx, data, metadata)
	return args.String(0), args.Error(1)
}

type dispatchEnv struct {
	events   *repository.MessageEventRepository
	messages *repository.MessageRepository
	pipe     *pipeline.Pipeline
}

func setupDispatch(t *testing.T) *dispatchEnv {
	db := helpers.SetupTestDB(t)

	messages := repository.NewMessageRepository(db)
	events := repository.NewMessageEventRepository(db)
	analytics := repository.NewAnalyticsRepository(db)

	return &dispatchEnv{
		events:   events,
		messages: messages,
		pipe:     pipeline.New(messages, events, analytics),
	}
}

func dispatchJob(body string) *pipeline.Job {
	return &pipeline.Job{
		UserID:      1,
		ProjectID:   1,
		VendorID:    1,
		ChannelID:   1,
		VendorSlug:  "msg91",
		ChannelType: "sms",
		ReceivedAt:  time.Now().UTC(),
		Body:        json.RawMessage(body),
	}
}

func TestDispatch_Enqueued(t *testing.T) {
	env := setupDispatch(t)
	ctx := context.Background()

	pub := new(MockPublisher)
	pub.On("PublishJSON", mock.Anything, mock.Anything, map[string]string{"vendor": "msg91"}).
		Return("1736900000000-0", nil)

	ctrl := NewController(pub, env.pipe)
	job := dispatchJob(`{"requestId":"d1","eventName":"delivered","number":"+15550001111"}`)

	mode, err := ctrl.Dispatch(ctx, job)
	require.NoError(t, err)
	assert.Equal(t, ModeEnqueued, mode)
	pub.AssertExpectations(t)

	// Nothing persists until a worker picks the job up.
	_, err = env.messages.FindByIdentity(ctx, 1, 1, 1, 1, "d1")
	assert.Error(t, err)
}

func TestDispatch_InlineFallbackOnPublishError(t *testing.T) {
	env := setupDispatch(t)
	ctx := context.Background()

	pub := new(MockPublisher)
	pub.On("PublishJSON", mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("stream unavailable"))

	ctrl := NewController(pub, env.pipe)
	job := dispatchJob(`{"requestId":"d2","eventName":"delivered","number":"+15550002222"}`)

	mode, err := ctrl.Dispatch(ctx, job)
	require.NoError(t, err)
	assert.Equal(t, ModeInline, mode)
	pub.AssertExpectations(t)

	msg, err := env.messages.FindByIdentity(ctx, 1, 1, 1, 1, "d2")
	require.NoError(t, err)
	timeline, err := env.events.ListByMessage(ctx, msg.ID)
	require.NoError(t, err)
	assert.Len(t, timeline, 1)
}

func TestDispatch_NoQueueRunsInline(t *testing.T) {
	env := setupDispatch(t)
	ctx := context.Background()

	ctrl := NewController(nil, env.pipe)
	job := dispatchJob(`{"requestId":"d3","eventName":"delivered","number":"+15550003333"}`)

	mode, err := ctrl.Dispatch(ctx, job)
	require.NoError(t, err)
	assert.Equal(t, ModeInline, mode)

	msg, err := env.messages.FindByIdentity(ctx, 1, 1, 1, 1, "d3")
	require.NoError(t, err)
	timeline, err := env.events.ListByMessage(ctx, msg.ID)
	require.NoError(t, err)
	assert.Len(t, timeline, 1)
}

func TestDispatch_InlineProcessErrorSurfaces(t *testing.T) {
	env := setupDispatch(t)
	ctx := context.Background()

	ctrl := NewController(nil, env.pipe)
	job := dispatchJob(`{}`)
	job.VendorSlug = "nobody"

	mode, err := ctrl.Dispatch(ctx, job)
	assert.Error(t, err)
	assert.Equal(t, ModeInline, mode)
}
