package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/nimasrn/webhook-gateway/internal/dispatch"
	"github.com/nimasrn/webhook-gateway/internal/model"
	"github.com/nimasrn/webhook-gateway/internal/pipeline"
	"github.com/nimasrn/webhook-gateway/internal/queue"
	"github.com/nimasrn/webhook-gateway/internal/repository"
	"github.com/nimasrn/webhook-gateway/internal/resolver"
	"github.com/nimasrn/webhook-gateway/internal/services"
	"github.com/nimasrn/webhook-gateway/pkg/pg"
	"github.com/nimasrn/webhook-gateway/pkg/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testDB = pg.DB

type TestEnvironment struct {
	DB             *pg.DB
	Redis          *miniredis.Miniredis
	RedisAdapter   redis.RedisAdapter
	Queue          *queue.Queue
	MessageRepo    *repository.MessageRepository
	EventRepo      *repository.MessageEventRepository
	AnalyticsRepo  *repository.AnalyticsRepository
	Pipeline       *pipeline.Pipeline
	WebhookService *services.WebhookService

	ProjectID int64
	VendorID  int64
	ChannelID int64
}

func setupE2EEnvironment(t *testing.T, vendorSlug, channelType string) *TestEnvironment {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&repository.VendorEntity{},
		&repository.ChannelEntity{},
		&repository.ProjectEntity{},
		&repository.BindingEntity{},
		&repository.MessageEntity{},
		&repository.MessageEventEntity{},
		&repository.AnalyticsCacheEntity{},
	)
	require.NoError(t, err)

	pgDB := &testDB{}
	pgDBValue := reflect.ValueOf(pgDB).Elem()

	readField := pgDBValue.FieldByName("read")
	writeField := pgDBValue.FieldByName("write")

	readField = reflect.NewAt(readField.Type(), readField.Addr().UnsafePointer()).Elem()
	writeField = reflect.NewAt(writeField.Type(), writeField.Addr().UnsafePointer()).Elem()

	readField.Set(reflect.ValueOf(db))
	writeField.Set(reflect.ValueOf(db))

	mr, err := miniredis.Run()
	require.NoError(t, err)

	// Use unique connection name per test to avoid global adapter caching issues
	connName := fmt.Sprintf("test-%d", time.Now().UnixNano())
	redisAdapter, err := redis.NewRedisAdapter(connName, "", &goredis.UniversalOptions{
		Addrs: []string{mr.Addr()},
	})
	require.NoError(t, err)

	queueConfig := queue.QueueConfig{
		Name:              "test:queue",
		ConsumerGroup:     "test-group",
		ConsumerName:      "test-consumer",
		MaxRetries:        3,
		VisibilityTimeout: 5 * time.Second,
		PollInterval:      100 * time.Millisecond,
		BatchSize:         10,
		MaxLen:            1000,
		EnableDLQ:         true,
	}

	q, err := queue.NewQueue(redisAdapter, queueConfig)
	require.NoError(t, err)

	ctx := context.Background()
	vendor := &repository.VendorEntity{Slug: vendorSlug, Name: vendorSlug, Active: true}
	require.NoError(t, db.WithContext(ctx).Create(vendor).Error)
	channel := &repository.ChannelEntity{Type: channelType, Active: true}
	require.NoError(t, db.WithContext(ctx).Create(channel).Error)
	project := &repository.ProjectEntity{UserID: 1, Name: "demo", Active: true}
	require.NoError(t, db.WithContext(ctx).Create(project).Error)
	binding := &repository.BindingEntity{
		UserID:     1,
		ProjectID:  project.ID,
		VendorID:   vendor.ID,
		ChannelID:  channel.ID,
		WebhookURL: "https://gw.example.com/webhook/demo?token=tok-1",
		Active:     true,
	}
	require.NoError(t, db.WithContext(ctx).Create(binding).Error)

	vendorRepo := repository.NewVendorRepository(pgDB)
	channelRepo := repository.NewChannelRepository(pgDB)
	projectRepo := repository.NewProjectRepository(pgDB)
	bindingRepo := repository.NewBindingRepository(pgDB)
	messageRepo := repository.NewMessageRepository(pgDB)
	eventRepo := repository.NewMessageEventRepository(pgDB)
	analyticsRepo := repository.NewAnalyticsRepository(pgDB)

	pipe := pipeline.New(messageRepo, eventRepo, analyticsRepo)
	idResolver := resolver.New(projectRepo, vendorRepo, channelRepo, bindingRepo, nil)
	controller := dispatch.NewController(q, pipe)
	webhookService := services.NewWebhookService(idResolver, controller)

	return &TestEnvironment{
		DB:             pgDB,
		Redis:          mr,
		RedisAdapter:   redisAdapter,
		Queue:          q,
		MessageRepo:    messageRepo,
		EventRepo:      eventRepo,
		AnalyticsRepo:  analyticsRepo,
		Pipeline:       pipe,
		WebhookService: webhookService,
		ProjectID:      project.ID,
		VendorID:       vendor.ID,
		ChannelID:      channel.ID,
	}
}

func (env *TestEnvironment) Cleanup() {
	// Stop queue first (gracefully drain messages)
	if env.Queue != nil {
		_ = env.Queue.Stop(5 * time.Second)
	}
	// Give time for any in-flight operations to complete
	time.Sleep(100 * time.Millisecond)
	// Then close Redis
	if env.Redis != nil {
		env.Redis.Close()
	}
}

func (env *TestEnvironment) request(body []byte) resolver.Request {
	return resolver.Request{
		ProjectKey:  "demo",
		VendorSlug:  "msg91",
		ChannelType: "sms",
		Token:       "tok-1",
		Body:        body,
	}
}

func TestE2E_WebhookAcceptedAndEnqueued(t *testing.T) {
	env := setupE2EEnvironment(t, "msg91", "sms")
	defer env.Cleanup()

	ctx := context.Background()

	body := []byte(`{"requestId":"r-e2e-1","eventName":"delivered","number":"+15550001111","ts":1736900000}`)
	identity, mode, err := env.WebhookService.Accept(ctx, env.request(body))
	require.NoError(t, err)
	assert.Equal(t, dispatch.ModeEnqueued, mode)
	assert.Equal(t, "msg91", identity.VendorSlug)
	assert.Equal(t, env.ProjectID, identity.ProjectID)

	stats, err := env.Queue.GetStats()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, stats.TotalMessages, int64(1))
}

func TestE2E_WebhookConsumedAndPersisted(t *testing.T) {
	env := setupE2EEnvironment(t, "msg91", "sms")
	defer env.Cleanup()

	ctx := context.Background()

	body := []byte(`{"requestId":"r-e2e-2","eventName":"delivered","number":"+15550002222","ts":1736900000}`)
	_, mode, err := env.WebhookService.Accept(ctx, env.request(body))
	require.NoError(t, err)
	require.Equal(t, dispatch.ModeEnqueued, mode)

	processed := make(chan bool, 1)
	handler := func(ctx context.Context, qMsg *queue.Message) error {
		var job pipeline.Job
		if err := json.Unmarshal(qMsg.Data, &job); err != nil {
			return err
		}
		if err := env.Pipeline.Process(ctx, &job); err != nil {
			return err
		}
		processed <- true
		return nil
	}

	err = env.Queue.Consume(handler)
	require.NoError(t, err)

	select {
	case <-processed:
	case <-time.After(3 * time.Second):
		t.Fatal("webhook not consumed within timeout")
	}

	msg, err := env.MessageRepo.FindByIdentity(ctx, 1, env.VendorID, env.ChannelID, env.ProjectID, "r-e2e-2")
	require.NoError(t, err)
	assert.Equal(t, "+15550002222", msg.Recipient)

	events, err := env.EventRepo.ListByMessage(ctx, msg.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, model.StatusDelivered, events[0].Status)
}

func TestE2E_ReplayAppendsSecondEvent(t *testing.T) {
	env := setupE2EEnvironment(t, "msg91", "sms")
	defer env.Cleanup()

	ctx := context.Background()

	job := &pipeline.Job{
		UserID:      1,
		ProjectID:   env.ProjectID,
		VendorID:    env.VendorID,
		ChannelID:   env.ChannelID,
		VendorSlug:  "msg91",
		ChannelType: "sms",
		ReceivedAt:  time.Now().UTC(),
		Body:        json.RawMessage(`{"requestId":"r-e2e-3","eventName":"delivered","number":"+15550003333","ts":1736900000}`),
	}

	require.NoError(t, env.Pipeline.Process(ctx, job))
	require.NoError(t, env.Pipeline.Process(ctx, job))

	msg, err := env.MessageRepo.FindByIdentity(ctx, 1, env.VendorID, env.ChannelID, env.ProjectID, "r-e2e-3")
	require.NoError(t, err)

	events, err := env.EventRepo.ListByMessage(ctx, msg.ID)
	require.NoError(t, err)
	assert.Len(t, events, 2)

	var count int64
	env.DB.Read(ctx).Model(&repository.MessageEntity{}).
		Where("vendor_message_id = ?", "r-e2e-3").Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestE2E_UnauthorizedToken(t *testing.T) {
	env := setupE2EEnvironment(t, "msg91", "sms")
	defer env.Cleanup()

	ctx := context.Background()

	req := env.request([]byte(`{"requestId":"r-e2e-4","eventName":"delivered"}`))
	req.Token = "wrong-token"

	_, _, err := env.WebhookService.Accept(ctx, req)
	assert.ErrorIs(t, err, model.ErrUnauthorized)

	var count int64
	env.DB.Read(ctx).Model(&repository.MessageEventEntity{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestE2E_UnknownVendorIs404(t *testing.T) {
	env := setupE2EEnvironment(t, "msg91", "sms")
	defer env.Cleanup()

	ctx := context.Background()

	req := env.request([]byte(`{"requestId":"r-e2e-5"}`))
	req.VendorSlug = "nope"

	_, _, err := env.WebhookService.Accept(ctx, req)
	require.Error(t, err)
	assert.True(t, model.IsNotFound(err))
}

func TestE2E_SendgridBatchFansOut(t *testing.T) {
	env := setupE2EEnvironment(t, "sendgrid", "email")
	defer env.Cleanup()

	ctx := context.Background()

	job := &pipeline.Job{
		UserID:      1,
		ProjectID:   env.ProjectID,
		VendorID:    env.VendorID,
		ChannelID:   env.ChannelID,
		VendorSlug:  "sendgrid",
		ChannelType: "email",
		ReceivedAt:  time.Now().UTC(),
		Body: json.RawMessage(`[
			{"sg_message_id":"sg-e2e-1.f1","event":"delivered","email":"a@example.com","timestamp":1736900000},
			{"sg_message_id":"sg-e2e-2.f1","event":"bounce","email":"b@example.com","timestamp":1736900060}
		]`),
	}

	require.NoError(t, env.Pipeline.Process(ctx, job))

	var eventCount int64
	env.DB.Read(ctx).Model(&repository.MessageEventEntity{}).Count(&eventCount)
	assert.Equal(t, int64(2), eventCount)

	var msgCount int64
	env.DB.Read(ctx).Model(&repository.MessageEntity{}).Count(&msgCount)
	assert.Equal(t, int64(2), msgCount)
}

func TestE2E_RollupReflectsProcessedEvents(t *testing.T) {
	env := setupE2EEnvironment(t, "msg91", "sms")
	defer env.Cleanup()

	ctx := context.Background()

	for i, status := range []string{"delivered", "delivered", "failed"} {
		job := &pipeline.Job{
			UserID:      1,
			ProjectID:   env.ProjectID,
			VendorID:    env.VendorID,
			ChannelID:   env.ChannelID,
			VendorSlug:  "msg91",
			ChannelType: "sms",
			ReceivedAt:  time.Now().UTC(),
			Body: json.RawMessage(fmt.Sprintf(
				`{"requestId":"r-e2e-roll-%d","eventName":"%s","number":"+1555000%04d"}`, i, status, i)),
		}
		require.NoError(t, env.Pipeline.Process(ctx, job))
	}

	day := time.Now().UTC().Truncate(24 * time.Hour)
	row, err := env.AnalyticsRepo.Find(ctx, 1, env.VendorID, env.ChannelID, env.ProjectID, day)
	require.NoError(t, err)
	assert.Equal(t, int64(2), row.Delivered)
	assert.Equal(t, int64(1), row.Failed)
	assert.InDelta(t, 2.0/3.0, row.SuccessRate, 0.001)
}
