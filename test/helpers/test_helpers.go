package helpers

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/nimasrn/webhook-gateway/internal/repository"
	"github.com/nimasrn/webhook-gateway/pkg/pg"
	"github.com/nimasrn/webhook-gateway/pkg/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func SetupTestDB(t *testing.T) *pg.DB {
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

	pgDB := &pg.DB{}
	pgDBValue := reflect.ValueOf(pgDB).Elem()

	readField := pgDBValue.FieldByName("read")
	writeField := pgDBValue.FieldByName("write")

	readField = reflect.NewAt(readField.Type(), readField.Addr().UnsafePointer()).Elem()
	writeField = reflect.NewAt(writeField.Type(), writeField.Addr().UnsafePointer()).Elem()

	readField.Set(reflect.ValueOf(db))
	writeField.Set(reflect.ValueOf(db))

	return pgDB
}

func SetupTestRedis(t *testing.T) (*miniredis.Miniredis, redis.RedisAdapter) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	adapter, err := redis.NewRedisAdapter("test", "", &goredis.UniversalOptions{
		Addrs: []string{mr.Addr()},
	})
	require.NoError(t, err)

	return mr, adapter
}

func CreateTestVendor(t *testing.T, db *pg.DB, slug string) *repository.VendorEntity {
	ctx := context.Background()
	v := &repository.VendorEntity{
		Slug:   slug,
		Name:   slug,
		Active: true,
	}
	err := db.Write(ctx).Create(v).Error
	require.NoError(t, err)
	return v
}

func CreateTestChannel(t *testing.T, db *pg.DB, channelType string) *repository.ChannelEntity {
	ctx := context.Background()
	c := &repository.ChannelEntity{
		Type:   channelType,
		Active: true,
	}
	err := db.Write(ctx).Create(c).Error
	require.NoError(t, err)
	return c
}

func CreateTestProject(t *testing.T, db *pg.DB, userID int64, name string) *repository.ProjectEntity {
	ctx := context.Background()
	p := &repository.ProjectEntity{
		UserID: userID,
		Name:   name,
		Active: true,
	}
	err := db.Write(ctx).Create(p).Error
	require.NoError(t, err)
	return p
}

func CreateTestBinding(t *testing.T, db *pg.DB, userID, projectID, vendorID, channelID int64, token, secret string) *repository.BindingEntity {
	ctx := context.Background()
	b := &repository.BindingEntity{
		UserID:     userID,
		ProjectID:  projectID,
		VendorID:   vendorID,
		ChannelID:  channelID,
		WebhookURL: "https://gw.example.com/webhook?token=" + token,
		Secret:     secret,
		Active:     true,
		CreatedAt:  time.Now(),
	}
	err := db.Write(ctx).Create(b).Error
	require.NoError(t, err)
	return b
}

func CreateTestMessage(t *testing.T, db *pg.DB, userID, projectID, vendorID, channelID int64, vendorMessageID, recipient string) *repository.MessageEntity {
	ctx := context.Background()
	msg := &repository.MessageEntity{
		UserID:          userID,
		ProjectID:       projectID,
		VendorID:        vendorID,
		ChannelID:       channelID,
		VendorMessageID: vendorMessageID,
		Recipient:       recipient,
		CreatedAt:       time.Now(),
	}
	err := db.Write(ctx).Create(msg).Error
	require.NoError(t, err)
	return msg
}

func CreateTestEvent(t *testing.T, db *pg.DB, msg *repository.MessageEntity, status string, at time.Time) *repository.MessageEventEntity {
	ctx := context.Background()
	ev := &repository.MessageEventEntity{
		MessageID:      msg.ID,
		Status:         status,
		EventTimestamp: at,
		RawPayload:     "{}",
		UserID:         msg.UserID,
		ProjectID:      msg.ProjectID,
		VendorID:       msg.VendorID,
		ChannelID:      msg.ChannelID,
	}
	err := db.Write(ctx).Create(ev).Error
	require.NoError(t, err)
	return ev
}

func WaitForCondition(t *testing.T, timeout time.Duration, condition func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

func AssertEventually(t *testing.T, timeout time.Duration, condition func() bool, msg string) {
	if !WaitForCondition(t, timeout, condition) {
		t.Fatal(msg)
	}
}

func ContextWithTimeout(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func Ptr[T any](v T) *T {
	return &v
}
