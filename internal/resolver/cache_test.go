package resolver

import (
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/nimasrn/webhook-gateway/internal/model"
	"github.com/nimasrn/webhook-gateway/pkg/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCache(t *testing.T, ttl time.Duration) (*miniredis.Miniredis, *BindingCache) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	connName := fmt.Sprintf("cache-test-%d", time.Now().UnixNano())
	adapter, err := redis.NewRedisAdapter(connName, "", &goredis.UniversalOptions{
		Addrs: []string{mr.Addr()},
	})
	require.NoError(t, err)

	return mr, NewBindingCache(adapter, ttl)
}

func TestBindingCache_PutGet(t *testing.T) {
	_, cache := setupCache(t, time.Minute)

	binding := &model.Binding{
		ID:         7,
		UserID:     1,
		ProjectID:  2,
		VendorID:   3,
		ChannelID:  4,
		WebhookURL: "https://gw.example.com/webhook/demo?token=tok-1",
		Secret:     "shh",
		Active:     true,
	}
	cache.Put(binding)

	got, ok := cache.Get(2, 3, 4)
	require.True(t, ok)
	assert.Equal(t, int64(7), got.ID)
	assert.Equal(t, "tok-1", got.Token())
	// Secret must survive the round trip even though the model hides it
	// from JSON output.
	assert.Equal(t, "shh", got.Secret)
}

func TestBindingCache_Miss(t *testing.T) {
	_, cache := setupCache(t, time.Minute)

	_, ok := cache.Get(9, 9, 9)
	assert.False(t, ok)
}

func TestBindingCache_Expiry(t *testing.T) {
	mr, cache := setupCache(t, time.Second)

	cache.Put(&model.Binding{ID: 1, ProjectID: 1, VendorID: 1, ChannelID: 1})

	_, ok := cache.Get(1, 1, 1)
	require.True(t, ok)

	mr.FastForward(2 * time.Second)

	_, ok = cache.Get(1, 1, 1)
	assert.False(t, ok)
}

func TestBindingCache_Invalidate(t *testing.T) {
	_, cache := setupCache(t, time.Minute)

	cache.Put(&model.Binding{ID: 1, ProjectID: 1, VendorID: 1, ChannelID: 1})
	cache.Invalidate(1, 1, 1)

	_, ok := cache.Get(1, 1, 1)
	assert.False(t, ok)
}

func TestBindingCache_CorruptEntryEvicted(t *testing.T) {
	mr, cache := setupCache(t, time.Minute)

	mr.Set("binding:1:1:1", "{not json")

	_, ok := cache.Get(1, 1, 1)
	assert.False(t, ok)
	assert.False(t, mr.Exists("binding:1:1:1"))
}

func TestBindingCache_NilSafe(t *testing.T) {
	var cache *BindingCache

	_, ok := cache.Get(1, 1, 1)
	assert.False(t, ok)
	cache.Put(&model.Binding{})
	cache.Invalidate(1, 1, 1)
}
