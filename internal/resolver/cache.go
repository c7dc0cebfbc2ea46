package resolver

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nimasrn/webhook-gateway/internal/model"
	"github.com/nimasrn/webhook-gateway/pkg/logger"
	"github.com/nimasrn/webhook-gateway/pkg/redis"
)

const bindingKeyPrefix = "binding:"

// cachedBinding is the cache wire form. The model strips Secret from its
// JSON; the cache must keep it for signature verification.
type cachedBinding struct {
	ID         int64  `json:"id"`
	UserID     int64  `json:"user_id"`
	ProjectID  int64  `json:"project_id"`
	VendorID   int64  `json:"vendor_id"`
	ChannelID  int64  `json:"channel_id"`
	WebhookURL string `json:"webhook_url"`
	Secret     string `json:"secret"`
	Active     bool   `json:"active"`
}

// BindingCache keeps resolved tenant bindings in Redis for a short TTL so
// the four-read resolution chain does not hit the database on every webhook.
// Cache errors always fall through to the database; a stale or missing
// entry is never fatal.
type BindingCache struct {
	redis redis.RedisAdapter
	ttl   time.Duration
}

func NewBindingCache(adapter redis.RedisAdapter, ttl time.Duration) *BindingCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &BindingCache{redis: adapter, ttl: ttl}
}

func bindingKey(projectID, vendorID, channelID int64) string {
	return fmt.Sprintf("%s%d:%d:%d", bindingKeyPrefix, projectID, vendorID, channelID)
}

func (c *BindingCache) Get(projectID, vendorID, channelID int64) (*model.Binding, bool) {
	if c == nil || c.redis == nil {
		return nil, false
	}
	data, err := c.redis.Get(bindingKey(projectID, vendorID, channelID))
	if err != nil || len(data) == 0 {
		return nil, false
	}
	var cached cachedBinding
	if err := json.Unmarshal(data, &cached); err != nil {
		logger.Warn("corrupt binding cache entry, evicting", "error", err)
		_ = c.redis.Del(bindingKey(projectID, vendorID, channelID))
		return nil, false
	}
	return &model.Binding{
		ID:         cached.ID,
		UserID:     cached.UserID,
		ProjectID:  cached.ProjectID,
		VendorID:   cached.VendorID,
		ChannelID:  cached.ChannelID,
		WebhookURL: cached.WebhookURL,
		Secret:     cached.Secret,
		Active:     cached.Active,
	}, true
}

func (c *BindingCache) Put(binding *model.Binding) {
	if c == nil || c.redis == nil || binding == nil {
		return
	}
	data, err := json.Marshal(cachedBinding{
		ID:         binding.ID,
		UserID:     binding.UserID,
		ProjectID:  binding.ProjectID,
		VendorID:   binding.VendorID,
		ChannelID:  binding.ChannelID,
		WebhookURL: binding.WebhookURL,
		Secret:     binding.Secret,
		Active:     binding.Active,
	})
	if err != nil {
		return
	}
	if err := c.redis.Set(bindingKey(binding.ProjectID, binding.VendorID, binding.ChannelID), data, c.ttl); err != nil {
		logger.Warn("failed to cache binding", "binding_id", binding.ID, "error", err)
	}
}

// Invalidate drops the cached entry after a binding mutation (secret or
// active flag change, deletion). Binding CRUD lives outside this service;
// whatever performs the mutation is expected to call this, and the short
// TTL bounds staleness when it does not.
func (c *BindingCache) Invalidate(projectID, vendorID, channelID int64) {
	if c == nil || c.redis == nil {
		return
	}
	if err := c.redis.Del(bindingKey(projectID, vendorID, channelID)); err != nil {
		logger.Warn("failed to invalidate binding cache", "error", err)
	}
}
