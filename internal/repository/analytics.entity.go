package repository

import (
	"time"

	"github.com/nimasrn/webhook-gateway/internal/model"
)

type AnalyticsCacheEntity struct {
	ID          int64     `db:"id"           gorm:"primaryKey;autoIncrement;column:id"`
	UserID      int64     `db:"user_id"      gorm:"column:user_id;not null;uniqueIndex:ux_analytics_key,priority:1"`
	VendorID    int64     `db:"vendor_id"    gorm:"column:vendor_id;not null;uniqueIndex:ux_analytics_key,priority:2"`
	ChannelID   int64     `db:"channel_id"   gorm:"column:channel_id;not null;uniqueIndex:ux_analytics_key,priority:3"`
	ProjectID   int64     `db:"project_id"   gorm:"column:project_id;not null;uniqueIndex:ux_analytics_key,priority:4"`
	Day         time.Time `db:"day"          gorm:"column:day;not null;uniqueIndex:ux_analytics_key,priority:5"`
	Sent        int64     `db:"sent"         gorm:"column:sent;not null;default:0"`
	Delivered   int64     `db:"delivered"    gorm:"column:delivered;not null;default:0"`
	Read        int64     `db:"read"         gorm:"column:read;not null;default:0"`
	Failed      int64     `db:"failed"       gorm:"column:failed;not null;default:0"`
	SuccessRate float64   `db:"success_rate" gorm:"column:success_rate;not null;default:0"`
	UpdatedAt   time.Time `db:"updated_at"   gorm:"column:updated_at;autoUpdateTime"`
}

func (AnalyticsCacheEntity) TableName() string { return "analytics_cache" }

func toAnalyticsEntity(m *model.AnalyticsCache) *AnalyticsCacheEntity {
	if m == nil {
		return nil
	}
	return &AnalyticsCacheEntity{
		ID:          m.ID,
		UserID:      m.UserID,
		VendorID:    m.VendorID,
		ChannelID:   m.ChannelID,
		ProjectID:   m.ProjectID,
		Day:         m.Day,
		Sent:        m.Sent,
		Delivered:   m.Delivered,
		Read:        m.Read,
		Failed:      m.Failed,
		SuccessRate: m.SuccessRate,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toAnalyticsModel(e *AnalyticsCacheEntity) *model.AnalyticsCache {
	if e == nil {
		return nil
	}
	return &model.AnalyticsCache{
		ID:          e.ID,
		UserID:      e.UserID,
		VendorID:    e.VendorID,
		ChannelID:   e.ChannelID,
		ProjectID:   e.ProjectID,
		Day:         e.Day,
		Sent:        e.Sent,
		Delivered:   e.Delivered,
		Read:        e.Read,
		Failed:      e.Failed,
		SuccessRate: e.SuccessRate,
		UpdatedAt:   e.UpdatedAt,
	}
}
