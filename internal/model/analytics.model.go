package model

import "time"

// AnalyticsCache is a per-day rollup row. "Today" is recomputed in full
// after every processed event rather than incremented, so a crash mid-update
// self-heals on the next event.
type AnalyticsCache struct {
	ID          int64     `json:"id"           db:"id"           gorm:"primaryKey;autoIncrement;column:id"`
	UserID      int64     `json:"user_id"      db:"user_id"      gorm:"column:user_id;not null;uniqueIndex:ux_analytics_key,priority:1"`
	VendorID    int64     `json:"vendor_id"    db:"vendor_id"    gorm:"column:vendor_id;not null;uniqueIndex:ux_analytics_key,priority:2"`
	ChannelID   int64     `json:"channel_id"   db:"channel_id"   gorm:"column:channel_id;not null;uniqueIndex:ux_analytics_key,priority:3"`
	ProjectID   int64     `json:"project_id"   db:"project_id"   gorm:"column:project_id;not null;uniqueIndex:ux_analytics_key,priority:4"`
	Day         time.Time `json:"day"          db:"day"          gorm:"column:day;not null;uniqueIndex:ux_analytics_key,priority:5"`
	Sent        int64     `json:"sent"         db:"sent"         gorm:"column:sent;not null;default:0"`
	Delivered   int64     `json:"delivered"    db:"delivered"    gorm:"column:delivered;not null;default:0"`
	Read        int64     `json:"read"         db:"read"         gorm:"column:read;not null;default:0"`
	Failed      int64     `json:"failed"       db:"failed"       gorm:"column:failed;not null;default:0"`
	SuccessRate float64   `json:"success_rate" db:"success_rate" gorm:"column:success_rate;not null;default:0"`
	UpdatedAt   time.Time `json:"updated_at"   db:"updated_at"   gorm:"column:updated_at;autoUpdateTime"`
}

func (AnalyticsCache) TableName() string { return "analytics_cache" }

// Total is the number of events counted into this rollup row.
func (a *AnalyticsCache) Total() int64 {
	return a.Sent + a.Delivered + a.Read + a.Failed
}
