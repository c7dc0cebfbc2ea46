package repository

import (
	"time"

	"github.com/nimasrn/webhook-gateway/internal/model"
)

type BindingEntity struct {
	ID         int64     `db:"id"          gorm:"primaryKey;autoIncrement;column:id"`
	UserID     int64     `db:"user_id"     gorm:"column:user_id;not null;index"`
	ProjectID  int64     `db:"project_id"  gorm:"column:project_id;not null;index:idx_binding_triple,priority:1"`
	VendorID   int64     `db:"vendor_id"   gorm:"column:vendor_id;not null;index:idx_binding_triple,priority:2"`
	ChannelID  int64     `db:"channel_id"  gorm:"column:channel_id;not null;index:idx_binding_triple,priority:3"`
	WebhookURL string    `db:"webhook_url" gorm:"column:webhook_url;not null"`
	Secret     string    `db:"secret"      gorm:"column:secret"`
	Active     bool      `db:"active"      gorm:"column:active;not null"`
	CreatedAt  time.Time `db:"created_at"  gorm:"column:created_at;autoCreateTime"`
}

func (BindingEntity) TableName() string { return "user_vendor_channels" }

func toBindingEntity(m *model.Binding) *BindingEntity {
	if m == nil {
		return nil
	}
	return &BindingEntity{
		ID:         m.ID,
		UserID:     m.UserID,
		ProjectID:  m.ProjectID,
		VendorID:   m.VendorID,
		ChannelID:  m.ChannelID,
		WebhookURL: m.WebhookURL,
		Secret:     m.Secret,
		Active:     m.Active,
		CreatedAt:  m.CreatedAt,
	}
}

func toBindingModel(e *BindingEntity) *model.Binding {
	if e == nil {
		return nil
	}
	return &model.Binding{
		ID:         e.ID,
		UserID:     e.UserID,
		ProjectID:  e.ProjectID,
		VendorID:   e.VendorID,
		ChannelID:  e.ChannelID,
		WebhookURL: e.WebhookURL,
		Secret:     e.Secret,
		Active:     e.Active,
		CreatedAt:  e.CreatedAt,
	}
}
