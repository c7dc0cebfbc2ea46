package repository

import (
	"time"

	"github.com/nimasrn/webhook-gateway/internal/model"
)

type MessageEventEntity struct {
	ID             int64     `db:"id"              gorm:"primaryKey;autoIncrement;column:id"`
	MessageID      int64     `db:"message_id"      gorm:"column:message_id;not null;index"`
	Status         string    `db:"status"          gorm:"column:status;not null;index"`
	Reason         string    `db:"reason"          gorm:"column:reason"`
	EventTimestamp time.Time `db:"event_timestamp" gorm:"column:event_timestamp;not null;index"`
	RawPayload     string    `db:"raw_payload"     gorm:"column:raw_payload;type:jsonb"`
	VendorRefID    string    `db:"vendor_ref_id"   gorm:"column:vendor_ref_id;index"`
	UserID         int64     `db:"user_id"         gorm:"column:user_id;not null;index"`
	ProjectID      int64     `db:"project_id"      gorm:"column:project_id;not null;index"`
	VendorID       int64     `db:"vendor_id"       gorm:"column:vendor_id;not null"`
	ChannelID      int64     `db:"channel_id"      gorm:"column:channel_id;not null"`
	CreatedAt      time.Time `db:"created_at"      gorm:"column:created_at;autoCreateTime"`
}

func (MessageEventEntity) TableName() string { return "message_events" }

func toMessageEventEntity(m *model.MessageEvent) *MessageEventEntity {
	if m == nil {
		return nil
	}
	return &MessageEventEntity{
		ID:             m.ID,
		MessageID:      m.MessageID,
		Status:         string(m.Status),
		Reason:         m.Reason,
		EventTimestamp: m.EventTimestamp,
		RawPayload:     m.RawPayload,
		VendorRefID:    m.VendorRefID,
		UserID:         m.UserID,
		ProjectID:      m.ProjectID,
		VendorID:       m.VendorID,
		ChannelID:      m.ChannelID,
		CreatedAt:      m.CreatedAt,
	}
}

func toMessageEventModel(e *MessageEventEntity) *model.MessageEvent {
	if e == nil {
		return nil
	}
	return &model.MessageEvent{
		ID:             e.ID,
		MessageID:      e.MessageID,
		Status:         model.CanonicalStatus(e.Status),
		Reason:         e.Reason,
		EventTimestamp: e.EventTimestamp,
		RawPayload:     e.RawPayload,
		VendorRefID:    e.VendorRefID,
		UserID:         e.UserID,
		ProjectID:      e.ProjectID,
		VendorID:       e.VendorID,
		ChannelID:      e.ChannelID,
		CreatedAt:      e.CreatedAt,
	}
}

func toMessageEventModels(entities []*MessageEventEntity) []*model.MessageEvent {
	if entities == nil {
		return nil
	}
	models := make([]*model.MessageEvent, len(entities))
	for i, e := range entities {
		models[i] = toMessageEventModel(e)
	}
	return models
}
