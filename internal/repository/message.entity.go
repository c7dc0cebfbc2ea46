package repository

import (
	"time"

	"github.com/nimasrn/webhook-gateway/internal/model"
)

type MessageEntity struct {
	ID              int64     `db:"id"                gorm:"primaryKey;autoIncrement;column:id"`
	UserID          int64     `db:"user_id"           gorm:"column:user_id;not null;index"`
	ProjectID       int64     `db:"project_id"        gorm:"column:project_id;not null;index:idx_message_identity,priority:4"`
	VendorID        int64     `db:"vendor_id"         gorm:"column:vendor_id;not null;index:idx_message_identity,priority:2"`
	ChannelID       int64     `db:"channel_id"        gorm:"column:channel_id;not null;index:idx_message_identity,priority:3"`
	VendorMessageID string    `db:"vendor_message_id" gorm:"column:vendor_message_id;not null;index:idx_message_identity,priority:1"`
	Recipient       string    `db:"recipient"         gorm:"column:recipient;not null"`
	Content         string    `db:"content"           gorm:"column:content"`
	CreatedAt       time.Time `db:"created_at"        gorm:"column:created_at;autoCreateTime"`
}

func (MessageEntity) TableName() string { return "messages" }

func toMessageEntity(m *model.Message) *MessageEntity {
	if m == nil {
		return nil
	}
	return &MessageEntity{
		ID:              m.ID,
		UserID:          m.UserID,
		ProjectID:       m.ProjectID,
		VendorID:        m.VendorID,
		ChannelID:       m.ChannelID,
		VendorMessageID: m.VendorMessageID,
		Recipient:       m.Recipient,
		Content:         m.Content,
		CreatedAt:       m.CreatedAt,
	}
}

func toMessageModel(e *MessageEntity) *model.Message {
	if e == nil {
		return nil
	}
	return &model.Message{
		ID:              e.ID,
		UserID:          e.UserID,
		ProjectID:       e.ProjectID,
		VendorID:        e.VendorID,
		ChannelID:       e.ChannelID,
		VendorMessageID: e.VendorMessageID,
		Recipient:       e.Recipient,
		Content:         e.Content,
		CreatedAt:       e.CreatedAt,
	}
}

func toMessageModels(entities []*MessageEntity) []*model.Message {
	if entities == nil {
		return nil
	}
	models := make([]*model.Message, len(entities))
	for i, e := range entities {
		models[i] = toMessageModel(e)
	}
	return models
}
