package model

import "time"

// Message is the canonical representation of one outbound communication as
// observed through vendor callbacks. At most one Message should exist per
// (user, vendor, channel, project, vendor message id) tuple; the lookup is
// find-before-create, so a concurrent first-seen race can create duplicates.
type Message struct {
	ID              int64     `json:"id"                db:"id"                gorm:"primaryKey;autoIncrement;column:id"`
	UserID          int64     `json:"user_id"           db:"user_id"           gorm:"column:user_id;not null;index"`
	ProjectID       int64     `json:"project_id"        db:"project_id"        gorm:"column:project_id;not null;index"`
	VendorID        int64     `json:"vendor_id"         db:"vendor_id"         gorm:"column:vendor_id;not null"`
	ChannelID       int64     `json:"channel_id"        db:"channel_id"        gorm:"column:channel_id;not null"`
	VendorMessageID string    `json:"vendor_message_id" db:"vendor_message_id" gorm:"column:vendor_message_id;not null;index"`
	Recipient       string    `json:"recipient"         db:"recipient"         gorm:"column:recipient;not null"`
	Content         string    `json:"content"           db:"content"           gorm:"column:content"`
	CreatedAt       time.Time `json:"created_at"        db:"created_at"        gorm:"column:created_at;autoCreateTime"`
}

func (Message) TableName() string { return "messages" }

// MessageFilter controls List queries.
type MessageFilter struct {
	UserID    *int64
	ProjectID *int64
	VendorID  *int64
	ChannelID *int64
	Recipient *string
	From      *time.Time
	To        *time.Time
	Limit     int // default 50
	Offset    int
	Desc      bool // order by created_at
}
