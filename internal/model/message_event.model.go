package model

import "time"

// MessageEvent is one immutable lifecycle observation for a Message. Rows
// are append-only; the pipeline never mutates past events. Ordering within
// a message is by EventTimestamp, not insertion order, because vendors
// report out of order.
type MessageEvent struct {
	ID             int64           `json:"id"              db:"id"              gorm:"primaryKey;autoIncrement;column:id"`
	MessageID      int64           `json:"message_id"      db:"message_id"      gorm:"column:message_id;not null;index"`
	Message        *Message        `json:"-"                                    gorm:"foreignKey:MessageID;references:ID;constraint:OnDelete:CASCADE"`
	Status         CanonicalStatus `json:"status"          db:"status"          gorm:"column:status;not null;index"`
	Reason         string          `json:"reason"          db:"reason"          gorm:"column:reason"`
	EventTimestamp time.Time       `json:"event_timestamp" db:"event_timestamp" gorm:"column:event_timestamp;not null;index"`
	RawPayload     string          `json:"raw_payload"     db:"raw_payload"     gorm:"column:raw_payload;type:jsonb"`
	VendorRefID    string          `json:"vendor_ref_id"   db:"vendor_ref_id"   gorm:"column:vendor_ref_id;index"`

	// Denormalized for analytics queries; duplicated from the parent Message.
	UserID    int64 `json:"user_id"    db:"user_id"    gorm:"column:user_id;not null;index"`
	ProjectID int64 `json:"project_id" db:"project_id" gorm:"column:project_id;not null;index"`
	VendorID  int64 `json:"vendor_id"  db:"vendor_id"  gorm:"column:vendor_id;not null"`
	ChannelID int64 `json:"channel_id" db:"channel_id" gorm:"column:channel_id;not null"`

	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"column:created_at;autoCreateTime"`
}

func (MessageEvent) TableName() string { return "message_events" }
