package model

import (
	"net/url"
	"time"
)

// Binding links a user's project to a configured vendor+channel pair. It is
// the tenant identity a webhook resolves against: the webhook URL embeds an
// opaque token, and Secret (when set) enables payload signature checks for
// vendors that support signing. Identity is immutable once created; only the
// secret and active flag mutate.
type Binding struct {
	ID         int64     `json:"id"          db:"id"          gorm:"primaryKey;autoIncrement;column:id"`
	UserID     int64     `json:"user_id"     db:"user_id"     gorm:"column:user_id;not null;index"`
	ProjectID  int64     `json:"project_id"  db:"project_id"  gorm:"column:project_id;not null;index"`
	Project    *Project  `json:"-"                            gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE"`
	VendorID   int64     `json:"vendor_id"   db:"vendor_id"   gorm:"column:vendor_id;not null;index"`
	Vendor     *Vendor   `json:"-"                            gorm:"foreignKey:VendorID;references:ID"`
	ChannelID  int64     `json:"channel_id"  db:"channel_id"  gorm:"column:channel_id;not null;index"`
	Channel    *Channel  `json:"-"                            gorm:"foreignKey:ChannelID;references:ID"`
	WebhookURL string    `json:"webhook_url" db:"webhook_url" gorm:"column:webhook_url;not null"`
	Secret     string    `json:"-"           db:"secret"      gorm:"column:secret"`
	Active     bool      `json:"active"      db:"active"      gorm:"column:active;not null;default:true"`
	CreatedAt  time.Time `json:"created_at"  db:"created_at"  gorm:"column:created_at;autoCreateTime"`
}

func (Binding) TableName() string { return "user_vendor_channels" }

// Token extracts the opaque token embedded in the webhook URL query string.
// Empty when the URL carries none.
func (b *Binding) Token() string {
	u, err := url.Parse(b.WebhookURL)
	if err != nil {
		return ""
	}
	return u.Query().Get("token")
}
