package model

// Vendor is a global catalog entry. The slug is the routing key used in
// webhook URLs. Read-only at pipeline runtime.
type Vendor struct {
	ID     int64  `json:"id"     db:"id"     gorm:"primaryKey;autoIncrement;column:id"`
	Slug   string `json:"slug"   db:"slug"   gorm:"column:slug;not null;uniqueIndex"`
	Name   string `json:"name"   db:"name"   gorm:"column:name;not null"`
	Active bool   `json:"active" db:"active" gorm:"column:active;not null;default:true"`
}

func (Vendor) TableName() string { return "vendors" }

// Channel is a global catalog entry for a communication channel type.
type Channel struct {
	ID     int64  `json:"id"     db:"id"     gorm:"primaryKey;autoIncrement;column:id"`
	Type   string `json:"type"   db:"type"   gorm:"column:type;not null;uniqueIndex"` // sms | whatsapp | email
	Active bool   `json:"active" db:"active" gorm:"column:active;not null;default:true"`
}

func (Channel) TableName() string { return "channels" }
