package model

import "time"

type Project struct {
	ID        int64     `json:"id"         db:"id"         gorm:"primaryKey;autoIncrement;column:id"`
	UserID    int64     `json:"user_id"    db:"user_id"    gorm:"column:user_id;not null;index"`
	Name      string    `json:"name"       db:"name"       gorm:"column:name;not null;index"`
	Active    bool      `json:"active"     db:"active"     gorm:"column:active;not null;default:true"`
	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"column:created_at;autoCreateTime"`
}

func (Project) TableName() string { return "projects" }
