package repository

import (
	"github.com/nimasrn/webhook-gateway/internal/model"
)

type VendorEntity struct {
	ID     int64  `db:"id"     gorm:"primaryKey;autoIncrement;column:id"`
	Slug   string `db:"slug"   gorm:"column:slug;not null;uniqueIndex"`
	Name   string `db:"name"   gorm:"column:name;not null"`
	Active bool   `db:"active" gorm:"column:active;not null"`
}

func (VendorEntity) TableName() string { return "vendors" }

func toVendorModel(e *VendorEntity) *model.Vendor {
	if e == nil {
		return nil
	}
	return &model.Vendor{ID: e.ID, Slug: e.Slug, Name: e.Name, Active: e.Active}
}

type ChannelEntity struct {
	ID     int64  `db:"id"     gorm:"primaryKey;autoIncrement;column:id"`
	Type   string `db:"type"   gorm:"column:type;not null;uniqueIndex"`
	Active bool   `db:"active" gorm:"column:active;not null"`
}

func (ChannelEntity) TableName() string { return "channels" }

func toChannelModel(e *ChannelEntity) *model.Channel {
	if e == nil {
		return nil
	}
	return &model.Channel{ID: e.ID, Type: e.Type, Active: e.Active}
}

type ProjectEntity struct {
	ID     int64  `db:"id"      gorm:"primaryKey;autoIncrement;column:id"`
	UserID int64  `db:"user_id" gorm:"column:user_id;not null;index"`
	Name   string `db:"name"    gorm:"column:name;not null;index"`
	Active bool   `db:"active"  gorm:"column:active;not null"`
}

func (ProjectEntity) TableName() string { return "projects" }

func toProjectModel(e *ProjectEntity) *model.Project {
	if e == nil {
		return nil
	}
	return &model.Project{ID: e.ID, UserID: e.UserID, Name: e.Name, Active: e.Active}
}
