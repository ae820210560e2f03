package models

import (
	"time"
)

type Group struct {
	ID            int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	GroupDataType int       `json:"group_data_type" gorm:"not null;uniqueIndex:group_data,priority:1"`
	GroupDataID   int64     `json:"group_data_id" gorm:"not null;uniqueIndex:group_data,priority:2"`
	Active        bool      `json:"active" gorm:"not null;default:true;index"`
	CreatedAt     time.Time `json:"created_at" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type GroupConnection struct {
	ParentGroupID int64 `json:"parent_group_id" gorm:"primaryKey"`
	ParentGroup   Group `json:"-" gorm:"foreignKey:ParentGroupID;constraint:OnDelete:CASCADE;"`
	ChildGroupID  int64 `json:"child_group_id" gorm:"primaryKey"`
	ChildGroup    Group `json:"-" gorm:"foreignKey:ChildGroupID;constraint:OnDelete:CASCADE;"`
}

type GroupMembership struct {
	ID            int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	GroupID       int64     `json:"group_id" gorm:"not null;uniqueIndex:group_member,priority:1"`
	Group         Group     `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	UserID        int64     `json:"user_id" gorm:"not null;uniqueIndex:group_member,priority:2;index"`
	GroupDataType int       `json:"group_data_type" gorm:"not null;index"`
	Role          int       `json:"role" gorm:"not null;default:0"`
	ProjectRoleID *int64    `json:"project_role_id"`
	Following     bool      `json:"following" gorm:"not null;default:false"`
	Settings      string    `json:"settings" gorm:"type:text;not null;default:'{}'"`
	Active        bool      `json:"active" gorm:"not null;default:true;index"`
	CreatedAt     time.Time `json:"created_at" gorm:"type:timestamp with time zone;not null;default:clock_timestamp()"`
}
