package models

import (
	"time"
)

type User struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"type:text;not null"`
	Active    bool      `json:"active" gorm:"not null;default:true;index"`
	CreatedAt time.Time `json:"created_at" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type Community struct {
	ID     int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Name   string `json:"name" gorm:"type:text;not null"`
	Slug   string `json:"slug" gorm:"type:text;uniqueIndex"`
	Active bool   `json:"active" gorm:"not null;default:true"`
}

type Network struct {
	ID     int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Name   string `json:"name" gorm:"type:text;not null"`
	Active bool   `json:"active" gorm:"not null;default:true"`
}

type Project struct {
	ID     int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Name   string `json:"name" gorm:"type:text;not null"`
	Active bool   `json:"active" gorm:"not null;default:true"`
}

type Post struct {
	ID           int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID       int64     `json:"user_id" gorm:"not null;index"`
	User         User      `json:"-"`
	ParentPostID *int64    `json:"parent_post_id" gorm:"index"`
	Visibility   int       `json:"visibility" gorm:"not null;default:0"`
	Active       bool      `json:"active" gorm:"not null;default:true;index"`
	CreatedAt    time.Time `json:"created_at" gorm:"type:timestamp with time zone;not null;default:clock_timestamp()"`
}

// PostMembership links a post into a community.
type PostMembership struct {
	PostID      int64     `json:"post_id" gorm:"primaryKey"`
	Post        Post      `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	CommunityID int64     `json:"community_id" gorm:"primaryKey"`
	Community   Community `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
}

type Comment struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	PostID    int64     `json:"post_id" gorm:"not null;index"`
	Post      Post      `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	UserID    int64     `json:"user_id" gorm:"not null;index"`
	Text      string    `json:"text" gorm:"type:text;not null"`
	Active    bool      `json:"active" gorm:"not null;default:true;index"`
	CreatedAt time.Time `json:"created_at" gorm:"type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type Follow struct {
	UserID    int64     `json:"user_id" gorm:"primaryKey"`
	PostID    int64     `json:"post_id" gorm:"primaryKey"`
	Post      Post      `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	AddedByID *int64    `json:"added_by_id"`
	CreatedAt time.Time `json:"created_at" gorm:"type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type BlockedUser struct {
	UserID        int64     `json:"user_id" gorm:"primaryKey"`
	BlockedUserID int64     `json:"blocked_user_id" gorm:"primaryKey"`
	CreatedAt     time.Time `json:"created_at" gorm:"type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type UserConnection struct {
	UserID      int64     `json:"user_id" gorm:"primaryKey"`
	OtherUserID int64     `json:"other_user_id" gorm:"primaryKey"`
	Type        string    `json:"type" gorm:"primaryKey;type:text"`
	CreatedAt   time.Time `json:"created_at" gorm:"type:timestamp with time zone;not null;default:clock_timestamp()"`
}
