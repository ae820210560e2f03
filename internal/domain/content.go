package domain

import "time"

// User is a platform account.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

// Community is the primary grouping of people and posts.
type Community struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	Active bool   `json:"active"`
}

func (c Community) GroupDataType() DataType { return DataTypeCommunity }
func (c Community) EntityID() int64         { return c.ID }

// Network is a collection of communities, connected to them through
// the group graph (network group is the parent of each community
// group).
type Network struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

func (n Network) GroupDataType() DataType { return DataTypeNetwork }
func (n Network) EntityID() int64         { return n.ID }

// Project is a collaborative workspace with typed member roles.
type Project struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

func (p Project) GroupDataType() DataType { return DataTypeProject }
func (p Project) EntityID() int64         { return p.ID }

// Post is a content item published into one or more communities.
// ParentPostID links threaded children to their ancestor; visibility
// checks inherit down that chain.
type Post struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"userId"`
	ParentPostID *int64    `json:"parentPostId,omitempty"`
	Visibility   int       `json:"visibility"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (p Post) GroupDataType() DataType { return DataTypePost }
func (p Post) EntityID() int64         { return p.ID }

func (p Post) IsPublic() bool { return p.Visibility == VisibilityPublicReadable }

// Comment is a reply on a post.
type Comment struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"postId"`
	UserID    int64     `json:"userId"`
	Text      string    `json:"text"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

// Follow grants a user visibility of (and notifications for) a post
// regardless of group membership. AddedByID records who created the
// follow when it was not the follower themselves.
type Follow struct {
	UserID    int64     `json:"userId"`
	PostID    int64     `json:"postId"`
	AddedByID *int64    `json:"addedById,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// BlockedUser is a directed block. Visibility rules treat the pair as
// symmetric: either direction excludes mutual visibility.
type BlockedUser struct {
	UserID        int64     `json:"userId"`
	BlockedUserID int64     `json:"blockedUserId"`
	CreatedAt     time.Time `json:"createdAt"`
}

// UserConnection records a direct relationship between two users, e.g.
// an exchanged message. Connections grant person visibility regardless
// of shared membership.
type UserConnection struct {
	UserID      int64     `json:"userId"`
	OtherUserID int64     `json:"otherUserId"`
	Type        string    `json:"type"`
	CreatedAt   time.Time `json:"createdAt"`
}
