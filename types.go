package hylo

import (
	"time"
)

const (
	// ChannelGroups carries group lifecycle events.
	ChannelGroups string = "groups"
	// ChannelMemberships carries membership lifecycle events.
	ChannelMemberships string = "memberships"
)

const (
	EventMembersAdded     string = "members.added"
	EventMembersUpdated   string = "members.updated"
	EventMembersRemoved   string = "members.removed"
	EventGroupDeactivated string = "group.deactivated"
)

// Event is the wire shape pushed to realtime subscribers and over the
// pub/sub fanout between nodes.
type Event struct {
	Channel   string    `json:"channel"`
	Type      string    `json:"type"`
	GroupID   int64     `json:"groupId"`
	UserIDs   []int64   `json:"userIds,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
