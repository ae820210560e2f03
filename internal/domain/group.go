package domain

import "time"

// Group is the polymorphic wrapper identifying one entity instance as a
// group. (DataType, DataID) points at the concrete entity's own table.
type Group struct {
	ID        int64     `json:"id"`
	DataType  DataType  `json:"dataType"`
	DataID    int64     `json:"dataId"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

// GroupConnection is a directed parent/child edge between two groups,
// e.g. community within network. Edges are created by provisioning
// logic; traversal is always a single hop.
type GroupConnection struct {
	ParentGroupID int64 `json:"parentGroupId"`
	ChildGroupID  int64 `json:"childGroupId"`
}

// GroupEntity is implemented by every concrete type that can
// participate as a group. The set of implementations is closed; the
// repository resolves tags through an exhaustive switch.
type GroupEntity interface {
	GroupDataType() DataType
	EntityID() int64
}
