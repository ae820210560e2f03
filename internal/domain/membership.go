package domain

import "time"

// GroupMembership is the join record between a user and a group. At
// most one row exists per (GroupID, UserID); removal flips Active off
// and a later add reactivates the same row.
type GroupMembership struct {
	ID            int64     `json:"id"`
	GroupID       int64     `json:"groupId"`
	UserID        int64     `json:"userId"`
	GroupDataType DataType  `json:"groupDataType"`
	Role          Role      `json:"role"`
	ProjectRoleID *int64    `json:"projectRoleId,omitempty"`
	Following     bool      `json:"following"`
	Settings      Settings  `json:"settings"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"createdAt"`
}

// MembershipAttrs is the set of membership fields callers may mutate.
// Nil pointer fields mean "not provided". Anything outside these fields
// cannot be expressed, which makes the update whitelist structural.
type MembershipAttrs struct {
	Role          *Role
	ProjectRoleID *int64
	Following     *bool
	Settings      Settings
	Active        *bool
}

// membershipAttrKeys are the wire names accepted from map-shaped input.
var membershipAttrKeys = []string{"role", "project_role_id", "following", "settings", "active"}

// MembershipAttrsFromMap converts loosely-typed input (API payloads)
// into MembershipAttrs. Keys outside the whitelist and nil values are
// silently dropped; that is designed behavior, not an error.
func MembershipAttrsFromMap(m map[string]any) MembershipAttrs {
	var attrs MembershipAttrs
	for _, key := range membershipAttrKeys {
		v, ok := m[key]
		if !ok || v == nil {
			continue
		}
		switch key {
		case "role":
			if n, ok := asInt64(v); ok {
				role := Role(n)
				attrs.Role = &role
			}
		case "project_role_id":
			if n, ok := asInt64(v); ok {
				attrs.ProjectRoleID = &n
			}
		case "following":
			if b, ok := v.(bool); ok {
				attrs.Following = &b
			}
		case "settings":
			if s, ok := v.(map[string]any); ok {
				attrs.Settings = Settings(s)
			}
		case "active":
			if b, ok := v.(bool); ok {
				attrs.Active = &b
			}
		}
	}
	return attrs
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		// JSON numbers decode as float64.
		return int64(n), true
	}
	return 0, false
}

// ApplyAdd folds attrs into the membership with add/upsert semantics:
// role is replaced (defaulting to RoleDefault), settings are shallow-
// merged on top of the existing bag, and active is forced true unless
// the caller explicitly provided it.
func (m *GroupMembership) ApplyAdd(attrs MembershipAttrs) {
	if attrs.Role != nil {
		m.Role = *attrs.Role
	} else {
		m.Role = RoleDefault
	}
	if attrs.ProjectRoleID != nil {
		m.ProjectRoleID = attrs.ProjectRoleID
	}
	if attrs.Following != nil {
		m.Following = *attrs.Following
	}
	if m.Settings == nil {
		m.Settings = Settings{}
	}
	m.Settings = m.Settings.Merge(attrs.Settings)
	if attrs.Active != nil {
		m.Active = *attrs.Active
	} else {
		m.Active = true
	}
}

// ApplyUpdate folds attrs into the membership with update semantics:
// settings are reset to the empty bag unless provided, and only the
// fields present in attrs change.
func (m *GroupMembership) ApplyUpdate(attrs MembershipAttrs) {
	if attrs.Role != nil {
		m.Role = *attrs.Role
	}
	if attrs.ProjectRoleID != nil {
		m.ProjectRoleID = attrs.ProjectRoleID
	}
	if attrs.Following != nil {
		m.Following = *attrs.Following
	}
	if attrs.Settings != nil {
		m.Settings = attrs.Settings.Clone()
	} else {
		m.Settings = Settings{}
	}
	if attrs.Active != nil {
		m.Active = *attrs.Active
	}
}
