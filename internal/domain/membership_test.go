package domain

import (
	"reflect"
	"testing"
)

func TestApplyAddMergesSettings(t *testing.T) {
	m := GroupMembership{
		Role:     RoleModerator,
		Settings: Settings{"a": 1},
		Active:   false,
	}
	m.ApplyAdd(MembershipAttrs{Settings: Settings{"b": 2}})

	if !reflect.DeepEqual(m.Settings, Settings{"a": 1, "b": 2}) {
		t.Fatalf("settings should merge, got %v", m.Settings)
	}
	if m.Role != RoleDefault {
		t.Fatalf("role should reset to default when not provided, got %d", m.Role)
	}
	if !m.Active {
		t.Fatalf("add must reactivate the membership")
	}
}

func TestApplyAddIsIdempotent(t *testing.T) {
	role := RoleModerator
	attrs := MembershipAttrs{Role: &role, Settings: Settings{"x": true}}

	once := GroupMembership{Settings: Settings{"a": 1}}
	once.ApplyAdd(attrs)

	twice := GroupMembership{Settings: Settings{"a": 1}}
	twice.ApplyAdd(attrs)
	twice.ApplyAdd(attrs)

	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("applying the same attrs twice diverged: %+v vs %+v", once, twice)
	}
}

func TestApplyUpdateResetsSettingsWhenAbsent(t *testing.T) {
	m := GroupMembership{Settings: Settings{"a": 1}, Active: true}
	m.ApplyUpdate(MembershipAttrs{})

	if len(m.Settings) != 0 {
		t.Fatalf("update without settings must reset them, got %v", m.Settings)
	}
	if !m.Active {
		t.Fatalf("active must not change when not provided")
	}
}

func TestApplyUpdateReplacesSettingsWhenProvided(t *testing.T) {
	m := GroupMembership{Settings: Settings{"a": 1}}
	m.ApplyUpdate(MembershipAttrs{Settings: Settings{"b": 2}})

	if !reflect.DeepEqual(m.Settings, Settings{"b": 2}) {
		t.Fatalf("update replaces settings wholesale, got %v", m.Settings)
	}
}

func TestMembershipAttrsFromMapWhitelist(t *testing.T) {
	attrs := MembershipAttrsFromMap(map[string]any{
		"active": false,
		"role":   float64(1), // decoded JSON number
		"foo":    "bar",
		"name":   "sneaky",
	})

	if attrs.Active == nil || *attrs.Active {
		t.Fatalf("active=false should survive, got %v", attrs.Active)
	}
	if attrs.Role == nil || *attrs.Role != RoleModerator {
		t.Fatalf("role should parse from JSON number, got %v", attrs.Role)
	}
	// Non-whitelisted keys have nowhere to go; verify the rest is zero.
	if attrs.ProjectRoleID != nil || attrs.Following != nil || attrs.Settings != nil {
		t.Fatalf("unexpected fields populated: %+v", attrs)
	}
}

func TestMembershipAttrsFromMapDropsNil(t *testing.T) {
	attrs := MembershipAttrsFromMap(map[string]any{
		"active": nil,
		"role":   nil,
	})
	if attrs.Active != nil || attrs.Role != nil {
		t.Fatalf("nil values must be dropped before merge, got %+v", attrs)
	}
}

func TestSettingsMergeDoesNotMutate(t *testing.T) {
	base := Settings{"a": 1}
	over := Settings{"a": 2, "b": 3}
	merged := base.Merge(over)

	if base["a"] != 1 {
		t.Fatalf("merge must not mutate the receiver")
	}
	if merged["a"] != 2 || merged["b"] != 3 {
		t.Fatalf("overlay keys win, got %v", merged)
	}
}
