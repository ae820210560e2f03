package visibility

import (
	"gorm.io/gorm"

	"github.com/forcize/hylo-node/internal/domain"
)

// Scope narrows a query to the rows a viewer may see. Scopes compose by
// chaining; repositories apply them to their base queries.
type Scope func(*gorm.DB) *gorm.DB

// Identity returns the query unmodified.
func Identity(db *gorm.DB) *gorm.DB { return db }

// Toggle wraps a scope so that callers can disable filtering entirely
// (administrative and internal contexts) without branching call sites.
func Toggle(enabled bool) func(Scope) Scope {
	return func(s Scope) Scope {
		if !enabled {
			return Identity
		}
		return s
	}
}

// ExcludeBlocked excludes rows whose actor id (the given column) appears
// in either direction of a block with the viewer. The viewer itself and
// the reserved system user are always exempt.
//
// column is a trusted identifier chosen by call sites, never user input.
func ExcludeBlocked(viewerID int64, column string) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(
			column+" IN (?, ?) OR "+column+" NOT IN ("+
				"SELECT blocked_user_id FROM blocked_users WHERE user_id = ? "+
				"UNION SELECT user_id FROM blocked_users WHERE blocked_user_id = ?)",
			viewerID, domain.SystemUserID, viewerID, viewerID,
		)
	}
}

// SharedCommunityMembership includes rows whose owning community is one
// the viewer actively belongs to, directly or through exactly one group
// graph hop to a network membership. Not every entity kind exposes an
// owning community; unsupported targets are rejected by name.
func SharedCommunityMembership(viewerID int64, target Target) (Scope, error) {
	switch target {
	case TargetPost:
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("posts.id IN (?)", memberVisiblePostIDs(db, viewerID))
		}, nil
	case TargetComment:
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("comments.post_id IN (?)", memberVisiblePostIDs(db, viewerID))
		}, nil
	case TargetPerson:
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("users.id IN (?)", sharedMemberUserIDs(db, viewerID))
		}, nil
	default:
		return nil, UnsupportedTargetError{Target: target}
	}
}

// ForMembership restricts a membership listing to active memberships in
// communities the viewer (or the system user) actively belongs to.
func ForMembership(viewerID int64) Scope {
	return func(db *gorm.DB) *gorm.DB {
		sub := db.Session(&gorm.Session{NewDB: true}).
			Table("group_memberships").
			Select("group_memberships.group_id").
			Where("group_memberships.group_data_type = ?", int(domain.DataTypeCommunity)).
			Where("group_memberships.user_id IN ?", []int64{viewerID, domain.SystemUserID}).
			Where("group_memberships.active = ?", true)
		return db.
			Where("group_memberships.active = ?", true).
			Where("group_memberships.group_id IN (?)", sub)
	}
}

// ForPerson composes the person listing filter: blocked users are
// excluded in both directions, then the listing is narrowed to the
// viewer itself, the system user, anyone sharing a direct or network-
// indirect community, and anyone with a message connection to the
// viewer.
func ForPerson(viewerID int64) Scope {
	return func(db *gorm.DB) *gorm.DB {
		db = ExcludeBlocked(viewerID, "users.id")(db)
		return db.Where(
			"users.id IN (?, ?) OR users.id IN (?) OR users.id IN (?) OR users.id IN (?)",
			viewerID, domain.SystemUserID,
			sharedMemberUserIDs(db, viewerID),
			connectionUserIDs(db, viewerID, false),
			connectionUserIDs(db, viewerID, true),
		)
	}
}

// ForPost restricts to active posts in communities the viewer belongs
// to, directly or through a network, excluding posts authored by anyone
// in either direction of a block with the viewer.
func ForPost(viewerID int64) Scope {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("posts.active = ?", true)
		db = ExcludeBlocked(viewerID, "posts.user_id")(db)
		return db.Where("posts.id IN (?)", memberVisiblePostIDs(db, viewerID))
	}
}

// ForComment restricts to active comments on posts the viewer can see
// through community membership, or on posts the viewer is a registered
// follower of (the following flag on post-group memberships).
func ForComment(viewerID int64) Scope {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("comments.active = ?", true)
		return db.Where(
			"comments.post_id IN (?) OR comments.post_id IN (?)",
			memberVisiblePostIDs(db, viewerID),
			followingPostIDs(db, viewerID),
		)
	}
}

// communityIDsForMember selects the data ids of active communities the
// user holds an active membership in.
func communityIDsForMember(db *gorm.DB, userID int64) *gorm.DB {
	return db.Session(&gorm.Session{NewDB: true}).
		Table("group_memberships").
		Joins("JOIN groups ON groups.id = group_memberships.group_id").
		Select("groups.group_data_id").
		Where("group_memberships.user_id = ? AND group_memberships.active = ?", userID, true).
		Where("groups.group_data_type = ? AND groups.active = ?", int(domain.DataTypeCommunity), true)
}

// networkCommunityIDsForMember selects the data ids of communities one
// group graph hop below a network the user actively belongs to. Exactly
// one hop: networks of networks are out of contract.
func networkCommunityIDsForMember(db *gorm.DB, userID int64) *gorm.DB {
	return db.Session(&gorm.Session{NewDB: true}).
		Table("groups AS community_groups").
		Select("community_groups.group_data_id").
		Joins("JOIN group_connections ON group_connections.child_group_id = community_groups.id").
		Joins("JOIN groups AS network_groups ON network_groups.id = group_connections.parent_group_id").
		Joins("JOIN group_memberships ON group_memberships.group_id = network_groups.id").
		Where("community_groups.group_data_type = ? AND community_groups.active = ?", int(domain.DataTypeCommunity), true).
		Where("network_groups.group_data_type = ? AND network_groups.active = ?", int(domain.DataTypeNetwork), true).
		Where("group_memberships.user_id = ? AND group_memberships.active = ?", userID, true)
}

// memberVisiblePostIDs selects ids of posts linked to any community in
// the viewer's direct or network-indirect membership set.
func memberVisiblePostIDs(db *gorm.DB, viewerID int64) *gorm.DB {
	return db.Session(&gorm.Session{NewDB: true}).
		Table("post_memberships").
		Select("post_memberships.post_id").
		Where(
			"post_memberships.community_id IN (?) OR post_memberships.community_id IN (?)",
			communityIDsForMember(db, viewerID),
			networkCommunityIDsForMember(db, viewerID),
		)
}

// sharedMemberUserIDs selects user ids holding an active membership in
// any community of the viewer's direct or network-indirect set.
func sharedMemberUserIDs(db *gorm.DB, viewerID int64) *gorm.DB {
	return db.Session(&gorm.Session{NewDB: true}).
		Table("group_memberships").
		Joins("JOIN groups ON groups.id = group_memberships.group_id").
		Select("group_memberships.user_id").
		Where("group_memberships.active = ?", true).
		Where("groups.group_data_type = ?", int(domain.DataTypeCommunity)).
		Where(
			"groups.group_data_id IN (?) OR groups.group_data_id IN (?)",
			communityIDsForMember(db, viewerID),
			networkCommunityIDsForMember(db, viewerID),
		)
}

// connectionUserIDs selects the other side of the viewer's message
// connections, in one direction per call.
func connectionUserIDs(db *gorm.DB, viewerID int64, reverse bool) *gorm.DB {
	sub := db.Session(&gorm.Session{NewDB: true}).Table("user_connections")
	if reverse {
		return sub.Select("user_connections.user_id").
			Where("user_connections.other_user_id = ? AND user_connections.type = ?", viewerID, domain.ConnectionMessage)
	}
	return sub.Select("user_connections.other_user_id").
		Where("user_connections.user_id = ? AND user_connections.type = ?", viewerID, domain.ConnectionMessage)
}

// followingPostIDs selects data ids of post groups where the viewer's
// active membership carries the following flag.
func followingPostIDs(db *gorm.DB, viewerID int64) *gorm.DB {
	return db.Session(&gorm.Session{NewDB: true}).
		Table("groups").
		Joins("JOIN group_memberships ON group_memberships.group_id = groups.id").
		Select("groups.group_data_id").
		Where("groups.group_data_type = ? AND groups.active = ?", int(domain.DataTypePost), true).
		Where("group_memberships.user_id = ? AND group_memberships.active = ? AND group_memberships.following = ?", viewerID, true, true)
}
