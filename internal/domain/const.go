package domain

// SystemUserID is the reserved platform user. It is exempt from block
// exclusion and always visible in person listings.
const SystemUserID int64 = 1

// Role is the membership role within a group.
type Role int

const (
	RoleDefault   Role = 0
	RoleModerator Role = 1
)

// Post visibility flags.
const (
	VisibilityDefault        = 0
	VisibilityPublicReadable = 1
)

// UserConnection types.
const (
	ConnectionMessage = "message"
)

type ctxKey string

// ViewerIdCtxKey carries the authenticated viewer's user id through
// request contexts.
const ViewerIdCtxKey ctxKey = "viewerId"
