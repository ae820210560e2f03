package visibility

import "fmt"

// Target enumerates the entity kinds the filter engine can narrow. The
// per-kind support matrix is a switch over this enum, so an unsupported
// combination fails with a named error instead of producing wrong SQL.
type Target int

const (
	TargetMembership Target = iota
	TargetPerson
	TargetPost
	TargetComment
)

func (t Target) String() string {
	switch t {
	case TargetMembership:
		return "Membership"
	case TargetPerson:
		return "Person"
	case TargetPost:
		return "Post"
	case TargetComment:
		return "Comment"
	default:
		return fmt.Sprintf("Target(%d)", int(t))
	}
}

// UnsupportedTargetError reports a filter primitive invoked against an
// entity kind it does not support.
type UnsupportedTargetError struct {
	Target Target
}

func (e UnsupportedTargetError) Error() string {
	return fmt.Sprintf("unsupported filter target %s", e.Target)
}

func (e UnsupportedTargetError) Is(target error) bool {
	_, ok := target.(UnsupportedTargetError)
	if ok {
		return true
	}
	_, ok = target.(*UnsupportedTargetError)
	return ok
}
