package engine

// Rejection classifies why a mutating operation was refused. A rejection
// is silent: no mutation happens and nothing is thrown; the hosting UI is
// expected to pre-condition its affordances so these rarely surface to
// the user.
type Rejection int

const (
	// RejectNone means the operation was accepted (or was an idempotent
	// no-op that required no change).
	RejectNone Rejection = iota
	// RejectUnknown: the identity is not tracked by the location index.
	RejectUnknown
	// RejectReadOnly: the value's metadata forbids editing or moving it.
	RejectReadOnly
	// RejectNoSuchGroup: the target group does not exist.
	RejectNoSuchGroup
	// RejectReadOnlyGroup: the target group is not editable.
	RejectReadOnlyGroup
	// RejectGroupFull: the target group is at its per-group capacity.
	RejectGroupFull
	// RejectTotalFull: the assignment is at its total-value capacity.
	RejectTotalFull
	// RejectImmutableValues: the group holds only parameter-sourced
	// immutable values and cannot be deleted.
	RejectImmutableValues
	// RejectCollision: a rename would collide with an identity already
	// present in the same scope.
	RejectCollision
)

// Accepted reports whether the operation was not refused.
func (r Rejection) Accepted() bool {
	return r == RejectNone
}

func (r Rejection) String() string {
	switch r {
	case RejectNone:
		return "none"
	case RejectUnknown:
		return "unknown identity"
	case RejectReadOnly:
		return "read-only value"
	case RejectNoSuchGroup:
		return "no such group"
	case RejectReadOnlyGroup:
		return "read-only group"
	case RejectGroupFull:
		return "group full"
	case RejectTotalFull:
		return "total capacity reached"
	case RejectImmutableValues:
		return "group holds only immutable values"
	case RejectCollision:
		return "identity collision"
	default:
		return "unknown rejection"
	}
}
