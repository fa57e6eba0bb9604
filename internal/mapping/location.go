package mapping

import "fmt"

// LocationKind discriminates the two places a value identity can live.
type LocationKind int

const (
	// KindPool marks an identity that is not assigned to any group.
	KindPool LocationKind = iota
	// KindGroup marks an identity held by a specific group record.
	KindGroup
)

// Location is a tagged variant: either the pool, or a specific group.
// Using a variant instead of a nullable group id removes the
// null-as-sentinel ambiguity around unassigned values.
type Location struct {
	kind    LocationKind
	groupID string
}

// PoolLocation returns the pool location.
func PoolLocation() Location {
	return Location{kind: KindPool}
}

// GroupLocation returns the location inside the group with the given id.
func GroupLocation(groupID string) Location {
	return Location{kind: KindGroup, groupID: groupID}
}

// Kind returns the variant tag.
func (l Location) Kind() LocationKind {
	return l.kind
}

// InPool reports whether the location is the pool.
func (l Location) InPool() bool {
	return l.kind == KindPool
}

// GroupID returns the group id and true for group locations, and "" and
// false for the pool.
func (l Location) GroupID() (string, bool) {
	if l.kind != KindGroup {
		return "", false
	}
	return l.groupID, true
}

func (l Location) String() string {
	if l.kind == KindPool {
		return "pool"
	}
	return fmt.Sprintf("group(%s)", l.groupID)
}
