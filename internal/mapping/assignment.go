package mapping

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// GroupRecord is one named group and its ordered value list.
type GroupRecord struct {
	ID       string
	Name     string
	Values   []ValueRef
	Editable bool
	// Subfields holds the group-level defaults for declared sub-variable
	// fields. Nil for array-shaped configurations.
	Subfields map[string]cty.Value
}

// Clone returns a deep copy of the record.
func (g *GroupRecord) Clone() *GroupRecord {
	out := &GroupRecord{
		ID:       g.ID,
		Name:     g.Name,
		Editable: g.Editable,
	}
	if g.Values != nil {
		out.Values = make([]ValueRef, len(g.Values))
		for i, v := range g.Values {
			out.Values[i] = v.Clone()
		}
	}
	if g.Subfields != nil {
		out.Subfields = make(map[string]cty.Value, len(g.Subfields))
		for k, v := range g.Subfields {
			out.Subfields[k] = v
		}
	}
	return out
}

// ContainsIdentity reports whether the group holds a value with the given
// identity, and its position when it does.
func (g *GroupRecord) ContainsIdentity(identity string) (int, bool) {
	for i, v := range g.Values {
		if v.Identity() == identity {
			return i, true
		}
	}
	return 0, false
}

// Assignment is the canonical, ordered mapping from group id to group
// record. Iteration order is insertion order; lookups by id are O(1).
type Assignment struct {
	groups []*GroupRecord
	byID   map[string]*GroupRecord
}

// NewAssignment returns an initialized, empty Assignment.
func NewAssignment() *Assignment {
	return &Assignment{byID: make(map[string]*GroupRecord)}
}

// Append adds a group record at the end of the ordering. Duplicate ids are
// an error; the assignment is left unchanged.
func (a *Assignment) Append(g *GroupRecord) error {
	if g.ID == "" {
		return fmt.Errorf("group record has empty id")
	}
	if _, ok := a.byID[g.ID]; ok {
		return fmt.Errorf("duplicate group id %q", g.ID)
	}
	a.groups = append(a.groups, g)
	a.byID[g.ID] = g
	return nil
}

// Remove deletes the group with the given id and returns it, or nil when
// no such group exists. Ordering of the remaining groups is preserved.
func (a *Assignment) Remove(id string) *GroupRecord {
	g, ok := a.byID[id]
	if !ok {
		return nil
	}
	delete(a.byID, id)
	for i, cand := range a.groups {
		if cand.ID == id {
			a.groups = append(a.groups[:i], a.groups[i+1:]...)
			break
		}
	}
	return g
}

// Group returns the record with the given id.
func (a *Assignment) Group(id string) (*GroupRecord, bool) {
	g, ok := a.byID[id]
	return g, ok
}

// GroupByName returns the first record with the given display name.
func (a *Assignment) GroupByName(name string) (*GroupRecord, bool) {
	for _, g := range a.groups {
		if g.Name == name {
			return g, true
		}
	}
	return nil, false
}

// Groups returns the records in insertion order. The slice is a copy but
// the records are shared; callers that mutate must Clone first.
func (a *Assignment) Groups() []*GroupRecord {
	out := make([]*GroupRecord, len(a.groups))
	copy(out, a.groups)
	return out
}

// Len returns the number of groups.
func (a *Assignment) Len() int {
	return len(a.groups)
}

// TotalValues returns the number of values assigned across all groups.
func (a *Assignment) TotalValues() int {
	n := 0
	for _, g := range a.groups {
		n += len(g.Values)
	}
	return n
}

// Locate scans for the given identity and returns the owning group id and
// the position within its value list.
func (a *Assignment) Locate(identity string) (groupID string, index int, ok bool) {
	for _, g := range a.groups {
		if i, found := g.ContainsIdentity(identity); found {
			return g.ID, i, true
		}
	}
	return "", 0, false
}

// Identities returns every value identity present in any group, in group
// order then value order.
func (a *Assignment) Identities() []string {
	var out []string
	for _, g := range a.groups {
		for _, v := range g.Values {
			out = append(out, v.Identity())
		}
	}
	return out
}

// Clone returns a deep copy of the assignment. Mutating operations work on
// a clone so the caller's snapshot is never changed in place.
func (a *Assignment) Clone() *Assignment {
	out := NewAssignment()
	for _, g := range a.groups {
		// Append cannot fail here: ids were unique in the source.
		_ = out.Append(g.Clone())
	}
	return out
}
