// Package index maintains the derived identity-to-location index over the
// canonical assignment. It is a cache, never an authority: it is rebuilt
// deterministically from the assignment and the known candidate set
// whenever either changes.
package index

import (
	"context"
	"fmt"

	"github.com/vk/mapedit/internal/ctxlog"
	"github.com/vk/mapedit/internal/mapping"
)

// LocationIndex maps value identities to their current location.
type LocationIndex struct {
	loc      map[string]mapping.Location
	warnings []string
}

// New returns an initialized, empty index.
func New() *LocationIndex {
	return &LocationIndex{loc: make(map[string]mapping.Location)}
}

// Rebuild recomputes the index from scratch: every known identity starts
// in the pool, then each group's membership overrides it. An identity
// found in two groups is a consistency violation in the source data;
// the last writer wins and a warning is recorded.
func (ix *LocationIndex) Rebuild(ctx context.Context, asg *mapping.Assignment, known []string) {
	logger := ctxlog.FromContext(ctx)

	ix.loc = make(map[string]mapping.Location, len(known))
	ix.warnings = nil

	for _, id := range known {
		ix.loc[id] = mapping.PoolLocation()
	}

	if asg == nil {
		return
	}
	for _, g := range asg.Groups() {
		for _, ref := range g.Values {
			id := ref.Identity()
			if prev, ok := ix.loc[id]; ok {
				if gid, inGroup := prev.GroupID(); inGroup && gid != g.ID {
					w := fmt.Sprintf("identity %q found in groups %q and %q", id, gid, g.ID)
					ix.warnings = append(ix.warnings, w)
					logger.Warn("Assignment inconsistency detected.",
						"identity", id, "first_group", gid, "second_group", g.ID)
				}
			}
			ix.loc[id] = mapping.GroupLocation(g.ID)
		}
	}
}

// Lookup returns the location of an identity. The second return is false
// for identities the index has never seen.
func (ix *LocationIndex) Lookup(id string) (mapping.Location, bool) {
	loc, ok := ix.loc[id]
	return loc, ok
}

// Set records the location of a single identity. Used by mutating
// operations that keep the index in step with the assignment they just
// changed, as one logical transaction.
func (ix *LocationIndex) Set(id string, loc mapping.Location) {
	ix.loc[id] = loc
}

// Remove drops an identity from the index entirely.
func (ix *LocationIndex) Remove(id string) {
	delete(ix.loc, id)
}

// Rekey moves an entry from an old identity to a new one, preserving the
// location. Used by rename flows. A missing old key is a no-op.
func (ix *LocationIndex) Rekey(oldID, newID string) {
	loc, ok := ix.loc[oldID]
	if !ok {
		return
	}
	delete(ix.loc, oldID)
	ix.loc[newID] = loc
}

// Warnings returns the consistency warnings recorded by the last rebuild.
func (ix *LocationIndex) Warnings() []string {
	return ix.warnings
}

// Len returns the number of tracked identities.
func (ix *LocationIndex) Len() int {
	return len(ix.loc)
}
