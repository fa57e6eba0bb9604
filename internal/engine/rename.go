package engine

import (
	"context"

	"github.com/vk/mapedit/internal/ctxlog"
	"github.com/vk/mapedit/internal/mapping"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// RenameValue replaces oldID with newID within its owning scope, keeping
// the value's position and re-keying the location index and metadata so
// their fields follow the new identity. Identities form one namespace
// across the pool and every group, so a rename that collides with any
// identity the index knows is rejected regardless of where the holder
// lives.
//
// Pool renames touch no group record and therefore emit no snapshot; the
// caller owns the created-values set and renames its entry on acceptance.
func (e *Engine) RenameValue(ctx context.Context, asg *mapping.Assignment, scope mapping.Location, oldID, newID string) Rejection {
	logger := ctxlog.FromContext(ctx)

	if newID == "" || newID == oldID {
		return RejectNone
	}
	if _, known := e.index.Lookup(newID); known {
		logger.Debug("RenameValue rejected.", "old", oldID, "new", newID, "reason", RejectCollision.String())
		return RejectCollision
	}

	gid, inGroup := scope.GroupID()
	if !inGroup {
		e.index.Rekey(oldID, newID)
		e.meta.Rekey(oldID, newID)
		logger.Debug("Pool value renamed.", "old", oldID, "new", newID)
		return RejectNone
	}

	g, ok := asg.Group(gid)
	if !ok {
		return RejectNoSuchGroup
	}
	i, found := g.ContainsIdentity(oldID)
	if !found {
		return RejectUnknown
	}

	next := asg.Clone()
	nextGroup, _ := next.Group(gid)
	old := nextGroup.Values[i]
	if old.ID != "" {
		old.ID = newID
	} else {
		v, err := convert.Convert(cty.StringVal(newID), e.cfg.Value.Type)
		if err != nil {
			v = cty.StringVal(newID)
		}
		old.Value = v
	}
	nextGroup.Values[i] = old

	e.commit(ctx, next)
	e.index.Rekey(oldID, newID)
	e.meta.Rekey(oldID, newID)
	logger.Debug("Group value renamed.", "old", oldID, "new", newID, "group", gid)
	return RejectNone
}

// RenameGroup changes a group's display name. Non-editable groups and
// collisions with an existing group name are rejected.
func (e *Engine) RenameGroup(ctx context.Context, asg *mapping.Assignment, groupID, newName string) Rejection {
	logger := ctxlog.FromContext(ctx)

	if newName == "" {
		return RejectNone
	}
	g, ok := asg.Group(groupID)
	if !ok {
		return RejectNoSuchGroup
	}
	if !g.Editable {
		logger.Debug("RenameGroup rejected.", "group", groupID, "reason", RejectReadOnlyGroup.String())
		return RejectReadOnlyGroup
	}
	if g.Name == newName {
		return RejectNone
	}
	if other, exists := asg.GroupByName(newName); exists && other.ID != groupID {
		logger.Debug("RenameGroup rejected.", "group", groupID, "new_name", newName, "reason", RejectCollision.String())
		return RejectCollision
	}

	next := asg.Clone()
	nextGroup, _ := next.Group(groupID)
	nextGroup.Name = newName

	e.commit(ctx, next)
	logger.Debug("Group renamed.", "group", groupID, "new_name", newName)
	return RejectNone
}
