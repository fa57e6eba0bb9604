// Package engine validates and applies reassignment operations against
// the canonical assignment: pool-to-group and group-to-group moves, group
// deletion, and renames. Every accepted mutation works on a clone of the
// caller's snapshot and emits the complete replacement through the single
// onChange callback, updating the location index in the same logical
// transaction.
//
// Execution is single-threaded and event-driven; each operation runs to
// completion before the next begins, so capacity checks against the
// latest committed snapshot need no locking.
package engine

import (
	"context"

	"github.com/vk/mapedit/internal/config"
	"github.com/vk/mapedit/internal/constraint"
	"github.com/vk/mapedit/internal/ctxlog"
	"github.com/vk/mapedit/internal/index"
	"github.com/vk/mapedit/internal/mapping"
	"github.com/vk/mapedit/internal/metadata"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// OnChange receives the complete replacement snapshot after every
// accepted mutation. It is the engine's only write path.
type OnChange func(context.Context, *mapping.Assignment)

// Engine applies assignment mutations.
type Engine struct {
	cfg      *config.Mapping
	limits   constraint.Limits
	meta     *metadata.Store
	index    *index.LocationIndex
	onChange OnChange
}

// New builds an engine over the given configuration, derived stores, and
// write callback.
func New(cfg *config.Mapping, meta *metadata.Store, ix *index.LocationIndex, onChange OnChange) *Engine {
	return &Engine{
		cfg:      cfg,
		limits:   constraint.LimitsOf(cfg),
		meta:     meta,
		index:    ix,
		onChange: onChange,
	}
}

// MoveToPool removes a value from its current group, returning it to the
// pool. Values whose metadata forbids editing, and identities the index
// does not know, are rejected with no state change. A value already in
// the pool is an idempotent no-op.
func (e *Engine) MoveToPool(ctx context.Context, asg *mapping.Assignment, id string) Rejection {
	logger := ctxlog.FromContext(ctx)

	loc, known := e.index.Lookup(id)
	if !known {
		logger.Debug("MoveToPool rejected.", "identity", id, "reason", RejectUnknown.String())
		return RejectUnknown
	}
	if !e.meta.Get(id).Editable {
		logger.Debug("MoveToPool rejected.", "identity", id, "reason", RejectReadOnly.String())
		return RejectReadOnly
	}
	gid, inGroup := loc.GroupID()
	if !inGroup {
		return RejectNone
	}

	next := asg.Clone()
	g, ok := next.Group(gid)
	if !ok {
		// Index said the value was here but the group is gone: treat the
		// index as stale and relocate.
		e.index.Set(id, mapping.PoolLocation())
		return RejectNone
	}
	i, found := g.ContainsIdentity(id)
	if !found {
		e.index.Set(id, mapping.PoolLocation())
		return RejectNone
	}
	g.Values = append(g.Values[:i], g.Values[i+1:]...)

	e.commit(ctx, next)
	e.index.Set(id, mapping.PoolLocation())
	logger.Debug("Value moved to pool.", "identity", id, "from_group", gid)
	return RejectNone
}

// MoveToGroup assigns a value to the target group, removing it from its
// source group first when needed. Source removal and target append happen
// in one snapshot, so the value is never transiently duplicated. Moving a
// value onto the group that already holds it is an idempotent no-op.
func (e *Engine) MoveToGroup(ctx context.Context, asg *mapping.Assignment, id, targetGroupID string) Rejection {
	logger := ctxlog.FromContext(ctx)

	target, ok := asg.Group(targetGroupID)
	if !ok {
		logger.Debug("MoveToGroup rejected.", "identity", id, "group", targetGroupID, "reason", RejectNoSuchGroup.String())
		return RejectNoSuchGroup
	}
	if _, already := target.ContainsIdentity(id); already {
		return RejectNone
	}
	if !target.Editable {
		logger.Debug("MoveToGroup rejected.", "identity", id, "group", targetGroupID, "reason", RejectReadOnlyGroup.String())
		return RejectReadOnlyGroup
	}
	if e.limits.GroupFull(len(target.Values)) {
		logger.Debug("MoveToGroup rejected.", "identity", id, "group", targetGroupID, "reason", RejectGroupFull.String())
		return RejectGroupFull
	}
	if !e.meta.Get(id).Editable {
		logger.Debug("MoveToGroup rejected.", "identity", id, "group", targetGroupID, "reason", RejectReadOnly.String())
		return RejectReadOnly
	}
	loc, known := e.index.Lookup(id)
	if !known {
		logger.Debug("MoveToGroup rejected.", "identity", id, "group", targetGroupID, "reason", RejectUnknown.String())
		return RejectUnknown
	}

	next := asg.Clone()
	nextTarget, _ := next.Group(targetGroupID)

	var ref mapping.ValueRef
	if sourceID, inGroup := loc.GroupID(); inGroup {
		source, ok := next.Group(sourceID)
		if !ok {
			return RejectUnknown
		}
		i, found := source.ContainsIdentity(id)
		if !found {
			return RejectUnknown
		}
		ref = source.Values[i]
		source.Values = append(source.Values[:i], source.Values[i+1:]...)
	} else {
		if e.limits.TotalFull(asg.TotalValues()) {
			logger.Debug("MoveToGroup rejected.", "identity", id, "group", targetGroupID, "reason", RejectTotalFull.String())
			return RejectTotalFull
		}
		ref = e.newValueRef(id)
	}
	nextTarget.Values = append(nextTarget.Values, ref)

	e.commit(ctx, next)
	e.index.Set(id, mapping.GroupLocation(targetGroupID))
	logger.Debug("Value moved to group.", "identity", id, "group", targetGroupID)
	return RejectNone
}

// DeleteGroup removes a group record; every value it held transitions to
// the pool. Deletion is refused for non-editable groups and for groups
// that hold only parameter-sourced immutable values.
func (e *Engine) DeleteGroup(ctx context.Context, asg *mapping.Assignment, groupID string) Rejection {
	logger := ctxlog.FromContext(ctx)

	g, ok := asg.Group(groupID)
	if !ok {
		logger.Debug("DeleteGroup rejected.", "group", groupID, "reason", RejectNoSuchGroup.String())
		return RejectNoSuchGroup
	}
	if !g.Editable {
		logger.Debug("DeleteGroup rejected.", "group", groupID, "reason", RejectReadOnlyGroup.String())
		return RejectReadOnlyGroup
	}
	if e.onlyImmutableValues(g) {
		logger.Debug("DeleteGroup rejected.", "group", groupID, "reason", RejectImmutableValues.String())
		return RejectImmutableValues
	}

	next := asg.Clone()
	removed := next.Remove(groupID)

	e.commit(ctx, next)
	for _, ref := range removed.Values {
		e.index.Set(ref.Identity(), mapping.PoolLocation())
	}
	logger.Debug("Group deleted.", "group", groupID, "values_released", len(removed.Values))
	return RejectNone
}

// Deletable reports whether DeleteGroup would be accepted for the group.
// Exposed so the rendering layer can disable the delete affordance.
func (e *Engine) Deletable(g *mapping.GroupRecord) bool {
	return g.Editable && !e.onlyImmutableValues(g)
}

// onlyImmutableValues reports whether a non-empty group consists solely
// of parameter-sourced immutable values.
func (e *Engine) onlyImmutableValues(g *mapping.GroupRecord) bool {
	if len(g.Values) == 0 {
		return false
	}
	for _, ref := range g.Values {
		m := e.meta.Get(ref.Identity())
		if !m.FromParam || m.Editable {
			return false
		}
	}
	return true
}

// newValueRef materializes a value ref for a pool identity entering a
// group: object-shaped mappings get an id plus seeded subfield defaults,
// array-shaped mappings get a bare scalar of the configured type.
func (e *Engine) newValueRef(id string) mapping.ValueRef {
	if e.cfg.ObjectShaped() {
		return mapping.ObjectRef(id, e.cfg.SubfieldDefaults())
	}
	v, err := convert.Convert(cty.StringVal(id), e.cfg.Value.Type)
	if err != nil {
		v = cty.StringVal(id)
	}
	return mapping.ScalarRef(v)
}

func (e *Engine) commit(ctx context.Context, next *mapping.Assignment) {
	if e.onChange != nil {
		e.onChange(ctx, next)
	}
}
