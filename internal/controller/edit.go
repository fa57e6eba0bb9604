package controller

import (
	"context"

	"github.com/vk/mapedit/internal/ctxlog"
	"github.com/vk/mapedit/internal/editing"
	"github.com/vk/mapedit/internal/engine"
	"github.com/vk/mapedit/internal/mapping"
)

// Editing returns the editing session for read access by the renderer.
func (c *Controller) Editing() *editing.Session {
	return c.editing
}

// StartValueEdit opens an in-place rename of a value identity. Refused
// while a drag is active, for read-only values, and for identities the
// index does not know.
func (c *Controller) StartValueEdit(ctx context.Context, id string) bool {
	logger := ctxlog.FromContext(ctx)

	if c.drag != nil {
		logger.Debug("Edit refused: drag in progress.", "identity", id)
		return false
	}
	loc, known := c.index.Lookup(id)
	if !known {
		return false
	}
	editable := c.meta.Get(id).Editable
	c.meta.Reconcile()
	if !editable {
		logger.Debug("Edit refused: value is read-only.", "identity", id)
		return false
	}

	groupContext := ""
	if gid, inGroup := loc.GroupID(); inGroup {
		groupContext = gid
	}
	target := editing.Target{Kind: editing.TargetValue, ID: id, GroupContext: groupContext}
	return c.editing.Start(target, id)
}

// StartGroupEdit opens an in-place rename of a group's display name.
func (c *Controller) StartGroupEdit(ctx context.Context, groupID string) bool {
	logger := ctxlog.FromContext(ctx)

	if c.drag != nil {
		logger.Debug("Edit refused: drag in progress.", "group", groupID)
		return false
	}
	g, ok := c.asg.Group(groupID)
	if !ok || !g.Editable {
		return false
	}
	target := editing.Target{Kind: editing.TargetGroupName, ID: groupID}
	return c.editing.Start(target, g.Name)
}

// EditInput replaces the edit buffer. No per-keystroke validation.
func (c *Controller) EditInput(text string) bool {
	return c.editing.UpdateText(text)
}

// CommitEdit applies the buffered rename. A buffer equal to the original
// text behaves as a cancel. Both Enter and blur route here; Escape and
// teardown route to CancelEdit.
func (c *Controller) CommitEdit(ctx context.Context) engine.Rejection {
	logger := ctxlog.FromContext(ctx)

	if !c.editing.Active() {
		return engine.RejectNone
	}
	target, text, changed := c.editing.Take()
	if !changed {
		logger.Debug("Edit committed without changes; treated as cancel.", "target", target.ID)
		return engine.RejectNone
	}
	c.meta.Reconcile()

	switch target.Kind {
	case editing.TargetGroupName:
		return c.engine.RenameGroup(ctx, c.asg, target.ID, text)

	default:
		scope := mapping.PoolLocation()
		if target.GroupContext != "" {
			scope = mapping.GroupLocation(target.GroupContext)
		}
		rej := c.engine.RenameValue(ctx, c.asg, scope, target.ID, text)
		if rej.Accepted() {
			// Record the rename before rebuilding, or the rebuild would
			// resurrect the old identity for candidate-sourced values.
			c.trackRename(target.ID, text)
			c.refresh(ctx)
		}
		return rej
	}
}

// CancelEdit discards the buffer with no mutation.
func (c *Controller) CancelEdit() {
	c.editing.Cancel()
}

// Enter commits the open edit, as a committed keyboard affordance.
func (c *Controller) Enter(ctx context.Context) engine.Rejection {
	return c.CommitEdit(ctx)
}

// Escape cancels the open edit.
func (c *Controller) Escape() {
	c.CancelEdit()
}

// Blur commits the open edit. Losing focus intentionally behaves like
// Enter, accepting whatever is in the buffer.
func (c *Controller) Blur(ctx context.Context) engine.Rejection {
	return c.CommitEdit(ctx)
}

// Teardown cancels any open edit and drag when the hosting component is
// destroyed.
func (c *Controller) Teardown(ctx context.Context) {
	c.CancelEdit()
	c.DragCancel(ctx)
	c.creation.Cancel()
}
