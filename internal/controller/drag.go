package controller

import (
	"context"

	"github.com/vk/mapedit/internal/ctxlog"
	"github.com/vk/mapedit/internal/engine"
	"github.com/vk/mapedit/internal/mapping"
)

// DragSession describes the one active drag. Sessions are strictly
// sequential: start, zero or more over events, then end or cancel.
type DragSession struct {
	// ActiveID is the identity being dragged.
	ActiveID string
	// Over is the last recognized drop target. Valid only when HasOver.
	Over    mapping.Location
	HasOver bool
}

// Drag returns the active drag session descriptor, if any.
func (c *Controller) Drag() (DragSession, bool) {
	if c.drag == nil {
		return DragSession{}, false
	}
	return *c.drag, true
}

// DragStart begins a drag session for the given identity. An open edit is
// forcibly cancelled first: drag always wins over edit. Starting while a
// session is already active, or for an unknown identity, is refused.
func (c *Controller) DragStart(ctx context.Context, id string) bool {
	logger := ctxlog.FromContext(ctx)

	if c.drag != nil {
		return false
	}
	if _, known := c.index.Lookup(id); !known {
		logger.Debug("Drag start refused for unknown identity.", "identity", id)
		return false
	}

	if c.editing.Active() {
		logger.Debug("Drag start cancels open edit.", "edit_target", c.editing.Target().ID)
		c.editing.Cancel()
	}
	c.meta.Reconcile()

	c.drag = &DragSession{ActiveID: id}
	logger.Debug("Drag started.", "identity", id)
	return true
}

// DragOver records the drop target currently under the pointer.
func (c *Controller) DragOver(ctx context.Context, target mapping.Location) {
	if c.drag == nil {
		return
	}
	c.drag.Over = target
	c.drag.HasOver = true
	ctxlog.FromContext(ctx).Debug("Drag over target.", "identity", c.drag.ActiveID, "target", target.String())
}

// DragLeave clears the drop target when the pointer leaves all
// recognized targets.
func (c *Controller) DragLeave() {
	if c.drag == nil {
		return
	}
	c.drag.Over = mapping.Location{}
	c.drag.HasOver = false
}

// DragEnd completes the session, applying the move implied by the last
// recognized target. A drop outside any recognized target is a no-op.
func (c *Controller) DragEnd(ctx context.Context) engine.Rejection {
	logger := ctxlog.FromContext(ctx)

	if c.drag == nil {
		return engine.RejectNone
	}
	session := *c.drag
	c.drag = nil

	if !session.HasOver {
		logger.Debug("Drag ended outside any target.", "identity", session.ActiveID)
		return engine.RejectNone
	}

	var rej engine.Rejection
	if gid, inGroup := session.Over.GroupID(); inGroup {
		rej = c.engine.MoveToGroup(ctx, c.asg, session.ActiveID, gid)
	} else {
		rej = c.engine.MoveToPool(ctx, c.asg, session.ActiveID)
	}
	if !rej.Accepted() {
		logger.Debug("Drop rejected.", "identity", session.ActiveID, "reason", rej.String())
	}
	return rej
}

// DragCancel abandons the session with no mutation.
func (c *Controller) DragCancel(ctx context.Context) {
	if c.drag == nil {
		return
	}
	ctxlog.FromContext(ctx).Debug("Drag cancelled.", "identity", c.drag.ActiveID)
	c.drag = nil
}

// MoveToGroup applies a direct reassignment without a drag session, for
// hosts that drive the engine from non-pointer affordances.
func (c *Controller) MoveToGroup(ctx context.Context, id, groupID string) engine.Rejection {
	c.meta.Reconcile()
	return c.engine.MoveToGroup(ctx, c.asg, id, groupID)
}

// MoveToPool applies a direct unassignment without a drag session.
func (c *Controller) MoveToPool(ctx context.Context, id string) engine.Rejection {
	c.meta.Reconcile()
	return c.engine.MoveToPool(ctx, c.asg, id)
}

// DeleteGroup removes a group; its values return to the pool.
func (c *Controller) DeleteGroup(ctx context.Context, groupID string) engine.Rejection {
	c.meta.Reconcile()
	return c.engine.DeleteGroup(ctx, c.asg, groupID)
}
