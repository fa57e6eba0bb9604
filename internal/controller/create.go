package controller

import (
	"context"

	"github.com/vk/mapedit/internal/creation"
	"github.com/vk/mapedit/internal/ctxlog"
	"github.com/vk/mapedit/internal/mapping"
	"github.com/vk/mapedit/internal/metadata"
	"github.com/zclconf/go-cty/cty"
)

// Creation returns the creation flow for read access by the renderer.
func (c *Controller) Creation() *creation.Flow {
	return c.creation
}

// EnterCreateGroup opens the new-group input. Gated on the resolved
// key-role creatable flag; the state stays idle when refused.
func (c *Controller) EnterCreateGroup() bool {
	return c.creation.EnterGroup(c.res.Limits)
}

// EnterCreateValue opens the new-value input, gated on the value-role
// creatable flag.
func (c *Controller) EnterCreateValue() bool {
	return c.creation.EnterValue(c.res.Limits)
}

// CreateInput replaces the partially entered text.
func (c *Controller) CreateInput(text string) bool {
	return c.creation.UpdateText(text)
}

// CancelCreate discards any partially entered text.
func (c *Controller) CancelCreate() {
	c.creation.Cancel()
}

// SubmitGroup creates an empty group with the given name and appends it
// to the assignment. Blank names and names of existing groups are silent
// no-ops. A failing id callback is a CallbackFailure: the error is
// returned, and neither the assignment nor the flow state has changed.
func (c *Controller) SubmitGroup(ctx context.Context, name string) error {
	logger := ctxlog.FromContext(ctx)

	if c.creation.State() != creation.StateCreatingGroup {
		return nil
	}
	if name == "" {
		return nil
	}
	if _, exists := c.asg.GroupByName(name); exists {
		logger.Debug("Group creation skipped: name already exists.", "name", name)
		return nil
	}

	rec, err := c.creation.BuildGroup(c.cfg, name)
	if err != nil {
		logger.Warn("Group creation failed.", "name", name, "error", err)
		return err
	}

	next := c.asg.Clone()
	if err := next.Append(rec); err != nil {
		return err
	}

	c.localGroupOptions = append(c.localGroupOptions, cty.StringVal(name))
	c.creation.Reset()
	c.adopt(ctx, next)
	logger.Debug("Group created.", "id", rec.ID, "name", name)
	return nil
}

// SubmitValue adds a new value to the pool. Blank values and identities
// that already exist anywhere, pool or group, are silent no-ops.
func (c *Controller) SubmitValue(ctx context.Context, value string) bool {
	logger := ctxlog.FromContext(ctx)

	if c.creation.State() != creation.StateCreatingValue {
		return false
	}
	if value == "" {
		return false
	}
	if _, exists := c.index.Lookup(value); exists {
		logger.Debug("Value creation skipped: identity already exists.", "identity", value)
		return false
	}

	c.created = append(c.created, value)
	c.meta.Set(value, metadata.Entry{
		Type:     c.cfg.Value.Type,
		Editable: true,
	})
	c.index.Set(value, mapping.PoolLocation())
	c.creation.Reset()
	c.refresh(ctx)
	logger.Debug("Pool value created.", "identity", value)
	return true
}

// Suggestions returns the unused candidates appropriate to the open
// creation surface: key candidates not yet used as group names, or value
// candidates still in the pool.
func (c *Controller) Suggestions() []string {
	switch c.creation.State() {
	case creation.StateCreatingGroup:
		var out []string
		for _, id := range c.keyIdentities() {
			if _, exists := c.asg.GroupByName(id); !exists {
				out = append(out, id)
			}
		}
		return out

	case creation.StateCreatingValue:
		var out []string
		for _, id := range c.res.ValueIdentities() {
			id = c.renamedIdentity(id)
			if loc, ok := c.index.Lookup(id); ok && loc.InPool() {
				out = append(out, id)
			}
		}
		return out

	default:
		return nil
	}
}

// keyIdentities merges the resolved key candidates with locally recorded
// group-name options.
func (c *Controller) keyIdentities() []string {
	out := c.res.KeyIdentities()
	seen := make(map[string]bool, len(out))
	for _, id := range out {
		seen[id] = true
	}
	for _, v := range c.localGroupOptions {
		id := mapping.IdentityOf(v)
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
