// Package controller composes the editor core: it wires the constraint
// resolver, location index, metadata store, assignment engine, editing
// session, and creation flow behind one facade, translates UI interaction
// events into operations, and exposes the derived read views consumed by
// the rendering layer.
//
// The controller is single-threaded by contract: every method runs to
// completion within the handling of one UI event.
package controller

import (
	"context"

	"github.com/vk/mapedit/internal/config"
	"github.com/vk/mapedit/internal/constraint"
	"github.com/vk/mapedit/internal/creation"
	"github.com/vk/mapedit/internal/ctxlog"
	"github.com/vk/mapedit/internal/editing"
	"github.com/vk/mapedit/internal/engine"
	"github.com/vk/mapedit/internal/index"
	"github.com/vk/mapedit/internal/mapping"
	"github.com/vk/mapedit/internal/metadata"
	"github.com/zclconf/go-cty/cty"
)

// OnChange receives the complete replacement snapshot after every
// mutation. The caller owns the canonical assignment: it persists the
// snapshot and supplies it back as the next input.
type OnChange func(*mapping.Assignment)

// Option customizes a Controller.
type Option func(*Controller)

// WithIDFunc overrides the group id allocator used by the creation flow.
func WithIDFunc(f creation.IDFunc) Option {
	return func(c *Controller) { c.idFunc = f }
}

// Controller is the facade over the editor core for one mapping instance.
type Controller struct {
	cfg    *config.Mapping
	params map[string]config.Param

	asg     *mapping.Assignment
	created []string
	// localGroupOptions holds group names recorded as candidates by the
	// creation flow, beyond what configuration declares.
	localGroupOptions []cty.Value
	// valueRenames maps a static option candidate's declared identity to
	// its current renamed identity. Configuration is immutable at runtime,
	// so renames of option-sourced values live here and are applied on
	// every refresh; without the override a rebuild would resurrect the
	// declared identity.
	valueRenames map[string]string

	res      constraint.Resolution
	index    *index.LocationIndex
	meta     *metadata.Store
	engine   *engine.Engine
	editing  *editing.Session
	creation *creation.Flow
	drag     *DragSession

	idFunc   creation.IDFunc
	onChange OnChange
}

// New builds a controller over the caller-owned assignment snapshot.
func New(ctx context.Context, cfg *config.Mapping, params map[string]config.Param, asg *mapping.Assignment, onChange OnChange, opts ...Option) *Controller {
	if asg == nil {
		asg = mapping.NewAssignment()
	}
	if params == nil {
		params = map[string]config.Param{}
	}
	c := &Controller{
		cfg:          cfg,
		params:       params,
		asg:          asg,
		onChange:     onChange,
		valueRenames: make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.index = index.New()
	c.meta = metadata.NewStore(cfg, params)
	c.editing = editing.NewSession()
	c.creation = creation.NewFlow(c.idFunc)
	c.engine = engine.New(cfg, c.meta, c.index, c.adopt)

	c.refresh(ctx)
	return c
}

// SetAssignment replaces the canonical snapshot with the one the caller
// supplies back after an onChange, and rebuilds the derived indices.
func (c *Controller) SetAssignment(ctx context.Context, next *mapping.Assignment) {
	if next == nil {
		next = mapping.NewAssignment()
	}
	c.asg = next
	c.refresh(ctx)
}

// Assignment returns the current canonical snapshot.
func (c *Controller) Assignment() *mapping.Assignment {
	return c.asg
}

// Limits returns the effective capacity and creatability limits.
func (c *Controller) Limits() constraint.Limits {
	return c.res.Limits
}

// Warnings returns consistency warnings from the last index rebuild.
func (c *Controller) Warnings() []string {
	return c.index.Warnings()
}

// Reconcile merges pending metadata derivations into the visible cache.
// Hosts call this after a read pass; mutating operations also run it on
// entry so they act on committed metadata.
func (c *Controller) Reconcile() {
	c.meta.Reconcile()
}

// adopt is the single write path: it forwards the replacement snapshot to
// the caller and immediately adopts it as the current canonical state so
// the core never holds a divergent copy.
func (c *Controller) adopt(ctx context.Context, next *mapping.Assignment) {
	if c.onChange != nil {
		c.onChange(next)
	}
	c.asg = next
	c.refresh(ctx)
}

// refresh recomputes the derived state: the constraint resolution and the
// location index. Metadata survives a refresh; it is keyed by identity
// and only reset when configuration inputs change.
func (c *Controller) refresh(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)

	c.res = constraint.Resolve(c.cfg, c.params, c.asg)

	known := make([]string, 0, len(c.res.ValueOptions)+len(c.created))
	for _, id := range c.res.ValueIdentities() {
		known = append(known, c.renamedIdentity(id))
	}
	known = append(known, c.created...)
	c.index.Rebuild(ctx, c.asg, known)

	logger.Debug("Derived state refreshed.",
		"groups", c.asg.Len(),
		"known_identities", c.index.Len(),
		"warnings", len(c.index.Warnings()))
}

// createdIndex returns the position of an identity in the created-values
// set, or -1.
func (c *Controller) createdIndex(id string) int {
	for i, v := range c.created {
		if v == id {
			return i
		}
	}
	return -1
}

// trackRename records an accepted value rename so the identity survives
// the next rebuild: created values are renamed in place, and renames of
// static option candidates become overrides keyed by the declared
// identity. Repeated renames follow the chain back to the same origin.
// Assignment-derived identities need no record; the group record itself
// carries the new identity.
func (c *Controller) trackRename(oldID, newID string) {
	if i := c.createdIndex(oldID); i >= 0 {
		c.created[i] = newID
		return
	}
	for origin, current := range c.valueRenames {
		if current == oldID {
			c.valueRenames[origin] = newID
			return
		}
	}
	for _, v := range c.cfg.Value.Options {
		if mapping.IdentityOf(v) == oldID {
			c.valueRenames[oldID] = newID
			return
		}
	}
}

// renamedIdentity maps a resolver candidate identity to its current
// identity, following any recorded rename override.
func (c *Controller) renamedIdentity(id string) string {
	if cur, ok := c.valueRenames[id]; ok {
		return cur
	}
	return id
}
