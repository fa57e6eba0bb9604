package controller

import (
	"github.com/vk/mapedit/internal/mapping"
	"github.com/vk/mapedit/internal/metadata"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// GroupView is the derived, render-ready view of one group.
type GroupView struct {
	ID       string
	Name     string
	Values   []mapping.ValueRef
	Editable bool
	// Full is true when the group is at its per-group capacity.
	Full bool
	// Deletable is false for read-only groups and for groups holding
	// only parameter-sourced immutable values; the renderer disables the
	// delete affordance accordingly.
	Deletable bool
}

// GroupViews returns the derived view of every group, in assignment
// order. Pure with respect to the canonical state; metadata derivations
// it triggered are staged until the next Reconcile.
func (c *Controller) GroupViews() []GroupView {
	groups := c.asg.Groups()
	out := make([]GroupView, 0, len(groups))
	for _, g := range groups {
		values := make([]mapping.ValueRef, len(g.Values))
		for i, v := range g.Values {
			values[i] = v.Clone()
		}
		out = append(out, GroupView{
			ID:        g.ID,
			Name:      g.Name,
			Values:    values,
			Editable:  g.Editable,
			Full:      c.res.Limits.GroupFull(len(g.Values)),
			Deletable: c.engine.Deletable(g),
		})
	}
	return out
}

// PoolValues returns the identities currently in the pool: resolved value
// candidates first, then created values, minus anything assigned to a
// group, de-duplicated in first-seen order.
func (c *Controller) PoolValues() []string {
	var out []string
	seen := make(map[string]bool)
	consider := func(id string) {
		if seen[id] {
			return
		}
		seen[id] = true
		if loc, ok := c.index.Lookup(id); ok && loc.InPool() {
			out = append(out, id)
		}
	}
	for _, id := range c.res.ValueIdentities() {
		consider(c.renamedIdentity(id))
	}
	for _, id := range c.created {
		consider(id)
	}
	return out
}

// KeyOptions returns the effective key-role candidates, including group
// names recorded locally by the creation flow.
func (c *Controller) KeyOptions() []cty.Value {
	out := make([]cty.Value, len(c.res.KeyOptions))
	copy(out, c.res.KeyOptions)
	seen := make(map[string]bool, len(out))
	for _, v := range out {
		seen[mapping.IdentityOf(v)] = true
	}
	for _, v := range c.localGroupOptions {
		if id := mapping.IdentityOf(v); !seen[id] {
			seen[id] = true
			out = append(out, v)
		}
	}
	return out
}

// ValueOptions returns the effective value-role candidates, with rename
// overrides applied so a renamed option candidate shows its current
// identity.
func (c *Controller) ValueOptions() []cty.Value {
	out := make([]cty.Value, len(c.res.ValueOptions))
	for i, v := range c.res.ValueOptions {
		out[i] = c.optionValue(v)
	}
	return out
}

// optionValue applies any rename override to a candidate value, converting
// the renamed identity back to the configured value type.
func (c *Controller) optionValue(v cty.Value) cty.Value {
	id := mapping.IdentityOf(v)
	cur, ok := c.valueRenames[id]
	if !ok {
		return v
	}
	nv, err := convert.Convert(cty.StringVal(cur), c.cfg.Value.Type)
	if err != nil {
		return cty.StringVal(cur)
	}
	return nv
}

// Metadata returns the derived metadata for an identity. A cache miss
// stages a pending derivation; call Reconcile after the read pass.
func (c *Controller) Metadata(id string) metadata.Entry {
	return c.meta.Get(id)
}

// Location returns the current location of an identity.
func (c *Controller) Location(id string) (mapping.Location, bool) {
	return c.index.Lookup(id)
}
