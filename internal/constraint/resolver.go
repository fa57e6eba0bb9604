// Package constraint derives the effective capacity limits and candidate
// option sets of a mapping from its declarative configuration, the bound
// parameters, and the current assignment.
package constraint

import (
	"github.com/vk/mapedit/internal/config"
	"github.com/vk/mapedit/internal/mapping"
	"github.com/zclconf/go-cty/cty"
)

// Limits are the effective capacity and creatability rules of a mapping.
// A zero limit means unbounded.
type Limits struct {
	MaxValuesPerGroup int
	MaxTotalValues    int
	CreatableKey      bool
	CreatableValue    bool
}

// GroupFull reports whether a group holding n values is at capacity.
func (l Limits) GroupFull(n int) bool {
	return l.MaxValuesPerGroup > 0 && n >= l.MaxValuesPerGroup
}

// TotalFull reports whether n assigned values exhaust the total budget.
func (l Limits) TotalFull(n int) bool {
	return l.MaxTotalValues > 0 && n >= l.MaxTotalValues
}

// Resolution is the full output of a resolve pass.
type Resolution struct {
	Limits Limits
	// KeyOptions and ValueOptions are the effective candidate sets for
	// each role: static options, then referenced parameter defaults, then
	// identities already present in the assignment, de-duplicated by
	// stringified identity in that order.
	KeyOptions   []cty.Value
	ValueOptions []cty.Value
}

// KeyIdentities returns the stringified key candidates.
func (r Resolution) KeyIdentities() []string {
	return identities(r.KeyOptions)
}

// ValueIdentities returns the stringified value candidates.
func (r Resolution) ValueIdentities() []string {
	return identities(r.ValueOptions)
}

func identities(opts []cty.Value) []string {
	out := make([]string, len(opts))
	for i, v := range opts {
		out[i] = mapping.IdentityOf(v)
	}
	return out
}

// Resolve computes the effective limits and candidate sets. It is a pure
// function of its inputs and is re-run whenever any of them changes.
func Resolve(cfg *config.Mapping, params map[string]config.Param, asg *mapping.Assignment) Resolution {
	res := Resolution{Limits: LimitsOf(cfg)}

	res.KeyOptions = collectOptions(&cfg.Key, params, assignedKeyValues(asg))
	res.ValueOptions = collectOptions(&cfg.Value, params, assignedValues(asg))
	return res
}

// LimitsOf derives the effective limits from configuration alone; they do
// not depend on the current assignment.
func LimitsOf(cfg *config.Mapping) Limits {
	return Limits{
		MaxValuesPerGroup: cfg.Value.MaxItems,
		MaxTotalValues:    totalLimit(cfg),
		CreatableKey:      cfg.Key.Creatable || cfg.Creatable,
		CreatableValue:    cfg.Value.Creatable || cfg.Creatable,
	}
}

// totalLimit derives the total-value budget: the product of both role
// limits when both are set, else whichever is set, else unbounded.
func totalLimit(cfg *config.Mapping) int {
	k, v := cfg.Key.MaxItems, cfg.Value.MaxItems
	switch {
	case k > 0 && v > 0:
		return k * v
	case k > 0:
		return k
	case v > 0:
		return v
	default:
		return 0
	}
}

// collectOptions merges the static options, the bound parameter default,
// and the assignment-present values for one role, de-duplicating by
// stringified identity while preserving first-seen order.
func collectOptions(rc *config.RoleConfig, params map[string]config.Param, present []cty.Value) []cty.Value {
	var out []cty.Value
	seen := make(map[string]bool)

	add := func(v cty.Value) {
		id := mapping.IdentityOf(v)
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		out = append(out, v)
	}

	for _, v := range rc.Options {
		add(v)
	}
	if rc.Param != "" {
		if p, ok := params[rc.Param]; ok {
			for _, v := range flattenDefault(p.Default) {
				add(v)
			}
		}
	}
	for _, v := range present {
		add(v)
	}
	return out
}

// flattenDefault expands a parameter default into its scalar elements: a
// tuple or list contributes each element, a scalar contributes itself.
func flattenDefault(v cty.Value) []cty.Value {
	if v == cty.NilVal || v.IsNull() {
		return nil
	}
	if v.Type().IsTupleType() || v.Type().IsListType() || v.Type().IsSetType() {
		var out []cty.Value
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			out = append(out, ev)
		}
		return out
	}
	return []cty.Value{v}
}

// assignedKeyValues returns the group names present in the assignment as
// key-role candidates.
func assignedKeyValues(asg *mapping.Assignment) []cty.Value {
	if asg == nil {
		return nil
	}
	var out []cty.Value
	for _, g := range asg.Groups() {
		if g.Name != "" {
			out = append(out, cty.StringVal(g.Name))
		}
	}
	return out
}

// assignedValues returns every value currently held by a group as a
// value-role candidate.
func assignedValues(asg *mapping.Assignment) []cty.Value {
	if asg == nil {
		return nil
	}
	var out []cty.Value
	for _, g := range asg.Groups() {
		for _, ref := range g.Values {
			if ref.ID != "" {
				out = append(out, cty.StringVal(ref.ID))
			} else {
				out = append(out, ref.Value)
			}
		}
	}
	return out
}
