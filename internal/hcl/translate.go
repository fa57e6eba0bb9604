// This file translates the HCL schema structs into the format-agnostic
// configuration model, evaluating option and default expressions.

package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/mapedit/internal/config"
	"github.com/vk/mapedit/internal/schema"
	"github.com/zclconf/go-cty/cty"
)

// translateMapping converts one `mapping` block into the agnostic model.
func translateMapping(ctx context.Context, m *schema.Mapping) (*config.Mapping, error) {
	out := &config.Mapping{Name: m.Name}
	if m.Creatable != nil {
		out.Creatable = *m.Creatable
	}

	key, err := translateRole(ctx, m.Key, "key", m.Name)
	if err != nil {
		return nil, err
	}
	out.Key = key

	value, err := translateRole(ctx, m.Value, "value", m.Name)
	if err != nil {
		return nil, err
	}
	out.Value = value

	for _, sf := range m.Subfields {
		translated, err := translateSubfield(ctx, sf, m.Name)
		if err != nil {
			return nil, err
		}
		out.Subfields = append(out.Subfields, translated)
	}

	return out, nil
}

// translateRole converts a `key` or `value` block. A missing block yields
// a permissive default: string-typed, not creatable, unbounded.
func translateRole(ctx context.Context, rb *schema.RoleBlock, roleName, mappingName string) (config.RoleConfig, error) {
	rc := config.RoleConfig{Type: cty.String}
	if rb == nil {
		return rc, nil
	}

	ty, err := typeExprToCtyType(ctx, rb.Type)
	if err != nil {
		return rc, fmt.Errorf("in mapping %q, %s role: %w", mappingName, roleName, err)
	}
	rc.Type = ty
	if rc.Type == cty.DynamicPseudoType {
		rc.Type = cty.String
	}

	if rb.Creatable != nil {
		rc.Creatable = *rb.Creatable
	}
	rc.Param = rb.Param
	rc.MaxItems = rb.MaxItems

	options, err := evalOptions(rb.Options)
	if err != nil {
		return rc, fmt.Errorf("in mapping %q, %s role: %w", mappingName, roleName, err)
	}
	rc.Options = options

	return rc, nil
}

// translateSubfield converts one `subfield` block, evaluating its default.
// Invalid or null defaults are dropped rather than rejected, matching the
// handling of input defaults elsewhere in the loader.
func translateSubfield(ctx context.Context, sf *schema.Subfield, mappingName string) (config.Subfield, error) {
	out := config.Subfield{Name: sf.Name, Default: cty.NilVal}

	ty, err := typeExprToCtyType(ctx, sf.Type)
	if err != nil {
		return out, fmt.Errorf("in mapping %q, subfield %q: %w", mappingName, sf.Name, err)
	}
	out.Type = ty

	if sf.Default != nil {
		val, diags := sf.Default.Value(nil)
		if !diags.HasErrors() && !val.IsNull() {
			out.Default = val
		}
	}

	return out, nil
}

// translateParam converts a `param` block. The default may be a scalar or
// a tuple of scalars; both are kept as-is for the resolver to flatten.
func translateParam(p *schema.Param) (config.Param, error) {
	out := config.Param{Name: p.Name, Default: cty.NilVal}
	if p.Default != nil {
		val, diags := p.Default.Value(nil)
		if diags.HasErrors() {
			return out, fmt.Errorf("invalid default for param %q: %w", p.Name, diags)
		}
		if !val.IsNull() {
			out.Default = val
		}
	}
	return out, nil
}

// evalOptions evaluates an `options` expression into its element values.
// The expression must be a tuple or list literal.
func evalOptions(expr hcl.Expression) ([]cty.Value, error) {
	if expr == nil {
		return nil, nil
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid options expression: %w", diags)
	}
	if val.IsNull() {
		return nil, nil
	}
	if !val.Type().IsTupleType() && !val.Type().IsListType() {
		return nil, fmt.Errorf("options must be a list, got %s", val.Type().FriendlyName())
	}
	var out []cty.Value
	for it := val.ElementIterator(); it.Next(); {
		_, ev := it.Element()
		out = append(out, ev)
	}
	return out, nil
}
