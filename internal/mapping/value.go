package mapping

import (
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// ValueRef is a single value held by a group record. In array-shaped
// configurations it is a bare scalar (ID empty, Fields nil); in
// object-shaped configurations it carries an explicit ID plus the declared
// sub-variable fields.
type ValueRef struct {
	ID     string
	Value  cty.Value
	Fields map[string]cty.Value
}

// ScalarRef wraps a bare scalar value.
func ScalarRef(v cty.Value) ValueRef {
	return ValueRef{Value: v}
}

// ObjectRef builds an object-shaped value with an explicit id and its
// sub-variable fields.
func ObjectRef(id string, fields map[string]cty.Value) ValueRef {
	return ValueRef{ID: id, Fields: fields}
}

// Identity returns the string key used to track this value across all
// derived indices: the explicit id when present, otherwise the stringified
// scalar.
func (r ValueRef) Identity() string {
	if r.ID != "" {
		return r.ID
	}
	return IdentityOf(r.Value)
}

// Clone returns a deep copy of the ref. cty values are immutable and are
// shared; only the fields map is duplicated.
func (r ValueRef) Clone() ValueRef {
	out := r
	if r.Fields != nil {
		out.Fields = make(map[string]cty.Value, len(r.Fields))
		for k, v := range r.Fields {
			out.Fields[k] = v
		}
	}
	return out
}

// IdentityOf stringifies a scalar cty value into an identity key. Values
// that cannot convert to string (null, unknown, collections) fall back to
// their cty syntax rendering so distinct values keep distinct keys.
func IdentityOf(v cty.Value) string {
	if v == cty.NilVal {
		return ""
	}
	if v.IsNull() || !v.IsKnown() {
		return v.GoString()
	}
	s, err := convert.Convert(v, cty.String)
	if err != nil {
		return v.GoString()
	}
	return s.AsString()
}
