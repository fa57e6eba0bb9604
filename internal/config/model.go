package config

import (
	"context"

	"github.com/zclconf/go-cty/cty"
)

// Role names the two sides of the bipartite assignment.
type Role string

const (
	// RoleKey is the group-name side.
	RoleKey Role = "key"
	// RoleValue is the assignable-value side.
	RoleValue Role = "value"
)

// RoleConfig carries the per-role settings of a mapping.
type RoleConfig struct {
	// Type is the scalar type of identities on this side.
	Type cty.Type
	// Creatable allows the user to add new entries on this side. The
	// mapping-level Creatable flag is OR-ed in during resolution.
	Creatable bool
	// Options is the static candidate list declared in configuration.
	Options []cty.Value
	// Param optionally names an externally bound parameter whose default
	// contributes additional candidates.
	Param string
	// MaxItems is the array-length limit for this role. Zero means
	// unbounded.
	MaxItems int
}

// Subfield declares one sub-variable field of an object-shaped mapping.
type Subfield struct {
	Name    string
	Type    cty.Type
	Default cty.Value // cty.NilVal when no default was declared
}

// Mapping is the declarative configuration of one editor instance.
type Mapping struct {
	Name  string
	Key   RoleConfig
	Value RoleConfig
	// Subfields is the declared sub-variable schema, in declaration
	// order. A non-empty schema makes groups object-shaped.
	Subfields []Subfield
	// Creatable is the mapping-wide creatable flag.
	Creatable bool
}

// ObjectShaped reports whether group values carry sub-variable fields.
func (m *Mapping) ObjectShaped() bool {
	return len(m.Subfields) > 0
}

// Subfield returns the declared subfield with the given name.
func (m *Mapping) Subfield(name string) (Subfield, bool) {
	for _, sf := range m.Subfields {
		if sf.Name == name {
			return sf, true
		}
	}
	return Subfield{}, false
}

// SubfieldDefaults materializes the default value for every declared
// subfield. Fields without a declared default get a typed null.
func (m *Mapping) SubfieldDefaults() map[string]cty.Value {
	if !m.ObjectShaped() {
		return nil
	}
	out := make(map[string]cty.Value, len(m.Subfields))
	for _, sf := range m.Subfields {
		if sf.Default != cty.NilVal {
			out[sf.Name] = sf.Default
		} else {
			out[sf.Name] = cty.NullVal(sf.Type)
		}
	}
	return out
}

// Param is an externally bound parameter: a name and a default that is
// either a scalar or a tuple of scalars.
type Param struct {
	Name    string
	Default cty.Value // cty.NilVal when the binding carries no default
}

// Model is the complete loaded configuration: every mapping block plus
// every parameter binding.
type Model struct {
	Mappings map[string]*Mapping
	Params   map[string]Param
}

// NewModel returns an initialized, empty Model.
func NewModel() *Model {
	return &Model{
		Mappings: make(map[string]*Mapping),
		Params:   make(map[string]Param),
	}
}

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// Load reads configuration from the given paths and translates it
	// into the format-agnostic model.
	Load(ctx context.Context, paths ...string) (*Model, error)
}
