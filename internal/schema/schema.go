// Package schema holds the HCL tag-structs that mirror the on-disk
// configuration format. These are decode targets only; the rest of the
// core consumes the format-agnostic model in internal/config.
package schema

import (
	"github.com/hashicorp/hcl/v2"
)

// RoleBlock is the content of a `key` or `value` block inside a mapping.
type RoleBlock struct {
	Type      hcl.Expression `hcl:"type,optional"`
	Creatable *bool          `hcl:"creatable,optional"`
	Options   hcl.Expression `hcl:"options,optional"`
	Param     string         `hcl:"param,optional"`
	MaxItems  int            `hcl:"max_items,optional"`
}

// Subfield is a `subfield` block declaring one sub-variable field.
type Subfield struct {
	Name    string         `hcl:"name,label"`
	Type    hcl.Expression `hcl:"type"`
	Default hcl.Expression `hcl:"default,optional"`
}

// Mapping is a top-level `mapping` block describing one editor instance.
type Mapping struct {
	Name      string      `hcl:"name,label"`
	Key       *RoleBlock  `hcl:"key,block"`
	Value     *RoleBlock  `hcl:"value,block"`
	Subfields []*Subfield `hcl:"subfield,block"`
	Creatable *bool       `hcl:"creatable,optional"`
}

// Param is a top-level `param` block binding an external parameter.
type Param struct {
	Name    string         `hcl:"name,label"`
	Default hcl.Expression `hcl:"default,optional"`
}

// File is the top-level structure of a configuration file.
type File struct {
	Mappings []*Mapping `hcl:"mapping,block"`
	Params   []*Param   `hcl:"param,block"`
	Body     hcl.Body   `hcl:",remain"`
}
