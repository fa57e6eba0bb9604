// Package hcl implements the HCL-specific configuration loader. It parses
// .hcl files into the tag-structs of internal/schema and translates them
// into the format-agnostic model of internal/config, evaluating option
// lists and default expressions into cty values along the way.
package hcl
