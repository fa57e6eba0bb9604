// Package config defines the format-agnostic configuration model for the
// editor core. A format-specific loader (see internal/hcl) produces a
// Model; everything downstream consumes only this package and stays
// independent of the configuration syntax.
package config
