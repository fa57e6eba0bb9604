// Package metadata holds the derived per-identity metadata cache: value
// type, editability, and parameter provenance. Derivation is a pure read;
// newly derived entries land in a pending buffer and only become visible
// after an explicit Reconcile pass, so reading metadata never mutates the
// visible cache mid-read.
package metadata

import (
	"github.com/vk/mapedit/internal/config"
	"github.com/vk/mapedit/internal/mapping"
	"github.com/zclconf/go-cty/cty"
)

// Entry is the derived metadata of one value identity.
type Entry struct {
	// Type is the configured scalar type of the value role.
	Type cty.Type
	// Editable gates rename and reassignment of the value.
	Editable bool
	// FromParam marks identities contributed by a bound parameter's
	// default. Parameter-sourced values are read-only.
	FromParam bool
	// ParamSource names the parameter that contributed the identity.
	// The key-role parameter takes priority over the value-role one.
	ParamSource string
}

// Store is the metadata cache for one mapping instance.
type Store struct {
	cfg     *config.Mapping
	params  map[string]config.Param
	cache   map[string]Entry
	pending map[string]Entry
}

// NewStore creates a store bound to a mapping configuration and its
// parameter set.
func NewStore(cfg *config.Mapping, params map[string]config.Param) *Store {
	return &Store{
		cfg:     cfg,
		params:  params,
		cache:   make(map[string]Entry),
		pending: make(map[string]Entry),
	}
}

// Get returns the metadata for an identity. A cache miss derives the
// entry and stages it in the pending buffer; the visible cache is not
// touched until the next Reconcile call.
func (s *Store) Get(id string) Entry {
	if e, ok := s.cache[id]; ok {
		return e
	}
	if e, ok := s.pending[id]; ok {
		return e
	}
	e := s.derive(id)
	s.pending[id] = e
	return e
}

// Reconcile merges the pending buffer into the visible cache. Explicit
// entries written through Set are never overwritten by a stale pending
// derivation.
func (s *Store) Reconcile() {
	for id, e := range s.pending {
		if _, ok := s.cache[id]; !ok {
			s.cache[id] = e
		}
	}
	s.pending = make(map[string]Entry)
}

// Set writes an entry directly into the visible cache, overriding any
// derived state. Creation flows use this to seed freshly created values.
func (s *Store) Set(id string, e Entry) {
	s.cache[id] = e
	delete(s.pending, id)
}

// Rekey moves an entry from an old identity to a new one with its fields
// intact. Rename flows call this so metadata follows the value. An entry
// already present under the new identity is never overwritten; the engine
// rejects such renames before they reach here, so a hit means the caller
// is out of step and the existing entry wins.
func (s *Store) Rekey(oldID, newID string) {
	if _, ok := s.cache[newID]; ok {
		return
	}
	if _, ok := s.pending[newID]; ok {
		return
	}
	if e, ok := s.cache[oldID]; ok {
		delete(s.cache, oldID)
		s.cache[newID] = e
		return
	}
	if e, ok := s.pending[oldID]; ok {
		delete(s.pending, oldID)
		s.pending[newID] = e
	}
}

// Reset drops all cached and pending state. Called when the configuration
// or parameter inputs change.
func (s *Store) Reset() {
	s.cache = make(map[string]Entry)
	s.pending = make(map[string]Entry)
}

// derive computes an entry from configuration and parameter bindings.
func (s *Store) derive(id string) Entry {
	e := Entry{Type: s.cfg.Value.Type}

	// Key-role parameter matches take priority over value-role ones.
	if name, ok := s.matchParam(id, s.cfg.Key.Param); ok {
		e.FromParam = true
		e.ParamSource = name
	} else if name, ok := s.matchParam(id, s.cfg.Value.Param); ok {
		e.FromParam = true
		e.ParamSource = name
	}

	if e.FromParam {
		e.Editable = false
	} else {
		e.Editable = s.cfg.Value.Creatable || s.cfg.Creatable
	}
	return e
}

// matchParam reports whether the identity string-matches the named
// parameter's default, element-wise for array defaults.
func (s *Store) matchParam(id, paramName string) (string, bool) {
	if paramName == "" {
		return "", false
	}
	p, ok := s.params[paramName]
	if !ok || p.Default == cty.NilVal || p.Default.IsNull() {
		return "", false
	}
	def := p.Default
	if def.Type().IsTupleType() || def.Type().IsListType() || def.Type().IsSetType() {
		for it := def.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			if mapping.IdentityOf(ev) == id {
				return paramName, true
			}
		}
		return "", false
	}
	if mapping.IdentityOf(def) == id {
		return paramName, true
	}
	return "", false
}
