// Package creation is the gated state machine for adding new groups and
// new pool values. Entry is gated on the resolved creatable flags;
// submission validates blank and duplicate names. Group ids come from a
// caller-supplied callback so the hosting application can control id
// allocation; failures there are surfaced as errors without corrupting
// any state.
package creation

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/vk/mapedit/internal/config"
	"github.com/vk/mapedit/internal/constraint"
	"github.com/vk/mapedit/internal/mapping"
)

// State is the flow's state tag.
type State int

const (
	// StateIdle means no creation surface is open.
	StateIdle State = iota
	// StateCreatingGroup means the new-group name input is open.
	StateCreatingGroup
	// StateCreatingValue means the new-value input is open.
	StateCreatingValue
)

// IDFunc allocates an id for a newly created group. It may fail; an empty
// id is treated as a failure.
type IDFunc func() (string, error)

// DefaultIDFunc allocates random ids.
func DefaultIDFunc() (string, error) {
	return uuid.NewString(), nil
}

// Flow is the creation state machine for one mapping instance.
type Flow struct {
	state  State
	buffer string
	idFunc IDFunc
}

// NewFlow returns an idle flow. A nil idFunc falls back to DefaultIDFunc.
func NewFlow(idFunc IDFunc) *Flow {
	if idFunc == nil {
		idFunc = DefaultIDFunc
	}
	return &Flow{idFunc: idFunc}
}

// State returns the current state tag.
func (f *Flow) State() State {
	return f.state
}

// Buffer returns the partially entered text.
func (f *Flow) Buffer() string {
	return f.buffer
}

// EnterGroup opens the new-group input. Refused (state stays idle) when
// the key role is not creatable.
func (f *Flow) EnterGroup(limits constraint.Limits) bool {
	if !limits.CreatableKey || f.state != StateIdle {
		return false
	}
	f.state = StateCreatingGroup
	return true
}

// EnterValue opens the new-value input. Refused when the value role is
// not creatable.
func (f *Flow) EnterValue(limits constraint.Limits) bool {
	if !limits.CreatableValue || f.state != StateIdle {
		return false
	}
	f.state = StateCreatingValue
	return true
}

// UpdateText replaces the partially entered text while a surface is open.
func (f *Flow) UpdateText(text string) bool {
	if f.state == StateIdle {
		return false
	}
	f.buffer = text
	return true
}

// Cancel discards any partially entered text and returns to idle.
func (f *Flow) Cancel() {
	f.state = StateIdle
	f.buffer = ""
}

// Reset returns the flow to idle after a successful submission.
func (f *Flow) Reset() {
	f.Cancel()
}

// BuildGroup constructs a new empty group record for the given name,
// allocating its id through the configured callback and seeding declared
// subfields with their configured defaults. A panicking or failing
// callback is caught and surfaced as an error; no state has changed at
// that point.
func (f *Flow) BuildGroup(cfg *config.Mapping, name string) (rec *mapping.GroupRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			rec = nil
			err = fmt.Errorf("group id callback panicked: %v", r)
		}
	}()

	id, err := f.idFunc()
	if err != nil {
		return nil, fmt.Errorf("group id callback failed: %w", err)
	}
	if id == "" {
		return nil, fmt.Errorf("group id callback returned an empty id")
	}

	return &mapping.GroupRecord{
		ID:        id,
		Name:      name,
		Editable:  true,
		Subfields: cfg.SubfieldDefaults(),
	}, nil
}
