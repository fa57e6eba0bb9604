// Package editing is the single-slot state machine for renaming one value
// or one group name at a time. It owns only the edit buffer and target
// bookkeeping; applying a committed rename to the assignment is the
// caller's job. Editing is mutually exclusive with dragging: the
// controller force-cancels an open edit when a drag starts.
package editing

// State is the session's state tag.
type State int

const (
	// StateIdle means no edit is in progress.
	StateIdle State = iota
	// StateEditing means exactly one target has an open edit buffer.
	StateEditing
)

// TargetKind discriminates what is being renamed.
type TargetKind int

const (
	// TargetValue renames a value identity within its owning scope.
	TargetValue TargetKind = iota
	// TargetGroupName renames a group's display name.
	TargetGroupName
)

// Target describes the single active edit target.
type Target struct {
	Kind TargetKind
	// ID is the value identity or group id being edited.
	ID string
	// GroupContext is the owning group id for values inside a group, and
	// "" for pool values and group-name targets.
	GroupContext string
}

// Session is the single-slot editing state machine.
type Session struct {
	state    State
	target   Target
	buffer   string
	original string
}

// NewSession returns an idle session.
func NewSession() *Session {
	return &Session{}
}

// State returns the current state tag.
func (s *Session) State() State {
	return s.state
}

// Active reports whether an edit is open.
func (s *Session) Active() bool {
	return s.state == StateEditing
}

// Target returns the active target. Only meaningful while Active.
func (s *Session) Target() Target {
	return s.target
}

// Buffer returns the current buffered text.
func (s *Session) Buffer() string {
	return s.buffer
}

// Start opens an edit on the given target, seeding the buffer with the
// target's current text. It is refused while another edit is open; the
// caller decides whether to commit or cancel the previous one first.
func (s *Session) Start(target Target, initialText string) bool {
	if s.state == StateEditing {
		return false
	}
	s.state = StateEditing
	s.target = target
	s.buffer = initialText
	s.original = initialText
	return true
}

// UpdateText replaces the buffered text. There is no per-keystroke
// validation; the buffer is only checked at commit. Valid only while
// editing.
func (s *Session) UpdateText(text string) bool {
	if s.state != StateEditing {
		return false
	}
	s.buffer = text
	return true
}

// Take closes the session and returns the commit payload. The second
// return is false when the buffer equals the original text, in which case
// a commit degenerates into a cancel and the caller must not mutate.
func (s *Session) Take() (target Target, text string, changed bool) {
	target = s.target
	text = s.buffer
	changed = s.state == StateEditing && s.buffer != s.original
	s.reset()
	return target, text, changed
}

// Cancel discards the buffer and returns to idle with no mutation.
func (s *Session) Cancel() {
	s.reset()
}

func (s *Session) reset() {
	s.state = StateIdle
	s.target = Target{}
	s.buffer = ""
	s.original = ""
}
