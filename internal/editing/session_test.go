package editing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionLifecycle(t *testing.T) {
	s := NewSession()
	assert.Equal(t, StateIdle, s.State())
	assert.False(t, s.Active())

	target := Target{Kind: TargetValue, ID: "alpha", GroupContext: "g1"}
	require.True(t, s.Start(target, "alpha"))
	assert.Equal(t, StateEditing, s.State())
	assert.Equal(t, target, s.Target())
	assert.Equal(t, "alpha", s.Buffer())

	require.True(t, s.UpdateText("beta"))
	assert.Equal(t, "beta", s.Buffer())

	got, text, changed := s.Take()
	assert.Equal(t, target, got)
	assert.Equal(t, "beta", text)
	assert.True(t, changed)
	assert.Equal(t, StateIdle, s.State())
}

func TestSessionSingleSlot(t *testing.T) {
	s := NewSession()
	require.True(t, s.Start(Target{ID: "a"}, "a"))
	assert.False(t, s.Start(Target{ID: "b"}, "b"), "second start refused while editing")
	assert.Equal(t, "a", s.Target().ID)
}

func TestTakeUnchangedBufferBehavesAsCancel(t *testing.T) {
	s := NewSession()
	require.True(t, s.Start(Target{ID: "a"}, "same"))
	s.UpdateText("same")

	_, _, changed := s.Take()
	assert.False(t, changed)
	assert.Equal(t, StateIdle, s.State())
}

func TestCancelDiscardsBuffer(t *testing.T) {
	s := NewSession()
	require.True(t, s.Start(Target{ID: "a"}, "orig"))
	s.UpdateText("edited")
	s.Cancel()

	assert.Equal(t, StateIdle, s.State())
	assert.Empty(t, s.Buffer())

	// A fresh start is allowed again.
	assert.True(t, s.Start(Target{ID: "b"}, "b"))
}

func TestUpdateTextRequiresEditing(t *testing.T) {
	s := NewSession()
	assert.False(t, s.UpdateText("nope"))
}

func TestTakeWhenIdle(t *testing.T) {
	s := NewSession()
	_, _, changed := s.Take()
	assert.False(t, changed)
}
