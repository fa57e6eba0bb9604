package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vk/mapedit/internal/config"
	"github.com/zclconf/go-cty/cty"
)

func storeFixture() *Store {
	cfg := &config.Mapping{
		Name:  "fields",
		Key:   config.RoleConfig{Type: cty.String, Param: "key_names"},
		Value: config.RoleConfig{Type: cty.String, Creatable: true, Param: "value_names"},
	}
	params := map[string]config.Param{
		"key_names": {
			Name:    "key_names",
			Default: cty.TupleVal([]cty.Value{cty.StringVal("shared"), cty.StringVal("from_key")}),
		},
		"value_names": {
			Name:    "value_names",
			Default: cty.StringVal("shared"),
		},
	}
	return NewStore(cfg, params)
}

func TestDeriveParamProvenance(t *testing.T) {
	s := storeFixture()

	t.Run("key param match", func(t *testing.T) {
		e := s.Get("from_key")
		assert.True(t, e.FromParam)
		assert.False(t, e.Editable, "parameter-sourced values are read-only")
		assert.Equal(t, "key_names", e.ParamSource)
	})

	t.Run("key param takes priority over value param", func(t *testing.T) {
		e := s.Get("shared")
		assert.True(t, e.FromParam)
		assert.Equal(t, "key_names", e.ParamSource)
	})

	t.Run("unmatched identity follows role creatable flag", func(t *testing.T) {
		e := s.Get("user_made")
		assert.False(t, e.FromParam)
		assert.True(t, e.Editable)
		assert.Empty(t, e.ParamSource)
		assert.True(t, e.Type.Equals(cty.String))
	})
}

func TestTwoPhaseCommit(t *testing.T) {
	s := storeFixture()

	// Derivation stages the entry but the visible cache is untouched.
	first := s.Get("pending_one")
	assert.Len(t, s.cache, 0)
	assert.Len(t, s.pending, 1)

	// Repeated reads before reconcile see the same staged entry.
	assert.Equal(t, first, s.Get("pending_one"))
	assert.Len(t, s.pending, 1)

	s.Reconcile()
	assert.Len(t, s.cache, 1)
	assert.Len(t, s.pending, 0)
	assert.Equal(t, first, s.Get("pending_one"))
}

func TestReconcileDoesNotClobberExplicitEntries(t *testing.T) {
	s := storeFixture()

	s.Get("v") // stages a derived entry
	s.Set("v", Entry{Type: cty.String, Editable: false, FromParam: false})
	s.Reconcile()

	e := s.Get("v")
	assert.False(t, e.Editable, "explicit Set must survive reconcile")
}

func TestSetAndRekey(t *testing.T) {
	s := storeFixture()
	s.Set("alpha", Entry{Type: cty.String, Editable: true})

	s.Rekey("alpha", "beta")
	e := s.Get("beta")
	assert.True(t, e.Editable)
	assert.False(t, e.FromParam)

	// After rekey the old identity derives fresh.
	old := s.Get("alpha")
	assert.False(t, old.FromParam)
}

func TestRekeyNeverOverwritesExistingEntry(t *testing.T) {
	s := storeFixture()
	s.Set("locked", Entry{Type: cty.String, Editable: false, FromParam: true, ParamSource: "key_names"})
	s.Set("p", Entry{Type: cty.String, Editable: true})

	s.Rekey("p", "locked")
	e := s.Get("locked")
	assert.True(t, e.FromParam, "existing entry wins")
	assert.False(t, e.Editable)

	t.Run("pending target also protected", func(t *testing.T) {
		staged := s.Get("staged_target")
		s.Set("other", Entry{Type: cty.String, Editable: true})
		s.Rekey("other", "staged_target")
		assert.Equal(t, staged, s.Get("staged_target"))
	})
}

func TestRekeyPendingEntry(t *testing.T) {
	s := storeFixture()
	staged := s.Get("old_pending")
	s.Rekey("old_pending", "new_pending")

	assert.Equal(t, staged, s.Get("new_pending"))
	s.Reconcile()
	assert.Equal(t, staged, s.Get("new_pending"))
}

func TestReset(t *testing.T) {
	s := storeFixture()
	s.Set("a", Entry{Editable: true})
	s.Get("b")

	s.Reset()
	assert.Len(t, s.cache, 0)
	assert.Len(t, s.pending, 0)
}
