package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestNewAssignment(t *testing.T) {
	a := NewAssignment()
	require.NotNil(t, a)
	assert.Equal(t, 0, a.Len())
	assert.Equal(t, 0, a.TotalValues())
}

func TestAppendAndLookup(t *testing.T) {
	a := NewAssignment()

	require.NoError(t, a.Append(&GroupRecord{ID: "g1", Name: "First", Editable: true}))
	require.NoError(t, a.Append(&GroupRecord{ID: "g2", Name: "Second"}))
	assert.Equal(t, 2, a.Len())

	g, ok := a.Group("g1")
	require.True(t, ok)
	assert.Equal(t, "First", g.Name)

	byName, ok := a.GroupByName("Second")
	require.True(t, ok)
	assert.Equal(t, "g2", byName.ID)

	t.Run("duplicate id is rejected", func(t *testing.T) {
		err := a.Append(&GroupRecord{ID: "g1"})
		assert.ErrorContains(t, err, "duplicate group id")
		assert.Equal(t, 2, a.Len())
	})

	t.Run("empty id is rejected", func(t *testing.T) {
		err := a.Append(&GroupRecord{})
		assert.ErrorContains(t, err, "empty id")
	})
}

func TestRemovePreservesOrder(t *testing.T) {
	a := NewAssignment()
	require.NoError(t, a.Append(&GroupRecord{ID: "g1"}))
	require.NoError(t, a.Append(&GroupRecord{ID: "g2"}))
	require.NoError(t, a.Append(&GroupRecord{ID: "g3"}))

	removed := a.Remove("g2")
	require.NotNil(t, removed)
	assert.Equal(t, "g2", removed.ID)

	groups := a.Groups()
	require.Len(t, groups, 2)
	assert.Equal(t, "g1", groups[0].ID)
	assert.Equal(t, "g3", groups[1].ID)

	assert.Nil(t, a.Remove("dne"))
}

func TestLocate(t *testing.T) {
	a := NewAssignment()
	require.NoError(t, a.Append(&GroupRecord{ID: "g1", Values: []ValueRef{
		ScalarRef(cty.StringVal("x")),
		ScalarRef(cty.StringVal("y")),
	}}))
	require.NoError(t, a.Append(&GroupRecord{ID: "g2", Values: []ValueRef{
		ObjectRef("z", map[string]cty.Value{"unit": cty.StringVal("ms")}),
	}}))

	gid, i, ok := a.Locate("y")
	require.True(t, ok)
	assert.Equal(t, "g1", gid)
	assert.Equal(t, 1, i)

	gid, i, ok = a.Locate("z")
	require.True(t, ok)
	assert.Equal(t, "g2", gid)
	assert.Equal(t, 0, i)

	_, _, ok = a.Locate("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"x", "y", "z"}, a.Identities())
	assert.Equal(t, 3, a.TotalValues())
}

func TestCloneIsDeep(t *testing.T) {
	a := NewAssignment()
	require.NoError(t, a.Append(&GroupRecord{
		ID:       "g1",
		Name:     "First",
		Editable: true,
		Values:   []ValueRef{ScalarRef(cty.StringVal("x"))},
		Subfields: map[string]cty.Value{
			"unit": cty.StringVal("none"),
		},
	}))

	clone := a.Clone()
	cloneGroup, ok := clone.Group("g1")
	require.True(t, ok)

	cloneGroup.Name = "Changed"
	cloneGroup.Values = append(cloneGroup.Values, ScalarRef(cty.StringVal("y")))
	cloneGroup.Subfields["unit"] = cty.StringVal("ms")

	original, _ := a.Group("g1")
	assert.Equal(t, "First", original.Name)
	assert.Len(t, original.Values, 1)
	assert.Equal(t, "none", original.Subfields["unit"].AsString())
}
