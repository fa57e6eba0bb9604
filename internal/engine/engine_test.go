package engine

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/mapedit/internal/config"
	"github.com/vk/mapedit/internal/index"
	"github.com/vk/mapedit/internal/mapping"
	"github.com/vk/mapedit/internal/metadata"
	"github.com/zclconf/go-cty/cty"
)

// harness bundles an engine with its derived stores and captures every
// snapshot emitted through onChange.
type harness struct {
	cfg       *config.Mapping
	meta      *metadata.Store
	index     *index.LocationIndex
	engine    *Engine
	asg       *mapping.Assignment
	committed []*mapping.Assignment
}

func newHarness(t *testing.T, cfg *config.Mapping, params map[string]config.Param, asg *mapping.Assignment, known []string) *harness {
	t.Helper()
	h := &harness{cfg: cfg, asg: asg}
	h.meta = metadata.NewStore(cfg, params)
	h.index = index.New()

	all := append([]string{}, known...)
	all = append(all, asg.Identities()...)
	h.index.Rebuild(context.Background(), asg, all)

	h.engine = New(cfg, h.meta, h.index, func(_ context.Context, next *mapping.Assignment) {
		h.committed = append(h.committed, next)
		h.asg = next
	})
	return h
}

func (h *harness) lastCommit(t *testing.T) *mapping.Assignment {
	t.Helper()
	require.NotEmpty(t, h.committed, "expected a committed snapshot")
	return h.committed[len(h.committed)-1]
}

func simpleConfig() *config.Mapping {
	return &config.Mapping{
		Name:      "fields",
		Key:       config.RoleConfig{Type: cty.String},
		Value:     config.RoleConfig{Type: cty.String, Creatable: true},
		Creatable: false,
	}
}

func groupWith(id string, editable bool, values ...string) *mapping.GroupRecord {
	g := &mapping.GroupRecord{ID: id, Name: id, Editable: editable}
	for _, v := range values {
		g.Values = append(g.Values, mapping.ScalarRef(cty.StringVal(v)))
	}
	return g
}

func TestMoveToGroupFromPool(t *testing.T) {
	asg := mapping.NewAssignment()
	require.NoError(t, asg.Append(groupWith("g1", true)))
	h := newHarness(t, simpleConfig(), nil, asg, []string{"x"})

	rej := h.engine.MoveToGroup(context.Background(), h.asg, "x", "g1")
	require.True(t, rej.Accepted())

	next := h.lastCommit(t)
	g, _ := next.Group("g1")
	require.Len(t, g.Values, 1)
	assert.Equal(t, "x", g.Values[0].Identity())

	loc, _ := h.index.Lookup("x")
	gid, inGroup := loc.GroupID()
	require.True(t, inGroup)
	assert.Equal(t, "g1", gid)
}

func TestMoveToGroupCapacityRejected(t *testing.T) {
	// Scenario: a group with max 2 already holding two values.
	cfg := simpleConfig()
	cfg.Value.MaxItems = 2

	asg := mapping.NewAssignment()
	require.NoError(t, asg.Append(groupWith("G1", true, "x", "y")))
	h := newHarness(t, cfg, nil, asg, []string{"z"})

	before, err := mapping.EncodeSnapshot(h.asg)
	require.NoError(t, err)

	rej := h.engine.MoveToGroup(context.Background(), h.asg, "z", "G1")
	assert.Equal(t, RejectGroupFull, rej)
	assert.Empty(t, h.committed, "rejection must not emit a snapshot")

	after, err := mapping.EncodeSnapshot(h.asg)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(string(before), string(after)))

	loc, _ := h.index.Lookup("z")
	assert.True(t, loc.InPool())
}

func TestMoveToGroupIdempotent(t *testing.T) {
	asg := mapping.NewAssignment()
	require.NoError(t, asg.Append(groupWith("g1", true, "v")))
	h := newHarness(t, simpleConfig(), nil, asg, nil)

	before, err := mapping.EncodeSnapshot(h.asg)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		rej := h.engine.MoveToGroup(context.Background(), h.asg, "v", "g1")
		assert.Equal(t, RejectNone, rej)
	}
	assert.Empty(t, h.committed, "no-op moves emit nothing")

	after, err := mapping.EncodeSnapshot(h.asg)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(string(before), string(after)), "assignment must be byte-for-byte unchanged")
}

func TestMoveBetweenGroupsIsAtomic(t *testing.T) {
	asg := mapping.NewAssignment()
	require.NoError(t, asg.Append(groupWith("g1", true, "a", "b", "c")))
	require.NoError(t, asg.Append(groupWith("g2", true)))
	h := newHarness(t, simpleConfig(), nil, asg, nil)

	rej := h.engine.MoveToGroup(context.Background(), h.asg, "b", "g2")
	require.True(t, rej.Accepted())
	require.Len(t, h.committed, 1, "source removal and target append share one snapshot")

	next := h.lastCommit(t)
	g1, _ := next.Group("g1")
	g2, _ := next.Group("g2")

	var g1IDs []string
	for _, v := range g1.Values {
		g1IDs = append(g1IDs, v.Identity())
	}
	assert.Equal(t, []string{"a", "c"}, g1IDs, "source order preserved")
	require.Len(t, g2.Values, 1)
	assert.Equal(t, "b", g2.Values[0].Identity())

	// The identity never appears twice in the committed snapshot.
	count := 0
	for _, id := range next.Identities() {
		if id == "b" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestMoveToGroupRejections(t *testing.T) {
	t.Run("unknown identity", func(t *testing.T) {
		asg := mapping.NewAssignment()
		require.NoError(t, asg.Append(groupWith("g1", true)))
		h := newHarness(t, simpleConfig(), nil, asg, nil)
		assert.Equal(t, RejectUnknown, h.engine.MoveToGroup(context.Background(), h.asg, "ghost", "g1"))
	})

	t.Run("missing group", func(t *testing.T) {
		h := newHarness(t, simpleConfig(), nil, mapping.NewAssignment(), []string{"x"})
		assert.Equal(t, RejectNoSuchGroup, h.engine.MoveToGroup(context.Background(), h.asg, "x", "dne"))
	})

	t.Run("read-only group", func(t *testing.T) {
		asg := mapping.NewAssignment()
		require.NoError(t, asg.Append(groupWith("g1", false)))
		h := newHarness(t, simpleConfig(), nil, asg, []string{"x"})
		assert.Equal(t, RejectReadOnlyGroup, h.engine.MoveToGroup(context.Background(), h.asg, "x", "g1"))
	})

	t.Run("total capacity", func(t *testing.T) {
		cfg := simpleConfig()
		cfg.Key.MaxItems = 1
		cfg.Value.MaxItems = 2 // total budget 2
		asg := mapping.NewAssignment()
		require.NoError(t, asg.Append(groupWith("g1", true, "a")))
		require.NoError(t, asg.Append(groupWith("g2", true, "b")))
		h := newHarness(t, cfg, nil, asg, []string{"c"})
		assert.Equal(t, RejectTotalFull, h.engine.MoveToGroup(context.Background(), h.asg, "c", "g2"))
	})
}

func TestParamSourcedValuesAreImmovable(t *testing.T) {
	// A value matching a bound parameter's default is read-only: both
	// directions of movement are rejected.
	cfg := simpleConfig()
	cfg.Value.Param = "bound"
	params := map[string]config.Param{
		"bound": {Name: "bound", Default: cty.TupleVal([]cty.Value{cty.StringVal("locked")})},
	}

	asg := mapping.NewAssignment()
	require.NoError(t, asg.Append(groupWith("g1", true, "locked")))
	require.NoError(t, asg.Append(groupWith("g2", true)))
	h := newHarness(t, cfg, params, asg, nil)

	m := h.meta.Get("locked")
	assert.True(t, m.FromParam)
	assert.False(t, m.Editable)

	assert.Equal(t, RejectReadOnly, h.engine.MoveToPool(context.Background(), h.asg, "locked"))
	assert.Equal(t, RejectReadOnly, h.engine.MoveToGroup(context.Background(), h.asg, "locked", "g2"))
	assert.Empty(t, h.committed)
}

func TestMoveToPool(t *testing.T) {
	asg := mapping.NewAssignment()
	require.NoError(t, asg.Append(groupWith("g1", true, "a", "b", "c")))
	h := newHarness(t, simpleConfig(), nil, asg, nil)

	rej := h.engine.MoveToPool(context.Background(), h.asg, "b")
	require.True(t, rej.Accepted())

	g, _ := h.lastCommit(t).Group("g1")
	var ids []string
	for _, v := range g.Values {
		ids = append(ids, v.Identity())
	}
	assert.Equal(t, []string{"a", "c"}, ids)

	loc, _ := h.index.Lookup("b")
	assert.True(t, loc.InPool())

	t.Run("already in pool is a no-op", func(t *testing.T) {
		commits := len(h.committed)
		assert.Equal(t, RejectNone, h.engine.MoveToPool(context.Background(), h.asg, "b"))
		assert.Len(t, h.committed, commits)
	})

	t.Run("unknown identity", func(t *testing.T) {
		assert.Equal(t, RejectUnknown, h.engine.MoveToPool(context.Background(), h.asg, "ghost"))
	})
}

func TestDeleteGroup(t *testing.T) {
	asg := mapping.NewAssignment()
	require.NoError(t, asg.Append(groupWith("G1", true, "x", "y")))
	require.NoError(t, asg.Append(groupWith("G2", true)))
	h := newHarness(t, simpleConfig(), nil, asg, nil)

	rej := h.engine.DeleteGroup(context.Background(), h.asg, "G1")
	require.True(t, rej.Accepted())

	next := h.lastCommit(t)
	_, ok := next.Group("G1")
	assert.False(t, ok, "G1 must be absent")
	assert.Equal(t, 1, next.Len())

	for _, id := range []string{"x", "y"} {
		loc, found := h.index.Lookup(id)
		require.True(t, found, id)
		assert.True(t, loc.InPool(), id)
	}
}

func TestDeleteGroupRejections(t *testing.T) {
	t.Run("read-only group", func(t *testing.T) {
		asg := mapping.NewAssignment()
		require.NoError(t, asg.Append(groupWith("g1", false, "x")))
		h := newHarness(t, simpleConfig(), nil, asg, nil)
		assert.Equal(t, RejectReadOnlyGroup, h.engine.DeleteGroup(context.Background(), h.asg, "g1"))
	})

	t.Run("only immutable values", func(t *testing.T) {
		cfg := simpleConfig()
		cfg.Value.Param = "bound"
		params := map[string]config.Param{
			"bound": {Name: "bound", Default: cty.TupleVal([]cty.Value{cty.StringVal("p1"), cty.StringVal("p2")})},
		}
		asg := mapping.NewAssignment()
		require.NoError(t, asg.Append(groupWith("g1", true, "p1", "p2")))
		h := newHarness(t, cfg, params, asg, nil)

		assert.Equal(t, RejectImmutableValues, h.engine.DeleteGroup(context.Background(), h.asg, "g1"))

		g, _ := h.asg.Group("g1")
		assert.False(t, h.engine.Deletable(g), "derived flag matches the rejection")
	})

	t.Run("empty editable group is deletable", func(t *testing.T) {
		asg := mapping.NewAssignment()
		require.NoError(t, asg.Append(groupWith("g1", true)))
		h := newHarness(t, simpleConfig(), nil, asg, nil)

		g, _ := h.asg.Group("g1")
		assert.True(t, h.engine.Deletable(g))
		assert.Equal(t, RejectNone, h.engine.DeleteGroup(context.Background(), h.asg, "g1"))
	})
}

func TestObjectShapedMoveSeedsSubfields(t *testing.T) {
	cfg := simpleConfig()
	cfg.Subfields = []config.Subfield{
		{Name: "unit", Type: cty.String, Default: cty.StringVal("none")},
		{Name: "scale", Type: cty.Number},
	}

	asg := mapping.NewAssignment()
	require.NoError(t, asg.Append(groupWith("g1", true)))
	h := newHarness(t, cfg, nil, asg, []string{"uptime"})

	rej := h.engine.MoveToGroup(context.Background(), h.asg, "uptime", "g1")
	require.True(t, rej.Accepted())

	g, _ := h.lastCommit(t).Group("g1")
	require.Len(t, g.Values, 1)
	ref := g.Values[0]
	assert.Equal(t, "uptime", ref.ID)
	assert.Equal(t, "none", ref.Fields["unit"].AsString())
	assert.True(t, ref.Fields["scale"].IsNull(), "fields without defaults get typed nulls")
}
