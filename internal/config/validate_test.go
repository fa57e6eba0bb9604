package config

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		model   func() *Model
		wantErr string
	}{
		{
			name: "valid model",
			model: func() *Model {
				m := NewModel()
				m.Params["p"] = Param{Name: "p", Default: cty.StringVal("x")}
				m.Mappings["m"] = &Mapping{
					Name:  "m",
					Key:   RoleConfig{Type: cty.String, MaxItems: 3},
					Value: RoleConfig{Type: cty.String, Param: "p"},
					Subfields: []Subfield{
						{Name: "unit", Type: cty.String},
						{Name: "scale", Type: cty.Number},
					},
				}
				return m
			},
		},
		{
			name: "negative max_items",
			model: func() *Model {
				m := NewModel()
				m.Mappings["m"] = &Mapping{
					Name: "m",
					Key:  RoleConfig{Type: cty.String, MaxItems: -1},
				}
				return m
			},
			wantErr: "max_items must not be negative",
		},
		{
			name: "unresolved param reference",
			model: func() *Model {
				m := NewModel()
				m.Mappings["m"] = &Mapping{
					Name:  "m",
					Value: RoleConfig{Type: cty.String, Param: "ghost"},
				}
				return m
			},
			wantErr: `references unknown param "ghost"`,
		},
		{
			name: "duplicate subfield",
			model: func() *Model {
				m := NewModel()
				m.Mappings["m"] = &Mapping{
					Name: "m",
					Subfields: []Subfield{
						{Name: "unit", Type: cty.String},
						{Name: "unit", Type: cty.Number},
					},
				}
				return m
			},
			wantErr: `duplicate subfield "unit"`,
		},
		{
			name: "empty subfield name",
			model: func() *Model {
				m := NewModel()
				m.Mappings["m"] = &Mapping{
					Name:      "m",
					Subfields: []Subfield{{Name: "", Type: cty.String}},
				}
				return m
			},
			wantErr: "subfield with empty name",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.model().Validate(context.Background())
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestSubfieldDefaults(t *testing.T) {
	m := &Mapping{
		Name: "m",
		Subfields: []Subfield{
			{Name: "unit", Type: cty.String, Default: cty.StringVal("celsius")},
			{Name: "scale", Type: cty.Number},
		},
	}

	defaults := m.SubfieldDefaults()
	require.Len(t, defaults, 2)
	assert.Equal(t, cty.StringVal("celsius"), defaults["unit"])
	assert.Equal(t, cty.NullVal(cty.Number), defaults["scale"], "undeclared defaults become typed nulls")

	t.Run("scalar mapping has none", func(t *testing.T) {
		assert.Nil(t, (&Mapping{Name: "flat"}).SubfieldDefaults())
	})
}
