package mapping

import (
	"encoding/json"
	"fmt"

	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// The snapshot codec serializes an Assignment to JSON, preserving group
// order. It exists for callers that persist snapshots and for the headless
// driver; the in-memory core never round-trips through it.

type snapshotFile struct {
	Groups []snapshotGroup `json:"groups"`
}

type snapshotGroup struct {
	ID        string                     `json:"id"`
	Name      string                     `json:"name"`
	Editable  bool                       `json:"editable"`
	Values    []snapshotValue            `json:"values"`
	Subfields map[string]json.RawMessage `json:"subfields,omitempty"`
}

type snapshotValue struct {
	ID     string                     `json:"id,omitempty"`
	Value  json.RawMessage            `json:"value,omitempty"`
	Fields map[string]json.RawMessage `json:"fields,omitempty"`
}

// EncodeSnapshot renders the assignment as indented JSON.
func EncodeSnapshot(a *Assignment) ([]byte, error) {
	file := snapshotFile{Groups: []snapshotGroup{}}
	for _, g := range a.Groups() {
		sg := snapshotGroup{
			ID:       g.ID,
			Name:     g.Name,
			Editable: g.Editable,
			Values:   []snapshotValue{},
		}
		for _, v := range g.Values {
			sv := snapshotValue{ID: v.ID}
			if v.Value != cty.NilVal {
				raw, err := marshalValue(v.Value)
				if err != nil {
					return nil, fmt.Errorf("group %q value %q: %w", g.ID, v.Identity(), err)
				}
				sv.Value = raw
			}
			if v.Fields != nil {
				sv.Fields = make(map[string]json.RawMessage, len(v.Fields))
				for name, fv := range v.Fields {
					raw, err := marshalValue(fv)
					if err != nil {
						return nil, fmt.Errorf("group %q value %q field %q: %w", g.ID, v.Identity(), name, err)
					}
					sv.Fields[name] = raw
				}
			}
			sg.Values = append(sg.Values, sv)
		}
		if g.Subfields != nil {
			sg.Subfields = make(map[string]json.RawMessage, len(g.Subfields))
			for name, fv := range g.Subfields {
				raw, err := marshalValue(fv)
				if err != nil {
					return nil, fmt.Errorf("group %q subfield %q: %w", g.ID, name, err)
				}
				sg.Subfields[name] = raw
			}
		}
		file.Groups = append(file.Groups, sg)
	}
	return json.MarshalIndent(file, "", "  ")
}

// DecodeSnapshot parses JSON produced by EncodeSnapshot back into an
// Assignment. Value types are implied from the JSON representation.
func DecodeSnapshot(data []byte) (*Assignment, error) {
	var file snapshotFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	asg := NewAssignment()
	for _, sg := range file.Groups {
		g := &GroupRecord{
			ID:       sg.ID,
			Name:     sg.Name,
			Editable: sg.Editable,
		}
		for _, sv := range sg.Values {
			ref := ValueRef{ID: sv.ID}
			if sv.Value != nil {
				v, err := unmarshalValue(sv.Value)
				if err != nil {
					return nil, fmt.Errorf("group %q: %w", sg.ID, err)
				}
				ref.Value = v
			}
			if sv.Fields != nil {
				ref.Fields = make(map[string]cty.Value, len(sv.Fields))
				for name, raw := range sv.Fields {
					v, err := unmarshalValue(raw)
					if err != nil {
						return nil, fmt.Errorf("group %q field %q: %w", sg.ID, name, err)
					}
					ref.Fields[name] = v
				}
			}
			g.Values = append(g.Values, ref)
		}
		if sg.Subfields != nil {
			g.Subfields = make(map[string]cty.Value, len(sg.Subfields))
			for name, raw := range sg.Subfields {
				v, err := unmarshalValue(raw)
				if err != nil {
					return nil, fmt.Errorf("group %q subfield %q: %w", sg.ID, name, err)
				}
				g.Subfields[name] = v
			}
		}
		if err := asg.Append(g); err != nil {
			return nil, fmt.Errorf("invalid snapshot: %w", err)
		}
	}
	return asg, nil
}

func marshalValue(v cty.Value) (json.RawMessage, error) {
	raw, err := ctyjson.Marshal(v, v.Type())
	if err != nil {
		return nil, fmt.Errorf("cannot encode value: %w", err)
	}
	return raw, nil
}

func unmarshalValue(raw json.RawMessage) (cty.Value, error) {
	ty, err := ctyjson.ImpliedType(raw)
	if err != nil {
		return cty.NilVal, fmt.Errorf("cannot imply value type: %w", err)
	}
	v, err := ctyjson.Unmarshal(raw, ty)
	if err != nil {
		return cty.NilVal, fmt.Errorf("cannot decode value: %w", err)
	}
	return v, nil
}
