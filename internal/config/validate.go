package config

import (
	"context"
	"fmt"

	"github.com/vk/mapedit/internal/ctxlog"
)

// Validate checks the integrity of the loaded model: parameter references
// must resolve, limits must be non-negative, and subfield names must be
// unique. A failure here is a startup error, not a runtime rejection.
func (m *Model) Validate(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	for name, mc := range m.Mappings {
		if err := m.validateRole(name, "key", &mc.Key); err != nil {
			return err
		}
		if err := m.validateRole(name, "value", &mc.Value); err != nil {
			return err
		}

		seen := make(map[string]bool, len(mc.Subfields))
		for _, sf := range mc.Subfields {
			if sf.Name == "" {
				return fmt.Errorf("mapping %q: subfield with empty name", name)
			}
			if seen[sf.Name] {
				return fmt.Errorf("mapping %q: duplicate subfield %q", name, sf.Name)
			}
			seen[sf.Name] = true
		}
	}

	logger.Debug("Configuration model validated.",
		"mappings", len(m.Mappings), "params", len(m.Params))
	return nil
}

func (m *Model) validateRole(mappingName, roleName string, rc *RoleConfig) error {
	if rc.MaxItems < 0 {
		return fmt.Errorf("mapping %q: %s role: max_items must not be negative, got %d",
			mappingName, roleName, rc.MaxItems)
	}
	if rc.Param != "" {
		if _, ok := m.Params[rc.Param]; !ok {
			return fmt.Errorf("mapping %q: %s role references unknown param %q",
				mappingName, roleName, rc.Param)
		}
	}
	return nil
}
