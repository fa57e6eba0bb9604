package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/mapedit/internal/config"
	"github.com/vk/mapedit/internal/ctxlog"
	"github.com/vk/mapedit/internal/fsutil"
	"github.com/vk/mapedit/internal/schema"
)

// Loader is the HCL implementation of config.Loader.
type Loader struct {
	parser *hclparse.Parser
}

// NewLoader creates a new HCL loader.
func NewLoader() *Loader {
	return &Loader{parser: hclparse.NewParser()}
}

// Load finds and parses all .hcl files under the given paths and merges
// them into a single configuration model.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	model := config.NewModel()

	for _, path := range paths {
		files, err := fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			return nil, fmt.Errorf("failed to find config files in %s: %w", path, err)
		}
		if len(files) == 0 {
			logger.Warn("No .hcl files found in path.", "path", path)
			continue
		}
		for _, file := range files {
			if err := l.loadFile(ctx, file, model); err != nil {
				return nil, err
			}
		}
	}

	if err := model.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logger.Debug("Configuration loaded.",
		"mappings", len(model.Mappings), "params", len(model.Params))
	return model, nil
}

// loadFile parses one file and merges its blocks into the model.
func (l *Loader) loadFile(ctx context.Context, path string, model *config.Model) error {
	hclFile, diags := l.parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}

	var parsed schema.File
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &parsed); diags.HasErrors() {
		return fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
	}

	for _, p := range parsed.Params {
		param, err := translateParam(p)
		if err != nil {
			return fmt.Errorf("in file %s: %w", path, err)
		}
		if _, ok := model.Params[param.Name]; ok {
			return fmt.Errorf("in file %s: duplicate param %q", path, param.Name)
		}
		model.Params[param.Name] = param
	}

	for _, m := range parsed.Mappings {
		mc, err := translateMapping(ctx, m)
		if err != nil {
			return fmt.Errorf("in file %s: %w", path, err)
		}
		if _, ok := model.Mappings[mc.Name]; ok {
			return fmt.Errorf("in file %s: duplicate mapping %q", path, mc.Name)
		}
		model.Mappings[mc.Name] = mc
	}

	return nil
}
