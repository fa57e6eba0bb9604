// Package app wires the headless driver: it loads the configuration
// model, builds a controller over a snapshot, applies a script of editing
// operations, and prints the resulting snapshot.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/vk/mapedit/internal/config"
	"github.com/vk/mapedit/internal/ctxlog"
	"github.com/vk/mapedit/internal/mapping"
)

// Config holds everything an App needs to run.
type Config struct {
	ConfigPath   string
	MappingName  string
	SnapshotPath string
	ScriptPath   string
	LogFormat    string
	LogLevel     string
}

// App encapsulates the driver's dependencies and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	model  *config.Model
}

// NewApp loads the configuration and returns an initialized App with its
// own isolated logger.
func NewApp(outW io.Writer, logW io.Writer, appConfig *Config, loader config.Loader) (*App, error) {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)

	model, err := loader.Load(ctx, appConfig.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Debug("Configuration loaded into unified model.", "mappings", len(model.Mappings))

	return &App{
		outW:   outW,
		logger: logger,
		model:  model,
	}, nil
}

// Model returns the loaded configuration model. Primarily for testing.
func (a *App) Model() *config.Model {
	return a.model
}

// selectMapping picks the mapping to drive: the named one, or the only
// one when the configuration declares exactly one.
func (a *App) selectMapping(name string) (*config.Mapping, error) {
	if name != "" {
		mc, ok := a.model.Mappings[name]
		if !ok {
			return nil, fmt.Errorf("mapping %q not found in configuration", name)
		}
		return mc, nil
	}
	if len(a.model.Mappings) != 1 {
		return nil, fmt.Errorf("configuration declares %d mappings; use -mapping to pick one", len(a.model.Mappings))
	}
	for _, mc := range a.model.Mappings {
		return mc, nil
	}
	return nil, fmt.Errorf("no mappings declared")
}

// loadSnapshot reads the assignment snapshot, or returns an empty one
// when no path was given.
func loadSnapshot(path string) (*mapping.Assignment, error) {
	if path == "" {
		return mapping.NewAssignment(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}
	asg, err := mapping.DecodeSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("invalid snapshot %s: %w", path, err)
	}
	return asg, nil
}
