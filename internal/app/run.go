package app

import (
	"context"
	"fmt"
	"os"

	"github.com/vk/mapedit/internal/controller"
	"github.com/vk/mapedit/internal/ctxlog"
	"github.com/vk/mapedit/internal/mapping"
)

// Run drives the controller through the scripted operations and prints
// the final snapshot. Rejections are logged and skipped; callback and
// input errors abort the run.
func (a *App) Run(ctx context.Context, appConfig *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App run started.")

	mc, err := a.selectMapping(appConfig.MappingName)
	if err != nil {
		return err
	}

	asg, err := loadSnapshot(appConfig.SnapshotPath)
	if err != nil {
		return err
	}

	ops, err := a.loadScript(appConfig.ScriptPath)
	if err != nil {
		return err
	}

	ctrl := controller.New(ctx, mc, a.model.Params, asg, func(next *mapping.Assignment) {
		a.logger.Debug("Snapshot committed.", "groups", next.Len(), "total_values", next.TotalValues())
	})

	for i, op := range ops {
		if err := a.apply(ctx, ctrl, op); err != nil {
			return fmt.Errorf("script operation %d (%s): %w", i+1, op.Verb, err)
		}
	}
	ctrl.Reconcile()

	for _, w := range ctrl.Warnings() {
		a.logger.Warn("Assignment inconsistency.", "detail", w)
	}

	out, err := mapping.EncodeSnapshot(ctrl.Assignment())
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	fmt.Fprintln(a.outW, string(out))

	a.logger.Debug("App run finished.")
	return nil
}

// resolveGroup maps a script's group reference to a group id. References
// are tried as an id first, then as a display name; this lets scripts
// address groups they created by name, since ids are allocated at
// runtime.
func resolveGroup(ctrl *controller.Controller, ref string) string {
	if _, ok := ctrl.Assignment().Group(ref); ok {
		return ref
	}
	if g, ok := ctrl.Assignment().GroupByName(ref); ok {
		return g.ID
	}
	return ref
}

// apply executes one scripted operation against the controller.
func (a *App) apply(ctx context.Context, ctrl *controller.Controller, op Op) error {
	switch op.Verb {
	case "move":
		if rej := ctrl.MoveToGroup(ctx, op.Args[0], resolveGroup(ctrl, op.Args[1])); !rej.Accepted() {
			a.logger.Info("Operation rejected.", "op", "move", "identity", op.Args[0], "group", op.Args[1], "reason", rej.String())
		}

	case "pool":
		if rej := ctrl.MoveToPool(ctx, op.Args[0]); !rej.Accepted() {
			a.logger.Info("Operation rejected.", "op", "pool", "identity", op.Args[0], "reason", rej.String())
		}

	case "delete":
		if rej := ctrl.DeleteGroup(ctx, resolveGroup(ctrl, op.Args[0])); !rej.Accepted() {
			a.logger.Info("Operation rejected.", "op", "delete", "group", op.Args[0], "reason", rej.String())
		}

	case "rename":
		if !ctrl.StartValueEdit(ctx, op.Args[0]) {
			a.logger.Info("Operation rejected.", "op", "rename", "identity", op.Args[0], "reason", "edit refused")
			return nil
		}
		ctrl.EditInput(op.Args[1])
		if rej := ctrl.Enter(ctx); !rej.Accepted() {
			a.logger.Info("Operation rejected.", "op", "rename", "identity", op.Args[0], "reason", rej.String())
		}

	case "rename-group":
		if !ctrl.StartGroupEdit(ctx, resolveGroup(ctrl, op.Args[0])) {
			a.logger.Info("Operation rejected.", "op", "rename-group", "group", op.Args[0], "reason", "edit refused")
			return nil
		}
		ctrl.EditInput(op.Args[1])
		if rej := ctrl.Enter(ctx); !rej.Accepted() {
			a.logger.Info("Operation rejected.", "op", "rename-group", "group", op.Args[0], "reason", rej.String())
		}

	case "new-group":
		if !ctrl.EnterCreateGroup() {
			a.logger.Info("Operation rejected.", "op", "new-group", "name", op.Args[0], "reason", "creation disabled")
			return nil
		}
		if err := ctrl.SubmitGroup(ctx, op.Args[0]); err != nil {
			ctrl.CancelCreate()
			return err
		}
		ctrl.CancelCreate()

	case "new-value":
		if !ctrl.EnterCreateValue() {
			a.logger.Info("Operation rejected.", "op", "new-value", "identity", op.Args[0], "reason", "creation disabled")
			return nil
		}
		ctrl.SubmitValue(ctx, op.Args[0])
		ctrl.CancelCreate()

	default:
		return fmt.Errorf("unknown operation %q", op.Verb)
	}
	return nil
}

// loadScript opens the script source: a file path, "-" for stdin, or an
// empty path for no operations.
func (a *App) loadScript(path string) ([]Op, error) {
	switch path {
	case "":
		return nil, nil
	case "-":
		return ParseScript(os.Stdin)
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open script %s: %w", path, err)
		}
		defer f.Close()
		return ParseScript(f)
	}
}
