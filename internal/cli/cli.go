// Package cli parses command-line arguments for the headless driver.
package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/vk/mapedit/internal/app"
)

// ExitError is an error carrying a specific process exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app
// Config, a boolean indicating the program should exit cleanly (help or
// missing input), or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	flagSet := flag.NewFlagSet("mapedit", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
mapedit - headless driver for the mapping editor state core.

Loads a declarative mapping configuration, applies a script of editing
operations against an assignment snapshot, and prints the resulting
snapshot as JSON.

Usage:
  mapedit [options] [CONFIG_PATH]

Arguments:
  CONFIG_PATH
    Path to a single .hcl file or a directory containing .hcl files.

Script operations (one per line, '#' starts a comment; <group> is a
group id or display name):
  move <identity> <group>
  pool <identity>
  delete <group>
  rename <old-identity> <new-identity>
  rename-group <group> <new-name>
  new-group <name>
  new-value <identity>

Options:
`)
		flagSet.PrintDefaults()
	}

	configFlag := flagSet.String("config", "", "Path to the configuration file or directory.")
	mappingFlag := flagSet.String("mapping", "", "Name of the mapping block to drive. Defaults to the only one.")
	snapshotFlag := flagSet.String("snapshot", "", "Path to a JSON assignment snapshot. Defaults to an empty assignment.")
	scriptFlag := flagSet.String("script", "", "Path to a script of operations. '-' reads from stdin.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	path := *configFlag
	if path == "" && flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	if path == "" {
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("invalid log format %q", logFormat)}
	}

	return &app.Config{
		ConfigPath:   path,
		MappingName:  *mappingFlag,
		SnapshotPath: *snapshotFlag,
		ScriptPath:   *scriptFlag,
		LogFormat:    logFormat,
		LogLevel:     strings.ToLower(*logLevelFlag),
	}, false, nil
}
