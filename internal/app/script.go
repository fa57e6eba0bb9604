package app

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Op is one scripted editing operation.
type Op struct {
	Verb string
	Args []string
}

// opArity maps each script verb to its required argument count.
var opArity = map[string]int{
	"move":         2,
	"pool":         1,
	"delete":       1,
	"rename":       2,
	"rename-group": 2,
	"new-group":    1,
	"new-value":    1,
}

// ParseScript reads one operation per line. Blank lines and '#' comments
// are skipped.
func ParseScript(r io.Reader) ([]Op, error) {
	var ops []Op
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		verb := fields[0]
		arity, ok := opArity[verb]
		if !ok {
			return nil, fmt.Errorf("line %d: unknown operation %q", lineNo, verb)
		}
		args := fields[1:]
		if len(args) != arity {
			return nil, fmt.Errorf("line %d: %s takes %d argument(s), got %d", lineNo, verb, arity, len(args))
		}
		ops = append(ops, Op{Verb: verb, Args: args})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return ops, nil
}
