package types

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingInput marks an entry whose source video or card is absent.
	ErrMissingInput = errors.New("missing input")
	// ErrInvalidSnippet marks an empty or inverted extraction window.
	ErrInvalidSnippet = errors.New("invalid snippet")
	// ErrIncompleteShow marks a show variant that lost at least one clip.
	ErrIncompleteShow = errors.New("incomplete show")
)

// ToolError reports a non-zero exit of an external tool together with the
// command line and whatever it printed.
type ToolError struct {
	Tool   string
	Args   []string
	Output string
	Err    error
}

func (e *ToolError) Error() string {
	out := strings.TrimSpace(e.Output)
	if out == "" {
		return fmt.Sprintf("%s failed: %v\n[cmd] %s", e.Tool, e.Err, e.CommandLine())
	}
	return fmt.Sprintf("%s failed: %v\n[cmd] %s\n[output]\n%s", e.Tool, e.Err, e.CommandLine(), out)
}

func (e *ToolError) Unwrap() error { return e.Err }

// CommandLine renders the invocation with shell-style quoting for arguments
// containing spaces or quotes.
func (e *ToolError) CommandLine() string {
	parts := make([]string, 0, len(e.Args)+1)
	parts = append(parts, quoteArg(e.Tool))
	for _, a := range e.Args {
		parts = append(parts, quoteArg(a))
	}
	return strings.Join(parts, " ")
}

func quoteArg(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t\n'\"\\;[]()$") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
