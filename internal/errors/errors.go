// Package errors formats coolc diagnostics with source context,
// line/column information, and a caret pointing at the offending
// column. It never panics: every reporting pass appends to an
// in-memory list and keeps walking.
package errors

import (
	"fmt"
	"strings"

	"github.com/coolc/coolc/internal/token"
)

// Tier classifies a diagnostic per the taxonomy in the language
// specification: lexical/syntactic, hierarchy, feature, type, or
// internal-compiler-error.
type Tier int

const (
	Lexical Tier = iota
	Hierarchy
	Feature
	Type
	Internal
)

// CompilerError is a single diagnostic with position and source context.
type CompilerError struct {
	Message string
	Source  string
	File    string
	Pos     token.Position
	Tier    Tier
}

func new_(tier Tier, pos token.Position, message, source, file string) *CompilerError {
	return &CompilerError{Tier: tier, Pos: pos, Message: message, Source: source, File: file}
}

// NewLexicalError reports a lexer/parser diagnostic.
func NewLexicalError(pos token.Position, message, source, file string) *CompilerError {
	return new_(Lexical, pos, message, source, file)
}

// NewHierarchyError reports a class-hierarchy diagnostic (cycles,
// undefined parents, inheritance from a forbidden built-in).
func NewHierarchyError(pos token.Position, message, source, file string) *CompilerError {
	return new_(Hierarchy, pos, message, source, file)
}

// NewFeatureError reports an attribute/method collection diagnostic.
func NewFeatureError(pos token.Position, message, source, file string) *CompilerError {
	return new_(Feature, pos, message, source, file)
}

// NewTypeError reports a type-checking diagnostic.
func NewTypeError(pos token.Position, message, source, file string) *CompilerError {
	return new_(Type, pos, message, source, file)
}

// NewInternalError reports an unreachable-invariant violation. Callers
// should emit these as comments in generated output and continue,
// never abort the pass.
func NewInternalError(pos token.Position, message, source, file string) *CompilerError {
	return new_(Internal, pos, message, source, file)
}

// Error implements the error interface.
func (e *CompilerError) Error() string {
	return e.Format(false)
}

// Line renders the `"<file>", line <N>: <message>` form used for parse
// errors (spec §6).
func (e *CompilerError) Line() string {
	if e.File != "" {
		return fmt.Sprintf("%q, line %d: %s", e.File, e.Pos.Line, e.Message)
	}
	return fmt.Sprintf("line %d: %s", e.Pos.Line, e.Message)
}

// Format formats the error message with source context. If color is
// true, ANSI color codes are used for terminal output.
func (e *CompilerError) Format(color bool) string {
	var sb strings.Builder

	if e.File != "" {
		fmt.Fprintf(&sb, "Error in %s:%d:%d\n", e.File, e.Pos.Line, e.Pos.Column)
	} else {
		fmt.Fprintf(&sb, "Error at line %d:%d\n", e.Pos.Line, e.Pos.Column)
	}

	if sourceLine := e.getSourceLine(e.Pos.Line); sourceLine != "" {
		lineNumStr := fmt.Sprintf("%4d | ", e.Pos.Line)
		sb.WriteString(lineNumStr)
		sb.WriteString(sourceLine)
		sb.WriteString("\n")

		sb.WriteString(strings.Repeat(" ", len(lineNumStr)+e.Pos.Column-1))
		if color {
			sb.WriteString("\033[1;31m")
		}
		sb.WriteString("^")
		if color {
			sb.WriteString("\033[0m")
		}
		sb.WriteString("\n")
	}

	if color {
		sb.WriteString("\033[1m")
	}
	sb.WriteString(e.Message)
	if color {
		sb.WriteString("\033[0m")
	}

	return sb.String()
}

func (e *CompilerError) getSourceLine(lineNum int) string {
	if e.Source == "" {
		return ""
	}
	lines := strings.Split(e.Source, "\n")
	if lineNum < 1 || lineNum > len(lines) {
		return ""
	}
	return lines[lineNum-1]
}

// FormatErrors formats multiple compiler errors, each in its own
// block, for printing to stdout/stderr.
func FormatErrors(errs []*CompilerError, color bool) string {
	if len(errs) == 0 {
		return ""
	}
	if len(errs) == 1 {
		return errs[0].Format(color)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Compilation failed with %d error(s):\n\n", len(errs))
	for i, err := range errs {
		fmt.Fprintf(&sb, "[Error %d of %d]\n", i+1, len(errs))
		sb.WriteString(err.Format(color))
		if i < len(errs)-1 {
			sb.WriteString("\n\n")
		}
	}
	return sb.String()
}

// Lines renders every error via Line(), one per output line, matching
// the CLI's diagnostic surface (spec §6).
func Lines(errs []*CompilerError) []string {
	lines := make([]string, len(errs))
	for i, err := range errs {
		lines[i] = err.Line()
	}
	return lines
}
