// Package diagnostics carries and renders the compiler's error values.
//
// A Diagnostic is an immutable {message, line, column, help} record.
// Diagnostics never include stack traces, internal identifiers, or
// implementation jargon (spec §4.1).
package diagnostics

import (
	"strconv"
	"strings"

	"github.com/tidwall/sjson"
)

// Diagnostic is a single compiler error or warning tied to a source
// position. Line and Column are always >= 1.
type Diagnostic struct {
	Message string
	Help    string
	Line    int
	Column  int
}

// New constructs a Diagnostic with no help text.
func New(message string, line, column int) Diagnostic {
	return Diagnostic{Message: message, Line: line, Column: column}
}

// WithHelp returns a copy of d carrying the given help text.
func (d Diagnostic) WithHelp(help string) Diagnostic {
	d.Help = help
	return d
}

// Render formats d in the exact shape required by spec §4.1:
//
//	Error: <message>
//	 → line <L>, column <C>
//	 Help: <help text if present>
func (d Diagnostic) Render() string {
	var sb strings.Builder
	sb.WriteString("Error: ")
	sb.WriteString(d.Message)
	sb.WriteString("\n")
	sb.WriteString(" → line ")
	sb.WriteString(strconv.Itoa(d.Line))
	sb.WriteString(", column ")
	sb.WriteString(strconv.Itoa(d.Column))
	if d.Help != "" {
		sb.WriteString("\n Help: ")
		sb.WriteString(d.Help)
	}
	return sb.String()
}

// RenderAll renders a batch of diagnostics, separating entries with a
// blank line.
func RenderAll(diags []Diagnostic) string {
	parts := make([]string, len(diags))
	for i, d := range diags {
		parts[i] = d.Render()
	}
	return strings.Join(parts, "\n\n")
}

// RenderJSON encodes a batch of diagnostics as a JSON array, built
// incrementally with sjson rather than a struct-tagged marshal — the
// shape a streaming CLI (`--json`) or editor integration consumes.
func RenderJSON(diags []Diagnostic) (string, error) {
	doc := "[]"
	var err error
	for i, d := range diags {
		prefix := strconv.Itoa(i)
		doc, err = sjson.Set(doc, prefix+".message", d.Message)
		if err != nil {
			return "", err
		}
		doc, err = sjson.Set(doc, prefix+".line", d.Line)
		if err != nil {
			return "", err
		}
		doc, err = sjson.Set(doc, prefix+".column", d.Column)
		if err != nil {
			return "", err
		}
		if d.Help != "" {
			doc, err = sjson.Set(doc, prefix+".help", d.Help)
			if err != nil {
				return "", err
			}
		}
	}
	return doc, nil
}
