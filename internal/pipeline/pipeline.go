// Package pipeline runs the compiler's phases in sequence — lex,
// parse, check, lower, optimize, emit — as the three entry points
// every CLI command shares instead of each re-implementing the
// sequence inline.
package pipeline

import (
	"fmt"

	"github.com/astrixa-lang/astrixa/internal/ast"
	"github.com/astrixa-lang/astrixa/internal/checker"
	"github.com/astrixa-lang/astrixa/internal/codegen/wat"
	"github.com/astrixa-lang/astrixa/internal/config"
	"github.com/astrixa-lang/astrixa/internal/diagnostics"
	"github.com/astrixa-lang/astrixa/internal/ir"
	"github.com/astrixa-lang/astrixa/internal/lexer"
	"github.com/astrixa-lang/astrixa/internal/optimizer"
	"github.com/astrixa-lang/astrixa/internal/parser"
)

// Parse lexes and parses src, returning either a Program or the single
// diagnostic the parser stopped at (spec's fail-fast parser contract).
func Parse(src string) (*ast.Program, *diagnostics.Diagnostic) {
	l := lexer.New(src)
	p := parser.New(l)
	return p.ParseProgram()
}

// Check parses and type-checks src against cfg's stdlib extensions. A
// non-empty diagnostics slice means the AST must not be lowered.
func Check(src string, cfg config.Config) (*ast.Program, []diagnostics.Diagnostic) {
	prog, perr := Parse(src)
	if perr != nil {
		return nil, []diagnostics.Diagnostic{*perr}
	}
	diags := checker.Check(prog, cfg.Stdlib...)
	return prog, diags
}

// Build runs the full pipeline and returns the emitted WAT text, or
// the diagnostics that stopped it (parse or check failures), or a Go
// error for a codegen-stage failure (never expected on a checked AST).
// cfg supplies the stdlib extension list the checker and lowerer both
// consult, and the optimizer pass toggles.
func Build(src string, skipCheck bool, cfg config.Config) (string, []diagnostics.Diagnostic, error) {
	prog, perr := Parse(src)
	if perr != nil {
		return "", []diagnostics.Diagnostic{*perr}, nil
	}

	if !skipCheck {
		if diags := checker.Check(prog, cfg.Stdlib...); len(diags) > 0 {
			return "", diags, nil
		}
	}

	mod, err := ir.Lower(prog, cfg.Stdlib...)
	if err != nil {
		return "", nil, fmt.Errorf("lowering: %w", err)
	}
	mod = optimizer.OptimizeModulePasses(mod, cfg.Optimize.ConstantFoldEnabled(), cfg.Optimize.DeadCodeElimEnabled())

	out, err := wat.Emit(mod)
	if err != nil {
		return "", nil, fmt.Errorf("emitting WAT: %w", err)
	}
	return out, nil, nil
}
