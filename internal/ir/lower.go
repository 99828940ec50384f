package ir

import (
	"fmt"

	"github.com/astrixa-lang/astrixa/internal/ast"
	"github.com/astrixa-lang/astrixa/internal/types"
)

// stdlibFunctions is the is_stdlib predicate from spec §4.5: a pure
// function of a call's name, consulted only at lowering time. The
// parser's ai.<name>(...) form and the ordinary identifier-call form
// both land here on equal footing.
var stdlibFunctions = map[string]bool{
	"print":   true,
	"println": true,
}

// IsStdlib reports whether name is lowered to CallStd rather than Call.
func IsStdlib(name string) bool { return stdlibFunctions[name] }

// builder accumulates one function's instruction stream and supports
// forward-patching Jump/JumpIfFalse targets so an if/while body's
// Jump/JumpIfFalse target can be recorded before the branch's end is
// known.
type builder struct {
	instructions []Instruction
	extraStdlib  map[string]bool
}

func (b *builder) isStdlib(name string) bool {
	return IsStdlib(name) || b.extraStdlib[name]
}

func (b *builder) emit(ins Instruction) int {
	b.instructions = append(b.instructions, ins)
	return len(b.instructions) - 1
}

func (b *builder) here() int { return len(b.instructions) }

func (b *builder) patchTarget(idx, target int) {
	b.instructions[idx].Target = target
}

// Lower translates a fully type-checked AST into an IR module. The
// AST must already carry resolved types on every expression (the
// checker's job); Lower itself performs no type analysis. extraStdlib
// extends the builtin stdlib surface with additional host-provided
// function names (astrixa.yaml's `stdlib` list), matching the same
// list the checker was given.
func Lower(prog *ast.Program, extraStdlib ...string) (*Module, error) {
	var extra map[string]bool
	if len(extraStdlib) > 0 {
		extra = make(map[string]bool, len(extraStdlib))
		for _, name := range extraStdlib {
			extra[name] = true
		}
	}

	mod := &Module{}
	for _, stmt := range prog.Statements {
		fnStmt, ok := stmt.(*ast.FunctionStmt)
		if !ok {
			return nil, fmt.Errorf("ir: unexpected top-level statement %T", stmt)
		}
		mod.Functions = append(mod.Functions, lowerFunction(fnStmt, extra))
	}
	return mod, nil
}

func lowerFunction(fn *ast.FunctionStmt, extraStdlib map[string]bool) *Function {
	b := &builder{extraStdlib: extraStdlib}
	locals := len(fn.Params)

	params := make([]Param, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = Param{Name: p.Name, Type: p.Type}
	}

	fallsThrough := true
	for _, st := range fn.Body {
		var sf bool
		locals, sf = lowerStmt(st, b, locals)
		if fallsThrough {
			fallsThrough = sf
		}
	}

	// Every function ends with Return (spec §4.5). If the body can
	// still reach its own end — including through an if with no else,
	// an if/else whose then or else branch falls through, or a while
	// loop's cond-false exit — control falls off without a value on
	// the stack, so append the uniform zero-value fallback (spec §4.5).
	if fallsThrough {
		b.emit(LoadConstInt(0))
		b.emit(Return())
	}

	return &Function{
		Name:         fn.Name,
		Params:       params,
		ReturnType:   fn.ReturnType,
		LocalCount:   locals,
		Instructions: b.instructions,
	}
}

// lowerStmt lowers stmt and reports whether execution may fall through
// to the statement following it. The result is a conservative
// over-approximation for loops (a while is always reported as falling
// through, even one whose condition can never become false): reporting
// true when control can't actually reach past the statement costs only
// a redundant, never-executed fallback, where reporting false when it
// could reach past would under-emit and miscompile (see lowerFunction).
func lowerStmt(stmt ast.Stmt, b *builder, locals int) (int, bool) {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		lowerExpr(s.X, b)
		b.emit(Pop())
		return locals, true

	case *ast.LetStmt:
		lowerExpr(s.Value, b)
		b.emit(StoreVar(s.Name))
		return locals + 1, true

	case *ast.ReturnStmt:
		if s.Value != nil {
			lowerExpr(s.Value, b)
		} else {
			b.emit(LoadConstInt(0))
		}
		b.emit(Return())
		return locals, false

	case *ast.IfStmt:
		lowerExpr(s.Cond, b)
		jifIdx := b.emit(JumpIfFalse(0))
		thenFalls := true
		for _, st := range s.Then {
			var sf bool
			locals, sf = lowerStmt(st, b, locals)
			if thenFalls {
				thenFalls = sf
			}
		}
		if len(s.Else) == 0 {
			b.patchTarget(jifIdx, b.here())
			// No else means the cond-false path always reaches past
			// the if, regardless of whether the then-branch itself
			// falls through.
			return locals, true
		}
		jmpIdx := b.emit(Jump(0))
		b.patchTarget(jifIdx, b.here())
		elseFalls := true
		for _, st := range s.Else {
			var sf bool
			locals, sf = lowerStmt(st, b, locals)
			if elseFalls {
				elseFalls = sf
			}
		}
		b.patchTarget(jmpIdx, b.here())
		return locals, thenFalls || elseFalls

	case *ast.WhileStmt:
		loopStart := b.here()
		lowerExpr(s.Cond, b)
		jifIdx := b.emit(JumpIfFalse(0))
		for _, st := range s.Body {
			locals, _ = lowerStmt(st, b, locals)
		}
		b.emit(Jump(loopStart))
		b.patchTarget(jifIdx, b.here())
		return locals, true

	default:
		panic(fmt.Sprintf("ir: unhandled statement %T", stmt))
	}
}

var binaryOpcodes = map[ast.BinaryOp]func() Instruction{
	ast.OpAdd: Add, ast.OpSub: Sub, ast.OpMul: Mul, ast.OpDiv: Div, ast.OpMod: Mod,
	ast.OpEq: Eq, ast.OpNe: Ne, ast.OpLt: Lt, ast.OpLe: Le, ast.OpGt: Gt, ast.OpGe: Ge,
	ast.OpAnd: And, ast.OpOr: Or,
}

func lowerExpr(expr ast.Expr, b *builder) {
	switch e := expr.(type) {
	case *ast.IntLiteral:
		b.emit(LoadConstInt(e.Value))
	case *ast.FloatLiteral:
		b.emit(LoadConstFloat(e.Value))
	case *ast.BoolLiteral:
		b.emit(LoadConstBool(e.Value))
	case *ast.StringLiteral:
		b.emit(LoadConstString(e.Value))
	case *ast.Identifier:
		b.emit(LoadVar(e.Name))
	case *ast.CallExpr:
		for _, arg := range e.Args {
			lowerExpr(arg, b)
		}
		if b.isStdlib(e.Name) {
			b.emit(CallStd(e.Name))
		} else {
			b.emit(Call(e.Name, len(e.Args)))
		}
	case *ast.BinaryExpr:
		// binaryOpcodes has one instruction per operator regardless of
		// operand type: Float operands lower onto the same opcodes as
		// Int (the WAT emitter's mapping table covers only i32.*), so
		// Float arithmetic is accepted by the checker but not yet
		// computed at its own precision.
		lowerExpr(e.Left, b)
		lowerExpr(e.Right, b)
		ctor, ok := binaryOpcodes[e.Op]
		if !ok {
			panic(fmt.Sprintf("ir: unhandled binary operator %v", e.Op))
		}
		b.emit(ctor())
	case *ast.UnaryExpr:
		lowerUnary(e, b)
	default:
		panic(fmt.Sprintf("ir: unhandled expression %T", expr))
	}
}

// lowerUnary has no dedicated IR opcode to lower onto for negation (the
// instruction set has no Neg, only the binary Sub); `-x` is encoded as
// `0 - x` over the operand's own numeric type. `!x` lowers directly to
// Not.
func lowerUnary(e *ast.UnaryExpr, b *builder) {
	switch e.Op {
	case ast.OpNot:
		lowerExpr(e.Operand, b)
		b.emit(Not())
	case ast.OpNeg:
		if e.Operand.ExprType() == types.Float {
			b.emit(LoadConstFloat(0))
		} else {
			b.emit(LoadConstInt(0))
		}
		lowerExpr(e.Operand, b)
		b.emit(Sub())
	}
}
