// Package checker implements Astrixa's single-pass type checker: it
// walks a parsed AST, annotates every expression with its resolved
// type, and reports operator/return/name-resolution diagnostics
// (spec §4.4) using a scoped symbol table and a forward-collected
// function signature table so mutual and forward calls resolve
// without a second pass.
package checker

import (
	"strconv"

	"github.com/astrixa-lang/astrixa/internal/ast"
	"github.com/astrixa-lang/astrixa/internal/diagnostics"
	"github.com/astrixa-lang/astrixa/internal/ir"
	"github.com/astrixa-lang/astrixa/internal/types"
)

// signature is a function's arity/type contract, collected in a first
// pass so mutual and forward calls resolve without a second parse.
type signature struct {
	params     []types.Type
	returnType types.Type
}

// Checker performs the single type-checking pass over a Program.
type Checker struct {
	sigs        map[string]signature
	scopes      []map[string]types.Type
	diags       []diagnostics.Diagnostic
	ret         types.Type // declared return type of the function currently being checked
	extraStdlib map[string]bool
}

// New creates a Checker. extraStdlib names an astrixa.yaml project's
// additional host-provided functions, accepted alongside the builtin
// stdlib surface.
func New(extraStdlib ...string) *Checker {
	c := &Checker{sigs: map[string]signature{}}
	if len(extraStdlib) > 0 {
		c.extraStdlib = make(map[string]bool, len(extraStdlib))
		for _, name := range extraStdlib {
			c.extraStdlib[name] = true
		}
	}
	return c
}

func (c *Checker) isStdlib(name string) bool {
	return ir.IsStdlib(name) || c.extraStdlib[name]
}

// Check type-checks prog in place (annotating expression types) and
// returns any diagnostics accumulated across all functions. An empty
// result means the AST is safe to lower. extraStdlib extends the
// builtin stdlib surface with additional host-provided function names
// (astrixa.yaml's `stdlib` list).
func Check(prog *ast.Program, extraStdlib ...string) []diagnostics.Diagnostic {
	c := New(extraStdlib...)
	c.collectSignatures(prog)
	for _, stmt := range prog.Statements {
		fn, ok := stmt.(*ast.FunctionStmt)
		if !ok {
			continue
		}
		c.checkFunction(fn)
	}
	return c.diags
}

func (c *Checker) collectSignatures(prog *ast.Program) {
	for _, stmt := range prog.Statements {
		fn, ok := stmt.(*ast.FunctionStmt)
		if !ok {
			continue
		}
		params := make([]types.Type, len(fn.Params))
		for i, p := range fn.Params {
			params[i] = p.Type
		}
		c.sigs[fn.Name] = signature{params: params, returnType: fn.ReturnType}
	}
}

func (c *Checker) error(line, col int, message, help string) {
	d := diagnostics.New(message, line, col)
	if help != "" {
		d = d.WithHelp(help)
	}
	c.diags = append(c.diags, d)
}

func (c *Checker) pushScope() { c.scopes = append(c.scopes, map[string]types.Type{}) }
func (c *Checker) popScope()  { c.scopes = c.scopes[:len(c.scopes)-1] }

func (c *Checker) declare(name string, t types.Type) {
	c.scopes[len(c.scopes)-1][name] = t
}

func (c *Checker) lookup(name string) (types.Type, bool) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if t, ok := c.scopes[i][name]; ok {
			return t, true
		}
	}
	return types.Unknown, false
}

func (c *Checker) checkFunction(fn *ast.FunctionStmt) {
	c.ret = fn.ReturnType
	c.pushScope()
	defer c.popScope()

	for _, p := range fn.Params {
		c.declare(p.Name, p.Type)
	}
	for _, stmt := range fn.Body {
		c.checkStmt(stmt)
	}
}

func (c *Checker) checkStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		c.checkExpr(s.X)

	case *ast.LetStmt:
		valType := c.checkExpr(s.Value)
		if s.Annotated {
			if s.Type != valType && valType != types.Unknown {
				c.error(s.Line(), s.Column(),
					"cannot assign "+valType.String()+" to a variable annotated "+s.Type.String(),
					"change the annotation or the value's type")
			}
			c.declare(s.Name, s.Type)
		} else {
			s.Type = valType
			c.declare(s.Name, valType)
		}

	case *ast.ReturnStmt:
		if s.Value == nil {
			if c.ret != types.Void {
				c.error(s.Line(), s.Column(),
					"bare return in a function declared to return "+c.ret.String(),
					"add a return value of type "+c.ret.String())
			}
			return
		}
		got := c.checkExpr(s.Value)
		if got != types.Unknown && got != c.ret {
			c.error(s.Line(), s.Column(),
				"returned "+got.String()+" but function is declared to return "+c.ret.String(), "")
		}

	case *ast.IfStmt:
		c.checkCondition(s.Cond)
		c.pushScope()
		for _, st := range s.Then {
			c.checkStmt(st)
		}
		c.popScope()
		if s.Else != nil {
			c.pushScope()
			for _, st := range s.Else {
				c.checkStmt(st)
			}
			c.popScope()
		}

	case *ast.WhileStmt:
		c.checkCondition(s.Cond)
		c.pushScope()
		for _, st := range s.Body {
			c.checkStmt(st)
		}
		c.popScope()
	}
}

// checkCondition enforces the supplemented if/while rule that the
// condition must be Bool (SPEC_FULL §4.2).
func (c *Checker) checkCondition(cond ast.Expr) {
	t := c.checkExpr(cond)
	if t != types.Unknown && t != types.Bool {
		c.error(cond.Line(), cond.Column(),
			"condition must be Bool, found "+t.String(), "use a comparison or boolean expression")
	}
}

func (c *Checker) checkExpr(expr ast.Expr) types.Type {
	var t types.Type
	switch e := expr.(type) {
	case *ast.IntLiteral:
		t = types.Int
	case *ast.FloatLiteral:
		t = types.Float
	case *ast.BoolLiteral:
		t = types.Bool
	case *ast.StringLiteral:
		t = types.String

	case *ast.Identifier:
		found, ok := c.lookup(e.Name)
		if !ok {
			c.error(e.Line(), e.Column(), "undefined variable '"+e.Name+"'", "")
			t = types.Unknown
		} else {
			t = found
		}

	case *ast.CallExpr:
		t = c.checkCall(e)

	case *ast.BinaryExpr:
		t = c.checkBinary(e)

	case *ast.UnaryExpr:
		t = c.checkUnary(e)

	default:
		t = types.Unknown
	}
	ast.SetType(expr, t)
	return t
}

func (c *Checker) checkCall(e *ast.CallExpr) types.Type {
	argTypes := make([]types.Type, len(e.Args))
	for i, a := range e.Args {
		argTypes[i] = c.checkExpr(a)
	}

	if c.isStdlib(e.Name) {
		// The stdlib surface is i32-only (spec §4.8); each argument must
		// be numeric.
		for i, t := range argTypes {
			if t != types.Unknown && !t.IsNumeric() {
				c.error(e.Line(), e.Column(),
					"argument "+strconv.Itoa(i+1)+" to '"+e.Name+"' must be numeric, found "+t.String(), "")
			}
		}
		return types.Void
	}

	sig, ok := c.sigs[e.Name]
	if !ok {
		c.error(e.Line(), e.Column(), "undefined function '"+e.Name+"'", "")
		return types.Unknown
	}
	if len(argTypes) != len(sig.params) {
		c.error(e.Line(), e.Column(),
			"'"+e.Name+"' expects "+strconv.Itoa(len(sig.params))+" argument(s), found "+strconv.Itoa(len(argTypes)), "")
		return sig.returnType
	}
	for i, t := range argTypes {
		if t != types.Unknown && sig.params[i] != types.Unknown && t != sig.params[i] {
			c.error(e.Line(), e.Column(),
				"argument "+strconv.Itoa(i+1)+" to '"+e.Name+"' must be "+sig.params[i].String()+", found "+t.String(), "")
		}
	}
	return sig.returnType
}

func (c *Checker) checkBinary(e *ast.BinaryExpr) types.Type {
	left := c.checkExpr(e.Left)
	right := c.checkExpr(e.Right)
	if left == types.Unknown || right == types.Unknown {
		return types.Unknown
	}

	switch e.Op {
	case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv:
		if !left.IsNumeric() || left != right {
			c.error(e.Line(), e.Column(), "cannot mix "+left.String()+" and "+right.String()+" with `"+binarySymbol(e.Op)+"`", "")
			return types.Unknown
		}
		return left

	case ast.OpMod:
		if left != types.Int || right != types.Int {
			c.error(e.Line(), e.Column(), "`%` requires both operands to be Int, found "+left.String()+" and "+right.String(), "")
			return types.Unknown
		}
		return types.Int

	case ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		if !left.IsNumeric() || left != right {
			c.error(e.Line(), e.Column(), "cannot compare "+left.String()+" and "+right.String(), "both operands must be the same numeric type")
			return types.Unknown
		}
		return types.Bool

	case ast.OpEq, ast.OpNe:
		if left != right {
			c.error(e.Line(), e.Column(), "cannot compare "+left.String()+" and "+right.String()+" for equality", "")
			return types.Unknown
		}
		return types.Bool

	case ast.OpAnd, ast.OpOr:
		if left != types.Bool || right != types.Bool {
			c.error(e.Line(), e.Column(), "logical operators require Bool operands, found "+left.String()+" and "+right.String(), "")
			return types.Unknown
		}
		return types.Bool
	}
	return types.Unknown
}

func (c *Checker) checkUnary(e *ast.UnaryExpr) types.Type {
	operand := c.checkExpr(e.Operand)
	if operand == types.Unknown {
		return types.Unknown
	}
	switch e.Op {
	case ast.OpNot:
		if operand != types.Bool {
			c.error(e.Line(), e.Column(), "'!' requires a Bool operand, found "+operand.String(), "")
			return types.Unknown
		}
		return types.Bool
	case ast.OpNeg:
		if !operand.IsNumeric() {
			c.error(e.Line(), e.Column(), "unary '-' requires a numeric operand, found "+operand.String(), "")
			return types.Unknown
		}
		return operand
	}
	return types.Unknown
}

func binarySymbol(op ast.BinaryOp) string {
	switch op {
	case ast.OpAdd:
		return "+"
	case ast.OpSub:
		return "-"
	case ast.OpMul:
		return "*"
	case ast.OpDiv:
		return "/"
	case ast.OpMod:
		return "%"
	default:
		return "?"
	}
}

