package ast

import (
	"testing"

	"github.com/astrixa-lang/astrixa/internal/types"
)

func TestProgramStringJoinsStatements(t *testing.T) {
	prog := &Program{Statements: []Stmt{
		NewExprStmt(NewIntLiteral(1, 1, 1), 1, 1),
		NewExprStmt(NewIntLiteral(2, 2, 1), 2, 1),
	}}
	want := "1;\n2;\n"
	if got := prog.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestLiteralStrings(t *testing.T) {
	tests := []struct {
		name string
		expr Expr
		want string
	}{
		{"int", NewIntLiteral(42, 1, 1), "42"},
		{"float", NewFloatLiteral(3.5, 1, 1), "3.5"},
		{"bool true", NewBoolLiteral(true, 1, 1), "true"},
		{"bool false", NewBoolLiteral(false, 1, 1), "false"},
		{"string", NewStringLiteral("hi", 1, 1), `"hi"`},
		{"identifier", NewIdentifier("x", 1, 1), "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.expr.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCallExprString(t *testing.T) {
	call := NewCallExpr("ai.println", []Expr{
		NewIntLiteral(1, 1, 1),
		NewIntLiteral(2, 1, 1),
	}, 1, 1)
	want := "ai.println(1, 2)"
	if got := call.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestBinaryExprString(t *testing.T) {
	expr := NewBinaryExpr(OpAdd, NewIntLiteral(1, 1, 1), NewIntLiteral(2, 1, 1), 1, 1)
	want := "(1 + 2)"
	if got := expr.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestUnaryExprString(t *testing.T) {
	neg := NewUnaryExpr(OpNeg, NewIntLiteral(1, 1, 1), 1, 1)
	if got, want := neg.String(), "(-1)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	not := NewUnaryExpr(OpNot, NewBoolLiteral(true, 1, 1), 1, 1)
	if got, want := not.String(), "(!true)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestIfStmtStringShowsElseOnlyWhenPresent(t *testing.T) {
	cond := NewBoolLiteral(true, 1, 1)
	withoutElse := NewIfStmt(cond, nil, nil, 1, 1)
	if got := withoutElse.String(); got != "if (true) { ... }" {
		t.Errorf("String() = %q", got)
	}
	withElse := NewIfStmt(cond, nil, []Stmt{NewExprStmt(NewIntLiteral(1, 1, 1), 1, 1)}, 1, 1)
	if got := withElse.String(); got != "if (true) { ... } else { ... }" {
		t.Errorf("String() = %q", got)
	}
}

func TestWhileStmtString(t *testing.T) {
	w := NewWhileStmt(NewBoolLiteral(false, 1, 1), nil, 1, 1)
	if got, want := w.String(), "while (false) { ... }"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestFunctionStmtString(t *testing.T) {
	fn := NewFunctionStmt("add", []Param{
		{Name: "a", Type: types.Int},
		{Name: "b", Type: types.Int},
	}, types.Int, []Stmt{
		NewReturnStmt(NewBinaryExpr(OpAdd, NewIdentifier("a", 1, 1), NewIdentifier("b", 1, 1), 1, 1), 1, 1),
	}, 1, 1)
	want := "fn add(a: Int, b: Int) {\n  return (a + b);\n}"
	if got := fn.String(); got != want {
		t.Errorf("String() =\n%s\nwant\n%s", got, want)
	}
}

func TestReturnStmtStringWithoutValue(t *testing.T) {
	r := NewReturnStmt(nil, 1, 1)
	if got, want := r.String(), "return;"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestLetStmtString(t *testing.T) {
	let := NewLetStmt("x", types.Int, true, NewIntLiteral(7, 1, 1), 1, 1)
	if got, want := let.String(), "let x = 7;"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestSetTypeAnnotatesExpression(t *testing.T) {
	lit := NewIntLiteral(1, 1, 1)
	if lit.ExprType() != types.Unknown {
		t.Fatalf("ExprType() = %v before annotation, want Unknown", lit.ExprType())
	}
	SetType(lit, types.Int)
	if lit.ExprType() != types.Int {
		t.Errorf("ExprType() = %v after SetType, want Int", lit.ExprType())
	}
}

func TestNodePositionsArePreserved(t *testing.T) {
	n := NewIdentifier("x", 5, 9)
	if n.Line() != 5 || n.Column() != 9 {
		t.Errorf("Line/Column = %d/%d, want 5/9", n.Line(), n.Column())
	}
}
