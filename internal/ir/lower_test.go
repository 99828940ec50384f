package ir

import (
	"testing"

	"github.com/astrixa-lang/astrixa/internal/ast"
	"github.com/astrixa-lang/astrixa/internal/types"
)

func typedInt(v int64, line, col int) *ast.IntLiteral {
	lit := ast.NewIntLiteral(v, line, col)
	ast.SetType(lit, types.Int)
	return lit
}

// TestLowerConstantAddChain mirrors spec §8 scenario 3's pre-optimization
// shape: (2 + 3) + 4, returned.
func TestLowerConstantAddChain(t *testing.T) {
	inner := ast.NewBinaryExpr(ast.OpAdd, typedInt(2, 1, 1), typedInt(3, 1, 1), 1, 1)
	ast.SetType(inner, types.Int)
	outer := ast.NewBinaryExpr(ast.OpAdd, inner, typedInt(4, 1, 1), 1, 1)
	ast.SetType(outer, types.Int)

	fn := ast.NewFunctionStmt("f", nil, types.Int,
		[]ast.Stmt{ast.NewReturnStmt(outer, 1, 1)}, 1, 1)
	mod, err := Lower(&ast.Program{Statements: []ast.Stmt{fn}})
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}

	got := mod.Functions[0].Instructions
	want := []Instruction{
		LoadConstInt(2), LoadConstInt(3), Add(),
		LoadConstInt(4), Add(),
		Return(),
	}
	assertInstructions(t, got, want)
}

// TestLowerDeadCodeAfterReturn mirrors spec §8 scenario 4's
// pre-optimization shape: a statement after an unconditional return.
func TestLowerDeadCodeAfterReturn(t *testing.T) {
	fn := ast.NewFunctionStmt("f", nil, types.Int, []ast.Stmt{
		ast.NewReturnStmt(typedInt(42, 1, 1), 1, 1),
		ast.NewExprStmt(ast.NewBinaryExpr(ast.OpAdd, typedInt(99, 2, 1), typedInt(1, 2, 1), 2, 1), 2, 1),
	}, 1, 1)
	mod, err := Lower(&ast.Program{Statements: []ast.Stmt{fn}})
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}

	got := mod.Functions[0].Instructions
	want := []Instruction{
		LoadConstInt(42), Return(),
		LoadConstInt(99), LoadConstInt(1), Add(), Pop(),
	}
	assertInstructions(t, got, want)
}

func TestLowerIfElseBranchTargets(t *testing.T) {
	cond := ast.NewBoolLiteral(true, 1, 1)
	ast.SetType(cond, types.Bool)
	thenBody := []ast.Stmt{ast.NewReturnStmt(typedInt(1, 1, 1), 1, 1)}
	elseBody := []ast.Stmt{ast.NewReturnStmt(typedInt(2, 1, 1), 1, 1)}
	fn := ast.NewFunctionStmt("f", nil, types.Int,
		[]ast.Stmt{ast.NewIfStmt(cond, thenBody, elseBody, 1, 1)}, 1, 1)

	mod, err := Lower(&ast.Program{Statements: []ast.Stmt{fn}})
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	ins := mod.Functions[0].Instructions
	// LoadConstBool(true), JumpIfFalse(5), LoadConstInt(1), Return, Jump(7), LoadConstInt(2), Return
	if ins[0].Op != OpLoadConstBool {
		t.Fatalf("ins[0] = %v, want LoadConstBool", ins[0])
	}
	jif := ins[1]
	if jif.Op != OpJumpIfFalse {
		t.Fatalf("ins[1] = %v, want JumpIfFalse", jif)
	}
	if jif.Target != 5 {
		t.Errorf("JumpIfFalse target = %d, want 5 (start of else)", jif.Target)
	}
	jmp := ins[4]
	if jmp.Op != OpJump {
		t.Fatalf("ins[4] = %v, want Jump", jmp)
	}
	if jmp.Target != len(ins) {
		t.Errorf("Jump target = %d, want %d (end of function)", jmp.Target, len(ins))
	}
}

func TestLowerWhileLoopsBack(t *testing.T) {
	cond := ast.NewBoolLiteral(true, 1, 1)
	ast.SetType(cond, types.Bool)
	body := []ast.Stmt{ast.NewExprStmt(typedInt(1, 1, 1), 1, 1)}
	fn := ast.NewFunctionStmt("f", nil, types.Void,
		[]ast.Stmt{ast.NewWhileStmt(cond, body, 1, 1)}, 1, 1)

	mod, err := Lower(&ast.Program{Statements: []ast.Stmt{fn}})
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	ins := mod.Functions[0].Instructions
	var jump Instruction
	for _, i := range ins {
		if i.Op == OpJump {
			jump = i
		}
	}
	if jump.Target != 0 {
		t.Errorf("loop Jump target = %d, want 0 (loop start)", jump.Target)
	}
}

// TestLowerIfWithoutElseAsLastStatementAddsFallback guards against
// under-counting reachability by the literal last-emitted opcode: an
// if-without-else whose then-body ends in Return still leaves the
// cond-false path falling off the end of the function, so a fallback
// Return must follow, and JumpIfFalse's target must stay within the
// instruction stream.
func TestLowerIfWithoutElseAsLastStatementAddsFallback(t *testing.T) {
	cond := ast.NewBoolLiteral(true, 1, 1)
	ast.SetType(cond, types.Bool)
	thenBody := []ast.Stmt{ast.NewReturnStmt(typedInt(1, 1, 1), 1, 1)}
	fn := ast.NewFunctionStmt("f", nil, types.Int,
		[]ast.Stmt{ast.NewIfStmt(cond, thenBody, nil, 1, 1)}, 1, 1)

	mod, err := Lower(&ast.Program{Statements: []ast.Stmt{fn}})
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	ins := mod.Functions[0].Instructions
	want := []Instruction{
		LoadConstBool(true), JumpIfFalse(4), LoadConstInt(1), Return(),
		LoadConstInt(0), Return(),
	}
	assertInstructions(t, ins, want)
	if ins[1].Target > len(ins) {
		t.Fatalf("JumpIfFalse target %d out of range (len %d)", ins[1].Target, len(ins))
	}
}

// TestLowerWhileAsLastStatementAddsFallback guards the same class of
// bug for a trailing while loop: the loop's own last instruction is a
// backward Jump, which must not be mistaken for a function terminator.
func TestLowerWhileAsLastStatementAddsFallback(t *testing.T) {
	cond := ast.NewBoolLiteral(false, 1, 1)
	ast.SetType(cond, types.Bool)
	body := []ast.Stmt{ast.NewExprStmt(typedInt(1, 1, 1), 1, 1)}
	fn := ast.NewFunctionStmt("f", nil, types.Int,
		[]ast.Stmt{ast.NewWhileStmt(cond, body, 1, 1)}, 1, 1)

	mod, err := Lower(&ast.Program{Statements: []ast.Stmt{fn}})
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	ins := mod.Functions[0].Instructions
	last := ins[len(ins)-1]
	if last.Op != OpReturn {
		t.Fatalf("last instruction = %v, want a fallback Return", last)
	}
	secondToLast := ins[len(ins)-2]
	if secondToLast.Op != OpLoadConstInt || secondToLast.Int != 0 {
		t.Fatalf("instruction before fallback Return = %v, want LoadConstInt(0)", secondToLast)
	}
}

// TestLowerIfElseBothBranchesFallThroughAddsFallback: when neither
// branch of a trailing if/else ends in Return, the if/else as a whole
// falls through and needs the same fallback.
func TestLowerIfElseBothBranchesFallThroughAddsFallback(t *testing.T) {
	cond := ast.NewBoolLiteral(true, 1, 1)
	ast.SetType(cond, types.Bool)
	thenBody := []ast.Stmt{ast.NewExprStmt(typedInt(1, 1, 1), 1, 1)}
	elseBody := []ast.Stmt{ast.NewExprStmt(typedInt(2, 1, 1), 1, 1)}
	fn := ast.NewFunctionStmt("f", nil, types.Int,
		[]ast.Stmt{ast.NewIfStmt(cond, thenBody, elseBody, 1, 1)}, 1, 1)

	mod, err := Lower(&ast.Program{Statements: []ast.Stmt{fn}})
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	ins := mod.Functions[0].Instructions
	last := ins[len(ins)-1]
	if last.Op != OpReturn {
		t.Fatalf("last instruction = %v, want a fallback Return", last)
	}
}

func TestLowerStdlibCallVsUserCall(t *testing.T) {
	printCall := ast.NewCallExpr("print", []ast.Expr{typedInt(1, 1, 1)}, 1, 1)
	userCall := ast.NewCallExpr("helper", nil, 1, 1)
	fn := ast.NewFunctionStmt("f", nil, types.Void, []ast.Stmt{
		ast.NewExprStmt(printCall, 1, 1),
		ast.NewExprStmt(userCall, 1, 1),
	}, 1, 1)

	mod, err := Lower(&ast.Program{Statements: []ast.Stmt{fn}})
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	ins := mod.Functions[0].Instructions
	if ins[1].Op != OpCallStd || ins[1].Text != "print" {
		t.Errorf("expected CallStd(print), got %v", ins[1])
	}
	if ins[3].Op != OpCall || ins[3].Text != "helper" {
		t.Errorf("expected Call(helper), got %v", ins[3])
	}
}

func TestLowerExtraStdlibLowersToCallStd(t *testing.T) {
	call := ast.NewCallExpr("notify", []ast.Expr{typedInt(1, 1, 1)}, 1, 1)
	fn := ast.NewFunctionStmt("f", nil, types.Void,
		[]ast.Stmt{ast.NewExprStmt(call, 1, 1)}, 1, 1)

	mod, err := Lower(&ast.Program{Statements: []ast.Stmt{fn}}, "notify")
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	ins := mod.Functions[0].Instructions
	if ins[1].Op != OpCallStd || ins[1].Text != "notify" {
		t.Errorf("expected CallStd(notify), got %v", ins[1])
	}
}

func assertInstructions(t *testing.T, got, want []Instruction) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("instruction count = %d, want %d\n got: %v\nwant: %v", len(got), len(want), got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("instr[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
