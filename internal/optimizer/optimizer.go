// Package optimizer implements Astrixa's two fixed IR optimization
// passes: constant folding and dead-code elimination (spec §4.6). Both
// passes are pure functions over a single ir.Function; neither passes
// looks across function boundaries.
package optimizer

import "github.com/astrixa-lang/astrixa/internal/ir"

// Optimize runs both fixed passes over fn and returns the rewritten
// function. fn itself is not mutated; a new Function value is
// returned.
func Optimize(fn *ir.Function) *ir.Function {
	return OptimizePasses(fn, true, true)
}

// OptimizePasses runs the pass pipeline over fn with each pass
// independently toggleable, per an astrixa.yaml project config.
func OptimizePasses(fn *ir.Function, constantFoldEnabled, deadCodeElimEnabled bool) *ir.Function {
	out := fn
	if constantFoldEnabled {
		out = constantFold(out)
	}
	if deadCodeElimEnabled {
		out = eliminateDeadCode(out)
	}
	return out
}

// OptimizeModule runs Optimize over every function in mod.
func OptimizeModule(mod *ir.Module) *ir.Module {
	return OptimizeModulePasses(mod, true, true)
}

// OptimizeModulePasses runs OptimizePasses over every function in mod.
func OptimizeModulePasses(mod *ir.Module, constantFoldEnabled, deadCodeElimEnabled bool) *ir.Module {
	out := &ir.Module{Functions: make([]*ir.Function, len(mod.Functions))}
	for i, fn := range mod.Functions {
		out.Functions[i] = OptimizePasses(fn, constantFoldEnabled, deadCodeElimEnabled)
	}
	return out
}

// constantFold folds arithmetic, comparison, and logical operations
// whose operands are both constant loads sitting immediately before
// the operator in the instruction stream. It never folds Div or Mod
// when the divisor is a compile-time zero, leaving the trap to happen
// at runtime instead (spec §4.6(a)).
func constantFold(fn *ir.Function) *ir.Function {
	var out []ir.Instruction

	for _, ins := range fn.Instructions {
		switch ins.Op {
		case ir.OpAdd, ir.OpSub, ir.OpMul, ir.OpDiv, ir.OpMod:
			if folded, ok := foldArith(out, ins.Op); ok {
				out = folded
				continue
			}
		case ir.OpEq, ir.OpNe, ir.OpLt, ir.OpLe, ir.OpGt, ir.OpGe:
			if folded, ok := foldCompare(out, ins.Op); ok {
				out = folded
				continue
			}
		case ir.OpAnd, ir.OpOr:
			if folded, ok := foldLogicalBinary(out, ins.Op); ok {
				out = folded
				continue
			}
		case ir.OpNot:
			if folded, ok := foldNot(out); ok {
				out = folded
				continue
			}
		}
		out = append(out, ins)
	}

	return &ir.Function{
		Name:         fn.Name,
		Params:       fn.Params,
		ReturnType:   fn.ReturnType,
		LocalCount:   fn.LocalCount,
		Instructions: out,
	}
}

// asIntConst returns the integer value of a constant-load instruction
// under the optimizer's integer-valued virtual stack (spec §4.6(a)):
// LoadConstInt contributes its value directly, LoadConstBool
// contributes 1/0.
func asIntConst(ins ir.Instruction) (int64, bool) {
	switch ins.Op {
	case ir.OpLoadConstInt:
		return ins.Int, true
	case ir.OpLoadConstBool:
		if ins.Bool {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

func twoIntConsts(out []ir.Instruction) (a, b int64, ok bool) {
	n := len(out)
	if n < 2 {
		return 0, 0, false
	}
	av, aok := asIntConst(out[n-2])
	bv, bok := asIntConst(out[n-1])
	if !aok || !bok {
		return 0, 0, false
	}
	return av, bv, true
}

func foldArith(out []ir.Instruction, op ir.Op) ([]ir.Instruction, bool) {
	a, b, ok := twoIntConsts(out)
	if !ok {
		return out, false
	}
	var result int64
	switch op {
	case ir.OpAdd:
		result = a + b
	case ir.OpSub:
		result = a - b
	case ir.OpMul:
		result = a * b
	case ir.OpDiv:
		if b == 0 {
			return out, false
		}
		result = a / b
	case ir.OpMod:
		if b == 0 {
			return out, false
		}
		result = a % b
	}
	return append(out[:len(out)-2], ir.LoadConstInt(result)), true
}

// foldCompare and foldLogicalBinary fold onto LoadConstInt(1)/LoadConstInt(0),
// not LoadConstBool: spec §4.6(a) folds comparisons as integer 1/0 on the
// same virtual stack used for arithmetic, matching the WAT i32 convention
// where Bool has no separate representation.
func foldCompare(out []ir.Instruction, op ir.Op) ([]ir.Instruction, bool) {
	a, b, ok := twoIntConsts(out)
	if !ok {
		return out, false
	}
	var result bool
	switch op {
	case ir.OpEq:
		result = a == b
	case ir.OpNe:
		result = a != b
	case ir.OpLt:
		result = a < b
	case ir.OpLe:
		result = a <= b
	case ir.OpGt:
		result = a > b
	case ir.OpGe:
		result = a >= b
	}
	return append(out[:len(out)-2], ir.LoadConstInt(boolToInt(result))), true
}

func foldLogicalBinary(out []ir.Instruction, op ir.Op) ([]ir.Instruction, bool) {
	a, b, ok := twoIntConsts(out)
	if !ok {
		return out, false
	}
	var result bool
	if op == ir.OpAnd {
		result = a != 0 && b != 0
	} else {
		result = a != 0 || b != 0
	}
	return append(out[:len(out)-2], ir.LoadConstInt(boolToInt(result))), true
}

func foldNot(out []ir.Instruction) ([]ir.Instruction, bool) {
	n := len(out)
	if n < 1 {
		return out, false
	}
	v, ok := asIntConst(out[n-1])
	if !ok {
		return out, false
	}
	return append(out[:n-1], ir.LoadConstInt(boolToInt(v == 0))), true
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// eliminateDeadCode removes instructions unreachable from the function
// entry point. Reachability, not textual position, decides what is
// dead: an instruction immediately following a Return or an
// unconditional Jump is only dead if nothing also branches to it, so
// the pass walks the control-flow graph rather than truncating after
// the first terminator it finds. JumpIfFalse is deliberately not
// treated as a terminator: both its fallthrough and its target are
// live (spec §4.6(b)).
func eliminateDeadCode(fn *ir.Function) *ir.Function {
	n := len(fn.Instructions)
	reachable := make([]bool, n)

	var visit func(i int)
	visit = func(i int) {
		if i < 0 || i >= n || reachable[i] {
			return
		}
		reachable[i] = true
		switch fn.Instructions[i].Op {
		case ir.OpJump:
			visit(fn.Instructions[i].Target)
		case ir.OpJumpIfFalse:
			visit(i + 1)
			visit(fn.Instructions[i].Target)
		case ir.OpReturn:
			// no fallthrough
		default:
			visit(i + 1)
		}
	}
	if n > 0 {
		visit(0)
	}

	remap := make([]int, n)
	kept := make([]ir.Instruction, 0, n)
	for i := 0; i < n; i++ {
		if reachable[i] {
			remap[i] = len(kept)
			kept = append(kept, fn.Instructions[i])
		} else {
			remap[i] = -1
		}
	}
	for i := range kept {
		if kept[i].Op == ir.OpJump || kept[i].Op == ir.OpJumpIfFalse {
			kept[i].Target = remap[kept[i].Target]
		}
	}

	return &ir.Function{
		Name:         fn.Name,
		Params:       fn.Params,
		ReturnType:   fn.ReturnType,
		LocalCount:   fn.LocalCount,
		Instructions: kept,
	}
}
