// Package ir defines Astrixa's linear, stack-based intermediate
// representation: a flat instruction sequence per function, with no
// positional information (spec §3). This is the representation the
// optimizer rewrites and the WAT emitter reads.
package ir

import (
	"fmt"
	"strconv"

	"github.com/astrixa-lang/astrixa/internal/types"
)

// Op is an IR opcode. The set is closed; every member is named in
// spec §3 "IR instruction".
type Op int

const (
	// Constants.
	OpLoadConstInt Op = iota
	OpLoadConstFloat
	OpLoadConstBool
	OpLoadConstString

	// Variables.
	OpLoadVar
	OpStoreVar

	// Arithmetic.
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod

	// Comparison.
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe

	// Logical.
	OpAnd
	OpOr
	OpNot

	// Control.
	OpJump
	OpJumpIfFalse
	OpReturn

	// Calls.
	OpCall
	OpCallStd

	// Stack housekeeping.
	OpPop
	OpDup
	OpNop
)

var opNames = [...]string{
	OpLoadConstInt: "LoadConstInt", OpLoadConstFloat: "LoadConstFloat",
	OpLoadConstBool: "LoadConstBool", OpLoadConstString: "LoadConstString",
	OpLoadVar: "LoadVar", OpStoreVar: "StoreVar",
	OpAdd: "Add", OpSub: "Sub", OpMul: "Mul", OpDiv: "Div", OpMod: "Mod",
	OpEq: "Eq", OpNe: "Ne", OpLt: "Lt", OpLe: "Le", OpGt: "Gt", OpGe: "Ge",
	OpAnd: "And", OpOr: "Or", OpNot: "Not",
	OpJump: "Jump", OpJumpIfFalse: "JumpIfFalse", OpReturn: "Return",
	OpCall: "Call", OpCallStd: "CallStd",
	OpPop: "Pop", OpDup: "Dup", OpNop: "Nop",
}

func (o Op) String() string {
	if int(o) >= 0 && int(o) < len(opNames) {
		return opNames[o]
	}
	return "UNKNOWN"
}

// Instruction is a single IR op together with whatever operand it
// carries. Only the fields relevant to Op are meaningful — a tagged
// union flattened onto one struct, since Astrixa's instruction set is
// small and fixed.
type Instruction struct {
	Text   string // LoadConstString text; LoadVar/StoreVar/Call/CallStd name
	Op     Op
	Int    int64   // LoadConstInt value
	Float  float64 // LoadConstFloat value
	Bool   bool    // LoadConstBool value
	Target int     // Jump/JumpIfFalse target instruction index
	Arity  int     // Call argument count
}

func LoadConstInt(n int64) Instruction    { return Instruction{Op: OpLoadConstInt, Int: n} }
func LoadConstFloat(f float64) Instruction { return Instruction{Op: OpLoadConstFloat, Float: f} }
func LoadConstBool(b bool) Instruction    { return Instruction{Op: OpLoadConstBool, Bool: b} }
func LoadConstString(s string) Instruction { return Instruction{Op: OpLoadConstString, Text: s} }
func LoadVar(name string) Instruction      { return Instruction{Op: OpLoadVar, Text: name} }
func StoreVar(name string) Instruction     { return Instruction{Op: OpStoreVar, Text: name} }
func Jump(target int) Instruction         { return Instruction{Op: OpJump, Target: target} }
func JumpIfFalse(target int) Instruction  { return Instruction{Op: OpJumpIfFalse, Target: target} }
func Call(name string, arity int) Instruction {
	return Instruction{Op: OpCall, Text: name, Arity: arity}
}
func CallStd(name string) Instruction { return Instruction{Op: OpCallStd, Text: name} }

func simple(op Op) Instruction { return Instruction{Op: op} }

func Add() Instruction    { return simple(OpAdd) }
func Sub() Instruction    { return simple(OpSub) }
func Mul() Instruction    { return simple(OpMul) }
func Div() Instruction    { return simple(OpDiv) }
func Mod() Instruction    { return simple(OpMod) }
func Eq() Instruction     { return simple(OpEq) }
func Ne() Instruction     { return simple(OpNe) }
func Lt() Instruction     { return simple(OpLt) }
func Le() Instruction     { return simple(OpLe) }
func Gt() Instruction     { return simple(OpGt) }
func Ge() Instruction     { return simple(OpGe) }
func And() Instruction    { return simple(OpAnd) }
func Or() Instruction     { return simple(OpOr) }
func Not() Instruction    { return simple(OpNot) }
func Return() Instruction { return simple(OpReturn) }
func Pop() Instruction    { return simple(OpPop) }
func Dup() Instruction    { return simple(OpDup) }
func Nop() Instruction    { return simple(OpNop) }

// IsTerminator reports whether ins ends straight-line execution:
// Return or an unconditional Jump. JumpIfFalse is not a terminator
// (spec §4.6(b)).
func (ins Instruction) IsTerminator() bool {
	return ins.Op == OpReturn || ins.Op == OpJump
}

// String renders ins for disassembly/debug dumps.
func (ins Instruction) String() string {
	switch ins.Op {
	case OpLoadConstInt:
		return "LoadConstInt(" + strconv.FormatInt(ins.Int, 10) + ")"
	case OpLoadConstFloat:
		return "LoadConstFloat(" + strconv.FormatFloat(ins.Float, 'g', -1, 64) + ")"
	case OpLoadConstBool:
		return "LoadConstBool(" + strconv.FormatBool(ins.Bool) + ")"
	case OpLoadConstString:
		return fmt.Sprintf("LoadConstString(%q)", ins.Text)
	case OpLoadVar, OpStoreVar:
		return ins.Op.String() + "(" + ins.Text + ")"
	case OpJump, OpJumpIfFalse:
		return ins.Op.String() + "(" + strconv.Itoa(ins.Target) + ")"
	case OpCall:
		return "Call(" + ins.Text + ", " + strconv.Itoa(ins.Arity) + ")"
	case OpCallStd:
		return "CallStd(" + ins.Text + ")"
	default:
		return ins.Op.String()
	}
}

// Param is a function parameter lowered to an initial local
// (Open Question resolution (a), SPEC_FULL §4.1).
type Param struct {
	Name string
	Type types.Type
}

// Function is one IR function: a name, its instruction sequence, and
// the count of locals it declares (parameters plus `let` bindings).
// Jump/JumpIfFalse targets are zero-based indices into Instructions.
type Function struct {
	Name         string
	Params       []Param
	Instructions []Instruction
	ReturnType   types.Type
	LocalCount   int
}

// Module is an ordered list of IR functions. There are no module-level
// constants or globals (spec §3).
type Module struct {
	Functions []*Function
}

// StdlibNames returns the de-duplicated set of stdlib function names
// referenced anywhere in m via CallStd, in first-appearance order (the
// WAT emitter sorts them before synthesizing imports, spec §4.7).
func (m *Module) StdlibNames() []string {
	seen := map[string]bool{}
	var names []string
	for _, fn := range m.Functions {
		for _, ins := range fn.Instructions {
			if ins.Op == OpCallStd && !seen[ins.Text] {
				seen[ins.Text] = true
				names = append(names, ins.Text)
			}
		}
	}
	return names
}
