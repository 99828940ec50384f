// Package wat emits WebAssembly Text (WAT) from an optimized IR
// module (spec §4.7). The emitter preserves instruction order and
// introduces only the `block`/`br_if` scaffolding WAT's structured
// control flow requires for the guaranteed control-flow subset
// (straight-line code, forward conditional skips, and single-level
// loops; spec §9).
package wat

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/astrixa-lang/astrixa/internal/ir"
)

// Emit renders mod as a complete WAT module: imports first (one per
// distinct CallStd name, spec §4.7 step 2), then one function
// definition immediately followed by its export for every IR function.
func Emit(mod *ir.Module) (string, error) {
	var sb strings.Builder
	sb.WriteString("(module\n")

	names := mod.StdlibNames()
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&sb, "  (import \"env\" %q (func $%s (param i32)))\n", name, name)
	}

	for _, fn := range mod.Functions {
		body, err := emitFunctionBody(fn)
		if err != nil {
			return "", fmt.Errorf("wat: function %q: %w", fn.Name, err)
		}
		sb.WriteString("  (func $")
		sb.WriteString(fn.Name)
		for _, p := range fn.Params {
			fmt.Fprintf(&sb, " (param $%s i32)", p.Name)
		}
		sb.WriteString(" (result i32)\n")
		sb.WriteString(body)
		sb.WriteString("  )\n")
		fmt.Fprintf(&sb, "  (export %q (func $%s))\n", fn.Name, fn.Name)
	}

	sb.WriteString(")\n")
	return sb.String(), nil
}

// emitFunctionBody renders one function's instructions. Every
// Jump/JumpIfFalse in the guaranteed subset either skips forward (past
// a then-body, an else-body, or a `while` body on exit), closed by a
// `block` that ends at the target, or loops back to the instruction
// that begins a `while`, opened by a `loop` that starts at the target.
// An `if`/`else` gets two nested blocks and a `while` a loop with a
// block inside it; the `br`/`br_if` depth is counted through them.
func emitFunctionBody(fn *ir.Function) (string, error) {
	var sb strings.Builder
	locals := localNames(fn)
	for _, name := range locals {
		fmt.Fprintf(&sb, "    (local $%s i32)\n", name)
	}

	blocks := structureBlocks(fn.Instructions)
	emitRange(&sb, fn.Instructions, blocks, nil, 0, len(fn.Instructions), 2)
	return sb.String(), nil
}

// scopeLabel is one open block/loop scope while emitting a function
// body. label is the instruction index a `br 0` issued inside this
// scope would land on: a block's label is its end (its exit), a
// loop's label is its start (back to the top).
type scopeLabel struct {
	label  int
	isLoop bool
}

// branchDepth finds how many enclosing scopes (innermost first) must
// be exited to reach the scope whose label equals target, as the WAT
// `br`/`br_if` depth operand. Returns false if no open scope matches,
// which the guaranteed lowering subset never produces.
func branchDepth(scopes []scopeLabel, target int) (int, bool) {
	for depth, i := 0, len(scopes)-1; i >= 0; depth, i = depth+1, i-1 {
		if scopes[i].label == target {
			return depth, true
		}
	}
	return 0, false
}

// localNames returns the set of variable names StoreVar'd or LoadVar'd
// in fn that are not already parameters, in first-appearance order, so
// the emitter can declare WAT locals for them.
func localNames(fn *ir.Function) []string {
	isParam := map[string]bool{}
	for _, p := range fn.Params {
		isParam[p.Name] = true
	}
	seen := map[string]bool{}
	var names []string
	for _, ins := range fn.Instructions {
		if ins.Op != ir.OpLoadVar && ins.Op != ir.OpStoreVar {
			continue
		}
		if isParam[ins.Text] || seen[ins.Text] {
			continue
		}
		seen[ins.Text] = true
		names = append(names, ins.Text)
	}
	return names
}

// blockSpan marks [start, end) of instructions that a structured
// `block` (for a forward skip) or `loop` (for a backward jump) must
// wrap so that a `br`/`br_if` at depth 0 reaches the right target.
type blockSpan struct {
	start, end int
	isLoop     bool
}

// structureBlocks scans the jump graph and produces one blockSpan per
// JumpIfFalse/Jump pair or loop, ordered widest (outermost) first so
// that emitRange opens a parent before the spans nested in it. This covers exactly the guaranteed subset described
// in spec §9: forward skips that land at or before the function's own
// end, and single-level backward loops.
func structureBlocks(instrs []ir.Instruction) []blockSpan {
	var spans []blockSpan
	for i, ins := range instrs {
		switch ins.Op {
		case ir.OpJumpIfFalse:
			t := ins.Target
			if t <= i {
				continue
			}
			spans = append(spans, blockSpan{start: i, end: t, isLoop: false})
			// An `if` with an `else` lowers to JumpIfFalse(elseStart)
			// immediately followed by the then-body ending in an
			// unconditional forward Jump(afterElse) at elseStart-1. That
			// Jump needs its own enclosing span, nested OUTSIDE this one
			// and sharing its start, so branching out of it skips the
			// whole else-body too.
			if t-1 > i && instrs[t-1].Op == ir.OpJump && instrs[t-1].Target > t-1 {
				spans = append(spans, blockSpan{start: i, end: instrs[t-1].Target, isLoop: false})
			}
		case ir.OpJump:
			if ins.Target <= i {
				spans = append(spans, blockSpan{start: ins.Target, end: i + 1, isLoop: true})
			}
		}
	}
	// Widest spans first so nested spans emit inside their parent.
	sort.SliceStable(spans, func(a, b int) bool {
		return (spans[a].end - spans[a].start) > (spans[b].end - spans[b].start)
	})
	return spans
}

// emitRange writes instrs[from:to], opening a `block`/`loop` for every
// span that starts within the range and recursing into its body with
// that scope pushed onto scopes, so nested Jump/JumpIfFalse targets
// resolve to the correct relative branch depth.
func emitRange(sb *strings.Builder, instrs []ir.Instruction, spans []blockSpan, scopes []scopeLabel, from, to, indent int) {
	pad := strings.Repeat("  ", indent)
	i := from
	for i < to {
		if span, idx, ok := spanStartingAt(spans, i); ok && span.end <= to {
			kw := "block"
			label := span.end
			if span.isLoop {
				kw = "loop"
				label = span.start
			}
			fmt.Fprintf(sb, "%s(%s\n", pad, kw)
			remaining := append(append([]blockSpan{}, spans[:idx]...), spans[idx+1:]...)
			innerScopes := append(append([]scopeLabel{}, scopes...), scopeLabel{label: label, isLoop: span.isLoop})
			emitRange(sb, instrs, remaining, innerScopes, span.start, span.end, indent+1)
			fmt.Fprintf(sb, "%s)\n", pad)
			i = span.end
			continue
		}
		emitOne(sb, instrs[i], pad, scopes)
		i++
	}
}

func spanStartingAt(spans []blockSpan, i int) (blockSpan, int, bool) {
	for idx, s := range spans {
		if s.start == i {
			return s, idx, true
		}
	}
	return blockSpan{}, -1, false
}

func emitOne(sb *strings.Builder, ins ir.Instruction, pad string, scopes []scopeLabel) {
	switch ins.Op {
	case ir.OpLoadConstInt:
		fmt.Fprintf(sb, "%si32.const %d\n", pad, ins.Int)
	case ir.OpLoadConstFloat:
		fmt.Fprintf(sb, "%sf32.const %s\n", pad, strconv.FormatFloat(ins.Float, 'g', -1, 32))
	case ir.OpLoadConstBool:
		v := 0
		if ins.Bool {
			v = 1
		}
		fmt.Fprintf(sb, "%si32.const %d\n", pad, v)
	case ir.OpLoadConstString:
		fmt.Fprintf(sb, "%s;; %q\n", pad, ins.Text)
	case ir.OpLoadVar:
		fmt.Fprintf(sb, "%slocal.get $%s\n", pad, ins.Text)
	case ir.OpStoreVar:
		fmt.Fprintf(sb, "%slocal.set $%s\n", pad, ins.Text)
	case ir.OpAdd:
		fmt.Fprintf(sb, "%si32.add\n", pad)
	case ir.OpSub:
		fmt.Fprintf(sb, "%si32.sub\n", pad)
	case ir.OpMul:
		fmt.Fprintf(sb, "%si32.mul\n", pad)
	case ir.OpDiv:
		fmt.Fprintf(sb, "%si32.div_s\n", pad)
	case ir.OpMod:
		fmt.Fprintf(sb, "%si32.rem_s\n", pad)
	case ir.OpEq:
		fmt.Fprintf(sb, "%si32.eq\n", pad)
	case ir.OpNe:
		fmt.Fprintf(sb, "%si32.ne\n", pad)
	case ir.OpLt:
		fmt.Fprintf(sb, "%si32.lt_s\n", pad)
	case ir.OpLe:
		fmt.Fprintf(sb, "%si32.le_s\n", pad)
	case ir.OpGt:
		fmt.Fprintf(sb, "%si32.gt_s\n", pad)
	case ir.OpGe:
		fmt.Fprintf(sb, "%si32.ge_s\n", pad)
	case ir.OpAnd:
		fmt.Fprintf(sb, "%si32.and\n", pad)
	case ir.OpOr:
		fmt.Fprintf(sb, "%si32.or\n", pad)
	case ir.OpNot:
		fmt.Fprintf(sb, "%si32.const 1\n%si32.xor\n", pad, pad)
	case ir.OpJump:
		depth, _ := branchDepth(scopes, ins.Target)
		fmt.Fprintf(sb, "%sbr %d\n", pad, depth)
	case ir.OpJumpIfFalse:
		depth, _ := branchDepth(scopes, ins.Target)
		fmt.Fprintf(sb, "%si32.eqz\n%sbr_if %d\n", pad, pad, depth)
	case ir.OpCall:
		fmt.Fprintf(sb, "%scall $%s\n", pad, ins.Text)
	case ir.OpCallStd:
		fmt.Fprintf(sb, "%scall $%s\n", pad, ins.Text)
	case ir.OpReturn:
		fmt.Fprintf(sb, "%sreturn\n", pad)
	case ir.OpPop:
		fmt.Fprintf(sb, "%sdrop\n", pad)
	case ir.OpDup:
		// Not demonstrably produced by lowering (spec §9); emit nothing.
	case ir.OpNop:
		// omitted
	}
}
