// Package codegen lowers a semantically-analyzed quadruple sequence to
// pseudo-MIPS assembly text, per the fixed per-quadruple emission table
// of spec.md §4.6.
//
// Grounded on original_source/Conversation.c's codeGeneration, with its
// undefined behavior on literal operands (spec.md §9) resolved by
// loading literals with LI instead of an LW against a nonexistent
// offset, and its raw label text replaced by the minted L<position>
// labels this package's jump targets actually carry.
package codegen

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jpeterson/triac/quad"
	"github.com/jpeterson/triac/symtab"
)

// ErrUnresolvedOperand is fatal when an operand name resolves to
// neither a numeric literal nor a symbol carrying an assigned offset -
// spec.md §4.6's "All operand names must resolve to a symbol with an
// offset at this stage; otherwise fatal."
var ErrUnresolvedOperand = errors.New("Invalid quadruple")

var branchMnemonic = map[quad.Op]string{
	quad.Lt: "BLT",
	quad.Le: "BLE",
	quad.Gt: "BGT",
	quad.Ge: "BGE",
	quad.Eq: "BEQ",
	quad.Ne: "BNE",
}

var arithMnemonic = map[quad.Op]string{
	quad.Add: "ADD",
	quad.Sub: "SUB",
	quad.Mul: "MUL",
	quad.Div: "DIV",
	quad.Mod: "REM",
}

// Generate lowers quads to assembly text, in quadruple order. Every
// quadruple whose position is the target of some jump gets an L<pos>
// label emitted immediately before its instructions.
func Generate(symbols *symtab.Table, quads *quad.Buffer) (string, error) {
	all := quads.All()
	targets := jumpTargets(all)

	var out strings.Builder
	for pos, q := range all {
		if targets[pos] {
			fmt.Fprintf(&out, "L%d:\n", pos)
		}

		lines, err := lower(symbols, q)
		if err != nil {
			return "", err
		}
		for _, line := range lines {
			out.WriteString(line)
			out.WriteByte('\n')
		}
	}

	// A branch whose target is the position just past the last
	// quadruple falls through to program end (e.g. a while loop that
	// is the final statement); still mint its label so the branch
	// above does not reference an undefined name.
	if targets[len(all)] {
		fmt.Fprintf(&out, "L%d:\n", len(all))
	}

	return out.String(), nil
}

// jumpTargets collects every quadruple position referenced as a
// branch or jump Result, so Generate knows where to mint labels.
func jumpTargets(all []quad.Quad) map[int]bool {
	targets := make(map[int]bool)
	for _, q := range all {
		if q.Op == quad.Jmp || q.Op.IsRelational() {
			if q.Result == "" {
				continue
			}
			if pos, err := strconv.Atoi(q.Result); err == nil {
				targets[pos] = true
			}
		}
	}
	return targets
}

func lower(symbols *symtab.Table, q quad.Quad) ([]string, error) {
	switch {
	case q.Op == quad.Dec:
		return []string{"SUB $sp, $sp, 4"}, nil

	case q.Op == quad.Assign:
		src, err := loadOperand(symbols, "$t0", q.Arg1)
		if err != nil {
			return nil, err
		}
		dst, err := offsetOf(symbols, q.Result)
		if err != nil {
			return nil, err
		}
		return append(src, fmt.Sprintf("SW $t0, %d($sp)", dst)), nil

	case q.Op.IsArithmetic():
		lhs, err := loadOperand(symbols, "$t0", q.Arg1)
		if err != nil {
			return nil, err
		}
		rhs, err := loadOperand(symbols, "$t1", q.Arg2)
		if err != nil {
			return nil, err
		}
		lines := append(lhs, rhs...)
		lines = append(lines, fmt.Sprintf("%s $t2, $t0, $t1", arithMnemonic[q.Op]))
		return lines, nil

	case q.Op.IsRelational():
		lhs, err := loadOperand(symbols, "$t0", q.Arg1)
		if err != nil {
			return nil, err
		}
		rhs, err := loadOperand(symbols, "$t1", q.Arg2)
		if err != nil {
			return nil, err
		}
		target, err := jumpLabel(q.Result)
		if err != nil {
			return nil, err
		}
		lines := append(lhs, rhs...)
		lines = append(lines, fmt.Sprintf("%s $t0, $t1, %s", branchMnemonic[q.Op], target))
		return lines, nil

	case q.Op == quad.Jmp:
		target, err := jumpLabel(q.Result)
		if err != nil {
			return nil, err
		}
		return []string{fmt.Sprintf("J %s", target)}, nil

	case q.Op == quad.Ret:
		if q.Arg1 == "" {
			return []string{"JR $ra"}, nil
		}
		src, err := loadOperand(symbols, "$v0", q.Arg1)
		if err != nil {
			return nil, err
		}
		return append(src, "JR $ra"), nil

	default:
		return nil, ErrUnresolvedOperand
	}
}

func jumpLabel(result string) (string, error) {
	if _, err := strconv.Atoi(result); err != nil {
		return "", ErrUnresolvedOperand
	}
	return "L" + result, nil
}

// loadOperand returns the instruction(s) that load arg's value into
// register reg. A numeric literal is loaded immediate; a symbol name
// must already carry an offset.
func loadOperand(symbols *symtab.Table, reg, arg string) ([]string, error) {
	if _, err := strconv.Atoi(arg); err == nil {
		return []string{fmt.Sprintf("LI %s, %s", reg, arg)}, nil
	}

	off, err := offsetOf(symbols, arg)
	if err != nil {
		return nil, err
	}
	return []string{fmt.Sprintf("LW %s, %d($sp)", reg, off)}, nil
}

func offsetOf(symbols *symtab.Table, name string) (int, error) {
	sym, ok := symbols.GetByName(name)
	if !ok || sym.Offset < 0 {
		return 0, ErrUnresolvedOperand
	}
	return sym.Offset, nil
}
