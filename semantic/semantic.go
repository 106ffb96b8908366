// Package semantic implements the semantic pass: offset assignment,
// operand resolution, type checking, constant folding and the
// divide/modulo-by-zero and RET-type checks of spec.md §4.5.
//
// Grounded on original_source/Conversation.c's semanticAnalysis, with
// its two known bugs deliberately not carried forward (see spec.md §9):
// literal and temporary operands are resolved without requiring a
// matching symtab entry up front, and an empty RET operand is treated
// as "no value" rather than looked up as a symbol name.
package semantic

import (
	"errors"
	"strconv"

	"github.com/jpeterson/triac/quad"
	"github.com/jpeterson/triac/symtab"
)

// Errors raised by Analyze. These are the "Semantic" category of
// spec.md §7.
var (
	ErrTypeMismatch         = errors.New("Type mismatch")
	ErrDivideByZero         = errors.New("Divide by zero")
	ErrInvalidReturnType    = errors.New("Invalid return type")
	ErrInvalidQuadruple     = errors.New("Invalid quadruple")
	ErrUndeclaredIdentifier = errors.New("Undeclared identifier")
)

// operand describes one resolved quadruple argument: its static type
// and, when known at compile time, its folded value.
type operand struct {
	typ      symtab.Type
	wildcard bool // literal: compatible with either Int or Char
	value    int
	known    bool
}

// Analyze walks quads in emission order, assigning offsets to every
// DEC'd symbol and resolving, type-checking and constant-folding every
// other quadruple's operands. Temporaries are declared into symbols the
// first time they are seen as a quadruple Result, since the grammar
// never emits a DEC for them.
func Analyze(symbols *symtab.Table, quads *quad.Buffer) error {
	offset := 0

	all := quads.All()
	for _, q := range all {
		switch {
		case q.Op == quad.Dec:
			if _, ok := symtab.ParseType(q.Arg1); !ok {
				return ErrInvalidQuadruple
			}
			idx, ok := symbols.Lookup(q.Result)
			if !ok {
				return ErrUndeclaredIdentifier
			}
			if err := symbols.SetOffset(idx, offset); err != nil {
				return err
			}
			offset += 4

		case q.Op == quad.Assign:
			rhs, err := resolve(symbols, q.Arg1, &offset)
			if err != nil {
				return err
			}
			lhs, err := resolveDeclared(symbols, q.Result)
			if err != nil {
				return err
			}
			if !compatible(lhs.typ, rhs) {
				return ErrTypeMismatch
			}
			if rhs.known {
				propagate(symbols, q.Result, rhs.value)
			}

		case q.Op.IsArithmetic():
			lhs, err := resolve(symbols, q.Arg1, &offset)
			if err != nil {
				return err
			}
			rhs, err := resolve(symbols, q.Arg2, &offset)
			if err != nil {
				return err
			}
			if !operandsAgree(lhs, rhs) {
				return ErrTypeMismatch
			}
			if (q.Op == quad.Div || q.Op == quad.Mod) && rhs.known && rhs.value == 0 {
				return ErrDivideByZero
			}

			if _, err := declareTemp(symbols, q.Result, &offset); err != nil {
				return err
			}
			if lhs.known && rhs.known {
				propagate(symbols, q.Result, fold(q.Op, lhs.value, rhs.value))
			}

		case q.Op.IsRelational():
			lhs, err := resolve(symbols, q.Arg1, &offset)
			if err != nil {
				return err
			}
			rhs, err := resolve(symbols, q.Arg2, &offset)
			if err != nil {
				return err
			}
			if !operandsAgree(lhs, rhs) {
				return ErrTypeMismatch
			}

		case q.Op == quad.Jmp:
			// nothing to resolve; Result already carries a patched
			// quadruple position.

		case q.Op == quad.Ret:
			// spec.md §4.5: a named, present RET operand must be Int or
			// Char; a bare `return;` carries no operand to check.
			if q.Arg1 == "" {
				continue
			}
			val, err := resolve(symbols, q.Arg1, &offset)
			if err != nil {
				return err
			}
			if !val.wildcard && val.typ != symtab.Int && val.typ != symtab.Char {
				return ErrInvalidReturnType
			}

		default:
			return ErrInvalidQuadruple
		}
	}

	return nil
}

// resolve classifies arg as a literal, a temporary (declaring it on
// first sight) or a declared variable, and returns its resolved type
// and, if statically known, its folded value.
func resolve(symbols *symtab.Table, arg string, offset *int) (operand, error) {
	if n, err := strconv.Atoi(arg); err == nil {
		return operand{wildcard: true, value: n, known: true}, nil
	}

	if idx, ok := symbols.Lookup(arg); ok {
		sym, err := symbols.Get(idx)
		if err != nil {
			return operand{}, err
		}
		// Folding here mirrors the original: a variable's last known
		// value is whatever the symbol table currently holds, zero
		// until some assignment has propagated into it.
		return operand{typ: sym.Type, value: sym.Value, known: true}, nil
	}

	// A temporary (t<n>) seen for the first time as an operand:
	// declarations always precede statements in this grammar, so every
	// variable is already in the table by the time a temporary operand
	// appears. Any other unknown name is undeclared.
	if len(arg) < 2 || arg[0] != 't' {
		return operand{}, ErrUndeclaredIdentifier
	}
	if _, err := strconv.Atoi(arg[1:]); err != nil {
		return operand{}, ErrUndeclaredIdentifier
	}
	return declareTemp(symbols, arg, offset)
}

// resolveDeclared requires name to already be a declared symbol (an
// assignment target is always a variable, never a bare literal).
func resolveDeclared(symbols *symtab.Table, name string) (operand, error) {
	idx, ok := symbols.Lookup(name)
	if !ok {
		return operand{}, ErrUndeclaredIdentifier
	}
	sym, err := symbols.Get(idx)
	if err != nil {
		return operand{}, err
	}
	return operand{typ: sym.Type}, nil
}

// declareTemp inserts name as a Temporary of type Int if it is not
// already present, and assigns it the next offset.
func declareTemp(symbols *symtab.Table, name string, offset *int) (operand, error) {
	if idx, ok := symbols.Lookup(name); ok {
		sym, err := symbols.Get(idx)
		if err != nil {
			return operand{}, err
		}
		return operand{typ: sym.Type, value: sym.Value, known: true}, nil
	}

	idx, err := symbols.Insert(name, symtab.Temporary, symtab.Int, 0)
	if err != nil {
		return operand{}, err
	}
	if err := symbols.SetOffset(idx, *offset); err != nil {
		return operand{}, err
	}
	*offset += 4
	return operand{typ: symtab.Int}, nil
}

// propagate writes a folded constant value into name's symbol entry so
// later quadruples can keep folding through it.
func propagate(symbols *symtab.Table, name string, value int) {
	if idx, ok := symbols.Lookup(name); ok {
		_ = symbols.UpdateValue(idx, value)
	}
}

// compatible reports whether rhs can feed a slot of type lhsType. A
// literal is wildcard-compatible with either Int or Char, mirroring
// the C-subset's usual integer-promotion rules; the original source's
// type check never actually reaches this case since it rejects
// literals outright (spec.md §9), so there is no original behavior to
// match here.
func compatible(lhsType symtab.Type, rhs operand) bool {
	if rhs.wildcard {
		return lhsType == symtab.Int || lhsType == symtab.Char
	}
	return lhsType == rhs.typ
}

// operandsAgree reports whether the two operands of a binary quadruple
// are type compatible; a literal on either side takes the other side's
// type.
func operandsAgree(a, b operand) bool {
	if a.wildcard {
		return compatible(b.typ, a)
	}
	return compatible(a.typ, b)
}

// fold evaluates a constant arithmetic quadruple.
func fold(op quad.Op, a, b int) int {
	switch op {
	case quad.Add:
		return a + b
	case quad.Sub:
		return a - b
	case quad.Mul:
		return a * b
	case quad.Div:
		return a / b
	case quad.Mod:
		return a % b
	default:
		return 0
	}
}
