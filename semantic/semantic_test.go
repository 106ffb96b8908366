package semantic

import (
	"errors"
	"testing"

	"github.com/jpeterson/triac/parser"
	"github.com/jpeterson/triac/quad"
	"github.com/jpeterson/triac/symtab"
)

func analyze(t *testing.T, src string) (*symtab.Table, *quad.Buffer, error) {
	t.Helper()
	syms := symtab.New()
	quads := quad.New()
	if err := parser.New(src, syms, quads).Parse(); err != nil {
		t.Fatalf("unexpected parse error: %s", err)
	}
	return syms, quads, Analyze(syms, quads)
}

func TestOffsetAssignmentFollowsDeclarationOrder(t *testing.T) {
	syms, _, err := analyze(t, "int a; int b; char c;")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	a, _ := syms.GetByName("a")
	b, _ := syms.GetByName("b")
	c, _ := syms.GetByName("c")
	if a.Offset != 0 || b.Offset != 4 || c.Offset != 8 {
		t.Errorf("expected offsets 0,4,8 got %d,%d,%d", a.Offset, b.Offset, c.Offset)
	}
}

func TestTemporariesAreDeclaredAndOffset(t *testing.T) {
	syms, _, err := analyze(t, "int a; int b; a = a + b;")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	tmp, ok := syms.GetByName("t1")
	if !ok {
		t.Fatalf("expected a temporary t1 to be declared")
	}
	if tmp.Kind != symtab.Temporary {
		t.Errorf("expected t1 to be a Temporary, got %v", tmp.Kind)
	}
	if tmp.Offset != 8 {
		t.Errorf("expected t1 to be offset 8 (after a and b), got %d", tmp.Offset)
	}
}

func TestConstantFoldingPropagatesThroughAssignment(t *testing.T) {
	syms, _, err := analyze(t, "int a; int b; a = 2; b = a + 3;")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	b, _ := syms.GetByName("b")
	if b.Value != 5 {
		t.Errorf("expected b folded to 5, got %d", b.Value)
	}
}

func TestDivideByZeroIsFatal(t *testing.T) {
	_, _, err := analyze(t, "int a; int b; a = 1; b = a / 0;")
	if err != ErrDivideByZero {
		t.Errorf("expected ErrDivideByZero, got %v", err)
	}
}

func TestModuloByZeroIsFatal(t *testing.T) {
	_, _, err := analyze(t, "int a; int b; a = 1; b = a % 0;")
	if err != ErrDivideByZero {
		t.Errorf("expected ErrDivideByZero, got %v", err)
	}
}

func TestTypeMismatchOnAssignment(t *testing.T) {
	syms := symtab.New()
	quads := quad.New()
	syms.Insert("a", symtab.Variable, symtab.Int, 0)
	syms.Insert("b", symtab.Variable, symtab.Void, 0)
	quads.Emit(quad.Dec, "int", "", "a")
	quads.Emit(quad.Dec, "void", "", "b")
	quads.Emit(quad.Assign, "a", "", "b")

	if err := Analyze(syms, quads); err == nil {
		t.Fatalf("expected a type mismatch assigning int into a void symbol")
	}
}

func TestReturnAcceptsIntOrCharButNotVoid(t *testing.T) {
	_, _, err := analyze(t, "int a; return (a);")
	if err != nil {
		t.Fatalf("unexpected error on int return: %s", err)
	}

	syms := symtab.New()
	quads := quad.New()
	syms.Insert("v", symtab.Variable, symtab.Void, 0)
	quads.Emit(quad.Dec, "void", "", "v")
	quads.Emit(quad.Ret, "v", "", "")

	if err := Analyze(syms, quads); !errors.Is(err, ErrInvalidReturnType) {
		t.Errorf("expected ErrInvalidReturnType, got %v", err)
	}
}

func TestBareReturnNeedsNoOperand(t *testing.T) {
	_, _, err := analyze(t, "return;")
	if err != nil {
		t.Errorf("unexpected error: %s", err)
	}
}

func TestUndeclaredDecTargetIsFatal(t *testing.T) {
	syms := symtab.New()
	quads := quad.New()
	quads.Emit(quad.Dec, "int", "", "ghost")

	if err := Analyze(syms, quads); !errors.Is(err, ErrUndeclaredIdentifier) {
		t.Errorf("expected ErrUndeclaredIdentifier, got %v", err)
	}
}
