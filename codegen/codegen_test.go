package codegen

import (
	"strings"
	"testing"

	"github.com/jpeterson/triac/parser"
	"github.com/jpeterson/triac/quad"
	"github.com/jpeterson/triac/semantic"
	"github.com/jpeterson/triac/symtab"
)

func generate(t *testing.T, src string) string {
	t.Helper()
	syms := symtab.New()
	quads := quad.New()
	if err := parser.New(src, syms, quads).Parse(); err != nil {
		t.Fatalf("unexpected parse error: %s", err)
	}
	if err := semantic.Analyze(syms, quads); err != nil {
		t.Fatalf("unexpected semantic error: %s", err)
	}
	out, err := Generate(syms, quads)
	if err != nil {
		t.Fatalf("unexpected codegen error: %s", err)
	}
	return out
}

func TestDeclarationEmitsStackAdjustment(t *testing.T) {
	out := generate(t, "int x;")
	if strings.TrimSpace(out) != "SUB $sp, $sp, 4" {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestAssignmentOfLiteralUsesImmediateLoad(t *testing.T) {
	out := generate(t, "int x; x = 3;")
	if !strings.Contains(out, "LI $t0, 3") {
		t.Errorf("expected an immediate load of the literal, got:\n%s", out)
	}
	if !strings.Contains(out, "SW $t0, 0($sp)") {
		t.Errorf("expected a store to x's offset, got:\n%s", out)
	}
}

func TestArithmeticLowersToLoadLoadOp(t *testing.T) {
	out := generate(t, "int a; int b; int c; c = a + b;")
	if !strings.Contains(out, "ADD $t2, $t0, $t1") {
		t.Errorf("expected an ADD instruction, got:\n%s", out)
	}
}

func TestReturnWithValueLoadsIntoV0(t *testing.T) {
	out := generate(t, "int x; return (x);")
	if !strings.Contains(out, "LW $v0, 0($sp)") {
		t.Errorf("expected RET to load x into $v0, got:\n%s", out)
	}
	if !strings.HasSuffix(strings.TrimSpace(out), "JR $ra") {
		t.Errorf("expected the listing to end with JR $ra, got:\n%s", out)
	}
}

func TestBareReturnIsJustJR(t *testing.T) {
	out := generate(t, "return;")
	if strings.TrimSpace(out) != "JR $ra" {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestIfElseEmitsLabelsAtBranchTargets(t *testing.T) {
	out := generate(t, "int x; if (x < 1) x = 1; else x = 2;")
	if !strings.Contains(out, "BLT $t0, $t1, L") {
		t.Errorf("expected a BLT branch, got:\n%s", out)
	}
	if !strings.Contains(out, "J L") {
		t.Errorf("expected an unconditional jump, got:\n%s", out)
	}
	// at least one L<n>: label line must mark a jump target.
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "L") && strings.HasSuffix(line, ":") {
			return
		}
	}
	t.Errorf("expected at least one L<n>: label line, got:\n%s", out)
}

func TestWhileLoopJumpsBackToCondition(t *testing.T) {
	out := generate(t, "int x; while (x < 10) x = x + 1;")
	if !strings.Contains(out, "J L1") {
		t.Errorf("expected a back-jump to L1 (the condition), got:\n%s", out)
	}
}
