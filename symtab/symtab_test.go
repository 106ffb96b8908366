// symtab_test.go - simple test cases for our symbol table, in the
// style of the teacher's stack_test.go.
package symtab

import "testing"

func TestLookupMissing(t *testing.T) {
	s := New()

	if _, ok := s.Lookup("x"); ok {
		t.Errorf("expected lookup of 'x' to fail on an empty table")
	}
}

func TestInsertAndLookup(t *testing.T) {
	s := New()

	idx, err := s.Insert("x", Variable, Int, 0)
	if err != nil {
		t.Fatalf("unexpected error inserting 'x': %s", err)
	}
	if idx != 0 {
		t.Errorf("expected first insert to land at index 0, got %d", idx)
	}

	got, ok := s.Lookup("x")
	if !ok {
		t.Fatalf("expected lookup of 'x' to succeed")
	}
	if got != idx {
		t.Errorf("expected lookup to return %d, got %d", idx, got)
	}
}

func TestDuplicateDeclarationFails(t *testing.T) {
	s := New()

	if _, err := s.Insert("x", Variable, Int, 0); err != nil {
		t.Fatalf("unexpected error on first insert: %s", err)
	}
	if _, err := s.Insert("x", Variable, Int, 0); err == nil {
		t.Errorf("expected a duplicate declaration of 'x' to fail")
	}
}

// Insertion order equals declaration order equals offset order.
func TestOffsetMonotonicity(t *testing.T) {
	s := New()
	names := []string{"a", "b", "c"}

	for i, n := range names {
		idx, err := s.Insert(n, Variable, Int, 0)
		if err != nil {
			t.Fatalf("unexpected error inserting %q: %s", n, err)
		}
		if err := s.SetOffset(idx, i*4); err != nil {
			t.Fatalf("unexpected error setting offset: %s", err)
		}
	}

	for i, n := range names {
		sym, ok := s.GetByName(n)
		if !ok {
			t.Fatalf("expected %q to be present", n)
		}
		if sym.Offset != i*4 {
			t.Errorf("expected %q to have offset %d, got %d", n, i*4, sym.Offset)
		}
	}
}

func TestUpdateValueOutOfRange(t *testing.T) {
	s := New()

	if err := s.UpdateValue(0, 1); err != ErrInvalidSymbolIndex {
		t.Errorf("expected ErrInvalidSymbolIndex, got %v", err)
	}
	if err := s.SetOffset(-1, 1); err != ErrInvalidSymbolIndex {
		t.Errorf("expected ErrInvalidSymbolIndex, got %v", err)
	}
}

func TestParseType(t *testing.T) {
	tests := map[string]Type{"int": Int, "char": Char, "void": Void}
	for lit, want := range tests {
		got, ok := ParseType(lit)
		if !ok || got != want {
			t.Errorf("ParseType(%q) = (%v, %v), want (%v, true)", lit, got, ok, want)
		}
	}

	if _, ok := ParseType("float"); ok {
		t.Errorf("did not expect 'float' to parse as a Type")
	}
}
