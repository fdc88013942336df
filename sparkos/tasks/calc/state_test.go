package calc

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
)

func checkConsistent(t *testing.T, st *State) {
	t.Helper()
	if got, want := st.Result().String(), Compute(st.Expression()).String(); got != want {
		t.Fatalf("result %q out of sync with expression %q (want %q)\n%s", got, st.Expression(), want, spew.Sdump(st))
	}
}

func TestAppendCharacterFilter(t *testing.T) {
	var st State
	for _, c := range "12+3" {
		if !st.AppendCharacter(c) {
			t.Fatalf("AppendCharacter(%q) rejected", c)
		}
	}
	for _, c := range "abc =%^xX_ \t\n" {
		before := st.Expression()
		if st.AppendCharacter(c) {
			t.Fatalf("AppendCharacter(%q) accepted", c)
		}
		if st.Expression() != before {
			t.Fatalf("AppendCharacter(%q) changed expression to %q", c, st.Expression())
		}
	}
	for _, c := range "×÷()." {
		if !st.AppendCharacter(c) {
			t.Fatalf("AppendCharacter(%q) rejected", c)
		}
	}
	if st.Expression() != "12+3×÷()." {
		t.Fatalf("expression=%q", st.Expression())
	}
	checkConsistent(t, &st)
}

func TestBackspace(t *testing.T) {
	var st State
	st.Backspace()
	if st.Expression() != "" {
		t.Fatalf("backspace on empty gave %q", st.Expression())
	}

	st.SetExpression("8×")
	st.Backspace()
	if st.Expression() != "8" {
		t.Fatalf("backspace removed a partial rune: %q", st.Expression())
	}
	checkConsistent(t, &st)
	st.Backspace()
	st.Backspace()
	if st.Expression() != "" || st.Result().Kind != ResultEmpty {
		t.Fatalf("state=%s", spew.Sdump(st))
	}
}

func TestMemory(t *testing.T) {
	var st State
	if _, ok := st.MemoryRecall(); ok {
		t.Fatal("memory should start unset")
	}
	if got := st.MemoryLabel(); got != "MEM: <unset>" {
		t.Fatalf("label=%q", got)
	}

	st.MemorySet(5)
	if v, ok := st.MemoryRecall(); !ok || v != 5 {
		t.Fatalf("recall=%v,%v want 5", v, ok)
	}
	if got := st.MemoryLabel(); got != "MEM: 5.0" {
		t.Fatalf("label=%q", got)
	}

	st.MemoryClear()
	if _, ok := st.MemoryRecall(); ok {
		t.Fatal("memory should be unset after clear")
	}

	st.MemoryAdd(3)
	if v, _ := st.MemoryRecall(); v != 3 {
		t.Fatalf("add from unset=%v, want 3", v)
	}
	st.MemoryAdd(2)
	if v, _ := st.MemoryRecall(); v != 5 {
		t.Fatalf("add=%v, want 5", v)
	}

	st.MemoryClear()
	st.MemorySubtract(4)
	if v, _ := st.MemoryRecall(); v != -4 {
		t.Fatalf("subtract from unset=%v, want -4", v)
	}
	st.MemorySubtract(1)
	if v, _ := st.MemoryRecall(); v != -5 {
		t.Fatalf("subtract=%v, want -5", v)
	}
}

func TestMemoryStaysFinite(t *testing.T) {
	var st State
	st.MemorySet(1e308)
	st.MemoryAdd(1e308)
	if v, _ := st.MemoryRecall(); v != 1e308 {
		t.Fatalf("overflowing add stored %v", v)
	}
}

func TestAllClear(t *testing.T) {
	var st State
	st.SetExpression("1+1")
	st.MemorySet(9)
	st.AllClear()
	if st.Expression() != "" {
		t.Fatalf("expression=%q", st.Expression())
	}
	if _, ok := st.MemoryRecall(); ok {
		t.Fatal("memory survived all clear")
	}
	checkConsistent(t, &st)
}

func TestClearExpressionKeepsMemory(t *testing.T) {
	var st State
	st.SetExpression("42")
	st.MemorySet(1)
	st.ClearExpression()
	if st.Expression() != "" {
		t.Fatalf("expression=%q", st.Expression())
	}
	if _, ok := st.MemoryRecall(); !ok {
		t.Fatal("clear removed memory")
	}
}

func TestPerformPathway(t *testing.T) {
	var st State

	st.SetExpression("4")
	if !st.Reciprocal() || st.Expression() != "0.25" {
		t.Fatalf("1/x of 4 gave %q", st.Expression())
	}
	if !st.Negate() || st.Expression() != "-0.25" {
		t.Fatalf("+/- gave %q", st.Expression())
	}
	checkConsistent(t, &st)

	for _, expr := range []string{"", "1/0", "2+"} {
		st.SetExpression(expr)
		if st.Reciprocal() || st.Negate() || st.Equals() {
			t.Fatalf("action ran on non-numeric result for %q", expr)
		}
		if st.Expression() != expr {
			t.Fatalf("expression changed from %q to %q", expr, st.Expression())
		}
	}

	st.SetExpression("0")
	if st.Reciprocal() {
		t.Fatal("1/x of zero should be dropped")
	}
	if st.Expression() != "0" {
		t.Fatalf("expression=%q", st.Expression())
	}
}

func TestEquals(t *testing.T) {
	var st State
	st.SetExpression("6÷4")
	if !st.Equals() {
		t.Fatal("equals dropped")
	}
	if st.Expression() != "1.5" || st.Result().String() != "1.5" {
		t.Fatalf("state=%s", spew.Sdump(st))
	}
	// Equals on a plain number is stable.
	st.Equals()
	if st.Expression() != "1.5" {
		t.Fatalf("expression=%q", st.Expression())
	}
}
