package app

import (
	"errors"
	"strings"
	"testing"

	"sparkcalc/sparkos/kernel"

	"github.com/google/go-cmp/cmp"
	"tinygo.org/x/tinyfont"
)

func TestPanicLines(t *testing.T) {
	info := kernel.PanicInfo{
		TaskID: 3,
		Value:  errors.New("boom"),
		Stack:  []byte("goroutine 7 [running]:\n\tcalc.go:12\n\n"),
	}
	want := []string{
		"Spark Panic:",
		"task: 3",
		"panic: boom",
		"stack:",
		"goroutine 7 [running]:",
		"  calc.go:12",
	}
	if diff := cmp.Diff(want, panicLines(info)); diff != "" {
		t.Fatalf("lines mismatch (-want +got):\n%s", diff)
	}

	got := panicLines(kernel.PanicInfo{Value: "x"})
	if got[len(got)-1] != "stack: unavailable" {
		t.Fatalf("last line = %q", got[len(got)-1])
	}
}

func TestFitWidthWraps(t *testing.T) {
	s := strings.Repeat("abcdef ", 20)
	prefix, rest := fitWidth(s, 100)
	if prefix == "" || rest == "" {
		t.Fatalf("prefix=%q rest=%q", prefix, rest)
	}
	if prefix+rest != s {
		t.Fatal("split lost text")
	}
	if _, w := tinyfont.LineWidth(panicFont, prefix); w > 96 {
		t.Fatalf("prefix width = %d", w)
	}

	// A single glyph wider than the limit still makes progress.
	if p, _ := fitWidth("W", 1); p != "W" {
		t.Fatalf("prefix = %q", p)
	}
}
