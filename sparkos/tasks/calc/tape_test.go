package calc

import (
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTapeKeepsRecentLines(t *testing.T) {
	tp := NewTape(100, 35) // three rows
	for _, l := range []string{"1+1 = 2.0", "2×3 = 6.0", "9÷3 = 3.0", "4-1 = 3.0"} {
		tp.Append(l)
	}
	want := []string{"2*3 = 6.0", "9/3 = 3.0", "4-1 = 3.0"}
	if diff := cmp.Diff(want, tp.Lines()); diff != "" {
		t.Fatalf("lines (-want +got):\n%s", diff)
	}
	if tp.Version() != 4 {
		t.Fatalf("version=%d", tp.Version())
	}
}

func TestTapeInksScreen(t *testing.T) {
	tp := NewTape(100, 30)
	tp.Append("8 = 8.0")

	inked := false
	for _, v := range tp.screen.ink {
		if v != 0 {
			inked = true
			break
		}
	}
	if !inked {
		t.Fatal("tape terminal drew nothing")
	}

	fb := newTestFB(120, 40)
	c := newCanvas(fb)
	fg := color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	bg := color.RGBA{B: 0x80, A: 0xFF}
	tp.draw(c, rect{x: 10, y: 5, w: 100, h: 30}, fg, bg)
	if got := fb.pixel(0, 0); got != 0 {
		t.Fatalf("tape drew outside its rect: %04x", got)
	}
	if got := fb.pixel(10, 5); got != rgb565(bg) && got != rgb565(fg) {
		t.Fatalf("tape corner=%04x", got)
	}
}

func TestTapeScreenScrollWraps(t *testing.T) {
	s := &tapeScreen{w: 4, h: 20, ink: make([]uint8, 80)}
	s.SetScroll(25)
	if s.scroll != 5 {
		t.Fatalf("scroll=%d, want 5", s.scroll)
	}
	s.SetScroll(-5)
	if s.scroll != 15 {
		t.Fatalf("scroll=%d, want 15", s.scroll)
	}
	_ = s.FillRectangle(-2, 18, 10, 10, color.RGBA{R: 0xFF})
	if s.ink[19*4+3] != 0xFF || s.ink[17*4] != 0 {
		t.Fatal("FillRectangle did not clip to the buffer")
	}
}

func TestTapeTextIsASCII(t *testing.T) {
	if got := tapeText("6×7 = 42.0\t"); got != "6*7 = 42.0?" {
		t.Fatalf("tapeText=%q", got)
	}
}

func TestZeroSizeTape(t *testing.T) {
	tp := NewTape(0, 0)
	tp.Append("1 = 1.0")
	if len(tp.Lines()) != 1 {
		t.Fatalf("lines=%v", tp.Lines())
	}
}
