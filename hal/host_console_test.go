//go:build !tinygo

package hal

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func readConsole(t *testing.T, input string) []KeyEvent {
	t.Helper()
	return readConsoleLatch(t, input, KeyUnknown)
}

func readConsoleLatch(t *testing.T, input string, latch KeyCode) []KeyEvent {
	t.Helper()
	kbd := newHostKeyboard()
	newConsoleReader(strings.NewReader(input), kbd, latch).run(context.Background())
	close(kbd.ch)
	var out []KeyEvent
	for ev := range kbd.ch {
		out = append(out, ev)
	}
	return out
}

func TestConsoleReaderTranslatesKeys(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []KeyEvent
	}{
		{
			name: "digits and enter",
			in:   "2+3\n",
			want: []KeyEvent{
				{Press: true, Rune: '2'},
				{Press: true, Rune: '+'},
				{Press: true, Rune: '3'},
				{Code: KeyEnter, Press: true},
				{Code: KeyEnter, Press: false},
			},
		},
		{
			name: "backspace",
			in:   "1\x7f",
			want: []KeyEvent{
				{Press: true, Rune: '1'},
				{Code: KeyBackspace, Press: true},
				{Code: KeyBackspace, Press: false},
			},
		},
		{
			name: "alt backspace",
			in:   "\x1b\x7f",
			want: []KeyEvent{
				{Code: KeyBackspace, Press: true, Mods: ModAlt},
				{Code: KeyBackspace, Press: false, Mods: ModAlt},
			},
		},
		{
			name: "lone escape",
			in:   "\x1b",
			want: []KeyEvent{
				{Code: KeyEscape, Press: true},
				{Code: KeyEscape, Press: false},
			},
		},
		{
			name: "tab latches ctrl",
			in:   "\t7\t",
			want: []KeyEvent{
				{Code: KeyCtrl, Press: true},
				{Press: true, Rune: '7', Mods: ModCtrl},
				{Code: KeyCtrl, Press: false},
			},
		},
		{
			name: "control bytes dropped",
			in:   "\x01\x02",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := readConsole(t, tt.in)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("events mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConsoleReaderLatchesConfiguredModifier(t *testing.T) {
	tests := []struct {
		latch KeyCode
		mod   Modifiers
	}{
		{KeyAlt, ModAlt},
		{KeyShift, ModShift},
		{KeyCtrl, ModCtrl},
		{KeyEnter, ModCtrl},
	}
	for _, tt := range tests {
		t.Run(tt.latch.String(), func(t *testing.T) {
			code := tt.latch
			if modifierBit(code) == 0 {
				code = KeyCtrl
			}
			want := []KeyEvent{
				{Code: code, Press: true},
				{Press: true, Rune: '9', Mods: tt.mod},
				{Code: code, Press: false},
				{Press: true, Rune: '9'},
			}
			got := readConsoleLatch(t, "\t9\t9", tt.latch)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("events mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRGB565RoundTripExtremes(t *testing.T) {
	for _, c := range [][3]uint8{{0, 0, 0}, {255, 255, 255}, {255, 0, 0}, {0, 255, 0}, {0, 0, 255}} {
		r, g, b := rgb888From565(rgb565(c[0], c[1], c[2]))
		if r != c[0] || g != c[1] || b != c[2] {
			t.Fatalf("rgb565 round trip %v = %d,%d,%d", c, r, g, b)
		}
	}
}

func TestFramebufferSnapshotOnlyAfterPresent(t *testing.T) {
	fb := newHostFramebuffer(4, 2)
	dst := make([]byte, len(fb.buf))

	if _, ok := fb.snapshotRGB565(dst, 0); ok {
		t.Fatal("snapshot before any Present")
	}
	fb.ClearRGB(255, 255, 255)
	_ = fb.Present()
	gen, ok := fb.snapshotRGB565(dst, 0)
	if !ok || gen != 1 {
		t.Fatalf("snapshot gen=%d ok=%v, want 1 true", gen, ok)
	}
	if dst[0] != 0xFF || dst[1] != 0xFF {
		t.Fatalf("snapshot pixel = %#x %#x", dst[0], dst[1])
	}
	if _, ok := fb.snapshotRGB565(dst, gen); ok {
		t.Fatal("snapshot without a new Present")
	}
}
