//go:build !tinygo

package hal

import (
	"bufio"
	"context"
	"io"
)

// consoleReader turns a byte stream (a terminal) into key events.
//
// A terminal cannot report a held modifier, so Tab latches one (Ctrl unless
// told otherwise): the first Tab presses it and the next one releases it.
type consoleReader struct {
	r       *bufio.Reader
	kbd     *hostKeyboard
	latch   KeyCode
	latched bool
	pending bool
}

func newConsoleReader(r io.Reader, kbd *hostKeyboard, latch KeyCode) *consoleReader {
	if modifierBit(latch) == 0 {
		latch = KeyCtrl
	}
	return &consoleReader{r: bufio.NewReader(r), kbd: kbd, latch: latch}
}

func modifierBit(k KeyCode) Modifiers {
	switch k {
	case KeyCtrl:
		return ModCtrl
	case KeyAlt:
		return ModAlt
	case KeyShift:
		return ModShift
	default:
		return 0
	}
}

func (c *consoleReader) run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		r, _, err := c.r.ReadRune()
		if err != nil {
			return
		}
		for _, ev := range c.translate(r) {
			c.kbd.emit(ev)
		}
	}
}

func (c *consoleReader) translate(r rune) []KeyEvent {
	var mods Modifiers
	if c.latched {
		mods = modifierBit(c.latch)
	}

	if c.pending {
		c.pending = false
		if r == 0x7f || r == 0x08 {
			return []KeyEvent{
				{Code: KeyBackspace, Press: true, Mods: mods | ModAlt},
				{Code: KeyBackspace, Press: false, Mods: mods | ModAlt},
			}
		}
		out := []KeyEvent{{Code: KeyEscape, Press: true, Mods: mods}, {Code: KeyEscape, Press: false, Mods: mods}}
		return append(out, c.translate(r)...)
	}

	switch r {
	case '\t':
		c.latched = !c.latched
		return []KeyEvent{{Code: c.latch, Press: c.latched}}
	case '\r', '\n':
		return []KeyEvent{{Code: KeyEnter, Press: true, Mods: mods}, {Code: KeyEnter, Press: false, Mods: mods}}
	case 0x7f, 0x08:
		return []KeyEvent{{Code: KeyBackspace, Press: true, Mods: mods}, {Code: KeyBackspace, Press: false, Mods: mods}}
	case 0x1b:
		// ESC followed by DEL is how terminals send Alt-Backspace.
		if c.r.Buffered() > 0 {
			c.pending = true
			return nil
		}
		return []KeyEvent{{Code: KeyEscape, Press: true, Mods: mods}, {Code: KeyEscape, Press: false, Mods: mods}}
	}
	if r < 0x20 {
		return nil
	}
	return []KeyEvent{{Press: true, Rune: r, Mods: mods}}
}
