package calc

import (
	"image/color"
	"unicode/utf8"

	"sparkcalc/sparkos/proto"

	"github.com/cespare/xxhash/v2"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/freemono"
	"tinygo.org/x/tinyfont/proggy"
)

var (
	displayFont = &freemono.Regular12pt7b
	keyFont     = &freemono.Bold9pt7b
	smallFont   = &proggy.TinySZ8pt7b
)

// layout places the displays, keypad and tape on a w x h screen.
type layout struct {
	w, h   int
	expr   rect
	result rect
	memory rect
	keys   [Rows][Cols]rect
	tape   rect
}

const (
	margin   = 4
	keyGap   = 3
	tapeMinW = 64
)

func newLayout(w, h int) layout {
	l := layout{w: w, h: h}
	inner := w - 2*margin
	l.expr = rect{x: margin, y: margin, w: inner, h: 34}
	l.result = rect{x: margin, y: l.expr.y + l.expr.h + 2, w: inner, h: 26}
	l.memory = rect{x: margin, y: l.result.y + l.result.h + 2, w: inner, h: 14}

	top := l.memory.y + l.memory.h + 4
	padH := h - top - margin
	padW := inner * 2 / 3
	if inner-padW-margin < tapeMinW {
		padW = inner
	} else {
		l.tape = rect{x: margin + padW + margin, y: top, w: inner - padW - margin, h: padH}
	}

	cellW := padW / Cols
	cellH := padH / Rows
	for r := 0; r < Rows; r++ {
		for c := 0; c < Cols; c++ {
			l.keys[r][c] = rect{
				x: margin + c*cellW + keyGap/2,
				y: top + r*cellH + keyGap/2,
				w: cellW - keyGap,
				h: cellH - keyGap,
			}
		}
	}
	return l
}

// hit returns the button under (x, y).
func (l layout) hit(x, y int) (r, c int, ok bool) {
	for r := range l.keys {
		for c := range l.keys[r] {
			if l.keys[r][c].contains(x, y) {
				return r, c, true
			}
		}
	}
	return 0, 0, false
}

type cell struct {
	r, c int
	ok   bool
}

// view is everything the screen shows.
type view struct {
	expr    string
	result  Result
	memory  string
	mode    Mode
	labels  [Rows][Cols]string
	pressed cell
	tapeVer uint64
	theme   proto.Theme
}

// hash fingerprints v so unchanged frames can be skipped.
func (v *view) hash() uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(v.expr)
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(v.result.String())
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(v.memory)
	_, _ = d.WriteString("\x00")
	for r := range v.labels {
		for c := range v.labels[r] {
			_, _ = d.WriteString(v.labels[r][c])
			_, _ = d.WriteString("\x00")
		}
	}
	var flags [11]byte
	flags[0] = byte(v.mode)
	if v.pressed.ok {
		flags[1] = 1
		flags[2] = byte(v.pressed.r)
		flags[3] = byte(v.pressed.c)
	}
	for i := 0; i < 7; i++ {
		flags[4+i] = byte(v.tapeVer >> (8 * i))
	}
	_, _ = d.Write(flags[:])
	_, _ = d.Write(proto.ThemePayload(v.theme))
	return d.Sum64()
}

func (l layout) draw(c *canvas, v *view, kp *Keypad, tape *Tape) {
	th := v.theme
	c.clear(th.Background)

	c.fillRect(l.expr, th.Display)
	c.fillRect(l.result, th.Display)
	drawFitted(c, displayFont, l.expr.inset(4), v.expr, th.Text)

	resCol := th.Text
	if v.result.Kind == ResultError {
		resCol = th.Error
	}
	drawFitted(c, displayFont, l.result.inset(3), v.result.String(), resCol)

	mem := v.memory
	if v.mode == ModeAlt {
		mem += "   [ALT]"
	}
	tinyfont.WriteLine(c, smallFont, int16(l.memory.x+2), int16(l.memory.y+tapeFontHeight), mem, th.Text)

	for r := range l.keys {
		for col := range l.keys[r] {
			k := l.keys[r][col]
			fill := th.Key
			if IsFunction(r) {
				fill = th.Func
			}
			if v.mode == ModeAlt && kp[r][col].HasAlt() {
				fill = th.Alt
			}
			if v.pressed.ok && v.pressed.r == r && v.pressed.c == col {
				fill = blend(fill, th.KeyText, 0x60)
			}
			c.fillRect(k, fill)
			c.strokeRect(k, blend(fill, th.Background, 0x80))
			drawCentered(c, keyFont, k, v.labels[r][col], th.KeyText)
		}
	}

	if l.tape.w > 0 && tape != nil {
		tape.draw(c, l.tape, th.Text, th.Display)
	}
}

// Glyphs without a bitmap in the fonts are drawn as vector icons.
func isIcon(r rune) bool {
	return r == '×' || r == '÷' || r == '⌫'
}

func advance(f *tinyfont.Font) int {
	_, w := tinyfont.LineWidth(f, "0")
	return int(w)
}

func textWidth(f *tinyfont.Font, s string) int {
	n := 0
	for _, run := range splitIcons(s) {
		if run.icon != 0 {
			n += advance(f)
			continue
		}
		_, w := tinyfont.LineWidth(f, run.text)
		n += int(w)
	}
	return n
}

type textRun struct {
	text string
	icon rune
}

func splitIcons(s string) []textRun {
	var out []textRun
	start := 0
	for i, r := range s {
		if !isIcon(r) {
			continue
		}
		if i > start {
			out = append(out, textRun{text: s[start:i]})
		}
		out = append(out, textRun{icon: r})
		start = i + len(string(r))
	}
	if start < len(s) {
		out = append(out, textRun{text: s[start:]})
	}
	return out
}

// drawText writes s with its baseline at y and returns the end x.
func drawText(c *canvas, f *tinyfont.Font, x, y int, s string, col color.RGBA) int {
	asc := int(f.YAdvance) * 2 / 3
	for _, run := range splitIcons(s) {
		if run.icon != 0 {
			w := advance(f)
			drawIcon(c, run.icon, rect{x: x, y: y - asc, w: w, h: asc}, col)
			x += w
			continue
		}
		tinyfont.WriteLine(c, f, int16(x), int16(y), run.text, col)
		_, w := tinyfont.LineWidth(f, run.text)
		x += int(w)
	}
	return x
}

// drawFitted right-aligns s in r, dropping leading characters that do not fit.
func drawFitted(c *canvas, f *tinyfont.Font, r rect, s string, col color.RGBA) {
	if s == "" {
		return
	}
	for textWidth(f, s) > r.w && s != "" {
		_, n := utf8.DecodeRuneInString(s)
		s = s[n:]
	}
	y := r.y + r.h - (r.h-int(f.YAdvance)*2/3)/2
	drawText(c, f, r.x+r.w-textWidth(f, s), y, s, col)
}

func drawCentered(c *canvas, f *tinyfont.Font, r rect, s string, col color.RGBA) {
	w := textWidth(f, s)
	asc := int(f.YAdvance) * 2 / 3
	drawText(c, f, r.x+(r.w-w)/2, r.y+(r.h+asc)/2, s, col)
}

func drawIcon(c *canvas, icon rune, r rect, col color.RGBA) {
	cx := r.x + r.w/2
	cy := r.y + r.h/2
	s := minInt(r.w, r.h)/2 - 1
	if s < 2 {
		s = 2
	}
	switch icon {
	case '×':
		s = s * 3 / 4
		c.thickLine(cx-s, cy-s, cx+s, cy+s, 2, col)
		c.thickLine(cx-s, cy+s, cx+s, cy-s, 2, col)
	case '÷':
		c.thickLine(cx-s, cy, cx+s, cy, 2, col)
		c.fillRect(rect{x: cx - 1, y: cy - s, w: 2, h: 2}, col)
		c.fillRect(rect{x: cx - 1, y: cy + s - 1, w: 2, h: 2}, col)
	case '⌫':
		h := s * 2 / 3
		left, right := cx-s-1, cx+s+1
		notch := left + h
		c.line(left, cy, notch, cy-h, col)
		c.line(left, cy, notch, cy+h, col)
		c.line(notch, cy-h, right, cy-h, col)
		c.line(notch, cy+h, right, cy+h, col)
		c.line(right, cy-h, right, cy+h, col)
		m := h / 2
		xc := (notch + right) / 2
		c.line(xc-m, cy-m, xc+m, cy+m, col)
		c.line(xc-m, cy+m, xc+m, cy-m, col)
	}
}

// statusOf snapshots the displays for the status mirror.
func statusOf(v *view) proto.Status {
	return proto.Status{
		Expr:   v.expr,
		Result: v.result.String(),
		Memory: v.memory,
		Alt:    v.mode == ModeAlt,
	}
}
