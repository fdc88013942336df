package calc

import (
	"image/color"
	"strings"

	"sparkcalc/sparkos/internal/arith"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont/proggy"
	"tinygo.org/x/tinyterm"
)

const (
	tapeFontHeight = 10
	tapeFontOffset = 6
)

// tapeScreen is an offscreen ink buffer for the tape terminal. It keeps one
// byte of coverage per pixel and emulates a hardware scroll register: screen
// row y shows buffer row (y+scroll)%h.
type tapeScreen struct {
	w, h   int
	ink    []uint8
	scroll int
}

func (s *tapeScreen) Size() (x, y int16) { return int16(s.w), int16(s.h) }

func (s *tapeScreen) SetPixel(x, y int16, c color.RGBA) {
	ix, iy := int(x), int(y)
	if ix < 0 || ix >= s.w || iy < 0 || iy >= s.h {
		return
	}
	s.ink[iy*s.w+ix] = luma(c)
}

func (s *tapeScreen) Display() error { return nil }

func (s *tapeScreen) FillRectangle(x, y, width, height int16, c color.RGBA) error {
	v := luma(c)
	x0 := clampInt(int(x), 0, s.w)
	x1 := clampInt(int(x)+int(width), 0, s.w)
	y0 := clampInt(int(y), 0, s.h)
	y1 := clampInt(int(y)+int(height), 0, s.h)
	for py := y0; py < y1; py++ {
		row := s.ink[py*s.w : (py+1)*s.w]
		for px := x0; px < x1; px++ {
			row[px] = v
		}
	}
	return nil
}

func (s *tapeScreen) SetScroll(line int16) {
	if s.h > 0 {
		s.scroll = ((int(line) % s.h) + s.h) % s.h
	}
}

func (s *tapeScreen) SetRotation(drivers.Rotation) error { return nil }

func luma(c color.RGBA) uint8 {
	m := c.R
	if c.G > m {
		m = c.G
	}
	if c.B > m {
		m = c.B
	}
	return m
}

// Tape is the paper-tape panel: a scrolling log of completed calculations.
type Tape struct {
	screen *tapeScreen
	term   *tinyterm.Terminal
	lines  []string
	keep   int
	// version changes on every append so redraw checks can see it.
	version uint64
}

// NewTape creates a tape w x h pixels. The height is rounded down to whole
// text rows.
func NewTape(w, h int) *Tape {
	h -= h % tapeFontHeight
	if w <= 0 || h <= 0 {
		return &Tape{}
	}
	s := &tapeScreen{w: w, h: h, ink: make([]uint8, w*h)}
	t := &Tape{screen: s, term: tinyterm.NewTerminal(s), keep: h / tapeFontHeight}
	t.term.Configure(&tinyterm.Config{
		Font:       &proggy.TinySZ8pt7b,
		FontHeight: tapeFontHeight,
		FontOffset: tapeFontOffset,
	})
	return t
}

// Append writes one line to the tape. Non-ASCII characters are replaced so
// the bitmap font can draw everything.
func (t *Tape) Append(line string) {
	line = tapeText(line)
	t.lines = append(t.lines, line)
	if t.keep > 0 && len(t.lines) > t.keep {
		t.lines = t.lines[len(t.lines)-t.keep:]
	}
	t.version++
	if t.term == nil {
		return
	}
	_, _ = t.term.Write([]byte("\n" + line))
}

// Lines returns the most recent lines, oldest first.
func (t *Tape) Lines() []string { return t.lines }

func (t *Tape) Version() uint64 { return t.version }

// draw copies the tape into r, mapping ink onto the fg/bg pair.
func (t *Tape) draw(c *canvas, r rect, fg, bg color.RGBA) {
	c.fillRect(r, bg)
	s := t.screen
	if s == nil {
		return
	}
	h := minInt(r.h, s.h)
	w := minInt(r.w, s.w)
	// Bottom-align so the newest line sits at the panel's lower edge.
	top := r.y + r.h - h
	for y := 0; y < h; y++ {
		src := s.ink[((y+s.scroll)%s.h)*s.w:]
		for x := 0; x < w; x++ {
			if v := src[x]; v != 0 {
				c.put(r.x+x, top+y, rgb565(blend(bg, fg, v)))
			}
		}
	}
}

func tapeText(s string) string {
	s = arith.Normalize(s)
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r > 0x7e {
			return '?'
		}
		return r
	}, s)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
