package app

import (
	"fmt"
	"image/color"
	"strings"
	"unicode/utf8"

	"sparkcalc/hal"
	"sparkcalc/sparkos/kernel"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

var (
	panicFont = &proggy.TinySZ8pt7b
	panicBG   = color.RGBA{R: 0x80, G: 0x10, B: 0x10, A: 0xFF}
	panicFG   = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
)

// installPanicHandler paints the task panic and its stack on the display.
//
// The handler never returns: the system is halted once the screen is drawn.
func installPanicHandler(h hal.HAL) {
	kernel.SetPanicHandler(func(info kernel.PanicInfo) {
		lines := panicLines(info)
		if l := h.Logger(); l != nil {
			for _, line := range lines {
				l.WriteLineString(line)
			}
		}

		var fb hal.Framebuffer
		if disp := h.Display(); disp != nil {
			fb = disp.Framebuffer()
		}
		if fb == nil {
			select {}
		}
		fb.ClearRGB(panicBG.R, panicBG.G, panicBG.B)
		drawPanic(panicDisplay{fb: fb}, lines)
		_ = fb.Present()
		select {}
	})
}

func panicLines(info kernel.PanicInfo) []string {
	lines := []string{
		"Spark Panic:",
		fmt.Sprintf("task: %d", info.TaskID),
		fmt.Sprintf("panic: %v", info.Value),
	}
	if len(info.Stack) == 0 {
		return append(lines, "stack: unavailable")
	}
	lines = append(lines, "stack:")
	for _, line := range strings.Split(string(info.Stack), "\n") {
		if line = strings.TrimRight(line, " \t"); line != "" {
			lines = append(lines, strings.ReplaceAll(line, "\t", "  "))
		}
	}
	return lines
}

// drawPanic writes lines top to bottom, wrapping at the display width, until
// the screen is full.
func drawPanic(d panicDisplay, lines []string) {
	w, h := d.Size()
	lineH := int16(panicFont.YAdvance)
	if lineH <= 0 {
		lineH = 10
	}
	y := lineH
	for _, line := range lines {
		for line != "" {
			if y > h {
				return
			}
			chunk, rest := fitWidth(line, uint32(w))
			tinyfont.WriteLine(d, panicFont, 2, y, chunk, panicFG)
			y += lineH
			line = strings.TrimLeft(rest, " ")
		}
	}
}

// fitWidth splits s after the longest prefix that fits in w pixels.
func fitWidth(s string, w uint32) (prefix, rest string) {
	i := 0
	for i < len(s) {
		_, size := utf8.DecodeRuneInString(s[i:])
		if _, outbox := tinyfont.LineWidth(panicFont, s[:i+size]); outbox > w-4 && i > 0 {
			break
		}
		i += size
	}
	return s[:i], s[i:]
}

type panicDisplay struct {
	fb hal.Framebuffer
}

func (d panicDisplay) Size() (x, y int16) {
	return int16(d.fb.Width()), int16(d.fb.Height())
}

func (d panicDisplay) SetPixel(x, y int16, c color.RGBA) {
	if d.fb.Format() != hal.PixelFormatRGB565 {
		return
	}
	ix, iy := int(x), int(y)
	if ix < 0 || ix >= d.fb.Width() || iy < 0 || iy >= d.fb.Height() {
		return
	}
	buf := d.fb.Buffer()
	off := iy*d.fb.StrideBytes() + ix*2
	if off < 0 || off+1 >= len(buf) {
		return
	}
	pixel := uint16(c.R>>3)<<11 | uint16(c.G>>2)<<5 | uint16(c.B>>3)
	buf[off] = byte(pixel)
	buf[off+1] = byte(pixel >> 8)
}

func (d panicDisplay) Display() error { return nil }
