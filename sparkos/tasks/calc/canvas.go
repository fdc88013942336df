package calc

import (
	"image/color"

	"sparkcalc/hal"

	"tinygo.org/x/drivers"
)

// canvas draws into an RGB565 framebuffer and satisfies drivers.Displayer so
// tinyfont can write to it.
type canvas struct {
	fb     hal.Framebuffer
	buf    []byte
	stride int
	w, h   int
}

var _ drivers.Displayer = (*canvas)(nil)

func newCanvas(fb hal.Framebuffer) *canvas {
	if fb == nil || fb.Format() != hal.PixelFormatRGB565 {
		return nil
	}
	buf := fb.Buffer()
	if buf == nil {
		return nil
	}
	return &canvas{fb: fb, buf: buf, stride: fb.StrideBytes(), w: fb.Width(), h: fb.Height()}
}

func (c *canvas) Size() (x, y int16) { return int16(c.w), int16(c.h) }

func (c *canvas) SetPixel(x, y int16, col color.RGBA) {
	c.put(int(x), int(y), rgb565(col))
}

func (c *canvas) Display() error { return c.fb.Present() }

func (c *canvas) put(x, y int, pixel uint16) {
	if x < 0 || x >= c.w || y < 0 || y >= c.h {
		return
	}
	off := y*c.stride + x*2
	if off < 0 || off+1 >= len(c.buf) {
		return
	}
	c.buf[off] = byte(pixel)
	c.buf[off+1] = byte(pixel >> 8)
}

func (c *canvas) clear(col color.RGBA) {
	pixel := rgb565(col)
	lo, hi := byte(pixel), byte(pixel>>8)
	for i := 0; i+1 < len(c.buf); i += 2 {
		c.buf[i] = lo
		c.buf[i+1] = hi
	}
}

func (c *canvas) fillRect(r rect, col color.RGBA) {
	x0 := clampInt(r.x, 0, c.w)
	y0 := clampInt(r.y, 0, c.h)
	x1 := clampInt(r.x+r.w, 0, c.w)
	y1 := clampInt(r.y+r.h, 0, c.h)
	pixel := rgb565(col)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			c.put(x, y, pixel)
		}
	}
}

func (c *canvas) strokeRect(r rect, col color.RGBA) {
	if r.w <= 0 || r.h <= 0 {
		return
	}
	c.line(r.x, r.y, r.x+r.w-1, r.y, col)
	c.line(r.x, r.y+r.h-1, r.x+r.w-1, r.y+r.h-1, col)
	c.line(r.x, r.y, r.x, r.y+r.h-1, col)
	c.line(r.x+r.w-1, r.y, r.x+r.w-1, r.y+r.h-1, col)
}

// line draws with Bresenham's algorithm.
func (c *canvas) line(x0, y0, x1, y1 int, col color.RGBA) {
	pixel := rgb565(col)
	dx := absInt(x1 - x0)
	dy := -absInt(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		c.put(x0, y0, pixel)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// thickLine draws a line w pixels wide by offsetting along the minor axis.
func (c *canvas) thickLine(x0, y0, x1, y1, w int, col color.RGBA) {
	horizontal := absInt(x1-x0) >= absInt(y1-y0)
	for i := 0; i < w; i++ {
		o := i - w/2
		if horizontal {
			c.line(x0, y0+o, x1, y1+o, col)
		} else {
			c.line(x0+o, y0, x1+o, y1, col)
		}
	}
}

type rect struct {
	x, y, w, h int
}

func (r rect) contains(x, y int) bool {
	return x >= r.x && x < r.x+r.w && y >= r.y && y < r.y+r.h
}

func (r rect) inset(n int) rect {
	return rect{x: r.x + n, y: r.y + n, w: r.w - 2*n, h: r.h - 2*n}
}

func rgb565(c color.RGBA) uint16 {
	return uint16((uint16(c.R>>3)&0x1F)<<11 | (uint16(c.G>>2)&0x3F)<<5 | (uint16(c.B>>3) & 0x1F))
}

func blend(a, b color.RGBA, t uint8) color.RGBA {
	mix := func(x, y uint8) uint8 {
		return uint8((uint16(x)*uint16(255-t) + uint16(y)*uint16(t)) / 255)
	}
	return color.RGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 0xFF}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
