package proto

import (
	"encoding/binary"
	"image/color"

	"sparkcalc/hal"
)

// Theme carries the calculator palette and the key that shows alternate buttons.
type Theme struct {
	Background color.RGBA
	Display    color.RGBA
	Text       color.RGBA
	Key        color.RGBA
	KeyText    color.RGBA
	Func       color.RGBA
	Alt        color.RGBA
	Error      color.RGBA

	Modifier hal.KeyCode
	Debug    bool
}

const themeColors = 8

func (t *Theme) colors() [themeColors]*color.RGBA {
	return [themeColors]*color.RGBA{
		&t.Background, &t.Display, &t.Text, &t.Key,
		&t.KeyText, &t.Func, &t.Alt, &t.Error,
	}
}

// ThemePayload encodes a MsgTheme payload.
//
// Layout (little-endian):
//   - 8 x (u8 r, u8 g, u8 b)
//   - u16: modifier key code
//   - u8:  1 = debug logging
func ThemePayload(t Theme) []byte {
	buf := make([]byte, themeColors*3+3)
	for i, c := range t.colors() {
		buf[i*3+0] = c.R
		buf[i*3+1] = c.G
		buf[i*3+2] = c.B
	}
	off := themeColors * 3
	binary.LittleEndian.PutUint16(buf[off:off+2], uint16(t.Modifier))
	if t.Debug {
		buf[off+2] = 1
	}
	return buf
}

// DecodeThemePayload decodes a ThemePayload.
func DecodeThemePayload(b []byte) (Theme, bool) {
	var t Theme
	if len(b) < themeColors*3+3 {
		return t, false
	}
	for i, c := range t.colors() {
		*c = color.RGBA{R: b[i*3+0], G: b[i*3+1], B: b[i*3+2], A: 0xFF}
	}
	off := themeColors * 3
	t.Modifier = hal.KeyCode(binary.LittleEndian.Uint16(b[off : off+2]))
	t.Debug = b[off+2] != 0
	return t, true
}
