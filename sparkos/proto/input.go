package proto

import (
	"encoding/binary"

	"sparkcalc/hal"
)

// KeyFlagRepeat marks an auto-repeated press generated by the input service.
const KeyFlagRepeat uint8 = 1 << 0

// KeyPayload encodes a MsgKey payload.
//
// Layout (little-endian):
//   - u16: key code (hal.KeyCode)
//   - u8:  1 = press, 0 = release
//   - u8:  modifiers (hal.Modifiers)
//   - u8:  flags (KeyFlag*)
//   - u32: rune (0 for named keys)
func KeyPayload(ev hal.KeyEvent, flags uint8) []byte {
	buf := make([]byte, 9)
	binary.LittleEndian.PutUint16(buf[0:2], uint16(ev.Code))
	if ev.Press {
		buf[2] = 1
	}
	buf[3] = uint8(ev.Mods)
	buf[4] = flags
	binary.LittleEndian.PutUint32(buf[5:9], uint32(ev.Rune))
	return buf
}

// DecodeKeyPayload decodes a KeyPayload.
func DecodeKeyPayload(b []byte) (ev hal.KeyEvent, flags uint8, ok bool) {
	if len(b) < 9 {
		return hal.KeyEvent{}, 0, false
	}
	ev.Code = hal.KeyCode(binary.LittleEndian.Uint16(b[0:2]))
	ev.Press = b[2] != 0
	ev.Mods = hal.Modifiers(b[3])
	flags = b[4]
	ev.Rune = rune(binary.LittleEndian.Uint32(b[5:9]))
	return ev, flags, true
}

// PointerPayload encodes a MsgPointer payload.
//
// Layout (little-endian):
//   - i16: x
//   - i16: y
//   - u8:  1 = press, 0 = release
func PointerPayload(ev hal.PointerEvent) []byte {
	buf := make([]byte, 5)
	binary.LittleEndian.PutUint16(buf[0:2], uint16(int16(ev.X)))
	binary.LittleEndian.PutUint16(buf[2:4], uint16(int16(ev.Y)))
	if ev.Press {
		buf[4] = 1
	}
	return buf
}

// DecodePointerPayload decodes a PointerPayload.
func DecodePointerPayload(b []byte) (hal.PointerEvent, bool) {
	if len(b) < 5 {
		return hal.PointerEvent{}, false
	}
	return hal.PointerEvent{
		X:     int(int16(binary.LittleEndian.Uint16(b[0:2]))),
		Y:     int(int16(binary.LittleEndian.Uint16(b[2:4]))),
		Press: b[4] != 0,
	}, true
}
