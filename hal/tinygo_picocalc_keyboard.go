//go:build tinygo && baremetal

package hal

import (
	"fmt"
	"machine"
	"time"
)

const (
	picoCalcKbdAddr uint16 = 0x1F
	picoCalcKbdCmd         = 0x09
)

const (
	picoCalcKeyAlt       byte = 0xA1
	picoCalcKeyBackspace byte = 0x08
	picoCalcKeyCtrl      byte = 0xA5
	picoCalcKeyShiftL    byte = 0xA2
	picoCalcKeyShiftR    byte = 0xA3
	picoCalcKeyDel       byte = 0xD4
	picoCalcKeyEnd       byte = 0xD5
	picoCalcKeyEsc       byte = 0xB1
	picoCalcKeyHome      byte = 0xD2
	picoCalcKeyIns       byte = 0xD1
	picoCalcKeyLeft      byte = 0xB4
	picoCalcKeyRight     byte = 0xB7
	picoCalcKeyUp        byte = 0xB5
	picoCalcKeyDown      byte = 0xB6
)

type i2cKeyboard struct {
	i2c   *machine.I2C
	write [1]byte
	read  [2]byte

	altDown   bool
	ctrlDown  bool
	shiftDown bool
}

func initI2CKeyboard() (*i2cKeyboard, error) {
	write := [1]byte{picoCalcKbdCmd}

	// Prefer I2C1 (original PicoCalc wiring), but some TinyGo targets expose only I2C0.
	for _, bus := range []*machine.I2C{machine.I2C1, machine.I2C0} {
		if bus == nil {
			continue
		}
		for _, freq := range []uint32{100_000, 400_000} {
			if err := bus.Configure(machine.I2CConfig{
				SCL:       machine.GP7,
				SDA:       machine.GP6,
				Frequency: freq,
			}); err != nil {
				continue
			}

			k := &i2cKeyboard{i2c: bus, write: write}

			// Probe the device to ensure the selected I2C instance works.
			// On boot the keyboard MCU can be slow to respond, so retry briefly.
			const probeTries = 50
			for i := 0; i < probeTries; i++ {
				if err := k.i2c.Tx(picoCalcKbdAddr, k.write[:], k.read[:]); err == nil {
					return k, nil
				}
				time.Sleep(10 * time.Millisecond)
			}
		}
	}

	return nil, fmt.Errorf("keyboard: I2C unavailable")
}

func (k *i2cKeyboard) readEvent() (KeyEvent, bool) {
	if err := k.i2c.Tx(picoCalcKbdAddr, k.write[:], k.read[:]); err != nil {
		return KeyEvent{}, false
	}
	if k.read[0] == 0 && k.read[1] == 0 {
		return KeyEvent{}, false
	}

	eventType := k.read[0]
	key := k.read[1]

	switch eventType {
	case 0x01: // key down
		return k.translate(key, true)
	case 0x02: // key held; only modifiers matter, and only the first time.
		if kc, ok := modifierCode(key); ok && !k.modifierDown(kc) {
			return k.translate(key, true)
		}
		return KeyEvent{}, false
	case 0x03: // key up
		return k.translate(key, false)
	default:
		return KeyEvent{}, false
	}
}

func modifierCode(code byte) (KeyCode, bool) {
	switch code {
	case picoCalcKeyAlt:
		return KeyAlt, true
	case picoCalcKeyCtrl:
		return KeyCtrl, true
	case picoCalcKeyShiftL, picoCalcKeyShiftR:
		return KeyShift, true
	default:
		return KeyUnknown, false
	}
}

func (k *i2cKeyboard) modifierDown(kc KeyCode) bool {
	switch kc {
	case KeyAlt:
		return k.altDown
	case KeyCtrl:
		return k.ctrlDown
	case KeyShift:
		return k.shiftDown
	default:
		return false
	}
}

func (k *i2cKeyboard) mods() Modifiers {
	var m Modifiers
	if k.ctrlDown {
		m |= ModCtrl
	}
	if k.altDown {
		m |= ModAlt
	}
	if k.shiftDown {
		m |= ModShift
	}
	return m
}

func (k *i2cKeyboard) translate(code byte, press bool) (KeyEvent, bool) {
	if kc, ok := modifierCode(code); ok {
		switch kc {
		case KeyAlt:
			k.altDown = press
		case KeyCtrl:
			k.ctrlDown = press
		case KeyShift:
			k.shiftDown = press
		}
		return KeyEvent{Code: kc, Press: press, Mods: k.mods()}, true
	}

	if !press {
		return KeyEvent{Press: false, Code: k.mapSpecial(code), Mods: k.mods()}, true
	}

	if kc, ok := k.specialKey(code); ok {
		return KeyEvent{Press: true, Code: kc, Mods: k.mods()}, true
	}

	r := rune(code)
	if r == '\r' || r == '\n' {
		return KeyEvent{Press: true, Code: KeyEnter, Mods: k.mods()}, true
	}
	if r == 0 {
		return KeyEvent{}, false
	}
	return KeyEvent{Press: true, Rune: r, Mods: k.mods()}, true
}

func (k *i2cKeyboard) specialKey(code byte) (KeyCode, bool) {
	if kc := k.mapSpecial(code); kc != KeyUnknown {
		return kc, true
	}
	return KeyUnknown, false
}

func (k *i2cKeyboard) mapSpecial(code byte) KeyCode {
	switch code {
	case picoCalcKeyBackspace:
		return KeyBackspace
	case picoCalcKeyEsc:
		return KeyEscape
	case picoCalcKeyDel:
		return KeyDelete
	case picoCalcKeyHome:
		return KeyHome
	case picoCalcKeyEnd:
		return KeyEnd
	case picoCalcKeyLeft:
		return KeyLeft
	case picoCalcKeyRight:
		return KeyRight
	case picoCalcKeyUp:
		return KeyUp
	case picoCalcKeyDown:
		return KeyDown
	case picoCalcKeyIns:
		return KeyTab
	default:
		return KeyUnknown
	}
}

func (k *i2cKeyboard) String() string {
	return fmt.Sprintf("alt=%v ctrl=%v shift=%v", k.altDown, k.ctrlDown, k.shiftDown)
}
