//go:build !tinygo && cgo

package hal

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

var namedKeys = [...]struct {
	key  ebiten.Key
	code KeyCode
}{
	{ebiten.KeyArrowUp, KeyUp},
	{ebiten.KeyArrowDown, KeyDown},
	{ebiten.KeyArrowLeft, KeyLeft},
	{ebiten.KeyArrowRight, KeyRight},
	{ebiten.KeyEnter, KeyEnter},
	{ebiten.KeyNumpadEnter, KeyEnter},
	{ebiten.KeyEscape, KeyEscape},
	{ebiten.KeyBackspace, KeyBackspace},
	{ebiten.KeyTab, KeyTab},
	{ebiten.KeyDelete, KeyDelete},
	{ebiten.KeyHome, KeyHome},
	{ebiten.KeyEnd, KeyEnd},
}

var modifierKeys = [...]struct {
	left, right ebiten.Key
	code        KeyCode
}{
	{ebiten.KeyControlLeft, ebiten.KeyControlRight, KeyCtrl},
	{ebiten.KeyAltLeft, ebiten.KeyAltRight, KeyAlt},
	{ebiten.KeyShiftLeft, ebiten.KeyShiftRight, KeyShift},
}

func heldModifiers() Modifiers {
	var m Modifiers
	if ebiten.IsKeyPressed(ebiten.KeyControlLeft) || ebiten.IsKeyPressed(ebiten.KeyControlRight) {
		m |= ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAltLeft) || ebiten.IsKeyPressed(ebiten.KeyAltRight) {
		m |= ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight) {
		m |= ModShift
	}
	return m
}

func (k *hostKeyboard) poll() {
	mods := heldModifiers()

	// Modifiers first so a click or key in the same frame sees the new state.
	for _, mk := range modifierKeys {
		pressed := inpututil.IsKeyJustPressed(mk.left) || inpututil.IsKeyJustPressed(mk.right)
		released := (inpututil.IsKeyJustReleased(mk.left) || inpututil.IsKeyJustReleased(mk.right)) &&
			!ebiten.IsKeyPressed(mk.left) && !ebiten.IsKeyPressed(mk.right)
		if pressed {
			k.emit(KeyEvent{Code: mk.code, Press: true, Mods: mods})
		}
		if released {
			k.emit(KeyEvent{Code: mk.code, Press: false, Mods: mods})
		}
	}

	for _, r := range ebiten.AppendInputChars(nil) {
		k.emit(KeyEvent{Press: true, Rune: r, Mods: mods})
	}

	for _, nk := range namedKeys {
		if inpututil.IsKeyJustPressed(nk.key) {
			k.emit(KeyEvent{Code: nk.code, Press: true, Mods: mods})
		}
		if inpututil.IsKeyJustReleased(nk.key) {
			k.emit(KeyEvent{Code: nk.code, Press: false, Mods: mods})
		}
	}
}

func (p *hostPointer) poll() {
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		p.emit(PointerEvent{X: x, Y: y, Press: true})
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		p.emit(PointerEvent{X: x, Y: y, Press: false})
	}
	for _, id := range inpututil.AppendJustPressedTouchIDs(nil) {
		x, y := ebiten.TouchPosition(id)
		p.emit(PointerEvent{X: x, Y: y, Press: true})
	}
	for _, id := range inpututil.AppendJustReleasedTouchIDs(nil) {
		x, y := inpututil.TouchPositionInPreviousTick(id)
		p.emit(PointerEvent{X: x, Y: y, Press: false})
	}
}
