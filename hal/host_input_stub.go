//go:build !tinygo && !cgo

package hal

// No keyboard or pointer polling without the window backend.
func (k *hostKeyboard) poll() {}

func (p *hostPointer) poll() {}
