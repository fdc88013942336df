//go:build !tinygo

package hal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	Enabled bool
	Hz      int
	Ticks   uint64

	// Console feeds keystrokes read from Stdin (os.Stdin when nil) into the keyboard.
	Console bool
	Stdin   io.Reader

	// Latch is the modifier Tab toggles on the console (KeyCtrl when unset).
	Latch KeyCode
}

// RunHeadless runs the OS without opening a window.
//
// Logs go to stderr so stdout stays free for the status mirror.
func RunHeadless(ctx context.Context, newApp func(HAL) func() error, cfg HeadlessConfig) error {
	if cfg.Hz <= 0 {
		cfg.Hz = 60
	}

	h := newHost(os.Stderr)
	step := newApp(h)

	if cfg.Console {
		in := cfg.Stdin
		if in == nil {
			in = os.Stdin
		}
		go newConsoleReader(in, h.kbd, cfg.Latch).run(ctx)
	}

	d := time.Second / time.Duration(cfg.Hz)
	if d <= 0 {
		return fmt.Errorf("invalid headless hz: %d", cfg.Hz)
	}
	t := time.NewTicker(d)
	defer t.Stop()

	var tick uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			h.t.step(1)
			if step != nil {
				if err := step(); err != nil {
					if errors.Is(err, ErrQuit) {
						return nil
					}
					return err
				}
			}
			tick++
			if cfg.Ticks > 0 && tick >= cfg.Ticks {
				return nil
			}
		}
	}
}
