//go:build !tinygo

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"sparkcalc/app"
	"sparkcalc/hal"
	"sparkcalc/internal/config"
	"sparkcalc/sparkos/proto"

	"github.com/spf13/afero"
)

func main() {
	var hcfg hal.HeadlessConfig
	var (
		path   string
		over   config.Overrides
		mirror bool
	)
	flag.BoolVar(&hcfg.Enabled, "headless", false, "Run without a window; keys are read from stdin.")
	flag.IntVar(&hcfg.Hz, "hz", 60, "Tick rate in headless mode.")
	flag.Uint64Var(&hcfg.Ticks, "ticks", 0, "Stop after N ticks in headless mode (0 = run forever).")
	flag.StringVar(&path, "config", "", "TOML config file; reloaded when it changes.")
	flag.IntVar(&over.Scale, "scale", 0, "Window scale (overrides the config file).")
	flag.StringVar(&over.Modifier, "modifier", "", "Key that shows alternate buttons: ctrl, alt or shift.")
	flag.BoolVar(&over.Debug, "debug", false, "Log key events and evaluations.")
	flag.BoolVar(&mirror, "mirror", false, "Echo the displays to stdout (always on when headless).")
	flag.Parse()

	fs := afero.NewOsFs()
	load := func() (config.Config, error) {
		if path == "" {
			return config.Default().With(over), nil
		}
		c, err := config.Load(fs, path)
		if err != nil {
			return config.Config{}, err
		}
		c = c.With(over)
		return c, c.Validate()
	}

	cfg, err := load()
	if err != nil {
		fatal(err)
	}
	theme, err := cfg.ProtoTheme()
	if err != nil {
		fatal(err)
	}

	acfg := app.Config{
		Theme:  theme,
		Mirror: mirror || hcfg.Enabled,
	}
	if path != "" {
		acfg.ConfigPath = path
		acfg.Reload = func() (proto.Theme, error) {
			c, err := load()
			if err != nil {
				return proto.Theme{}, err
			}
			return c.ProtoTheme()
		}
	}

	sig, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	newApp := func(h hal.HAL) func() error {
		sys := app.NewSystem(h, acfg)
		go func() {
			select {
			case <-sig.Done():
				stop()
				sys.Stop("interrupt")
			case <-sys.Done():
			}
		}()
		return sys.Step
	}

	if hcfg.Enabled {
		hcfg.Console = true
		hcfg.Latch = theme.Modifier
		err = hal.RunHeadless(context.Background(), newApp, hcfg)
	} else {
		wcfg := hal.WindowConfig{Scale: cfg.Scale}
		if acfg.Mirror {
			// Keep stdout for the mirror.
			wcfg.LogOut = os.Stderr
		}
		err = hal.RunWindow(newApp, wcfg)
	}
	if err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
