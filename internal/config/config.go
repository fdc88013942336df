// Package config loads the calculator settings file.
//
// The file is TOML and every key is optional:
//
//	modifier = "ctrl"   # key that shows alternate buttons: ctrl, alt or shift
//	scale    = 2        # host window scale
//	debug    = false    # log key events and evaluations
//
//	[theme]
//	background = "#202428"
//	error      = "#e05050"
package config

import (
	"errors"
	"fmt"
	"image/color"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/afero"

	"sparkcalc/hal"
	"sparkcalc/sparkos/proto"
)

var (
	ErrUnknownKey = errors.New("unknown config key")
	ErrInvalid    = errors.New("invalid config value")
)

const maxScale = 8

type Config struct {
	Modifier string `toml:"modifier"`
	Scale    int    `toml:"scale"`
	Debug    bool   `toml:"debug"`
	Theme    Theme  `toml:"theme"`
}

// Theme holds colors as "#rrggbb" strings.
type Theme struct {
	Background string `toml:"background"`
	Display    string `toml:"display"`
	Text       string `toml:"text"`
	Key        string `toml:"key"`
	KeyText    string `toml:"key_text"`
	Func       string `toml:"func"`
	Alt        string `toml:"alt"`
	Error      string `toml:"error"`
}

func Default() Config {
	return Config{
		Modifier: "ctrl",
		Scale:    2,
		Theme: Theme{
			Background: "#202428",
			Display:    "#101214",
			Text:       "#e8e8e8",
			Key:        "#3a3f45",
			KeyText:    "#ffffff",
			Func:       "#4f4a6b",
			Alt:        "#c08a2e",
			Error:      "#e05050",
		},
	}
}

// Load reads path from fs on top of Default. A missing file is an error
// wrapping fs.ErrNotExist.
func Load(fs afero.Fs, path string) (Config, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	b, err := afero.ReadFile(fs, path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	cfg, err := Decode(b)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Decode parses TOML on top of Default and validates the result.
func Decode(b []byte) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(string(b), &cfg)
	if err != nil {
		return Config{}, err
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		keys := make([]string, len(undec))
		for i, k := range undec {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%w: %s", ErrUnknownKey, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every bad value at once.
func (c Config) Validate() error {
	var errs []error
	if _, err := ParseModifier(c.Modifier); err != nil {
		errs = append(errs, err)
	}
	if c.Scale < 1 || c.Scale > maxScale {
		errs = append(errs, fmt.Errorf("%w: scale %d (want 1..%d)", ErrInvalid, c.Scale, maxScale))
	}
	if _, err := c.Theme.parse(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Overrides are command-line values layered over the file. Zero values leave
// the file setting alone; Debug can only switch logging on.
type Overrides struct {
	Modifier string
	Scale    int
	Debug    bool
}

func (c Config) With(o Overrides) Config {
	if o.Modifier != "" {
		c.Modifier = o.Modifier
	}
	if o.Scale > 0 {
		c.Scale = o.Scale
	}
	if o.Debug {
		c.Debug = true
	}
	return c
}

// ProtoTheme converts the config into the message sent to the calculator.
func (c Config) ProtoTheme() (proto.Theme, error) {
	mod, err := ParseModifier(c.Modifier)
	if err != nil {
		return proto.Theme{}, err
	}
	t, err := c.Theme.parse()
	if err != nil {
		return proto.Theme{}, err
	}
	t.Modifier = mod
	t.Debug = c.Debug
	return t, nil
}

func (t Theme) parse() (proto.Theme, error) {
	var out proto.Theme
	fields := []struct {
		name string
		in   string
		dst  *color.RGBA
	}{
		{"background", t.Background, &out.Background},
		{"display", t.Display, &out.Display},
		{"text", t.Text, &out.Text},
		{"key", t.Key, &out.Key},
		{"key_text", t.KeyText, &out.KeyText},
		{"func", t.Func, &out.Func},
		{"alt", t.Alt, &out.Alt},
		{"error", t.Error, &out.Error},
	}
	var errs []error
	for _, f := range fields {
		c, err := ParseColor(f.in)
		if err != nil {
			errs = append(errs, fmt.Errorf("theme.%s: %w", f.name, err))
			continue
		}
		*f.dst = c
	}
	if err := errors.Join(errs...); err != nil {
		return proto.Theme{}, err
	}
	return out, nil
}

// ParseModifier maps "ctrl", "alt" or "shift" to its key code.
func ParseModifier(s string) (hal.KeyCode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ctrl", "control":
		return hal.KeyCtrl, nil
	case "alt":
		return hal.KeyAlt, nil
	case "shift":
		return hal.KeyShift, nil
	default:
		return hal.KeyUnknown, fmt.Errorf("%w: modifier %q (want ctrl, alt or shift)", ErrInvalid, s)
	}
}

// ParseColor accepts "#rrggbb" or "#rgb".
func ParseColor(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return color.RGBA{}, fmt.Errorf("%w: color %q", ErrInvalid, s)
	}
	var v [3]uint8
	for i := range v {
		hi, ok1 := hexNibble(h[i*2])
		lo, ok2 := hexNibble(h[i*2+1])
		if !ok1 || !ok2 {
			return color.RGBA{}, fmt.Errorf("%w: color %q", ErrInvalid, s)
		}
		v[i] = hi<<4 | lo
	}
	return color.RGBA{R: v[0], G: v[1], B: v[2], A: 0xFF}, nil
}

func hexNibble(b byte) (uint8, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	default:
		return 0, false
	}
}
