//go:build tinygo

package main

import (
	"sparkcalc/app"
	"sparkcalc/hal"
	"sparkcalc/internal/config"
)

func main() {
	h := hal.New()
	theme, err := config.Default().ProtoTheme()
	if err != nil {
		h.Logger().WriteLineString("spark: " + err.Error())
	}
	app.Run(h, app.Config{Theme: theme})
	select {}
}
