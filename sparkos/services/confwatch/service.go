// Package confwatch reloads the configuration file when it changes on disk
// and pushes the resulting theme to the calculator as MsgTheme.
package confwatch

import (
	"path/filepath"

	logclient "sparkcalc/sparkos/client/logger"
	"sparkcalc/sparkos/kernel"
	"sparkcalc/sparkos/proto"

	"github.com/fsnotify/fsnotify"
)

// debounceTicks groups the burst of events an editor save produces.
const debounceTicks = 100

// Loader reads the configuration and returns the theme to apply.
type Loader func() (proto.Theme, error)

type Service struct {
	path   string
	load   Loader
	outCap kernel.Capability
	logCap kernel.Capability
}

func New(path string, load Loader, outCap, logCap kernel.Capability) *Service {
	return &Service{path: filepath.Clean(path), load: load, outCap: outCap, logCap: logCap}
}

func (s *Service) Run(ctx *kernel.Context) {
	if s.path == "" || s.load == nil {
		return
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		s.logf(ctx, "confwatch: %v", err)
		return
	}
	defer w.Close()

	// Watch the directory: editors often replace the file instead of writing it.
	if err := w.Add(filepath.Dir(s.path)); err != nil {
		s.logf(ctx, "confwatch: watch %s: %v", s.path, err)
		return
	}

	done := make(chan struct{})
	defer close(done)

	tickCh := make(chan uint64, 4)
	go func() {
		last := ctx.NowTick()
		for {
			select {
			case <-done:
				return
			default:
			}
			last = ctx.WaitTick(last)
			select {
			case tickCh <- last:
			default:
			}
		}
	}()

	var due uint64
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != s.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				due = ctx.NowTick() + debounceTicks
			}

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			s.logf(ctx, "confwatch: %v", err)

		case now := <-tickCh:
			if due != 0 && now >= due {
				due = 0
				s.reload(ctx)
			}
		}
	}
}

func (s *Service) reload(ctx *kernel.Context) {
	th, err := s.load()
	if err != nil {
		s.logf(ctx, "confwatch: keeping previous settings: %v", err)
		return
	}
	res := ctx.SendToCapRetry(s.outCap, uint16(proto.MsgTheme), proto.ThemePayload(th), kernel.Capability{}, 50)
	if res != kernel.SendOK {
		s.logf(ctx, "confwatch: theme send: %s", res)
		return
	}
	s.logf(ctx, "confwatch: reloaded %s", s.path)
}

func (s *Service) logf(ctx *kernel.Context, format string, args ...any) {
	if !s.logCap.Valid() {
		return
	}
	_ = logclient.Logf(ctx, s.logCap, format, args...)
}
