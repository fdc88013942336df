package app

import (
	"io"

	"sparkcalc/hal"
	"sparkcalc/sparkos/kernel"
	"sparkcalc/sparkos/proto"
	"sparkcalc/sparkos/services/appmgr"
	"sparkcalc/sparkos/services/confwatch"
	"sparkcalc/sparkos/services/input"
	"sparkcalc/sparkos/services/logger"
	"sparkcalc/sparkos/services/mirror"
	"sparkcalc/sparkos/tasks/calc"
)

// Config selects the optional services started next to the calculator.
type Config struct {
	Theme proto.Theme

	// Mirror echoes the displays to MirrorOut (stdout when nil).
	Mirror    bool
	MirrorOut io.Writer

	// ConfigPath is watched for changes when Reload is set.
	ConfigPath string
	Reload     confwatch.Loader
}

// System is a booted calculator.
type System struct {
	k   *kernel.Kernel
	mgr *appmgr.Service
}

// New boots the system and returns its step function for the host run loops.
func New(h hal.HAL, cfg Config) func() error {
	return NewSystem(h, cfg).Step
}

// Run boots the system and blocks until the calculator exits (TinyGo entrypoint).
func Run(h hal.HAL, cfg Config) {
	s := NewSystem(h, cfg)
	<-s.Done()
	if l := h.Logger(); l != nil {
		l.WriteLineString("spark: calculator exited: " + s.mgr.Reason())
	}
}

func NewSystem(h hal.HAL, cfg Config) *System {
	installPanicHandler(h)

	k := kernel.New()

	logEP := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	calcEP := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	appEP := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)

	logCap := logEP.Restrict(kernel.RightSend)
	calcCap := calcEP.Restrict(kernel.RightSend)

	var statusCap kernel.Capability
	if cfg.Mirror {
		statusEP := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
		statusCap = statusEP.Restrict(kernel.RightSend)
		k.AddTask(mirror.New(statusEP.Restrict(kernel.RightRecv), cfg.MirrorOut))
	}

	mgr := appmgr.New(appEP.Restrict(kernel.RightRecv), calcCap, logCap)

	k.AddTask(logger.New(h.Logger(), logEP.Restrict(kernel.RightRecv)))
	k.AddTask(mgr)
	k.AddTask(calc.New(h.Display(), calcEP.Restrict(kernel.RightRecv), logCap, statusCap, appEP.Restrict(kernel.RightSend), cfg.Theme))
	k.AddTask(input.New(h.Input(), calcCap))
	if cfg.ConfigPath != "" && cfg.Reload != nil {
		k.AddTask(confwatch.New(cfg.ConfigPath, cfg.Reload, calcCap, logCap))
	}

	if ht := h.Time(); ht != nil {
		if ch := ht.Ticks(); ch != nil {
			go func() {
				for seq := range ch {
					k.TickTo(seq)
				}
			}()
		}
	}

	return &System{k: k, mgr: mgr}
}

// Step reports hal.ErrQuit once the calculator has exited.
func (s *System) Step() error {
	select {
	case <-s.mgr.Done():
		return hal.ErrQuit
	default:
		return nil
	}
}

// Stop asks the calculator to shut down; Step reports hal.ErrQuit when it has.
func (s *System) Stop(reason string) { s.mgr.Stop(reason) }

// Done is closed once the calculator has exited.
func (s *System) Done() <-chan struct{} { return s.mgr.Done() }
