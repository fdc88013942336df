package input

import (
	"sparkcalc/hal"
	"sparkcalc/sparkos/kernel"
	"sparkcalc/sparkos/proto"
)

// Service forwards HAL keyboard and pointer events to one consumer endpoint.
//
// Held Backspace repeats; repeated presses carry proto.KeyFlagRepeat.
type Service struct {
	in     hal.Input
	outCap kernel.Capability

	pending []outMsg

	held           *hal.KeyEvent
	nextRepeatTick uint64
}

type outMsg struct {
	kind    proto.Kind
	payload []byte
}

const maxPending = 64

func New(in hal.Input, outCap kernel.Capability) *Service {
	return &Service{in: in, outCap: outCap}
}

func (s *Service) Run(ctx *kernel.Context) {
	if ctx == nil || s.in == nil {
		return
	}
	var keys <-chan hal.KeyEvent
	if kbd := s.in.Keyboard(); kbd != nil {
		keys = kbd.Events()
	}
	var ptrs <-chan hal.PointerEvent
	if ptr := s.in.Pointer(); ptr != nil {
		ptrs = ptr.Events()
	}
	if keys == nil && ptrs == nil {
		return
	}

	done := make(chan struct{})
	defer close(done)

	tickCh := make(chan uint64, 16)
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

	for {
		select {
		case ev, ok := <-keys:
			if !ok {
				return
			}
			s.handleKeyEvent(ctx.NowTick(), ev)
			s.flush(ctx)
		case ev, ok := <-ptrs:
			if !ok {
				return
			}
			// Keys from the same frame go first so a click sees the current mode.
			if !s.drainKeys(ctx.NowTick(), keys) {
				return
			}
			s.queue(proto.MsgPointer, proto.PointerPayload(ev))
			s.flush(ctx)
		case tick := <-tickCh:
			s.handleRepeat(tick)
			s.flush(ctx)
		}
	}
}

func (s *Service) handleKeyEvent(now uint64, ev hal.KeyEvent) {
	s.queue(proto.MsgKey, proto.KeyPayload(ev, 0))

	if !ev.Press {
		if s.held != nil && ev.Code == s.held.Code {
			s.held = nil
			s.nextRepeatTick = 0
		}
		return
	}
	if !repeatableKey(ev) {
		s.held = nil
		return
	}
	held := ev
	s.held = &held
	s.nextRepeatTick = now + repeatDelayTicks
}

// drainKeys queues every key event already waiting. It reports false once the
// keyboard channel is closed.
func (s *Service) drainKeys(now uint64, keys <-chan hal.KeyEvent) bool {
	for {
		select {
		case ev, ok := <-keys:
			if !ok {
				return false
			}
			s.handleKeyEvent(now, ev)
		default:
			return true
		}
	}
}

func (s *Service) handleRepeat(tick uint64) {
	if s.held == nil || tick < s.nextRepeatTick {
		return
	}
	s.queue(proto.MsgKey, proto.KeyPayload(*s.held, proto.KeyFlagRepeat))
	s.nextRepeatTick = tick + repeatRateTicks
}

func (s *Service) queue(kind proto.Kind, payload []byte) {
	if len(s.pending) >= maxPending {
		// Drop the oldest.
		s.pending = s.pending[1:]
	}
	s.pending = append(s.pending, outMsg{kind: kind, payload: payload})
}

func (s *Service) flush(ctx *kernel.Context) {
	if !s.outCap.Valid() {
		s.pending = nil
		return
	}
	for len(s.pending) > 0 {
		m := s.pending[0]
		res := ctx.SendToCapResult(s.outCap, uint16(m.kind), m.payload, kernel.Capability{})
		switch res {
		case kernel.SendOK:
			s.pending = s.pending[1:]
		case kernel.SendErrQueueFull:
			return
		default:
			s.pending = nil
			return
		}
	}
}

const (
	// Ticks are 1ms on host and TinyGo.
	repeatDelayTicks = 350
	repeatRateTicks  = 60
)

func repeatableKey(ev hal.KeyEvent) bool {
	return ev.Rune == 0 && ev.Code == hal.KeyBackspace && ev.Mods&hal.ModAlt == 0
}
