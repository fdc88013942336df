package appmgr

import (
	"sync"

	logclient "sparkcalc/sparkos/client/logger"
	"sparkcalc/sparkos/kernel"
	"sparkcalc/sparkos/proto"
)

// shutdownGraceTicks is how long the calculator has to acknowledge MsgAppShutdown.
//
// The tick duration is platform-defined; on host and TinyGo builds it is 1ms.
const shutdownGraceTicks = 500

// Service owns the calculator's lifetime.
//
// The calculator reports MsgAppExit when the user quits. Stop asks it to shut
// down; if it does not answer within shutdownGraceTicks the service gives up
// and finishes anyway. Done is closed in both cases.
type Service struct {
	ep      kernel.Capability
	calcCap kernel.Capability
	logCap  kernel.Capability

	stopReq chan string
	done    chan struct{}

	mu     sync.Mutex
	reason string
	once   sync.Once
}

func New(ep, calcCap, logCap kernel.Capability) *Service {
	return &Service{
		ep:      ep,
		calcCap: calcCap,
		logCap:  logCap,
		stopReq: make(chan string, 1),
		done:    make(chan struct{}),
	}
}

// Done is closed once the calculator has exited.
func (s *Service) Done() <-chan struct{} { return s.done }

// Reason returns the exit reason. It is empty until Done is closed.
func (s *Service) Reason() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reason
}

// Stop requests a shutdown. It does not block; extra requests are ignored.
func (s *Service) Stop(reason string) {
	select {
	case s.stopReq <- reason:
	default:
	}
}

func (s *Service) Run(ctx *kernel.Context) {
	ch, ok := ctx.RecvChan(s.ep)
	if !ok {
		s.finish("no endpoint")
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

	var (
		deadline   uint64
		stopReason string
	)
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				s.finish("endpoint closed")
				return
			}
			switch proto.Kind(msg.Kind) {
			case proto.MsgAppExit:
				reason := string(msg.Payload())
				if reason == "" {
					reason = "exit"
				}
				s.logf(ctx, "appmgr: calc exited: %s", reason)
				s.finish(reason)
				return
			default:
				s.reject(ctx, msg)
			}

		case reason := <-s.stopReq:
			if deadline != 0 {
				continue
			}
			stopReason = reason
			res := ctx.SendToCapResult(s.calcCap, uint16(proto.MsgAppShutdown), nil, kernel.Capability{})
			if res != kernel.SendOK {
				s.logf(ctx, "appmgr: shutdown send: %s", res)
				s.finish(stopReason)
				return
			}
			deadline = ctx.NowTick() + shutdownGraceTicks

		case now := <-tickCh:
			if deadline != 0 && now >= deadline {
				s.logf(ctx, "appmgr: calc did not acknowledge shutdown")
				s.finish(stopReason)
				return
			}
		}
	}
}

func (s *Service) reject(ctx *kernel.Context, msg kernel.Message) {
	if !msg.Cap.Valid() {
		return
	}
	_ = ctx.SendToCapResult(msg.Cap, uint16(proto.MsgError), proto.ErrorPayload(proto.ErrBadMessage, proto.Kind(msg.Kind), nil), kernel.Capability{})
}

func (s *Service) finish(reason string) {
	s.once.Do(func() {
		s.mu.Lock()
		s.reason = reason
		s.mu.Unlock()
		close(s.done)
	})
}

func (s *Service) logf(ctx *kernel.Context, format string, args ...any) {
	if !s.logCap.Valid() {
		return
	}
	_ = logclient.Logf(ctx, s.logCap, format, args...)
}
