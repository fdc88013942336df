package input

import (
	"testing"
	"time"

	"sparkcalc/hal"
	"sparkcalc/sparkos/kernel"
	"sparkcalc/sparkos/proto"
)

const testTimeout = 1 * time.Second

type fakeKeyboard struct{ ch chan hal.KeyEvent }

func (k fakeKeyboard) Events() <-chan hal.KeyEvent { return k.ch }

type fakePointer struct{ ch chan hal.PointerEvent }

func (p fakePointer) Events() <-chan hal.PointerEvent { return p.ch }

type fakeInput struct {
	kbd fakeKeyboard
	ptr fakePointer
}

func (in fakeInput) Keyboard() hal.Keyboard { return in.kbd }
func (in fakeInput) Pointer() hal.Pointer   { return in.ptr }

type recvTask struct {
	cap kernel.Capability
	out chan<- kernel.Message
}

func (t *recvTask) Run(ctx *kernel.Context) {
	ch, ok := ctx.RecvChan(t.cap)
	if !ok {
		return
	}
	for msg := range ch {
		t.out <- msg
	}
}

func recvWithTimeout(t *testing.T, ch <-chan kernel.Message) kernel.Message {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(testTimeout):
		t.Fatal("timed out waiting for message")
		return kernel.Message{}
	}
}

func TestForwardsKeysAndPointer(t *testing.T) {
	k := kernel.New()
	ep := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)

	in := fakeInput{
		kbd: fakeKeyboard{ch: make(chan hal.KeyEvent, 4)},
		ptr: fakePointer{ch: make(chan hal.PointerEvent, 4)},
	}
	out := make(chan kernel.Message, 16)
	k.AddTask(New(in, ep.Restrict(kernel.RightSend)))
	k.AddTask(&recvTask{cap: ep.Restrict(kernel.RightRecv), out: out})

	in.kbd.ch <- hal.KeyEvent{Press: true, Rune: '7'}
	msg := recvWithTimeout(t, out)
	if proto.Kind(msg.Kind) != proto.MsgKey {
		t.Fatalf("kind=%s, want key", proto.Kind(msg.Kind))
	}
	ev, flags, ok := proto.DecodeKeyPayload(msg.Payload())
	if !ok || ev.Rune != '7' || !ev.Press || flags != 0 {
		t.Fatalf("decoded %+v flags=%d ok=%v", ev, flags, ok)
	}

	in.ptr.ch <- hal.PointerEvent{X: 10, Y: 200, Press: true}
	msg = recvWithTimeout(t, out)
	if proto.Kind(msg.Kind) != proto.MsgPointer {
		t.Fatalf("kind=%s, want pointer", proto.Kind(msg.Kind))
	}
	pev, ok := proto.DecodePointerPayload(msg.Payload())
	if !ok || pev != (hal.PointerEvent{X: 10, Y: 200, Press: true}) {
		t.Fatalf("decoded %+v ok=%v", pev, ok)
	}
}

func TestBackspaceRepeat(t *testing.T) {
	s := New(nil, kernel.Capability{})

	s.handleKeyEvent(100, hal.KeyEvent{Code: hal.KeyBackspace, Press: true})
	if len(s.pending) != 1 {
		t.Fatalf("pending=%d after press, want 1", len(s.pending))
	}

	s.handleRepeat(100 + repeatDelayTicks - 1)
	if len(s.pending) != 1 {
		t.Fatalf("repeat fired before the delay")
	}
	s.handleRepeat(100 + repeatDelayTicks)
	if len(s.pending) != 2 {
		t.Fatalf("pending=%d after delay, want 2", len(s.pending))
	}
	_, flags, _ := proto.DecodeKeyPayload(s.pending[1].payload)
	if flags&proto.KeyFlagRepeat == 0 {
		t.Fatal("repeat press should carry KeyFlagRepeat")
	}

	s.handleRepeat(100 + repeatDelayTicks + repeatRateTicks)
	if len(s.pending) != 3 {
		t.Fatalf("pending=%d after rate, want 3", len(s.pending))
	}

	s.handleKeyEvent(1000, hal.KeyEvent{Code: hal.KeyBackspace})
	s.handleRepeat(5000)
	if len(s.pending) != 4 {
		t.Fatalf("repeat continued after release: pending=%d", len(s.pending))
	}
}

func TestOnlyBackspaceRepeats(t *testing.T) {
	s := New(nil, kernel.Capability{})
	s.handleKeyEvent(0, hal.KeyEvent{Press: true, Rune: '1'})
	s.handleRepeat(10_000)
	s.handleKeyEvent(0, hal.KeyEvent{Code: hal.KeyBackspace, Press: true, Mods: hal.ModAlt})
	s.handleRepeat(20_000)
	if len(s.pending) != 2 {
		t.Fatalf("pending=%d, want 2 (no repeats)", len(s.pending))
	}
}

func TestQueueDropsOldest(t *testing.T) {
	s := New(nil, kernel.Capability{})
	for i := 0; i < maxPending+3; i++ {
		s.queue(proto.MsgKey, []byte{byte(i)})
	}
	if len(s.pending) != maxPending {
		t.Fatalf("pending=%d, want %d", len(s.pending), maxPending)
	}
	if s.pending[0].payload[0] != 3 {
		t.Fatalf("oldest kept=%d, want 3", s.pending[0].payload[0])
	}
}

func TestPendingKeysPrecedePointer(t *testing.T) {
	// Both channels are ready before Run starts, so select may pick either.
	for i := 0; i < 20; i++ {
		k := kernel.New()
		ep := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
		in := fakeInput{
			kbd: fakeKeyboard{ch: make(chan hal.KeyEvent, 4)},
			ptr: fakePointer{ch: make(chan hal.PointerEvent, 4)},
		}
		in.kbd.ch <- hal.KeyEvent{Code: hal.KeyCtrl, Press: true}
		in.kbd.ch <- hal.KeyEvent{Code: hal.KeyCtrl}
		in.ptr.ch <- hal.PointerEvent{X: 5, Y: 250}

		out := make(chan kernel.Message, 16)
		k.AddTask(&recvTask{cap: ep.Restrict(kernel.RightRecv), out: out})
		k.AddTask(New(in, ep.Restrict(kernel.RightSend)))

		var kinds []proto.Kind
		for j := 0; j < 3; j++ {
			kinds = append(kinds, proto.Kind(recvWithTimeout(t, out).Kind))
		}
		want := []proto.Kind{proto.MsgKey, proto.MsgKey, proto.MsgPointer}
		for j := range want {
			if kinds[j] != want[j] {
				t.Fatalf("run %d: order %v, want %v", i, kinds, want)
			}
		}
	}
}
