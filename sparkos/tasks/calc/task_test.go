package calc

import (
	"testing"
	"time"

	"sparkcalc/hal"
	"sparkcalc/sparkos/kernel"
	"sparkcalc/sparkos/proto"
)

const testTimeout = 1 * time.Second

type sendReq struct {
	kind    proto.Kind
	payload []byte
}

type senderTask struct {
	to   kernel.Capability
	reqs <-chan sendReq
}

func (t *senderTask) Run(ctx *kernel.Context) {
	for req := range t.reqs {
		for ctx.SendToCapResult(t.to, uint16(req.kind), req.payload, kernel.Capability{}) == kernel.SendErrQueueFull {
			time.Sleep(time.Millisecond)
		}
	}
}

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

type harness struct {
	t      *testing.T
	fb     *testFB
	send   chan sendReq
	status chan kernel.Message
	app    chan kernel.Message
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	k := kernel.New()
	calcEP := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	statusEP := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	appEP := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)

	h := &harness{
		t:      t,
		fb:     newTestFB(320, 320),
		send:   make(chan sendReq, 32),
		status: make(chan kernel.Message, 64),
		app:    make(chan kernel.Message, 4),
	}
	k.AddTask(New(h.fb, calcEP.Restrict(kernel.RightRecv), kernel.Capability{},
		statusEP.Restrict(kernel.RightSend), appEP.Restrict(kernel.RightSend), testTheme))
	k.AddTask(&recvTask{cap: statusEP.Restrict(kernel.RightRecv), out: h.status})
	k.AddTask(&recvTask{cap: appEP.Restrict(kernel.RightRecv), out: h.app})
	k.AddTask(&senderTask{to: calcEP.Restrict(kernel.RightSend), reqs: h.send})

	// Initial snapshot.
	h.nextStatus()
	return h
}

func (h *harness) key(ev hal.KeyEvent) {
	h.send <- sendReq{kind: proto.MsgKey, payload: proto.KeyPayload(ev, 0)}
}

func (h *harness) tap(r, c int) {
	h.pointer(r, c, true)
	h.pointer(r, c, false)
}

func (h *harness) pointer(r, c int, press bool) {
	k := newLayout(h.fb.w, h.fb.h).keys[r][c]
	ev := hal.PointerEvent{X: k.x + k.w/2, Y: k.y + k.h/2, Press: press}
	h.send <- sendReq{kind: proto.MsgPointer, payload: proto.PointerPayload(ev)}
}

func (h *harness) nextStatus() proto.Status {
	h.t.Helper()
	select {
	case msg := <-h.status:
		st, ok := proto.DecodeStatusPayload(msg.Payload())
		if !ok {
			h.t.Fatalf("bad status payload %x", msg.Payload())
		}
		return st
	case <-time.After(testTimeout):
		h.t.Fatal("timed out waiting for status")
		return proto.Status{}
	}
}

// waitStatus reads snapshots until one matches.
func (h *harness) waitStatus(match func(proto.Status) bool) proto.Status {
	h.t.Helper()
	for {
		st := h.nextStatus()
		if match(st) {
			return st
		}
	}
}

func TestTaskClicksToResult(t *testing.T) {
	h := newHarness(t)
	kp := DefaultKeypad()

	for _, label := range []string{"2", "+", "3", "="} {
		r, c := find(t, kp, label)
		h.tap(r, c)
	}
	st := h.waitStatus(func(s proto.Status) bool { return s.Expr == "5.0" })
	if st.Result != "5.0" || st.Memory != "MEM: <unset>" || st.Alt {
		t.Fatalf("status=%+v", st)
	}
	if h.fb.presents == 0 {
		t.Fatal("nothing was drawn")
	}
}

func TestTaskAltModeAndKeys(t *testing.T) {
	h := newHarness(t)

	h.key(hal.KeyEvent{Code: hal.KeyCtrl, Press: true})
	h.waitStatus(func(s proto.Status) bool { return s.Alt })

	r, c := find(t, DefaultKeypad(), "7")
	h.tap(r, c)
	h.key(hal.KeyEvent{Code: hal.KeyCtrl})
	h.key(hal.KeyEvent{Rune: '4', Press: true})
	h.key(hal.KeyEvent{Rune: ')', Press: true})
	st := h.waitStatus(func(s proto.Status) bool { return s.Expr == "(4)" })
	if st.Alt || st.Result != "4.0" {
		t.Fatalf("status=%+v", st)
	}
}

func TestTaskPressReleaseOnDifferentKeysDoesNothing(t *testing.T) {
	h := newHarness(t)
	r, c := find(t, DefaultKeypad(), "9")
	h.pointer(r, c, true)
	h.pointer(r, c+1, false)
	h.key(hal.KeyEvent{Rune: '1', Press: true})
	st := h.waitStatus(func(s proto.Status) bool { return s.Expr != "" })
	if st.Expr != "1" {
		t.Fatalf("expr=%q, want 1", st.Expr)
	}
}

func TestTaskQuitNotifiesAppManager(t *testing.T) {
	h := newHarness(t)
	h.key(hal.KeyEvent{Rune: 'q', Press: true})
	select {
	case msg := <-h.app:
		if proto.Kind(msg.Kind) != proto.MsgAppExit {
			t.Fatalf("kind=%s", proto.Kind(msg.Kind))
		}
	case <-time.After(testTimeout):
		t.Fatal("no exit message")
	}
}

func TestTaskThemeChangesModifier(t *testing.T) {
	h := newHarness(t)
	th := testTheme
	th.Modifier = hal.KeyShift
	h.send <- sendReq{kind: proto.MsgTheme, payload: proto.ThemePayload(th)}

	h.key(hal.KeyEvent{Code: hal.KeyCtrl, Press: true})
	h.key(hal.KeyEvent{Rune: '1', Press: true})
	st := h.waitStatus(func(s proto.Status) bool { return s.Expr == "1" })
	if st.Alt {
		t.Fatal("ctrl still switches mode after theme change")
	}
	h.key(hal.KeyEvent{Code: hal.KeyShift, Press: true})
	h.waitStatus(func(s proto.Status) bool { return s.Alt })
}
