package calc

import (
	"fmt"

	"sparkcalc/hal"
	logclient "sparkcalc/sparkos/client/logger"
	"sparkcalc/sparkos/kernel"
	"sparkcalc/sparkos/proto"
)

// Task is the calculator app. It owns the State and Dispatcher and is the
// only goroutine that touches them.
type Task struct {
	disp      hal.Display
	ep        kernel.Capability
	logCap    kernel.Capability
	statusCap kernel.Capability
	appCap    kernel.Capability

	theme proto.Theme

	st   State
	d    *Dispatcher
	tape *Tape

	fb     hal.Framebuffer
	canvas *canvas
	lay    layout

	pressed cell

	lastFrame  uint64
	lastStatus proto.Status
	statusSent bool
}

// New creates the calculator task. Any capability except ep may be zero; the
// matching output is then skipped.
func New(disp hal.Display, ep, logCap, statusCap, appCap kernel.Capability, theme proto.Theme) *Task {
	t := &Task{
		disp:      disp,
		ep:        ep,
		logCap:    logCap,
		statusCap: statusCap,
		appCap:    appCap,
		theme:     theme,
	}
	t.d = NewDispatcher(&t.st, DefaultKeypad(), theme.Modifier)
	return t
}

func (t *Task) Run(ctx *kernel.Context) {
	ch, ok := ctx.RecvChan(t.ep)
	if !ok {
		return
	}
	t.initScreen()
	t.refresh(ctx)

	for msg := range ch {
		switch proto.Kind(msg.Kind) {
		case proto.MsgAppShutdown:
			t.exit(ctx, "shutdown")
			return

		case proto.MsgKey:
			ev, flags, ok := proto.DecodeKeyPayload(msg.Payload())
			if !ok {
				continue
			}
			if t.handleKey(ctx, ev, flags) {
				t.refresh(ctx)
				t.exit(ctx, "quit")
				return
			}

		case proto.MsgPointer:
			ev, ok := proto.DecodePointerPayload(msg.Payload())
			if !ok {
				continue
			}
			t.handlePointer(ctx, ev)

		case proto.MsgTheme:
			th, ok := proto.DecodeThemePayload(msg.Payload())
			if !ok {
				continue
			}
			t.applyTheme(ctx, th)

		default:
			continue
		}
		t.refresh(ctx)
	}
}

func (t *Task) initScreen() {
	w, h := 320, 320
	if t.disp != nil {
		t.fb = t.disp.Framebuffer()
	}
	if t.fb != nil {
		t.canvas = newCanvas(t.fb)
		w, h = t.fb.Width(), t.fb.Height()
	}
	t.lay = newLayout(w, h)
	t.tape = NewTape(t.lay.tape.w, t.lay.tape.h)
}

// handleKey reports whether the app should quit.
func (t *Task) handleKey(ctx *kernel.Context, ev hal.KeyEvent, flags uint8) bool {
	if t.theme.Debug {
		t.logf(ctx, "calc: key %s", describeKey(ev, flags))
	}
	out := t.d.Key(ev)
	t.afterAction(ctx, out)
	return out.Quit
}

func (t *Task) handlePointer(ctx *kernel.Context, ev hal.PointerEvent) {
	r, c, hit := t.lay.hit(ev.X, ev.Y)
	if ev.Press {
		t.pressed = cell{r: r, c: c, ok: hit}
		return
	}
	was := t.pressed
	t.pressed = cell{}
	// A click lands when press and release hit the same button.
	if !hit || !was.ok || was.r != r || was.c != c {
		return
	}
	if t.theme.Debug {
		f, _ := t.d.Face(r, c)
		t.logf(ctx, "calc: click %q (%s)", f.Label, f.Action.Kind)
	}
	t.afterAction(ctx, t.d.Click(r, c))
}

func (t *Task) afterAction(ctx *kernel.Context, out Outcome) {
	if out.Tape != "" && t.tape != nil {
		t.tape.Append(out.Tape)
	}
	if t.theme.Debug && out.Applied {
		res := t.st.Result()
		if res.Err != nil {
			t.logf(ctx, "calc: eval %q: %v", t.st.Expression(), res.Err)
		} else {
			t.logf(ctx, "calc: eval %q = %s", t.st.Expression(), res)
		}
	}
}

func (t *Task) applyTheme(ctx *kernel.Context, th proto.Theme) {
	t.theme = th
	if t.d.SetModifier(th.Modifier) {
		t.logf(ctx, "calc: alternate key is now %s", th.Modifier)
	}
}

func (t *Task) view() *view {
	return &view{
		expr:    t.st.Expression(),
		result:  t.st.Result(),
		memory:  t.st.MemoryLabel(),
		mode:    t.d.Mode(),
		labels:  t.d.Labels(),
		pressed: t.pressed,
		tapeVer: t.tape.Version(),
		theme:   t.theme,
	}
}

// refresh redraws when the visible state changed and pushes a status
// snapshot when the displays changed.
func (t *Task) refresh(ctx *kernel.Context) {
	v := t.view()

	if t.canvas != nil {
		if h := v.hash(); h != t.lastFrame {
			t.lastFrame = h
			t.lay.draw(t.canvas, v, t.d.Keypad, t.tape)
			_ = t.canvas.Display()
		}
	}

	st := statusOf(v)
	if t.statusSent && st == t.lastStatus {
		return
	}
	if !t.statusCap.Valid() {
		return
	}
	res := ctx.SendToCapResult(t.statusCap, uint16(proto.MsgStatus), proto.StatusPayload(st, kernel.MaxMessageBytes), kernel.Capability{})
	if res == kernel.SendOK {
		t.lastStatus = st
		t.statusSent = true
	}
}

func (t *Task) exit(ctx *kernel.Context, reason string) {
	if !t.appCap.Valid() {
		return
	}
	res := ctx.SendToCapResult(t.appCap, uint16(proto.MsgAppExit), proto.AppExitPayload(reason, kernel.MaxMessageBytes), kernel.Capability{})
	if res != kernel.SendOK {
		t.logf(ctx, "calc: exit notify: %s", res)
	}
}

func (t *Task) logf(ctx *kernel.Context, format string, args ...any) {
	if !t.logCap.Valid() {
		return
	}
	_ = logclient.Logf(ctx, t.logCap, format, args...)
}

func describeKey(ev hal.KeyEvent, flags uint8) string {
	dir := "release"
	if ev.Press {
		dir = "press"
	}
	name := ev.Code.String()
	if ev.Rune != 0 {
		name = fmt.Sprintf("%q", ev.Rune)
	}
	s := fmt.Sprintf("%s %s mods=%03b", dir, name, ev.Mods)
	if flags&proto.KeyFlagRepeat != 0 {
		s += " repeat"
	}
	return s
}
