package logger

import (
	"sync"
	"testing"
	"time"

	logclient "sparkcalc/sparkos/client/logger"
	"sparkcalc/sparkos/kernel"
	"sparkcalc/sparkos/proto"

	"github.com/google/go-cmp/cmp"
)

type lines struct {
	mu  sync.Mutex
	got []string
}

func (l *lines) WriteLineString(s string) { l.WriteLineBytes([]byte(s)) }

func (l *lines) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.got = append(l.got, string(b))
}

func (l *lines) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.got...)
}

type clientTask struct {
	logCap kernel.Capability
	done   chan<- struct{}
}

func (t *clientTask) Run(ctx *kernel.Context) {
	_ = logclient.LogRetry(ctx, t.logCap, "boot", 0)
	_ = ctx.SendToCapResult(t.logCap, uint16(proto.MsgKey), []byte("ignored"), kernel.Capability{})
	_ = logclient.Logf(ctx, t.logCap, "calc: %s = %s", "2+3", "5.0")
	close(t.done)
}

func TestWritesLogLines(t *testing.T) {
	k := kernel.New()
	ep := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	out := &lines{}
	done := make(chan struct{})
	k.AddTask(New(out, ep.Restrict(kernel.RightRecv)))
	k.AddTask(&clientTask{logCap: ep.Restrict(kernel.RightSend), done: done})
	<-done

	want := []string{"boot", "calc: 2+3 = 5.0"}
	deadline := time.Now().Add(time.Second)
	for {
		got := out.snapshot()
		diff := cmp.Diff(want, got)
		if diff == "" {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("lines mismatch (-want +got):\n%s", diff)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestClientClipsLongLines(t *testing.T) {
	k := kernel.New()
	ep := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	out := &lines{}
	k.AddTask(New(out, ep.Restrict(kernel.RightRecv)))

	long := make([]byte, kernel.MaxMessageBytes+40)
	for i := range long {
		long[i] = 'x'
	}
	done := make(chan kernel.SendResult, 1)
	k.AddTask(taskFunc(func(ctx *kernel.Context) {
		done <- logclient.Log(ctx, ep.Restrict(kernel.RightSend), string(long))
	}))
	if res := <-done; res != kernel.SendOK {
		t.Fatalf("Log = %s", res)
	}

	deadline := time.Now().Add(time.Second)
	for len(out.snapshot()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("no line written")
		}
		time.Sleep(time.Millisecond)
	}
	if n := len(out.snapshot()[0]); n != kernel.MaxMessageBytes {
		t.Fatalf("line len = %d, want %d", n, kernel.MaxMessageBytes)
	}
}

type taskFunc func(ctx *kernel.Context)

func (f taskFunc) Run(ctx *kernel.Context) { f(ctx) }
