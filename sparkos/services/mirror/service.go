// Package mirror echoes the calculator displays to a terminal.
//
// Each MsgStatus snapshot rewrites the previous one in place, so a headless
// run shows a live three-line view instead of a scrolling log.
package mirror

import (
	"fmt"
	"io"

	"sparkcalc/sparkos/kernel"
	"sparkcalc/sparkos/proto"

	"github.com/gosuri/uilive"
)

type Service struct {
	ep kernel.Capability
	w  *uilive.Writer

	last proto.Status
	seen bool
}

// New returns a mirror writing to out (stdout when nil).
func New(ep kernel.Capability, out io.Writer) *Service {
	w := uilive.New()
	if out != nil {
		w.Out = out
	}
	return &Service{ep: ep, w: w}
}

func (s *Service) Run(ctx *kernel.Context) {
	for {
		msg, ok := ctx.Recv(s.ep)
		if !ok {
			return
		}
		if proto.Kind(msg.Kind) != proto.MsgStatus {
			continue
		}
		st, ok := proto.DecodeStatusPayload(msg.Payload())
		if !ok {
			continue
		}
		if s.seen && st == s.last {
			continue
		}
		s.last, s.seen = st, true
		_ = s.show(st)
	}
}

func (s *Service) show(st proto.Status) error {
	mode := ""
	if st.Alt {
		mode = "  [ALT]"
	}
	fmt.Fprintf(s.w, "Expression: %s\n", st.Expr)
	fmt.Fprintf(s.w, "Result:     %s\n", st.Result)
	fmt.Fprintf(s.w, "%s%s\n", st.Memory, mode)
	return s.w.Flush()
}
