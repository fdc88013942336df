package proto

import "unicode/utf8"

// Status is a text snapshot of the calculator displays.
type Status struct {
	Expr   string
	Result string
	Memory string
	Alt    bool
}

const statusHeader = 4

// StatusPayload encodes a MsgStatus payload.
//
// Layout:
//   - u8: flags (bit 0 = alt mode)
//   - u8: expression length
//   - u8: result length
//   - u8: memory length
//   - bytes: expression, result, memory
//
// Fields are clipped to fit the message size; the expression keeps its tail
// because that is where the user is typing.
func StatusPayload(st Status, max int) []byte {
	room := max - statusHeader
	if room < 0 {
		return nil
	}
	mem := clip(st.Memory, room/4)
	res := clip(st.Result, room/3)
	expr := st.Expr
	if n := room - len(mem) - len(res); len(expr) > n {
		i := len(expr) - n
		for i < len(expr) && !utf8.RuneStart(expr[i]) {
			i++
		}
		expr = expr[i:]
	}

	buf := make([]byte, 0, statusHeader+len(expr)+len(res)+len(mem))
	var flags byte
	if st.Alt {
		flags |= 1
	}
	buf = append(buf, flags, byte(len(expr)), byte(len(res)), byte(len(mem)))
	buf = append(buf, expr...)
	buf = append(buf, res...)
	buf = append(buf, mem...)
	return buf
}

// DecodeStatusPayload decodes a StatusPayload.
func DecodeStatusPayload(b []byte) (Status, bool) {
	if len(b) < statusHeader {
		return Status{}, false
	}
	le, lr, lm := int(b[1]), int(b[2]), int(b[3])
	if len(b) != statusHeader+le+lr+lm {
		return Status{}, false
	}
	p := b[statusHeader:]
	return Status{
		Alt:    b[0]&1 != 0,
		Expr:   string(p[:le]),
		Result: string(p[le : le+lr]),
		Memory: string(p[le+lr:]),
	}, true
}

func clip(s string, n int) string {
	if n > 255 {
		n = 255
	}
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
