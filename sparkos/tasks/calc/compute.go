package calc

import (
	"math"
	"strconv"
	"strings"

	"sparkcalc/sparkos/internal/arith"
)

// ErrorMarker is shown in the result display when evaluation fails.
const ErrorMarker = "#EVAL"

type ResultKind uint8

const (
	ResultEmpty ResultKind = iota
	ResultNumber
	ResultError
)

// Result is the evaluator output for one expression.
type Result struct {
	Kind  ResultKind
	Value float64
	// Err is the evaluation failure behind ResultError, kept for logs.
	Err error
}

// Compute evaluates expr. Blank input gives an empty result.
func Compute(expr string) Result {
	if expr == "" {
		return Result{}
	}
	v, err := arith.Eval(expr)
	if err != nil {
		return Result{Kind: ResultError, Err: err}
	}
	return Result{Kind: ResultNumber, Value: v}
}

func (r Result) String() string {
	switch r.Kind {
	case ResultNumber:
		return FormatNumber(r.Value)
	case ResultError:
		return ErrorMarker
	default:
		return ""
	}
}

// Float reports the numeric value, if any.
func (r Result) Float() (float64, bool) {
	if r.Kind != ResultNumber {
		return 0, false
	}
	return r.Value, true
}

// FormatNumber renders v with the shortest digits that round-trip. Decimal
// exponents in [-4, 16) print in fixed notation and always keep a fractional
// part ("5.0"); others use exponent notation ("1e+16", "2.5e-05").
func FormatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}

	e := strconv.FormatFloat(v, 'e', -1, 64)
	exp, err := strconv.Atoi(e[strings.IndexByte(e, 'e')+1:])
	if err == nil && (exp < -4 || exp >= 16) {
		return e
	}
	f := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsRune(f, '.') {
		f += ".0"
	}
	return f
}
