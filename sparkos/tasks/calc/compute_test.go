package calc

import (
	"errors"
	"testing"

	"sparkcalc/sparkos/internal/arith"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "2+3", want: "5.0"},
		{in: "7×6", want: "42.0"},
		{in: "1÷4", want: "0.25"},
		{in: "(1+2)×(3-5)", want: "-6.0"},
		{in: "1/0", want: ErrorMarker},
		{in: "1+", want: ErrorMarker},
		{in: "((", want: ErrorMarker},
		{in: "1/3", want: "0.3333333333333333"},
		{in: "0.1+0.2", want: "0.30000000000000004"},
		{in: "1e+16", want: "1e+16"},
		{in: "1/100000", want: "1e-05"},
		{in: "-0", want: "-0.0"},
	}
	for _, tt := range tests {
		if got := Compute(tt.in).String(); got != tt.want {
			t.Fatalf("Compute(%q)=%q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestComputeEmptyIsNotError(t *testing.T) {
	r := Compute("")
	if r.Kind != ResultEmpty || r.String() != "" {
		t.Fatalf("Compute(\"\")=%+v", r)
	}
	if _, ok := r.Float(); ok {
		t.Fatal("empty result should not be a number")
	}
}

func TestComputeKeepsCause(t *testing.T) {
	if r := Compute("1/0"); !errors.Is(r.Err, arith.ErrDivideByZero) {
		t.Fatalf("1/0 cause=%v", r.Err)
	}
	if r := Compute("1+"); !errors.Is(r.Err, arith.ErrSyntax) {
		t.Fatalf("1+ cause=%v", r.Err)
	}
}

func TestComputeMatchesFloatArithmetic(t *testing.T) {
	a, b, c := 12.5, 3.0, 0.75
	tests := []struct {
		in   string
		want float64
	}{
		{in: "12.5×3-.75", want: a*b - c},
		{in: "12.5÷3+.75", want: a/b + c},
		{in: "-(12.5-3)÷.75", want: -(a - b) / c},
	}
	for _, tt := range tests {
		got, ok := Compute(tt.in).Float()
		if !ok || got != tt.want {
			t.Fatalf("Compute(%q)=%v,%v want %v", tt.in, got, ok, tt.want)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{in: 5, want: "5.0"},
		{in: -2.5, want: "-2.5"},
		{in: 0, want: "0.0"},
		{in: 0.0001, want: "0.0001"},
		{in: 0.00001, want: "1e-05"},
		{in: 123456789012345.6, want: "123456789012345.6"},
		{in: 1e15, want: "1000000000000000.0"},
		{in: 1e16, want: "1e+16"},
		{in: 2.5e-7, want: "2.5e-07"},
		{in: 1.5e300, want: "1.5e+300"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.want {
			t.Fatalf("FormatNumber(%v)=%q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatNumberRoundTrips(t *testing.T) {
	for _, v := range []float64{5, 0.1, 1.0 / 3, 1e16, 1e-05, -7.25e-12, 98765.4321} {
		s := FormatNumber(v)
		got, ok := Compute(s).Float()
		if !ok || got != v {
			t.Fatalf("Compute(FormatNumber(%v)=%q)=%v,%v", v, s, got, ok)
		}
	}
}
