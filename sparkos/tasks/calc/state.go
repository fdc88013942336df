package calc

import (
	"math"
	"strings"
	"unicode/utf8"
)

// AllowedChars is every character that may appear in an expression.
const AllowedChars = "0123456789+-*/()." + "×÷"

// MemoryUnset is the memory display while nothing is stored.
const MemoryUnset = "<unset>"

// State is the calculator model: the expression being edited, its result,
// and an optional memory value.
//
// Every mutating method leaves Result equal to Compute(Expression).
type State struct {
	expr   string
	result Result

	mem    float64
	memSet bool
}

func (s *State) Expression() string { return s.expr }
func (s *State) Result() Result     { return s.result }

// SetExpression replaces the expression and recomputes.
func (s *State) SetExpression(text string) {
	s.expr = text
	s.result = Compute(text)
}

// AppendCharacter appends c when it is an allowed character and reports
// whether it did.
func (s *State) AppendCharacter(c rune) bool {
	if !IsAllowed(c) {
		return false
	}
	s.SetExpression(s.expr + string(c))
	return true
}

func IsAllowed(c rune) bool {
	return c != utf8.RuneError && strings.ContainsRune(AllowedChars, c)
}

func (s *State) Backspace() {
	if s.expr == "" {
		s.result = Compute("")
		return
	}
	_, n := utf8.DecodeLastRuneInString(s.expr)
	s.SetExpression(s.expr[:len(s.expr)-n])
}

func (s *State) ClearExpression() { s.SetExpression("") }

// AllClear clears the expression and the memory.
func (s *State) AllClear() {
	s.MemoryClear()
	s.SetExpression("")
}

// MemorySet stores v. Non-finite values are ignored.
func (s *State) MemorySet(v float64) {
	if !finite(v) {
		return
	}
	s.mem, s.memSet = v, true
}

func (s *State) MemoryClear() { s.mem, s.memSet = 0, false }

func (s *State) MemoryRecall() (float64, bool) { return s.mem, s.memSet }

// MemoryAdd seeds memory with v when unset, otherwise adds v.
func (s *State) MemoryAdd(v float64) { s.accumulate(v) }

// MemorySubtract seeds memory with -v when unset, otherwise subtracts v.
func (s *State) MemorySubtract(v float64) { s.accumulate(-v) }

func (s *State) accumulate(v float64) {
	if s.memSet {
		v += s.mem
	}
	s.MemorySet(v)
}

// MemoryLabel is the text of the memory display.
func (s *State) MemoryLabel() string {
	if !s.memSet {
		return "MEM: " + MemoryUnset
	}
	return "MEM: " + FormatNumber(s.mem)
}

// Perform runs fn on the current numeric result and writes its value into
// the expression. Nothing happens when the result is not a number or fn
// declines.
func (s *State) Perform(fn func(float64) (float64, bool)) bool {
	x, ok := s.result.Float()
	if !ok {
		return false
	}
	v, ok := fn(x)
	if !ok || !finite(v) {
		return false
	}
	s.SetExpression(FormatNumber(v))
	return true
}

// Equals copies the result into the expression.
func (s *State) Equals() bool {
	return s.Perform(func(x float64) (float64, bool) { return x, true })
}

func (s *State) Reciprocal() bool {
	return s.Perform(func(x float64) (float64, bool) {
		if x == 0 {
			return 0, false
		}
		return 1 / x, true
	})
}

func (s *State) Negate() bool {
	return s.Perform(func(x float64) (float64, bool) { return -x, true })
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
