package calc

import "sparkcalc/hal"

// Mode is the alt-mode state: alternate faces show while the modifier is held.
type Mode uint8

const (
	ModeNormal Mode = iota
	ModeAlt
)

func (m Mode) String() string {
	if m == ModeAlt {
		return "alt"
	}
	return "normal"
}

// Outcome reports what a click or key did.
type Outcome struct {
	// Applied is set when the state or the mode changed.
	Applied bool
	Quit    bool
	// Tape is "<expr> = <result>" after a successful equals.
	Tape string
}

// Dispatcher routes clicks and keys to a State.
type Dispatcher struct {
	State    *State
	Keypad   *Keypad
	Modifier hal.KeyCode

	mode Mode
}

func NewDispatcher(st *State, kp *Keypad, modifier hal.KeyCode) *Dispatcher {
	if st == nil {
		st = &State{}
	}
	if kp == nil {
		kp = DefaultKeypad()
	}
	if modifier == hal.KeyUnknown {
		modifier = hal.KeyCtrl
	}
	return &Dispatcher{State: st, Keypad: kp, Modifier: modifier}
}

func (d *Dispatcher) Mode() Mode { return d.mode }

// SetModifier changes the show-alternate key. A held old modifier no longer
// counts, so the mode drops back to normal.
func (d *Dispatcher) SetModifier(k hal.KeyCode) bool {
	if k == hal.KeyUnknown || k == d.Modifier {
		return false
	}
	d.Modifier = k
	return d.setMode(ModeNormal)
}

func (d *Dispatcher) setMode(m Mode) bool {
	if d.mode == m {
		return false
	}
	d.mode = m
	return true
}

// Face returns the face currently shown at row r, column c.
func (d *Dispatcher) Face(r, c int) (Face, bool) {
	if r < 0 || r >= Rows || c < 0 || c >= Cols {
		return Face{}, false
	}
	return d.Keypad[r][c].Face(d.mode == ModeAlt), true
}

// Labels returns the grid as currently shown.
func (d *Dispatcher) Labels() [Rows][Cols]string {
	return d.Keypad.Labels(d.mode == ModeAlt)
}

// Click runs the action of the face currently shown at row r, column c.
func (d *Dispatcher) Click(r, c int) Outcome {
	f, ok := d.Face(r, c)
	if !ok {
		return Outcome{}
	}
	return d.Do(f.Action)
}

// Do applies one action to the state.
func (d *Dispatcher) Do(a Action) Outcome {
	st := d.State
	switch a.Kind {
	case ActInsert:
		return Outcome{Applied: st.AppendCharacter(a.Char)}
	case ActClear:
		st.ClearExpression()
	case ActAllClear:
		st.AllClear()
	case ActBackspace:
		st.Backspace()
	case ActMemoryClear:
		st.MemoryClear()
	case ActMemoryRecall:
		v, ok := st.MemoryRecall()
		if !ok {
			return Outcome{}
		}
		st.SetExpression(FormatNumber(v))
	case ActMemorySet, ActMemoryAdd, ActMemorySubtract:
		x, ok := st.Result().Float()
		if !ok {
			return Outcome{}
		}
		switch a.Kind {
		case ActMemorySet:
			st.MemorySet(x)
		case ActMemoryAdd:
			st.MemoryAdd(x)
		default:
			st.MemorySubtract(x)
		}
	case ActEquals:
		before := st.Expression()
		if !st.Equals() {
			return Outcome{}
		}
		after := st.Expression()
		if after == before {
			// Already a result; nothing new for the tape.
			return Outcome{Applied: true}
		}
		return Outcome{Applied: true, Tape: before + " = " + after}
	case ActReciprocal:
		return Outcome{Applied: st.Reciprocal()}
	case ActNegate:
		return Outcome{Applied: st.Negate()}
	default:
		return Outcome{}
	}
	return Outcome{Applied: true}
}

// Key handles one key press or release.
func (d *Dispatcher) Key(ev hal.KeyEvent) Outcome {
	if ev.Rune == 0 && ev.Code == d.Modifier {
		if ev.Press {
			return Outcome{Applied: d.setMode(ModeAlt)}
		}
		return Outcome{Applied: d.setMode(ModeNormal)}
	}
	if !ev.Press {
		return Outcome{}
	}

	if ev.Rune != 0 {
		switch ev.Rune {
		case 'q', 'Q':
			return Outcome{Quit: true}
		}
		return d.Do(Action{Kind: ActInsert, Char: ev.Rune})
	}

	switch ev.Code {
	case hal.KeyEscape:
		return d.Do(Action{Kind: ActClear})
	case hal.KeyBackspace:
		if ev.Mods&hal.ModAlt != 0 {
			return d.Do(Action{Kind: ActClear})
		}
		return d.Do(Action{Kind: ActBackspace})
	case hal.KeyEnter:
		return d.Do(Action{Kind: ActEquals})
	default:
		return Outcome{}
	}
}
