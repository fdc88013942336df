package calc

// ActionKind selects what a button face does.
type ActionKind uint8

const (
	ActInsert ActionKind = iota
	ActClear
	ActAllClear
	ActBackspace
	ActMemoryClear
	ActMemoryRecall
	ActMemorySet
	ActMemoryAdd
	ActMemorySubtract
	ActEquals
	ActReciprocal
	ActNegate
)

func (k ActionKind) String() string {
	switch k {
	case ActInsert:
		return "insert"
	case ActClear:
		return "clear"
	case ActAllClear:
		return "all-clear"
	case ActBackspace:
		return "backspace"
	case ActMemoryClear:
		return "memory-clear"
	case ActMemoryRecall:
		return "memory-recall"
	case ActMemorySet:
		return "memory-set"
	case ActMemoryAdd:
		return "memory-add"
	case ActMemorySubtract:
		return "memory-subtract"
	case ActEquals:
		return "equals"
	case ActReciprocal:
		return "reciprocal"
	case ActNegate:
		return "negate"
	default:
		return "unknown"
	}
}

// Action is a button's behaviour. Char is used by ActInsert only.
type Action struct {
	Kind ActionKind
	Char rune
}

// Face is what a button shows and does in one mode.
type Face struct {
	Label  string
	Action Action
}

// Button has a primary face and, for alt-capable buttons, an alternate face.
type Button struct {
	Primary   Face
	Alternate *Face
}

func (b Button) HasAlt() bool { return b.Alternate != nil }

// Face returns the face shown in the given mode.
func (b Button) Face(alt bool) Face {
	if alt && b.Alternate != nil {
		return *b.Alternate
	}
	return b.Primary
}

const (
	GlyphMultiply  = "×"
	GlyphDivide    = "÷"
	GlyphBackspace = "⌫"
)

const (
	Rows = 5
	Cols = 4
)

// Keypad is the fixed button grid: a function row above the digit block.
type Keypad [Rows][Cols]Button

func insert(c rune) Face { return Face{Label: string(c), Action: Action{Kind: ActInsert, Char: c}} }

func fn(label string, k ActionKind) Face { return Face{Label: label, Action: Action{Kind: k}} }

func key(primary Face) Button { return Button{Primary: primary} }

func dual(primary, alt Face) Button { return Button{Primary: primary, Alternate: &alt} }

// DefaultKeypad returns the calculator layout.
func DefaultKeypad() *Keypad {
	return &Keypad{
		{
			dual(fn("C", ActClear), fn("MC", ActMemoryClear)),
			dual(fn("MR", ActMemoryRecall), fn("MS", ActMemorySet)),
			dual(fn("M+", ActMemoryAdd), fn("M-", ActMemorySubtract)),
			dual(fn(GlyphBackspace, ActBackspace), fn("AC", ActAllClear)),
		},
		{
			dual(insert('7'), insert('(')),
			key(insert('8')),
			dual(insert('9'), insert(')')),
			dual(insert('÷'), fn("1/x", ActReciprocal)),
		},
		{key(insert('4')), key(insert('5')), key(insert('6')), key(insert('×'))},
		{
			key(insert('1')),
			key(insert('2')),
			key(insert('3')),
			dual(insert('-'), fn("+/-", ActNegate)),
		},
		{key(insert('.')), key(insert('0')), key(fn("=", ActEquals)), key(insert('+'))},
	}
}

// Labels returns the grid labels as shown in the given mode.
func (k *Keypad) Labels(alt bool) [Rows][Cols]string {
	var out [Rows][Cols]string
	for r := range k {
		for c := range k[r] {
			out[r][c] = k[r][c].Face(alt).Label
		}
	}
	return out
}

// IsFunction reports whether the button at row r sits in the function row.
func IsFunction(r int) bool { return r == 0 }
