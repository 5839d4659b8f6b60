package fault

import "fmt"

// Policy is one of the six recovery policies spec.md §4.B/§9 names. The set
// is closed; Table rejects any other string at construction (Open Question 2).
type Policy string

const (
	DefaultValue Policy = "DefaultValue"
	Coerce       Policy = "Coerce"
	Continue     Policy = "Continue"
	Abort        Policy = "Abort"
	PanicMode    Policy = "PanicMode"
	SkipChar     Policy = "SkipChar"
)

func validPolicy(p Policy) bool {
	switch p {
	case DefaultValue, Coerce, Continue, Abort, PanicMode, SkipChar:
		return true
	default:
		return false
	}
}

// Table is the static fault-class -> recovery-policy mapping. It is built
// once and never mutated at runtime (spec.md §4.B: "not mutated at runtime").
type Table struct {
	policies map[Class]Policy
}

// DefaultTable returns the table specified in spec.md §4.B.
func DefaultTable() *Table {
	return NewTable(map[Class]Policy{
		LexicalError:    SkipChar,
		SyntaxError:     PanicMode,
		TypeError:       Coerce,
		DivideByZero:    DefaultValue,
		MemoryError:     Abort,
		StackUnderflow:  Abort,
		UnknownOpcode:   Abort,
		ExternCallError: Continue,
		Generic:         DefaultValue,
	})
}

// NewTable builds a recovery table from an explicit class->policy mapping.
// It panics if any policy is outside the closed set, resolving Open
// Question 2 ("reject unspecified policies at construction").
func NewTable(policies map[Class]Policy) *Table {
	for class, p := range policies {
		if !validPolicy(p) {
			panic(fmt.Sprintf("fault: unregistered recovery policy %q for class %s", p, class))
		}
	}
	t := &Table{policies: make(map[Class]Policy, len(policies))}
	for k, v := range policies {
		t.policies[k] = v
	}
	return t
}

// PolicyFor returns the recovery policy for a class, defaulting to Abort if
// the class was never registered (a safer default than silently continuing).
func (t *Table) PolicyFor(c Class) Policy {
	if p, ok := t.policies[c]; ok {
		return p
	}
	return Abort
}

// SafeModeOff returns a table where every class aborts, implementing
// spec.md §6's safe_mode=false configuration ("all faults Abort").
func SafeModeOff() *Table {
	all := map[Class]Policy{
		LexicalError:    Abort,
		SyntaxError:     Abort,
		TypeError:       Abort,
		DivideByZero:    Abort,
		MemoryError:     Abort,
		StackUnderflow:  Abort,
		UnknownOpcode:   Abort,
		ExternCallError: Abort,
		Generic:         Abort,
	}
	return NewTable(all)
}
