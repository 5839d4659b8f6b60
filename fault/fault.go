// Package fault implements the runtime error taxonomy and the static
// recovery-policy table the stack machine consults when a fault occurs.
package fault

import "fmt"

// Class classifies a runtime fault. LexicalError and SyntaxError are
// front-end classes that pass through the table unused by the core (the
// front-end is out of scope), but are listed so the table stays the
// authoritative, exhaustive mapping spec.md §4.B describes.
type Class int

const (
	LexicalError Class = iota
	SyntaxError
	TypeError
	DivideByZero
	MemoryError
	StackUnderflow
	UnknownOpcode
	ExternCallError
	Generic
)

func (c Class) String() string {
	switch c {
	case LexicalError:
		return "LexicalError"
	case SyntaxError:
		return "SyntaxError"
	case TypeError:
		return "TypeError"
	case DivideByZero:
		return "DivideByZero"
	case MemoryError:
		return "MemoryError"
	case StackUnderflow:
		return "StackUnderflow"
	case UnknownOpcode:
		return "UnknownOpcode"
	case ExternCallError:
		return "ExternCallError"
	case Generic:
		return "Generic"
	default:
		return fmt.Sprintf("Class(%d)", int(c))
	}
}

// Severity mirrors the error record shape from spec.md §7.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
	SeverityFatal
)

// Record is an error record appended to an error log, per spec.md §7:
// {message, line, column, class, severity, source_file, detail}.
type Record struct {
	Message    string
	Line       int
	Column     int
	Class      Class
	Severity   Severity
	SourceFile string
	Detail     string
}

func (r Record) Error() string {
	if r.Line > 0 {
		return fmt.Sprintf("%s:%d: %s: %s", r.SourceFile, r.Line, r.Class, r.Message)
	}
	return fmt.Sprintf("%s: %s", r.Class, r.Message)
}

// Log accumulates error records, owned by an "error center" per spec.md §7.
type Log struct {
	records []Record
}

func (l *Log) Append(r Record) { l.records = append(l.records, r) }
func (l *Log) Len() int        { return len(l.records) }
func (l *Log) Records() []Record {
	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}
