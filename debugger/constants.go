package debugger

// TUI Display Update Constants
const (
	// DisplayUpdateFrequency controls how often the TUI display refreshes
	// during continuous execution (every N instructions).
	DisplayUpdateFrequency = 100
)

// Source View Context Constants
const (
	// SourceContextLinesBefore is the number of lines shown before the
	// current line in the full source view.
	SourceContextLinesBefore = 20

	// SourceContextLinesAfter is the number of lines shown after the
	// current line in the full source view.
	SourceContextLinesAfter = 80

	// SourceContextLinesBeforeCompact is the number of lines shown before
	// the current line in the compact (list command) view.
	SourceContextLinesBeforeCompact = 3

	// SourceContextLinesAfterCompact is the number of lines shown after
	// the current line in the compact (list command) view.
	SourceContextLinesAfterCompact = 6
)

// Operand Stack Display Constants
const (
	// StackDisplayDepth is the number of operand stack entries shown in the
	// stack panel (top-of-stack first).
	StackDisplayDepth = 16
)

// Call Stack Display Constants
const (
	// CallStackDisplayDepth is the number of call frames shown in the
	// backtrace panel.
	CallStackDisplayDepth = 16
)
