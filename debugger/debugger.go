// Package debugger implements the integrated source-level debugger: line-keyed
// breakpoints, expression/direction watchpoints, stepping modes, and a
// sandboxed expression evaluator over the running machine's state (spec.md §4.D).
package debugger

import (
	"fmt"
	"strings"

	"github.com/qwas982/svm/vm"
)

// StepMode is the debugger's current stepping mode.
type StepMode int

const (
	StepNone   StepMode = iota // not stepping; run until breakpoint/watchpoint/halt
	StepSingle                 // stop after the next instruction, any call depth
	StepOver                   // stop once call depth returns to <= the depth at Next
	StepOut                    // stop once call depth drops below the depth at Finish
)

// Debugger is the facade a CLI or TUI front end drives. It never calls
// vm.VM.Run(); it drives vm.VM.Step() itself in its own loop so execution can
// be mediated one instruction at a time (spec.md §4.C).
type Debugger struct {
	VM *vm.VM

	Breakpoints *BreakpointManager
	Watchpoints *WatchpointManager
	History     *CommandHistory
	Evaluator   *ExpressionEvaluator

	Running    bool
	StepMode   StepMode
	StepTarget int // call-depth target for StepOver/StepOut

	// SourceMap maps a source line number to its original source text, for
	// the list command and TUI source panel.
	SourceMap map[int]string

	// Symbols maps debug-visible variable names to heap addresses, used by
	// the expression evaluator's `vars` and by the `info locals` command.
	Symbols SymbolTable

	LastCommand string
	Output      strings.Builder
}

func NewDebugger(machine *vm.VM) *Debugger {
	return &Debugger{
		VM:          machine,
		Breakpoints: NewBreakpointManager(),
		Watchpoints: NewWatchpointManager(),
		History:     NewCommandHistory(),
		Evaluator:   NewExpressionEvaluator(),
		SourceMap:   make(map[int]string),
		Symbols:     SymbolTable{},
	}
}

// LoadSymbols loads the variable name->heap address table used by the
// expression evaluator's `vars` and by `info locals` (spec.md §4.D).
func (d *Debugger) LoadSymbols(symbols SymbolTable) {
	d.Symbols = symbols
	d.Evaluator.Symbols = symbols
}

// LoadSourceMap loads the source-line->text mapping and rebuilds the
// breakpoint manager's address fallback map against the freshly loaded
// program (spec.md §4.D: breakpoints are line-keyed with an address
// fallback rebuilt on load).
func (d *Debugger) LoadSourceMap(sourceMap map[int]string) {
	d.SourceMap = sourceMap
	if d.VM.Program != nil {
		d.Breakpoints.RebuildAddressMap(d.lineOf, d.VM.Program.Len())
	}
}

func (d *Debugger) lineOf(addr int) int {
	if addr < 0 || addr >= d.VM.Program.Len() {
		return 0
	}
	return d.VM.Program.Instructions[addr].Line
}

func (d *Debugger) currentLine() int {
	line, ok := d.Breakpoints.LineForAddress(d.VM.PC)
	if !ok {
		return d.lineOf(d.VM.PC)
	}
	return line
}

// ExecuteCommand parses and dispatches one command line.
func (d *Debugger) ExecuteCommand(cmdLine string) error {
	cmdLine = strings.TrimSpace(cmdLine)
	if cmdLine == "" {
		cmdLine = d.LastCommand
	}
	if cmdLine != "" {
		d.History.Add(cmdLine)
		d.LastCommand = cmdLine
	}

	parts := strings.Fields(cmdLine)
	if len(parts) == 0 {
		return nil
	}
	return d.handleCommand(strings.ToLower(parts[0]), parts[1:])
}

func (d *Debugger) handleCommand(cmd string, args []string) error {
	switch cmd {
	case "continue", "c":
		return d.cmdContinue(args)
	case "step", "s":
		return d.cmdStep(args)
	case "next", "n":
		return d.cmdNext(args)
	case "finish", "fin":
		return d.cmdFinish(args)

	case "break", "b":
		return d.cmdBreak(args)
	case "delete", "d":
		return d.cmdDelete(args)
	case "enable":
		return d.cmdEnable(args)
	case "disable":
		return d.cmdDisable(args)

	case "watch", "w":
		return d.cmdWatch(args)

	case "print", "p":
		return d.cmdPrint(args)
	case "info", "i":
		return d.cmdInfo(args)
	case "backtrace", "bt", "where":
		return d.cmdBacktrace(args)
	case "list", "l":
		return d.cmdList(args)

	case "help", "h", "?":
		return d.cmdHelp(args)

	default:
		return fmt.Errorf("unknown command: %s (type 'help' for available commands)", cmd)
	}
}

// ShouldBreak reports whether execution should suspend at the machine's
// current pc, and why.
func (d *Debugger) ShouldBreak() (bool, string) {
	switch d.StepMode {
	case StepSingle:
		d.StepMode = StepNone
		return true, "single step"
	case StepOver:
		if d.VM.Calls.Depth() <= d.StepTarget {
			d.StepMode = StepNone
			return true, "step over complete"
		}
	case StepOut:
		if d.VM.Calls.Depth() < d.StepTarget {
			d.StepMode = StepNone
			return true, "step out complete"
		}
	}

	line := d.currentLine()
	if bp := d.Breakpoints.GetBreakpointAtLine(line); bp != nil && bp.Enabled {
		if bp.Condition != "" {
			ok, err := d.Evaluator.EvaluateBool(bp.Condition, d.VM)
			if err != nil {
				return true, fmt.Sprintf("breakpoint %d (condition error: %v)", bp.ID, err)
			}
			if !ok {
				return false, ""
			}
		}
		hit := d.Breakpoints.ProcessHit(line)
		return true, fmt.Sprintf("breakpoint %d", hit.ID)
	}

	if wp, changed := d.Watchpoints.CheckWatchpoints(d.VM, d.Evaluator); changed {
		return true, fmt.Sprintf("watchpoint %d: %s", wp.ID, wp.Expression)
	}

	return false, ""
}

func (d *Debugger) GetOutput() string {
	out := d.Output.String()
	d.Output.Reset()
	return out
}

func (d *Debugger) Printf(format string, args ...interface{}) {
	fmt.Fprintf(&d.Output, format, args...)
}

func (d *Debugger) Println(args ...interface{}) {
	fmt.Fprintln(&d.Output, args...)
}
