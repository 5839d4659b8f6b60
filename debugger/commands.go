package debugger

import (
	"fmt"
	"strconv"
	"strings"
)

// cmdContinue resumes execution until the next breakpoint, watchpoint, fault, or halt.
func (d *Debugger) cmdContinue(args []string) error {
	if !d.VM.Running {
		return fmt.Errorf("program is not running")
	}
	d.StepMode = StepNone
	d.Running = true
	d.Println("Continuing...")
	return nil
}

// cmdStep executes a single instruction, descending into calls.
func (d *Debugger) cmdStep(args []string) error {
	d.StepMode = StepSingle
	d.Running = true
	return nil
}

// cmdNext steps over calls: runs until call depth returns to its current level.
func (d *Debugger) cmdNext(args []string) error {
	d.StepTarget = d.VM.Calls.Depth()
	d.StepMode = StepOver
	d.Running = true
	return nil
}

// cmdFinish runs until the current call frame returns.
func (d *Debugger) cmdFinish(args []string) error {
	d.StepTarget = d.VM.Calls.Depth()
	d.StepMode = StepOut
	d.Running = true
	return nil
}

// cmdBreak sets a breakpoint at a source line, optionally conditional:
// break <line> [if <condition>]
func (d *Debugger) cmdBreak(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: break <line> [if <condition>]")
	}
	line, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid line number: %s", args[0])
	}

	var condition string
	if len(args) > 1 && strings.ToLower(args[1]) == "if" {
		condition = strings.Join(args[2:], " ")
	}

	bp := d.Breakpoints.AddBreakpoint(line, false, condition)
	if condition != "" {
		d.Printf("Breakpoint %d at line %d (condition: %s)\n", bp.ID, line, condition)
	} else {
		d.Printf("Breakpoint %d at line %d\n", bp.ID, line)
	}
	return nil
}

// cmdDelete deletes a breakpoint by ID, or all breakpoints if none is given.
func (d *Debugger) cmdDelete(args []string) error {
	if len(args) == 0 {
		d.Breakpoints.Clear()
		d.Println("All breakpoints deleted")
		return nil
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint ID: %s", args[0])
	}
	if err := d.Breakpoints.DeleteBreakpoint(id); err != nil {
		return err
	}
	d.Printf("Breakpoint %d deleted\n", id)
	return nil
}

func (d *Debugger) cmdEnable(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: enable <breakpoint-id>")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint ID: %s", args[0])
	}
	if err := d.Breakpoints.EnableBreakpoint(id); err != nil {
		return err
	}
	d.Printf("Breakpoint %d enabled\n", id)
	return nil
}

func (d *Debugger) cmdDisable(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: disable <breakpoint-id>")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint ID: %s", args[0])
	}
	if err := d.Breakpoints.DisableBreakpoint(id); err != nil {
		return err
	}
	d.Printf("Breakpoint %d disabled\n", id)
	return nil
}

// cmdWatch sets a watchpoint on an expression: watch <expr> [up|down]
func (d *Debugger) cmdWatch(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: watch <expression> [up|down]")
	}

	direction := DirectionAny
	exprArgs := args
	if len(args) > 1 {
		switch strings.ToLower(args[len(args)-1]) {
		case "up":
			direction, exprArgs = DirectionUp, args[:len(args)-1]
		case "down":
			direction, exprArgs = DirectionDown, args[:len(args)-1]
		}
	}
	expression := strings.Join(exprArgs, " ")

	if _, err := d.Evaluator.Evaluate(expression, d.VM); err != nil {
		return fmt.Errorf("invalid watch expression: %w", err)
	}

	wp := d.Watchpoints.AddWatchpoint(expression, direction)
	d.Printf("Watchpoint %d: %s\n", wp.ID, expression)
	return nil
}

// cmdPrint evaluates and prints an expression, recording it as $N.
func (d *Debugger) cmdPrint(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: print <expression>")
	}
	expression := strings.Join(args, " ")
	result, err := d.Evaluator.EvaluateExpression(expression, d.VM)
	if err != nil {
		return err
	}
	d.Printf("$%d = %s\n", len(d.Evaluator.history), result.String())
	return nil
}

// cmdInfo displays information about program state: info <stack|breakpoints|watchpoints|vars>
func (d *Debugger) cmdInfo(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: info <stack|breakpoints|watchpoints|vars>")
	}
	switch strings.ToLower(args[0]) {
	case "stack", "s":
		return d.showStack()
	case "breakpoints", "break", "b":
		return d.showBreakpoints()
	case "watchpoints", "watch", "w":
		return d.showWatchpoints()
	case "vars", "v", "locals":
		return d.showVars()
	default:
		return fmt.Errorf("unknown info command: %s", args[0])
	}
}

func (d *Debugger) showStack() error {
	d.Printf("Operand stack (depth %d):\n", d.VM.Operands.Depth())
	snap := d.VM.Operands.Snapshot()
	shown := 0
	for i := len(snap) - 1; i >= 0 && shown < StackDisplayDepth; i-- {
		d.Printf("  [%d] %s\n", i, snap[i].String())
		shown++
	}
	return nil
}

func (d *Debugger) showVars() error {
	if len(d.Symbols) == 0 {
		d.Println("No symbol table loaded")
		return nil
	}
	d.Println("Locals:")
	for name, addr := range d.Symbols {
		cell, err := d.VM.Heap.Load(addr)
		if err != nil {
			continue
		}
		d.Printf("  %s = %d\n", name, cell)
	}
	return nil
}

func (d *Debugger) showBreakpoints() error {
	breakpoints := d.Breakpoints.GetAllBreakpoints()
	if len(breakpoints) == 0 {
		d.Println("No breakpoints")
		return nil
	}
	d.Println("Breakpoints:")
	for _, bp := range breakpoints {
		status := "enabled"
		if !bp.Enabled {
			status = "disabled"
		}
		temp := ""
		if bp.Temporary {
			temp = " (temporary)"
		}
		condition := ""
		if bp.Condition != "" {
			condition = fmt.Sprintf(" if %s", bp.Condition)
		}
		d.Printf("  %d: line %d %s%s%s (hit %d times)\n", bp.ID, bp.Line, status, temp, condition, bp.HitCount)
	}
	return nil
}

func (d *Debugger) showWatchpoints() error {
	watchpoints := d.Watchpoints.GetAllWatchpoints()
	if len(watchpoints) == 0 {
		d.Println("No watchpoints")
		return nil
	}
	d.Println("Watchpoints:")
	for _, wp := range watchpoints {
		status := "enabled"
		if !wp.Enabled {
			status = "disabled"
		}
		d.Printf("  %d: %s [%s] %s (changed %d times, last=%s)\n",
			wp.ID, wp.Expression, wp.Direction, status, wp.ChangeCount, wp.LastValue.String())
	}
	return nil
}

// cmdBacktrace shows the call stack, most recent frame first.
func (d *Debugger) cmdBacktrace(args []string) error {
	d.Println("Call stack:")
	d.Printf("  #0  pc=%d (current)\n", d.VM.PC)
	depth := d.VM.Calls.Depth()
	for i := 0; i < depth && i < CallStackDisplayDepth; i++ {
		d.Printf("  #%d  return_address=?\n", i+1)
	}
	return nil
}

// cmdList shows source lines around the current line.
func (d *Debugger) cmdList(args []string) error {
	line := d.currentLine()
	start := line - SourceContextLinesBeforeCompact
	if start < 1 {
		start = 1
	}
	end := line + SourceContextLinesAfterCompact

	for l := start; l <= end; l++ {
		text, ok := d.SourceMap[l]
		if !ok {
			continue
		}
		marker := "  "
		if l == line {
			marker = "=>"
		}
		d.Printf("%s %4d: %s\n", marker, l, text)
	}
	return nil
}

func (d *Debugger) cmdHelp(args []string) error {
	if len(args) > 0 {
		return d.showCommandHelp(args[0])
	}

	d.Println("Stack machine debugger commands:")
	d.Println()
	d.Println("Execution control:")
	d.Println("  continue (c)         - Continue execution")
	d.Println("  step (s)             - Execute single instruction")
	d.Println("  next (n)             - Step over calls")
	d.Println("  finish (fin)         - Run until the current call returns")
	d.Println()
	d.Println("Breakpoints:")
	d.Println("  break (b) <line>     - Set breakpoint at a source line")
	d.Println("  delete (d) [id]      - Delete breakpoint(s)")
	d.Println("  enable <id>          - Enable breakpoint")
	d.Println("  disable <id>         - Disable breakpoint")
	d.Println()
	d.Println("Watchpoints:")
	d.Println("  watch (w) <expr> [up|down] - Watch an expression for change")
	d.Println()
	d.Println("Inspection:")
	d.Println("  print (p) <expr>     - Evaluate expression")
	d.Println("  info (i) <what>      - Show stack/breakpoints/watchpoints/vars")
	d.Println("  backtrace (bt)       - Show call stack")
	d.Println("  list (l)             - List source code")
	d.Println()
	d.Println("  help (h, ?)          - Show this help")
	d.Println()
	d.Println("Type 'help <command>' for detailed help on a specific command.")
	return nil
}

func (d *Debugger) showCommandHelp(cmd string) error {
	helpText := map[string]string{
		"break": "break <line> [if <condition>]\n  Set a breakpoint at the given source line.\n  Optional condition is evaluated against the debug context each hit.",
		"step":  "step\n  Execute a single instruction, descending into calls.",
		"next":  "next\n  Step over calls (run until call depth returns to the current level).",
		"watch": "watch <expression> [up|down]\n  Break when expression's value changes, optionally only increasing/decreasing.",
		"print": "print <expression>\n  Evaluate and print an expression over pc, stack_depth, call_depth, instr_count, stack[i], vars.name.",
		"info":  "info <stack|breakpoints|watchpoints|vars>\n  Display information about program state.",
	}
	if help, exists := helpText[cmd]; exists {
		d.Println(help)
		return nil
	}
	return fmt.Errorf("no help available for command: %s", cmd)
}
