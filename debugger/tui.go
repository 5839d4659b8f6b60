package debugger

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// TUI is the tcell/tview text user interface for the debugger, grounded on
// the teacher's register/memory/disassembly panel layout but retargeted to
// the stack machine's state: source, machine state, operand stack,
// breakpoints/watchpoints, and program output.
type TUI struct {
	Debugger *Debugger
	App      *tview.Application
	Pages    *tview.Pages

	MainLayout *tview.Flex
	LeftPanel  *tview.Flex
	RightPanel *tview.Flex

	SourceView      *tview.TextView
	StateView       *tview.TextView
	StackView       *tview.TextView
	BreakpointsView *tview.TextView
	OutputView      *tview.TextView
	CommandInput    *tview.InputField
}

func NewTUI(debugger *Debugger) *TUI {
	t := &TUI{Debugger: debugger, App: tview.NewApplication()}
	t.initializeViews()
	t.buildLayout()
	t.setupKeyBindings()
	return t
}

func (t *TUI) initializeViews() {
	t.SourceView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(false)
	t.SourceView.SetBorder(true).SetTitle(" Source ")

	t.StateView = tview.NewTextView().SetDynamicColors(true).SetScrollable(false)
	t.StateView.SetBorder(true).SetTitle(" State ")

	t.StackView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(false)
	t.StackView.SetBorder(true).SetTitle(" Operand Stack ")

	t.BreakpointsView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(false)
	t.BreakpointsView.SetBorder(true).SetTitle(" Breakpoints / Watchpoints ")

	t.OutputView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(true)
	t.OutputView.SetBorder(true).SetTitle(" Output ")

	t.CommandInput = tview.NewInputField().SetLabel("> ").SetFieldWidth(0)
	t.CommandInput.SetBorder(true).SetTitle(" Command ")
	t.CommandInput.SetDoneFunc(t.handleCommand)
}

func (t *TUI) buildLayout() {
	t.LeftPanel = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(t.SourceView, 0, 3, false)

	rightTop := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(t.StateView, 7, 0, false).
		AddItem(t.StackView, 0, 1, false)

	t.RightPanel = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(rightTop, 0, 3, false).
		AddItem(t.BreakpointsView, 8, 0, false)

	mainContent := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(t.LeftPanel, 0, 2, false).
		AddItem(t.RightPanel, 0, 1, false)

	t.MainLayout = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(mainContent, 0, 4, false).
		AddItem(t.OutputView, 8, 0, false).
		AddItem(t.CommandInput, 3, 0, true)

	t.Pages = tview.NewPages().AddPage("main", t.MainLayout, true, true)
}

func (t *TUI) setupKeyBindings() {
	t.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyF1:
			t.executeCommand("help")
			return nil
		case tcell.KeyF5:
			t.executeCommand("continue")
			return nil
		case tcell.KeyF10:
			t.executeCommand("next")
			return nil
		case tcell.KeyF11:
			t.executeCommand("step")
			return nil
		case tcell.KeyCtrlC:
			t.App.Stop()
			return nil
		case tcell.KeyCtrlL:
			t.RefreshAll()
			return nil
		}
		return event
	})
}

func (t *TUI) handleCommand(key tcell.Key) {
	if key != tcell.KeyEnter {
		return
	}
	cmd := t.CommandInput.GetText()
	if cmd != "" {
		t.executeCommand(cmd)
		t.CommandInput.SetText("")
	}
}

func (t *TUI) executeCommand(cmd string) {
	t.Debugger.Output.Reset()
	err := t.Debugger.ExecuteCommand(cmd)
	output := t.Debugger.GetOutput()

	if err != nil {
		t.WriteOutput(fmt.Sprintf("[red]Error:[white] %v\n", err))
	}
	if output != "" {
		t.WriteOutput(output)
	}

	if t.Debugger.Running {
		runUntilStop(t.Debugger)
		t.WriteOutput(t.Debugger.GetOutput())
	}

	t.RefreshAll()
}

func (t *TUI) WriteOutput(text string) {
	_, _ = t.OutputView.Write([]byte(text))
	t.OutputView.ScrollToEnd()
}

func (t *TUI) RefreshAll() {
	t.UpdateSourceView()
	t.UpdateStateView()
	t.UpdateStackView()
	t.UpdateBreakpointsView()
	t.App.Draw()
}

func (t *TUI) UpdateSourceView() {
	t.SourceView.Clear()
	if len(t.Debugger.SourceMap) == 0 {
		t.SourceView.SetText("[yellow]No source code available[white]")
		return
	}

	line := t.Debugger.currentLine()
	start := line - SourceContextLinesBefore
	if start < 1 {
		start = 1
	}
	end := line + SourceContextLinesAfter

	var lines []string
	for l := start; l <= end; l++ {
		text, exists := t.Debugger.SourceMap[l]
		if !exists {
			continue
		}
		marker, color := "  ", "white"
		if l == line {
			marker, color = "->", "yellow"
		}
		if t.Debugger.Breakpoints.HasBreakpointAtLine(l) {
			marker = "* "
		}
		lines = append(lines, fmt.Sprintf("[%s]%s %4d: %s[white]", color, marker, l, text))
	}
	t.SourceView.SetText(strings.Join(lines, "\n"))
}

func (t *TUI) UpdateStateView() {
	t.StateView.Clear()
	m := t.Debugger.VM
	lines := []string{
		fmt.Sprintf("pc: %d", m.PC),
		fmt.Sprintf("stack_depth: %d", m.Operands.Depth()),
		fmt.Sprintf("call_depth: %d", m.Calls.Depth()),
		fmt.Sprintf("instr_count: %d", m.InstructionsExecuted),
		fmt.Sprintf("status: %s", m.Status()),
	}
	t.StateView.SetText(strings.Join(lines, "\n"))
}

func (t *TUI) UpdateStackView() {
	t.StackView.Clear()
	snap := t.Debugger.VM.Operands.Snapshot()
	var lines []string
	shown := 0
	for i := len(snap) - 1; i >= 0 && shown < StackDisplayDepth; i-- {
		marker := "  "
		if i == len(snap)-1 {
			marker = "->"
		}
		lines = append(lines, fmt.Sprintf("%s [%d] %s", marker, i, snap[i].String()))
		shown++
	}
	if len(lines) == 0 {
		lines = append(lines, "[yellow](empty)[white]")
	}
	t.StackView.SetText(strings.Join(lines, "\n"))
}

func (t *TUI) UpdateBreakpointsView() {
	t.BreakpointsView.Clear()
	var lines []string

	bps := t.Debugger.Breakpoints.GetAllBreakpoints()
	if len(bps) > 0 {
		lines = append(lines, "[yellow]Breakpoints:[white]")
		for _, bp := range bps {
			status, color := "enabled", "green"
			if !bp.Enabled {
				status, color = "disabled", "red"
			}
			line := fmt.Sprintf("  %d: [%s]%s[white] line %d", bp.ID, color, status, bp.Line)
			if bp.Condition != "" {
				line += fmt.Sprintf(" if %s", bp.Condition)
			}
			line += fmt.Sprintf(" (hits: %d)", bp.HitCount)
			lines = append(lines, line)
		}
	} else {
		lines = append(lines, "[yellow]No breakpoints set[white]")
	}

	lines = append(lines, "")

	wps := t.Debugger.Watchpoints.GetAllWatchpoints()
	if len(wps) > 0 {
		lines = append(lines, "[yellow]Watchpoints:[white]")
		for _, wp := range wps {
			lines = append(lines, fmt.Sprintf("  %d: %s [%s] = %s", wp.ID, wp.Expression, wp.Direction, wp.LastValue.String()))
		}
	}

	t.BreakpointsView.SetText(strings.Join(lines, "\n"))
}

// Run starts the TUI application.
func (t *TUI) Run() error {
	t.RefreshAll()
	t.WriteOutput("[green]Stack machine debugger[white]\n")
	t.WriteOutput("Press F1 for help, F5 to continue, F10 to step over, F11 to step\n")
	t.WriteOutput("Type 'help' for the full command list\n\n")
	return t.App.SetRoot(t.Pages, true).SetFocus(t.CommandInput).Run()
}

func (t *TUI) Stop() { t.App.Stop() }
