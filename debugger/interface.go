package debugger

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// RunCLI runs the line-oriented command-line debugger interface. It drives
// the machine by calling VM.Step() directly rather than VM.Run(), so it can
// check ShouldBreak between every instruction (spec.md §4.C/§4.D).
func RunCLI(dbg *Debugger) error {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("(svm-dbg) ")

		if !scanner.Scan() {
			break
		}

		cmdLine := strings.TrimSpace(scanner.Text())
		if cmdLine == "quit" || cmdLine == "q" || cmdLine == "exit" {
			fmt.Println("Exiting debugger...")
			break
		}

		if err := dbg.ExecuteCommand(cmdLine); err != nil {
			fmt.Printf("Error: %v\n", err)
		}

		if output := dbg.GetOutput(); output != "" {
			fmt.Print(output)
		}

		if dbg.Running {
			runUntilStop(dbg)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("input error: %w", err)
	}
	return nil
}

// runUntilStop single-steps the machine until ShouldBreak fires, the machine
// halts, or a fault aborts execution.
func runUntilStop(dbg *Debugger) {
	for dbg.Running {
		dbg.VM.Step()

		if !dbg.VM.Running {
			dbg.Running = false
			if dbg.VM.FaultFlag {
				fmt.Printf("Fault: %s at pc=%d\n", dbg.VM.FaultMessage, dbg.VM.PC)
			} else {
				fmt.Printf("Program halted at pc=%d (%d instructions executed)\n", dbg.VM.PC, dbg.VM.InstructionsExecuted)
			}
			return
		}

		if shouldBreak, reason := dbg.ShouldBreak(); shouldBreak {
			dbg.Running = false
			fmt.Printf("Stopped: %s at pc=%d\n", reason, dbg.VM.PC)
			return
		}
	}
}

// RunTUI runs the tcell/tview text-user-interface debugger.
func RunTUI(dbg *Debugger) error {
	tui := NewTUI(dbg)
	return tui.Run()
}
