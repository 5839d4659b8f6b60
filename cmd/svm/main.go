// Command svm is the stack machine driver: it loads an already-assembled
// JSON program (see package loader), then either runs it directly, attaches
// the line-oriented CLI debugger, or attaches the tcell/tview TUI debugger
// (spec.md §9 Open Question 1: one facade, one driver).
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/qwas982/svm/config"
	"github.com/qwas982/svm/debugger"
	"github.com/qwas982/svm/extern"
	"github.com/qwas982/svm/fault"
	"github.com/qwas982/svm/loader"
	"github.com/qwas982/svm/vm"
)

// Version information - can be overridden at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		showHelp    = flag.Bool("help", false, "Show help information")
		debugMode   = flag.Bool("debug", false, "Start in debugger mode (CLI)")
		tuiMode     = flag.Bool("tui", false, "Start in TUI debugger mode")
		verboseMode = flag.Bool("verbose", false, "Verbose output")
		configPath  = flag.String("config", "", "Path to config.toml (default: platform config dir)")
		maxIter     = flag.Uint64("max-iterations", 0, "Maximum instructions before halt (0: use config default)")
		memSize     = flag.Int("memory-size", 0, "Heap size in bytes (0: use config default)")
		aiBaseURL   = flag.String("ai-base-url", "", "AI backend base URL (empty: use a mock backend)")
		aiAPIKey    = flag.String("ai-api-key", "", "AI backend API key")
		aiModel     = flag.String("ai-model", "gpt-4o-mini", "AI backend model name")
	)

	flag.Parse()

	if *showVersion {
		fmt.Printf("svm %s\n", Version)
		if Commit != "unknown" {
			fmt.Printf("Commit: %s\n", Commit)
		}
		if Date != "unknown" {
			fmt.Printf("Built: %s\n", Date)
		}
		os.Exit(0)
	}

	if *showHelp || flag.NArg() == 0 {
		printHelp()
		os.Exit(0)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	heapSize := cfg.Execution.MemorySize
	if *memSize > 0 {
		heapSize = *memSize
	}
	iterationLimit := cfg.Execution.MaxIterations
	if *maxIter > 0 {
		iterationLimit = *maxIter
	}

	programPath := flag.Arg(0)
	program, sourceMap, symbols, err := loader.LoadFile(programPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
		os.Exit(1)
	}

	if *verboseMode {
		fmt.Printf("Loaded %d instructions from %s\n", program.Len(), programPath)
	}

	registry := buildExternRegistry(*aiBaseURL, *aiAPIKey, *aiModel)

	// safe_mode enables recovery policies; disabling it aborts on every
	// fault class (spec.md §6).
	faultTable := fault.SafeModeOff()
	if cfg.Execution.SafeMode {
		faultTable = fault.DefaultTable()
	}

	machine := vm.NewVM(heapSize, faultTable, registry)
	if err := machine.Load(program); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program into machine: %v\n", err)
		os.Exit(1)
	}

	if *debugMode || *tuiMode {
		dbg := debugger.NewDebugger(machine)
		dbg.LoadSourceMap(sourceMap)
		dbg.LoadSymbols(symbols)
		for _, line := range cfg.Debugger.BreakpointsOnLoad {
			dbg.Breakpoints.AddBreakpoint(line, false, "")
		}

		if *tuiMode {
			if err := debugger.RunTUI(dbg); err != nil {
				fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
				os.Exit(1)
			}
		} else {
			fmt.Println("Stack machine debugger - type 'help' for commands")
			fmt.Printf("Program loaded: %s\n", programPath)
			fmt.Println()
			if err := debugger.RunCLI(dbg); err != nil {
				fmt.Fprintf(os.Stderr, "Debugger error: %v\n", err)
				os.Exit(1)
			}
		}
		return
	}

	if *verboseMode {
		fmt.Println("Starting execution...")
	}

	for machine.Running && (iterationLimit == 0 || machine.InstructionsExecuted < iterationLimit) {
		machine.Step()
	}

	snap := machine.Snapshot()
	if *verboseMode {
		fmt.Printf("Execution complete: status=%s instructions=%d\n", machine.Status(), snap.InstructionCount)
	}
	if snap.FaultFlag {
		fmt.Fprintf(os.Stderr, "Unrecovered fault: %s\n", snap.FaultMessage)
		for _, rec := range machine.ErrorLog.Records() {
			fmt.Fprintf(os.Stderr, "  %s: %s (%s)\n", rec.Class, rec.Message, rec.Detail)
		}
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

func buildExternRegistry(aiBaseURL, aiAPIKey, aiModel string) *vm.ExternRegistry {
	var backend extern.AIBackend
	if aiBaseURL == "" {
		backend = extern.NewMockBackend("mock response")
	} else {
		backend = extern.NewHTTPBackend(aiBaseURL, aiAPIKey, aiModel)
	}

	return vm.NewExternRegistry(
		extern.NewVerifier(),
		extern.NewPersister(),
		extern.NewAiCaller(backend),
	)
}

func printHelp() {
	fmt.Printf(`svm %s - stack machine for loop-verify-persist-invoke workflows

Usage: svm [options] <program.json>

Options:
  -help               Show this help message
  -version            Show version information
  -debug              Start in debugger mode (CLI)
  -tui                Start in TUI debugger mode
  -verbose            Enable verbose output
  -config PATH        Path to config.toml (default: platform config dir)
  -max-iterations N   Maximum instructions before halt (0: use config default)
  -memory-size N      Heap size in bytes (0: use config default)
  -ai-base-url URL    AI backend base URL (empty: use a mock backend)
  -ai-api-key KEY     AI backend API key
  -ai-model NAME      AI backend model name (default: gpt-4o-mini)

Examples:
  svm program.json
  svm -debug program.json
  svm -tui -verbose program.json
`, Version)
}
