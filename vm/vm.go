package vm

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/qwas982/svm/fault"
	"github.com/qwas982/svm/value"
)

// Status is the coarse machine state from spec.md §4.C "State machine".
// Suspended is not set by the VM itself — a debugger attached externally
// drives Step() directly and tracks suspension on its own side (see
// debugger.Debugger), so the VM only ever reports Loaded/Running/Halted/Faulted.
type Status int

const (
	StatusLoaded Status = iota
	StatusRunning
	StatusHalted
	StatusFaulted
)

func (s Status) String() string {
	switch s {
	case StatusLoaded:
		return "Loaded"
	case StatusRunning:
		return "Running"
	case StatusHalted:
		return "Halted"
	case StatusFaulted:
		return "Faulted"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// VM is the stack virtual machine facade (spec.md §4.C), and resolves Open
// Question 1: this is the single execution facade; there is no second
// "workflow" type.
type VM struct {
	Program *Program

	Operands   *OperandStack
	Calls      *CallStack
	Exceptions *ExceptionStack
	Heap       *Heap
	Externs    *ExternRegistry
	Faults     *fault.Table
	ErrorLog   *fault.Log

	PC      int
	FP      int // index into the call stack; -1 when no frame is active
	Running bool

	FaultFlag    bool
	FaultMessage string

	// InstructionsExecuted counts every tick that reached dispatch,
	// including the tick that executes Halt (Open Question 3 / SPEC_FULL.md §9).
	InstructionsExecuted uint64

	// Clock is an injectable elapsed-time seam for deterministic tests;
	// defaults to a real monotonic stopwatch.
	Clock func() time.Duration

	OutputWriter io.Writer
	DebugWriter  io.Writer

	startedAt time.Time
	loaded    bool

	// faultRecovered is set by raiseFault when a recovery policy already
	// advanced pc itself (DefaultValue/Continue/ExternCallError-continue),
	// so Step does not additionally increment it.
	faultRecovered bool
}

// NewVM constructs a VM with the given heap size and fault-recovery table.
func NewVM(heapSize int, faults *fault.Table, externs *ExternRegistry) *VM {
	return &VM{
		Operands:     NewOperandStack(0),
		Calls:        NewCallStack(),
		Exceptions:   NewExceptionStack(),
		Heap:         NewHeap(heapSize),
		Externs:      externs,
		Faults:       faults,
		ErrorLog:     &fault.Log{},
		FP:           -1,
		OutputWriter: os.Stdout,
		DebugWriter:  os.Stdout,
	}
}

// Load validates the program (label uniqueness via NewProgram), resets all
// machine state, and sets pc=0, running=true (spec.md §4.C).
func (v *VM) Load(program *Program) error {
	checked, err := NewProgram(program.Instructions)
	if err != nil {
		return err
	}
	v.Program = checked
	v.Operands.Clear()
	v.Calls.Clear()
	v.Exceptions.Clear()
	v.Heap.Reset()
	v.ErrorLog = &fault.Log{}
	v.PC = 0
	v.FP = -1
	v.Running = true
	v.FaultFlag = false
	v.FaultMessage = ""
	v.InstructionsExecuted = 0
	v.startedAt = time.Now()
	v.loaded = true
	return nil
}

func (v *VM) elapsed() time.Duration {
	if v.Clock != nil {
		return v.Clock()
	}
	return time.Since(v.startedAt)
}

// Snapshot returns a read-only view of machine state (spec.md §4.C).
type Snapshot struct {
	PC               int
	OperandDepth     int
	CallDepth        int
	Running          bool
	FaultFlag        bool
	FaultMessage     string
	InstructionCount uint64 // includes the tick that executed Halt
	OperandHighWater int
	Elapsed          time.Duration
	ErrorLogLen      int
}

func (v *VM) Snapshot() Snapshot {
	return Snapshot{
		PC:               v.PC,
		OperandDepth:     v.Operands.Depth(),
		CallDepth:        v.Calls.Depth(),
		Running:          v.Running,
		FaultFlag:        v.FaultFlag,
		FaultMessage:     v.FaultMessage,
		InstructionCount: v.InstructionsExecuted,
		OperandHighWater: v.Operands.HighWater(),
		Elapsed:          v.elapsed(),
		ErrorLogLen:      v.ErrorLog.Len(),
	}
}

// Status reports the coarse machine state.
func (v *VM) Status() Status {
	switch {
	case !v.loaded, v.Running && v.InstructionsExecuted == 0:
		return StatusLoaded
	case v.FaultFlag && !v.Running:
		return StatusFaulted
	case !v.Running:
		return StatusHalted
	default:
		return StatusRunning
	}
}

// Run executes until running=false and returns the final snapshot.
// Precondition: Load has been called. A debugger mediates execution by
// calling Step directly in its own loop instead of Run (see debugger.RunCLI),
// matching spec.md §5's single-threaded, cooperative model.
func (v *VM) Run() (Snapshot, error) {
	if !v.loaded {
		return Snapshot{}, fmt.Errorf("vm: Run called before Load")
	}
	for v.Running {
		v.Step()
	}
	return v.Snapshot(), nil
}

// Step executes exactly one instruction (spec.md §4.C execution cycle).
func (v *VM) Step() {
	if !v.Running {
		return
	}
	if v.PC < 0 || v.PC >= v.Program.Len() {
		v.Running = false
		return
	}

	instr := v.Program.Instructions[v.PC]
	v.InstructionsExecuted++
	v.faultRecovered = false

	controlsPC := v.dispatch(instr)
	if v.FaultFlag && !v.Running {
		return // aborted; pc left as-is for inspection
	}
	if !controlsPC && !v.faultRecovered {
		v.PC++
	}
}

// dispatch executes one instruction and returns true if the opcode sets pc
// itself (Jump/JumpIf-taken/Call/Return), so Step should not auto-advance.
func (v *VM) dispatch(instr Instruction) bool {
	switch instr.Opcode {
	case Push:
		v.push(instr.Operand)
	case Pop:
		v.pop()
	case Dup:
		v.dup()
	case Swap:
		v.swap()
	case Add:
		v.binaryArith(value.Add)
	case Sub:
		v.binaryArith(value.Sub)
	case Mul:
		v.binaryArith(value.Mul)
	case Div:
		v.binaryDiv()
	case Mod:
		v.binaryMod()
	case Eq, Ne, Gt, Lt, Ge, Le:
		v.binaryCompare(instr.Opcode.String())
	case Jump:
		return v.jump(instr.Operand.String())
	case JumpIf:
		return v.jumpIf(instr.Operand.String())
	case Label:
		// no-op at execution; used only to build the label table at load
	case Call:
		return v.call(instr.Operand.String())
	case Return:
		return v.ret()
	case Load:
		v.loadCell(instr.Operand)
	case Store:
		v.storeCell(instr.Operand)
	case ExternCall:
		v.externCall(instr.Operand.String())
	case Print:
		v.print()
	case DebugInfo:
		v.debugInfo()
	case Halt:
		v.Running = false
	default:
		v.raiseFault(fault.UnknownOpcode, fmt.Errorf("unknown opcode %v", instr.Opcode))
	}
	return false
}
