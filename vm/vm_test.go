package vm_test

import (
	"testing"

	"github.com/qwas982/svm/fault"
	"github.com/qwas982/svm/value"
	"github.com/qwas982/svm/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVM(t *testing.T) *vm.VM {
	t.Helper()
	return vm.NewVM(vm.DefaultHeapSize, fault.DefaultTable(), vm.NewExternRegistry())
}

func push(v int64) vm.Instruction { return vm.NewInstructionWithOperand(vm.Push, value.NewInt(v), 0) }
func label(name string) vm.Instruction {
	return vm.NewInstructionWithOperand(vm.Label, value.NewString(name), 0)
}
func target(op vm.Opcode, name string) vm.Instruction {
	return vm.NewInstructionWithOperand(op, value.NewString(name), 0)
}
func cell(op vm.Opcode, addr int64) vm.Instruction {
	return vm.NewInstructionWithOperand(op, value.NewInt(addr), 0)
}
func bare(op vm.Opcode) vm.Instruction { return vm.NewInstruction(op, 0) }

func mustProgram(t *testing.T, instrs []vm.Instruction) *vm.Program {
	t.Helper()
	p, err := vm.NewProgram(instrs)
	require.NoError(t, err)
	return p
}

// Scenario 1: Push 10, Push 20, Add, Push 5, Div, Halt -> top = 6.0
func TestScenario1_AddThenDiv(t *testing.T) {
	m := newTestVM(t)
	prog := mustProgram(t, []vm.Instruction{
		push(10), push(20), bare(vm.Add), push(5), bare(vm.Div), bare(vm.Halt),
	})
	require.NoError(t, m.Load(prog))
	snap, err := m.Run()
	require.NoError(t, err)

	top, err := m.Operands.Peek()
	require.NoError(t, err)
	assert.Equal(t, value.Float, top.Kind)
	assert.Equal(t, 6.0, top.F)
	assert.Equal(t, uint64(6), snap.InstructionCount)
}

// Scenario 2: Push 10, Push 0, Div, Halt -> fault DivideByZero recorded, top=0
func TestScenario2_DivideByZeroRecovers(t *testing.T) {
	m := newTestVM(t)
	prog := mustProgram(t, []vm.Instruction{
		push(10), push(0), bare(vm.Div), bare(vm.Halt),
	})
	require.NoError(t, m.Load(prog))
	_, err := m.Run()
	require.NoError(t, err)

	top, err := m.Operands.Peek()
	require.NoError(t, err)
	assert.Equal(t, int64(0), top.I)
	assert.Equal(t, 1, m.ErrorLog.Len())
	assert.Equal(t, fault.DivideByZero, m.ErrorLog.Records()[0].Class)
	assert.False(t, m.Running)
}

// Scenario 3: Push 1, JumpIf end, Push 99, Label end, Halt -> stack empty
func TestScenario3_JumpIfSkipsPush99(t *testing.T) {
	m := newTestVM(t)
	prog := mustProgram(t, []vm.Instruction{
		push(1), target(vm.JumpIf, "end"), push(99), label("end"), bare(vm.Halt),
	})
	require.NoError(t, m.Load(prog))
	_, err := m.Run()
	require.NoError(t, err)
	assert.Equal(t, 0, m.Operands.Depth())
}

// Scenario 4: Call f, Halt, Label f, Push 42, Return -> top=42, call stack empty
func TestScenario4_CallReturn(t *testing.T) {
	m := newTestVM(t)
	prog := mustProgram(t, []vm.Instruction{
		target(vm.Call, "f"), bare(vm.Halt), label("f"), push(42), bare(vm.Return),
	})
	require.NoError(t, m.Load(prog))
	_, err := m.Run()
	require.NoError(t, err)

	top, err := m.Operands.Peek()
	require.NoError(t, err)
	assert.Equal(t, int64(42), top.I)
	assert.Equal(t, 0, m.Calls.Depth())
}

// Scenario 5: Push 7, Store 100, Load 100, Halt -> top=7
func TestScenario5_StoreLoadRoundTrip(t *testing.T) {
	m := newTestVM(t)
	prog := mustProgram(t, []vm.Instruction{
		push(7), cell(vm.Store, 100), cell(vm.Load, 100), bare(vm.Halt),
	})
	require.NoError(t, m.Load(prog))
	_, err := m.Run()
	require.NoError(t, err)

	top, err := m.Operands.Peek()
	require.NoError(t, err)
	assert.Equal(t, int64(7), top.I)
}

// Scenario 6: Pop, Halt on a fresh VM -> StackUnderflow, running=false, Halt not executed
func TestScenario6_PopOnEmptyStackAborts(t *testing.T) {
	m := newTestVM(t)
	prog := mustProgram(t, []vm.Instruction{bare(vm.Pop), bare(vm.Halt)})
	require.NoError(t, m.Load(prog))
	_, err := m.Run()
	require.NoError(t, err)

	assert.False(t, m.Running)
	assert.Equal(t, 0, m.Operands.Depth())
	assert.Equal(t, 1, m.ErrorLog.Len())
	assert.Equal(t, fault.StackUnderflow, m.ErrorLog.Records()[0].Class)
	assert.Equal(t, uint64(1), m.InstructionsExecuted)
}

func TestLoad_MemoryErrorNearHeapEnd(t *testing.T) {
	m := newTestVM(t)
	addr := int64(vm.DefaultHeapSize - 3)
	prog := mustProgram(t, []vm.Instruction{cell(vm.Load, addr), bare(vm.Halt)})
	require.NoError(t, m.Load(prog))
	_, err := m.Run()
	require.NoError(t, err)

	assert.Equal(t, fault.MemoryError, m.ErrorLog.Records()[0].Class)
	assert.False(t, m.Running)
}

func TestJump_MissingLabelIsUnknownOpcode(t *testing.T) {
	m := newTestVM(t)
	prog := mustProgram(t, []vm.Instruction{target(vm.Jump, "missing"), bare(vm.Halt)})
	require.NoError(t, m.Load(prog))
	_, err := m.Run()
	require.NoError(t, err)

	assert.Equal(t, fault.UnknownOpcode, m.ErrorLog.Records()[0].Class)
	assert.False(t, m.Running)
}

func TestNewProgram_DuplicateLabelIsLoadError(t *testing.T) {
	_, err := vm.NewProgram([]vm.Instruction{label("a"), label("a")})
	require.Error(t, err)
}

func TestNewProgram_LabelTableIdempotent(t *testing.T) {
	instrs := []vm.Instruction{label("a"), bare(vm.Halt), label("b")}
	p1, err := vm.NewProgram(instrs)
	require.NoError(t, err)
	p2, err := vm.NewProgram(instrs)
	require.NoError(t, err)
	assert.Equal(t, p1.Labels, p2.Labels)
}

func TestBalancedCallReturn_CallStackDepthRestored(t *testing.T) {
	m := newTestVM(t)
	prog := mustProgram(t, []vm.Instruction{
		target(vm.Call, "f"), bare(vm.Halt), label("f"), bare(vm.Return),
	})
	require.NoError(t, m.Load(prog))
	startDepth := m.Calls.Depth()
	_, err := m.Run()
	require.NoError(t, err)
	assert.Equal(t, startDepth, m.Calls.Depth())
}

func TestOperandStackDepth_BinaryOpNetChange(t *testing.T) {
	m := newTestVM(t)
	prog := mustProgram(t, []vm.Instruction{push(1), push(2), bare(vm.Add), bare(vm.Halt)})
	require.NoError(t, m.Load(prog))
	_, err := m.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, m.Operands.Depth())
}
