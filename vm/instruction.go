// Package vm implements the stack virtual machine: the instruction model,
// the operand/call/exception stacks, the linear heap, and the fetch-decode-
// execute cycle that drives them.
package vm

import (
	"fmt"

	"github.com/qwas982/svm/value"
)

// Value is the tagged union opcodes operate on; aliased here so call sites
// in this package don't need to import value.Value directly.
type Value = value.Value

// Opcode is the closed instruction set from spec.md §4.A/§6.
type Opcode int

const (
	Push Opcode = iota
	Pop
	Dup
	Swap
	Add
	Sub
	Mul
	Div
	Mod
	Eq
	Ne
	Gt
	Lt
	Ge
	Le
	Jump
	JumpIf
	Label
	Call
	Return
	Load
	Store
	ExternCall
	Print
	DebugInfo
	Halt
)

var opcodeNames = [...]string{
	"Push", "Pop", "Dup", "Swap",
	"Add", "Sub", "Mul", "Div", "Mod",
	"Eq", "Ne", "Gt", "Lt", "Ge", "Le",
	"Jump", "JumpIf", "Label",
	"Call", "Return",
	"Load", "Store",
	"ExternCall",
	"Print", "DebugInfo", "Halt",
}

func (op Opcode) String() string {
	if int(op) < 0 || int(op) >= len(opcodeNames) {
		return fmt.Sprintf("Opcode(%d)", int(op))
	}
	return opcodeNames[op]
}

// ParseOpcode resolves a canonical opcode name to its Opcode, for loaders
// that read an on-disk instruction format.
func ParseOpcode(name string) (Opcode, bool) {
	for i, n := range opcodeNames {
		if n == name {
			return Opcode(i), true
		}
	}
	return 0, false
}

// Instruction is an immutable (opcode, operand) pair. Operand is present
// for Push (any tag), Jump/JumpIf/Call/Label (string target), Load/Store
// (int address), and ExternCall (string name); it is absent (HasOperand
// false) for the remaining opcodes.
type Instruction struct {
	Opcode     Opcode
	Operand    Value
	HasOperand bool
	Line       int // source line, for the debugger's line-keyed breakpoints
}

// NewInstruction builds an instruction with no operand.
func NewInstruction(op Opcode, line int) Instruction {
	return Instruction{Opcode: op, Line: line}
}

// NewInstructionWithOperand builds an instruction carrying an operand.
func NewInstructionWithOperand(op Opcode, operand Value, line int) Instruction {
	return Instruction{Opcode: op, Operand: operand, HasOperand: true, Line: line}
}

// Program is an ordered instruction sequence plus its derived label table
// (spec.md §3). The label table is built once at Load and never mutated.
type Program struct {
	Instructions []Instruction
	Labels       map[string]int // label name -> instruction index
}

// NewProgram validates instructions (unique Label targets) and builds the
// label table. Duplicate labels are a load-time error per spec.md §3.
func NewProgram(instructions []Instruction) (*Program, error) {
	labels := make(map[string]int)
	for i, instr := range instructions {
		if instr.Opcode != Label {
			continue
		}
		name := instr.Operand.String()
		if _, exists := labels[name]; exists {
			return nil, fmt.Errorf("duplicate label %q at instruction %d (first defined at %d)", name, i, labels[name])
		}
		labels[name] = i
	}
	return &Program{Instructions: instructions, Labels: labels}, nil
}

// Len returns the number of instructions in the program.
func (p *Program) Len() int { return len(p.Instructions) }

// Resolve looks up a label's instruction index.
func (p *Program) Resolve(label string) (int, bool) {
	idx, ok := p.Labels[label]
	return idx, ok
}
