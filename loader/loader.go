// Package loader reads the on-disk JSON instruction-list format (spec.md §6)
// and builds the vm.Program plus the debugger's line->source-text map,
// generalizing the teacher's ELF/object-loading shape to loading an
// already-assembled stack-machine program.
package loader

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/qwas982/svm/debugger"
	"github.com/qwas982/svm/value"
	"github.com/qwas982/svm/vm"
)

// encodedValue is the on-disk representation of a tagged value.Value.
type encodedValue struct {
	Kind   string  `json:"kind"`
	Int    int64   `json:"int,omitempty"`
	Float  float64 `json:"float,omitempty"`
	Bool   bool    `json:"bool,omitempty"`
	String string  `json:"string,omitempty"`
}

func (e encodedValue) toValue() (value.Value, error) {
	switch e.Kind {
	case "int":
		return value.NewInt(e.Int), nil
	case "float":
		return value.NewFloat(e.Float), nil
	case "bool":
		return value.NewBool(e.Bool), nil
	case "string":
		return value.NewString(e.String), nil
	default:
		return value.Value{}, fmt.Errorf("loader: unknown operand kind %q", e.Kind)
	}
}

// encodedInstruction is the on-disk representation of one vm.Instruction.
// Source, when present, is the original line of program text shown by the
// debugger's source panel and `list` command.
type encodedInstruction struct {
	Op      string        `json:"op"`
	Operand *encodedValue `json:"operand,omitempty"`
	Line    int           `json:"line"`
	Source  string        `json:"source,omitempty"`
}

// encodedProgram is the root of the on-disk JSON program format. Symbols,
// when present, maps a debug-visible variable name to its heap cell address
// (spec.md §4.D's "vars ... materialised from the symbol table"), mirroring
// the original's separately-supplied 调试符号表.
type encodedProgram struct {
	Instructions []encodedInstruction `json:"instructions"`
	Symbols      map[string]int32     `json:"symbols,omitempty"`
}

// LoadFile reads a JSON program file and returns the parsed vm.Program, its
// line->source-text map, and its debug symbol table.
func LoadFile(path string) (*vm.Program, map[int]string, debugger.SymbolTable, error) {
	f, err := os.Open(path) // #nosec G304 -- user-specified program path
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open program file: %w", err)
	}
	defer f.Close()

	return LoadReader(f)
}

// LoadReader decodes a JSON program from r and builds the vm.Program.
func LoadReader(r io.Reader) (*vm.Program, map[int]string, debugger.SymbolTable, error) {
	var doc encodedProgram
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to parse program: %w", err)
	}

	instructions := make([]vm.Instruction, 0, len(doc.Instructions))
	sourceMap := make(map[int]string, len(doc.Instructions))

	for i, enc := range doc.Instructions {
		op, ok := vm.ParseOpcode(enc.Op)
		if !ok {
			return nil, nil, nil, fmt.Errorf("instruction %d: unknown opcode %q", i, enc.Op)
		}

		var instr vm.Instruction
		if enc.Operand != nil {
			operand, err := enc.Operand.toValue()
			if err != nil {
				return nil, nil, nil, fmt.Errorf("instruction %d: %w", i, err)
			}
			instr = vm.NewInstructionWithOperand(op, operand, enc.Line)
		} else {
			instr = vm.NewInstruction(op, enc.Line)
		}
		instructions = append(instructions, instr)

		if enc.Source != "" {
			sourceMap[enc.Line] = enc.Source
		}
	}

	program, err := vm.NewProgram(instructions)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to build program: %w", err)
	}

	symbols := make(debugger.SymbolTable, len(doc.Symbols))
	for name, addr := range doc.Symbols {
		symbols[name] = addr
	}

	return program, sourceMap, symbols, nil
}
